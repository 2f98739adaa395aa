package dto

// TrendQueryRequest carries the query parameters of GET /api/trends.
type TrendQueryRequest struct {
	Category string `form:"category"`
	Region   string `form:"region"`
}

// TrendingVideosRequest carries the query parameters of GET /api/trending and
// GET /api/trends/combined.
type TrendingVideosRequest struct {
	Region string `form:"region"`
}

// KeywordAnalyzeRequest carries the query parameters of GET /api/keywords/analyze.
type KeywordAnalyzeRequest struct {
	Keyword string `form:"keyword"`
}

// SuccessResponse is the success envelope shared by every trend endpoint.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Error  string `json:"error,omitempty"`
}
