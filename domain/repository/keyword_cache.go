package repository

import (
	"context"

	"trend-api/domain/model"
)

// IKeywordCache stores full keyword analyses. Get reports a miss with (nil, nil).
type IKeywordCache interface {
	Get(ctx context.Context, keyword string) (*model.KeywordAnalysis, error)
	Set(ctx context.Context, keyword string, analysis *model.KeywordAnalysis) error
}
