package model

// AccessTier is derived from the caller's identity claim and never stored.
type AccessTier string

const (
	TierFree AccessTier = "free"
	TierPaid AccessTier = "paid"
)

func TierFromClaim(isPaidUser bool) AccessTier {
	if isPaidUser {
		return TierPaid
	}
	return TierFree
}

func (t AccessTier) IsPaid() bool { return t == TierPaid }

// TierLimits holds the per-tier result caps. A cap <= 0 means unrestricted.
type TierLimits struct {
	FreeTopics          int
	PaidTopics          int
	FreeVideos          int
	PaidVideos          int
	FreeRelatedKeywords int
	PaidRelatedKeywords int
	FreeTopVideos       int
	PaidTopVideos       int
}

// DefaultTierLimits mirrors the product plans: free callers see a preview, paid callers see
// everything (videos are bounded by the fetch size).
func DefaultTierLimits() TierLimits {
	return TierLimits{
		FreeTopics:          5,
		PaidTopics:          0,
		FreeVideos:          2,
		PaidVideos:          10,
		FreeRelatedKeywords: 3,
		PaidRelatedKeywords: 10,
		FreeTopVideos:       2,
		PaidTopVideos:       5,
	}
}

func (l TierLimits) Topics(t AccessTier) int {
	if t.IsPaid() {
		return l.PaidTopics
	}
	return l.FreeTopics
}

func (l TierLimits) Videos(t AccessTier) int {
	if t.IsPaid() {
		return l.PaidVideos
	}
	return l.FreeVideos
}

func (l TierLimits) RelatedKeywords(t AccessTier) int {
	if t.IsPaid() {
		return l.PaidRelatedKeywords
	}
	return l.FreeRelatedKeywords
}

func (l TierLimits) TopVideos(t AccessTier) int {
	if t.IsPaid() {
		return l.PaidTopVideos
	}
	return l.FreeTopVideos
}

// Truncate returns at most n leading items; n <= 0 returns items unchanged.
func Truncate[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
