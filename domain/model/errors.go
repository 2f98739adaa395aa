package model

import "errors"

var (
	// ErrUnsupportedRegion is returned by a topic provider that cannot serve the requested geo.
	ErrUnsupportedRegion = errors.New("unsupported region")
	// ErrFetchFailed wraps every provider failure surfaced to the orchestrator.
	ErrFetchFailed = errors.New("fetch failed")

	ErrInvalidCategory       = errors.New("invalid category")
	ErrKeywordRequired       = errors.New("keyword is required")
	ErrProviderNotConfigured = errors.New("provider not configured")
)
