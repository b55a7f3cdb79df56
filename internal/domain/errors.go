package domain

import "errors"

var (
	// ErrInvalidInput is returned for empty, oversized, or policy-rejected
	// requirement text. No stage is invoked and no stage event is
	// published.
	ErrInvalidInput = errors.New("invalid requirements")

	// ErrNoStagesConfigured is returned when the registry snapshot
	// contains no enabled stages at run start.
	ErrNoStagesConfigured = errors.New("no enabled stages configured")

	// ErrAllStagesFailed is returned when every stage in a run failed.
	// Partial failures do not produce this error.
	ErrAllStagesFailed = errors.New("all pipeline stages failed")
)
