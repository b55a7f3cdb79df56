// Package generation provides the client abstraction for the text
// generation backend driving each pipeline stage.
package generation

import (
	"context"

	"github.com/xiaot623/devteam/internal/domain"
)

// Client defines the interface to the generation capability. The pipeline
// treats it as opaque: given a stage, the requirements, and the outputs of
// earlier stages, it produces text or fails.
type Client interface {
	Generate(ctx context.Context, stage domain.StageDefinition, requirements string, prior []domain.StageResult) (string, error)
}

// Ensure implementations satisfy the interface.
var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
