package input

import (
	"context"

	"autoapply-agent/internal/domain/entity"
)

// ApplyRunner executes one application run to a terminal result.
// It never returns a nil result.
type ApplyRunner interface {
	Run(ctx context.Context, req entity.RunRequest) *entity.AgentResult
}
