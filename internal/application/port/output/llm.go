package output

import (
	"context"

	"autoapply-agent/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages    []entity.Message
	Temperature float32
	// JSONMode asks the provider to constrain the reply to a JSON object.
	JSONMode bool
}

type ChatResponse struct {
	Message entity.Message
}

// PageDescriber is the reasoning boundary: markup in, structured page analysis out.
type PageDescriber interface {
	Describe(ctx context.Context, markup string) (*entity.PageAnalysis, error)
}
