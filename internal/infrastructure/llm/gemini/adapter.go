package gemini

import (
	"context"
	"errors"
	"fmt"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

var _ output.LLMPort = (*GeminiAdapter)(nil)

const defaultModel = "gemini-flash-latest"

type Config struct {
	APIKey string
	Model  string
	Logger output.LoggerPort
}

func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey: apiKey,
		Model:  defaultModel,
	}
}

type GeminiAdapter struct {
	model  llms.Model
	logger output.LoggerPort
}

func NewGeminiAdapter(ctx context.Context, cfg Config) (*GeminiAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return NewWithModel(client, cfg.Logger), nil
}

// NewWithModel wraps any langchaingo model; used by tests and alternate providers.
func NewWithModel(model llms.Model, logger output.LoggerPort) *GeminiAdapter {
	return &GeminiAdapter{model: model, logger: logger}
}

func (a *GeminiAdapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := a.model.GenerateContent(ctx, convertMessages(req.Messages), opts...)
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := resp.Choices[0]
	if a.logger != nil {
		a.logger.Debug("Gemini response received", "stopReason", choice.StopReason, "contentLength", len(choice.Content))
	}

	return &output.ChatResponse{
		Message: entity.Message{Role: entity.RoleAssistant, Content: choice.Content},
	}, nil
}

// convertMessages folds system instructions into the next human turn.
func convertMessages(messages []entity.Message) []llms.MessageContent {
	var system []llms.ContentPart
	result := make([]llms.MessageContent, 0, len(messages))

	for _, msg := range messages {
		part := llms.TextContent{Text: msg.Content}
		switch msg.Role {
		case entity.RoleSystem:
			system = append(system, part)
		case entity.RoleAssistant:
			result = append(result, llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: []llms.ContentPart{part}})
		default:
			parts := []llms.ContentPart{part}
			if len(system) > 0 {
				parts = append(system, parts...)
				system = nil
			}
			result = append(result, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts})
		}
	}

	if len(system) > 0 {
		result = append(result, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: system})
	}
	return result
}
