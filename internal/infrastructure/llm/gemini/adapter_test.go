package gemini

import (
	"context"
	"errors"
	"testing"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	messages []llms.MessageContent
	options  llms.CallOptions
	resp     *llms.ContentResponse
	err      error
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, opt := range options {
		opt(&m.options)
	}
	return m.resp, m.err
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestChat_JSONModeAndContent(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: `{"page_type":"thank_you"}`}},
	}}
	adapter := NewWithModel(model, nil)

	resp, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: "schema"},
			{Role: entity.RoleUser, Content: "markup"},
		},
		JSONMode: true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"page_type":"thank_you"}`, resp.Message.Content)
	assert.Equal(t, entity.RoleAssistant, resp.Message.Role)
	assert.True(t, model.options.JSONMode)
	assert.Equal(t, 0.0, model.options.Temperature)
}

func TestChat_Errors(t *testing.T) {
	adapter := NewWithModel(&fakeModel{err: errors.New("quota")}, nil)
	_, err := adapter.Chat(context.Background(), output.ChatRequest{})
	assert.Error(t, err)

	adapter = NewWithModel(&fakeModel{resp: &llms.ContentResponse{}}, nil)
	_, err = adapter.Chat(context.Background(), output.ChatRequest{})
	assert.Error(t, err)
}

func TestConvertMessages_FoldsSystemIntoHumanTurn(t *testing.T) {
	result := convertMessages([]entity.Message{
		{Role: entity.RoleSystem, Content: "schema"},
		{Role: entity.RoleUser, Content: "markup"},
	})

	require.Len(t, result, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, result[0].Role)
	require.Len(t, result[0].Parts, 2)
	assert.Equal(t, llms.TextContent{Text: "schema"}, result[0].Parts[0])
	assert.Equal(t, llms.TextContent{Text: "markup"}, result[0].Parts[1])
}

func TestConvertMessages_SystemOnly(t *testing.T) {
	result := convertMessages([]entity.Message{{Role: entity.RoleSystem, Content: "only"}})

	require.Len(t, result, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, result[0].Role)
}

func TestNewGeminiAdapter_RequiresKey(t *testing.T) {
	_, err := NewGeminiAdapter(context.Background(), Config{})
	assert.Error(t, err)
}
