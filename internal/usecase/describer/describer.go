package describer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"
	"autoapply-agent/internal/infrastructure/prompts"
)

var _ output.PageDescriber = (*Describer)(nil)

var (
	ErrNoJSON         = errors.New("no JSON object in response")
	ErrSchemaMismatch = errors.New("response does not match page analysis schema")
)

// Describer asks an LLM to classify a page snapshot.
type Describer struct {
	llm          output.LLMPort
	logger       output.LoggerPort
	instructions string
}

func New(llm output.LLMPort, logger output.LoggerPort) (*Describer, error) {
	instructions, err := prompts.GeneratePageAnalysisPrompt(prompts.PageAnalysisPrompt, prompts.DefaultPageAnalysisData())
	if err != nil {
		return nil, fmt.Errorf("render page analysis prompt: %w", err)
	}
	return &Describer{
		llm:          llm,
		logger:       logger,
		instructions: instructions,
	}, nil
}

func (d *Describer) Describe(ctx context.Context, markup string) (*entity.PageAnalysis, error) {
	resp, err := d.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: d.instructions},
			{Role: entity.RoleUser, Content: "Page HTML (truncated):\n" + markup},
		},
		Temperature: 0.0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("page analysis llm request failed: %w", err)
	}
	if resp == nil {
		return nil, ErrNoJSON
	}

	analysis, skipped, err := parseAnalysisResponse(resp.Message.Content)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		d.logger.Warn("Skipped unusable form fields", "fields", skipped)
	}

	d.logger.Debug("Page described",
		"page_type", analysis.PageType,
		"fields", len(analysis.FormFields),
		"captcha", analysis.CaptchaDetected,
	)
	return analysis, nil
}

type wireField struct {
	Label    string `json:"label"`
	Selector string `json:"selector"`
	Type     string `json:"type"`
}

type wireAnalysis struct {
	ApplyButtonSelector *string     `json:"apply_button_selector"`
	FormFields          []wireField `json:"form_fields"`
	CaptchaDetected     bool        `json:"captcha_detected"`
	PageType            string      `json:"page_type"`
}

// parseAnalysisResponse decodes the LLM reply. Fields with an unsupported
// type or no selector are dropped and reported in skipped; the rest of the
// analysis is kept.
func parseAnalysisResponse(response string) (analysis *entity.PageAnalysis, skipped []string, err error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, nil, ErrNoJSON
	}

	var wire wireAnalysis
	if err := json.Unmarshal([]byte(response[start:end+1]), &wire); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	pageType := entity.PageType(strings.ToLower(strings.TrimSpace(wire.PageType)))
	if pageType == "" {
		pageType = entity.PageTypeUnknown
	}
	if !pageType.Valid() {
		return nil, nil, fmt.Errorf("%w: page_type %q", ErrSchemaMismatch, wire.PageType)
	}

	analysis = &entity.PageAnalysis{
		FormFields:      make([]entity.FormField, 0, len(wire.FormFields)),
		CaptchaDetected: wire.CaptchaDetected,
		PageType:        pageType,
	}
	if wire.ApplyButtonSelector != nil {
		analysis.ApplyButtonSelector = strings.TrimSpace(*wire.ApplyButtonSelector)
	}

	for i, f := range wire.FormFields {
		fieldType := entity.FieldType(strings.ToLower(strings.TrimSpace(f.Type)))
		if !fieldType.Valid() {
			skipped = append(skipped, fmt.Sprintf("form_fields[%d].type %q", i, f.Type))
			continue
		}
		if strings.TrimSpace(f.Selector) == "" {
			skipped = append(skipped, fmt.Sprintf("form_fields[%d].selector is empty", i))
			continue
		}
		analysis.FormFields = append(analysis.FormFields, entity.FormField{
			Label:    f.Label,
			Selector: f.Selector,
			Type:     fieldType,
		})
	}

	return analysis, skipped, nil
}
