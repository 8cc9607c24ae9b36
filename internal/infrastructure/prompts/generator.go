package prompts

import (
	"bytes"
	"strings"
	"text/template"

	"autoapply-agent/internal/domain/entity"
)

type PageAnalysisPromptData struct {
	FieldTypes []string
	PageTypes  []string
}

func DefaultPageAnalysisData() PageAnalysisPromptData {
	return PageAnalysisPromptData{
		FieldTypes: []string{
			string(entity.FieldTypeText),
			string(entity.FieldTypeEmail),
			string(entity.FieldTypeTel),
			string(entity.FieldTypeFile),
			string(entity.FieldTypeSelect),
			string(entity.FieldTypeRadio),
			string(entity.FieldTypeCheckbox),
		},
		PageTypes: []string{
			string(entity.PageTypeJobListing),
			string(entity.PageTypeApplicationForm),
			string(entity.PageTypeThankYou),
		},
	}
}

// GeneratePageAnalysisPrompt renders the schema instructions sent alongside the page markup.
func GeneratePageAnalysisPrompt(baseTemplate string, data PageAnalysisPromptData) (string, error) {
	tmpl, err := template.New("page_analysis").
		Funcs(template.FuncMap{"join": strings.Join}).
		Option("missingkey=error").
		Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
