package autoapply

import (
	"context"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"
)

// MarkupFilter rewrites page markup before truncation.
type MarkupFilter func(markup string) string

type analyzer struct {
	describer output.PageDescriber
	filter    MarkupFilter
	limit     int
	log       *statusLog
}

// analyze describes the current page. It never fails: any error degrades
// to entity.DefaultPageAnalysis so the run can continue.
func (a *analyzer) analyze(ctx context.Context, s output.BrowserSession) entity.PageAnalysis {
	a.log.add("Analyzing page structure...")

	markup, err := s.Content(ctx)
	if err != nil {
		a.log.addf("Error analyzing page: %v", err)
		return entity.DefaultPageAnalysis()
	}
	if a.filter != nil {
		markup = a.filter(markup)
	}
	markup = truncateMarkup(markup, a.limit)

	analysis, err := a.describer.Describe(ctx, markup)
	if err != nil {
		a.log.addf("Error analyzing page: %v", err)
		return entity.DefaultPageAnalysis()
	}
	if analysis == nil {
		a.log.add("Error analyzing page: empty analysis")
		return entity.DefaultPageAnalysis()
	}

	result := *analysis
	if result.FormFields == nil {
		result.FormFields = []entity.FormField{}
	}
	if result.PageType == "" {
		result.PageType = entity.PageTypeUnknown
	}

	a.log.addf("Page analysis complete: %s", result.PageType)
	return result
}

// truncateMarkup keeps at most limit characters; limit <= 0 disables it.
func truncateMarkup(markup string, limit int) string {
	if limit <= 0 {
		return markup
	}
	count := 0
	for i := range markup {
		if count == limit {
			return markup[:i]
		}
		count++
	}
	return markup
}
