package autoapply

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"autoapply-agent/internal/domain/entity"
	"autoapply-agent/internal/infrastructure/logger"
)

func TestTruncateMarkup(t *testing.T) {
	assert.Equal(t, "abc", truncateMarkup("abcdef", 3))
	assert.Equal(t, "abc", truncateMarkup("abc", 5))
	assert.Equal(t, "abcdef", truncateMarkup("abcdef", 0))
	assert.Equal(t, "héé", truncateMarkup("héééé", 3))
}

func TestAnalyzer_TruncatesMarkup(t *testing.T) {
	s := newFakeSession()
	s.content = strings.Repeat("é", 6000)
	d := &fakeDescriber{analyses: []*entity.PageAnalysis{{PageType: entity.PageTypeApplicationForm}}}
	a := &analyzer{describer: d, limit: 5000, log: newStatusLog(logger.NewNopAdapter())}

	got := a.analyze(context.Background(), s)

	assert.Equal(t, entity.PageTypeApplicationForm, got.PageType)
	assert.NotNil(t, got.FormFields)
	assert.Equal(t, 5000, utf8.RuneCountInString(d.markups[0]))
}

func TestAnalyzer_AppliesFilterBeforeTruncation(t *testing.T) {
	s := newFakeSession()
	s.content = "<script>noise</script><form>x</form>"
	d := &fakeDescriber{analyses: []*entity.PageAnalysis{{PageType: entity.PageTypeApplicationForm}}}
	a := &analyzer{
		describer: d,
		filter:    func(m string) string { return strings.ReplaceAll(m, "<script>noise</script>", "") },
		limit:     6,
		log:       newStatusLog(logger.NewNopAdapter()),
	}

	a.analyze(context.Background(), s)

	assert.Equal(t, "<form>", d.markups[0])
}

func TestAnalyzer_DegradesToDefault(t *testing.T) {
	tests := []struct {
		name      string
		session   func() *fakeSession
		describer *fakeDescriber
		entry     string
	}{
		{
			name: "content error",
			session: func() *fakeSession {
				s := newFakeSession()
				s.contentErr = errors.New("target closed")
				return s
			},
			describer: &fakeDescriber{},
			entry:     "Error analyzing page: target closed",
		},
		{
			name:      "describer error",
			session:   newFakeSession,
			describer: &fakeDescriber{errs: []error{errors.New("no JSON object in response")}},
			entry:     "Error analyzing page: no JSON object in response",
		},
		{
			name:      "nil analysis",
			session:   newFakeSession,
			describer: &fakeDescriber{analyses: []*entity.PageAnalysis{nil}},
			entry:     "Error analyzing page: empty analysis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := newStatusLog(logger.NewNopAdapter())
			a := &analyzer{describer: tt.describer, limit: 5000, log: log}

			got := a.analyze(context.Background(), tt.session())

			assert.Equal(t, entity.DefaultPageAnalysis(), got)
			assert.Contains(t, log.entries, tt.entry)
		})
	}
}
