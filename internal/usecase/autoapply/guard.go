package autoapply

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"
)

// ErrSubmitWithheld is returned for any click that would activate a located
// submit control. Final submission always needs a human.
var ErrSubmitWithheld = errors.New("submit control activation withheld")

// submitLocators are searched in order; the first hit wins.
var submitLocators = []entity.Locator{
	{CSS: `button[type="submit"]`},
	{CSS: `input[type="submit"]`},
	{CSS: "button", Text: "Submit"},
	{CSS: "button", Text: "Apply"},
}

var terminalURLKeywords = []string{"thank", "success"}

// guardedSession refuses clicks on located submit controls, and every click
// once the submit search has started.
type guardedSession struct {
	output.BrowserSession
	located map[string]struct{}
	sealed  bool
	blocked int
}

func newGuardedSession(s output.BrowserSession) *guardedSession {
	return &guardedSession{
		BrowserSession: s,
		located:        make(map[string]struct{}),
	}
}

func (g *guardedSession) Click(ctx context.Context, selector string) error {
	if _, ok := g.located[selector]; ok || g.sealed {
		g.blocked++
		return fmt.Errorf("%w: %s", ErrSubmitWithheld, selector)
	}
	return g.BrowserSession.Click(ctx, selector)
}

// locateSubmit finds, and never activates, the submit control.
func (g *guardedSession) locateSubmit(ctx context.Context, log *statusLog) (entity.Locator, bool) {
	g.sealed = true

	for _, loc := range submitLocators {
		found, err := g.Find(ctx, loc)
		if err != nil {
			log.logger.Debug("Submit locator lookup failed", "locator", loc.String(), "error", err)
			continue
		}
		if !found {
			continue
		}
		g.located[loc.String()] = struct{}{}
		g.located[loc.CSS] = struct{}{}
		log.addf("Found submit button: %s", loc)
		log.add("Submit button found but NOT clicked (safety measure)")
		return loc, true
	}

	log.add("No submit button found")
	return entity.Locator{}, false
}

func isTerminalURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, kw := range terminalURLKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
