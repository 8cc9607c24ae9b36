package output

import (
	"context"

	"autoapply-agent/internal/domain/entity"
)

type SessionOptions struct {
	Headless bool
}

// BrowserLauncher opens an isolated browser session. Every session it
// returns is owned by exactly one run and must be closed by it.
type BrowserLauncher interface {
	Open(ctx context.Context, opts SessionOptions) (BrowserSession, error)
}

type BrowserSession interface {
	Navigate(ctx context.Context, url string) error
	Content(ctx context.Context) (string, error)
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	// Find reports whether an element matching loc is present, without waiting.
	Find(ctx context.Context, loc entity.Locator) (bool, error)
	// SetFiles attaches paths to the first element matching selector.
	// It returns false when no such element exists.
	SetFiles(ctx context.Context, selector string, paths ...string) (bool, error)
	Screenshot(ctx context.Context, path string) error
	CurrentURL(ctx context.Context) (string, error)

	Close() error
}
