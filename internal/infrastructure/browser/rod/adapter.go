// Package rod implements the browser ports on top of go-rod. Every Open call
// starts a dedicated browser process with one incognito page.
package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var (
	_ output.BrowserLauncher = (*Launcher)(nil)
	_ output.BrowserSession  = (*Session)(nil)
)

const (
	defaultTimeout     = 10 * time.Second
	defaultNavTimeout  = 30 * time.Second
	requestIdleWindow  = 500 * time.Millisecond
	jpegQuality        = 80
	defaultMaxShotWide = 1280
)

type BrowserConfig struct {
	SlowMotion time.Duration
	// Timeout bounds single element lookups.
	Timeout time.Duration
	// NavTimeout bounds navigation including the wait for network idleness.
	NavTimeout time.Duration
	NoSandbox  bool
	// Bin is an explicit browser binary; empty lets rod find or download one.
	Bin                string
	MaxScreenshotWidth int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Timeout:            defaultTimeout,
		NavTimeout:         defaultNavTimeout,
		NoSandbox:          true,
		MaxScreenshotWidth: defaultMaxShotWide,
	}
}

func (c BrowserConfig) withDefaults() BrowserConfig {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.NavTimeout <= 0 {
		c.NavTimeout = defaultNavTimeout
	}
	if c.MaxScreenshotWidth < 0 {
		c.MaxScreenshotWidth = 0
	}
	return c
}

type Launcher struct {
	cfg    BrowserConfig
	logger output.LoggerPort
}

func NewLauncher(cfg BrowserConfig, logger output.LoggerPort) *Launcher {
	return &Launcher{cfg: cfg.withDefaults(), logger: logger}
}

// Open launches a browser process and returns a session bound to a single
// page in a fresh incognito context.
func (l *Launcher) Open(ctx context.Context, opts output.SessionOptions) (output.BrowserSession, error) {
	lc := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(l.cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-setuid-sandbox")
	if l.cfg.Bin != "" {
		lc = lc.Bin(l.cfg.Bin)
	}

	controlURL, err := lc.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).SlowMotion(l.cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		lc.Kill()
		lc.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	incognito, err := browser.Incognito()
	if err != nil {
		_ = browser.Close()
		lc.Kill()
		lc.Cleanup()
		return nil, fmt.Errorf("failed to create incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		lc.Kill()
		lc.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	l.logger.Debug("Browser session opened", "headless", opts.Headless, "controlURL", controlURL)

	return &Session{
		cfg:       l.cfg,
		logger:    l.logger,
		launcher:  lc,
		browser:   browser,
		incognito: incognito,
		page:      page,
	}, nil
}

type Session struct {
	cfg       BrowserConfig
	logger    output.LoggerPort
	launcher  *launcher.Launcher
	browser   *rod.Browser
	incognito *rod.Browser
	page      *rod.Page

	closeOnce sync.Once
	closeErr  error
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx).Timeout(s.cfg.NavTimeout)
	defer page.CancelTimeout()

	wait := page.WaitRequestIdle(requestIdleWindow, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	wait()

	if err := page.GetContext().Err(); err != nil {
		return fmt.Errorf("waiting for network idle: %w", err)
	}
	return nil
}

func (s *Session) Content(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (s *Session) element(ctx context.Context, selector string) (*rod.Element, error) {
	page := s.page.Context(ctx).Timeout(s.cfg.Timeout)
	el, err := page.Element(selector)
	page.CancelTimeout()
	if err != nil {
		return nil, fmt.Errorf("element not found: %s: %w", selector, err)
	}
	return el.Context(ctx), nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	el, err := s.element(ctx, selector)
	if err != nil {
		return err
	}
	clearField(el, s.logger, selector)
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

type textField interface {
	SelectAllText() error
	Input(text string) error
}

// clearField empties el before Fill types into it. A failure leaves the old
// text in place, so it is logged rather than returned.
func clearField(el textField, logger output.LoggerPort, selector string) {
	if err := el.SelectAllText(); err != nil {
		logger.Debug("Selecting field text failed", "selector", selector, "error", err)
		return
	}
	if err := el.Input(""); err != nil {
		logger.Debug("Clearing field failed", "selector", selector, "error", err)
	}
}

// Find reports whether an element matching loc exists right now; it does not wait.
func (s *Session) Find(ctx context.Context, loc entity.Locator) (bool, error) {
	page := s.page.Context(ctx)
	var (
		has bool
		err error
	)
	if loc.Text == "" {
		has, _, err = page.Has(loc.CSS)
	} else {
		has, _, err = page.HasR(loc.CSS, textPattern(loc.Text))
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", loc, err)
	}
	return has, nil
}

// textPattern builds the case-insensitive JS regex rod matches element text against.
func textPattern(text string) string {
	return "/" + regexp.QuoteMeta(text) + "/i"
}

func (s *Session) SetFiles(ctx context.Context, selector string, paths ...string) (bool, error) {
	has, el, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", selector, err)
	}
	if !has {
		return false, nil
	}
	if err := el.SetFiles(paths); err != nil {
		return false, fmt.Errorf("set files: %w", err)
	}
	return true, nil
}

// Screenshot captures the viewport and writes it to path. The format follows
// the extension: .jpg/.jpeg is stored as JPEG, anything else as PNG.
func (s *Session) Screenshot(ctx context.Context, path string) error {
	req := &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng}
	var saveOpts []imaging.EncodeOption
	if isJPEG(path) {
		req = &proto.PageCaptureScreenshot{
			Format:  proto.PageCaptureScreenshotFormatJpeg,
			Quality: gson.Int(jpegQuality),
		}
		saveOpts = append(saveOpts, imaging.JPEGQuality(jpegQuality))
	}

	raw, err := s.page.Context(ctx).Screenshot(false, req)
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("image decode failed: %w", err)
	}
	img = fitWidth(img, s.cfg.MaxScreenshotWidth)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create screenshot dir: %w", err)
		}
	}
	if err := imaging.Save(img, path, saveOpts...); err != nil {
		return fmt.Errorf("save screenshot: %w", err)
	}
	return nil
}

func isJPEG(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jpg" || ext == ".jpeg"
}

func fitWidth(img image.Image, maxWidth int) image.Image {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

// Close tears down the page, the incognito context and the browser process.
// It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := s.incognito.Close(); err != nil {
			s.logger.Debug("Incognito context close failed", "error", err)
		}
		s.closeErr = s.browser.Close()
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.logger.Debug("Browser session closed")
	})
	return s.closeErr
}
