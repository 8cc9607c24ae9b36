// Package autoapply drives one browser session through a job application:
// it opens the posting, has the page described, fills the form from the
// candidate profile and stops short of submitting it.
package autoapply

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"autoapply-agent/internal/application/port/input"
	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"
)

var _ input.ApplyRunner = (*Agent)(nil)

const captchaPrompt = "CAPTCHA detected. Solve it in the browser window, then press Enter"

type Config struct {
	SettleDelay  time.Duration
	CaptchaGrace time.Duration
	OutputDir    string
	MarkupLimit  int
}

func DefaultConfig() Config {
	return Config{
		SettleDelay:  2 * time.Second,
		CaptchaGrace: 30 * time.Second,
		OutputDir:    "output",
		MarkupLimit:  5000,
	}
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Option func(*Agent)

func WithSleeper(s Sleeper) Option {
	return func(a *Agent) { a.sleep = s }
}

// WithOperator lets a console operator end the CAPTCHA grace period early.
func WithOperator(op output.UserInteractionPort) Option {
	return func(a *Agent) { a.operator = op }
}

func WithMarkupFilter(f MarkupFilter) Option {
	return func(a *Agent) { a.filter = f }
}

type Agent struct {
	browser   output.BrowserLauncher
	describer output.PageDescriber
	operator  output.UserInteractionPort
	logger    output.LoggerPort
	filter    MarkupFilter
	sleep     Sleeper
	cfg       Config
}

func New(
	browser output.BrowserLauncher,
	describer output.PageDescriber,
	logger output.LoggerPort,
	cfg Config,
	opts ...Option,
) *Agent {
	a := &Agent{
		browser:   browser,
		describer: describer,
		logger:    logger,
		sleep:     sleepContext,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type run struct {
	agent    *Agent
	req      entity.RunRequest
	log      *statusLog
	machine  *machine
	analyzer *analyzer
	filler   *filler
	uploader *uploader
}

func (a *Agent) newRun(req entity.RunRequest) *run {
	log := newStatusLog(a.logger.WithField("job_url", req.JobURL))
	return &run{
		agent:   a,
		req:     req,
		log:     log,
		machine: newMachine(),
		analyzer: &analyzer{
			describer: a.describer,
			filter:    a.filter,
			limit:     a.cfg.MarkupLimit,
			log:       log,
		},
		filler:   &filler{log: log},
		uploader: &uploader{log: log},
	}
}

// Run executes one application attempt and always returns exactly one
// result. The browser session is released on every path.
func (a *Agent) Run(ctx context.Context, req entity.RunRequest) (result *entity.AgentResult) {
	r := a.newRun(req)

	defer func() {
		if rec := recover(); rec != nil {
			r.log.logger.Error("Run panicked", "panic", rec)
			if err, ok := rec.(error); ok {
				result = r.fail(err)
				return
			}
			result = r.fail(fmt.Errorf("unexpected failure: %v", rec))
		}
	}()

	r.log.addf("Starting application for: %s", req.JobURL)

	if err := req.Validate(); err != nil {
		return r.fail(err)
	}

	session, err := a.browser.Open(ctx, output.SessionOptions{Headless: req.Headless})
	if err != nil {
		return r.fail(fmt.Errorf("open browser session: %w", err))
	}
	defer r.release(session)

	return r.execute(ctx, newGuardedSession(session))
}

func (r *run) execute(ctx context.Context, s *guardedSession) *entity.AgentResult {
	cfg := r.agent.cfg

	r.log.add("Navigating to job page...")
	if err := s.Navigate(ctx, r.req.JobURL); err != nil {
		return r.fail(fmt.Errorf("navigate to job page: %w", err))
	}
	r.machine.advance(StateNavigated)

	if err := r.agent.sleep(ctx, cfg.SettleDelay); err != nil {
		return r.fail(err)
	}

	analysis := r.analyzer.analyze(ctx, s)
	r.machine.advance(StateAnalyzed)

	if analysis.CaptchaDetected {
		r.log.add("CAPTCHA detected! Manual intervention required.")
		if r.req.Headless {
			r.machine.terminate()
			return r.log.result(entity.StatusCaptchaDetected, false)
		}
		r.machine.advance(StateCaptchaWait)
		if err := r.waitForCaptcha(ctx); err != nil {
			return r.fail(err)
		}
	}

	if analysis.PageType == entity.PageTypeJobListing && analysis.ApplyButtonSelector != "" {
		r.log.add("Clicking Apply button...")
		if err := s.Click(ctx, analysis.ApplyButtonSelector); err != nil {
			return r.fail(fmt.Errorf("click apply button: %w", err))
		}
		r.machine.advance(StateApplyClicked)

		if err := r.agent.sleep(ctx, cfg.SettleDelay); err != nil {
			return r.fail(err)
		}
		analysis = r.analyzer.analyze(ctx, s)
		r.machine.advance(StateReAnalyzed)
	}

	r.populate(ctx, s, analysis.FormFields)
	r.machine.advance(StateFormFilled)

	screenshotPath := r.screenshotPath()
	if err := s.Screenshot(ctx, screenshotPath); err != nil {
		return r.fail(fmt.Errorf("take screenshot: %w", err))
	}
	r.log.addf("Screenshot saved: %s", screenshotPath)
	r.machine.advance(StateScreenshotTaken)

	s.locateSubmit(ctx, r.log)
	r.machine.advance(StateSubmitLocated)

	currentURL, err := s.CurrentURL(ctx)
	if err != nil {
		return r.fail(fmt.Errorf("read current url: %w", err))
	}
	r.machine.advance(StateTerminal)

	if isTerminalURL(currentURL) {
		r.log.add("Application submitted successfully!")
		return r.log.result(entity.StatusApplied, true)
	}

	r.log.add("Form filled. Submission is left for human confirmation.")
	result := r.log.result(entity.StatusFormFilled, true)
	result.ScreenshotPath = screenshotPath
	return result
}

func (r *run) populate(ctx context.Context, s output.BrowserSession, fields []entity.FormField) {
	if len(fields) == 0 {
		return
	}
	r.log.addf("Found %d form fields", len(fields))

	uploaded := false
	for _, field := range fields {
		if field.Type == entity.FieldTypeFile {
			if !uploaded {
				uploaded = r.uploader.upload(ctx, s, r.req.ResumePath)
			}
			continue
		}
		r.filler.fill(ctx, s, field, r.req.Profile)
	}
}

// waitForCaptcha pauses for the grace period, or less if the operator confirms.
func (r *run) waitForCaptcha(ctx context.Context) error {
	grace := r.agent.cfg.CaptchaGrace
	r.log.addf("Browser is visible. Waiting up to %s for the CAPTCHA to be solved...", grace)

	if r.agent.operator == nil {
		return r.agent.sleep(ctx, grace)
	}

	waitCtx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()

	err := r.agent.operator.WaitForUserAction(waitCtx, captchaPrompt)
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		r.log.add("CAPTCHA grace period elapsed, continuing")
	case err != nil:
		r.log.logger.Warn("Operator wait failed", "error", err)
		if err := r.agent.sleep(waitCtx, grace); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		r.log.add("CAPTCHA grace period elapsed, continuing")
	default:
		r.log.add("Operator confirmed the CAPTCHA is solved")
	}
	return nil
}

func (r *run) screenshotPath() string {
	return filepath.Join(r.agent.cfg.OutputDir, fmt.Sprintf("pre_submit_%s.png", filepath.Base(r.req.ResumePath)))
}

func (r *run) fail(err error) *entity.AgentResult {
	r.log.addf("Error during application: %v", err)
	r.machine.terminate()
	result := r.log.result(entity.StatusError, false)
	result.Error = err.Error()
	return result
}

func (r *run) release(session output.BrowserSession) {
	if err := session.Close(); err != nil {
		r.log.logger.Warn("Failed to close browser session", "error", err)
	}
}
