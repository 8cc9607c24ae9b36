package autoapply

import (
	"context"
	"errors"
	"time"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/domain/entity"
	"autoapply-agent/internal/infrastructure/logger"
)

// fakeSession records every browser interaction in call order.
type fakeSession struct {
	content     string
	contentErr  error
	navigateErr error
	clickErr    error
	screenErr   error
	urlErr      error
	url         string

	present    map[string]bool
	findErr    map[string]error
	fillErr    map[string]error
	hasFile    bool
	setFileErr error

	onClick func(selector string)

	calls  []string
	clicks []string
	filled map[string]string
	files  []string
	shots  []string
	closed int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		content: "<html><body><form></form></body></html>",
		url:     "https://jobs.example.com/posting/42",
		present: map[string]bool{},
		findErr: map[string]error{},
		fillErr: map[string]error{},
		filled:  map[string]string{},
	}
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.calls = append(s.calls, "navigate")
	return s.navigateErr
}

func (s *fakeSession) Content(ctx context.Context) (string, error) {
	s.calls = append(s.calls, "content")
	return s.content, s.contentErr
}

func (s *fakeSession) Click(ctx context.Context, selector string) error {
	s.calls = append(s.calls, "click:"+selector)
	s.clicks = append(s.clicks, selector)
	if s.clickErr != nil {
		return s.clickErr
	}
	if s.onClick != nil {
		s.onClick(selector)
	}
	return nil
}

func (s *fakeSession) Fill(ctx context.Context, selector, value string) error {
	s.calls = append(s.calls, "fill:"+selector)
	if err := s.fillErr[selector]; err != nil {
		return err
	}
	s.filled[selector] = value
	return nil
}

func (s *fakeSession) Find(ctx context.Context, loc entity.Locator) (bool, error) {
	s.calls = append(s.calls, "find:"+loc.String())
	if err := s.findErr[loc.String()]; err != nil {
		return false, err
	}
	return s.present[loc.String()], nil
}

func (s *fakeSession) SetFiles(ctx context.Context, selector string, paths ...string) (bool, error) {
	s.calls = append(s.calls, "setfiles:"+selector)
	if s.setFileErr != nil {
		return false, s.setFileErr
	}
	if !s.hasFile {
		return false, nil
	}
	s.files = append(s.files, paths...)
	return true, nil
}

func (s *fakeSession) Screenshot(ctx context.Context, path string) error {
	s.calls = append(s.calls, "screenshot")
	if s.screenErr != nil {
		return s.screenErr
	}
	s.shots = append(s.shots, path)
	return nil
}

func (s *fakeSession) CurrentURL(ctx context.Context) (string, error) {
	s.calls = append(s.calls, "url")
	return s.url, s.urlErr
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

// indexOf returns the position of the first call with the given prefix, or -1.
func (s *fakeSession) indexOf(prefix string) int {
	for i, c := range s.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			return i
		}
	}
	return -1
}

type fakeLauncher struct {
	session *fakeSession
	err     error
	opened  int
	opts    output.SessionOptions
}

func (l *fakeLauncher) Open(ctx context.Context, opts output.SessionOptions) (output.BrowserSession, error) {
	l.opened++
	l.opts = opts
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

// fakeDescriber returns queued analyses in order, then the last one again.
type fakeDescriber struct {
	analyses []*entity.PageAnalysis
	errs     []error
	markups  []string
}

func (d *fakeDescriber) Describe(ctx context.Context, markup string) (*entity.PageAnalysis, error) {
	i := len(d.markups)
	d.markups = append(d.markups, markup)
	if i < len(d.errs) && d.errs[i] != nil {
		return nil, d.errs[i]
	}
	if len(d.analyses) == 0 {
		return nil, errors.New("no analysis queued")
	}
	if i >= len(d.analyses) {
		i = len(d.analyses) - 1
	}
	return d.analyses[i], nil
}

type fakeOperator struct {
	err    error
	block  bool
	called int
}

func (o *fakeOperator) WaitForUserAction(ctx context.Context, message string) error {
	o.called++
	if o.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return o.err
}

type recordingSleeper struct {
	waits []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func newTestAgent(launcher output.BrowserLauncher, describer output.PageDescriber, opts ...Option) (*Agent, *recordingSleeper) {
	sleeper := &recordingSleeper{}
	cfg := DefaultConfig()
	cfg.OutputDir = "out"
	all := append([]Option{WithSleeper(sleeper.sleep)}, opts...)
	return New(launcher, describer, logger.NewNopAdapter(), cfg, all...), sleeper
}

func validRequest() entity.RunRequest {
	return entity.RunRequest{
		JobURL:     "https://jobs.example.com/posting/42",
		Profile:    entity.UserProfile{FullName: "Jane Doe", Email: "jane@example.com", Phone: "+1 555 0100"},
		ResumePath: "/data/resumes/jane.pdf",
		Headless:   true,
	}
}
