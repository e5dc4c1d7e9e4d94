// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package e2ehelpers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	pageLoadTimeout   = 30 * time.Second
	screenshotTimeout = 5 * time.Second
)

// Option configures NewSession.
type Option func(*sessionOptions)

type sessionOptions struct {
	log       logrus.FieldLogger
	fs        afero.Fs
	launchers []Launcher
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *sessionOptions) { o.log = l }
}

// WithFs sets the filesystem screenshots are written to.
func WithFs(fs afero.Fs) Option {
	return func(o *sessionOptions) { o.fs = fs }
}

// WithLaunchers replaces the launch attempts derived from the config.
func WithLaunchers(l ...Launcher) Option {
	return func(o *sessionOptions) { o.launchers = l }
}

// Session owns one browser. It is not safe for concurrent use; each test
// creates its own and closes it when done.
type Session struct {
	cfg       Config
	drv       Driver
	log       logrus.FieldLogger
	artifacts *ArtifactStore
	runs      *RunStore

	mu     sync.Mutex
	record RunRecord

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewSession launches the first available browser from the configured
// fallback list with the requested viewport. If none can be launched the
// error wraps ErrDriverUnavailable.
func NewSession(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	o := sessionOptions{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	launchers := o.launchers
	if launchers == nil {
		launchers = Launchers(cfg)
	}

	id := uuid.NewString()
	log := o.log.WithField("session", id[:8])
	drv, browser, err := Launch(ctx, cfg, log, launchers)
	if err != nil {
		return nil, err
	}
	log = log.WithField("browser", browser)
	log.Infof("browser ready (%dx%d, headless=%t)", cfg.WindowWidth, cfg.WindowHeight, cfg.Headless)

	s := &Session{
		cfg:       cfg,
		drv:       drv,
		log:       log,
		artifacts: NewArtifactStore(o.fs, cfg.OutputDir),
		record: RunRecord{
			ID:      id,
			Browser: browser,
			BaseURL: cfg.BaseURL,
			Started: time.Now(),
		},
	}
	if cfg.RecordRuns {
		s.runs = NewRunStore(cfg.OutputDir)
	}
	return s, nil
}

// Config returns the configuration the session was created with.
func (s *Session) Config() Config { return s.cfg }

// Browser returns the name of the launcher that succeeded.
func (s *Session) Browser() string { return s.record.Browser }

// ID returns the run ID.
func (s *Session) ID() string { return s.record.ID }

// Driver returns the underlying backend.
func (s *Session) Driver() Driver { return s.drv }

// Logger returns the session logger.
func (s *Session) Logger() logrus.FieldLogger { return s.log }

func (s *Session) timeout(d time.Duration) time.Duration {
	if d <= 0 {
		return s.cfg.ImplicitWait
	}
	return d
}

func (s *Session) check() error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	return nil
}

// Navigate loads url. There is no retry.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.check(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pageLoadTimeout)
	defer cancel()
	s.log.Debugf("navigate %s", url)
	if err := s.drv.Navigate(ctx, url); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}
	return nil
}

// ClearStorage drops local storage for origin. The WebDriver backend also
// clears session storage; Chromium tabs start with an empty one.
func (s *Session) ClearStorage(ctx context.Context, origin string) error {
	if err := s.check(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ImplicitWait)
	defer cancel()
	if err := s.drv.ClearStorage(ctx, origin); err != nil {
		return fmt.Errorf("clear storage for %s: %w", origin, err)
	}
	return nil
}

// IsVisible probes sel once without waiting.
func (s *Session) IsVisible(ctx context.Context, sel Selector) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ImplicitWait)
	defer cancel()
	st, err := s.drv.State(ctx, sel)
	if err != nil {
		return false, err
	}
	return st.Found && st.Visible, nil
}

// WaitForVisible waits until sel is rendered and visible. A zero timeout
// means Config.ImplicitWait.
func (s *Session) WaitForVisible(ctx context.Context, sel Selector, timeout time.Duration) (*Element, error) {
	err := s.waitFor(ctx, sel, timeout, "visible", func(st ElementState) bool {
		return st.Found && st.Visible
	})
	if err != nil {
		return nil, err
	}
	return &Element{s: s, sel: sel}, nil
}

// WaitForClickable waits until sel is visible and enabled.
func (s *Session) WaitForClickable(ctx context.Context, sel Selector, timeout time.Duration) (*Element, error) {
	err := s.waitFor(ctx, sel, timeout, "clickable", ElementState.Clickable)
	if err != nil {
		return nil, err
	}
	return &Element{s: s, sel: sel}, nil
}

// WaitForHidden waits until sel is hidden or removed.
func (s *Session) WaitForHidden(ctx context.Context, sel Selector, timeout time.Duration) error {
	return s.waitFor(ctx, sel, timeout, "hidden", func(st ElementState) bool {
		return !st.Found || !st.Visible
	})
}

func (s *Session) waitFor(ctx context.Context, sel Selector, timeout time.Duration, cond string, ok func(ElementState) bool) error {
	if err := s.check(); err != nil {
		return err
	}
	timeout = s.timeout(timeout)
	log := s.log.WithField("selector", sel.String())
	log.Debugf("waiting up to %s for %s", timeout, cond)

	err := Poll(ctx, timeout, s.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		st, err := s.drv.State(ctx, sel)
		if err != nil {
			return false, err
		}
		return ok(st), nil
	})
	if err != nil {
		log.Warnf("not %s: %v", cond, err)
		shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), screenshotTimeout)
		defer cancel()
		s.CaptureScreenshot(shotCtx, fmt.Sprintf("timeout-%s-%s", cond, sel.fileSafe()))
		return fmt.Errorf("%s not %s: %w", sel, cond, err)
	}
	return nil
}

// Texts returns the text of every element matching sel, in document order.
func (s *Session) Texts(ctx context.Context, sel Selector) ([]string, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ImplicitWait)
	defer cancel()
	return s.drv.Texts(ctx, sel)
}

// CaptureScreenshot saves a screenshot of the viewport as name under
// Config.OutputDir and returns its path. Failures are logged and yield "".
func (s *Session) CaptureScreenshot(ctx context.Context, name string) string {
	if s.closed.Load() {
		s.log.Warnf("screenshot %s skipped: %v", name, ErrSessionClosed)
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, screenshotTimeout)
	defer cancel()
	buf, err := s.drv.Screenshot(ctx)
	if err != nil {
		s.log.Warnf("failed to capture screenshot %s: %v", name, err)
		return ""
	}
	path, err := s.artifacts.Save(name, buf)
	if err != nil {
		s.log.Warnf("screenshot %s: %v", name, err)
		return ""
	}
	s.log.Infof("Saved screenshot to %s", path)
	s.mu.Lock()
	s.record.Screenshots = append(s.record.Screenshots, path)
	s.mu.Unlock()
	return path
}

// ConsoleErrors returns JavaScript errors reported by the page so far.
func (s *Session) ConsoleErrors() []string {
	return s.drv.ConsoleErrors()
}

// RecordStep appends a step to the run record.
func (s *Session) RecordStep(name string, err error) {
	step := StepRecord{Name: name, Time: time.Now()}
	if err != nil {
		step.Error = err.Error()
	}
	s.mu.Lock()
	s.record.Steps = append(s.record.Steps, step)
	s.mu.Unlock()
}

// Record returns a copy of the run record.
func (s *Session) Record() RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record
	r.Steps = append([]StepRecord(nil), s.record.Steps...)
	r.Screenshots = append([]string(nil), s.record.Screenshots...)
	r.ConsoleErrors = append([]string(nil), s.record.ConsoleErrors...)
	return r
}

// Close releases the browser. It is safe to call more than once; later calls
// return the result of the first.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.mu.Lock()
		s.record.ConsoleErrors = s.drv.ConsoleErrors()
		s.mu.Unlock()

		s.closeErr = s.drv.Close()
		if s.closeErr != nil {
			s.log.Warnf("close browser: %v", s.closeErr)
		} else {
			s.log.Info("browser closed")
		}

		if s.runs == nil {
			return
		}
		s.mu.Lock()
		s.record.Finished = time.Now()
		s.mu.Unlock()
		rec := s.Record()
		if err := s.runs.Save(&rec); err != nil {
			s.log.Warnf("save run record: %v", err)
		}
	})
	return s.closeErr
}

// Element is a handle to the element matched by a selector. It is resolved
// again on every action.
type Element struct {
	s   *Session
	sel Selector
}

// Selector returns the selector the element was found with.
func (e *Element) Selector() Selector { return e.sel }

// Click clicks the element.
func (e *Element) Click(ctx context.Context) error {
	if err := e.s.check(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, e.s.cfg.ImplicitWait)
	defer cancel()
	st, err := e.s.drv.State(ctx, e.sel)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrElementNotInteractable, e.sel, err)
	}
	if !st.Clickable() {
		return fmt.Errorf("%w: %s (found=%t visible=%t enabled=%t)", ErrElementNotInteractable, e.sel, st.Found, st.Visible, st.Enabled)
	}
	e.s.log.WithField("selector", e.sel.String()).Debug("click")
	if err := e.s.drv.Click(ctx, e.sel); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrElementNotInteractable, e.sel, err)
	}
	return nil
}

// KeyEnter presses Enter when included in TypeText input.
const KeyEnter = "\n"

// TypeText sends text to the element as key presses.
func (e *Element) TypeText(ctx context.Context, text string) error {
	if err := e.s.check(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, e.s.cfg.ImplicitWait)
	defer cancel()
	if err := e.s.drv.SendKeys(ctx, e.sel, text); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrElementNotInteractable, e.sel, err)
	}
	return nil
}

// Text returns the element's rendered text.
func (e *Element) Text(ctx context.Context) (string, error) {
	if err := e.s.check(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, e.s.cfg.ImplicitWait)
	defer cancel()
	st, err := e.s.drv.State(ctx, e.sel)
	if err != nil {
		return "", err
	}
	if !st.Found {
		return "", fmt.Errorf("no node for %s", e.sel)
	}
	return st.Text, nil
}
