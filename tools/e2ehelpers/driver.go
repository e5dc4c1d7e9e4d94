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
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"
)

// ElementState is a point-in-time snapshot of the first element matching a
// selector.
type ElementState struct {
	Found   bool   `json:"found"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
}

// Clickable reports whether the element can receive a click.
func (s ElementState) Clickable() bool {
	return s.Found && s.Visible && s.Enabled
}

// Driver is one live browser controlled by a backend.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	State(ctx context.Context, sel Selector) (ElementState, error)
	Click(ctx context.Context, sel Selector) error
	SendKeys(ctx context.Context, sel Selector, text string) error
	Texts(ctx context.Context, sel Selector) ([]string, error)
	ClearStorage(ctx context.Context, origin string) error
	Screenshot(ctx context.Context) ([]byte, error)
	ConsoleErrors() []string
	Close() error
}

// ProcessOwner is implemented by drivers that started a local browser process.
type ProcessOwner interface {
	Process() *os.Process
}

// Launcher starts one kind of browser.
type Launcher interface {
	Name() string
	Launch(ctx context.Context, cfg Config, log logrus.FieldLogger) (Driver, error)
}

// Launchers returns the ordered launch attempts for cfg. A configured remote
// DevTools endpoint goes first; Safari is only attempted on macOS.
func Launchers(cfg Config) []Launcher {
	var out []Launcher
	if cfg.RemoteURL != "" {
		out = append(out, remoteLauncher{url: cfg.RemoteURL})
	}
	for _, b := range cfg.Browsers {
		switch b {
		case BrowserChrome:
			out = append(out, execLauncher{name: BrowserChrome, candidates: chromePaths})
		case BrowserEdge:
			out = append(out, execLauncher{name: BrowserEdge, candidates: edgePaths})
		case BrowserFirefox:
			out = append(out, webDriverLauncher{name: BrowserFirefox})
		case BrowserSafari:
			if runtime.GOOS == "darwin" {
				out = append(out, webDriverLauncher{name: BrowserSafari})
			}
		}
	}
	return out
}

// Launch tries each launcher in order and returns the first driver that
// starts. When all of them fail the error wraps ErrDriverUnavailable and
// every attempt's cause.
func Launch(ctx context.Context, cfg Config, log logrus.FieldLogger, launchers []Launcher) (Driver, string, error) {
	var errs []error
	for _, l := range launchers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		log.WithField("browser", l.Name()).Debug("launching browser")
		drv, err := l.Launch(ctx, cfg, log.WithField("browser", l.Name()))
		if err != nil {
			log.WithField("browser", l.Name()).Infof("browser unavailable: %v", err)
			errs = append(errs, fmt.Errorf("%s: %w", l.Name(), err))
			continue
		}
		return drv, l.Name(), nil
	}
	if len(errs) == 0 {
		return nil, "", fmt.Errorf("%w: no launchers configured", ErrDriverUnavailable)
	}
	return nil, "", fmt.Errorf("%w: %w", ErrDriverUnavailable, errors.Join(errs...))
}

// lookPath returns the first candidate found on the system.
func lookPath(candidates []string) (string, error) {
	for _, c := range candidates {
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("none of %d candidate executables found", len(candidates))
}
