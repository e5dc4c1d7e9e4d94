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
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mstoykov/envconfig"
)

// Browser names accepted in Config.Browsers.
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserEdge    = "edge"
	BrowserSafari  = "safari"
)

// Config holds the launch options of a Session. It is not modified after
// NewSession.
type Config struct {
	BaseURL            string        `envconfig:"VOID_BASE_URL"`
	Headless           bool          `envconfig:"VOID_HEADLESS"`
	WindowWidth        int           `envconfig:"VOID_WINDOW_WIDTH"`
	WindowHeight       int           `envconfig:"VOID_WINDOW_HEIGHT"`
	NoSandbox          bool          `envconfig:"VOID_NO_SANDBOX"`
	DisableGPU         bool          `envconfig:"VOID_DISABLE_GPU"`
	DisableDevShmUsage bool          `envconfig:"VOID_DISABLE_DEV_SHM_USAGE"`
	ImplicitWait       time.Duration `envconfig:"VOID_IMPLICIT_WAIT"`
	PollInterval       time.Duration `envconfig:"VOID_POLL_INTERVAL"`
	Browsers           []string      `envconfig:"VOID_BROWSERS"`
	RemoteURL          string        `envconfig:"VOID_CHROMEDP_URL"`
	WebDriverURL       string        `envconfig:"VOID_WEBDRIVER_URL"`
	OutputDir          string        `envconfig:"VOID_OUTPUT_DIR"`
	RecordRuns         bool          `envconfig:"VOID_RECORD_RUNS"`
}

// DefaultConfig returns the configuration the suite runs with when nothing
// is overridden.
func DefaultConfig() Config {
	return Config{
		BaseURL:            "http://localhost:8000",
		Headless:           true,
		WindowWidth:        1920,
		WindowHeight:       1080,
		NoSandbox:          true,
		DisableGPU:         true,
		DisableDevShmUsage: true,
		ImplicitWait:       10 * time.Second,
		PollInterval:       200 * time.Millisecond,
		Browsers:           []string{BrowserChrome, BrowserFirefox, BrowserEdge, BrowserSafari},
		OutputDir:          "output",
		RecordRuns:         true,
	}
}

// LoadConfig returns DefaultConfig overlaid with VOID_* variables found by
// lookup. A nil lookup reads the process environment.
func LoadConfig(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	var err error
	if lookup == nil {
		err = envconfig.Process("", &cfg)
	} else {
		err = envconfig.Process("", &cfg, lookup)
	}
	if err != nil {
		return Config{}, fmt.Errorf("envconfig: %w", err)
	}
	for i, b := range cfg.Browsers {
		cfg.Browsers[i] = strings.ToLower(strings.TrimSpace(b))
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base url %q", c.BaseURL)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.ImplicitWait <= 0 {
		return fmt.Errorf("implicit wait must be positive, got %s", c.ImplicitWait)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if len(c.Browsers) == 0 && c.RemoteURL == "" {
		return fmt.Errorf("no browsers configured")
	}
	for _, b := range c.Browsers {
		switch b {
		case BrowserChrome, BrowserFirefox, BrowserEdge, BrowserSafari:
		default:
			return fmt.Errorf("unknown browser %q", b)
		}
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir must be set")
	}
	return nil
}
