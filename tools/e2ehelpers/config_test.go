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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 1920, cfg.WindowWidth)
	assert.Equal(t, 1080, cfg.WindowHeight)
	assert.Equal(t, 10*time.Second, cfg.ImplicitWait)
	assert.Equal(t, []string{BrowserChrome, BrowserFirefox, BrowserEdge, BrowserSafari}, cfg.Browsers)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(mapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig(mapLookup(map[string]string{
		"VOID_BASE_URL":      "http://devtest.local:9000/game/",
		"VOID_HEADLESS":      "false",
		"VOID_WINDOW_WIDTH":  "1280",
		"VOID_WINDOW_HEIGHT": "720",
		"VOID_IMPLICIT_WAIT": "3s",
		"VOID_BROWSERS":      " Firefox ,chrome",
		"VOID_CHROMEDP_URL":  "ws://127.0.0.1:9222",
		"VOID_OUTPUT_DIR":    "/tmp/shots",
		"VOID_RECORD_RUNS":   "false",
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://devtest.local:9000/game/", cfg.BaseURL)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 1280, cfg.WindowWidth)
	assert.Equal(t, 720, cfg.WindowHeight)
	assert.Equal(t, 3*time.Second, cfg.ImplicitWait)
	assert.Equal(t, []string{BrowserFirefox, BrowserChrome}, cfg.Browsers)
	assert.Equal(t, "ws://127.0.0.1:9222", cfg.RemoteURL)
	assert.Equal(t, "/tmp/shots", cfg.OutputDir)
	assert.False(t, cfg.RecordRuns)
	assert.True(t, cfg.NoSandbox, "unset variables keep their defaults")
}

func TestLoadConfigErrors(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"BadDuration": {"VOID_IMPLICIT_WAIT": "soon"},
		"BadInt":      {"VOID_WINDOW_WIDTH": "wide"},
		"BadURL":      {"VOID_BASE_URL": "localhost"},
		"BadBrowser":  {"VOID_BROWSERS": "netscape"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(mapLookup(env))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"ZeroWidth":       func(c *Config) { c.WindowWidth = 0 },
		"NegativeHeight":  func(c *Config) { c.WindowHeight = -1 },
		"ZeroWait":        func(c *Config) { c.ImplicitWait = 0 },
		"ZeroPoll":        func(c *Config) { c.PollInterval = 0 },
		"NoBrowsers":      func(c *Config) { c.Browsers = nil },
		"NoOutputDir":     func(c *Config) { c.OutputDir = "" },
		"RelativeBaseURL": func(c *Config) { c.BaseURL = "/game" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.Browsers = nil
	cfg.RemoteURL = "ws://127.0.0.1:9222"
	assert.NoError(t, cfg.Validate(), "a remote endpoint alone is enough")
}
