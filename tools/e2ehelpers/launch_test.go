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
	"runtime"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func launcherNames(ls []Launcher) []string {
	var out []string
	for _, l := range ls {
		out = append(out, l.Name())
	}
	return out
}

func TestLaunchersOrder(t *testing.T) {
	cfg := DefaultConfig()
	want := []string{BrowserChrome, BrowserFirefox, BrowserEdge}
	if runtime.GOOS == "darwin" {
		want = append(want, BrowserSafari)
	}
	assert.Equal(t, want, launcherNames(Launchers(cfg)))

	cfg.RemoteURL = "ws://127.0.0.1:9222"
	cfg.Browsers = []string{BrowserEdge, BrowserChrome}
	assert.Equal(t, []string{"remote", BrowserEdge, BrowserChrome}, launcherNames(Launchers(cfg)))
}

func TestLaunchFirstSuccessWins(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var calls [3]int
	drv := newFakeDriver()
	got, name, err := Launch(context.Background(), testConfig(), logger, []Launcher{
		fakeLauncher{name: "chrome", err: errors.New("no chrome"), calls: &calls[0]},
		fakeLauncher{name: "firefox", drv: drv, calls: &calls[1]},
		fakeLauncher{name: "edge", drv: newFakeDriver(), calls: &calls[2]},
	})
	require.NoError(t, err)
	assert.Same(t, drv, got)
	assert.Equal(t, "firefox", name)
	assert.Equal(t, [3]int{1, 1, 0}, calls, "later launchers must not be tried")
}

func TestLaunchAllFail(t *testing.T) {
	logger, _ := test.NewNullLogger()
	noChrome := errors.New("no chrome")
	noFirefox := errors.New("no firefox")
	_, _, err := Launch(context.Background(), testConfig(), logger, []Launcher{
		fakeLauncher{name: "chrome", err: noChrome},
		fakeLauncher{name: "firefox", err: noFirefox},
	})
	require.ErrorIs(t, err, ErrDriverUnavailable)
	assert.ErrorIs(t, err, noChrome)
	assert.ErrorIs(t, err, noFirefox)
	assert.Contains(t, err.Error(), "chrome: no chrome")
	assert.Contains(t, err.Error(), "firefox: no firefox")
}

func TestLaunchNoLaunchers(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, _, err := Launch(context.Background(), testConfig(), logger, nil)
	assert.ErrorIs(t, err, ErrDriverUnavailable)
}

func TestLaunchCanceled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, _, err := Launch(ctx, testConfig(), logger, []Launcher{
		fakeLauncher{name: "chrome", drv: newFakeDriver(), calls: &calls},
	})
	assert.ErrorIs(t, err, ErrDriverUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestNewSessionDriverUnavailable(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewSession(context.Background(), testConfig(),
		WithLaunchers(fakeLauncher{name: "chrome"}),
		WithLogger(logger),
	)
	assert.ErrorIs(t, err, ErrDriverUnavailable)
}

func TestNewSessionInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.WindowWidth = 0
	calls := 0
	_, err := NewSession(context.Background(), cfg, WithLaunchers(fakeLauncher{name: "chrome", drv: newFakeDriver(), calls: &calls}))
	assert.Error(t, err)
	assert.Zero(t, calls)
}

func TestLookPath(t *testing.T) {
	_, err := lookPath([]string{"definitely-not-a-browser-7f3a"})
	assert.Error(t, err)
}
