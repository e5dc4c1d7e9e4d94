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
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameURL(t *testing.T) {
	for _, tc := range []struct {
		base   string
		timing Timing
		want   string
	}{
		{"http://localhost:8000", Timing{}, "http://localhost:8000"},
		{"http://localhost:8000/", Timing{Hunger: 200 * time.Millisecond}, "http://localhost:8000/?hunger=200"},
		{"http://localhost:8000/", Timing{Hunger: time.Second, Energy: time.Hour}, "http://localhost:8000/?energy=3600000&hunger=1000"},
		{"http://devtest.local/play?seed=1", Timing{Energy: 100 * time.Millisecond}, "http://devtest.local/play?energy=100&seed=1"},
	} {
		got, err := GameURL(tc.base, tc.timing)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
	_, err := GameURL("http://[::1", Timing{})
	assert.Error(t, err)
}

func TestOrigin(t *testing.T) {
	o, err := origin("http://localhost:8000/game/index.html?x=1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", o)
}

func TestLoadGame(t *testing.T) {
	s, drv, _, _ := newTestSession(t, testConfig())
	require.NoError(t, LoadGame(context.Background(), s, Timing{Hunger: 200 * time.Millisecond}))
	assert.Equal(t, []string{"http://localhost:8000"}, drv.cleared)
	assert.Equal(t, []string{"http://localhost:8000?hunger=200"}, drv.navigated)
}

func TestSkipIntroSequence(t *testing.T) {
	s, drv, _, _ := newTestSession(t, testConfig())
	for _, sel := range []Selector{SelIntroSkip, SelComputerIntro, SelIntroContinue, SelPlayerName, SelIntroSubmit, SelBegin} {
		drv.set(sel, visible)
	}

	require.NoError(t, SkipIntroSequence(context.Background(), s, DefaultPlayerName))
	assert.Equal(t, []Selector{SelIntroSkip, SelIntroContinue, SelIntroSubmit, SelIntroContinue, SelBegin}, drv.clicks)
	assert.Equal(t, DefaultPlayerName, drv.keys[SelPlayerName])
}

func TestSkipIntroSequenceMissingBegin(t *testing.T) {
	cfg := testConfig()
	s, drv, _, _ := newTestSession(t, cfg)
	for _, sel := range []Selector{SelIntroSkip, SelComputerIntro, SelIntroContinue, SelPlayerName, SelIntroSubmit} {
		drv.set(sel, visible)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := SkipIntroSequence(ctx, s, DefaultPlayerName)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin:")
}

func TestAwaitGameOver(t *testing.T) {
	cfg := testConfig()
	s, drv, fs, _ := newTestSession(t, cfg)
	states := make([]ElementState, 0, 16)
	for range 15 {
		states = append(states, hidden)
	}
	drv.set(SelGameOverHeading, append(states, visible)...)

	require.NoError(t, AwaitGameOver(context.Background(), s, 5*time.Second, 30*time.Millisecond, "starvation_wait"))
	ok, err := afero.Exists(fs, "/out/starvation_wait_0.png")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAwaitGameOverTimeout(t *testing.T) {
	s, drv, fs, _ := newTestSession(t, testConfig())
	drv.set(SelGameOverHeading, hidden)

	err := AwaitGameOver(context.Background(), s, 50*time.Millisecond, 0, "wait")
	require.ErrorIs(t, err, ErrTimeoutWaiting)
	ok, _ := afero.Exists(fs, "/out/wait_timeout.png")
	assert.True(t, ok)
	ok, _ = afero.Exists(fs, "/out/wait_0.png")
	assert.False(t, ok, "no periodic screenshots when every is zero")
}

func TestReadGameOver(t *testing.T) {
	s, drv, _, _ := newTestSession(t, testConfig())
	drv.set(SelGameOverReason, ElementState{Found: true, Visible: true, Text: "You starved to death."})
	drv.set(SelGameOverScore, ElementState{Found: true, Visible: true, Text: "Days Survived: 4"})

	g, err := ReadGameOver(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, GameOver{Reason: "You starved to death.", Score: "Days Survived: 4", Days: 4}, g)
}

func TestReadCounter(t *testing.T) {
	s, drv, _, _ := newTestSession(t, testConfig())
	drv.set(SelOrganics, ElementState{Found: true, Visible: true, Text: "3"})
	n, err := ReadCounter(context.Background(), s, SelOrganics)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	drv.set(SelDays, ElementState{Found: true, Visible: true, Text: "day one"})
	_, err = ReadCounter(context.Background(), s, SelDays)
	assert.Error(t, err)
}

func TestMessageLog(t *testing.T) {
	s, drv, _, _ := newTestSession(t, testConfig())
	drv.texts[SelMessages] = []string{"TestPlayer! Gather food (Organics) and watch out for predators."}
	got, err := MessageLog(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, drv.texts[SelMessages], got)
}
