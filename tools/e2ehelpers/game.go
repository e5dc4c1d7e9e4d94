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
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// Selectors the game exposes. Changes to the game's markup must be mirrored
// here.
var (
	SelIntroVideo      = CSS(".intro-video")
	SelIntroSkip       = CSS(".intro-skip")
	SelComputerIntro   = CSS(".computer-intro")
	SelIntroContinue   = CSS(".computer-intro-continue")
	SelPlayerName      = ID("player-name")
	SelIntroSubmit     = CSS(".computer-intro-submit")
	SelSplash          = CSS(".splash")
	SelBegin           = ButtonText("Begin")
	SelGameUI          = ID("game-ui")
	SelMessages        = CSS("#messages .msg")
	SelOrganics        = ID("res-organics")
	SelDays            = ID("res-days")
	SelGatherOrganics  = ID("btn-gather-organics")
	SelGameOverHeading = XPath("//h2[text()='Game Over']")
	SelGameOverReason  = CSS("div.game-over-panel p")
	SelGameOverScore   = CSS("div.game-over-panel .win-score")
	SelNewGame         = ID("btn-new-game")
)

// DefaultPlayerName is the name entered during the intro.
const DefaultPlayerName = "TestPlayer"

// StepTimeout bounds each wait of the intro flow.
const StepTimeout = 10 * time.Second

// StarvationTimeout bounds the wait for starvation under the game's default
// timers: four hunger ticks of 10s plus slack.
const StarvationTimeout = 45 * time.Second

// Timing shortens the game's timers. Zero fields keep the game defaults.
type Timing struct {
	Hunger time.Duration
	Energy time.Duration
}

// GameURL returns base with the timing knobs as query parameters.
func GameURL(base string, t Timing) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", base, err)
	}
	q := u.Query()
	if t.Hunger > 0 {
		q.Set("hunger", strconv.FormatInt(t.Hunger.Milliseconds(), 10))
	}
	if t.Energy > 0 {
		q.Set("energy", strconv.FormatInt(t.Energy.Milliseconds(), 10))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func origin(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return u.Scheme + "://" + u.Host, nil
}

// LoadGame opens the game with fresh local storage so the intro plays.
func LoadGame(ctx context.Context, s *Session, t Timing) error {
	base := s.Config().BaseURL
	o, err := origin(base)
	if err != nil {
		return err
	}
	if err := s.ClearStorage(ctx, o); err != nil {
		return err
	}
	target, err := GameURL(base, t)
	if err != nil {
		return err
	}
	return s.Navigate(ctx, target)
}

// ClickWhenReady waits for sel to become clickable and clicks it.
func ClickWhenReady(ctx context.Context, s *Session, sel Selector) error {
	el, err := s.WaitForClickable(ctx, sel, StepTimeout)
	if err != nil {
		return err
	}
	return el.Click(ctx)
}

// SkipIntro clicks the intro video's skip control and waits for the ship
// computer overlay.
func SkipIntro(ctx context.Context, s *Session) error {
	s.log.Info("Looking for Skip element...")
	if err := ClickWhenReady(ctx, s, SelIntroSkip); err != nil {
		return err
	}
	_, err := s.WaitForVisible(ctx, SelComputerIntro, StepTimeout)
	return err
}

// EnterPlayerName advances past the wake-up message and submits name.
func EnterPlayerName(ctx context.Context, s *Session, name string) error {
	if err := ClickWhenReady(ctx, s, SelIntroContinue); err != nil {
		return err
	}
	input, err := s.WaitForClickable(ctx, SelPlayerName, StepTimeout)
	if err != nil {
		return err
	}
	if err := input.TypeText(ctx, name); err != nil {
		return err
	}
	return ClickWhenReady(ctx, s, SelIntroSubmit)
}

// SkipIntroSequence walks the whole intro: skip, name entry, crash message
// and Begin.
func SkipIntroSequence(ctx context.Context, s *Session, name string) error {
	if err := SkipIntro(ctx, s); err != nil {
		return fmt.Errorf("skip intro: %w", err)
	}
	if err := EnterPlayerName(ctx, s, name); err != nil {
		return fmt.Errorf("enter name: %w", err)
	}
	s.log.Info("Looking for next Tap to continue button...")
	if err := ClickWhenReady(ctx, s, SelIntroContinue); err != nil {
		return fmt.Errorf("crash message: %w", err)
	}
	s.log.Info("Looking for Begin button...")
	if err := ClickWhenReady(ctx, s, SelBegin); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	return nil
}

// AwaitGameOver waits for the game-over heading, saving a screenshot named
// prefix_<n>.png every interval while waiting.
func AwaitGameOver(ctx context.Context, s *Session, timeout, every time.Duration, prefix string) error {
	next := time.Now().Add(every)
	shot := 0
	err := Poll(ctx, timeout, s.cfg.PollInterval, func(ctx context.Context) (bool, error) {
		visible, err := s.IsVisible(ctx, SelGameOverHeading)
		if err != nil {
			return false, err
		}
		if visible {
			return true, nil
		}
		if every > 0 && time.Now().After(next) {
			s.CaptureScreenshot(ctx, fmt.Sprintf("%s_%d.png", prefix, shot))
			shot++
			next = time.Now().Add(every)
		}
		return false, nil
	})
	if err != nil {
		s.CaptureScreenshot(context.WithoutCancel(ctx), prefix+"_timeout.png")
		return fmt.Errorf("game over: %w", err)
	}
	s.log.Info("Game over detected!")
	return nil
}

// GameOver is what the game-over panel shows.
type GameOver struct {
	Reason string
	Score  string
	Days   int
}

var daysRe = regexp.MustCompile(`Days Survived:\s*(\d+)`)

// ReadGameOver reads the game-over panel.
func ReadGameOver(ctx context.Context, s *Session) (GameOver, error) {
	var g GameOver
	reason, err := s.WaitForVisible(ctx, SelGameOverReason, StepTimeout)
	if err != nil {
		return g, err
	}
	if g.Reason, err = reason.Text(ctx); err != nil {
		return g, err
	}
	score, err := s.WaitForVisible(ctx, SelGameOverScore, StepTimeout)
	if err != nil {
		return g, err
	}
	if g.Score, err = score.Text(ctx); err != nil {
		return g, err
	}
	if m := daysRe.FindStringSubmatch(g.Score); m != nil {
		g.Days, _ = strconv.Atoi(m[1])
	}
	return g, nil
}

// MessageLog returns the in-game message log, oldest first.
func MessageLog(ctx context.Context, s *Session) ([]string, error) {
	return s.Texts(ctx, SelMessages)
}

// ReadCounter returns the integer shown by sel.
func ReadCounter(ctx context.Context, s *Session, sel Selector) (int, error) {
	el, err := s.WaitForVisible(ctx, sel, StepTimeout)
	if err != nil {
		return 0, err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", sel, text)
	}
	return n, nil
}
