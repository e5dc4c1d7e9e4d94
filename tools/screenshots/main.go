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

// Command screenshots walks through the game and saves a numbered screenshot
// of every screen.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/ttbt-io/voidascendant/backend"
	"github.com/ttbt-io/voidascendant/tools/e2ehelpers"
)

func main() {
	if err := newRootCmd(logrus.StandardLogger()).Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	baseURL     string
	outputDir   string
	chromeURL   string
	browsers    []string
	headless    bool
	serveHost   string
	stepTimeout time.Duration
	hunger      time.Duration
	debug       bool
}

func (o *options) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVar(&o.baseURL, "base-url", "", "game URL; empty starts the built-in game server")
	flags.StringVar(&o.outputDir, "output-dir", "screenshots", "directory to save screenshots")
	flags.StringVar(&o.chromeURL, "with-chromedp", "", "the url of a remote debugging port")
	flags.StringSliceVar(&o.browsers, "browsers", nil, "browser fallback order (default from VOID_BROWSERS)")
	flags.BoolVar(&o.headless, "headless", true, "run the browser headless")
	flags.StringVar(&o.serveHost, "serve-host", "localhost", "host name the browser uses to reach the built-in server")
	flags.DurationVar(&o.stepTimeout, "timeout", 30*time.Second, "timeout of each step")
	flags.DurationVar(&o.hunger, "hunger-interval", 300*time.Millisecond, "hunger period used to reach game over quickly")
	flags.BoolVar(&o.debug, "debug", false, "enable debug logging")
	return flags
}

func newRootCmd(logger *logrus.Logger) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "screenshots",
		Short: "Capture the game's screens",
		Long: `Capture the game's screens.

Plays through the intro and lets the player starve, saving a numbered
screenshot at each stage. Failed steps save a debug screenshot and log the
page text.`,
		Example: `
  # Use the built-in game server and a local browser.
  screenshots --output-dir /tmp/shots

  # Attach to a browser in a container.
  screenshots --with-chromedp ws://127.0.0.1:9222 --serve-host devtest.local`[1:],
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.debug {
				logger.SetLevel(logrus.DebugLevel)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, logger, opts)
		},
	}
	cmd.Flags().SortFlags = false
	cmd.Flags().AddFlagSet(opts.flagSet())
	return cmd
}

// sessionConfig builds the session config from the environment and opts.
func sessionConfig(opts *options, baseURL string) (e2ehelpers.Config, error) {
	cfg, err := e2ehelpers.LoadConfig(nil)
	if err != nil {
		return cfg, err
	}
	cfg.BaseURL = baseURL
	cfg.Headless = opts.headless
	cfg.OutputDir = opts.outputDir
	if opts.chromeURL != "" {
		cfg.RemoteURL = opts.chromeURL
	}
	if len(opts.browsers) > 0 {
		cfg.Browsers = cfg.Browsers[:0]
		for _, b := range opts.browsers {
			cfg.Browsers = append(cfg.Browsers, strings.ToLower(strings.TrimSpace(b)))
		}
	}
	return cfg, cfg.Validate()
}

// startServer serves the built-in game and returns its URL.
func startServer(logger logrus.FieldLogger, host string) (string, func(), error) {
	l, err := net.Listen("tcp", "0.0.0.0:0")
	if err != nil {
		return "", nil, err
	}
	srv, err := backend.StartServer(backend.Options{Listener: l, Logger: logger})
	if err != nil {
		l.Close()
		return "", nil, err
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
	return fmt.Sprintf("http://%s:%s/", host, port), shutdown, nil
}

func run(ctx context.Context, logger *logrus.Logger, opts *options) error {
	baseURL := opts.baseURL
	timing := e2ehelpers.Timing{}
	if baseURL == "" {
		var shutdown func()
		var err error
		baseURL, shutdown, err = startServer(logger, opts.serveHost)
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
		defer shutdown()
		logger.Infof("Server started at %s", baseURL)
		timing = e2ehelpers.Timing{Hunger: opts.hunger, Energy: time.Hour}
	}

	cfg, err := sessionConfig(opts, baseURL)
	if err != nil {
		return err
	}
	s, err := e2ehelpers.NewSession(ctx, cfg, e2ehelpers.WithLogger(logger))
	if err != nil {
		return err
	}
	defer s.Close()

	logger.Info("Starting screenshot generation...")
	for i, st := range tour(timing) {
		name := fmt.Sprintf("%02d_%s", i+1, st.name)
		err := runAction(ctx, s, name, st.fn, st.timeout(opts.stepTimeout))
		s.RecordStep(name, err)
		if err != nil {
			return err
		}
		s.CaptureScreenshot(ctx, name+".png")
	}
	logger.Infof("Screenshots saved to %s", cfg.OutputDir)
	return nil
}

type step struct {
	name string
	fn   func(ctx context.Context, s *e2ehelpers.Session) error
	// minTimeout overrides --timeout when it is shorter.
	minTimeout time.Duration
}

func (st step) timeout(flag time.Duration) time.Duration {
	return max(flag, st.minTimeout)
}

// tour lists the screens in the order a new player sees them. With the
// game's default hunger timer the game_over step waits at least
// StarvationTimeout.
func tour(timing e2ehelpers.Timing) []step {
	var starvation time.Duration
	if timing.Hunger == 0 {
		starvation = e2ehelpers.StarvationTimeout
	}
	visible := func(sel e2ehelpers.Selector) func(context.Context, *e2ehelpers.Session) error {
		return func(ctx context.Context, s *e2ehelpers.Session) error {
			_, err := s.WaitForVisible(ctx, sel, e2ehelpers.StepTimeout)
			return err
		}
	}
	return []step{
		{name: "game_loaded", fn: func(ctx context.Context, s *e2ehelpers.Session) error {
			if err := e2ehelpers.LoadGame(ctx, s, timing); err != nil {
				return err
			}
			return visible(e2ehelpers.SelIntroSkip)(ctx, s)
		}},
		{name: "intro_skipped", fn: e2ehelpers.SkipIntro},
		{name: "name_entered", fn: func(ctx context.Context, s *e2ehelpers.Session) error {
			if err := e2ehelpers.EnterPlayerName(ctx, s, e2ehelpers.DefaultPlayerName); err != nil {
				return err
			}
			return visible(e2ehelpers.SelIntroContinue)(ctx, s)
		}},
		{name: "splash", fn: func(ctx context.Context, s *e2ehelpers.Session) error {
			if err := e2ehelpers.ClickWhenReady(ctx, s, e2ehelpers.SelIntroContinue); err != nil {
				return err
			}
			return visible(e2ehelpers.SelSplash)(ctx, s)
		}},
		{name: "game_started", fn: func(ctx context.Context, s *e2ehelpers.Session) error {
			if err := e2ehelpers.ClickWhenReady(ctx, s, e2ehelpers.SelBegin); err != nil {
				return err
			}
			return visible(e2ehelpers.SelGameUI)(ctx, s)
		}},
		{name: "game_over", minTimeout: starvation, fn: func(ctx context.Context, s *e2ehelpers.Session) error {
			d, ok := ctx.Deadline()
			if !ok {
				return fmt.Errorf("game over step needs a deadline")
			}
			return e2ehelpers.AwaitGameOver(ctx, s, time.Until(d), 0, "game_over_wait")
		}},
	}
}

func debugFailure(ctx context.Context, s *e2ehelpers.Session, name string) {
	log := s.Logger()
	log.Infof("DEBUG: capturing failure info for %s", name)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if text, err := s.Texts(ctx, e2ehelpers.CSS("body")); err != nil {
		log.Warnf("DEBUG: Failed to capture page text: %v", err)
	} else {
		log.Infof("DEBUG: Page text for %s:\n%s", name, strings.Join(text, "\n"))
	}
	s.CaptureScreenshot(ctx, "debug-"+name+".png")
}

// runAction runs fn with a timeout and captures debug info on failure.
func runAction(ctx context.Context, s *e2ehelpers.Session, name string, fn func(context.Context, *e2ehelpers.Session) error, timeout time.Duration) error {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	s.Logger().WithField("step", name).Info("running")
	if err := fn(stepCtx, s); err != nil {
		s.Logger().WithField("step", name).Errorf("Action '%s' failed: %v", name, err)
		debugFailure(ctx, s, name+"-failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
