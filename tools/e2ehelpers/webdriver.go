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
	"net"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/firefox"
)

// webDriverLauncher drives Firefox or Safari through the W3C WebDriver
// protocol. Without Config.WebDriverURL, Firefox gets a local geckodriver.
type webDriverLauncher struct {
	name string
}

func (l webDriverLauncher) Name() string { return l.name }

func (l webDriverLauncher) Launch(ctx context.Context, cfg Config, log logrus.FieldLogger) (Driver, error) {
	caps := selenium.Capabilities{"browserName": l.name}
	if l.name == BrowserFirefox {
		var args []string
		if cfg.Headless {
			args = append(args, "-headless")
		}
		caps.AddFirefox(firefox.Capabilities{Args: args})
	}

	endpoint := cfg.WebDriverURL
	var service *selenium.Service
	if endpoint == "" {
		if l.name != BrowserFirefox {
			return nil, fmt.Errorf("%s needs a webdriver url", l.name)
		}
		if _, err := lookPath([]string{"firefox", "firefox.exe", "/Applications/Firefox.app/Contents/MacOS/firefox"}); err != nil {
			return nil, fmt.Errorf("firefox: %w", err)
		}
		gecko, err := lookPath([]string{"geckodriver", "geckodriver.exe"})
		if err != nil {
			return nil, fmt.Errorf("geckodriver: %w", err)
		}
		port, err := freePort()
		if err != nil {
			return nil, err
		}
		service, err = selenium.NewGeckoDriverService(gecko, port)
		if err != nil {
			return nil, fmt.Errorf("start geckodriver: %w", err)
		}
		endpoint = fmt.Sprintf("http://127.0.0.1:%d", port)
		log.Debugf("geckodriver listening on %s", endpoint)
	}
	var stopper serviceStopper
	if service != nil {
		stopper = service
	}

	wd, err := do(ctx, func() (selenium.WebDriver, error) {
		wd, err := selenium.NewRemote(caps, endpoint)
		if err != nil {
			return nil, fmt.Errorf("new webdriver session: %w", err)
		}
		if err := wd.ResizeWindow("", cfg.WindowWidth, cfg.WindowHeight); err != nil {
			wd.Quit()
			return nil, fmt.Errorf("resize window: %w", err)
		}
		// Nobody is waiting for a session that arrives after ctx ended.
		if err := ctx.Err(); err != nil {
			wd.Quit()
			return nil, err
		}
		return wd, nil
	})
	if err != nil {
		stopService(stopper)
		return nil, err
	}
	return &webDriver{wd: wd, service: stopper}, nil
}

type serviceStopper interface {
	Stop() error
}

func stopService(s serviceStopper) {
	if s != nil {
		s.Stop()
	}
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("find free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// do runs a blocking WebDriver call and stops waiting for it when ctx ends.
// The selenium client has no notion of deadlines, so an abandoned call
// finishes in the background.
func do[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v: v, err: err}
	}()
	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func doErr(ctx context.Context, fn func() error) error {
	_, err := do(ctx, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

type webDriver struct {
	wd      selenium.WebDriver
	service serviceStopper
}

func seleniumBy(sel Selector) (string, string) {
	query, isXPath := sel.Query()
	if isXPath {
		return selenium.ByXPATH, query
	}
	return selenium.ByCSSSelector, query
}

// first returns the first match or nil. FindElements does not fail when
// nothing matches.
func (d *webDriver) first(sel Selector) (selenium.WebElement, error) {
	by, value := seleniumBy(sel)
	elems, err := d.wd.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, nil
	}
	return elems[0], nil
}

func (d *webDriver) Navigate(ctx context.Context, url string) error {
	return doErr(ctx, func() error { return d.wd.Get(url) })
}

func (d *webDriver) State(ctx context.Context, sel Selector) (ElementState, error) {
	return do(ctx, func() (ElementState, error) {
		el, err := d.first(sel)
		if err != nil || el == nil {
			return ElementState{}, err
		}
		st := ElementState{Found: true}
		if st.Visible, err = el.IsDisplayed(); err != nil {
			return ElementState{}, err
		}
		if st.Enabled, err = el.IsEnabled(); err != nil {
			return ElementState{}, err
		}
		text, err := el.Text()
		if err != nil {
			return ElementState{}, err
		}
		st.Text = strings.TrimSpace(text)
		return st, nil
	})
}

func (d *webDriver) Texts(ctx context.Context, sel Selector) ([]string, error) {
	return do(ctx, func() ([]string, error) {
		by, value := seleniumBy(sel)
		elems, err := d.wd.FindElements(by, value)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(elems))
		for _, el := range elems {
			text, err := el.Text()
			if err != nil {
				return nil, err
			}
			out = append(out, strings.TrimSpace(text))
		}
		return out, nil
	})
}

func (d *webDriver) Click(ctx context.Context, sel Selector) error {
	return doErr(ctx, func() error {
		el, err := d.first(sel)
		if err != nil {
			return err
		}
		if el == nil {
			return fmt.Errorf("no node for %s", sel)
		}
		return el.Click()
	})
}

func (d *webDriver) SendKeys(ctx context.Context, sel Selector, text string) error {
	return doErr(ctx, func() error {
		el, err := d.first(sel)
		if err != nil {
			return err
		}
		if el == nil {
			return fmt.Errorf("no node for %s", sel)
		}
		return el.SendKeys(webDriverKeys(text))
	})
}

func webDriverKeys(text string) string {
	return strings.ReplaceAll(text, KeyEnter, selenium.EnterKey)
}

// ClearStorage loads origin so its storage is reachable from script.
func (d *webDriver) ClearStorage(ctx context.Context, origin string) error {
	if err := d.Navigate(ctx, origin); err != nil {
		return err
	}
	return doErr(ctx, func() error {
		_, err := d.wd.ExecuteScript("window.localStorage.clear(); window.sessionStorage.clear();", nil)
		return err
	})
}

func (d *webDriver) Screenshot(ctx context.Context) ([]byte, error) {
	return do(ctx, d.wd.Screenshot)
}

func (d *webDriver) ConsoleErrors() []string { return nil }

func (d *webDriver) Close() error {
	err := d.wd.Quit()
	if d.service != nil {
		err = errors.Join(err, d.service.Stop())
	}
	return err
}
