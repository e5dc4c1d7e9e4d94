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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	cdpstorage "github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/sirupsen/logrus"
)

var chromePaths = []string{
	"headless_shell",
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"/usr/bin/google-chrome",
	"chrome",
	"chrome.exe",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	filepath.Join(os.Getenv("USERPROFILE"), `AppData\Local\Google\Chrome\Application\chrome.exe`),
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
}

var edgePaths = []string{
	"microsoft-edge",
	"microsoft-edge-stable",
	"/usr/bin/microsoft-edge",
	"msedge",
	"msedge.exe",
	`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
	`C:\Program Files\Microsoft\Edge\Application\msedge.exe`,
	"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
}

// execLauncher starts a local Chromium-family browser.
type execLauncher struct {
	name       string
	candidates []string
}

func (l execLauncher) Name() string { return l.name }

func (l execLauncher) Launch(ctx context.Context, cfg Config, log logrus.FieldLogger) (Driver, error) {
	path, err := lookPath(l.candidates)
	if err != nil {
		return nil, err
	}
	log.Debugf("using executable %s", path)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(path),
		chromedp.Flag("headless", cfg.Headless),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.DisableDevShmUsage {
		opts = append(opts, chromedp.Flag("disable-dev-shm-usage", true))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	return newChromeDriver(ctx, allocCtx, cancelAlloc, cfg, log)
}

// remoteLauncher attaches to an already running browser through its
// DevTools endpoint.
type remoteLauncher struct {
	url string
}

func (l remoteLauncher) Name() string { return "remote" }

func (l remoteLauncher) Launch(ctx context.Context, cfg Config, log logrus.FieldLogger) (Driver, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(context.Background(), l.url)
	return newChromeDriver(ctx, allocCtx, cancelAlloc, cfg, log)
}

type chromeDriver struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	log         logrus.FieldLogger

	mu            sync.Mutex
	consoleErrors []string
}

func newChromeDriver(ctx, allocCtx context.Context, cancelAlloc context.CancelFunc, cfg Config, log logrus.FieldLogger) (*chromeDriver, error) {
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(log.Debugf),
		chromedp.WithErrorf(log.Warnf),
	)
	d := &chromeDriver{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		log:         log,
	}
	d.listen()

	// The first Run allocates the browser; its context must be the tab
	// context itself or the browser would die with the launch deadline.
	errc := make(chan error, 1)
	go func() {
		errc <- chromedp.Run(tabCtx, chromedp.EmulateViewport(int64(cfg.WindowWidth), int64(cfg.WindowHeight)))
	}()
	select {
	case err := <-errc:
		if err != nil {
			cancelTab()
			cancelAlloc()
			return nil, fmt.Errorf("start browser: %w", err)
		}
	case <-ctx.Done():
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", ctx.Err())
	}
	return d, nil
}

func (d *chromeDriver) listen() {
	chromedp.ListenTarget(d.ctx, func(ev any) {
		switch ev := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			if ev.Type != runtime.APITypeError {
				return
			}
			args := make([]string, len(ev.Args))
			for i, arg := range ev.Args {
				args[i] = string(arg.Value)
			}
			d.addConsoleError("console error: " + strings.Join(args, " "))
		case *runtime.EventExceptionThrown:
			msg := ev.ExceptionDetails.Text
			if ev.ExceptionDetails.Exception != nil && ev.ExceptionDetails.Exception.Description != "" {
				msg = ev.ExceptionDetails.Exception.Description
			}
			d.addConsoleError("exception: " + msg)
		}
	})
}

func (d *chromeDriver) addConsoleError(msg string) {
	d.log.Warnf("JS %s", msg)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.consoleErrors = append(d.consoleErrors, msg)
}

func (d *chromeDriver) ConsoleErrors() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.consoleErrors...)
}

// run executes actions on the tab, bounded by ctx.
func (d *chromeDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(d.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (d *chromeDriver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url))
}

const stateJS = `(function(by, value) {
	const none = {found: false, visible: false, enabled: false, text: ''};
	let el = null;
	try {
		if (by === 'xpath') {
			el = document.evaluate(value, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		} else {
			el = document.querySelector(value);
		}
	} catch (e) {
		return none;
	}
	if (!el) return none;
	const style = window.getComputedStyle(el);
	const visible = el.offsetHeight !== 0 && style.display !== 'none' && style.visibility !== 'hidden' && style.opacity !== '0';
	const enabled = !el.disabled && style.pointerEvents !== 'none';
	const text = (el.innerText !== undefined ? el.innerText : el.textContent) || '';
	return {found: true, visible: visible, enabled: enabled, text: text.trim()};
})(%s, %s)`

const textsJS = `(function(by, value) {
	const out = [];
	if (by === 'xpath') {
		const snap = document.evaluate(value, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		for (let i = 0; i < snap.snapshotLength; i++) {
			const el = snap.snapshotItem(i);
			out.push(((el.innerText !== undefined ? el.innerText : el.textContent) || '').trim());
		}
		return out;
	}
	document.querySelectorAll(value).forEach(el => out.push((el.innerText || '').trim()));
	return out;
})(%s, %s)`

// clearStorageTypes lists the Storage.StorageType values ClearStorage drops.
const clearStorageTypes = "local_storage"

func jsCall(tmpl string, sel Selector) (string, error) {
	query, isXPath := sel.Query()
	by := "css"
	if isXPath {
		by = "xpath"
	}
	b, err := json.Marshal(by)
	if err != nil {
		return "", err
	}
	v, err := json.Marshal(query)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(tmpl, b, v), nil
}

func (d *chromeDriver) State(ctx context.Context, sel Selector) (ElementState, error) {
	js, err := jsCall(stateJS, sel)
	if err != nil {
		return ElementState{}, err
	}
	var st ElementState
	if err := d.run(ctx, chromedp.Evaluate(js, &st)); err != nil {
		return ElementState{}, err
	}
	return st, nil
}

func (d *chromeDriver) Texts(ctx context.Context, sel Selector) ([]string, error) {
	js, err := jsCall(textsJS, sel)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := d.run(ctx, chromedp.Evaluate(js, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

func queryOpt(sel Selector) (string, chromedp.QueryOption) {
	query, isXPath := sel.Query()
	if isXPath {
		return query, chromedp.BySearch
	}
	return query, chromedp.ByQuery
}

func (d *chromeDriver) Click(ctx context.Context, sel Selector) error {
	query, by := queryOpt(sel)
	return d.run(ctx, chromedp.Click(query, by, chromedp.NodeVisible))
}

func (d *chromeDriver) SendKeys(ctx context.Context, sel Selector, text string) error {
	query, by := queryOpt(sel)
	return d.run(ctx, chromedp.SendKeys(query, chromeKeys(text), by, chromedp.NodeVisible))
}

func chromeKeys(text string) string {
	return strings.ReplaceAll(text, KeyEnter, kb.Enter)
}

// ClearStorage drops local storage for origin. Session storage belongs to the
// tab, and every chromeDriver owns a fresh one.
func (d *chromeDriver) ClearStorage(ctx context.Context, origin string) error {
	return d.run(ctx, cdpstorage.ClearDataForOrigin(origin, clearStorageTypes))
}

func (d *chromeDriver) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := d.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *chromeDriver) Process() *os.Process {
	c := chromedp.FromContext(d.ctx)
	if c == nil || c.Browser == nil {
		return nil
	}
	return c.Browser.Process()
}

func (d *chromeDriver) Close() error {
	err := chromedp.Cancel(d.ctx)
	d.cancelTab()
	d.cancelAlloc()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
