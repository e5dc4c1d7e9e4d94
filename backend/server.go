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

// Package backend serves the game page the browser scenarios run against.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/ttbt-io/voidascendant/frontend"
)

// Options represent server options.
type Options struct {
	Addr     string
	Listener net.Listener
	Debug    bool
	Logger   logrus.FieldLogger

	// Default timer periods handed to the page through /js/timing.js. Zero
	// leaves the game's built-in values in place. Query parameters on the
	// page URL still take precedence.
	HungerInterval time.Duration
	EnergyInterval time.Duration

	// Assets overrides the embedded frontend.
	Assets fs.FS
}

// Server represents the running server instance.
type Server struct {
	httpServer *http.Server
	log        logrus.FieldLogger
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}

// StartServer starts the web server in the background.
func StartServer(opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	handler, err := NewServerHandler(opts)
	if err != nil {
		return nil, err
	}
	httpServer := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln := opts.Listener
	if ln == nil {
		if ln, err = net.Listen("tcp", opts.Addr); err != nil {
			return nil, fmt.Errorf("listen %s: %w", opts.Addr, err)
		}
	}
	log.Infof("Starting HTTP server on %s...", ln.Addr())
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Server error: %v", err)
		}
	}()
	return &Server{httpServer: httpServer, log: log}, nil
}

// NewServerHandler creates the HTTP handler for the game page.
func NewServerHandler(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	assets := opts.Assets
	if assets == nil {
		assets = frontend.FS
	}
	if _, err := fs.Stat(assets, "index.html"); err != nil {
		return nil, fmt.Errorf("frontend assets: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cacheControlMiddleware)
	r.Use(securityMiddleware)
	r.Use(loggingMiddleware(log, opts.Debug))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Get("/js/timing.js", timingHandler(opts.HungerInterval, opts.EnergyInterval))
	r.Handle("/*", contentTypeMiddleware(http.FileServerFS(assets)))
	return r, nil
}
