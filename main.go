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

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ttbt-io/voidascendant/backend"
)

var (
	addr           = flag.String("addr", ":8000", "The TCP address to listen to")
	debugMode      = flag.Bool("debug", false, "Enable debug mode")
	hungerInterval = flag.Duration("hunger-interval", 0, "Default hunger period. Zero keeps the game's value.")
	energyInterval = flag.Duration("energy-interval", 0, "Default energy drain period. Zero keeps the game's value.")
)

// main serves the game page until interrupted.
func main() {
	flag.Parse()

	log := logrus.New()
	if *debugMode {
		log.SetLevel(logrus.DebugLevel)
	}

	server, err := backend.StartServer(backend.Options{
		Addr:           *addr,
		Debug:          *debugMode,
		Logger:         log,
		HungerInterval: *hungerInterval,
		EnergyInterval: *energyInterval,
	})
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Shutdown error: %v", err)
	} else {
		log.Info("Gracefully stopped.")
	}
}
