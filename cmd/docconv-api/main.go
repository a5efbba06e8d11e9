// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Command docconv-api serves document conversion over HTTP. Uploads arrive
// as multipart forms, converted documents come back as attachments, and
// failures come back as JSON with a failure kind and per-strategy attempt
// log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	docconv "github.com/drag9988/Render-Backend-sub001"
	"github.com/drag9988/Render-Backend-sub001/internal/config"
)

var version = "dev"

func main() {
	godotenv.Load()

	var configPath string
	var showVersion bool
	flag.StringVar(&configPath, "c", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("docconv-api %s\n", version)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docconv-api: %v\n", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.Log)

	svc := docconv.New(
		docconv.WithWorkingDirectory(cfg.Convert.WorkDir),
		docconv.WithMaxInputBytes(cfg.Convert.MaxUploadBytes),
		docconv.WithTimeouts(docconv.Timeouts{
			Local:  cfg.Convert.LocalTimeout.Std(),
			Remote: cfg.Convert.RemoteTimeout.Std(),
			Script: cfg.Convert.ScriptTimeout.Std(),
		}),
		docconv.WithRemoteEngine(cfg.Convert.RemoteEngineURL),
		docconv.WithSofficePath(cfg.Convert.SofficePath),
		docconv.WithPythonPath(cfg.Convert.PythonPath),
		docconv.WithGhostscriptPath(cfg.Convert.GhostscriptPath),
		docconv.WithQpdfPath(cfg.Convert.QpdfPath),
		docconv.WithLogger(logger),
	)

	srv := &server{
		svc:            svc,
		maxUpload:      cfg.Convert.MaxUploadBytes,
		requireSoffice: cfg.Server.ReadyRequireSoffice,
		logger:         logger,
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(srv, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Str("version", version).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown incomplete")
	}
}

func buildLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
