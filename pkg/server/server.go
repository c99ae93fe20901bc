// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NVIDIA/capmon/pkg/defaults"
	"github.com/NVIDIA/capmon/pkg/logging"
)

// Server serves metrics and health endpoints.
type Server struct {
	httpServer *http.Server
	ready      func() bool
	instance   string
}

// Option configures a Server.
type Option func(*Server)

// WithReadiness sets the function consulted by /ready.
func WithReadiness(fn func() bool) Option {
	return func(s *Server) {
		s.ready = fn
	}
}

// WithInstanceID sets the identifier reported by /health.
func WithInstanceID(id string) Option {
	return func(s *Server) {
		s.instance = id
	}
}

// New creates a server listening on addr.
func New(addr string, opts ...Option) *Server {
	s := &Server{
		ready:    func() bool { return true },
		instance: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadTimeout:       defaults.ServerReadTimeout,
		ReadHeaderTimeout: defaults.ServerReadHeaderTimeout,
		WriteTimeout:      defaults.ServerWriteTimeout,
		IdleTimeout:       defaults.ServerIdleTimeout,
		ErrorLog:          logging.NewLogLogger(slog.LevelWarn),
	}
	return s
}

// routes configures all HTTP routes and middleware
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", s.metricsMiddleware(s.handleHealth))
	mux.HandleFunc("/ready", s.metricsMiddleware(s.handleReady))
	return mux
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
// The caller binds ln so that address errors surface before sampling starts.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	slog.Info("metrics server listening", slog.String("address", ln.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.WithoutCancel(ctx))
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, defaults.ServerShutdownTimeout)
	defer cancel()

	slog.Debug("shutting down metrics server")
	return s.httpServer.Shutdown(shutdownCtx)
}
