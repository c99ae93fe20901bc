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

// Package server exposes the sampler's Prometheus metrics and health probes
// over HTTP.
//
// The server is optional; the sampling loop does not depend on it. It serves:
//
//   - GET /metrics  Prometheus exposition of the default registry
//   - GET /health   liveness, always 200 while the process serves HTTP
//   - GET /ready    200 while the sampling loop is RUNNING, 503 otherwise
//
// # Usage
//
//	ln, err := net.Listen("tcp", ":9464")
//	...
//	srv := server.New(":9464", server.WithReadiness(loop.Running))
//	g.Go(func() error { return srv.Serve(ctx, ln) })
//
// Serve blocks until ctx is canceled and then shuts down gracefully within
// defaults.ServerShutdownTimeout.
package server
