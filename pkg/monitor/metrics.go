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

package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	tickStatusSuccess = "success"
	tickStatusError   = "error"
)

var (
	tickTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capmon_ticks_total",
			Help: "Total number of sampling ticks",
		},
		[]string{"status"}, // success or error
	)

	tickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "capmon_tick_duration_seconds",
			Help:    "Time taken by a sampling tick, excluding the pause",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 1.5, 2, 5, 10},
		},
	)

	kernelLogFetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "capmon_kernel_log_fetch_failures_total",
			Help: "Total number of kernel log fetches that failed",
		},
	)

	anomaliesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "capmon_anomalies_detected_total",
			Help: "Total number of ticks whose kernel log contained the fault signature",
		},
	)

	cpuPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "capmon_cpu_percent",
			Help: "CPU utilization recorded by the last tick",
		},
	)

	memoryUsedMB = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "capmon_memory_used_megabytes",
			Help: "Memory in use recorded by the last tick",
		},
	)
)
