// Package cli implements the command-line interface for capmon.
//
// # Overview
//
// capmon samples host CPU and memory utilization on a fixed cadence, scans
// the kernel log for a fault signature, and appends one CSV row per sample to
// an output file. It runs until interrupted.
//
// # Usage
//
//	capmon [--output FILE] [--pause 1s] [--probe-window 1s] [--count N]
//
// # Flags
//
//	--config, -c         YAML configuration file
//	--output, -o         CSV output file (default: cheri_memory_anomalies.csv)
//	--pause              delay after each sample (default: 1s)
//	--probe-window       CPU measurement window, 0 for non-blocking (default: 1s)
//	--fetch-timeout      bound on one kernel log query (default: 5s)
//	--signature          fault signature to match (default: "capability fault")
//	--kernel-log-cmd     kernel log query command (default: dmesg)
//	--kernel-log-file    read the kernel log from a file instead of a command
//	--metrics-addr       serve /metrics, /health and /ready on this address
//	--count              stop after N samples (default: run until interrupted)
//	--no-sync            do not fsync after each row
//	--log-level          debug, info, warn, error (default: info)
//
// Flags that are set explicitly override values from the configuration file.
//
// # Signals
//
// SIGINT and SIGTERM stop the loop between samples. The process prints
// "Monitoring interrupted by user." and exits with status 0. Probe, sink and
// configuration errors exit with status 1.
package cli
