// Package errors provides structured error types for the sampler.
//
// Errors that cross the fatal boundary of the sampling loop (probe and sink
// failures, invalid configuration) are returned as *StructuredError so the
// CLI can log the code and context before exiting.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeInternal,
//	    "failed to append sample",
//	    cause,
//	    map[string]any{
//	        "path": "cheri_memory_anomalies.csv",
//	    },
//	)
//
// Use Classify to derive a code from a low-level cause such as a context
// deadline, a missing executable or a permission error.
package errors
