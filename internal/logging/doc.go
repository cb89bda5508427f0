// Package logging constructs the slog loggers used across the pipeline and
// provides attribute helpers plus standardized field names.
//
// Loggers are built once at process start from configuration and injected
// into component constructors; no package in this repository logs through
// process-wide state.
package logging
