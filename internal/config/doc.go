// Package config loads, normalizes, and validates the TOML configuration
// for scribe.
//
// A Config is constructed once at process start and passed by reference into
// each component constructor; nothing reads configuration through package
// state. Path fields are expanded (~ and relative segments) during Load so
// downstream code can treat them as absolute.
package config
