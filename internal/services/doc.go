// Package services defines the shared error taxonomy for external tool
// integrations and holds the clients for those tools in subpackages.
//
// Stage code wraps failures with one of the exported sentinel markers so the
// pipeline can distinguish transient per-item failures (recorded in the store,
// never fatal) from structural ones (abort the invocation).
package services
