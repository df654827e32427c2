// Package archive persists raw search responses as blobs so an ingestion
// cycle can be audited or replayed later.
package archive

import "context"

// NoOp discards blobs. Used when archival is disabled.
type NoOp struct{}

// Store drops the data and returns an empty URI.
func (NoOp) Store(_ context.Context, _ string, _ []byte) (string, error) {
	return "", nil
}

// Close is a no-op.
func (NoOp) Close() error { return nil }
