// Package notify publishes ingestion events for downstream consumers.
package notify

import "context"

// NoOp drops every event. Used when notifications are disabled.
type NoOp struct{}

// Publish discards the payload and returns an empty id.
func (NoOp) Publish(_ context.Context, _ string, _ any) (string, error) {
	return "", nil
}

// Close is a no-op.
func (NoOp) Close() error { return nil }
