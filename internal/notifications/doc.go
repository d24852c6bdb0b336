// Package notifications publishes pipeline lifecycle events to an ntfy
// topic. Without a configured topic every notification is a no-op, so
// callers never need to branch on whether notifications are enabled.
package notifications
