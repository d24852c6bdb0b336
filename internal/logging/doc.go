// Package logging builds the slog loggers used across the pipeline and
// provides the standardized attribute helpers and field names shared by
// every component.
package logging
