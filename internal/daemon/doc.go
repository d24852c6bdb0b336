// Package daemon binds the records store and the ingest pipeline into a
// single lifecycle with flock-based locking to prevent multiple instances
// from processing the same upload root.
package daemon
