// Package manifest parses a bundle's metadata.json and validates the
// bundle's on-disk structure against it. Validation is a pure function over
// the filesystem: it performs no mutation and no store access.
package manifest
