// Package stagemove relocates bundle trees between stage roots. Relocation
// is copy, verify, then delete rather than rename so that a crash mid-move
// leaves a recoverable tree: re-running the same relocation heals a partial
// copy instead of duplicating or losing files.
package stagemove
