// Package pipeline drives bundles through the staged upload lifecycle:
// detection in the pending area, relocation into processing, validation,
// transcoding, record synchronization, and final routing to the completed
// or failed area. Bundle and episode work both run on bounded worker pools;
// one episode failing never aborts its siblings.
package pipeline
