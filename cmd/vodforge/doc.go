// Command vodforge runs the upload ingest daemon and provides inspection
// utilities for the content records it maintains.
package main
