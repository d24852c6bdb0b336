// Package services defines the shared error taxonomy used to classify
// pipeline failures and route bundles to their terminal stage.
package services
