// Package config loads, normalizes, and validates the vodforge TOML
// configuration, including the stage root directories, the rendition
// ladder, worker limits, and notification settings.
package config
