// Package config provides configuration structures and utilities for mosaic.
// It defines the main configuration options for platform collection,
// credentials loading, and report generation preferences.
package config
