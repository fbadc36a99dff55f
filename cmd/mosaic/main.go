// Package main provides the entry point for the mosaic CLI.
//
// Mosaic is an OSINT profile collector. It gathers public profile data
// for a username across multiple platforms and derives a cross-platform
// exposure fingerprint.
//
// Usage:
//
//	mosaic collect <username>
//	mosaic analyze <username>
//
// See --help for all available options.
package main

// main is the entry point for mosaic.
func main() {
	Execute()
}
