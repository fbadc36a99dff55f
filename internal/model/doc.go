// Package model defines the core data structures used throughout mosaic.
//
// This package contains the following main types:
//   - Platform: Identifies a collectable social or publishing platform
//   - ProfileReport: The main collection result structure
//   - PlatformProfile: Normalized profile data from one platform
//   - Fingerprint: Derived exposure signals and dimension scores
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (collector, fingerprint, report) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
