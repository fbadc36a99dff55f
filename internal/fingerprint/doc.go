// Package fingerprint derives exposure signals and behavioral dimension
// scores from collected platform profiles.
//
// The analysis runs entirely over data already in the report; it performs
// no network access. Individual concerns are implemented as analyzers
// coordinated by Analyzer: identity disclosures on a single profile,
// correlations across platforms, and activity observations.
//
// Design decision: We use a coordinator pattern rather than one large
// analysis function because:
//  1. Each analyzer focuses on one class of signal
//  2. Consistent deduplication and counting through the report model
//  3. Allows for easy extension with new analyzers
package fingerprint
