// Package pipeline provides a framework for executing collection steps in
// sequence.
//
// The pipeline pattern is used to process a subject through multiple
// stages: per-platform collection followed by fingerprint analysis. Each
// stage is implemented as a Step that receives the current report and can
// modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of platforms without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running collections
// 4. It enables potential parallelization of independent steps in the future
//
// The pipeline supports both individual subjects and batch processing with
// concurrency control using errgroup.
package pipeline
