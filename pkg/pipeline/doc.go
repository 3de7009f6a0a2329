// Package pipeline orchestrates a dependency scan.
//
// A scan streams work through four stages:
//
//	walk -> detect -> extract (bounded worker pool) -> sink
//
// The detector hands each project to the pool as soon as its manifest is
// found; when every worker is busy the walk pauses, so memory stays bounded
// by the worker count rather than by the size of the tree. Each project's
// dependencies go to the sink in a single Append as soon as its chain
// finishes.
//
// Failures are isolated per project. A failing, timed-out or panicking
// chain yields an empty result and a debug log line; it never cancels its
// siblings. Only an invalid scan root, a sink that cannot be initialized or
// finalized, or interruption of the whole run is fatal. Sink append failures
// are collected and reported once the scan has finished.
//
// # Usage
//
//	runner := pipeline.NewRunner(ecosystems.New(deps.Options{}), results, pipeline.Options{Workers: 4})
//	summary, err := runner.Execute(ctx, "/path/to/repo", sink)
package pipeline
