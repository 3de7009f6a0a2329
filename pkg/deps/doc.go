// Package deps is the dependency extraction engine of depscan.
//
// # Overview
//
// A scan discovers [Project] values (one per manifest file) and hands each to
// the [Extractor] registered for its [Ecosystem]. Extractors are built from an
// ordered list of [Strategy] values wrapped in a [Chain]:
//
//	external resolver tool  ->  lockfile  ->  raw manifest
//
// Each strategy returns exactly one [Outcome]:
//
//   - Success: dependencies were produced (possibly none)
//   - NoManifest: the files the chain needs are absent
//   - Skipped: the project must not be extracted (e.g., it is vendored)
//   - Failure: the strategy failed; the chain moves on
//
// The chain stops at the first Success carrying at least one dependency.
// NoManifest and Skipped end the chain immediately. Failures and empty
// successes fall through to the next strategy. A chain that runs out of
// strategies returns an empty [Result], never an error, so one project can
// never abort its siblings.
//
// # Ecosystem Packages
//
// Strategy chains live in subpackages:
//
//   - [github.com/matzehuels/depscan/pkg/deps/npm]: package.json
//   - [github.com/matzehuels/depscan/pkg/deps/maven]: pom.xml
//   - [github.com/matzehuels/depscan/pkg/deps/gradle]: build.gradle(.kts)
//   - [github.com/matzehuels/depscan/pkg/deps/composer]: composer.json
//
// [github.com/matzehuels/depscan/pkg/deps/ecosystems] maps every [Ecosystem]
// to its extractor through a static table.
//
// # External Commands
//
// Strategies that shell out do so through [Options.Runner]. Install steps use
// [Options.InstallTimeout] and are best-effort; resolver steps use
// [Options.ResolveTimeout] and fall through on any error, including a
// timeout.
package deps
