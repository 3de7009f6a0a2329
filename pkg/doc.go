// Package pkg provides the libraries behind depscan, a dependency inventory
// tool for polyglot source trees.
//
// # Overview
//
// depscan walks a directory, recognizes npm, Maven, Gradle and Composer
// projects by their manifests, and records every dependency each project
// declares or resolves. The pkg directory is organized into three areas:
//
//  1. Discovery - [walk] and [detect] turn a tree into a stream of projects
//  2. Extraction - [deps] and the [deps/ecosystems] table run per-ecosystem
//     strategy chains (resolver output, then lockfile, then manifest)
//  3. Delivery - [pipeline] schedules the work, [cache] skips unchanged
//     projects and [sink] writes the records
//
// # Architecture
//
// The data flow of a scan:
//
//	source tree
//	     ↓
//	[walk] package (regular files, symlinks never followed)
//	     ↓
//	[detect] package (manifest basename -> Project)
//	     ↓
//	[pipeline] package (bounded worker pool, per-project isolation)
//	     ↓
//	[deps/ecosystems] table -> npm | maven | gradle | composer chain
//	     ↓
//	[sink] package (CSV, JSON Lines, SQLite, MongoDB)
//
// # Quick Start
//
//	table := ecosystems.New(deps.Options{SkipInstall: true})
//	out, _ := sink.Open("deps.csv", sink.Options{})
//	summary, err := pipeline.NewRunner(table, nil, pipeline.Options{}).Execute(ctx, ".", out)
//
// Extract a single project without the orchestrator:
//
//	p := deps.NewProject(deps.NPM, "/src/repo", "web/package.json")
//	ex, _ := ecosystems.New(deps.Options{}).Extractor(deps.NPM)
//	res := ex.Extract(ctx, p)
//	fmt.Println(res.Strategy, len(res.Dependencies))
//
// # Supporting Packages
//
// [errors] - coded errors (INVALID_PATH, TOOL_FAILED, TIMEOUT, PARSE, ...).
//
// [logging] - a charmbracelet/log logger threaded through context.Context.
//
// [shell] - external commands with timeouts and process-group kill.
//
// [config] - the .depscan.toml file.
//
// [observability] - hooks for scan, project, strategy, cache and command events.
//
// # Testing
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/deps/...         # Strategy chains only
//
// External package managers are never required: tests script them with
// [shell/shelltest].
//
// [walk]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/walk
// [detect]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/detect
// [deps]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/deps
// [deps/ecosystems]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/deps/ecosystems
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/cache
// [sink]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/sink
// [errors]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/errors
// [logging]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/logging
// [shell]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/shell
// [config]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/observability
// [shell/shelltest]: https://pkg.go.dev/github.com/matzehuels/depscan/pkg/shell/shelltest
package pkg
