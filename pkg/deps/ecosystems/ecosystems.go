// Package ecosystems maps each deps.Ecosystem to its extractor.
//
// The table is fixed at compile time; there is no runtime registration.
//
//	table := ecosystems.New(deps.Options{SkipInstall: true})
//	ex, ok := table.Extractor(project.Ecosystem)
package ecosystems

import (
	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/deps/composer"
	"github.com/matzehuels/depscan/pkg/deps/gradle"
	"github.com/matzehuels/depscan/pkg/deps/maven"
	"github.com/matzehuels/depscan/pkg/deps/npm"
)

// Table holds one extractor per supported ecosystem.
type Table struct {
	extractors [deps.Composer + 1]deps.Extractor
}

// New builds the dispatch table, sharing opts across all extractors.
func New(opts deps.Options) *Table {
	opts = opts.WithDefaults()
	t := &Table{}
	t.extractors[deps.NPM] = npm.New(opts)
	t.extractors[deps.Maven] = maven.New(opts)
	t.extractors[deps.Gradle] = gradle.New(opts)
	t.extractors[deps.Composer] = composer.New(opts)
	return t
}

// Extractor returns the extractor for eco.
func (t *Table) Extractor(eco deps.Ecosystem) (deps.Extractor, bool) {
	if !eco.Valid() {
		return nil, false
	}
	return t.extractors[eco], true
}

// Strategies returns the strategy names of eco's chain, in priority order.
func (t *Table) Strategies(eco deps.Ecosystem) []string {
	ex, ok := t.Extractor(eco)
	if !ok {
		return nil
	}
	if s, ok := ex.(interface{ Strategies() []string }); ok {
		return s.Strategies()
	}
	return nil
}
