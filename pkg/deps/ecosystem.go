package deps

import (
	"strings"

	"github.com/matzehuels/depscan/pkg/errors"
)

// Ecosystem identifies a package-manager family.
type Ecosystem int

// Supported ecosystems. The zero value is invalid.
const (
	NPM Ecosystem = iota + 1
	Maven
	Gradle
	Composer
)

var ecosystemNames = [...]string{
	NPM:      "npm",
	Maven:    "maven",
	Gradle:   "gradle",
	Composer: "composer",
}

// String returns the lowercase tag written to output records ("npm", "maven", ...).
func (e Ecosystem) String() string {
	if e.Valid() {
		return ecosystemNames[e]
	}
	return "unknown"
}

// Valid reports whether e is one of the supported ecosystems.
func (e Ecosystem) Valid() bool {
	return e >= NPM && e <= Composer
}

// Ecosystems returns all supported ecosystems in declaration order.
func Ecosystems() []Ecosystem {
	return []Ecosystem{NPM, Maven, Gradle, Composer}
}

// ParseEcosystem converts a tag such as "npm" or "Gradle" to an Ecosystem.
func ParseEcosystem(s string) (Ecosystem, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range Ecosystems() {
		if ecosystemNames[e] == s {
			return e, nil
		}
	}
	return 0, errors.New(errors.ErrCodeUnsupported, "unknown ecosystem %q", s)
}
