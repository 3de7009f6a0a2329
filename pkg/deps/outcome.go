package deps

import "fmt"

// OutcomeKind discriminates the variants of Outcome.
type OutcomeKind int

const (
	// KindSuccess carries zero or more dependencies.
	KindSuccess OutcomeKind = iota
	// KindNoManifest means the files the strategy needs do not exist.
	KindNoManifest
	// KindSkipped means the project must not be extracted at all.
	KindSkipped
	// KindFailure means the strategy failed and the next one should run.
	KindFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindNoManifest:
		return "no-manifest"
	case KindSkipped:
		return "skipped"
	case KindFailure:
		return "failure"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of a single strategy invocation.
// Exactly one of Dependencies, Reason or Err is meaningful, depending on Kind.
type Outcome struct {
	Kind         OutcomeKind
	Dependencies []Dependency
	Reason       string
	Err          error
}

// Success returns a successful outcome. An empty slice is a valid success
// but does not stop a chain.
func Success(deps []Dependency) Outcome {
	return Outcome{Kind: KindSuccess, Dependencies: deps}
}

// NoManifest returns an outcome signalling the required files are absent.
func NoManifest(reason string) Outcome {
	return Outcome{Kind: KindNoManifest, Reason: reason}
}

// Skipped returns an outcome that ends the chain without extracting.
func Skipped(reason string) Outcome {
	return Outcome{Kind: KindSkipped, Reason: reason}
}

// Failure returns an outcome carrying the cause of a failed strategy.
func Failure(err error) Outcome {
	return Outcome{Kind: KindFailure, Err: err}
}

// Terminal reports whether the chain should stop after this outcome.
func (o Outcome) Terminal() bool {
	switch o.Kind {
	case KindNoManifest, KindSkipped:
		return true
	case KindSuccess:
		return len(o.Dependencies) > 0
	}
	return false
}
