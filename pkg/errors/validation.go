package errors

import (
	"os"
	"strings"
	"unicode"
)

// ValidateRoot checks that a scan root exists and is a directory.
// A missing root is the one fatal condition of a scan, so the returned error
// always carries ErrCodeInvalidPath.
func ValidateRoot(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "scan root cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return New(ErrCodeInvalidPath, "scan root %s does not exist", path)
	}
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "stat scan root %s", path)
	}
	if !info.IsDir() {
		return New(ErrCodeInvalidPath, "scan root %s is not a directory", path)
	}
	return nil
}

// MaxDependencyNameLen is the longest accepted dependency name, in bytes.
const MaxDependencyNameLen = 512

// ValidateDependencyName rejects names that cannot be a real package
// coordinate: blank, longer than MaxDependencyNameLen, or containing control
// characters. Strategies drop such entries instead of emitting them.
func ValidateDependencyName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return New(ErrCodeInvalidInput, "dependency name cannot be empty")
	case len(name) > MaxDependencyNameLen:
		return New(ErrCodeInvalidInput, "dependency name too long (%d > %d bytes)", len(name), MaxDependencyNameLen)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidInput, "dependency name %q contains control characters", name)
	}
	return nil
}
