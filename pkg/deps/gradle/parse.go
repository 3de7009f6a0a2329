package gradle

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/matzehuels/depscan/pkg/deps"
)

var (
	// configHeader matches "testCompileClasspath - Compile classpath for ...".
	configHeader = regexp.MustCompile(`^([A-Za-z][\w]*)(?:\s+-\s+.*)?$`)

	// treeLine matches "+--- g:a:v" and "|    \--- g:a:v -> v2 (*)".
	treeLine = regexp.MustCompile(`^[\s|]*[+\\]---\s+(.+)$`)

	// annotation matches trailing markers such as "(*)", "(c)" or "(n)".
	annotation = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

	// lineComment matches a "//" comment running to the end of the line.
	lineComment = regexp.MustCompile(`(?m)(^|\s)//.*$`)

	// declaration matches a string-notation dependency in a build script,
	// with or without Kotlin DSL parentheses, anywhere a statement can start.
	declaration = regexp.MustCompile(`(?m)(?:^|[\s{;(])(implementation|api|compile|runtimeOnly|compileOnly|testImplementation|testCompile|testRuntimeOnly|testCompileOnly)\s*\(?\s*['"]([^:'"\s]+):([^:'"\s]+):([^'"\s]+)['"]`)
)

// ParseReport parses the output of "gradle dependencies".
//
// Dependencies are attributed to the most recent configuration header; a
// configuration whose name marks it as a test configuration yields dev
// dependencies. For "a:b:1.0 -> 1.2" the resolved version 1.2 is taken.
// Project references are ignored, and a coordinate that appears under both
// prod and test configurations is reported once, as prod.
func ParseReport(out []byte) []deps.Dependency {
	c := deps.NewCollector()
	dev := false

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if m := configHeader.FindStringSubmatch(line); m != nil {
			dev = isTestConfiguration(m[1])
			continue
		}
		m := treeLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if name, version, ok := parseCoordinate(m[1]); ok {
			c.Add(name, version, dev)
		}
	}
	return c.List()
}

// parseCoordinate splits "group:artifact:version [-> resolved] [(*)]".
// An unresolved coordinate ("g:a:1.0 FAILED") keeps its requested version.
func parseCoordinate(s string) (name, version string, ok bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "project ") {
		return "", "", false
	}
	for {
		stripped := annotation.ReplaceAllString(s, "")
		stripped = strings.TrimSpace(strings.TrimSuffix(stripped, "*"))
		stripped = strings.TrimSpace(strings.TrimSuffix(stripped, " FAILED"))
		if stripped == s {
			break
		}
		s = stripped
	}

	resolved := ""
	if left, right, found := strings.Cut(s, " -> "); found {
		s = strings.TrimSpace(left)
		right = strings.TrimSpace(right)
		if i := strings.LastIndex(right, ":"); i >= 0 {
			right = right[i+1:]
		}
		resolved = right
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) >= 3 {
		version = parts[2]
	}
	if resolved != "" {
		version = resolved
	}
	if version == "" {
		return "", "", false
	}
	return parts[0] + ":" + parts[1], version, true
}

func isTestConfiguration(name string) bool {
	return strings.HasPrefix(name, "test") || strings.Contains(name, "Test")
}

// ParseBuildFile scans a build.gradle or build.gradle.kts for string-notation
// declarations such as implementation 'g:a:v' or testImplementation("g:a:v").
func ParseBuildFile(data []byte) []deps.Dependency {
	c := deps.NewCollector()
	data = lineComment.ReplaceAll(data, []byte("$1"))
	for _, m := range declaration.FindAllSubmatch(data, -1) {
		c.Add(string(m[2])+":"+string(m[3]), string(m[4]), isTestConfiguration(string(m[1])))
	}
	return c.List()
}
