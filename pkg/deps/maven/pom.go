package maven

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

// pomProject is the subset of a POM depscan reads. Only the project's own
// <dependencies> block is matched, not <dependencyManagement>.
type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

// pomProjects is the root of a multi-module effective POM.
type pomProjects struct {
	Projects []pomProject `xml:"project"`
}

// ParseFile reads a pom.xml or an effective POM, which may hold a single
// <project> or a <projects> list for multi-module builds.
func ParseFile(path string) ([]deps.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode %s", path)
	}
	return ds, nil
}

// Parse decodes POM XML into dependencies, merging duplicate coordinates
// across modules. A coordinate seen in any non-test scope is not dev.
func Parse(data []byte) ([]deps.Dependency, error) {
	root, err := rootElement(data)
	if err != nil {
		return nil, err
	}

	var projects []pomProject
	switch root {
	case "projects":
		var ps pomProjects
		if err := xml.Unmarshal(data, &ps); err != nil {
			return nil, err
		}
		projects = ps.Projects
	case "project":
		var p pomProject
		if err := xml.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		projects = []pomProject{p}
	default:
		return nil, errors.New(errors.ErrCodeParse, "unexpected root element <%s>", root)
	}

	c := deps.NewCollector()
	for _, p := range projects {
		for _, d := range p.Dependencies {
			if d.GroupID == "" || d.ArtifactID == "" {
				continue
			}
			c.Add(d.GroupID+":"+d.ArtifactID, strings.TrimSpace(d.Version), strings.TrimSpace(d.Scope) == "test")
		}
	}
	return c.List(), nil
}

// rootElement returns the local name of the document's first element.
func rootElement(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", errors.New(errors.ErrCodeParse, "empty document")
		}
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}
