package sink

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/matzehuels/depscan/pkg/deps"
	"github.com/matzehuels/depscan/pkg/errors"
)

func batch(project string, n int) []deps.Dependency {
	out := make([]deps.Dependency, n)
	for i := range out {
		out[i] = deps.Dependency{
			Ecosystem:   deps.NPM,
			ProjectPath: project,
			Name:        fmt.Sprintf("pkg-%d", i),
			Version:     "1.0.0",
			IsDev:       i%2 == 1,
		}
	}
	return out
}

func TestOpen(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"", "*sink.CSV"},
		{"-", "*sink.CSV"},
		{"out/deps.csv", "*sink.CSV"},
		{"deps", "*sink.CSV"},
		{"deps.jsonl", "*sink.JSONL"},
		{"deps.NDJSON", "*sink.JSONL"},
		{"deps.db", "*sink.SQLite"},
		{"deps.sqlite", "*sink.SQLite"},
		{"mongodb://localhost:27017/inventory", "*sink.Mongo"},
		{"mongodb+srv://cluster.example.net/", "*sink.Mongo"},
	}
	for _, tt := range tests {
		s, err := Open(tt.location, Options{})
		if err != nil {
			t.Errorf("Open(%q): %v", tt.location, err)
			continue
		}
		if got := fmt.Sprintf("%T", s); got != tt.want {
			t.Errorf("Open(%q) = %s, want %s", tt.location, got, tt.want)
		}
	}

	if _, err := Open("deps.xlsx", Options{}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Open(xlsx) err = %v, want UNSUPPORTED", err)
	}
}

func TestNewMongo(t *testing.T) {
	tests := []struct {
		location   string
		database   string
		collection string
	}{
		{"mongodb://localhost:27017", DefaultMongoDatabase, DefaultMongoCollection},
		{"mongodb://localhost:27017/inventory", "inventory", DefaultMongoCollection},
		{"mongodb://u:p@localhost/inv?collection=deps&authSource=admin", "inv", "deps"},
	}
	for _, tt := range tests {
		m, err := NewMongo(tt.location, "run")
		if err != nil {
			t.Fatalf("NewMongo(%q): %v", tt.location, err)
		}
		if m.Database() != tt.database || m.Collection() != tt.collection {
			t.Errorf("NewMongo(%q) = %s.%s, want %s.%s", tt.location, m.Database(), m.Collection(), tt.database, tt.collection)
		}
		if bytes.Contains([]byte(m.uri), []byte("collection=")) {
			t.Errorf("collection parameter leaked into driver uri %s", m.uri)
		}
	}
}

func TestCSVFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "deps.csv")
	s := NewCSV(path)

	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, []deps.Dependency{
		{Ecosystem: deps.Composer, ProjectPath: "composer.json", Name: "guzzlehttp/guzzle", Version: "^7.0"},
		{Ecosystem: deps.Maven, ProjectPath: "api/pom.xml", Name: "junit:junit", Version: "", IsDev: true},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, nil); err != nil {
		t.Fatal(err)
	}
	location, err := s.Finalize(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(location) {
		t.Errorf("location %q is not absolute", location)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		Columns,
		{"composer", "composer.json", "guzzlehttp/guzzle", "^7.0", "false"},
		{"maven", "api/pom.xml", "junit:junit", "", "true"},
	}
	if fmt.Sprint(rows) != fmt.Sprint(want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestFileOutputIsLocked(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "deps.jsonl")

	first := NewJSONL(path)
	if err := first.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := NewCSV(path).Initialize(ctx); !errors.Is(err, errors.ErrCodeSink) {
		t.Fatalf("second writer err = %v, want SINK", err)
	}
	if _, err := first.Finalize(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".lock"); !os.IsNotExist(err) {
		t.Errorf("lock file left behind: %v", err)
	}

	again := NewJSONL(path)
	if err := again.Initialize(ctx); err != nil {
		t.Fatalf("reopen after finalize: %v", err)
	}
	if _, err := again.Finalize(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestCSVAppendBeforeInitialize(t *testing.T) {
	s := NewCSV(filepath.Join(t.TempDir(), "x.csv"))
	if err := s.Append(context.Background(), batch("p", 1)); !errors.Is(err, errors.ErrCodeSink) {
		t.Errorf("err = %v, want SINK", err)
	}
}

func TestCSVConcurrentAppendsStayContiguous(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	s := NewCSVWriter(&buf, "stdout")
	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	const projects, perProject = 20, 50
	var wg sync.WaitGroup
	for i := 0; i < projects; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Append(ctx, batch(fmt.Sprintf("p%02d/package.json", i), perProject)); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	if loc, err := s.Finalize(ctx); err != nil || loc != "stdout" {
		t.Fatalf("Finalize = %q, %v", loc, err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	rows = rows[1:]
	if len(rows) != projects*perProject {
		t.Fatalf("rows = %d, want %d", len(rows), projects*perProject)
	}
	for i := 0; i < len(rows); i += perProject {
		project := rows[i][1]
		for j := i; j < i+perProject; j++ {
			if rows[j][1] != project {
				t.Fatalf("row %d belongs to %s inside the block of %s", j, rows[j][1], project)
			}
		}
	}
}

func TestJSONL(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "deps.jsonl")
	s := NewJSONL(path)
	if err := s.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, batch("web/package.json", 3)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Finalize(ctx); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		records = append(records, r)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if r := records[1]; r.ProjectType != "npm" || r.ProjectPath != "web/package.json" || r.DependencyName != "pkg-1" || !r.IsDev {
		t.Errorf("record = %+v", r)
	}
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "deps.db")

	for run := 0; run < 2; run++ {
		s := NewSQLite(path, fmt.Sprintf("run-%d", run))
		if err := s.Initialize(ctx); err != nil {
			t.Fatal(err)
		}
		if err := s.Append(ctx, batch("a/package.json", 4)); err != nil {
			t.Fatal(err)
		}
		if err := s.Append(ctx, batch("b/package.json", 2)); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Finalize(ctx); err != nil {
			t.Fatal(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var total, dev int
	if err := db.QueryRow(`SELECT COUNT(*), SUM(is_dev) FROM dependencies WHERE run_id = 'run-1'`).Scan(&total, &dev); err != nil {
		t.Fatal(err)
	}
	if total != 6 || dev != 3 {
		t.Errorf("run-1: total = %d, dev = %d; want 6, 3", total, dev)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM dependencies`).Scan(&total); err != nil {
		t.Fatal(err)
	}
	if total != 12 {
		t.Errorf("total rows = %d, want 12 across two runs", total)
	}
}
