package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReport_Contents(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	src := filepath.Join(dir, "style.css")
	if err := os.WriteFile(src, []byte(".a { color: red }"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	log := filepath.Join(dir, "jssc.log")
	if err := os.WriteFile(log, []byte("log line"), 0644); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	r.Store("final.log", log)
	if err := r.StoreCopy("sources/style.css", src); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	// source changes after copy was made
	if err := os.WriteFile(src, []byte("changed"), 0644); err != nil {
		t.Fatalf("failed to rewrite source: %v", err)
	}
	r.StoreData("trees/style.txt", []byte("a (1)"))
	r.StoreData("trees/style.txt", []byte("a (2)"))
	r.Store("missing.log", filepath.Join(dir, "absent.log"))

	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readArchive(t, conf.Destination)
	if got := files["sources/style.css"]; got != ".a { color: red }" {
		t.Errorf("stored copy = %q", got)
	}
	if got := files["final.log"]; got != "log line" {
		t.Errorf("stored log = %q", got)
	}
	if got := files["trees/style.txt"]; got != "a (1)" {
		t.Errorf("stored data = %q", got)
	}
	if _, ok := files["missing.log"]; ok {
		t.Error("absent file should not be archived")
	}

	var versioned int
	for name := range files {
		if strings.HasPrefix(name, "trees/style.txt-") {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("expected 1 versioned data entry, got %d (%v)", versioned, files)
	}
	if !strings.Contains(files["MANIFEST"], "sources/style.css") {
		t.Errorf("MANIFEST does not list source copy:\n%s", files["MANIFEST"])
	}
}

func TestReportClose_RemovesCopies(t *testing.T) {
	dir := t.TempDir()
	r, err := (&ReporterConfig{Destination: filepath.Join(dir, "report.zip")}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	src := filepath.Join(dir, "a.css")
	if err := os.WriteFile(src, []byte("p{}"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	if err := r.StoreCopy("a.css", src); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	copied := r.entries["a.css"].actual

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(copied)); !os.IsNotExist(err) {
		t.Errorf("expected private copy to be removed, stat error = %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("original file should be kept: %v", err)
	}
}

func TestReportStoreCopy_Directory(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.StoreCopy("dir", t.TempDir()); err == nil {
		t.Error("expected error storing directory copy")
	}
}

func TestPrepareManifest_NaturalOrder(t *testing.T) {
	entries := map[string]entry{
		"sources/a10.css": {original: "a10.css"},
		"sources/a2.css":  {original: "a2.css"},
		"config.yaml":     {data: []byte("x")},
	}
	names, _ := prepareManifest(entries)
	want := []string{"config.yaml", "sources/a2.css", "sources/a10.css"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("prepareManifest() order = %v, want %v", names, want)
	}
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	r.Store("x", "y")
	r.StoreData("x", nil)
	if err := r.StoreCopy("x", "y"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
