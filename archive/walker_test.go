package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type zipEntry struct {
	name    string
	content string
}

func makeZip(t *testing.T, entries ...zipEntry) string {
	t.Helper()

	name := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		fw, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return name
}

func visit(t *testing.T, archive, prefix string, match func(string) bool) []string {
	t.Helper()

	var visited []string
	err := Walk(context.Background(), archive, prefix, match, func(a string, file *zip.File) error {
		if a != archive {
			t.Errorf("archive = %s, want %s", a, archive)
		}
		visited = append(visited, file.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return visited
}

func isCSS(name string) bool {
	return strings.HasSuffix(name, ".css")
}

func TestWalk(t *testing.T) {
	archive := makeZip(t,
		zipEntry{"styles/base.css", ".a { color: red }"},
		zipEntry{"styles/print/page.css", "@media print { .a { color: black } }"},
		zipEntry{"styles/readme.txt", "not a stylesheet"},
		zipEntry{"site.css", "body { margin: 0 }"},
		zipEntry{"empty/", ""},
	)

	tests := []struct {
		name   string
		prefix string
		match  func(string) bool
		want   []string
	}{
		{"everything", "", nil, []string{"styles/base.css", "styles/print/page.css", "styles/readme.txt", "site.css"}},
		{"stylesheets", "", isCSS, []string{"styles/base.css", "styles/print/page.css", "site.css"}},
		{"prefix", "styles/print", isCSS, []string{"styles/print/page.css"}},
		{"single file", "site.css", isCSS, []string{"site.css"}},
		{"nothing", "scripts/", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visit(t, archive, tt.prefix, tt.match)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("visited mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWalk_ReadsContent(t *testing.T) {
	archive := makeZip(t, zipEntry{"a.css", ".a { color: red }"})

	var content string
	err := Walk(context.Background(), archive, "", isCSS, func(_ string, file *zip.File) error {
		r, err := file.Open()
		if err != nil {
			return err
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		content = string(data)
		return err
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if content != ".a { color: red }" {
		t.Errorf("content = %q", content)
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	archive := makeZip(t,
		zipEntry{"a.css", "a"},
		zipEntry{"b.css", "b"},
	)

	stop := errors.New("stop")
	count := 0
	err := Walk(context.Background(), archive, "", nil, func(string, *zip.File) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Walk() error = %v, want %v", err, stop)
	}
	if count != 1 {
		t.Errorf("walkFn called %d times, want 1", count)
	}
}

func TestWalk_Cancelled(t *testing.T) {
	archive := makeZip(t, zipEntry{"a.css", "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Walk(ctx, archive, "", nil, func(string, *zip.File) error {
		t.Error("walkFn should not be called")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Walk() error = %v, want context.Canceled", err)
	}
}

func TestWalk_UnsafePaths(t *testing.T) {
	for _, name := range []string{"../evil.css", "styles/../../evil.css", "/abs.css", `..\evil.css`} {
		t.Run(name, func(t *testing.T) {
			archive := makeZip(t,
				zipEntry{"good.css", "a"},
				zipEntry{name, "b"},
			)
			err := Walk(context.Background(), archive, "", nil, func(string, *zip.File) error {
				t.Error("walkFn should not be called")
				return nil
			})
			if err == nil || !strings.Contains(err.Error(), "unsafe path") {
				t.Errorf("Walk() error = %v, want unsafe path error", err)
			}
		})
	}
}

func TestWalk_NotArchive(t *testing.T) {
	name := filepath.Join(t.TempDir(), "plain.css")
	if err := os.WriteFile(name, []byte(".a { color: red }"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Walk(context.Background(), name, "", nil, func(string, *zip.File) error { return nil }); err == nil {
		t.Error("Walk() expected error for non zip file")
	}
	if err := Walk(context.Background(), filepath.Join(t.TempDir(), "missing.zip"), "", nil, func(string, *zip.File) error { return nil }); err == nil {
		t.Error("Walk() expected error for missing file")
	}
}

func TestIsSafePath(t *testing.T) {
	tests := map[string]bool{
		"a.css":           true,
		"dir/a.css":       true,
		"dir/..a.css":     true,
		"../a.css":        false,
		"dir/../../a.css": false,
		"/a.css":          false,
		`\a.css`:          false,
		`dir\..\..\a.css`: false,
	}
	for name, want := range tests {
		if got := isSafePath(name); got != want {
			t.Errorf("isSafePath(%q) = %v, want %v", name, got, want)
		}
	}
}
