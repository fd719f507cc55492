// Package archive walks files stored in zip archives.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// WalkFunc is called for each file in archive visited by Walk. The archive
// argument is the path to archive passed to Walk. If an error is returned,
// processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk visits files in archive in stored order. Only files with names under
// prefix which are accepted by match (nil match accepts everything) are
// passed to walkFn. Absolute names and names with ".." components make Walk
// fail before anything is visited.
func Walk(ctx context.Context, archive, prefix string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return fmt.Errorf("zip archive %q: unsafe path (absolute or contains path traversal): %w", archive, err)
	}
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		if match != nil && !match(f.Name) {
			continue
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
