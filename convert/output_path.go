package convert

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"jssc/config"
	"jssc/state"
)

// buildOutputPath returns output file path for source. "src" is relative to
// what was requested on the command line (base name for single file), "dst"
// is the destination directory. Without name template relative directories of
// the source are preserved unless NoDirs is set. Name template result is
// always relative to "dst" and may contain directories. Every path segment is
// cleaned up and if requested transliterated.
func buildOutputPath(src, dst string, env *state.LocalEnv) string {
	if env.Cfg.Output.NameTemplate != "" {
		if expanded := expandOutputNameTemplate(src, env); expanded != "" {
			return assemblePath(dst, splitPath(expanded), env)
		}
		// fallback to default naming
	}

	segments := []string{strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))}
	if !env.NoDirs {
		segments = append(splitPath(filepath.Dir(src)), segments...)
	}
	return assemblePath(dst, segments, env)
}

func expandOutputNameTemplate(src string, env *state.LocalEnv) string {
	values := buildNameValues(config.NameTemplateFieldName, src, env.Cfg)
	expanded, err := expandTemplate(config.NameTemplateFieldName, env.Cfg.Output.NameTemplate, values)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.String("source", src), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(expanded)
}

// assemblePath joins cleaned segments under dir, last one becomes file name
// with configured extension.
func assemblePath(dir string, segments []string, env *state.LocalEnv) string {
	if len(segments) == 0 {
		return dir
	}
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, dir)
	for _, segment := range segments[:len(segments)-1] {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	parts = append(parts, cleanPathSegment(segments[len(segments)-1], env)+env.Cfg.Output.Extension)
	return filepath.Join(parts...)
}

// splitPath returns names of relative path, "." and ".." are dropped.
func splitPath(path string) []string {
	var segments []string
	for segment := range strings.SplitSeq(filepath.ToSlash(filepath.Clean(filepath.FromSlash(path))), "/") {
		if segment != "" && segment != "." && segment != ".." {
			segments = append(segments, segment)
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
