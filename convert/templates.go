package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"jssc/config"
)

// NameValues holds variables available for output name template expansion.
type NameValues struct {
	Context    string // configuration field being expanded
	SourceFile string // source base name without extension
	SourceExt  string // source extension without leading dot
	SourceDir  string // source directory relative to requested path, "." for none
	Unit       string
	Dashes     bool
}

func buildNameValues(name, src string, cfg *config.Config) NameValues {
	ext := filepath.Ext(src)
	return NameValues{
		Context:    name,
		SourceFile: strings.TrimSuffix(filepath.Base(src), ext),
		SourceExt:  strings.TrimPrefix(ext, "."),
		SourceDir:  filepath.ToSlash(filepath.Dir(src)),
		Unit:       cfg.Conversion.Unit,
		Dashes:     cfg.Conversion.Dashes,
	}
}

func expandTemplate(name, field string, values NameValues) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
