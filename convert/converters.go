package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"jssc/config"
	"jssc/css"
	"jssc/jss"
)

// ErrNoConverter is returned for sources with extension nothing is registered
// for.
var ErrNoConverter = errors.New("no converter registered")

// converterFunc turns decoded source text into the output tree.
type converterFunc func(data []byte, src string, cfg *config.ConversionConfig, log *zap.Logger) (*jss.Object, error)

// converters maps lowercased file extensions to converters.
var converters = map[string]converterFunc{
	".css": convertCSS,
}

func converterFor(path string) (converterFunc, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if conv, ok := converters[ext]; ok {
		return conv, nil
	}
	return nil, fmt.Errorf("%w for %q (%s)", ErrNoConverter, ext, filepath.Base(path))
}

// isConvertible reports whether there is converter for path.
func isConvertible(path string) bool {
	_, ok := converters[strings.ToLower(filepath.Ext(path))]
	return ok
}

func convertCSS(data []byte, src string, cfg *config.ConversionConfig, log *zap.Logger) (*jss.Object, error) {
	sheet, err := css.NewParser(log).Parse(data, src)
	if err != nil {
		return nil, err
	}
	for _, w := range sheet.Warnings {
		log.Warn("Stylesheet problem", zap.String("source", src), zap.String("warning", w))
	}

	tree := jss.NewConverter(log).Convert(sheet.Rules, jss.Options{Unit: cfg.Unit, Dashes: cfg.Dashes})
	if cfg.SortKeys {
		tree.SortKeys(natural.Less)
	}
	return tree, nil
}
