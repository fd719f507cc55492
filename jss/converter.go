// Package jss turns parsed stylesheet rules into a nested JSS style object.
//
// Conversion is done in two passes. Collect builds a Draft keyed by raw
// selector and at-rule text, tracking fallbacks and stripping units. Embed
// then builds the output tree from the Draft, splitting selector lists and
// nesting descendant selectors under their ancestors with "& " keys.
package jss

import (
	"time"

	"go.uber.org/zap"

	"jssc/css"
)

// Options control conversion.
type Options struct {
	// Unit is stripped from single numeric values ("10px" -> 10), empty
	// disables stripping.
	Unit string
	// Dashes keeps property names as written instead of camelCasing them.
	Dashes bool
}

// Converter runs both conversion passes.
type Converter struct {
	log *zap.Logger
}

// NewConverter returns converter logging to log, nil log disables logging.
func NewConverter(log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{log: log.Named("jss")}
}

// Convert returns output tree for rules.
func (c *Converter) Convert(rules []css.Rule, opts Options) *Object {
	start := time.Now()

	draft := collect(rules, opts, c.log)
	tree := Embed(draft)

	c.log.Debug("Stylesheet converted",
		zap.Int("rules", len(rules)),
		zap.Int("draft", draft.Len()),
		zap.Int("keys", tree.Len()),
		zap.String("unit", opts.Unit),
		zap.Bool("dashes", opts.Dashes),
		zap.Duration("elapsed", time.Since(start)))
	return tree
}

// Convert is a shortcut for converting without logging.
func Convert(rules []css.Rule, opts Options) *Object {
	return NewConverter(nil).Convert(rules, opts)
}
