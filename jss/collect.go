package jss

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jssc/css"
)

// Collect builds Draft from top-level rules.
func Collect(rules []css.Rule, opts Options) *Draft {
	return collect(rules, opts, zap.NewNop())
}

type collector struct {
	opts Options
	log  *zap.Logger
}

func collect(rules []css.Rule, opts Options, log *zap.Logger) *Draft {
	c := &collector{opts: opts, log: log}
	d := NewDraft()
	for _, r := range rules {
		switch r := r.(type) {
		case *css.Comment:
		case *css.StyleRule:
			c.styleRule(d, r)
		case *css.MediaRule:
			c.mediaRule(d, r)
		case *css.FontFaceRule:
			c.fontFace(d, r)
		case *css.KeyframesRule:
			c.keyframes(d, r)
		default:
			c.log.Debug("Skipping unsupported rule", zap.String("type", fmt.Sprintf("%T", r)))
		}
	}
	return d
}

func (c *collector) property(name string) string {
	return FormatProperty(name, c.opts.Dashes)
}

func (c *collector) styleRule(d *Draft, r *css.StyleRule) {
	if len(r.Selectors) == 0 {
		return
	}
	style := d.Style(strings.Join(r.Selectors, ", "))
	for _, decl := range r.Declarations {
		style.Declare(c.property(decl.Property), StripUnit(decl.Value, c.opts.Unit))
	}
}

func (c *collector) mediaRule(d *Draft, r *css.MediaRule) {
	media := d.Media("@media " + r.Query)
	for _, child := range r.Rules {
		switch child := child.(type) {
		case *css.Comment:
		case *css.StyleRule:
			c.styleRule(media, child)
		default:
			c.log.Debug("Skipping rule nested in media block",
				zap.String("query", r.Query),
				zap.String("type", fmt.Sprintf("%T", child)))
		}
	}
}

func (c *collector) fontFace(d *Draft, r *css.FontFaceRule) {
	style := d.Style("@font-face")
	for _, decl := range r.Declarations {
		style.Put(c.property(decl.Property), Unchanged(decl.Value))
	}
}

func (c *collector) keyframes(d *Draft, r *css.KeyframesRule) {
	frames := d.Frames(r.AtKeyword() + " " + r.Name)
	for _, kf := range r.Frames {
		style := frames.Frame(strings.Join(kf.Selectors, ", "))
		for _, decl := range kf.Declarations {
			style.Put(c.property(decl.Property), StripUnit(decl.Value, c.opts.Unit))
		}
	}
}
