package css

import (
	"fmt"
	"io"
	"strings"
)

// Rule is a single node of a parsed stylesheet. The set of implementations is
// closed: *StyleRule, *MediaRule, *FontFaceRule, *KeyframesRule and *Comment.
type Rule interface {
	rule()
}

// Declaration is a single "property: value" pair in source order.
type Declaration struct {
	Property string // Property name as written (custom properties keep leading dashes)
	Value    string // Raw value with whitespace runs collapsed
}

// StyleRule is a qualified rule: a selector list with a declaration block.
type StyleRule struct {
	Selectors    []string // Individual selectors, comma split at top level
	Declarations []Declaration
}

// MediaRule is a @media block with its query and nested rules.
type MediaRule struct {
	Query string // Query text with whitespace runs collapsed (e.g. "(min-width: 100px)")
	Rules []Rule // Only *StyleRule and *Comment are produced by the parser
}

// FontFaceRule is a @font-face block.
type FontFaceRule struct {
	Declarations []Declaration
}

// Keyframe is a single frame inside a @keyframes block.
type Keyframe struct {
	Selectors    []string // Frame selectors: percentages, "from" or "to"
	Declarations []Declaration
}

// KeyframesRule is a @keyframes block, possibly vendor prefixed.
type KeyframesRule struct {
	Vendor string // Vendor prefix including dashes (e.g. "-webkit-") or empty
	Name   string
	Frames []Keyframe
}

// Comment is a top-level comment.
type Comment struct {
	Text string
}

func (*StyleRule) rule()     {}
func (*MediaRule) rule()     {}
func (*FontFaceRule) rule()  {}
func (*KeyframesRule) rule() {}
func (*Comment) rule()       {}

// AtKeyword returns the at-keyword of the block including vendor prefix,
// e.g. "@keyframes" or "@-webkit-keyframes".
func (k *KeyframesRule) AtKeyword() string {
	return "@" + k.Vendor + "keyframes"
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Rules    []Rule   // All top-level rules in source order
	Charset  string   // Value of @charset if present
	Imports  []string // @import URLs in source order
	Warnings []string // Warnings for unsupported features
}

// StyleRules returns all top-level style rules in source order.
func (s *Stylesheet) StyleRules() []*StyleRule {
	var rules []*StyleRule
	for _, r := range s.Rules {
		if sr, ok := r.(*StyleRule); ok {
			rules = append(rules, sr)
		}
	}
	return rules
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
// Declaration order is preserved, comments are dropped.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, r := range s.Rules {
		var (
			n   int
			err error
		)
		switch r := r.(type) {
		case *StyleRule:
			n, err = writeBlock(w, "", strings.Join(r.Selectors, ", "), r.Declarations)
		case *FontFaceRule:
			n, err = writeBlock(w, "", "@font-face", r.Declarations)
		case *MediaRule:
			n, err = writeMedia(w, r)
		case *KeyframesRule:
			n, err = writeKeyframes(w, r)
		}
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeBlock(w io.Writer, indent, head string, decls []Declaration) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, head)
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range decls {
		n, err = fmt.Fprintf(w, "%s  %s: %s;\n", indent, d.Property, d.Value)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

func writeMedia(w io.Writer, m *MediaRule) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "@media %s {\n", m.Query)
	total += n
	if err != nil {
		return total, err
	}
	for _, r := range m.Rules {
		sr, ok := r.(*StyleRule)
		if !ok {
			continue
		}
		n, err = writeBlock(w, "  ", strings.Join(sr.Selectors, ", "), sr.Declarations)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}

func writeKeyframes(w io.Writer, k *KeyframesRule) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s %s {\n", k.AtKeyword(), k.Name)
	total += n
	if err != nil {
		return total, err
	}
	for _, f := range k.Frames {
		n, err = writeBlock(w, "  ", strings.Join(f.Selectors, ", "), f.Declarations)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}
