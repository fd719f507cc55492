package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into a list of rule nodes.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// state is per call parsing state, Parser itself is reusable.
type state struct {
	log   *zap.Logger
	gp    *css.Parser
	sheet *Stylesheet
	err   error
}

// next advances grammar parser.
func (s *state) next() (css.GrammarType, []byte) {
	gt, _, data := s.gp.Next()
	return gt, data
}

// failed is called on css.ErrorGrammar, it remembers first syntax error and
// reports whether there was one. Running out of input is not an error.
func (s *state) failed() bool {
	err := s.gp.Err()
	if err == nil || errors.Is(err, io.EOF) {
		return false
	}
	if s.err == nil {
		s.err = err
	}
	return true
}

func (s *state) warn(msg, subject string) {
	s.sheet.Warnings = append(s.sheet.Warnings, msg+": "+subject)
	s.log.Debug("Skipping unsupported construct", zap.String("reason", msg), zap.String("subject", subject))
}

// Parse parses CSS text into a Stylesheet. Parsing stops at the first syntax
// error which is returned together with everything parsed so far. The
// optional source parameter identifies what's being parsed (for debug
// logging).
func (p *Parser) Parse(data []byte, source ...string) (*Stylesheet, error) {
	sheet := &Stylesheet{
		Rules:    make([]Rule, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	s := &state{
		log:   p.log,
		gp:    css.NewParser(parse.NewInput(bytes.NewReader(data)), false),
		sheet: sheet,
	}

	var pending []string
	for {
		gt, data := s.next()

		switch gt {
		case css.ErrorGrammar:
			if s.failed() || s.err != nil {
				return sheet, fmt.Errorf("unable to parse stylesheet: %w", s.err)
			}
			return sheet, nil

		case css.CommentGrammar:
			sheet.Rules = append(sheet.Rules, &Comment{Text: string(data)})

		case css.AtRuleGrammar:
			s.simpleAtRule(strings.ToLower(string(data)))

		case css.BeginAtRuleGrammar:
			if rule := s.blockAtRule(strings.ToLower(string(data))); rule != nil {
				sheet.Rules = append(sheet.Rules, rule)
			}

		case css.QualifiedRuleGrammar:
			// part of selector list terminated by comma
			pending = append(pending, splitSelectors(data, s.gp.Values())...)

		case css.BeginRulesetGrammar:
			selectors := append(pending, splitSelectors(data, s.gp.Values())...)
			pending = nil
			decls := s.parseDeclarations(css.EndRulesetGrammar)
			if len(selectors) == 0 {
				continue
			}
			sheet.Rules = append(sheet.Rules, &StyleRule{Selectors: selectors, Declarations: decls})
		}
	}
}

// simpleAtRule handles @-rules without block (e.g., @import).
func (s *state) simpleAtRule(name string) {
	switch name {
	case "@import":
		if url := extractImportURL(s.gp.Values()); url != "" {
			s.sheet.Imports = append(s.sheet.Imports, url)
			s.warn("@import is not followed", url)
		}
	case "@charset":
		s.sheet.Charset = unquote(joinTokens(s.gp.Values()))
		s.log.Debug("Parsed @charset", zap.String("charset", s.sheet.Charset))
	default:
		s.warn("unsupported @-rule", name)
	}
}

// blockAtRule handles @-rules with block, returning nil for skipped ones.
func (s *state) blockAtRule(name string) Rule {
	switch {
	case name == "@media":
		query := joinTokens(s.gp.Values(), css.ColonToken, css.CommaToken)
		rules := s.parseMediaRules()
		s.log.Debug("Parsed @media block", zap.String("query", query), zap.Int("rules", len(rules)))
		return &MediaRule{Query: query, Rules: rules}

	case name == "@font-face":
		return &FontFaceRule{Declarations: s.parseDeclarations(css.EndAtRuleGrammar)}
	}

	if vendor, ok := keyframesVendor(name); ok {
		kf := &KeyframesRule{Vendor: vendor, Name: unquote(joinTokens(s.gp.Values()))}
		kf.Frames = s.parseKeyframes()
		s.log.Debug("Parsed keyframes", zap.String("rule", name), zap.String("name", kf.Name), zap.Int("frames", len(kf.Frames)))
		return kf
	}

	s.warn("unsupported @-rule", name)
	s.skipAtRuleBlock()
	return nil
}

// keyframesVendor recognizes "@keyframes" and vendor prefixed variants like
// "@-webkit-keyframes", returning the prefix.
func keyframesVendor(name string) (string, bool) {
	vendor, found := strings.CutSuffix(strings.TrimPrefix(name, "@"), "keyframes")
	if !found {
		return "", false
	}
	if vendor == "" {
		return "", true
	}
	if len(vendor) > 2 && vendor[0] == '-' && vendor[len(vendor)-1] == '-' {
		return vendor, true
	}
	return "", false
}

// parseDeclarations parses property declarations until grammar "end" is met.
func (s *state) parseDeclarations(end css.GrammarType) []Declaration {
	var decls []Declaration

	for {
		gt, data := s.next()

		switch gt {
		case css.ErrorGrammar:
			if s.gp.HasParseError() {
				// grammar parser resumes after the broken declaration
				s.warn("invalid declaration skipped", s.gp.Err().Error())
				continue
			}
			return decls

		case end:
			return decls

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			value := joinTokens(s.gp.Values(), css.CommaToken)
			if gt == css.CustomPropertyGrammar {
				value = collapseSpaces(value)
			}
			if value == "" {
				continue
			}
			decls = append(decls, Declaration{Property: string(data), Value: value})

		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			// nested blocks inside declaration list are not supported
			s.warn("unsupported nested block", string(data))
			s.skipAtRuleBlock()
		}
	}
}

// parseMediaRules parses rules inside an @media block and returns them.
func (s *state) parseMediaRules() []Rule {
	var (
		rules   []Rule
		pending []string
	)

	for {
		gt, data := s.next()

		switch gt {
		case css.ErrorGrammar:
			s.failed()
			return rules

		case css.EndAtRuleGrammar:
			return rules

		case css.CommentGrammar:
			rules = append(rules, &Comment{Text: string(data)})

		case css.BeginAtRuleGrammar:
			s.warn("unsupported @-rule inside @media", string(data))
			s.skipAtRuleBlock()

		case css.QualifiedRuleGrammar:
			pending = append(pending, splitSelectors(data, s.gp.Values())...)

		case css.BeginRulesetGrammar:
			selectors := append(pending, splitSelectors(data, s.gp.Values())...)
			pending = nil
			decls := s.parseDeclarations(css.EndRulesetGrammar)
			if len(selectors) > 0 {
				rules = append(rules, &StyleRule{Selectors: selectors, Declarations: decls})
			}
		}
	}
}

// parseKeyframes parses frames inside a @keyframes block.
func (s *state) parseKeyframes() []Keyframe {
	var (
		frames  []Keyframe
		pending []string
	)

	for {
		gt, data := s.next()

		switch gt {
		case css.ErrorGrammar:
			s.failed()
			return frames

		case css.EndAtRuleGrammar:
			return frames

		case css.QualifiedRuleGrammar:
			pending = append(pending, splitSelectors(data, s.gp.Values())...)

		case css.BeginRulesetGrammar:
			selectors := append(pending, splitSelectors(data, s.gp.Values())...)
			pending = nil
			decls := s.parseDeclarations(css.EndRulesetGrammar)
			if len(selectors) > 0 {
				frames = append(frames, Keyframe{Selectors: selectors, Declarations: decls})
			}
		}
	}
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (s *state) skipAtRuleBlock() {
	depth := 1
	for depth > 0 {
		gt, _ := s.next()
		switch gt {
		case css.ErrorGrammar:
			if !s.gp.HasParseError() {
				return
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// splitSelectors builds selector strings from prelude data and tokens,
// splitting on commas which are not inside parentheses or brackets.
func splitSelectors(data []byte, values []css.Token) []string {
	var (
		selectors []string
		sb        strings.Builder
		depth     int
		space     bool
	)

	flush := func() {
		if s := strings.TrimSpace(sb.String()); s != "" {
			selectors = append(selectors, s)
		}
		sb.Reset()
		space = false
	}

	sb.Write(data)
	for _, t := range values {
		switch t.TokenType {
		case css.WhitespaceToken, css.CommentToken:
			space = sb.Len() > 0
			continue
		case css.CommaToken:
			if depth == 0 {
				flush()
				continue
			}
			sb.Write(t.Data)
			space = true
			continue
		case css.DelimToken:
			// grammar parser drops whitespace around combinators
			if depth == 0 && isCombinator(t.Data) {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.Write(t.Data)
				space = true
				continue
			}
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
	}
	flush()
	return selectors
}

func isCombinator(data []byte) bool {
	return len(data) == 1 && (data[0] == '>' || data[0] == '+' || data[0] == '~')
}

// joinTokens builds raw text from tokens collapsing whitespace runs. Tokens
// of spaceAfter types are followed by a single space, grammar parser drops
// whitespace after them.
func joinTokens(tokens []css.Token, spaceAfter ...css.TokenType) string {
	var (
		sb    strings.Builder
		space bool
	)
	for _, t := range tokens {
		switch {
		case t.TokenType == css.CommentToken:
			continue
		case t.TokenType == css.WhitespaceToken:
			space = sb.Len() > 0
			continue
		case t.TokenType == css.DelimToken && len(t.Data) == 1 && t.Data[0] == '!':
			// "red !important"
			space = sb.Len() > 0
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
		if slices.Contains(spaceAfter, t.TokenType) {
			space = true
		}
	}
	return sb.String()
}

// collapseSpaces replaces whitespace runs with single space. Custom property
// values come as a single raw token.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			s := string(t.Data)
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
