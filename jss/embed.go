package jss

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Embed builds output tree from d. Selector lists are split into separate
// selectors, leading class dots are dropped and descendant selectors are
// nested under their first compound as "& <rest>". Media blocks are embedded
// recursively, other at-rules are copied as is. d is not modified.
func Embed(d *Draft) *Object {
	out := NewObject()
	for el := d.entries.Front(); el != nil; el = el.Next() {
		key := el.Key
		switch e := el.Value.(type) {
		case *Draft:
			out.Set(key, Embed(e))
		case *Frames:
			out.Set(key, e.Object())
		case *Style:
			if strings.HasPrefix(key, "@") {
				out.Set(key, e.Object())
				continue
			}
			for _, sel := range splitSelectorList(key) {
				embedSelector(out, sel, e)
			}
		}
	}
	return out
}

func embedSelector(out *Object, sel string, style *Style) {
	sel = strings.TrimPrefix(sel, ".")
	if sel == "" {
		return
	}
	ancestor, rest, found := cutDescendant(sel)
	if !found || rest == "" {
		mergeInto(out, strings.TrimSpace(sel), style.Object())
		return
	}
	if !strings.HasPrefix(rest, "&") {
		rest = "& " + rest
	}
	mergeInto(out.Child(ancestor), rest, style.Object())
}

// mergeInto stores obj under key, shallow merging it on top of an object
// already there.
func mergeInto(dst *Object, key string, obj *Object) {
	if existing := dst.Object(key); existing != nil {
		existing.Merge(obj)
		return
	}
	dst.Set(key, obj)
}

// splitSelectorList splits selector list on commas which are not inside
// parentheses, brackets or strings. Parts are trimmed, empty ones dropped.
func splitSelectorList(list string) []string {
	var parts []string
	start := 0
	scanTopLevel(list, func(i int, r rune) bool {
		if r == ',' {
			parts = append(parts, list[start:i])
			start = i + 1
		}
		return true
	})
	parts = append(parts, list[start:])

	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cutDescendant cuts selector at its first top-level whitespace. The
// remainder has leading whitespace removed.
func cutDescendant(sel string) (ancestor, rest string, found bool) {
	idx := -1
	scanTopLevel(sel, func(i int, r rune) bool {
		if unicode.IsSpace(r) {
			idx = i
			return false
		}
		return true
	})
	if idx <= 0 {
		return sel, "", false
	}
	return sel[:idx], strings.TrimLeftFunc(sel[idx:], unicode.IsSpace), true
}

// scanTopLevel calls fn for every rune of s outside of parentheses, brackets
// and quoted strings until fn returns false.
func scanTopLevel(s string, fn func(i int, r rune) bool) {
	var (
		depth int
		quote rune
	)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case quote != 0:
			if r == '\\' {
				i += size
				if i < len(s) {
					_, size = utf8.DecodeRuneInString(s[i:])
				}
			} else if r == quote {
				quote = 0
			}
		case r == '\\':
			i += size
			if i < len(s) {
				_, size = utf8.DecodeRuneInString(s[i:])
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			if !fn(i, r) {
				return
			}
		}
		i += size
	}
}
