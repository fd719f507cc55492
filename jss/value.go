package jss

import (
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
)

// Value is a declaration value after unit stripping: either a number with
// the configured unit removed or the original text.
type Value struct {
	text     string
	num      float64
	stripped bool
}

// Stripped returns a numeric value.
func Stripped(n float64) Value {
	return Value{num: n, stripped: true}
}

// Unchanged returns a textual value.
func Unchanged(s string) Value {
	return Value{text: s}
}

// IsStripped reports whether value is a number.
func (v Value) IsStripped() bool {
	return v.stripped
}

// Number returns numeric value and true if value was stripped.
func (v Value) Number() (float64, bool) {
	return v.num, v.stripped
}

// Text returns textual value, empty for numbers.
func (v Value) Text() string {
	return v.text
}

// Plain returns value as plain data suitable for serialization: float64 or
// string.
func (v Value) Plain() any {
	if v.stripped {
		return v.num
	}
	return v.text
}

func (v Value) String() string {
	if v.stripped {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.text
}

// StripUnit converts value to a number when it is a single CSS number
// followed exactly by unit. Compound values (containing whitespace or
// commas), values with other units and malformed numbers are returned
// unchanged. Empty unit disables stripping.
func StripUnit(value, unit string) Value {
	if unit == "" || isCompound(value) {
		return Unchanged(value)
	}

	prefix, found := strings.CutSuffix(value, unit)
	if !found || prefix == "" {
		return Unchanged(value)
	}
	// parse.Number reports length of the leading number, it has to cover
	// the whole prefix
	if parse.Number([]byte(prefix)) != len(prefix) {
		return Unchanged(value)
	}
	num, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return Unchanged(value)
	}
	return Stripped(num)
}

func isCompound(value string) bool {
	return strings.ContainsRune(value, ',') || strings.ContainsFunc(value, unicode.IsSpace)
}
