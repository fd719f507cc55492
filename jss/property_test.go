package jss

import "testing"

func TestFormatProperty(t *testing.T) {
	tests := []struct {
		prop   string
		dashes bool
		want   string
	}{
		{"background-color", false, "backgroundColor"},
		{"background-color", true, "background-color"},
		{"color", false, "color"},
		{"-webkit-transition", false, "webkitTransition"},
		{"-webkit-transition", true, "-webkit-transition"},
		{"border-top-left-radius", false, "borderTopLeftRadius"},
		{"Font-Size", false, "fontSize"},
		{"--main-color", false, "mainColor"},
		{"--main-color", true, "--main-color"},
	}

	for _, tt := range tests {
		if got := FormatProperty(tt.prop, tt.dashes); got != tt.want {
			t.Errorf("FormatProperty(%q, %v) = %q, want %q", tt.prop, tt.dashes, got, tt.want)
		}
	}
}

func TestCamelCase(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"---":               "---",
		"foo bar":           "fooBar",
		"fooBar":            "fooBar",
		"FOO_BAR":           "fooBar",
		"XMLHttpRequest":    "xmlHttpRequest",
		"grid-area-2":       "gridArea2",
		"column2span":       "column2Span",
		"mso-ansi-language": "msoAnsiLanguage",
	}
	for in, want := range tests {
		if got := CamelCase(in); got != want {
			t.Errorf("CamelCase(%q) = %q, want %q", in, got, want)
		}
	}
}
