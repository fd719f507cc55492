package jss_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"jssc/css"
	"jssc/jss"
)

func decls(kv ...string) []css.Declaration {
	var out []css.Declaration
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, css.Declaration{Property: kv[i], Value: kv[i+1]})
	}
	return out
}

func styleRule(selectors []string, kv ...string) *css.StyleRule {
	return &css.StyleRule{Selectors: selectors, Declarations: decls(kv...)}
}

func TestCollect_DistinctProperties(t *testing.T) {
	rules := []css.Rule{
		styleRule([]string{".a"}, "color", "red", "background-color", "blue", "margin", "0"),
	}
	d := jss.Collect(rules, jss.Options{})

	e, ok := d.Get(".a")
	if !ok {
		t.Fatalf("Collect() has no .a entry, keys %v", d.Keys())
	}
	style := e.(*jss.Style)
	if style.Len() != 3 {
		t.Errorf("style has %d properties, want 3", style.Len())
	}
	if len(style.Fallbacks()) != 0 {
		t.Errorf("style has fallbacks %v, want none", style.Fallbacks())
	}
	if diff := cmp.Diff([]string{"color", "backgroundColor", "margin"}, style.Properties()); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
	if _, ok := style.Object().Get(jss.FallbacksKey); ok {
		t.Error("object has fallbacks key")
	}
}

func TestCollect_DuplicateProperty(t *testing.T) {
	rules := []css.Rule{
		styleRule([]string{".a"}, "display", "block", "color", "red", "color", "blue"),
	}
	obj := jss.Embed(jss.Collect(rules, jss.Options{}))

	want := map[string]any{
		"a": map[string]any{
			"display":   "block",
			"color":     "blue",
			"fallbacks": []any{map[string]any{"color": "red"}},
		},
	}
	if diff := cmp.Diff(want, obj.Plain()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	// fallbacks key lands where first duplicate showed up
	if diff := cmp.Diff([]string{"display", "color", "fallbacks"}, obj.Object("a").Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_FallbacksMostRecentFirst(t *testing.T) {
	rules := []css.Rule{
		styleRule([]string{"p"}, "display", "-webkit-box", "display", "-ms-flexbox", "display", "flex"),
	}
	obj := jss.Convert(rules, jss.Options{})

	want := map[string]any{
		"p": map[string]any{
			"display": "flex",
			"fallbacks": []any{
				map[string]any{"display": "-ms-flexbox"},
				map[string]any{"display": "-webkit-box"},
			},
		},
	}
	if diff := cmp.Diff(want, obj.Plain()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_FallbacksKeyPosition(t *testing.T) {
	rules := []css.Rule{
		styleRule([]string{"p"}, "color", "red", "color", "blue", "margin", "0"),
	}
	obj := jss.Convert(rules, jss.Options{})
	if diff := cmp.Diff([]string{"color", "fallbacks", "margin"}, obj.Object("p").Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_RepeatedSelectorMerges(t *testing.T) {
	rules := []css.Rule{
		styleRule([]string{".a", ".b"}, "color", "red"),
		&css.Comment{Text: "between"},
		styleRule([]string{".a", ".b"}, "color", "blue", "margin", "1px"),
	}
	d := jss.Collect(rules, jss.Options{Unit: "px"})

	if diff := cmp.Diff([]string{".a, .b"}, d.Keys()); diff != "" {
		t.Fatalf("draft keys mismatch (-want +got):\n%s", diff)
	}
	e, _ := d.Get(".a, .b")
	want := map[string]any{
		"color":     "blue",
		"fallbacks": []any{map[string]any{"color": "red"}},
		"margin":    float64(1),
	}
	if diff := cmp.Diff(want, e.(*jss.Style).Object().Plain()); diff != "" {
		t.Errorf("style mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_Dashes(t *testing.T) {
	rules := []css.Rule{styleRule([]string{"p"}, "background-color", "red")}

	camel := jss.Convert(rules, jss.Options{})
	if _, ok := camel.Object("p").Get("backgroundColor"); !ok {
		t.Errorf("camel case property missing: %v", camel.Object("p").Keys())
	}
	dashed := jss.Convert(rules, jss.Options{Dashes: true})
	if _, ok := dashed.Object("p").Get("background-color"); !ok {
		t.Errorf("dashed property missing: %v", dashed.Object("p").Keys())
	}
}

func TestCollect_Media(t *testing.T) {
	rules := []css.Rule{
		&css.MediaRule{
			Query: "(min-width: 100px)",
			Rules: []css.Rule{
				styleRule([]string{".a"}, "width", "10px"),
				&css.Comment{Text: "ignored"},
				styleRule([]string{".a"}, "width", "20px"),
			},
		},
		&css.MediaRule{
			Query: "(min-width: 100px)",
			Rules: []css.Rule{styleRule([]string{".b"}, "color", "red")},
		},
	}
	d := jss.Collect(rules, jss.Options{Unit: "px"})

	e, ok := d.Get("@media (min-width: 100px)")
	if !ok {
		t.Fatalf("media entry missing, keys %v", d.Keys())
	}
	media := e.(*jss.Draft)
	if diff := cmp.Diff([]string{".a", ".b"}, media.Keys()); diff != "" {
		t.Errorf("media keys mismatch (-want +got):\n%s", diff)
	}
	a, _ := media.Get(".a")
	want := map[string]any{
		"width":     float64(20),
		"fallbacks": []any{map[string]any{"width": float64(10)}},
	}
	if diff := cmp.Diff(want, a.(*jss.Style).Object().Plain()); diff != "" {
		t.Errorf("media style mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_FontFace(t *testing.T) {
	rules := []css.Rule{
		&css.FontFaceRule{Declarations: decls(
			"font-family", `"Open Sans"`,
			"src", `url(a.woff)`,
			"src", `url(b.woff)`,
			"font-weight", "400px",
		)},
	}
	d := jss.Collect(rules, jss.Options{Unit: "px"})

	e, ok := d.Get("@font-face")
	if !ok {
		t.Fatalf("font-face entry missing, keys %v", d.Keys())
	}
	want := map[string]any{
		"fontFamily": `"Open Sans"`,
		"src":        "url(b.woff)",
		"fontWeight": "400px",
	}
	if diff := cmp.Diff(want, e.(*jss.Style).Object().Plain()); diff != "" {
		t.Errorf("font-face mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_Keyframes(t *testing.T) {
	rules := []css.Rule{
		&css.KeyframesRule{
			Name: "spin",
			Frames: []css.Keyframe{
				{Selectors: []string{"0%"}, Declarations: decls("top", "0px", "top", "1px")},
				{Selectors: []string{"50%", "75%"}, Declarations: decls("top", "5px")},
				{Selectors: []string{"100%"}, Declarations: decls("transform", "rotate(360deg)")},
			},
		},
		&css.KeyframesRule{
			Vendor: "-webkit-",
			Name:   "spin",
			Frames: []css.Keyframe{{Selectors: []string{"to"}, Declarations: decls("opacity", "1")}},
		},
	}
	d := jss.Collect(rules, jss.Options{Unit: "px"})

	if diff := cmp.Diff([]string{"@keyframes spin", "@-webkit-keyframes spin"}, d.Keys()); diff != "" {
		t.Fatalf("draft keys mismatch (-want +got):\n%s", diff)
	}
	e, _ := d.Get("@keyframes spin")
	frames := e.(*jss.Frames)
	if diff := cmp.Diff([]string{"0%", "50%, 75%", "100%"}, frames.Keys()); diff != "" {
		t.Errorf("frame keys mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{
		"0%":       map[string]any{"top": float64(1)},
		"50%, 75%": map[string]any{"top": float64(5)},
		"100%":     map[string]any{"transform": "rotate(360deg)"},
	}
	if diff := cmp.Diff(want, frames.Object().Plain()); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_SkipsComments(t *testing.T) {
	rules := []css.Rule{
		&css.Comment{Text: "header"},
		styleRule([]string{"p"}, "color", "red"),
		&css.Comment{Text: "footer"},
	}
	d := jss.Collect(rules, jss.Options{})
	if diff := cmp.Diff([]string{"p"}, d.Keys()); diff != "" {
		t.Errorf("draft keys mismatch (-want +got):\n%s", diff)
	}
}
