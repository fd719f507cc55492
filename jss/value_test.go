package jss

import "testing"

func TestStripUnit(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		unit     string
		stripped bool
		num      float64
	}{
		{"integer", "10px", "px", true, 10},
		{"fraction", "1.5px", "px", true, 1.5},
		{"leading dot", ".5px", "px", true, 0.5},
		{"negative", "-4px", "px", true, -4},
		{"zero", "0px", "px", true, 0},
		{"compound", "10px 5px", "px", false, 0},
		{"list", "10px,5px", "px", false, 0},
		{"other unit", "10em", "px", false, 0},
		{"no unit configured", "10px", "", false, 0},
		{"unit only", "px", "px", false, 0},
		{"not a number", "auto", "px", false, 0},
		{"malformed number", "1.2.3px", "px", false, 0},
		{"bare number", "10", "px", false, 0},
		{"percent", "50%", "%", true, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := StripUnit(tt.value, tt.unit)
			if v.IsStripped() != tt.stripped {
				t.Fatalf("StripUnit(%q, %q).IsStripped() = %v, want %v", tt.value, tt.unit, v.IsStripped(), tt.stripped)
			}
			if tt.stripped {
				if n, _ := v.Number(); n != tt.num {
					t.Errorf("StripUnit(%q, %q) = %v, want %v", tt.value, tt.unit, n, tt.num)
				}
				return
			}
			if v.Text() != tt.value {
				t.Errorf("StripUnit(%q, %q) = %q, want unchanged", tt.value, tt.unit, v.Text())
			}
		})
	}
}

func TestValuePlain(t *testing.T) {
	if got, ok := Stripped(10).Plain().(float64); !ok || got != 10 {
		t.Errorf("Stripped(10).Plain() = %#v, want float64 10", Stripped(10).Plain())
	}
	if got, ok := Unchanged("red").Plain().(string); !ok || got != "red" {
		t.Errorf("Unchanged(red).Plain() = %#v, want \"red\"", Unchanged("red").Plain())
	}
	if s := Stripped(1.5).String(); s != "1.5" {
		t.Errorf("Stripped(1.5).String() = %q, want 1.5", s)
	}
}
