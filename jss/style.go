package jss

import (
	"github.com/elliotchance/orderedmap/v3"
)

// FallbacksKey is the key under which superseded values are listed in the
// output tree.
const FallbacksKey = "fallbacks"

// Fallback is a value overwritten by a later declaration of the same
// property.
type Fallback struct {
	Property string
	Value    Value
}

// Style is a Style Object: formatted property names mapped to values in
// declaration order, plus superseded values.
type Style struct {
	props *orderedmap.OrderedMap[string, Value]
	// most recently overwritten first
	fallbacks []Fallback
	// number of properties present when the first fallback was recorded,
	// this is where "fallbacks" key shows up in the output
	fallbacksAt int
}

// NewStyle returns empty style.
func NewStyle() *Style {
	return &Style{props: orderedmap.NewOrderedMap[string, Value]()}
}

func (*Style) draftEntry() {}

// Declare stores value under prop. When prop is already present its current
// value is moved to the front of fallbacks first.
func (s *Style) Declare(prop string, v Value) {
	if old, ok := s.props.Get(prop); ok {
		if len(s.fallbacks) == 0 {
			s.fallbacksAt = s.props.Len()
		}
		s.fallbacks = append([]Fallback{{Property: prop, Value: old}}, s.fallbacks...)
	}
	s.props.Set(prop, v)
}

// Put stores value under prop overwriting silently.
func (s *Style) Put(prop string, v Value) {
	s.props.Set(prop, v)
}

// Get returns value of prop.
func (s *Style) Get(prop string) (Value, bool) {
	return s.props.Get(prop)
}

// Len returns number of properties, fallbacks are not counted.
func (s *Style) Len() int {
	return s.props.Len()
}

// Properties returns property names in declaration order.
func (s *Style) Properties() []string {
	names := make([]string, 0, s.props.Len())
	for el := s.props.Front(); el != nil; el = el.Next() {
		names = append(names, el.Key)
	}
	return names
}

// Fallbacks returns superseded values, most recently overwritten first.
func (s *Style) Fallbacks() []Fallback {
	return s.fallbacks
}

// Object returns a fresh output tree node for the style.
func (s *Style) Object() *Object {
	obj := NewObject()
	i := 0
	for el := s.props.Front(); el != nil; el = el.Next() {
		if len(s.fallbacks) > 0 && i == s.fallbacksAt {
			obj.Set(FallbacksKey, s.fallbacksList())
		}
		obj.Set(el.Key, el.Value.Plain())
		i++
	}
	if len(s.fallbacks) > 0 && s.fallbacksAt >= i {
		obj.Set(FallbacksKey, s.fallbacksList())
	}
	return obj
}

func (s *Style) fallbacksList() []*Object {
	list := make([]*Object, 0, len(s.fallbacks))
	for _, f := range s.fallbacks {
		e := NewObject()
		e.Set(f.Property, f.Value.Plain())
		list = append(list, e)
	}
	return list
}

// Frames is a Keyframes Object: frame selector keys mapped to styles.
type Frames struct {
	frames *orderedmap.OrderedMap[string, *Style]
}

// NewFrames returns empty keyframes object.
func NewFrames() *Frames {
	return &Frames{frames: orderedmap.NewOrderedMap[string, *Style]()}
}

func (*Frames) draftEntry() {}

// Frame returns style for key creating it when absent.
func (f *Frames) Frame(key string) *Style {
	if s, ok := f.frames.Get(key); ok {
		return s
	}
	s := NewStyle()
	f.frames.Set(key, s)
	return s
}

// Get returns style for key.
func (f *Frames) Get(key string) (*Style, bool) {
	return f.frames.Get(key)
}

// Keys returns frame keys in source order.
func (f *Frames) Keys() []string {
	keys := make([]string, 0, f.frames.Len())
	for el := f.frames.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// Object returns a fresh output tree node for the keyframes.
func (f *Frames) Object() *Object {
	obj := NewObject()
	for el := f.frames.Front(); el != nil; el = el.Next() {
		obj.Set(el.Key, el.Value.Object())
	}
	return obj
}
