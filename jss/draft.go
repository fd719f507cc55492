package jss

import (
	"github.com/elliotchance/orderedmap/v3"
)

// DraftEntry is a value stored in Draft: *Style, *Frames or nested *Draft
// (media rules).
type DraftEntry interface {
	draftEntry()
}

// Draft is a first pass mapping keyed by raw selector list or at-rule text.
// Keys are unique and keep insertion order.
type Draft struct {
	entries *orderedmap.OrderedMap[string, DraftEntry]
}

// NewDraft returns empty draft.
func NewDraft() *Draft {
	return &Draft{entries: orderedmap.NewOrderedMap[string, DraftEntry]()}
}

func (*Draft) draftEntry() {}

// Style returns style stored under key creating it when absent. It panics if
// key already holds an entry of another kind, which collector never does.
func (d *Draft) Style(key string) *Style {
	if e, ok := d.entries.Get(key); ok {
		return e.(*Style)
	}
	s := NewStyle()
	d.entries.Set(key, s)
	return s
}

// Media returns nested draft stored under key creating it when absent.
func (d *Draft) Media(key string) *Draft {
	if e, ok := d.entries.Get(key); ok {
		return e.(*Draft)
	}
	m := NewDraft()
	d.entries.Set(key, m)
	return m
}

// Frames returns keyframes stored under key creating them when absent.
func (d *Draft) Frames(key string) *Frames {
	if e, ok := d.entries.Get(key); ok {
		return e.(*Frames)
	}
	f := NewFrames()
	d.entries.Set(key, f)
	return f
}

// Get returns entry stored under key.
func (d *Draft) Get(key string) (DraftEntry, bool) {
	return d.entries.Get(key)
}

// Keys returns rule keys in insertion order.
func (d *Draft) Keys() []string {
	keys := make([]string, 0, d.entries.Len())
	for el := d.entries.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// Len returns number of entries.
func (d *Draft) Len() int {
	return d.entries.Len()
}
