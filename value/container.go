package value

import (
	"iter"
	"slices"
)

// Entry is one key/value pair of a map. Keys may repeat inside a map.
type Entry struct {
	Key   string
	Value Value
}

// Pair builds an Entry.
func Pair(key string, v Value) Entry {
	return Entry{Key: key, Value: v}
}

// Map returns an ordered map value.
func Map(entries ...Entry) Value {
	return Value{kind: KindMap, entries: slices.Clone(entries)}
}

// Seq returns a sequence value.
func Seq(items ...Value) Value {
	return Value{kind: KindSeq, items: slices.Clone(items)}
}

// Len returns the number of entries of a map or items of a sequence.
func (v Value) Len() int {
	switch v.kind {
	case KindMap:
		return len(v.entries)
	case KindSeq:
		return len(v.items)
	default:
		return 0
	}
}

// Index returns the i-th element of a sequence.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindSeq || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Items iterates over the elements of a sequence.
func (v Value) Items() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if v.kind != KindSeq {
			return
		}
		for i, item := range v.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Pairs iterates over the entries of a map in insertion order, duplicates included.
func (v Value) Pairs() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if v.kind != KindMap {
			return
		}
		for _, e := range v.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries of a map.
func (v Value) Entries() []Entry {
	if v.kind != KindMap {
		return nil
	}
	return slices.Clone(v.entries)
}

// Get returns the last occurrence of key in a map.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	for i := len(v.entries) - 1; i >= 0; i-- {
		if v.entries[i].Key == key {
			return v.entries[i].Value, true
		}
	}
	return Value{}, false
}

// GetAll returns every occurrence of key in a map, in order.
func (v Value) GetAll(key string) []Value {
	var result []Value
	for k, item := range v.Pairs() {
		if k == key {
			result = append(result, item)
		}
	}
	return result
}

// Keys returns the distinct keys of a map in order of first appearance.
func (v Value) Keys() []string {
	var keys []string
	seen := make(map[string]struct{}, len(v.entries))
	for k := range v.Pairs() {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
