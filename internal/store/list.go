package store

import "bytes"

// PushFront inserts each of values at the head of the list, one after the
// other, so the last element of values ends up as the new head: LPUSH key a
// b c leaves the list [c, b, a], matching the variadic LPUSH contract.
func (v *Value) PushFront(values ...[]byte) {
	for _, val := range values {
		v.List = append(v.List, nil)
		copy(v.List[1:], v.List)
		v.List[0] = val
	}
}

// PopFront removes and returns the head element, or reports false on an
// empty list.
func (v *Value) PopFront() ([]byte, bool) {
	if len(v.List) == 0 {
		return nil, false
	}
	head := v.List[0]
	v.List = v.List[1:]
	return head, true
}

// Len returns the number of elements in the list.
func (v *Value) Len() int {
	return len(v.List)
}

// resolveIndex maps a possibly-negative, Redis-style index (counted from the
// tail when negative) onto a slice index. It does not clamp.
func resolveIndex(i, length int) int {
	if i < 0 {
		return length + i
	}
	return i
}

// Index returns the element at position i (supporting negative indices
// counted from the tail), reporting false when out of range.
func (v *Value) Index(i int) ([]byte, bool) {
	idx := resolveIndex(i, len(v.List))
	if idx < 0 || idx >= len(v.List) {
		return nil, false
	}
	return v.List[idx], true
}

// Set overwrites the element at position i, reporting false when out of
// range.
func (v *Value) Set(i int, value []byte) bool {
	idx := resolveIndex(i, len(v.List))
	if idx < 0 || idx >= len(v.List) {
		return false
	}
	v.List[idx] = value
	return true
}

// Range returns the inclusive slice [start, stop] (both possibly negative,
// counted from the tail), clamped to the list bounds. Out-of-range bounds
// yield an empty (non-nil-distinguishing at this layer) result.
func (v *Value) Range(start, stop int) [][]byte {
	n := len(v.List)
	start = resolveIndex(start, n)
	stop = resolveIndex(stop, n)
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 || start >= n {
		return nil
	}
	out := make([][]byte, stop-start+1)
	copy(out, v.List[start:stop+1])
	return out
}

// Trim keeps only the inclusive slice [start, stop] (Redis LTRIM
// semantics: negative indices from the tail, out-of-range collapses to
// empty rather than erroring).
func (v *Value) Trim(start, stop int) {
	v.List = v.Range(start, stop)
}

// FindIndex returns the index of the first element equal to pivot, or -1.
func (v *Value) FindIndex(pivot []byte) int {
	for i, item := range v.List {
		if bytes.Equal(item, pivot) {
			return i
		}
	}
	return -1
}

// InsertPivot inserts value immediately before (after=false) or after
// (after=true) the first occurrence of pivot. Returns the new length, or -1
// if pivot is not found.
func (v *Value) InsertPivot(pivot, value []byte, after bool) int {
	idx := v.FindIndex(pivot)
	if idx < 0 {
		return -1
	}
	at := idx
	if after {
		at = idx + 1
	}
	v.List = append(v.List, nil)
	copy(v.List[at+1:], v.List[at:])
	v.List[at] = value
	return len(v.List)
}

// RemoveN removes occurrences of value from the list per the LREM count
// semantics: count > 0 removes the first count occurrences scanning head to
// tail, count < 0 removes the last |count| occurrences scanning tail to
// head, and count == 0 removes every occurrence. Returns the number removed.
func (v *Value) RemoveN(count int, value []byte) int {
	if len(v.List) == 0 {
		return 0
	}
	reverse := count < 0
	if reverse {
		count = -count
	}
	if count == 0 {
		count = len(v.List)
	}

	src := v.List
	if reverse {
		src = reverseCopy(v.List)
	}

	out := make([][]byte, 0, len(src))
	removed := 0
	for _, item := range src {
		if removed < count && bytes.Equal(item, value) {
			removed++
			continue
		}
		out = append(out, item)
	}
	if reverse {
		out = reverseCopy(out)
	}
	v.List = out
	return removed
}

func reverseCopy(src [][]byte) [][]byte {
	out := make([][]byte, len(src))
	for i, item := range src {
		out[len(src)-1-i] = item
	}
	return out
}
