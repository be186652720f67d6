package expr

import (
	"cmp"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// MaxCodePoint is the largest code point a range set may contain.
const MaxCodePoint = rune(0x10FFFF)

type Range struct {
	From rune
	To   rune
}

func NewRange(from, to rune) Range {
	return Range{
		From: from,
		To:   to,
	}
}

func (r Range) String() string {
	if r.From == r.To {
		return fmt.Sprintf("%X", r.From)
	}
	return fmt.Sprintf("%X-%X", r.From, r.To)
}

func (r Range) Len() int {
	return int(r.To-r.From) + 1
}

// Compare reports whether r lies below c (-1), contains c (0), or lies above
// c (+1). It orders disjoint sorted ranges for a binary search.
func (r Range) Compare(c rune) int {
	switch {
	case r.To < c:
		return -1
	case r.From > c:
		return 1
	}
	return 0
}

// RangeSet is an immutable set of code points represented as sorted,
// disjoint and non-adjacent closed intervals.
type RangeSet struct {
	ranges []Range
}

// NewRangeSet normalizes the given ranges. Bounds are clamped to
// [0, MaxCodePoint] and inverted ranges are dropped.
func NewRangeSet(ranges ...Range) RangeSet {
	rs := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if r.From < 0 {
			r.From = 0
		}
		if r.To > MaxCodePoint {
			r.To = MaxCodePoint
		}
		if r.From > r.To {
			continue
		}
		rs = append(rs, r)
	}
	slices.SortFunc(rs, func(a, b Range) int {
		if a.From != b.From {
			return cmp.Compare(a.From, b.From)
		}
		return cmp.Compare(a.To, b.To)
	})
	merged := rs[:0]
	for _, r := range rs {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if r.From <= last.To+1 {
				if r.To > last.To {
					last.To = r.To
				}
				continue
			}
		}
		merged = append(merged, r)
	}
	return RangeSet{
		ranges: merged,
	}
}

func NewCharSet(chars ...rune) RangeSet {
	rs := make([]Range, 0, len(chars))
	for _, c := range chars {
		rs = append(rs, NewRange(c, c))
	}
	return NewRangeSet(rs...)
}

// FullRangeSet returns the set spanning the whole code-point space.
func FullRangeSet() RangeSet {
	return RangeSet{
		ranges: []Range{NewRange(0, MaxCodePoint)},
	}
}

func (s RangeSet) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Ranges returns a copy of the intervals of s.
func (s RangeSet) Ranges() []Range {
	rs := make([]Range, len(s.ranges))
	copy(rs, s.ranges)
	return rs
}

// Len returns the number of code points in s.
func (s RangeSet) Len() int {
	n := 0
	for _, r := range s.ranges {
		n += r.Len()
	}
	return n
}

func (s RangeSet) Contains(c rune) bool {
	_, ok := slices.BinarySearchFunc(s.ranges, c, Range.Compare)
	return ok
}

func (s RangeSet) Union(t RangeSet) RangeSet {
	rs := make([]Range, 0, len(s.ranges)+len(t.ranges))
	rs = append(rs, s.ranges...)
	rs = append(rs, t.ranges...)
	return NewRangeSet(rs...)
}

func (s RangeSet) Complement() RangeSet {
	var rs []Range
	next := rune(0)
	for _, r := range s.ranges {
		if r.From > next {
			rs = append(rs, NewRange(next, r.From-1))
		}
		next = r.To + 1
	}
	if next <= MaxCodePoint {
		rs = append(rs, NewRange(next, MaxCodePoint))
	}
	return RangeSet{
		ranges: rs,
	}
}

func (s RangeSet) Intersect(t RangeSet) RangeSet {
	var rs []Range
	i, j := 0, 0
	for i < len(s.ranges) && j < len(t.ranges) {
		a, b := s.ranges[i], t.ranges[j]
		from := a.From
		if b.From > from {
			from = b.From
		}
		to := a.To
		if b.To < to {
			to = b.To
		}
		if from <= to {
			rs = append(rs, NewRange(from, to))
		}
		if a.To < b.To {
			i++
		} else {
			j++
		}
	}
	return RangeSet{
		ranges: rs,
	}
}

func (s RangeSet) Equal(t RangeSet) bool {
	if len(s.ranges) != len(t.ranges) {
		return false
	}
	for i, r := range s.ranges {
		if r != t.ranges[i] {
			return false
		}
	}
	return true
}

// Key returns a string identifying the set by value.
func (s RangeSet) Key() string {
	var b strings.Builder
	for i, r := range s.ranges {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%x-%x", r.From, r.To)
	}
	return b.String()
}

func (s RangeSet) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, r := range s.ranges {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(r.String())
	}
	b.WriteByte(']')
	return b.String()
}
