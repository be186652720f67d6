package expr

import (
	"fmt"
	"testing"
)

func TestNewRangeSet(t *testing.T) {
	tests := []struct {
		caption string
		ranges  []Range
		want    []Range
	}{
		{
			caption: "overlapping and adjacent ranges are merged",
			ranges: []Range{
				NewRange('c', 'e'),
				NewRange('a', 'b'),
				NewRange('d', 'g'),
				NewRange('x', 'x'),
			},
			want: []Range{
				NewRange('a', 'g'),
				NewRange('x', 'x'),
			},
		},
		{
			caption: "bounds are clamped",
			ranges: []Range{
				NewRange(-5, 3),
				NewRange(0x10FFF0, 0x200000),
			},
			want: []Range{
				NewRange(0, 3),
				NewRange(0x10FFF0, MaxCodePoint),
			},
		},
		{
			caption: "inverted ranges are dropped",
			ranges: []Range{
				NewRange('z', 'a'),
			},
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			s := NewRangeSet(tt.ranges...)
			got := s.Ranges()
			if len(got) != len(tt.want) {
				t.Fatalf("unexpected ranges; want: %v, got: %v", tt.want, got)
			}
			for j, r := range got {
				if r != tt.want[j] {
					t.Fatalf("unexpected ranges; want: %v, got: %v", tt.want, got)
				}
			}
		})
	}
}

func TestRangeSet_Operations(t *testing.T) {
	az := NewRangeSet(NewRange('a', 'z'))
	dm := NewRangeSet(NewRange('d', 'm'), NewRange('0', '9'))

	if !az.Contains('q') || az.Contains('A') {
		t.Errorf("Contains returned a wrong result")
	}
	if got := az.Intersect(dm); !got.Equal(NewRangeSet(NewRange('d', 'm'))) {
		t.Errorf("unexpected intersection: %v", got)
	}
	if got := az.Union(dm); !got.Equal(NewRangeSet(NewRange('a', 'z'), NewRange('0', '9'))) {
		t.Errorf("unexpected union: %v", got)
	}
	c := az.Complement()
	if c.Contains('a') || c.Contains('z') || !c.Contains(0) || !c.Contains(MaxCodePoint) {
		t.Errorf("unexpected complement: %v", c)
	}
	if got := c.Complement(); !got.Equal(az) {
		t.Errorf("double complement must be the identity; got: %v", got)
	}
	if !FullRangeSet().Complement().IsEmpty() {
		t.Errorf("the complement of the full set must be empty")
	}
	if az.Len() != 26 {
		t.Errorf("unexpected length: %v", az.Len())
	}
	if az.Key() == dm.Key() {
		t.Errorf("different sets must have different keys")
	}
}

func TestRange_Compare(t *testing.T) {
	r := NewRange('b', 'd')
	tests := []struct {
		c    rune
		want int
	}{
		{c: 'a', want: 1},
		{c: 'b', want: 0},
		{c: 'c', want: 0},
		{c: 'd', want: 0},
		{c: 'e', want: -1},
	}
	for _, tt := range tests {
		if got := r.Compare(tt.c); got != tt.want {
			t.Errorf("unexpected result for %q; want: %v, got: %v", tt.c, tt.want, got)
		}
	}

	s := NewRangeSet(NewRange('a', 'c'), NewRange('x', 'z'), NewRange('0', '9'))
	for _, c := range []rune{'0', '5', '9', 'a', 'c', 'x', 'z'} {
		if !s.Contains(c) {
			t.Errorf("%q must be contained", c)
		}
	}
	for _, c := range []rune{0, '/', ':', 'd', 'w', '{', MaxCodePoint} {
		if s.Contains(c) {
			t.Errorf("%q must not be contained", c)
		}
	}
}
