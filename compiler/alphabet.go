package compiler

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/nihei9/lexautom/expr"
	"golang.org/x/exp/slices"
)

// Alphabet partitions the code-point space into the fewest symbol classes
// that still distinguish every character class of a rule set. Every
// character class of the rule set is a union of whole symbols.
type Alphabet struct {
	symbols []expr.RangeSet

	// intervals and intervalSyms form a sorted table of disjoint intervals
	// covering the code-point space, each mapped to its symbol.
	intervals    []expr.Range
	intervalSyms []int

	cache map[string]*bitset.BitSet
}

// newAlphabet builds an alphabet distinguishing the given sets. The full
// code-point range is always part of the partition, so symbols cover every
// code point.
func newAlphabet(sets []expr.RangeSet) *Alphabet {
	classes := []expr.RangeSet{expr.FullRangeSet()}
	{
		seen := map[string]struct{}{
			classes[0].Key(): {},
		}
		for _, s := range sets {
			k := s.Key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			classes = append(classes, s)
		}
	}

	// Break the code-point space at every boundary of every class.
	var bounds []rune
	{
		bs := map[rune]struct{}{
			0:                     {},
			expr.MaxCodePoint + 1: {},
		}
		for _, c := range classes {
			for _, r := range c.Ranges() {
				bs[r.From] = struct{}{}
				bs[r.To+1] = struct{}{}
			}
		}
		for b := range bs {
			bounds = append(bounds, b)
		}
		slices.Sort(bounds)
	}
	intervals := make([]expr.Range, len(bounds)-1)
	covers := make([]*bitset.BitSet, len(intervals))
	for i := range intervals {
		intervals[i] = expr.NewRange(bounds[i], bounds[i+1]-1)
		covers[i] = bitset.New(uint(len(classes)))
	}
	for id, c := range classes {
		for _, r := range c.Ranges() {
			// r.From is a boundary, so it starts an interval.
			i, _ := slices.BinarySearchFunc(intervals, r.From, expr.Range.Compare)
			for ; i < len(intervals) && intervals[i].To <= r.To; i++ {
				covers[i].Set(uint(id))
			}
		}
	}

	// Intervals covered by the same set of classes can't be told apart by
	// any rule, so they form one symbol.
	alpha := &Alphabet{
		intervals:    intervals,
		intervalSyms: make([]int, len(intervals)),
		cache:        map[string]*bitset.BitSet{},
	}
	{
		sym2Ranges := [][]expr.Range{}
		coverSyms := map[string]int{}
		for i, cover := range covers {
			k := cover.String()
			sym, ok := coverSyms[k]
			if !ok {
				sym = len(sym2Ranges)
				coverSyms[k] = sym
				sym2Ranges = append(sym2Ranges, nil)
			}
			sym2Ranges[sym] = append(sym2Ranges[sym], intervals[i])
			alpha.intervalSyms[i] = sym
		}
		for _, rs := range sym2Ranges {
			alpha.symbols = append(alpha.symbols, expr.NewRangeSet(rs...))
		}
	}
	return alpha
}

// collectRangeSets returns the character classes of the given expressions.
func collectRangeSets(arena *expr.Arena, es []expr.Expr) []expr.RangeSet {
	var sets []expr.RangeSet
	visited := map[expr.Expr]struct{}{}
	var walk func(e expr.Expr)
	walk = func(e expr.Expr) {
		if _, ok := visited[e]; ok {
			return
		}
		visited[e] = struct{}{}
		if arena.Kind(e) == expr.KindCharClass {
			sets = append(sets, arena.RangeSet(e))
			return
		}
		for _, c := range arena.Children(e) {
			walk(c)
		}
	}
	for _, e := range es {
		walk(e)
	}
	return sets
}

// Len returns the number of symbols.
func (a *Alphabet) Len() int {
	return len(a.symbols)
}

// Symbol returns the code points belonging to a symbol.
func (a *Alphabet) Symbol(sym int) expr.RangeSet {
	return a.symbols[sym]
}

// SymbolOf returns the symbol a code point belongs to.
func (a *Alphabet) SymbolOf(c rune) (int, bool) {
	if c < 0 || c > expr.MaxCodePoint {
		return 0, false
	}
	i, _ := slices.BinarySearchFunc(a.intervals, c, expr.Range.Compare)
	return a.intervalSyms[i], true
}

// ToSymbolMap returns a dense table mapping every code point to its symbol.
func (a *Alphabet) ToSymbolMap() []int32 {
	m := make([]int32, expr.MaxCodePoint+1)
	for i, r := range a.intervals {
		sym := int32(a.intervalSyms[i])
		for c := r.From; c <= r.To; c++ {
			m[c] = sym
		}
	}
	return m
}

// symbolsOf returns the symbols whose union is s. s must be expressible as
// such a union, which holds for every character class the alphabet was
// built from.
func (a *Alphabet) symbolsOf(s expr.RangeSet) *bitset.BitSet {
	k := s.Key()
	if syms, ok := a.cache[k]; ok {
		return syms
	}
	syms := bitset.New(uint(len(a.symbols)))
	for _, r := range s.Ranges() {
		i, _ := slices.BinarySearchFunc(a.intervals, r.From, expr.Range.Compare)
		for ; i < len(a.intervals) && a.intervals[i].From <= r.To; i++ {
			if a.intervals[i].From < r.From || a.intervals[i].To > r.To {
				panic(fmt.Errorf("character class %v straddles alphabet interval %v", s, a.intervals[i]))
			}
			syms.Set(uint(a.intervalSyms[i]))
		}
	}
	a.cache[k] = syms
	return syms
}

func (a *Alphabet) String() string {
	return fmt.Sprintf("%v symbols over %v intervals", len(a.symbols), len(a.intervals))
}
