package compiler

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/nihei9/lexautom/expr"
)

// run feeds input to d from its start state and returns the action of the
// state it ends in. It returns NoAction when d gets stuck.
func run(t *testing.T, alpha *Alphabet, d *DFA, input string) int {
	t.Helper()
	s := d.Start()
	for _, c := range input {
		sym, ok := alpha.SymbolOf(c)
		if !ok {
			t.Fatalf("a code point out of range: %U", c)
		}
		to, ok := d.Transition(s, sym)
		if !ok {
			return NoAction
		}
		s = to
	}
	return d.Action(s)
}

// words returns every string over chars up to maxLen characters long,
// including the empty string.
func words(chars string, maxLen int) []string {
	ws := []string{""}
	prev := []string{""}
	for l := 1; l <= maxLen; l++ {
		var cur []string
		for _, w := range prev {
			for _, c := range chars {
				cur = append(cur, w+string(c))
			}
		}
		ws = append(ws, cur...)
		prev = cur
	}
	return ws
}

// buildNFA builds an NFA accepting e with action 0, over an alphabet made
// from the character classes of e.
func buildNFA(arena *expr.Arena, e expr.Expr) (*nfa, *Alphabet) {
	e = arena.Normalize(e)
	alpha := newAlphabet(collectRangeSets(arena, []expr.Expr{e}))
	n := newNFA(alpha)
	end := n.newState()
	n.appendExpr(arena, e, n.start, end)
	n.setAction(end, 0)
	return n, alpha
}

func class(from, to rune) expr.RangeSet {
	return expr.NewRangeSet(expr.NewRange(from, to))
}

// randomExpr builds a random expression over a, b and c without lookahead or
// condition expressions.
func randomExpr(a *expr.Arena, r *rand.Rand, depth int) expr.Expr {
	if depth == 0 || r.Intn(4) == 0 {
		switch r.Intn(4) {
		case 0:
			return a.CharClass(class('a', 'b'))
		default:
			return a.Char(rune('a' + r.Intn(3)))
		}
	}
	switch r.Intn(6) {
	case 0, 1:
		return a.Concat(randomExpr(a, r, depth-1), randomExpr(a, r, depth-1))
	case 2:
		return a.Alt(randomExpr(a, r, depth-1), randomExpr(a, r, depth-1))
	case 3:
		return a.Star(randomExpr(a, r, depth-1))
	case 4:
		min := r.Intn(3)
		max := min + r.Intn(3)
		if r.Intn(3) == 0 {
			max = expr.Unbounded
		}
		return a.Repeat(randomExpr(a, r, depth-1), min, max)
	}
	return a.Not(randomExpr(a, r, depth-1))
}

// mooreStateCount returns the number of states of the minimal DFA equivalent
// to d, computed by naive Moore refinement. States that can't accept anything
// are not counted unless the start state is one of them.
func mooreStateCount(d *DFA) int {
	idle := len(d.states)
	next := func(s, sym int) int {
		if s == idle {
			return idle
		}
		if to := d.states[s].trans[sym]; to >= 0 {
			return to
		}
		return idle
	}
	blocks := make([]int, idle+1)
	blocks[idle] = NoAction
	for s, state := range d.states {
		blocks[s] = state.action
	}
	count := -1
	for {
		ids := map[string]int{}
		refined := make([]int, len(blocks))
		for s := range blocks {
			k := fmt.Sprint(blocks[s])
			for sym := 0; sym < d.symbolCount; sym++ {
				k += fmt.Sprintf(",%v", blocks[next(s, sym)])
			}
			id, ok := ids[k]
			if !ok {
				id = len(ids)
				ids[k] = id
			}
			refined[s] = id
		}
		blocks = refined
		if len(ids) == count {
			break
		}
		count = len(ids)
	}
	if blocks[d.start] == blocks[idle] {
		return 1
	}
	live := map[int]struct{}{}
	for s := 0; s < idle; s++ {
		if blocks[s] != blocks[idle] {
			live[blocks[s]] = struct{}{}
		}
	}
	return len(live)
}
