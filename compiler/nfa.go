package compiler

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/nihei9/lexautom/expr"
	"golang.org/x/exp/slices"
)

type nfaEdge struct {
	symbols *bitset.BitSet
	to      int
}

type nfaState struct {
	edges  []nfaEdge
	eps    []int
	action int
}

// nfa is a nondeterministic automaton over the symbols of an alphabet. States
// are addressed by index and are never removed.
type nfa struct {
	alpha  *Alphabet
	states []nfaState
	start  int

	// visited[s] == gen means s has been visited by the running closure.
	visited []uint32
	gen     uint32
}

func newNFA(alpha *Alphabet) *nfa {
	n := &nfa{
		alpha: alpha,
	}
	n.start = n.newState()
	return n
}

func (n *nfa) newState() int {
	n.states = append(n.states, nfaState{
		action: NoAction,
	})
	return len(n.states) - 1
}

func (n *nfa) addEdge(from, to int, symbols *bitset.BitSet) {
	n.states[from].edges = append(n.states[from].edges, nfaEdge{
		symbols: symbols,
		to:      to,
	})
}

func (n *nfa) addEpsilon(from, to int) {
	n.states[from].eps = append(n.states[from].eps, to)
}

func (n *nfa) setAction(state, action int) {
	n.states[state].action = action
}

func (n *nfa) nextGeneration() uint32 {
	if len(n.visited) < len(n.states) {
		n.visited = append(n.visited, make([]uint32, len(n.states)-len(n.visited))...)
	}
	n.gen++
	if n.gen == 0 {
		for i := range n.visited {
			n.visited[i] = 0
		}
		n.gen = 1
	}
	return n.gen
}

// closure returns the sorted epsilon closure of the seeds.
func (n *nfa) closure(seeds []int) []int {
	gen := n.nextGeneration()
	var set []int
	stack := make([]int, 0, len(seeds))
	for _, s := range seeds {
		if n.visited[s] == gen {
			continue
		}
		n.visited[s] = gen
		stack = append(stack, s)
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		set = append(set, s)
		for _, t := range n.states[s].eps {
			if n.visited[t] == gen {
				continue
			}
			n.visited[t] = gen
			stack = append(stack, t)
		}
	}
	slices.Sort(set)
	return set
}

// reaches reports whether to is in the epsilon closure of from.
func (n *nfa) reaches(from, to int) bool {
	for _, s := range n.closure([]int{from}) {
		if s == to {
			return true
		}
	}
	return false
}

// actionOf returns the lowest action ID among the states, so the earliest
// declared rule wins when several rules match the same input.
func (n *nfa) actionOf(states []int) int {
	act := NoAction
	for _, s := range states {
		a := n.states[s].action
		if a == NoAction {
			continue
		}
		if act == NoAction || a < act {
			act = a
		}
	}
	return act
}

// appendExpr adds the states and transitions recognizing e between from and
// to. e must be normalized and free of lookahead and condition expressions.
// Nothing is ever added into from or out of to, so callers can share them
// between alternatives.
func (n *nfa) appendExpr(arena *expr.Arena, e expr.Expr, from, to int) {
	switch arena.Kind(e) {
	case expr.KindCharClass:
		n.addEdge(from, to, n.alpha.symbolsOf(arena.RangeSet(e)))
	case expr.KindConcat:
		cs := arena.Children(e)
		cur := from
		for i, c := range cs {
			next := to
			if i < len(cs)-1 {
				next = n.newState()
			}
			n.appendExpr(arena, c, cur, next)
			cur = next
		}
	case expr.KindAlt:
		for _, c := range arena.Children(e) {
			n.appendExpr(arena, c, from, to)
		}
	case expr.KindRepeat:
		min, max := arena.Bounds(e)
		n.appendRepeat(arena, arena.Child(e, 0), min, max, from, to)
	case expr.KindNot:
		n.appendNot(arena, arena.Child(e, 0), from, to)
	default:
		panic(fmt.Errorf("a %v expression cannot be appended to an NFA: %v", arena.Kind(e), arena.String(e)))
	}
}

func (n *nfa) appendRepeat(arena *expr.Arena, e expr.Expr, min, max int, from, to int) {
	cur := from
	if max == expr.Unbounded {
		for i := 0; i < min; i++ {
			next := n.newState()
			n.appendExpr(arena, e, cur, next)
			cur = next
		}
		loopHead := n.newState()
		loopTail := n.newState()
		n.addEpsilon(cur, loopHead)
		n.appendExpr(arena, e, loopHead, loopTail)
		n.addEpsilon(loopTail, loopHead)
		n.addEpsilon(loopHead, to)
		return
	}
	if max == 0 {
		n.addEpsilon(from, to)
		return
	}
	for i := 0; i < max; i++ {
		if i >= min {
			n.addEpsilon(cur, to)
		}
		next := to
		if i < max-1 {
			next = n.newState()
		}
		n.appendExpr(arena, e, cur, next)
		cur = next
	}
}
