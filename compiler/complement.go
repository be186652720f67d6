package compiler

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/nihei9/lexautom/expr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// complementDFA is a total DFA whose accepting states are the rejecting
// states of the DFA it was built from, pruned to the states that can still
// reach an accepting state.
type complementDFA struct {
	start     int
	trans     [][]int
	accepting []bool
	live      *bitset.BitSet
}

// complement builds the complement of d, where d's accepting states are the
// ones whose NFA state set contains end. d must retain its NFA context, which
// is released here.
func complement(d *DFA, end int) *complementDFA {
	stateCount := len(d.states)
	idle := stateCount
	c := &complementDFA{
		start:     d.start,
		trans:     make([][]int, stateCount+1),
		accepting: make([]bool, stateCount+1),
	}
	for s, state := range d.states {
		c.accepting[s] = !slices.Contains(d.context[s], end)
		c.trans[s] = make([]int, d.symbolCount)
		for sym, to := range state.trans {
			if to < 0 {
				to = idle
			}
			c.trans[s][sym] = to
		}
	}
	c.accepting[idle] = true
	c.trans[idle] = make([]int, d.symbolCount)
	for sym := range c.trans[idle] {
		c.trans[idle][sym] = idle
	}
	d.releaseContext()

	// A state is live when an accepting state is reachable from it.
	preds := make([][]int, len(c.trans))
	for s, ts := range c.trans {
		for _, to := range ts {
			preds[to] = append(preds[to], s)
		}
	}
	c.live = bitset.New(uint(len(c.trans)))
	var queue []int
	for s, acc := range c.accepting {
		if acc {
			c.live.Set(uint(s))
			queue = append(queue, s)
		}
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, p := range preds[s] {
			if c.live.Test(uint(p)) {
				continue
			}
			c.live.Set(uint(p))
			queue = append(queue, p)
		}
	}
	return c
}

// appendNot adds states recognizing every word e doesn't match between from
// and to.
func (n *nfa) appendNot(arena *expr.Arena, e expr.Expr, from, to int) {
	sub := newNFA(n.alpha)
	end := sub.newState()
	sub.appendExpr(arena, e, sub.start, end)
	c := complement(sub.toDFA(true), end)
	if !c.live.Test(uint(c.start)) {
		// e matches everything, so its complement matches nothing.
		return
	}

	copies := map[int]int{}
	for s, ok := c.live.NextSet(0); ok; s, ok = c.live.NextSet(s + 1) {
		copies[int(s)] = n.newState()
	}
	for s, ok := c.live.NextSet(0); ok; s, ok = c.live.NextSet(s + 1) {
		byTarget := map[int]*bitset.BitSet{}
		for sym, t := range c.trans[s] {
			if !c.live.Test(uint(t)) {
				continue
			}
			syms, ok := byTarget[t]
			if !ok {
				syms = bitset.New(uint(n.alpha.Len()))
				byTarget[t] = syms
			}
			syms.Set(uint(sym))
		}
		targets := maps.Keys(byTarget)
		slices.Sort(targets)
		for _, t := range targets {
			n.addEdge(copies[int(s)], copies[t], byTarget[t])
		}
		if c.accepting[s] {
			n.addEpsilon(copies[int(s)], to)
		}
	}
	n.addEpsilon(from, copies[c.start])
}
