package compiler

import (
	"encoding/binary"
	"fmt"
	"io"
)

type dfaState struct {
	trans  []int
	action int
}

// DFA is a deterministic automaton over the symbols of an alphabet. Each state
// has at most one destination per symbol and at most one action.
type DFA struct {
	symbolCount int
	start       int
	states      []dfaState

	// context holds the sorted NFA state set each state was built from. It is
	// only kept when a caller needs it and released once consumed.
	context [][]int
}

func newDFAState(symbolCount int, action int) dfaState {
	trans := make([]int, symbolCount)
	for i := range trans {
		trans[i] = -1
	}
	return dfaState{
		trans:  trans,
		action: action,
	}
}

func (d *DFA) StateCount() int {
	return len(d.states)
}

func (d *DFA) SymbolCount() int {
	return d.symbolCount
}

func (d *DFA) Start() int {
	return d.start
}

// Action returns the action ID of a state or NoAction.
func (d *DFA) Action(state int) int {
	return d.states[state].action
}

// Transition returns the destination of a state on a symbol.
func (d *DFA) Transition(state, sym int) (int, bool) {
	to := d.states[state].trans[sym]
	if to < 0 {
		return 0, false
	}
	return to, true
}

func (d *DFA) releaseContext() {
	d.context = nil
}

func (d *DFA) write(w io.Writer) {
	for s, state := range d.states {
		mark := " "
		if s == d.start {
			mark = ">"
		}
		fmt.Fprintf(w, "%v%v", mark, s)
		if state.action != NoAction {
			fmt.Fprintf(w, " [action %v]", state.action)
		}
		for sym, to := range state.trans {
			if to < 0 {
				continue
			}
			fmt.Fprintf(w, " %v->%v", sym, to)
		}
		fmt.Fprintf(w, "\n")
	}
}

func stateSetKey(set []int) string {
	buf := make([]byte, 0, len(set)*2)
	for _, s := range set {
		buf = binary.AppendUvarint(buf, uint64(s))
	}
	return string(buf)
}

// toDFA runs the subset construction from the start state of n.
func (n *nfa) toDFA(keepContext bool) *DFA {
	symCount := n.alpha.Len()
	d := &DFA{
		symbolCount: symCount,
	}
	var sets [][]int
	index := map[string]int{}
	lookup := func(set []int) int {
		k := stateSetKey(set)
		if id, ok := index[k]; ok {
			return id
		}
		id := len(d.states)
		d.states = append(d.states, newDFAState(symCount, n.actionOf(set)))
		sets = append(sets, set)
		index[k] = id
		return id
	}

	d.start = lookup(n.closure([]int{n.start}))
	targets := make([][]int, symCount)
	for s := 0; s < len(d.states); s++ {
		for _, q := range sets[s] {
			for _, e := range n.states[q].edges {
				for sym, ok := e.symbols.NextSet(0); ok; sym, ok = e.symbols.NextSet(sym + 1) {
					targets[sym] = append(targets[sym], e.to)
				}
			}
		}
		for sym, ts := range targets {
			if len(ts) == 0 {
				continue
			}
			to := lookup(n.closure(ts))
			d.states[s].trans[sym] = to
			targets[sym] = ts[:0]
		}
	}

	if keepContext {
		d.context = sets
	}
	return d
}
