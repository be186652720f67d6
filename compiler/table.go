package compiler

import (
	"github.com/nihei9/lexautom/spec"
)

// GenCompiledAutomaton flattens an automaton into transition tables. name
// gives the action name of a rule payload.
func GenCompiledAutomaton[A any](aut *Automaton[A], name func(A) string) *spec.CompiledAutomaton {
	c := &spec.CompiledAutomaton{
		Conditions:    aut.Names,
		NFAStateCount: aut.NFAStateCount,
	}
	for sym := 0; sym < aut.Alphabet.Len(); sym++ {
		var rs [][2]rune
		for _, r := range aut.Alphabet.Symbol(sym).Ranges() {
			rs = append(rs, [2]rune{r.From, r.To})
		}
		c.Alphabet = append(c.Alphabet, rs)
	}
	for id, act := range aut.Pool.Actions() {
		c.Actions = append(c.Actions, &spec.CompiledAction{
			Rule:   act.Rule,
			Action: spec.ActionName(name(aut.Pool.Rule(id).Action)),
			Kind:   act.Kind.String(),
			Value:  act.Value,
		})
	}
	for _, d := range aut.DFAs {
		c.DFAs = append(c.DFAs, genTransitionTable(d))
	}
	return c
}

func genTransitionTable(d *DFA) *spec.TransitionTable {
	// Since 0 represents an invalid value in a transition table,
	// assign a number greater than or equal to 1 to states.
	rowCount := len(d.states) + 1
	colCount := d.symbolCount

	acc := make([]int, rowCount)
	tran := make([]int, rowCount*colCount)
	for s, state := range d.states {
		if state.action != NoAction {
			acc[s+1] = state.action + 1
		}
		for sym, to := range state.trans {
			if to < 0 {
				continue
			}
			tran[(s+1)*colCount+sym] = to + 1
		}
	}

	return &spec.TransitionTable{
		InitialState:           d.start + 1,
		AcceptingStates:        acc,
		UncompressedTransition: tran,
		RowCount:               rowCount,
		ColCount:               colCount,
	}
}
