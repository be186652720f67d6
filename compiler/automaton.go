package compiler

// Automaton is the result of a compilation. DFAs holds one minimized DFA per
// lexical state, in the order of Names, followed by the forward-pass and
// backward-pass DFAs of variable-length lookaheads.
type Automaton[A any] struct {
	Alphabet      *Alphabet
	Names         []string
	NameMap       map[string]int
	Pool          *ActionPool[A]
	NFAStateCount int
	DFAs          []*DFA
}

// DFA returns the automaton of a lexical state.
func (a *Automaton[A]) DFA(name string) (*DFA, bool) {
	i, ok := a.NameMap[name]
	if !ok {
		return nil, false
	}
	return a.DFAs[i], true
}

func (a *Automaton[A]) ConditionCount() int {
	return len(a.Names)
}
