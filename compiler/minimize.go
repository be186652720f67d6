package compiler

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// partition is a refinable partition of DFA states. The states of a block
// occupy elems[first[b]:end[b]]; the first marked[b] of them are marked.
type partition struct {
	elems   []int
	loc     []int
	blockOf []int
	first   []int
	end     []int
	marked  []int
}

func newPartition(groups [][]int, stateCount int) *partition {
	p := &partition{
		elems:   make([]int, 0, stateCount),
		loc:     make([]int, stateCount),
		blockOf: make([]int, stateCount),
	}
	for b, g := range groups {
		p.first = append(p.first, len(p.elems))
		for _, s := range g {
			p.loc[s] = len(p.elems)
			p.blockOf[s] = b
			p.elems = append(p.elems, s)
		}
		p.end = append(p.end, len(p.elems))
		p.marked = append(p.marked, 0)
	}
	return p
}

func (p *partition) blockCount() int {
	return len(p.first)
}

func (p *partition) size(b int) int {
	return p.end[b] - p.first[b]
}

// mark moves s into the marked prefix of its block and reports whether the
// block had no marked states before.
func (p *partition) mark(s int) bool {
	b := p.blockOf[s]
	i := p.loc[s]
	j := p.first[b] + p.marked[b]
	if i < j {
		return false
	}
	t := p.elems[j]
	p.elems[i], p.elems[j] = t, s
	p.loc[t], p.loc[s] = i, j
	p.marked[b]++
	return p.marked[b] == 1
}

// split moves the marked states of b into a new block and returns it, or
// returns -1 when every state of b is marked.
func (p *partition) split(b int) int {
	m := p.marked[b]
	p.marked[b] = 0
	if m == p.size(b) {
		return -1
	}
	nb := len(p.first)
	p.first = append(p.first, p.first[b])
	p.end = append(p.end, p.first[b]+m)
	p.marked = append(p.marked, 0)
	p.first[b] += m
	for i := p.first[nb]; i < p.end[nb]; i++ {
		p.blockOf[p.elems[i]] = nb
	}
	return nb
}

type splitter struct {
	block int
	sym   int
}

// minimize returns the minimal DFA equivalent to d using Hopcroft's
// algorithm. A virtual idle state makes the transition function total;
// states equivalent to it can never accept and are dropped from the result.
func minimize(d *DFA) *DFA {
	stateCount := len(d.states)
	idle := stateCount
	total := stateCount + 1
	symCount := d.symbolCount
	next := func(s, sym int) int {
		if s == idle {
			return idle
		}
		if to := d.states[s].trans[sym]; to >= 0 {
			return to
		}
		return idle
	}

	// Predecessors of t on sym are srcs[offsets[sym*total+t]:offsets[sym*total+t+1]].
	offsets := make([]int, symCount*total+1)
	srcs := make([]int, symCount*total)
	{
		for sym := 0; sym < symCount; sym++ {
			for s := 0; s < total; s++ {
				offsets[sym*total+next(s, sym)+1]++
			}
		}
		for i := 1; i < len(offsets); i++ {
			offsets[i] += offsets[i-1]
		}
		cursor := make([]int, len(offsets))
		copy(cursor, offsets)
		for sym := 0; sym < symCount; sym++ {
			for s := 0; s < total; s++ {
				k := sym*total + next(s, sym)
				srcs[cursor[k]] = s
				cursor[k]++
			}
		}
	}

	// States start out grouped by action. The group of states without an
	// action holds the idle state and comes first.
	var p *partition
	{
		byAction := map[int][]int{
			NoAction: {idle},
		}
		for s, state := range d.states {
			byAction[state.action] = append(byAction[state.action], s)
		}
		acts := maps.Keys(byAction)
		slices.Sort(acts)
		groups := make([][]int, 0, len(acts))
		for _, act := range acts {
			groups = append(groups, byAction[act])
		}
		p = newPartition(groups, total)
	}

	// There are never more blocks than states.
	var work []splitter
	pending := make([]bool, total*symCount)
	push := func(b, sym int) {
		if pending[b*symCount+sym] {
			return
		}
		pending[b*symCount+sym] = true
		work = append(work, splitter{
			block: b,
			sym:   sym,
		})
	}
	for b := 0; b < p.blockCount(); b++ {
		for sym := 0; sym < symCount; sym++ {
			push(b, sym)
		}
	}

	var preds []int
	var touched []int
	for head := 0; head < len(work); head++ {
		w := work[head]
		pending[w.block*symCount+w.sym] = false

		preds = preds[:0]
		for i := p.first[w.block]; i < p.end[w.block]; i++ {
			k := w.sym*total + p.elems[i]
			preds = append(preds, srcs[offsets[k]:offsets[k+1]]...)
		}
		touched = touched[:0]
		for _, s := range preds {
			if p.mark(s) {
				touched = append(touched, p.blockOf[s])
			}
		}
		for _, b := range touched {
			nb := p.split(b)
			if nb < 0 {
				continue
			}
			for sym := 0; sym < symCount; sym++ {
				if pending[b*symCount+sym] || p.size(nb) <= p.size(b) {
					push(nb, sym)
				} else {
					push(b, sym)
				}
			}
		}
	}

	return rebuild(d, p, idle, next)
}

// rebuild creates one state per block reachable from the start block. States
// are numbered in breadth-first order, so the start state is 0.
func rebuild(d *DFA, p *partition, idle int, next func(s, sym int) int) *DFA {
	m := &DFA{
		symbolCount: d.symbolCount,
	}
	idleBlock := p.blockOf[idle]
	startBlock := p.blockOf[d.start]
	if startBlock == idleBlock {
		m.states = append(m.states, newDFAState(d.symbolCount, NoAction))
		return m
	}

	ids := map[int]int{}
	var queue []int
	id := func(b int) int {
		if i, ok := ids[b]; ok {
			return i
		}
		i := len(m.states)
		rep := p.elems[p.first[b]]
		m.states = append(m.states, newDFAState(d.symbolCount, d.states[rep].action))
		ids[b] = i
		queue = append(queue, b)
		return i
	}
	m.start = id(startBlock)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		from := ids[b]
		rep := p.elems[p.first[b]]
		for sym := 0; sym < d.symbolCount; sym++ {
			tb := p.blockOf[next(rep, sym)]
			if tb == idleBlock {
				continue
			}
			to := id(tb)
			m.states[from].trans[sym] = to
		}
	}
	return m
}
