package compiler

import (
	"github.com/nihei9/lexautom/expr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// appendLookahead picks one of three strategies for content/trailing:
//   - the trailing context has a fixed length per alternative: the scanner
//     gives back that many characters.
//   - the content has a fixed length per alternative: the scanner keeps that
//     many characters.
//   - otherwise the scanner runs the forward-pass and backward-pass automata
//     to find the longest content the trailing context validates.
func (c *automatonCompiler[A]) appendLookahead(rule int, e expr.Expr, n *nfa) *ruleError {
	content := c.arena.Child(e, 0)
	trailing := c.arena.Child(e, 1)
	if alts, ok := c.fixedLengthAlternatives(trailing); ok {
		return c.appendFixCondition(rule, content, alts, n)
	}
	if alts, ok := c.fixedLengthAlternatives(content); ok {
		return c.appendFixContent(rule, alts, trailing, n)
	}
	return c.appendVariable(rule, e, n)
}

// fixedLengthAlternatives returns the top-level alternatives of e when each
// of them has a statically known length.
func (c *automatonCompiler[A]) fixedLengthAlternatives(e expr.Expr) ([]expr.Expr, bool) {
	alts := []expr.Expr{e}
	if c.arena.Kind(e) == expr.KindAlt {
		alts = c.arena.Children(e)
	}
	for _, alt := range alts {
		if c.arena.WordLength(alt) == expr.VariableLength {
			return nil, false
		}
	}
	return alts, true
}

// groupByLength groups fixed-length expressions by their length and returns
// the lengths in ascending order.
func (c *automatonCompiler[A]) groupByLength(es []expr.Expr) (map[int][]expr.Expr, []int) {
	groups := map[int][]expr.Expr{}
	for _, e := range es {
		l := c.arena.WordLength(e)
		groups[l] = append(groups[l], e)
	}
	lengths := maps.Keys(groups)
	slices.Sort(lengths)
	return groups, lengths
}

func (c *automatonCompiler[A]) appendFixCondition(rule int, content expr.Expr, trailing []expr.Expr, n *nfa) *ruleError {
	groups, lengths := c.groupByLength(trailing)
	if lengths[0] == 0 {
		return errEmptyWord("the trailing context matches the empty string: %v", c.arena.String(groups[0][0]))
	}

	start := n.newState()
	mid := n.newState()
	n.appendExpr(c.arena, content, start, mid)
	if n.reaches(start, mid) {
		return errEmptyWord("the lookahead content matches the empty string: %v", c.arena.String(content))
	}
	// Shorter trailing contexts get lower action IDs, so when several lengths
	// end in the same state the longest content wins.
	for _, l := range lengths {
		end := n.newState()
		for _, alt := range groups[l] {
			n.appendExpr(c.arena, alt, mid, end)
		}
		n.setAction(end, c.pool.intern(Action{
			Rule:  rule,
			Kind:  LookaheadFixCondition,
			Value: l,
		}))
	}
	n.addEpsilon(n.start, start)
	return nil
}

func (c *automatonCompiler[A]) appendFixContent(rule int, content []expr.Expr, trailing expr.Expr, n *nfa) *ruleError {
	groups, lengths := c.groupByLength(content)
	if lengths[0] == 0 {
		return errEmptyWord("the lookahead content matches the empty string: %v", c.arena.String(groups[0][0]))
	}

	start := n.newState()
	// Longer contents get lower action IDs.
	for i := len(lengths) - 1; i >= 0; i-- {
		l := lengths[i]
		mid := n.newState()
		end := n.newState()
		for _, alt := range groups[l] {
			n.appendExpr(c.arena, alt, start, mid)
		}
		n.appendExpr(c.arena, trailing, mid, end)
		if n.reaches(mid, end) {
			return errEmptyWord("the trailing context matches the empty string: %v", c.arena.String(trailing))
		}
		n.setAction(end, c.pool.intern(Action{
			Rule:  rule,
			Kind:  LookaheadFixContent,
			Value: l,
		}))
	}
	n.addEpsilon(n.start, start)
	return nil
}

func (c *automatonCompiler[A]) appendVariable(rule int, e expr.Expr, n *nfa) *ruleError {
	content := c.arena.Child(e, 0)
	trailing := c.arena.Child(e, 1)

	start := n.newState()
	mid := n.newState()
	end := n.newState()
	n.appendExpr(c.arena, content, start, mid)
	if n.reaches(start, mid) {
		return errEmptyWord("the lookahead content matches the empty string: %v", c.arena.String(content))
	}
	n.appendExpr(c.arena, trailing, mid, end)
	if n.reaches(mid, end) {
		return errEmptyWord("the trailing context matches the empty string: %v", c.arena.String(trailing))
	}

	aux := c.lookaheadPasses(rule, e)
	n.setAction(end, c.pool.intern(Action{
		Rule:  rule,
		Kind:  LookaheadVariable,
		Value: aux,
	}))
	n.addEpsilon(n.start, start)
	return nil
}

// lookaheadPasses builds, once per lookahead expression, an NFA recognizing
// the content and an NFA recognizing the reversed trailing context. It
// returns the index of the former; the latter follows it.
func (c *automatonCompiler[A]) lookaheadPasses(rule int, e expr.Expr) int {
	if aux, ok := c.lookaheadAux[e]; ok {
		return aux
	}
	aux := len(c.nfas)
	c.lookaheadAux[e] = aux

	passes := []struct {
		e    expr.Expr
		kind LookaheadKind
	}{
		{
			e:    c.arena.Child(e, 0),
			kind: LookaheadForwardPass,
		},
		{
			e:    c.arena.Reverse(c.arena.Child(e, 1)),
			kind: LookaheadBackwardPass,
		},
	}
	for _, pass := range passes {
		n := newNFA(c.alpha)
		start := n.newState()
		end := n.newState()
		n.appendExpr(c.arena, pass.e, start, end)
		n.setAction(end, c.pool.intern(Action{
			Rule:  rule,
			Kind:  pass.kind,
			Value: aux,
		}))
		n.addEpsilon(n.start, start)
		c.nfas = append(c.nfas, n)
	}
	return aux
}
