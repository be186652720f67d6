package expr

// Normalize rewrites e into the subset of expressions the automaton builder
// understands: Until(E) becomes Concat(Not(Concat(EVERYTHING, E, EVERYTHING)), E)
// and double negations are removed. Results are memoized per handle.
func (a *Arena) Normalize(e Expr) Expr {
	a.mu.RLock()
	n, ok := a.normalized[e]
	a.mu.RUnlock()
	if ok {
		return n
	}

	n = a.normalize(e)

	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.normalized[e]; ok {
		return prev
	}
	a.normalized[e] = n
	a.normalized[n] = n
	return n
}

func (a *Arena) normalize(e Expr) Expr {
	n := a.node(e)
	switch n.kind {
	case KindCharClass:
		return e
	case KindConcat:
		return a.Concat(a.normalizeAll(n.children)...)
	case KindAlt:
		return a.Alt(a.normalizeAll(n.children)...)
	case KindRepeat:
		return a.Repeat(a.Normalize(n.children[0]), n.min, n.max)
	case KindNot:
		c := a.Normalize(n.children[0])
		if a.Kind(c) == KindNot {
			return a.Child(c, 0)
		}
		return a.Not(c)
	case KindUntil:
		c := a.Normalize(n.children[0])
		all := a.Everything()
		return a.Concat(a.Not(a.Concat(all, c, all)), c)
	case KindLookahead:
		return a.Lookahead(a.Normalize(n.children[0]), a.Normalize(n.children[1]))
	case KindCondition:
		return a.Cond(n.cond, a.Normalize(n.children[0]))
	}
	raiseInvariantError("unknown expression kind: %v", n.kind)
	return NilExpr
}

func (a *Arena) normalizeAll(es []Expr) []Expr {
	ns := make([]Expr, len(es))
	for i, e := range es {
		ns[i] = a.Normalize(e)
	}
	return ns
}

// Reverse returns an expression matching the reversal of every word e
// matches. Lookahead expressions cannot be reversed.
func (a *Arena) Reverse(e Expr) Expr {
	a.mu.RLock()
	r, ok := a.reversed[e]
	a.mu.RUnlock()
	if ok {
		return r
	}

	r = a.reverse(e)

	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.reversed[e]; ok {
		return prev
	}
	a.reversed[e] = r
	return r
}

func (a *Arena) reverse(e Expr) Expr {
	n := a.node(e)
	switch n.kind {
	case KindCharClass:
		return e
	case KindConcat:
		rs := make([]Expr, len(n.children))
		for i, c := range n.children {
			rs[len(rs)-1-i] = a.Reverse(c)
		}
		return a.Concat(rs...)
	case KindAlt:
		rs := make([]Expr, len(n.children))
		for i, c := range n.children {
			rs[i] = a.Reverse(c)
		}
		return a.Alt(rs...)
	case KindRepeat:
		return a.Repeat(a.Reverse(n.children[0]), n.min, n.max)
	case KindNot:
		return a.Not(a.Reverse(n.children[0]))
	case KindUntil:
		return a.Reverse(a.Normalize(e))
	case KindCondition:
		return a.Cond(n.cond, a.Reverse(n.children[0]))
	case KindLookahead:
		raiseInvariantError("a lookahead expression cannot be reversed")
	}
	raiseInvariantError("unknown expression kind: %v", n.kind)
	return NilExpr
}
