package expr

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Expr is a handle to an expression node owned by an Arena.
type Expr int32

const NilExpr = Expr(-1)

type Kind uint8

const (
	KindCharClass Kind = iota
	KindConcat
	KindAlt
	KindRepeat
	KindNot
	KindUntil
	KindLookahead
	KindCondition
)

func (k Kind) String() string {
	switch k {
	case KindCharClass:
		return "char-class"
	case KindConcat:
		return "concat"
	case KindAlt:
		return "alt"
	case KindRepeat:
		return "repeat"
	case KindNot:
		return "not"
	case KindUntil:
		return "until"
	case KindLookahead:
		return "lookahead"
	case KindCondition:
		return "condition"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// TypeSet is a bit set of the kinds occurring in an expression subtree.
type TypeSet uint16

func typeSetOf(k Kind) TypeSet {
	return TypeSet(1) << k
}

func (ts TypeSet) Has(k Kind) bool {
	return ts&typeSetOf(k) != 0
}

func (ts TypeSet) HasAny(ks ...Kind) bool {
	for _, k := range ks {
		if ts.Has(k) {
			return true
		}
	}
	return false
}

const (
	// VariableLength is the word length of expressions whose match length
	// isn't statically known.
	VariableLength = -1

	// Unbounded is the upper bound of an open repetition.
	Unbounded = -1
)

type node struct {
	kind     Kind
	children []Expr
	set      RangeSet
	min      int
	max      int
	cond     Condition
	types    TypeSet
	length   int
}

func (n *node) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|", n.kind)
	for i, c := range n.children {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(c)))
	}
	switch n.kind {
	case KindCharClass:
		fmt.Fprintf(&b, "|%v", n.set.Key())
	case KindRepeat:
		fmt.Fprintf(&b, "|%v,%v", n.min, n.max)
	case KindCondition:
		fmt.Fprintf(&b, "|%v", strings.Join(n.cond.names, ","))
	}
	return b.String()
}

// Arena owns hash-consed expression nodes. Structurally equal expressions
// built in the same arena share one handle, so handles can be compared
// directly. An Arena is safe for concurrent use.
type Arena struct {
	mu         sync.RWMutex
	nodes      []*node
	index      map[string]Expr
	normalized map[Expr]Expr
	reversed   map[Expr]Expr
}

func NewArena() *Arena {
	return &Arena{
		index:      map[string]Expr{},
		normalized: map[Expr]Expr{},
		reversed:   map[Expr]Expr{},
	}
}

// Build runs f and converts an invariant violation raised while constructing
// expressions into an error.
func (a *Arena) Build(f func() Expr) (e Expr, retErr error) {
	defer func() {
		if v := recover(); v != nil {
			err, ok := v.(*InvariantError)
			if !ok {
				panic(v)
			}
			e = NilExpr
			retErr = err
		}
	}()
	return f(), nil
}

func (a *Arena) intern(n *node) Expr {
	if !n.types.Has(KindCharClass) {
		raiseInvariantError("a %v expression must contain at least one character class", n.kind)
	}
	k := n.key()
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.index[k]; ok {
		return e
	}
	e := Expr(len(a.nodes))
	a.nodes = append(a.nodes, n)
	a.index[k] = e
	return e
}

func (a *Arena) node(e Expr) *node {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if e < 0 || int(e) >= len(a.nodes) {
		panic(fmt.Errorf("expression handle out of range: %v", e))
	}
	return a.nodes[e]
}

// Len returns the number of distinct nodes in the arena.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

func (a *Arena) CharClass(set RangeSet) Expr {
	if set.IsEmpty() {
		raiseInvariantError("a character class must contain at least one character")
	}
	return a.intern(&node{
		kind:   KindCharClass,
		set:    set,
		types:  typeSetOf(KindCharClass),
		length: 1,
	})
}

func (a *Arena) Char(c rune) Expr {
	return a.CharClass(NewCharSet(c))
}

// Literal returns the concatenation of the characters of s.
func (a *Arena) Literal(s string) Expr {
	var es []Expr
	for _, c := range s {
		es = append(es, a.Char(c))
	}
	return a.Concat(es...)
}

// Everything matches any string, including the empty one.
func (a *Arena) Everything() Expr {
	return a.Star(a.CharClass(FullRangeSet()))
}

func (a *Arena) checkNotNested(parent Kind, children ...Expr) {
	for _, c := range children {
		if a.node(c).types.HasAny(KindLookahead, KindCondition) {
			raiseInvariantError("a %v expression cannot contain lookahead or condition expressions", parent)
		}
	}
}

func (a *Arena) Concat(es ...Expr) Expr {
	var children []Expr
	for _, e := range es {
		n := a.node(e)
		if n.kind == KindConcat {
			children = append(children, n.children...)
			continue
		}
		children = append(children, e)
	}
	if len(children) == 0 {
		raiseInvariantError("a concatenation needs at least one operand")
	}
	if len(children) == 1 {
		return children[0]
	}
	a.checkNotNested(KindConcat, children...)
	n := &node{
		kind:     KindConcat,
		children: children,
		types:    typeSetOf(KindConcat),
	}
	for _, c := range children {
		cn := a.node(c)
		n.types |= cn.types
		if n.length == VariableLength || cn.length == VariableLength {
			n.length = VariableLength
			continue
		}
		n.length += cn.length
	}
	return a.intern(n)
}

// Alt builds an alternation. Lookahead and condition expressions are allowed
// as direct operands only.
func (a *Arena) Alt(es ...Expr) Expr {
	var children []Expr
	for _, e := range es {
		n := a.node(e)
		if n.kind == KindAlt {
			children = append(children, n.children...)
			continue
		}
		children = append(children, e)
	}
	if len(children) == 0 {
		raiseInvariantError("an alternation needs at least one operand")
	}
	if len(children) == 1 {
		return children[0]
	}
	n := &node{
		kind:     KindAlt,
		children: children,
		types:    typeSetOf(KindAlt),
	}
	for i, c := range children {
		cn := a.node(c)
		n.types |= cn.types
		if i == 0 {
			n.length = cn.length
			continue
		}
		if cn.length != n.length {
			n.length = VariableLength
		}
	}
	return a.intern(n)
}

// Repeat matches e at least min and at most max times. Pass Unbounded as max
// for an open repetition.
func (a *Arena) Repeat(e Expr, min, max int) Expr {
	if min < 0 {
		raiseInvariantError("the lower bound of a repetition must be non-negative; got: %v", min)
	}
	if max != Unbounded && max < min {
		raiseInvariantError("the upper bound of a repetition must be greater than or equal to the lower bound; got: {%v,%v}", min, max)
	}
	if min == 1 && max == 1 {
		return e
	}
	a.checkNotNested(KindRepeat, e)
	cn := a.node(e)
	length := VariableLength
	if min == max && cn.length != VariableLength {
		length = cn.length * min
	}
	return a.intern(&node{
		kind:     KindRepeat,
		children: []Expr{e},
		min:      min,
		max:      max,
		types:    typeSetOf(KindRepeat) | cn.types,
		length:   length,
	})
}

func (a *Arena) Star(e Expr) Expr {
	return a.Repeat(e, 0, Unbounded)
}

func (a *Arena) Plus(e Expr) Expr {
	return a.Repeat(e, 1, Unbounded)
}

func (a *Arena) Optional(e Expr) Expr {
	return a.Repeat(e, 0, 1)
}

// Not matches every string e doesn't match.
func (a *Arena) Not(e Expr) Expr {
	return a.modifier(KindNot, e)
}

// Until matches the shortest string ending with the first occurrence of e.
func (a *Arena) Until(e Expr) Expr {
	return a.modifier(KindUntil, e)
}

func (a *Arena) modifier(k Kind, e Expr) Expr {
	a.checkNotNested(k, e)
	return a.intern(&node{
		kind:     k,
		children: []Expr{e},
		types:    typeSetOf(k) | a.node(e).types,
		length:   VariableLength,
	})
}

// Lookahead matches content only when it is followed by trailing. The
// trailing context isn't part of the match.
func (a *Arena) Lookahead(content, trailing Expr) Expr {
	a.checkNotNested(KindLookahead, content, trailing)
	cn := a.node(content)
	tn := a.node(trailing)
	length := VariableLength
	if cn.length != VariableLength && tn.length != VariableLength {
		length = cn.length + tn.length
	}
	return a.intern(&node{
		kind:     KindLookahead,
		children: []Expr{content, trailing},
		types:    typeSetOf(KindLookahead) | cn.types | tn.types,
		length:   length,
	})
}

// Cond restricts e to the lexical states of c.
func (a *Arena) Cond(c Condition, e Expr) Expr {
	if c.IsEmpty() {
		raiseInvariantError("a condition must name at least one lexical state")
	}
	n := a.node(e)
	return a.intern(&node{
		kind:     KindCondition,
		children: []Expr{e},
		cond:     c,
		types:    typeSetOf(KindCondition) | n.types,
		length:   n.length,
	})
}

func (a *Arena) Kind(e Expr) Kind {
	return a.node(e).kind
}

func (a *Arena) NumChildren(e Expr) int {
	return len(a.node(e).children)
}

func (a *Arena) Child(e Expr, i int) Expr {
	return a.node(e).children[i]
}

func (a *Arena) Children(e Expr) []Expr {
	n := a.node(e)
	cs := make([]Expr, len(n.children))
	copy(cs, n.children)
	return cs
}

// RangeSet returns the characters of a character class.
func (a *Arena) RangeSet(e Expr) RangeSet {
	return a.node(e).set
}

// Bounds returns the bounds of a repetition.
func (a *Arena) Bounds(e Expr) (int, int) {
	n := a.node(e)
	return n.min, n.max
}

func (a *Arena) Condition(e Expr) Condition {
	return a.node(e).cond
}

func (a *Arena) TypeSet(e Expr) TypeSet {
	return a.node(e).types
}

// WordLength returns the length of every word e matches, or VariableLength.
func (a *Arena) WordLength(e Expr) int {
	return a.node(e).length
}

func (a *Arena) String(e Expr) string {
	var b strings.Builder
	a.write(&b, e)
	return b.String()
}

func (a *Arena) write(b *strings.Builder, e Expr) {
	n := a.node(e)
	switch n.kind {
	case KindCharClass:
		rs := n.set.ranges
		if len(rs) == 1 && rs[0].From == rs[0].To && strconv.IsPrint(rs[0].From) {
			b.WriteString(strconv.QuoteRune(rs[0].From))
			return
		}
		b.WriteString(n.set.String())
	case KindConcat, KindAlt:
		sep := " "
		if n.kind == KindAlt {
			sep = "|"
		}
		b.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				b.WriteString(sep)
			}
			a.write(b, c)
		}
		b.WriteByte(')')
	case KindRepeat:
		a.write(b, n.children[0])
		if n.max == Unbounded {
			fmt.Fprintf(b, "{%v,}", n.min)
		} else {
			fmt.Fprintf(b, "{%v,%v}", n.min, n.max)
		}
	case KindNot:
		b.WriteByte('!')
		a.write(b, n.children[0])
	case KindUntil:
		b.WriteByte('~')
		a.write(b, n.children[0])
	case KindLookahead:
		a.write(b, n.children[0])
		b.WriteByte('/')
		a.write(b, n.children[1])
	case KindCondition:
		b.WriteString(n.cond.String())
		a.write(b, n.children[0])
	}
}
