package spec

import (
	"fmt"

	"github.com/nihei9/lexautom/expr"
)

// ExprNode is the JSON form of an expression. Exactly one field is set.
type ExprNode struct {
	Class     [][2]rune      `json:"class,omitempty"`
	Literal   string         `json:"literal,omitempty"`
	Concat    []*ExprNode    `json:"concat,omitempty"`
	Alt       []*ExprNode    `json:"alt,omitempty"`
	Star      *ExprNode      `json:"star,omitempty"`
	Plus      *ExprNode      `json:"plus,omitempty"`
	Optional  *ExprNode      `json:"optional,omitempty"`
	Repeat    *RepeatNode    `json:"repeat,omitempty"`
	Not       *ExprNode      `json:"not,omitempty"`
	Until     *ExprNode      `json:"until,omitempty"`
	Lookahead *LookaheadNode `json:"lookahead,omitempty"`
	Condition *ConditionNode `json:"condition,omitempty"`
}

type RepeatNode struct {
	Expr *ExprNode `json:"expr"`
	Min  int       `json:"min"`

	// Max is the upper bound; nil or a negative value means unbounded.
	Max *int `json:"max,omitempty"`
}

type LookaheadNode struct {
	Content  *ExprNode `json:"content"`
	Trailing *ExprNode `json:"trailing"`
}

type ConditionNode struct {
	Names []string  `json:"names"`
	Expr  *ExprNode `json:"expr"`
}

func (n *ExprNode) forms() int {
	c := 0
	for _, set := range []bool{
		n.Class != nil,
		n.Literal != "",
		n.Concat != nil,
		n.Alt != nil,
		n.Star != nil,
		n.Plus != nil,
		n.Optional != nil,
		n.Repeat != nil,
		n.Not != nil,
		n.Until != nil,
		n.Lookahead != nil,
		n.Condition != nil,
	} {
		if set {
			c++
		}
	}
	return c
}

func (n *ExprNode) validate() error {
	if n == nil {
		return fmt.Errorf("an expression is missing")
	}
	if c := n.forms(); c != 1 {
		return fmt.Errorf("an expression must have exactly one form; got: %v", c)
	}
	switch {
	case n.Class != nil:
		if len(n.Class) == 0 {
			return fmt.Errorf("a character class must have at least one range")
		}
		for _, r := range n.Class {
			if r[0] > r[1] {
				return fmt.Errorf("a range must be in ascending order; got: [%v, %v]", r[0], r[1])
			}
			if r[0] < 0 || r[1] > expr.MaxCodePoint {
				return fmt.Errorf("a range must be within [0, %v]; got: [%v, %v]", expr.MaxCodePoint, r[0], r[1])
			}
		}
	case n.Concat != nil, n.Alt != nil:
		es := n.Concat
		if n.Alt != nil {
			es = n.Alt
		}
		if len(es) == 0 {
			return fmt.Errorf("concat and alt must have at least one operand")
		}
		for _, e := range es {
			if err := e.validate(); err != nil {
				return err
			}
		}
	case n.Star != nil:
		return n.Star.validate()
	case n.Plus != nil:
		return n.Plus.validate()
	case n.Optional != nil:
		return n.Optional.validate()
	case n.Not != nil:
		return n.Not.validate()
	case n.Until != nil:
		return n.Until.validate()
	case n.Repeat != nil:
		if n.Repeat.Min < 0 {
			return fmt.Errorf("the lower bound of a repetition must be non-negative")
		}
		if max := n.Repeat.Max; max != nil && *max >= 0 && *max < n.Repeat.Min {
			return fmt.Errorf("the upper bound of a repetition must be greater than or equal to the lower bound")
		}
		return n.Repeat.Expr.validate()
	case n.Lookahead != nil:
		if err := n.Lookahead.Content.validate(); err != nil {
			return err
		}
		return n.Lookahead.Trailing.validate()
	case n.Condition != nil:
		if len(n.Condition.Names) == 0 {
			return fmt.Errorf("a condition must have at least one name")
		}
		return n.Condition.Expr.validate()
	}
	return nil
}

func (n *ExprNode) build(a *expr.Arena) expr.Expr {
	switch {
	case n.Class != nil:
		rs := make([]expr.Range, len(n.Class))
		for i, r := range n.Class {
			rs[i] = expr.NewRange(r[0], r[1])
		}
		return a.CharClass(expr.NewRangeSet(rs...))
	case n.Literal != "":
		return a.Literal(n.Literal)
	case n.Concat != nil:
		return a.Concat(buildAll(a, n.Concat)...)
	case n.Alt != nil:
		return a.Alt(buildAll(a, n.Alt)...)
	case n.Star != nil:
		return a.Star(n.Star.build(a))
	case n.Plus != nil:
		return a.Plus(n.Plus.build(a))
	case n.Optional != nil:
		return a.Optional(n.Optional.build(a))
	case n.Repeat != nil:
		max := expr.Unbounded
		if n.Repeat.Max != nil && *n.Repeat.Max >= 0 {
			max = *n.Repeat.Max
		}
		return a.Repeat(n.Repeat.Expr.build(a), n.Repeat.Min, max)
	case n.Not != nil:
		return a.Not(n.Not.build(a))
	case n.Until != nil:
		return a.Until(n.Until.build(a))
	case n.Lookahead != nil:
		return a.Lookahead(n.Lookahead.Content.build(a), n.Lookahead.Trailing.build(a))
	case n.Condition != nil:
		return a.Cond(expr.NewCondition(n.Condition.Names...), n.Condition.Expr.build(a))
	}
	panic(fmt.Errorf("an expression node has no form"))
}

func buildAll(a *expr.Arena, ns []*ExprNode) []expr.Expr {
	es := make([]expr.Expr, len(ns))
	for i, n := range ns {
		es[i] = n.build(a)
	}
	return es
}
