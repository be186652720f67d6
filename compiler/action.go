package compiler

import (
	"fmt"

	"github.com/nihei9/lexautom/expr"
)

// Rule pairs an expression with a caller-defined payload the compiler never
// looks into.
type Rule[A any] struct {
	Expr   expr.Expr
	Action A
}

func NewRule[A any](e expr.Expr, action A) Rule[A] {
	return Rule[A]{
		Expr:   e,
		Action: action,
	}
}

type LookaheadKind int

const (
	// LookaheadNone marks a plain rule.
	LookaheadNone LookaheadKind = iota

	// LookaheadFixCondition marks the end of a match whose trailing context
	// is Value characters long.
	LookaheadFixCondition

	// LookaheadFixContent marks the end of a match whose content is Value
	// characters long.
	LookaheadFixContent

	// LookaheadVariable marks the end of a match whose content length must
	// be resolved by running the forward-pass and backward-pass automata at
	// index Value and Value+1.
	LookaheadVariable

	LookaheadForwardPass
	LookaheadBackwardPass
)

func (k LookaheadKind) String() string {
	switch k {
	case LookaheadNone:
		return "none"
	case LookaheadFixCondition:
		return "fix-condition"
	case LookaheadFixContent:
		return "fix-content"
	case LookaheadVariable:
		return "variable"
	case LookaheadForwardPass:
		return "forward-pass"
	case LookaheadBackwardPass:
		return "backward-pass"
	}
	return fmt.Sprintf("lookahead(%d)", int(k))
}

// NoAction is the action ID of states accepting nothing.
const NoAction = -1

// Action is what an accepting state reports: the index of the rule that
// matched plus the lookahead bookkeeping the scanner needs to fix the match
// length. Actions are comparable values.
type Action struct {
	Rule  int
	Kind  LookaheadKind
	Value int
}

func (a Action) String() string {
	if a.Kind == LookaheadNone {
		return fmt.Sprintf("rule#%v", a.Rule)
	}
	return fmt.Sprintf("rule#%v %v(%v)", a.Rule, a.Kind, a.Value)
}

// ActionPool interns actions into dense IDs. Equal actions share an ID, which
// is what lets the minimizer merge states needing the same action. IDs are
// handed out in first-use order, so a lower ID always belongs to an earlier
// or equal rule when rules are appended in declaration order.
type ActionPool[A any] struct {
	rules   []Rule[A]
	actions []Action
	ids     map[Action]int
}

func newActionPool[A any](rules []Rule[A]) *ActionPool[A] {
	return &ActionPool[A]{
		rules: rules,
		ids:   map[Action]int{},
	}
}

func (p *ActionPool[A]) intern(act Action) int {
	if id, ok := p.ids[act]; ok {
		return id
	}
	id := len(p.actions)
	p.actions = append(p.actions, act)
	p.ids[act] = id
	return id
}

func (p *ActionPool[A]) Len() int {
	return len(p.actions)
}

func (p *ActionPool[A]) Action(id int) Action {
	return p.actions[id]
}

func (p *ActionPool[A]) Actions() []Action {
	acts := make([]Action, len(p.actions))
	copy(acts, p.actions)
	return acts
}

// Rule returns the rule owning an action.
func (p *ActionPool[A]) Rule(id int) *Rule[A] {
	return &p.rules[p.actions[id].Rule]
}

// Rules returns the rules the pool was built for, in declaration order.
func (p *ActionPool[A]) Rules() []Rule[A] {
	return p.rules
}
