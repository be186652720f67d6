package spec

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nihei9/lexautom/expr"
)

const actionNamePattern = "[A-Za-z_][0-9A-Za-z_]*"

var actionNameRE = regexp.MustCompile("^" + actionNamePattern + "$")

type ActionName string

func (n ActionName) String() string {
	return string(n)
}

func (n ActionName) validate() error {
	if n == "" {
		return fmt.Errorf("action doesn't allow to be the empty string")
	}
	if !actionNameRE.MatchString(string(n)) {
		return fmt.Errorf("action must be %v", actionNamePattern)
	}
	return nil
}

type RuleEntry struct {
	Action ActionName `json:"action"`
	Expr   *ExprNode  `json:"expr"`
}

func NewRuleEntry(action string, e *ExprNode) *RuleEntry {
	return &RuleEntry{
		Action: ActionName(action),
		Expr:   e,
	}
}

func (e *RuleEntry) validate() error {
	err := e.Action.validate()
	if err != nil {
		return err
	}
	if e.Expr == nil {
		return fmt.Errorf("expr is missing")
	}
	return e.Expr.validate()
}

// Build constructs the expression of the entry in arena.
func (e *RuleEntry) Build(arena *expr.Arena) (expr.Expr, error) {
	x, err := arena.Build(func() expr.Expr {
		return e.Expr.build(arena)
	})
	if err != nil {
		return expr.NilExpr, fmt.Errorf("action %v: %w", e.Action, err)
	}
	return x, nil
}

// RuleSpec is an ordered list of rules. Earlier rules take priority over
// later ones when both match input of the same length.
type RuleSpec struct {
	Rules []*RuleEntry `json:"rules"`
}

func (s *RuleSpec) Validate() error {
	if len(s.Rules) <= 0 {
		return fmt.Errorf("the rule specification must have at least one rule")
	}
	{
		var errs []error
		for i, e := range s.Rules {
			err := e.validate()
			if err != nil {
				errs = append(errs, fmt.Errorf("rule #%v: %w", i+1, err))
			}
		}
		if len(errs) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "%v", errs[0])
			for _, err := range errs[1:] {
				fmt.Fprintf(&b, "\n%v", err)
			}
			return errors.New(b.String())
		}
	}
	{
		as := map[ActionName]struct{}{}
		for _, e := range s.Rules {
			if _, exist := as[e.Action]; exist {
				return fmt.Errorf("actions `%v` are duplicates", e.Action)
			}
			as[e.Action] = struct{}{}
		}
	}
	return nil
}

type TransitionTable struct {
	InitialState int `json:"initial_state"`

	// AcceptingStates[s] is the action ID of state s plus one, or 0.
	AcceptingStates []int `json:"accepting_states"`

	// UncompressedTransition[s*ColCount+sym] is the destination of state s on
	// symbol sym, or 0. State 0 is invalid.
	UncompressedTransition []int `json:"transition"`
	RowCount               int   `json:"row_count"`
	ColCount               int   `json:"col_count"`
}

type CompiledAction struct {
	Rule   int        `json:"rule"`
	Action ActionName `json:"action"`
	Kind   string     `json:"kind"`
	Value  int        `json:"value"`
}

type CompiledAutomaton struct {
	// Alphabet[sym] lists the code point ranges of symbol sym as [from, to] pairs.
	Alphabet      [][][2]rune        `json:"alphabet"`
	Conditions    []string           `json:"conditions"`
	Actions       []*CompiledAction  `json:"actions"`
	NFAStateCount int                `json:"nfa_state_count"`
	DFAs          []*TransitionTable `json:"dfas"`
}
