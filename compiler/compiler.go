package compiler

import (
	"fmt"
	"io"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/nihei9/lexautom/expr"
	"github.com/nihei9/lexautom/log"
	"golang.org/x/exp/slices"
)

type CompilerOption func(c *compilerConfig) error

func EnableLogging(w io.Writer) CompilerOption {
	return func(c *compilerConfig) error {
		logger, err := log.NewLogger(w)
		if err != nil {
			return err
		}
		c.logger = logger
		return nil
	}
}

// WithReporter delivers diagnostics to r as they are found.
func WithReporter(r Reporter) CompilerOption {
	return func(c *compilerConfig) error {
		if r == nil {
			return fmt.Errorf("r is nil; WithReporter() needs a reporter")
		}
		c.reporter = r
		return nil
	}
}

type compilerConfig struct {
	logger   log.Logger
	reporter Reporter
}

// Compile builds one minimized DFA per lexical state referenced by the rules.
// Diagnostics are delivered to the reporter; when any of them is fatal,
// Compile returns no automaton and a *CompileError listing the fatal ones.
func Compile[A any](arena *expr.Arena, rules []Rule[A], opts ...CompilerOption) (*Automaton[A], error) {
	config := &compilerConfig{
		logger:   log.NewNopLogger(),
		reporter: &DiagnosticList{},
	}
	for _, opt := range opts {
		err := opt(config)
		if err != nil {
			return nil, err
		}
	}

	c := &automatonCompiler[A]{
		config:       config,
		arena:        arena,
		rules:        rules,
		pool:         newActionPool(rules),
		nameMap:      map[string]int{},
		lookaheadAux: map[expr.Expr]int{},
	}
	return c.compile()
}

type automatonCompiler[A any] struct {
	config       *compilerConfig
	arena        *expr.Arena
	rules        []Rule[A]
	normalized   []expr.Expr
	alpha        *Alphabet
	pool         *ActionPool[A]
	names        []string
	nameMap      map[string]int
	nfas         []*nfa
	lookaheadAux map[expr.Expr]int
	fatal        []*Diagnostic
}

func (c *automatonCompiler[A]) report(d *Diagnostic) {
	c.config.reporter.Report(d)
	c.config.logger.Log("%v", d)
	if d.Severity == SeverityError {
		c.fatal = append(c.fatal, d)
	}
}

func (c *automatonCompiler[A]) compile() (*Automaton[A], error) {
	logger := c.config.logger

	for _, r := range c.rules {
		c.normalized = append(c.normalized, c.arena.Normalize(r.Expr))
	}
	logger.Log("Rules:")
	for i, e := range c.normalized {
		logger.Log("  #%v %v", i, c.arena.String(e))
	}

	c.alpha = newAlphabet(collectRangeSets(c.arena, c.normalized))
	logger.Log("Alphabet: %v", c.alpha)

	c.collectNames()
	if _, ok := c.nameMap[expr.InitialConditionName]; !ok {
		c.report(&Diagnostic{
			Code:     CodeNoInitialLexState,
			Severity: SeverityError,
			Rule:     -1,
			Detail:   fmt.Sprintf("no rule is active in the %v lexical state", expr.InitialConditionName),
		})
		return nil, &CompileError{
			Diagnostics: c.fatal,
		}
	}
	logger.Log("Lexical states: %v", strings.Join(c.names, ", "))
	for range c.names {
		c.nfas = append(c.nfas, newNFA(c.alpha))
	}

	for i, e := range c.normalized {
		err := c.appendRule(i, e, []string{expr.InitialConditionName}, false)
		if err != nil {
			c.report(&Diagnostic{
				Code:     err.code,
				Severity: SeverityError,
				Rule:     i,
				Detail:   err.detail,
			})
		}
	}
	if len(c.fatal) > 0 {
		return nil, &CompileError{
			Diagnostics: c.fatal,
		}
	}

	aut := &Automaton[A]{
		Alphabet: c.alpha,
		Names:    c.names,
		NameMap:  c.nameMap,
		Pool:     c.pool,
	}
	for i, n := range c.nfas {
		d := n.toDFA(false)
		m := minimize(d)
		aut.NFAStateCount += len(n.states)
		aut.DFAs = append(aut.DFAs, m)

		name := "(lookahead)"
		if i < len(c.names) {
			name = c.names[i]
		}
		logger.Log("DFA #%v %v: NFA %v states, DFA %v states, minimized %v states", i, name, len(n.states), d.StateCount(), m.StateCount())
		logger.Dump(fmt.Sprintf("DFA #%v", i), m.write)
	}

	c.reportRedundantActions(aut.DFAs)

	return aut, nil
}

// collectNames registers the lexical states the rules refer to. INITIAL,
// when present, always comes first.
func (c *automatonCompiler[A]) collectNames() {
	var names []string
	seen := map[string]struct{}{}
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	var collect func(e expr.Expr, conditioned bool)
	collect = func(e expr.Expr, conditioned bool) {
		switch c.arena.Kind(e) {
		case expr.KindAlt:
			for _, ch := range c.arena.Children(e) {
				collect(ch, conditioned)
			}
		case expr.KindCondition:
			cond := c.arena.Condition(e)
			if cond.IsAll() {
				add(expr.InitialConditionName)
			} else {
				for _, name := range cond.Names() {
					add(name)
				}
			}
			collect(c.arena.Child(e, 0), true)
		default:
			if !conditioned {
				add(expr.InitialConditionName)
			}
		}
	}
	for _, e := range c.normalized {
		collect(e, false)
	}

	if _, ok := seen[expr.InitialConditionName]; ok {
		c.names = append(c.names, expr.InitialConditionName)
	}
	for _, name := range names {
		if name == expr.InitialConditionName {
			continue
		}
		c.names = append(c.names, name)
	}
	for i, name := range c.names {
		c.nameMap[name] = i
	}
}

// appendRule adds the top-level alternatives of a rule to the NFAs of the
// lexical states they are active in. Nested conditions add their names to the
// enclosing ones.
func (c *automatonCompiler[A]) appendRule(rule int, e expr.Expr, targets []string, conditioned bool) *ruleError {
	switch c.arena.Kind(e) {
	case expr.KindAlt:
		for _, ch := range c.arena.Children(e) {
			err := c.appendRule(rule, ch, targets, conditioned)
			if err != nil {
				return err
			}
		}
		return nil
	case expr.KindCondition:
		cond := c.arena.Condition(e)
		var ts []string
		switch {
		case cond.IsAll():
			ts = c.names
		case conditioned:
			ts = mergeNames(targets, cond.Names())
		default:
			ts = cond.Names()
		}
		return c.appendRule(rule, c.arena.Child(e, 0), ts, true)
	}

	for _, name := range targets {
		n := c.nfas[c.nameMap[name]]
		var err *ruleError
		if c.arena.Kind(e) == expr.KindLookahead {
			err = c.appendLookahead(rule, e, n)
		} else {
			err = c.appendPlain(rule, e, n)
		}
		if err != nil {
			return err
		}
		c.config.logger.Log("Appended rule #%v to %v", rule, name)
	}
	return nil
}

func mergeNames(outer, inner []string) []string {
	names := make([]string, 0, len(outer)+len(inner))
	seen := map[string]struct{}{}
	for _, ns := range [][]string{outer, inner} {
		for _, n := range ns {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	return names
}

func (c *automatonCompiler[A]) appendPlain(rule int, e expr.Expr, n *nfa) *ruleError {
	start := n.newState()
	end := n.newState()
	n.appendExpr(c.arena, e, start, end)
	if n.reaches(start, end) {
		return errEmptyWord("the expression matches the empty string: %v", c.arena.String(e))
	}
	n.setAction(end, c.pool.intern(Action{
		Rule: rule,
		Kind: LookaheadNone,
	}))
	n.addEpsilon(n.start, start)
	return nil
}

// reportRedundantActions warns, once per rule, about pooled actions no DFA
// state carries.
func (c *automatonCompiler[A]) reportRedundantActions(dfas []*DFA) {
	reachable := bitset.New(uint(c.pool.Len()))
	for _, d := range dfas {
		for _, s := range d.states {
			if s.action != NoAction {
				reachable.Set(uint(s.action))
			}
		}
	}
	unreachable := map[int][]string{}
	var rules []int
	for id, act := range c.pool.actions {
		if reachable.Test(uint(id)) {
			continue
		}
		if _, ok := unreachable[act.Rule]; !ok {
			rules = append(rules, act.Rule)
		}
		unreachable[act.Rule] = append(unreachable[act.Rule], act.String())
	}
	slices.Sort(rules)
	for _, rule := range rules {
		c.report(&Diagnostic{
			Code:     CodeRedundantExpr,
			Severity: SeverityWarning,
			Rule:     rule,
			Detail:   fmt.Sprintf("never reachable because earlier rules match everything it matches: %v", strings.Join(unreachable[rule], ", ")),
		})
	}
}
