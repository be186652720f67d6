package compiler

import (
	"fmt"
	"strings"
)

type DiagnosticCode string

const (
	// CodeNoInitialLexState means no rule is active in the INITIAL lexical state.
	CodeNoInitialLexState = DiagnosticCode("NO_INITIAL_LEX_STATE")

	// CodeEmptyWordExpr means a rule, or a side of its lookahead, matches the
	// empty string.
	CodeEmptyWordExpr = DiagnosticCode("EMPTY_WORD_EXPR")

	// CodeRedundantExpr means an action of a rule is unreachable in every
	// automaton because earlier rules shadow it.
	CodeRedundantExpr = DiagnosticCode("REDUNDANT_EXPR")
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

type Diagnostic struct {
	Code     DiagnosticCode
	Severity Severity

	// Rule is the index of the offending rule, or -1 when the diagnostic
	// concerns the whole rule set.
	Rule   int
	Detail string
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %v", d.Severity, d.Code)
	if d.Rule >= 0 {
		fmt.Fprintf(&b, ": rule #%v", d.Rule)
	}
	if d.Detail != "" {
		fmt.Fprintf(&b, ": %v", d.Detail)
	}
	return b.String()
}

// Reporter receives the diagnostics of a compilation as they are found.
type Reporter interface {
	Report(d *Diagnostic)
}

// DiagnosticList is a Reporter collecting every diagnostic.
type DiagnosticList []*Diagnostic

func (l *DiagnosticList) Report(d *Diagnostic) {
	*l = append(*l, d)
}

// Find returns the diagnostics with the given code.
func (l DiagnosticList) Find(code DiagnosticCode) []*Diagnostic {
	var ds []*Diagnostic
	for _, d := range l {
		if d.Code == code {
			ds = append(ds, d)
		}
	}
	return ds
}

// CompileError is returned when a compilation recorded fatal diagnostics.
type CompileError struct {
	Diagnostics []*Diagnostic
}

func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "compilation failed"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v", e.Diagnostics[0])
	for _, d := range e.Diagnostics[1:] {
		fmt.Fprintf(&b, "\n%v", d)
	}
	return b.String()
}

// ruleError makes the compiler abandon the rule being appended and go on
// with the next one.
type ruleError struct {
	code   DiagnosticCode
	detail string
}

func (e *ruleError) Error() string {
	return fmt.Sprintf("%v: %v", e.code, e.detail)
}

func errEmptyWord(format string, a ...interface{}) *ruleError {
	return &ruleError{
		code:   CodeEmptyWordExpr,
		detail: fmt.Sprintf(format, a...),
	}
}
