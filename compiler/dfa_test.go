package compiler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nihei9/lexautom/expr"
)

func TestNFA_ToDFA(t *testing.T) {
	a := expr.NewArena()
	tests := []struct {
		e        expr.Expr
		accepted []string
		rejected []string
	}{
		{
			e:        a.Literal("abc"),
			accepted: []string{"abc"},
			rejected: []string{"", "a", "ab", "abcc", "b"},
		},
		{
			e:        a.Alt(a.Literal("ab"), a.Literal("ac"), a.Char('b')),
			accepted: []string{"ab", "ac", "b"},
			rejected: []string{"", "a", "bc", "abc"},
		},
		{
			e:        a.Star(a.Alt(a.Char('a'), a.Char('b'))),
			accepted: []string{"", "a", "ab", "babba"},
			rejected: []string{"c", "abc"},
		},
		{
			e:        a.Concat(a.Plus(a.Char('a')), a.Char('b')),
			accepted: []string{"ab", "aaab"},
			rejected: []string{"b", "aa", "aba"},
		},
		{
			e:        a.Concat(a.Char('a'), a.Optional(a.Char('b')), a.Char('c')),
			accepted: []string{"ac", "abc"},
			rejected: []string{"abbc", "a", "c"},
		},
		{
			e:        a.Repeat(a.Char('a'), 2, 3),
			accepted: []string{"aa", "aaa"},
			rejected: []string{"", "a", "aaaa"},
		},
		{
			e:        a.Repeat(a.Char('a'), 2, expr.Unbounded),
			accepted: []string{"aa", "aaa", "aaaaaa"},
			rejected: []string{"", "a"},
		},
		{
			e:        a.Repeat(a.Char('a'), 0, 0),
			accepted: []string{""},
			rejected: []string{"a"},
		},
		{
			e:        a.Repeat(a.Concat(a.Char('a'), a.Optional(a.Char('b'))), 0, 2),
			accepted: []string{"", "a", "ab", "aa", "aba", "abab"},
			rejected: []string{"b", "aaa", "ababa"},
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, a.String(tt.e)), func(t *testing.T) {
			n, alpha := buildNFA(a, tt.e)
			d := n.toDFA(false)
			for _, w := range tt.accepted {
				if run(t, alpha, d, w) != 0 {
					t.Errorf("%q must be accepted", w)
				}
			}
			for _, w := range tt.rejected {
				if run(t, alpha, d, w) != NoAction {
					t.Errorf("%q must be rejected", w)
				}
			}
		})
	}
}

func TestNFA_ToDFA_LowestActionWins(t *testing.T) {
	a := expr.NewArena()
	ident := a.Plus(a.CharClass(class('a', 'z')))
	kw := a.Literal("if")
	alpha := newAlphabet(collectRangeSets(a, []expr.Expr{ident, kw}))
	n := newNFA(alpha)
	for act, e := range []expr.Expr{kw, ident} {
		start := n.newState()
		end := n.newState()
		n.appendExpr(a, e, start, end)
		n.setAction(end, act)
		n.addEpsilon(n.start, start)
	}
	d := n.toDFA(false)

	tests := []struct {
		input  string
		action int
	}{
		{input: "if", action: 0},
		{input: "i", action: 1},
		{input: "iff", action: 1},
		{input: "x", action: 1},
		{input: "", action: NoAction},
		{input: "i1", action: NoAction},
	}
	for _, tt := range tests {
		if act := run(t, alpha, d, tt.input); act != tt.action {
			t.Errorf("unexpected action for %q; want: %v, got: %v", tt.input, tt.action, act)
		}
	}
}

func TestNFA_ToDFA_KeepContext(t *testing.T) {
	a := expr.NewArena()
	n, _ := buildNFA(a, a.Literal("ab"))
	d := n.toDFA(true)
	if len(d.context) != d.StateCount() {
		t.Fatalf("every state must have its NFA state set; states: %v, sets: %v", d.StateCount(), len(d.context))
	}
	for s, set := range d.context {
		for i := 1; i < len(set); i++ {
			if set[i-1] >= set[i] {
				t.Fatalf("the NFA state set of #%v must be sorted and unique: %v", s, set)
			}
		}
	}
	d.releaseContext()
	if d.context != nil {
		t.Fatalf("the context must be released")
	}
}

func TestNFA_ClosureGenerationWrap(t *testing.T) {
	a := expr.NewArena()
	n, _ := buildNFA(a, a.Star(a.Char('a')))
	want := n.closure([]int{n.start})
	n.gen = ^uint32(0) - 1
	for i := 0; i < 4; i++ {
		got := n.closure([]int{n.start})
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("closure changed across a generation wrap; want: %v, got: %v", want, got)
		}
	}
}

func TestDFA_write(t *testing.T) {
	a := expr.NewArena()
	n, _ := buildNFA(a, a.Char('a'))
	d := minimize(n.toDFA(false))
	var b strings.Builder
	d.write(&b)
	if !strings.HasPrefix(b.String(), ">0") {
		t.Fatalf("the start state must be marked first:\n%v", b.String())
	}
	if !strings.Contains(b.String(), "[action 0]") {
		t.Fatalf("the accepting state must show its action:\n%v", b.String())
	}
}
