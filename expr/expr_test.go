package expr

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestArena_HashConsing(t *testing.T) {
	a := NewArena()
	e1 := a.Concat(a.Char('a'), a.Alt(a.Char('b'), a.Char('c')))
	e2 := a.Concat(a.Char('a'), a.Alt(a.Char('b'), a.Char('c')))
	if e1 != e2 {
		t.Fatalf("structurally equal expressions must share a handle; %v, %v", e1, e2)
	}
	if a.Literal("ab") != a.Concat(a.Char('a'), a.Char('b')) {
		t.Fatalf("a literal must be a concatenation of characters")
	}
	if a.Concat(a.Literal("ab"), a.Char('c')) != a.Literal("abc") {
		t.Fatalf("nested concatenations must be flattened")
	}
	if a.Repeat(a.Char('a'), 1, 1) != a.Char('a') {
		t.Fatalf("a {1,1} repetition must collapse to its operand")
	}
}

func TestArena_WordLength(t *testing.T) {
	a := NewArena()
	tests := []struct {
		e    Expr
		want int
	}{
		{
			e:    a.Char('a'),
			want: 1,
		},
		{
			e:    a.Literal("abc"),
			want: 3,
		},
		{
			e:    a.Alt(a.Literal("ab"), a.Literal("cd")),
			want: 2,
		},
		{
			e:    a.Alt(a.Literal("ab"), a.Char('c')),
			want: VariableLength,
		},
		{
			e:    a.Repeat(a.Literal("ab"), 3, 3),
			want: 6,
		},
		{
			e:    a.Repeat(a.Literal("ab"), 0, 3),
			want: VariableLength,
		},
		{
			e:    a.Star(a.Char('a')),
			want: VariableLength,
		},
		{
			e:    a.Not(a.Char('a')),
			want: VariableLength,
		},
		{
			e:    a.Lookahead(a.Char('a'), a.Literal("bc")),
			want: 3,
		},
		{
			e:    a.Cond(NewCondition("S"), a.Literal("xy")),
			want: 2,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, a.String(tt.e)), func(t *testing.T) {
			if got := a.WordLength(tt.e); got != tt.want {
				t.Fatalf("unexpected word length; want: %v, got: %v", tt.want, got)
			}
		})
	}
}

func TestArena_TypeSet(t *testing.T) {
	a := NewArena()
	e := a.Alt(a.Lookahead(a.Char('a'), a.Not(a.Char('b'))), a.Cond(NewCondition("S"), a.Star(a.Char('c'))))
	ts := a.TypeSet(e)
	for _, k := range []Kind{KindAlt, KindLookahead, KindNot, KindCondition, KindRepeat, KindCharClass} {
		if !ts.Has(k) {
			t.Errorf("type set must contain %v", k)
		}
	}
	if ts.HasAny(KindUntil, KindConcat) {
		t.Errorf("type set mustn't contain until or concat")
	}
}

func TestArena_Invariants(t *testing.T) {
	a := NewArena()
	la := func() Expr {
		return a.Lookahead(a.Char('a'), a.Char('b'))
	}
	cond := func() Expr {
		return a.Cond(NewCondition("S"), a.Char('a'))
	}
	tests := []struct {
		caption string
		build   func() Expr
		valid   bool
	}{
		{
			caption: "lookahead as a top-level alternative",
			build: func() Expr {
				return a.Alt(la(), a.Char('c'))
			},
			valid: true,
		},
		{
			caption: "condition wrapping an alternation of lookaheads",
			build: func() Expr {
				return a.Cond(NewCondition("S"), a.Alt(la(), cond()))
			},
			valid: true,
		},
		{
			caption: "empty character class",
			build: func() Expr {
				return a.CharClass(NewRangeSet())
			},
		},
		{
			caption: "empty literal",
			build: func() Expr {
				return a.Literal("")
			},
		},
		{
			caption: "lookahead inside a concatenation",
			build: func() Expr {
				return a.Concat(a.Char('x'), la())
			},
		},
		{
			caption: "condition inside a repetition",
			build: func() Expr {
				return a.Star(cond())
			},
		},
		{
			caption: "lookahead inside a negation",
			build: func() Expr {
				return a.Not(a.Alt(la(), a.Char('c')))
			},
		},
		{
			caption: "lookahead inside a lookahead",
			build: func() Expr {
				return a.Lookahead(la(), a.Char('c'))
			},
		},
		{
			caption: "condition inside the trailing context",
			build: func() Expr {
				return a.Lookahead(a.Char('c'), cond())
			},
		},
		{
			caption: "invalid repetition bounds",
			build: func() Expr {
				return a.Repeat(a.Char('c'), 3, 2)
			},
		},
		{
			caption: "empty condition",
			build: func() Expr {
				return a.Cond(NewCondition(), a.Char('c'))
			},
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			e, err := a.Build(tt.build)
			if tt.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected an error; got: %v", a.String(e))
			}
			var invErr *InvariantError
			if !errors.As(err, &invErr) {
				t.Fatalf("unexpected error type: %T", err)
			}
			if e != NilExpr {
				t.Fatalf("a failed build must return NilExpr")
			}
		})
	}
}

func TestArena_Normalize(t *testing.T) {
	a := NewArena()
	x := a.Literal("*/")
	tests := []struct {
		caption string
		e       Expr
		want    Expr
	}{
		{
			caption: "double negation",
			e:       a.Not(a.Not(a.Char('a'))),
			want:    a.Char('a'),
		},
		{
			caption: "triple negation",
			e:       a.Not(a.Not(a.Not(a.Char('a')))),
			want:    a.Not(a.Char('a')),
		},
		{
			caption: "until",
			e:       a.Until(x),
			want:    a.Concat(a.Not(a.Concat(a.Everything(), x, a.Everything())), x),
		},
		{
			caption: "until inside a concatenation",
			e:       a.Concat(a.Literal("/*"), a.Until(x)),
			want:    a.Concat(a.Literal("/*"), a.Not(a.Concat(a.Everything(), x, a.Everything())), x),
		},
		{
			caption: "lookahead sides",
			e:       a.Lookahead(a.Not(a.Not(a.Char('a'))), a.Char('b')),
			want:    a.Lookahead(a.Char('a'), a.Char('b')),
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			got := a.Normalize(tt.e)
			if got != tt.want {
				t.Fatalf("unexpected normal form; want: %v, got: %v", a.String(tt.want), a.String(got))
			}
			if a.Normalize(got) != got {
				t.Fatalf("normalization must be idempotent")
			}
		})
	}
}

func TestArena_Reverse(t *testing.T) {
	a := NewArena()
	tests := []struct {
		e    Expr
		want Expr
	}{
		{
			e:    a.Literal("abc"),
			want: a.Literal("cba"),
		},
		{
			e:    a.Alt(a.Literal("ab"), a.Star(a.Literal("cd"))),
			want: a.Alt(a.Literal("ba"), a.Star(a.Literal("dc"))),
		},
		{
			e:    a.Not(a.Literal("ab")),
			want: a.Not(a.Literal("ba")),
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
			got := a.Reverse(tt.e)
			if got != tt.want {
				t.Fatalf("unexpected reversal; want: %v, got: %v", a.String(tt.want), a.String(got))
			}
			if a.Reverse(got) != tt.e {
				t.Fatalf("reversing twice must give the original expression")
			}
		})
	}

	_, err := a.Build(func() Expr {
		return a.Reverse(a.Lookahead(a.Char('a'), a.Char('b')))
	})
	if err == nil {
		t.Fatalf("reversing a lookahead must fail")
	}
}

func TestArena_ConcurrentNormalize(t *testing.T) {
	a := NewArena()
	e := a.Concat(a.Until(a.Literal("end")), a.Not(a.Not(a.Char('z'))))
	results := make([]Expr, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.Normalize(e)
		}(i)
	}
	wg.Wait()
	for _, r := range results[1:] {
		if r != results[0] {
			t.Fatalf("concurrent normalizations must converge; got: %v and %v", results[0], r)
		}
	}
}
