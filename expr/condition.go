package expr

import (
	"strings"
)

const (
	InitialConditionName  = "INITIAL"
	WildcardConditionName = "*"
)

// Condition is an ordered set of lexical state names a rule is active in.
// The wildcard condition makes a rule active in every lexical state.
type Condition struct {
	names []string
}

// NewCondition upper-cases the names and drops duplicates, keeping the
// first occurrence. A wildcard name among them makes the whole condition the
// wildcard.
func NewCondition(names ...string) Condition {
	var ns []string
	seen := map[string]struct{}{}
	for _, n := range names {
		n = strings.ToUpper(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if n == WildcardConditionName {
			return AllConditions()
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		ns = append(ns, n)
	}
	return Condition{
		names: ns,
	}
}

func AllConditions() Condition {
	return Condition{
		names: []string{WildcardConditionName},
	}
}

func (c Condition) IsAll() bool {
	return len(c.names) == 1 && c.names[0] == WildcardConditionName
}

func (c Condition) IsEmpty() bool {
	return len(c.names) == 0
}

func (c Condition) Names() []string {
	ns := make([]string, len(c.names))
	copy(ns, c.names)
	return ns
}

func (c Condition) Contains(name string) bool {
	if c.IsAll() {
		return true
	}
	name = strings.ToUpper(name)
	for _, n := range c.names {
		if n == name {
			return true
		}
	}
	return false
}

func (c Condition) String() string {
	return "<" + strings.Join(c.names, ",") + ">"
}
