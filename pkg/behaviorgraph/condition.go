package behaviorgraph

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/expr"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

// Condition is a pure predicate over the variable store.
//
// IsMet must not write to the store. An error means the condition is
// malformed (missing variable, wrong type); callers treat it as not met.
type Condition interface {
	IsMet(r vars.Reader) (bool, error)
}

// VariableUser is implemented by conditions and node parameters that can
// report which variables they read. Offline analysis uses it to answer
// "what reads this variable?" without running the graph.
type VariableUser interface {
	Variables() []string
}

// Logic combines the results of a ConditionList.
type Logic int

const (
	And Logic = iota
	Or
)

// String returns "and" or "or".
func (l Logic) String() string {
	if l == Or {
		return "or"
	}
	return "and"
}

// ConditionList combines conditions left to right with short-circuiting.
//
// An empty AND list is met; an empty OR list is not. A malformed member
// counts as not met and its error is returned alongside the combined
// result, so one bad condition never halts a graph.
type ConditionList struct {
	Logic      Logic
	Conditions []Condition
}

// All returns an AND list.
func All(conds ...Condition) ConditionList {
	return ConditionList{Logic: And, Conditions: conds}
}

// Any returns an OR list.
func Any(conds ...Condition) ConditionList {
	return ConditionList{Logic: Or, Conditions: conds}
}

// Len returns the number of member conditions.
func (l ConditionList) Len() int { return len(l.Conditions) }

// IsMet implements Condition. The returned error joins every malformed
// member that was evaluated; the boolean is valid even when it is non-nil.
func (l ConditionList) IsMet(r vars.Reader) (bool, error) {
	var errs []error
	for _, c := range l.Conditions {
		met, err := Evaluate(c, r)
		if err != nil {
			errs = append(errs, err)
		}
		if l.Logic == Or && met {
			return true, errors.Join(errs...)
		}
		if l.Logic == And && !met {
			return false, errors.Join(errs...)
		}
	}
	return l.Logic == And, errors.Join(errs...)
}

// Variables implements VariableUser.
func (l ConditionList) Variables() []string {
	return collectVariables(l.Conditions...)
}

// String formats the list as (a and b).
func (l ConditionList) String() string {
	parts := make([]string, len(l.Conditions))
	for i, c := range l.Conditions {
		parts[i] = describe(c)
	}
	return "(" + strings.Join(parts, " "+l.Logic.String()+" ") + ")"
}

// Evaluate calls c.IsMet, converting panics and errors into a
// *MalformedConditionError. A malformed condition is never met.
func Evaluate(c Condition, r vars.Reader) (met bool, err error) {
	if c == nil {
		return false, &MalformedConditionError{Condition: "<nil>", Err: ErrNilCondition}
	}
	defer func() {
		if rec := recover(); rec != nil {
			met = false
			err = &MalformedConditionError{
				Condition: describe(c),
				Err:       &PanicError{Op: "condition", Value: rec, Stack: string(debug.Stack())},
			}
		}
	}()

	met, err = c.IsMet(r)
	if err == nil {
		return met, nil
	}
	if keepsResult(c) {
		// Members already reported their own malformed errors.
		return met, err
	}
	var mce *MalformedConditionError
	if errors.As(err, &mce) {
		return false, err
	}
	return false, &MalformedConditionError{Condition: describe(c), Err: err}
}

// keepsResult reports whether c combines other conditions, so its
// result stays valid next to the errors of malformed members.
func keepsResult(c Condition) bool {
	switch c := c.(type) {
	case ConditionList:
		return true
	case *notCondition:
		return keepsResult(c.inner)
	}
	return false
}

func describe(c Condition) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", c)
}

func collectVariables(conds ...Condition) []string {
	seen := make(map[string]struct{})
	for _, c := range conds {
		if vu, ok := c.(VariableUser); ok {
			for _, v := range vu.Variables() {
				seen[v] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// exprCondition evaluates a compiled expression.
type exprCondition struct {
	src  string
	prog *expr.Program
	err  error
}

// Expr returns a condition backed by the expression language, for example
//
//	Expr("boss.health < 50 and not phase2_started")
//
// A syntax error does not panic; the condition reports it on every
// evaluation and is never met. Use MustExpr for expressions known at
// compile time.
func Expr(src string) Condition {
	prog, err := expr.Compile(src)
	return &exprCondition{src: src, prog: prog, err: err}
}

// MustExpr is like Expr but panics on a syntax error.
func MustExpr(src string) Condition {
	return &exprCondition{src: src, prog: expr.MustCompile(src)}
}

func (c *exprCondition) IsMet(r vars.Reader) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.prog.Eval(r)
}

func (c *exprCondition) Variables() []string {
	if c.prog == nil {
		return nil
	}
	return c.prog.Identifiers()
}

func (c *exprCondition) String() string { return c.src }

// compareCondition compares one variable against a constant.
type compareCondition struct {
	key   string
	op    string
	value any
}

// Compare returns a condition that compares the variable key with value
// using op (==, !=, <, >, <=, >=, contains).
func Compare(key, op string, value any) Condition {
	return &compareCondition{key: key, op: op, value: value}
}

func (c *compareCondition) IsMet(r vars.Reader) (bool, error) {
	if r == nil {
		return false, fmt.Errorf("%w: %s", vars.ErrNotFound, c.key)
	}
	v, err := r.Lookup(c.key)
	if err != nil {
		return false, err
	}
	return expr.Compare(v, c.value, c.op)
}

func (c *compareCondition) Variables() []string { return []string{c.key} }

func (c *compareCondition) String() string {
	return fmt.Sprintf("%s %s %v", c.key, c.op, c.value)
}

// funcCondition adapts a Go function.
type funcCondition struct {
	name string
	fn   func(vars.Reader) (bool, error)
	keys []string
}

// Func returns a condition backed by fn. keys lists the variables fn
// reads, for analysis; it may be empty.
func Func(name string, fn func(r vars.Reader) (bool, error), keys ...string) Condition {
	return &funcCondition{name: name, fn: fn, keys: keys}
}

func (c *funcCondition) IsMet(r vars.Reader) (bool, error) { return c.fn(r) }

func (c *funcCondition) Variables() []string { return c.keys }

func (c *funcCondition) String() string { return c.name }

// notCondition negates another condition.
type notCondition struct {
	inner Condition
}

// Not negates c. A malformed inner condition stays malformed and the
// negation is not met either. A ConditionList still resolves when some
// members are malformed, so Not negates its result and passes the
// errors along.
func Not(c Condition) Condition {
	return &notCondition{inner: c}
}

func (c *notCondition) IsMet(r vars.Reader) (bool, error) {
	met, err := Evaluate(c.inner, r)
	if err != nil && !keepsResult(c.inner) {
		return false, err
	}
	return !met, err
}

func (c *notCondition) Variables() []string { return collectVariables(c.inner) }

func (c *notCondition) String() string { return "not " + describe(c.inner) }

// constCondition always returns the same answer.
type constCondition bool

// Always is a condition that is always met.
var Always Condition = constCondition(true)

// Never is a condition that is never met.
var Never Condition = constCondition(false)

func (c constCondition) IsMet(vars.Reader) (bool, error) { return bool(c), nil }

func (c constCondition) String() string {
	if c {
		return "true"
	}
	return "false"
}
