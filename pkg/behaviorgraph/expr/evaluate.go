package expr

import (
	"errors"
	"fmt"
	"sort"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

// Sentinel errors for expression compilation and evaluation.
var (
	// ErrSyntax indicates the expression could not be parsed.
	ErrSyntax = errors.New("expression syntax error")

	// ErrTypeMismatch indicates operands that cannot be compared.
	ErrTypeMismatch = errors.New("operand type mismatch")
)

// SyntaxError reports where parsing failed.
type SyntaxError struct {
	Src string
	Pos int
	Msg string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d in %q", e.Msg, e.Pos, e.Src)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// BinaryOp is a function that compares two values and returns a boolean result.
type BinaryOp func(left, right any) bool

// Evaluator compiles expressions with optional custom operators.
type Evaluator struct {
	customOps map[string]BinaryOp
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCustomOperator registers a custom binary operator.
// The operator name should not conflict with built-in operators.
func WithCustomOperator(name string, fn BinaryOp) Option {
	return func(e *Evaluator) {
		if e.customOps == nil {
			e.customOps = make(map[string]BinaryOp)
		}
		e.customOps[name] = fn
	}
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile parses an expression into a reusable Program.
func (e *Evaluator) Compile(src string) (*Program, error) {
	root, err := parse(src, e.customOps)
	if err != nil {
		return nil, err
	}
	return &Program{src: src, root: root}, nil
}

// Evaluate compiles and evaluates an expression against the provided variables.
func (e *Evaluator) Evaluate(src string, values map[string]any) (bool, error) {
	prog, err := e.Compile(src)
	if err != nil {
		return false, err
	}
	return prog.Eval(vars.NewMemoryStore(values))
}

// Compile parses an expression using the default evaluator.
func Compile(src string) (*Program, error) {
	return New().Compile(src)
}

// MustCompile is like Compile but panics on error. Intended for graph
// construction code where the expression is a constant.
func MustCompile(src string) *Program {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Eval is a convenience function that evaluates an expression using
// the default evaluator (no custom operators).
func Eval(src string, values map[string]any) (bool, error) {
	return New().Evaluate(src, values)
}

// Program is a compiled expression. It is immutable and safe for
// concurrent use.
type Program struct {
	src  string
	root node
}

// String returns the source text.
func (p *Program) String() string { return p.src }

// Eval evaluates the program against r.
//
// Referencing a variable that r does not hold is an error, as is ordering
// operands that are neither both numbers nor both strings. Callers that
// treat expressions as branch conditions should read an error as "not met".
func (p *Program) Eval(r vars.Reader) (bool, error) {
	v, err := p.root.value(&env{r: r})
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.src, err)
	}
	return IsTruthy(v), nil
}

// Identifiers returns the sorted set of variable names the program reads.
func (p *Program) Identifiers() []string {
	seen := make(map[string]struct{})
	collectIdents(p.root, seen)
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type env struct {
	r vars.Reader
}

func (n *literalNode) value(*env) (any, error) { return n.v, nil }

func (n *identNode) value(e *env) (any, error) {
	if e.r == nil {
		return nil, fmt.Errorf("%w: %s", vars.ErrNotFound, n.name)
	}
	return e.r.Lookup(n.name)
}

func (n *notNode) value(e *env) (any, error) {
	v, err := n.x.value(e)
	if err != nil {
		return nil, err
	}
	return !IsTruthy(v), nil
}

func (n *logicalNode) value(e *env) (any, error) {
	l, err := n.left.value(e)
	if err != nil {
		return nil, err
	}
	lt := IsTruthy(l)
	if n.and && !lt {
		return false, nil
	}
	if !n.and && lt {
		return true, nil
	}
	r, err := n.right.value(e)
	if err != nil {
		return nil, err
	}
	return IsTruthy(r), nil
}

func (n *compareNode) value(e *env) (any, error) {
	l, err := n.left.value(e)
	if err != nil {
		return nil, err
	}
	r, err := n.right.value(e)
	if err != nil {
		return nil, err
	}
	if n.custom != nil {
		return n.custom(l, r), nil
	}
	return Compare(l, r, n.op)
}
