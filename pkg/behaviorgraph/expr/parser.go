package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// node is a compiled expression tree node.
type node interface {
	value(env *env) (any, error)
}

type literalNode struct{ v any }

type identNode struct{ name string }

type notNode struct{ x node }

type logicalNode struct {
	and         bool
	left, right node
}

type compareNode struct {
	op          string
	custom      BinaryOp
	left, right node
}

type parser struct {
	src       string
	tokens    []token
	pos       int
	customOps map[string]BinaryOp
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Src: p.src, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func parse(src string, customOps map[string]BinaryOp) (node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens, customOps: customOps}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(p.peek(), "empty expression")
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q after expression", t.val)
	}
	return n, nil
}

// or = and ( ("or" | "||") and )*
func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logicalNode{and: false, left: left, right: right}
	}
	return left, nil
}

// and = unary ( ("and" | "&&") unary )*
func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &logicalNode{and: true, left: left, right: right}
	}
	return left, nil
}

// unary = ("not" | "!") unary | comparison
func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokNot {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notNode{x: x}, nil
	}
	return p.parseComparison()
}

// comparison = primary [ op primary ]
func (p *parser) parseComparison() (node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	t := p.peek()
	cmp := &compareNode{left: left}
	switch {
	case t.kind == tokOp:
		cmp.op = t.val
	case t.kind == tokIdent && strings.EqualFold(t.val, "contains"):
		cmp.op = "contains"
	case t.kind == tokIdent && p.customOps[t.val] != nil:
		cmp.op = t.val
		cmp.custom = p.customOps[t.val]
	default:
		return left, nil
	}
	p.next()

	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	cmp.right = right
	return cmp, nil
}

// primary = "(" or ")" | literal | identifier
func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorf(closing, "expected ) but got %q", closing.val)
		}
		return inner, nil
	case tokString:
		return &literalNode{v: t.val}, nil
	case tokNumber:
		if strings.Contains(t.val, ".") {
			f, err := strconv.ParseFloat(t.val, 64)
			if err != nil {
				return nil, p.errorf(t, "invalid number %q", t.val)
			}
			return &literalNode{v: f}, nil
		}
		n, err := strconv.ParseInt(t.val, 10, 64)
		if err != nil {
			return nil, p.errorf(t, "invalid integer %q", t.val)
		}
		return &literalNode{v: n}, nil
	case tokIdent:
		switch strings.ToLower(t.val) {
		case "true":
			return &literalNode{v: true}, nil
		case "false":
			return &literalNode{v: false}, nil
		case "null", "nil":
			return &literalNode{v: nil}, nil
		}
		return &identNode{name: t.val}, nil
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of expression")
	default:
		return nil, p.errorf(t, "unexpected %q", t.val)
	}
}

// collectIdents appends every variable referenced by n.
func collectIdents(n node, seen map[string]struct{}) {
	switch x := n.(type) {
	case *identNode:
		seen[x.name] = struct{}{}
	case *notNode:
		collectIdents(x.x, seen)
	case *logicalNode:
		collectIdents(x.left, seen)
		collectIdents(x.right, seen)
	case *compareNode:
		collectIdents(x.left, seen)
		collectIdents(x.right, seen)
	}
}
