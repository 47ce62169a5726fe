/*
Package expr provides the expression language used by behavior graph
conditions.

# Overview

Expressions are compiled once, usually while a graph is being built, and
evaluated many times against a vars.Reader. A compiled Program is immutable
and safe to share between engines.

	prog, err := expr.Compile("gold >= 100 and not met_king")
	ok, err := prog.Eval(store)

# Expression Syntax

	<or>         := <and> ( ('or' | '||') <and> )*
	<and>        := <unary> ( ('and' | '&&') <unary> )*
	<unary>      := ('not' | '!') <unary> | <comparison>
	<comparison> := <primary> [ <op> <primary> ]
	<primary>    := '(' <or> ')' | literal | identifier
	<op>         := '==' | '!=' | '<' | '>' | '<=' | '>=' | 'contains' | custom

Literals are quoted strings ('a' or "a"), numbers (42, 3.14, -1), true,
false and null. Any other word is a variable name; names may contain dots
(quest.stage) and are looked up as a single key.

# Semantics

  - Equality compares numbers numerically and other values by their
    formatted text.
  - Ordering requires two numbers or two strings.
  - contains tests substrings, or membership when the left side is a list.
  - and/or short-circuit left to right.
  - A bare operand is read for truthiness: nil, false, "" and 0 are false.

Unknown variables are an error rather than a silent default, so a typo in a
condition shows up in the logs instead of quietly taking the else branch.

# Custom Operators

	e := expr.New(
	    expr.WithCustomOperator("matches", func(left, right any) bool {
	        ok, _ := regexp.MatchString(fmt.Sprint(right), fmt.Sprint(left))
	        return ok
	    }),
	)
	prog, _ := e.Compile("name matches '^guard_'")
*/
package expr
