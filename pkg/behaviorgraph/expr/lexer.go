package expr

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent  tokenKind = iota // identifier or keyword
	tokOp                      // ==, !=, >=, <=, >, <
	tokString                  // "..." or '...'
	tokNumber                  // 42 | 3.14 | -1
	tokAnd                     // and, &&
	tokOr                      // or, ||
	tokNot                     // not, !
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	val  string
	pos  int
}

func isIdentRune(ch byte) bool {
	return ch == '_' || ch == '.' || unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch))
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		ch := src[i]
		if unicode.IsSpace(rune(ch)) {
			i++
			continue
		}

		switch ch {
		case '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
			continue
		case ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++
			continue
		case '&', '|':
			if i+1 >= len(src) || src[i+1] != ch {
				return nil, &SyntaxError{Src: src, Pos: i, Msg: fmt.Sprintf("unexpected %q", ch)}
			}
			kind := tokAnd
			if ch == '|' {
				kind = tokOr
			}
			tokens = append(tokens, token{kind, src[i : i+2], i})
			i += 2
			continue
		case '=', '!', '<', '>':
			if i+1 < len(src) && src[i+1] == '=' {
				tokens = append(tokens, token{tokOp, src[i : i+2], i})
				i += 2
				continue
			}
			switch ch {
			case '!':
				tokens = append(tokens, token{tokNot, "!", i})
			case '=':
				return nil, &SyntaxError{Src: src, Pos: i, Msg: "use == for equality"}
			default:
				tokens = append(tokens, token{tokOp, string(ch), i})
			}
			i++
			continue
		case '"', '\'':
			j := i + 1
			var b strings.Builder
			for j < len(src) && src[j] != ch {
				if src[j] == '\\' && j+1 < len(src) {
					j++
				}
				b.WriteByte(src[j])
				j++
			}
			if j >= len(src) {
				return nil, &SyntaxError{Src: src, Pos: i, Msg: "unterminated string"}
			}
			tokens = append(tokens, token{tokString, b.String(), i})
			i = j + 1
			continue
		}

		if unicode.IsDigit(rune(ch)) || (ch == '-' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1]))) {
			j := i + 1
			for j < len(src) && (unicode.IsDigit(rune(src[j])) || src[j] == '.') {
				j++
			}
			tokens = append(tokens, token{tokNumber, src[i:j], i})
			i = j
			continue
		}

		if unicode.IsLetter(rune(ch)) || ch == '_' {
			j := i
			for j < len(src) && isIdentRune(src[j]) {
				j++
			}
			word := src[i:j]
			switch strings.ToLower(word) {
			case "and":
				tokens = append(tokens, token{tokAnd, word, i})
			case "or":
				tokens = append(tokens, token{tokOr, word, i})
			case "not":
				tokens = append(tokens, token{tokNot, word, i})
			default:
				tokens = append(tokens, token{tokIdent, word, i})
			}
			i = j
			continue
		}

		return nil, &SyntaxError{Src: src, Pos: i, Msg: fmt.Sprintf("unexpected character %q", ch)}
	}
	tokens = append(tokens, token{tokEOF, "", len(src)})
	return tokens, nil
}
