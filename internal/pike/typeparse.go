package pike

import (
	"strconv"
	"strings"
)

// TypeScanner is a tolerant type-expression parser over a token stream. It
// understands the full surface syntax including unions, intersections,
// attributed and ranged forms, and it never fails: unparseable regions
// collapse to mixed.
type TypeScanner struct {
	toks []Token
	pos  int
}

// NewTypeScanner starts a scan at the given token offset.
func NewTypeScanner(toks []Token, pos int) *TypeScanner {
	return &TypeScanner{toks: toks, pos: pos}
}

// Pos reports the token offset one past the parsed type expression.
func (ts *TypeScanner) Pos() int { return ts.pos }

// ParseTypeTokens parses a complete token run as one type expression.
func ParseTypeTokens(toks []Token) *Type {
	if len(toks) == 0 {
		return Primitive("mixed")
	}
	return NewTypeScanner(toks, 0).Parse()
}

// Parse consumes one type expression.
func (ts *TypeScanner) Parse() *Type { return ts.union() }

func (ts *TypeScanner) cur() Token {
	if ts.pos >= len(ts.toks) {
		return Token{}
	}
	return ts.toks[ts.pos]
}

func (ts *TypeScanner) accept(text string) bool {
	if ts.pos < len(ts.toks) && ts.toks[ts.pos].Text == text {
		ts.pos++
		return true
	}
	return false
}

func (ts *TypeScanner) union() *Type {
	first := ts.intersection()
	if ts.cur().Text != "|" {
		return first
	}
	elems := []*Type{first}
	for ts.accept("|") {
		elems = append(elems, ts.intersection())
	}
	return &Type{Kind: TypeUnion, Elems: elems}
}

func (ts *TypeScanner) intersection() *Type {
	first := ts.postfix()
	if ts.cur().Text != "&" {
		return first
	}
	elems := []*Type{first}
	for ts.accept("&") {
		elems = append(elems, ts.postfix())
	}
	return &Type{Kind: TypeIntersection, Elems: elems}
}

func (ts *TypeScanner) postfix() *Type {
	base := ts.base()
	if ts.accept("...") {
		return &Type{Kind: TypeVarargs, Inner: base}
	}
	return base
}

func (ts *TypeScanner) base() *Type {
	t := ts.cur()
	switch {
	case t.IsPunct("("):
		ts.pos++
		inner := ts.union()
		ts.accept(")")
		return inner

	case t.Kind == TokKeyword && IsTypeKeyword(t.Text):
		ts.pos++
		typ := Primitive(t.Text)
		if ts.cur().IsPunct("(") {
			from := ts.pos + 1
			to := ts.matchParen(ts.pos)
			ts.fillParam(typ, from, to)
			ts.pos = to + 1
		}
		return typ

	case t.Kind == TokIdent && strings.HasPrefix(t.Text, "__"):
		// attributed type: __deprecated__(t), __attribute__("x", t)
		ts.pos++
		attr := &Type{Kind: TypeAttributed, Name: t.Text, Inner: Primitive("mixed")}
		if ts.cur().IsPunct("(") {
			from := ts.pos + 1
			to := ts.matchParen(ts.pos)
			if from < len(ts.toks) {
				parts := SplitTopLevel(ts.toks[from:min(to, len(ts.toks))], ",")
				if len(parts) > 0 {
					attr.Inner = ParseTypeTokens(parts[len(parts)-1])
				}
			}
			ts.pos = to + 1
		}
		return attr

	case t.Kind == TokIdent:
		parts := []string{t.Text}
		ts.pos++
		for ts.cur().IsPunct(".") && ts.pos+1 < len(ts.toks) && ts.toks[ts.pos+1].Kind == TokIdent {
			ts.pos++
			parts = append(parts, ts.cur().Text)
			ts.pos++
		}
		return Named(strings.Join(parts, "."))
	}
	// give up on this token; never fail
	ts.pos++
	return Primitive("mixed")
}

// fillParam handles the parenthesized parameter after a type keyword,
// including the ranged form int(0..9).
func (ts *TypeScanner) fillParam(typ *Type, from, to int) {
	if to <= from || from >= len(ts.toks) {
		return
	}
	toks := ts.toks[from:min(to, len(ts.toks))]

	if typ.Name == "int" {
		if lo, hi, ok := rangeBounds(toks); ok {
			*typ = Type{Kind: TypeRange, Min: lo, Max: hi}
			return
		}
	}

	colon := -1
	depth := 0
	for i, t := range toks {
		switch {
		case t.IsPunct("("):
			depth++
		case t.IsPunct(")"):
			depth--
		case t.Text == ":" && depth == 0:
			colon = i
		}
	}
	switch typ.Name {
	case "mapping":
		if colon >= 0 {
			typ.Elems = []*Type{ParseTypeTokens(toks[:colon]), ParseTypeTokens(toks[colon+1:])}
			return
		}
		typ.Inner = ParseTypeTokens(toks)
	case "function":
		fn := &Type{Kind: TypeFunction, Inner: Primitive("mixed")}
		args := toks
		if colon >= 0 {
			fn.Inner = ParseTypeTokens(toks[colon+1:])
			args = toks[:colon]
		}
		for _, arg := range SplitTopLevel(args, ",") {
			fn.Elems = append(fn.Elems, ParseTypeTokens(arg))
		}
		*typ = *fn
	default:
		typ.Inner = ParseTypeTokens(toks)
	}
}

func (ts *TypeScanner) matchParen(open int) int {
	depth := 0
	for i := open; i < len(ts.toks); i++ {
		t := ts.toks[i]
		if t.IsPunct("(") {
			depth++
		} else if t.IsPunct(")") {
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(ts.toks)
}

// rangeBounds matches the exact shape NUM '..' NUM, allowing unary minus.
func rangeBounds(toks []Token) (int, int, bool) {
	nums := make([]int, 0, 2)
	i := 0
	for i < len(toks) {
		neg := false
		if toks[i].Text == "-" {
			neg = true
			i++
		}
		if i >= len(toks) || toks[i].Kind != TokNumber {
			return 0, 0, false
		}
		v, err := strconv.Atoi(toks[i].Text)
		if err != nil {
			return 0, 0, false
		}
		if neg {
			v = -v
		}
		nums = append(nums, v)
		i++
		if i < len(toks) {
			if toks[i].Text != ".." {
				return 0, 0, false
			}
			i++
		}
	}
	if len(nums) != 2 {
		return 0, 0, false
	}
	return nums[0], nums[1], true
}

// SplitTopLevel splits a token run on a separator at nesting depth zero.
func SplitTopLevel(toks []Token, sep string) [][]Token {
	var parts [][]Token
	depth := 0
	start := 0
	for i, t := range toks {
		switch {
		case t.IsPunct("(") || t.IsPunct("[") || t.IsPunct("{"):
			depth++
		case t.IsPunct(")") || t.IsPunct("]") || t.IsPunct("}"):
			depth--
		case t.Text == sep && depth == 0:
			if i > start {
				parts = append(parts, toks[start:i])
			}
			start = i + 1
		}
	}
	if start < len(toks) {
		parts = append(parts, toks[start:])
	}
	return parts
}
