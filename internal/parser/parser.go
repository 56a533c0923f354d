// Package parser extracts a symbol table and diagnostics from Pike source.
// It is built to survive the input an editor produces mid-keystroke: every
// entry point is total, malformed regions degrade to diagnostics plus
// best-effort symbol recovery, and all recovery loops carry hard iteration
// caps.
package parser

import (
	"fmt"
	"strings"

	"github.com/jward/arbor/internal/pike"
)

const (
	// maxTopLevelAttempts bounds the declaration loop so pathological input
	// cannot spin the parser; callers impose no timeout of their own.
	maxTopLevelAttempts = 4096
	// maxRecoverySkips bounds single-token skipping while hunting for the
	// next statement boundary after a parse failure.
	maxRecoverySkips = 32
	// maxBranchExtract caps how many conditional-compilation branches get
	// their own extraction pass.
	maxBranchExtract = 16
)

// Result is the product of one parse call.
type Result struct {
	Symbols     []*pike.Symbol
	Diagnostics []pike.Diagnostic
}

// Parse analyzes code and returns every symbol it can recover together with
// the diagnostics produced along the way. startLine is the 1-based line
// number of the first line (1 for whole files). Parse never panics across
// its boundary; an internal failure is converted into an error diagnostic.
func Parse(code, filename string, startLine int) (res *Result) {
	if startLine < 1 {
		startLine = 1
	}
	res = &Result{Symbols: []*pike.Symbol{}, Diagnostics: []pike.Diagnostic{}}
	defer func() {
		if r := recover(); r != nil {
			res.Diagnostics = append(res.Diagnostics, pike.Diagnostic{
				Message:  fmt.Sprintf("internal parser failure: %v", r),
				Severity: pike.SeverityError,
				File:     filename,
				Line:     startLine,
			})
		}
	}()

	// Stage 1: directive pre-pass over raw lines.
	ds := scanDirectives(code, filename, startLine)
	res.Symbols = append(res.Symbols, ds.symbols...)
	res.Diagnostics = append(res.Diagnostics, ds.diags...)

	// Stage 2: grammar-driven pass over the blanked source.
	p := &declParser{
		toks: pike.Tokenize(ds.blanked, startLine),
		file: filename,
		docs: pike.DocComments(code, startLine),
	}
	p.brace = pike.BraceIndex(p.toks)
	res.Symbols = append(res.Symbols, p.parseAll()...)
	res.Diagnostics = append(res.Diagnostics, p.diags...)

	// Stage 3: token-level fallback over the original source. Captured
	// names include nested members, or the fallback would re-emit class
	// bodies at top level.
	seen := make(map[string]bool)
	var mark func([]*pike.Symbol)
	mark = func(syms []*pike.Symbol) {
		for _, s := range syms {
			seen[s.Name] = true
			mark(s.Children)
		}
	}
	mark(res.Symbols)
	fbSyms, fbDiags := fallbackScan(code, filename, startLine, seen)
	res.Symbols = append(res.Symbols, fbSyms...)
	res.Diagnostics = append(res.Diagnostics, fbDiags...)

	// Stage 4: per-branch extraction for conditional compilation. Additive.
	res.Symbols = append(res.Symbols, extractBranches(code, filename, startLine, ds.branches)...)

	// Stage 5: dynamic-load detection.
	res.Symbols = append(res.Symbols, detectLoads(code, filename, startLine)...)

	return res
}

// parseErr is a recoverable grammar failure.
type parseErr struct {
	msg  string
	line int
}

func (e *parseErr) Error() string { return e.msg }

func errAt(line int, format string, args ...any) *parseErr {
	return &parseErr{msg: fmt.Sprintf(format, args...), line: line}
}

// declParser is the grammar-driven pass. It holds purely local working state;
// concurrent parses never share one.
type declParser struct {
	toks  []pike.Token
	brace []int
	pos   int
	file  string
	docs  map[int]string
	diags []pike.Diagnostic
	seen  map[string]bool // message+line dedupe for recovery noise
}

func (p *declParser) eof() bool { return p.pos >= len(p.toks) }

func (p *declParser) cur() pike.Token {
	if p.eof() {
		return pike.Token{}
	}
	return p.toks[p.pos]
}

func (p *declParser) peek(k int) pike.Token {
	if p.pos+k >= len(p.toks) {
		return pike.Token{}
	}
	return p.toks[p.pos+k]
}

func (p *declParser) next() pike.Token {
	t := p.cur()
	p.pos++
	return t
}

func (p *declParser) accept(text string) bool {
	if !p.eof() && p.cur().Text == text {
		p.pos++
		return true
	}
	return false
}

// addDiag records a diagnostic, suppressing near-duplicate "expected
// identifier" noise that recovery loops tend to produce in bursts.
func (p *declParser) addDiag(e *parseErr) {
	key := fmt.Sprintf("%s@%d", e.msg, e.line)
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	if strings.HasPrefix(e.msg, "expected identifier") {
		near := fmt.Sprintf("%s@%d", e.msg, e.line-1)
		if p.seen[key] || p.seen[near] {
			return
		}
	} else if p.seen[key] {
		return
	}
	p.seen[key] = true
	p.diags = append(p.diags, pike.Diagnostic{
		Message:  e.msg,
		Severity: pike.SeverityError,
		File:     p.file,
		Line:     e.line,
	})
}

// recover skips forward to the next statement boundary (';', '{' or '}'),
// giving up after maxRecoverySkips single-token skips. A '{' boundary is
// skipped through to its matching '}' so a broken declaration header does
// not dump its body into the top-level loop. Recovery also stops, without
// consuming, at a token that begins a new source line and can lead a
// declaration, so a missing ';' does not swallow the statement after it.
// limit bounds the scan (token index, exclusive); pass len(p.toks) at top
// level.
func (p *declParser) recoverTo(limit int) {
	for skips := 0; p.pos < limit && skips < maxRecoverySkips; skips++ {
		t := p.toks[p.pos]
		switch {
		case t.IsPunct(";"):
			p.pos++
			return
		case t.IsPunct("{"):
			if m := p.brace[p.pos]; m >= 0 && m < limit {
				p.pos = m + 1
			} else {
				p.pos = limit
			}
			return
		case t.IsPunct("}"):
			p.pos++
			return
		}
		if p.pos > 0 && t.Line > p.toks[p.pos-1].Line && declLead(t) {
			return
		}
		p.pos++
	}
}

var declKeywords = map[string]bool{
	"class": true, "enum": true, "typedef": true, "constant": true,
	"inherit": true, "import": true,
}

// declLead reports whether a token can begin a top-level declaration.
func declLead(t pike.Token) bool {
	if t.Kind == pike.TokKeyword {
		return pike.IsModifier(t.Text) || pike.IsTypeKeyword(t.Text) || declKeywords[t.Text]
	}
	return t.Kind == pike.TokIdent && isCapitalized(t.Text)
}

// parseAll runs the top-level declaration loop. Partial symbols from a
// declaration that later fails are kept; best effort beats discarding.
func (p *declParser) parseAll() []*pike.Symbol {
	var symbols []*pike.Symbol
	for attempts := 0; !p.eof() && attempts < maxTopLevelAttempts; attempts++ {
		if p.accept(";") || p.accept("}") {
			continue // stray terminators are common in broken input
		}
		start := p.pos
		syms, err := p.parseDecl()
		symbols = append(symbols, syms...)
		if err != nil {
			p.addDiag(err)
			p.recoverTo(len(p.toks))
			if p.pos == start {
				p.pos++ // recovery made no progress; force it
			}
		}
	}
	return symbols
}

// parseDecl parses one declaration starting at the current token. It returns
// one symbol in the usual case; comma-separated variable lists produce one
// symbol per declared name (no merging for repeated names).
func (p *declParser) parseDecl() ([]*pike.Symbol, *parseErr) {
	mods := p.parseModifiers()
	t := p.cur()
	switch {
	case t.Kind == pike.TokKeyword && t.Text == "class":
		sym, err := p.parseClass(mods)
		if err != nil {
			return nil, err
		}
		return []*pike.Symbol{sym}, nil
	case t.Kind == pike.TokKeyword && t.Text == "enum":
		sym, err := p.parseEnum(mods)
		if err != nil {
			return nil, err
		}
		return []*pike.Symbol{sym}, nil
	case t.Kind == pike.TokKeyword && t.Text == "typedef":
		sym, err := p.parseTypedef(mods)
		if err != nil {
			return nil, err
		}
		return []*pike.Symbol{sym}, nil
	case t.Kind == pike.TokKeyword && t.Text == "constant":
		sym, err := p.parseConstant(mods)
		if err != nil {
			return nil, err
		}
		return []*pike.Symbol{sym}, nil
	case t.Kind == pike.TokKeyword && t.Text == "inherit":
		sym, err := p.parseInherit(mods)
		if err != nil {
			return nil, err
		}
		return []*pike.Symbol{sym}, nil
	case t.Kind == pike.TokKeyword && t.Text == "import":
		sym, err := p.parseImport(mods)
		if err != nil {
			return nil, err
		}
		return []*pike.Symbol{sym}, nil
	default:
		return p.parseTyped(mods)
	}
}

func (p *declParser) parseModifiers() []string {
	var mods []string
	for !p.eof() {
		t := p.cur()
		if t.Kind == pike.TokKeyword && pike.IsModifier(t.Text) {
			mods = append(mods, t.Text)
			p.pos++
			continue
		}
		break
	}
	return mods
}

func (p *declParser) expectIdent(what string) (pike.Token, *parseErr) {
	t := p.cur()
	if t.Kind != pike.TokIdent {
		return pike.Token{}, errAt(t.Line, "expected identifier (%s), found %q", what, t.Text)
	}
	p.pos++
	return t, nil
}

func (p *declParser) newSymbol(name string, kind pike.Kind, mods []string, t pike.Token) *pike.Symbol {
	return &pike.Symbol{
		Name:          name,
		Kind:          kind,
		Modifiers:     mods,
		File:          p.file,
		Line:          t.Line,
		Col:           t.Col,
		EndLine:       t.Line,
		Documentation: p.docs[t.Line],
	}
}

// parseClass parses `class Name { ... }`, recursing into the body so nested
// members land in Children.
func (p *declParser) parseClass(mods []string) (*pike.Symbol, *parseErr) {
	kw := p.next() // class
	name, err := p.expectIdent("class name")
	if err != nil {
		return nil, err
	}
	sym := p.newSymbol(name.Text, pike.KindClass, mods, kw)
	if sym.Documentation == "" {
		sym.Documentation = p.docs[name.Line]
	}

	// Optional create-argument list: class Foo (int x) { ... }
	if p.cur().IsPunct("(") {
		p.skipBalanced("(", ")")
	}
	if p.accept(";") {
		return sym, nil // forward declaration
	}
	if !p.cur().IsPunct("{") {
		return sym, nil // tolerate a missing body; symbol is still useful
	}
	open := p.pos
	close := p.brace[open]
	if close < 0 {
		close = len(p.toks)
	}
	p.pos++ // consume '{'
	for attempts := 0; p.pos < close && attempts < maxTopLevelAttempts; attempts++ {
		if p.accept(";") {
			continue
		}
		start := p.pos
		members, err := p.parseDecl()
		sym.Children = append(sym.Children, members...)
		if err != nil {
			p.addDiag(err)
			p.recoverTo(close)
			if p.pos == start {
				p.pos++
			}
		}
	}
	if close < len(p.toks) {
		sym.EndLine = p.toks[close].Line
		p.pos = close + 1
	} else {
		sym.EndLine = p.lastLine()
		p.pos = close
	}
	return sym, nil
}

// parseEnum parses `enum Name { A, B = 2, C }` with enum-constant children.
func (p *declParser) parseEnum(mods []string) (*pike.Symbol, *parseErr) {
	kw := p.next() // enum
	name := ""
	if p.cur().Kind == pike.TokIdent {
		name = p.next().Text
	}
	sym := p.newSymbol(name, pike.KindEnum, mods, kw)
	if !p.cur().IsPunct("{") {
		return nil, errAt(p.cur().Line, "expected '{' after enum")
	}
	open := p.pos
	close := p.brace[open]
	if close < 0 {
		close = len(p.toks)
	}
	p.pos++
	for p.pos < close {
		t := p.cur()
		if t.Kind == pike.TokIdent {
			child := p.newSymbol(t.Text, pike.KindEnumConstant, nil, t)
			sym.Children = append(sym.Children, child)
			p.pos++
			if p.cur().IsPunct("=") {
				p.pos++
				p.skipExprUntil(close, ",")
			}
			p.accept(",")
			continue
		}
		p.pos++ // tolerate junk between constants
	}
	if close < len(p.toks) {
		sym.EndLine = p.toks[close].Line
		p.pos = close + 1
	} else {
		sym.EndLine = p.lastLine()
		p.pos = close
	}
	p.accept(";")
	return sym, nil
}

func (p *declParser) parseTypedef(mods []string) (*pike.Symbol, *parseErr) {
	kw := p.next() // typedef
	typ, err := p.parseSimpleType()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent("typedef name")
	if err != nil {
		return nil, err
	}
	sym := p.newSymbol(name.Text, pike.KindTypedef, mods, kw)
	sym.Type = &pike.Type{Kind: pike.TypeNamed, Name: name.Text, Inner: typ}
	if !p.accept(";") {
		return nil, errAt(p.cur().Line, "expected ';' after typedef")
	}
	return sym, nil
}

func (p *declParser) parseConstant(mods []string) (*pike.Symbol, *parseErr) {
	kw := p.next() // constant
	name, err := p.expectIdent("constant name")
	if err != nil {
		return nil, err
	}
	sym := p.newSymbol(name.Text, pike.KindConstant, mods, kw)
	if p.accept("=") {
		p.skipExprUntil(len(p.toks), ";")
	}
	if !p.accept(";") {
		return nil, errAt(p.cur().Line, "expected ';' after constant")
	}
	return sym, nil
}

// parseInherit parses `inherit "path";`, `inherit Foo.Bar;` and the labeled
// form `inherit Thing : label;`. The symbol name is the inherit target; the
// hierarchy builder resolves it across documents.
func (p *declParser) parseInherit(mods []string) (*pike.Symbol, *parseErr) {
	kw := p.next() // inherit
	target, err := p.parseDottedOrString("inherit target")
	if err != nil {
		return nil, err
	}
	if p.accept(":") {
		// label only renames the inherit locally; the target stays the name
		if p.cur().Kind == pike.TokIdent {
			p.pos++
		}
	}
	sym := p.newSymbol(target, pike.KindInherit, mods, kw)
	p.accept(";")
	return sym, nil
}

func (p *declParser) parseImport(mods []string) (*pike.Symbol, *parseErr) {
	kw := p.next() // import
	target, err := p.parseDottedOrString("import target")
	if err != nil {
		return nil, err
	}
	sym := p.newSymbol(target, pike.KindImport, mods, kw)
	p.accept(";")
	return sym, nil
}

func (p *declParser) parseDottedOrString(what string) (string, *parseErr) {
	t := p.cur()
	if t.Kind == pike.TokString {
		p.pos++
		return strings.Trim(t.Text, `"`), nil
	}
	if t.Kind != pike.TokIdent {
		return "", errAt(t.Line, "expected identifier (%s), found %q", what, t.Text)
	}
	parts := []string{p.next().Text}
	for p.cur().IsPunct(".") && p.peek(1).Kind == pike.TokIdent {
		p.pos++
		parts = append(parts, p.next().Text)
	}
	return strings.Join(parts, "."), nil
}

// parseTyped parses declarations led by a type: variables and methods.
func (p *declParser) parseTyped(mods []string) ([]*pike.Symbol, *parseErr) {
	start := p.cur()
	typ, err := p.parseSimpleType()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent("declaration name")
	if err != nil {
		return nil, err
	}

	if p.cur().IsPunct("(") {
		sym, err := p.parseMethod(mods, typ, name, start)
		if err != nil {
			return nil, err
		}
		return []*pike.Symbol{sym}, nil
	}

	// Variable list: type a, b = expr, c;
	var syms []*pike.Symbol
	for {
		sym := p.newSymbol(name.Text, pike.KindVariable, mods, start)
		sym.Line = name.Line
		sym.Col = name.Col
		if sym.Documentation == "" {
			sym.Documentation = p.docs[name.Line]
		}
		sym.Type = typ
		syms = append(syms, sym)
		if p.accept("=") {
			p.skipExprUntil(len(p.toks), ";", ",")
		}
		if p.accept(",") {
			name, err = p.expectIdent("declaration name")
			if err != nil {
				return syms, err
			}
			continue
		}
		break
	}
	if !p.accept(";") {
		return syms, errAt(p.cur().Line, "expected ';' after declaration of %q", name.Text)
	}
	return syms, nil
}

// parseMethod parses a function definition or prototype. The body is scanned
// only far enough to pick up local variable, constant and typedef
// declarations; statements are not parsed.
func (p *declParser) parseMethod(mods []string, ret *pike.Type, name pike.Token, start pike.Token) (*pike.Symbol, *parseErr) {
	sym := p.newSymbol(name.Text, pike.KindMethod, mods, start)
	sym.Line = name.Line
	sym.Col = name.Col
	if sym.Documentation == "" {
		sym.Documentation = p.docs[name.Line]
	}

	openParen := p.pos
	closeParen := p.matchParen(openParen)
	argTypes := p.parseParamTypes(openParen+1, closeParen)
	sym.Type = &pike.Type{Kind: pike.TypeFunction, Elems: argTypes, Inner: ret}
	p.pos = closeParen + 1

	if p.accept(";") {
		return sym, nil // prototype
	}
	if !p.cur().IsPunct("{") {
		return nil, errAt(p.cur().Line, "expected '{' or ';' after signature of %q", name.Text)
	}
	open := p.pos
	close := p.brace[open]
	if close < 0 {
		close = len(p.toks)
	}
	sym.Children = p.scanLocals(open+1, close)
	if close < len(p.toks) {
		sym.EndLine = p.toks[close].Line
		p.pos = close + 1
	} else {
		sym.EndLine = p.lastLine()
		p.pos = close
	}
	return sym, nil
}

// parseParamTypes extracts the declared type of each parameter between the
// given paren token positions.
func (p *declParser) parseParamTypes(from, to int) []*pike.Type {
	var types []*pike.Type
	i := from
	for i < to {
		// one parameter: tokens until a top-level comma
		end := i
		depth := 0
		for end < to {
			t := p.toks[end]
			if t.IsPunct("(") || t.IsPunct("[") || t.IsPunct("{") {
				depth++
			} else if t.IsPunct(")") || t.IsPunct("]") || t.IsPunct("}") {
				depth--
			} else if t.IsPunct(",") && depth == 0 {
				break
			}
			end++
		}
		if end > i {
			types = append(types, pike.ParseTypeTokens(p.toks[i:end]))
		}
		i = end + 1
	}
	return types
}

// scanLocals walks function-body tokens looking for declaration-shaped runs
// at statement starts. It does not parse statements.
func (p *declParser) scanLocals(from, to int) []*pike.Symbol {
	var locals []*pike.Symbol
	atStart := true
	for i := from; i < to && i < len(p.toks); i++ {
		t := p.toks[i]
		if t.IsPunct(";") || t.IsPunct("{") || t.IsPunct("}") {
			atStart = true
			continue
		}
		if !atStart {
			continue
		}
		atStart = false
		switch {
		case t.Kind == pike.TokKeyword && t.Text == "typedef":
			if j, sym := p.localTyped(i+1, to, pike.KindTypedef, nil); sym != nil {
				locals = append(locals, sym)
				i = j
			}
		case t.Kind == pike.TokKeyword && t.Text == "constant":
			if i+1 < to && p.toks[i+1].Kind == pike.TokIdent {
				locals = append(locals, p.newSymbol(p.toks[i+1].Text, pike.KindConstant, nil, p.toks[i+1]))
				i++
			}
		case t.Kind == pike.TokKeyword && pike.IsTypeKeyword(t.Text):
			if j, sym := p.localTyped(i, to, pike.KindVariable, nil); sym != nil {
				locals = append(locals, sym)
				i = j
			}
		}
	}
	return locals
}

// localTyped matches `type name` starting at i, where the type may carry a
// parenthesized parameter. Returns the index of the name token and a symbol,
// or (i, nil) when the shape does not match.
func (p *declParser) localTyped(i, to int, kind pike.Kind, mods []string) (int, *pike.Symbol) {
	save := p.pos
	defer func() { p.pos = save }()
	p.pos = i
	typ, err := p.parseSimpleType()
	if err != nil || p.pos >= to {
		return i, nil
	}
	nameTok := p.cur()
	if nameTok.Kind != pike.TokIdent {
		return i, nil
	}
	after := p.peek(1)
	if !(after.IsPunct(";") || after.IsPunct("=") || after.IsPunct(",")) {
		return i, nil
	}
	sym := p.newSymbol(nameTok.Text, kind, mods, nameTok)
	sym.Type = typ
	if kind == pike.KindTypedef {
		sym.Type = &pike.Type{Kind: pike.TypeNamed, Name: nameTok.Text, Inner: typ}
	}
	return p.pos, sym
}

// parseSimpleType parses the type forms the grammar pass understands: a type
// keyword with an optional parenthesized parameter, or a dotted class name
// starting with a capital letter. Union, intersection, attributed and ranged
// forms are left to the fallback pass.
func (p *declParser) parseSimpleType() (*pike.Type, *parseErr) {
	t := p.cur()
	if t.Kind == pike.TokKeyword && pike.IsTypeKeyword(t.Text) {
		p.pos++
		typ := pike.Primitive(t.Text)
		if p.cur().IsPunct("(") {
			switch t.Text {
			case "array", "multiset", "mapping", "object", "program", "function":
				open := p.pos
				close := p.matchParen(open)
				p.fillTypeParam(typ, open+1, close)
				p.pos = close + 1
			default:
				// int(0..9) and friends are not grammar-level types
				return nil, errAt(t.Line, "unexpected '(' after %q", t.Text)
			}
		}
		return typ, nil
	}
	if t.Kind == pike.TokIdent && isCapitalized(t.Text) {
		name, err := p.parseDottedOrString("type name")
		if err != nil {
			return nil, err
		}
		return pike.Named(name), nil
	}
	return nil, errAt(t.Line, "expected type, found %q", t.Text)
}

// fillTypeParam parses the parameter of array(...), mapping(k:v), object(X).
func (p *declParser) fillTypeParam(typ *pike.Type, from, to int) {
	if to <= from {
		return
	}
	// mapping(k:v) and function(args:ret) split on a top-level ':'
	colon := -1
	depth := 0
	for i := from; i < to; i++ {
		t := p.toks[i]
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
			typ.Elems = []*pike.Type{pike.ParseTypeTokens(p.toks[from:colon]), pike.ParseTypeTokens(p.toks[colon+1 : to])}
			return
		}
		typ.Inner = pike.ParseTypeTokens(p.toks[from:to])
	case "function":
		ret := &pike.Type{Kind: pike.TypeFunction, Inner: pike.Primitive("mixed")}
		if colon >= 0 {
			ret.Inner = pike.ParseTypeTokens(p.toks[colon+1 : to])
			to = colon
		}
		for _, arg := range pike.SplitTopLevel(p.toks[from:to], ",") {
			ret.Elems = append(ret.Elems, pike.ParseTypeTokens(arg))
		}
		*typ = *ret
	default:
		typ.Inner = pike.ParseTypeTokens(p.toks[from:to])
	}
}

// matchParen returns the token index of the ')' matching the '(' at open,
// or the end of input when unbalanced.
func (p *declParser) matchParen(open int) int {
	depth := 0
	for i := open; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.IsPunct("(") {
			depth++
		} else if t.IsPunct(")") {
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(p.toks)
}

// skipBalanced consumes from the current open delimiter through its match.
func (p *declParser) skipBalanced(open, close string) {
	depth := 0
	for !p.eof() {
		t := p.next()
		if t.IsPunct(open) {
			depth++
		} else if t.IsPunct(close) {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// skipExprUntil advances past an expression, stopping before (not consuming)
// any of the stop tokens at nesting depth zero. Bounded by limit.
func (p *declParser) skipExprUntil(limit int, stops ...string) {
	depth := 0
	for p.pos < limit && !p.eof() {
		t := p.cur()
		switch {
		case t.IsPunct("(") || t.IsPunct("[") || t.IsPunct("{"):
			depth++
		case t.IsPunct(")") || t.IsPunct("]") || t.IsPunct("}"):
			if depth == 0 {
				return
			}
			depth--
		default:
			if depth == 0 {
				for _, s := range stops {
					if t.Text == s {
						return
					}
				}
			}
		}
		p.pos++
	}
}

func (p *declParser) lastLine() int {
	if len(p.toks) == 0 {
		return 1
	}
	return p.toks[len(p.toks)-1].Line
}

func isCapitalized(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}
