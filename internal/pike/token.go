package pike

import "strings"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokIdent TokenKind = iota
	TokKeyword
	TokNumber
	TokString
	TokChar
	TokOperator
	TokPunct
)

// Token is one lexical token with its 1-based source line and 0-based column.
type Token struct {
	Kind TokenKind
	Text string
	Line int
	Col  int
}

// IsPunct reports whether the token is the given punctuation text.
func (t Token) IsPunct(s string) bool {
	return (t.Kind == TokPunct || t.Kind == TokOperator) && t.Text == s
}

var keywords = map[string]bool{
	"array": true, "break": true, "case": true, "catch": true, "class": true,
	"constant": true, "continue": true, "default": true, "do": true,
	"else": true, "enum": true, "extern": true, "final": true, "float": true,
	"for": true, "foreach": true, "function": true, "gauge": true, "if": true,
	"import": true, "inherit": true, "inline": true, "int": true,
	"lambda": true, "local": true, "mapping": true, "mixed": true,
	"multiset": true, "nomask": true, "object": true, "optional": true,
	"private": true, "program": true, "protected": true, "public": true,
	"return": true, "sscanf": true, "static": true, "string": true,
	"switch": true, "typedef": true, "typeof": true, "variant": true,
	"void": true, "while": true, "zero": true,
}

var typeKeywords = map[string]bool{
	"array": true, "float": true, "function": true, "int": true,
	"mapping": true, "mixed": true, "multiset": true, "object": true,
	"program": true, "string": true, "void": true, "zero": true,
}

var modifierKeywords = map[string]bool{
	"extern": true, "final": true, "inline": true, "local": true,
	"nomask": true, "optional": true, "private": true, "protected": true,
	"public": true, "static": true, "variant": true,
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool { return keywords[s] }

// IsTypeKeyword reports whether s names a builtin type.
func IsTypeKeyword(s string) bool { return typeKeywords[s] }

// IsModifier reports whether s is a declaration modifier.
func IsModifier(s string) bool { return modifierKeywords[s] }

// multi-char operators, longest first so the scanner can match greedily.
var operators = []string{
	"<<=", ">>=", "...", "->", "::", "..", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "++", "--", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"+", "-", "*", "/", "%", "&", "|", "^", "!", "<", ">", "=", "?", ":", "~", "@", ".",
}

// Tokenize scans src into tokens. It never fails: unterminated strings end at
// the next newline, unterminated block comments end at EOF, and bytes that fit
// no token class are skipped. startLine is the 1-based line number of the
// first line of src.
func Tokenize(src string, startLine int) []Token {
	if startLine < 1 {
		startLine = 1
	}
	var toks []Token
	line := startLine
	col := 0
	i := 0
	n := len(src)

	advance := func(k int) {
		for j := 0; j < k && i < n; j++ {
			if src[i] == '\n' {
				line++
				col = 0
			} else {
				col++
			}
			i++
		}
	}

	for i < n {
		c := src[i]

		// whitespace
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			advance(1)
			continue
		}

		// line comment (including //! autodoc, handled separately by DocComments)
		if c == '/' && i+1 < n && src[i+1] == '/' {
			for i < n && src[i] != '\n' {
				advance(1)
			}
			continue
		}

		// block comment, tolerant of missing terminator
		if c == '/' && i+1 < n && src[i+1] == '*' {
			advance(2)
			for i < n {
				if src[i] == '*' && i+1 < n && src[i+1] == '/' {
					advance(2)
					break
				}
				advance(1)
			}
			continue
		}

		// preprocessor remnants: a lone '#' starts a directive the caller
		// should have blanked; treat the rest of the line as punctuation-free.
		if c == '#' && col == 0 {
			startL, startC := line, col
			j := i
			for j < n && src[j] != '\n' {
				j++
			}
			toks = append(toks, Token{Kind: TokPunct, Text: src[i:j], Line: startL, Col: startC})
			advance(j - i)
			continue
		}

		// string literal, unterminated ends at newline
		if c == '"' {
			startL, startC := line, col
			j := i + 1
			for j < n && src[j] != '"' && src[j] != '\n' {
				if src[j] == '\\' && j+1 < n {
					j++
				}
				j++
			}
			if j < n && src[j] == '"' {
				j++
			}
			toks = append(toks, Token{Kind: TokString, Text: src[i:j], Line: startL, Col: startC})
			advance(j - i)
			continue
		}

		// character literal
		if c == '\'' {
			startL, startC := line, col
			j := i + 1
			for j < n && src[j] != '\'' && src[j] != '\n' {
				if src[j] == '\\' && j+1 < n {
					j++
				}
				j++
			}
			if j < n && src[j] == '\'' {
				j++
			}
			toks = append(toks, Token{Kind: TokChar, Text: src[i:j], Line: startL, Col: startC})
			advance(j - i)
			continue
		}

		// number
		if c >= '0' && c <= '9' {
			startL, startC := line, col
			j := i
			if c == '0' && j+1 < n && (src[j+1] == 'x' || src[j+1] == 'X') {
				j += 2
				for j < n && isHexDigit(src[j]) {
					j++
				}
			} else {
				for j < n && (src[j] >= '0' && src[j] <= '9') {
					j++
				}
				// fractional part; but not the ".." range operator
				if j+1 < n && src[j] == '.' && src[j+1] != '.' {
					j++
					for j < n && (src[j] >= '0' && src[j] <= '9') {
						j++
					}
				}
			}
			toks = append(toks, Token{Kind: TokNumber, Text: src[i:j], Line: startL, Col: startC})
			advance(j - i)
			continue
		}

		// identifier or keyword
		if isIdentStart(c) {
			startL, startC := line, col
			j := i
			for j < n && isIdentPart(src[j]) {
				j++
			}
			text := src[i:j]
			kind := TokIdent
			if IsKeyword(text) {
				kind = TokKeyword
			}
			toks = append(toks, Token{Kind: kind, Text: text, Line: startL, Col: startC})
			advance(j - i)
			continue
		}

		// punctuation
		if strings.ContainsRune("(){}[];,", rune(c)) {
			toks = append(toks, Token{Kind: TokPunct, Text: string(c), Line: line, Col: col})
			advance(1)
			continue
		}

		// operators, longest match first
		matched := false
		for _, op := range operators {
			if strings.HasPrefix(src[i:], op) {
				toks = append(toks, Token{Kind: TokOperator, Text: op, Line: line, Col: col})
				advance(len(op))
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		// anything else (binary garbage, stray backslashes): skip one byte
		advance(1)
	}
	return toks
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// BraceIndex pairs every '{' token with its matching '}'. The returned slice
// is indexed by token position; entries are the matching token index, or -1
// for non-brace tokens and unmatched braces. Unbalanced input is tolerated.
func BraceIndex(toks []Token) []int {
	match := make([]int, len(toks))
	for i := range match {
		match[i] = -1
	}
	var stack []int
	for i, t := range toks {
		switch {
		case t.IsPunct("{"):
			stack = append(stack, i)
		case t.IsPunct("}"):
			if len(stack) > 0 {
				open := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				match[open] = i
				match[i] = open
			}
		}
	}
	return match
}

// DocComments collects //! autodoc comments keyed by source line. Consecutive
// doc lines are merged onto the line of the first following non-doc line, so
// the block attaches to the declaration below it. A doc comment trailing code
// on the same line is keyed by that line itself.
func DocComments(src string, startLine int) map[int]string {
	if startLine < 1 {
		startLine = 1
	}
	docs := make(map[int]string)
	lines := strings.Split(src, "\n")
	var buf []string
	for i, raw := range lines {
		lineNo := startLine + i
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "//!") {
			buf = append(buf, strings.TrimSpace(strings.TrimPrefix(trimmed, "//!")))
			continue
		}
		if idx := strings.Index(raw, "//!"); idx >= 0 && trimmed != "" {
			// trailing doc on a code line
			docs[lineNo] = strings.TrimSpace(raw[idx+3:])
		}
		if len(buf) > 0 {
			if trimmed != "" {
				joined := strings.Join(buf, "\n")
				if prev, ok := docs[lineNo]; ok {
					docs[lineNo] = pickRicherDoc(prev, joined)
				} else {
					docs[lineNo] = joined
				}
			}
			buf = nil
		}
	}
	return docs
}

// pickRicherDoc prefers the doc text carrying more structured @-markup.
func pickRicherDoc(a, b string) string {
	if strings.Count(b, "@") > strings.Count(a, "@") {
		return b
	}
	return a
}
