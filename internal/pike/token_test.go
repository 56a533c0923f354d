package pike

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeBasics(t *testing.T) {
	t.Parallel()

	toks := Tokenize(`int counter = 42;`, 1)
	require.Len(t, toks, 5)

	assert.Equal(t, TokKeyword, toks[0].Kind)
	assert.Equal(t, "int", toks[0].Text)
	assert.Equal(t, TokIdent, toks[1].Kind)
	assert.Equal(t, "counter", toks[1].Text)
	assert.Equal(t, TokOperator, toks[2].Kind)
	assert.Equal(t, TokNumber, toks[3].Kind)
	assert.Equal(t, "42", toks[3].Text)
	assert.True(t, toks[4].IsPunct(";"))
}

func TestTokenizePositions(t *testing.T) {
	t.Parallel()

	toks := Tokenize("string s;\n  float f;", 10)
	require.Len(t, toks, 6)

	assert.Equal(t, 10, toks[0].Line)
	assert.Equal(t, 0, toks[0].Col)
	assert.Equal(t, 10, toks[1].Line)
	assert.Equal(t, 7, toks[1].Col)
	assert.Equal(t, 11, toks[3].Line)
	assert.Equal(t, 2, toks[3].Col)
	assert.Equal(t, 11, toks[4].Line)
	assert.Equal(t, 8, toks[4].Col)
}

func TestTokenizeComments(t *testing.T) {
	t.Parallel()

	toks := Tokenize("int a; // trailing\n/* block\nspanning */ int b;", 1)
	texts := make([]string, len(toks))
	for i, tok := range toks {
		texts[i] = tok.Text
	}
	assert.Equal(t, []string{"int", "a", ";", "int", "b", ";"}, texts)
	// b's line accounts for the newline inside the block comment
	assert.Equal(t, 3, toks[3].Line)
}

func TestTokenizeUnterminated(t *testing.T) {
	t.Parallel()

	t.Run("string ends at newline", func(t *testing.T) {
		t.Parallel()
		toks := Tokenize("string s = \"oops\nint x;", 1)
		var str Token
		for _, tok := range toks {
			if tok.Kind == TokString {
				str = tok
			}
		}
		assert.Equal(t, `"oops`, str.Text)
		// the next line still tokenizes
		assert.Equal(t, "x", toks[len(toks)-2].Text)
	})

	t.Run("block comment ends at EOF", func(t *testing.T) {
		t.Parallel()
		toks := Tokenize("int a; /* never closed", 1)
		require.Len(t, toks, 3)
		assert.Equal(t, "a", toks[1].Text)
	})
}

func TestTokenizeEscapedQuote(t *testing.T) {
	t.Parallel()

	toks := Tokenize(`string s = "a\"b";`, 1)
	var str Token
	for _, tok := range toks {
		if tok.Kind == TokString {
			str = tok
		}
	}
	assert.Equal(t, `"a\"b"`, str.Text)
}

func TestTokenizeOperatorsGreedy(t *testing.T) {
	t.Parallel()

	toks := Tokenize("a->b :: c ... d << e", 1)
	var ops []string
	for _, tok := range toks {
		if tok.Kind == TokOperator {
			ops = append(ops, tok.Text)
		}
	}
	assert.Equal(t, []string{"->", "::", "...", "<<"}, ops)
}

func TestTokenizeNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want []string
	}{
		{"0x1F 255 3.14", []string{"0x1F", "255", "3.14"}},
		// .. is the range operator, not two fractional parts
		{"0..9", []string{"0", "9"}},
	}
	for _, tt := range tests {
		toks := Tokenize(tt.src, 1)
		var nums []string
		for _, tok := range toks {
			if tok.Kind == TokNumber {
				nums = append(nums, tok.Text)
			}
		}
		assert.Equal(t, tt.want, nums, tt.src)
	}
}

func TestTokenizeGarbage(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		Tokenize("\x00\xff\\ $$$ `` int ok;", 1)
	})
	toks := Tokenize("\x00\\ int ok;", 1)
	var idents []string
	for _, tok := range toks {
		if tok.Kind == TokIdent {
			idents = append(idents, tok.Text)
		}
	}
	assert.Equal(t, []string{"ok"}, idents)
}

func TestBraceIndex(t *testing.T) {
	t.Parallel()

	toks := Tokenize("class A { void f() { } }", 1)
	idx := BraceIndex(toks)

	var opens []int
	for i, tok := range toks {
		if tok.IsPunct("{") {
			opens = append(opens, i)
		}
	}
	require.Len(t, opens, 2)
	outer, inner := opens[0], opens[1]
	assert.Equal(t, len(toks)-1, idx[outer])
	assert.Equal(t, len(toks)-2, idx[inner])
	assert.Equal(t, outer, idx[len(toks)-1])
	// non-brace tokens map to -1
	assert.Equal(t, -1, idx[0])
}

func TestBraceIndexUnbalanced(t *testing.T) {
	t.Parallel()

	toks := Tokenize("{ { }", 1)
	idx := BraceIndex(toks)
	assert.Equal(t, -1, idx[0])
	assert.Equal(t, 2, idx[1])
	assert.Equal(t, 1, idx[2])
}

func TestDocComments(t *testing.T) {
	t.Parallel()

	src := `//! Adds two numbers.
//! @param a left operand
int add(int a, int b);

int plain;

int x; //! inline note
`
	docs := DocComments(src, 1)
	assert.Equal(t, "Adds two numbers.\n@param a left operand", docs[3])
	assert.Empty(t, docs[5])
	assert.Equal(t, "inline note", docs[7])
}

func TestDocCommentsBlankLineDetaches(t *testing.T) {
	t.Parallel()

	src := "//! orphaned\n\nint x;\n"
	docs := DocComments(src, 1)
	assert.Empty(t, docs[3])
}
