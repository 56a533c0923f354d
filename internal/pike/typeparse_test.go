package pike

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseType(t *testing.T, src string) *Type {
	t.Helper()
	return ParseTypeTokens(Tokenize(src, 1))
}

func TestParseTypeRoundTrip(t *testing.T) {
	t.Parallel()

	// String() renders the canonical surface form; parsing that form again
	// must yield the same rendering.
	tests := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"array(string)", "array(string)"},
		{"mapping(string:int)", "mapping(string:int)"},
		{"int|string", "int|string"},
		{"string & object", "string&object"},
		{"int(0..9)", "int(0..9)"},
		{"object(Stdio.File)", "object(Stdio.File)"},
		{"__deprecated__(int)", "__deprecated__(int)"},
		{"mapping(string:array(int))", "mapping(string:array(int))"},
		{"int|mapping(string:mixed)|void", "int|mapping(string:mixed)|void"},
	}
	for _, tt := range tests {
		got := parseType(t, tt.src)
		require.NotNil(t, got, tt.src)
		assert.Equal(t, tt.want, got.String(), tt.src)
		again := parseType(t, got.String())
		assert.Equal(t, tt.want, again.String(), "reparse of %s", tt.src)
	}
}

func TestParseTypeUnion(t *testing.T) {
	t.Parallel()

	typ := parseType(t, "int|string|void")
	require.Equal(t, TypeUnion, typ.Kind)
	require.Len(t, typ.Elems, 3)
	assert.Equal(t, "int", typ.Elems[0].Name)
	assert.Equal(t, "void", typ.Elems[2].Name)
}

func TestParseTypeIntersectionBindsTighter(t *testing.T) {
	t.Parallel()

	typ := parseType(t, "int|string&object")
	require.Equal(t, TypeUnion, typ.Kind)
	require.Len(t, typ.Elems, 2)
	assert.Equal(t, TypeIntersection, typ.Elems[1].Kind)
}

func TestParseTypeParenGrouping(t *testing.T) {
	t.Parallel()

	typ := parseType(t, "array((int|string))")
	require.Equal(t, TypePrimitive, typ.Kind)
	require.NotNil(t, typ.Inner)
	assert.Equal(t, TypeUnion, typ.Inner.Kind)
}

func TestParseTypeRange(t *testing.T) {
	t.Parallel()

	typ := parseType(t, "int(0..255)")
	require.Equal(t, TypeRange, typ.Kind)
	assert.Equal(t, 0, typ.Min)
	assert.Equal(t, 255, typ.Max)

	neg := parseType(t, "int(-1..1)")
	require.Equal(t, TypeRange, neg.Kind)
	assert.Equal(t, -1, neg.Min)
	assert.Equal(t, 1, neg.Max)
}

func TestParseTypeFunction(t *testing.T) {
	t.Parallel()

	typ := parseType(t, "function(int, string : mapping)")
	require.Equal(t, TypeFunction, typ.Kind)
	require.Len(t, typ.Elems, 2)
	assert.Equal(t, "int", typ.Elems[0].Name)
	assert.Equal(t, "string", typ.Elems[1].Name)
	require.NotNil(t, typ.Inner)
	assert.Equal(t, "mapping", typ.Inner.Name)
	assert.Equal(t, "function(int, string : mapping)", typ.String())
}

func TestParseTypeVarargs(t *testing.T) {
	t.Parallel()

	typ := parseType(t, "string ...")
	require.Equal(t, TypeVarargs, typ.Kind)
	require.NotNil(t, typ.Inner)
	assert.Equal(t, "string", typ.Inner.Name)
	assert.Equal(t, "string ...", typ.String())
}

func TestParseTypeAttributed(t *testing.T) {
	t.Parallel()

	typ := parseType(t, `__attribute__("sprintf_format", string)`)
	require.Equal(t, TypeAttributed, typ.Kind)
	assert.Equal(t, "__attribute__", typ.Name)
	require.NotNil(t, typ.Inner)
	assert.Equal(t, "string", typ.Inner.Name)
}

func TestParseTypeNamedDotted(t *testing.T) {
	t.Parallel()

	typ := parseType(t, "Protocols.HTTP.Query")
	require.Equal(t, TypeNamed, typ.Kind)
	assert.Equal(t, "Protocols.HTTP.Query", typ.Name)
}

func TestParseTypeNeverFails(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"|||",
		"mapping(",
		"int(0..",
		"function(:",
		")(",
	}
	for _, src := range tests {
		assert.NotPanics(t, func() {
			typ := ParseTypeTokens(Tokenize(src, 1))
			require.NotNil(t, typ)
			_ = typ.String()
		}, src)
	}
}

func TestSplitTopLevel(t *testing.T) {
	t.Parallel()

	toks := Tokenize("int a, mapping(string:int) b, array(int) c", 1)
	parts := SplitTopLevel(toks, ",")
	require.Len(t, parts, 3)
	assert.Equal(t, "a", parts[0][1].Text)
	assert.Equal(t, "b", parts[1][len(parts[1])-1].Text)
	assert.Equal(t, "c", parts[2][len(parts[2])-1].Text)
}

func TestTypeStringNil(t *testing.T) {
	t.Parallel()

	var typ *Type
	assert.Equal(t, "mixed", typ.String())
}
