package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shadowSrc = `int counter;

void run() {
    string counter = "outer";
    if (1) {
        float counter = 1.5;
        write(counter);
    }
    write(counter);
}

void other() {
    write(counter);
}`

func TestResolveShadowing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		line int
		typ  string
	}{
		{"innermost block", 7, "float"},
		{"function body after block", 9, "string"},
		{"other function sees global", 13, "int"},
		{"top level", 1, "int"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := ResolveVariableType(shadowSrc, "shadow.pike", tc.line, "counter")
			require.NotNil(t, e)
			assert.Equal(t, tc.typ, e.Type.String())
		})
	}
}

func TestResolveUnknownName(t *testing.T) {
	t.Parallel()
	assert.Nil(t, ResolveVariableType(shadowSrc, "shadow.pike", 7, "missing"))
	assert.Nil(t, ResolveVariableType(shadowSrc, "shadow.pike", 7, ""))
}

func TestResolveBeforeDeclaration(t *testing.T) {
	t.Parallel()
	src := "void f() {\n    write(x);\n    int x = 1;\n}\n"
	assert.Nil(t, ResolveVariableType(src, "f.pike", 2, "x"))

	e := ResolveVariableType(src, "f.pike", 3, "x")
	require.NotNil(t, e)
	assert.Equal(t, "int", e.Type.String())
}

func TestResolveParameters(t *testing.T) {
	t.Parallel()
	src := "int add(int a, float b, string ... rest) {\n    return a;\n}\n"

	a := ResolveVariableType(src, "add.pike", 2, "a")
	require.NotNil(t, a)
	assert.Equal(t, "int", a.Type.String())
	assert.Equal(t, 1, a.Depth)

	b := ResolveVariableType(src, "add.pike", 2, "b")
	require.NotNil(t, b)
	assert.Equal(t, "float", b.Type.String())

	rest := ResolveVariableType(src, "add.pike", 2, "rest")
	require.NotNil(t, rest)
	assert.Equal(t, "string ...", rest.Type.String())

	// parameters are not visible outside the body
	assert.Nil(t, ResolveVariableType(src, "add.pike", 4, "a"))
}

func TestResolveCommaList(t *testing.T) {
	t.Parallel()
	src := "int a = 1, b, c = compute(1, 2);\n"
	for _, name := range []string{"a", "b", "c"} {
		e := ResolveVariableType(src, "list.pike", 1, name)
		require.NotNil(t, e, name)
		assert.Equal(t, "int", e.Type.String(), name)
	}
}

const lambdaSrc = `void setup() {
    int total = 0;
    function f = lambda(int step) {
        total += step;
        string total = "shadow";
        return total;
    };
}`

func TestResolveLambdaCapture(t *testing.T) {
	t.Parallel()

	// before the inner shadow the outer int is captured
	e := ResolveVariableType(lambdaSrc, "lam.pike", 4, "total")
	require.NotNil(t, e)
	assert.Equal(t, "int", e.Type.String())
	assert.True(t, e.Captured)

	// the parameter resolves locally, not as a capture
	step := ResolveVariableType(lambdaSrc, "lam.pike", 4, "step")
	require.NotNil(t, step)
	assert.Equal(t, "int", step.Type.String())
	assert.False(t, step.Captured)

	// once shadowed inside the body the local wins and is not captured
	sh := ResolveVariableType(lambdaSrc, "lam.pike", 6, "total")
	require.NotNil(t, sh)
	assert.Equal(t, "string", sh.Type.String())
	assert.False(t, sh.Captured)

	// after the lambda the outer variable is plain again
	after := ResolveVariableType(lambdaSrc, "lam.pike", 8, "total")
	require.NotNil(t, after)
	assert.Equal(t, "int", after.Type.String())
	assert.False(t, after.Captured)
}

const classSrc = `class Account {
    int balance;
    string owner;

    void deposit(int amount) {
        balance += amount;
    }
}

class Ledger {
    class Entry {
        int amount;
    }

    void post() {
        write(this);
    }
}`

func TestResolveSelfKeywords(t *testing.T) {
	t.Parallel()

	this := ResolveVariableType(classSrc, "acct.pike", 6, "this")
	require.NotNil(t, this)
	assert.Equal(t, "object(Account)", this.Type.String())

	obj := ResolveVariableType(classSrc, "acct.pike", 6, "this_object")
	require.NotNil(t, obj)
	assert.Equal(t, "object(Account)", obj.Type.String())

	prog := ResolveVariableType(classSrc, "acct.pike", 6, "this_program")
	require.NotNil(t, prog)
	assert.Equal(t, "program(Account)", prog.Type.String())

	// nested class wins over its enclosing class
	nested := ResolveVariableType(classSrc, "acct.pike", 12, "this")
	require.NotNil(t, nested)
	assert.Equal(t, "object(Entry)", nested.Type.String())

	outer := ResolveVariableType(classSrc, "acct.pike", 16, "this")
	require.NotNil(t, outer)
	assert.Equal(t, "object(Ledger)", outer.Type.String())
}

func TestResolveSelfOutsideClass(t *testing.T) {
	t.Parallel()
	src := "void main() {\n    write(this);\n}\n"

	this := ResolveVariableType(src, "main.pike", 2, "this")
	require.NotNil(t, this)
	assert.Equal(t, "object", this.Type.String())

	prog := ResolveVariableType(src, "main.pike", 2, "this_program")
	require.NotNil(t, prog)
	assert.Equal(t, "program", prog.Type.String())
}

func TestResolveQualified(t *testing.T) {
	t.Parallel()

	e := ResolveVariableType(classSrc, "acct.pike", 6, "Account::balance")
	require.NotNil(t, e)
	assert.Equal(t, "int", e.Type.String())
	assert.Equal(t, "Account", e.Qualifier)

	owner := ResolveVariableType(classSrc, "acct.pike", 1, "Account::owner")
	require.NotNil(t, owner)
	assert.Equal(t, "string", owner.Type.String())

	assert.Nil(t, ResolveVariableType(classSrc, "acct.pike", 6, "Account::missing"))
	assert.Nil(t, ResolveVariableType(classSrc, "acct.pike", 6, "Nowhere::balance"))
}

func TestResolveLeadingScopeOperator(t *testing.T) {
	t.Parallel()
	// the inherited-scope form resolves like the bare name
	e := ResolveVariableType(shadowSrc, "shadow.pike", 13, "::counter")
	require.NotNil(t, e)
	assert.Equal(t, "int", e.Type.String())
}

func TestResolveMalformedInput(t *testing.T) {
	t.Parallel()
	sources := []string{
		"",
		"{{{{{",
		"}}}}",
		"int )( = ;;;",
		"class {",
		"lambda(",
	}
	for _, src := range sources {
		assert.NotPanics(t, func() {
			ResolveVariableType(src, "bad.pike", 1, "x")
		})
	}
}
