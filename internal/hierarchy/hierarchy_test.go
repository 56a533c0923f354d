package hierarchy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/arbor/internal/parser"
	"github.com/jward/arbor/internal/pike"
)

// fakeIndex is a map-backed Index fed by the real parser.
type fakeIndex struct {
	texts   map[string]string
	symbols map[string][]*pike.Symbol
}

func newFakeIndex(t *testing.T, docs map[string]string) *fakeIndex {
	t.Helper()
	idx := &fakeIndex{
		texts:   map[string]string{},
		symbols: map[string][]*pike.Symbol{},
	}
	for uri, text := range docs {
		res := parser.Parse(text, uri, 1)
		require.NotNil(t, res)
		syms := res.Symbols
		if syms == nil {
			syms = []*pike.Symbol{}
		}
		idx.texts[uri] = text
		idx.symbols[uri] = syms
	}
	return idx
}

func (f *fakeIndex) DocumentSymbols(uri string) []*pike.Symbol { return f.symbols[uri] }

func (f *fakeIndex) DocumentText(uri string) (string, bool) {
	text, ok := f.texts[uri]
	return text, ok
}

func (f *fakeIndex) Documents() []string {
	uris := make([]string, 0, len(f.symbols))
	for uri := range f.symbols {
		uris = append(uris, uri)
	}
	return uris
}

func classNode(t *testing.T, idx *fakeIndex, uri, name string) Node {
	t.Helper()
	s := findClass(idx.symbols[uri], name)
	require.NotNil(t, s, "class %s not found in %s", name, uri)
	return nodeFor(s, uri)
}

func methodNode(t *testing.T, idx *fakeIndex, uri, name string) Node {
	t.Helper()
	s := findMethod(idx.symbols[uri], name)
	require.NotNil(t, s, "method %s not found in %s", name, uri)
	return nodeFor(s, uri)
}

func nodeNames(nodes []Node) []string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}

func callNames(calls []Call) []string {
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Node.Name
	}
	return names
}

func TestSupertypesChain(t *testing.T) {
	t.Parallel()
	idx := newFakeIndex(t, map[string]string{
		"base.pike": "class Base {\n}\n",
		"mid.pike":  "class Mid {\n    inherit Base;\n}\n",
		"leaf.pike": "class Leaf {\n    inherit Mid;\n}\n",
	})
	b := NewBuilder(idx)

	nodes, diags := b.Supertypes(classNode(t, idx, "leaf.pike", "Leaf"))
	require.NotNil(t, nodes)
	assert.Empty(t, diags)
	assert.Equal(t, []string{"Mid", "Base"}, nodeNames(nodes))

	// a root class has no parents and no diagnostic
	nodes, diags = b.Supertypes(classNode(t, idx, "base.pike", "Base"))
	require.NotNil(t, nodes)
	assert.Empty(t, nodes)
	assert.Empty(t, diags)
}

func TestSubtypesFanOut(t *testing.T) {
	t.Parallel()
	idx := newFakeIndex(t, map[string]string{
		"base.pike": "class Base {\n}\n",
		"a.pike":    "class A {\n    inherit Base;\n}\n",
		"b.pike":    "class B {\n    inherit Base;\n}\n",
		"c.pike":    "class C {\n    inherit A;\n}\n",
	})
	b := NewBuilder(idx)

	nodes, diags := b.Subtypes(classNode(t, idx, "base.pike", "Base"))
	require.NotNil(t, nodes)
	assert.Empty(t, diags)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, nodeNames(nodes))
}

func TestSupertypesUnresolvedInheritDropped(t *testing.T) {
	t.Parallel()
	idx := newFakeIndex(t, map[string]string{
		"leaf.pike": "class Leaf {\n    inherit Stdio.File;\n}\n",
	})
	b := NewBuilder(idx)

	nodes, diags := b.Supertypes(classNode(t, idx, "leaf.pike", "Leaf"))
	require.NotNil(t, nodes)
	assert.Empty(t, nodes)
	assert.Empty(t, diags)
}

func TestHierarchyCycles(t *testing.T) {
	t.Parallel()

	t.Run("self loop", func(t *testing.T) {
		t.Parallel()
		idx := newFakeIndex(t, map[string]string{
			"a.pike": "class A {\n    inherit A;\n}\n",
		})
		b := NewBuilder(idx)
		nodes, diags := b.Supertypes(classNode(t, idx, "a.pike", "A"))
		require.NotNil(t, nodes)
		assert.Empty(t, nodes)
		assert.Empty(t, diags)
	})

	for _, n := range []int{2, 3, 5} {
		n := n
		t.Run(fmt.Sprintf("%d-cycle", n), func(t *testing.T) {
			t.Parallel()
			docs := map[string]string{}
			for i := 0; i < n; i++ {
				docs[fmt.Sprintf("c%d.pike", i)] = fmt.Sprintf(
					"class C%d {\n    inherit C%d;\n}\n", i, (i+1)%n)
			}
			idx := newFakeIndex(t, docs)
			b := NewBuilder(idx)

			nodes, _ := b.Supertypes(classNode(t, idx, "c0.pike", "C0"))
			require.NotNil(t, nodes)
			assert.Len(t, nodes, n-1, "cycle traversal excludes the query node")
			assert.NotContains(t, nodeNames(nodes), "C0")
		})
	}
}

func TestSupertypesDepthCap(t *testing.T) {
	t.Parallel()
	docs := map[string]string{"c0.pike": "class C0 {\n    inherit C1;\n}\n"}
	for i := 1; i < 10; i++ {
		docs[fmt.Sprintf("c%d.pike", i)] = fmt.Sprintf(
			"class C%d {\n    inherit C%d;\n}\n", i, i+1)
	}
	docs["c10.pike"] = "class C10 {\n}\n"
	idx := newFakeIndex(t, docs)

	b := NewBuilder(idx, WithMaxDepth(3))
	nodes, _ := b.Supertypes(classNode(t, idx, "c0.pike", "C0"))
	assert.Len(t, nodes, 3)
}

func TestHierarchyNotAnalyzed(t *testing.T) {
	t.Parallel()
	idx := newFakeIndex(t, nil)
	b := NewBuilder(idx)

	item := Node{Name: "Ghost", File: "ghost.pike", Kind: pike.KindClass}
	nodes, diags := b.Supertypes(item)
	require.NotNil(t, nodes, "not-analyzed is empty, not no-item")
	assert.Empty(t, nodes)
	require.Len(t, diags, 1)
	assert.Equal(t, pike.SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "not analyzed")
}

func TestHierarchyNonHierarchicalItem(t *testing.T) {
	t.Parallel()
	idx := newFakeIndex(t, map[string]string{"a.pike": "int x;\n"})
	b := NewBuilder(idx)

	item := Node{Name: "x", File: "a.pike", Kind: pike.KindVariable}
	nodes, diags := b.Supertypes(item)
	assert.Nil(t, nodes, "a plain variable yields no item, not empty relations")
	assert.Empty(t, diags)

	calls, diags := b.OutgoingCalls(item)
	assert.Nil(t, calls)
	assert.Empty(t, diags)
}

const callerSrc = `void alpha() {
    beta();
    beta();
    gamma();
}

void beta() {
    gamma();
}

void gamma() {
    write("leaf");
}`

func TestOutgoingCalls(t *testing.T) {
	t.Parallel()
	idx := newFakeIndex(t, map[string]string{"calls.pike": callerSrc})
	b := NewBuilder(idx)

	calls, diags := b.OutgoingCalls(methodNode(t, idx, "calls.pike", "alpha"))
	require.NotNil(t, calls)
	assert.Empty(t, diags)
	assert.ElementsMatch(t, []string{"beta", "gamma"}, callNames(calls))

	for _, c := range calls {
		if c.Node.Name == "beta" {
			assert.Len(t, c.Sites, 2, "both beta call sites reported")
		}
	}

	// write is not defined anywhere in the index; the edge drops silently
	calls, diags = b.OutgoingCalls(methodNode(t, idx, "calls.pike", "gamma"))
	require.NotNil(t, calls)
	assert.Empty(t, calls)
	assert.Empty(t, diags)
}

func TestIncomingCalls(t *testing.T) {
	t.Parallel()
	idx := newFakeIndex(t, map[string]string{"calls.pike": callerSrc})
	b := NewBuilder(idx)

	calls, diags := b.IncomingCalls(methodNode(t, idx, "calls.pike", "gamma"))
	require.NotNil(t, calls)
	assert.Empty(t, diags)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, callNames(calls))
}

func TestCallCycleTermination(t *testing.T) {
	t.Parallel()
	idx := newFakeIndex(t, map[string]string{
		"loop.pike": "void ping() {\n    pong();\n}\n\nvoid pong() {\n    ping();\n}\n",
		"self.pike": "void rec() {\n    rec();\n}\n",
	})
	b := NewBuilder(idx)

	calls, _ := b.OutgoingCalls(methodNode(t, idx, "loop.pike", "ping"))
	require.NotNil(t, calls)
	assert.Equal(t, []string{"pong"}, callNames(calls), "cycle excludes the query node")

	calls, _ = b.OutgoingCalls(methodNode(t, idx, "self.pike", "rec"))
	require.NotNil(t, calls)
	assert.Empty(t, calls, "direct recursion excludes the query node")
}

func TestCrossFileCalls(t *testing.T) {
	t.Parallel()
	idx := newFakeIndex(t, map[string]string{
		"util.pike": "void helper() {\n    write(1);\n}\n",
		"main.pike": "void run() {\n    helper();\n}\n",
	})
	b := NewBuilder(idx)

	calls, _ := b.OutgoingCalls(methodNode(t, idx, "main.pike", "run"))
	require.Len(t, calls, 1)
	assert.Equal(t, "helper", calls[0].Node.Name)
	assert.Equal(t, "util.pike", calls[0].Node.File)

	incoming, _ := b.IncomingCalls(methodNode(t, idx, "util.pike", "helper"))
	require.Len(t, incoming, 1)
	assert.Equal(t, "run", incoming[0].Node.Name)
	assert.Equal(t, "main.pike", incoming[0].Node.File)
}

func TestBaseName(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"Base":          "Base",
		"Tools.Parser":  "Parser",
		"lib/base.pike": "base",
		"base.pike":     "base",
	}
	for in, want := range cases {
		assert.Equal(t, want, baseName(in), in)
	}
}
