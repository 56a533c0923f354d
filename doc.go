// Package arbor provides error-tolerant source analysis for Pike code:
// symbol extraction, scope-aware type resolution, and inheritance/call
// hierarchy queries over a persistent multi-document index.
//
// # Pipeline
//
// Arbor operates on plain source text and never executes analyzed code:
//
//  1. Parse: a staged, recovering parser extracts a symbol table and
//     diagnostics from possibly-broken source (the common case while a
//     user is typing). See internal/parser.
//
//  2. Resolve: point-in-time scope queries answer "what type does name N
//     have at line L", honoring shadowing, closures, and qualified or
//     self access. See internal/resolver.
//
//  3. Relate: per-query hierarchy traversal answers supertype/subtype and
//     incoming/outgoing-call questions across every document the engine
//     can see. See internal/hierarchy.
//
// # Usage
//
// Create an Engine, index a tree, and query:
//
//	e, err := arbor.New("arbor.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	err = e.IndexDirectory(ctx, "path/to/project")
//
//	syms := e.DocumentSymbols("path/to/project/ledger.pike")
//	entry, err := e.Resolve("path/to/project/ledger.pike", 42, "balance")
//
// Editor sessions layer live buffers over the index with
// [Engine.OpenDocument], [Engine.UpdateDocument], and
// [Engine.CloseDocument]; open buffers win over persisted state for every
// query.
//
// # Caching
//
// Parse results are cached by content hash and module symbol tables by
// path, both in a bounded LRU ordered by a monotonic operation counter.
// The cache is the engine's only shared mutable state.
package arbor
