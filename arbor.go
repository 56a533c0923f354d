package arbor

import (
	"github.com/jward/arbor/internal/cache"
	"github.com/jward/arbor/internal/hierarchy"
	"github.com/jward/arbor/internal/pike"
	"github.com/jward/arbor/internal/resolver"
	"github.com/jward/arbor/internal/store"
)

// Public type aliases for the internal types used in the Engine API. These
// are Go type aliases (=), identical to the internal types at compile time;
// external consumers use these names with no conversion.

type Symbol = pike.Symbol
type Type = pike.Type
type Kind = pike.Kind
type Range = pike.Range
type Diagnostic = pike.Diagnostic
type Severity = pike.Severity
type ScopeEntry = resolver.ScopeEntry
type Node = hierarchy.Node
type Call = hierarchy.Call
type Store = store.Store
type IndexStats = store.IndexStats
type CacheStats = cache.Stats
type CacheNamespace = cache.Namespace

// Re-exported symbol kind and severity constants.
const (
	KindClass        = pike.KindClass
	KindMethod       = pike.KindMethod
	KindVariable     = pike.KindVariable
	KindConstant     = pike.KindConstant
	KindTypedef      = pike.KindTypedef
	KindEnum         = pike.KindEnum
	KindEnumConstant = pike.KindEnumConstant
	KindInherit      = pike.KindInherit
	KindImport       = pike.KindImport
	KindInclude      = pike.KindInclude
	KindModule       = pike.KindModule
	KindNamespace    = pike.KindNamespace
	KindRequire      = pike.KindRequire
	KindLoad         = pike.KindLoad

	SeverityError   = pike.SeverityError
	SeverityWarning = pike.SeverityWarning

	CacheArtifacts = cache.Artifacts
	CacheModules   = cache.Modules
	CacheAll       = cache.All
)
