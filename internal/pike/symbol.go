package pike

// Kind classifies a declared entity.
type Kind string

const (
	KindClass        Kind = "class"
	KindMethod       Kind = "method"
	KindVariable     Kind = "variable"
	KindConstant     Kind = "constant"
	KindTypedef      Kind = "typedef"
	KindEnum         Kind = "enum"
	KindEnumConstant Kind = "enum_constant"
	KindInherit      Kind = "inherit"
	KindImport       Kind = "import"
	KindInclude      Kind = "include"
	KindModule       Kind = "module"
	KindNamespace    Kind = "namespace"
	KindRequire      Kind = "require"
	KindLoad         Kind = "load"
)

// Hierarchical reports whether symbols of this kind can anchor a hierarchy
// query (type hierarchy for classes, call hierarchy for methods).
func (k Kind) Hierarchical() bool {
	return k == KindClass || k == KindMethod
}

// Symbol is one declared entity extracted from source. Symbols are produced
// fresh on every parse; callers needing stability must key by
// (File, Name, Line).
type Symbol struct {
	Name          string
	Kind          Kind
	Modifiers     []string
	Type          *Type
	File          string
	Line          int // 1-based declaration line
	Col           int // 0-based column, 0 when unknown
	EndLine       int // closing line of the body for classes/methods, else Line
	Documentation string
	Children      []*Symbol

	// Set only for symbols extracted from a conditional-compilation branch.
	Conditional bool
	Condition   string
	Branch      int
}

// Range is a line/column span, lines 1-based, columns 0-based.
type Range struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col,omitempty"`
}

// Span returns the symbol's declaration range.
func (s *Symbol) Span() Range {
	end := s.EndLine
	if end < s.Line {
		end = s.Line
	}
	return Range{StartLine: s.Line, StartCol: s.Col, EndLine: end}
}

// Severity grades a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a recoverable problem reported during analysis. Diagnostics
// never abort a parse; they are collected side effects of recovery.
type Diagnostic struct {
	Message  string
	Severity Severity
	File     string
	Line     int
}
