package pike

import (
	"fmt"
	"strings"
)

// TypeKind discriminates the recursive Type value.
type TypeKind string

const (
	TypePrimitive    TypeKind = "primitive"    // int, string, mixed, ...
	TypeUnion        TypeKind = "union"        // a | b
	TypeIntersection TypeKind = "intersection" // a & b
	TypeAttributed   TypeKind = "attributed"   // __deprecated__(t), __attribute__(...)
	TypeRange        TypeKind = "range"        // int(0..9)
	TypeFunction     TypeKind = "function"     // function(a, b : r)
	TypeNamed        TypeKind = "named"        // class or typedef reference
	TypeVarargs      TypeKind = "varargs"      // t ...
)

// Type is a pure value describing a Pike type expression. It carries no
// identity; two structurally equal Types are interchangeable.
//
// Field use by kind:
//
//	primitive:    Name, optional Elems (parameters, e.g. mapping(k:v)) or
//	              Inner (e.g. array(int), object(Foo))
//	union:        Elems
//	intersection: Elems
//	attributed:   Name (attribute), Inner (wrapped type)
//	range:        Min, Max
//	function:     Elems (argument types), Inner (return type)
//	named:        Name (alias), optional Inner (resolved underlying type)
//	varargs:      Inner (element type)
type Type struct {
	Kind  TypeKind
	Name  string
	Elems []*Type
	Inner *Type
	Min   int
	Max   int
}

// Primitive returns a bare builtin type.
func Primitive(name string) *Type {
	return &Type{Kind: TypePrimitive, Name: name}
}

// Named returns a reference to a class or typedef by name.
func Named(name string) *Type {
	return &Type{Kind: TypeNamed, Name: name}
}

// ObjectOf returns object(name), the type of instances of a named program.
func ObjectOf(name string) *Type {
	return &Type{Kind: TypePrimitive, Name: "object", Inner: Named(name)}
}

// String renders the type in Pike surface syntax.
func (t *Type) String() string {
	if t == nil {
		return "mixed"
	}
	switch t.Kind {
	case TypePrimitive:
		if t.Inner != nil {
			return fmt.Sprintf("%s(%s)", t.Name, t.Inner)
		}
		if len(t.Elems) > 0 {
			parts := make([]string, len(t.Elems))
			for i, e := range t.Elems {
				parts[i] = e.String()
			}
			return fmt.Sprintf("%s(%s)", t.Name, strings.Join(parts, ":"))
		}
		return t.Name
	case TypeUnion:
		return joinTypes(t.Elems, "|")
	case TypeIntersection:
		return joinTypes(t.Elems, "&")
	case TypeAttributed:
		return fmt.Sprintf("%s(%s)", t.Name, t.Inner)
	case TypeRange:
		return fmt.Sprintf("int(%d..%d)", t.Min, t.Max)
	case TypeFunction:
		args := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			args[i] = e.String()
		}
		ret := "void"
		if t.Inner != nil {
			ret = t.Inner.String()
		}
		return fmt.Sprintf("function(%s : %s)", strings.Join(args, ", "), ret)
	case TypeNamed:
		if t.Inner != nil {
			return fmt.Sprintf("%s (=%s)", t.Name, t.Inner)
		}
		return t.Name
	case TypeVarargs:
		return t.Inner.String() + " ..."
	}
	return t.Name
}

func joinTypes(elems []*Type, sep string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}
