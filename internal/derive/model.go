package derive

import "go/token"

// Directive marks a struct for generation.
const Directive = "//canon:derive"

// TagKey is the struct tag key; the value "intern" marks an interned field.
const TagKey = "canon"

// DefaultCanonImport is the import path of the runtime package referenced
// by generated code.
const DefaultCanonImport = "github.com/hupe1980/canon"

// InternKind selects how an interned field is converted into a handle.
type InternKind int

const (
	// Opaque fields are stored by value in the canonical composite.
	Opaque InternKind = iota
	// InternString uses canon.String.
	InternString
	// InternBytes uses canon.Bytes.
	InternBytes
	// InternMethod calls the field's own Intern method.
	InternMethod
	// InternOf uses canon.Of.
	InternOf
)

func (k InternKind) String() string {
	switch k {
	case Opaque:
		return "opaque"
	case InternString:
		return "string"
	case InternBytes:
		return "bytes"
	case InternMethod:
		return "method"
	case InternOf:
		return "of"
	default:
		return "unknown"
	}
}

// Field is one struct field of a Composite.
type Field struct {
	Name string
	// Type is the field type as written in source.
	Type string
	Kind InternKind
	// Canonical is the handle element type for interned fields.
	Canonical string
	// ResolveNested is set when resolving the field needs a Resolve call on
	// the handle value.
	ResolveNested bool
}

// Interned reports whether the field is held as a handle.
func (f Field) Interned() bool { return f.Kind != Opaque }

// Composite is a struct type selected for generation.
type Composite struct {
	Name    string
	Shadow  string
	Resolve bool
	Fields  []Field
	Pos     token.Position
}

// HasInterned reports whether any field is interned. Composites without
// interned fields get no shadow type.
func (c *Composite) HasInterned() bool {
	for _, f := range c.Fields {
		if f.Interned() {
			return true
		}
	}
	return false
}

// Canonical returns the type held by the composite's handles.
func (c *Composite) Canonical() string {
	if c.HasInterned() {
		return c.Shadow
	}
	return c.Name
}

// Import is an import needed by generated code.
type Import struct {
	Name string // empty when the path's default name is used
	Path string
}

// Package is the analyzed input of one generation run.
type Package struct {
	Name       string
	Composites []*Composite
	Imports    []Import
}

// Config controls analysis and rendering.
type Config struct {
	// CanonImport overrides DefaultCanonImport.
	CanonImport string

	// Externals maps field type expressions from other packages to their
	// canonical type, for types that implement canon.Interner themselves.
	Externals map[string]string
}

func (c Config) canonImport() string {
	if c.CanonImport == "" {
		return DefaultCanonImport
	}
	return c.CanonImport
}
