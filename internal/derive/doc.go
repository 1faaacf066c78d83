// Package derive generates canonical forms for composite types.
//
// A struct opts in with a directive comment and marks the fields whose
// values are interned individually:
//
//	//canon:derive
//	type User struct {
//	    First string `canon:"intern"`
//	    Last  string `canon:"intern"`
//	    Age   int
//	}
//
// For each such type the generator emits:
//
//   - a shadow type InternedUser whose interned fields are canon.Handle
//     values and whose other fields keep their type,
//   - a store for the shadow type,
//   - func (v User) Intern() canon.Handle[InternedUser],
//   - func (c InternedUser) Resolve() User.
//
// A struct without interned fields gets no shadow type; its Intern
// interns the value itself.
//
// Directive options are space separated: shadow=Name renames the shadow
// type and resolve=false suppresses Resolve.
//
// Shapes that cannot be derived (interfaces and other non-struct types,
// generic types, embedded or blank fields, empty structs, interned fields
// of reference type, opaque fields that are not comparable) are reported as
// *UnsupportedShapeError with their source position.
package derive
