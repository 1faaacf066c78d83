package derive

import (
	"bytes"
	"fmt"
	"go/format"
	"slices"
	"strings"
)

// Header starts every generated file.
const Header = "// Code generated by canongen. DO NOT EDIT."

// DefaultOutput is the default generated file name.
const DefaultOutput = "canon_gen.go"

// Generate loads dir and renders its generated file.
func Generate(dir string, cfg Config) ([]byte, error) {
	pkg, err := Load(dir, cfg)
	if err != nil {
		return nil, err
	}
	return Render(pkg, cfg)
}

// Render produces the gofmt-formatted generated file for pkg.
func Render(pkg *Package, cfg Config) ([]byte, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "%s\n\npackage %s\n\n", Header, pkg.Name)
	writeImports(&b, pkg.Imports, cfg.canonImport())

	for _, c := range pkg.Composites {
		writeComposite(&b, c)
	}

	out, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return out, nil
}

func writeImports(b *bytes.Buffer, imports []Import, canonPath string) {
	canon := Import{Path: canonPath}
	if defaultImportName(canonPath) != "canon" {
		canon.Name = "canon"
	}

	all := append([]Import{canon}, imports...)
	slices.SortFunc(all, func(x, y Import) int { return strings.Compare(x.Path, y.Path) })

	if len(all) == 1 {
		fmt.Fprintf(b, "import %s\n\n", importSpec(all[0]))
		return
	}
	b.WriteString("import (\n")
	for _, imp := range all {
		fmt.Fprintf(b, "\t%s\n", importSpec(imp))
	}
	b.WriteString(")\n\n")
}

func importSpec(imp Import) string {
	if imp.Name == "" {
		return fmt.Sprintf("%q", imp.Path)
	}
	return fmt.Sprintf("%s %q", imp.Name, imp.Path)
}

func writeComposite(b *bytes.Buffer, c *Composite) {
	canonical := c.Canonical()
	store := "_canon" + c.Name + "Store"

	if c.HasInterned() {
		fmt.Fprintf(b, "// %s is the canonical form of %s.\n", c.Shadow, c.Name)
		fmt.Fprintf(b, "type %s struct {\n", c.Shadow)
		for _, f := range c.Fields {
			if f.Interned() {
				fmt.Fprintf(b, "\t%s canon.Handle[%s]\n", f.Name, f.Canonical)
			} else {
				fmt.Fprintf(b, "\t%s %s\n", f.Name, f.Type)
			}
		}
		b.WriteString("}\n\n")
	}

	fmt.Fprintf(b, "var %s = canon.StoreFor[%s]()\n\n", store, canonical)
	fmt.Fprintf(b, "var _ canon.Interner[%s] = %s{}\n\n", canonical, c.Name)

	if !c.HasInterned() {
		fmt.Fprintf(b, "// Intern returns the canonical %s equal to v.\n", c.Name)
		fmt.Fprintf(b, "func (v %s) Intern() canon.Handle[%s] {\n", c.Name, canonical)
		fmt.Fprintf(b, "\treturn %s.Intern(v)\n}\n\n", store)
		return
	}

	fmt.Fprintf(b, "// Intern returns the canonical form of v.\n")
	fmt.Fprintf(b, "func (v %s) Intern() canon.Handle[%s] {\n", c.Name, canonical)
	fmt.Fprintf(b, "\treturn %s.Intern(%s{\n", store, canonical)
	for _, f := range c.Fields {
		fmt.Fprintf(b, "\t\t%s: %s,\n", f.Name, internExpr(f))
	}
	b.WriteString("\t})\n}\n\n")

	if !c.Resolve {
		return
	}

	fmt.Fprintf(b, "// Resolve returns the plain %s represented by c.\n", c.Name)
	fmt.Fprintf(b, "func (c %s) Resolve() %s {\n", c.Shadow, c.Name)
	fmt.Fprintf(b, "\treturn %s{\n", c.Name)
	for _, f := range c.Fields {
		fmt.Fprintf(b, "\t\t%s: %s,\n", f.Name, resolveExpr(f))
	}
	b.WriteString("\t}\n}\n\n")
}

func internExpr(f Field) string {
	switch f.Kind {
	case InternString:
		return "canon.String(v." + f.Name + ")"
	case InternBytes:
		return "canon.Bytes(v." + f.Name + ")"
	case InternMethod:
		return "v." + f.Name + ".Intern()"
	case InternOf:
		return "canon.Of(v." + f.Name + ")"
	default:
		return "v." + f.Name
	}
}

func resolveExpr(f Field) string {
	switch {
	case !f.Interned():
		return "c." + f.Name
	case f.ResolveNested:
		return "c." + f.Name + ".Value().Resolve()"
	default:
		return "c." + f.Name + ".Value()"
	}
}
