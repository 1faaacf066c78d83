package derive

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

type candidate struct {
	spec    *ast.TypeSpec
	file    *ast.File
	shadow  string
	resolve bool
}

type analyzer struct {
	fset       *token.FileSet
	cfg        Config
	candidates map[string]*candidate
	declared   map[string]*ast.TypeSpec
	errs       []error
}

// Analyze builds the generation model from parsed files of one package.
// All unsupported shapes are reported together.
func Analyze(fset *token.FileSet, files []*ast.File, cfg Config) (*Package, error) {
	if len(files) == 0 {
		return nil, ErrNoGoFiles
	}

	pkg := &Package{Name: files[0].Name.Name}
	for _, f := range files[1:] {
		if f.Name.Name != pkg.Name {
			return nil, fmt.Errorf("multiple packages: %s and %s", pkg.Name, f.Name.Name)
		}
	}

	a := &analyzer{
		fset:       fset,
		cfg:        cfg,
		candidates: make(map[string]*candidate),
		declared:   make(map[string]*ast.TypeSpec),
	}

	var order []string
	for _, f := range files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, s := range gd.Specs {
				ts := s.(*ast.TypeSpec)
				a.declared[ts.Name.Name] = ts

				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				c, ok := a.directive(doc, ts.Name.Name)
				if !ok {
					continue
				}
				c.spec, c.file = ts, f
				a.candidates[ts.Name.Name] = c
				order = append(order, ts.Name.Name)
			}
		}
	}

	if len(order) == 0 && len(a.errs) == 0 {
		return nil, ErrNothingToGenerate
	}

	imports := newImportSet()
	for _, name := range order {
		c := a.candidates[name]
		comp, ok := a.composite(c)
		if !ok {
			continue
		}
		pkg.Composites = append(pkg.Composites, comp)
		if err := imports.addFrom(c.file, a.referencedPackages(comp)); err != nil {
			a.errs = append(a.errs, fmt.Errorf("%s: %w", comp.Pos, err))
		}
	}

	if len(a.errs) > 0 {
		return nil, errors.Join(a.errs...)
	}

	pkg.Imports = imports.list()
	return pkg, nil
}

// directive parses "//canon:derive [shadow=Name] [resolve=bool]".
func (a *analyzer) directive(doc *ast.CommentGroup, typeName string) (*candidate, bool) {
	if doc == nil {
		return nil, false
	}
	for _, cm := range doc.List {
		rest, ok := strings.CutPrefix(cm.Text, Directive)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}

		c := &candidate{shadow: "Interned" + typeName, resolve: true}
		for _, opt := range strings.Fields(rest) {
			key, value, _ := strings.Cut(opt, "=")
			switch key {
			case "shadow":
				if !token.IsIdentifier(value) {
					a.reject(typeName, cm.Pos(), fmt.Sprintf("invalid shadow name %q", value))
					return nil, false
				}
				c.shadow = value
			case "resolve":
				b, err := strconv.ParseBool(value)
				if err != nil {
					a.reject(typeName, cm.Pos(), fmt.Sprintf("invalid resolve value %q", value))
					return nil, false
				}
				c.resolve = b
			default:
				a.reject(typeName, cm.Pos(), fmt.Sprintf("unknown directive option %q", opt))
				return nil, false
			}
		}
		return c, true
	}
	return nil, false
}

func (a *analyzer) reject(typeName string, pos token.Pos, reason string) {
	a.errs = append(a.errs, &UnsupportedShapeError{
		Type:   typeName,
		Pos:    a.fset.Position(pos),
		Reason: reason,
	})
}

func (a *analyzer) composite(c *candidate) (*Composite, bool) {
	ts := c.spec
	name := ts.Name.Name

	if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
		a.reject(name, ts.Pos(), "generic types are not supported")
		return nil, false
	}
	if ts.Assign.IsValid() {
		a.reject(name, ts.Pos(), "type aliases are not supported")
		return nil, false
	}

	st, ok := ts.Type.(*ast.StructType)
	if !ok {
		if _, isIface := ts.Type.(*ast.InterfaceType); isIface {
			a.reject(name, ts.Pos(), "interface types are not supported, only structs can be derived")
		} else {
			a.reject(name, ts.Pos(), fmt.Sprintf("only struct types can be derived, not %s", types.ExprString(ts.Type)))
		}
		return nil, false
	}
	if st.Fields == nil || len(st.Fields.List) == 0 {
		a.reject(name, ts.Pos(), "struct has no fields")
		return nil, false
	}

	comp := &Composite{
		Name:    name,
		Shadow:  c.shadow,
		Resolve: c.resolve,
		Pos:     a.fset.Position(ts.Pos()),
	}

	shadowed := hasInternTag(ts)

	valid := true
	for _, f := range st.Fields.List {
		interned, ok := a.tag(name, f)
		if !ok {
			valid = false
			continue
		}
		if len(f.Names) == 0 {
			a.reject(name, f.Pos(), fmt.Sprintf("embedded field %s has no field name", types.ExprString(f.Type)))
			valid = false
			continue
		}
		for _, n := range f.Names {
			if n.Name == "_" {
				a.reject(name, n.Pos(), "blank fields are not supported")
				valid = false
				continue
			}
			if n.Name == "Intern" || (c.resolve && shadowed && n.Name == "Resolve") {
				a.reject(name, n.Pos(), fmt.Sprintf("field %s collides with a generated method", n.Name))
				valid = false
				continue
			}
			field, ok := a.field(name, n, f.Type, interned)
			if !ok {
				valid = false
				continue
			}
			comp.Fields = append(comp.Fields, field)
		}
	}

	if comp.HasInterned() && a.declared[comp.Shadow] != nil {
		a.reject(name, ts.Pos(), fmt.Sprintf("shadow type %s is already declared", comp.Shadow))
		valid = false
	}

	return comp, valid
}

func (a *analyzer) tag(typeName string, f *ast.Field) (interned, ok bool) {
	if f.Tag == nil {
		return false, true
	}
	raw, err := strconv.Unquote(f.Tag.Value)
	if err != nil {
		a.reject(typeName, f.Tag.Pos(), "malformed struct tag")
		return false, false
	}
	value, found := reflect.StructTag(raw).Lookup(TagKey)
	if !found {
		return false, true
	}
	if value != "intern" {
		a.reject(typeName, f.Tag.Pos(), fmt.Sprintf("unknown %s tag value %q", TagKey, value))
		return false, false
	}
	return true, true
}

func (a *analyzer) field(typeName string, name *ast.Ident, typ ast.Expr, interned bool) (Field, bool) {
	f := Field{Name: name.Name, Type: types.ExprString(typ)}

	if !interned {
		if reason := a.notComparable(typ); reason != "" {
			a.reject(typeName, name.Pos(), fmt.Sprintf("field %s: %s is not comparable; mark it %s:\"intern\" or change its type", name.Name, reason, TagKey))
			return f, false
		}
		return f, true
	}

	if canonical, ok := a.cfg.Externals[f.Type]; ok {
		f.Kind = InternMethod
		f.Canonical = canonical
		f.ResolveNested = canonical != f.Type
		return f, true
	}

	switch t := typ.(type) {
	case *ast.Ident:
		switch {
		case t.Name == "string":
			f.Kind, f.Canonical = InternString, "string"
		case a.candidates[t.Name] != nil:
			nested := a.candidates[t.Name]
			f.Kind = InternMethod
			f.Canonical = t.Name
			if hasInternTag(nested.spec) {
				f.Canonical = nested.shadow
				f.ResolveNested = true
			}
		default:
			if reason := a.notComparable(t); reason != "" {
				a.reject(typeName, name.Pos(), fmt.Sprintf("field %s: %s is not comparable and cannot be interned", name.Name, reason))
				return f, false
			}
			f.Kind, f.Canonical = InternOf, f.Type
		}
	case *ast.ArrayType:
		if t.Len != nil {
			if reason := a.notComparable(t); reason != "" {
				a.reject(typeName, name.Pos(), fmt.Sprintf("field %s: %s is not comparable and cannot be interned", name.Name, reason))
				return f, false
			}
			f.Kind, f.Canonical = InternOf, f.Type
			break
		}
		if elt, ok := t.Elt.(*ast.Ident); ok && (elt.Name == "byte" || elt.Name == "uint8") {
			f.Kind, f.Canonical = InternBytes, "[]byte"
			break
		}
		a.reject(typeName, name.Pos(), fmt.Sprintf("field %s: only []byte slices can be interned, not %s", name.Name, f.Type))
		return f, false
	case *ast.StarExpr, *ast.MapType, *ast.FuncType, *ast.ChanType, *ast.InterfaceType:
		a.reject(typeName, name.Pos(), fmt.Sprintf("field %s: %s cannot be interned", name.Name, f.Type))
		return f, false
	default:
		f.Kind, f.Canonical = InternOf, f.Type
	}

	return f, true
}

// notComparable reports why a field type is syntactically known not to be
// comparable, or "" if it may be. Named types declared in the package are
// followed to their definition; types from other packages are left to the
// compiler.
func (a *analyzer) notComparable(typ ast.Expr) string {
	return a.notComparableSeen(typ, make(map[string]bool))
}

func (a *analyzer) notComparableSeen(typ ast.Expr, seen map[string]bool) string {
	switch t := typ.(type) {
	case *ast.Ident:
		ts := a.declared[t.Name]
		if ts == nil || seen[t.Name] || ts.TypeParams != nil {
			return ""
		}
		seen[t.Name] = true
		if reason := a.notComparableSeen(ts.Type, seen); reason != "" {
			return fmt.Sprintf("type %s (%s)", t.Name, reason)
		}
	case *ast.ArrayType:
		if t.Len == nil {
			return "slice type " + types.ExprString(t)
		}
		return a.notComparableSeen(t.Elt, seen)
	case *ast.StructType:
		if t.Fields == nil {
			return ""
		}
		for _, f := range t.Fields.List {
			if reason := a.notComparableSeen(f.Type, seen); reason != "" {
				return reason
			}
		}
	case *ast.MapType:
		return "map type " + types.ExprString(t)
	case *ast.FuncType:
		return "func type " + types.ExprString(t)
	case *ast.ParenExpr:
		return a.notComparableSeen(t.X, seen)
	}
	return ""
}

func hasInternTag(ts *ast.TypeSpec) bool {
	st, ok := ts.Type.(*ast.StructType)
	if !ok || st.Fields == nil {
		return false
	}
	for _, f := range st.Fields.List {
		if f.Tag == nil {
			continue
		}
		raw, err := strconv.Unquote(f.Tag.Value)
		if err != nil {
			continue
		}
		if v, _ := reflect.StructTag(raw).Lookup(TagKey); v == "intern" {
			return true
		}
	}
	return false
}

// referencedPackages returns the package qualifiers used by the generated
// declarations of comp.
func (a *analyzer) referencedPackages(comp *Composite) []string {
	if !comp.HasInterned() {
		return nil
	}

	var names []string
	for _, f := range comp.Fields {
		t := f.Type
		if f.Interned() {
			t = f.Canonical
		}
		expr, err := parser.ParseExpr(t)
		if err != nil {
			continue
		}
		ast.Inspect(expr, func(n ast.Node) bool {
			if sel, ok := n.(*ast.SelectorExpr); ok {
				if id, ok := sel.X.(*ast.Ident); ok && !slices.Contains(names, id.Name) {
					names = append(names, id.Name)
				}
			}
			return true
		})
	}
	return names
}

type importSet struct {
	byName map[string]Import
}

func newImportSet() *importSet {
	return &importSet{byName: make(map[string]Import)}
}

func (s *importSet) addFrom(file *ast.File, names []string) error {
	for _, name := range names {
		imp, ok := lookupImport(file, name)
		if !ok {
			return fmt.Errorf("cannot resolve package qualifier %s", name)
		}
		if prev, ok := s.byName[name]; ok && prev.Path != imp.Path {
			return fmt.Errorf("package qualifier %s refers to both %s and %s", name, prev.Path, imp.Path)
		}
		s.byName[name] = imp
	}
	return nil
}

func (s *importSet) list() []Import {
	out := make([]Import, 0, len(s.byName))
	for _, imp := range s.byName {
		out = append(out, imp)
	}
	slices.SortFunc(out, func(a, b Import) int { return strings.Compare(a.Path, b.Path) })
	return out
}

func lookupImport(file *ast.File, name string) (Import, bool) {
	for _, spec := range file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		if spec.Name != nil {
			if spec.Name.Name == name {
				return Import{Name: name, Path: p}, true
			}
			continue
		}
		if defaultImportName(p) == name {
			return Import{Path: p}, true
		}
	}
	return Import{}, false
}

// defaultImportName guesses the package name of an import path the way
// most module layouts name it: the last element, skipping a major version
// suffix and a gopkg.in style ".vN".
func defaultImportName(p string) string {
	elems := strings.Split(p, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(name) {
		name = elems[len(elems)-2]
	}
	if i := strings.LastIndex(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.NewReplacer("-", "_", ".", "_").Replace(path.Base(name))
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}
