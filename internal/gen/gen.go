// Package gen builds Go declarations from source snippets and
// go/ast nodes, and prints them as formatted files.
package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"
)

var title = cases.Title(language.Und, cases.NoLower)

// keywords cannot be used as identifiers.
var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
}

// Sanitize appends an underscore to Go keywords.
func Sanitize(name string) string {
	if keywords[name] {
		return name + "_"
	}
	return name
}

// Public returns name as an exported identifier.
func Public(name string) *ast.Ident {
	return ast.NewIdent(title.String(name))
}

// Quote returns s as a Go string literal. Raw strings are preferred
// for text with quotes or backslashes, such as regular expressions.
func Quote(s string) string {
	if strings.ContainsAny(s, "\"\\") && !strings.ContainsAny(s, "`\n\r") {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}

// TypeDecl declares the named type typ.
func TypeDecl(name *ast.Ident, typ ast.Expr) *ast.GenDecl {
	return &ast.GenDecl{
		Tok:   token.TYPE,
		Specs: []ast.Spec{&ast.TypeSpec{Name: name, Type: typ}},
	}
}

// TypeExpr parses a type expression such as "[]*Book".
func TypeExpr(s string) (ast.Expr, error) {
	return parser.ParseExpr(s)
}

// A Field is a single struct field. Fields without a name are
// embedded.
type Field struct {
	Name string
	Type ast.Expr
}

// Struct returns a struct type with the given fields.
func Struct(fields ...Field) *ast.StructType {
	list := &ast.FieldList{List: make([]*ast.Field, 0, len(fields))}
	for _, f := range fields {
		field := &ast.Field{Type: f.Type}
		if f.Name != "" {
			field.Names = []*ast.Ident{ast.NewIdent(f.Name)}
		}
		list.List = append(list.List, field)
	}
	return &ast.StructType{Fields: list}
}

// parseFile parses src as the body of a throwaway file.
func parseFile(src string, mode parser.Mode) (*ast.File, error) {
	return parser.ParseFile(token.NewFileSet(), "", "package tmp\n"+src, mode)
}

// Interface returns an interface type with the given method
// signatures, such as "Len() int".
func Interface(methods ...string) (*ast.InterfaceType, error) {
	file, err := parseFile("type _ interface {\n"+strings.Join(methods, "\n")+"\n}", 0)
	if err != nil {
		return nil, err
	}
	spec := file.Decls[0].(*ast.GenDecl).Specs[0].(*ast.TypeSpec)
	iface := spec.Type.(*ast.InterfaceType)
	// Without brace positions the printer puts one method per line.
	iface.Methods.Opening, iface.Methods.Closing = token.NoPos, token.NoPos
	return iface, nil
}

// Declarations parses each block as top-level Go declarations.
// Parsing stops at the first error.
func Declarations(blocks ...string) ([]ast.Decl, error) {
	var decls []ast.Decl
	for _, block := range blocks {
		file, err := parseFile(block, parser.ParseComments)
		if err != nil {
			return decls, err
		}
		decls = append(decls, file.Decls...)
	}
	return decls, nil
}

// fieldList parses fields of the form "[name] type".
func fieldList(fields ...string) (*ast.FieldList, error) {
	list := &ast.FieldList{}
	for _, s := range fields {
		var (
			names []*ast.Ident
			typ   = s
		)
		if i := strings.IndexByte(s, ' '); i > 0 {
			names = []*ast.Ident{ast.NewIdent(s[:i])}
			typ = s[i+1:]
		}
		expr, err := parser.ParseExpr(typ)
		if err != nil {
			return nil, fmt.Errorf("could not parse type in %q: %v", s, err)
		}
		list.List = append(list.List, &ast.Field{Names: names, Type: expr})
	}
	return list, nil
}

func commentGroup(comments ...string) *ast.CommentGroup {
	var group ast.CommentGroup
	for _, c := range comments {
		for _, line := range strings.Split(strings.TrimSpace(c), "\n") {
			group.List = append(group.List, &ast.Comment{
				Text: strings.TrimRight("// "+strings.TrimSpace(line), " "),
			})
		}
	}
	return &group
}

// DocComment sets the doc comment of a type or function
// declaration.
func DocComment(decl ast.Decl, comments ...string) ast.Decl {
	if len(comments) == 0 {
		return decl
	}
	switch d := decl.(type) {
	case *ast.GenDecl:
		d.Doc = commentGroup(comments...)
	case *ast.FuncDecl:
		d.Doc = commentGroup(comments...)
	}
	return decl
}

// PackageDoc sets the comment printed above the package clause.
func PackageDoc(file *ast.File, comments ...string) *ast.File {
	if len(comments) > 0 {
		file.Doc = commentGroup(comments...)
	}
	return file
}

// A Function builds a function declaration from snippets of Go
// source.
type Function struct {
	name, receiver, doc string
	args, returns       []string
	body                string
}

// Func starts a function declaration.
func Func(name string) *Function {
	return &Function{name: name}
}

func (fn *Function) Name() string { return fn.name }

// Receiver makes the function a method of recv, such as "t *Book".
func (fn *Function) Receiver(recv string) *Function {
	fn.receiver = recv
	return fn
}

// Args sets the parameters, each of the form "name type".
func (fn *Function) Args(args ...string) *Function {
	fn.args = args
	return fn
}

// Returns sets the result types.
func (fn *Function) Returns(results ...string) *Function {
	fn.returns = results
	return fn
}

// Comment sets the doc comment of the function.
func (fn *Function) Comment(doc string) *Function {
	fn.doc = doc
	return fn
}

// Body sets the statements of the function, without braces.
func (fn *Function) Body(format string, v ...interface{}) *Function {
	fn.body = fmt.Sprintf(format, v...)
	return fn
}

// Decl parses the function. Parameters, results and body must be
// valid Go.
func (fn *Function) Decl() (*ast.FuncDecl, error) {
	if fn.name == "" {
		return nil, errors.New("function name unset")
	}
	if fn.body == "" {
		return nil, fmt.Errorf("function body for %s unset", fn.name)
	}
	params, err := fieldList(fn.args...)
	if err != nil {
		return nil, err
	}
	decl := &ast.FuncDecl{
		Name: ast.NewIdent(fn.name),
		Type: &ast.FuncType{Params: params},
	}
	if len(fn.returns) > 0 {
		if decl.Type.Results, err = fieldList(fn.returns...); err != nil {
			return nil, err
		}
	}
	if fn.receiver != "" {
		if decl.Recv, err = fieldList(fn.receiver); err != nil {
			return nil, err
		}
	}
	if fn.doc != "" {
		decl.Doc = commentGroup(fn.doc)
	}
	file, err := parseFile("func _() {\n"+fn.body+"\n}", 0)
	if err != nil {
		return nil, fmt.Errorf("could not parse function body of %s: %v in\n%s", fn.name, err, fn.body)
	}
	decl.Body = file.Decls[0].(*ast.FuncDecl).Body
	return decl, nil
}

func writeComments(buf *bytes.Buffer, doc *ast.CommentGroup) {
	if doc == nil {
		return
	}
	for _, c := range doc.List {
		buf.WriteString(c.Text + "\n")
	}
}

// docField returns the doc comment field of decl.
func docField(decl ast.Decl) **ast.CommentGroup {
	switch d := decl.(type) {
	case *ast.GenDecl:
		return &d.Doc
	case *ast.FuncDecl:
		return &d.Doc
	}
	return nil
}

// FormattedSource prints file as gofmt'ed source with its imports
// resolved. Doc comments are written out ahead of each declaration
// rather than placed by position.
func FormattedSource(file *ast.File) ([]byte, error) {
	var buf bytes.Buffer
	if file.Doc != nil {
		writeComments(&buf, file.Doc)
		buf.WriteString("\n")
	}
	fmt.Fprintf(&buf, "package %s\n", file.Name.Name)

	fset := token.NewFileSet()
	for _, decl := range file.Decls {
		buf.WriteString("\n")
		var doc *ast.CommentGroup
		if field := docField(decl); field != nil {
			doc, *field = *field, nil
			writeComments(&buf, doc)
		}
		err := format.Node(&buf, fset, decl)
		if field := docField(decl); field != nil {
			*field = doc
		}
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n")
	}
	out, err := imports.Process("", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("%v in %s", err, buf.String())
	}
	return out, nil
}
