package gen

import (
	"go/ast"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormattedSource(t *testing.T) {
	method, err := Func("Len").
		Receiver("t *Shelf").
		Returns("int").
		Comment("Len returns the number of books on the shelf.").
		Body("return len(t.books)").
		Decl()
	require.NoError(t, err)

	typ, err := TypeExpr("[]*Book")
	require.NoError(t, err)
	shelf := TypeDecl(ast.NewIdent("Shelf"), Struct(
		Field{Type: ast.NewIdent("Item")},
		Field{Name: "books", Type: typ},
	))

	DocComment(shelf, "Shelf holds books.")

	file := &ast.File{Name: ast.NewIdent("library"), Decls: []ast.Decl{shelf, method}}
	PackageDoc(file, "Package library holds books.")
	src, err := FormattedSource(file)
	require.NoError(t, err)

	out := string(src)
	require.True(t, strings.HasPrefix(out, "// Package library holds books.\n\npackage library\n"), out)
	require.Contains(t, out, "\tItem\n")
	require.Contains(t, out, "\tbooks []*Book\n")
	require.Contains(t, out, "\n\n// Shelf holds books.\ntype Shelf struct {\n")
	require.Contains(t, out, "\n\n// Len returns the number of books on the shelf.\nfunc (t *Shelf) Len() int {")
	require.Contains(t, out, "func (t *Shelf) Len() int {\n\treturn len(t.books)\n}\n")
}

func TestFuncErrors(t *testing.T) {
	_, err := Func("").Body("return").Decl()
	require.Error(t, err)
	_, err = Func("Empty").Decl()
	require.Error(t, err)
	_, err = Func("Broken").Body("return {").Decl()
	require.Error(t, err)
	_, err = Func("BadArg").Args("x map[").Body("return").Decl()
	require.Error(t, err)
}

func TestDeclarations(t *testing.T) {
	decls, err := Declarations("const ShelfSize = 3", "var _ Serializable = (*Shelf)(nil)")
	require.NoError(t, err)
	require.Len(t, decls, 2)

	_, err = Declarations("const =")
	require.Error(t, err)
}

func TestInterface(t *testing.T) {
	iface, err := Interface("WriteXML(stream *OutputStream, tagName string)", "Value() string")
	require.NoError(t, err)
	require.Len(t, iface.Methods.List, 2)

	single, err := Interface("WriteXML(stream *OutputStream)")
	require.NoError(t, err)
	file := &ast.File{Name: ast.NewIdent("stream"), Decls: []ast.Decl{
		TypeDecl(ast.NewIdent("XmlSerializable"), single),
	}}
	src, err := FormattedSource(file)
	require.NoError(t, err)
	require.Contains(t, string(src), "type XmlSerializable interface {\n\tWriteXML(stream *OutputStream)\n}")
}

func TestNames(t *testing.T) {
	require.Equal(t, "type_", Sanitize("type"))
	require.Equal(t, "grade", Sanitize("grade"))
	require.Equal(t, "WriteXML", Public("writeXML").Name)
	require.Equal(t, "`^\\d+$`", Quote(`^\d+$`))
	require.Equal(t, `"plain"`, Quote("plain"))
}
