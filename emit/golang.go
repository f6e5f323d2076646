package emit

import (
	"bytes"
	"fmt"
	"go/ast"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/iancoleman/strcase"

	"github.com/CognitoIQ/xsdclass/internal/gen"
	"github.com/CognitoIQ/xsdclass/model"
)

// GeneratedHeader marks Go files as generated.
const GeneratedHeader = "Code generated by xsdclass. DO NOT EDIT."

// Go emits Go types. All classes share a single package, and must
// be compiled together with the package's support file, which
// declares the helpers used by generated validation code.
type Go struct {
	Package string
}

func (Go) Language() string { return "go" }

func (Go) FileName(c *model.Class) string { return strcase.ToSnake(c.Name()) + ".go" }

// Emit writes c as a formatted Go source file.
func (g Go) Emit(w io.Writer, c *model.Class) error {
	if err := c.Validate(); err != nil {
		return err
	}
	pkg := g.Package
	if pkg == "" {
		pkg = "schema"
	}
	r := &goWriter{Go: g, class: c}
	decls := r.decls()
	if r.err != nil {
		return fmt.Errorf("emit %s: %w", c.Name(), r.err)
	}
	file := gen.PackageDoc(&ast.File{Name: ast.NewIdent(pkg), Decls: decls}, GeneratedHeader)
	src, err := gen.FormattedSource(file)
	if err != nil {
		return fmt.Errorf("emit %s: %v", c.Name(), err)
	}
	_, err = w.Write(src)
	return err
}

type goWriter struct {
	Go
	class *model.Class
	err   error
}

func (r *goWriter) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *goWriter) unsupported(node interface{}) string {
	r.fail(&UnsupportedError{Language: r.Language(), Node: node})
	return ""
}

// localName strips any namespace qualification from a type name.
func localName(name string) string {
	if i := strings.LastIndex(name, `\`); i >= 0 {
		return name[i+1:]
	}
	return name
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func exported(name string) string {
	return gen.Public(name).Name
}

// goType converts a semantic type to a Go type expression.
func goType(typ string) string {
	switch typ {
	case "":
		return "interface{}"
	case model.TypeString:
		return "string"
	case model.TypeInt:
		return "int64"
	case model.TypeFloat:
		return "float64"
	case model.TypeBool:
		return "bool"
	case model.TypeArray:
		return "[]interface{}"
	}
	if model.IsList(typ) {
		return "[]" + goType(model.ElemType(typ))
	}
	return "*" + localName(typ)
}

// pointerField reports whether p is an optional scalar. These are
// held by pointer, so that an unset value differs from a zero one.
func pointerField(p *model.Property) bool {
	if p.Required || p.HasDefault() || p.Fixed {
		return false
	}
	switch p.Type {
	case model.TypeString, model.TypeInt, model.TypeFloat, model.TypeBool:
		return true
	}
	return false
}

// fieldType returns the Go type of the struct field holding p.
func fieldType(p *model.Property) string {
	if pointerField(p) {
		return "*" + goType(p.Type)
	}
	return goType(p.Type)
}

func (r *goWriter) pointerProp(name string) bool {
	p := r.class.Property(name)
	return p != nil && pointerField(p)
}

func zeroValue(goTyp string) string {
	switch goTyp {
	case "string":
		return `""`
	case "int64", "float64":
		return "0"
	case "bool":
		return "false"
	}
	return "nil"
}

func goLiteral(v interface{}) string {
	switch v := v.(type) {
	case nil, []interface{}:
		return "nil"
	case string:
		return gen.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case *apd.Decimal:
		return v.Text('f')
	}
	return gen.Quote(fmt.Sprint(v))
}

func (r *goWriter) constName(name string) string {
	return r.class.Name() + strcase.ToCamel(strings.ToLower(name))
}

func fieldName(prop string) string { return gen.Sanitize(lowerFirst(prop)) }

func paramName(name string) string {
	name = gen.Sanitize(lowerFirst(name))
	switch name {
	case "t", "err":
		return name + "_"
	}
	return name
}

func (r *goWriter) decls() []ast.Decl {
	var (
		c   = r.class
		out []ast.Decl
	)
	if consts := c.Constants(); len(consts) > 0 {
		var buf bytes.Buffer
		buf.WriteString("const (\n")
		for _, k := range consts {
			fmt.Fprintf(&buf, "%s = %s\n", r.constName(k.Name), goLiteral(k.Value))
		}
		buf.WriteString(")")
		out = append(out, r.parse(buf.String())...)
	}
	var doc []string
	if s := strings.TrimSpace(c.Comment()); s != "" {
		doc = append(doc, s)
	}
	if c.Kind() == model.KindInterface {
		return append(out, gen.DocComment(r.interfaceDecl(), doc...))
	}
	out = append(out, gen.DocComment(r.structDecl(), doc...))
	for _, iface := range c.Implements() {
		out = append(out, r.parse(fmt.Sprintf("var _ %s = (*%s)(nil)", localName(iface), c.Name()))...)
	}
	out = append(out, r.constructor())
	out = append(out, r.accessors()...)
	for _, m := range c.Methods() {
		out = append(out, r.method(m))
	}
	return out
}

func (r *goWriter) parse(src string) []ast.Decl {
	decls, err := gen.Declarations(src)
	if err != nil {
		r.fail(err)
	}
	return decls
}

func (r *goWriter) funcDecl(fn *gen.Function) ast.Decl {
	decl, err := fn.Decl()
	if err != nil {
		r.fail(err)
		return &ast.BadDecl{}
	}
	return decl
}

func (r *goWriter) structDecl() ast.Decl {
	var fields []gen.Field
	if p := r.class.Parent(); p != "" {
		fields = append(fields, gen.Field{Type: ast.NewIdent(localName(p))})
	}
	for _, p := range r.class.Properties() {
		typ, err := gen.TypeExpr(fieldType(p))
		if err != nil {
			r.fail(err)
			continue
		}
		fields = append(fields, gen.Field{Name: fieldName(p.Name), Type: typ})
	}
	return gen.TypeDecl(ast.NewIdent(r.class.Name()), gen.Struct(fields...))
}

// hasError reports whether m returns an error as its last result.
func hasError(m *model.Method) bool {
	return len(m.Throws) > 0 || raises(m.Body)
}

func (r *goWriter) args(m *model.Method) []string {
	args := make([]string, 0, len(m.Arguments))
	for _, a := range m.Arguments {
		args = append(args, paramName(a.Name)+" "+goType(a.Type))
	}
	return args
}

func results(m *model.Method, withErr bool) []string {
	var out []string
	if m.Returns != "" {
		out = append(out, goType(m.Returns))
	}
	if withErr {
		out = append(out, "error")
	}
	return out
}

func (r *goWriter) interfaceDecl() ast.Decl {
	var methods []string
	for _, m := range r.class.Methods() {
		res := strings.Join(results(m, hasError(m)), ", ")
		if strings.Contains(res, ",") {
			res = "(" + res + ")"
		}
		methods = append(methods, fmt.Sprintf("%s(%s) %s", exported(m.Name), strings.Join(r.args(m), ", "), res))
	}
	iface, err := gen.Interface(methods...)
	if err != nil {
		r.fail(err)
		return &ast.BadDecl{}
	}
	return gen.TypeDecl(ast.NewIdent(r.class.Name()), iface)
}

func (r *goWriter) constructor() ast.Decl {
	var (
		c      = r.class
		params []string
		b      = r.body("return nil, %s", "")
	)
	b.line("t := new(%s)", c.Name())
	for _, p := range c.SortedProperties() {
		field := model.Prop{Name: p.Name}
		name := paramName(p.Name)
		switch {
		case p.Fixed:
			if p.Wrapped() {
				b.stmt(model.Assign{To: field, Value: model.NewObject{Type: p.Type, Args: []model.Expr{model.Lit{Value: p.Default}}}})
			} else {
				b.stmt(model.Assign{To: field, Value: model.Lit{Value: p.Default}})
			}
		case !p.Parameter():
		case p.HasDefault() && model.LiteralType(p.Default) != model.TypeArray:
			typ := goType(model.LiteralType(p.Default))
			params = append(params, name+" *"+typ)
			if p.Wrapped() {
				v := b.temp()
				b.line("%s := %s(%s)", v, typ, goLiteral(p.Default))
				b.line("if %s != nil {\n%s = *%s\n}", name, v, name)
				b.stmt(model.Assign{To: field, Value: model.NewObject{Type: p.Type, Args: []model.Expr{model.Var{Name: v}}}})
			} else {
				b.line("t.%s = %s", fieldName(p.Name), goLiteral(p.Default))
				b.line("if %s != nil {\nt.%s = *%s\n}", name, fieldName(p.Name), name)
			}
		case pointerField(p):
			params = append(params, name+" "+fieldType(p))
			b.line("t.%s = %s", fieldName(p.Name), name)
		default:
			params = append(params, name+" "+goType(p.ParamType()))
			b.line("t.%s = %s", fieldName(p.Name), name)
		}
	}
	for _, g := range c.ConstraintGuards() {
		b.stmt(g)
	}
	b.line("return t, nil")

	return r.funcDecl(gen.Func("New"+c.Name()).
		Args(params...).
		Returns("*"+c.Name(), "error").
		Body("%s", b.String()))
}

func (r *goWriter) accessors() []ast.Decl {
	var out []ast.Decl
	recv := "t *" + r.class.Name()
	for _, p := range r.class.SortedProperties() {
		if p.Fixed {
			continue
		}
		typ := fieldType(p)
		if p.CreateGetter {
			out = append(out, r.funcDecl(gen.Func(exported(p.Name)).
				Receiver(recv).
				Returns(typ).
				Body("return t.%s", fieldName(p.Name))))
		}
		if !p.Immutable {
			out = append(out, r.funcDecl(gen.Func("Set"+exported(p.Name)).
				Receiver(recv).
				Args("v "+typ).
				Body("t.%s = v", fieldName(p.Name))))
		}
	}
	return out
}

func (r *goWriter) method(m *model.Method) ast.Decl {
	withErr := hasError(m)
	b := r.methodBody(m, withErr)
	if b.wantErr && !withErr {
		withErr = true
		b = r.methodBody(m, withErr)
	}
	fn := gen.Func(exported(m.Name)).
		Args(r.args(m)...).
		Returns(results(m, withErr)...).
		Body("%s", b.String())
	if m.Static {
		fn = gen.Func(r.class.Name() + exported(m.Name)).
			Args(r.args(m)...).
			Returns(results(m, withErr)...).
			Body("%s", b.String())
	} else {
		fn.Receiver("t *" + r.class.Name())
	}
	if doc := strings.TrimSpace(m.Doc); doc != "" {
		fn.Comment(fn.Name() + " " + lowerFirst(doc))
	}
	return r.funcDecl(fn)
}

func (r *goWriter) methodBody(m *model.Method, withErr bool) *goBody {
	var b *goBody
	switch {
	case m.Returns != "" && withErr:
		b = r.body("return "+zeroValue(goType(m.Returns))+", %s", "%s, nil")
	case m.Returns != "":
		b = r.body("", "%s")
	case withErr:
		b = r.body("return %s", "nil")
	default:
		b = r.body("", "")
	}
	for _, a := range m.Arguments {
		b.declared[paramName(a.Name)] = true
	}
	b.stmts(m.Body)
	if withErr && m.Returns == "" && !endsWithReturn(m.Body) {
		b.line("return nil")
	}
	if len(m.Body) == 0 && m.Returns != "" {
		b.line("return "+b.valueReturn, zeroValue(goType(m.Returns)))
	}
	if b.buf.Len() == 0 {
		b.line("return")
	}
	return b
}

func endsWithReturn(stmts []model.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(model.Return)
	return ok
}

// A goBody renders the statements of a single function.
type goBody struct {
	w        *goWriter
	buf      bytes.Buffer
	pre      []string
	declared map[string]bool
	// Pointer fields known to be set, read through a dereference.
	deref map[string]bool
	tmp      int
	// Format of a statement returning an error, or "" if the
	// function has no error result.
	errReturn string
	// Format of the results of a Return statement; %s is the value.
	valueReturn string
	wantErr     bool
}

func (r *goWriter) body(errReturn, valueReturn string) *goBody {
	return &goBody{
		w:           r,
		declared:    map[string]bool{"t": true},
		deref:       make(map[string]bool),
		errReturn:   errReturn,
		valueReturn: valueReturn,
	}
}

func (b *goBody) String() string { return b.buf.String() }

func (b *goBody) line(format string, v ...interface{}) {
	fmt.Fprintf(&b.buf, format, v...)
	b.buf.WriteByte('\n')
}

func (b *goBody) temp() string {
	b.tmp++
	return "v" + strconv.Itoa(b.tmp)
}

func (b *goBody) returnErr(err string) string {
	if b.errReturn == "" {
		b.wantErr = true
		return "panic(" + err + ")"
	}
	return fmt.Sprintf(b.errReturn, err)
}

// flush writes statements hoisted out of expressions.
func (b *goBody) flush() {
	for _, s := range b.pre {
		b.line("%s", s)
	}
	b.pre = b.pre[:0]
}

func (b *goBody) stmts(stmts []model.Stmt) {
	for _, s := range stmts {
		b.stmt(s)
	}
}

func (b *goBody) stmt(s model.Stmt) {
	switch s := s.(type) {
	case model.Assign:
		val := b.expr(s.Value)
		if v, ok := s.To.(model.Var); ok && !b.declared[paramName(v.Name)] {
			b.declared[paramName(v.Name)] = true
			b.flush()
			b.line("%s := %s", paramName(v.Name), val)
			return
		}
		to := b.expr(s.To)
		b.flush()
		b.line("%s = %s", to, val)
	case model.Append:
		list, item := b.expr(s.List), b.expr(s.Item)
		b.flush()
		b.line("%s = append(%s, %s)", list, list, item)
	case model.Guard:
		cond := b.expr(s.Cond)
		b.flush()
		b.line("if %s {\n%s\n}", cond, b.returnErr("newValidationError("+gen.Quote(s.Message)+")"))
	case model.If:
		cond := b.expr(s.Cond)
		b.flush()
		b.line("if %s {", cond)
		name := b.checked(s.Cond)
		if name != "" {
			b.deref[name] = true
		}
		b.stmts(s.Then)
		delete(b.deref, name)
		b.line("}")
	case model.ForEach:
		list := b.expr(s.List)
		b.flush()
		item := paramName(s.Item)
		b.declared[item] = true
		b.line("for _, %s := range %s {", item, list)
		b.stmts(s.Body)
		b.line("}")
	case model.Return:
		if s.X == nil {
			b.flush()
			if b.valueReturn == "" {
				b.line("return")
			} else {
				b.line("return %s", b.valueReturn)
			}
			return
		}
		x := b.expr(s.X)
		b.flush()
		if !strings.Contains(b.valueReturn, "%s") {
			b.w.unsupported(s)
			return
		}
		b.line("return "+b.valueReturn, x)
	case model.Call:
		call := b.expr(s)
		b.flush()
		b.line("%s", call)
	case model.Write:
		stream := b.expr(s.Stream)
		parts := make([]string, 0, len(s.Parts))
		for _, p := range s.Parts {
			parts = append(parts, b.expr(p))
		}
		b.flush()
		b.line("%s.Write(%s)", stream, strings.Join(parts, ", "))
	case model.Block:
		b.stmts(s)
	case model.Raw:
		src, ok := s.Snippets[b.w.Language()]
		if !ok {
			b.w.unsupported(s)
			return
		}
		b.line("%s", src)
	default:
		b.w.unsupported(s)
	}
}

// checked returns the pointer field cond tests for presence, if any.
func (b *goBody) checked(cond model.Expr) string {
	if is, ok := cond.(model.IsSet); ok {
		if p, ok := is.X.(model.Prop); ok && b.w.pointerProp(p.Name) {
			return p.Name
		}
	}
	return ""
}

func (b *goBody) operand(e model.Expr) string {
	if _, ok := e.(model.Binary); ok {
		return "(" + b.expr(e) + ")"
	}
	return b.expr(e)
}

func (b *goBody) list(args []model.Expr) string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		out = append(out, b.expr(a))
	}
	return strings.Join(out, ", ")
}

func (b *goBody) expr(e model.Expr) string {
	switch e := e.(type) {
	case model.Var:
		if e == model.This {
			return "t"
		}
		return paramName(e.Name)
	case model.Prop:
		if b.deref[e.Name] {
			return "*t." + fieldName(e.Name)
		}
		return "t." + fieldName(e.Name)
	case model.Lit:
		return goLiteral(e.Value)
	case model.Const:
		return b.w.constName(e.Name)
	case model.Not:
		return "!" + b.operand(e.X)
	case model.Binary:
		return fmt.Sprintf("%s %s %s", b.operand(e.X), e.Op, b.operand(e.Y))
	case model.Count:
		return "len(" + b.expr(e.X) + ")"
	case model.Length:
		return "lengthOf(" + b.expr(e.X) + ")"
	case model.DigitCount:
		return "digitCount(" + b.expr(e.X) + ")"
	case model.FractionDigitCount:
		return "fractionDigits(" + b.expr(e.X) + ")"
	case model.Matches:
		return fmt.Sprintf("matches(%s, %s)", b.expr(e.X), gen.Quote(e.Pattern))
	case model.OneOf:
		return fmt.Sprintf("oneOf(%s, %s)", b.expr(e.X), b.list(e.Values))
	case model.IsSet:
		if p, ok := e.X.(model.Prop); ok && b.w.pointerProp(p.Name) {
			return "t." + fieldName(p.Name) + " != nil"
		}
		x := b.expr(e.X)
		switch goType(e.Type) {
		case "bool":
			return x
		case "string":
			return x + ` != ""`
		case "int64", "float64":
			return x + " != 0"
		}
		return x + " != nil"
	case model.ValueOf:
		return b.expr(e.X) + ".Value()"
	case model.BoolString:
		return "strconv.FormatBool(" + b.expr(e.X) + ")"
	case model.Escaped:
		return "xmlEscape(" + b.expr(e.X) + ")"
	case model.NewObject:
		args := b.list(e.Args)
		v := b.temp()
		b.pre = append(b.pre,
			fmt.Sprintf("%s, err := New%s(%s)", v, localName(e.Type), args),
			fmt.Sprintf("if err != nil {\n%s\n}", b.returnErr("err")))
		return v
	case model.Call:
		return fmt.Sprintf("%s.%s(%s)", b.expr(e.Recv), exported(e.Method), b.list(e.Args))
	}
	return b.w.unsupported(e)
}
