package emit

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/mitchellh/go-wordwrap"

	"github.com/CognitoIQ/xsdclass/model"
)

// Candidate lists of enumeration guards longer than this are wrapped.
const wrapWidth = 90

const indentUnit = "    "

// PHP emits PHP 7 classes. Version selects the syntax for nullable
// types and constant declarations; it is "7.0" or "7.1".
type PHP struct {
	Version string
}

func (PHP) Language() string { return "php" }

func (PHP) FileName(c *model.Class) string { return c.Name() + ".php" }

func (p PHP) nullableTypes() bool { return p.Version != "7.0" }

// Emit writes c as a PHP source file.
func (p PHP) Emit(w io.Writer, c *model.Class) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r := &phpWriter{PHP: p, class: c}
	r.file()
	if r.err != nil {
		return fmt.Errorf("emit %s: %w", c.Name(), r.err)
	}
	_, err := w.Write(r.buf.Bytes())
	return err
}

type phpWriter struct {
	PHP
	class *model.Class
	buf   bytes.Buffer
	err   error
}

func (r *phpWriter) line(format string, v ...interface{}) {
	fmt.Fprintf(&r.buf, format, v...)
	r.buf.WriteByte('\n')
}

func (r *phpWriter) blank() { r.buf.WriteByte('\n') }

func (r *phpWriter) fail(node interface{}) string {
	if r.err == nil {
		r.err = &UnsupportedError{Language: r.Language(), Node: node}
	}
	return ""
}

func (r *phpWriter) docBlock(indent string, lines ...string) {
	r.line("%s/**", indent)
	for _, l := range lines {
		if l == "" {
			r.line("%s *", indent)
		} else {
			r.line("%s * %s", indent, l)
		}
	}
	r.line("%s */", indent)
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return lines
}

func (r *phpWriter) file() {
	c := r.class
	r.line("<?php")
	if decls := c.Declarations(); len(decls) > 0 {
		for _, d := range decls {
			r.line("declare(%s);", d)
		}
		r.blank()
	}
	if doc := splitLines(c.DocBlock()); len(doc) > 0 {
		r.docBlock("", doc...)
		r.blank()
	}
	if ns := c.Namespace(); ns != "" {
		r.line("namespace %s;", ns)
		r.blank()
	}
	if uses := c.Uses(); len(uses) > 0 {
		for _, u := range uses {
			r.line("use %s;", u)
		}
		r.blank()
	}
	if doc := splitLines(c.Comment()); len(doc) > 0 {
		r.docBlock("", doc...)
	}
	r.header()
	r.line("{")
	r.constants()
	if c.Kind() == model.KindInterface {
		r.signatures()
	} else {
		r.properties()
		r.constructor()
		r.accessors()
		r.methods()
	}
	r.line("}")
}

func (r *phpWriter) header() {
	var b strings.Builder
	c := r.class
	for _, m := range c.Modifiers() {
		b.WriteString(string(m) + " ")
	}
	fmt.Fprintf(&b, "%s %s", c.Kind(), c.Name())
	if c.Parent() != "" {
		fmt.Fprintf(&b, " extends %s", c.Parent())
	}
	if impl := c.Implements(); len(impl) > 0 {
		if c.Kind() == model.KindInterface {
			fmt.Fprintf(&b, " extends %s", strings.Join(impl, ", "))
		} else {
			fmt.Fprintf(&b, " implements %s", strings.Join(impl, ", "))
		}
	}
	r.line("%s", b.String())
}

func (r *phpWriter) constants() {
	consts := r.class.Constants()
	if len(consts) == 0 {
		return
	}
	decl := "public const"
	if r.Version == "7.0" {
		decl = "const"
	}
	for _, k := range consts {
		r.line("%s%s %s = %s;", indentUnit, decl, k.Name, phpLiteral(k.Value))
	}
	r.blank()
}

// phpType converts a semantic type to a PHP type declaration.
func phpType(typ string) string {
	if model.IsList(typ) {
		return model.TypeArray
	}
	return typ
}

// phpDocType converts a semantic type for use in doc comments.
func phpDocType(typ string) string {
	if typ == "" {
		return "mixed"
	}
	return typ
}

func (r *phpWriter) properties() {
	for _, p := range r.class.SortedProperties() {
		lines := splitLines(p.Doc)
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		r.docBlock(indentUnit, append(lines, "@var "+phpDocType(p.Type))...)
		r.line("%s%s $%s;", indentUnit, p.Visibility, p.Name)
		r.blank()
	}
}

// param renders a constructor or setter parameter.
func (r *phpWriter) param(name, typ string, def interface{}, optional bool) string {
	typ = phpType(typ)
	switch {
	case typ == "":
		s := "$" + name
		if def != nil {
			s += " = " + phpLiteral(def)
		}
		return s
	case def != nil:
		return fmt.Sprintf("%s $%s = %s", typ, name, phpLiteral(def))
	case optional && r.nullableTypes():
		return fmt.Sprintf("?%s $%s", typ, name)
	case optional:
		return fmt.Sprintf("%s $%s = null", typ, name)
	}
	return fmt.Sprintf("%s $%s", typ, name)
}

func (r *phpWriter) constructor() {
	c := r.class
	props := c.SortedProperties()
	if len(props) == 0 {
		return
	}
	var (
		params []string
		doc    = []string{c.Name() + " constructor"}
	)
	for _, p := range props {
		if !p.Parameter() {
			continue
		}
		typ := p.ParamType()
		params = append(params, r.param(p.Name, typ, p.Default, !p.Required))
		doc = append(doc, fmt.Sprintf("@param %s $%s", phpDocType(typ), p.Name))
	}
	if c.HasConstraints() {
		doc = append(doc, "@throws "+model.ValidationFailure)
	}
	r.docBlock(indentUnit, doc...)
	r.line("%spublic function __construct(%s)", indentUnit, strings.Join(params, ", "))
	r.line("%s{", indentUnit)

	body := indentUnit + indentUnit
	for _, p := range props {
		switch {
		case p.Fixed:
			if p.Wrapped() {
				r.line("%s$this->%s = new %s(%s);", body, p.Name, p.Type, phpLiteral(p.Default))
			} else {
				r.line("%s$this->%s = %s;", body, p.Name, phpLiteral(p.Default))
			}
		case p.Wrapped() && p.IncludeInConstructor:
			r.line("%s$this->%s = new %s($%s);", body, p.Name, p.Type, p.Name)
		case p.IncludeInConstructor:
			r.line("%s$this->%s = $%s;", body, p.Name, p.Name)
		}
	}
	for _, g := range c.ConstraintGuards() {
		r.blank()
		r.stmt(body, g)
	}
	r.line("%s}", indentUnit)
}

func ucfirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (r *phpWriter) returnDecl(typ string, nullable bool) string {
	typ = phpType(typ)
	switch {
	case typ == "":
		return ""
	case !nullable:
		return ": " + typ
	case r.nullableTypes():
		return ": ?" + typ
	}
	return ""
}

func (r *phpWriter) accessors() {
	for _, p := range r.class.SortedProperties() {
		if p.Fixed {
			continue
		}
		if p.CreateGetter {
			r.blank()
			r.docBlock(indentUnit, "@return "+phpDocType(p.Type))
			r.line("%spublic function get%s()%s", indentUnit, ucfirst(p.Name), r.returnDecl(p.Type, p.Nullable()))
			r.line("%s{", indentUnit)
			r.line("%s%sreturn $this->%s;", indentUnit, indentUnit, p.Name)
			r.line("%s}", indentUnit)
		}
		if !p.Immutable {
			r.blank()
			r.docBlock(indentUnit, fmt.Sprintf("@param %s $%s", phpDocType(p.Type), p.Name))
			r.line("%spublic function set%s(%s)", indentUnit, ucfirst(p.Name), r.param(p.Name, p.Type, nil, !p.Required))
			r.line("%s{", indentUnit)
			r.line("%s%s$this->%s = $%s;", indentUnit, indentUnit, p.Name, p.Name)
			r.line("%s}", indentUnit)
		}
	}
}

func (r *phpWriter) signature(m *model.Method) string {
	args := make([]string, 0, len(m.Arguments))
	for _, a := range m.Arguments {
		args = append(args, r.param(a.Name, a.Type, a.Default, false))
	}
	var static string
	if m.Static {
		static = "static "
	}
	vis := m.Visibility
	if vis == "" {
		vis = model.Public
	}
	return fmt.Sprintf("%s %sfunction %s(%s)%s", vis, static, m.Name,
		strings.Join(args, ", "), r.returnDecl(m.Returns, m.ReturnsNull))
}

func (r *phpWriter) methodDoc(m *model.Method) {
	lines := splitLines(m.Doc)
	if len(lines) > 0 && (len(m.Arguments) > 0 || m.Returns != "" || len(m.Throws) > 0) {
		lines = append(lines, "")
	}
	for _, a := range m.Arguments {
		lines = append(lines, fmt.Sprintf("@param %s $%s", phpDocType(a.Type), a.Name))
	}
	if m.Returns != "" {
		if m.ReturnsNull {
			lines = append(lines, "@return null|"+m.Returns)
		} else {
			lines = append(lines, "@return "+m.Returns)
		}
	}
	for _, t := range m.Throws {
		lines = append(lines, "@throws "+t)
	}
	if len(lines) > 0 {
		r.docBlock(indentUnit, lines...)
	}
}

func (r *phpWriter) signatures() {
	for i, m := range r.class.Methods() {
		if i > 0 {
			r.blank()
		}
		r.methodDoc(m)
		r.line("%s%s;", indentUnit, r.signature(m))
	}
}

func (r *phpWriter) methods() {
	for _, m := range r.class.Methods() {
		r.blank()
		r.methodDoc(m)
		r.line("%s%s", indentUnit, r.signature(m))
		r.line("%s{", indentUnit)
		r.stmts(indentUnit+indentUnit, m.Body)
		r.line("%s}", indentUnit)
	}
}

func (r *phpWriter) stmts(indent string, stmts []model.Stmt) {
	for _, s := range stmts {
		r.stmt(indent, s)
	}
}

func (r *phpWriter) stmt(indent string, s model.Stmt) {
	switch s := s.(type) {
	case model.Assign:
		r.line("%s%s = %s;", indent, r.expr(indent, s.To), r.expr(indent, s.Value))
	case model.Append:
		r.line("%s%s[] = %s;", indent, r.expr(indent, s.List), r.expr(indent, s.Item))
	case model.Guard:
		r.line("%sif (%s) {", indent, r.expr(indent, s.Cond))
		r.line("%s%sthrow new %s(%s);", indent, indentUnit, model.ValidationFailure, phpString(s.Message))
		r.line("%s}", indent)
	case model.If:
		r.line("%sif (%s) {", indent, r.expr(indent, s.Cond))
		r.stmts(indent+indentUnit, s.Then)
		r.line("%s}", indent)
	case model.ForEach:
		r.line("%sforeach (%s as $%s) {", indent, r.expr(indent, s.List), s.Item)
		r.stmts(indent+indentUnit, s.Body)
		r.line("%s}", indent)
	case model.Return:
		if s.X == nil {
			r.line("%sreturn;", indent)
		} else {
			r.line("%sreturn %s;", indent, r.expr(indent, s.X))
		}
	case model.Call:
		r.line("%s%s;", indent, r.expr(indent, s))
	case model.Write:
		parts := make([]string, 0, len(s.Parts))
		for _, p := range s.Parts {
			parts = append(parts, r.expr(indent, p))
		}
		r.line("%s%s->write(%s);", indent, r.expr(indent, s.Stream), strings.Join(parts, " . "))
	case model.Block:
		r.stmts(indent, s)
	case model.Raw:
		src, ok := s.Snippets[r.Language()]
		if !ok {
			r.fail(s)
			return
		}
		for _, l := range strings.Split(strings.TrimRight(src, "\n"), "\n") {
			r.line("%s%s", indent, l)
		}
	default:
		r.fail(s)
	}
}

var phpOps = map[model.Op]string{
	model.Eq: "===",
	model.Ne: "!==",
}

func (r *phpWriter) operand(indent string, e model.Expr) string {
	if _, ok := e.(model.Binary); ok {
		return "(" + r.expr(indent, e) + ")"
	}
	return r.expr(indent, e)
}

func (r *phpWriter) args(indent string, args []model.Expr) string {
	list := make([]string, 0, len(args))
	for _, a := range args {
		list = append(list, r.expr(indent, a))
	}
	return strings.Join(list, ", ")
}

func (r *phpWriter) expr(indent string, e model.Expr) string {
	switch e := e.(type) {
	case model.Var:
		return "$" + e.Name
	case model.Prop:
		return "$this->" + e.Name
	case model.Lit:
		return phpLiteral(e.Value)
	case model.Const:
		return "self::" + e.Name
	case model.Not:
		return "!" + r.operand(indent, e.X)
	case model.Binary:
		op, ok := phpOps[e.Op]
		if !ok {
			op = e.Op.String()
		}
		return fmt.Sprintf("%s %s %s", r.operand(indent, e.X), op, r.operand(indent, e.Y))
	case model.Count:
		return fmt.Sprintf("count(%s)", r.expr(indent, e.X))
	case model.Length:
		return fmt.Sprintf("mb_strlen((string) %s)", r.expr(indent, e.X))
	case model.DigitCount:
		return fmt.Sprintf("preg_match_all('/[0-9]/', (string) %s)", r.expr(indent, e.X))
	case model.FractionDigitCount:
		x := r.expr(indent, e.X)
		return fmt.Sprintf("((int) %[1]s !== %[1]s) ? (strlen((string) %[1]s) - strpos((string) %[1]s, '.')) - 1 : 0", x)
	case model.Matches:
		return fmt.Sprintf("preg_match(%s, (string) %s)", phpRegexp(e.Pattern), r.expr(indent, e.X))
	case model.OneOf:
		return r.oneOf(indent, e)
	case model.IsSet:
		return "null !== " + r.expr(indent, e.X)
	case model.ValueOf:
		return r.expr(indent, e.X) + "->getValue()"
	case model.BoolString:
		return fmt.Sprintf("var_export(%s, true)", r.expr(indent, e.X))
	case model.Escaped:
		return fmt.Sprintf("htmlspecialchars((string) %s, ENT_XML1 | ENT_QUOTES)", r.expr(indent, e.X))
	case model.NewObject:
		return fmt.Sprintf("new %s(%s)", e.Type, r.args(indent, e.Args))
	case model.Call:
		return fmt.Sprintf("%s->%s(%s)", r.expr(indent, e.Recv), e.Method, r.args(indent, e.Args))
	}
	return r.fail(e)
}

// oneOf renders an in_array call, wrapping long candidate lists
// onto indented lines.
func (r *phpWriter) oneOf(indent string, e model.OneOf) string {
	list := r.args(indent, e.Values)
	x := r.expr(indent, e.X)
	if len(list) <= wrapWidth {
		return fmt.Sprintf("in_array(%s, [%s], true)", x, list)
	}
	inner := indent + indentUnit
	wrapped := strings.ReplaceAll(wordwrap.WrapString(list, wrapWidth), "\n", "\n"+inner)
	return fmt.Sprintf("in_array(%s, [\n%s%s\n%s], true)", x, inner, wrapped, indent)
}

// phpString quotes s as a single-quoted PHP string.
func phpString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// phpRegexp converts an XML Schema pattern to an anchored PCRE
// literal.
func phpRegexp(pattern string) string {
	pattern = strings.ReplaceAll(pattern, "/", `\/`)
	return phpString("/^(?:" + pattern + ")$/u")
}

func phpLiteral(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return phpString(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case bool:
		return strconv.FormatBool(v)
	case *apd.Decimal:
		return v.Text('f')
	case []interface{}:
		return "[]"
	}
	return phpString(fmt.Sprint(v))
}
