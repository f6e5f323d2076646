package xsdgen

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/CognitoIQ/xsdclass/model"
	"github.com/CognitoIQ/xsdclass/xmltree"
	"github.com/CognitoIQ/xsdclass/xsd"
)

// Built-in types that map directly onto a primitive. Built-ins not
// listed here are generated as classes from templates.
var primitives = map[xsd.Builtin]string{
	xsd.AnyType:          "",
	xsd.AnySimpleType:    model.TypeString,
	xsd.String:           model.TypeString,
	xsd.NormalizedString: model.TypeString,
	xsd.Token:            model.TypeString,
	xsd.Language:         model.TypeString,
	xsd.Name:             model.TypeString,
	xsd.NCName:           model.TypeString,
	xsd.ID:               model.TypeString,
	xsd.IDREF:            model.TypeString,
	xsd.ENTITY:           model.TypeString,
	xsd.NMTOKEN:          model.TypeString,
	xsd.QName:            model.TypeString,
	xsd.NOTATION:         model.TypeString,
	xsd.AnyURI:           model.TypeString,
	xsd.IDREFS:           model.TypeString + "[]",
	xsd.ENTITIES:         model.TypeString + "[]",
	xsd.NMTOKENS:         model.TypeString + "[]",
	xsd.Boolean:          model.TypeBool,
	xsd.Int:              model.TypeInt,
	xsd.Integer:          model.TypeInt,
	xsd.Long:             model.TypeInt,
	xsd.Short:            model.TypeInt,
	xsd.Decimal:          model.TypeFloat,
	xsd.Float:            model.TypeFloat,
	xsd.Double:           model.TypeFloat,
}

// PHP reserved words cannot name a class, regardless of case.
var reserved = map[string]bool{
	"abstract": true, "and": true, "array": true, "as": true, "bool": true,
	"break": true, "callable": true, "case": true, "catch": true,
	"class": true, "clone": true, "const": true, "continue": true,
	"declare": true, "default": true, "do": true, "echo": true,
	"else": true, "elseif": true, "empty": true, "enddeclare": true,
	"endfor": true, "endforeach": true, "endif": true, "endswitch": true,
	"endwhile": true, "eval": true, "exit": true, "extends": true,
	"false": true, "final": true, "finally": true, "float": true,
	"fn": true, "for": true, "foreach": true, "function": true,
	"global": true, "goto": true, "if": true, "implements": true,
	"include": true, "instanceof": true, "insteadof": true, "int": true,
	"interface": true, "isset": true, "iterable": true, "list": true,
	"mixed": true, "namespace": true, "new": true, "null": true,
	"object": true, "or": true, "print": true, "private": true,
	"protected": true, "public": true, "require": true, "resource": true,
	"return": true, "static": true, "string": true, "switch": true,
	"throw": true, "trait": true, "true": true, "try": true, "unset": true,
	"use": true, "var": true, "void": true, "while": true, "xor": true,
	"yield": true,
}

func ucfirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// className turns the local name of a schema type into a class name.
func (r *run) className(local string) string {
	name := ucfirst(r.transformName(local))
	if r.language == "php" && reserved[strings.ToLower(name)] {
		name += "Type"
	}
	return name
}

// lookup resolves the QName ref, as written in a declaration
// belonging to namespace ns.
func (r *run) lookup(ref, ns string) (xsd.Type, error) {
	prefix, local := xmltree.SplitQName(ref)
	if prefix != "" {
		space, ok := r.def.NamespaceFromAlias(prefix)
		if !ok {
			return nil, &TypeNotFoundError{Ref: ref}
		}
		if space == xsd.Namespace {
			if b, err := xsd.ParseBuiltin(local); err == nil {
				return b, nil
			}
			return nil, &TypeNotFoundError{Ref: ref}
		}
		if t := r.def.FindType(local, space); t != nil {
			return t, nil
		}
		return nil, &TypeNotFoundError{Ref: ref}
	}
	if t := r.def.FindType(local, ns); t != nil {
		return t, nil
	}
	def, ok := r.def.NamespaceFromAlias("")
	if !ok || def == xsd.Namespace {
		if b, err := xsd.ParseBuiltin(local); err == nil {
			return b, nil
		}
	}
	if ok && def != ns {
		if t := r.def.FindType(local, def); t != nil {
			return t, nil
		}
	}
	return nil, &TypeNotFoundError{Ref: ref}
}

// typeOf returns the semantic type of t, as used for properties, and
// the fully qualified name of the class it refers to, if any.
func (r *run) typeOf(t xsd.Type) (typ, fqn string, err error) {
	switch t := t.(type) {
	case xsd.Builtin:
		if p, ok := primitives[t]; ok {
			return p, "", nil
		}
		name, err := r.materialize(t)
		if err != nil {
			return "", "", err
		}
		if name == "" {
			r.debugf("no class for built-in %s, using string", t.Name().Local)
			return model.TypeString, "", nil
		}
		return name, r.qualified(nsXsd, name), nil
	case *xsd.SimpleType:
		name := r.className(t.Name.Local)
		return name, r.qualified(nsSimpleType, name), nil
	case *xsd.ComplexType:
		name := r.className(t.Name.Local)
		return name, r.qualified(nsComplexType, name), nil
	}
	return "", "", nil
}

// refer returns the semantic type of t, importing its class into c.
func (r *run) refer(c *model.Class, t xsd.Type) (string, error) {
	typ, fqn, err := r.typeOf(t)
	if err != nil {
		return "", err
	}
	use(c, fqn)
	return typ, nil
}

// valueType returns the primitive type of the values t holds. For
// types generated as classes, this is the type their constructor
// takes.
func (r *run) valueType(t xsd.Type) (string, error) {
	switch t := t.(type) {
	case xsd.Builtin:
		if p, ok := primitives[t]; ok {
			return p, nil
		}
		if tmpl, ok := builtinTemplates[builtinClass(t)]; ok && tmpl.valueType != "" {
			return tmpl.valueType, nil
		}
		return model.TypeString, nil
	case *xsd.SimpleType:
		c, err := r.simpleClass(t)
		if err != nil {
			return "", err
		}
		return c.Property(model.ValueProperty).Type, nil
	case *xsd.ComplexType:
		if !t.SimpleContent {
			return model.TypeString, nil
		}
		c, err := r.complexClass(t)
		if err != nil {
			return "", err
		}
		if v := c.Property(model.ValueProperty); v != nil {
			return v.Type, nil
		}
	}
	return model.TypeString, nil
}

// literal converts the lexical form of a default or fixed value to
// a literal of the primitive type typ. Values that do not parse are
// kept as strings.
func (r *run) literal(raw, typ string) interface{} {
	s := strings.TrimSpace(raw)
	switch typ {
	case model.TypeInt:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case model.TypeFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case model.TypeBool:
		switch s {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	default:
		return raw
	}
	r.debugf("cannot convert %q to %s", raw, typ)
	return raw
}

// setDefault records the default or fixed value of a property of
// type t. Defaults of list types are ignored.
func (r *run) setDefault(p *model.Property, t xsd.Type, def, fixed string) error {
	raw := def
	if fixed != "" {
		raw = fixed
	}
	if raw == "" {
		return nil
	}
	typ := p.Type
	if !p.Primitive() {
		vt, err := r.valueType(t)
		if err != nil {
			return err
		}
		typ = vt
	}
	if model.IsList(typ) {
		r.debugf("ignoring default %q of list property %s", raw, p.Name)
		return nil
	}
	p.Default = r.literal(raw, typ)
	if fixed != "" {
		p.Fixed = true
		p.Immutable = true
	}
	return nil
}
