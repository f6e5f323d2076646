// Package xsd parses the type declarations of XML Schema documents.
//
// The xsd package implements the subset of XML Schema needed to
// generate classes from a schema: simple types with their restriction
// facets, complex types with their elements and attributes, and
// top-level element declarations. It does not validate schema
// documents. Named groups and attribute groups are de-referenced
// during parsing, and nested sequences, choices and alls are
// flattened into a single list of elements.
//
// References to other types are kept as they were written, as QNames,
// together with the namespace prefixes declared on each <schema>
// element, so that consumers can resolve them with
// Definition.NamespaceFromAlias.
package xsd

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/CognitoIQ/xsdclass/xmltree"
)

// Namespace is the XML Schema namespace. Built-in types live here.
const Namespace = "http://www.w3.org/2001/XMLSchema"

// XMLNamespace is the namespace bound to the reserved xml prefix.
const XMLNamespace = xmltree.XMLNamespace

// Unbounded is the value of Element.MaxOccurs for maxOccurs="unbounded".
const Unbounded = -1

// A Type is one of *SimpleType, *ComplexType or Builtin.
type Type interface {
	// just for compile-time type checking
	isType()
}

// A SimpleType describes a scalar value: a restriction of another
// simple type, a whitespace-separated list, or a union.
//
// http://www.w3.org/TR/2004/REC-xmlschema-2-20041028/datatypes.html#element-simpleType
type SimpleType struct {
	Name xml.Name
	Doc  string
	// True if the type was declared inline and named by the parser.
	Anonymous bool
	// Nil unless the type is derived by restriction.
	Restriction *Restriction
	// True if this is a list type; ItemType holds the QName of
	// its items.
	List     bool
	ItemType string
	// QNames of union member types.
	Union []string
}

func (*SimpleType) isType() {}

// A Restriction derives a type from Base by constraining its value
// space with facets. A restriction may declare its base inline, in
// which case Base is empty and the base is found in SimpleTypes.
//
// http://www.w3.org/TR/2004/REC-xmlschema-2-20041028/datatypes.html#element-restriction
type Restriction struct {
	// QName of the base type, as written.
	Base   string
	Facets []Facet
	// Nested, anonymous simple types.
	SimpleTypes []*SimpleType
	Doc         string
}

// A ComplexType describes an element that may carry attributes and
// child elements.
//
// http://www.w3.org/TR/2004/REC-xmlschema-1-20041028/structures.html#element-complexType
type ComplexType struct {
	Name      xml.Name
	Doc       string
	Anonymous bool
	Abstract  bool
	Mixed     bool
	// QName of the type this type is derived from, empty when the
	// type is an implicit restriction of anyType.
	Base string
	// True if derived by extension rather than restriction.
	Extends bool
	// True if the content model is character data only.
	SimpleContent bool
	// Facets of a simpleContent restriction.
	Restriction *Restriction
	Elements    []Element
	Attributes  []Attribute
}

func (*ComplexType) isType() {}

// An Element is a child element of a complex type, or a top-level
// element declaration.
//
// http://www.w3.org/TR/2004/REC-xmlschema-1-20041028/structures.html#element-element
type Element struct {
	Name xml.Name
	Doc  string
	// QName of the element's type. Types declared inline are named
	// after the element and referenced by their local name.
	Type string
	// QName of a top-level element this declaration refers to.
	Ref       string
	MinOccurs int
	// Unbounded if maxOccurs="unbounded".
	MaxOccurs int
	Nillable  bool
	Abstract  bool
	Default   string
	Fixed     string
}

// Plural reports whether the element may occur more than once.
func (e *Element) Plural() bool {
	return e.MaxOccurs == Unbounded || e.MaxOccurs > 1
}

// An Attribute describes a name=value pair on an element's start tag.
//
// http://www.w3.org/TR/2004/REC-xmlschema-1-20041028/structures.html#element-attribute
type Attribute struct {
	Name     xml.Name
	Doc      string
	Type     string
	Ref      string
	Required bool
	Default  string
	Fixed    string
}

// A Schema is the decoded form of one or more <schema> elements with
// the same target namespace.
type Schema struct {
	TargetNS string
	// Types in declaration order. Types declared inline appear
	// before the type or element containing them.
	Types []Type
	// Top-level element declarations.
	Elements []Element
	// Top-level attribute declarations.
	Attributes []Attribute
	// Prefix to namespace bindings declared on the <schema> elements.
	Aliases map[string]string
	Doc     string

	names map[string]bool
}

// A Definition is the set of schema parsed together. It is read-only
// once returned by Parse.
type Definition struct {
	Schemas []*Schema
}

// Types returns every type of every schema, in declaration order.
func (d *Definition) Types() []Type {
	var result []Type
	for _, s := range d.Schemas {
		result = append(result, s.Types...)
	}
	return result
}

// FindType returns the type with the given local name declared in
// namespace ns. An empty ns matches any namespace. FindType returns
// nil if there is no such type.
func (d *Definition) FindType(local, ns string) Type {
	for _, s := range d.Schemas {
		if ns != "" && s.TargetNS != ns {
			continue
		}
		for _, t := range s.Types {
			if XMLName(t).Local == local {
				return t
			}
		}
	}
	return nil
}

// FindElement returns the top-level element declaration with the
// given local name in namespace ns, or nil. An empty ns matches any
// namespace.
func (d *Definition) FindElement(local, ns string) *Element {
	for _, s := range d.Schemas {
		if ns != "" && s.TargetNS != ns {
			continue
		}
		for i := range s.Elements {
			if s.Elements[i].Name.Local == local {
				return &s.Elements[i]
			}
		}
	}
	return nil
}

// FindAttribute returns the top-level attribute declaration with the
// given local name in namespace ns, or nil.
func (d *Definition) FindAttribute(local, ns string) *Attribute {
	for _, s := range d.Schemas {
		if ns != "" && s.TargetNS != ns {
			continue
		}
		for i := range s.Attributes {
			if s.Attributes[i].Name.Local == local {
				return &s.Attributes[i]
			}
		}
	}
	return nil
}

// NamespaceFromAlias returns the namespace bound to a prefix on any
// of the parsed <schema> elements. The empty alias is the default
// namespace. The xml prefix is always bound.
func (d *Definition) NamespaceFromAlias(alias string) (string, bool) {
	if alias == "xml" {
		return XMLNamespace, true
	}
	for _, s := range d.Schemas {
		if ns, ok := s.Aliases[alias]; ok {
			return ns, true
		}
	}
	return "", false
}

// XMLName returns the canonical name of a Type.
func XMLName(t Type) xml.Name {
	switch t := t.(type) {
	case *SimpleType:
		return t.Name
	case *ComplexType:
		return t.Name
	case Builtin:
		return t.Name()
	}
	panic(fmt.Sprintf("xsd: unexpected xsd.Type %[1]T %[1]v passed to XMLName", t))
}

// Doc returns the annotation of a Type, if any.
func Doc(t Type) string {
	switch t := t.(type) {
	case *SimpleType:
		return t.Doc
	case *ComplexType:
		return t.Doc
	}
	return ""
}

type annotation string

func (a annotation) append(extra annotation) annotation {
	if extra == "" {
		return a
	}
	if a != "" {
		a += "\n\n"
	}
	return a + extra
}

// An <xs:annotation> element may contain zero or more <xs:documentation>
// children. Their contents are joined, separated by blank lines.
func (doc *annotation) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var parts [][]byte
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.EndElement:
			*doc = annotation(bytes.TrimSpace(bytes.Join(parts, []byte("\n\n"))))
			return nil
		case xml.StartElement:
			if (tok.Name != xml.Name{Space: Namespace, Local: "documentation"}) {
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			var frag struct {
				Text []byte `xml:",innerxml"`
			}
			if err := d.DecodeElement(&frag, &tok); err != nil {
				return err
			}
			parts = append(parts, bytes.TrimSpace(frag.Text))
		}
	}
}

func parseAnnotation(el *xmltree.Element) annotation {
	var doc annotation
	if err := el.Unmarshal(&doc); err != nil {
		stop(err.Error())
	}
	return doc
}
