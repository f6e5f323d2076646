package xsd

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/CognitoIQ/xsdclass/internal/ordered"
	"github.com/CognitoIQ/xsdclass/xmltree"
)

// maxGroupDepth bounds how deeply group references may nest.
const maxGroupDepth = 32

// A Ref names a schema document imported or included by another.
// Location may be empty for imports; it is not required for a schema
// to say where its imports can be found.
type Ref struct {
	Namespace, Location string
	// True for <include>, false for <import>.
	Include bool
}

// Imports reads an XML document containing one or more <schema>
// elements and returns the documents they import or include.
func Imports(data []byte) ([]Ref, error) {
	root, err := xmltree.Parse(data)
	if err != nil {
		return nil, err
	}
	var result []Ref
	for _, s := range schemaRoots(root) {
		result = append(result, schemaImports(s)...)
	}
	return result, nil
}

func schemaImports(schema *xmltree.Element) []Ref {
	var result []Ref
	tns := schema.Attr("", "targetNamespace")
	for _, el := range schema.Children {
		if el.Name.Space != Namespace {
			continue
		}
		switch el.Name.Local {
		case "import":
			result = append(result, Ref{
				Namespace: el.Attr("", "namespace"),
				Location:  el.Attr("", "schemaLocation"),
			})
		case "include":
			result = append(result, Ref{
				Namespace: tns,
				Location:  el.Attr("", "schemaLocation"),
				Include:   true,
			})
		}
	}
	return result
}

func schemaRoots(root *xmltree.Element) []*xmltree.Element {
	if (root.Name == xml.Name{Space: Namespace, Local: "schema"}) {
		return []*xmltree.Element{root}
	}
	return root.Search(Namespace, "schema")
}

// Parse reads XML documents containing one or more <schema> elements,
// such as XSD files or WSDL documents. Schema with the same target
// namespace are merged. Parse does not fetch imported or included
// documents; see Loader for that.
func Parse(docs ...[]byte) (*Definition, error) {
	var roots []*xmltree.Element
	for _, data := range docs {
		root, err := xmltree.Parse(data)
		if err != nil {
			return nil, err
		}
		roots = append(roots, schemaRoots(root)...)
	}
	return parseRoots(roots)
}

func parseRoots(roots []*xmltree.Element) (*Definition, error) {
	var (
		order   []string
		merged  = make(map[string]*xmltree.Element, len(roots))
		aliases = make(map[string]map[string]string, len(roots))
	)
	for _, s := range roots {
		ns := s.Attr("", "targetNamespace")
		if prev, ok := merged[ns]; ok {
			prev.Children = append(prev.Children, s.Children...)
		} else {
			order = append(order, ns)
			merged[ns] = s
			aliases[ns] = make(map[string]string)
		}
		for prefix, uri := range s.Namespaces() {
			if _, ok := aliases[ns][prefix]; !ok {
				aliases[ns][prefix] = uri
			}
		}
	}

	def := new(Definition)
	for _, ns := range order {
		s := &Schema{
			TargetNS: ns,
			Aliases:  aliases[ns],
			names:    make(map[string]bool),
		}
		if err := s.parse(merged[ns], merged); err != nil {
			return nil, err
		}
		def.Schemas = append(def.Schemas, s)
	}
	return def, nil
}

func (s *Schema) parse(root *xmltree.Element, all map[string]*xmltree.Element) (err error) {
	defer catchParseError(&err)

	derefGroups(root, all)

	// Named types are registered first, so that inline types
	// cannot steal their names.
	for _, el := range root.Children {
		if el.Name.Space != Namespace {
			continue
		}
		if el.Name.Local == "simpleType" || el.Name.Local == "complexType" {
			s.names[el.Attr("", "name")] = true
		}
	}

	var doc annotation
	walk(root, func(el *xmltree.Element) {
		switch el.Name.Local {
		case "annotation":
			doc = doc.append(parseAnnotation(el))
		case "simpleType":
			s.Types = append(s.Types, s.parseSimpleType(el, el.Attr("", "name")))
		case "complexType":
			s.Types = append(s.Types, s.parseComplexType(el, el.Attr("", "name")))
		case "element":
			s.Elements = append(s.Elements, s.parseElement(el, true))
		case "attribute":
			s.Attributes = append(s.Attributes, s.parseAttribute(el))
		}
	})
	s.Doc = string(doc)
	return nil
}

// uniqueName returns a type name derived from base that is not yet
// used in the schema, and reserves it.
func (s *Schema) uniqueName(base string) string {
	name := base
	for i := 1; s.names[name]; i++ {
		if i == 1 {
			name = base + "Type"
		} else {
			name = base + "Type" + strconv.Itoa(i)
		}
	}
	s.names[name] = true
	return name
}

// inlineType parses a type declared inside an element or attribute,
// names it after its parent and adds it to the schema. The returned
// name can be used to refer to the type.
func (s *Schema) inlineType(el *xmltree.Element, parent string, anonymous bool) string {
	name := s.uniqueName(parent)
	switch el.Name.Local {
	case "complexType":
		t := s.parseComplexType(el, name)
		t.Anonymous = anonymous
		s.Types = append(s.Types, t)
	case "simpleType":
		t := s.parseSimpleType(el, name)
		t.Anonymous = anonymous
		s.Types = append(s.Types, t)
	}
	return name
}

/*
Convert

  <xs:group name="nameGroup">
    <xs:sequence>
      <xs:element name="first" type="xs:string"/>
    </xs:sequence>
  </xs:group>
  <xs:complexType name="Person">
    <xs:group ref="tns:nameGroup"/>
  </xs:complexType>

to

  <xs:complexType name="Person">
    <xs:group>
      <xs:sequence>
        <xs:element name="first" type="xs:string"/>
      </xs:sequence>
    </xs:group>
  </xs:complexType>

The same is done for attributeGroup references. Occurrence
attributes on the referencing element are kept.
*/
func derefGroups(root *xmltree.Element, all map[string]*xmltree.Element) {
	isRef := func(el *xmltree.Element) bool {
		if el.Name.Space != Namespace || el.Attr("", "ref") == "" {
			return false
		}
		return el.Name.Local == "group" || el.Name.Local == "attributeGroup"
	}
	for depth := 0; ; depth++ {
		refs := root.SearchFunc(isRef)
		if len(refs) == 0 {
			return
		}
		if depth >= maxGroupDepth {
			stopf("group references nested deeper than %d levels", maxGroupDepth)
		}
		for _, el := range refs {
			ref := el.Resolve(el.Attr("", "ref"))
			group := findGroup(all, el.Name.Local, ref)
			if group == nil {
				stopf("could not find %s %q", el.Name.Local, el.Attr("", "ref"))
			}
			dup := group.Copy()
			el.Children = dup.Children
			el.SetAttr("", "ref", "")
		}
	}
}

func findGroup(all map[string]*xmltree.Element, kind string, name xml.Name) *xmltree.Element {
	match := func(root *xmltree.Element) *xmltree.Element {
		for i, el := range root.Children {
			if (el.Name == xml.Name{Space: Namespace, Local: kind}) && el.Attr("", "name") == name.Local {
				return &root.Children[i]
			}
		}
		return nil
	}
	if root, ok := all[name.Space]; ok {
		if el := match(root); el != nil {
			return el
		}
	}
	// The prefix may not have been bound; fall back to the local name,
	// trying namespaces in sorted order.
	for _, ns := range ordered.Keys(all) {
		if el := match(all[ns]); el != nil {
			return el
		}
	}
	return nil
}

func parseOccurs(s string, def int) int {
	switch s {
	case "":
		return def
	case "unbounded":
		return Unbounded
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		stopf("invalid occurrence value %q", s)
	}
	return n
}

func parseBool(s string) bool {
	switch s {
	case "", "0", "false":
		return false
	case "1", "true":
		return true
	}
	stop("invalid boolean value " + s)
	return false
}

// http://www.w3.org/TR/2004/REC-xmlschema-1-20041028/structures.html#element-complexType
func (s *Schema) parseComplexType(root *xmltree.Element, name string) *ComplexType {
	t := &ComplexType{
		Name:     xml.Name{Space: s.TargetNS, Local: name},
		Abstract: parseBool(root.Attr("", "abstract")),
		Mixed:    parseBool(root.Attr("", "mixed")),
	}
	var doc annotation
	walk(root, func(el *xmltree.Element) {
		switch el.Name.Local {
		case "annotation":
			doc = doc.append(parseAnnotation(el))
		case "simpleContent":
			s.parseSimpleContent(t, el)
		case "complexContent":
			if parseBool(el.Attr("", "mixed")) {
				t.Mixed = true
			}
			s.parseComplexContent(t, el)
		default:
			// Content without simpleContent or complexContent is
			// shorthand for a restriction of anyType.
			s.parseParticle(t, el, occurs{})
		}
	})
	t.Doc = string(doc)
	return t
}

// simpleContent indicates that the content model of the type
// contains only character data and no elements.
func (s *Schema) parseSimpleContent(t *ComplexType, root *xmltree.Element) {
	t.SimpleContent = true
	walk(root, func(el *xmltree.Element) {
		switch el.Name.Local {
		case "extension":
			t.Base = el.Attr("", "base")
			t.Extends = true
			walk(el, func(child *xmltree.Element) {
				s.parseParticle(t, child, occurs{})
			})
		case "restriction":
			t.Base = el.Attr("", "base")
			t.Restriction = s.parseRestriction(el)
			walk(el, func(child *xmltree.Element) {
				switch child.Name.Local {
				case "attribute", "attributeGroup":
					s.parseParticle(t, child, occurs{})
				}
			})
		}
	})
}

// complexContent restricts or extends the content model of another
// complex type.
func (s *Schema) parseComplexContent(t *ComplexType, root *xmltree.Element) {
	walk(root, func(el *xmltree.Element) {
		switch el.Name.Local {
		case "extension":
			t.Extends = true
			fallthrough
		case "restriction":
			t.Base = el.Attr("", "base")
			walk(el, func(child *xmltree.Element) {
				s.parseParticle(t, child, occurs{})
			})
		case "annotation":
		default:
			stop("unexpected element " + el.Name.Local)
		}
	})
}

// occurs carries the occurrence constraints of enclosing model groups
// down to the elements they contain.
type occurs struct {
	optional, plural bool
}

func (o occurs) within(group *xmltree.Element) occurs {
	if parseOccurs(group.Attr("", "minOccurs"), 1) == 0 {
		o.optional = true
	}
	if max := parseOccurs(group.Attr("", "maxOccurs"), 1); max == Unbounded || max > 1 {
		o.plural = true
	}
	return o
}

func (s *Schema) parseParticle(t *ComplexType, el *xmltree.Element, o occurs) {
	switch el.Name.Local {
	case "sequence", "all", "group":
		inner := o.within(el)
		walk(el, func(child *xmltree.Element) {
			s.parseParticle(t, child, inner)
		})
	case "choice":
		inner := o.within(el)
		inner.optional = true
		walk(el, func(child *xmltree.Element) {
			s.parseParticle(t, child, inner)
		})
	case "element":
		e := s.parseElement(el, false)
		if o.optional {
			e.MinOccurs = 0
		}
		if o.plural {
			e.MaxOccurs = Unbounded
		}
		t.Elements = append(t.Elements, e)
	case "attribute":
		if el.Attr("", "use") == "prohibited" {
			return
		}
		t.Attributes = append(t.Attributes, s.parseAttribute(el))
	case "attributeGroup":
		walk(el, func(child *xmltree.Element) {
			s.parseParticle(t, child, o)
		})
	}
	// Wildcards (any, anyAttribute) and XSD 1.1 assertions carry no
	// named content and are skipped.
}

func (s *Schema) parseElement(el *xmltree.Element, top bool) Element {
	e := Element{
		Name:      xml.Name{Space: s.TargetNS, Local: el.Attr("", "name")},
		Type:      el.Attr("", "type"),
		Ref:       el.Attr("", "ref"),
		MinOccurs: parseOccurs(el.Attr("", "minOccurs"), 1),
		MaxOccurs: parseOccurs(el.Attr("", "maxOccurs"), 1),
		Nillable:  parseBool(el.Attr("", "nillable")),
		Abstract:  parseBool(el.Attr("", "abstract")),
		Default:   el.Attr("", "default"),
		Fixed:     el.Attr("", "fixed"),
	}
	if e.Name.Local == "" && e.Ref != "" {
		_, e.Name.Local = xmltree.SplitQName(e.Ref)
	}
	var doc annotation
	walk(el, func(child *xmltree.Element) {
		switch child.Name.Local {
		case "annotation":
			doc = doc.append(parseAnnotation(child))
		case "complexType", "simpleType":
			e.Type = s.inlineType(child, e.Name.Local, !top)
		}
	})
	e.Doc = string(doc)
	return e
}

func (s *Schema) parseAttribute(el *xmltree.Element) Attribute {
	a := Attribute{
		Name:     xml.Name{Local: el.Attr("", "name")},
		Type:     el.Attr("", "type"),
		Ref:      el.Attr("", "ref"),
		Required: el.Attr("", "use") == "required",
		Default:  el.Attr("", "default"),
		Fixed:    el.Attr("", "fixed"),
	}
	if a.Name.Local == "" && a.Ref != "" {
		a.Name = el.Resolve(a.Ref)
	}
	var doc annotation
	walk(el, func(child *xmltree.Element) {
		switch child.Name.Local {
		case "annotation":
			doc = doc.append(parseAnnotation(child))
		case "simpleType":
			a.Type = s.inlineType(child, a.Name.Local, true)
		}
	})
	a.Doc = string(doc)
	return a
}

// http://www.w3.org/TR/2004/REC-xmlschema-2-20041028/datatypes.html#element-simpleType
func (s *Schema) parseSimpleType(root *xmltree.Element, name string) *SimpleType {
	t := &SimpleType{Name: xml.Name{Space: s.TargetNS, Local: name}}
	var doc annotation
	walk(root, func(el *xmltree.Element) {
		switch el.Name.Local {
		case "annotation":
			doc = doc.append(parseAnnotation(el))
		case "restriction":
			t.Restriction = s.parseRestriction(el)
		case "list":
			t.List = true
			t.ItemType = el.Attr("", "itemType")
		case "union":
			t.Union = strings.Fields(el.Attr("", "memberTypes"))
		}
	})
	t.Doc = string(doc)
	return t
}

// parseRestriction records the facets of a restriction in document
// order. Content model particles of complex restrictions are left to
// the caller.
func (s *Schema) parseRestriction(root *xmltree.Element) *Restriction {
	r := &Restriction{Base: root.Attr("", "base")}
	var doc annotation
	walk(root, func(el *xmltree.Element) {
		switch el.Name.Local {
		case "annotation":
			doc = doc.append(parseAnnotation(el))
		case "simpleType":
			nested := s.parseSimpleType(el, "")
			nested.Anonymous = true
			r.SimpleTypes = append(r.SimpleTypes, nested)
		case "attribute", "attributeGroup", "anyAttribute",
			"sequence", "choice", "all", "group", "any":
		default:
			r.Facets = append(r.Facets, Facet{
				Kind:  ParseFacetKind(el.Name.Local),
				Name:  el.Name.Local,
				Value: el.Attr("", "value"),
			})
		}
	})
	r.Doc = string(doc)
	return r
}

func (s *Schema) String() string {
	return fmt.Sprintf("schema %q (%d types, %d elements)", s.TargetNS, len(s.Types), len(s.Elements))
}
