// Package xmltree holds an XML document in memory as a tree of elements.
//
// Every element remembers the namespace prefixes in scope at the point
// it was declared, so that QNames found in attribute values (as XML
// Schema documents use them) can be resolved at any point in the tree.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

const recursionLimit = 3000

// XMLNamespace is the namespace bound to the reserved xml prefix.
const XMLNamespace = "http://www.w3.org/XML/1998/namespace"

var errDeepXML = errors.New("xmltree: xml document too deeply nested")

// An Element is a single node in an XML document. The Content field
// holds the raw inner XML of the element and is shared among all
// elements of a document; it should not be modified.
type Element struct {
	xml.StartElement
	Content  []byte
	Children []Element
	// Namespace prefixes declared on this element or its ancestors,
	// from least to most specific. Space is the namespace URI,
	// Local is the prefix ("" for the default namespace).
	Scope []xml.Name
}

// Attr returns the value of the first attribute matching space and
// local. An empty space matches any namespace. If no attribute matches,
// the empty string is returned.
func (el *Element) Attr(space, local string) string {
	for _, v := range el.StartElement.Attr {
		if v.Name.Local != local {
			continue
		}
		if space == "" || space == v.Name.Space {
			return v.Value
		}
	}
	return ""
}

// SetAttr sets an attribute on the element, replacing any attribute
// with the same name.
func (el *Element) SetAttr(space, local, value string) {
	for i, a := range el.StartElement.Attr {
		if a.Name.Local != local {
			continue
		}
		if space == "" || a.Name.Space == space {
			el.StartElement.Attr[i].Value = value
			return
		}
	}
	el.StartElement.Attr = append(el.StartElement.Attr, xml.Attr{
		Name:  xml.Name{Space: space, Local: local},
		Value: value,
	})
}

// Unmarshal decodes the element and its content into v, following the
// rules of xml.Unmarshal. Namespace declarations in scope are copied
// onto the element so that prefixed names decode correctly.
func (el *Element) Unmarshal(v interface{}) error {
	start := xml.StartElement{Name: el.Name}
	for _, a := range el.StartElement.Attr {
		if a.Name.Space != "xmlns" && a.Name.Local != "xmlns" {
			start.Attr = append(start.Attr, a)
		}
	}
	for _, ns := range el.Scope {
		name := xml.Name{Local: "xmlns"}
		if ns.Local != "" {
			name.Local += ":" + ns.Local
		}
		start.Attr = append(start.Attr, xml.Attr{Name: name, Value: ns.Space})
	}
	if start.Name.Space != "" {
		qname := el.Prefix(start.Name)
		if qname == "" {
			return fmt.Errorf("xmltree: no prefix in scope for %q when decoding <%s>",
				start.Name.Space, start.Name.Local)
		}
		start.Name = xml.Name{Local: strings.TrimPrefix(qname, ":")}
	}

	var buf bytes.Buffer
	e := xml.NewEncoder(&buf)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Flush(); err != nil {
		return err
	}
	buf.Write(el.Content)
	if err := e.EncodeToken(xml.EndElement{Name: start.Name}); err != nil {
		return err
	}
	if err := e.Flush(); err != nil {
		return err
	}
	return xml.Unmarshal(buf.Bytes(), v)
}

// Copy returns a deep copy of el. Only Content is shared with the
// original.
func (el *Element) Copy() Element {
	c := *el
	c.StartElement = el.StartElement.Copy()
	c.Children = make([]Element, len(el.Children))
	for i := range el.Children {
		c.Children[i] = el.Children[i].Copy()
	}
	return c
}

// Resolve translates a QName such as "xs:string" into an xml.Name
// whose Space field holds the namespace URI bound to the prefix. Names
// without a prefix are placed in the default namespace. If the prefix
// is not bound, Space holds the prefix itself; use ResolveNS to detect
// that case.
func (el *Element) Resolve(qname string) xml.Name {
	name, _ := el.ResolveNS(qname)
	return name
}

// ResolveNS is like Resolve, and reports whether the prefix was bound.
// The xml prefix is always bound to XMLNamespace.
func (el *Element) ResolveNS(qname string) (xml.Name, bool) {
	prefix, local := SplitQName(qname)
	if prefix == "xml" {
		return xml.Name{Space: XMLNamespace, Local: local}, true
	}
	for i := len(el.Scope) - 1; i >= 0; i-- {
		if el.Scope[i].Local == prefix {
			return xml.Name{Space: el.Scope[i].Space, Local: local}, true
		}
	}
	return xml.Name{Space: prefix, Local: local}, false
}

// ResolveDefault is like Resolve, but unprefixed names are placed in
// defaultns rather than the default namespace in scope.
func (el *Element) ResolveDefault(qname, defaultns string) xml.Name {
	if defaultns == "" || strings.Contains(qname, ":") {
		return el.Resolve(qname)
	}
	return xml.Name{Space: defaultns, Local: qname}
}

// Prefix is the inverse of Resolve. It returns prefix:local using the
// closest prefix bound to name.Space, or the empty string if there is
// none.
func (el *Element) Prefix(name xml.Name) string {
	for i := len(el.Scope) - 1; i >= 0; i-- {
		if el.Scope[i].Space == name.Space {
			return el.Scope[i].Local + ":" + name.Local
		}
	}
	return ""
}

// Namespaces returns the prefix bindings in scope for el, with
// inner declarations taking precedence over outer ones.
func (el *Element) Namespaces() map[string]string {
	ns := make(map[string]string, len(el.Scope))
	for _, v := range el.Scope {
		ns[v.Local] = v.Space
	}
	return ns
}

// SplitQName splits a QName into its prefix and local parts.
func SplitQName(qname string) (prefix, local string) {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[:i], qname[i+1:]
	}
	return "", qname
}

func (el *Element) pushNS(tag xml.StartElement) {
	var scope []xml.Name
	for _, attr := range tag.Attr {
		switch {
		case attr.Name.Space == "xmlns":
			scope = append(scope, xml.Name{Space: attr.Value, Local: attr.Name.Local})
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			scope = append(scope, xml.Name{Space: attr.Value})
		}
	}
	if len(scope) > 0 {
		el.Scope = append(el.Scope, scope...)
		// Force a copy on the next append, so siblings do not
		// clobber each other's scope.
		el.Scope = el.Scope[:len(el.Scope):len(el.Scope)]
	}
}

type scanner struct {
	*xml.Decoder
	tok xml.Token
	err error
}

func (s *scanner) scan() bool {
	if s.err != nil {
		return false
	}
	s.tok, s.err = s.Token()
	return s.err == nil
}

var encodingDecl = regexp.MustCompile(`encoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// toUTF8 converts a document declaring a non-UTF-8 encoding up front,
// so that element offsets into the document stay valid.
func toUTF8(doc []byte) ([]byte, error) {
	if !bytes.HasPrefix(doc, []byte("<?xml")) {
		return doc, nil
	}
	end := bytes.Index(doc, []byte("?>"))
	if end < 0 {
		return doc, nil
	}
	m := encodingDecl.FindSubmatch(doc[:end])
	if m == nil || strings.EqualFold(string(m[1]), "utf-8") {
		return doc, nil
	}
	r, err := charset.NewReaderLabel(string(m[1]), bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("xmltree: %v", err)
	}
	return io.ReadAll(r)
}

// Parse builds a tree of Elements from an XML document with a single
// root element. Documents declaring a non-UTF-8 encoding are converted
// to UTF-8 before parsing.
func Parse(doc []byte) (*Element, error) {
	doc, err := toUTF8(doc)
	if err != nil {
		return nil, err
	}
	d := xml.NewDecoder(bytes.NewReader(doc))
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	scanner := scanner{Decoder: d}
	root := new(Element)

	for scanner.scan() {
		if start, ok := scanner.tok.(xml.StartElement); ok {
			root.StartElement = start.Copy()
			break
		}
	}
	if scanner.err != nil {
		return nil, scanner.err
	}
	if err := root.parse(&scanner, doc, 0); err != nil {
		return nil, err
	}
	return root, nil
}

func (el *Element) parse(scanner *scanner, data []byte, depth int) error {
	if depth > recursionLimit {
		return errDeepXML
	}
	el.pushNS(el.StartElement)

	begin := scanner.InputOffset()
	end := begin
walk:
	for scanner.scan() {
		switch tok := scanner.tok.(type) {
		case xml.StartElement:
			child := Element{StartElement: tok.Copy(), Scope: el.Scope}
			if err := child.parse(scanner, data, depth+1); err != nil {
				return err
			}
			el.Children = append(el.Children, child)
		case xml.EndElement:
			if tok.Name != el.Name {
				return fmt.Errorf("xmltree: expecting </%s>, got </%s>", el.Name.Local, tok.Name.Local)
			}
			if int(end) <= len(data) {
				el.Content = data[int(begin):int(end)]
			}
			break walk
		}
		end = scanner.InputOffset()
	}
	return scanner.err
}

// SearchFunc traverses the tree below root depth-first and returns
// the elements for which fn returns true. The children of a matching
// element are not searched.
func (root *Element) SearchFunc(fn func(*Element) bool) []*Element {
	var results []*Element
	var search func(el *Element)

	search = func(el *Element) {
		if fn(el) {
			results = append(results, el)
			return
		}
		for i := range el.Children {
			search(&el.Children[i])
		}
	}
	for i := range root.Children {
		search(&root.Children[i])
	}
	return results
}

// Search returns the elements below root named space:local. An empty
// space matches any namespace.
func (root *Element) Search(space, local string) []*Element {
	return root.SearchFunc(func(el *Element) bool {
		if local != el.Name.Local {
			return false
		}
		return space == "" || space == el.Name.Space
	})
}
