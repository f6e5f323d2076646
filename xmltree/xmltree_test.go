package xmltree

import (
	"encoding/xml"
	"strings"
	"testing"
)

var schemaDoc = []byte(`<?xml version="1.0" encoding="utf-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
  xmlns:tns="http://example.org/library"
  targetNamespace="http://example.org/library">
  <xs:annotation>
    <xs:documentation>Library types</xs:documentation>
  </xs:annotation>
  <xs:simpleType name="ISBN">
    <xs:restriction base="xs:string">
      <xs:pattern value="[0-9]{13}"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:complexType name="Book">
    <xs:sequence>
      <xs:element name="isbn" type="tns:ISBN"/>
      <xs:element name="title" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="Shelf" xmlns="http://example.org/other">
    <xs:sequence>
      <xs:element name="book" type="tns:Book" maxOccurs="unbounded"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`)

const xsdNS = "http://www.w3.org/2001/XMLSchema"

func parseDoc(t *testing.T, document []byte) *Element {
	root, err := Parse(document)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestSearch(t *testing.T) {
	root := parseDoc(t, schemaDoc)

	if n := len(root.Search(xsdNS, "complexType")); n != 2 {
		t.Errorf("Search(complexType) returned %d results, wanted 2", n)
	}
	if n := len(root.Search(xsdNS, "element")); n != 3 {
		t.Errorf("Search(element) returned %d results, wanted 3", n)
	}
	if n := len(root.Search("http://example.org/nothing", "element")); n != 0 {
		t.Errorf("Search with wrong namespace returned %d results", n)
	}
}

func TestSearchFuncStopsAtMatch(t *testing.T) {
	root := parseDoc(t, schemaDoc)
	found := root.SearchFunc(func(el *Element) bool {
		return el.Name.Local == "complexType" || el.Name.Local == "element"
	})
	// elements nested inside a matched complexType are not returned
	if len(found) != 2 {
		t.Errorf("got %d results, wanted 2", len(found))
	}
}

func TestNSResolution(t *testing.T) {
	root := parseDoc(t, schemaDoc)

	for _, el := range root.Search(xsdNS, "element") {
		name, ok := el.ResolveNS(el.Attr("", "type"))
		if !ok {
			t.Errorf("could not resolve %q at <%s name=%q>", el.Attr("", "type"), el.Name.Local, el.Attr("", "name"))
			continue
		}
		switch el.Attr("", "name") {
		case "title":
			if name.Space != xsdNS {
				t.Errorf("title resolved to %q", name.Space)
			}
		default:
			if name.Space != "http://example.org/library" {
				t.Errorf("%s resolved to %q", el.Attr("", "name"), name.Space)
			}
		}
	}

	shelf := root.SearchFunc(func(el *Element) bool {
		return el.Attr("", "name") == "Shelf"
	})[0]
	if name := shelf.Resolve("foo"); name.Space != "http://example.org/other" {
		t.Errorf("default namespace at <%s>: got %q", shelf.Name.Local, name.Space)
	}
	if _, ok := shelf.ResolveNS("nope:foo"); ok {
		t.Error("unbound prefix reported as resolved")
	}
	if name, ok := shelf.ResolveNS("xml:lang"); !ok || name.Space != XMLNamespace {
		t.Errorf("xml:lang resolved to %v, %v", name, ok)
	}
	if got := shelf.ResolveDefault("foo", "urn:x"); got != (xml.Name{Space: "urn:x", Local: "foo"}) {
		t.Errorf("ResolveDefault returned %v", got)
	}
	if got := shelf.Prefix(xml.Name{Space: xsdNS, Local: "string"}); got != "xs:string" {
		t.Errorf("Prefix returned %q", got)
	}
	if ns := shelf.Namespaces(); ns["tns"] != "http://example.org/library" || ns[""] != "http://example.org/other" {
		t.Errorf("Namespaces returned %v", ns)
	}
}

func TestSplitQName(t *testing.T) {
	tests := []struct {
		in, prefix, local string
	}{
		{"xs:string", "xs", "string"},
		{"string", "", "string"},
		{"a:b:c", "a", "b:c"},
	}
	for _, tt := range tests {
		prefix, local := SplitQName(tt.in)
		if prefix != tt.prefix || local != tt.local {
			t.Errorf("SplitQName(%q) = %q, %q", tt.in, prefix, local)
		}
	}
}

func TestUnmarshal(t *testing.T) {
	root := parseDoc(t, schemaDoc)
	var doc struct {
		Text string `xml:"http://www.w3.org/2001/XMLSchema documentation"`
	}
	ann := root.Search(xsdNS, "annotation")
	if len(ann) != 1 {
		t.Fatalf("found %d annotations", len(ann))
	}
	if err := ann[0].Unmarshal(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.Text != "Library types" {
		t.Errorf("got documentation %q", doc.Text)
	}
}

func TestSetAttr(t *testing.T) {
	root := parseDoc(t, []byte(`<a x="1"/>`))
	root.SetAttr("", "x", "2")
	root.SetAttr("", "y", "3")
	if root.Attr("", "x") != "2" || root.Attr("", "y") != "3" {
		t.Errorf("attributes after SetAttr: %v", root.StartElement.Attr)
	}
}

func TestLatin1(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<a><b>caf\xe9</b><c/></a>")
	root := parseDoc(t, doc)
	if len(root.Children) != 2 {
		t.Fatalf("got %d children", len(root.Children))
	}
	if got := string(root.Children[0].Content); got != "café" {
		t.Errorf("content of <b> is %q", got)
	}
}

func TestDeepNesting(t *testing.T) {
	doc := strings.Repeat("<a>", recursionLimit+2) + strings.Repeat("</a>", recursionLimit+2)
	if _, err := Parse([]byte(doc)); err != errDeepXML {
		t.Errorf("got error %v, wanted %v", err, errDeepXML)
	}
}

func TestMismatchedTag(t *testing.T) {
	if _, err := Parse([]byte(`<a><b></a>`)); err == nil {
		t.Error("expected an error for mismatched tags")
	}
}

func TestCopy(t *testing.T) {
	root := parseDoc(t, []byte(`<a><b x="1"><c/></b></a>`))
	dup := root.Children[0].Copy()
	dup.SetAttr("", "x", "2")
	dup.Children = nil
	if root.Children[0].Attr("", "x") != "1" {
		t.Error("changing the copy's attributes changed the original")
	}
	if len(root.Children[0].Children) != 1 {
		t.Error("changing the copy's children changed the original")
	}
}
