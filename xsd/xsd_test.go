package xsd

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xsdclass/internal/testutil"
)

const libNS = "http://example.org/library"

func parseFile(t *testing.T, name string) *Definition {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	def, err := Parse(data)
	require.NoError(t, err)
	return def
}

func complexType(t *testing.T, def *Definition, name string) *ComplexType {
	t.Helper()
	c, ok := def.FindType(name, "").(*ComplexType)
	require.True(t, ok, "%s is not a complex type", name)
	return c
}

func simpleType(t *testing.T, def *Definition, name string) *SimpleType {
	t.Helper()
	s, ok := def.FindType(name, "").(*SimpleType)
	require.True(t, ok, "%s is not a simple type", name)
	return s
}

func TestParseAll(t *testing.T) {
	files, err := filepath.Glob("testdata/*.xsd")
	require.NoError(t, err)
	for _, file := range files {
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		def, err := Parse(data)
		require.NoError(t, err, file)
		for _, s := range def.Schemas {
			t.Logf("%s: %s", file, s)
		}
	}
}

func TestTypeOrder(t *testing.T) {
	def := parseFile(t, "library.xsd")
	var names []string
	for _, typ := range def.Types() {
		names = append(names, XMLName(typ).Local)
	}
	require.Equal(t, []string{
		"Grade", "Format", "ShortFormat", "Tags", "Code", "Item",
		"unit", "dimensions", "Book", "Price", "Shelf", "catalog",
	}, names)
}

func TestSimpleTypes(t *testing.T) {
	def := parseFile(t, "library.xsd")

	grade := simpleType(t, def, "Grade")
	require.Equal(t, "Reader rating.", grade.Doc)
	require.Equal(t, "xs:integer", grade.Restriction.Base)
	require.Equal(t, []Facet{
		{Kind: FacetMinInclusive, Name: "minInclusive", Value: "1"},
		{Kind: FacetMaxInclusive, Name: "maxInclusive", Value: "5"},
	}, grade.Restriction.Facets)

	format := simpleType(t, def, "Format")
	require.Len(t, format.Restriction.Facets, 3)
	for _, f := range format.Restriction.Facets {
		require.Equal(t, FacetEnumeration, f.Kind)
	}

	tags := simpleType(t, def, "Tags")
	require.True(t, tags.List)
	require.Equal(t, "xs:string", tags.ItemType)

	code := simpleType(t, def, "Code")
	require.Equal(t, []string{"xs:int", "lib:Format"}, code.Union)
}

func TestGroups(t *testing.T) {
	def := parseFile(t, "library.xsd")
	item := complexType(t, def, "Item")
	require.True(t, item.Abstract)
	require.Len(t, item.Elements, 2)
	require.Equal(t, "title", item.Elements[0].Name.Local)
	require.Equal(t, 1, item.Elements[0].MinOccurs)
	require.Equal(t, 0, item.Elements[1].MinOccurs)

	// the prohibited attribute is dropped
	require.Len(t, item.Attributes, 1)
	require.Equal(t, "created", item.Attributes[0].Name.Local)
	require.True(t, item.Attributes[0].Required)
}

func TestComplexContent(t *testing.T) {
	def := parseFile(t, "library.xsd")
	book := complexType(t, def, "Book")
	require.True(t, book.Extends)
	require.Equal(t, "lib:Item", book.Base)

	byName := make(map[string]Element)
	for _, el := range book.Elements {
		byName[el.Name.Local] = el
	}
	require.Len(t, byName, 5, "wildcards should be skipped")
	author := byName["author"]
	require.Equal(t, 3, author.MaxOccurs)
	require.True(t, author.Plural())
	require.Equal(t, 0, byName["isbn"].MinOccurs, "choice members are optional")
	require.Equal(t, 0, byName["issn"].MinOccurs)
	require.Equal(t, "3", byName["grade"].Default)
	require.Equal(t, "dimensions", byName["dimensions"].Type)

	dims := complexType(t, def, "dimensions")
	require.True(t, dims.Anonymous)
	require.Len(t, dims.Attributes, 1)
	require.Equal(t, "unit", dims.Attributes[0].Type)
	require.Equal(t, "cm", dims.Attributes[0].Default)

	require.Len(t, book.Attributes, 2)
	lang := book.Attributes[1]
	require.Equal(t, "xml:lang", lang.Ref)
	require.Equal(t, "lang", lang.Name.Local)
	require.Equal(t, XMLNamespace, lang.Name.Space)
}

func TestSimpleContent(t *testing.T) {
	def := parseFile(t, "library.xsd")
	price := complexType(t, def, "Price")
	require.True(t, price.SimpleContent)
	require.True(t, price.Extends)
	require.Equal(t, "xs:decimal", price.Base)
	require.Len(t, price.Attributes, 1)
	require.Empty(t, price.Elements)
}

func TestMixedAndPlural(t *testing.T) {
	def := parseFile(t, "library.xsd")
	shelf := complexType(t, def, "Shelf")
	require.True(t, shelf.Mixed)
	require.Len(t, shelf.Elements, 1)
	require.Equal(t, Unbounded, shelf.Elements[0].MaxOccurs)
}

func TestTopLevelElements(t *testing.T) {
	def := parseFile(t, "library.xsd")
	shelf := def.FindElement("shelf", libNS)
	require.NotNil(t, shelf)
	require.Equal(t, "lib:Shelf", shelf.Type)
	require.Nil(t, def.FindElement("shelf", "urn:other"))

	catalog := def.FindElement("catalog", "")
	require.NotNil(t, catalog)
	require.Equal(t, "catalog", catalog.Type)
	ct := complexType(t, def, "catalog")
	require.False(t, ct.Anonymous)
	require.Len(t, ct.Elements, 1)
	ref := ct.Elements[0]
	require.Equal(t, "lib:shelf", ref.Ref)
	require.Equal(t, "shelf", ref.Name.Local)
	require.Equal(t, 0, ref.MinOccurs)
}

func TestAliases(t *testing.T) {
	def := parseFile(t, "library.xsd")
	ns, ok := def.NamespaceFromAlias("lib")
	require.True(t, ok)
	require.Equal(t, libNS, ns)
	ns, ok = def.NamespaceFromAlias("xml")
	require.True(t, ok)
	require.Equal(t, XMLNamespace, ns)
	_, ok = def.NamespaceFromAlias("nope")
	require.False(t, ok)
	require.Equal(t, "Types describing a lending library.", def.Schemas[0].Doc)
}

func TestRestrictionChain(t *testing.T) {
	def := parseFile(t, "chain.xsd")
	percent := simpleType(t, def, "Percent")
	r := percent.Restriction
	require.Empty(t, r.Base)
	require.Len(t, r.SimpleTypes, 1)
	require.Equal(t, "xs:integer", r.SimpleTypes[0].Restriction.Base)
	require.Equal(t, []Facet{{Kind: FacetMaxInclusive, Name: "maxInclusive", Value: "100"}}, r.Facets)

	even := simpleType(t, def, "Even")
	require.Len(t, even.Restriction.Facets, 2)
	require.Equal(t, FacetPattern, even.Restriction.Facets[0].Kind)
	require.Equal(t, FacetUnknown, even.Restriction.Facets[1].Kind)
	require.Equal(t, "assertion", even.Restriction.Facets[1].Name)
}

func TestFacetKind(t *testing.T) {
	for k := FacetMinExclusive; k <= FacetPattern; k++ {
		require.Equal(t, k, ParseFacetKind(k.String()))
	}
	require.Equal(t, FacetUnknown, ParseFacetKind("assertion"))
}

func TestBuiltin(t *testing.T) {
	b, err := ParseBuiltin("unsignedByte")
	require.NoError(t, err)
	require.Equal(t, UnsignedByte, b)
	require.Equal(t, xml.Name{Space: Namespace, Local: "unsignedByte"}, b.Name())
	require.Equal(t, "NCName", NCName.Name().Local)
	_, err = ParseBuiltin("notAType")
	require.Error(t, err)
}

func TestImports(t *testing.T) {
	data, err := os.ReadFile("testdata/main.xsd")
	require.NoError(t, err)
	refs, err := Imports(data)
	require.NoError(t, err)
	require.Equal(t, []Ref{
		{Namespace: "urn:common", Location: "common/common.xsd"},
		{Namespace: "urn:main", Location: "common/chameleon.xsd", Include: true},
	}, refs)
}

func TestLoadFiles(t *testing.T) {
	def, err := LoadFiles("testdata/main.xsd")
	require.NoError(t, err)
	require.Len(t, def.Schemas, 2)

	// chameleon include takes on the including namespace
	note, ok := def.FindType("Note", "urn:main").(*SimpleType)
	require.True(t, ok)
	require.Equal(t, "urn:main", note.Name.Space)

	id, ok := def.FindType("Identifier", "urn:common").(*SimpleType)
	require.True(t, ok)
	require.Equal(t, "8", id.Restriction.Facets[0].Value)
}

func TestLoadRemote(t *testing.T) {
	const base = "http://example.org/schema/"
	main, err := os.ReadFile("testdata/main.xsd")
	require.NoError(t, err)
	common, err := os.ReadFile("testdata/common/common.xsd")
	require.NoError(t, err)
	chameleon, err := os.ReadFile("testdata/common/chameleon.xsd")
	require.NoError(t, err)

	client := testutil.FakeClient(map[string][]byte{
		base + "main.xsd":             main,
		base + "common/common.xsd":    common,
		base + "common/chameleon.xsd": chameleon,
	})
	l := Loader{Client: client}
	def, err := l.Load(base+"main.xsd", base+"main.xsd")
	require.NoError(t, err)
	require.NotNil(t, def.FindType("Order", "urn:main"))
	require.Equal(t, []string{
		base + "main.xsd",
		base + "common/common.xsd",
		base + "common/chameleon.xsd",
	}, testutil.RequestLog(client))
}

func TestLoadNotFound(t *testing.T) {
	l := Loader{Client: testutil.FakeClient(nil)}
	_, err := l.Load("http://example.org/missing.xsd")
	require.Error(t, err)
}

func TestLoadDepth(t *testing.T) {
	const self = "http://example.org/loop/a.xsd"
	pages := make(map[string][]byte)
	// a.xsd includes b.xsd which includes c.xsd ...
	for i := 'a'; i < 'f'; i++ {
		doc := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">` +
			`<xs:include schemaLocation="` + string(i+1) + `.xsd"/></xs:schema>`
		pages["http://example.org/loop/"+string(i)+".xsd"] = []byte(doc)
	}
	l := Loader{Client: testutil.FakeClient(pages), MaxDepth: 2}
	_, err := l.Load(self)
	require.ErrorContains(t, err, "deeper than 2")
}

func TestUnboundGroupPrefix(t *testing.T) {
	a := []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:a">
	  <xs:group name="names"><xs:sequence><xs:element name="fromA" type="xs:string"/></xs:sequence></xs:group>
	</xs:schema>`)
	b := []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:b">
	  <xs:group name="names"><xs:sequence><xs:element name="fromB" type="xs:string"/></xs:sequence></xs:group>
	  <xs:complexType name="Person"><xs:group ref="nope:names"/></xs:complexType>
	</xs:schema>`)
	for i := 0; i < 20; i++ {
		def, err := Parse(b, a)
		require.NoError(t, err)
		person := complexType(t, def, "Person")
		require.Len(t, person.Elements, 1)
		require.Equal(t, "fromA", person.Elements[0].Name.Local)
	}
}

func TestUnknownGroup(t *testing.T) {
	doc := []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
	  <xs:complexType name="T"><xs:group ref="missing"/></xs:complexType>
	</xs:schema>`)
	_, err := Parse(doc)
	require.ErrorContains(t, err, `could not find group "missing"`)
}

func TestBadOccurs(t *testing.T) {
	doc := []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
	  <xs:complexType name="T"><xs:sequence>
	    <xs:element name="e" type="xs:string" maxOccurs="many"/>
	  </xs:sequence></xs:complexType>
	</xs:schema>`)
	_, err := Parse(doc)
	require.ErrorContains(t, err, `invalid occurrence value "many"`)
}

func TestInlineNameCollision(t *testing.T) {
	doc := []byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
	  <xs:complexType name="item"/>
	  <xs:element name="item"><xs:complexType/></xs:element>
	</xs:schema>`)
	def, err := Parse(doc)
	require.NoError(t, err)
	require.Equal(t, "itemType", def.FindElement("item", "").Type)
}
