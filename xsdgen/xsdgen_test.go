package xsdgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xsdclass/xsd"
)

type testLogger struct {
	t   *testing.T
	mu  sync.Mutex
	buf strings.Builder
}

func (l *testLogger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, v...)
	l.t.Log(msg)
	l.buf.WriteString(msg + "\n")
}

func (l *testLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func testConfig(t *testing.T, opts ...Option) (*Config, string) {
	t.Helper()
	dir := t.TempDir()
	var cfg Config
	cfg.Option(DefaultOptions...)
	cfg.Option(OutputDir(dir), LogOutput(&testLogger{t: t}), LogLevel(5))
	cfg.Option(opts...)
	return &cfg, dir
}

func generate(t *testing.T, file string, opts ...Option) (string, []string) {
	t.Helper()
	cfg, dir := testConfig(t, opts...)
	files, err := cfg.GenerateFiles(file)
	require.NoError(t, err)
	return dir, files
}

func readFile(t *testing.T, path ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(path...))
	require.NoError(t, err)
	return string(data)
}

func TestTDFloat(t *testing.T) {
	dir, files := generate(t, "testdata/tdfloat.xsd", NamespacePrefix("Acme"))
	path := filepath.Join(dir, "SimpleType", "ST_TDFloat.php")
	require.Contains(t, files, path)

	out := readFile(t, path)
	require.True(t, strings.HasPrefix(out, "<?php\ndeclare(strict_types=1);\n"))
	require.Contains(t, out, "namespace Acme\\SimpleType;\n")
	require.Contains(t, out, "use Acme\\Exception\\ValidationException;\n")
	require.Contains(t, out, "use Acme\\Stream\\XmlSerializable;\n")
	require.Contains(t, out, "class ST_TDFloat implements XmlSerializable\n")
	require.Contains(t, out, "public function __construct(float $value)")
	require.Contains(t, out, "$decimals = ((int) $this->value !== $this->value) ? (strlen((string) $this->value) - strpos((string) $this->value, '.')) - 1 : 0;")
	require.Contains(t, out, "if (4 !== $decimals) {")
	require.Contains(t, out, "throw new ValidationException('value can only contain 4 decimal digits');")
	require.Contains(t, out, "public function getValue(): float")
	require.Contains(t, out, "$stream->write('<' . $tagName);")
	require.Contains(t, out, "$stream->write(htmlspecialchars((string) $this->value, ENT_XML1 | ENT_QUOTES));")
	require.NotContains(t, out, "setValue")

	for _, f := range []string{"Exception/ValidationException.php", "Stream/OutputStream.php", "Stream/XmlSerializable.php"} {
		require.FileExists(t, filepath.Join(dir, filepath.FromSlash(f)))
	}
	require.Contains(t, readFile(t, dir, "Stream", "XmlSerializable.php"),
		"public function writeXML(OutputStream $stream, string $tagName);")
	require.Contains(t, readFile(t, dir, "Exception", "ValidationException.php"),
		"namespace Acme\\Exception;\n")
}

func TestStrictTypes(t *testing.T) {
	dir, _ := generate(t, "testdata/tdfloat.xsd", StrictTypes(false))
	require.NotContains(t, readFile(t, dir, "SimpleType", "ST_TDFloat.php"), "declare(")
	require.NotContains(t, readFile(t, dir, "Stream", "OutputStream.php"), "declare(")
}

func TestSimpleTypes(t *testing.T) {
	dir, _ := generate(t, "testdata/library.xsd", NamespacePrefix("Library"))

	grade := readFile(t, dir, "SimpleType", "Grade.php")
	require.Contains(t, grade, " * Reader rating.\n")
	require.Contains(t, grade, "public function __construct(int $value)")
	require.Contains(t, grade, "if ($this->value < 1) {")
	require.Contains(t, grade, "if ($this->value > 5) {")

	format := readFile(t, dir, "SimpleType", "Format.php")
	require.Contains(t, format, "    public const VALUE_HARDCOVER = 'hardcover';\n")
	require.Contains(t, format, "    public const VALUE_EBOOK = 'ebook';\n")
	require.Contains(t, format, "self::VALUE_PAPERBACK")

	short := readFile(t, dir, "SimpleType", "ShortFormat.php")
	require.Contains(t, short, "public const VALUE_PAPERBACK = 'paperback';")
	require.Contains(t, short, "if (5 < mb_strlen((string) $this->value)) {")

	tags := readFile(t, dir, "SimpleType", "Tags.php")
	require.Contains(t, tags, "public function __construct(array $value)")
	require.Contains(t, tags, "foreach ($this->value as $item) {")

	code := readFile(t, dir, "SimpleType", "Code.php")
	require.Contains(t, code, "public function __construct(string $value)")
}

func TestComplexTypes(t *testing.T) {
	dir, _ := generate(t, "testdata/library.xsd", NamespacePrefix("Library"))

	item := readFile(t, dir, "ComplexType", "Item.php")
	require.Contains(t, item, "abstract class Item implements XmlSerializable\n")
	require.Contains(t, item, "use Library\\Xsd\\DateTime;\n")

	book := readFile(t, dir, "ComplexType", "Book.php")
	require.Contains(t, book, "class Book extends Item implements XmlSerializable\n")
	require.Contains(t, book, "use Library\\SimpleType\\Grade;\n")
	require.Contains(t, book, "use Library\\ValueObject\\StringCollection;\n")
	require.Contains(t, book, "protected $authors;")
	require.Contains(t, book, "int $grade = 3")
	require.Contains(t, book, "$this->grade = new Grade($grade);")
	require.Contains(t, book, "?string $subtitle")
	require.Contains(t, book, "$stream->write(' created=\"' . htmlspecialchars((string) $this->created->getValue(), ENT_XML1 | ENT_QUOTES) . '\"');")
	require.Contains(t, book, "        if (null !== $this->lang) {\n"+
		"            $stream->write(' xml:lang=\"' . htmlspecialchars((string) $this->lang, ENT_XML1 | ENT_QUOTES) . '\"');\n"+
		"        }\n")
	require.Contains(t, book, "$this->authors->writeXML($stream, 'author');")
	require.Contains(t, book, "$this->grade->writeXML($stream, 'grade');")
	require.Contains(t, book, "        if (null !== $this->isbn) {\n"+
		"            $stream->write('<isbn>' . htmlspecialchars((string) $this->isbn, ENT_XML1 | ENT_QUOTES) . '</isbn>');\n"+
		"        }\n")
	require.Contains(t, book, "$stream->write('</' . $tagName . '>');")

	dims := readFile(t, dir, "ComplexType", "Dimensions.php")
	require.Contains(t, dims, "use Library\\SimpleType\\Unit;\n")
	require.Contains(t, dims, "string $unit = 'cm'")
	require.Contains(t, dims, "$this->unit = new Unit($unit);")
	require.Contains(t, dims, "$stream->write('/>');")

	price := readFile(t, dir, "ComplexType", "Price.php")
	require.Contains(t, price, "public function __construct(float $value, string $currency)")

	catalog := readFile(t, dir, "ComplexType", "Catalog.php")
	require.Contains(t, catalog, "?ShelfCollection $shelves")
	require.Contains(t, catalog, "$this->shelves->writeXML($stream, 'shelf');")
}

func TestCollections(t *testing.T) {
	dir, _ := generate(t, "testdata/library.xsd", NamespacePrefix("Library"))

	authors := readFile(t, dir, "ValueObject", "StringCollection.php")
	require.Contains(t, authors, "namespace Library\\ValueObject;\n")
	require.Contains(t, authors, "use Library\\Exception\\ValidationException;\n")
	require.Contains(t, authors, "$this->items = [];")
	require.Contains(t, authors, "    public function add(string $item)\n    {\n"+
		"        if (count($this->items) >= 3) {\n"+
		"            throw new ValidationException('collection can have at most 3 item(s)');\n"+
		"        }\n"+
		"        $this->items[] = $item;\n"+
		"    }\n")
	require.Contains(t, authors, "if (1 > count($this->items)) {")
	require.Contains(t, authors, "collection must have at least 1 item(s)")
	require.Contains(t, authors, "return $this->items;")
	require.NotContains(t, authors, "getItems")
	require.NotContains(t, authors, "setItems")

	books := readFile(t, dir, "ValueObject", "BookCollection.php")
	require.Contains(t, books, "use Library\\ComplexType\\Book;\n")
	require.Contains(t, books, "public function add(Book $item)")
	require.Contains(t, books, "$item->writeXML($stream, $tagName);")
	require.NotContains(t, books, "at most")

	shelves := readFile(t, dir, "ValueObject", "ShelfCollection.php")
	require.NotContains(t, shelves, "at least")
}

func TestBuiltins(t *testing.T) {
	dir, files := generate(t, "testdata/library.xsd", NamespacePrefix("Library"))
	for _, f := range []string{"XsdType", "AbstractPatternType", "DateTime"} {
		require.Contains(t, files, filepath.Join(dir, "Xsd", f+".php"))
	}
	require.NoFileExists(t, filepath.Join(dir, "Xsd", "AbstractIntegerType.php"))

	dt := readFile(t, dir, "Xsd", "DateTime.php")
	require.Contains(t, dt, "namespace Library\\Xsd;\n")
	require.Contains(t, dt, "class DateTime extends AbstractPatternType\n")
	require.Contains(t, dt, "const LABEL = 'dateTime';")
	require.Contains(t, dt, "const FORMAT = 'YYYY-MM-DDThh:mm:ss';")

	// Existing built-in files are kept.
	path := filepath.Join(dir, "Xsd", "DateTime.php")
	require.NoError(t, os.WriteFile(path, []byte("custom"), 0666))
	var cfg Config
	cfg.Option(DefaultOptions...)
	cfg.Option(NamespacePrefix("Library"), OutputDir(dir))
	files, err := cfg.GenerateFiles("testdata/library.xsd")
	require.NoError(t, err)
	require.NotContains(t, files, path)
	require.Contains(t, files, filepath.Join(dir, "ComplexType", "Book.php"))
	require.Equal(t, "custom", readFile(t, path))
}

func TestIntegerBuiltin(t *testing.T) {
	schema := filepath.Join(t.TempDir(), "counter.xsd")
	require.NoError(t, os.WriteFile(schema, []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:complexType name="Counter">
    <xs:sequence>
      <xs:element name="count" type="xs:unsignedByte" default="7"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`), 0666))
	dir, _ := generate(t, schema)

	counter := readFile(t, dir, "ComplexType", "Counter.php")
	require.Contains(t, counter, "use Schema\\Xsd\\UnsignedByte;\n")
	require.Contains(t, counter, "int $count = 7")
	require.Contains(t, counter, "$this->count = new UnsignedByte($count);")

	ub := readFile(t, dir, "Xsd", "UnsignedByte.php")
	require.Contains(t, ub, "class UnsignedByte extends AbstractIntegerType\n")
	require.Contains(t, ub, "return $value >= 0 && $value <= 255;")
	require.FileExists(t, filepath.Join(dir, "Xsd", "AbstractIntegerType.php"))
}

func TestDerivationChain(t *testing.T) {
	logger := &testLogger{t: t}
	dir, _ := generate(t, "testdata/chain.xsd", LogOutput(logger))

	even := readFile(t, dir, "SimpleType", "Even.php")
	require.Contains(t, even, "public function __construct(int $value)")
	require.Contains(t, even, "if ($this->value < 0) {")
	require.Contains(t, even, "if ($this->value > 100) {")
	require.Contains(t, even, `preg_match('/^(?:\\d*[02468])$/u', (string) $this->value)`)
	require.Contains(t, logger.String(), "ignoring unknown facet assertion")

	percent := readFile(t, dir, "SimpleType", "Percent.php")
	require.NotContains(t, percent, "preg_match")
}

func TestPHP70(t *testing.T) {
	dir, _ := generate(t, "testdata/library.xsd", Target("php7.0"))
	book := readFile(t, dir, "ComplexType", "Book.php")
	require.Contains(t, book, "string $subtitle = null")
	require.Contains(t, readFile(t, dir, "SimpleType", "Format.php"), "    const VALUE_EBOOK = 'ebook';\n")
}

func TestTypeNotFound(t *testing.T) {
	schema := filepath.Join(t.TempDir(), "broken.xsd")
	require.NoError(t, os.WriteFile(schema, []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
  xmlns:tns="urn:broken" targetNamespace="urn:broken">
  <xs:complexType name="Order">
    <xs:sequence>
      <xs:element name="status" type="tns:Missing"/>
    </xs:sequence>
  </xs:complexType>
  <xs:simpleType name="Status">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
</xs:schema>`), 0666))

	cfg, dir := testConfig(t)
	_, err := cfg.GenerateFiles(schema)
	require.Error(t, err)
	var notFound *TypeNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "tns:Missing", notFound.Ref)

	require.FileExists(t, filepath.Join(dir, "SimpleType", "Status.php"))
	require.NoFileExists(t, filepath.Join(dir, "ComplexType", "Order.php"))
}

func TestNamespaceFilter(t *testing.T) {
	dir, files := generate(t, "testdata/library.xsd", Namespaces("urn:other"))
	require.NoFileExists(t, filepath.Join(dir, "ComplexType", "Book.php"))
	require.Len(t, files, 3)
}

func TestReplace(t *testing.T) {
	dir, _ := generate(t, "testdata/tdfloat.xsd", Replace("^ST_", ""))
	out := readFile(t, dir, "SimpleType", "TDFloat.php")
	require.Contains(t, out, "class TDFloat implements XmlSerializable")
}

func TestGoTarget(t *testing.T) {
	dir, files := generate(t, "testdata/library.xsd", Target("go"), PackageName("library"))
	for _, f := range []string{
		"xml_serializable.go", "validation_exception.go", "output_stream.go", "support.go",
		"grade.go", "book.go", "string_collection.go", "date_time.go", "abstract_pattern_type.go",
	} {
		require.Contains(t, files, filepath.Join(dir, f))
	}

	book := readFile(t, dir, "book.go")
	require.Contains(t, book, "package library\n")
	require.Contains(t, book, "\tItem\n")
	require.Contains(t, book, "var _ XmlSerializable = (*Book)(nil)")
	require.Contains(t, book, "func (t *Book) WriteXML(stream *OutputStream, tagName string)")
	require.Contains(t, book, "if t.subtitle != nil {")

	support := readFile(t, dir, "support.go")
	require.Contains(t, support, "strconv.FormatFloat(v, 'f', -1, 64)")

	grade := readFile(t, dir, "grade.go")
	require.Contains(t, grade, "func NewGrade(value int64) (*Grade, error) {")

	dt := readFile(t, dir, "date_time.go")
	require.Contains(t, dt, "type DateTime struct {")
	require.Contains(t, dt, "func NewDateTime(v string) (*DateTime, error) {")

	coll := readFile(t, dir, "string_collection.go")
	require.Contains(t, coll, "func (t *StringCollection) Add(item string) error {")
}

func TestUnknownTarget(t *testing.T) {
	cfg, _ := testConfig(t, Target("cobol"))
	_, err := cfg.GenerateFiles("testdata/tdfloat.xsd")
	require.Error(t, err)
}

func TestOutputDirError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0666))

	cfg, _ := testConfig(t, OutputDir(file))
	_, err := cfg.GenerateFiles("testdata/tdfloat.xsd")
	var fsErr *FileSystemError
	require.True(t, errors.As(err, &fsErr), "got %v", err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xsdclass.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
namespace_prefix = "Acme\\Schema"
output_dir = "generated"
target = "php7.0"
strict_types = false
namespaces = ["urn:a", "urn:b"]
replace = ["^ST_ -> "]
`), 0666))

	opts, err := LoadConfigFile(path)
	require.NoError(t, err)
	var cfg Config
	cfg.Option(DefaultOptions...)
	cfg.Option(opts...)
	require.Equal(t, `Acme\Schema`, cfg.prefix)
	require.Equal(t, "generated", cfg.outputDir)
	require.Equal(t, "php7.0", cfg.target)
	require.False(t, cfg.strictTypes)
	require.Equal(t, []string{"urn:a", "urn:b"}, cfg.namespaces)
	require.Equal(t, "TDFloat", cfg.transformName("ST_TDFloat"))
}

func TestConfigFileUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xsdclass.toml")
	require.NoError(t, os.WriteFile(path, []byte("colour = \"blue\"\n"), 0666))
	_, err := LoadConfigFile(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "colour")
}

func TestOptionRevert(t *testing.T) {
	var cfg Config
	cfg.Option(DefaultOptions...)
	prev := cfg.Option(Target("go"))
	require.Equal(t, "go", cfg.target)
	cfg.Option(prev)
	require.Equal(t, "php7.1", cfg.target)
}

func TestDump(t *testing.T) {
	def, err := xsd.LoadFiles("testdata/chain.xsd")
	require.NoError(t, err)
	var buf strings.Builder
	require.NoError(t, Dump(&buf, def))
	require.Contains(t, buf.String(), "Type: Even Base Type: tns:Percent\n")
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	var cfg Config
	cfg.Option(DefaultOptions...)
	err := cfg.GenCLI("generate", "-o", dir, "--prefix", "Acme", "--strict-types=false", "-r", "^ST_ -> ", "testdata/tdfloat.xsd")
	require.NoError(t, err)
	out := readFile(t, dir, "SimpleType", "TDFloat.php")
	require.Contains(t, out, "namespace Acme\\SimpleType;")
	require.NotContains(t, out, "declare(")

	var buf strings.Builder
	cmd := cfg.Command()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"dump", "testdata/tdfloat.xsd"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "Type: ST_TDFloat Base Type: xs:decimal\n", buf.String())

	require.Error(t, cfg.GenCLI("generate"))
}
