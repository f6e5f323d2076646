package xsdgen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CognitoIQ/xsdclass/emit"
	"github.com/CognitoIQ/xsdclass/internal/ordered"
	"github.com/CognitoIQ/xsdclass/model"
	"github.com/CognitoIQ/xsdclass/xsd"
)

// Sub-namespaces of the namespace prefix that generated PHP classes
// are declared in.
const (
	nsSimpleType  = "SimpleType"
	nsComplexType = "ComplexType"
	nsValueObject = "ValueObject"
	nsXsd         = "Xsd"
	nsException   = "Exception"
	nsStream      = "Stream"
)

const (
	serializableName = "XmlSerializable"
	streamName       = "OutputStream"
)

// Derivation chains longer than this are assumed to be circular.
const maxDepth = 32

// A run holds the state of a single Generate call.
type run struct {
	*Config
	def      *xsd.Definition
	emitter  emit.Emitter
	language string
	dir      string

	depth       int
	collections map[string]*collection
	builtins    map[string]bool
	dirs        map[string]bool
	files       []string
}

// GenerateFiles loads the schema files and generates classes for
// every type they declare.
func (cfg *Config) GenerateFiles(files ...string) ([]string, error) {
	def, err := xsd.LoadFiles(files...)
	if err != nil {
		return nil, err
	}
	return cfg.Generate(def)
}

// Generate writes one class per type declared in def, along with the
// collections, built-in types and support files those classes
// depend on. It returns the paths of the files written. Errors for
// individual types do not stop generation of the others; they are
// returned together once all types have been visited.
func (cfg *Config) Generate(def *xsd.Definition) ([]string, error) {
	target := cfg.target
	if target == "" {
		target = "php7.1"
	}
	e, err := emit.For(target, cfg.pkgname)
	if err != nil {
		return nil, err
	}
	r := &run{
		Config:      cfg,
		def:         def,
		emitter:     e,
		language:    e.Language(),
		collections: make(map[string]*collection),
		builtins:    make(map[string]bool),
		dirs:        make(map[string]bool),
	}
	if r.dir = cfg.outputDir; r.dir == "" {
		r.dir = "."
	}
	if err := r.support(); err != nil {
		return r.files, err
	}

	var errs errorList
	for _, t := range def.Types() {
		name := xsd.XMLName(t)
		if !cfg.filterNamespace(name.Space) {
			cfg.debugf("skipping type %s in namespace %q", name.Local, name.Space)
			continue
		}
		if err := r.generate(t); err != nil {
			cfg.errorf("%s: %v", name.Local, err)
			errs = append(errs, fmt.Errorf("generate %s: %w", name.Local, err))
		}
	}
	ordered.Range(r.collections, func(name string, c *collection) {
		cfg.debugf("%s holds %s items, occurs [%d, %d]", name, itemLabel(c.item), c.min, c.max)
	})
	if len(errs) > 0 {
		return r.files, errs
	}
	return r.files, nil
}

func (r *run) generate(t xsd.Type) error {
	var (
		c   *model.Class
		err error
	)
	switch t := t.(type) {
	case *xsd.SimpleType:
		c, err = r.simpleClass(t)
	case *xsd.ComplexType:
		c, err = r.complexClass(t)
	default:
		return fmt.Errorf("unexpected type %T", t)
	}
	if err != nil {
		return err
	}
	return r.write(c)
}

func (r *run) namespace(sub string) string {
	if r.prefix == "" {
		return sub
	}
	return r.prefix + `\` + sub
}

func (r *run) qualified(sub, name string) string {
	return r.namespace(sub) + `\` + name
}

// newClass returns an empty class in the given sub-namespace.
func (r *run) newClass(sub, name string) *model.Class {
	c := model.New(name).SetNamespace(r.namespace(sub))
	if r.strictTypes && r.language == "php" {
		c.AddDeclaration("strict_types=1")
	}
	return c
}

// use imports the class fqn into c, unless they share a namespace.
func use(c *model.Class, fqn string) {
	if fqn == "" {
		return
	}
	if i := strings.LastIndex(fqn, `\`); i >= 0 && fqn[:i] == c.Namespace() {
		return
	}
	c.Use(fqn)
}

// finish adds what every generated class needs once its members are
// known.
func (r *run) finish(c *model.Class) {
	use(c, r.qualified(nsStream, serializableName))
	use(c, r.qualified(nsStream, streamName))
	c.Implement(serializableName)
	if c.HasConstraints() || raises(c) {
		use(c, r.qualified(nsException, model.ValidationFailure))
	}
}

func raises(c *model.Class) bool {
	for _, m := range c.Methods() {
		if len(m.Throws) > 0 {
			return true
		}
	}
	return false
}

// path returns the file c is written to. PHP classes are laid out
// one directory per namespace segment below the prefix; Go files
// share a single package directory.
func (r *run) path(c *model.Class) string {
	return r.pathFor(c.Namespace(), r.emitter.FileName(c))
}

func (r *run) pathFor(namespace, file string) string {
	dir := r.dir
	if r.language == "php" {
		sub := strings.Trim(strings.TrimPrefix(namespace, r.prefix), `\`)
		if sub != "" {
			dir = filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(sub, `\`, "/")))
		}
	}
	return filepath.Join(dir, file)
}

func (r *run) write(c *model.Class) error {
	var buf bytes.Buffer
	if err := r.emitter.Emit(&buf, c); err != nil {
		return err
	}
	return r.writeFile(r.path(c), buf.Bytes())
}

func (r *run) writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if !r.dirs[dir] {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return &FileSystemError{Path: dir, Err: err}
		}
		r.dirs[dir] = true
	}
	if err := os.WriteFile(path, data, 0666); err != nil {
		return &FileSystemError{Path: path, Err: err}
	}
	r.logf("wrote %s", path)
	r.files = append(r.files, path)
	return nil
}
