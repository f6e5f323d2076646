package xsdgen

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"io/fs"
	"os"
	"text/template"

	"github.com/iancoleman/strcase"

	"github.com/CognitoIQ/xsdclass/emit"
	"github.com/CognitoIQ/xsdclass/internal/dependency"
	"github.com/CognitoIQ/xsdclass/model"
	"github.com/CognitoIQ/xsdclass/xsd"
)

//go:embed templates
var embedded embed.FS

// A builtinTemplate describes a file generated from a template
// rather than from a schema type.
type builtinTemplate struct {
	// Template name, relative to the language directory.
	file string
	// Sub-namespace of the generated PHP class.
	sub  string
	deps []string
	// If set, the file is only generated for this language.
	only string

	// Type taken by the constructor.
	valueType string
	min, max  string
	pattern   string
	format    string
}

const tz = `(Z|[+-](0\d|1[0-4]):[0-5]\d)?`

const (
	patternYear  = `-?([1-9]\d{3,}|0\d{3})`
	patternMonth = `(0[1-9]|1[0-2])`
	patternDay   = `(0[1-9]|[12]\d|3[01])`
	patternTime  = `([01]\d|2[0-3]):[0-5]\d:[0-5]\d(\.\d+)?`
)

func integerType(min, max string) builtinTemplate {
	return builtinTemplate{
		file:      "integer",
		sub:       nsXsd,
		deps:      []string{"AbstractIntegerType"},
		valueType: model.TypeInt,
		min:       min,
		max:       max,
	}
}

func patternType(pattern, format string) builtinTemplate {
	return builtinTemplate{
		file:      "pattern",
		sub:       nsXsd,
		deps:      []string{"AbstractPatternType"},
		valueType: model.TypeString,
		pattern:   pattern,
		format:    format,
	}
}

var builtinTemplates = map[string]builtinTemplate{
	model.ValidationFailure: {file: "validation_exception", sub: nsException},
	streamName:              {file: "output_stream", sub: nsStream},
	"Support":               {file: "support", only: "go"},

	"XsdType":             {file: "xsd_type", sub: nsXsd, deps: []string{streamName}},
	"AbstractIntegerType": {file: "abstract_integer", sub: nsXsd, deps: []string{"XsdType", model.ValidationFailure, "Support"}},
	"AbstractPatternType": {file: "abstract_pattern", sub: nsXsd, deps: []string{"XsdType", model.ValidationFailure, "Support"}},

	"Byte":               integerType("-128", "127"),
	"UnsignedByte":       integerType("0", "255"),
	"UnsignedShort":      integerType("0", "65535"),
	"UnsignedInt":        integerType("0", "4294967295"),
	"UnsignedLong":       integerType("0", ""),
	"PositiveInteger":    integerType("1", ""),
	"NonNegativeInteger": integerType("0", ""),
	"NegativeInteger":    integerType("", "-1"),
	"NonPositiveInteger": integerType("", "0"),

	"GYear":        patternType(patternYear+tz, "YYYY"),
	"GMonth":       patternType("--"+patternMonth+tz, "--MM"),
	"GDay":         patternType("---"+patternDay+tz, "---DD"),
	"GYearMonth":   patternType(patternYear+"-"+patternMonth+tz, "YYYY-MM"),
	"GMonthDay":    patternType("--"+patternMonth+"-"+patternDay+tz, "--MM-DD"),
	"Date":         patternType(patternYear+"-"+patternMonth+"-"+patternDay+tz, "YYYY-MM-DD"),
	"Time":         patternType(patternTime+tz, "hh:mm:ss"),
	"DateTime":     patternType(patternYear+"-"+patternMonth+"-"+patternDay+"T"+patternTime+tz, "YYYY-MM-DDThh:mm:ss"),
	"Duration":     patternType(`-?P(\d+Y)?(\d+M)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?`, "PnYnMnDTnHnMnS"),
	"HexBinary":    patternType(`([0-9a-fA-F]{2})*`, "hexadecimal octets"),
	"Base64Binary": patternType(`([A-Za-z0-9+/]{4})*([A-Za-z0-9+/]{2}==|[A-Za-z0-9+/]{3}=)?`, "base64"),
}

// The values a template is executed with.
type templateData struct {
	Name      string
	Label     string
	Namespace string
	Package   string

	StrictTypes  bool
	Exception    string
	Stream       string
	Serializable string
	XsdType      string

	Min, Max string
	Pattern  string
	Format   string
}

func builtinClass(b xsd.Builtin) string { return b.String() }

// materialize generates the class for a built-in type that is not
// mapped to a primitive, along with the classes it depends on. It
// returns the class name, or "" if there is no template for b.
func (r *run) materialize(b xsd.Builtin) (string, error) {
	name := builtinClass(b)
	if _, ok := builtinTemplates[name]; !ok {
		return "", nil
	}
	return name, r.generateBuiltins(name)
}

// generateBuiltins renders the named templates, dependencies first.
// Each template is rendered at most once per run.
func (r *run) generateBuiltins(names ...string) error {
	var (
		graph dependency.Graph
		seen  = make(map[string]bool)
		add   func(string)
	)
	add = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		var deps []string
		for _, dep := range builtinTemplates[name].deps {
			if r.usable(dep) {
				deps = append(deps, dep)
			}
		}
		graph.Add(name, deps...)
		for _, dep := range deps {
			add(dep)
		}
	}
	for _, name := range names {
		if r.usable(name) {
			add(name)
		}
	}

	var errs errorList
	graph.Flatten(func(name string) {
		if r.builtins[name] {
			return
		}
		r.builtins[name] = true
		if err := r.render(name); err != nil {
			errs = append(errs, err)
		}
	})
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *run) usable(name string) bool {
	tmpl, ok := builtinTemplates[name]
	return ok && (tmpl.only == "" || tmpl.only == r.language)
}

func (r *run) templates() (fs.FS, error) {
	if r.templateDir != "" {
		return os.DirFS(r.templateDir), nil
	}
	return fs.Sub(embedded, "templates")
}

func (r *run) builtinPath(name string, tmpl builtinTemplate) string {
	if r.language == "php" {
		return r.pathFor(r.namespace(tmpl.sub), name+".php")
	}
	return r.pathFor("", strcase.ToSnake(name)+".go")
}

// render generates the file for a built-in template. Files that
// already exist are left alone.
func (r *run) render(name string) error {
	tmpl := builtinTemplates[name]
	path := r.builtinPath(name, tmpl)
	if _, err := os.Stat(path); err == nil {
		r.debugf("%s exists, skipping", path)
		return nil
	}

	fsys, err := r.templates()
	if err != nil {
		return &FileSystemError{Path: r.templateDir, Err: err}
	}
	file := r.language + "/" + tmpl.file + ".tmpl"
	src, err := fs.ReadFile(fsys, file)
	if err != nil {
		return &FileSystemError{Path: file, Err: err}
	}
	t, err := template.New(file).Funcs(template.FuncMap{
		"quote": func(s string) string { return emit.Quote(r.language, s) },
		"regexp": func(s string) string {
			return emit.QuotePattern(r.language, s)
		},
	}).Parse(string(src))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", file, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, r.templateData(name, tmpl)); err != nil {
		return fmt.Errorf("execute template %s: %w", file, err)
	}
	out := buf.Bytes()
	if r.language == "go" {
		if out, err = format.Source(out); err != nil {
			return fmt.Errorf("format %s: %w", name, err)
		}
	}
	return r.writeFile(path, out)
}

func (r *run) templateData(name string, tmpl builtinTemplate) templateData {
	label := name
	if b, err := xsd.ParseBuiltin(lowerFirst(name)); err == nil {
		label = b.Name().Local
	}
	pkg := r.pkgname
	if pkg == "" {
		pkg = "schema"
	}
	return templateData{
		Name:         name,
		Label:        label,
		Namespace:    r.namespace(tmpl.sub),
		Package:      pkg,
		StrictTypes:  r.strictTypes,
		Exception:    r.qualified(nsException, model.ValidationFailure),
		Stream:       r.qualified(nsStream, streamName),
		Serializable: r.qualified(nsStream, serializableName),
		XsdType:      r.qualified(nsXsd, "XsdType"),
		Min:          tmpl.min,
		Max:          tmpl.max,
		Pattern:      tmpl.pattern,
		Format:       tmpl.format,
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}

// support generates the files every generated class depends on.
func (r *run) support() error {
	if err := r.write(r.serializable()); err != nil {
		return err
	}
	return r.generateBuiltins(model.ValidationFailure, streamName, "Support")
}

// serializable describes the interface implemented by every
// generated class.
func (r *run) serializable() *model.Class {
	c := r.newClass(nsStream, serializableName)
	c.SetKind(model.KindInterface)
	c.SetComment(serializableName + " is implemented by every generated class.")
	c.AddMethod(r.writeXMLMethod())
	return c
}
