package xsdgen

import (
	"regexp"
	"strings"
)

// A Config holds user-defined overrides and settings that are used
// when generating classes from an xsd document.
type Config struct {
	logger      Logger
	loglevel    int
	namespaces  []string
	prefix      string
	outputDir   string
	target      string
	strictTypes bool
	pkgname     string
	templateDir string
	// Transform for class names
	nameTransform func(string) string
}

func (cfg *Config) errorf(format string, v ...interface{}) {
	if cfg.logger != nil {
		cfg.logger.Printf(format, v...)
	}
}
func (cfg *Config) logf(format string, v ...interface{}) {
	if cfg.logger != nil && cfg.loglevel > 0 {
		cfg.logger.Printf(format, v...)
	}
}
func (cfg *Config) debugf(format string, v ...interface{}) {
	if cfg.logger != nil && cfg.loglevel > 3 {
		cfg.logger.Printf(format, v...)
	}
}

// An Option is used to customize a Config.
type Option func(*Config) Option

// DefaultOptions are the default options for class generation.
// They are usually applied before any user-supplied options.
var DefaultOptions = []Option{
	NamespacePrefix("Schema"),
	OutputDir("."),
	Target("php7.1"),
	StrictTypes(true),
	PackageName("schema"),
	Replace(`[^A-Za-z0-9_]`, "_"),
}

// The Option method is used to configure an existing configuration.
// The return value of the Option method can be used to revert the
// final option to its previous setting.
func (cfg *Config) Option(opts ...Option) (previous Option) {
	for _, opt := range opts {
		previous = opt(cfg)
	}
	return previous
}

// Types implementing the Logger interface can receive
// debug information from the code generation process.
// The Logger interface is implemented by *log.Logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// LogOutput specifies an optional Logger for warnings and debug
// information about the code generation process.
func LogOutput(l Logger) Option {
	return func(cfg *Config) Option {
		prev := cfg.logger
		cfg.logger = l
		return LogOutput(prev)
	}
}

// LogLevel sets the verbosity of messages sent to the error log
// configured with the LogOutput option. The level parameter should
// be a positive integer between 1 and 5, with 5 providing the greatest
// verbosity.
func LogLevel(level int) Option {
	return func(cfg *Config) Option {
		prev := cfg.loglevel
		cfg.loglevel = level
		return LogLevel(prev)
	}
}

// Debug turns on the most verbose logging.
func Debug(on bool) Option {
	if on {
		return LogLevel(5)
	}
	return LogLevel(0)
}

// The Namespaces option configures the code generation process
// to only generate classes for types declared in the configured target
// namespaces.
func Namespaces(xmlns ...string) Option {
	return func(cfg *Config) Option {
		prev := cfg.namespaces
		cfg.namespaces = xmlns
		return Namespaces(prev...)
	}
}

// NamespacePrefix sets the root namespace under which all generated
// PHP classes are declared.
func NamespacePrefix(prefix string) Option {
	return func(cfg *Config) Option {
		prev := cfg.prefix
		cfg.prefix = strings.Trim(prefix, `\`)
		return NamespacePrefix(prev)
	}
}

// OutputDir sets the directory generated files are written to.
func OutputDir(dir string) Option {
	return func(cfg *Config) Option {
		prev := cfg.outputDir
		cfg.outputDir = dir
		return OutputDir(prev)
	}
}

// Target selects the output language: "php7.0", "php7.1" (or "php")
// or "go".
func Target(target string) Option {
	return func(cfg *Config) Option {
		prev := cfg.target
		cfg.target = target
		return Target(prev)
	}
}

// StrictTypes controls whether PHP files declare strict_types=1.
func StrictTypes(on bool) Option {
	return func(cfg *Config) Option {
		prev := cfg.strictTypes
		cfg.strictTypes = on
		return StrictTypes(prev)
	}
}

// PackageName specifies the name of the generated Go
// package.
func PackageName(name string) Option {
	return func(cfg *Config) Option {
		prev := cfg.pkgname
		cfg.pkgname = name
		return PackageName(prev)
	}
}

// TemplateDir replaces the built-in type templates with those found
// in dir. The directory must have the same layout as the embedded
// templates: one sub-directory per language.
func TemplateDir(dir string) Option {
	return func(cfg *Config) Option {
		prev := cfg.templateDir
		cfg.templateDir = dir
		return TemplateDir(prev)
	}
}

// Replace allows for substitution rules for all class names to
// be specified. If an invalid regular expression is called, no action
// is taken. The Replace option is additive; subsitutions will be
// applied in the order that each option was applied in.
func Replace(pat, repl string) Option {
	reg, err := regexp.Compile(pat)

	return func(cfg *Config) Option {
		prev := cfg.nameTransform
		return replaceNameTransform(func(name string) string {
			if prev != nil {
				name = prev(name)
			}
			if err != nil {
				cfg.logf("Invalid regex %q passed to Replace", pat)
				return name
			}
			r := reg.ReplaceAllString(name, repl)
			if r != name {
				cfg.debugf("changed name %s -> %s", name, r)
			}
			return r
		})(cfg)
	}
}

// ReplaceRegexp is like Replace, for an already compiled pattern.
func ReplaceRegexp(reg *regexp.Regexp, repl string) Option {
	return func(cfg *Config) Option {
		prev := cfg.nameTransform
		return replaceNameTransform(func(name string) string {
			if prev != nil {
				name = prev(name)
			}
			s := reg.ReplaceAllString(name, repl)
			if s != name {
				cfg.debugf("changed %s -> %s", name, s)
			}
			return s
		})(cfg)
	}
}

func replaceNameTransform(fn func(string) string) Option {
	return func(cfg *Config) Option {
		prev := cfg.nameTransform
		cfg.nameTransform = fn
		return replaceNameTransform(prev)
	}
}

func (cfg *Config) transformName(name string) string {
	if cfg.nameTransform == nil {
		return name
	}
	return cfg.nameTransform(name)
}

func (cfg *Config) filterNamespace(ns string) bool {
	if len(cfg.namespaces) == 0 {
		return true
	}
	for _, v := range cfg.namespaces {
		if v == ns {
			return true
		}
	}
	return false
}
