package xsdgen

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/CognitoIQ/xsdclass/internal/commandline"
)

// A FileConfig holds generator settings read from a TOML file. Unset
// fields leave the corresponding option alone.
//
//	namespace_prefix = "Acme\\Schema"
//	output_dir = "generated"
//	target = "php7.0"
//	strict_types = false
//	namespaces = ["urn:library"]
//	replace = ["^ST_ -> "]
type FileConfig struct {
	NamespacePrefix *string  `toml:"namespace_prefix"`
	OutputDir       string   `toml:"output_dir"`
	Target          string   `toml:"target"`
	StrictTypes     *bool    `toml:"strict_types"`
	Package         string   `toml:"package"`
	TemplateDir     string   `toml:"template_dir"`
	Namespaces      []string `toml:"namespaces"`
	Replace         []string `toml:"replace"`
	LogLevel        int      `toml:"log_level"`
}

// LoadConfigFile reads a FileConfig from path and returns the options
// it describes. Unknown keys are an error.
func LoadConfigFile(path string) ([]Option, error) {
	var fc FileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, &FileSystemError{Path: path, Err: err}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown settings %s", path, strings.Join(keys, ", "))
	}
	return fc.Options()
}

// Options converts the settings to generator options.
func (fc *FileConfig) Options() ([]Option, error) {
	var opts []Option
	if fc.NamespacePrefix != nil {
		opts = append(opts, NamespacePrefix(*fc.NamespacePrefix))
	}
	if fc.OutputDir != "" {
		opts = append(opts, OutputDir(fc.OutputDir))
	}
	if fc.Target != "" {
		opts = append(opts, Target(fc.Target))
	}
	if fc.StrictTypes != nil {
		opts = append(opts, StrictTypes(*fc.StrictTypes))
	}
	if fc.Package != "" {
		opts = append(opts, PackageName(fc.Package))
	}
	if fc.TemplateDir != "" {
		opts = append(opts, TemplateDir(fc.TemplateDir))
	}
	if len(fc.Namespaces) > 0 {
		opts = append(opts, Namespaces(fc.Namespaces...))
	}
	for _, s := range fc.Replace {
		rule, err := commandline.ParseReplaceRule(s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ReplaceRegexp(rule.From, rule.To))
	}
	if fc.LogLevel > 0 {
		opts = append(opts, LogLevel(fc.LogLevel))
	}
	return opts, nil
}
