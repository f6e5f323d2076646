package xsdgen

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/CognitoIQ/xsdclass/internal/commandline"
	"github.com/CognitoIQ/xsdclass/xsd"
)

// commonLogger sends generator messages to a commonlog logger.
type commonLogger struct {
	log commonlog.Logger
}

func (l commonLogger) Printf(format string, v ...interface{}) {
	l.log.Infof(format, v...)
}

// GenCLI runs the xsdclass command line interface with the given
// arguments. Options already set on cfg act as defaults, overridden
// by a configuration file and then by flags.
func (cfg *Config) GenCLI(arguments ...string) error {
	cmd := cfg.Command()
	cmd.SetArgs(arguments)
	return cmd.Execute()
}

// Command returns the root command of the xsdclass tool.
func (cfg *Config) Command() *cobra.Command {
	var (
		verbose    int
		debug      bool
		configFile string
	)
	root := &cobra.Command{
		Use:           "xsdclass",
		Short:         "Generate classes from XML Schema documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Messages are filtered by the generator's log level.
			commonlog.Configure(1, nil)
			cfg.Option(LogOutput(commonLogger{commonlog.GetLogger("xsdclass")}))
			if configFile != "" {
				opts, err := LoadConfigFile(configFile)
				if err != nil {
					return err
				}
				cfg.Option(opts...)
			}
			switch {
			case debug:
				cfg.Option(Debug(true))
			case verbose > 0:
				cfg.Option(LogLevel(verbose))
			}
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.CountVarP(&verbose, "verbose", "v", "log progress; repeat for more detail")
	flags.BoolVar(&debug, "debug", false, "log everything")
	flags.StringVar(&configFile, "config", "", "TOML file with generator settings")

	root.AddCommand(cfg.generateCommand(), dumpCommand())
	return root
}

func (cfg *Config) generateCommand() *cobra.Command {
	var (
		output, prefix, target string
		pkg, templates         string
		strict                 bool
		xmlns                  commandline.Strings
		rules                  commandline.ReplaceRuleList
	)
	cmd := &cobra.Command{
		Use:   "generate [flags] schema...",
		Short: "Generate a class for every type declared in the schemas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.Option(OutputDir(output))
			}
			if flags.Changed("prefix") {
				cfg.Option(NamespacePrefix(prefix))
			}
			if flags.Changed("target") {
				cfg.Option(Target(target))
			}
			if flags.Changed("pkg") {
				cfg.Option(PackageName(pkg))
			}
			if flags.Changed("templates") {
				cfg.Option(TemplateDir(templates))
			}
			if flags.Changed("strict-types") {
				cfg.Option(StrictTypes(strict))
			}
			if len(xmlns) > 0 {
				cfg.Option(Namespaces(xmlns...))
			}
			for _, r := range rules {
				cfg.Option(ReplaceRegexp(r.From, r.To))
			}
			files, err := cfg.GenerateFiles(args...)
			cfg.logf("generated %d files", len(files))
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", ".", "directory to write generated files to")
	flags.StringVar(&prefix, "prefix", "Schema", "root namespace of generated PHP classes")
	flags.StringVar(&target, "target", "php7.1", "output language: php7.0, php7.1 or go")
	flags.StringVar(&pkg, "pkg", "schema", "name of the generated Go package")
	flags.StringVar(&templates, "templates", "", "directory overriding the built-in type templates")
	flags.BoolVar(&strict, "strict-types", true, "declare strict_types=1 in PHP files")
	flags.Var(&xmlns, "ns", "target namespace to generate types for (can be used multiple times)")
	flags.VarP(&rules, "replace", "r", "replacement rule 'regex -> repl' for class names (can be used multiple times)")
	return cmd
}

func dumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump schema...",
		Short: "List the types declared in the schemas and their base types",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := xsd.LoadFiles(args...)
			if err != nil {
				return err
			}
			return Dump(cmd.OutOrStdout(), def)
		},
	}
}
