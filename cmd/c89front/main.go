// Command c89front runs the C89/C99 syntactic-to-semantic translator core
// over a source file and reports diagnostics, or dumps the resulting IR.
//
// Usage:
//
//	c89front translate <input.c>
//	c89front dump-cfg <input.c>
//	c89front dump-symbols <input.c>
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"codeberg.org/saruga/c89front/internal/config"
	"codeberg.org/saruga/c89front/internal/diagnostic"
	"codeberg.org/saruga/c89front/pkg/api"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

var (
	flagConfigFile  string
	flagNoConfig    bool
	flagWarnAsError bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "c89front",
		Short:         "C89/C99 syntactic-to-semantic translator core",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfigFile, "config", "", "use a specific config file")
	root.PersistentFlags().BoolVar(&flagNoConfig, "no-config", false, "ignore sidecar config files")
	root.PersistentFlags().BoolVar(&flagWarnAsError, "werror", false, "treat warnings as errors")

	root.AddCommand(newTranslateCmd())
	root.AddCommand(newDumpCFGCmd())
	root.AddCommand(newDumpSymbolsCmd())
	return root
}

func newTranslateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <input.c>",
		Short: "translate a source file and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, diags, err := translateFile(args[0])
			printDiagnostics(cmd, diags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "translation succeeded")
			return nil
		},
	}
}

func newDumpCFGCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-cfg <input.c>",
		Short: "translate and print the resulting control-flow graphs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, diags, err := translateFile(args[0])
			printDiagnostics(cmd, diags)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), result.DumpCFGs())
			return nil
		},
	}
}

func newDumpSymbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-symbols <input.c>",
		Short: "translate and print the resolved symbol table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, diags, err := translateFile(args[0])
			printDiagnostics(cmd, diags)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), result.DumpSymbols())
			return nil
		},
	}
}

// translateFile resolves configuration for path (CLI flags taking
// precedence over a sidecar file) and runs the translator over it.
func translateFile(path string) (*api.Result, *diagnostic.DiagnosticList, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	opts := config.DefaultOptions()
	if !flagNoConfig {
		var cfg *config.Config
		if flagConfigFile != "" {
			cfg, err = config.LoadFile(flagConfigFile)
			if err != nil {
				return nil, nil, fmt.Errorf("loading config file %s: %w", flagConfigFile, err)
			}
		} else {
			cfg, _, err = config.Load(filepath.Dir(path))
			if err != nil {
				return nil, nil, fmt.Errorf("loading config: %w", err)
			}
		}
		opts = cfg.Merge(config.CLIOverrides{})
	}

	warnAsError := opts.WarnAsError || flagWarnAsError
	result, diags, err := api.Translate(string(source), warnAsError)
	return result, diags, err
}

// printDiagnostics writes every collected diagnostic to stderr, coloring
// by severity when the output is a terminal.
func printDiagnostics(cmd *cobra.Command, diags *diagnostic.DiagnosticList) {
	if diags == nil {
		return
	}
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)

	for _, d := range diags.Diagnostics() {
		d := d
		line := diags.FormatDiagnostic(&d)
		switch d.Severity {
		case diagnostic.Error:
			errColor.Fprint(cmd.ErrOrStderr(), line)
		case diagnostic.Warning:
			warnColor.Fprint(cmd.ErrOrStderr(), line)
		default:
			fmt.Fprint(cmd.ErrOrStderr(), line)
		}
	}
}
