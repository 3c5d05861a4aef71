package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/chazu/garnet/config"
	"github.com/chazu/garnet/vm"
)

func logger() commonlog.Logger { return commonlog.GetLogger("garnet.cli") }

// app carries the state shared by every subcommand. It is populated by the
// root command's PersistentPreRunE.
type app struct {
	configPath string
	verbose    int
	format     string

	cfg *config.Config
	rt  *vm.Runtime
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "garnet",
		Short: "Garnet runtime diagnostics",
		Long: `Garnet exercises the garnet runtime from the command line: arithmetic on
the numeric tower, the two sort algorithms, string interpolation, the
persistent global table and the weakly held symbol table.

Configuration is read from --config or the nearest garnet.toml above the
working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a garnet.toml file")
	root.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "Increase log verbosity (repeatable)")
	root.PersistentFlags().StringVar(&a.format, "format", formatText, "Output format (text, yaml)")

	root.AddCommand(
		newCalcCmd(a),
		newSortCmd(a),
		newInterpCmd(a),
		newGlobalsCmd(a),
		newSymbolsCmd(a),
	)
	return root
}

func (a *app) setup() error {
	switch a.format {
	case formatText, formatYAML:
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", a.format, formatText, formatYAML)
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.Resolve(a.configPath, wd)
	if err != nil {
		return err
	}
	a.cfg = cfg

	commonlog.Initialize(cfg.Log.Verbosity+a.verbose, cfg.LogPath())

	a.rt = vm.NewRuntimeWithOptions(cfg.RuntimeOptions())
	logger().Debugf("runtime %s configured from %s", a.rt.Instance, cfg.Dir)
	return nil
}
