package main

import (
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazu/garnet/vm"
)

type symbolsResult struct {
	Interned  []string `yaml:"interned"`
	Live      int      `yaml:"live"`
	Kept      []string `yaml:"kept"`
	Reclaimed []string `yaml:"reclaimed"`
}

func newSymbolsCmd(a *app) *cobra.Command {
	var keep []string
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "symbols NAME...",
		Short: "Intern symbols and watch unreferenced ones get reclaimed",
		Long: `Intern every NAME, then drop all references except those named by --keep
and collect garbage until the dropped symbols leave the table or --wait
runs out.`,
		Example: `  garnet symbols foo bar 'odd name' --keep foo`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := a.rt.Symbols
			res := symbolsResult{}

			held := map[string]*vm.Symbol{}
			for _, name := range args {
				sym := table.Intern(name)
				res.Interned = append(res.Interned, sym.Inspect())
				if slices.Contains(keep, name) {
					held[name] = sym
				}
			}
			res.Live = table.Len()

			pending := func() bool {
				for _, name := range args {
					if _, ok := held[name]; ok {
						continue
					}
					if _, ok := table.Lookup(name); ok {
						return true
					}
				}
				return false
			}
			deadline := time.Now().Add(wait)
			for {
				runtime.GC()
				if !pending() || time.Now().After(deadline) {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}

			for _, name := range args {
				if _, ok := held[name]; ok {
					res.Kept = append(res.Kept, name)
				} else if _, ok := table.Lookup(name); !ok {
					res.Reclaimed = append(res.Reclaimed, name)
				}
			}
			runtime.KeepAlive(held)

			p := newPrinter(cmd.OutOrStdout(), a.format)
			return p.emit(res,
				field{Label: "interned", Value: fmt.Sprint(res.Interned)},
				field{Label: "live", Value: strconv.Itoa(res.Live)},
				field{Label: "kept", Value: fmt.Sprint(res.Kept)},
				field{Label: "reclaimed", Value: fmt.Sprint(res.Reclaimed)},
			)
		},
	}
	cmd.Flags().StringSliceVar(&keep, "keep", nil, "Names to keep referenced")
	cmd.Flags().DurationVar(&wait, "wait", 2*time.Second, "How long to wait for reclamation")
	return cmd
}
