package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/garnet/config"
	"github.com/chazu/garnet/vm"
)

type sortResult struct {
	Algorithm   string   `yaml:"algorithm"`
	Comparisons int      `yaml:"comparisons"`
	Sorted      []string `yaml:"sorted"`
}

func newSortCmd(a *app) *cobra.Command {
	var stable, reverse bool
	var algorithm string

	cmd := &cobra.Command{
		Use:   "sort LITERAL...",
		Short: "Sort literals with the natural ordering",
		Long: `Sort literals with <=> ordering. The algorithm comes from --algorithm,
then [runtime] sort in garnet.toml. --stable always uses insertion sort,
which keeps equal elements in their original order.`,
		Example: `  garnet sort 3 1.5 2
  garnet sort --reverse '"pear"' '"apple"'
  garnet sort --algorithm insertion 5 4 3 2 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			vals := make([]vm.Value, len(args))
			for i, arg := range args {
				v, err := parseValue(ctx, a.rt, arg)
				if err != nil {
					return err
				}
				vals[i] = v
			}

			cfg := *a.cfg
			if algorithm != "" {
				cfg.Runtime.Sort = algorithm
			}
			if stable {
				cfg.Runtime.Sort = config.SortInsertion
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			comparisons := 0
			less := vm.NaturalLess
			if reverse {
				less = vm.Reverse(less)
			}
			counted := func(ctx context.Context, x, y vm.Value) (bool, error) {
				comparisons++
				return less(ctx, x, y)
			}
			if err := cfg.Sorter()(ctx, vals, counted); err != nil {
				return err
			}

			res := sortResult{Algorithm: cfg.Runtime.Sort, Comparisons: comparisons, Sorted: make([]string, len(vals))}
			for i, v := range vals {
				res.Sorted[i] = v.Inspect()
			}
			p := newPrinter(cmd.OutOrStdout(), a.format)
			if err := p.emit(res, field{Value: a.rt.NewArray(vals...).Inspect()}); err != nil {
				return err
			}
			p.note("%s sort, %d comparisons", res.Algorithm, res.Comparisons)
			return nil
		},
	}
	cmd.Flags().BoolVar(&stable, "stable", false, "Use the stable insertion sort")
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "Sort in descending order")
	cmd.Flags().StringVar(&algorithm, "algorithm", "", fmt.Sprintf("Sort algorithm (%s, %s)", config.SortQuick, config.SortInsertion))
	return cmd
}
