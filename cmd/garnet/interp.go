package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/garnet/vm"
)

type interpResult struct {
	Template string `yaml:"template"`
	Result   string `yaml:"result"`
}

func newInterpCmd(a *app) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "interp TEXT",
		Short: "Interpolate #{...} regions in a string",
		Long: `Evaluate every #{...} region of TEXT and splice in its rendering. Regions
may hold literals, $globals and one binary arithmetic operator per level
("#{$n * 2}"). Double-quoted strings inside a region are interpolated in
turn.`,
		Example: `  garnet interp 'sum: #{1 + 2}'
  garnet interp --set name='"world"' 'hello #{$name}!'
  garnet interp 'nested #{"a#{1 + 1}b"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for _, s := range sets {
				name, text, ok := strings.Cut(s, "=")
				if !ok || name == "" {
					return fmt.Errorf("--set wants NAME=LITERAL, got %q", s)
				}
				v, err := parseValue(ctx, a.rt, text)
				if err != nil {
					return err
				}
				if err := a.rt.SetGlobal(name, v); err != nil {
					return err
				}
			}

			v, err := a.rt.Interpolate(ctx, args[0], &evaluator{rt: a.rt})
			if err != nil {
				return err
			}
			if vm.IsSignal(v) {
				if err := vm.Uncaught(v); err != nil {
					return err
				}
				v = a.rt.Nil
			}
			res := interpResult{Template: args[0], Result: v.LightInspect()}
			return newPrinter(cmd.OutOrStdout(), a.format).emit(res, field{Value: res.Result})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Assign a global before interpolating (NAME=LITERAL, repeatable)")
	return cmd
}
