package main

import (
	"github.com/spf13/cobra"
)

type calcResult struct {
	Expression string `yaml:"expression"`
	Result     string `yaml:"result"`
	Class      string `yaml:"class"`
}

func newCalcCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calc A OP B",
		Short: "Apply an arithmetic operator to two literals",
		Long: `Apply + - * / or % to two literals. Integers promote to arbitrary
precision on overflow; mixing an integer and a float promotes to float.
Strings concatenate with + and repeat with *.`,
		Example: `  garnet calc 9223372036854775807 + 1
  garnet calc -- -7 / 2
  garnet calc '"ab"' '*' 3`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			x, err := parseValue(ctx, a.rt, args[0])
			if err != nil {
				return err
			}
			y, err := parseValue(ctx, a.rt, args[2])
			if err != nil {
				return err
			}
			v, err := a.rt.Arith(args[1], x, y)
			if err != nil {
				return err
			}
			res := calcResult{
				Expression: x.Inspect() + " " + args[1] + " " + y.Inspect(),
				Result:     v.Inspect(),
				Class:      a.rt.ClassOf(v).Inspect(),
			}
			return newPrinter(cmd.OutOrStdout(), a.format).emit(res,
				field{Value: res.Result},
			)
		},
	}
}
