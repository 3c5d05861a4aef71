package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/garnet/store"
	"github.com/chazu/garnet/vm"
)

type globalEntry struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
	Class string `yaml:"class"`
}

func newGlobalsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "globals",
		Short: "Inspect and edit the persistent global variables",
		Long: `Global variables live in a SQLite database ([store] path in garnet.toml).
Each invocation restores them into a fresh runtime and writes changes back
as they happen.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored globals",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
					entries, err := s.List(ctx, a.rt)
					if err != nil {
						return err
					}
					docs := make([]globalEntry, len(entries))
					fields := make([]field, len(entries))
					for i, e := range entries {
						docs[i] = a.describeGlobal(e.Name, e.Value)
						fields[i] = field{Label: e.Name, Value: e.Value.Inspect()}
					}
					p := newPrinter(cmd.OutOrStdout(), a.format)
					if len(entries) == 0 {
						p.note("no globals stored in %s", s.Path())
					}
					return p.emit(docs, fields...)
				})
			},
		},
		&cobra.Command{
			Use:   "get NAME",
			Short: "Print one global",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
					v, err := s.Load(ctx, a.rt, args[0])
					if err != nil {
						return fmt.Errorf("%s: %w", vm.GlobalName(args[0]), err)
					}
					doc := a.describeGlobal(vm.GlobalName(args[0]), v)
					return newPrinter(cmd.OutOrStdout(), a.format).emit(doc, field{Value: doc.Value})
				})
			},
		},
		&cobra.Command{
			Use:   "set NAME LITERAL",
			Short: "Assign a global and persist it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
					v, err := parseValue(ctx, a.rt, args[1])
					if err != nil {
						return err
					}
					if err := a.rt.SetGlobal(args[0], v); err != nil {
						return err
					}
					doc := a.describeGlobal(vm.GlobalName(args[0]), v)
					return newPrinter(cmd.OutOrStdout(), a.format).emit(doc,
						field{Label: doc.Name, Value: doc.Value},
					)
				})
			},
		},
		&cobra.Command{
			Use:   "unset NAME",
			Short: "Remove a global",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withStore(cmd.Context(), func(ctx context.Context, s *store.Store) error {
					name := vm.GlobalName(args[0])
					if _, ok := a.rt.Globals.Remove(name); !ok {
						return fmt.Errorf("%s: %w", name, store.ErrNotFound)
					}
					newPrinter(cmd.OutOrStdout(), a.format).note("removed %s", name)
					return nil
				})
			},
		},
	)
	return cmd
}

// withStore opens the configured store, restores it into the runtime and
// keeps it attached while fn runs.
func (a *app) withStore(ctx context.Context, fn func(context.Context, *store.Store) error) error {
	s, err := store.Open(a.cfg.StorePath())
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.Restore(ctx, a.rt); err != nil {
		return err
	}
	s.Attach(a.rt)
	defer s.Detach(a.rt)
	return fn(ctx, s)
}

func (a *app) describeGlobal(name string, v vm.Value) globalEntry {
	return globalEntry{Name: name, Value: v.Inspect(), Class: a.rt.ClassOf(v).Inspect()}
}
