package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/odontos/internal/cli/formatter"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/service"
	"github.com/spf13/cobra"
)

// conflictHint adds the override flag to exclusivity conflicts.
func conflictHint(err error) error {
	var conflict *domain.ExclusivityConflictError
	if errors.As(err, &conflict) {
		return fmt.Errorf("%w (use --override to replace %v)", err, conflict.Conflicts)
	}
	return err
}

// confirmOverride asks whether an exclusivity conflict should be settled by
// replacing the conflicting conditions. It reports false with no error when
// the user keeps them. Without a prompter, or for any other error, err comes
// back with the override hint.
func (a *App) confirmOverride(err error) (bool, error) {
	var conflict *domain.ExclusivityConflictError
	if a.Prompt == nil || !errors.As(err, &conflict) {
		return false, conflictHint(err)
	}
	return a.Prompt.Confirm(fmt.Sprintf("Unit %s already has %s. Replace with %s?",
		conflict.Unit, strings.Join(conflict.Conflicts, ", "), conflict.Code))
}

func newAssignCmd(app *App) *cobra.Command {
	var override bool

	cmd := &cobra.Command{
		Use:   "assign <code> <unit>...",
		Short: "Assign a condition to one or more units",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, units := args[0], splitUnits(args[1:]...)
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				out := cmd.OutOrStdout()
				assigned := make([]string, 0, len(units))
				for _, u := range units {
					err := s.Assign(u, code, override)
					if err != nil {
						replace, perr := app.confirmOverride(err)
						if perr != nil {
							return perr
						}
						if !replace {
							fmt.Fprintf(out, "Kept unit %s as it was.\n", u)
							continue
						}
						if err := s.Assign(u, code, true); err != nil {
							return err
						}
					}
					assigned = append(assigned, u)
				}
				if len(assigned) == 0 {
					return nil
				}
				fmt.Fprintf(out, "Assigned %s to %s. Plan has %s.\n",
					code, formatter.Units(assigned), plural(len(s.Items()), "item"))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&override, "override", false, "Replace conflicting conditions")
	return cmd
}

func newUnassignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <code> <unit>...",
		Short: "Remove a condition from units",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, units := args[0], splitUnits(args[1:]...)
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				for _, u := range units {
					if err := s.Unassign(u, code); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s.\n", code, formatter.Units(units))
				return nil
			})
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	var override bool

	cmd := &cobra.Command{
		Use:   "toggle <code> <unit>...",
		Short: "Add a condition where absent and remove it where present",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, units := args[0], splitUnits(args[1:]...)
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				for _, u := range units {
					added, err := s.Toggle(u, code, override)
					if err != nil {
						replace, perr := app.confirmOverride(err)
						if perr != nil {
							return perr
						}
						if !replace {
							fmt.Fprintf(cmd.OutOrStdout(), "Kept unit %s as it was.\n", u)
							continue
						}
						if added, err = s.Toggle(u, code, true); err != nil {
							return err
						}
					}
					verb := "removed from"
					if added {
						verb = "added to"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", code, verb, u)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&override, "override", false, "Replace conflicting conditions")
	return cmd
}

func newClearUnitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-unit <unit>...",
		Short: "Remove every condition from units",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			units := splitUnits(args...)
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				for _, u := range units {
					if err := s.ClearUnit(u); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s.\n", formatter.Units(units))
				return nil
			})
		},
	}
}

func newClearAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-all",
		Short: "Drop every condition, item and day of the plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				if err := s.ClearAll(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Plan cleared.")
				return nil
			})
		},
	}
}
