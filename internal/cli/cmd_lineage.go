package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/odontos/internal/cli/formatter"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/service"
	"github.com/spf13/cobra"
)

func newSplitCmd(app *App) *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   "split <group> <unit>...",
		Short: "Move units out of a lineage into a new one",
		Long: `Move units out of a lineage into a new one. <group> is a group id or
the #number of any of its items. With --on the new lineage's first step is
placed on that day.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *time.Time
			if on != "" {
				date, err := parseDay(on, app.today())
				if err != nil {
					return err
				}
				target = &date
			}
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				group, err := resolveGroup(s, args[0])
				if err != nil {
					return err
				}
				units := splitUnits(args[1:]...)
				newGroup, err := s.Split(group, units, target)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Split %s into lineage %s.\n", formatter.Units(units), formatter.TruncID(newGroup))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&on, "on", "", "Place the new lineage's first step on this day")
	return cmd
}

func newMergeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <source> <target>",
		Short: "Fold one lineage into another of the same condition and option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				source, err := resolveGroup(s, args[0])
				if err != nil {
					return err
				}
				target, err := resolveGroup(s, args[1])
				if err != nil {
					return err
				}
				if err := s.Merge(source, target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Merged into lineage %s.\n", formatter.TruncID(target))
				return nil
			})
		},
	}
}

func newBranchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "branch <item> [option]",
		Short: "Switch a lineage to another option after the given step",
		Long: `Switch a lineage to another option after the given step. Without an
option index an interactive terminal offers a picker.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				id, err := resolveItem(s, args[0])
				if err != nil {
					return err
				}
				idx, err := app.optionArg(s, id, args[1:], "Branch to which option?")
				if err != nil {
					return err
				}
				added, err := s.Branch(id, idx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Branched; %s added to the backlog.\n", plural(len(added), "item"))
				for _, w := range added {
					fmt.Fprintln(out, "  "+formatter.FormatItemLine(w))
				}
				return nil
			})
		},
	}
}

func newOptionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "option",
		Short: "List or choose treatment options",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <item>",
			Short: "Show the options of an item's condition",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.withSession(cmd, false, func(ctx context.Context, s *service.Session) error {
					id, err := resolveItem(s, args[0])
					if err != nil {
						return err
					}
					options, current, err := s.Alternatives(id)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatAlternatives(options, current))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "select <item> [option]",
			Short: "Regenerate an item's lineage with another option",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
					id, err := resolveItem(s, args[0])
					if err != nil {
						return err
					}
					idx, err := app.optionArg(s, id, args[1:], "Treat with which option?")
					if err != nil {
						return err
					}
					w, err := s.Item(id)
					if err != nil {
						return err
					}
					if err := s.SelectOption(w.Lineage.Selection(), idx); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Selected option %d for %s %s.\n", idx, w.Condition, formatter.Units(w.Units))
					return nil
				})
			},
		},
	)

	return cmd
}

// optionArg parses the option index argument. When it is missing and a
// prompter is set, the user picks from the item's options instead.
func (a *App) optionArg(s *service.Session, itemID string, args []string, title string) (int, error) {
	if len(args) > 0 {
		return parseIndex(args[0])
	}
	if a.Prompt == nil {
		return 0, domain.InvalidInputf("option index required; see \"odontos option list\"")
	}
	options, current, err := s.Alternatives(itemID)
	if err != nil {
		return 0, err
	}
	labels := make([]string, 0, len(options))
	for _, o := range options {
		labels = append(labels, formatter.OptionLabel(o))
	}
	return a.Prompt.Select(title, labels, current)
}
