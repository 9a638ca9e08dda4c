package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/odontos/internal/cli/formatter"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/service"
	"github.com/spf13/cobra"
)

func newGenerateCmd(app *App) *cobra.Command {
	var grouping string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Rebuild work items from the assigned conditions",
		Long: `Rebuild work items from the assigned conditions.

Items keep their day when a step of the same lineage was placed before.
--grouping per-unit gives every unit its own lineage; merged treats all
units with the same condition together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				mode := s.Grouping()
				if grouping != "" {
					var err error
					if mode, err = domain.ParseGroupingMode(grouping); err != nil {
						return err
					}
				}
				res, err := s.Generate(mode)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %s over %s (%s).\n",
					plural(len(res.Items), "item"), plural(len(res.Calendar), "day"), mode)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&grouping, "grouping", "", "per-unit or merged (default: current)")
	return cmd
}

func newScheduleCmd(app *App) *cobra.Command {
	var maxPerDay, acuteMax, interval int

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Place every open item automatically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := app.Rules
			if cmd.Flags().Changed("max-per-day") {
				rules.MaxPerDay = maxPerDay
			}
			if cmd.Flags().Changed("acute-max") {
				rules.AcuteMaxPerDay = acuteMax
			}
			if cmd.Flags().Changed("interval") {
				rules.IntervalDays = interval
			}
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				res, err := s.TryAutoSchedule(ctx, rules)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatAutoSchedule(res))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&maxPerDay, "max-per-day", 0, "Items per day")
	cmd.Flags().IntVar(&acuteMax, "acute-max", 0, "Acute items per day")
	cmd.Flags().IntVar(&interval, "interval", 0, "Days between appended days")
	return cmd
}

func newPlaceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "place <item> <date>",
		Short: "Move an item onto a day",
		Long: `Move an item onto a day. The item's previous step must already sit on
an earlier day. Dates accept YYYY-MM-DD, "today" or "+N".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(args[1], app.today())
			if err != nil {
				return err
			}
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				id, err := resolveItem(s, args[0])
				if err != nil {
					return err
				}
				if err := s.ManualPlace(id, date); err != nil {
					return err
				}
				w, _ := s.Item(id)
				fmt.Fprintf(cmd.OutOrStdout(), "Placed %s on %s.\n", formatter.FormatItemLine(w), domain.FormatDate(date))
				return nil
			})
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item>",
		Short: "Return an item and its later steps to the backlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				id, err := resolveItem(s, args[0])
				if err != nil {
					return err
				}
				before := len(s.Backlog())
				if err := s.Remove(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Returned %s to the backlog.\n", plural(len(s.Backlog())-before, "item"))
				return nil
			})
		},
	}
}

func newCompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <item>",
		Short: "Toggle an item's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				id, err := resolveItem(s, args[0])
				if err != nil {
					return err
				}
				done, err := s.ToggleCompletion(id)
				if err != nil {
					return err
				}
				w, _ := s.Item(id)
				state := "open"
				if done {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is %s.\n", formatter.FormatItemLine(w), state)
				return nil
			})
		},
	}
}

func newClearScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-schedule",
		Short: "Return every open item to the backlog, keeping days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				if err := s.ClearSchedule(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared schedule; %s in the backlog.\n", plural(len(s.Backlog()), "item"))
				return nil
			})
		},
	}
}
