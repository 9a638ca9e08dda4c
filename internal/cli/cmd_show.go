package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/odontos/internal/catalog"
	"github.com/alexanderramin/odontos/internal/cli/formatter"
	"github.com/alexanderramin/odontos/internal/service"
	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	var backlogOnly, calendarOnly bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the patient's plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, false, func(ctx context.Context, s *service.Session) error {
				out := cmd.OutOrStdout()
				if !backlogOnly && !calendarOnly {
					fmt.Fprintf(out, "%s  %s\n", formatter.Bold(app.Patient), formatter.FormatSummary(s.Summary()))
					fmt.Fprintln(out, formatter.FormatAssignments(s.Assignments(), app.isAcute))
				}
				if !calendarOnly {
					fmt.Fprintln(out, formatter.FormatBacklog(s.Backlog(), app.isAcute))
				}
				if !backlogOnly {
					fmt.Fprintln(out, formatter.FormatCalendar(s.Calendar(), app.today(), app.isAcute))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&backlogOnly, "backlog", false, "Only the backlog")
	cmd.Flags().BoolVar(&calendarOnly, "calendar", false, "Only the calendar")
	cmd.MarkFlagsMutuallyExclusive("backlog", "calendar")
	return cmd
}

func newCatalogCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List conditions, treatment options and exclusivity rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := app.Catalog
			if cat == nil {
				cat = catalog.Default()
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatCatalog(cat))
			return nil
		},
	}
}

func newPatientCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Manage stored patients",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List patients",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if app.Plans == nil {
					return fmt.Errorf("plan storage is not configured")
				}
				patients, err := app.Plans.List(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPatients(patients))
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <name>",
			Short: "Delete a patient and their plan",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if app.Plans == nil {
					return fmt.Errorf("plan storage is not configured")
				}
				if err := app.Plans.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
				return nil
			},
		},
	)

	return cmd
}
