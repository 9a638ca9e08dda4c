package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/service"
	"github.com/spf13/cobra"
)

func newDayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Manage calendar days",
	}

	cmd.AddCommand(
		newDayAddCmd(app),
		newDayAppendCmd(app),
		newDayMoveCmd(app),
		newDayRemoveCmd(app),
	)

	return cmd
}

func newDayAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <date>",
		Short: "Insert an empty day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(args[0], app.today())
			if err != nil {
				return err
			}
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				if err := s.AddDay(date); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s.\n", domain.FormatDate(date))
				return nil
			})
		},
	}
}

func newDayAppendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "append",
		Short: "Add a day one interval after the last day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				date, err := s.AppendDay()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Appended %s.\n", domain.FormatDate(date))
				return nil
			})
		},
	}
}

func newDayMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Re-date a whole day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDay(args[0], app.today())
			if err != nil {
				return err
			}
			to, err := parseDay(args[1], app.today())
			if err != nil {
				return err
			}
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				if err := s.MoveDay(from, to); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s.\n", domain.FormatDate(from), domain.FormatDate(to))
				return nil
			})
		},
	}
}

func newDayRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <date>",
		Aliases: []string{"remove"},
		Short:   "Delete an empty day",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(args[0], app.today())
			if err != nil {
				return err
			}
			return app.withSession(cmd, true, func(ctx context.Context, s *service.Session) error {
				if err := s.RemoveDay(date); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", domain.FormatDate(date))
				return nil
			})
		},
	}
}
