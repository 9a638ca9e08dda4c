package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/odontos/internal/catalog"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/scheduler"
	"github.com/alexanderramin/odontos/internal/service"
	"github.com/spf13/cobra"
)

// GlobalFlags are the persistent flags handed to App.Configure.
type GlobalFlags struct {
	ConfigPath string
	DBPath     string
	Verbose    bool
	Plain      bool
}

// App holds the services and settings used by CLI commands.
type App struct {
	Plans   service.PlanService
	Catalog *catalog.Catalog
	Rules   scheduler.Rules
	Today   func() time.Time

	// Patient selects the plan every session command works on.
	Patient string

	// Prompt, when set, lets commands ask instead of failing on an
	// exclusivity conflict or a missing option index.
	Prompt Prompter

	// Configure, when set, runs after flag parsing and before any command
	// to load configuration and wire Plans, Catalog and Rules.
	Configure func(flags GlobalFlags) error
}

// NewRootCmd creates the top-level "odontos" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var flags GlobalFlags

	root := &cobra.Command{
		Use:           "odontos",
		Short:         "Dental treatment plan scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Configure == nil {
				return nil
			}
			return app.Configure(flags)
		},
	}

	root.PersistentFlags().StringVarP(&app.Patient, "patient", "p", "default", "Patient whose plan to work on")
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Config file (default ~/.odontos/config.yaml)")
	root.PersistentFlags().StringVar(&flags.DBPath, "db", "", "Database path (overrides config)")
	root.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log engine operations to stderr")
	root.PersistentFlags().BoolVar(&flags.Plain, "plain", false, "Disable colors")

	root.AddCommand(
		newAssignCmd(app),
		newUnassignCmd(app),
		newToggleCmd(app),
		newClearUnitCmd(app),
		newClearAllCmd(app),
		newGenerateCmd(app),
		newOptionCmd(app),
		newScheduleCmd(app),
		newPlaceCmd(app),
		newRemoveCmd(app),
		newCompleteCmd(app),
		newClearScheduleCmd(app),
		newDayCmd(app),
		newSplitCmd(app),
		newMergeCmd(app),
		newBranchCmd(app),
		newShowCmd(app),
		newCatalogCmd(app),
		newPatientCmd(app),
	)

	return root
}

func (a *App) today() time.Time {
	if a.Today != nil {
		return domain.DateOnly(a.Today())
	}
	return domain.DateOnly(time.Now())
}

func (a *App) isAcute(code string) bool {
	if a.Catalog != nil {
		if c, ok := a.Catalog.Condition(code); ok && c.Acute {
			return true
		}
	}
	return a.Rules.IsAcute(code)
}

// withSession opens the patient's plan, runs fn and, when fn succeeds and
// save is set, stores the result.
func (a *App) withSession(cmd *cobra.Command, save bool, fn func(ctx context.Context, s *service.Session) error) error {
	if a.Plans == nil {
		return fmt.Errorf("plan storage is not configured")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, patient, err := a.Plans.Open(ctx, a.Patient)
	if err != nil {
		return err
	}
	if err := fn(ctx, s); err != nil {
		return err
	}
	if !save {
		return nil
	}
	return a.Plans.Save(ctx, patient, s)
}
