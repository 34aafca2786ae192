// Package cli implements the forecast command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alias1177/RiskForecast/internal/config"
	"github.com/Alias1177/RiskForecast/internal/scoring"
	"github.com/Alias1177/RiskForecast/internal/storage"
)

// App carries what every command needs. The store is opened on first use.
type App struct {
	Config *config.Config
	Out    io.Writer
	Now    func() time.Time

	store storage.Store
}

// Store opens the configured backend once.
func (a *App) Store(ctx context.Context) (storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := storage.Open(ctx, a.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", a.Config.Store, err)
	}
	a.store = store
	return store, nil
}

// Close releases the store if it was opened.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

// NewRootCmd builds the command tree. A nil Config is loaded from the
// environment before the first command runs.
func NewRootCmd(app *App) *cobra.Command {
	var (
		storeFlag  string
		fileFlag   string
		policyFlag string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "forecast",
		Short: "Record, transform and score risk forecasts",
		Long: `forecast keeps a register of structured risk forecasts.

Forecasts start documented (E1), become comparable through explicit
transforms (E2) and are scored with the Brier score once their outcome
is known (E3).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Config == nil {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				app.Config = cfg
			}
			if storeFlag != "" {
				app.Config.Store = strings.ToLower(storeFlag)
			}
			if fileFlag != "" {
				app.Config.ForecastFile = fileFlag
			}
			if policyFlag != "" {
				policy, err := scoring.ParsePolicy(policyFlag)
				if err != nil {
					return err
				}
				app.Config.ScoringPolicy = policy
			}
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			if app.Out == nil {
				app.Out = cmd.OutOrStdout()
			}
			if app.Now == nil {
				app.Now = func() time.Time { return time.Now().UTC() }
			}
			return app.Config.Validate()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "storage backend (file, bolt, postgres); overrides FORECAST_STORE")
	rootCmd.PersistentFlags().StringVar(&fileFlag, "file", "", "forecast file for the file store; overrides FORECAST_FILE")
	rootCmd.PersistentFlags().StringVar(&policyFlag, "policy", "", "scoring policy (level-gated, class-gated); overrides SCORING_POLICY")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newCreateCmd(app),
		newListCmd(app),
		newShowCmd(app),
		newOutcomeCmd(app),
		newBinarizeCmd(app),
		newNormalizeCmd(app),
		newDeriveCmd(app),
		newScoreCmd(app),
		newAggregateCmd(app),
		newDueCmd(app),
	)
	return rootCmd
}

// Execute runs the command line against the process environment.
func Execute() error {
	app := &App{}
	defer app.Close()
	return NewRootCmd(app).Execute()
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseTimeFlag(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD or RFC 3339", name, value)
}
