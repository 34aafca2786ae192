package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Alias1177/RiskForecast/internal/scoring"
)

func newScoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Print the Brier score of every scorable forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			forecasts, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load forecasts: %w", err)
			}

			policy := app.Config.ScoringPolicy
			scores := scoring.Evaluate(forecasts, policy)
			if len(scores) == 0 {
				app.printf("No scorable forecasts (policy %s)\n", policy)
				return nil
			}

			tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBRIER")
			for _, s := range scores {
				fmt.Fprintf(tw, "%s\t%.4f\n", s.ForecastID, s.Brier)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			mean, _ := scoring.Mean(forecasts, policy)
			app.printf("Mean Brier score: %.4f over %d forecast(s), policy %s\n", mean, len(scores), policy)
			return nil
		},
	}
}

func newAggregateCmd(app *App) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Print the mean Brier score per author or team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			group := scoring.GroupBy(by)
			if !group.Valid() {
				return fmt.Errorf("unknown grouping %q (want %s or %s)", by, scoring.GroupByAuthor, scoring.GroupByTeam)
			}

			store, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			forecasts, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load forecasts: %w", err)
			}

			means := scoring.Aggregate(forecasts, app.Config.ScoringPolicy, group)
			if len(means) == 0 {
				app.printf("No scored forecasts with a %s\n", group)
				return nil
			}

			names := make([]string, 0, len(means))
			for name := range means {
				names = append(names, name)
			}
			sort.Strings(names)

			tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\tMEAN BRIER\n", strings.ToUpper(string(group)))
			for _, name := range names {
				fmt.Fprintf(tw, "%s\t%.4f\n", name, means[name])
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&by, "by", string(scoring.GroupByAuthor), "group by author or team")
	return cmd
}
