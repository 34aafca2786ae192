package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alias1177/RiskForecast/internal/classify"
	"github.com/Alias1177/RiskForecast/internal/forecast"
	"github.com/Alias1177/RiskForecast/internal/probability"
	"github.com/Alias1177/RiskForecast/internal/storage"
	"github.com/Alias1177/RiskForecast/models"
)

type createOptions struct {
	forecastType  string
	outcomeClass  string
	statement     string
	observability string

	description string
	criteria    string

	mode  string
	start string
	end   string

	source      string
	probability float64
	baseRate    float64
	exposure    float64
	control     float64
	weights     []float64

	threshold string
	name      string
	author    string
	team      string
	rationale string
}

func newCreateCmd(app *App) *cobra.Command {
	var o createOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a new forecast",
		Long: `Record a new forecast at level E1.

The structural type and outcome class are given either directly (--type, --class)
or through the classifier (--statement, --observability). The probability is
either stated (--probability) or derived from risk factors
(--base-rate, --exposure, --control-strength).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := o.params(cmd)
			if err != nil {
				return err
			}
			f, err := forecast.New(params)
			if err != nil {
				return fmt.Errorf("failed to create forecast: %w", err)
			}

			store, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			if err := storage.Append(cmd.Context(), store, f); err != nil {
				return fmt.Errorf("failed to save forecast: %w", err)
			}

			app.printf("Forecast created: %s\n", f.ID)
			app.printf("Type %s, outcome class %s, level %s\n", f.Type, f.OutcomeClass, f.ComparisonLevel)
			if f.Derivation != nil {
				app.printf("Derived probability: %.4f\n", f.Derivation.ResultProbability)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.forecastType, "type", "", "forecast type (PT1-PT4)")
	flags.StringVar(&o.outcomeClass, "class", "", "outcome class (O1-O4)")
	flags.StringVar(&o.statement, "statement", "", "statement kind: "+strings.Join(classify.StatementKeys(), ", "))
	flags.StringVar(&o.observability, "observability", "", "outcome observability: "+strings.Join(classify.ObservabilityKeys(), ", "))
	flags.StringVar(&o.description, "description", "", "what event is forecast")
	flags.StringVar(&o.criteria, "criteria", "", "how the outcome is decided")
	flags.StringVar(&o.mode, "mode", string(models.ModeFixed), "evaluation mode (FIXED, OPEN, EVENT, UNKNOWN)")
	flags.StringVar(&o.start, "start", "", "horizon start (YYYY-MM-DD or RFC 3339)")
	flags.StringVar(&o.end, "end", "", "horizon end (YYYY-MM-DD or RFC 3339)")
	flags.StringVar(&o.source, "source", string(models.SourceExpert), "probability source (expert, data, mixed, derived, none)")
	flags.Float64Var(&o.probability, "probability", 0, "stated probability in [0,1]")
	flags.Float64Var(&o.baseRate, "base-rate", 0, "base rate factor in [0,1]")
	flags.Float64Var(&o.exposure, "exposure", 0, "exposure factor in [0,1]")
	flags.Float64Var(&o.control, "control-strength", 0, "control strength factor in [0,1]")
	flags.Float64SliceVar(&o.weights, "weights", nil, "factor weights base_rate,exposure,control_strength (default 0.4,0.4,0.2)")
	flags.StringVar(&o.threshold, "threshold", "", "count threshold, required for PT2 and O2")
	flags.StringVar(&o.name, "name", "", "short name")
	flags.StringVar(&o.author, "author", "", "author")
	flags.StringVar(&o.team, "team", "", "team")
	flags.StringVar(&o.rationale, "rationale", "", "free-text rationale")
	cmd.MarkFlagRequired("description")
	cmd.MarkFlagRequired("criteria")

	return cmd
}

func (o *createOptions) params(cmd *cobra.Command) (forecast.Params, error) {
	flags := cmd.Flags()

	forecastType, outcomeClass, err := o.classification()
	if err != nil {
		return forecast.Params{}, err
	}
	mode, err := models.ParseEvaluationMode(strings.ToUpper(o.mode))
	if err != nil {
		return forecast.Params{}, err
	}
	start, err := parseTimeFlag("start", o.start)
	if err != nil {
		return forecast.Params{}, err
	}
	end, err := parseTimeFlag("end", o.end)
	if err != nil {
		return forecast.Params{}, err
	}
	source, err := models.ParseProbabilitySource(strings.ToLower(o.source))
	if err != nil {
		return forecast.Params{}, err
	}

	p := forecast.Params{
		Type:                forecastType,
		OutcomeClass:        outcomeClass,
		EventDescription:    o.description,
		EventCriteria:       o.criteria,
		EvaluationMode:      mode,
		HorizonStart:        start,
		HorizonEnd:          end,
		ProbabilitySource:   source,
		ThresholdDefinition: o.threshold,
		Name:                o.name,
		Author:              o.author,
		Team:                o.team,
		Rationale:           o.rationale,
	}

	derived := flags.Changed("base-rate") || flags.Changed("exposure") || flags.Changed("control-strength")
	switch {
	case derived && flags.Changed("probability"):
		return forecast.Params{}, fmt.Errorf("--probability and risk factors are mutually exclusive")
	case derived:
		weights, err := parseWeights(o.weights)
		if err != nil {
			return forecast.Params{}, err
		}
		d, err := probability.Derive(models.Factors{
			BaseRate:        o.baseRate,
			Exposure:        o.exposure,
			ControlStrength: o.control,
		}, weights)
		if err != nil {
			return forecast.Params{}, err
		}
		p.ProbabilitySource = models.SourceDerived
		p.Derivation = &d
	case flags.Changed("probability"):
		prob := o.probability
		p.Probability = &prob
	}
	return p, nil
}

func (o *createOptions) classification() (models.ForecastType, models.OutcomeClass, error) {
	var (
		forecastType models.ForecastType
		outcomeClass models.OutcomeClass
		err          error
	)

	switch {
	case o.forecastType != "":
		if forecastType, err = models.ParseForecastType(strings.ToUpper(o.forecastType)); err != nil {
			return "", "", err
		}
	case o.statement != "":
		forecastType = classify.ParseStatementType(o.statement).ForecastType()
	default:
		return "", "", fmt.Errorf("either --type or --statement is required")
	}

	switch {
	case o.outcomeClass != "":
		if outcomeClass, err = models.ParseOutcomeClass(strings.ToUpper(o.outcomeClass)); err != nil {
			return "", "", err
		}
	case o.observability != "":
		outcomeClass = classify.ParseObservability(o.observability).OutcomeClass()
	default:
		return "", "", fmt.Errorf("either --class or --observability is required")
	}
	return forecastType, outcomeClass, nil
}

func parseWeights(values []float64) (*models.Weights, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("%w: --weights needs three values, got %d", models.ErrInvalidWeights, len(values))
	}
	return &models.Weights{BaseRate: values[0], Exposure: values[1], ControlStrength: values[2]}, nil
}
