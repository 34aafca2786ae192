// Package codec maps forecast records to and from their JSON document form.
// Every storage backend goes through it, so the defaulting rules for older
// documents apply everywhere.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/RiskForecast/models"
)

// SchemaVersion is written into every document. Documents without it are
// treated as the oldest shape and defaulted field by field.
const SchemaVersion = 2

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// document is the persisted shape of a record. Absent values are null.
type document struct {
	SchemaVersion int    `json:"schema_version"`
	ForecastID    string `json:"forecast_id"`
	Timestamp     string `json:"forecast_timestamp"`

	ForecastType string `json:"forecast_type"`
	OutcomeClass string `json:"outcome_class"`

	EventDescription string `json:"event_description"`
	EventCriteria    string `json:"event_criteria"`

	EvaluationMode string  `json:"evaluation_mode"`
	HorizonStart   *string `json:"forecast_horizon_start"`
	HorizonEnd     *string `json:"forecast_horizon_end"`

	ProbabilitySource string             `json:"probability_source"`
	Probability       *float64           `json:"probability"`
	Derivation        *models.Derivation `json:"probability_derivation"`

	ThresholdDefinition *string `json:"threshold_definition"`
	ThresholdAssumption *string `json:"threshold_assumption"`

	ComparisonLevel         string  `json:"comparison_level"`
	NormalizationApplied    bool    `json:"normalization_applied"`
	NormalizationAssumption *string `json:"normalization_assumption"`
	NormalizedWindowDays    *int    `json:"normalized_window_days"`

	ForecastName string  `json:"forecast_name"`
	Author       *string `json:"author"`
	Team         *string `json:"team"`
	Rationale    *string `json:"rationale"`

	Outcome             *int    `json:"outcome"`
	EvaluationTimestamp *string `json:"evaluation_timestamp"`
}

// looseDocument accepts every shape older versions wrote.
type looseDocument struct {
	ForecastID string `json:"forecast_id"`
	Timestamp  string `json:"forecast_timestamp"`

	ForecastType string `json:"forecast_type"`
	OutcomeClass string `json:"outcome_class"`

	EventDescription string `json:"event_description"`
	EventCriteria    string `json:"event_criteria"`

	EvaluationMode string `json:"evaluation_mode"`
	HorizonStart   string `json:"forecast_horizon_start"`
	HorizonEnd     string `json:"forecast_horizon_end"`

	ProbabilitySource string             `json:"probability_source"`
	Probability       any                `json:"probability"`
	Derivation        *models.Derivation `json:"probability_derivation"`

	ThresholdDefinition string `json:"threshold_definition"`
	ThresholdAssumption string `json:"threshold_assumption"`

	ComparisonLevel         string `json:"comparison_level"`
	NormalizationApplied    bool   `json:"normalization_applied"`
	NormalizationAssumption string `json:"normalization_assumption"`
	NormalizedWindowDays    any    `json:"normalized_window_days"`

	ForecastName  string `json:"forecast_name"`
	ForecastTitle string `json:"forecast_title"`
	Author        string `json:"author"`
	Team          string `json:"team"`
	Rationale     string `json:"rationale"`

	Outcome             any    `json:"outcome"`
	EvaluationTimestamp string `json:"evaluation_timestamp"`
}

// Encode returns the JSON document of f.
func Encode(f models.Forecast) ([]byte, error) {
	return marshal(toDocument(f), false)
}

// EncodeAll returns an indented JSON array of all records.
func EncodeAll(forecasts []models.Forecast) ([]byte, error) {
	docs := make([]document, 0, len(forecasts))
	for _, f := range forecasts {
		docs = append(docs, toDocument(f))
	}
	return marshal(docs, true)
}

// Decode parses a single record document.
func Decode(data []byte) (models.Forecast, error) {
	var d looseDocument
	if err := json.Unmarshal(data, &d); err != nil {
		return models.Forecast{}, fmt.Errorf("decode forecast: %w", err)
	}
	if strings.TrimSpace(d.ForecastID) == "" {
		return models.Forecast{}, fmt.Errorf("decode forecast: missing forecast_id")
	}
	return fromDocument(d), nil
}

// DecodeAll parses a JSON array of documents. A top level that is not an
// array yields no records; array entries that are not objects are skipped.
func DecodeAll(data []byte) ([]models.Forecast, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode forecasts: %w", err)
	}

	forecasts := make([]models.Forecast, 0, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		f, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, nil
}

func toDocument(f models.Forecast) document {
	return document{
		SchemaVersion:           SchemaVersion,
		ForecastID:              f.ID,
		Timestamp:               formatTime(f.CreatedAt),
		ForecastType:            string(f.Type),
		OutcomeClass:            string(f.OutcomeClass),
		EventDescription:        f.EventDescription,
		EventCriteria:           f.EventCriteria,
		EvaluationMode:          string(f.EvaluationMode),
		HorizonStart:            formatTimePtr(f.HorizonStart),
		HorizonEnd:              formatTimePtr(f.HorizonEnd),
		ProbabilitySource:       string(f.ProbabilitySource),
		Probability:             f.Probability,
		Derivation:              f.Derivation,
		ThresholdDefinition:     optional(f.ThresholdDefinition),
		ThresholdAssumption:     optional(f.ThresholdAssumption),
		ComparisonLevel:         string(f.ComparisonLevel),
		NormalizationApplied:    f.NormalizationApplied,
		NormalizationAssumption: optional(f.NormalizationAssumption),
		NormalizedWindowDays:    f.NormalizedWindowDays,
		ForecastName:            f.Name,
		Author:                  optional(f.Author),
		Team:                    optional(f.Team),
		Rationale:               optional(f.Rationale),
		Outcome:                 f.Outcome,
		EvaluationTimestamp:     formatTimePtr(f.EvaluatedAt),
	}
}

func fromDocument(d looseDocument) models.Forecast {
	f := models.Forecast{
		ID:                      strings.TrimSpace(d.ForecastID),
		Type:                    models.TypeBinary,
		OutcomeClass:            models.OutcomeUnambiguous,
		EventDescription:        strings.TrimSpace(d.EventDescription),
		EventCriteria:           strings.TrimSpace(d.EventCriteria),
		EvaluationMode:          models.ModeFixed,
		HorizonStart:            parseTime(d.HorizonStart),
		HorizonEnd:              parseTime(d.HorizonEnd),
		ProbabilitySource:       models.SourceExpert,
		Probability:             parseProbability(d.Probability),
		Derivation:              d.Derivation,
		ThresholdDefinition:     strings.TrimSpace(d.ThresholdDefinition),
		ThresholdAssumption:     strings.TrimSpace(d.ThresholdAssumption),
		ComparisonLevel:         models.LevelDocumented,
		NormalizationApplied:    d.NormalizationApplied,
		NormalizationAssumption: strings.TrimSpace(d.NormalizationAssumption),
		NormalizedWindowDays:    parseWindowDays(d.NormalizedWindowDays),
		Author:                  strings.TrimSpace(d.Author),
		Team:                    strings.TrimSpace(d.Team),
		Rationale:               strings.TrimSpace(d.Rationale),
		Outcome:                 parseOutcome(d.Outcome),
		EvaluatedAt:             parseTime(d.EvaluationTimestamp),
	}

	if created := parseTime(d.Timestamp); created != nil {
		f.CreatedAt = *created
	} else {
		f.CreatedAt = time.Now().UTC()
	}
	if t := models.ForecastType(d.ForecastType); t.Valid() {
		f.Type = t
	}
	if c := models.OutcomeClass(d.OutcomeClass); c.Valid() {
		f.OutcomeClass = c
	}
	if m := models.EvaluationMode(d.EvaluationMode); m.Valid() {
		f.EvaluationMode = m
	}
	if s := models.ProbabilitySource(d.ProbabilitySource); s.Valid() {
		f.ProbabilitySource = s
	}
	if l := models.ComparisonLevel(d.ComparisonLevel); l.Valid() {
		f.ComparisonLevel = l
	}

	f.Name = strings.TrimSpace(d.ForecastName)
	if f.Name == "" {
		f.Name = strings.TrimSpace(d.ForecastTitle)
	}
	if f.Name == "" {
		f.Name = models.DefaultForecastName
	}

	// Older documents never stored E3.
	f.PromoteIfScorable()
	return f
}

func marshal(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode forecasts: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseFloat(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return &f
		}
	}
	return nil
}

// parseProbability keeps finite values in [0,1]; anything else reads as absent.
func parseProbability(v any) *float64 {
	p := parseFloat(v)
	if p == nil || math.IsNaN(*p) || *p < 0 || *p > 1 {
		return nil
	}
	return p
}

// parseWindowDays keeps positive whole day counts that fit an int32.
func parseWindowDays(v any) *int {
	f := parseFloat(v)
	if f == nil || math.IsNaN(*f) || *f < 1 || *f > math.MaxInt32 || *f != math.Trunc(*f) {
		return nil
	}
	n := int(*f)
	return &n
}

// parseOutcome keeps only 0 and 1 (as numbers, strings or booleans).
// Anything else reads as "no outcome yet".
func parseOutcome(v any) *int {
	var o int
	switch x := v.(type) {
	case float64:
		if x != 0 && x != 1 {
			return nil
		}
		o = int(x)
	case string:
		switch strings.TrimSpace(x) {
		case "0":
			o = 0
		case "1":
			o = 1
		default:
			return nil
		}
	case bool:
		if x {
			o = 1
		}
	default:
		return nil
	}
	return &o
}
