package models

import "errors"

// Errors raised by record construction, transforms and the probability deriver.
// Callers match them with errors.Is; messages carry the offending field.
var (
	ErrMissingField        = errors.New("missing field")
	ErrInvalidHorizon      = errors.New("invalid horizon")
	ErrInvalidProbability  = errors.New("invalid probability")
	ErrMissingThreshold    = errors.New("missing threshold definition")
	ErrInvalidOutcome      = errors.New("invalid outcome")
	ErrInvalidFactor       = errors.New("invalid factor")
	ErrInvalidWeights      = errors.New("invalid weights")
	ErrIneligibleTransform = errors.New("ineligible transform")
	ErrMissingHorizon      = errors.New("missing horizon")
)
