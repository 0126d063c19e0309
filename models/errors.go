package models

import "errors"

var (
	ErrDataUnavailable     = errors.New("data unavailable")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrModelUnavailable    = errors.New("model unavailable")
	ErrComputation         = errors.New("computation error")
	ErrModelNotFound       = errors.New("model not found")
)

type Reason string

const (
	ReasonNone                Reason = ""
	ReasonDataUnavailable     Reason = "DataUnavailable"
	ReasonInsufficientHistory Reason = "InsufficientHistory"
	ReasonModelUnavailable    Reason = "ModelUnavailable"
	ReasonComputation         Reason = "ComputationError"
	ReasonUnknown             Reason = "Unknown"
)

// ReasonOf classifies err into the failure taxonomy.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrDataUnavailable):
		return ReasonDataUnavailable
	case errors.Is(err, ErrInsufficientHistory):
		return ReasonInsufficientHistory
	case errors.Is(err, ErrModelUnavailable), errors.Is(err, ErrModelNotFound):
		return ReasonModelUnavailable
	case errors.Is(err, ErrComputation):
		return ReasonComputation
	default:
		return ReasonUnknown
	}
}
