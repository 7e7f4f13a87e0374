package yiiep

import (
	"errors"
	"time"
)

// Outcome classifies how a call ended.
type Outcome string

const (
	OutcomeSuccess             Outcome = "success"
	OutcomeBusinessFailure     Outcome = "business_failure"
	OutcomeVerificationFailure Outcome = "verification_failure"
	OutcomeTransportFailure    Outcome = "transport_failure"
	OutcomeInputError          Outcome = "input_error"
)

// Observer is notified once per operation call, including calls rejected by input
// validation.
type Observer interface {
	ObserveCall(op Operation, outcome Outcome, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(Operation, Outcome, time.Duration) {}

// OutcomeOf classifies err; nil is a success.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrBusiness):
		return OutcomeBusinessFailure
	case errors.Is(err, ErrVerification):
		return OutcomeVerificationFailure
	case errors.Is(err, ErrInput):
		return OutcomeInputError
	default:
		return OutcomeTransportFailure
	}
}
