package yiiep

import (
	"errors"
	"fmt"
)

var (
	// ErrBusiness matches a *BusinessError: the platform answered success=false.
	ErrBusiness = errors.New("business failure")
	// ErrVerification matches a *VerificationError: a signed reply did not verify.
	ErrVerification = errors.New("verification failure")
	// ErrTransport matches a *TransportError: the round trip itself failed.
	ErrTransport = errors.New("transport failure")
	// ErrInput matches an *InputError raised before anything is sent.
	ErrInput = errors.New("invalid input")
)

// BusinessError carries the platform's message verbatim.
type BusinessError struct {
	Op      Operation
	Message string
}

func (e *BusinessError) Error() string        { return e.Message }
func (e *BusinessError) Is(target error) bool { return target == ErrBusiness }

type VerificationError struct {
	Op  Operation
	Err error
}

func (e *VerificationError) Error() string        { return "decode failed: " + e.Err.Error() }
func (e *VerificationError) Unwrap() error        { return e.Err }
func (e *VerificationError) Is(target error) bool { return target == ErrVerification }

type TransportError struct {
	Op  Operation
	Err error
}

func (e *TransportError) Error() string        { return "request failed: " + e.Err.Error() }
func (e *TransportError) Unwrap() error        { return e.Err }
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// InputError rejects an argument at the API boundary.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string        { return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason) }
func (e *InputError) Is(target error) bool { return target == ErrInput }

func inputErr(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
