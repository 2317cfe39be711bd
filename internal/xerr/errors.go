// Package xerr defines the error taxonomy shared by the trading packages.
//
// Every failure is a *Error carrying a stable Code; errors.Is matches on the code,
// so a wrapped cause never hides which class of failure happened.
package xerr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	CodePoolUninitialized   = "POOL_UNINITIALIZED"
	CodeUnsupported         = "VENUE_UNSUPPORTED_OPERATION"
	CodeMissingFeeOrTip     = "MISSING_FEE_OR_TIP_CONFIGURATION"
	CodeInstructionBuild    = "INSTRUCTION_BUILD"
	CodeSigning             = "SIGNING"
	CodeProviderSubmission  = "PROVIDER_SUBMISSION"
	CodeLedgerQuery         = "LEDGER_QUERY"
	CodeNotInitialized      = "NOT_INITIALIZED"
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeBroadcastIncomplete = "BROADCAST_INCOMPLETE"
)

type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of e wrapping cause. Sentinels are never mutated.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Cause: cause}
}

// Withf returns a copy of e with a more specific message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...), Cause: e.Cause}
}

func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrPoolUninitialized = NewError(CodePoolUninitialized, "pool reserves are zero or missing")
	ErrUnsupported       = NewError(CodeUnsupported, "operation not supported by venue")
	ErrMissingFeeOrTip   = NewError(CodeMissingFeeOrTip, "fee or tip configuration missing")
	ErrInstructionBuild  = NewError(CodeInstructionBuild, "failed to build instruction")
	ErrSigning           = NewError(CodeSigning, "failed to sign transaction")
	ErrLedgerQuery       = NewError(CodeLedgerQuery, "ledger query failed")
	ErrNotInitialized    = NewError(CodeNotInitialized, "venue not initialized")
	ErrInvalidArgument   = NewError(CodeInvalidArgument, "invalid argument")
)

// Ledger wraps a failed ledger read with what was being fetched.
func Ledger(cause error, format string, args ...any) error {
	return ErrLedgerQuery.WithCause(errors.Wrapf(cause, format, args...))
}

func Build(cause error, format string, args ...any) error {
	return ErrInstructionBuild.WithCause(errors.Wrapf(cause, format, args...))
}

func Signing(cause error) error {
	return ErrSigning.WithCause(errors.WithStack(cause))
}

// ProviderError is one relay's failed submission.
type ProviderError struct {
	Provider string
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", CodeProviderSubmission, e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// BroadcastError aggregates every failed provider of one fan-out.
type BroadcastError struct {
	err error
}

func NewBroadcastError(failures []*ProviderError) error {
	var err error
	for _, f := range failures {
		if f != nil {
			err = multierr.Append(err, f)
		}
	}
	if err == nil {
		return nil
	}
	return &BroadcastError{err: err}
}

func (e *BroadcastError) Error() string {
	failures := e.Failures()
	names := make([]string, 0, len(failures))
	for _, f := range failures {
		names = append(names, f.Provider)
	}
	return fmt.Sprintf("%s: %d provider(s) failed [%s]: %v",
		CodeBroadcastIncomplete, len(failures), strings.Join(names, ", "), e.err)
}

func (e *BroadcastError) Unwrap() []error { return multierr.Errors(e.err) }

// Failures lists the provider failures in submission order.
func (e *BroadcastError) Failures() []*ProviderError {
	errs := multierr.Errors(e.err)
	out := make([]*ProviderError, 0, len(errs))
	for _, err := range errs {
		var pe *ProviderError
		if errors.As(err, &pe) {
			out = append(out, pe)
		}
	}
	return out
}
