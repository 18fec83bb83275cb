package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type Reason string

const (
	ReasonTimeout  Reason = "timeout"
	ReasonStatus   Reason = "status"
	ReasonLoading  Reason = "loading"
	ReasonPipeline Reason = "pipeline"
	ReasonError    Reason = "error"
)

// Failure is the typed error every renderer returns when no image could be produced.
type Failure struct {
	Reason Reason

	StatusCode int

	Err error
}

func (f *Failure) Error() string {
	switch f.Reason {
	case ReasonStatus:
		if f.Err != nil {
			return fmt.Sprintf("unexpected status %d: %v", f.StatusCode, f.Err)
		}

		return fmt.Sprintf("unexpected status %d", f.StatusCode)

	case ReasonLoading:
		return "model still loading"
	}

	if f.Err != nil {
		return string(f.Reason) + ": " + f.Err.Error()
	}

	return string(f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AbortsItem reports whether the remaining views of the current item
// should be given up as well.
func (f *Failure) AbortsItem() bool {
	return f.Reason == ReasonPipeline
}

func NewStatusFailure(status int, err error) *Failure {
	return &Failure{
		Reason:     ReasonStatus,
		StatusCode: status,

		Err: err,
	}
}

// ConvertError classifies a transport error into a Failure.
func ConvertError(err error) *Failure {
	if err == nil {
		return nil
	}

	var failure *Failure

	if errors.As(err, &failure) {
		return failure
	}

	if IsTimeout(err) {
		return &Failure{Reason: ReasonTimeout, Err: err}
	}

	return &Failure{Reason: ReasonError, Err: err}
}

func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// ReasonOf returns the failure reason of err, or ReasonError for untyped errors.
func ReasonOf(err error) Reason {
	var failure *Failure

	if errors.As(err, &failure) {
		return failure.Reason
	}

	return ReasonError
}
