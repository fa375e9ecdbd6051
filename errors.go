package ecgcore

import "errors"

// Error kinds emitted by the core. BadConfig and InsufficientData are
// fatal and short-circuit the pipeline; a numeric failure is handled
// internally by resetting each non-finite output value to zero and
// adding a warning naming ErrNumericFailure, and is never returned to
// the caller.
var (
	ErrInsufficientData = errors.New("ecgcore: insufficient data")
	ErrBadConfig        = errors.New("ecgcore: bad config")
	ErrNumericFailure   = errors.New("ecgcore: numeric failure")
)
