package audio

import "fmt"

// DefaultDuration is substituted by callers when a decode or probe fails,
// so upload/edit flows can continue with a plausible length.
const DefaultDuration = 180.0

// DecodeError reports a corrupt or unsupported input stream. Recoverable:
// callers substitute DefaultDuration and keep going.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode failed: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TimeoutError reports that duration probing exceeded its bound.
type TimeoutError struct {
	Op      string
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Timeout)
}
