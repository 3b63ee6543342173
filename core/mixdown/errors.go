package mixdown

import "fmt"

// RenderError reports a failed render: no valid input assets or a graph
// construction failure. Rendering is all-or-nothing; no partial asset is
// ever produced alongside a RenderError.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("render failed: %s", e.Reason)
}

func (e *RenderError) Unwrap() error { return e.Err }
