package timeline

import "fmt"

// InvalidEditError reports an edit operation that would violate a clip
// invariant. The operation is rejected and the composition is unchanged.
type InvalidEditError struct {
	Op     string
	ClipID string
	Reason string
}

func (e *InvalidEditError) Error() string {
	return fmt.Sprintf("%s rejected for clip %s: %s", e.Op, e.ClipID, e.Reason)
}

// ErrNotFound-style helpers keep call sites readable.
func notFound(op, clipID string) error {
	return &InvalidEditError{Op: op, ClipID: clipID, Reason: "clip not found"}
}
