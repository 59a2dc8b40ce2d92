package compare

import "fmt"

type Side string

const (
	SideA    Side = "A"
	SideB    Side = "B"
	SideBoth Side = "both"
)

// TruncationWarning notes that one side of a comparison ended early. Index
// is the number of aligned records produced, which is also the step index
// that side failed to deliver. Cause is nil when the side simply had fewer
// steps.
type TruncationWarning struct {
	Side  Side
	Index int64
	Cause error
}

func (w *TruncationWarning) Error() string {
	if w.Cause == nil {
		return fmt.Sprintf("comparison truncated at index %d: side %s ended early", w.Index, w.Side)
	}
	return fmt.Sprintf("comparison truncated at index %d: side %s failed: %v", w.Index, w.Side, w.Cause)
}

func (w *TruncationWarning) Unwrap() error { return w.Cause }
