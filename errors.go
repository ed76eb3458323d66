package livediff

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three kinds recognized by §7. Wrap one of these
// with fmt.Errorf("...: %w", ...) to add detail; callers should match with
// errors.Is, not string comparison.
var (
	// ErrStructuralViolation signals a node that fails an invariant of §3
	// (e.g. len(static) != len(dynamic)+1). Fatal for the render.
	ErrStructuralViolation = errors.New("livediff: structural violation")

	// ErrComponentFailed signals that a component's Mount, Update, or
	// Render callback returned an error. Fails the entire render; no
	// partial state is committed.
	ErrComponentFailed = errors.New("livediff: component callback failed")

	// ErrUnknownCID signals a cid referenced in a diff that the registry
	// has no entry for. Always a programmer error - the registry never
	// silently creates an entry for an unrecognized cid.
	ErrUnknownCID = errors.New("livediff: unknown cid")
)

// StructuralError carries the detail behind ErrStructuralViolation: the
// human-readable Reason and a Detail string identifying which node and
// what counts disagreed.
type StructuralError struct {
	Reason string
	Detail string
	Slot   []int // path of dynamic-slot indices from the root to the node
}

func (e *StructuralError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("livediff: %s", e.Reason)
	}
	return fmt.Sprintf("livediff: %s: %s (slot path %v)", e.Reason, e.Detail, e.Slot)
}

func (e *StructuralError) Unwrap() error { return ErrStructuralViolation }

func wrapSlotError(err error, slot int) error {
	var se *StructuralError
	if errors.As(err, &se) {
		se.Slot = append([]int{slot}, se.Slot...)
		return se
	}
	return err
}

func rowDetail(rowIndex, got, want int) string {
	return fmt.Sprintf("row %d has %d elements, want %d", rowIndex, got, want)
}

func dynamicCountDetail(got, want int) string {
	return fmt.Sprintf("has %d dynamic slots, want %d", got, want)
}

// ComponentError wraps a failed component callback with the cid and
// extern id it was invoked for.
type ComponentError struct {
	CID      int
	ExternID string
	Callback string // "mount", "update", or "render"
	Err      error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("livediff: component %s (cid=%d, id=%q) failed: %v", e.Callback, e.CID, e.ExternID, e.Err)
}

func (e *ComponentError) Unwrap() error { return ErrComponentFailed }

// UnknownCIDError identifies the cid a diff referenced that the registry
// has no entry for.
type UnknownCIDError struct {
	CID int
}

func (e *UnknownCIDError) Error() string {
	return fmt.Sprintf("livediff: unknown cid %d", e.CID)
}

func (e *UnknownCIDError) Unwrap() error { return ErrUnknownCID }

// IsStructuralViolation reports whether err is (or wraps) ErrStructuralViolation.
func IsStructuralViolation(err error) bool { return errors.Is(err, ErrStructuralViolation) }

// IsComponentFailure reports whether err is (or wraps) ErrComponentFailed.
func IsComponentFailure(err error) bool { return errors.Is(err, ErrComponentFailed) }

// IsUnknownCID reports whether err is (or wraps) ErrUnknownCID.
func IsUnknownCID(err error) bool { return errors.Is(err, ErrUnknownCID) }
