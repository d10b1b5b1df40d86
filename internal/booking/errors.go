// Package booking implements the capacity allocator: admission of
// sponsorship requests into a slot's 100% share budget, pricing of the
// admission, and the PENDING -> ACTIVE/CANCELLED lifecycle around
// payment confirmation.
package booking

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for malformed booking requests (empty
// creative, inverted window, and so on).  Handlers should translate it
// into an HTTP 400 response.
var ErrInvalidInput = errors.New("invalid booking request")

// ErrSlotNotFound is returned when the requested slot does not exist.
var ErrSlotNotFound = errors.New("ad slot not found")

// ErrSlotInactive is returned when the slot exists but its owner has
// disabled it for new sponsorships.
var ErrSlotInactive = errors.New("ad slot is not active")

// ErrSponsorshipNotFound is returned when a confirmation or
// cancellation references an unknown sponsorship, or one that is not
// in a state the transition accepts.
var ErrSponsorshipNotFound = errors.New("sponsorship not found")

// ErrForbidden is returned when a sponsor attempts to cancel a
// sponsorship they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrTxConflict signals a transient serialization failure in the
// ledger (lock wait timeout, deadlock victim).  The allocator retries
// the whole admission from scratch a bounded number of times before
// surfacing it.
var ErrTxConflict = errors.New("transaction conflict")

// CapacityError reports that admitting the requested share would push
// the slot past its 100% budget somewhere in the requested window.  It
// carries the remaining budget so the caller can retry with a smaller
// share or a different window; it is never retried automatically.
type CapacityError struct {
	Available int // share still free over the requested window
	Requested int // effective share the request needed
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("slot is full for the requested window: %d%% available, %d%% requested", e.Available, e.Requested)
}
