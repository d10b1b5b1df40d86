package booking

import (
	"context"
	"time"

	"github.com/kindling/sponsor-engine/internal/model"
)

// LedgerTx is the view of the capacity ledger inside one admission.
// Implementations guarantee that between Slot and Insert no other
// admission for the same slot can interleave, so the overlap sum a
// request observed still holds when its row is written.
type LedgerTx interface {
	// Slot returns the slot under admission, or ErrSlotNotFound.
	// MySQL implementations lock the row for the rest of the scope.
	Slot(ctx context.Context, slotID uint64) (*model.AdSlot, error)

	// OverlapShareSum returns the summed share_pct of every PENDING or
	// ACTIVE sponsorship on the slot whose window overlaps the
	// half-open window [start, end).
	OverlapShareSum(ctx context.Context, slotID uint64, start, end time.Time) (int, error)

	// Insert persists a new sponsorship and populates its ID.
	Insert(ctx context.Context, s *model.Sponsorship) error
}

// Ledger is the persistence boundary of the allocator.  The MySQL
// implementation lives in the repository package; MemoryLedger backs
// tests and local development without a database.
type Ledger interface {
	// Reserve runs fn inside a scope serialized per slot.  If fn
	// returns an error the scope is rolled back and nothing is
	// persisted.  Transient serialization failures surface as
	// ErrTxConflict.
	Reserve(ctx context.Context, slotID uint64, fn func(tx LedgerTx) error) error

	// Sponsorship loads one sponsorship, or ErrSponsorshipNotFound.
	Sponsorship(ctx context.Context, id uint64) (*model.Sponsorship, error)

	// TransitionStatus moves a sponsorship from one of the given
	// states to another, recording an optional payment reference.
	// It returns ErrSponsorshipNotFound when no row matches, which
	// also covers transitions from a state not listed in from.
	TransitionStatus(ctx context.Context, id uint64, from []string, to string, paymentRef *string) error
}
