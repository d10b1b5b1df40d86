package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kindling/sponsor-engine/internal/model"
	"github.com/kindling/sponsor-engine/internal/pricing"
)

// reserveAttempts bounds how often an admission is retried after the
// ledger reports a transient serialization failure.
const reserveAttempts = 3

// simulatedPaymentRef marks sponsorships activated without a real
// charge so they remain distinguishable from processor confirmations.
const simulatedPaymentRef = "simulated"

// ReserveRequest carries one admission request into the allocator.
// SharePct zero means the caller did not request a specific share.
type ReserveRequest struct {
	SlotID    uint64
	SponsorID uint64
	StartsAt  time.Time
	EndsAt    time.Time
	SharePct  int
	Creative  string
}

// Allocator admits sponsorship requests against slot capacity.  When
// simulatePayment is set, successfully admitted sponsorships are
// activated immediately instead of waiting for the payment processor
// webhook; that mode exists for development and tests only and must
// never be the default in production configuration.
type Allocator struct {
	ledger          Ledger
	simulatePayment bool
	now             func() time.Time
}

// NewAllocator returns an allocator over the given ledger.
func NewAllocator(ledger Ledger, simulatePayment bool) *Allocator {
	return &Allocator{ledger: ledger, simulatePayment: simulatePayment, now: func() time.Time { return time.Now().UTC() }}
}

// Reserve validates the request, checks the slot's capacity budget over
// the requested window, prices the admission and persists a PENDING
// sponsorship.  Steps up to the insert mutate nothing; a failed
// admission leaves no partial state.  On ErrTxConflict the whole
// admission is re-run from scratch up to reserveAttempts times.
func (a *Allocator) Reserve(ctx context.Context, req ReserveRequest) (*model.Sponsorship, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var (
		sp  *model.Sponsorship
		err error
	)
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		sp, err = a.reserveOnce(ctx, req)
		if !errors.Is(err, ErrTxConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if a.simulatePayment {
		ref := simulatedPaymentRef
		if err := a.ledger.TransitionStatus(ctx, sp.ID, []string{model.StatusPending}, model.StatusActive, &ref); err != nil {
			return nil, fmt.Errorf("activate simulated payment: %w", err)
		}
		sp.Status = model.StatusActive
		sp.PaymentRef = &ref
	}
	return sp, nil
}

func (a *Allocator) reserveOnce(ctx context.Context, req ReserveRequest) (*model.Sponsorship, error) {
	var sp *model.Sponsorship
	err := a.ledger.Reserve(ctx, req.SlotID, func(tx LedgerTx) error {
		slot, err := tx.Slot(ctx, req.SlotID)
		if err != nil {
			return err
		}
		if !slot.Active {
			return ErrSlotInactive
		}

		share := effectiveShare(slot, req.SharePct)

		// Unlimited slots are impression-rotated inventory; every
		// sponsorship is an independent full-share purchase and the
		// budget check does not apply.
		if slot.MaxSponsors > 0 {
			sum, err := tx.OverlapShareSum(ctx, req.SlotID, req.StartsAt, req.EndsAt)
			if err != nil {
				return err
			}
			if sum+share > 100 {
				return &CapacityError{Available: 100 - sum, Requested: share}
			}
		}

		price, err := pricing.Price(slot.PriceCentsPerDay, share, pricing.Days(req.StartsAt, req.EndsAt))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		sp = &model.Sponsorship{
			AdSlotID:   req.SlotID,
			SponsorID:  req.SponsorID,
			Status:     model.StatusPending,
			StartsAt:   req.StartsAt.UTC(),
			EndsAt:     req.EndsAt.UTC(),
			SharePct:   share,
			PriceCents: price,
			Creative:   req.Creative,
		}
		return tx.Insert(ctx, sp)
	})
	if err != nil {
		return nil, err
	}
	return sp, nil
}

// Confirm transitions a PENDING sponsorship to ACTIVE.  It is invoked
// by the payment processor collaborator after a successful charge.
func (a *Allocator) Confirm(ctx context.Context, id uint64, paymentRef string) error {
	var ref *string
	if paymentRef != "" {
		ref = &paymentRef
	}
	return a.ledger.TransitionStatus(ctx, id, []string{model.StatusPending}, model.StatusActive, ref)
}

// Cancel transitions a PENDING or ACTIVE sponsorship to CANCELLED on
// behalf of its owning sponsor.
func (a *Allocator) Cancel(ctx context.Context, id, sponsorID uint64) error {
	sp, err := a.ledger.Sponsorship(ctx, id)
	if err != nil {
		return err
	}
	if sp.SponsorID != sponsorID {
		return ErrForbidden
	}
	return a.ledger.TransitionStatus(ctx, id, []string{model.StatusPending, model.StatusActive}, model.StatusCancelled, nil)
}

// effectiveShare applies the slot's capacity policy to a requested
// share.  Unlimited slots always sell full share.  The equal-split
// default floors at 1 so a slot capped above 100 sponsors still gives
// every buyer a non-zero share, mirroring the selector's one-ticket
// minimum.
func effectiveShare(slot *model.AdSlot, requested int) int {
	if slot.MaxSponsors == 0 {
		return 100
	}
	if slot.AllowCustomShare && requested > 0 {
		if requested > 100 {
			return 100
		}
		return requested
	}
	share := 100 / slot.MaxSponsors
	if share < 1 {
		share = 1
	}
	return share
}

func validateRequest(req ReserveRequest) error {
	if req.SlotID == 0 {
		return fmt.Errorf("%w: slot id is required", ErrInvalidInput)
	}
	if req.SponsorID == 0 {
		return fmt.Errorf("%w: sponsor id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Creative) == "" {
		return fmt.Errorf("%w: creative is required", ErrInvalidInput)
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return fmt.Errorf("%w: window must start before it ends", ErrInvalidInput)
	}
	if req.SharePct < 0 {
		return fmt.Errorf("%w: share must not be negative", ErrInvalidInput)
	}
	return nil
}
