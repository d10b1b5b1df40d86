package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kindling/sponsor-engine/internal/model"
)

var testStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestLedger(slot *model.AdSlot) *MemoryLedger {
	l := NewMemoryLedger()
	l.PutSlot(slot)
	return l
}

func testSlot(maxSponsors int, allowCustomShare bool) *model.AdSlot {
	return &model.AdSlot{
		ID:               1,
		SiteID:           1,
		Position:         model.PositionBanner,
		PriceCentsPerDay: 1000,
		MaxSponsors:      maxSponsors,
		AllowCustomShare: allowCustomShare,
		Active:           true,
	}
}

func request(days int, share int) ReserveRequest {
	return ReserveRequest{
		SlotID:    1,
		SponsorID: 7,
		StartsAt:  testStart,
		EndsAt:    testStart.AddDate(0, 0, days),
		SharePct:  share,
		Creative:  "https://example.com/banner.png",
	}
}

func TestReserveDefaultShareSplit(t *testing.T) {
	ledger := newTestLedger(testSlot(4, false))
	alloc := NewAllocator(ledger, false)

	for i := 0; i < 4; i++ {
		sp, err := alloc.Reserve(context.Background(), request(7, 0))
		if err != nil {
			t.Fatalf("Reserve() #%d error = %v", i+1, err)
		}
		if sp.SharePct != 25 {
			t.Errorf("Reserve() #%d share = %d, want 25", i+1, sp.SharePct)
		}
		if sp.Status != model.StatusPending {
			t.Errorf("Reserve() #%d status = %q, want PENDING", i+1, sp.Status)
		}
		if sp.PriceCents != 1750 { // 1000 * 25% * 7 days
			t.Errorf("Reserve() #%d price = %d, want 1750", i+1, sp.PriceCents)
		}
	}

	// The slot is now fully booked for the window.
	_, err := alloc.Reserve(context.Background(), request(7, 0))
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("Reserve() on full slot error = %v, want CapacityError", err)
	}
	if capErr.Available != 0 || capErr.Requested != 25 {
		t.Errorf("CapacityError = %+v, want available 0 requested 25", capErr)
	}
}

func TestReserveUnlimitedSlotBypassesCapacity(t *testing.T) {
	ledger := newTestLedger(testSlot(0, false))
	alloc := NewAllocator(ledger, false)

	for i := 0; i < 10; i++ {
		sp, err := alloc.Reserve(context.Background(), request(3, 0))
		if err != nil {
			t.Fatalf("Reserve() #%d error = %v", i+1, err)
		}
		if sp.SharePct != 100 {
			t.Errorf("Reserve() #%d share = %d, want 100", i+1, sp.SharePct)
		}
	}
}

func TestReserveCustomShareClamped(t *testing.T) {
	ledger := newTestLedger(testSlot(2, true))
	alloc := NewAllocator(ledger, false)

	sp, err := alloc.Reserve(context.Background(), request(1, 250))
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if sp.SharePct != 100 {
		t.Errorf("share = %d, want clamp to 100", sp.SharePct)
	}
}

func TestReserveHalfOpenBoundary(t *testing.T) {
	ledger := newTestLedger(testSlot(1, false))
	alloc := NewAllocator(ledger, false)
	ctx := context.Background()

	// Sponsor A books days 0-10 at the full 100% share.
	first := ReserveRequest{
		SlotID: 1, SponsorID: 7,
		StartsAt: testStart, EndsAt: testStart.AddDate(0, 0, 10),
		Creative: "a",
	}
	if _, err := alloc.Reserve(ctx, first); err != nil {
		t.Fatalf("Reserve(A) error = %v", err)
	}

	// Days 5-15 overlap A and must be rejected regardless of share.
	overlapping := ReserveRequest{
		SlotID: 1, SponsorID: 8,
		StartsAt: testStart.AddDate(0, 0, 5), EndsAt: testStart.AddDate(0, 0, 15),
		Creative: "b",
	}
	_, err := alloc.Reserve(ctx, overlapping)
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("Reserve(overlap) error = %v, want CapacityError", err)
	}
	if capErr.Available != 0 || capErr.Requested != 100 {
		t.Errorf("CapacityError = %+v, want available 0 requested 100", capErr)
	}

	// Days 10-20 touch A only at the boundary; half-open windows do
	// not overlap there, so the booking succeeds.
	adjacent := ReserveRequest{
		SlotID: 1, SponsorID: 8,
		StartsAt: testStart.AddDate(0, 0, 10), EndsAt: testStart.AddDate(0, 0, 20),
		Creative: "b",
	}
	if _, err := alloc.Reserve(ctx, adjacent); err != nil {
		t.Fatalf("Reserve(adjacent) error = %v, want success", err)
	}
}

func TestReserveCapacityConservation(t *testing.T) {
	ledger := newTestLedger(testSlot(3, true))
	alloc := NewAllocator(ledger, true)
	ctx := context.Background()

	// A mix of overlapping windows and shares; some must fail, and
	// whatever is admitted must keep every instant at or below 100%.
	day := func(n int) time.Time { return testStart.AddDate(0, 0, n) }
	reqs := []ReserveRequest{
		{SlotID: 1, SponsorID: 1, StartsAt: day(0), EndsAt: day(10), SharePct: 60, Creative: "a"},
		{SlotID: 1, SponsorID: 2, StartsAt: day(5), EndsAt: day(12), SharePct: 50, Creative: "b"},
		{SlotID: 1, SponsorID: 3, StartsAt: day(5), EndsAt: day(12), SharePct: 40, Creative: "c"},
		{SlotID: 1, SponsorID: 4, StartsAt: day(10), EndsAt: day(20), SharePct: 60, Creative: "d"},
		{SlotID: 1, SponsorID: 5, StartsAt: day(8), EndsAt: day(16), SharePct: 30, Creative: "e"},
	}
	for _, r := range reqs {
		_, err := alloc.Reserve(ctx, r)
		var capErr *CapacityError
		if err != nil && !errors.As(err, &capErr) {
			t.Fatalf("Reserve(%d) unexpected error = %v", r.SponsorID, err)
		}
	}

	// Probe every day in the horizon.
	for n := 0; n < 20; n++ {
		at := day(n).Add(time.Hour)
		sum := 0
		live, err := ledger.LiveBySlot(ctx, 1, at)
		if err != nil {
			t.Fatalf("LiveBySlot() error = %v", err)
		}
		for _, s := range live {
			sum += s.SharePct
		}
		if sum > 100 {
			t.Errorf("day %d: summed share = %d, capacity exceeded", n, sum)
		}
	}
}

func TestReservePendingCountsAgainstCapacity(t *testing.T) {
	ledger := newTestLedger(testSlot(1, true))
	alloc := NewAllocator(ledger, false) // no simulated payment: stays PENDING

	if _, err := alloc.Reserve(context.Background(), request(7, 80)); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	_, err := alloc.Reserve(context.Background(), request(7, 30))
	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("Reserve() error = %v, want CapacityError while first is PENDING", err)
	}
	if capErr.Available != 20 || capErr.Requested != 30 {
		t.Errorf("CapacityError = %+v, want available 20 requested 30", capErr)
	}
}

func TestReserveValidation(t *testing.T) {
	ledger := newTestLedger(testSlot(1, false))
	alloc := NewAllocator(ledger, false)

	tests := []struct {
		name    string
		mutate  func(*ReserveRequest)
		wantErr error
	}{
		{name: "empty creative", mutate: func(r *ReserveRequest) { r.Creative = "  " }, wantErr: ErrInvalidInput},
		{name: "inverted window", mutate: func(r *ReserveRequest) { r.EndsAt = r.StartsAt.Add(-time.Hour) }, wantErr: ErrInvalidInput},
		{name: "empty window", mutate: func(r *ReserveRequest) { r.EndsAt = r.StartsAt }, wantErr: ErrInvalidInput},
		{name: "negative share", mutate: func(r *ReserveRequest) { r.SharePct = -5 }, wantErr: ErrInvalidInput},
		{name: "unknown slot", mutate: func(r *ReserveRequest) { r.SlotID = 99 }, wantErr: ErrSlotNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(7, 0)
			tt.mutate(&req)
			if _, err := alloc.Reserve(context.Background(), req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Reserve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReserveInactiveSlot(t *testing.T) {
	slot := testSlot(1, false)
	slot.Active = false
	alloc := NewAllocator(newTestLedger(slot), false)

	if _, err := alloc.Reserve(context.Background(), request(7, 0)); !errors.Is(err, ErrSlotInactive) {
		t.Errorf("Reserve() error = %v, want ErrSlotInactive", err)
	}
}

func TestReserveConcurrentAdmissionRace(t *testing.T) {
	ledger := newTestLedger(testSlot(1, true))
	alloc := NewAllocator(ledger, false)

	// Two simultaneous 60% requests on a 100% budget: exactly one may
	// win, no matter how the admissions interleave.
	const racers = 2
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := request(7, 60)
			req.SponsorID = uint64(100 + i)
			_, errs[i] = alloc.Reserve(context.Background(), req)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var capErr *CapacityError
		if !errors.As(err, &capErr) && !errors.Is(err, ErrTxConflict) {
			t.Errorf("racer %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestSimulatedPaymentActivatesImmediately(t *testing.T) {
	ledger := newTestLedger(testSlot(2, false))
	alloc := NewAllocator(ledger, true)

	sp, err := alloc.Reserve(context.Background(), request(7, 0))
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if sp.Status != model.StatusActive {
		t.Errorf("status = %q, want ACTIVE under simulated payment", sp.Status)
	}
	stored, err := ledger.Sponsorship(context.Background(), sp.ID)
	if err != nil {
		t.Fatalf("Sponsorship() error = %v", err)
	}
	if stored.Status != model.StatusActive {
		t.Errorf("stored status = %q, want ACTIVE", stored.Status)
	}
	if stored.PaymentRef == nil || *stored.PaymentRef != "simulated" {
		t.Errorf("payment ref = %v, want simulated marker", stored.PaymentRef)
	}
}

func TestConfirmAndCancelTransitions(t *testing.T) {
	ledger := newTestLedger(testSlot(2, false))
	alloc := NewAllocator(ledger, false)
	ctx := context.Background()

	sp, err := alloc.Reserve(ctx, request(7, 0))
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	if err := alloc.Confirm(ctx, sp.ID, "ch_123"); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	stored, _ := ledger.Sponsorship(ctx, sp.ID)
	if stored.Status != model.StatusActive {
		t.Errorf("status after confirm = %q, want ACTIVE", stored.Status)
	}
	if stored.PaymentRef == nil || *stored.PaymentRef != "ch_123" {
		t.Errorf("payment ref = %v, want ch_123", stored.PaymentRef)
	}

	// Confirming twice is not a valid transition.
	if err := alloc.Confirm(ctx, sp.ID, "ch_456"); !errors.Is(err, ErrSponsorshipNotFound) {
		t.Errorf("second Confirm() error = %v, want ErrSponsorshipNotFound", err)
	}

	// Only the owning sponsor may cancel.
	if err := alloc.Cancel(ctx, sp.ID, 999); !errors.Is(err, ErrForbidden) {
		t.Errorf("Cancel() by stranger error = %v, want ErrForbidden", err)
	}
	if err := alloc.Cancel(ctx, sp.ID, sp.SponsorID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	stored, _ = ledger.Sponsorship(ctx, sp.ID)
	if stored.Status != model.StatusCancelled {
		t.Errorf("status after cancel = %q, want CANCELLED", stored.Status)
	}

	// A cancelled sponsorship frees its share for the window.
	if _, err := alloc.Reserve(ctx, request(7, 0)); err != nil {
		t.Errorf("Reserve() after cancel error = %v, want freed capacity", err)
	}
}
