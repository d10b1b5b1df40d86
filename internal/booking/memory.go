package booking

import (
	"context"
	"sync"
	"time"

	"github.com/kindling/sponsor-engine/internal/model"
)

// MemoryLedger is an in-memory Ledger used by tests and local
// development runs without MySQL.  A single mutex serializes all
// admissions, which trivially satisfies the per-slot atomicity the
// allocator requires.
type MemoryLedger struct {
	mu           sync.Mutex
	slots        map[uint64]*model.AdSlot
	sponsorships map[uint64]*model.Sponsorship
	nextID       uint64
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		slots:        make(map[uint64]*model.AdSlot),
		sponsorships: make(map[uint64]*model.Sponsorship),
	}
}

// PutSlot stores or replaces a slot definition.
func (m *MemoryLedger) PutSlot(s *model.AdSlot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.slots[s.ID] = &cp
}

type memoryTx struct{ m *MemoryLedger }

func (t memoryTx) Slot(_ context.Context, slotID uint64) (*model.AdSlot, error) {
	s, ok := t.m.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (t memoryTx) OverlapShareSum(_ context.Context, slotID uint64, start, end time.Time) (int, error) {
	sum := 0
	for _, s := range t.m.sponsorships {
		if s.AdSlotID != slotID {
			continue
		}
		if s.Status != model.StatusPending && s.Status != model.StatusActive {
			continue
		}
		if s.Overlaps(start, end) {
			sum += s.SharePct
		}
	}
	return sum, nil
}

func (t memoryTx) Insert(_ context.Context, s *model.Sponsorship) error {
	t.m.nextID++
	s.ID = t.m.nextID
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	cp := *s
	t.m.sponsorships[s.ID] = &cp
	return nil
}

// Reserve serializes fn under the ledger mutex.  Inserts performed by
// fn are kept only if fn returns nil.
func (m *MemoryLedger) Reserve(ctx context.Context, slotID uint64, fn func(tx LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.nextID
	if err := fn(memoryTx{m: m}); err != nil {
		// Roll back anything fn inserted.
		for id := before + 1; id <= m.nextID; id++ {
			delete(m.sponsorships, id)
		}
		m.nextID = before
		return err
	}
	return nil
}

func (m *MemoryLedger) Sponsorship(_ context.Context, id uint64) (*model.Sponsorship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sponsorships[id]
	if !ok {
		return nil, ErrSponsorshipNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryLedger) TransitionStatus(_ context.Context, id uint64, from []string, to string, paymentRef *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sponsorships[id]
	if !ok {
		return ErrSponsorshipNotFound
	}
	allowed := false
	for _, f := range from {
		if s.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrSponsorshipNotFound
	}
	s.Status = to
	if paymentRef != nil {
		ref := *paymentRef
		s.PaymentRef = &ref
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// LiveBySlot returns the ACTIVE sponsorships on a slot whose window
// contains t.  It lets the memory ledger double as the serving store
// in tests and database-less runs.
func (m *MemoryLedger) LiveBySlot(_ context.Context, slotID uint64, t time.Time) ([]*model.Sponsorship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var live []*model.Sponsorship
	for _, s := range m.sponsorships {
		if s.AdSlotID == slotID && s.Live(t) {
			cp := *s
			live = append(live, &cp)
		}
	}
	return live, nil
}
