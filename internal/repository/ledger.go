package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/kindling/sponsor-engine/internal/booking"
	"github.com/kindling/sponsor-engine/internal/model"
)

// SQLLedger implements booking.Ledger over MySQL.  Serialization of
// concurrent admissions on the same slot comes from the row lock taken
// by SELECT ... FOR UPDATE on the ad_slots row: the second admission
// blocks on Slot until the first commits, then observes its insert in
// the overlap sum.  Different slots lock different rows and proceed
// independently.
type SQLLedger struct {
	db           *sql.DB
	slots        *AdSlotRepo
	sponsorships *SponsorshipRepo
}

// NewSQLLedger builds a ledger over the given repositories.
func NewSQLLedger(db *sql.DB, slots *AdSlotRepo, sponsorships *SponsorshipRepo) *SQLLedger {
	return &SQLLedger{db: db, slots: slots, sponsorships: sponsorships}
}

type sqlLedgerTx struct {
	tx *sql.Tx
	l  *SQLLedger
}

func (t sqlLedgerTx) Slot(ctx context.Context, slotID uint64) (*model.AdSlot, error) {
	s, err := t.l.slots.GetByIDForUpdateTx(ctx, t.tx, slotID)
	if errors.Is(err, ErrSlotNotFound) {
		return nil, booking.ErrSlotNotFound
	}
	return s, mapTxErr(err)
}

func (t sqlLedgerTx) OverlapShareSum(ctx context.Context, slotID uint64, start, end time.Time) (int, error) {
	sum, err := t.l.sponsorships.OverlapShareSumTx(ctx, t.tx, slotID, start, end)
	return sum, mapTxErr(err)
}

func (t sqlLedgerTx) Insert(ctx context.Context, s *model.Sponsorship) error {
	return mapTxErr(t.l.sponsorships.CreateTx(ctx, t.tx, s))
}

// Reserve runs fn inside one transaction.  Anything fn did is rolled
// back when it fails, so a rejected admission leaves no partial state.
func (l *SQLLedger) Reserve(ctx context.Context, _ uint64, fn func(tx booking.LedgerTx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(sqlLedgerTx{tx: tx, l: l}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapTxErr(err)
	}
	committed = true
	return nil
}

func (l *SQLLedger) Sponsorship(ctx context.Context, id uint64) (*model.Sponsorship, error) {
	s, err := l.sponsorships.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrSponsorshipNotFound
	}
	return s, err
}

func (l *SQLLedger) TransitionStatus(ctx context.Context, id uint64, from []string, to string, paymentRef *string) error {
	err := l.sponsorships.TransitionStatus(ctx, id, from, to, paymentRef)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrSponsorshipNotFound
	}
	return err
}

// mapTxErr converts MySQL's transient serialization failures (1213
// deadlock victim, 1205 lock wait timeout) into booking.ErrTxConflict
// so the allocator can retry the whole admission.
func mapTxErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "1213") || strings.Contains(msg, "1205") {
		return booking.ErrTxConflict
	}
	return err
}
