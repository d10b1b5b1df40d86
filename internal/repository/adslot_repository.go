package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kindling/sponsor-engine/internal/model"
)

// AdSlotRepo manages persistence for ad slots.
type AdSlotRepo struct {
	db *sql.DB
}

// NewAdSlotRepo returns an AdSlotRepo bound to the given database.
func NewAdSlotRepo(db *sql.DB) *AdSlotRepo { return &AdSlotRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions
// spanning multiple repositories.
func (r *AdSlotRepo) DB() *sql.DB { return r.db }

const slotColumns = `id, site_id, position, price_cents_per_day, max_sponsors, allow_custom_share, active, created_at, updated_at`

func scanSlot(row interface{ Scan(...interface{}) error }) (*model.AdSlot, error) {
	var s model.AdSlot
	err := row.Scan(&s.ID, &s.SiteID, &s.Position, &s.PriceCentsPerDay,
		&s.MaxSponsors, &s.AllowCustomShare, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new slot and populates its ID and DB defaults.
func (r *AdSlotRepo) Create(ctx context.Context, s *model.AdSlot) error {
	const q = `INSERT INTO ad_slots (site_id, position, price_cents_per_day, max_sponsors, allow_custom_share)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.SiteID, s.Position, s.PriceCentsPerDay, s.MaxSponsors, s.AllowCustomShare)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + slotColumns + ` FROM ad_slots WHERE id = ?`
	full, err := scanSlot(r.db.QueryRowContext(ctx, sel, s.ID))
	if err != nil {
		return err
	}
	*s = *full
	return nil
}

// GetByID returns a slot by id, or ErrSlotNotFound.
func (r *AdSlotRepo) GetByID(ctx context.Context, id uint64) (*model.AdSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM ad_slots WHERE id = ?`
	return scanSlot(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDForUpdateTx loads a slot inside tx with a row lock, so the
// capacity check and insert that follow cannot race another admission
// on the same slot.
func (r *AdSlotRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.AdSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM ad_slots WHERE id = ? FOR UPDATE`
	return scanSlot(tx.QueryRowContext(ctx, q, id))
}

// OwnerID returns the publisher owning the slot's site, used for
// ownership checks on slot mutation.
func (r *AdSlotRepo) OwnerID(ctx context.Context, slotID uint64) (uint64, error) {
	const q = `SELECT s.owner_id FROM ad_slots a JOIN sites s ON s.id = a.site_id WHERE a.id = ?`
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, q, slotID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrSlotNotFound
	}
	return ownerID, err
}

// ListBySite returns all slots on a site, newest first.
func (r *AdSlotRepo) ListBySite(ctx context.Context, siteID uint64) ([]model.AdSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM ad_slots WHERE site_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.AdSlot, 0)
	for rows.Next() {
		var s model.AdSlot
		if err := rows.Scan(&s.ID, &s.SiteID, &s.Position, &s.PriceCentsPerDay,
			&s.MaxSponsors, &s.AllowCustomShare, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// Update rewrites the owner-editable fields of a slot.
func (r *AdSlotRepo) Update(ctx context.Context, s *model.AdSlot) error {
	const q = `UPDATE ad_slots
	           SET price_cents_per_day = ?, max_sponsors = ?, allow_custom_share = ?, active = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.PriceCentsPerDay, s.MaxSponsors, s.AllowCustomShare, s.Active, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either missing or unchanged; distinguish by reloading.
		if _, err := r.GetByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// SetActive toggles the slot's active flag.  Deactivation is how slots
// are retired: rows are never hard-deleted while sponsorships exist.
func (r *AdSlotRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	const q = `UPDATE ad_slots SET active = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
