package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kindling/sponsor-engine/internal/model"
	"github.com/kindling/sponsor-engine/internal/serving"
)

// dbTimeLayout is the MySQL DATETIME format.  All values are written
// in UTC; the driver's parseTime/loc settings scan them back as UTC
// time.Time values.
const dbTimeLayout = "2006-01-02 15:04:05"

// SponsorshipRepo provides persistence for sponsorships.  The write
// paths that participate in capacity admission are Tx variants; the
// read paths serve listings and the widget.
type SponsorshipRepo struct {
	db *sql.DB
}

// NewSponsorshipRepo returns a SponsorshipRepo bound to the database.
func NewSponsorshipRepo(db *sql.DB) *SponsorshipRepo { return &SponsorshipRepo{db: db} }

// DB exposes the underlying handle for transaction control.
func (r *SponsorshipRepo) DB() *sql.DB { return r.db }

const sponsorshipColumns = `id, ad_slot_id, sponsor_id, status, starts_at, ends_at, share_pct, price_cents, creative, payment_ref, created_at, updated_at`

func scanSponsorship(row interface{ Scan(...interface{}) error }) (*model.Sponsorship, error) {
	var (
		s   model.Sponsorship
		ref sql.NullString
	)
	err := row.Scan(&s.ID, &s.AdSlotID, &s.SponsorID, &s.Status, &s.StartsAt, &s.EndsAt,
		&s.SharePct, &s.PriceCents, &s.Creative, &ref, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if ref.Valid {
		v := ref.String
		s.PaymentRef = &v
	}
	return &s, nil
}

// CreateTx inserts a new sponsorship within the caller's transaction
// and populates its generated ID and DB-default timestamps.
func (r *SponsorshipRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Sponsorship) error {
	const q = `INSERT INTO sponsorships (ad_slot_id, sponsor_id, status, starts_at, ends_at, share_pct, price_cents, creative)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.AdSlotID, s.SponsorID, s.Status,
		s.StartsAt.UTC().Format(dbTimeLayout), s.EndsAt.UTC().Format(dbTimeLayout),
		s.SharePct, s.PriceCents, s.Creative)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM sponsorships WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// OverlapShareSumTx sums share_pct over every PENDING or ACTIVE
// sponsorship on the slot overlapping the half-open window [start, end).
// The overlap test deliberately excludes boundary touches: a window
// ending exactly when another starts shares no instant with it.
func (r *SponsorshipRepo) OverlapShareSumTx(ctx context.Context, tx *sql.Tx, slotID uint64, start, end time.Time) (int, error) {
	const q = `SELECT COALESCE(SUM(share_pct), 0)
	           FROM sponsorships
	           WHERE ad_slot_id = ?
	             AND status IN ('PENDING', 'ACTIVE')
	             AND starts_at < ?
	             AND ends_at > ?`
	var sum int
	err := tx.QueryRowContext(ctx, q, slotID,
		end.UTC().Format(dbTimeLayout), start.UTC().Format(dbTimeLayout)).Scan(&sum)
	return sum, err
}

// GetByID returns one sponsorship, or sql.ErrNoRows.
func (r *SponsorshipRepo) GetByID(ctx context.Context, id uint64) (*model.Sponsorship, error) {
	const q = `SELECT ` + sponsorshipColumns + ` FROM sponsorships WHERE id = ?`
	return scanSponsorship(r.db.QueryRowContext(ctx, q, id))
}

// ListBySponsor returns all sponsorships bought by the sponsor, newest
// first.
func (r *SponsorshipRepo) ListBySponsor(ctx context.Context, sponsorID uint64) ([]model.Sponsorship, error) {
	const q = `SELECT ` + sponsorshipColumns + ` FROM sponsorships
	           WHERE sponsor_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, sponsorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Sponsorship, 0)
	for rows.Next() {
		s, err := scanSponsorship(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// TransitionStatus moves a sponsorship between states, guarded by the
// set of states the transition is valid from.  sql.ErrNoRows is
// returned when the row is missing or not in an accepted state.
func (r *SponsorshipRepo) TransitionStatus(ctx context.Context, id uint64, from []string, to string, paymentRef *string) error {
	if len(from) == 0 {
		return sql.ErrNoRows
	}
	placeholders := strings.Repeat("?,", len(from))
	placeholders = placeholders[:len(placeholders)-1]
	q := `UPDATE sponsorships SET status = ?, payment_ref = COALESCE(?, payment_ref)
	      WHERE id = ? AND status IN (` + placeholders + `)`
	args := []interface{}{to, paymentRef, id}
	for _, f := range from {
		args = append(args, f)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// LiveBySlot returns the ACTIVE sponsorships on a slot whose window
// contains at, joined with sponsor display names for the widget
// response.  It implements serving.Store.
func (r *SponsorshipRepo) LiveBySlot(ctx context.Context, slotID uint64, at time.Time) ([]serving.Ad, error) {
	const q = `SELECT sp.id, sp.sponsor_id, u.name, sp.creative, sp.share_pct
	           FROM sponsorships sp
	           JOIN users u ON u.id = sp.sponsor_id
	           WHERE sp.ad_slot_id = ?
	             AND sp.status = 'ACTIVE'
	             AND sp.starts_at <= ?
	             AND sp.ends_at > ?`
	now := at.UTC().Format(dbTimeLayout)
	rows, err := r.db.QueryContext(ctx, q, slotID, now, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ads := make([]serving.Ad, 0)
	for rows.Next() {
		var ad serving.Ad
		if err := rows.Scan(&ad.SponsorshipID, &ad.SponsorID, &ad.SponsorName, &ad.Creative, &ad.SharePct); err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ads, nil
}

// ActiveSponsorNames returns the display names of currently live
// sponsors on a slot, for the public slot terms page.
func (r *SponsorshipRepo) ActiveSponsorNames(ctx context.Context, slotID uint64, at time.Time) ([]string, error) {
	ads, err := r.LiveBySlot(ctx, slotID, at)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ads))
	for _, ad := range ads {
		names = append(names, ad.SponsorName)
	}
	return names, nil
}

// ExpireFinished marks ACTIVE sponsorships whose window has fully
// passed as EXPIRED and reports how many rows changed.  This is
// hygiene for dashboards; live queries never depend on it because
// they always time-filter.
func (r *SponsorshipRepo) ExpireFinished(ctx context.Context, now time.Time) (int64, error) {
	const q = `UPDATE sponsorships SET status = 'EXPIRED'
	           WHERE status = 'ACTIVE' AND ends_at <= ?`
	res, err := r.db.ExecContext(ctx, q, now.UTC().Format(dbTimeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
