package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/kindling/sponsor-engine/internal/model"
)

// SiteRepo manages persistence for publisher sites.
type SiteRepo struct {
	db *sql.DB
}

// NewSiteRepo returns a SiteRepo bound to the given database.
func NewSiteRepo(db *sql.DB) *SiteRepo { return &SiteRepo{db: db} }

// Create inserts a new site and populates its ID and timestamps.  A
// duplicate URL maps to ErrSiteURLExists so handlers can respond 409.
func (r *SiteRepo) Create(ctx context.Context, s *model.Site) error {
	const q = `INSERT INTO sites (owner_id, name, url) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.OwnerID, s.Name, s.URL)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSiteURLExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM sites WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a site by id, or ErrSiteNotFound.
func (r *SiteRepo) GetByID(ctx context.Context, id uint64) (*model.Site, error) {
	const q = `SELECT id, owner_id, name, url, created_at, updated_at FROM sites WHERE id = ?`
	var s model.Site
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.OwnerID, &s.Name, &s.URL, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSiteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByIDAndOwner returns a site only when it belongs to the owner.
// It distinguishes a missing site (ErrSiteNotFound) from one owned by
// someone else (ErrForbidden) so handlers can answer 404 vs 403.
func (r *SiteRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Site, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return s, nil
}

// ListByOwner returns all sites registered by the owner, newest first.
func (r *SiteRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Site, error) {
	const q = `SELECT id, owner_id, name, url, created_at, updated_at
	           FROM sites WHERE owner_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sites := make([]model.Site, 0)
	for rows.Next() {
		var s model.Site
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.URL, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sites, nil
}
