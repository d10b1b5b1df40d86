package model

import "time"

// Sponsorship statuses.  PENDING sponsorships are provisionally
// reserved (they count against slot capacity) until the payment
// processor confirms the charge.  EXPIRED is set by a background
// sweep for bookkeeping only; live queries always time-filter and
// never rely on the sweep having run.
const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
)

// Sponsorship is a sponsor's claim on an ad slot for a half-open time
// window [StartsAt, EndsAt) and a share of the slot's 100% budget.
//
// Fields:
//  ID         – primary key identifier.
//  AdSlotID   – slot being sponsored.
//  SponsorID  – user who bought the sponsorship.
//  Status     – PENDING, ACTIVE, CANCELLED or EXPIRED.
//  StartsAt   – window start, inclusive.
//  EndsAt     – window end, exclusive; always after StartsAt.
//  SharePct   – purchased share of voice, 1–100.
//  PriceCents – total charge in USD cents, immutable once set.
//  Creative   – opaque payload served to page views (URL or markup).
//  PaymentRef – external payment reference once confirmed.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Sponsorship struct {
	ID         uint64    // sponsorships.id
	AdSlotID   uint64    // sponsorships.ad_slot_id
	SponsorID  uint64    // sponsorships.sponsor_id
	Status     string    // sponsorships.status
	StartsAt   time.Time // sponsorships.starts_at
	EndsAt     time.Time // sponsorships.ends_at
	SharePct   int       // sponsorships.share_pct
	PriceCents int64     // sponsorships.price_cents
	Creative   string    // sponsorships.creative
	PaymentRef *string   // sponsorships.payment_ref (nullable)
	CreatedAt  time.Time // sponsorships.created_at
	UpdatedAt  time.Time // sponsorships.updated_at
}

// Overlaps reports whether the sponsorship's window intersects the
// half-open window [start, end).  Touching at a boundary is not an
// overlap: a window ending exactly when another starts shares no
// instant with it.
func (s *Sponsorship) Overlaps(start, end time.Time) bool {
	return s.StartsAt.Before(end) && s.EndsAt.After(start)
}

// Live reports whether the sponsorship should be served at instant t:
// status ACTIVE and StartsAt <= t < EndsAt.
func (s *Sponsorship) Live(t time.Time) bool {
	return s.Status == StatusActive && !s.StartsAt.After(t) && s.EndsAt.After(t)
}
