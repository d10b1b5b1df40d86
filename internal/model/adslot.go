package model

import "time"

// Slot positions stored in ad_slots.position.  The enumeration is fixed;
// handlers reject anything else at creation time.
const (
	PositionBanner    = "BANNER"
	PositionSidepanel = "SIDEPANEL"
	PositionInline    = "INLINE"
)

// ValidPosition reports whether p is one of the known slot positions.
func ValidPosition(p string) bool {
	switch p {
	case PositionBanner, PositionSidepanel, PositionInline:
		return true
	}
	return false
}

// AdSlot is a sellable advertising position on a site.  Its capacity
// model is a 100% "share of voice" budget: concurrent sponsorships on
// the slot may never sum past 100% share at any instant.
//
// MaxSponsors controls how the budget is sold.  Zero means unlimited:
// the slot is impression-rotated inventory where every sponsorship is
// an independent full-share purchase and no capacity check applies.
// A positive value caps concurrency and, unless AllowCustomShare is
// set, each sponsorship gets the equal split floor(100/MaxSponsors).
//
// Fields:
//  ID               – primary key identifier.
//  SiteID           – owning site.
//  Position         – one of BANNER, SIDEPANEL, INLINE.
//  PriceCentsPerDay – price in USD cents for 100% share for one day; > 0.
//  MaxSponsors      – concurrency cap; 0 = unlimited.
//  AllowCustomShare – whether sponsors may request their own share.
//  Active           – owner can pause the slot; inactive slots refuse
//                     new sponsorships but keep existing ones serving.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type AdSlot struct {
	ID               uint64    // ad_slots.id
	SiteID           uint64    // ad_slots.site_id
	Position         string    // ad_slots.position
	PriceCentsPerDay int64     // ad_slots.price_cents_per_day
	MaxSponsors      int       // ad_slots.max_sponsors
	AllowCustomShare bool      // ad_slots.allow_custom_share
	Active           bool      // ad_slots.active
	CreatedAt        time.Time // ad_slots.created_at
	UpdatedAt        time.Time // ad_slots.updated_at
}
