// Package serving picks which live sponsor is shown for a page view.
// Selection probability is proportional to purchased share, realized
// as a uniform draw over cumulative ticket ranges instead of the naive
// duplicated-entry pool, which is equivalent but allocation-free.
package serving

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"time"
)

// ErrNoActiveSponsor is the valid nothing-to-show result: the slot has
// no ACTIVE sponsorship covering the requested instant.  Callers render
// a neutral placeholder, never a substitute ad.
var ErrNoActiveSponsor = errors.New("no active sponsor")

// Ad is one live candidate for a slot, carrying everything the widget
// response needs.
type Ad struct {
	SponsorshipID uint64 `json:"sponsorship_id"`
	SponsorID     uint64 `json:"sponsor_id"`
	SponsorName   string `json:"sponsor_name"`
	Creative      string `json:"creative"`
	SharePct      int    `json:"-"`
}

// Store supplies the live sponsorships for a slot at an instant:
// status ACTIVE with starts_at <= at < ends_at.
type Store interface {
	LiveBySlot(ctx context.Context, slotID uint64, at time.Time) ([]Ad, error)
}

// Selector draws a winner among live sponsorships, weighted by share.
// It is read-only and needs no locking; concurrent selections are
// independent.
type Selector struct {
	store Store
	intn  func(n int) int
}

// NewSelector returns a selector using the process-wide random source.
func NewSelector(store Store) *Selector {
	return &Selector{store: store, intn: rand.IntN}
}

// NewSelectorWithRand returns a selector drawing from intn, letting
// tests substitute a seeded source.
func NewSelectorWithRand(store Store, intn func(n int) int) *Selector {
	return &Selector{store: store, intn: intn}
}

// Select returns the winning ad for the slot at the given instant, or
// ErrNoActiveSponsor when nothing is live.  Each candidate holds
// tickets equal to its share, floored at one so a paying sponsor is
// never unreachable; the draw is uniform over tickets, so expected
// frequency converges to share / total share.
func (s *Selector) Select(ctx context.Context, slotID uint64, at time.Time) (*Ad, error) {
	live, err := s.store.LiveBySlot(ctx, slotID, at)
	if err != nil {
		return nil, err
	}
	if len(live) == 0 {
		return nil, ErrNoActiveSponsor
	}

	// cumulative[i] is the ticket count of candidates 0..i; the winner
	// of draw n is the first candidate whose cumulative total exceeds n.
	cumulative := make([]int, len(live))
	total := 0
	for i, ad := range live {
		tickets := ad.SharePct
		if tickets < 1 {
			tickets = 1
		}
		total += tickets
		cumulative[i] = total
	}

	n := s.intn(total)
	winner := live[sort.SearchInts(cumulative, n+1)]
	return &winner, nil
}
