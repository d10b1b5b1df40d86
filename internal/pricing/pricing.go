// Package pricing converts a slot's full-share daily price, a share
// percentage and a duration into a total charge in USD cents.  The
// computation is pure and uses integer arithmetic only, so two bookings
// with the same terms always price identically.
package pricing

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput is returned when a pricing argument violates its
// constraints.  Callers should treat it as a caller error, never retry.
var ErrInvalidInput = errors.New("invalid pricing input")

// Price returns the total charge in cents for buying sharePct percent
// of a slot for the given number of whole days, where baseCentsPerDay
// is the price of 100% share for one day.
//
// Rounding is half-up and applied exactly once to the final product.
// Rounding per day instead would compound: 33% of 999 cents priced one
// day at a time drifts a cent every three days.
func Price(baseCentsPerDay int64, sharePct, days int) (int64, error) {
	if baseCentsPerDay <= 0 {
		return 0, fmt.Errorf("%w: base price %d cents/day, must be positive", ErrInvalidInput, baseCentsPerDay)
	}
	if sharePct < 1 || sharePct > 100 {
		return 0, fmt.Errorf("%w: share %d%%, must be 1-100", ErrInvalidInput, sharePct)
	}
	if days < 1 {
		return 0, fmt.Errorf("%w: duration %d days, must be at least 1", ErrInvalidInput, days)
	}
	// base * share * days is exact in cents*100; adding 50 before the
	// division by 100 rounds half-up.
	product := baseCentsPerDay * int64(sharePct) * int64(days)
	return (product + 50) / 100, nil
}

// Days returns the booking duration of the half-open window
// [start, end) in whole days, rounding any partial day up.  A window
// that does not move forward in time has zero days and is rejected by
// Price.
func Days(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}
