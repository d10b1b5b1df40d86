package serving

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

// staticStore returns a fixed candidate list for any slot.
type staticStore []Ad

func (s staticStore) LiveBySlot(context.Context, uint64, time.Time) ([]Ad, error) {
	out := make([]Ad, len(s))
	copy(out, s)
	return out, nil
}

var at = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestSelectEmptySlot(t *testing.T) {
	sel := NewSelector(staticStore{})
	if _, err := sel.Select(context.Background(), 1, at); !errors.Is(err, ErrNoActiveSponsor) {
		t.Errorf("Select() error = %v, want ErrNoActiveSponsor", err)
	}
}

func TestSelectSingleSponsor(t *testing.T) {
	sel := NewSelector(staticStore{{SponsorshipID: 1, SponsorName: "acme", Creative: "c", SharePct: 40}})
	ad, err := sel.Select(context.Background(), 1, at)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if ad.SponsorshipID != 1 {
		t.Errorf("winner = %d, want 1", ad.SponsorshipID)
	}
}

func TestSelectWeighting(t *testing.T) {
	store := staticStore{
		{SponsorshipID: 1, SharePct: 75},
		{SponsorshipID: 2, SharePct: 25},
	}
	rng := rand.New(rand.NewPCG(41, 1))
	sel := NewSelectorWithRand(store, rng.IntN)

	const draws = 10000
	wins := map[uint64]int{}
	for i := 0; i < draws; i++ {
		ad, err := sel.Select(context.Background(), 1, at)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		wins[ad.SponsorshipID]++
	}

	// Expected 7500 wins for the 75% sponsor; standard deviation is
	// sqrt(10000*0.75*0.25) ~ 43, so +/-200 is nearly five sigma.
	if got := wins[1]; got < 7300 || got > 7700 {
		t.Errorf("75%% sponsor won %d of %d draws, want 7500 +/- 200", got, draws)
	}
	if wins[1]+wins[2] != draws {
		t.Errorf("wins sum = %d, want %d", wins[1]+wins[2], draws)
	}
}

func TestSelectZeroShareStillGetsTicket(t *testing.T) {
	store := staticStore{
		{SponsorshipID: 1, SharePct: 99},
		{SponsorshipID: 2, SharePct: 0}, // floors to one ticket
	}
	rng := rand.New(rand.NewPCG(7, 2))
	sel := NewSelectorWithRand(store, rng.IntN)

	wins := map[uint64]int{}
	for i := 0; i < 2000; i++ {
		ad, err := sel.Select(context.Background(), 1, at)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		wins[ad.SponsorshipID]++
	}
	if wins[2] == 0 {
		t.Error("zero-share sponsor never won; minimum one ticket not honored")
	}
}
