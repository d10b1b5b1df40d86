package pricing

import (
	"errors"
	"testing"
	"time"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name    string
		base    int64
		share   int
		days    int
		want    int64
		wantErr bool
	}{
		{name: "half share for a week", base: 1000, share: 50, days: 7, want: 3500},
		{name: "rounds half up once", base: 999, share: 33, days: 1, want: 330},
		{name: "full share single day", base: 2500, share: 100, days: 1, want: 2500},
		{name: "one percent floor", base: 49, share: 1, days: 1, want: 0},
		{name: "one percent rounds up", base: 50, share: 1, days: 1, want: 1},
		{name: "no per-day compounding", base: 999, share: 33, days: 3, want: 989},
		{name: "zero base", base: 0, share: 50, days: 1, wantErr: true},
		{name: "negative base", base: -100, share: 50, days: 1, wantErr: true},
		{name: "zero share", base: 1000, share: 0, days: 1, wantErr: true},
		{name: "share over 100", base: 1000, share: 101, days: 1, wantErr: true},
		{name: "zero days", base: 1000, share: 50, days: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Price(tt.base, tt.share, tt.days)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Price(%d, %d, %d) error = %v, wantErr %v", tt.base, tt.share, tt.days, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("Price() error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Price(%d, %d, %d) = %d, want %d", tt.base, tt.share, tt.days, got, tt.want)
			}
		})
	}
}

func TestDays(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{name: "exact week", end: start.AddDate(0, 0, 7), want: 7},
		{name: "partial day rounds up", end: start.Add(25 * time.Hour), want: 2},
		{name: "one hour is a day", end: start.Add(time.Hour), want: 1},
		{name: "empty window", end: start, want: 0},
		{name: "inverted window", end: start.Add(-time.Hour), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Days(start, tt.end); got != tt.want {
				t.Errorf("Days() = %d, want %d", got, tt.want)
			}
		})
	}
}
