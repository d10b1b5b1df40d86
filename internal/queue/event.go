// Package queue defines message payloads exchanged over the message broker.
package queue

// SponsorshipActivatedEvent is published when a sponsorship becomes
// ACTIVE, either through a payment confirmation or simulated payment.
// It carries enough context for downstream consumers to log, notify,
// or feed analytics without querying the primary database.
type SponsorshipActivatedEvent struct {
	SponsorshipID uint64 `json:"sponsorship_id"`
	AdSlotID      uint64 `json:"ad_slot_id"`
	SponsorID     uint64 `json:"sponsor_id"`
	SharePct      int    `json:"share_pct"`
	PriceCents    int64  `json:"price_cents"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	PaymentRef    string `json:"payment_ref"`
	ActivatedAt   string `json:"activated_at"`
}
