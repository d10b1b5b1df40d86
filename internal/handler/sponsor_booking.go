package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kindling/sponsor-engine/internal/booking"
	"github.com/kindling/sponsor-engine/internal/model"
	"github.com/kindling/sponsor-engine/internal/queue"
	"github.com/kindling/sponsor-engine/internal/repository"
	queue_publisher "github.com/kindling/sponsor-engine/internal/service"
)

// defaultSponsorshipDays is used when a booking request does not name
// its own duration.
const defaultSponsorshipDays = 7

// SponsorHandler exposes booking endpoints for sponsors.  Admission
// itself lives in the allocator; the handler translates HTTP requests
// into allocator calls and allocator errors into status codes.
type SponsorHandler struct {
	Allocator    *booking.Allocator
	Sponsorships *repository.SponsorshipRepo
}

// NewSponsorHandler constructs a SponsorHandler and panics on nil deps.
func NewSponsorHandler(alloc *booking.Allocator, sponsorships *repository.SponsorshipRepo) *SponsorHandler {
	if alloc == nil || sponsorships == nil {
		panic("nil dependency passed to NewSponsorHandler")
	}
	return &SponsorHandler{Allocator: alloc, Sponsorships: sponsorships}
}

type createSponsorshipReq struct {
	SlotID   uint64 `json:"slot_id"`
	Days     int    `json:"days"`
	StartsAt string `json:"starts_at"` // RFC3339, optional; defaults to now
	SharePct int    `json:"share_pct"` // optional; slot policy decides the default
	Creative string `json:"creative"`
}

// CreateSponsorship handles POST /v1/sponsorships.  A capacity
// rejection is a definitive 409 carrying what is still available over
// the requested window; the client decides whether to retry with a
// smaller share or a different window.
func (h *SponsorHandler) CreateSponsorship(c echo.Context) error {
	sponsorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSponsorshipReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Days == 0 {
		req.Days = defaultSponsorshipDays
	}
	if req.Days < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "days must be at least 1"})
	}

	starts := time.Now().UTC()
	if req.StartsAt != "" {
		t, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC 3339"})
		}
		starts = t.UTC()
	}
	ends := starts.Add(time.Duration(req.Days) * 24 * time.Hour)

	sp, err := h.Allocator.Reserve(c.Request().Context(), booking.ReserveRequest{
		SlotID:    req.SlotID,
		SponsorID: sponsorID,
		StartsAt:  starts,
		EndsAt:    ends,
		SharePct:  req.SharePct,
		Creative:  req.Creative,
	})
	if err != nil {
		var capErr *booking.CapacityError
		switch {
		case errors.As(err, &capErr):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":     "capacity exceeded",
				"available": capErr.Available,
				"requested": capErr.Requested,
			})
		case errors.Is(err, booking.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, booking.ErrSlotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		case errors.Is(err, booking.ErrSlotInactive):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "slot is not active"})
		case errors.Is(err, booking.ErrTxConflict):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "slot is busy, try again"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	// Simulated payments activate immediately; announce it the same
	// way a webhook confirmation would.
	if sp.Status == model.StatusActive {
		publishActivation(sp)
	}
	return c.JSON(http.StatusCreated, sp)
}

// ListMySponsorships handles GET /v1/my-sponsorships.
func (h *SponsorHandler) ListMySponsorships(c echo.Context) error {
	sponsorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Sponsorships.ListBySponsor(c.Request().Context(), sponsorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sponsorships": items})
}

// GetSponsorship handles GET /v1/sponsorships/:id.
func (h *SponsorHandler) GetSponsorship(c echo.Context) error {
	sponsorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sponsorship id"})
	}
	sp, err := h.Sponsorships.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sponsorship not found"})
	}
	if sp.SponsorID != sponsorID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, sp)
}

// CancelSponsorship handles DELETE /v1/sponsorships/:id.  Cancelling
// frees the share for the remainder of the window; there is no partial
// refund handling here.
func (h *SponsorHandler) CancelSponsorship(c echo.Context) error {
	sponsorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sponsorship id"})
	}
	if err := h.Allocator.Cancel(c.Request().Context(), id, sponsorID); err != nil {
		switch {
		case errors.Is(err, booking.ErrSponsorshipNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sponsorship not found"})
		case errors.Is(err, booking.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// publishActivation fires the broker event for a freshly activated
// sponsorship.  Best effort: a broker outage must not fail the request
// that triggered it.
func publishActivation(sp *model.Sponsorship) {
	ref := ""
	if sp.PaymentRef != nil {
		ref = *sp.PaymentRef
	}
	ev := queue.SponsorshipActivatedEvent{
		SponsorshipID: sp.ID,
		AdSlotID:      sp.AdSlotID,
		SponsorID:     sp.SponsorID,
		SharePct:      sp.SharePct,
		PriceCents:    sp.PriceCents,
		StartsAt:      sp.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:        sp.EndsAt.UTC().Format(time.RFC3339),
		PaymentRef:    ref,
		ActivatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishSponsorshipActivated(ctx, ev)
	}()
}
