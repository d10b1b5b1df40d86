package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kindling/sponsor-engine/internal/repository"
	"github.com/kindling/sponsor-engine/internal/serving"
)

// PublicHandler serves the unauthenticated surface: slot detail pages
// for prospective sponsors and the widget rotation endpoint embedded
// on publisher pages.
type PublicHandler struct {
	SiteRepo     *repository.SiteRepo
	SlotRepo     *repository.AdSlotRepo
	Sponsorships *repository.SponsorshipRepo
	Selector     *serving.Selector
}

func NewPublicHandler(siteRepo *repository.SiteRepo, slotRepo *repository.AdSlotRepo, sponsorships *repository.SponsorshipRepo, selector *serving.Selector) *PublicHandler {
	if siteRepo == nil || slotRepo == nil || sponsorships == nil || selector == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{SiteRepo: siteRepo, SlotRepo: slotRepo, Sponsorships: sponsorships, Selector: selector}
}

// GetPublicSlot handles GET /v1/slots/:id.  This is the page a
// prospective sponsor looks at before buying: slot terms, the site it
// lives on, and who currently sponsors it.  Responses sit behind the
// Redis cache since the data changes on booking timescales.
func (h *PublicHandler) GetPublicSlot(c echo.Context) error {
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx := c.Request().Context()
	slot, err := h.SlotRepo.GetByID(ctx, slotID)
	if err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	site, err := h.SiteRepo.GetByID(ctx, slot.SiteID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	names, err := h.Sponsorships.ActiveSponsorNames(ctx, slotID, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"slot": slot,
		"site": echo.Map{"id": site.ID, "name": site.Name, "url": site.URL},
		"current_sponsors": names,
	})
}

// ServeAd handles GET /v1/widget?slot=N, the hot path embedded on
// publisher pages.  A slot with nothing live is a normal 200 with
// has_active_sponsor false so the embed renders its neutral
// placeholder; only a nonexistent slot is a 404.  Every request draws
// independently, which is why this endpoint must never sit behind the
// response cache.
func (h *PublicHandler) ServeAd(c echo.Context) error {
	slotID, err := strconv.ParseUint(c.QueryParam("slot"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot query parameter is required"})
	}

	ctx := c.Request().Context()
	if _, err := h.SlotRepo.GetByID(ctx, slotID); err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	ad, err := h.Selector.Select(ctx, slotID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, serving.ErrNoActiveSponsor) {
			return c.JSON(http.StatusOK, echo.Map{"has_active_sponsor": false})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"has_active_sponsor": true, "ad": ad})
}
