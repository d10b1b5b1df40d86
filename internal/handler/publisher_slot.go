package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kindling/sponsor-engine/internal/model"
	"github.com/kindling/sponsor-engine/internal/repository"
)

type createSlotReq struct {
	Position         string `json:"position"`
	PriceCentsPerDay int64  `json:"price_cents_per_day"`
	MaxSponsors      int    `json:"max_sponsors"`
	AllowCustomShare bool   `json:"allow_custom_share"`
}

type updateSlotReq struct {
	PriceCentsPerDay *int64 `json:"price_cents_per_day"`
	MaxSponsors      *int   `json:"max_sponsors"`
	AllowCustomShare *bool  `json:"allow_custom_share"`
	Active           *bool  `json:"active"`
}

// CreateSlot handles POST /v1/sites/:id/slots.  max_sponsors
// zero means unlimited rotation; every buyer then gets the full share.
func (h *PublisherHandler) CreateSlot(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	siteID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid site id"})
	}

	var req createSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Position = strings.ToUpper(strings.TrimSpace(req.Position))
	if !model.ValidPosition(req.Position) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "position must be BANNER, SIDEPANEL or INLINE"})
	}
	if req.PriceCentsPerDay <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents_per_day must be positive"})
	}
	if req.MaxSponsors < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_sponsors must not be negative"})
	}

	ctx := c.Request().Context()
	if _, err := h.SiteRepo.GetByIDAndOwner(ctx, siteID, ownerID); err != nil {
		switch err {
		case repository.ErrSiteNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "site not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	slot := &model.AdSlot{
		SiteID:           siteID,
		Position:         req.Position,
		PriceCentsPerDay: req.PriceCentsPerDay,
		MaxSponsors:      req.MaxSponsors,
		AllowCustomShare: req.AllowCustomShare,
	}
	if err := h.SlotRepo.Create(ctx, slot); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, slot)
}

// ListSlots handles GET /v1/sites/:id/slots.
func (h *PublisherHandler) ListSlots(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	siteID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid site id"})
	}

	ctx := c.Request().Context()
	if _, err := h.SiteRepo.GetByIDAndOwner(ctx, siteID, ownerID); err != nil {
		switch err {
		case repository.ErrSiteNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "site not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	slots, err := h.SlotRepo.ListBySite(ctx, siteID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"slots": slots})
}

// UpdateSlot handles PATCH /v1/slots/:id.  Only pricing and
// capacity policy fields are editable; changes do not touch already
// admitted sponsorships.
func (h *PublisherHandler) UpdateSlot(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	var req updateSlotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	slot, err := h.ownedSlot(c, slotID, ownerID)
	if slot == nil {
		return err
	}

	if req.PriceCentsPerDay != nil {
		if *req.PriceCentsPerDay <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents_per_day must be positive"})
		}
		slot.PriceCentsPerDay = *req.PriceCentsPerDay
	}
	if req.MaxSponsors != nil {
		if *req.MaxSponsors < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_sponsors must not be negative"})
		}
		slot.MaxSponsors = *req.MaxSponsors
	}
	if req.AllowCustomShare != nil {
		slot.AllowCustomShare = *req.AllowCustomShare
	}
	if req.Active != nil {
		slot.Active = *req.Active
	}

	if err := h.SlotRepo.Update(ctx, slot); err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, slot)
}

// DeactivateSlot handles DELETE /v1/slots/:id.  The slot row
// stays; it just stops accepting new sponsorships.  Existing active
// sponsorships keep serving until their windows end.
func (h *PublisherHandler) DeactivateSlot(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	slot, errResp := h.ownedSlot(c, slotID, ownerID)
	if slot == nil {
		return errResp
	}
	if err := h.SlotRepo.SetActive(c.Request().Context(), slotID, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ownedSlot loads a slot and verifies the caller owns its site.  On
// failure it writes the response and returns a nil slot; callers must
// return the accompanying error.
func (h *PublisherHandler) ownedSlot(c echo.Context, slotID, ownerID uint64) (*model.AdSlot, error) {
	ctx := c.Request().Context()
	slot, err := h.SlotRepo.GetByID(ctx, slotID)
	if err != nil {
		if err == repository.ErrSlotNotFound {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	owner, err := h.SlotRepo.OwnerID(ctx, slotID)
	if err != nil {
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if owner != ownerID {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return slot, nil
}
