package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kindling/sponsor-engine/internal/model"
	"github.com/kindling/sponsor-engine/internal/repository"
)

// PublisherHandler bundles repositories for publishers to manage their
// sites and ad slots.  All methods assume JWT authentication and role
// validation have already run; ownership of the touched resource is
// checked per request.
type PublisherHandler struct {
	SiteRepo *repository.SiteRepo
	SlotRepo *repository.AdSlotRepo
}

// NewPublisherHandler constructs a PublisherHandler and panics if any
// dependency is nil.
func NewPublisherHandler(siteRepo *repository.SiteRepo, slotRepo *repository.AdSlotRepo) *PublisherHandler {
	if siteRepo == nil || slotRepo == nil {
		panic("nil repository passed to NewPublisherHandler")
	}
	return &PublisherHandler{SiteRepo: siteRepo, SlotRepo: slotRepo}
}

type createSiteReq struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CreateSite handles POST /v1/sites.
func (h *PublisherHandler) CreateSite(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSiteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	if req.Name == "" || req.URL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and url are required"})
	}

	site := &model.Site{OwnerID: ownerID, Name: req.Name, URL: req.URL}
	if err := h.SiteRepo.Create(c.Request().Context(), site); err != nil {
		if err == repository.ErrSiteURLExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "site url already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, site)
}

// ListSites handles GET /v1/sites.
func (h *PublisherHandler) ListSites(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sites, err := h.SiteRepo.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sites": sites})
}

// GetSite handles GET /v1/sites/:id, returning the site with
// its slots.
func (h *PublisherHandler) GetSite(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	siteID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid site id"})
	}

	ctx := c.Request().Context()
	site, err := h.SiteRepo.GetByIDAndOwner(ctx, siteID, ownerID)
	if err != nil {
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
	return c.JSON(http.StatusOK, echo.Map{"site": site, "slots": slots})
}
