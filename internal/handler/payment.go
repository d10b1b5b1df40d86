package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kindling/sponsor-engine/internal/booking"
	"github.com/kindling/sponsor-engine/internal/config"
	"github.com/kindling/sponsor-engine/internal/repository"
)

// PaymentHandler receives payment processor callbacks.  The processor
// confirms a charge out of band and calls the webhook; only then does
// a PENDING sponsorship go ACTIVE.
type PaymentHandler struct {
	Cfg          config.Config
	Allocator    *booking.Allocator
	Sponsorships *repository.SponsorshipRepo
}

func NewPaymentHandler(cfg config.Config, alloc *booking.Allocator, sponsorships *repository.SponsorshipRepo) *PaymentHandler {
	if alloc == nil || sponsorships == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Cfg: cfg, Allocator: alloc, Sponsorships: sponsorships}
}

type confirmPaymentReq struct {
	SponsorshipID uint64 `json:"sponsorship_id"`
	PaymentRef    string `json:"payment_ref"`
}

// ConfirmPayment handles POST /v1/payments/confirm.  The shared token
// in X-Webhook-Token authenticates the processor; an empty configured
// token disables the check for local runs.  Confirming twice is a 404
// because the second call finds no PENDING row, which is what a
// processor retry after success should see.
func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	if h.Cfg.PaymentWebhookToken != "" {
		if c.Request().Header.Get("X-Webhook-Token") != h.Cfg.PaymentWebhookToken {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid webhook token"})
		}
	}

	var req confirmPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.SponsorshipID == 0 || strings.TrimSpace(req.PaymentRef) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sponsorship_id and payment_ref are required"})
	}

	ctx := c.Request().Context()
	if err := h.Allocator.Confirm(ctx, req.SponsorshipID, req.PaymentRef); err != nil {
		if errors.Is(err, booking.ErrSponsorshipNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no pending sponsorship with that id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
	}

	sp, err := h.Sponsorships.GetByID(ctx, req.SponsorshipID)
	if err == nil {
		publishActivation(sp)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "active", "sponsorship_id": req.SponsorshipID})
}
