package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/service"
)

// PaymentHandler receives payment results and drives membership state
// transitions.  The webhook endpoint mirrors what the RabbitMQ
// consumer does for asynchronous gateway notifications; both paths
// converge on Lifecycle.ConfirmPayment, which absorbs duplicates.
type PaymentHandler struct {
	Lifecycle *service.Lifecycle
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(lc *service.Lifecycle) *PaymentHandler {
	if lc == nil {
		panic("nil lifecycle passed to NewPaymentHandler")
	}
	return &PaymentHandler{Lifecycle: lc}
}

// Webhook handles POST /v1/payments/webhook.  The gateway posts the
// outcome for a membership's pending payment.  Replays of the same
// notification return 200 with the current state instead of erroring.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var body struct {
		MembershipID uint64 `json:"membership_id"`
		Status       string `json:"status"` // SUCCESS | FAILED
		ProviderRef  string `json:"provider_ref"`
	}
	if err := c.Bind(&body); err != nil || body.MembershipID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "membership_id and status required"})
	}
	status := strings.ToUpper(strings.TrimSpace(body.Status))
	if status != "SUCCESS" && status != "FAILED" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be SUCCESS or FAILED"})
	}
	m, err := h.Lifecycle.ConfirmPayment(c.Request().Context(), body.MembershipID, body.ProviderRef, status == "SUCCESS")
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"membership": toMembershipResp(m)})
}

// Approve handles POST /v1/admin/memberships/:id/approve.  Activates a
// seat that resolved to a zero fee and is waiting on review.
func (h *PaymentHandler) Approve(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid membership id"})
	}
	m, err := h.Lifecycle.Approve(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"membership": toMembershipResp(m)})
}

// Revoke handles POST /v1/admin/memberships/:id/revoke.  Frees the
// seat and invalidates any issued card.
func (h *PaymentHandler) Revoke(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid membership id"})
	}
	m, err := h.Lifecycle.Revoke(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"membership": toMembershipResp(m)})
}
