package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/service"
)

// CredentialHandler serves issued ID cards and the admin backfill for
// legacy card numbers.
type CredentialHandler struct {
	Cards       *repository.IDCardRepo
	Memberships *repository.MembershipRepo
	Issuer      *service.CardIssuer
}

// NewCredentialHandler constructs a CredentialHandler.
func NewCredentialHandler(cards *repository.IDCardRepo, m *repository.MembershipRepo, issuer *service.CardIssuer) *CredentialHandler {
	if cards == nil || m == nil || issuer == nil {
		panic("nil dependency passed to NewCredentialHandler")
	}
	return &CredentialHandler{Cards: cards, Memberships: m, Issuer: issuer}
}

type cardResp struct {
	CardNumber      string `json:"card_number"`
	Status          string `json:"status"`
	IssuedAt        string `json:"issued_at"`
	ExpiresAt       string `json:"expires_at"`
	FullName        string `json:"full_name,omitempty"`
	DesignationName string `json:"designation_name,omitempty"`
	CellName        string `json:"cell_name,omitempty"`
}

func toCardResp(card *model.IDCard) cardResp {
	return cardResp{
		CardNumber: card.CardNumber,
		Status:     string(card.Status),
		IssuedAt:   card.IssuedAt.UTC().Format(time.RFC3339),
		ExpiresAt:  card.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func toCardViewResp(v *repository.CardView) cardResp {
	r := toCardResp(&v.Card)
	r.FullName = v.FullName
	r.DesignationName = v.DesignationName
	r.CellName = v.CellName
	return r
}

// GetCard handles GET /v1/memberships/:id/card.  Returns the active
// card for the membership; members can only read their own.
func (h *CredentialHandler) GetCard(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid membership id"})
	}
	ctx := c.Request().Context()
	m, err := h.Memberships.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if m.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, errorBody("FORBIDDEN", "not your membership"))
	}
	view, err := h.Cards.GetViewByMembership(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"card": toCardViewResp(view)})
}

// Issue handles POST /v1/admin/memberships/:id/card.  Reissues the
// credential for an ACTIVE membership: the old card is revoked and a
// new number minted, keeping the membership's validity window.
func (h *CredentialHandler) Issue(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid membership id"})
	}
	ctx := c.Request().Context()
	m, err := h.Memberships.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if m.Status != model.StatusActive || m.ExpiresAt == nil {
		return c.JSON(http.StatusConflict, errorBody("CONFLICT", "membership must be ACTIVE to carry a card"))
	}
	card, err := h.Issuer.Issue(ctx, m.ID, time.Now(), *m.ExpiresAt)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"card": toCardResp(card)})
}

// Backfill handles POST /v1/admin/cards/backfill.  Renumbers every
// legacy card whose stored number does not match the canonical format,
// preserving relative issue order.  Safe to re-run; it stops at the
// first failure and picks up where it left off.
func (h *CredentialHandler) Backfill(c echo.Context) error {
	done, err := h.Issuer.Backfill(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":      "backfill stopped early",
			"renumbered": done,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"renumbered": done})
}
