package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/service"
)

// MembershipHandler serves seat allocation and membership reads.
// Allocation runs through the Allocator which owns the transactional
// capacity check; the handler only binds, resolves the designation
// code and maps errors.
type MembershipHandler struct {
	Allocator   *service.Allocator
	Memberships *repository.MembershipRepo
	Designation *repository.DesignationRepo
}

// NewMembershipHandler constructs a MembershipHandler.
func NewMembershipHandler(a *service.Allocator, m *repository.MembershipRepo, d *repository.DesignationRepo) *MembershipHandler {
	if a == nil || m == nil || d == nil {
		panic("nil dependency passed to NewMembershipHandler")
	}
	return &MembershipHandler{Allocator: a, Memberships: m, Designation: d}
}

// resolveDesignation maps a request's designation reference (code
// preferred, numeric id accepted) to an ID.
func resolveDesignation(ctx context.Context, repo *repository.DesignationRepo, code string, id uint64) (uint64, error) {
	if code != "" {
		d, err := repo.GetByCode(ctx, strings.TrimSpace(code))
		if err != nil {
			return 0, err
		}
		return d.ID, nil
	}
	if id == 0 {
		return 0, repository.ErrDesignationNotFound
	}
	if _, err := repo.GetByID(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

// Join handles POST /v1/memberships.  The body carries the scope the
// caller wants a seat in.  On success the response is 201 with the
// freshly created membership; its status tells the client whether a
// payment is due or the seat awaits approval.
func (h *MembershipHandler) Join(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		scopeReq
		DesignationCode string `json:"designation_code"`
		DesignationID   uint64 `json:"designation_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	desigID, err := resolveDesignation(ctx, h.Designation, body.DesignationCode, body.DesignationID)
	if err != nil {
		return writeServiceError(c, err)
	}
	m, err := h.Allocator.Allocate(ctx, userID, body.toScope(desigID))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"membership": toMembershipResp(m)})
}

// ListMine handles GET /v1/my-memberships.  Returns every membership
// of the current user, newest first.
func (h *MembershipHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Memberships.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "failed to load memberships"))
	}
	out := make([]membershipResp, 0, len(items))
	for i := range items {
		out = append(out, toMembershipResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get handles GET /v1/memberships/:id.  Members can only read their
// own memberships; admins can read any.
func (h *MembershipHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid membership id"})
	}
	m, err := h.Memberships.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if m.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, errorBody("FORBIDDEN", "not your membership"))
	}
	return c.JSON(http.StatusOK, echo.Map{"membership": toMembershipResp(m)})
}
