package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/service"
)

// ReassignHandler moves existing seats between buckets.  Members may
// move their own seats through the normal capacity check; the direct
// flag bypasses capacity and is admin-only.
type ReassignHandler struct {
	Reassigner  *service.Reassigner
	Memberships *repository.MembershipRepo
	Designation *repository.DesignationRepo
	Audits      *repository.ReassignAuditRepo
}

// NewReassignHandler constructs a ReassignHandler.
func NewReassignHandler(r *service.Reassigner, m *repository.MembershipRepo,
	d *repository.DesignationRepo, audits *repository.ReassignAuditRepo) *ReassignHandler {
	if r == nil || m == nil || d == nil || audits == nil {
		panic("nil dependency passed to NewReassignHandler")
	}
	return &ReassignHandler{Reassigner: r, Memberships: m, Designation: d, Audits: audits}
}

type reassignReq struct {
	scopeReq
	DesignationCode string `json:"designation_code"`
	DesignationID   uint64 `json:"designation_id"`
	Direct          bool   `json:"direct"`
}

// loadForActor fetches the membership and enforces ownership: members
// touch only their own seats, admins touch any.
func (h *ReassignHandler) loadForActor(c echo.Context) (uint64, uint64, error) {
	userID, err := getUserID(c)
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "invalid membership id")
	}
	m, err := h.Memberships.GetByID(c.Request().Context(), id)
	if err != nil {
		return 0, 0, err
	}
	if m.UserID != userID && !isAdmin(c) {
		return 0, 0, repository.ErrForbidden
	}
	return id, userID, nil
}

// respondReassignErr keeps the echo.HTTPError shortcuts from
// loadForActor intact while routing everything else through the
// sentinel mapping.
func respondReassignErr(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	return writeServiceError(c, err)
}

// Preview handles POST /v1/memberships/:id/reassign/preview.  Returns
// the quote, the seat ordinal in the target bucket and the signed fee
// delta without changing anything.
func (h *ReassignHandler) Preview(c echo.Context) error {
	id, _, err := h.loadForActor(c)
	if err != nil {
		return respondReassignErr(c, err)
	}
	var body reassignReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	desigID, err := resolveDesignation(ctx, h.Designation, body.DesignationCode, body.DesignationID)
	if err != nil {
		return writeServiceError(c, err)
	}
	preview, err := h.Reassigner.Preview(ctx, id, body.toScope(desigID))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, preview)
}

// Apply handles POST /v1/memberships/:id/reassign.  Moves the seat
// into the target bucket.  direct=true skips the capacity check and
// requires the ADMIN role.
func (h *ReassignHandler) Apply(c echo.Context) error {
	id, actorID, err := h.loadForActor(c)
	if err != nil {
		return respondReassignErr(c, err)
	}
	var body reassignReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Direct && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, errorBody("FORBIDDEN", "direct reassignment requires ADMIN"))
	}
	ctx := c.Request().Context()
	desigID, err := resolveDesignation(ctx, h.Designation, body.DesignationCode, body.DesignationID)
	if err != nil {
		return writeServiceError(c, err)
	}
	m, err := h.Reassigner.Apply(ctx, id, body.toScope(desigID), body.Direct, actorID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"membership": toMembershipResp(m)})
}

// History handles GET /v1/memberships/:id/reassignments.  Lists the
// audit trail for a membership in the order the moves happened.
func (h *ReassignHandler) History(c echo.Context) error {
	id, _, err := h.loadForActor(c)
	if err != nil {
		return respondReassignErr(c, err)
	}
	items, err := h.Audits.ListByMembership(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "failed to load audit trail"))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
