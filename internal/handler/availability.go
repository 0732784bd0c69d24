package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/service"
)

// AvailabilityHandler answers the pre-join question: how many seats
// remain in a bucket and what would one cost.  The check is lock-free;
// the figure can be stale by the time the caller joins.
type AvailabilityHandler struct {
	Allocator   *service.Allocator
	Designation *repository.DesignationRepo
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(a *service.Allocator, d *repository.DesignationRepo) *AvailabilityHandler {
	if a == nil || d == nil {
		panic("nil dependency passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Allocator: a, Designation: d}
}

// queryID parses an optional numeric query parameter, returning 0 when
// absent.
func queryID(c echo.Context, name string) (uint64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Check handles GET /v1/availability.  The scope arrives as query
// parameters: cell_id, designation_code (or designation_id), level,
// and the geographic fields the level requires.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	var (
		s  model.Scope
		ok bool
	)
	if s.CellID, ok = queryID(c, "cell_id"); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cell_id"})
	}
	ctx := c.Request().Context()
	desigID, _ := queryID(c, "designation_id")
	resolved, err := resolveDesignation(ctx, h.Designation, c.QueryParam("designation_code"), desigID)
	if err != nil {
		return writeServiceError(c, err)
	}
	s.DesignationID = resolved
	s.Level = model.Level(strings.ToUpper(strings.TrimSpace(c.QueryParam("level"))))
	s.Zone = model.Zone(strings.ToUpper(strings.TrimSpace(c.QueryParam("zone"))))
	if s.CountryID, ok = queryID(c, "country_id"); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid country_id"})
	}
	if s.StateID, ok = queryID(c, "state_id"); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state_id"})
	}
	if s.DistrictID, ok = queryID(c, "district_id"); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid district_id"})
	}
	if s.MandalID, ok = queryID(c, "mandal_id"); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid mandal_id"})
	}

	av, err := h.Allocator.CheckAvailability(ctx, s)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, av)
}
