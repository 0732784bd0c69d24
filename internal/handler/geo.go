package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
)

// GeoHandler serves the public geography browse endpoints clients use
// to drill down country -> state -> district -> mandal when building a
// scope, plus the admin endpoints that seed the reference data.
type GeoHandler struct {
	Geo *repository.GeoRepo
}

// NewGeoHandler constructs a GeoHandler.
func NewGeoHandler(g *repository.GeoRepo) *GeoHandler {
	if g == nil {
		panic("nil geo repository passed to NewGeoHandler")
	}
	return &GeoHandler{Geo: g}
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// ListCountries handles GET /v1/geo/countries.
func (h *GeoHandler) ListCountries(c echo.Context) error {
	items, err := h.Geo.Countries(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "failed to load countries"))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListStates handles GET /v1/geo/countries/:id/states.
func (h *GeoHandler) ListStates(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid country id"})
	}
	items, err := h.Geo.StatesByCountry(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "failed to load states"))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListDistricts handles GET /v1/geo/states/:id/districts.
func (h *GeoHandler) ListDistricts(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state id"})
	}
	items, err := h.Geo.DistrictsByState(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "failed to load districts"))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListMandals handles GET /v1/geo/districts/:id/mandals.
func (h *GeoHandler) ListMandals(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid district id"})
	}
	items, err := h.Geo.MandalsByDistrict(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "failed to load mandals"))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ----- admin seeding -----

// CreateCountry handles POST /v1/admin/geo/countries.
func (h *GeoHandler) CreateCountry(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	country := &model.Country{Name: strings.TrimSpace(req.Name)}
	if err := h.Geo.CreateCountry(c.Request().Context(), country); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"country": country})
}

// CreateState handles POST /v1/admin/geo/countries/:id/states.  Every
// state carries the zone it belongs to; zone-level buckets resolve
// membership scopes through this tag.
func (h *GeoHandler) CreateState(c echo.Context) error {
	countryID, err := pathID(c, "id")
	if err != nil || countryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid country id"})
	}
	var req struct {
		Name string `json:"name"`
		Zone string `json:"zone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	zone := model.Zone(strings.ToUpper(strings.TrimSpace(req.Zone)))
	if strings.TrimSpace(req.Name) == "" || !zone.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a valid zone are required"})
	}
	st := &model.State{
		CountryID: countryID,
		Name:      strings.TrimSpace(req.Name),
		Zone:      zone,
	}
	if err := h.Geo.CreateState(c.Request().Context(), st); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"state": st})
}

// CreateDistrict handles POST /v1/admin/geo/states/:id/districts.
func (h *GeoHandler) CreateDistrict(c echo.Context) error {
	stateID, err := pathID(c, "id")
	if err != nil || stateID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state id"})
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	d := &model.District{StateID: stateID, Name: strings.TrimSpace(req.Name)}
	if err := h.Geo.CreateDistrict(c.Request().Context(), d); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"district": d})
}

// CreateMandal handles POST /v1/admin/geo/districts/:id/mandals.
func (h *GeoHandler) CreateMandal(c echo.Context) error {
	districtID, err := pathID(c, "id")
	if err != nil || districtID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid district id"})
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	m := &model.Mandal{DistrictID: districtID, Name: strings.TrimSpace(req.Name)}
	if err := h.Geo.CreateMandal(c.Request().Context(), m); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"mandal": m})
}
