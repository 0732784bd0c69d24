package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
)

// CatalogHandler manages the admin-maintained catalog: designations,
// cells, price overrides and capacity overrides.  Listing endpoints
// are public so clients can build join forms; all mutations sit behind
// the ADMIN role.
type CatalogHandler struct {
	Designations *repository.DesignationRepo
	Cells        *repository.CellRepo
	Overrides    *repository.PriceOverrideRepo
	Capacities   *repository.CapacityOverrideRepo
	Geo          *repository.GeoRepo
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(d *repository.DesignationRepo, cells *repository.CellRepo,
	o *repository.PriceOverrideRepo, caps *repository.CapacityOverrideRepo, g *repository.GeoRepo) *CatalogHandler {
	if d == nil || cells == nil || o == nil || caps == nil || g == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	return &CatalogHandler{Designations: d, Cells: cells, Overrides: o, Capacities: caps, Geo: g}
}

// ----- designations -----

type designationReq struct {
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	ParentID        *uint64 `json:"parent_id"`
	DefaultCapacity uint32  `json:"default_capacity"`
	DefaultFeeCents uint32  `json:"default_fee_cents"`
	Currency        string  `json:"currency"`
	ValidityDays    uint32  `json:"validity_days"`
	DisplayRank     uint32  `json:"display_rank"`
}

func (r designationReq) validate() string {
	if strings.TrimSpace(r.Code) == "" || strings.TrimSpace(r.Name) == "" {
		return "code and name are required"
	}
	if r.DefaultCapacity == 0 {
		return "default_capacity must be positive"
	}
	if r.ValidityDays == 0 {
		return "validity_days must be positive"
	}
	if len(strings.TrimSpace(r.Currency)) != 3 {
		return "currency must be a 3-letter code"
	}
	return ""
}

// CreateDesignation handles POST /v1/admin/designations.
func (h *CatalogHandler) CreateDesignation(c echo.Context) error {
	var req designationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	d := &model.Designation{
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:            strings.TrimSpace(req.Name),
		ParentID:        req.ParentID,
		DefaultCapacity: req.DefaultCapacity,
		DefaultFeeCents: req.DefaultFeeCents,
		Currency:        strings.ToUpper(strings.TrimSpace(req.Currency)),
		ValidityDays:    req.ValidityDays,
		DisplayRank:     req.DisplayRank,
	}
	if err := h.Designations.Create(c.Request().Context(), d); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"designation": d})
}

// ListDesignations handles GET /v1/designations.
func (h *CatalogHandler) ListDesignations(c echo.Context) error {
	items, err := h.Designations.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "failed to load designations"))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateDesignation handles PUT /v1/admin/designations/:id.  The code
// is immutable; everything else can change.
func (h *CatalogHandler) UpdateDesignation(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid designation id"})
	}
	ctx := c.Request().Context()
	d, err := h.Designations.GetByID(ctx, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	var req designationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Code = d.Code // immutable
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	d.Name = strings.TrimSpace(req.Name)
	d.DefaultCapacity = req.DefaultCapacity
	d.DefaultFeeCents = req.DefaultFeeCents
	d.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	d.ValidityDays = req.ValidityDays
	d.DisplayRank = req.DisplayRank
	if err := h.Designations.Update(ctx, d); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"designation": d})
}

// SetDesignationParent handles PUT /v1/admin/designations/:id/parent.
// Moving a designation under one of its own descendants is rejected.
func (h *CatalogHandler) SetDesignationParent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid designation id"})
	}
	var body struct {
		ParentID uint64 `json:"parent_id"`
	}
	if err := c.Bind(&body); err != nil || body.ParentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parent_id required"})
	}
	if err := h.Designations.SetParent(c.Request().Context(), id, body.ParentID); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- cells -----

// CreateCell handles POST /v1/admin/cells.
func (h *CatalogHandler) CreateCell(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code and name are required"})
	}
	cell := &model.Cell{
		Code:     strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:     strings.TrimSpace(req.Name),
		IsActive: true,
	}
	if err := h.Cells.Create(c.Request().Context(), cell); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"cell": cell})
}

// ListCells handles GET /v1/cells.  Pass ?all=true to include
// inactive cells (admin screens).
func (h *CatalogHandler) ListCells(c echo.Context) error {
	activeOnly := !strings.EqualFold(c.QueryParam("all"), "true")
	items, err := h.Cells.List(c.Request().Context(), activeOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "failed to load cells"))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ----- price overrides -----

type priceOverrideReq struct {
	CellID       *uint64 `json:"cell_id"`
	Level        *string `json:"level"`
	Zone         *string `json:"zone"`
	StateID      *uint64 `json:"state_id"`
	DistrictID   *uint64 `json:"district_id"`
	MandalID     *uint64 `json:"mandal_id"`
	FeeCents     uint32  `json:"fee_cents"`
	Currency     string  `json:"currency"`
	ValidityDays *uint32 `json:"validity_days"`
	Priority     int32   `json:"priority"`
}

// CreatePriceOverride handles POST /v1/admin/designations/:id/price-overrides.
// A nil scope field means the override does not match on that
// dimension; a fully nil scope is the designation-wide default with
// score zero.
func (h *CatalogHandler) CreatePriceOverride(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid designation id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Designations.GetByID(ctx, id); err != nil {
		return writeServiceError(c, err)
	}
	var req priceOverrideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(strings.TrimSpace(req.Currency)) != 3 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "currency must be a 3-letter code"})
	}
	o := &model.PriceOverride{
		DesignationID: id,
		CellID:        req.CellID,
		StateID:       req.StateID,
		DistrictID:    req.DistrictID,
		MandalID:      req.MandalID,
		FeeCents:      req.FeeCents,
		Currency:      strings.ToUpper(strings.TrimSpace(req.Currency)),
		ValidityDays:  req.ValidityDays,
		Priority:      req.Priority,
	}
	if req.Level != nil {
		lv := model.Level(strings.ToUpper(strings.TrimSpace(*req.Level)))
		if !lv.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid level"})
		}
		o.Level = &lv
	}
	if req.Zone != nil {
		z := model.Zone(strings.ToUpper(strings.TrimSpace(*req.Zone)))
		if !z.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid zone"})
		}
		o.Zone = &z
	}
	if err := h.Overrides.Create(ctx, o); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"override": o})
}

// ListPriceOverrides handles GET /v1/admin/designations/:id/price-overrides.
func (h *CatalogHandler) ListPriceOverrides(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid designation id"})
	}
	items, err := h.Overrides.ListByDesignation(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "failed to load overrides"))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// DeletePriceOverride handles DELETE /v1/admin/price-overrides/:id.
func (h *CatalogHandler) DeletePriceOverride(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid override id"})
	}
	if err := h.Overrides.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- capacity overrides -----

// SetCapacityOverride handles PUT /v1/admin/capacity-overrides.  The
// body carries a full scope; its canonical bucket key is the row key,
// so the same scope always hits the same override.
func (h *CatalogHandler) SetCapacityOverride(c echo.Context) error {
	var body struct {
		scopeReq
		DesignationCode string `json:"designation_code"`
		DesignationID   uint64 `json:"designation_id"`
		Capacity        uint32 `json:"capacity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	ctx := c.Request().Context()
	desigID, err := resolveDesignation(ctx, h.Designations, body.DesignationCode, body.DesignationID)
	if err != nil {
		return writeServiceError(c, err)
	}
	s := body.toScope(desigID)
	if err := s.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("INVALID_SCOPE", err.Error()))
	}
	if ok, err := h.Geo.VerifyScopeGeo(ctx, s); err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "database error"))
	} else if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("INVALID_SCOPE", "geographic references do not chain"))
	}
	o := &model.CapacityOverride{BucketKey: s.BucketKey(), Capacity: body.Capacity}
	if err := h.Capacities.Upsert(ctx, o); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"override": o})
}

// DeleteCapacityOverride handles DELETE /v1/admin/capacity-overrides/:bucketKey.
// The bucket reverts to the designation default capacity.
func (h *CatalogHandler) DeleteCapacityOverride(c echo.Context) error {
	key := strings.TrimSpace(c.Param("bucketKey"))
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bucket key required"})
	}
	if err := h.Capacities.Delete(c.Request().Context(), key); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
