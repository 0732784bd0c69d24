package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("user_id missing from context")
}

// isAdmin reports whether the authenticated caller carries the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}

// scopeReq is the JSON shape handlers accept for a scope, shared by
// join, availability and reassignment.  The designation arrives as a
// code and is resolved to an ID before building the model.Scope.
type scopeReq struct {
	CellID     uint64      `json:"cell_id"`
	Level      model.Level `json:"level"`
	Zone       model.Zone  `json:"zone,omitempty"`
	CountryID  uint64      `json:"country_id,omitempty"`
	StateID    uint64      `json:"state_id,omitempty"`
	DistrictID uint64      `json:"district_id,omitempty"`
	MandalID   uint64      `json:"mandal_id,omitempty"`
}

// toScope combines the request fields with a resolved designation ID.
func (r scopeReq) toScope(designationID uint64) model.Scope {
	return model.Scope{
		CellID:        r.CellID,
		DesignationID: designationID,
		Level:         model.Level(strings.ToUpper(string(r.Level))),
		Zone:          model.Zone(strings.ToUpper(string(r.Zone))),
		CountryID:     r.CountryID,
		StateID:       r.StateID,
		DistrictID:    r.DistrictID,
		MandalID:      r.MandalID,
	}
}

// errorBody is the stable JSON error envelope: a machine-readable
// code plus a human-readable message.
func errorBody(code, msg string) echo.Map {
	return echo.Map{"code": code, "error": msg}
}

// writeServiceError translates the repository sentinels into HTTP
// responses with stable error codes, so callers can decide on retry
// policy without parsing messages.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidScope):
		return c.JSON(http.StatusBadRequest, errorBody("INVALID_SCOPE", "scope fields do not match level"))
	case errors.Is(err, repository.ErrDesignationNotFound):
		return c.JSON(http.StatusNotFound, errorBody("DESIGNATION_NOT_FOUND", "designation not found"))
	case errors.Is(err, repository.ErrMembershipNotFound):
		return c.JSON(http.StatusNotFound, errorBody("MEMBERSHIP_NOT_FOUND", "membership not found"))
	case errors.Is(err, repository.ErrCardNotFound):
		return c.JSON(http.StatusNotFound, errorBody("CARD_NOT_FOUND", "no generated card for membership"))
	case errors.Is(err, repository.ErrNoSeatsAvailable):
		return c.JSON(http.StatusConflict, errorBody("NO_SEATS_AVAILABLE", "bucket is at capacity"))
	case errors.Is(err, repository.ErrConcurrentModification):
		return c.JSON(http.StatusConflict, errorBody("CONCURRENT_MODIFICATION", "concurrent update, retry the request"))
	case errors.Is(err, repository.ErrCycleDetected):
		return c.JSON(http.StatusBadRequest, errorBody("CYCLE_DETECTED", "parent is a descendant of the designation"))
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, errorBody("CONFLICT", "operation conflicts with current state"))
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorBody("FORBIDDEN", "not allowed"))
	}
	return c.JSON(http.StatusInternalServerError, errorBody("INTERNAL", "database error"))
}

// membershipResp is the JSON projection of a membership returned by
// the join, payment, approval and reassignment endpoints.
type membershipResp struct {
	ID            uint64  `json:"id"`
	UserID        uint64  `json:"user_id"`
	DesignationID uint64  `json:"designation_id"`
	CellID        uint64  `json:"cell_id"`
	Level         string  `json:"level"`
	Zone          string  `json:"zone,omitempty"`
	CountryID     uint64  `json:"country_id,omitempty"`
	StateID       uint64  `json:"state_id,omitempty"`
	DistrictID    uint64  `json:"district_id,omitempty"`
	MandalID      uint64  `json:"mandal_id,omitempty"`
	SeatSequence  uint32  `json:"seat_sequence"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	FeeCents      uint32  `json:"fee_cents"`
	Currency      string  `json:"currency"`
	ValidityDays  uint32  `json:"validity_days"`
	ActivatedAt   *string `json:"activated_at,omitempty"`
	ExpiresAt     *string `json:"expires_at,omitempty"`
}

func toMembershipResp(m *model.Membership) membershipResp {
	resp := membershipResp{
		ID:            m.ID,
		UserID:        m.UserID,
		DesignationID: m.DesignationID,
		CellID:        m.CellID,
		Level:         string(m.Level),
		Zone:          string(m.Zone),
		CountryID:     m.CountryID,
		StateID:       m.StateID,
		DistrictID:    m.DistrictID,
		MandalID:      m.MandalID,
		SeatSequence:  m.SeatSequence,
		Status:        string(m.Status),
		PaymentStatus: string(m.PaymentStatus),
		FeeCents:      m.FeeCents,
		Currency:      m.Currency,
		ValidityDays:  m.ValidityDays,
	}
	if m.ActivatedAt != nil {
		iso := m.ActivatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.ActivatedAt = &iso
	}
	if m.ExpiresAt != nil {
		iso := m.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.ExpiresAt = &iso
	}
	return resp
}
