package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetUserID(t *testing.T) {
	c, _ := newTestContext(t)

	c.Set("user_id", uint64(42))
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	// JWT middleware stores numeric claims as float64.
	c.Set("user_id", float64(7))
	id, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)

	c.Set("user_id", "19")
	id, err = getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(19), id)

	c.Set("user_id", nil)
	_, err = getUserID(c)
	assert.Error(t, err)
}

func TestScopeReqToScope_NormalizesCase(t *testing.T) {
	r := scopeReq{
		CellID:     3,
		Level:      "mandal",
		StateID:    10,
		DistrictID: 20,
		MandalID:   30,
	}
	s := r.toScope(7)
	assert.Equal(t, model.LevelMandal, s.Level)
	assert.Equal(t, uint64(7), s.DesignationID)
	assert.NoError(t, s.Validate())
}

func TestWriteServiceError_StatusAndCode(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{repository.ErrInvalidScope, http.StatusBadRequest, "INVALID_SCOPE"},
		{repository.ErrDesignationNotFound, http.StatusNotFound, "DESIGNATION_NOT_FOUND"},
		{repository.ErrMembershipNotFound, http.StatusNotFound, "MEMBERSHIP_NOT_FOUND"},
		{repository.ErrCardNotFound, http.StatusNotFound, "CARD_NOT_FOUND"},
		{repository.ErrNoSeatsAvailable, http.StatusConflict, "NO_SEATS_AVAILABLE"},
		{repository.ErrConcurrentModification, http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{repository.ErrCycleDetected, http.StatusBadRequest, "CYCLE_DETECTED"},
		{repository.ErrConflict, http.StatusConflict, "CONFLICT"},
		{repository.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			c, rec := newTestContext(t)
			require.NoError(t, writeServiceError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestToMembershipResp(t *testing.T) {
	m := &model.Membership{
		ID:            5,
		UserID:        9,
		DesignationID: 7,
		CellID:        1,
		Level:         model.LevelState,
		StateID:       10,
		SeatSequence:  3,
		Status:        model.StatusPendingPayment,
		PaymentStatus: model.PaymentPending,
		FeeCents:      50000,
		Currency:      "INR",
		ValidityDays:  365,
	}
	resp := toMembershipResp(m)
	assert.Equal(t, uint64(5), resp.ID)
	assert.Equal(t, "STATE", resp.Level)
	assert.Equal(t, uint32(3), resp.SeatSequence)
	assert.Nil(t, resp.ActivatedAt)
	assert.Nil(t, resp.ExpiresAt)
}
