package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
)

func TestFormatCardNumber(t *testing.T) {
	assert.Equal(t, "HRCI-2025-00001", FormatCardNumber(2025, 1))
	assert.Equal(t, "HRCI-2025-00042", FormatCardNumber(2025, 42))
	assert.Equal(t, "HRCI-2026-12345", FormatCardNumber(2026, 12345))
}

func TestValidCardNumber(t *testing.T) {
	assert.True(t, ValidCardNumber("HRCI-2025-00001"))
	assert.True(t, ValidCardNumber("HRCI-0001-99999"))

	for _, bad := range []string{
		"HRCI-2025-1",        // counter not padded
		"HRCI-25-00001",      // short epoch
		"HRC-2025-00001",     // wrong prefix
		"hrci-2025-00001",    // lower case
		"HRCI-2025-000011",   // counter too long
		"HRCI-2025-00001 ",   // trailing junk
		"LEGACY-77",          // legacy free-form
		"",
	} {
		assert.False(t, ValidCardNumber(bad), bad)
	}
}

func TestEpochOf_UTCYear(t *testing.T) {
	assert.Equal(t, uint32(2025), EpochOf(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)))

	// New Year's Eve in a west-of-UTC zone is already the next epoch in UTC.
	ny := time.FixedZone("UTC-5", -5*3600)
	assert.Equal(t, uint32(2026), EpochOf(time.Date(2025, 12, 31, 23, 0, 0, 0, ny)))

	// And east-of-UTC midnight can still belong to the old epoch.
	ist := time.FixedZone("UTC+5:30", 5*3600+1800)
	assert.Equal(t, uint32(2025), EpochOf(time.Date(2026, 1, 1, 2, 0, 0, 0, ist)))
}

func TestFormattedNumbersValidate(t *testing.T) {
	for _, seq := range []uint32{1, 99, 100, 99999} {
		n := FormatCardNumber(2025, seq)
		assert.True(t, ValidCardNumber(n), n)
	}

	// Past the 5-digit space %04d/%05d widen rather than truncate;
	// the issue path must refuse these before they reach storage.
	assert.False(t, ValidCardNumber(FormatCardNumber(2025, 100000)))
}

// An epoch whose counter has moved past 99999 must fail issuance
// instead of storing a 6-digit number.
func TestIssue_RefusesExhaustedEpoch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ci := NewCardIssuer(db, repository.NewIDCardRepo(db))
	issuedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE id_cards SET status = 'REVOKED'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO card_sequences`).
		WillReturnResult(sqlmock.NewResult(100000, 1))
	mock.ExpectRollback()

	card, err := ci.Issue(context.Background(), 5, issuedAt, issuedAt.AddDate(1, 0, 0))
	require.ErrorIs(t, err, repository.ErrCardSpaceExhausted)
	assert.Nil(t, card)
	assert.NoError(t, mock.ExpectationsWereMet())
}
