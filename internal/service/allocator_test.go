package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/repository"
)

func setupMockAllocator(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Allocator) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	a := NewAllocator(
		repository.NewMembershipRepo(db),
		repository.NewDesignationRepo(db),
		repository.NewPriceOverrideRepo(db),
		repository.NewCapacityOverrideRepo(db),
		repository.NewGeoRepo(db),
	)
	return db, mock, a
}

// zoneScope addresses the same bucket in every allocator test:
// cell 1, designation 7, ZONE/NORTH.
func zoneScope() model.Scope {
	return model.Scope{CellID: 1, DesignationID: 7, Level: model.LevelZone, Zone: model.ZoneNorth}
}

func designationRows(capacity uint32) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "code", "name", "parent_id", "default_capacity", "default_fee_cents",
		"currency", "validity_days", "display_rank", "created_at", "updated_at",
	}).AddRow(7, "PRESIDENT", "President", nil, capacity, 50000, "INR", 365, 1, now, now)
}

func emptyOverrideRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "designation_id", "cell_id", "level", "zone", "state_id", "district_id",
		"mandal_id", "fee_cents", "currency", "validity_days", "priority", "created_at",
	})
}

func membershipRows(id uint64, seat uint32) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "cell_id", "designation_id", "level", "zone", "country_id",
		"state_id", "district_id", "mandal_id", "bucket_key", "seat_sequence", "status",
		"payment_status", "fee_cents", "currency", "validity_days", "payment_ref",
		"activated_at", "expires_at", "locked_at", "version", "created_at", "updated_at",
	}).AddRow(id, 9, 1, 7, "ZONE", "NORTH", nil, nil, nil, nil,
		"c1:d7:ZONE:zNORTH", seat, "PENDING_PAYMENT", "PENDING",
		50000, "INR", 365, nil, nil, nil, nil, 1, now, now)
}

// expectCatalogReads queues the pre-transaction reads every Allocate
// performs: the designation lookup and its price overrides.
func expectCatalogReads(mock sqlmock.Sqlmock, capacity uint32) {
	mock.ExpectQuery(`FROM designations WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(designationRows(capacity))
	mock.ExpectQuery(`FROM price_overrides WHERE designation_id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(emptyOverrideRows())
}

func dupKeyErr() error {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
}

func TestAllocate_FullBucketRejected(t *testing.T) {
	db, mock, a := setupMockAllocator(t)
	defer db.Close()

	expectCatalogReads(mock, 1)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT capacity FROM capacity_overrides`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	m, err := a.Allocate(context.Background(), 9, zoneScope())
	require.ErrorIs(t, err, repository.ErrNoSeatsAvailable)
	assert.Nil(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocate_Succeeds(t *testing.T) {
	db, mock, a := setupMockAllocator(t)
	defer db.Close()

	expectCatalogReads(mock, 1)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT capacity FROM capacity_overrides`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(seat_sequence\), 0\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO memberships`).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery(`FROM memberships WHERE id = \?`).
		WithArgs(uint64(42)).
		WillReturnRows(membershipRows(42, 1))
	mock.ExpectCommit()

	m, err := a.Allocate(context.Background(), 9, zoneScope())
	require.NoError(t, err)
	assert.Equal(t, uint64(42), m.ID)
	assert.Equal(t, uint32(1), m.SeatSequence)
	assert.Equal(t, model.StatusPendingPayment, m.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two racers on an empty capacity-1 bucket both count zero occupants
// (empty buckets lock no rows).  The loser's insert hits the
// (bucket_key, seat_sequence) constraint; the recount must then see
// the winner's committed row and reject, not draw the next ordinal.
func TestAllocate_RecountsCapacityAfterLosingRace(t *testing.T) {
	db, mock, a := setupMockAllocator(t)
	defer db.Close()

	expectCatalogReads(mock, 1)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT capacity FROM capacity_overrides`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(seat_sequence\), 0\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO memberships`).
		WillReturnError(dupKeyErr())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	m, err := a.Allocate(context.Background(), 9, zoneScope())
	require.ErrorIs(t, err, repository.ErrNoSeatsAvailable)
	assert.Nil(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// With seats left after a lost race, the retry re-reads the bucket max
// and claims the next ordinal.
func TestAllocate_RetriesNextOrdinalWhenSeatsRemain(t *testing.T) {
	db, mock, a := setupMockAllocator(t)
	defer db.Close()

	expectCatalogReads(mock, 2)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT capacity FROM capacity_overrides`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(seat_sequence\), 0\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO memberships`).
		WillReturnError(dupKeyErr())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(seat_sequence\), 0\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO memberships`).
		WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectQuery(`FROM memberships WHERE id = \?`).
		WithArgs(uint64(43)).
		WillReturnRows(membershipRows(43, 2))
	mock.ExpectCommit()

	m, err := a.Allocate(context.Background(), 9, zoneScope())
	require.NoError(t, err)
	assert.Equal(t, uint32(2), m.SeatSequence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A capacity override pins the bucket below the designation default.
func TestAllocate_CapacityOverrideApplies(t *testing.T) {
	db, mock, a := setupMockAllocator(t)
	defer db.Close()

	expectCatalogReads(mock, 10)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT capacity FROM capacity_overrides`).
		WithArgs("c1:d7:ZONE:zNORTH").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM memberships`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectRollback()

	m, err := a.Allocate(context.Background(), 9, zoneScope())
	require.ErrorIs(t, err, repository.ErrNoSeatsAvailable)
	assert.Nil(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}
