package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

// MembershipRepo provides access to seat occupancy records.  The
// bucket-facing methods come in Tx variants because the capacity
// invariant depends on them executing inside the allocation
// transaction: the occupancy count and max ordinal are read with
// row locks (SELECT ... FOR UPDATE) so two concurrent allocations
// into the same bucket serialize, and the uniqueness constraint on
// (bucket_key, seat_sequence) backs the whole thing up should the
// lock footprint ever miss (empty buckets lock no rows, so the very
// first two inserts into a bucket race and one of them retries).
// All timestamps are stored in UTC.
type MembershipRepo struct {
	db *sql.DB
}

// NewMembershipRepo returns a new MembershipRepo bound to the given database.
func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{db: db} }

// DB exposes the underlying handle so services can open transactions
// spanning multiple repositories.
func (r *MembershipRepo) DB() *sql.DB { return r.db }

// occupiedStatuses are the states that consume a seat against the
// bucket's capacity.
const occupiedStatuses = `'PENDING_PAYMENT', 'PENDING_APPROVAL', 'ACTIVE'`

const membershipCols = `id, user_id, cell_id, designation_id, level, zone, country_id, state_id,
	district_id, mandal_id, bucket_key, seat_sequence, status, payment_status,
	fee_cents, currency, validity_days, payment_ref, activated_at, expires_at,
	locked_at, version, created_at, updated_at`

func scanMembership(row interface{ Scan(...interface{}) error }) (*model.Membership, error) {
	var m model.Membership
	var zone sql.NullString
	var countryID, stateID, districtID, mandalID sql.NullInt64
	var paymentRef sql.NullString
	var activatedAt, expiresAt, lockedAt sql.NullTime
	if err := row.Scan(&m.ID, &m.UserID, &m.CellID, &m.DesignationID, &m.Level, &zone,
		&countryID, &stateID, &districtID, &mandalID,
		&m.BucketKey, &m.SeatSequence, &m.Status, &m.PaymentStatus,
		&m.FeeCents, &m.Currency, &m.ValidityDays, &paymentRef,
		&activatedAt, &expiresAt, &lockedAt, &m.Version, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if zone.Valid {
		m.Zone = model.Zone(zone.String)
	}
	if countryID.Valid {
		m.CountryID = uint64(countryID.Int64)
	}
	if stateID.Valid {
		m.StateID = uint64(stateID.Int64)
	}
	if districtID.Valid {
		m.DistrictID = uint64(districtID.Int64)
	}
	if mandalID.Valid {
		m.MandalID = uint64(mandalID.Int64)
	}
	if paymentRef.Valid {
		ref := paymentRef.String
		m.PaymentRef = &ref
	}
	if activatedAt.Valid {
		t := activatedAt.Time
		m.ActivatedAt = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		m.ExpiresAt = &t
	}
	if lockedAt.Valid {
		t := lockedAt.Time
		m.LockedAt = &t
	}
	return &m, nil
}

// CountOccupiedTx counts seat-consuming memberships in a bucket with
// their rows locked.  excludeID removes the caller's own membership
// from the count during reassignment; pass 0 otherwise.
func (r *MembershipRepo) CountOccupiedTx(ctx context.Context, tx *sql.Tx, bucketKey string, excludeID uint64) (uint32, error) {
	const q = `SELECT COUNT(*) FROM memberships
	           WHERE bucket_key = ? AND id <> ? AND status IN (` + occupiedStatuses + `)
	           FOR UPDATE`
	var n uint32
	if err := tx.QueryRowContext(ctx, q, bucketKey, excludeID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountOccupied is the lock-free variant used by availability reads.
func (r *MembershipRepo) CountOccupied(ctx context.Context, bucketKey string, excludeID uint64) (uint32, error) {
	const q = `SELECT COUNT(*) FROM memberships
	           WHERE bucket_key = ? AND id <> ? AND status IN (` + occupiedStatuses + `)`
	var n uint32
	if err := r.db.QueryRowContext(ctx, q, bucketKey, excludeID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// MaxSeatSequenceTx returns the highest seat ordinal ever assigned in
// a bucket, across all statuses, with the rows locked.  Revoked and
// expired rows stay in the max so ordinals are never reused.
func (r *MembershipRepo) MaxSeatSequenceTx(ctx context.Context, tx *sql.Tx, bucketKey string, excludeID uint64) (uint32, error) {
	const q = `SELECT COALESCE(MAX(seat_sequence), 0) FROM memberships
	           WHERE bucket_key = ? AND id <> ?
	           FOR UPDATE`
	var max uint32
	if err := tx.QueryRowContext(ctx, q, bucketKey, excludeID).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// MaxSeatSequence is the lock-free variant used by reassignment preview.
func (r *MembershipRepo) MaxSeatSequence(ctx context.Context, bucketKey string, excludeID uint64) (uint32, error) {
	const q = `SELECT COALESCE(MAX(seat_sequence), 0) FROM memberships
	           WHERE bucket_key = ? AND id <> ?`
	var max uint32
	if err := r.db.QueryRowContext(ctx, q, bucketKey, excludeID).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// CreateTx inserts a membership within the allocation transaction and
// populates generated fields on the record.  A duplicate
// (bucket_key, seat_sequence) insert returns ErrConcurrentModification
// so the allocator can re-read the max ordinal and retry.
func (r *MembershipRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Membership) error {
	const q = `INSERT INTO memberships
	           (user_id, cell_id, designation_id, level, zone, country_id, state_id, district_id, mandal_id,
	            bucket_key, seat_sequence, status, payment_status, fee_cents, currency, validity_days)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		m.UserID, m.CellID, m.DesignationID, m.Level, nullStr(string(m.Zone)),
		nullID(m.CountryID), nullID(m.StateID), nullID(m.DistrictID), nullID(m.MandalID),
		m.BucketKey, m.SeatSequence, m.Status, m.PaymentStatus,
		m.FeeCents, m.Currency, m.ValidityDays)
	if err != nil {
		if IsDuplicateEntry(err) {
			return ErrConcurrentModification
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	full, err := scanMembership(tx.QueryRowContext(ctx,
		`SELECT `+membershipCols+` FROM memberships WHERE id = ?`, m.ID))
	if err != nil {
		return err
	}
	*m = *full
	return nil
}

// GetByID fetches a membership by primary key.
func (r *MembershipRepo) GetByID(ctx context.Context, id uint64) (*model.Membership, error) {
	m, err := scanMembership(r.db.QueryRowContext(ctx,
		`SELECT `+membershipCols+` FROM memberships WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrMembershipNotFound
	}
	return m, err
}

// GetByIDForUpdateTx fetches a membership with its row locked for the
// duration of the transaction.
func (r *MembershipRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Membership, error) {
	m, err := scanMembership(tx.QueryRowContext(ctx,
		`SELECT `+membershipCols+` FROM memberships WHERE id = ? FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, ErrMembershipNotFound
	}
	return m, err
}

// ListByUser returns all memberships of a user, newest first.
func (r *MembershipRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipCols+` FROM memberships WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// ActivateTx transitions a membership to ACTIVE with an optimistic
// version check.  Zero rows affected means another writer got there
// first and the caller should re-read.
func (r *MembershipRepo) ActivateTx(ctx context.Context, tx *sql.Tx, id uint64, version uint32,
	payment model.PaymentStatus, providerRef *string, activatedAt, expiresAt time.Time) error {
	const q = `UPDATE memberships
	           SET status = 'ACTIVE', payment_status = ?, payment_ref = COALESCE(?, payment_ref),
	               activated_at = ?, expires_at = ?, version = version + 1
	           WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, payment, providerRef,
		activatedAt.UTC().Format("2006-01-02 15:04:05"), expiresAt.UTC().Format("2006-01-02 15:04:05"),
		id, version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// SetPaymentFailedTx records a failed payment attempt.  The
// membership stays PENDING_PAYMENT so the seat remains held for a
// retried payment.
func (r *MembershipRepo) SetPaymentFailedTx(ctx context.Context, tx *sql.Tx, id uint64, version uint32, providerRef *string) error {
	const q = `UPDATE memberships
	           SET payment_status = 'FAILED', payment_ref = COALESCE(?, payment_ref), version = version + 1
	           WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, providerRef, id, version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// RevokeTx transitions a membership to REVOKED with a version check.
func (r *MembershipRepo) RevokeTx(ctx context.Context, tx *sql.Tx, id uint64, version uint32) error {
	const q = `UPDATE memberships SET status = 'REVOKED', version = version + 1
	           WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, id, version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// AcquireReassignLockTx sets the advisory locked_at marker.  A marker
// younger than staleAfter blocks the acquisition (ErrConflict);
// anything older is treated as abandoned and taken over.  The real
// protection against lost updates is the version check on the final
// scope update, this marker only keeps two administrators from
// previewing and applying over each other in the common case.
func (r *MembershipRepo) AcquireReassignLockTx(ctx context.Context, tx *sql.Tx, id uint64, staleAfter time.Duration) error {
	cutoff := time.Now().UTC().Add(-staleAfter).Format("2006-01-02 15:04:05")
	const q = `UPDATE memberships SET locked_at = UTC_TIMESTAMP()
	           WHERE id = ? AND (locked_at IS NULL OR locked_at < ?)`
	res, err := tx.ExecContext(ctx, q, id, cutoff)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// UpdateScopeTx rewrites the membership's scope columns, bucket key
// and seat ordinal during reassignment, clears the advisory lock and
// bumps the version.  A duplicate (bucket_key, seat_sequence) returns
// ErrConcurrentModification for the caller's retry loop, as does a
// failed version check.
func (r *MembershipRepo) UpdateScopeTx(ctx context.Context, tx *sql.Tx, id uint64, version uint32,
	s model.Scope, bucketKey string, seatSequence uint32, fee uint32, currency string, validityDays uint32) error {
	const q = `UPDATE memberships
	           SET cell_id = ?, designation_id = ?, level = ?, zone = ?, country_id = ?,
	               state_id = ?, district_id = ?, mandal_id = ?, bucket_key = ?, seat_sequence = ?,
	               fee_cents = ?, currency = ?, validity_days = ?,
	               locked_at = NULL, version = version + 1
	           WHERE id = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q,
		s.CellID, s.DesignationID, s.Level, nullStr(string(s.Zone)),
		nullID(s.CountryID), nullID(s.StateID), nullID(s.DistrictID), nullID(s.MandalID),
		bucketKey, seatSequence, fee, currency, validityDays, id, version)
	if err != nil {
		if IsDuplicateEntry(err) {
			return ErrConcurrentModification
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ExpireDue flips every ACTIVE membership whose expiry has passed to
// EXPIRED and returns how many rows changed.  Driven by the
// scheduled sweep; idempotent by construction.
func (r *MembershipRepo) ExpireDue(ctx context.Context) (int64, error) {
	const q = `UPDATE memberships
	           SET status = 'EXPIRED', version = version + 1
	           WHERE status = 'ACTIVE' AND expires_at IS NOT NULL AND expires_at <= UTC_TIMESTAMP()`
	res, err := r.db.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// nullID converts a zero-valued optional ID into SQL NULL.
func nullID(v uint64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// nullStr converts an empty string into SQL NULL.
func nullStr(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
