package repository

import (
	"context"
	"database/sql"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

// CapacityOverrideRepo provides access to per-bucket capacity pins.
// Capacity overrides address one exact bucket by its canonical key;
// there is no scoring involved.
type CapacityOverrideRepo struct {
	db *sql.DB
}

// NewCapacityOverrideRepo returns a new CapacityOverrideRepo bound to the given database.
func NewCapacityOverrideRepo(db *sql.DB) *CapacityOverrideRepo {
	return &CapacityOverrideRepo{db: db}
}

// GetForBucketTx returns the capacity pinned for a bucket inside an
// allocation transaction, or (0, false) when none exists.
func (r *CapacityOverrideRepo) GetForBucketTx(ctx context.Context, tx *sql.Tx, bucketKey string) (uint32, bool, error) {
	var capacity uint32
	err := tx.QueryRowContext(ctx,
		`SELECT capacity FROM capacity_overrides WHERE bucket_key = ?`, bucketKey).Scan(&capacity)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return capacity, true, nil
}

// GetForBucket is the non-transactional variant used by read-only
// availability queries.
func (r *CapacityOverrideRepo) GetForBucket(ctx context.Context, bucketKey string) (uint32, bool, error) {
	var capacity uint32
	err := r.db.QueryRowContext(ctx,
		`SELECT capacity FROM capacity_overrides WHERE bucket_key = ?`, bucketKey).Scan(&capacity)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return capacity, true, nil
}

// Upsert creates or replaces the capacity pin for a bucket.
func (r *CapacityOverrideRepo) Upsert(ctx context.Context, o *model.CapacityOverride) error {
	const q = `INSERT INTO capacity_overrides (bucket_key, capacity) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE capacity = VALUES(capacity)`
	_, err := r.db.ExecContext(ctx, q, o.BucketKey, o.Capacity)
	return err
}

// Delete removes the capacity pin for a bucket, restoring the
// designation default.
func (r *CapacityOverrideRepo) Delete(ctx context.Context, bucketKey string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM capacity_overrides WHERE bucket_key = ?`, bucketKey)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
