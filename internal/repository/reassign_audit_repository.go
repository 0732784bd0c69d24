package repository

import (
	"context"
	"database/sql"
	"time"
)

// ReassignAudit records one applied reassignment: who moved which
// membership between which buckets, and whether the capacity check
// was bypassed.  Direct-mode applications are only ever legitimate
// with this row present.
type ReassignAudit struct {
	ID           uint64    // reassign_audits.id
	Reference    string    // reassign_audits.reference (uuid)
	MembershipID uint64    // reassign_audits.membership_id
	ActorID      uint64    // reassign_audits.actor_id
	FromBucket   string    // reassign_audits.from_bucket
	ToBucket     string    // reassign_audits.to_bucket
	Direct       bool      // reassign_audits.direct
	CreatedAt    time.Time // reassign_audits.created_at
}

// ReassignAuditRepo persists the reassignment audit trail.
type ReassignAuditRepo struct {
	db *sql.DB
}

// NewReassignAuditRepo returns a new ReassignAuditRepo bound to the given database.
func NewReassignAuditRepo(db *sql.DB) *ReassignAuditRepo { return &ReassignAuditRepo{db: db} }

// CreateTx inserts an audit row within the reassignment transaction
// so the move and its record commit together.
func (r *ReassignAuditRepo) CreateTx(ctx context.Context, tx *sql.Tx, a *ReassignAudit) error {
	const q = `INSERT INTO reassign_audits (reference, membership_id, actor_id, from_bucket, to_bucket, direct)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, a.Reference, a.MembershipID, a.ActorID, a.FromBucket, a.ToBucket, a.Direct)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// ListByMembership returns the audit trail for one membership, oldest
// first.
func (r *ReassignAuditRepo) ListByMembership(ctx context.Context, membershipID uint64) ([]ReassignAudit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, reference, membership_id, actor_id, from_bucket, to_bucket, direct, created_at
		 FROM reassign_audits WHERE membership_id = ? ORDER BY created_at ASC, id ASC`, membershipID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReassignAudit, 0)
	for rows.Next() {
		var a ReassignAudit
		if err := rows.Scan(&a.ID, &a.Reference, &a.MembershipID, &a.ActorID,
			&a.FromBucket, &a.ToBucket, &a.Direct, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
