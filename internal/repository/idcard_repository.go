package repository

import (
	"context"
	"database/sql"

	"github.com/atshybrid/ai-kaburlu-backend-sub001/internal/model"
)

// IDCardRepo provides access to issued credentials and the per-epoch
// numbering counters.  Card numbers are globally unique; the counter
// advance and the card insert run in the caller's transaction so a
// failed issue leaves neither behind.
type IDCardRepo struct {
	db *sql.DB
}

// NewIDCardRepo returns a new IDCardRepo bound to the given database.
func NewIDCardRepo(db *sql.DB) *IDCardRepo { return &IDCardRepo{db: db} }

// NextSequenceTx atomically advances and returns the counter for an
// epoch.  The ON DUPLICATE KEY UPDATE + LAST_INSERT_ID trick makes
// the read-increment-write a single statement, so two concurrent
// issuances can never draw the same value.
func (r *IDCardRepo) NextSequenceTx(ctx context.Context, tx *sql.Tx, epoch uint32) (uint32, error) {
	const q = `INSERT INTO card_sequences (epoch, seq) VALUES (?, 1)
	           ON DUPLICATE KEY UPDATE seq = LAST_INSERT_ID(seq + 1)`
	res, err := tx.ExecContext(ctx, q, epoch)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		// Fresh epoch row: the INSERT path does not touch
		// LAST_INSERT_ID, the counter is at 1.
		return 1, nil
	}
	return uint32(id), nil
}

// CreateTx inserts a card within the caller's transaction and
// populates the generated ID.  A collision on card_number returns
// ErrCardNumberTaken so the numbering service can draw again.
func (r *IDCardRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.IDCard) error {
	const q = `INSERT INTO id_cards (membership_id, card_number, status, issued_at, expires_at)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, c.MembershipID, c.CardNumber, c.Status,
		c.IssuedAt.UTC().Format("2006-01-02 15:04:05"),
		c.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		if IsDuplicateEntry(err) {
			return ErrCardNumberTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// RevokeActiveByMembershipTx marks the membership's generated card as
// revoked.  Safe to call when no card exists.
func (r *IDCardRepo) RevokeActiveByMembershipTx(ctx context.Context, tx *sql.Tx, membershipID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE id_cards SET status = 'REVOKED' WHERE membership_id = ? AND status = 'GENERATED'`,
		membershipID)
	return err
}

// CardView is the render payload for an issued card: the card row
// joined with the holder's name and the designation and cell labels.
type CardView struct {
	Card            model.IDCard
	FullName        string
	DesignationName string
	CellName        string
}

// GetViewByMembership returns the render view for the membership's
// current GENERATED card, or ErrCardNotFound.
func (r *IDCardRepo) GetViewByMembership(ctx context.Context, membershipID uint64) (*CardView, error) {
	var v CardView
	err := r.db.QueryRowContext(ctx,
		`SELECT ic.id, ic.membership_id, ic.card_number, ic.status, ic.issued_at, ic.expires_at, ic.created_at,
		        u.full_name, d.name, ce.name
		 FROM id_cards ic
		 JOIN memberships m ON m.id = ic.membership_id
		 JOIN users u ON u.id = m.user_id
		 JOIN designations d ON d.id = m.designation_id
		 JOIN cells ce ON ce.id = m.cell_id
		 WHERE ic.membership_id = ? AND ic.status = 'GENERATED'
		 ORDER BY ic.issued_at DESC LIMIT 1`, membershipID).
		Scan(&v.Card.ID, &v.Card.MembershipID, &v.Card.CardNumber, &v.Card.Status,
			&v.Card.IssuedAt, &v.Card.ExpiresAt, &v.Card.CreatedAt,
			&v.FullName, &v.DesignationName, &v.CellName)
	if err == sql.ErrNoRows {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListNotMatching returns cards whose stored number does not match the
// canonical pattern, in ascending original-issue order.  The backfill
// walks this list and re-issues numbers while preserving that order.
func (r *IDCardRepo) ListNotMatching(ctx context.Context, pattern string) ([]model.IDCard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, membership_id, card_number, status, issued_at, expires_at, created_at
		 FROM id_cards WHERE card_number NOT REGEXP ? ORDER BY issued_at ASC, id ASC`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.IDCard, 0)
	for rows.Next() {
		var c model.IDCard
		if err := rows.Scan(&c.ID, &c.MembershipID, &c.CardNumber, &c.Status,
			&c.IssuedAt, &c.ExpiresAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateNumberTx replaces a card's number during backfill.  Collisions
// surface as ErrCardNumberTaken for the caller's retry.
func (r *IDCardRepo) UpdateNumberTx(ctx context.Context, tx *sql.Tx, id uint64, number string) error {
	res, err := tx.ExecContext(ctx, `UPDATE id_cards SET card_number = ? WHERE id = ?`, number, id)
	if err != nil {
		if IsDuplicateEntry(err) {
			return ErrCardNumberTaken
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCardNotFound
	}
	return nil
}
