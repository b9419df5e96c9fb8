package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-bidtrack-backend/internal/domain"
)

type auditRepo struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates the read side of the audit ledger
func NewAuditRepository(db *pgxpool.Pool) domain.AuditRepository {
	return &auditRepo{db: db}
}

// insertAuditTx appends one entry to the ledger inside the caller's
// transaction, so record mutation and audit write commit or fail together.
// The ledger is append-only: no update or delete statement exists for it.
func insertAuditTx(ctx context.Context, tx pgx.Tx, e *domain.AuditEntry) error {
	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return err
	}
	e.CreatedAt = time.Now()
	return tx.QueryRow(ctx, `
		INSERT INTO audit_logs (application_id, actor_id, before, after, changes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		e.ApplicationID, e.ActorID, []byte(e.Before), []byte(e.After), changes, e.CreatedAt,
	).Scan(&e.ID)
}

const auditQuery = `
	SELECT al.id, al.application_id, al.actor_id, al.before, al.after, al.changes, al.created_at
	FROM audit_logs al`

func scanAuditRows(rows pgx.Rows) ([]domain.AuditEntry, error) {
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var changes []byte
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.ActorID, &e.Before, &e.After, &changes, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListByUser returns the audit trail across all of a user's applications,
// most recent first.
func (r *auditRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.AuditEntry, error) {
	query := auditQuery + `
		JOIN applications a ON a.id = al.application_id
		WHERE a.user_id = $1
		ORDER BY al.created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	return scanAuditRows(rows)
}

// ListByApplication returns one application's audit trail, most recent first.
func (r *auditRepo) ListByApplication(ctx context.Context, applicationID int64, limit int) ([]domain.AuditEntry, error) {
	query := auditQuery + `
		WHERE al.application_id = $1
		ORDER BY al.created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, applicationID, limit)
	if err != nil {
		return nil, err
	}
	return scanAuditRows(rows)
}
