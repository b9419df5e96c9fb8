package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"go-bidtrack-backend/internal/domain"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationColumns = `
	id, job_ref, user_id, profile_id, platform_id,
	title, description, job_url, technologies, connects, proposal_link, attachments,
	applied_at, stage,
	reply_date, reply_notes, interview_date, interview_notes,
	rejected_date, rejected_notes, hired_date,
	created_at, updated_at`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	err := row.Scan(
		&a.ID, &a.JobRef, &a.UserID, &a.ProfileID, &a.PlatformID,
		&a.Title, &a.Description, &a.JobURL, pq.Array(&a.Technologies), &a.Connects, &a.ProposalLink, pq.Array(&a.Attachments),
		&a.AppliedAt, &a.Stage,
		&a.ReplyDate, &a.ReplyNotes, &a.InterviewDate, &a.InterviewNotes,
		&a.RejectedDate, &a.RejectedNotes, &a.HiredDate,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new application and its creation audit entry in one
// transaction. A duplicate (user, job_ref, profile) bid maps to ErrConflict.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application, audit domain.AuditBuilder) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Stage == "" {
		app.Stage = domain.StageApplied
	}

	query := `
		INSERT INTO applications (
			job_ref, user_id, profile_id, platform_id,
			title, description, job_url, technologies, connects, proposal_link, attachments,
			applied_at, stage, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING id`

	err = tx.QueryRow(ctx, query,
		app.JobRef, app.UserID, app.ProfileID, app.PlatformID,
		app.Title, app.Description, app.JobURL, pq.Array(app.Technologies), app.Connects, app.ProposalLink, pq.Array(app.Attachments),
		app.AppliedAt, app.Stage, now,
	).Scan(&app.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}

	if audit != nil {
		entry, err := audit(nil, app)
		if err != nil {
			return err
		}
		if err := insertAuditTx(ctx, tx, entry); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves an application by ID
func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(r.db.QueryRow(ctx, query, id))
}

// GetByBid retrieves an application by its natural bid identity
func (r *applicationRepo) GetByBid(ctx context.Context, userID int64, jobRef string, profileID int64) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 AND job_ref = $2 AND profile_id = $3`
	return scanApplication(r.db.QueryRow(ctx, query, userID, jobRef, profileID))
}

// ExistsBid checks whether a bid already exists for the (user, job, profile) triple
func (r *applicationRepo) ExistsBid(ctx context.Context, userID int64, jobRef string, profileID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM applications WHERE user_id = $1 AND job_ref = $2 AND profile_id = $3)`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID, jobRef, profileID).Scan(&exists)
	return exists, err
}

func getForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1 FOR UPDATE`
	return scanApplication(tx.QueryRow(ctx, query, id))
}

func updateApplicationTx(ctx context.Context, tx pgx.Tx, a *domain.Application) error {
	query := `
		UPDATE applications SET
			platform_id = $2,
			title = $3,
			description = $4,
			job_url = $5,
			technologies = $6,
			connects = $7,
			proposal_link = $8,
			attachments = $9,
			applied_at = $10,
			stage = $11,
			reply_date = $12,
			reply_notes = $13,
			interview_date = $14,
			interview_notes = $15,
			rejected_date = $16,
			rejected_notes = $17,
			hired_date = $18,
			updated_at = $19
		WHERE id = $1`

	_, err := tx.Exec(ctx, query,
		a.ID,
		a.PlatformID,
		a.Title,
		a.Description,
		a.JobURL,
		pq.Array(a.Technologies),
		a.Connects,
		a.ProposalLink,
		pq.Array(a.Attachments),
		a.AppliedAt,
		a.Stage,
		a.ReplyDate,
		a.ReplyNotes,
		a.InterviewDate,
		a.InterviewNotes,
		a.RejectedDate,
		a.RejectedNotes,
		a.HiredDate,
		a.UpdatedAt,
	)
	return err
}

// Mutate applies a mutation and its audit entry atomically. The pre-image is
// re-read under the row lock so the audit "before" snapshot always matches
// what was actually in the store, even when two writers race.
func (r *applicationRepo) Mutate(ctx context.Context, id int64, mutate func(*domain.Application) error, audit domain.AuditBuilder) (*domain.Application, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	before, err := getForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	after := before.Clone()
	if err := mutate(after); err != nil {
		return nil, err
	}
	after.UpdatedAt = time.Now()

	if err := updateApplicationTx(ctx, tx, after); err != nil {
		return nil, err
	}

	if audit != nil {
		entry, err := audit(before, after)
		if err != nil {
			return nil, err
		}
		if err := insertAuditTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return after, nil
}

// MarkHired inserts the hire companion record and stamps the owning
// application in one transaction. A second hire for the same application is
// rejected with ErrConflict, never overwritten.
func (r *applicationRepo) MarkHired(ctx context.Context, id int64, hire *domain.HireRecord, audit domain.AuditBuilder) (*domain.Application, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	before, err := getForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM hires WHERE application_id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrConflict
	}

	hire.ApplicationID = id
	hire.CreatedAt = time.Now()
	err = tx.QueryRow(ctx, `
		INSERT INTO hires (application_id, budget_type, budget_amount, client_name, developer_id, hired_at, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		hire.ApplicationID, hire.BudgetType, hire.BudgetAmount, hire.ClientName, hire.DeveloperID, hire.HiredAt, hire.Notes, hire.CreatedAt,
	).Scan(&hire.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrConflict
		}
		return nil, err
	}

	after := before.Clone()
	after.Stage = domain.StageHired
	hiredAt := hire.HiredAt
	after.HiredDate = &hiredAt
	after.UpdatedAt = time.Now()

	if err := updateApplicationTx(ctx, tx, after); err != nil {
		return nil, err
	}

	if audit != nil {
		entry, err := audit(before, after)
		if err != nil {
			return nil, err
		}
		if err := insertAuditTx(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return after, nil
}
