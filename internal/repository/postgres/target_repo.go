package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-bidtrack-backend/internal/domain"
)

type targetRepo struct {
	db *pgxpool.Pool
}

// NewTargetRepository creates a new weekly target repository
func NewTargetRepository(db *pgxpool.Pool) domain.TargetRepository {
	return &targetRepo{db: db}
}

const targetColumns = `id, user_id, week_start, week_end, target_amount, achieved_amount, created_at, updated_at`

func scanTarget(row pgx.Row) (*domain.WeeklyTarget, error) {
	var t domain.WeeklyTarget
	err := row.Scan(&t.ID, &t.UserID, &t.WeekStart, &t.WeekEnd, &t.TargetAmount, &t.AchievedAmount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByWeek retrieves the target row keyed by (user, week start)
func (r *targetRepo) GetByWeek(ctx context.Context, userID int64, weekStart time.Time) (*domain.WeeklyTarget, error) {
	query := `SELECT ` + targetColumns + ` FROM weekly_targets WHERE user_id = $1 AND week_start = $2`
	return scanTarget(r.db.QueryRow(ctx, query, userID, weekStart))
}

// Upsert creates the week's row on first target-setting and updates the
// target amount thereafter. Reports whether a new row was created.
func (r *targetRepo) Upsert(ctx context.Context, t *domain.WeeklyTarget) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	existing, err := scanTarget(tx.QueryRow(ctx,
		`SELECT `+targetColumns+` FROM weekly_targets WHERE user_id = $1 AND week_start = $2 FOR UPDATE`,
		t.UserID, t.WeekStart))

	var created bool
	switch {
	case errors.Is(err, domain.ErrNotFound):
		created = true
		t.CreatedAt = now
		t.UpdatedAt = now
		err = tx.QueryRow(ctx, `
			INSERT INTO weekly_targets (user_id, week_start, week_end, target_amount, achieved_amount, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING id`,
			t.UserID, t.WeekStart, t.WeekEnd, t.TargetAmount, t.AchievedAmount, now,
		).Scan(&t.ID)
		if err != nil {
			return false, err
		}

	case err != nil:
		return false, err

	default:
		t.ID = existing.ID
		t.AchievedAmount = existing.AchievedAmount
		t.CreatedAt = existing.CreatedAt
		t.UpdatedAt = now
		_, err = tx.Exec(ctx, `
			UPDATE weekly_targets SET week_end = $3, target_amount = $4, updated_at = $5
			WHERE user_id = $1 AND week_start = $2`,
			t.UserID, t.WeekStart, t.WeekEnd, t.TargetAmount, now)
		if err != nil {
			return false, err
		}
	}

	return created, tx.Commit(ctx)
}

// UpdateAchieved sets the achieved amount, returning both images so the
// caller can detect the target crossing. The read runs under the row lock so
// concurrent updates cannot both observe the pre-crossing value.
func (r *targetRepo) UpdateAchieved(ctx context.Context, userID int64, weekStart time.Time, achieved float64) (*domain.WeeklyTarget, *domain.WeeklyTarget, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	before, err := scanTarget(tx.QueryRow(ctx,
		`SELECT `+targetColumns+` FROM weekly_targets WHERE user_id = $1 AND week_start = $2 FOR UPDATE`,
		userID, weekStart))
	if err != nil {
		return nil, nil, err
	}

	after := *before
	after.AchievedAmount = achieved
	after.UpdatedAt = time.Now()

	_, err = tx.Exec(ctx,
		`UPDATE weekly_targets SET achieved_amount = $3, updated_at = $4 WHERE user_id = $1 AND week_start = $2`,
		userID, weekStart, achieved, after.UpdatedAt)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return before, &after, nil
}
