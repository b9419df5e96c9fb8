package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-bidtrack-backend/internal/domain"
)

type statsRepo struct {
	db *pgxpool.Pool
}

// NewStatsRepository creates the read-only grouped-query repository behind
// the aggregation engine.
func NewStatsRepository(db *pgxpool.Pool) domain.StatsRepository {
	return &statsRepo{db: db}
}

// statsWhere renders the shared filter. The date range is a union-of-events
// match: a record qualifies when any of its applied/reply/interview
// timestamps falls inside the window.
func statsWhere(f domain.StatsFilter) (string, []any) {
	var conds []string
	var args []any

	if len(f.PlatformIDs) > 0 {
		args = append(args, f.PlatformIDs)
		conds = append(conds, fmt.Sprintf("a.platform_id = ANY($%d)", len(args)))
	}
	if f.ProfileID != nil {
		args = append(args, *f.ProfileID)
		conds = append(conds, fmt.Sprintf("a.profile_id = $%d", len(args)))
	}
	if len(f.UserIDs) > 0 {
		args = append(args, f.UserIDs)
		conds = append(conds, fmt.Sprintf("a.user_id = ANY($%d)", len(args)))
	}
	if f.Range != nil {
		r := f.Range.Normalize()
		args = append(args, r.Start, r.End)
		s, e := len(args)-1, len(args)
		conds = append(conds, fmt.Sprintf(
			"(a.applied_at BETWEEN $%[1]d AND $%[2]d OR a.reply_date BETWEEN $%[1]d AND $%[2]d OR a.interview_date BETWEEN $%[1]d AND $%[2]d)", s, e))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// groupedQuery aggregates per (dimension key, platform) so connect costs can
// be attributed to their platform whatever the dimension is. Stage-reached
// counts use the stage-specific timestamps, not the current stage value.
func groupedQuery(keyExpr, where string) string {
	return fmt.Sprintf(`
		SELECT
			%s AS key,
			COALESCE(a.platform_id, 0) AS platform_id,
			COUNT(*) AS applications,
			COALESCE(SUM(a.connects), 0) AS connects,
			COUNT(a.reply_date) AS replied,
			COUNT(a.interview_date) AS interviewed,
			COUNT(a.rejected_date) AS not_hired,
			COUNT(a.hired_date) AS hired,
			COALESCE(SUM(h.budget_amount), 0) AS hire_budget
		FROM applications a
		LEFT JOIN hires h ON h.application_id = a.id
		%s
		GROUP BY %s, COALESCE(a.platform_id, 0)`, keyExpr, where, keyExpr)
}

func (r *statsRepo) grouped(ctx context.Context, keyExpr string, f domain.StatsFilter) ([]domain.StatsRow, error) {
	where, args := statsWhere(f)
	rows, err := r.db.Query(ctx, groupedQuery(keyExpr, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StatsRow
	for rows.Next() {
		var row domain.StatsRow
		var platformID int64
		if err := rows.Scan(
			&row.Key, &platformID,
			&row.Applications, &row.Connects,
			&row.Replied, &row.Interviewed, &row.NotHired, &row.Hired,
			&row.HireBudget,
		); err != nil {
			return nil, err
		}
		if platformID != 0 {
			row.PlatformID = &platformID
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *statsRepo) GroupByPlatform(ctx context.Context, f domain.StatsFilter) ([]domain.StatsRow, error) {
	return r.grouped(ctx, "COALESCE(a.platform_id, 0)", f)
}

func (r *statsRepo) GroupByUser(ctx context.Context, f domain.StatsFilter) ([]domain.StatsRow, error) {
	return r.grouped(ctx, "a.user_id", f)
}

func (r *statsRepo) GroupByProfile(ctx context.Context, f domain.StatsFilter) ([]domain.StatsRow, error) {
	return r.grouped(ctx, "a.profile_id", f)
}

// TargetsInRange returns every weekly target whose week fully or partially
// overlaps the window: week_start <= range_end AND week_end >= range_start.
func (r *statsRepo) TargetsInRange(ctx context.Context, userIDs []int64, dr *domain.DateRange) ([]domain.WeeklyTarget, error) {
	var conds []string
	var args []any

	if len(userIDs) > 0 {
		args = append(args, userIDs)
		conds = append(conds, fmt.Sprintf("user_id = ANY($%d)", len(args)))
	}
	if dr != nil {
		n := dr.Normalize()
		args = append(args, n.End, n.Start)
		conds = append(conds, fmt.Sprintf("week_start <= $%d", len(args)-1))
		conds = append(conds, fmt.Sprintf("week_end >= $%d", len(args)))
	}

	query := `SELECT ` + targetColumns + ` FROM weekly_targets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY user_id, week_start"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []domain.WeeklyTarget
	for rows.Next() {
		t, err := scanTargetRow(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, *t)
	}
	return targets, rows.Err()
}

func scanTargetRow(rows pgx.Rows) (*domain.WeeklyTarget, error) {
	var t domain.WeeklyTarget
	err := rows.Scan(&t.ID, &t.UserID, &t.WeekStart, &t.WeekEnd, &t.TargetAmount, &t.AchievedAmount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
