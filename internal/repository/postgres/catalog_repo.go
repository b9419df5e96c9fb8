package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-bidtrack-backend/internal/domain"
)

type catalogRepo struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates the read-only lookup repository over the
// plain record-keeping tables (platforms, users, profiles, developers).
func NewCatalogRepository(db *pgxpool.Pool) domain.CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) ListPlatforms(ctx context.Context) ([]domain.Platform, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, connect_rate_usd, connect_rate_pkr FROM platforms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var platforms []domain.Platform
	for rows.Next() {
		var p domain.Platform
		if err := rows.Scan(&p.ID, &p.Name, &p.ConnectRateUSD, &p.ConnectRatePKR); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

func (r *catalogRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, role FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *catalogRepo) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, name FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *catalogRepo) GetProfileByName(ctx context.Context, name string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.QueryRow(ctx, `SELECT id, user_id, name FROM profiles WHERE name = $1`, name).
		Scan(&p.ID, &p.UserID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepo) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `SELECT id, name, role FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
