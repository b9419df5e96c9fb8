package domain

import "context"

// Platform is an external marketplace jobs are sourced from. Each carries a
// per-connect cost in both reporting currencies.
type Platform struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	ConnectRateUSD float64 `json:"connect_rate_usd"`
	ConnectRatePKR float64 `json:"connect_rate_pkr"`
}

// Profile is a named identity a user applies under.
type Profile struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// Developer is an assignable engineer for hired jobs.
type Developer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User is a bidder or admin. Authentication lives outside this service; only
// identity and role are needed here.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"` // bidder | admin
}

// CatalogRepository is the read-only lookup surface over the plain
// record-keeping entities. Their CRUD lives elsewhere; aggregation and hire
// resolution only ever read them.
type CatalogRepository interface {
	ListPlatforms(ctx context.Context) ([]Platform, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	GetProfileByName(ctx context.Context, name string) (*Profile, error)
	GetUser(ctx context.Context, id int64) (*User, error)
}
