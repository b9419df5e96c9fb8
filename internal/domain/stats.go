package domain

import (
	"context"
	"time"
)

// DateRange is an inclusive whole-day window. A record matches when ANY of
// its applied/reply/interview timestamps falls inside it (union-of-events,
// not intersection).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Normalize widens the range to [start 00:00:00, end 23:59:59] in UTC.
func (r DateRange) Normalize() DateRange {
	s := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 23, 59, 59, 0, time.UTC)
	return DateRange{Start: s, End: e}
}

// StatsFilter narrows an aggregation run. Zero values mean "all".
type StatsFilter struct {
	PlatformIDs []int64
	ProfileID   *int64
	UserIDs     []int64
	Range       *DateRange
}

// StatsRow is one grouped row from the store. Key is the dimension value
// (platform, user or profile id; 0 is the unassigned-platform bucket).
// PlatformID tags the row so connect costs can be attributed per platform
// even when the dimension is user or profile.
type StatsRow struct {
	Key          int64
	PlatformID   *int64
	Applications int64
	Connects     int64
	Replied      int64
	Interviewed  int64
	NotHired     int64
	Hired        int64
	HireBudget   float64
}

// StatsRepository issues the read-only grouped queries behind ComputeStats.
// The queries are independent and deliberately not wrapped in a shared
// transaction; see the usecase for the accepted consistency window.
type StatsRepository interface {
	GroupByPlatform(ctx context.Context, f StatsFilter) ([]StatsRow, error)
	GroupByUser(ctx context.Context, f StatsFilter) ([]StatsRow, error)
	GroupByProfile(ctx context.Context, f StatsFilter) ([]StatsRow, error)
	TargetsInRange(ctx context.Context, userIDs []int64, r *DateRange) ([]WeeklyTarget, error)
}

// StatsBucket is one dimension entry of the snapshot. Cost is reported in
// the primary currency only; the secondary currency appears on the totals.
type StatsBucket struct {
	Name         string  `json:"name"`
	Applications int64   `json:"applications"`
	Connects     int64   `json:"connects"`
	CostUSD      float64 `json:"cost_usd"`
	Replied      int64   `json:"replied"`
	Interviewed  int64   `json:"interviewed"`
	NotHired     int64   `json:"not_hired"`
	Hired        int64   `json:"hired"`
	HireBudget   float64 `json:"hire_budget"`
}

// StatsTotals is the aggregate across every matching record, with the grand
// cost in both currencies.
type StatsTotals struct {
	Applications int64   `json:"applications"`
	Connects     int64   `json:"connects"`
	CostUSD      float64 `json:"cost_usd"`
	CostPKR      float64 `json:"cost_pkr"`
	Replied      int64   `json:"replied"`
	Interviewed  int64   `json:"interviewed"`
	NotHired     int64   `json:"not_hired"`
	Hired        int64   `json:"hired"`
	HireBudget   float64 `json:"hire_budget"`
}

// TargetLine is weekly-target progress for one user or in aggregate.
// Remaining is floored at zero: overachieving weeks report 0, never a
// negative value, while the stored amounts stay unclamped.
type TargetLine struct {
	Target    float64 `json:"target"`
	Achieved  float64 `json:"achieved"`
	Remaining float64 `json:"remaining"`
	Percent   float64 `json:"percent"`
}

// TargetProgress is the weekly-target portion of the snapshot.
type TargetProgress struct {
	TargetLine
	PerUser map[int64]TargetLine `json:"per_user"`
}

// StatsSnapshot is the full nested aggregation result. Every known platform,
// user and profile has an entry in its breakdown map, zero-filled when no
// record matched.
type StatsSnapshot struct {
	Totals     StatsTotals           `json:"totals"`
	ByPlatform map[int64]StatsBucket `json:"by_platform"`
	ByUser     map[int64]StatsBucket `json:"by_user"`
	ByProfile  map[int64]StatsBucket `json:"by_profile"`
	Targets    TargetProgress        `json:"targets"`
}

// StatsUsecase computes analytics snapshots. Pure read, no side effects.
type StatsUsecase interface {
	ComputeStats(ctx context.Context, f StatsFilter) (*StatsSnapshot, error)
}
