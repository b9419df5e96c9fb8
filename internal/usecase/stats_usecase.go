package usecase

import (
	"context"
	"math"
	"strconv"

	"golang.org/x/sync/errgroup"

	"go-bidtrack-backend/internal/domain"
	"go-bidtrack-backend/pkg/apperror"
)

type statsUsecase struct {
	statsRepo   domain.StatsRepository
	catalogRepo domain.CatalogRepository
}

// NewStatsUsecase creates a new aggregation usecase
func NewStatsUsecase(statsRepo domain.StatsRepository, catalogRepo domain.CatalogRepository) domain.StatsUsecase {
	return &statsUsecase{statsRepo: statsRepo, catalogRepo: catalogRepo}
}

// ComputeStats reduces the matching application and hire records into nested
// cost, conversion and target-progress breakdowns. Pure read.
//
// The per-dimension queries run concurrently and are not wrapped in a shared
// transaction: under heavy concurrent writes the sub-results may come from
// slightly different instants. That window is accepted; callers needing a
// strict cross-query snapshot must arrange one externally. Cancelling ctx
// abandons the in-flight sub-queries and discards partial results.
func (uc *statsUsecase) ComputeStats(ctx context.Context, f domain.StatsFilter) (*domain.StatsSnapshot, error) {
	var (
		platRows, userRows, profRows []domain.StatsRow
		targets                      []domain.WeeklyTarget
		platforms                    []domain.Platform
		users                        []domain.User
		profiles                     []domain.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { platRows, err = uc.statsRepo.GroupByPlatform(gctx, f); return })
	g.Go(func() (err error) { userRows, err = uc.statsRepo.GroupByUser(gctx, f); return })
	g.Go(func() (err error) { profRows, err = uc.statsRepo.GroupByProfile(gctx, f); return })
	g.Go(func() (err error) { targets, err = uc.statsRepo.TargetsInRange(gctx, f.UserIDs, f.Range); return })
	g.Go(func() (err error) { platforms, err = uc.catalogRepo.ListPlatforms(gctx); return })
	g.Go(func() (err error) { users, err = uc.catalogRepo.ListUsers(gctx); return })
	g.Go(func() (err error) { profiles, err = uc.catalogRepo.ListProfiles(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal(err)
	}

	rates := make(map[int64]domain.Platform, len(platforms))
	for _, p := range platforms {
		rates[p.ID] = p
	}

	snap := &domain.StatsSnapshot{
		ByPlatform: zeroFillPlatforms(platforms, f.PlatformIDs),
		ByUser:     zeroFillUsers(users, f.UserIDs),
		ByProfile:  zeroFillProfiles(profiles, f.ProfileID),
	}

	// Totals come from the platform grouping, which partitions every matching
	// record exactly once (records without a platform land in the key-0
	// bucket). Summing any dimension therefore reproduces the aggregate.
	for _, row := range platRows {
		snap.Totals.Applications += row.Applications
		snap.Totals.Connects += row.Connects
		snap.Totals.Replied += row.Replied
		snap.Totals.Interviewed += row.Interviewed
		snap.Totals.NotHired += row.NotHired
		snap.Totals.Hired += row.Hired
		snap.Totals.HireBudget += row.HireBudget
		if rate, ok := rates[row.Key]; ok {
			snap.Totals.CostUSD += float64(row.Connects) * rate.ConnectRateUSD
			snap.Totals.CostPKR += float64(row.Connects) * rate.ConnectRatePKR
		}
	}
	snap.Totals.CostUSD = round2(snap.Totals.CostUSD)
	snap.Totals.CostPKR = round2(snap.Totals.CostPKR)

	foldRows(snap.ByPlatform, platRows, rates, platformName(platforms))
	foldRows(snap.ByUser, userRows, rates, userName(users))
	foldRows(snap.ByProfile, profRows, rates, profileName(profiles))

	snap.Targets = foldTargets(targets, scopedUserIDs(users, f.UserIDs))

	return snap, nil
}

func zeroFillPlatforms(platforms []domain.Platform, filter []int64) map[int64]domain.StatsBucket {
	keep := idSet(filter)
	out := make(map[int64]domain.StatsBucket)
	for _, p := range platforms {
		if keep != nil && !keep[p.ID] {
			continue
		}
		out[p.ID] = domain.StatsBucket{Name: p.Name}
	}
	return out
}

func zeroFillUsers(users []domain.User, filter []int64) map[int64]domain.StatsBucket {
	keep := idSet(filter)
	out := make(map[int64]domain.StatsBucket)
	for _, u := range users {
		if keep != nil && !keep[u.ID] {
			continue
		}
		out[u.ID] = domain.StatsBucket{Name: u.Name}
	}
	return out
}

func zeroFillProfiles(profiles []domain.Profile, filter *int64) map[int64]domain.StatsBucket {
	out := make(map[int64]domain.StatsBucket)
	for _, p := range profiles {
		if filter != nil && p.ID != *filter {
			continue
		}
		out[p.ID] = domain.StatsBucket{Name: p.Name}
	}
	return out
}

func idSet(ids []int64) map[int64]bool {
	if len(ids) == 0 {
		return nil
	}
	s := make(map[int64]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// foldRows accumulates grouped rows into their dimension buckets. Cost is
// attributed per row via the platform rate so user and profile buckets price
// their connects correctly across platforms; it accumulates raw and is
// rounded once after the fold so per-row rounding error cannot compound.
func foldRows(buckets map[int64]domain.StatsBucket, rows []domain.StatsRow, rates map[int64]domain.Platform, nameOf func(int64) string) {
	for _, row := range rows {
		b, ok := buckets[row.Key]
		if !ok {
			b = domain.StatsBucket{Name: nameOf(row.Key)}
		}
		b.Applications += row.Applications
		b.Connects += row.Connects
		b.Replied += row.Replied
		b.Interviewed += row.Interviewed
		b.NotHired += row.NotHired
		b.Hired += row.Hired
		b.HireBudget += row.HireBudget
		if row.PlatformID != nil {
			if rate, ok := rates[*row.PlatformID]; ok {
				b.CostUSD += float64(row.Connects) * rate.ConnectRateUSD
			}
		}
		buckets[row.Key] = b
	}
	for key, b := range buckets {
		b.CostUSD = round2(b.CostUSD)
		buckets[key] = b
	}
}

func platformName(platforms []domain.Platform) func(int64) string {
	names := make(map[int64]string, len(platforms))
	for _, p := range platforms {
		names[p.ID] = p.Name
	}
	return func(id int64) string {
		if id == 0 {
			return "unassigned"
		}
		if n, ok := names[id]; ok {
			return n
		}
		return strconv.FormatInt(id, 10)
	}
}

func userName(users []domain.User) func(int64) string {
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return func(id int64) string {
		if n, ok := names[id]; ok {
			return n
		}
		return strconv.FormatInt(id, 10)
	}
}

func profileName(profiles []domain.Profile) func(int64) string {
	names := make(map[int64]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.Name
	}
	return func(id int64) string {
		if n, ok := names[id]; ok {
			return n
		}
		return strconv.FormatInt(id, 10)
	}
}

// foldTargets sums the overlapping weekly targets in aggregate and per user.
// Remaining is floored at zero at reporting time; the stored amounts stay
// unclamped. Percent is 0 for a zero target.
func foldTargets(targets []domain.WeeklyTarget, scope []int64) domain.TargetProgress {
	progress := domain.TargetProgress{PerUser: make(map[int64]domain.TargetLine)}
	for _, id := range scope {
		progress.PerUser[id] = domain.TargetLine{}
	}

	for _, t := range targets {
		line := progress.PerUser[t.UserID]
		line.Target += t.TargetAmount
		line.Achieved += t.AchievedAmount
		progress.PerUser[t.UserID] = line

		progress.Target += t.TargetAmount
		progress.Achieved += t.AchievedAmount
	}

	for id, line := range progress.PerUser {
		line.Remaining = remainingOf(line.Target, line.Achieved)
		line.Percent = percentOf(line.Achieved, line.Target)
		progress.PerUser[id] = line
	}
	progress.Remaining = remainingOf(progress.Target, progress.Achieved)
	progress.Percent = percentOf(progress.Achieved, progress.Target)

	return progress
}

func scopedUserIDs(users []domain.User, filter []int64) []int64 {
	if len(filter) > 0 {
		return filter
	}
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func remainingOf(target, achieved float64) float64 {
	r := round2(target - achieved)
	if r < 0 {
		return 0
	}
	return r
}

func percentOf(achieved, target float64) float64 {
	if target == 0 {
		return 0
	}
	return round2(achieved / target * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
