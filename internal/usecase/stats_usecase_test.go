package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"go-bidtrack-backend/internal/domain"
	"go-bidtrack-backend/internal/usecase"
)

type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) GroupByPlatform(ctx context.Context, f domain.StatsFilter) ([]domain.StatsRow, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatsRow), args.Error(1)
}

func (m *MockStatsRepo) GroupByUser(ctx context.Context, f domain.StatsFilter) ([]domain.StatsRow, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatsRow), args.Error(1)
}

func (m *MockStatsRepo) GroupByProfile(ctx context.Context, f domain.StatsFilter) ([]domain.StatsRow, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatsRow), args.Error(1)
}

func (m *MockStatsRepo) TargetsInRange(ctx context.Context, userIDs []int64, r *domain.DateRange) ([]domain.WeeklyTarget, error) {
	args := m.Called(ctx, userIDs, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WeeklyTarget), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

// Two platforms, two users, two profiles; user 7 bid twice on Upwork with 4
// connects total, user 8 bid once with no platform recorded.
func statsFixture() (*MockStatsRepo, *MockCatalogRepo) {
	statsRepo := new(MockStatsRepo)
	statsRepo.On("GroupByPlatform", mock.Anything, mock.Anything).Return([]domain.StatsRow{
		{Key: 1, PlatformID: ptr(int64(1)), Applications: 2, Connects: 4, Replied: 1, Interviewed: 1, Hired: 1, HireBudget: 1500},
		{Key: 0, PlatformID: nil, Applications: 1},
	}, nil)
	statsRepo.On("GroupByUser", mock.Anything, mock.Anything).Return([]domain.StatsRow{
		{Key: 7, PlatformID: ptr(int64(1)), Applications: 2, Connects: 4, Replied: 1, Interviewed: 1, Hired: 1, HireBudget: 1500},
		{Key: 8, PlatformID: nil, Applications: 1},
	}, nil)
	statsRepo.On("GroupByProfile", mock.Anything, mock.Anything).Return([]domain.StatsRow{
		{Key: 2, PlatformID: ptr(int64(1)), Applications: 2, Connects: 4, Replied: 1, Interviewed: 1, Hired: 1, HireBudget: 1500},
		{Key: 3, PlatformID: nil, Applications: 1},
	}, nil)
	statsRepo.On("TargetsInRange", mock.Anything, mock.Anything, mock.Anything).Return([]domain.WeeklyTarget{
		{UserID: 7, TargetAmount: 500, AchievedAmount: 250},
		{UserID: 8, TargetAmount: 0, AchievedAmount: 100},
	}, nil)

	catalog := new(MockCatalogRepo)
	catalog.On("ListPlatforms", mock.Anything).Return([]domain.Platform{
		{ID: 1, Name: "Upwork", ConnectRateUSD: 0.15, ConnectRatePKR: 42},
		{ID: 2, Name: "Freelancer", ConnectRateUSD: 0.10, ConnectRatePKR: 28},
	}, nil)
	catalog.On("ListUsers", mock.Anything).Return([]domain.User{
		{ID: 7, Name: "Hamza", Role: "bidder"},
		{ID: 8, Name: "Sara", Role: "bidder"},
	}, nil)
	catalog.On("ListProfiles", mock.Anything).Return([]domain.Profile{
		{ID: 2, UserID: 7, Name: "Acme Dev Studio"},
		{ID: 3, UserID: 8, Name: "Solo"},
	}, nil)
	return statsRepo, catalog
}

func TestComputeStats(t *testing.T) {
	t.Run("Should price connects through the platform rates in both currencies", func(t *testing.T) {
		statsRepo, catalog := statsFixture()
		uc := usecase.NewStatsUsecase(statsRepo, catalog)

		snap, err := uc.ComputeStats(context.Background(), domain.StatsFilter{})
		assert.NoError(t, err)

		assert.Equal(t, 0.60, snap.ByPlatform[1].CostUSD)
		assert.Equal(t, 0.60, snap.ByUser[7].CostUSD)
		assert.Equal(t, 0.60, snap.ByProfile[2].CostUSD)
		assert.Equal(t, 0.60, snap.Totals.CostUSD)
		assert.Equal(t, 168.0, snap.Totals.CostPKR)
	})

	t.Run("Should sum each dimension to the aggregate totals", func(t *testing.T) {
		statsRepo, catalog := statsFixture()
		uc := usecase.NewStatsUsecase(statsRepo, catalog)

		snap, err := uc.ComputeStats(context.Background(), domain.StatsFilter{})
		assert.NoError(t, err)
		assert.Equal(t, int64(3), snap.Totals.Applications)

		var byUser, byPlatform, byProfile int64
		for _, b := range snap.ByUser {
			byUser += b.Applications
		}
		for _, b := range snap.ByPlatform {
			byPlatform += b.Applications
		}
		for _, b := range snap.ByProfile {
			byProfile += b.Applications
		}
		assert.Equal(t, snap.Totals.Applications, byUser)
		assert.Equal(t, snap.Totals.Applications, byPlatform)
		assert.Equal(t, snap.Totals.Applications, byProfile)
	})

	t.Run("Should zero-fill every catalog entry and bucket unassigned platforms", func(t *testing.T) {
		statsRepo, catalog := statsFixture()
		uc := usecase.NewStatsUsecase(statsRepo, catalog)

		snap, err := uc.ComputeStats(context.Background(), domain.StatsFilter{})
		assert.NoError(t, err)

		idle, ok := snap.ByPlatform[2]
		assert.True(t, ok)
		assert.Equal(t, "Freelancer", idle.Name)
		assert.Zero(t, idle.Applications)

		unassigned, ok := snap.ByPlatform[0]
		assert.True(t, ok)
		assert.Equal(t, "unassigned", unassigned.Name)
		assert.Equal(t, int64(1), unassigned.Applications)
		assert.Zero(t, unassigned.CostUSD)
	})

	t.Run("Should report target progress in aggregate and per user", func(t *testing.T) {
		statsRepo, catalog := statsFixture()
		uc := usecase.NewStatsUsecase(statsRepo, catalog)

		snap, err := uc.ComputeStats(context.Background(), domain.StatsFilter{})
		assert.NoError(t, err)

		assert.Equal(t, 500.0, snap.Targets.Target)
		assert.Equal(t, 350.0, snap.Targets.Achieved)
		assert.Equal(t, 150.0, snap.Targets.Remaining)
		assert.Equal(t, 70.0, snap.Targets.Percent)

		hamza := snap.Targets.PerUser[7]
		assert.Equal(t, 50.0, hamza.Percent)
		assert.Equal(t, 250.0, hamza.Remaining)

		// Zero target reports 0%, not a division blowup; the overachieved
		// line floors remaining at zero instead of going negative.
		sara := snap.Targets.PerUser[8]
		assert.Equal(t, 0.0, sara.Percent)
		assert.Equal(t, 0.0, sara.Remaining)
	})

	t.Run("Should floor remaining at zero for overachieving weeks", func(t *testing.T) {
		statsRepo, catalog := statsFixture()
		statsRepo.ExpectedCalls = nil
		statsRepo.On("GroupByPlatform", mock.Anything, mock.Anything).Return([]domain.StatsRow{}, nil)
		statsRepo.On("GroupByUser", mock.Anything, mock.Anything).Return([]domain.StatsRow{}, nil)
		statsRepo.On("GroupByProfile", mock.Anything, mock.Anything).Return([]domain.StatsRow{}, nil)
		statsRepo.On("TargetsInRange", mock.Anything, mock.Anything, mock.Anything).Return([]domain.WeeklyTarget{
			{UserID: 7, TargetAmount: 100, AchievedAmount: 150},
		}, nil)
		uc := usecase.NewStatsUsecase(statsRepo, catalog)

		snap, err := uc.ComputeStats(context.Background(), domain.StatsFilter{})
		assert.NoError(t, err)
		assert.Equal(t, 0.0, snap.Targets.Remaining)
		assert.Equal(t, 0.0, snap.Targets.PerUser[7].Remaining)
		assert.Equal(t, 150.0, snap.Targets.PerUser[7].Achieved)
		assert.Equal(t, 150.0, snap.Targets.Percent)
	})

	t.Run("Should round bucket cost once, not per accumulated row", func(t *testing.T) {
		// One user across two platforms at $0.125/connect: per-row rounding
		// would report 0.13 + 0.13 = 0.26 instead of round2(0.25) = 0.25.
		statsRepo, catalog := statsFixture()
		statsRepo.ExpectedCalls = nil
		catalog.ExpectedCalls = nil
		statsRepo.On("GroupByPlatform", mock.Anything, mock.Anything).Return([]domain.StatsRow{
			{Key: 1, PlatformID: ptr(int64(1)), Applications: 1, Connects: 1},
			{Key: 2, PlatformID: ptr(int64(2)), Applications: 1, Connects: 1},
		}, nil)
		statsRepo.On("GroupByUser", mock.Anything, mock.Anything).Return([]domain.StatsRow{
			{Key: 7, PlatformID: ptr(int64(1)), Applications: 1, Connects: 1},
			{Key: 7, PlatformID: ptr(int64(2)), Applications: 1, Connects: 1},
		}, nil)
		statsRepo.On("GroupByProfile", mock.Anything, mock.Anything).Return([]domain.StatsRow{}, nil)
		statsRepo.On("TargetsInRange", mock.Anything, mock.Anything, mock.Anything).Return([]domain.WeeklyTarget{}, nil)
		catalog.On("ListPlatforms", mock.Anything).Return([]domain.Platform{
			{ID: 1, Name: "Upwork", ConnectRateUSD: 0.125},
			{ID: 2, Name: "Freelancer", ConnectRateUSD: 0.125},
		}, nil)
		catalog.On("ListUsers", mock.Anything).Return([]domain.User{{ID: 7, Name: "Hamza"}}, nil)
		catalog.On("ListProfiles", mock.Anything).Return([]domain.Profile{}, nil)
		uc := usecase.NewStatsUsecase(statsRepo, catalog)

		snap, err := uc.ComputeStats(context.Background(), domain.StatsFilter{})
		assert.NoError(t, err)
		assert.Equal(t, 0.25, snap.ByUser[7].CostUSD)
		assert.Equal(t, 0.25, snap.Totals.CostUSD)
	})

	t.Run("Should round percent to two decimals", func(t *testing.T) {
		statsRepo, catalog := statsFixture()
		statsRepo.ExpectedCalls = nil
		statsRepo.On("GroupByPlatform", mock.Anything, mock.Anything).Return([]domain.StatsRow{}, nil)
		statsRepo.On("GroupByUser", mock.Anything, mock.Anything).Return([]domain.StatsRow{}, nil)
		statsRepo.On("GroupByProfile", mock.Anything, mock.Anything).Return([]domain.StatsRow{}, nil)
		statsRepo.On("TargetsInRange", mock.Anything, mock.Anything, mock.Anything).Return([]domain.WeeklyTarget{
			{UserID: 7, TargetAmount: 300, AchievedAmount: 100},
		}, nil)
		uc := usecase.NewStatsUsecase(statsRepo, catalog)

		snap, err := uc.ComputeStats(context.Background(), domain.StatsFilter{})
		assert.NoError(t, err)
		assert.Equal(t, 33.33, snap.Targets.PerUser[7].Percent)
	})

	t.Run("Should be idempotent for the same inputs", func(t *testing.T) {
		statsRepo, catalog := statsFixture()
		uc := usecase.NewStatsUsecase(statsRepo, catalog)

		first, err := uc.ComputeStats(context.Background(), domain.StatsFilter{})
		assert.NoError(t, err)
		second, err := uc.ComputeStats(context.Background(), domain.StatsFilter{})
		assert.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Should fail when any sub-query fails", func(t *testing.T) {
		statsRepo, catalog := statsFixture()
		statsRepo.ExpectedCalls = nil
		statsRepo.On("GroupByPlatform", mock.Anything, mock.Anything).Return(nil, assert.AnError)
		statsRepo.On("GroupByUser", mock.Anything, mock.Anything).Return([]domain.StatsRow{}, nil)
		statsRepo.On("GroupByProfile", mock.Anything, mock.Anything).Return([]domain.StatsRow{}, nil)
		statsRepo.On("TargetsInRange", mock.Anything, mock.Anything, mock.Anything).Return([]domain.WeeklyTarget{}, nil)
		uc := usecase.NewStatsUsecase(statsRepo, catalog)

		_, err := uc.ComputeStats(context.Background(), domain.StatsFilter{})
		assert.Error(t, err)
	})
}

func TestDateRangeNormalize(t *testing.T) {
	r := domain.DateRange{
		Start: time.Date(2026, 3, 9, 14, 30, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC),
	}.Normalize()

	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC), r.End)
}
