package usecase_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"go-bidtrack-backend/internal/domain"
	"go-bidtrack-backend/internal/usecase"
)

type fakeTargetRepo struct {
	mu      sync.Mutex
	nextID  int64
	targets map[string]*domain.WeeklyTarget
}

func newFakeTargetRepo() *fakeTargetRepo {
	return &fakeTargetRepo{targets: make(map[string]*domain.WeeklyTarget)}
}

func weekKey(userID int64, weekStart time.Time) string {
	return fmt.Sprintf("%d|%d", userID, weekStart.Unix())
}

func (r *fakeTargetRepo) Upsert(ctx context.Context, t *domain.WeeklyTarget) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := weekKey(t.UserID, t.WeekStart)
	now := time.Now()
	if existing, ok := r.targets[key]; ok {
		t.ID = existing.ID
		t.AchievedAmount = existing.AchievedAmount
		t.CreatedAt = existing.CreatedAt
		t.UpdatedAt = now
		cp := *t
		r.targets[key] = &cp
		return false, nil
	}
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	r.targets[key] = &cp
	return true, nil
}

func (r *fakeTargetRepo) GetByWeek(ctx context.Context, userID int64, weekStart time.Time) (*domain.WeeklyTarget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.targets[weekKey(userID, weekStart)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTargetRepo) UpdateAchieved(ctx context.Context, userID int64, weekStart time.Time, achieved float64) (*domain.WeeklyTarget, *domain.WeeklyTarget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := weekKey(userID, weekStart)
	cur, ok := r.targets[key]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	before := *cur
	after := *cur
	after.AchievedAmount = achieved
	after.UpdatedAt = time.Now()
	r.targets[key] = &after
	cp := after
	return &before, &cp, nil
}

func newTargetUC(repo *fakeTargetRepo, catalog *MockCatalogRepo, notifier *recordingNotifier) domain.TargetUsecase {
	return usecase.NewTargetUsecase(repo, catalog, notifier, validator.New())
}

var (
	weekStart = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	weekEnd   = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
)

func TestSetTarget(t *testing.T) {
	t.Run("Should create then update, with matching event kinds", func(t *testing.T) {
		catalog := new(MockCatalogRepo)
		catalog.On("GetUser", mock.Anything, int64(7)).Return(&domain.User{ID: 7, Name: "Hamza"}, nil)
		notifier := &recordingNotifier{}
		uc := newTargetUC(newFakeTargetRepo(), catalog, notifier)

		first, err := uc.SetTarget(authedCtx(1), domain.SetTargetInput{
			UserID: 7, WeekStart: weekStart, WeekEnd: weekEnd, TargetAmount: 500,
		})
		assert.NoError(t, err)
		assert.Equal(t, float64(500), first.TargetAmount)

		second, err := uc.SetTarget(authedCtx(1), domain.SetTargetInput{
			UserID: 7, WeekStart: weekStart, WeekEnd: weekEnd, TargetAmount: 750,
		})
		assert.NoError(t, err)
		assert.Equal(t, float64(750), second.TargetAmount)
		assert.Equal(t, first.ID, second.ID)

		assert.Equal(t, []domain.EventKind{domain.EventTargetSet, domain.EventTargetUpdated}, notifier.kinds())
	})

	t.Run("Should keep the achieved amount across target updates", func(t *testing.T) {
		catalog := new(MockCatalogRepo)
		catalog.On("GetUser", mock.Anything, int64(7)).Return(&domain.User{ID: 7}, nil)
		repo := newFakeTargetRepo()
		uc := newTargetUC(repo, catalog, &recordingNotifier{})

		_, err := uc.SetTarget(authedCtx(1), domain.SetTargetInput{UserID: 7, WeekStart: weekStart, WeekEnd: weekEnd, TargetAmount: 500})
		assert.NoError(t, err)
		_, _, err = repo.UpdateAchieved(context.Background(), 7, weekStart, 200)
		assert.NoError(t, err)

		updated, err := uc.SetTarget(authedCtx(1), domain.SetTargetInput{UserID: 7, WeekStart: weekStart, WeekEnd: weekEnd, TargetAmount: 800})
		assert.NoError(t, err)
		assert.Equal(t, float64(200), updated.AchievedAmount)
	})

	t.Run("Should return 404 for an unknown user", func(t *testing.T) {
		catalog := new(MockCatalogRepo)
		catalog.On("GetUser", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)
		uc := newTargetUC(newFakeTargetRepo(), catalog, &recordingNotifier{})

		_, err := uc.SetTarget(authedCtx(1), domain.SetTargetInput{UserID: 99, WeekStart: weekStart, WeekEnd: weekEnd, TargetAmount: 500})
		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httpCode(t, err))
	})

	t.Run("Should reject an inverted week window", func(t *testing.T) {
		uc := newTargetUC(newFakeTargetRepo(), new(MockCatalogRepo), &recordingNotifier{})

		_, err := uc.SetTarget(authedCtx(1), domain.SetTargetInput{UserID: 7, WeekStart: weekEnd, WeekEnd: weekStart, TargetAmount: 500})
		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
	})
}

func TestRecordAchieved(t *testing.T) {
	seed := func(t *testing.T, targetAmount float64) (*recordingNotifier, domain.TargetUsecase) {
		t.Helper()
		catalog := new(MockCatalogRepo)
		catalog.On("GetUser", mock.Anything, int64(7)).Return(&domain.User{ID: 7}, nil)
		notifier := &recordingNotifier{}
		uc := newTargetUC(newFakeTargetRepo(), catalog, notifier)
		_, err := uc.SetTarget(authedCtx(1), domain.SetTargetInput{
			UserID: 7, WeekStart: weekStart, WeekEnd: weekEnd, TargetAmount: targetAmount,
		})
		assert.NoError(t, err)
		notifier.events = nil
		return notifier, uc
	}

	record := func(t *testing.T, uc domain.TargetUsecase, amount float64) *domain.WeeklyTarget {
		t.Helper()
		target, err := uc.RecordAchieved(authedCtx(1), domain.RecordAchievedInput{
			UserID: 7, WeekStart: weekStart, AchievedAmount: amount,
		})
		assert.NoError(t, err)
		return target
	}

	t.Run("Should fire target-achieved exactly once across the crossing", func(t *testing.T) {
		notifier, uc := seed(t, 500)

		record(t, uc, 100)
		record(t, uc, 300)
		crossed := record(t, uc, 500)
		record(t, uc, 650)

		assert.Equal(t, float64(500), crossed.AchievedAmount)
		achieved := 0
		for _, kind := range notifier.kinds() {
			if kind == domain.EventTargetAchieved {
				achieved++
			}
		}
		assert.Equal(t, 1, achieved)
	})

	t.Run("Should re-fire if the amount drops below target and crosses again", func(t *testing.T) {
		notifier, uc := seed(t, 500)

		record(t, uc, 500)
		record(t, uc, 400)
		record(t, uc, 600)

		achieved := 0
		for _, kind := range notifier.kinds() {
			if kind == domain.EventTargetAchieved {
				achieved++
			}
		}
		assert.Equal(t, 2, achieved)
	})

	t.Run("Should never fire for a zero target", func(t *testing.T) {
		notifier, uc := seed(t, 0)

		record(t, uc, 100)
		assert.NotContains(t, notifier.kinds(), domain.EventTargetAchieved)
	})

	t.Run("Should return 404 when no target exists for the week", func(t *testing.T) {
		uc := newTargetUC(newFakeTargetRepo(), new(MockCatalogRepo), &recordingNotifier{})

		_, err := uc.RecordAchieved(authedCtx(1), domain.RecordAchievedInput{
			UserID: 7, WeekStart: weekStart, AchievedAmount: 100,
		})
		assert.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httpCode(t, err))
	})
}
