package domain

import (
	"context"
	"time"
)

// WeeklyTarget is a per-user monetary goal for one calendar week. Both
// amounts stay mutable until the week closes; the row is keyed by
// (user_id, week_start).
type WeeklyTarget struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	WeekStart      time.Time `json:"week_start"`
	WeekEnd        time.Time `json:"week_end"`
	TargetAmount   float64   `json:"target_amount"`
	AchievedAmount float64   `json:"achieved_amount"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TargetRepository defines data access for weekly targets.
//
// UpdateAchieved re-reads the row under lock and returns both images so the
// caller can detect the below-target to at-or-above-target crossing.
type TargetRepository interface {
	Upsert(ctx context.Context, t *WeeklyTarget) (created bool, err error)
	GetByWeek(ctx context.Context, userID int64, weekStart time.Time) (*WeeklyTarget, error)
	UpdateAchieved(ctx context.Context, userID int64, weekStart time.Time, achieved float64) (before, after *WeeklyTarget, err error)
}

// SetTargetInput creates or updates the target amount for a week.
type SetTargetInput struct {
	UserID       int64     `json:"user_id" validate:"required"`
	WeekStart    time.Time `json:"week_start" validate:"required"`
	WeekEnd      time.Time `json:"week_end" validate:"required"`
	TargetAmount float64   `json:"target_amount" validate:"gte=0"`
}

// RecordAchievedInput updates the achieved amount for a week.
type RecordAchievedInput struct {
	UserID         int64     `json:"user_id" validate:"required"`
	WeekStart      time.Time `json:"week_start" validate:"required"`
	AchievedAmount float64   `json:"achieved_amount" validate:"gte=0"`
}

// TargetUsecase defines business logic for weekly targets.
type TargetUsecase interface {
	SetTarget(ctx context.Context, in SetTargetInput) (*WeeklyTarget, error)
	RecordAchieved(ctx context.Context, in RecordAchievedInput) (*WeeklyTarget, error)
}
