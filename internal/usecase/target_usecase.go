package usecase

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"go-bidtrack-backend/internal/domain"
	"go-bidtrack-backend/pkg/apperror"
	"go-bidtrack-backend/pkg/validation"
)

type targetUsecase struct {
	targetRepo  domain.TargetRepository
	catalogRepo domain.CatalogRepository
	notifier    domain.Notifier
	validate    *validator.Validate
}

// NewTargetUsecase creates a new weekly target usecase
func NewTargetUsecase(
	targetRepo domain.TargetRepository,
	catalogRepo domain.CatalogRepository,
	notifier domain.Notifier,
	validate *validator.Validate,
) domain.TargetUsecase {
	return &targetUsecase{
		targetRepo:  targetRepo,
		catalogRepo: catalogRepo,
		notifier:    notifier,
		validate:    validate,
	}
}

// SetTarget creates the week's target on first call and updates the amount
// on later ones, keyed by (user, week start).
func (uc *targetUsecase) SetTarget(ctx context.Context, in domain.SetTargetInput) (*domain.WeeklyTarget, error) {
	if _, err := actorOrFail(ctx); err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.Format(err))
	}
	if !in.WeekEnd.After(in.WeekStart) {
		return nil, apperror.BadRequest("week_end must be after week_start")
	}

	if _, err := uc.catalogRepo.GetUser(ctx, in.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}

	target := &domain.WeeklyTarget{
		UserID:       in.UserID,
		WeekStart:    in.WeekStart,
		WeekEnd:      in.WeekEnd,
		TargetAmount: in.TargetAmount,
	}

	created, err := uc.targetRepo.Upsert(ctx, target)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	kind := domain.EventTargetUpdated
	if created {
		kind = domain.EventTargetSet
	}
	uc.notifier.Dispatch(domain.TargetEvent{
		To:             domain.ToUser(target.UserID),
		Event:          kind,
		UserID:         target.UserID,
		WeekStart:      target.WeekStart,
		TargetAmount:   target.TargetAmount,
		AchievedAmount: target.AchievedAmount,
	})

	return target, nil
}

// RecordAchieved updates the achieved amount for the week. The
// target-achieved event fires only on the crossing where the achieved amount
// goes from below target to at-or-above target; updates that stay above do
// not re-fire.
func (uc *targetUsecase) RecordAchieved(ctx context.Context, in domain.RecordAchievedInput) (*domain.WeeklyTarget, error) {
	if _, err := actorOrFail(ctx); err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.Format(err))
	}

	before, after, err := uc.targetRepo.UpdateAchieved(ctx, in.UserID, in.WeekStart, in.AchievedAmount)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("No target set for this week")
		}
		return nil, apperror.Internal(err)
	}

	crossed := before.TargetAmount > 0 &&
		before.AchievedAmount < before.TargetAmount &&
		after.AchievedAmount >= after.TargetAmount
	if crossed {
		uc.notifier.Dispatch(domain.TargetEvent{
			To:             domain.ToUser(after.UserID),
			Event:          domain.EventTargetAchieved,
			UserID:         after.UserID,
			WeekStart:      after.WeekStart,
			TargetAmount:   after.TargetAmount,
			AchievedAmount: after.AchievedAmount,
		})
	}

	return after, nil
}
