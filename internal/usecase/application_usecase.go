package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"go-bidtrack-backend/internal/audit"
	"go-bidtrack-backend/internal/domain"
	"go-bidtrack-backend/pkg/apperror"
	"go-bidtrack-backend/pkg/logger"
	"go-bidtrack-backend/pkg/storage"
	"go-bidtrack-backend/pkg/validation"
)

const auditTrailLimit = 100

type applicationUsecase struct {
	appRepo     domain.ApplicationRepository
	auditRepo   domain.AuditRepository
	catalogRepo domain.CatalogRepository
	notifier    domain.Notifier
	attachments storage.AttachmentStore
	validate    *validator.Validate
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	auditRepo domain.AuditRepository,
	catalogRepo domain.CatalogRepository,
	notifier domain.Notifier,
	attachments storage.AttachmentStore,
	validate *validator.Validate,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		appRepo:     appRepo,
		auditRepo:   auditRepo,
		catalogRepo: catalogRepo,
		notifier:    notifier,
		attachments: attachments,
		validate:    validate,
	}
}

// auditFor builds the per-mutation audit entry; repositories run it inside
// the mutation transaction.
func auditFor(actorID int64) domain.AuditBuilder {
	return func(before, after *domain.Application) (*domain.AuditEntry, error) {
		return audit.NewEntry(actorID, before, after)
	}
}

func actorOrFail(ctx context.Context) (int64, error) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return 0, apperror.Unauthorized("User not authenticated")
	}
	return actor, nil
}

// Apply records a new bid. At most one application may exist per
// (user, job reference, profile) triple; duplicates are rejected before any
// write, and the unique index backstops the race.
func (uc *applicationUsecase) Apply(ctx context.Context, in domain.ApplyInput) (*domain.Application, error) {
	actor, err := actorOrFail(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.Format(err))
	}

	// Manually entered jobs have no marketplace reference; synthesize one so
	// the bid identity stays unique.
	if in.JobRef == "" {
		in.JobRef = "manual-" + uuid.NewString()
	}

	exists, err := uc.appRepo.ExistsBid(ctx, actor, in.JobRef, in.ProfileID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.Conflict("You have already applied to this job with this profile")
	}

	appliedAt := time.Now()
	if in.AppliedAt != nil {
		appliedAt = *in.AppliedAt
	}

	app := &domain.Application{
		JobRef:       in.JobRef,
		UserID:       actor,
		ProfileID:    in.ProfileID,
		PlatformID:   in.PlatformID,
		Title:        in.Title,
		Description:  in.Description,
		JobURL:       in.JobURL,
		Technologies: in.Technologies,
		Connects:     in.Connects,
		ProposalLink: in.ProposalLink,
		Attachments:  in.Attachments,
		AppliedAt:    appliedAt,
		Stage:        domain.StageApplied,
	}

	if err := uc.appRepo.Create(ctx, app, auditFor(actor)); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperror.Conflict("You have already applied to this job with this profile")
		}
		return nil, apperror.Internal(err)
	}

	uc.notifier.Dispatch(domain.JobAppliedEvent{
		To:            domain.ToRole(domain.RoleAdmin),
		ApplicationID: app.ID,
		BidderID:      actor,
		Title:         app.Title,
		Connects:      app.Connects,
	})

	return app, nil
}

// Transition moves an application to another stage. The stage set is flat:
// any member stage may be set from any other, only membership is enforced.
// Moving to hired goes through MarkHired instead, since it needs the hire
// companion record.
func (uc *applicationUsecase) Transition(ctx context.Context, id int64, in domain.TransitionInput) (*domain.Application, error) {
	actor, err := actorOrFail(ctx)
	if err != nil {
		return nil, err
	}
	if !domain.ValidStage(in.Stage) {
		return nil, apperror.BadRequest(fmt.Sprintf("Invalid stage %q. Must be one of: applied, replied, interview, hired, not-hired", in.Stage))
	}
	if in.Stage == domain.StageHired {
		return nil, apperror.BadRequest("Moving to hired requires hire details; use the hire operation")
	}

	occurredAt := time.Now()
	if in.OccurredAt != nil {
		occurredAt = *in.OccurredAt
	}

	var prevStage string
	updated, err := uc.appRepo.Mutate(ctx, id, func(a *domain.Application) error {
		prevStage = a.Stage
		a.Stage = in.Stage
		switch in.Stage {
		case domain.StageReplied:
			at := occurredAt
			a.ReplyDate = &at
			if in.Notes != nil {
				a.ReplyNotes = in.Notes
			}
		case domain.StageInterview:
			at := occurredAt
			a.InterviewDate = &at
			if in.Notes != nil {
				a.InterviewNotes = in.Notes
			}
		case domain.StageNotHired:
			at := occurredAt
			a.RejectedDate = &at
			if in.Notes != nil {
				a.RejectedNotes = in.Notes
			}
		}
		return nil
	}, auditFor(actor))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}

	if prevStage != updated.Stage {
		switch updated.Stage {
		case domain.StageReplied, domain.StageInterview, domain.StageNotHired:
			at := occurredAt
			uc.notifier.Dispatch(domain.StageChangedEvent{
				To:            domain.ToUser(updated.UserID),
				ApplicationID: updated.ID,
				Title:         updated.Title,
				Stage:         updated.Stage,
				OccurredAt:    &at,
			})
		}
	}

	return updated, nil
}

// MarkHired creates the hire companion record for an application resolved by
// its bid identity and stamps the hired stage. Idempotent-rejecting: a
// second hire attempt returns Conflict, it never overwrites.
func (uc *applicationUsecase) MarkHired(ctx context.Context, in domain.HireInput) (*domain.Application, error) {
	actor, err := actorOrFail(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(in); err != nil {
		return nil, apperror.BadRequest(validation.Format(err))
	}

	profile, err := uc.catalogRepo.GetProfileByName(ctx, in.ProfileName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, apperror.Internal(err)
	}

	app, err := uc.appRepo.GetByBid(ctx, in.BidderID, in.JobRef, profile.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}

	hire := &domain.HireRecord{
		ApplicationID: app.ID,
		BudgetType:    in.BudgetType,
		BudgetAmount:  in.BudgetAmount,
		ClientName:    in.ClientName,
		DeveloperID:   in.DeveloperID,
		HiredAt:       in.HiredAt,
		Notes:         in.Notes,
	}

	updated, err := uc.appRepo.MarkHired(ctx, app.ID, hire, auditFor(actor))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, apperror.Conflict("Application already has a hire record")
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}

	uc.notifier.Dispatch(domain.JobHiredEvent{
		To:            domain.ToUser(updated.UserID),
		ApplicationID: updated.ID,
		Title:         updated.Title,
		ClientName:    in.ClientName,
		BudgetAmount:  in.BudgetAmount,
		HiredAt:       in.HiredAt,
	})

	return updated, nil
}

// validatePatch rejects field values the create path would never accept,
// before anything is written.
func validatePatch(p domain.FieldPatch) error {
	if p.Connects != nil && *p.Connects < 0 {
		return apperror.BadRequest("Connects must be at least 0")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return apperror.BadRequest("Job Title is required")
	}
	if p.PlatformID != nil && *p.PlatformID <= 0 {
		return apperror.BadRequest("Platform is invalid")
	}
	return nil
}

// UpdateFields applies a partial edit restricted to the non-lifecycle
// fields. Attachment references removed by the patch are deleted from file
// storage after commit; deletion failures are logged, never fatal.
func (uc *applicationUsecase) UpdateFields(ctx context.Context, id int64, patch domain.FieldPatch) (*domain.Application, error) {
	actor, err := actorOrFail(ctx)
	if err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var removed []string
	updated, err := uc.appRepo.Mutate(ctx, id, func(a *domain.Application) error {
		removed = applyPatch(a, patch)
		return nil
	}, auditFor(actor))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}

	for _, ref := range removed {
		if uc.attachments == nil {
			break
		}
		if err := uc.attachments.Delete(ctx, ref); err != nil {
			logger.Log.Warn("orphaned attachment deletion failed", "application_id", id, "ref", ref, "error", err)
		}
	}

	return updated, nil
}

// applyPatch mutates only non-lifecycle fields and reports which attachment
// references were actually removed.
func applyPatch(a *domain.Application, p domain.FieldPatch) (removed []string) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.JobURL != nil {
		a.JobURL = *p.JobURL
	}
	if p.ProposalLink != nil {
		a.ProposalLink = *p.ProposalLink
	}
	if p.Technologies != nil {
		a.Technologies = append([]string(nil), (*p.Technologies)...)
	}
	if p.Connects != nil {
		a.Connects = *p.Connects
	}
	if p.AppliedAt != nil {
		a.AppliedAt = *p.AppliedAt
	}
	if p.PlatformID != nil {
		v := *p.PlatformID
		a.PlatformID = &v
	}

	if len(p.RemoveAttachments) > 0 {
		drop := make(map[string]bool, len(p.RemoveAttachments))
		for _, ref := range p.RemoveAttachments {
			drop[ref] = true
		}
		kept := a.Attachments[:0:0]
		for _, ref := range a.Attachments {
			if drop[ref] {
				removed = append(removed, ref)
			} else {
				kept = append(kept, ref)
			}
		}
		a.Attachments = kept
	}
	if len(p.AddAttachments) > 0 {
		a.Attachments = append(a.Attachments, p.AddAttachments...)
	}
	return removed
}

// GetByID returns one application
func (uc *applicationUsecase) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := uc.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}
	return app, nil
}

// AuditTrail returns the audit entries across a user's applications, most
// recent first.
func (uc *applicationUsecase) AuditTrail(ctx context.Context, userID int64, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > auditTrailLimit {
		limit = auditTrailLimit
	}
	entries, err := uc.auditRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return entries, nil
}
