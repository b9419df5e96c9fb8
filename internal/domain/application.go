package domain

import (
	"context"
	"time"
)

// Application lifecycle stages. The set is flat on purpose: real workflows
// skip and revisit stages, so any stage may be set from any other.
const (
	StageApplied   = "applied"
	StageReplied   = "replied"
	StageInterview = "interview"
	StageHired     = "hired"
	StageNotHired  = "not-hired"
)

var stages = map[string]bool{
	StageApplied:   true,
	StageReplied:   true,
	StageInterview: true,
	StageHired:     true,
	StageNotHired:  true,
}

// ValidStage reports whether s is a member of the known stage set.
func ValidStage(s string) bool {
	return stages[s]
}

// Application represents one bid on one job by one user through one profile.
type Application struct {
	ID           int64    `json:"id"`
	JobRef       string   `json:"job_ref"`
	UserID       int64    `json:"user_id"`
	ProfileID    int64    `json:"profile_id"`
	PlatformID   *int64   `json:"platform_id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	JobURL       string   `json:"job_url,omitempty"`
	Technologies []string `json:"technologies"`
	Connects     int      `json:"connects"`
	ProposalLink string   `json:"proposal_link,omitempty"`
	Attachments  []string `json:"attachments"`

	AppliedAt time.Time `json:"applied_at"`
	Stage     string    `json:"stage"`

	// Stage-conditional fields, populated only when the stage is entered.
	ReplyDate      *time.Time `json:"reply_date,omitempty"`
	ReplyNotes     *string    `json:"reply_notes,omitempty"`
	InterviewDate  *time.Time `json:"interview_date,omitempty"`
	InterviewNotes *string    `json:"interview_notes,omitempty"`
	RejectedDate   *time.Time `json:"rejected_date,omitempty"`
	RejectedNotes  *string    `json:"rejected_notes,omitempty"`
	HiredDate      *time.Time `json:"hired_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy, used to capture a pre-image before mutation.
func (a *Application) Clone() *Application {
	cp := *a
	if a.PlatformID != nil {
		v := *a.PlatformID
		cp.PlatformID = &v
	}
	cp.Technologies = append([]string(nil), a.Technologies...)
	cp.Attachments = append([]string(nil), a.Attachments...)
	cp.ReplyDate = cloneTime(a.ReplyDate)
	cp.ReplyNotes = cloneString(a.ReplyNotes)
	cp.InterviewDate = cloneTime(a.InterviewDate)
	cp.InterviewNotes = cloneString(a.InterviewNotes)
	cp.RejectedDate = cloneTime(a.RejectedDate)
	cp.RejectedNotes = cloneString(a.RejectedNotes)
	cp.HiredDate = cloneTime(a.HiredDate)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// FieldPatch is a partial update of the non-lifecycle fields. Nil means
// "leave unchanged". Attachments are patched by explicit add/remove lists so
// the caller never has to resend the full set.
type FieldPatch struct {
	Title        *string
	Description  *string
	JobURL       *string
	ProposalLink *string
	Technologies *[]string
	Connects     *int
	AppliedAt    *time.Time
	PlatformID   *int64

	AddAttachments    []string
	RemoveAttachments []string
}

// AuditBuilder produces the audit entry for a mutation. Repositories call it
// inside the same transaction as the record write so the two commit together.
type AuditBuilder func(before, after *Application) (*AuditEntry, error)

// ApplicationRepository defines data access for applications.
//
// Mutate runs {re-read current row, apply mutate, write, build + insert audit
// entry} inside one transaction. The before image handed to the AuditBuilder
// is always re-read under the row lock, never a caller-side copy.
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application, audit AuditBuilder) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	GetByBid(ctx context.Context, userID int64, jobRef string, profileID int64) (*Application, error)
	ExistsBid(ctx context.Context, userID int64, jobRef string, profileID int64) (bool, error)
	Mutate(ctx context.Context, id int64, mutate func(*Application) error, audit AuditBuilder) (*Application, error)
	MarkHired(ctx context.Context, id int64, hire *HireRecord, audit AuditBuilder) (*Application, error)
}

// ApplyInput is the payload for a first application submission.
type ApplyInput struct {
	JobRef       string     `json:"job_ref"`
	ProfileID    int64      `json:"profile_id" validate:"required"`
	PlatformID   *int64     `json:"platform_id"`
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	JobURL       string     `json:"job_url"`
	Technologies []string   `json:"technologies"`
	Connects     int        `json:"connects" validate:"gte=0"`
	ProposalLink string     `json:"proposal_link"`
	Attachments  []string   `json:"attachments"`
	AppliedAt    *time.Time `json:"applied_at"`
}

// TransitionInput moves an application to another stage.
type TransitionInput struct {
	Stage      string     `json:"stage" validate:"required"`
	OccurredAt *time.Time `json:"date"`
	Notes      *string    `json:"notes"`
}

// HireInput records the hire companion data for an application, addressed by
// its bid identity rather than the synthetic id.
type HireInput struct {
	JobRef       string    `json:"job_reference" validate:"required"`
	BidderID     int64     `json:"bidder_id" validate:"required"`
	ProfileName  string    `json:"profile_name" validate:"required"`
	DeveloperID  *int64    `json:"developer_id"`
	HiredAt      time.Time `json:"hired_at" validate:"required"`
	BudgetType   string    `json:"budget_type" validate:"required,oneof=fixed hourly"`
	BudgetAmount float64   `json:"budget_amount" validate:"gt=0"`
	ClientName   string    `json:"client_name" validate:"required"`
	Notes        *string   `json:"notes"`
}

// ApplicationUsecase defines business logic for the application lifecycle.
type ApplicationUsecase interface {
	Apply(ctx context.Context, in ApplyInput) (*Application, error)
	Transition(ctx context.Context, id int64, in TransitionInput) (*Application, error)
	MarkHired(ctx context.Context, in HireInput) (*Application, error)
	UpdateFields(ctx context.Context, id int64, patch FieldPatch) (*Application, error)
	GetByID(ctx context.Context, id int64) (*Application, error)
	AuditTrail(ctx context.Context, userID int64, limit int) ([]AuditEntry, error)
}
