package domain

import (
	"fmt"
	"time"
)

// EventKind identifies one entry of the closed notification catalogue.
type EventKind string

const (
	EventJobApplied       EventKind = "job-applied"
	EventJobHired         EventKind = "job-hired"
	EventStageReplied     EventKind = "stage-replied"
	EventStageInterviewed EventKind = "stage-interviewed"
	EventStageNotHired    EventKind = "stage-not-hired"
	EventTargetSet        EventKind = "target-set"
	EventTargetUpdated    EventKind = "target-updated"
	EventTargetAchieved   EventKind = "target-achieved"
)

const RoleAdmin = "admin"

// Recipient scopes an event to either a single user or everyone in a role.
type Recipient struct {
	UserID int64
	Role   string
}

// Topic is the pub/sub channel name for this recipient scope.
func (r Recipient) Topic() string {
	if r.Role != "" {
		return "role:" + r.Role
	}
	return fmt.Sprintf("user:%d", r.UserID)
}

func ToUser(id int64) Recipient    { return Recipient{UserID: id} }
func ToRole(role string) Recipient { return Recipient{Role: role} }

// Event is one notification. The variants below form the closed set; each
// carries its own strongly-typed payload, marshaled flat onto the wire.
type Event interface {
	Kind() EventKind
	Recipient() Recipient
}

// JobAppliedEvent announces a fresh application to the admins.
type JobAppliedEvent struct {
	To            Recipient `json:"-"`
	ApplicationID int64     `json:"application_id"`
	BidderID      int64     `json:"bidder_id"`
	Title         string    `json:"title"`
	Connects      int       `json:"connects"`
}

func (e JobAppliedEvent) Kind() EventKind      { return EventJobApplied }
func (e JobAppliedEvent) Recipient() Recipient { return e.To }

// JobHiredEvent announces a win to the owning bidder.
type JobHiredEvent struct {
	To            Recipient `json:"-"`
	ApplicationID int64     `json:"application_id"`
	Title         string    `json:"title"`
	ClientName    string    `json:"client_name"`
	BudgetAmount  float64   `json:"budget_amount"`
	HiredAt       time.Time `json:"hired_at"`
}

func (e JobHiredEvent) Kind() EventKind      { return EventJobHired }
func (e JobHiredEvent) Recipient() Recipient { return e.To }

// StageChangedEvent covers the three intermediate lifecycle moves. Kind is
// derived from the stage entered so each move keeps its own catalogue entry.
type StageChangedEvent struct {
	To            Recipient  `json:"-"`
	ApplicationID int64      `json:"application_id"`
	Title         string     `json:"title"`
	Stage         string     `json:"stage"`
	OccurredAt    *time.Time `json:"occurred_at,omitempty"`
}

func (e StageChangedEvent) Kind() EventKind {
	switch e.Stage {
	case StageReplied:
		return EventStageReplied
	case StageInterview:
		return EventStageInterviewed
	case StageNotHired:
		return EventStageNotHired
	}
	return EventKind("stage-" + e.Stage)
}

func (e StageChangedEvent) Recipient() Recipient { return e.To }

// TargetEvent covers target-set, target-updated and target-achieved.
type TargetEvent struct {
	To             Recipient `json:"-"`
	Event          EventKind `json:"-"`
	UserID         int64     `json:"user_id"`
	WeekStart      time.Time `json:"week_start"`
	TargetAmount   float64   `json:"target_amount"`
	AchievedAmount float64   `json:"achieved_amount"`
}

func (e TargetEvent) Kind() EventKind      { return e.Event }
func (e TargetEvent) Recipient() Recipient { return e.To }

// Notifier publishes events to the recipient-scoped topic. Delivery is
// at-most-once best-effort and must never block or fail the caller.
type Notifier interface {
	Dispatch(event Event)
}
