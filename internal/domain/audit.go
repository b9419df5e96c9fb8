package domain

import (
	"context"
	"encoding/json"
	"time"
)

// FieldChange is one entry of an audit diff: the normalized old and new value
// of a field that actually changed.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditEntry is an immutable record of one mutation. Both full snapshots are
// kept alongside the derived changes map so history is reconstructible
// without replaying deltas. Entries are write-once: no update or delete
// operation exists anywhere in the system.
type AuditEntry struct {
	ID            int64                  `json:"id"`
	ApplicationID int64                  `json:"application_id"`
	ActorID       int64                  `json:"actor_id"`
	Before        json.RawMessage        `json:"before"`
	After         json.RawMessage        `json:"after"`
	Changes       map[string]FieldChange `json:"changes"`
	CreatedAt     time.Time              `json:"created_at"`
}

// AuditRepository is the read side of the audit ledger. Writes happen only
// inside application mutations, via AuditBuilder.
type AuditRepository interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]AuditEntry, error)
	ListByApplication(ctx context.Context, applicationID int64, limit int) ([]AuditEntry, error)
}
