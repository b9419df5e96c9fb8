// Package audit computes field-level diffs between application snapshots.
//
// Diffing is schema-driven: the set of diffable fields is enumerated below,
// each with a declared comparison strategy, instead of walking struct fields
// at runtime. Absent values and nulls normalize to a single unset value
// (JSON null); empty strings and empty collections are real values, distinct
// from unset.
package audit

import (
	"encoding/json"
	"sort"
	"time"

	"go-bidtrack-backend/internal/domain"
)

// Strategy declares how a field's before/after values are compared.
type Strategy int

const (
	// Scalar compares by simple equality.
	Scalar Strategy = iota
	// Sequence compares element-wise in order.
	Sequence
	// Set compares ignoring element order.
	Set
)

// FieldSpec is one diffable field: its wire name, comparison strategy and
// normalized extractor.
type FieldSpec struct {
	Name     string
	Strategy Strategy
	Value    func(*domain.Application) any
}

// ApplicationFields enumerates every diffable field of an application.
// Synthetic identity and bookkeeping timestamps are excluded: they either
// never change or change on every write.
var ApplicationFields = []FieldSpec{
	{"job_ref", Scalar, func(a *domain.Application) any { return a.JobRef }},
	{"user_id", Scalar, func(a *domain.Application) any { return a.UserID }},
	{"profile_id", Scalar, func(a *domain.Application) any { return a.ProfileID }},
	{"platform_id", Scalar, func(a *domain.Application) any { return normInt64(a.PlatformID) }},
	{"title", Scalar, func(a *domain.Application) any { return a.Title }},
	{"description", Scalar, func(a *domain.Application) any { return a.Description }},
	{"job_url", Scalar, func(a *domain.Application) any { return a.JobURL }},
	{"technologies", Sequence, func(a *domain.Application) any { return normSlice(a.Technologies) }},
	{"connects", Scalar, func(a *domain.Application) any { return a.Connects }},
	{"proposal_link", Scalar, func(a *domain.Application) any { return a.ProposalLink }},
	{"attachments", Sequence, func(a *domain.Application) any { return normSlice(a.Attachments) }},
	{"applied_at", Scalar, func(a *domain.Application) any { return normTime(&a.AppliedAt) }},
	{"stage", Scalar, func(a *domain.Application) any { return a.Stage }},
	{"reply_date", Scalar, func(a *domain.Application) any { return normTime(a.ReplyDate) }},
	{"reply_notes", Scalar, func(a *domain.Application) any { return normString(a.ReplyNotes) }},
	{"interview_date", Scalar, func(a *domain.Application) any { return normTime(a.InterviewDate) }},
	{"interview_notes", Scalar, func(a *domain.Application) any { return normString(a.InterviewNotes) }},
	{"rejected_date", Scalar, func(a *domain.Application) any { return normTime(a.RejectedDate) }},
	{"rejected_notes", Scalar, func(a *domain.Application) any { return normString(a.RejectedNotes) }},
	{"hired_date", Scalar, func(a *domain.Application) any { return normTime(a.HiredDate) }},
}

func normInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func normString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func normTime(v *time.Time) any {
	if v == nil || v.IsZero() {
		return nil
	}
	return v.UTC().Format(time.RFC3339)
}

// normSlice keeps nil (unset) and empty (real value) apart and copies so
// later mutation of the record cannot leak into a snapshot.
func normSlice(v []string) any {
	if v == nil {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// Snapshot flattens an application into its normalized field map. A nil
// application (the pre-image of a creation) yields an empty map.
func Snapshot(a *domain.Application) map[string]any {
	m := make(map[string]any, len(ApplicationFields))
	if a == nil {
		return m
	}
	for _, f := range ApplicationFields {
		m[f.Name] = f.Value(a)
	}
	return m
}

// Diff returns the changes map: every field whose normalized before value is
// not structurally equal to its normalized after value, and nothing else.
func Diff(before, after *domain.Application) map[string]domain.FieldChange {
	changes := make(map[string]domain.FieldChange)
	for _, f := range ApplicationFields {
		var ov, nv any
		if before != nil {
			ov = f.Value(before)
		}
		if after != nil {
			nv = f.Value(after)
		}
		if !equal(f.Strategy, ov, nv) {
			changes[f.Name] = domain.FieldChange{Old: ov, New: nv}
		}
	}
	return changes
}

func equal(s Strategy, a, b any) bool {
	as, aok := a.([]string)
	bs, bok := b.([]string)
	if aok || bok {
		if !aok || !bok {
			// one side unset, the other a collection
			return false
		}
		switch s {
		case Set:
			return equalSet(as, bs)
		default:
			return equalSeq(as, bs)
		}
	}
	return a == b
}

func equalSeq(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	return equalSeq(as, bs)
}

// NewEntry builds the immutable audit entry for one mutation: both full
// snapshots plus the derived changes map.
func NewEntry(actorID int64, before, after *domain.Application) (*domain.AuditEntry, error) {
	bj, err := json.Marshal(Snapshot(before))
	if err != nil {
		return nil, err
	}
	aj, err := json.Marshal(Snapshot(after))
	if err != nil {
		return nil, err
	}
	subject := int64(0)
	if after != nil {
		subject = after.ID
	} else if before != nil {
		subject = before.ID
	}
	return &domain.AuditEntry{
		ApplicationID: subject,
		ActorID:       actorID,
		Before:        bj,
		After:         aj,
		Changes:       Diff(before, after),
	}, nil
}
