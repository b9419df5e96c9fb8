package audit_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-bidtrack-backend/internal/audit"
	"go-bidtrack-backend/internal/domain"
)

func baseApp() *domain.Application {
	return &domain.Application{
		ID:           10,
		JobRef:       "upwork-123",
		UserID:       7,
		ProfileID:    2,
		Title:        "Go backend engineer",
		Technologies: []string{"go", "postgres"},
		Connects:     8,
		AppliedAt:    time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
		Stage:        domain.StageApplied,
	}
}

func TestDiff(t *testing.T) {
	t.Run("Should contain exactly the changed fields", func(t *testing.T) {
		before := baseApp()
		after := before.Clone()
		after.Title = "Senior Go backend engineer"
		after.Connects = 12

		changes := audit.Diff(before, after)
		assert.Len(t, changes, 2)
		assert.Equal(t, "Go backend engineer", changes["title"].Old)
		assert.Equal(t, "Senior Go backend engineer", changes["title"].New)
		assert.Equal(t, 8, changes["connects"].Old)
		assert.Equal(t, 12, changes["connects"].New)
	})

	t.Run("Should be empty for identical snapshots", func(t *testing.T) {
		before := baseApp()
		assert.Empty(t, audit.Diff(before, before.Clone()))
	})

	t.Run("Should treat a creation as all-new against a nil pre-image", func(t *testing.T) {
		after := baseApp()
		changes := audit.Diff(nil, after)
		assert.Contains(t, changes, "title")
		assert.Nil(t, changes["title"].Old)
		assert.Equal(t, "Go backend engineer", changes["title"].New)
	})

	t.Run("Should keep unset apart from empty string", func(t *testing.T) {
		before := baseApp()
		after := before.Clone()
		empty := ""
		after.ReplyNotes = &empty

		changes := audit.Diff(before, after)
		assert.Len(t, changes, 1)
		change, ok := changes["reply_notes"]
		assert.True(t, ok)
		assert.Nil(t, change.Old)
		assert.Equal(t, "", change.New)
	})

	t.Run("Should keep unset apart from an empty collection", func(t *testing.T) {
		before := baseApp()
		before.Attachments = nil
		after := before.Clone()
		after.Attachments = []string{}

		changes := audit.Diff(before, after)
		assert.Contains(t, changes, "attachments")
	})

	t.Run("Should compare times by instant, not location", func(t *testing.T) {
		loc := time.FixedZone("PKT", 5*3600)
		before := baseApp()
		after := before.Clone()
		at := time.Date(2026, 3, 9, 15, 0, 0, 0, loc)
		before.ReplyDate = &at
		utc := at.UTC()
		after.ReplyDate = &utc

		assert.Empty(t, audit.Diff(before, after))
	})

	t.Run("Should detect reordered sequences as a change", func(t *testing.T) {
		before := baseApp()
		after := before.Clone()
		after.Technologies = []string{"postgres", "go"}

		assert.Contains(t, audit.Diff(before, after), "technologies")
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("Should be empty for a nil application", func(t *testing.T) {
		assert.Empty(t, audit.Snapshot(nil))
	})

	t.Run("Should normalize zero times to null", func(t *testing.T) {
		snap := audit.Snapshot(baseApp())
		assert.Nil(t, snap["reply_date"])
		assert.Nil(t, snap["hired_date"])
		assert.Equal(t, "2026-03-09T10:00:00Z", snap["applied_at"])
	})

	t.Run("Should not alias the record's slices", func(t *testing.T) {
		app := baseApp()
		snap := audit.Snapshot(app)
		app.Technologies[0] = "rust"
		assert.Equal(t, []string{"go", "postgres"}, snap["technologies"])
	})
}

func TestNewEntry(t *testing.T) {
	t.Run("Should carry both snapshots and the derived changes", func(t *testing.T) {
		before := baseApp()
		after := before.Clone()
		after.Stage = domain.StageReplied
		at := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
		after.ReplyDate = &at

		entry, err := audit.NewEntry(99, before, after)
		assert.NoError(t, err)
		assert.Equal(t, int64(99), entry.ActorID)
		assert.Equal(t, int64(10), entry.ApplicationID)
		assert.Len(t, entry.Changes, 2)

		var beforeSnap map[string]any
		assert.NoError(t, json.Unmarshal(entry.Before, &beforeSnap))
		assert.Equal(t, domain.StageApplied, beforeSnap["stage"])
	})

	t.Run("Should use an empty pre-image for creations", func(t *testing.T) {
		entry, err := audit.NewEntry(7, nil, baseApp())
		assert.NoError(t, err)
		assert.JSONEq(t, "{}", string(entry.Before))
		assert.Equal(t, int64(10), entry.ApplicationID)
	})
}
