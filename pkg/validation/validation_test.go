package validation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"go-bidtrack-backend/internal/domain"
	"go-bidtrack-backend/pkg/validation"
)

func TestFormat(t *testing.T) {
	validate := validator.New()

	t.Run("Should label required fields", func(t *testing.T) {
		err := validate.Struct(domain.ApplyInput{})
		msg := validation.Format(err)
		assert.Contains(t, msg, "Profile is required")
		assert.Contains(t, msg, "Job Title is required")
	})

	t.Run("Should spell out oneof choices", func(t *testing.T) {
		err := validate.Struct(domain.HireInput{
			JobRef:       "upwork-1",
			BidderID:     7,
			ProfileName:  "Acme",
			HiredAt:      time.Now(),
			BudgetType:   "retainer",
			BudgetAmount: 100,
			ClientName:   "Initech",
		})
		assert.Contains(t, validation.Format(err), "Budget Type must be one of: fixed, hourly")
	})

	t.Run("Should pass through non-validation errors", func(t *testing.T) {
		assert.Equal(t, "boom", validation.Format(errors.New("boom")))
	})
}
