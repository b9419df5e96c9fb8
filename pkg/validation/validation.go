package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	// ApplyInput fields
	"ProfileID":    "Profile",
	"PlatformID":   "Platform",
	"Title":        "Job Title",
	"Description":  "Job Description",
	"JobURL":       "Job URL",
	"Technologies": "Technologies",
	"Connects":     "Connects",
	"ProposalLink": "Proposal Link",
	"Attachments":  "Attachments",
	"AppliedAt":    "Applied Date",

	// TransitionInput fields
	"Stage":      "Stage",
	"OccurredAt": "Date",
	"Notes":      "Notes",

	// HireInput fields
	"JobRef":       "Job Reference",
	"BidderID":     "Bidder",
	"ProfileName":  "Profile Name",
	"DeveloperID":  "Developer",
	"HiredAt":      "Hire Date",
	"BudgetType":   "Budget Type",
	"BudgetAmount": "Budget Amount",
	"ClientName":   "Client Name",

	// Target fields
	"UserID":         "User",
	"WeekStart":      "Week Start",
	"WeekEnd":        "Week End",
	"TargetAmount":   "Target Amount",
	"AchievedAmount": "Achieved Amount",
}

// Format turns a validator error into a readable, field-labelled message.
// Non-validation errors pass through unchanged.
func Format(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := FieldLabels[fe.Field()]
		if label == "" {
			label = fe.Field()
		}
		msgs = append(msgs, messageFor(label, fe))
	}
	return strings.Join(msgs, "; ")
}

func messageFor(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
