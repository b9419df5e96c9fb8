package domain

import "time"

// HireRecord is the one-to-one companion of an application that reached the
// hired stage. It is created exactly once; a second hire attempt is a conflict.
type HireRecord struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	BudgetType    string    `json:"budget_type"` // fixed | hourly
	BudgetAmount  float64   `json:"budget_amount"`
	ClientName    string    `json:"client_name"`
	DeveloperID   *int64    `json:"developer_id,omitempty"`
	HiredAt       time.Time `json:"hired_at"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
