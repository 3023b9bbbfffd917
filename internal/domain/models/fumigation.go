package models

import "time"

// FumigationStatus enumerates the lifecycle states of a fumigation task.
type FumigationStatus string

const (
	FumigationScheduled  FumigationStatus = "scheduled"
	FumigationInProgress FumigationStatus = "in_progress"
	FumigationCompleted  FumigationStatus = "completed"
	FumigationCancelled  FumigationStatus = "cancelled"
)

// FumigationStatuses lists every known status in display order.
var FumigationStatuses = []FumigationStatus{
	FumigationScheduled,
	FumigationInProgress,
	FumigationCompleted,
	FumigationCancelled,
}

// fumigationStatusLabels maps statuses to their human-readable labels.
var fumigationStatusLabels = map[FumigationStatus]string{
	FumigationScheduled:  "Scheduled",
	FumigationInProgress: "In progress",
	FumigationCompleted:  "Completed",
	FumigationCancelled:  "Cancelled",
}

// Valid reports whether s is one of the four known statuses.
func (s FumigationStatus) Valid() bool {
	_, ok := fumigationStatusLabels[s]
	return ok
}

// Label returns the display label for the status, or the raw value when unknown.
func (s FumigationStatus) Label() string {
	if label, ok := fumigationStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Fumigation is a scheduled chemical application against a field, carried out
// by an applicator using products drawn from stock.
type Fumigation struct {
	ID           string             `bson:"_id,omitempty" json:"id"`
	Version      int64              `bson:"version" json:"version"`
	FieldID      string             `bson:"field_id" json:"field_id"`
	ApplicatorID string             `bson:"applicator_id" json:"applicator_id"`
	Products     []string           `bson:"products" json:"products"`
	Dosage       map[string]float64 `bson:"dosage,omitempty" json:"dosage,omitempty"`
	Date         time.Time          `bson:"date" json:"date"`
	Status       FumigationStatus   `bson:"status" json:"status"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
	StartedAt    *time.Time         `bson:"started_at,omitempty" json:"started_at,omitempty"`
	CompletedAt  *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
