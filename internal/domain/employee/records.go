package employee

import (
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

const (
	DocumentValid   = "valid"
	DocumentExpired = "expired"
	DocumentPending = "pending"
)

func ValidDocumentStatus(s string) bool {
	return s == DocumentValid || s == DocumentExpired || s == DocumentPending
}

const (
	TrainingCompleted  = "completed"
	TrainingInProgress = "in-progress"
	TrainingExpired    = "expired"
)

func ValidTrainingStatus(s string) bool {
	return s == TrainingCompleted || s == TrainingInProgress || s == TrainingExpired
}

// TrainingStatus derives the status of a record at now. Records past their
// expiry are expired, finished ones are completed.
func TrainingStatus(r models.TrainingRecord, now time.Time) string {
	if r.ExpiryDate != nil && r.ExpiryDate.Before(now) {
		return TrainingExpired
	}
	if r.CompletionDate != nil {
		return TrainingCompleted
	}
	return TrainingInProgress
}
