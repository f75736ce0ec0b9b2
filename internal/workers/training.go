package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/domain/employee"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

// TrainingExpiry flags training records whose expiry date has passed.
type TrainingExpiry struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTrainingExpiry(db *gorm.DB) *TrainingExpiry {
	return &TrainingExpiry{db: db, now: time.Now}
}

func (j *TrainingExpiry) Name() string { return "training_expiry" }

func (j *TrainingExpiry) Run(ctx context.Context) error {
	res := j.db.WithContext(ctx).
		Model(&models.TrainingRecord{}).
		Where("expiry_date IS NOT NULL AND expiry_date < ? AND status <> ?",
			j.now().UTC(), employee.TrainingExpired).
		Update("status", employee.TrainingExpired)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		zap.L().Info("training records expired", zap.Int64("count", res.RowsAffected))
	}
	return nil
}
