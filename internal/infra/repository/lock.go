package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

// lockCompany holds SELECT ... FOR UPDATE on the company row until the
// surrounding transaction ends. SQLite ignores the locking clause.
func lockCompany(ctx context.Context, db *gorm.DB, id uint) error {
	var c models.Company
	return db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&c, id).Error
}
