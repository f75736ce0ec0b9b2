package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

// CampaignSender delivers scheduled campaigns whose send date has come. Each
// active client of the company gets an in-app notification.
type CampaignSender struct {
	db    *gorm.DB
	now   func() time.Time
	batch int
}

func NewCampaignSender(db *gorm.DB) *CampaignSender {
	return &CampaignSender{db: db, now: time.Now, batch: 20}
}

func (j *CampaignSender) Name() string { return "campaign_sender" }

func (j *CampaignSender) Run(ctx context.Context) error {
	now := j.now().UTC()

	var due []models.Campaign
	if err := j.db.WithContext(ctx).
		Where("status = ? AND send_date IS NOT NULL AND send_date <= ?", models.CampaignScheduled, now).
		Order("send_date ASC, id ASC").
		Limit(j.batch).
		Find(&due).Error; err != nil {
		return err
	}

	for _, c := range due {
		if err := j.send(ctx, c, now); err != nil {
			zap.L().Warn("campaign send failed", zap.Uint("campaign_id", c.ID), zap.Error(err))
		}
	}
	return nil
}

// send claims the campaign with an optimistic status update so that two
// runners never deliver it twice.
func (j *CampaignSender) send(ctx context.Context, c models.Campaign, now time.Time) error {
	return j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Campaign{}).
			Where("id = ? AND status = ?", c.ID, models.CampaignScheduled).
			Updates(map[string]any{"status": models.CampaignSent, "sent_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var clients []models.Client
		if err := tx.Select("id").
			Where("company_id = ? AND is_active = ?", c.CompanyID, true).
			Find(&clients).Error; err != nil {
			return err
		}

		if len(clients) > 0 {
			notes := make([]models.Notification, 0, len(clients))
			for _, cl := range clients {
				notes = append(notes, models.Notification{
					CompanyID: c.CompanyID,
					ClientID:  cl.ID,
					Title:     c.Subject,
					Message:   c.Content,
					Type:      models.NotificationOther,
				})
			}
			if err := tx.CreateInBatches(&notes, 100).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Campaign{}).
			Where("id = ?", c.ID).
			Update("recipients", len(clients)).Error
	})
}
