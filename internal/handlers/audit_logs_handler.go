package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	cid := companyID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	var company models.Company
	if err := h.db.Select("id", "timezone").First(&company, cid).Error; err != nil {
		httperr.Internal(c, "company_not_found", "Company not found.")
		return
	}
	loc := timezone.Location(company.Timezone)

	// --------------------------------------------------
	// Base query, always scoped to the company
	// --------------------------------------------------

	q := h.db.
		Model(&models.AuditLog{}).
		Where("company_id = ?", cid)

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if v := c.Query("entity_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			q = q.Where("entity_id = ?", id)
		}
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.ParseInLocation(timezone.DateLayout, from, loc); err == nil {
			q = q.Where("created_at >= ?", t.UTC())
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.ParseInLocation(timezone.DateLayout, to, loc); err == nil {
			q = q.Where("created_at < ?", t.AddDate(0, 0, 1).UTC())
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Could not count audit logs.")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Could not load audit logs.")
		return
	}

	httpresp.Page(c, logs, total, page, limit)
}
