package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

type CompanyHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewCompanyHandler(db *gorm.DB, audit *audit.Dispatcher) *CompanyHandler {
	return &CompanyHandler{db: db, audit: audit}
}

type UpdateCompanyRequest struct {
	Name                  *string `json:"name"`
	Email                 *string `json:"email"`
	Phone                 *string `json:"phone"`
	Address               *string `json:"address"`
	Timezone              *string `json:"timezone"`
	MinAdvanceMinutes     *int    `json:"min_advance_minutes"`
	SlotIntervalMinutes   *int    `json:"slot_interval_minutes"`
	MaxConcurrentBookings *int    `json:"max_concurrent_bookings"`
	InvoiceDueDays        *int    `json:"invoice_due_days"`
	Currency              *string `json:"currency"`
}

type BusinessDayConfig struct {
	Weekday int    `json:"weekday" binding:"min=0,max=6"`
	Open    string `json:"open"`
	Close   string `json:"close"`
	Closed  bool   `json:"closed"`
}

type BusinessHoursRequest struct {
	Days []BusinessDayConfig `json:"days" binding:"required,dive"`
}

type ServiceAreasRequest struct {
	Areas []string `json:"areas"`
}

func (h *CompanyHandler) load(c *gin.Context) (*models.Company, bool) {
	var company models.Company
	if err := h.db.Preload("ServiceAreas").First(&company, companyID(c)).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "company_not_found", "Company not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_company", "Could not load the company.")
		return nil, false
	}
	return &company, true
}

// ======================================================
// SETTINGS
// ======================================================

func (h *CompanyHandler) Get(c *gin.Context) {
	company, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) Update(c *gin.Context) {
	company, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			httperr.BadRequest(c, "invalid_name", "Name cannot be empty.")
			return
		}
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		company.Email = *req.Email
	}
	if req.Phone != nil {
		company.Phone = *req.Phone
	}
	if req.Address != nil {
		company.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
			return
		}
		company.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Minimum advance must be zero or positive (minutes).")
			return
		}
		company.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}
	if req.SlotIntervalMinutes != nil {
		if *req.SlotIntervalMinutes < 5 || *req.SlotIntervalMinutes > 240 {
			httperr.BadRequest(c, "invalid_slot_interval", "Slot interval must be between 5 and 240 minutes.")
			return
		}
		company.SlotIntervalMinutes = *req.SlotIntervalMinutes
	}
	if req.MaxConcurrentBookings != nil {
		if *req.MaxConcurrentBookings < 1 {
			httperr.BadRequest(c, "invalid_max_concurrent", "At least one concurrent booking is required.")
			return
		}
		company.MaxConcurrentBookings = *req.MaxConcurrentBookings
	}
	if req.InvoiceDueDays != nil {
		if *req.InvoiceDueDays < 0 {
			httperr.BadRequest(c, "invalid_due_days", "Due days must be zero or positive.")
			return
		}
		company.InvoiceDueDays = *req.InvoiceDueDays
	}
	if req.Currency != nil {
		if len(*req.Currency) != 3 {
			httperr.BadRequest(c, "invalid_currency", "Currency must be a 3-letter code.")
			return
		}
		company.Currency = strings.ToUpper(*req.Currency)
	}

	if err := h.db.Omit("ServiceAreas").Save(company).Error; err != nil {
		httperr.Internal(c, "failed_to_update_company", "Could not save the settings.")
		return
	}

	writeAudit(h.audit, c, "company_updated", "company", &company.ID, req)
	c.JSON(http.StatusOK, company)
}

// ======================================================
// BUSINESS HOURS
// ======================================================

func (h *CompanyHandler) GetHours(c *gin.Context) {
	var hours []models.BusinessHours
	if err := h.db.
		Where("company_id = ?", companyID(c)).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {

		httperr.Internal(c, "failed_to_get_business_hours", "Could not load business hours.")
		return
	}
	c.JSON(http.StatusOK, hours)
}

// ReplaceHours swaps the whole week in one transaction.
func (h *CompanyHandler) ReplaceHours(c *gin.Context) {
	cid := companyID(c)

	var req BusinessHoursRequest
	if !bindJSON(c, &req) {
		return
	}

	seen := map[int]bool{}
	toCreate := make([]models.BusinessHours, 0, len(req.Days))
	for _, d := range req.Days {
		if seen[d.Weekday] {
			httperr.BadRequest(c, "duplicate_weekday", "Each weekday may appear once.")
			return
		}
		seen[d.Weekday] = true

		if !d.Closed && !validWindow(d.Open, d.Close) {
			httperr.BadRequest(c, "invalid_business_hours", "Close must be after open (HH:MM).")
			return
		}
		toCreate = append(toCreate, models.BusinessHours{
			CompanyID: cid,
			Weekday:   d.Weekday,
			Open:      d.Open,
			Close:     d.Close,
			Closed:    d.Closed,
		})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", cid).Delete(&models.BusinessHours{}).Error; err != nil {
			return err
		}
		if len(toCreate) == 0 {
			return nil
		}
		return tx.Create(&toCreate).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_business_hours", "Could not save business hours.")
		return
	}

	writeAudit(h.audit, c, "business_hours_updated", "company", &cid, nil)
	c.JSON(http.StatusOK, toCreate)
}

func validWindow(open, closeAt string) bool {
	o, err1 := time.Parse(timezone.ClockLayout, open)
	cl, err2 := time.Parse(timezone.ClockLayout, closeAt)
	return err1 == nil && err2 == nil && cl.After(o)
}

// ======================================================
// SERVICE AREAS
// ======================================================

func (h *CompanyHandler) ListAreas(c *gin.Context) {
	var areas []models.ServiceArea
	if err := h.db.Where("company_id = ?", companyID(c)).Order("name ASC").Find(&areas).Error; err != nil {
		httperr.Internal(c, "failed_to_list_areas", "Could not load service areas.")
		return
	}
	c.JSON(http.StatusOK, areas)
}

func (h *CompanyHandler) ReplaceAreas(c *gin.Context) {
	cid := companyID(c)

	var req ServiceAreasRequest
	if !bindJSON(c, &req) {
		return
	}

	seen := map[string]bool{}
	areas := make([]models.ServiceArea, 0, len(req.Areas))
	for _, a := range req.Areas {
		name := strings.TrimSpace(a)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		areas = append(areas, models.ServiceArea{CompanyID: cid, Name: name})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", cid).Delete(&models.ServiceArea{}).Error; err != nil {
			return err
		}
		if len(areas) == 0 {
			return nil
		}
		return tx.Create(&areas).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_areas", "Could not save service areas.")
		return
	}
	c.JSON(http.StatusOK, areas)
}
