package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

type ServiceHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewServiceHandler(db *gorm.DB, audit *audit.Dispatcher) *ServiceHandler {
	return &ServiceHandler{db: db, audit: audit}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	DurationMin   int     `json:"duration_min" binding:"required,min=1"`
	BasePrice     float64 `json:"base_price" binding:"min=0"`
	BedroomPrice  float64 `json:"bedroom_price" binding:"min=0"`
	BathroomPrice float64 `json:"bathroom_price" binding:"min=0"`
	Category      string  `json:"category"`
}

type UpdateServiceRequest struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	DurationMin   *int     `json:"duration_min,omitempty"`
	BasePrice     *float64 `json:"base_price,omitempty"`
	BedroomPrice  *float64 `json:"bedroom_price,omitempty"`
	BathroomPrice *float64 `json:"bathroom_price,omitempty"`
	Active        *bool    `json:"active,omitempty"`
	Category      *string  `json:"category,omitempty"`
}

// --------- Handlers ---------

// filterServices applies the category, active and query filters shared by the
// staff and public listings.
func filterServices(q *gorm.DB, c *gin.Context) *gorm.DB {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	return q
}

func (h *ServiceHandler) List(c *gin.Context) {
	q := filterServices(h.db.Where("company_id = ?", companyID(c)), c)

	switch strings.TrimSpace(c.Query("active")) {
	case "true":
		q = q.Where("active = ?", true)
	case "false":
		q = q.Where("active = ?", false)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not load services.")
		return
	}
	c.JSON(http.StatusOK, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	service := models.Service{
		CompanyID:     companyID(c),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		DurationMin:   req.DurationMin,
		BasePrice:     req.BasePrice,
		BedroomPrice:  req.BedroomPrice,
		BathroomPrice: req.BathroomPrice,
		Active:        true,
		Category:      strings.ToLower(req.Category),
	}

	if err := h.db.Create(&service).Error; err != nil {
		httperr.Internal(c, "failed_to_create_service", "Could not create the service.")
		return
	}

	writeAudit(h.audit, c, "service_created", "service", &service.ID, nil)
	c.JSON(http.StatusCreated, service)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var service models.Service
	if err := h.db.
		Where("id = ? AND company_id = ?", id, companyID(c)).
		First(&service).Error; err != nil {

		if isNotFound(err) {
			httperr.NotFound(c, "service_not_found", messageFor("service_not_found"))
			return
		}
		httperr.Internal(c, "failed_to_get_service", "Could not load the service.")
		return
	}

	var req UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name != nil {
		service.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.DurationMin != nil {
		if *req.DurationMin < 1 {
			httperr.BadRequest(c, "invalid_duration", "Duration must be at least one minute.")
			return
		}
		service.DurationMin = *req.DurationMin
	}
	for _, p := range []*float64{req.BasePrice, req.BedroomPrice, req.BathroomPrice} {
		if p != nil && *p < 0 {
			httperr.BadRequest(c, "invalid_price", "Prices cannot be negative.")
			return
		}
	}
	if req.BasePrice != nil {
		service.BasePrice = *req.BasePrice
	}
	if req.BedroomPrice != nil {
		service.BedroomPrice = *req.BedroomPrice
	}
	if req.BathroomPrice != nil {
		service.BathroomPrice = *req.BathroomPrice
	}
	if req.Active != nil {
		service.Active = *req.Active
	}
	if req.Category != nil {
		service.Category = strings.ToLower(*req.Category)
	}

	if err := h.db.Save(&service).Error; err != nil {
		httperr.Internal(c, "failed_to_update_service", "Could not save the service.")
		return
	}

	writeAudit(h.audit, c, "service_updated", "service", &service.ID, req)
	c.JSON(http.StatusOK, service)
}
