package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	ucBooking "github.com/BruksfildServices01/cleaning-scheduler/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler answers unauthenticated requests for a company's storefront,
// addressed by slug.
type PublicHandler struct {
	db           *gorm.DB
	availability *ucBooking.GetAvailability
	quote        *ucBooking.GetQuote
}

func NewPublicHandler(db *gorm.DB, availability *ucBooking.GetAvailability, quote *ucBooking.GetQuote) *PublicHandler {
	return &PublicHandler{db: db, availability: availability, quote: quote}
}

type publicCompany struct {
	Name     string                 `json:"name"`
	Slug     string                 `json:"slug"`
	Phone    string                 `json:"phone"`
	Email    string                 `json:"email"`
	Address  string                 `json:"address"`
	Timezone string                 `json:"timezone"`
	Currency string                 `json:"currency"`
	Areas    []string               `json:"service_areas"`
	Hours    []models.BusinessHours `json:"business_hours"`
}

func (h *PublicHandler) company(c *gin.Context) (*models.Company, bool) {
	var company models.Company
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&company).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "company_not_found", "Company not found.")
		} else {
			httperr.Internal(c, "failed_to_load_company", "Could not load the company.")
		}
		return nil, false
	}
	return &company, true
}

////////////////////////////////////////////////////////
// COMPANY
////////////////////////////////////////////////////////

func (h *PublicHandler) GetCompany(c *gin.Context) {
	company, ok := h.company(c)
	if !ok {
		return
	}

	var areas []models.ServiceArea
	var hours []models.BusinessHours
	if err := h.db.Where("company_id = ?", company.ID).Order("name ASC").Find(&areas).Error; err != nil {
		httperr.Internal(c, "failed_to_load_company", "Could not load the company.")
		return
	}
	if err := h.db.Where("company_id = ?", company.ID).Order("weekday ASC").Find(&hours).Error; err != nil {
		httperr.Internal(c, "failed_to_load_company", "Could not load the company.")
		return
	}

	names := make([]string, 0, len(areas))
	for _, a := range areas {
		names = append(names, a.Name)
	}

	c.JSON(http.StatusOK, publicCompany{
		Name:     company.Name,
		Slug:     company.Slug,
		Phone:    company.Phone,
		Email:    company.Email,
		Address:  company.Address,
		Timezone: company.Timezone,
		Currency: company.Currency,
		Areas:    names,
		Hours:    hours,
	})
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	company, ok := h.company(c)
	if !ok {
		return
	}

	q := filterServices(h.db.Where("company_id = ? AND active = ?", company.ID, true), c)

	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Could not load services.")
		return
	}
	if services == nil {
		services = []models.Service{}
	}
	c.JSON(http.StatusOK, services)
}

////////////////////////////////////////////////////////
// AVAILABILITY / QUOTE
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	company, ok := h.company(c)
	if !ok {
		return
	}

	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	date := c.Query("date")
	if err != nil || date == "" {
		httperr.BadRequest(c, "invalid_request", "service_id and date are required.")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), company.ID, uint(serviceID), date)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_get_availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

func (h *PublicHandler) Quote(c *gin.Context) {
	company, ok := h.company(c)
	if !ok {
		return
	}

	var req QuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.quote.Execute(c.Request.Context(), ucBooking.QuoteInput{
		CompanyID:     company.ID,
		ServiceID:     req.ServiceID,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		PromotionCode: req.PromotionCode,
	})
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_quote")
		return
	}
	c.JSON(http.StatusOK, q)
}
