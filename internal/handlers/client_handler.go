package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/dashboard"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/dto"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/validators"
)

type ClientHandler struct {
	db        *gorm.DB
	audit     *audit.Dispatcher
	dashboard *dashboard.Service
}

func NewClientHandler(db *gorm.DB, audit *audit.Dispatcher, dash *dashboard.Service) *ClientHandler {
	return &ClientHandler{db: db, audit: audit, dashboard: dash}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateClientRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	ClientType string `json:"client_type"`
	Notes      string `json:"notes"`
}

type UpdateClientRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	ClientType *string `json:"client_type"`
	Notes      *string `json:"notes"`
}

type ReplyMessageRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

func validClientType(t string) bool {
	return t == models.ClientTypeRegular || t == models.ClientTypeOneTime
}

func (h *ClientHandler) find(c *gin.Context) (*models.Client, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	var client models.Client
	if err := h.db.Where("id = ? AND company_id = ?", id, companyID(c)).First(&client).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "client_not_found", messageFor("client_not_found"))
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_client", "Could not load the client.")
		return nil, false
	}
	return &client, true
}

// ======================================================
// LIST / DETAIL
// ======================================================

func (h *ClientHandler) List(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("company_id = ?", companyID(c))

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"(LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?)",
			like, like, like,
		)
	}

	switch c.DefaultQuery("status", "all") {
	case "active":
		q = q.Where("is_active = ?", true)
	case "inactive":
		q = q.Where("is_active = ?", false)
	case "all":
	default:
		httperr.BadRequest(c, "invalid_status", "Status must be active, inactive or all.")
		return
	}

	var clients []models.Client
	if err := q.Order("created_at DESC").Find(&clients).Error; err != nil {
		httperr.Internal(c, "failed_to_list_clients", "Could not load clients.")
		return
	}

	c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) Get(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	var bookings []models.Booking
	if err := h.db.
		Preload("Client").Preload("Service").
		Where("company_id = ? AND client_id = ?", client.CompanyID, client.ID).
		Order("start_time DESC").
		Find(&bookings).Error; err != nil {
		httperr.Internal(c, "failed_to_get_client", "Could not load the client.")
		return
	}

	var invoices []models.Invoice
	if err := h.db.
		Preload("LineItems").
		Where("company_id = ? AND client_id = ?", client.CompanyID, client.ID).
		Order("issued_at DESC").
		Find(&invoices).Error; err != nil {
		httperr.Internal(c, "failed_to_get_client", "Could not load the client.")
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}

	c.JSON(http.StatusOK, gin.H{
		"client":        client,
		"portal_access": client.HasPortalAccess(),
		"bookings":      dto.BookingLists(bookings),
		"invoices":      invoices,
	})
}

// ======================================================
// WRITE
// ======================================================

func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	clientType := req.ClientType
	if clientType == "" {
		clientType = models.ClientTypeRegular
	}
	if !validClientType(clientType) {
		httperr.BadRequest(c, "invalid_client_type", "Client type must be regular or one-time.")
		return
	}

	client := models.Client{
		CompanyID:  companyID(c),
		Name:       strings.TrimSpace(req.Name),
		Email:      validators.NormalizeEmail(req.Email),
		Phone:      req.Phone,
		Address:    req.Address,
		IsActive:   true,
		ClientType: clientType,
		Notes:      req.Notes,
	}

	if client.Email != "" {
		var count int64
		if err := h.db.Model(&models.Client{}).
			Where("company_id = ? AND email = ?", client.CompanyID, client.Email).
			Count(&count).Error; err != nil {
			httperr.Internal(c, "failed_to_create_client", "Could not create the client.")
			return
		}
		if count > 0 {
			httperr.Conflict(c, "client_email_exists", "A client with that email already exists.")
			return
		}
	}

	if err := h.db.Create(&client).Error; err != nil {
		httperr.Internal(c, "failed_to_create_client", "Could not create the client.")
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), client.CompanyID, 0)
	writeAudit(h.audit, c, "client_created", "client", &client.ID, nil)
	c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			httperr.BadRequest(c, "invalid_name", "Name cannot be empty.")
			return
		}
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := validators.NormalizeEmail(*req.Email)
		if email != "" && !validators.IsEmailSyntaxValid(email) {
			httperr.BadRequest(c, "invalid_email", "Invalid email.")
			return
		}
		client.Email = email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.ClientType != nil {
		if !validClientType(*req.ClientType) {
			httperr.BadRequest(c, "invalid_client_type", "Client type must be regular or one-time.")
			return
		}
		client.ClientType = *req.ClientType
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := h.db.Save(client).Error; err != nil {
		httperr.Internal(c, "failed_to_update_client", "Could not save the client.")
		return
	}

	writeAudit(h.audit, c, "client_updated", "client", &client.ID, nil)
	c.JSON(http.StatusOK, client)
}

// ToggleActive flips the client's active flag.
func (h *ClientHandler) ToggleActive(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	client.IsActive = !client.IsActive
	if err := h.db.Model(client).Update("is_active", client.IsActive).Error; err != nil {
		httperr.Internal(c, "failed_to_update_client", "Could not save the client.")
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), client.CompanyID, 0)
	writeAudit(h.audit, c, "client_toggled", "client", &client.ID, gin.H{"is_active": client.IsActive})
	c.JSON(http.StatusOK, client)
}

// ======================================================
// MESSAGES
// ======================================================

// Messages returns the thread with a client and marks the client's messages
// as read.
func (h *ClientHandler) Messages(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	var msgs []models.Message
	if err := h.db.
		Where("company_id = ? AND client_id = ?", client.CompanyID, client.ID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_messages", "Could not load messages.")
		return
	}

	h.db.Model(&models.Message{}).
		Where("company_id = ? AND client_id = ? AND sender = ? AND read = ?",
			client.CompanyID, client.ID, models.SenderClient, false).
		Update("read", true)

	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *ClientHandler) Reply(c *gin.Context) {
	client, ok := h.find(c)
	if !ok {
		return
	}

	var req ReplyMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg := models.Message{
		CompanyID: client.CompanyID,
		ClientID:  client.ID,
		Subject:   req.Subject,
		Body:      strings.TrimSpace(req.Message),
		Sender:    models.SenderCompany,
	}
	if msg.Body == "" {
		httperr.BadRequest(c, "empty_message", "Message cannot be empty.")
		return
	}
	if err := h.db.Create(&msg).Error; err != nil {
		httperr.Internal(c, "failed_to_send_message", "Could not send the message.")
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), client.CompanyID, client.ID)
	c.JSON(http.StatusCreated, msg)
}
