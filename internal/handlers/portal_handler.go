package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/dashboard"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/dto"
	invoiceDomain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	ucBooking "github.com/BruksfildServices01/cleaning-scheduler/internal/usecase/booking"
)

// PortalHandler serves the client self-service routes. Every query is
// scoped to the client in the token.
type PortalHandler struct {
	db        *gorm.DB
	bookings  BookingUseCases
	invoices  InvoiceUseCases
	dashboard *dashboard.Service
}

func NewPortalHandler(db *gorm.DB, bookings BookingUseCases, invoices InvoiceUseCases, dash *dashboard.Service) *PortalHandler {
	return &PortalHandler{db: db, bookings: bookings, invoices: invoices, dashboard: dash}
}

func portalActor(c *gin.Context) ucBooking.Actor {
	return ucBooking.Actor{CompanyID: companyID(c), ClientID: clientID(c)}
}

func (h *PortalHandler) touched(c *gin.Context) {
	h.dashboard.Invalidate(c.Request.Context(), companyID(c), clientID(c))
}

// ======================================================
// CATALOG
// ======================================================

func (h *PortalHandler) Services(c *gin.Context) {
	q := filterServices(h.db.Where("company_id = ? AND active = ?", companyID(c), true), c)
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

func (h *PortalHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.bookings.Quote.Execute(c.Request.Context(), ucBooking.QuoteInput{
		CompanyID:     companyID(c),
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

func (h *PortalHandler) Availability(c *gin.Context) {
	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil || c.Query("date") == "" {
		httperr.BadRequest(c, "invalid_request", "service_id and date are required.")
		return
	}
	slots, err := h.bookings.Availability.Execute(c.Request.Context(), companyID(c), uint(serviceID), c.Query("date"))
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_get_availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": c.Query("date"), "slots": slots})
}

// ======================================================
// BOOKINGS
// ======================================================

type PortalBookingRequest struct {
	ServiceID     uint   `json:"service_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Bedrooms      int    `json:"bedrooms"`
	Bathrooms     int    `json:"bathrooms"`
	Address       string `json:"address"`
	Notes         string `json:"notes"`
	RecurringType string `json:"recurring_type"`
	PromotionCode string `json:"promotion_code"`
}

// CreateBooking requests a visit. It stays pending until staff confirm it.
func (h *PortalHandler) CreateBooking(c *gin.Context) {
	var req PortalBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.bookings.Create.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		Actor:         portalActor(c),
		ClientID:      clientID(c),
		ServiceID:     req.ServiceID,
		Date:          req.Date,
		Time:          req.Time,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		Address:       req.Address,
		Notes:         req.Notes,
		RecurringType: req.RecurringType,
		PromotionCode: req.PromotionCode,
	})
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_create_booking")
		return
	}
	h.touched(c)
	c.JSON(http.StatusCreated, b)
}

func (h *PortalHandler) ListBookings(c *gin.Context) {
	f := domain.Filter{CompanyID: companyID(c), ClientID: clientID(c), Status: c.Query("status")}
	if f.Status != "" && !domain.Status(f.Status).Valid() {
		httperr.BadRequest(c, "invalid_status", messageFor("invalid_status"))
		return
	}
	list, err := h.bookings.List.All(c.Request.Context(), f)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_list_bookings")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PortalHandler) Upcoming(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit > 50 {
		limit = 50
	}
	list, err := h.bookings.List.Upcoming(c.Request.Context(), companyID(c), clientID(c), limit)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_list_bookings")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PortalHandler) GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings.List.Get(c.Request.Context(), portalActor(c), id)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_get_booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *PortalHandler) CancelBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.bookings.Cancel.Execute(c.Request.Context(), portalActor(c), id, req.Reason)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_cancel_booking")
		return
	}
	h.touched(c)
	c.JSON(http.StatusOK, b)
}

func (h *PortalHandler) RescheduleBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RescheduleBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.bookings.Reschedule.Execute(c.Request.Context(), ucBooking.RescheduleBookingInput{
		Actor:     portalActor(c),
		BookingID: id,
		Date:      req.Date,
		Time:      req.Time,
	})
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_reschedule_booking")
		return
	}
	h.touched(c)
	c.JSON(http.StatusOK, b)
}

type historyItem struct {
	dto.BookingListDTO
	Review *models.Review `json:"review"`
}

// History lists completed bookings, newest first, each with the client's own
// review when there is one.
func (h *PortalHandler) History(c *gin.Context) {
	list, err := h.bookings.List.All(c.Request.Context(), domain.Filter{
		CompanyID: companyID(c),
		ClientID:  clientID(c),
		Status:    string(domain.StatusCompleted),
	})
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_list_history")
		return
	}

	var reviews []models.Review
	if err := h.db.Where("company_id = ? AND client_id = ?", companyID(c), clientID(c)).Find(&reviews).Error; err != nil {
		httperr.Internal(c, "failed_to_list_history", "Could not load the history.")
		return
	}
	byBooking := make(map[uint]*models.Review, len(reviews))
	for i := range reviews {
		byBooking[reviews[i].BookingID] = &reviews[i]
	}

	out := make([]historyItem, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, historyItem{BookingListDTO: list[i], Review: byBooking[list[i].ID]})
	}
	c.JSON(http.StatusOK, out)
}

// ======================================================
// REVIEWS
// ======================================================

type CreateReviewRequest struct {
	BookingID uint   `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

func (h *PortalHandler) ListReviews(c *gin.Context) {
	var reviews []models.Review
	if err := h.db.Where("company_id = ? AND client_id = ?", companyID(c), clientID(c)).
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		httperr.Internal(c, "failed_to_list_reviews", "Could not load reviews.")
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

// CreateReview accepts one review per completed booking of the client.
func (h *PortalHandler) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.bookings.List.Get(c.Request.Context(), portalActor(c), req.BookingID)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_create_review")
		return
	}
	if b.Status != string(domain.StatusCompleted) {
		httperr.Write(c, http.StatusConflict, "booking_not_completed", "Only completed services can be reviewed.")
		return
	}

	var count int64
	if err := h.db.Model(&models.Review{}).Where("booking_id = ?", b.ID).Count(&count).Error; err != nil {
		httperr.Internal(c, "failed_to_create_review", "Could not save the review.")
		return
	}
	if count > 0 {
		httperr.Conflict(c, "already_reviewed", "This service was already reviewed.")
		return
	}

	review := models.Review{
		CompanyID: b.CompanyID,
		ClientID:  b.ClientID,
		BookingID: b.ID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		Status:    models.ReviewPending,
	}
	if err := h.db.Omit("Client").Create(&review).Error; isDuplicate(err) {
		// a concurrent submit won the unique index
		httperr.Conflict(c, "already_reviewed", "This service was already reviewed.")
		return
	} else if err != nil {
		httperr.Internal(c, "failed_to_create_review", "Could not save the review.")
		return
	}
	h.dashboard.Invalidate(c.Request.Context(), b.CompanyID, 0)
	c.JSON(http.StatusCreated, review)
}

// ======================================================
// INVOICES
// ======================================================

func (h *PortalHandler) RecentInvoices(c *gin.Context) {
	invoices, err := h.invoices.Query.Recent(c.Request.Context(), companyID(c), clientID(c))
	if err != nil {
		invoiceErrors.respond(c, err, "failed_to_list_invoices")
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *PortalHandler) ListInvoices(c *gin.Context) {
	f := invoiceDomain.Filter{CompanyID: companyID(c), ClientID: clientID(c), Status: c.Query("status")}
	invoices, err := h.invoices.Query.List(c.Request.Context(), f)
	if err != nil {
		invoiceErrors.respond(c, err, "failed_to_list_invoices")
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *PortalHandler) GetInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoices.Query.Get(c.Request.Context(), companyID(c), clientID(c), id)
	if err != nil {
		invoiceErrors.respond(c, err, "failed_to_get_invoice")
		return
	}
	c.JSON(http.StatusOK, inv)
}

// Checkout opens a hosted payment page for the invoice.
func (h *PortalHandler) Checkout(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, err := h.invoices.Checkout.Execute(c.Request.Context(), companyID(c), clientID(c), id)
	if err != nil {
		invoiceErrors.respond(c, err, "failed_to_start_checkout")
		return
	}
	c.JSON(http.StatusOK, out)
}

// ======================================================
// MESSAGES
// ======================================================

type SendMessageRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// Messages returns the thread and marks the company's messages as read.
func (h *PortalHandler) Messages(c *gin.Context) {
	cid, clid := companyID(c), clientID(c)

	var msgs []models.Message
	if err := h.db.Where("company_id = ? AND client_id = ?", cid, clid).
		Order("created_at ASC, id ASC").Find(&msgs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_messages", "Could not load messages.")
		return
	}

	res := h.db.Model(&models.Message{}).
		Where("company_id = ? AND client_id = ? AND sender = ? AND read = ?", cid, clid, models.SenderCompany, false).
		Update("read", true)
	if res.RowsAffected > 0 {
		h.touched(c)
	}

	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *PortalHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	body := strings.TrimSpace(req.Message)
	if body == "" {
		httperr.BadRequest(c, "empty_message", "Message cannot be empty.")
		return
	}
	msg := models.Message{
		CompanyID: companyID(c),
		ClientID:  clientID(c),
		Subject:   req.Subject,
		Body:      body,
		Sender:    models.SenderClient,
	}
	if err := h.db.Create(&msg).Error; err != nil {
		httperr.Internal(c, "failed_to_send_message", "Could not send the message.")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *PortalHandler) MarkMessageRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db.Model(&models.Message{}).
		Where("id = ? AND company_id = ? AND client_id = ?", id, companyID(c), clientID(c)).
		Update("read", true)
	if res.Error != nil {
		httperr.Internal(c, "failed_to_update_message", "Could not update the message.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "message_not_found", "Message not found.")
		return
	}
	h.touched(c)
	c.Status(http.StatusNoContent)
}

// ======================================================
// NOTIFICATIONS
// ======================================================

func (h *PortalHandler) Notifications(c *gin.Context) {
	q := h.db.Where("company_id = ? AND client_id = ?", companyID(c), clientID(c))
	if c.Query("unread") == "true" {
		q = q.Where("read = ?", false)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	var notes []models.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(100).Find(&notes).Error; err != nil {
		httperr.Internal(c, "failed_to_list_notifications", "Could not load notifications.")
		return
	}
	if notes == nil {
		notes = []models.Notification{}
	}
	c.JSON(http.StatusOK, notes)
}

func (h *PortalHandler) MarkNotificationRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := h.db.Model(&models.Notification{}).
		Where("id = ? AND company_id = ? AND client_id = ?", id, companyID(c), clientID(c)).
		Update("read", true)
	if res.Error != nil {
		httperr.Internal(c, "failed_to_update_notification", "Could not update the notification.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "notification_not_found", "Notification not found.")
		return
	}
	h.touched(c)
	c.Status(http.StatusNoContent)
}

func (h *PortalHandler) MarkAllNotificationsRead(c *gin.Context) {
	res := h.db.Model(&models.Notification{}).
		Where("company_id = ? AND client_id = ? AND read = ?", companyID(c), clientID(c), false).
		Update("read", true)
	if res.Error != nil {
		httperr.Internal(c, "failed_to_update_notification", "Could not update notifications.")
		return
	}
	h.touched(c)
	c.JSON(http.StatusOK, gin.H{"updated": res.RowsAffected})
}
