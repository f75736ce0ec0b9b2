package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/dashboard"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	ucBooking "github.com/BruksfildServices01/cleaning-scheduler/internal/usecase/booking"
)

// bookingErrors is shared by the staff and portal booking routes.
var bookingErrors = errorStatus{
	"booking_not_found":   http.StatusNotFound,
	"service_not_found":   http.StatusNotFound,
	"client_not_found":    http.StatusNotFound,
	"employee_not_found":  http.StatusNotFound,
	"team_not_found":      http.StatusNotFound,
	"promotion_not_found": http.StatusNotFound,
	"slot_unavailable":    http.StatusConflict,
	"invalid_state":       http.StatusConflict,
	"client_inactive":     http.StatusUnprocessableEntity,
	"employee_inactive":   http.StatusUnprocessableEntity,
	"promotion_expired":   http.StatusUnprocessableEntity,
}

// BookingUseCases groups the booking use cases used by the HTTP layer.
type BookingUseCases struct {
	Create       *ucBooking.CreateBooking
	Confirm      *ucBooking.ConfirmBooking
	Cancel       *ucBooking.CancelBooking
	Complete     *ucBooking.CompleteBooking
	Reschedule   *ucBooking.RescheduleBooking
	Assign       *ucBooking.AssignBooking
	Availability *ucBooking.GetAvailability
	Quote        *ucBooking.GetQuote
	List         *ucBooking.ListBookings
}

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	uc        BookingUseCases
	dashboard *dashboard.Service
}

func NewBookingHandler(uc BookingUseCases, dash *dashboard.Service) *BookingHandler {
	return &BookingHandler{uc: uc, dashboard: dash}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	ClientID      uint   `json:"client_id"`
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

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type RescheduleBookingRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

type AssignBookingRequest struct {
	EmployeeID *uint `json:"employee_id"`
	TeamID     *uint `json:"team_id"`
}

type QuoteRequest struct {
	ServiceID     uint   `json:"service_id" binding:"required"`
	Bedrooms      int    `json:"bedrooms"`
	Bathrooms     int    `json:"bathrooms"`
	PromotionCode string `json:"promotion_code"`
}

func staffActor(c *gin.Context) ucBooking.Actor {
	return ucBooking.Actor{CompanyID: companyID(c), UserID: currentUserID(c)}
}

func (h *BookingHandler) touched(c *gin.Context, b *models.Booking) {
	h.dashboard.Invalidate(c.Request.Context(), b.CompanyID, b.ClientID)
}

// ======================================================
// CREATE
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.uc.Create.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		Actor:         staffActor(c),
		ClientID:      req.ClientID,
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

	h.touched(c, b)
	c.JSON(http.StatusCreated, b)
}

// ======================================================
// READ
// ======================================================

// List picks the window from the query: ?date, ?year&month, ?from&to, or
// everything matching the filters when none is given.
func (h *BookingHandler) List(c *gin.Context) {
	f := domain.Filter{CompanyID: companyID(c), Status: c.Query("status")}
	if f.Status != "" && !domain.Status(f.Status).Valid() {
		httperr.BadRequest(c, "invalid_status", messageFor("invalid_status"))
		return
	}
	for name, dst := range map[string]*uint{
		"client_id":   &f.ClientID,
		"employee_id": &f.EmployeeID,
		"team_id":     &f.TeamID,
	} {
		if v := c.Query(name); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				httperr.BadRequest(c, "invalid_"+name, "invalid "+name)
				return
			}
			*dst = uint(n)
		}
	}

	ctx := c.Request.Context()
	var (
		out any
		err error
	)
	switch {
	case c.Query("date") != "":
		out, err = h.uc.List.ByDate(ctx, f, c.Query("date"))
	case c.Query("year") != "" || c.Query("month") != "":
		year, err1 := strconv.Atoi(c.Query("year"))
		month, err2 := strconv.Atoi(c.Query("month"))
		if err1 != nil || err2 != nil || year < 2000 || year > 2100 || month < 1 || month > 12 {
			httperr.BadRequest(c, "invalid_month", "Year and month are required.")
			return
		}
		out, err = h.uc.List.ByMonth(ctx, f, year, month)
	case c.Query("from") != "" || c.Query("to") != "":
		out, err = h.uc.List.ByRange(ctx, f, c.Query("from"), c.Query("to"))
	default:
		out, err = h.uc.List.All(ctx, f)
	}
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_list_bookings")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Upcoming(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit > 50 {
		limit = 50
	}
	list, err := h.uc.List.Upcoming(c.Request.Context(), companyID(c), 0, limit)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_list_bookings")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.uc.List.Get(c.Request.Context(), staffActor(c), id)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_get_booking")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Availability(c *gin.Context) {
	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil || c.Query("date") == "" {
		httperr.BadRequest(c, "invalid_request", "service_id and date are required.")
		return
	}
	slots, err := h.uc.Availability.Execute(c.Request.Context(), companyID(c), uint(serviceID), c.Query("date"))
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_get_availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": c.Query("date"), "slots": slots})
}

func (h *BookingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.uc.Quote.Execute(c.Request.Context(), ucBooking.QuoteInput{
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

// ======================================================
// TRANSITIONS
// ======================================================

func (h *BookingHandler) Confirm(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.uc.Confirm.Execute(c.Request.Context(), staffActor(c), id)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_confirm_booking")
		return
	}
	h.touched(c, b)
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	b, err := h.uc.Cancel.Execute(c.Request.Context(), staffActor(c), id, req.Reason)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_cancel_booking")
		return
	}
	h.touched(c, b)
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	out, err := h.uc.Complete.Execute(c.Request.Context(), staffActor(c), id)
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_complete_booking")
		return
	}
	h.touched(c, out.Booking)
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) Reschedule(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RescheduleBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.uc.Reschedule.Execute(c.Request.Context(), ucBooking.RescheduleBookingInput{
		Actor:     staffActor(c),
		BookingID: id,
		Date:      req.Date,
		Time:      req.Time,
	})
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_reschedule_booking")
		return
	}
	h.touched(c, b)
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Assign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AssignBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.uc.Assign.Execute(c.Request.Context(), ucBooking.AssignBookingInput{
		Actor:      staffActor(c),
		BookingID:  id,
		EmployeeID: req.EmployeeID,
		TeamID:     req.TeamID,
	})
	if err != nil {
		bookingErrors.respond(c, err, "failed_to_assign_booking")
		return
	}
	c.JSON(http.StatusOK, b)
}
