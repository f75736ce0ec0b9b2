package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/middleware"
)

func companyID(c *gin.Context) uint {
	return c.MustGet(middleware.ContextCompanyID).(uint)
}

func clientID(c *gin.Context) uint {
	return c.MustGet(middleware.ContextClientID).(uint)
}

// currentUserID is nil on portal routes.
func currentUserID(c *gin.Context) *uint {
	v, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return nil
	}
	id := v.(uint)
	return &id
}

func paramID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		httperr.BadRequest(c, "invalid_id", "invalid "+name)
		return 0, false
	}
	return uint(n), true
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return false
	}
	return true
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate reports a unique index violation; the database is opened with
// TranslateError.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// errorStatus maps business codes to HTTP statuses. Codes not listed fall
// back to 400.
type errorStatus map[string]int

// respond writes err as a JSON error. Non-business errors are logged and
// reported as a generic 500 with the given code.
func (m errorStatus) respond(c *gin.Context, err error, internalCode string) {
	if code := httperr.CodeOf(err); code != "" {
		status, ok := m[code]
		if !ok {
			status = http.StatusBadRequest
		}
		httperr.Write(c, status, code, messageFor(code))
		return
	}

	zap.L().Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("code", internalCode),
		zap.Error(err),
	)
	httperr.Internal(c, internalCode, "Something went wrong. Please try again.")
}

var messages = map[string]string{
	"incomplete_booking":     "Service, date and time are required.",
	"invalid_date_or_time":   "Invalid date or time.",
	"invalid_date":           "Invalid date.",
	"too_soon":               "That time is too soon to book.",
	"outside_business_hours": "That time is outside business hours.",
	"slot_unavailable":       "That time slot is no longer available.",
	"invalid_state":          "The booking cannot change to that status.",
	"booking_not_found":      "Booking not found.",
	"service_not_found":      "Service not found.",
	"client_not_found":       "Client not found.",
	"client_inactive":        "Client is inactive.",
	"employee_not_found":     "Employee not found.",
	"employee_inactive":      "Employee is not active.",
	"team_not_found":         "Team not found.",
	"promotion_not_found":    "Promotion code not found.",
	"promotion_expired":      "Promotion code has expired.",
	"invalid_room_count":     "Bedrooms and bathrooms must be between 0 and 20.",
	"invalid_recurrence":     "Unknown recurrence.",
	"invoice_not_found":      "Invoice not found.",
	"invoice_already_paid":   "Invoice is already paid.",
	"already_invoiced":       "The booking already has an invoice.",
	"invalid_status":         "Invalid status.",
	"payments_disabled":      "Online payment is not available.",
	"storage_disabled":       "File uploads are not available.",
	"invalid_image":          "The file is not a supported image.",
	"invalid_credentials":    "Invalid email or password.",
	"weak_password":          "Password must have at least 6 characters.",
}

func messageFor(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return code
}
