package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/dashboard"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	ucInvoice "github.com/BruksfildServices01/cleaning-scheduler/internal/usecase/invoice"
)

var invoiceErrors = errorStatus{
	"invoice_not_found":    http.StatusNotFound,
	"booking_not_found":    http.StatusNotFound,
	"client_not_found":     http.StatusNotFound,
	"service_not_found":    http.StatusNotFound,
	"already_invoiced":     http.StatusConflict,
	"invoice_already_paid": http.StatusConflict,
	"payments_disabled":    http.StatusServiceUnavailable,
}

type InvoiceUseCases struct {
	Generate *ucInvoice.GenerateInvoice
	Status   *ucInvoice.UpdateInvoiceStatus
	Query    *ucInvoice.QueryInvoices
	Checkout *ucInvoice.Checkout
	Confirm  *ucInvoice.ConfirmPayment
}

type InvoiceHandler struct {
	uc        InvoiceUseCases
	dashboard *dashboard.Service
}

func NewInvoiceHandler(uc InvoiceUseCases, dash *dashboard.Service) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, dashboard: dash}
}

// --------- Requests ---------

type GenerateInvoiceRequest struct {
	BookingID uint `json:"booking_id"`

	ClientID    uint   `json:"client_id"`
	ServiceID   uint   `json:"service_id"`
	ServiceDate string `json:"service_date"`
	Bedrooms    int    `json:"bedrooms"`
	Bathrooms   int    `json:"bathrooms"`

	AdditionalItems []domain.Item `json:"additional_items"`
	DiscountPercent float64       `json:"discount_percent"`
	DueDate         string        `json:"due_date"`
	Notes           string        `json:"notes"`
}

type InvoiceStatusRequest struct {
	Status           string `json:"status" binding:"required"`
	PaymentReference string `json:"payment_reference"`
}

type MarkPaidRequest struct {
	PaymentReference string `json:"payment_reference"`
}

func (h *InvoiceHandler) touched(c *gin.Context, inv *models.Invoice) {
	h.dashboard.Invalidate(c.Request.Context(), inv.CompanyID, inv.ClientID)
}

// --------- Staff ---------

func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req GenerateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	inv, err := h.uc.Generate.Execute(c.Request.Context(), ucInvoice.GenerateInvoiceInput{
		CompanyID:       companyID(c),
		UserID:          currentUserID(c),
		BookingID:       req.BookingID,
		ClientID:        req.ClientID,
		ServiceID:       req.ServiceID,
		ServiceDate:     req.ServiceDate,
		Bedrooms:        req.Bedrooms,
		Bathrooms:       req.Bathrooms,
		Additional:      req.AdditionalItems,
		DiscountPercent: req.DiscountPercent,
		DueDate:         req.DueDate,
		Notes:           req.Notes,
	})
	if err != nil {
		invoiceErrors.respond(c, err, "failed_to_generate_invoice")
		return
	}

	h.touched(c, inv)
	c.JSON(http.StatusCreated, inv)
}

func (h *InvoiceHandler) List(c *gin.Context) {
	f := domain.Filter{
		CompanyID: companyID(c),
		Status:    c.Query("status"),
		Query:     strings.TrimSpace(c.Query("query")),
	}
	if v := c.Query("client_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_client_id", "invalid client_id")
			return
		}
		f.ClientID = uint(n)
	}
	if v := c.Query("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}

	invoices, err := h.uc.Query.List(c.Request.Context(), f)
	if err != nil {
		invoiceErrors.respond(c, err, "failed_to_list_invoices")
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inv, err := h.uc.Query.Get(c.Request.Context(), companyID(c), 0, id)
	if err != nil {
		invoiceErrors.respond(c, err, "failed_to_get_invoice")
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req InvoiceStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	h.setStatus(c, id, req.Status, req.PaymentReference)
}

func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req MarkPaidRequest
	_ = c.ShouldBindJSON(&req)
	h.setStatus(c, id, string(domain.StatusPaid), req.PaymentReference)
}

func (h *InvoiceHandler) setStatus(c *gin.Context, id uint, status, reference string) {
	inv, err := h.uc.Status.Execute(c.Request.Context(), companyID(c), currentUserID(c), id, status, reference)
	if err != nil {
		invoiceErrors.respond(c, err, "failed_to_update_invoice")
		return
	}
	h.touched(c, inv)
	c.JSON(http.StatusOK, inv)
}

// --------- Payment webhook ---------

type paymentNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// PaymentWebhook receives provider notifications. The payment is always
// re-read from the provider, so the body is only used for its id.
func (h *InvoiceHandler) PaymentWebhook(c *gin.Context) {
	var n paymentNotification
	_ = c.ShouldBindJSON(&n)

	kind := n.Type
	if kind == "" {
		kind = c.Query("type")
	}
	id := n.Data.ID
	if id == "" {
		id = c.Query("data.id")
	}

	if kind != "payment" || id == "" {
		c.Status(http.StatusOK)
		return
	}

	inv, err := h.uc.Confirm.Execute(c.Request.Context(), id)
	if err != nil {
		zap.L().Warn("payment webhook failed", zap.String("payment_id", id), zap.Error(err))
		if httperr.CodeOf(err) != "" {
			c.Status(http.StatusOK)
			return
		}
		httperr.Internal(c, "payment_webhook_failed", "Could not process the notification.")
		return
	}
	if inv != nil {
		h.touched(c, inv)
	}
	c.Status(http.StatusOK)
}
