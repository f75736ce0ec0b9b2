package handlers

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/dashboard"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/employee"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/imaging"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/storage"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
	ucBooking "github.com/BruksfildServices01/cleaning-scheduler/internal/usecase/booking"
)

const (
	maxPhotoBytes    = 5 << 20
	maxDocumentBytes = 10 << 20
	presignTTL       = 15 * time.Minute
)

var employeeErrors = errorStatus{
	"employee_not_found":           http.StatusNotFound,
	"document_not_found":           http.StatusNotFound,
	"training_not_found":           http.StatusNotFound,
	"time_entry_not_found":         http.StatusNotFound,
	"storage_disabled":             http.StatusServiceUnavailable,
	"termination_details_required": http.StatusUnprocessableEntity,
	"termination_before_start":     http.StatusUnprocessableEntity,
	"invalid_image":                http.StatusUnsupportedMediaType,
}

type EmployeeHandler struct {
	db        *gorm.DB
	store     storage.Store
	bookings  *ucBooking.ListBookings
	audit     *audit.Dispatcher
	dashboard *dashboard.Service
	now       func() time.Time
}

func NewEmployeeHandler(
	db *gorm.DB,
	store storage.Store,
	bookings *ucBooking.ListBookings,
	audit *audit.Dispatcher,
	dash *dashboard.Service,
) *EmployeeHandler {
	return &EmployeeHandler{
		db:        db,
		store:     store,
		bookings:  bookings,
		audit:     audit,
		dashboard: dash,
		now:       time.Now,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateEmployeeRequest struct {
	Name        string  `json:"name" binding:"required"`
	Role        string  `json:"role"`
	Email       string  `json:"email" binding:"omitempty,email"`
	Phone       string  `json:"phone"`
	HourlyRate  float64 `json:"hourly_rate" binding:"min=0"`
	StartDate   string  `json:"start_date" binding:"required"`
	Performance int     `json:"performance"`
}

type UpdateEmployeeRequest struct {
	Name        *string  `json:"name"`
	Role        *string  `json:"role"`
	Email       *string  `json:"email"`
	Phone       *string  `json:"phone"`
	HourlyRate  *float64 `json:"hourly_rate"`
	StartDate   *string  `json:"start_date"`
	Performance *int     `json:"performance"`
}

type EmploymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
	Date   string `json:"date"`
}

type employeeView struct {
	models.Employee
	PhotoURL string `json:"photo_url,omitempty"`
}

// ======================================================
// HELPERS
// ======================================================

func (h *EmployeeHandler) find(c *gin.Context) (*models.Employee, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	var emp models.Employee
	if err := h.db.Where("id = ? AND company_id = ?", id, companyID(c)).First(&emp).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "employee_not_found", messageFor("employee_not_found"))
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_employee", "Could not load the employee.")
		return nil, false
	}
	return &emp, true
}

func (h *EmployeeHandler) view(c *gin.Context, e models.Employee) employeeView {
	v := employeeView{Employee: e}
	if e.PhotoKey != "" {
		if url, err := h.store.PresignGet(c.Request.Context(), e.PhotoKey, presignTTL); err == nil {
			v.PhotoURL = url
		}
	}
	return v
}

func (h *EmployeeHandler) companyLocation(c *gin.Context) *time.Location {
	var company models.Company
	if err := h.db.Select("id", "timezone").First(&company, companyID(c)).Error; err != nil {
		return timezone.Location("")
	}
	return timezone.Location(company.Timezone)
}

func parseDay(loc *time.Location, s string) (time.Time, bool) {
	t, err := time.ParseInLocation(timezone.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// ======================================================
// CRUD
// ======================================================

func (h *EmployeeHandler) List(c *gin.Context) {
	q := h.db.Where("company_id = ?", companyID(c))

	if status := strings.TrimSpace(c.Query("status")); status != "" && status != "all" {
		if !domain.ValidStatus(status) {
			httperr.BadRequest(c, "invalid_status", messageFor("invalid_status"))
			return
		}
		q = q.Where("employment_status = ?", status)
	}
	if query := strings.ToLower(strings.TrimSpace(c.Query("query"))); query != "" {
		like := "%" + query + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(role) LIKE ?)", like, like, like)
	}

	var employees []models.Employee
	if err := q.Order("name ASC").Find(&employees).Error; err != nil {
		httperr.Internal(c, "failed_to_list_employees", "Could not load employees.")
		return
	}

	out := make([]employeeView, 0, len(employees))
	for _, e := range employees {
		out = append(out, h.view(c, e))
	}
	c.JSON(http.StatusOK, out)
}

func (h *EmployeeHandler) Get(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	if err := h.db.
		Preload("Documents").
		Preload("Training").
		Preload("TimeEntries", func(db *gorm.DB) *gorm.DB { return db.Order("work_date DESC") }).
		First(emp, emp.ID).Error; err != nil {
		httperr.Internal(c, "failed_to_get_employee", "Could not load the employee.")
		return
	}
	c.JSON(http.StatusOK, h.view(c, *emp))
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	start, ok := parseDay(h.companyLocation(c), req.StartDate)
	if !ok {
		httperr.BadRequest(c, "invalid_date", messageFor("invalid_date"))
		return
	}
	if err := domain.ValidatePerformance(req.Performance); err != nil {
		employeeErrors.respond(c, err, "failed_to_create_employee")
		return
	}

	emp := models.Employee{
		CompanyID:        companyID(c),
		Name:             strings.TrimSpace(req.Name),
		Role:             req.Role,
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:            req.Phone,
		HourlyRate:       req.HourlyRate,
		StartDate:        start,
		Performance:      req.Performance,
		EmploymentStatus: domain.StatusActive,
	}
	if err := h.db.Create(&emp).Error; err != nil {
		httperr.Internal(c, "failed_to_create_employee", "Could not create the employee.")
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), emp.CompanyID, 0)
	writeAudit(h.audit, c, "employee_created", "employee", &emp.ID, nil)
	c.JSON(http.StatusCreated, h.view(c, emp))
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}

	var req UpdateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name != nil {
		emp.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		emp.Role = *req.Role
	}
	if req.Email != nil {
		emp.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		emp.Phone = *req.Phone
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			httperr.BadRequest(c, "invalid_hourly_rate", "Hourly rate cannot be negative.")
			return
		}
		emp.HourlyRate = *req.HourlyRate
	}
	if req.StartDate != nil {
		start, ok := parseDay(h.companyLocation(c), *req.StartDate)
		if !ok {
			httperr.BadRequest(c, "invalid_date", messageFor("invalid_date"))
			return
		}
		emp.StartDate = start
	}
	if req.Performance != nil {
		if err := domain.ValidatePerformance(*req.Performance); err != nil {
			employeeErrors.respond(c, err, "failed_to_update_employee")
			return
		}
		emp.Performance = *req.Performance
	}

	if err := h.db.Omit("Documents", "Training", "TimeEntries").Save(emp).Error; err != nil {
		httperr.Internal(c, "failed_to_update_employee", "Could not save the employee.")
		return
	}

	writeAudit(h.audit, c, "employee_updated", "employee", &emp.ID, nil)
	c.JSON(http.StatusOK, h.view(c, *emp))
}

// ChangeStatus moves the employee between active and the leaving statuses.
func (h *EmployeeHandler) ChangeStatus(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}

	var req EmploymentStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	var date *time.Time
	if req.Date != "" {
		d, ok := parseDay(h.companyLocation(c), req.Date)
		if !ok {
			httperr.BadRequest(c, "invalid_date", messageFor("invalid_date"))
			return
		}
		date = &d
	}

	if err := domain.ChangeStatus(emp, req.Status, req.Reason, date); err != nil {
		employeeErrors.respond(c, err, "failed_to_update_employee")
		return
	}

	if err := h.db.Model(emp).Select("employment_status", "termination_date", "termination_reason").
		Updates(emp).Error; err != nil {
		httperr.Internal(c, "failed_to_update_employee", "Could not save the employee.")
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), emp.CompanyID, 0)
	writeAudit(h.audit, c, "employee_status_changed", "employee", &emp.ID, gin.H{"status": emp.EmploymentStatus})
	c.JSON(http.StatusOK, h.view(c, *emp))
}

// UploadPhoto stores a 256px webp thumbnail of the uploaded image.
func (h *EmployeeHandler) UploadPhoto(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		httperr.BadRequest(c, "photo_required", "Upload an image in the photo field.")
		return
	}
	if fh.Size > maxPhotoBytes {
		httperr.BadRequest(c, "file_too_large", "Photos are limited to 5 MB.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_image", messageFor("invalid_image"))
		return
	}
	defer f.Close()

	thumb, err := imaging.Thumbnail(f, imaging.DefaultSize)
	if err != nil {
		employeeErrors.respond(c, err, "failed_to_process_photo")
		return
	}

	ctx := c.Request.Context()
	key := storage.Key(emp.CompanyID, "employees", idString(emp.ID), "photo", storage.UniqueName("photo.webp"))
	if err := h.store.Put(ctx, key, imaging.ContentType, bytes.NewReader(thumb), int64(len(thumb))); err != nil {
		employeeErrors.respond(c, err, "failed_to_store_photo")
		return
	}

	old := emp.PhotoKey
	if err := h.db.Model(emp).Update("photo_key", key).Error; err != nil {
		httperr.Internal(c, "failed_to_update_employee", "Could not save the employee.")
		return
	}
	emp.PhotoKey = key
	if old != "" {
		_ = h.store.Delete(ctx, old)
	}

	writeAudit(h.audit, c, "employee_photo_uploaded", "employee", &emp.ID, nil)
	c.JSON(http.StatusOK, h.view(c, *emp))
}
