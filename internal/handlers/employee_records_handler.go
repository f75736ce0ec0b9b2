package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	bookingDomain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/employee"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/dto"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/storage"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/money"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

// ======================================================
// DOCUMENTS
// ======================================================

type DocumentRequest struct {
	Name   string `json:"name" form:"name" binding:"required"`
	Type   string `json:"type" form:"type"`
	URL    string `json:"url" form:"url"`
	Status string `json:"status" form:"status"`
}

type DocumentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *EmployeeHandler) presignDocuments(c *gin.Context, docs []models.EmployeeDocument) {
	for i := range docs {
		if docs[i].StorageKey == "" {
			continue
		}
		if url, err := h.store.PresignGet(c.Request.Context(), docs[i].StorageKey, presignTTL); err == nil {
			docs[i].URL = url
		}
	}
}

func (h *EmployeeHandler) ListDocuments(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	var docs []models.EmployeeDocument
	if err := h.db.Where("employee_id = ?", emp.ID).Order("upload_date DESC").Find(&docs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_documents", "Could not load documents.")
		return
	}
	h.presignDocuments(c, docs)
	if docs == nil {
		docs = []models.EmployeeDocument{}
	}
	c.JSON(http.StatusOK, docs)
}

// AddDocument accepts either a multipart upload in the file field or a JSON
// body pointing at an external URL.
func (h *EmployeeHandler) AddDocument(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}

	var req DocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}
	status := req.Status
	if status == "" {
		status = domain.DocumentPending
	}
	if !domain.ValidDocumentStatus(status) {
		httperr.BadRequest(c, "invalid_status", messageFor("invalid_status"))
		return
	}

	doc := models.EmployeeDocument{
		EmployeeID: emp.ID,
		Name:       strings.TrimSpace(req.Name),
		Type:       req.Type,
		UploadDate: h.now().UTC(),
		URL:        req.URL,
		Status:     status,
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		key, ok := h.upload(c, emp, "file", "documents")
		if !ok {
			return
		}
		doc.StorageKey = key
		doc.URL = ""
	} else if doc.URL == "" {
		httperr.BadRequest(c, "document_source_required", "Upload a file or provide a URL.")
		return
	}

	if err := h.db.Create(&doc).Error; err != nil {
		httperr.Internal(c, "failed_to_create_document", "Could not save the document.")
		return
	}

	writeAudit(h.audit, c, "employee_document_added", "employee", &emp.ID, gin.H{"document_id": doc.ID})
	docs := []models.EmployeeDocument{doc}
	h.presignDocuments(c, docs)
	c.JSON(http.StatusCreated, docs[0])
}

// upload stores the multipart file in field under the employee's folder.
func (h *EmployeeHandler) upload(c *gin.Context, emp *models.Employee, field, folder string) (string, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		httperr.BadRequest(c, "file_required", "Upload a file in the "+field+" field.")
		return "", false
	}
	if fh.Size > maxDocumentBytes {
		httperr.BadRequest(c, "file_too_large", "Files are limited to 10 MB.")
		return "", false
	}
	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "file_required", "Could not read the upload.")
		return "", false
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.Key(emp.CompanyID, "employees", idString(emp.ID), folder, storage.UniqueName(fh.Filename))
	if err := h.store.Put(c.Request.Context(), key, contentType, f, fh.Size); err != nil {
		employeeErrors.respond(c, err, "failed_to_store_file")
		return "", false
	}
	return key, true
}

func (h *EmployeeHandler) findDocument(c *gin.Context, emp *models.Employee) (*models.EmployeeDocument, bool) {
	id, ok := paramID(c, "docID")
	if !ok {
		return nil, false
	}
	var doc models.EmployeeDocument
	if err := h.db.Where("id = ? AND employee_id = ?", id, emp.ID).First(&doc).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "document_not_found", "Document not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_document", "Could not load the document.")
		return nil, false
	}
	return &doc, true
}

func (h *EmployeeHandler) UpdateDocumentStatus(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	doc, ok := h.findDocument(c, emp)
	if !ok {
		return
	}

	var req DocumentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if !domain.ValidDocumentStatus(req.Status) {
		httperr.BadRequest(c, "invalid_status", messageFor("invalid_status"))
		return
	}

	if err := h.db.Model(doc).Update("status", req.Status).Error; err != nil {
		httperr.Internal(c, "failed_to_update_document", "Could not save the document.")
		return
	}
	doc.Status = req.Status
	c.JSON(http.StatusOK, doc)
}

func (h *EmployeeHandler) DeleteDocument(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	doc, ok := h.findDocument(c, emp)
	if !ok {
		return
	}

	if err := h.db.Delete(doc).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_document", "Could not delete the document.")
		return
	}
	if doc.StorageKey != "" {
		_ = h.store.Delete(c.Request.Context(), doc.StorageKey)
	}

	writeAudit(h.audit, c, "employee_document_deleted", "employee", &emp.ID, gin.H{"document_id": doc.ID})
	c.Status(http.StatusNoContent)
}

// ======================================================
// TRAINING
// ======================================================

type TrainingRequest struct {
	CourseName     string `json:"course_name" binding:"required"`
	CompletionDate string `json:"completion_date"`
	ExpiryDate     string `json:"expiry_date"`
	Status         string `json:"status"`
	CertificateURL string `json:"certificate_url"`
}

func (h *EmployeeHandler) fillTraining(c *gin.Context, r *models.TrainingRecord, req TrainingRequest) bool {
	loc := h.companyLocation(c)

	r.CourseName = strings.TrimSpace(req.CourseName)
	r.CertificateURL = req.CertificateURL
	r.CompletionDate, r.ExpiryDate = nil, nil

	if req.CompletionDate != "" {
		d, ok := parseDay(loc, req.CompletionDate)
		if !ok {
			httperr.BadRequest(c, "invalid_date", messageFor("invalid_date"))
			return false
		}
		r.CompletionDate = &d
	}
	if req.ExpiryDate != "" {
		d, ok := parseDay(loc, req.ExpiryDate)
		if !ok {
			httperr.BadRequest(c, "invalid_date", messageFor("invalid_date"))
			return false
		}
		r.ExpiryDate = &d
	}
	if r.CompletionDate != nil && r.ExpiryDate != nil && r.ExpiryDate.Before(*r.CompletionDate) {
		httperr.BadRequest(c, "expiry_before_completion", "Expiry must be after completion.")
		return false
	}

	switch {
	case req.Status == "":
		r.Status = domain.TrainingStatus(*r, h.now())
	case domain.ValidTrainingStatus(req.Status):
		r.Status = req.Status
	default:
		httperr.BadRequest(c, "invalid_status", messageFor("invalid_status"))
		return false
	}
	return true
}

func (h *EmployeeHandler) findTraining(c *gin.Context, emp *models.Employee) (*models.TrainingRecord, bool) {
	id, ok := paramID(c, "recordID")
	if !ok {
		return nil, false
	}
	var rec models.TrainingRecord
	if err := h.db.Where("id = ? AND employee_id = ?", id, emp.ID).First(&rec).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "training_not_found", "Training record not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_training", "Could not load the training record.")
		return nil, false
	}
	return &rec, true
}

func (h *EmployeeHandler) presignTraining(c *gin.Context, recs []models.TrainingRecord) {
	for i := range recs {
		if recs[i].CertificateKey == "" {
			continue
		}
		if url, err := h.store.PresignGet(c.Request.Context(), recs[i].CertificateKey, presignTTL); err == nil {
			recs[i].CertificateURL = url
		}
	}
}

func (h *EmployeeHandler) ListTraining(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	var recs []models.TrainingRecord
	if err := h.db.Where("employee_id = ?", emp.ID).Order("id DESC").Find(&recs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_training", "Could not load training records.")
		return
	}
	h.presignTraining(c, recs)
	if recs == nil {
		recs = []models.TrainingRecord{}
	}
	c.JSON(http.StatusOK, recs)
}

func (h *EmployeeHandler) AddTraining(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	var req TrainingRequest
	if !bindJSON(c, &req) {
		return
	}

	rec := models.TrainingRecord{EmployeeID: emp.ID}
	if !h.fillTraining(c, &rec, req) {
		return
	}
	if err := h.db.Create(&rec).Error; err != nil {
		httperr.Internal(c, "failed_to_create_training", "Could not save the training record.")
		return
	}

	writeAudit(h.audit, c, "training_added", "employee", &emp.ID, gin.H{"training_id": rec.ID})
	c.JSON(http.StatusCreated, rec)
}

func (h *EmployeeHandler) UpdateTraining(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	rec, ok := h.findTraining(c, emp)
	if !ok {
		return
	}
	var req TrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.fillTraining(c, rec, req) {
		return
	}
	if err := h.db.Save(rec).Error; err != nil {
		httperr.Internal(c, "failed_to_update_training", "Could not save the training record.")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EmployeeHandler) DeleteTraining(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	rec, ok := h.findTraining(c, emp)
	if !ok {
		return
	}
	if err := h.db.Delete(rec).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_training", "Could not delete the training record.")
		return
	}
	if rec.CertificateKey != "" {
		_ = h.store.Delete(c.Request.Context(), rec.CertificateKey)
	}
	c.Status(http.StatusNoContent)
}

func (h *EmployeeHandler) UploadCertificate(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	rec, ok := h.findTraining(c, emp)
	if !ok {
		return
	}

	key, ok := h.upload(c, emp, "certificate", "certificates")
	if !ok {
		return
	}
	old := rec.CertificateKey
	if err := h.db.Model(rec).Updates(map[string]any{"certificate_key": key, "certificate_url": ""}).Error; err != nil {
		httperr.Internal(c, "failed_to_update_training", "Could not save the training record.")
		return
	}
	rec.CertificateKey = key
	if old != "" {
		_ = h.store.Delete(c.Request.Context(), old)
	}

	recs := []models.TrainingRecord{*rec}
	h.presignTraining(c, recs)
	c.JSON(http.StatusOK, recs[0])
}

// ======================================================
// TIME ENTRIES
// ======================================================

type TimeEntryRequest struct {
	Date          string `json:"date" binding:"required"`
	StartTime     string `json:"start_time" binding:"required"`
	EndTime       string `json:"end_time" binding:"required"`
	BreakDuration int    `json:"break_duration"`
	JobID         *uint  `json:"job_id"`
	JobName       string `json:"job_name"`
}

type TimeEntryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type timeEntryView struct {
	models.TimeEntry
	Hours float64 `json:"hours"`
}

func entryView(e models.TimeEntry) timeEntryView {
	hrs, _ := domain.Hours(e)
	return timeEntryView{TimeEntry: e, Hours: hrs}
}

func (h *EmployeeHandler) findEntry(c *gin.Context, emp *models.Employee) (*models.TimeEntry, bool) {
	id, ok := paramID(c, "entryID")
	if !ok {
		return nil, false
	}
	var e models.TimeEntry
	if err := h.db.Where("id = ? AND employee_id = ?", id, emp.ID).First(&e).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "time_entry_not_found", "Time entry not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_time_entry", "Could not load the time entry.")
		return nil, false
	}
	return &e, true
}

func (h *EmployeeHandler) fillEntry(c *gin.Context, e *models.TimeEntry, req TimeEntryRequest) bool {
	e.WorkDate = req.Date
	e.StartTime = req.StartTime
	e.EndTime = req.EndTime
	e.BreakMinutes = req.BreakDuration
	e.BookingID = req.JobID
	e.JobName = req.JobName

	if _, err := domain.Hours(*e); err != nil {
		employeeErrors.respond(c, err, "invalid_time_entry")
		return false
	}
	if e.BookingID != nil {
		var count int64
		if err := h.db.Model(&models.Booking{}).
			Where("id = ? AND company_id = ?", *e.BookingID, companyID(c)).
			Count(&count).Error; err != nil {
			httperr.Internal(c, "failed_to_save_time_entry", "Could not check the booking.")
			return false
		}
		if count == 0 {
			httperr.BadRequest(c, "booking_not_found", messageFor("booking_not_found"))
			return false
		}
	}
	return true
}

func (h *EmployeeHandler) ListTimeEntries(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	q := h.db.Where("employee_id = ?", emp.ID)
	if month := c.Query("month"); month != "" {
		q = q.Where("work_date LIKE ?", month+"-%")
	}
	var entries []models.TimeEntry
	if err := q.Order("work_date DESC, start_time DESC").Find(&entries).Error; err != nil {
		httperr.Internal(c, "failed_to_list_time_entries", "Could not load time entries.")
		return
	}
	out := make([]timeEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView(e))
	}
	c.JSON(http.StatusOK, out)
}

func (h *EmployeeHandler) AddTimeEntry(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	var req TimeEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry := models.TimeEntry{EmployeeID: emp.ID, Status: domain.EntryPending}
	if !h.fillEntry(c, &entry, req) {
		return
	}
	if err := h.db.Create(&entry).Error; err != nil {
		httperr.Internal(c, "failed_to_create_time_entry", "Could not save the time entry.")
		return
	}
	c.JSON(http.StatusCreated, entryView(entry))
}

func (h *EmployeeHandler) UpdateTimeEntry(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	entry, ok := h.findEntry(c, emp)
	if !ok {
		return
	}
	var req TimeEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.fillEntry(c, entry, req) {
		return
	}
	if err := h.db.Save(entry).Error; err != nil {
		httperr.Internal(c, "failed_to_update_time_entry", "Could not save the time entry.")
		return
	}
	c.JSON(http.StatusOK, entryView(*entry))
}

func (h *EmployeeHandler) SetTimeEntryStatus(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	entry, ok := h.findEntry(c, emp)
	if !ok {
		return
	}
	var req TimeEntryStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if !domain.ValidEntryStatus(req.Status) {
		httperr.BadRequest(c, "invalid_status", messageFor("invalid_status"))
		return
	}
	entry.Status = req.Status
	if err := h.db.Model(entry).Update("status", req.Status).Error; err != nil {
		httperr.Internal(c, "failed_to_update_time_entry", "Could not save the time entry.")
		return
	}

	writeAudit(h.audit, c, "time_entry_"+req.Status, "employee", &emp.ID, gin.H{"time_entry_id": entry.ID})
	c.JSON(http.StatusOK, entryView(*entry))
}

func (h *EmployeeHandler) DeleteTimeEntry(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}
	entry, ok := h.findEntry(c, emp)
	if !ok {
		return
	}
	if err := h.db.Delete(entry).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_time_entry", "Could not delete the time entry.")
		return
	}
	c.Status(http.StatusNoContent)
}

// ======================================================
// PAYROLL / SCHEDULE
// ======================================================

// Payroll reports approved hours and earnings for ?month=YYYY-MM, defaulting
// to the current month in the company timezone.
func (h *EmployeeHandler) Payroll(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}

	month := c.Query("month")
	if month == "" {
		month = h.now().In(h.companyLocation(c)).Format("2006-01")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		httperr.BadRequest(c, "invalid_month", "Month must be YYYY-MM.")
		return
	}

	var entries []models.TimeEntry
	if err := h.db.Where("employee_id = ? AND work_date LIKE ?", emp.ID, month+"-%").Find(&entries).Error; err != nil {
		httperr.Internal(c, "failed_to_compute_payroll", "Could not compute payroll.")
		return
	}
	c.JSON(http.StatusOK, domain.ComputePayroll(*emp, entries, month))
}

type scheduleDay struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
	Jobs  int     `json:"jobs"`
}

// Schedule lists the active bookings assigned to the employee, directly or
// through one of their teams, between ?from and ?to.
func (h *EmployeeHandler) Schedule(c *gin.Context) {
	emp, ok := h.find(c)
	if !ok {
		return
	}

	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		httperr.BadRequest(c, "invalid_range", "from and to are required (YYYY-MM-DD).")
		return
	}

	ctx := c.Request.Context()
	filters := []bookingDomain.Filter{{CompanyID: emp.CompanyID, EmployeeID: emp.ID}}

	var teamIDs []uint
	if err := h.db.Table("team_members").Where("employee_id = ?", emp.ID).Pluck("team_id", &teamIDs).Error; err != nil {
		httperr.Internal(c, "failed_to_load_schedule", "Could not load the schedule.")
		return
	}
	for _, id := range teamIDs {
		filters = append(filters, bookingDomain.Filter{CompanyID: emp.CompanyID, TeamID: id})
	}

	seen := map[uint]bool{}
	var jobs []dto.BookingListDTO
	for _, f := range filters {
		list, err := h.bookings.ByRange(ctx, f, from, to)
		if err != nil {
			bookingErrors.respond(c, err, "failed_to_load_schedule")
			return
		}
		for _, b := range list {
			if seen[b.ID] || !bookingDomain.Status(b.Status).Active() {
				continue
			}
			seen[b.ID] = true
			jobs = append(jobs, b)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].StartTime.Before(jobs[j].StartTime) })

	loc := h.companyLocation(c)
	byDay := map[string]*scheduleDay{}
	var days []*scheduleDay
	for _, b := range jobs {
		key := b.StartTime.In(loc).Format(timezone.DateLayout)
		d, ok := byDay[key]
		if !ok {
			d = &scheduleDay{Date: key}
			byDay[key] = d
			days = append(days, d)
		}
		d.Hours = money.Round(d.Hours + b.EndTime.Sub(b.StartTime).Hours())
		d.Jobs++
	}

	if jobs == nil {
		jobs = []dto.BookingListDTO{}
	}
	if days == nil {
		days = []*scheduleDay{}
	}
	c.JSON(http.StatusOK, gin.H{
		"employee_id": emp.ID,
		"bookings":    jobs,
		"days":        days,
	})
}

