package routes

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/auth"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/testutil"
)

// upload posts a multipart form with one file under field plus any extra
// form values.
func (e *env) upload(path, token, field, filename string, content []byte, values map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(e.t, mw.WriteField(k, v))
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(e.t, err)
		_, err = fw.Write(content)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type portalAccount struct {
	Client models.Client  `json:"client"`
	Tokens auth.TokenPair `json:"tokens"`
}

func (e *env) signup(slug, email string) portalAccount {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/portal/auth/signup", "", gin.H{
		"company_slug": slug, "name": "Jane", "email": email, "password": "secret1",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[portalAccount](e.t, w)
}

func TestTimeEntries(t *testing.T) {
	e := newEnv(t)
	reg := e.register("sparkle")
	token := reg.Tokens.AccessToken
	emp := testutil.Employee(t, e.db, reg.Company.ID, "Maria Silva")
	base := fmt.Sprintf("/api/employees/%d/time-entries", emp.ID)

	cases := []struct {
		name string
		body gin.H
		code string
	}{
		{"end before start", gin.H{"date": "2025-03-04", "start_time": "09:00", "end_time": "08:00"}, "end_before_start"},
		{"equal bounds", gin.H{"date": "2025-03-04", "start_time": "09:00", "end_time": "09:00"}, "end_before_start"},
		{"break covers span", gin.H{"date": "2025-03-04", "start_time": "09:00", "end_time": "10:00", "break_duration": 60}, "invalid_break"},
		{"negative break", gin.H{"date": "2025-03-04", "start_time": "09:00", "end_time": "10:00", "break_duration": -5}, "invalid_break"},
		{"bad clock", gin.H{"date": "2025-03-04", "start_time": "9am", "end_time": "10:00"}, "invalid_time"},
		{"bad date", gin.H{"date": "04/03/2025", "start_time": "09:00", "end_time": "10:00"}, "invalid_date"},
		{"unknown job", gin.H{"date": "2025-03-04", "start_time": "09:00", "end_time": "10:00", "job_id": 999}, "booking_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(http.MethodPost, base, token, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}

	w := e.do(http.MethodPost, base, token, gin.H{
		"date": "2025-03-04", "start_time": "09:00", "end_time": "17:00", "break_duration": 30,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode[struct {
		ID     uint    `json:"id"`
		Status string  `json:"status"`
		Hours  float64 `json:"hours"`
	}](t, w)
	assert.Equal(t, "pending", entry.Status)
	assert.InDelta(t, 7.5, entry.Hours, 0.001)

	path := fmt.Sprintf("%s/%d", base, entry.ID)
	w = e.do(http.MethodPatch, path, token, gin.H{"date": "2025-03-04", "start_time": "12:00", "end_time": "11:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "end_before_start", errorCode(t, w))

	w = e.do(http.MethodPatch, path, token, gin.H{"date": "2025-03-04", "start_time": "10:00", "end_time": "12:00", "break_duration": 120})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_break", errorCode(t, w))

	w = e.do(http.MethodPatch, path, token, gin.H{"date": "2025-03-04", "start_time": "10:00", "end_time": "14:00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"hours":4`)

	w = e.do(http.MethodPatch, path+"/status", token, gin.H{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_status", errorCode(t, w))

	w = e.do(http.MethodPatch, path+"/status", token, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"approved"`)

	w = e.do(http.MethodPatch, fmt.Sprintf("%s/%d/status", base, entry.ID+100), token, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "time_entry_not_found", errorCode(t, w))

	w = e.do(http.MethodGet, fmt.Sprintf("/api/employees/%d/payroll?month=2025-03", emp.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	payroll := decode[map[string]any](t, w)
	assert.InDelta(t, 4.0, payroll["hours"], 0.001)
	assert.InDelta(t, 80.0, payroll["earnings"], 0.001)
}

func TestEmployeeDocuments(t *testing.T) {
	e := newEnv(t)
	reg := e.register("sparkle")
	token := reg.Tokens.AccessToken
	emp := testutil.Employee(t, e.db, reg.Company.ID, "Maria Silva")
	path := fmt.Sprintf("/api/employees/%d/documents", emp.ID)

	w := e.do(http.MethodPost, path, token, gin.H{"name": "Contract"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "document_source_required", errorCode(t, w))

	w = e.do(http.MethodPost, path, token, gin.H{"name": "Contract", "url": "https://docs.example.com/c.pdf", "status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_status", errorCode(t, w))

	w = e.do(http.MethodPost, path, token, gin.H{"name": "Contract", "type": "contract", "url": "https://docs.example.com/c.pdf"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	linked := decode[models.EmployeeDocument](t, w)
	assert.Equal(t, "https://docs.example.com/c.pdf", linked.URL)
	assert.Equal(t, "pending", linked.Status)

	w = e.upload(path, token, "", "", nil, map[string]string{"name": "ID card"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file_required", errorCode(t, w))

	w = e.upload(path, token, "file", "id.pdf", []byte("%PDF-1.4"), map[string]string{"name": "ID card", "status": "valid"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	uploaded := decode[models.EmployeeDocument](t, w)
	assert.Equal(t, "valid", uploaded.Status)
	assert.Contains(t, uploaded.URL, "memory://")

	var stored models.EmployeeDocument
	require.NoError(t, e.db.First(&stored, uploaded.ID).Error)
	assert.NotEmpty(t, stored.StorageKey)
	assert.Empty(t, stored.URL)

	w = e.do(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.EmployeeDocument](t, w), 2)

	w = e.do(http.MethodDelete, fmt.Sprintf("%s/%d", path, uploaded.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTrainingCertificateUpload(t *testing.T) {
	e := newEnv(t)
	reg := e.register("sparkle")
	token := reg.Tokens.AccessToken
	emp := testutil.Employee(t, e.db, reg.Company.ID, "Maria Silva")
	base := fmt.Sprintf("/api/employees/%d/training", emp.ID)

	w := e.do(http.MethodPost, base, token, gin.H{
		"course_name": "Chemical safety", "completion_date": "2025-02-01", "expiry_date": "2025-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "expiry_before_completion", errorCode(t, w))

	w = e.do(http.MethodPost, base, token, gin.H{"course_name": "Chemical safety", "completion_date": "2025-02-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[models.TrainingRecord](t, w)

	certPath := fmt.Sprintf("%s/%d/certificate", base, rec.ID)
	w = e.upload(certPath, token, "file", "cert.pdf", []byte("%PDF-1.4"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file_required", errorCode(t, w))

	w = e.upload(fmt.Sprintf("%s/%d/certificate", base, rec.ID+100), token, "certificate", "cert.pdf", []byte("%PDF-1.4"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "training_not_found", errorCode(t, w))

	w = e.upload(certPath, token, "certificate", "cert.pdf", []byte("%PDF-1.4"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode[models.TrainingRecord](t, w).CertificateURL, "memory://")

	var stored models.TrainingRecord
	require.NoError(t, e.db.First(&stored, rec.ID).Error)
	assert.NotEmpty(t, stored.CertificateKey)
}

func TestEmploymentStatusChange(t *testing.T) {
	e := newEnv(t)
	reg := e.register("sparkle")
	token := reg.Tokens.AccessToken
	emp := testutil.Employee(t, e.db, reg.Company.ID, "Maria Silva")
	path := fmt.Sprintf("/api/employees/%d/status", emp.ID)

	cases := []struct {
		name   string
		body   gin.H
		status int
		code   string
	}{
		{"unknown status", gin.H{"status": "retired"}, http.StatusBadRequest, "invalid_status"},
		{"missing details", gin.H{"status": "terminated"}, http.StatusUnprocessableEntity, "termination_details_required"},
		{"missing reason", gin.H{"status": "resigned", "date": "2025-03-01"}, http.StatusUnprocessableEntity, "termination_details_required"},
		{"before start", gin.H{"status": "terminated", "reason": "misconduct", "date": "2023-12-31"}, http.StatusUnprocessableEntity, "termination_before_start"},
		{"bad date", gin.H{"status": "terminated", "reason": "misconduct", "date": "yesterday"}, http.StatusBadRequest, "invalid_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(http.MethodPatch, path, token, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}

	w := e.do(http.MethodPatch, path, token, gin.H{"status": "terminated", "reason": "contract ended", "date": "2025-03-01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.Employee](t, w)
	assert.Equal(t, "terminated", got.EmploymentStatus)
	assert.Equal(t, "contract ended", got.TerminationReason)
	require.NotNil(t, got.TerminationDate)

	w = e.do(http.MethodPatch, path, token, gin.H{"status": "active"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode[models.Employee](t, w)
	assert.Equal(t, "active", got.EmploymentStatus)
	assert.Nil(t, got.TerminationDate)
	assert.Empty(t, got.TerminationReason)
}

func TestReplaceBusinessHours(t *testing.T) {
	e := newEnv(t)
	token := e.register("sparkle").Tokens.AccessToken

	w := e.do(http.MethodPut, "/api/company/hours", token, gin.H{"days": []gin.H{
		{"weekday": 1, "open": "08:00", "close": "17:00"},
		{"weekday": 1, "open": "09:00", "close": "12:00"},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "duplicate_weekday", errorCode(t, w))

	for _, closeAt := range []string{"08:00", "07:30", "late"} {
		w = e.do(http.MethodPut, "/api/company/hours", token, gin.H{"days": []gin.H{
			{"weekday": 2, "open": "08:00", "close": closeAt},
		}})
		assert.Equal(t, http.StatusBadRequest, w.Code, closeAt)
		assert.Equal(t, "invalid_business_hours", errorCode(t, w), closeAt)
	}

	w = e.do(http.MethodPut, "/api/company/hours", token, gin.H{"days": []gin.H{
		{"weekday": 1, "open": "08:00", "close": "17:00"},
		{"weekday": 0, "closed": true},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/company/hours", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.BusinessHours](t, w), 2)
}

func TestScheduleCampaign(t *testing.T) {
	e := newEnv(t)
	token := e.register("sparkle").Tokens.AccessToken

	w := e.do(http.MethodPost, "/api/marketing/campaigns", token, gin.H{"name": "Spring", "type": "email"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	campaign := decode[models.Campaign](t, w)
	path := fmt.Sprintf("/api/marketing/campaigns/%d/schedule", campaign.ID)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	w = e.do(http.MethodPatch, path, token, gin.H{"send_date": past})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "send_date_in_past", errorCode(t, w))

	future := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	w = e.do(http.MethodPatch, path, token, gin.H{"send_date": future})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.CampaignScheduled, decode[models.Campaign](t, w).Status)

	require.NoError(t, e.db.Model(&models.Campaign{}).Where("id = ?", campaign.ID).Update("status", models.CampaignSent).Error)
	w = e.do(http.MethodPatch, path, token, gin.H{"send_date": future})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "campaign_already_sent", errorCode(t, w))
}

func TestCreateTeamRejectsInactiveLead(t *testing.T) {
	e := newEnv(t)
	reg := e.register("sparkle")
	token := reg.Tokens.AccessToken
	lead := testutil.Employee(t, e.db, reg.Company.ID, "Maria Silva")
	require.NoError(t, e.db.Model(&lead).Update("employment_status", "laid_off").Error)

	w := e.do(http.MethodPost, "/api/teams", token, gin.H{"name": "North", "lead_id": lead.ID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "employee_inactive", errorCode(t, w))

	w = e.do(http.MethodPost, "/api/teams", token, gin.H{"name": "North", "lead_id": lead.ID + 100})
	assert.Equal(t, "employee_not_found", errorCode(t, w))

	// inactive employees may still be listed as members
	active := testutil.Employee(t, e.db, reg.Company.ID, "Ana Costa")
	w = e.do(http.MethodPost, "/api/teams", token, gin.H{
		"name": "North", "lead_id": active.ID, "member_ids": []uint{lead.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode[models.Team](t, w).Members, 1)
}

func TestPromotionCodeIsUnique(t *testing.T) {
	e := newEnv(t)
	token := e.register("sparkle").Tokens.AccessToken
	body := gin.H{"code": "fall10", "discount": "10% off", "valid_until": "2099-12-31"}

	w := e.do(http.MethodPost, "/api/marketing/promotions", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/marketing/promotions", token, gin.H{"code": "FALL10", "discount": "$5 off", "valid_until": "2099-12-31"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "promotion_code_exists", errorCode(t, w))
}

// completedBooking books a job for the portal client through the staff API
// and marks it completed.
func (e *env) completedBooking(staff string, companyID, clientID uint) uint {
	e.t.Helper()
	service := testutil.Service(e.t, e.db, companyID)
	w := e.do(http.MethodPost, "/api/bookings", staff, gin.H{
		"client_id": clientID, "service_id": service.ID, "date": tuesday(), "time": "09:00",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[models.Booking](e.t, w).ID
	w = e.do(http.MethodPatch, fmt.Sprintf("/api/bookings/%d/complete", id), staff, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return id
}

func TestConcurrentReviewLosesToUniqueIndex(t *testing.T) {
	e := newEnv(t)
	reg := e.register("sparkle")
	jane := e.signup("sparkle", "jane@example.com")
	bookingID := e.completedBooking(reg.Tokens.AccessToken, reg.Company.ID, jane.Client.ID)

	// Another submit lands between the existence check and the insert.
	raced := false
	require.NoError(t, e.db.Callback().Create().Before("gorm:create").Register("test:race_review", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "reviews" {
			return
		}
		raced = true
		other := models.Review{
			CompanyID: reg.Company.ID, ClientID: jane.Client.ID, BookingID: bookingID,
			Rating: 3, Status: models.ReviewPending,
		}
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Omit("Client").Create(&other).Error)
	}))

	w := e.do(http.MethodPost, "/api/portal/reviews", jane.Tokens.AccessToken, gin.H{"booking_id": bookingID, "rating": 5})
	assert.True(t, raced)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, "already_reviewed", errorCode(t, w))
}

func TestReviewCountFailureIsInternal(t *testing.T) {
	e := newEnv(t)
	reg := e.register("sparkle")
	jane := e.signup("sparkle", "jane@example.com")
	bookingID := e.completedBooking(reg.Tokens.AccessToken, reg.Company.ID, jane.Client.ID)

	require.NoError(t, e.db.Migrator().DropTable(&models.Review{}))

	w := e.do(http.MethodPost, "/api/portal/reviews", jane.Tokens.AccessToken, gin.H{"booking_id": bookingID, "rating": 5})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed_to_create_review", errorCode(t, w))
}

func TestPortalRefreshRejectsDeactivatedClient(t *testing.T) {
	e := newEnv(t)
	staff := e.register("sparkle").Tokens.AccessToken
	jane := e.signup("sparkle", "jane@example.com")

	w := e.do(http.MethodPost, "/api/portal/auth/refresh", "", gin.H{"refresh_token": jane.Tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	next := decode[auth.TokenPair](t, w)

	w = e.do(http.MethodPatch, fmt.Sprintf("/api/clients/%d/toggle-active", jane.Client.ID), staff, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/portal/auth/refresh", "", gin.H{"refresh_token": next.RefreshToken})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "client_inactive", errorCode(t, w))
}
