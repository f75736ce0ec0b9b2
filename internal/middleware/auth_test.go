package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/auth"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

type fakeParser map[string]auth.Claims

func (f fakeParser) Parse(token string) (*auth.Claims, error) {
	c, ok := f[token]
	if !ok {
		return nil, httperr.ErrBusiness("invalid_token")
	}
	return &c, nil
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"company": c.GetUint(ContextCompanyID),
			"user":    c.GetUint(ContextUserID),
			"client":  c.GetUint(ContextClientID),
		})
	})
	r.GET("/x", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStaffAuth(t *testing.T) {
	p := fakeParser{
		"staff":  {SubjectID: 1, CompanyID: 5, Role: "owner", Kind: auth.KindStaff},
		"client": {SubjectID: 2, CompanyID: 5, Kind: auth.KindClient},
	}
	r := newRouter(StaffAuth(p))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "bogus").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "client").Code)

	w := do(r, "staff")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"company":5,"user":1,"client":0}`, w.Body.String())
}

func TestPortalAuth(t *testing.T) {
	p := fakeParser{
		"staff":  {SubjectID: 1, CompanyID: 5, Kind: auth.KindStaff},
		"client": {SubjectID: 2, CompanyID: 5, Kind: auth.KindClient},
	}
	r := newRouter(PortalAuth(p))

	assert.Equal(t, http.StatusForbidden, do(r, "staff").Code)
	w := do(r, "client")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"company":5,"user":0,"client":2}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	p := fakeParser{
		"owner": {SubjectID: 1, CompanyID: 5, Role: "owner", Kind: auth.KindStaff},
		"staff": {SubjectID: 2, CompanyID: 5, Role: "staff", Kind: auth.KindStaff},
	}
	r := newRouter(StaffAuth(p), RequireRole("owner", "admin"))

	assert.Equal(t, http.StatusOK, do(r, "owner").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "staff").Code)
}
