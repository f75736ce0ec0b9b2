package httperr

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBusinessError_Wrapped(t *testing.T) {
	err := fmt.Errorf("create booking: %w", ErrBusiness("too_soon"))

	assert.True(t, IsBusiness(err, "too_soon"))
	assert.False(t, IsBusiness(err, "outside_business_hours"))
	assert.Equal(t, "too_soon", CodeOf(err))
	assert.Equal(t, "", CodeOf(fmt.Errorf("plain")))
}

func TestWrite_Body(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Conflict(c, "slot_full", "no capacity left")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error_code":"slot_full","message":"no capacity left"}`, w.Body.String())
}
