package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/middleware"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var user models.User
	if err := h.db.Preload("Company").
		Where("id = ? AND company_id = ?", userID, companyID(c)).
		First(&user).Error; err != nil {

		if isNotFound(err) {
			httperr.NotFound(c, "user_not_found", "User not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_user", "Could not load the user.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         userView(user),
		"display_name": user.Name,
		"company": gin.H{
			"id":       user.Company.ID,
			"name":     user.Company.Name,
			"slug":     user.Company.Slug,
			"timezone": user.Company.Timezone,
		},
	})
}
