package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/dashboard"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

type DashboardHandler struct {
	svc *dashboard.Service
}

func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Staff(c *gin.Context) {
	summary, err := h.svc.Staff(c.Request.Context(), companyID(c))
	if err != nil {
		httperr.Internal(c, "failed_to_load_dashboard", "Could not load the dashboard.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) Portal(c *gin.Context) {
	summary, err := h.svc.Portal(c.Request.Context(), companyID(c), clientID(c))
	if err != nil {
		httperr.Internal(c, "failed_to_load_dashboard", "Could not load the dashboard.")
		return
	}
	c.JSON(http.StatusOK, summary)
}
