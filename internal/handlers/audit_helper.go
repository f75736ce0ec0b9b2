package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/middleware"
)

// writeAudit queues an audit row for the staff user on the request.
func writeAudit(
	d *audit.Dispatcher,
	c *gin.Context,
	action string,
	entity string,
	entityID *uint,
	meta any,
) {
	d.Dispatch(audit.Event{
		CompanyID: c.GetUint(middleware.ContextCompanyID),
		UserID:    currentUserID(c),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Metadata:  meta,
	})
}
