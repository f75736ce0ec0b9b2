package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/employee"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

var teamErrors = errorStatus{
	"team_not_found":     http.StatusNotFound,
	"employee_not_found": http.StatusNotFound,
	"employee_inactive":  http.StatusUnprocessableEntity,
}

type TeamHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewTeamHandler(db *gorm.DB, audit *audit.Dispatcher) *TeamHandler {
	return &TeamHandler{db: db, audit: audit}
}

type TeamRequest struct {
	Name         string `json:"name" binding:"required"`
	LeadID       *uint  `json:"lead_id"`
	AssignedZone string `json:"assigned_zone"`
	MemberIDs    []uint `json:"member_ids"`
}

type TeamMemberRequest struct {
	EmployeeID uint `json:"employee_id" binding:"required"`
}

func (h *TeamHandler) find(c *gin.Context) (*models.Team, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	var team models.Team
	if err := h.db.Preload("Lead").Preload("Members").
		Where("id = ? AND company_id = ?", id, companyID(c)).
		First(&team).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "team_not_found", messageFor("team_not_found"))
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_team", "Could not load the team.")
		return nil, false
	}
	return &team, true
}

// employees loads the given ids within the company. When activeOnly is set a
// non-active employee fails with employee_inactive.
func (h *TeamHandler) employees(companyID uint, ids []uint, activeOnly bool) ([]models.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.Employee
	if err := h.db.Where("company_id = ? AND id IN ?", companyID, ids).Find(&out).Error; err != nil {
		return nil, err
	}
	found := map[uint]bool{}
	for _, e := range out {
		found[e.ID] = true
		if activeOnly && e.EmploymentStatus != domain.StatusActive {
			return nil, httperr.ErrBusiness("employee_inactive")
		}
	}
	for _, id := range ids {
		if !found[id] {
			return nil, httperr.ErrBusiness("employee_not_found")
		}
	}
	return out, nil
}

func (h *TeamHandler) List(c *gin.Context) {
	var teams []models.Team
	if err := h.db.Preload("Lead").Preload("Members").
		Where("company_id = ?", companyID(c)).
		Order("name ASC").
		Find(&teams).Error; err != nil {
		httperr.Internal(c, "failed_to_list_teams", "Could not load teams.")
		return
	}
	if teams == nil {
		teams = []models.Team{}
	}
	c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) Get(c *gin.Context) {
	team, ok := h.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, team)
}

func (h *TeamHandler) Create(c *gin.Context) {
	var req TeamRequest
	if !bindJSON(c, &req) {
		return
	}
	cid := companyID(c)

	team := models.Team{
		CompanyID:    cid,
		Name:         strings.TrimSpace(req.Name),
		LeadID:       req.LeadID,
		AssignedZone: req.AssignedZone,
	}
	if !h.apply(c, &team, req) {
		return
	}

	if err := h.db.Omit("Lead").Create(&team).Error; err != nil {
		httperr.Internal(c, "failed_to_create_team", "Could not create the team.")
		return
	}

	writeAudit(h.audit, c, "team_created", "team", &team.ID, nil)
	c.JSON(http.StatusCreated, team)
}

// apply validates the lead and the member list and sets them on team.
func (h *TeamHandler) apply(c *gin.Context, team *models.Team, req TeamRequest) bool {
	if req.LeadID != nil {
		lead, err := h.employees(team.CompanyID, []uint{*req.LeadID}, true)
		if err != nil {
			teamErrors.respond(c, err, "failed_to_save_team")
			return false
		}
		team.Lead = &lead[0]
	}
	members, err := h.employees(team.CompanyID, req.MemberIDs, false)
	if err != nil {
		teamErrors.respond(c, err, "failed_to_save_team")
		return false
	}
	team.Members = members
	if team.Members == nil {
		team.Members = []models.Employee{}
	}
	return true
}

func (h *TeamHandler) Update(c *gin.Context) {
	team, ok := h.find(c)
	if !ok {
		return
	}
	var req TeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team.Name = strings.TrimSpace(req.Name)
	team.AssignedZone = req.AssignedZone
	team.LeadID = req.LeadID
	team.Lead = nil
	if !h.apply(c, team, req) {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lead", "Members").Save(team).Error; err != nil {
			return err
		}
		return tx.Model(team).Association("Members").Replace(team.Members)
	})
	if err != nil {
		httperr.Internal(c, "failed_to_update_team", "Could not save the team.")
		return
	}

	writeAudit(h.audit, c, "team_updated", "team", &team.ID, nil)
	c.JSON(http.StatusOK, team)
}

func (h *TeamHandler) Delete(c *gin.Context) {
	team, ok := h.find(c)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(team).Association("Members").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&models.Booking{}).
			Where("assigned_team_id = ?", team.ID).
			Update("assigned_team_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(team).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_delete_team", "Could not delete the team.")
		return
	}

	writeAudit(h.audit, c, "team_deleted", "team", &team.ID, nil)
	c.Status(http.StatusNoContent)
}

// AddMember is idempotent: adding an existing member returns the team as is.
func (h *TeamHandler) AddMember(c *gin.Context) {
	team, ok := h.find(c)
	if !ok {
		return
	}
	var req TeamMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	for _, id := range team.MemberIDs() {
		if id == req.EmployeeID {
			c.JSON(http.StatusOK, team)
			return
		}
	}

	emps, err := h.employees(team.CompanyID, []uint{req.EmployeeID}, true)
	if err != nil {
		teamErrors.respond(c, err, "failed_to_add_member")
		return
	}
	if err := h.db.Model(team).Association("Members").Append(&emps[0]); err != nil {
		httperr.Internal(c, "failed_to_add_member", "Could not add the member.")
		return
	}

	writeAudit(h.audit, c, "team_member_added", "team", &team.ID, gin.H{"employee_id": req.EmployeeID})
	c.JSON(http.StatusOK, team)
}

func (h *TeamHandler) RemoveMember(c *gin.Context) {
	team, ok := h.find(c)
	if !ok {
		return
	}
	employeeID, ok := paramID(c, "employeeID")
	if !ok {
		return
	}

	kept := team.Members[:0]
	var removed *models.Employee
	for i := range team.Members {
		if team.Members[i].ID == employeeID {
			m := team.Members[i]
			removed = &m
			continue
		}
		kept = append(kept, team.Members[i])
	}
	if removed == nil {
		httperr.NotFound(c, "member_not_found", "Employee is not a member of the team.")
		return
	}

	if err := h.db.Model(team).Association("Members").Delete(removed); err != nil {
		httperr.Internal(c, "failed_to_remove_member", "Could not remove the member.")
		return
	}
	team.Members = kept

	writeAudit(h.audit, c, "team_member_removed", "team", &team.ID, gin.H{"employee_id": employeeID})
	c.JSON(http.StatusOK, team)
}
