package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/auth"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/validators"
)

// PortalAuthHandler manages client accounts of the self-service portal.
type PortalAuthHandler struct {
	db         *gorm.DB
	issuer     *auth.Issuer
	checkEmail validators.EmailChecker
	now        func() time.Time
}

func NewPortalAuthHandler(db *gorm.DB, issuer *auth.Issuer, checkEmail validators.EmailChecker) *PortalAuthHandler {
	return &PortalAuthHandler{db: db, issuer: issuer, checkEmail: checkEmail, now: time.Now}
}

// --------- Requests ---------

type PortalSignupRequest struct {
	CompanySlug string `json:"company_slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

type PortalLoginRequest struct {
	CompanySlug string `json:"company_slug" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

var portalAuthErrors = errorStatus{
	"client_inactive":       http.StatusForbidden,
	"invalid_refresh_token": http.StatusUnauthorized,
	"weak_password":         http.StatusBadRequest,
}

func clientClaims(cl models.Client) auth.Claims {
	return auth.Claims{
		SubjectID: cl.ID,
		CompanyID: cl.CompanyID,
		Kind:      auth.KindClient,
	}
}

func (h *PortalAuthHandler) company(c *gin.Context, slug string) (*models.Company, bool) {
	var company models.Company
	if err := h.db.Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).First(&company).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "company_not_found", "Company not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_company", "Could not load the company.")
		return nil, false
	}
	return &company, true
}

func (h *PortalAuthHandler) current(c *gin.Context) (*models.Client, bool) {
	var cl models.Client
	if err := h.db.Where("id = ? AND company_id = ?", clientID(c), companyID(c)).First(&cl).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "client_not_found", messageFor("client_not_found"))
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_client", "Could not load the account.")
		return nil, false
	}
	return &cl, true
}

// --------- Handlers ---------

// Signup links the account to an existing client with the same email, or
// creates a regular client.
func (h *PortalAuthHandler) Signup(c *gin.Context) {
	var req PortalSignupRequest
	if !bindJSON(c, &req) {
		return
	}

	company, ok := h.company(c, req.CompanySlug)
	if !ok {
		return
	}

	email := validators.NormalizeEmail(req.Email)
	if !h.checkEmail(c.Request.Context(), email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not look valid.")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		portalAuthErrors.respond(c, err, "failed_to_hash_password")
		return
	}

	var client models.Client
	err = h.db.Where("company_id = ? AND email = ?", company.ID, email).First(&client).Error
	switch {
	case err == nil:
		if client.HasPortalAccess() {
			httperr.Conflict(c, "account_exists", "An account already exists for that email.")
			return
		}
		if !client.IsActive {
			httperr.Forbidden(c, "client_inactive", messageFor("client_inactive"))
			return
		}
		client.PasswordHash = hash
		if client.Phone == "" {
			client.Phone = req.Phone
		}
		if client.Address == "" {
			client.Address = req.Address
		}
		if err := h.db.Save(&client).Error; err != nil {
			httperr.Internal(c, "failed_to_signup", "Could not create the account.")
			return
		}
	case isNotFound(err):
		client = models.Client{
			CompanyID:    company.ID,
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			Phone:        req.Phone,
			Address:      req.Address,
			IsActive:     true,
			ClientType:   models.ClientTypeRegular,
			PasswordHash: hash,
		}
		if err := h.db.Create(&client).Error; err != nil {
			httperr.Internal(c, "failed_to_signup", "Could not create the account.")
			return
		}
	default:
		httperr.Internal(c, "failed_to_signup", "Could not create the account.")
		return
	}

	tokens, err := h.issuer.Issue(c.Request.Context(), clientClaims(client))
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not sign in.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": client, "tokens": tokens})
}

func (h *PortalAuthHandler) Login(c *gin.Context) {
	var req PortalLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	company, ok := h.company(c, req.CompanySlug)
	if !ok {
		return
	}

	var client models.Client
	if err := h.db.
		Where("company_id = ? AND email = ?", company.ID, validators.NormalizeEmail(req.Email)).
		First(&client).Error; err != nil {
		if isNotFound(err) {
			httperr.Unauthorized(c, "invalid_credentials", messageFor("invalid_credentials"))
			return
		}
		httperr.Internal(c, "internal_error", "Could not sign in.")
		return
	}

	if !auth.CheckPassword(client.PasswordHash, req.Password) {
		httperr.Unauthorized(c, "invalid_credentials", messageFor("invalid_credentials"))
		return
	}
	if !client.IsActive {
		httperr.Forbidden(c, "client_inactive", messageFor("client_inactive"))
		return
	}

	now := h.now().UTC()
	h.db.Model(&client).Update("last_login_at", now)

	tokens, err := h.issuer.Issue(c.Request.Context(), clientClaims(client))
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not sign in.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client, "tokens": tokens})
}

func (h *PortalAuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	tokens, err := h.issuer.Refresh(c.Request.Context(), auth.KindClient, req.RefreshToken)
	if err != nil {
		portalAuthErrors.respond(c, err, "failed_to_refresh_token")
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *PortalAuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.issuer.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
		httperr.Internal(c, "failed_to_logout", "Could not sign out.")
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in client and the name to greet them with.
func (h *PortalAuthHandler) Me(c *gin.Context) {
	client, ok := h.current(c)
	if !ok {
		return
	}
	display := client.Name
	if display == "" {
		display = client.Email
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           client.ID,
		"email":        client.Email,
		"display_name": display,
		"client":       client,
	})
}

// ChangePassword also signs the client out of every other session.
func (h *PortalAuthHandler) ChangePassword(c *gin.Context) {
	client, ok := h.current(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if !auth.CheckPassword(client.PasswordHash, req.CurrentPassword) {
		httperr.Unauthorized(c, "invalid_current_password", "Current password is incorrect.")
		return
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		portalAuthErrors.respond(c, err, "failed_to_hash_password")
		return
	}

	ctx := c.Request.Context()
	if err := h.db.Model(client).Update("password_hash", hash).Error; err != nil {
		httperr.Internal(c, "failed_to_change_password", "Could not change the password.")
		return
	}
	if err := h.issuer.RevokeAll(ctx, auth.KindClient, client.ID); err != nil {
		httperr.Internal(c, "failed_to_change_password", "Could not change the password.")
		return
	}

	tokens, err := h.issuer.Issue(ctx, clientClaims(*client))
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not sign in.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

func (h *PortalAuthHandler) UpdateProfile(c *gin.Context) {
	client, ok := h.current(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			httperr.BadRequest(c, "invalid_name", "Name cannot be empty.")
			return
		}
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if err := h.db.Model(client).Select("name", "phone", "address").Updates(client).Error; err != nil {
		httperr.Internal(c, "failed_to_update_profile", "Could not save the profile.")
		return
	}
	c.JSON(http.StatusOK, client)
}
