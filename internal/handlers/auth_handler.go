package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/auth"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/validators"
)

type AuthHandler struct {
	db         *gorm.DB
	issuer     *auth.Issuer
	audit      *audit.Dispatcher
	checkEmail validators.EmailChecker
}

func NewAuthHandler(db *gorm.DB, issuer *auth.Issuer, audit *audit.Dispatcher, checkEmail validators.EmailChecker) *AuthHandler {
	return &AuthHandler{db: db, issuer: issuer, audit: audit, checkEmail: checkEmail}
}

// --------- Requests ---------

type RegisterRequest struct {
	CompanyName    string `json:"company_name" binding:"required"`
	CompanySlug    string `json:"company_slug" binding:"required"`
	CompanyPhone   string `json:"company_phone"`
	CompanyAddress string `json:"company_address"`
	Timezone       string `json:"timezone"`

	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

var authErrors = errorStatus{
	"invalid_refresh_token": http.StatusUnauthorized,
	"weak_password":         http.StatusBadRequest,
}

// defaultBusinessHours opens Monday to Saturday, 08:00 to 18:00.
func defaultBusinessHours(companyID uint) []models.BusinessHours {
	out := make([]models.BusinessHours, 0, 7)
	for wd := 0; wd < 7; wd++ {
		out = append(out, models.BusinessHours{
			CompanyID: companyID,
			Weekday:   wd,
			Open:      "08:00",
			Close:     "18:00",
			Closed:    wd == 0,
		})
	}
	return out
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.CompanySlug))
	email := validators.NormalizeEmail(req.Email)

	if !h.checkEmail(c.Request.Context(), email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not look valid.")
		return
	}

	tz := req.Timezone
	if tz == "" {
		tz = timezone.DefaultTimezone
	}
	if !timezone.IsValid(tz) {
		httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
		return
	}

	var count int64
	if err := h.db.Model(&models.Company{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		httperr.Internal(c, "failed_to_register", "Could not create the account.")
		return
	}
	if count > 0 {
		httperr.Conflict(c, "slug_already_exists", "That company slug is taken.")
		return
	}
	if err := h.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		httperr.Internal(c, "failed_to_register", "Could not create the account.")
		return
	}
	if count > 0 {
		httperr.Conflict(c, "email_already_registered", "That email is already registered.")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		authErrors.respond(c, err, "failed_to_hash_password")
		return
	}

	company := models.Company{
		Name:     req.CompanyName,
		Slug:     slug,
		Email:    email,
		Phone:    req.CompanyPhone,
		Address:  req.CompanyAddress,
		Timezone: tz,
	}
	user := models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         models.RoleOwner,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		hours := defaultBusinessHours(company.ID)
		if err := tx.Create(&hours).Error; err != nil {
			return err
		}
		user.CompanyID = company.ID
		return tx.Omit("Company").Create(&user).Error
	})
	if isDuplicate(err) {
		httperr.Conflict(c, "account_exists", "That company slug or email is already registered.")
		return
	}
	if err != nil {
		httperr.Internal(c, "failed_to_register", "Could not create the account.")
		return
	}

	tokens, err := h.issuer.Issue(c.Request.Context(), staffClaims(user))
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not sign in.")
		return
	}

	h.audit.Dispatch(audit.Event{
		CompanyID: company.ID,
		UserID:    &user.ID,
		Action:    "company_registered",
		Entity:    "company",
		EntityID:  &company.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"user":    userView(user),
		"company": company,
		"tokens":  tokens,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	if err := h.db.Preload("Company").
		Where("email = ?", validators.NormalizeEmail(req.Email)).
		First(&user).Error; err != nil {

		if isNotFound(err) {
			httperr.Unauthorized(c, "invalid_credentials", messageFor("invalid_credentials"))
			return
		}
		httperr.Internal(c, "internal_error", "Could not sign in.")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		httperr.Unauthorized(c, "invalid_credentials", messageFor("invalid_credentials"))
		return
	}

	tokens, err := h.issuer.Issue(c.Request.Context(), staffClaims(user))
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Could not sign in.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    userView(user),
		"company": user.Company,
		"tokens":  tokens,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	tokens, err := h.issuer.Refresh(c.Request.Context(), auth.KindStaff, req.RefreshToken)
	if err != nil {
		authErrors.respond(c, err, "failed_to_refresh_token")
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Logout revokes the refresh token presented. Access tokens expire on their own.
func (h *AuthHandler) Logout(c *gin.Context) {
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

func staffClaims(u models.User) auth.Claims {
	return auth.Claims{
		SubjectID: u.ID,
		CompanyID: u.CompanyID,
		Role:      u.Role,
		Kind:      auth.KindStaff,
	}
}

func userView(u models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"phone":      u.Phone,
		"role":       u.Role,
		"company_id": u.CompanyID,
	}
}
