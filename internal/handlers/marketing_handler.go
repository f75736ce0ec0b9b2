package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/dashboard"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/domain/promotion"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

type MarketingHandler struct {
	db        *gorm.DB
	audit     *audit.Dispatcher
	dashboard *dashboard.Service
	now       func() time.Time
}

func NewMarketingHandler(db *gorm.DB, audit *audit.Dispatcher, dash *dashboard.Service) *MarketingHandler {
	return &MarketingHandler{db: db, audit: audit, dashboard: dash, now: time.Now}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateCampaignRequest struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type" binding:"required,oneof=email sms"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type ScheduleCampaignRequest struct {
	SendDate time.Time `json:"send_date" binding:"required"`
}

type CreatePromotionRequest struct {
	Code       string `json:"code" binding:"required"`
	Discount   string `json:"discount" binding:"required"`
	ValidUntil string `json:"valid_until" binding:"required"`
}

func (h *MarketingHandler) location(c *gin.Context) *time.Location {
	var company models.Company
	if err := h.db.Select("id", "timezone").First(&company, companyID(c)).Error; err != nil {
		return timezone.Location("")
	}
	return timezone.Location(company.Timezone)
}

// ======================================================
// CAMPAIGNS
// ======================================================

func (h *MarketingHandler) ListCampaigns(c *gin.Context) {
	q := h.db.Where("company_id = ?", companyID(c))
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var campaigns []models.Campaign
	if err := q.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		httperr.Internal(c, "failed_to_list_campaigns", "Could not load campaigns.")
		return
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	c.JSON(http.StatusOK, campaigns)
}

func (h *MarketingHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if !bindJSON(c, &req) {
		return
	}
	campaign := models.Campaign{
		CompanyID: companyID(c),
		Name:      strings.TrimSpace(req.Name),
		Type:      req.Type,
		Status:    models.CampaignDraft,
		Subject:   req.Subject,
		Content:   req.Content,
	}
	if err := h.db.Create(&campaign).Error; err != nil {
		httperr.Internal(c, "failed_to_create_campaign", "Could not create the campaign.")
		return
	}
	writeAudit(h.audit, c, "campaign_created", "campaign", &campaign.ID, nil)
	c.JSON(http.StatusCreated, campaign)
}

// ScheduleCampaign sets a future send date. Sent campaigns are final.
func (h *MarketingHandler) ScheduleCampaign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ScheduleCampaignRequest
	if !bindJSON(c, &req) {
		return
	}

	var campaign models.Campaign
	if err := h.db.Where("id = ? AND company_id = ?", id, companyID(c)).First(&campaign).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "campaign_not_found", "Campaign not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_campaign", "Could not load the campaign.")
		return
	}
	if campaign.Status == models.CampaignSent {
		httperr.Conflict(c, "campaign_already_sent", "The campaign was already sent.")
		return
	}
	if !req.SendDate.After(h.now()) {
		httperr.BadRequest(c, "send_date_in_past", "Send date must be in the future.")
		return
	}

	sendAt := req.SendDate.UTC()
	campaign.SendDate = &sendAt
	campaign.Status = models.CampaignScheduled
	if err := h.db.Save(&campaign).Error; err != nil {
		httperr.Internal(c, "failed_to_update_campaign", "Could not save the campaign.")
		return
	}
	writeAudit(h.audit, c, "campaign_scheduled", "campaign", &campaign.ID, gin.H{"send_date": sendAt})
	c.JSON(http.StatusOK, campaign)
}

// ======================================================
// PROMOTIONS
// ======================================================

func (h *MarketingHandler) ListPromotions(c *gin.Context) {
	var promos []models.Promotion
	if err := h.db.Where("company_id = ?", companyID(c)).Order("valid_until DESC").Find(&promos).Error; err != nil {
		httperr.Internal(c, "failed_to_list_promotions", "Could not load promotions.")
		return
	}

	loc, now := h.location(c), h.now()
	want := c.Query("status")
	out := make([]models.Promotion, 0, len(promos))
	for _, p := range promos {
		p.Status = promotion.StatusAt(p, now, loc)
		if want != "" && p.Status != want {
			continue
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, out)
}

func (h *MarketingHandler) CreatePromotion(c *gin.Context) {
	var req CreatePromotionRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := promotion.Parse(req.Discount); err != nil {
		httperr.BadRequest(c, "invalid_discount", "Discount must look like \"20% off\" or \"$10 off\".")
		return
	}
	loc := h.location(c)
	until, err := time.ParseInLocation(timezone.DateLayout, req.ValidUntil, loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", messageFor("invalid_date"))
		return
	}

	cid := companyID(c)
	code := promotion.NormalizeCode(req.Code)
	if code == "" {
		httperr.BadRequest(c, "invalid_code", "Code cannot be empty.")
		return
	}

	var count int64
	if err := h.db.Model(&models.Promotion{}).Where("company_id = ? AND code = ?", cid, code).Count(&count).Error; err != nil {
		httperr.Internal(c, "failed_to_create_promotion", "Could not create the promotion.")
		return
	}
	if count > 0 {
		httperr.Conflict(c, "promotion_code_exists", "That promotion code already exists.")
		return
	}

	promo := models.Promotion{
		CompanyID:  cid,
		Code:       code,
		Discount:   strings.TrimSpace(req.Discount),
		ValidUntil: until.UTC(),
	}
	if err := h.db.Create(&promo).Error; isDuplicate(err) {
		httperr.Conflict(c, "promotion_code_exists", "That promotion code already exists.")
		return
	} else if err != nil {
		httperr.Internal(c, "failed_to_create_promotion", "Could not create the promotion.")
		return
	}
	promo.Status = promotion.StatusAt(promo, h.now(), loc)

	writeAudit(h.audit, c, "promotion_created", "promotion", &promo.ID, gin.H{"code": code})
	c.JSON(http.StatusCreated, promo)
}

// ======================================================
// REVIEWS
// ======================================================

func (h *MarketingHandler) ListReviews(c *gin.Context) {
	q := h.db.Preload("Client").Where("company_id = ?", companyID(c))
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var reviews []models.Review
	if err := q.Order("created_at DESC").Find(&reviews).Error; err != nil {
		httperr.Internal(c, "failed_to_list_reviews", "Could not load reviews.")
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *MarketingHandler) PublishReview(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var review models.Review
	if err := h.db.Preload("Client").Where("id = ? AND company_id = ?", id, companyID(c)).First(&review).Error; err != nil {
		if isNotFound(err) {
			httperr.NotFound(c, "review_not_found", "Review not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_review", "Could not load the review.")
		return
	}

	if review.Status != models.ReviewPublished {
		if err := h.db.Model(&review).Update("status", models.ReviewPublished).Error; err != nil {
			httperr.Internal(c, "failed_to_update_review", "Could not publish the review.")
			return
		}
		review.Status = models.ReviewPublished
		h.dashboard.Invalidate(c.Request.Context(), review.CompanyID, 0)
		writeAudit(h.audit, c, "review_published", "review", &review.ID, nil)
	}
	c.JSON(http.StatusOK, review)
}
