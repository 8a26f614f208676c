package admin

import (
	"context"
	"net/http"
	"strings"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type campaignRequest struct {
	Subject      string `json:"subject" binding:"required,max=200"`
	BodyMarkdown string `json:"bodyMarkdown" binding:"required"`
}

// runCampaign is replaced in tests to run the send synchronously
var runCampaign = func(campaign models.NewsletterCampaign) {
	db := database.DB
	mailer := services.Mail
	baseURL := config.AppConfig.PublicURL
	go func() {
		if err := services.RunCampaign(context.Background(), db, mailer, baseURL, campaign); err != nil {
			log.Error().Err(err).Int("campaign_id", campaign.ID).Msg("newsletter campaign failed")
		}
	}()
}

// ListSubscribers returns newsletter subscribers, optionally only active ones
func ListSubscribers(c *gin.Context) {
	page := utils.ParsePage(c)
	query := database.DB.Model(&models.NewsletterSubscriber{})
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var subs []models.NewsletterSubscriber
	if err := query.Order("subscribed_at DESC, id DESC").Scopes(page.Scope).Find(&subs).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.ListResponse(c, subs, total, page)
}

// ListCampaigns returns every campaign, newest first
func ListCampaigns(c *gin.Context) {
	var campaigns []models.NewsletterCampaign
	if err := database.DB.Order("created_at DESC, id DESC").Find(&campaigns).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, campaigns, "")
}

// GetCampaign returns a campaign with its rendered preview
func GetCampaign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var campaign models.NewsletterCampaign
	if err := database.DB.First(&campaign, id).Error; err != nil {
		respondError(c, notFound("Campaign"))
		return
	}
	utils.SuccessResponse(c, gin.H{"campaign": campaign, "previewHtml": services.RenderMarkdown(campaign.BodyMarkdown)}, "")
}

// CreateCampaign saves a draft
func CreateCampaign(c *gin.Context) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "subject and bodyMarkdown are required"})
		return
	}
	campaign := models.NewsletterCampaign{
		Subject:      strings.TrimSpace(req.Subject),
		BodyMarkdown: req.BodyMarkdown,
		Status:       models.CampaignStatusDraft,
		CreatedByID:  currentAdmin(c).ID,
	}
	if err := database.DB.Create(&campaign).Error; err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, campaign, "Campaign created")
}

// UpdateCampaign edits a draft
func UpdateCampaign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "subject and bodyMarkdown are required"})
		return
	}

	res := database.DB.Model(&models.NewsletterCampaign{}).
		Where("id = ? AND status = ?", id, models.CampaignStatusDraft).
		Updates(map[string]interface{}{"subject": strings.TrimSpace(req.Subject), "body_markdown": req.BodyMarkdown})
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, draftMissing(id))
		return
	}

	var campaign models.NewsletterCampaign
	database.DB.First(&campaign, id)
	utils.SuccessResponse(c, campaign, "Campaign updated")
}

// DeleteCampaign removes a draft
func DeleteCampaign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := database.DB.Where("id = ? AND status = ?", id, models.CampaignStatusDraft).Delete(&models.NewsletterCampaign{})
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, draftMissing(id))
		return
	}
	utils.SuccessResponse(c, nil, "Campaign deleted")
}

// SendCampaign claims a draft and mails it to active subscribers in the background
func SendCampaign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	res := database.DB.Model(&models.NewsletterCampaign{}).
		Where("id = ? AND status = ?", id, models.CampaignStatusDraft).
		Update("status", models.CampaignStatusSending)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, draftMissing(id))
		return
	}

	var campaign models.NewsletterCampaign
	if err := database.DB.First(&campaign, id).Error; err != nil {
		respondError(c, err)
		return
	}

	var recipients int64
	database.DB.Model(&models.NewsletterSubscriber{}).Where("is_active = ?", true).Count(&recipients)

	log.Info().Int("campaign_id", campaign.ID).Int64("recipients", recipients).Msg("newsletter campaign queued")
	runCampaign(campaign)

	c.JSON(http.StatusAccepted, utils.StandardResponse{
		Success: true,
		Data:    gin.H{"campaign": campaign, "recipients": recipients},
		Message: "Campaign is being sent",
	})
}

// draftMissing distinguishes an unknown campaign from one already sent
func draftMissing(id int) error {
	var count int64
	database.DB.Model(&models.NewsletterCampaign{}).Where("id = ?", id).Count(&count)
	if count == 0 {
		return notFound("Campaign")
	}
	return conflict("Campaign has already been sent")
}
