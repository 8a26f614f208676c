package services

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"petshop_backend/pkg/models"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// CampaignConcurrency bounds simultaneous sends for one campaign
const CampaignConcurrency = 5

// RenderMarkdown converts a campaign body to HTML
func RenderMarkdown(body string) string {
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(markdown.ToHTML([]byte(body), nil, renderer))
}

// UnsubscribeURL builds the one-click unsubscribe link for a subscriber token
func UnsubscribeURL(baseURL, token string) string {
	return fmt.Sprintf("%s/api/newsletter/unsubscribe?token=%s", baseURL, url.QueryEscape(token))
}

// DispatchResult summarises one campaign run
type DispatchResult struct {
	Sent   int
	Failed int
	Err    error
}

// DispatchCampaign mails htmlBody to every subscriber with bounded concurrency.
// One failed recipient does not stop the rest; all failures are collected in Err.
func DispatchCampaign(ctx context.Context, mailer Mailer, baseURL, subject, htmlBody string, subscribers []models.NewsletterSubscriber) DispatchResult {
	var (
		mu     sync.Mutex
		result DispatchResult
		errs   *multierror.Error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(CampaignConcurrency)

	for _, sub := range subscribers {
		sub := sub
		g.Go(func() error {
			body := htmlBody + fmt.Sprintf(
				`<hr><p style="font-size:12px">You are receiving this because you subscribed to Paws &amp; Whiskers. <a href="%s">Unsubscribe</a></p>`,
				UnsubscribeURL(baseURL, sub.Token),
			)
			err := mailer.Send(gctx, sub.Email, subject, body)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", sub.Email, err))
				return nil
			}
			result.Sent++
			return nil
		})
	}
	g.Wait()

	result.Err = errs.ErrorOrNil()
	return result
}

// RunCampaign sends a campaign already marked SENDING and records the outcome.
// When nothing could be delivered the campaign goes back to DRAFT with the error kept in lastError.
func RunCampaign(ctx context.Context, db *gorm.DB, mailer Mailer, baseURL string, campaign models.NewsletterCampaign) error {
	var subscribers []models.NewsletterSubscriber
	if err := db.WithContext(ctx).Where("is_active = ?", true).Find(&subscribers).Error; err != nil {
		releaseCampaign(ctx, db, campaign.ID, fmt.Errorf("load subscribers: %w", err))
		return err
	}

	result := DispatchCampaign(ctx, mailer, baseURL, campaign.Subject, RenderMarkdown(campaign.BodyMarkdown), subscribers)
	if result.Err != nil {
		log.Warn().Err(result.Err).Int("campaign_id", campaign.ID).Int("failed", result.Failed).Msg("newsletter campaign had failures")
		if result.Sent == 0 {
			releaseCampaign(ctx, db, campaign.ID, result.Err)
			return result.Err
		}
	}

	updates := map[string]interface{}{
		"status":       models.CampaignStatusSent,
		"sent_count":   result.Sent,
		"failed_count": result.Failed,
		"sent_at":      time.Now(),
		"last_error":   nil,
	}
	if result.Err != nil {
		updates["last_error"] = result.Err.Error()
	}
	return db.WithContext(context.WithoutCancel(ctx)).Model(&models.NewsletterCampaign{}).
		Where("id = ?", campaign.ID).
		Updates(updates).Error
}

// releaseCampaign returns a SENDING campaign to DRAFT so it can be edited and sent again
func releaseCampaign(ctx context.Context, db *gorm.DB, campaignID int, cause error) {
	err := db.WithContext(context.WithoutCancel(ctx)).Model(&models.NewsletterCampaign{}).
		Where("id = ? AND status = ?", campaignID, models.CampaignStatusSending).
		Updates(map[string]interface{}{
			"status":     models.CampaignStatusDraft,
			"last_error": cause.Error(),
		}).Error
	if err != nil {
		log.Error().Err(err).Int("campaign_id", campaignID).Msg("failed to release newsletter campaign")
	}
}

// ResetStalledCampaigns moves campaigns stuck in SENDING for longer than olderThan back to DRAFT.
// A process that dies mid-send leaves its campaign in SENDING; this runs at startup.
func ResetStalledCampaigns(ctx context.Context, db *gorm.DB, olderThan time.Duration) (int64, error) {
	res := db.WithContext(ctx).Model(&models.NewsletterCampaign{}).
		Where("status = ? AND updated_at < ?", models.CampaignStatusSending, time.Now().Add(-olderThan)).
		Updates(map[string]interface{}{
			"status":     models.CampaignStatusDraft,
			"last_error": "sending was interrupted",
		})
	return res.RowsAffected, res.Error
}
