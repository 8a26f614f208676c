package admin

import "petshop_backend/pkg/models"

// SwapRunCampaign replaces the background sender and returns a restore func
func SwapRunCampaign(fn func(models.NewsletterCampaign)) (restore func()) {
	prev := runCampaign
	runCampaign = fn
	return func() { runCampaign = prev }
}
