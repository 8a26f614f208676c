package admin_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/controllers/admin"
	"petshop_backend/pkg/database"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/services"
	"petshop_backend/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTicket(t *testing.T, db *gorm.DB, user models.User, status models.TicketStatus) models.Ticket {
	t.Helper()
	ticket := models.Ticket{
		TicketNumber: fmt.Sprintf("TKT-%d-%04d", time.Now().Year(), time.Now().Nanosecond()%10000),
		UserID:       user.ID,
		Subject:      "Late delivery",
		Description:  "My order has not arrived",
		Priority:     models.PriorityMedium,
		Status:       status,
	}
	require.NoError(t, db.Create(&ticket).Error)
	return ticket
}

func seedSubscriber(t *testing.T, db *gorm.DB, email string, active bool) {
	t.Helper()
	sub := models.NewsletterSubscriber{Email: email, Token: "tok-" + email, IsActive: active, SubscribedAt: time.Now()}
	require.NoError(t, db.Create(&sub).Error)
}

func TestStaffReplyMovesTicketInProgress(t *testing.T) {
	b := newBackOffice(t)
	customer := testutil.CreateUser(t, b.db, "owner@example.com", models.RoleCustomer)
	ticket := seedTicket(t, b.db, customer, models.TicketStatusOpen)
	path := fmt.Sprintf("/api/admin/tickets/%d/reply", ticket.ID)

	w := b.do(t, http.MethodPost, path, map[string]string{"body": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	support := b.headerFor(t, "agent@example.com", models.RoleSupport)
	w = b.doWith(t, http.MethodPost, path, map[string]string{"body": "We are checking with the courier."}, support)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reply struct {
		TicketStatus  models.TicketStatus  `json:"ticketStatus"`
		TicketMessage models.TicketMessage `json:"ticketMessage"`
	}
	data(t, w, &reply)
	assert.Equal(t, models.TicketStatusInProgress, reply.TicketStatus)
	assert.Equal(t, models.RoleSupport, reply.TicketMessage.AuthorRole)

	w = b.do(t, http.MethodGet, fmt.Sprintf("/api/admin/tickets/%d", ticket.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var loaded models.Ticket
	data(t, w, &loaded)
	assert.Equal(t, models.TicketStatusInProgress, loaded.Status)
	assert.Len(t, loaded.Messages, 1)

	w = b.do(t, http.MethodPost, "/api/admin/tickets/9999/reply", map[string]string{"body": "hello"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReplyToClosedTicket(t *testing.T) {
	b := newBackOffice(t)
	customer := testutil.CreateUser(t, b.db, "owner@example.com", models.RoleCustomer)
	ticket := seedTicket(t, b.db, customer, models.TicketStatusClosed)

	w := b.do(t, http.MethodPost, fmt.Sprintf("/api/admin/tickets/%d/reply", ticket.ID), map[string]string{"body": "Following up"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"Ticket is closed"}`, w.Body.String())

	var messages int64
	b.db.Model(&models.TicketMessage{}).Where("ticket_id = ?", ticket.ID).Count(&messages)
	assert.Zero(t, messages)
}

func TestTicketStatusStampsResolvedAt(t *testing.T) {
	b := newBackOffice(t)
	customer := testutil.CreateUser(t, b.db, "owner@example.com", models.RoleCustomer)
	ticket := seedTicket(t, b.db, customer, models.TicketStatusInProgress)
	path := fmt.Sprintf("/api/admin/tickets/%d/status", ticket.ID)

	w := b.do(t, http.MethodPatch, path, map[string]string{"status": "DONE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.do(t, http.MethodPatch, path, map[string]string{"status": "RESOLVED", "resolutionNote": " Replacement shipped "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Ticket
	data(t, w, &updated)
	assert.Equal(t, models.TicketStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	require.NotNil(t, updated.ResolutionNote)
	assert.Equal(t, "Replacement shipped", *updated.ResolutionNote)

	w = b.do(t, http.MethodPatch, path, map[string]string{"status": "OPEN"})
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &updated)
	assert.Nil(t, updated.ResolvedAt)

	var open []models.Ticket
	w = b.do(t, http.MethodGet, "/api/admin/tickets?status=open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &open)
	assert.Len(t, open, 1)
}

func TestCampaignDrafts(t *testing.T) {
	b := newBackOffice(t)

	w := b.do(t, http.MethodPost, "/api/admin/newsletter/campaigns", map[string]string{"subject": "Monsoon care"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = b.do(t, http.MethodPost, "/api/admin/newsletter/campaigns", map[string]string{
		"subject":      " Monsoon care ",
		"bodyMarkdown": "# Keep paws dry\n\nTowel off after **every** walk.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var campaign models.NewsletterCampaign
	data(t, w, &campaign)
	assert.Equal(t, "Monsoon care", campaign.Subject)
	assert.Equal(t, models.CampaignStatusDraft, campaign.Status)
	assert.Equal(t, b.admin.ID, campaign.CreatedByID)

	path := fmt.Sprintf("/api/admin/newsletter/campaigns/%d", campaign.ID)
	w = b.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var preview struct {
		Campaign    models.NewsletterCampaign `json:"campaign"`
		PreviewHTML string                    `json:"previewHtml"`
	}
	data(t, w, &preview)
	assert.Contains(t, preview.PreviewHTML, "<h1")
	assert.Contains(t, preview.PreviewHTML, "<strong>every</strong>")

	w = b.do(t, http.MethodPut, path, map[string]string{"subject": "Rainy day tips", "bodyMarkdown": "Stay dry."})
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &campaign)
	assert.Equal(t, "Rainy day tips", campaign.Subject)

	w = b.do(t, http.MethodPut, "/api/admin/newsletter/campaigns/9999", map[string]string{"subject": "x", "bodyMarkdown": "y"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = b.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = b.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendCampaign(t *testing.T) {
	b := newBackOffice(t)
	seedSubscriber(t, b.db, "one@example.com", true)
	seedSubscriber(t, b.db, "two@example.com", true)
	seedSubscriber(t, b.db, "gone@example.com", false)

	mailer := &recordingMailer{}
	restore := admin.SwapRunCampaign(func(campaign models.NewsletterCampaign) {
		require.NoError(t, services.RunCampaign(context.Background(), database.DB, mailer, config.AppConfig.PublicURL, campaign))
	})
	t.Cleanup(restore)

	w := b.do(t, http.MethodPost, "/api/admin/newsletter/campaigns", map[string]string{"subject": "New arrivals", "bodyMarkdown": "Fresh *toys* in stock."})
	require.Equal(t, http.StatusCreated, w.Code)
	var campaign models.NewsletterCampaign
	data(t, w, &campaign)

	sendPath := fmt.Sprintf("/api/admin/newsletter/campaigns/%d/send", campaign.ID)
	w = b.do(t, http.MethodPost, sendPath, nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var queued struct {
		Campaign   models.NewsletterCampaign `json:"campaign"`
		Recipients int64                     `json:"recipients"`
	}
	data(t, w, &queued)
	assert.EqualValues(t, 2, queued.Recipients)
	assert.Equal(t, models.CampaignStatusSending, queued.Campaign.Status)

	assert.ElementsMatch(t, []string{"one@example.com", "two@example.com"}, mailer.sent)

	require.NoError(t, b.db.First(&campaign, campaign.ID).Error)
	assert.Equal(t, models.CampaignStatusSent, campaign.Status)
	assert.Equal(t, 2, campaign.SentCount)
	assert.Zero(t, campaign.FailedCount)
	assert.NotNil(t, campaign.SentAt)

	w = b.do(t, http.MethodPost, sendPath, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Campaign has already been sent", message(t, w))

	w = b.do(t, http.MethodPut, fmt.Sprintf("/api/admin/newsletter/campaigns/%d", campaign.ID), map[string]string{"subject": "x", "bodyMarkdown": "y"})
	assert.Equal(t, http.StatusConflict, w.Code, "sent campaigns are read-only")

	var subs []models.NewsletterSubscriber
	w = b.do(t, http.MethodGet, "/api/admin/newsletter/subscribers?active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &subs)
	assert.Len(t, subs, 2)
}

type layoutResponse struct {
	Widgets   []models.DashboardWidget `json:"widgets"`
	IsDefault bool                     `json:"isDefault"`
	Columns   int                      `json:"columns"`
}

func TestDashboardLayout(t *testing.T) {
	b := newBackOffice(t)

	w := b.do(t, http.MethodGet, "/api/admin/dashboard/layout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var layout layoutResponse
	data(t, w, &layout)
	assert.True(t, layout.IsDefault)
	assert.Equal(t, 12, layout.Columns)
	assert.Len(t, layout.Widgets, len(services.DefaultLayout()))

	saved := []models.DashboardWidget{
		{Key: "tickets", Type: models.WidgetOpenTickets, X: 0, Y: 2, W: 6, H: 2, Visible: true},
		{Key: "sales", Type: models.WidgetSalesChart, X: 0, Y: 0, W: 12, H: 2, Visible: true, Settings: models.JSONMap{"days": float64(7)}},
	}
	w = b.do(t, http.MethodPut, "/api/admin/dashboard/layout", map[string]interface{}{"widgets": saved})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = b.do(t, http.MethodGet, "/api/admin/dashboard/layout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &layout)
	assert.False(t, layout.IsDefault)
	require.Len(t, layout.Widgets, 2)
	assert.Equal(t, "sales", layout.Widgets[0].Key, "widgets are ordered top to bottom")
	assert.Equal(t, float64(7), layout.Widgets[0].Settings["days"])

	// another admin still sees the default
	w = b.doWith(t, http.MethodGet, "/api/admin/dashboard/layout", nil, b.headerFor(t, "second@example.com", models.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
	data(t, w, &layout)
	assert.True(t, layout.IsDefault)
}

func TestDashboardLayoutValidation(t *testing.T) {
	b := newBackOffice(t)

	cases := map[string][]models.DashboardWidget{
		"duplicate key": {
			{Key: "a", Type: models.WidgetLowStock, W: 2, H: 2},
			{Key: "a", Type: models.WidgetLowStock, X: 2, W: 2, H: 2},
		},
		"unknown type": {{Key: "a", Type: "WEATHER", W: 2, H: 2}},
		"too small":    {{Key: "a", Type: models.WidgetLowStock, W: 0, H: 2}},
		"negative":     {{Key: "a", Type: models.WidgetLowStock, X: -1, W: 2, H: 2}},
		"overflow":     {{Key: "a", Type: models.WidgetLowStock, X: 8, W: 5, H: 2}},
	}
	for name, widgets := range cases {
		t.Run(name, func(t *testing.T) {
			w := b.do(t, http.MethodPut, "/api/admin/dashboard/layout", map[string]interface{}{"widgets": widgets})
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	stored, err := services.Widgets.Load(context.Background(), b.admin.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDashboardStats(t *testing.T) {
	b := newBackOffice(t)
	customer := testutil.CreateUser(t, b.db, "buyer@example.com", models.RoleCustomer)
	category := testutil.CreateCategory(t, b.db, "Cat Toys")
	mouse := testutil.CreateProduct(t, b.db, category.ID, "Feather Mouse", 250, 3)
	laser := testutil.CreateProduct(t, b.db, category.ID, "Laser Pointer", 400, 50)
	seedOrder(t, b.db, customer, laser, 2, models.OrderStatusDelivered)
	seedOrder(t, b.db, customer, laser, 1, models.OrderStatusConfirmed)
	seedOrder(t, b.db, customer, laser, 5, models.OrderStatusCancelled)
	seedTicket(t, b.db, customer, models.TicketStatusOpen)
	seedTicket(t, b.db, customer, models.TicketStatusResolved)
	require.NoError(t, b.db.Create(&models.Review{ProductID: mouse.ID, UserID: customer.ID, Rating: 4}).Error)
	seedSubscriber(t, b.db, "reader@example.com", true)

	for _, days := range []string{"0", "366", "week"} {
		w := b.do(t, http.MethodGet, "/api/admin/dashboard/stats?days="+days, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, days)
	}

	w := b.do(t, http.MethodGet, "/api/admin/dashboard/stats?days=7", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats struct {
		Days           int              `json:"days"`
		Revenue        float64          `json:"revenue"`
		OrdersByStatus map[string]int64 `json:"ordersByStatus"`
		LowStock       []models.Product `json:"lowStock"`
		OpenTickets    int64            `json:"openTickets"`
		PendingReviews int64            `json:"pendingReviews"`
		Subscribers    int64            `json:"activeSubscribers"`
		DailyRevenue   []struct {
			Date    string  `json:"date"`
			Revenue float64 `json:"revenue"`
			Orders  int     `json:"orders"`
		} `json:"dailyRevenue"`
	}
	data(t, w, &stats)

	assert.Equal(t, 7, stats.Days)
	assert.Equal(t, 1200.0, stats.Revenue, "cancelled orders are excluded")
	assert.EqualValues(t, 1, stats.OrdersByStatus["CANCELLED"])
	assert.EqualValues(t, 1, stats.OrdersByStatus["DELIVERED"])
	require.Len(t, stats.LowStock, 1)
	assert.Equal(t, mouse.ID, stats.LowStock[0].ID)
	assert.EqualValues(t, 1, stats.OpenTickets)
	assert.EqualValues(t, 1, stats.PendingReviews)
	assert.EqualValues(t, 1, stats.Subscribers)

	require.Len(t, stats.DailyRevenue, 7)
	var seriesTotal float64
	var seriesOrders int
	for _, d := range stats.DailyRevenue {
		seriesTotal += d.Revenue
		seriesOrders += d.Orders
	}
	assert.Equal(t, 1200.0, seriesTotal)
	assert.Equal(t, 2, seriesOrders)
}
