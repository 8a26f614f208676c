package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/models"
	"petshop_backend/pkg/testutil"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu     sync.Mutex
	sent   map[string]string
	failTo string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if to == m.failTo {
		return errors.New("mailbox unavailable")
	}
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[to] = html
	return nil
}

func TestTransitionOrder(t *testing.T) {
	ctx := context.Background()
	allowed := [][2]models.OrderStatus{
		{models.OrderStatusPending, models.OrderStatusConfirmed},
		{models.OrderStatusPending, models.OrderStatusCancelled},
		{models.OrderStatusConfirmed, models.OrderStatusShipped},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled},
		{models.OrderStatusShipped, models.OrderStatusDelivered},
	}
	for _, tr := range allowed {
		assert.NoError(t, TransitionOrder(ctx, tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	rejected := [][2]models.OrderStatus{
		{models.OrderStatusPending, models.OrderStatusShipped},
		{models.OrderStatusShipped, models.OrderStatusCancelled},
		{models.OrderStatusDelivered, models.OrderStatusCancelled},
		{models.OrderStatusCancelled, models.OrderStatusConfirmed},
		{models.OrderStatusConfirmed, models.OrderStatusPending},
	}
	for _, tr := range rejected {
		assert.ErrorIs(t, TransitionOrder(ctx, tr[0], tr[1]), ErrInvalidTransition, "%s -> %s", tr[0], tr[1])
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	sig := PaymentSignature("order_123", "pay_456", "secret")
	assert.True(t, VerifyPaymentSignature("order_123", "pay_456", sig, "secret"))
	assert.False(t, VerifyPaymentSignature("order_123", "pay_789", sig, "secret"))
	assert.False(t, VerifyPaymentSignature("order_123", "pay_456", sig, ""))
}

func TestValidateLayout(t *testing.T) {
	require.NoError(t, ValidateLayout(DefaultLayout()))

	cases := map[string]models.DashboardWidget{
		"unknown type": {Key: "a", Type: "PIE", W: 1, H: 1},
		"zero width":   {Key: "a", Type: models.WidgetLowStock, W: 0, H: 1},
		"negative x":   {Key: "a", Type: models.WidgetLowStock, X: -1, W: 1, H: 1},
		"overflow":     {Key: "a", Type: models.WidgetLowStock, X: 8, W: 5, H: 1},
		"missing key":  {Type: models.WidgetLowStock, W: 1, H: 1},
	}
	for name, w := range cases {
		assert.Error(t, ValidateLayout([]models.DashboardWidget{w}), name)
	}

	dup := models.DashboardWidget{Key: "a", Type: models.WidgetLowStock, W: 1, H: 1}
	assert.Error(t, ValidateLayout([]models.DashboardWidget{dup, dup}))
}

func TestGormWidgetStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewGormWidgetStore(db)
	ctx := context.Background()

	widgets, err := store.Load(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, widgets)

	require.NoError(t, store.Replace(ctx, 7, DefaultLayout()))
	require.NoError(t, store.Replace(ctx, 8, DefaultLayout()[:1]))

	layout := []models.DashboardWidget{
		{Key: "tickets", Type: models.WidgetOpenTickets, X: 0, Y: 2, W: 12, H: 2, Visible: false},
		{Key: "sales", Type: models.WidgetSalesChart, X: 0, Y: 0, W: 12, H: 2, Visible: true, Settings: models.JSONMap{"days": "7"}},
	}
	require.NoError(t, store.Replace(ctx, 7, layout))

	widgets, err = store.Load(ctx, 7)
	require.NoError(t, err)
	require.Len(t, widgets, 2)
	assert.Equal(t, "sales", widgets[0].Key)
	assert.Equal(t, "7", widgets[0].Settings["days"])
	assert.False(t, widgets[1].Visible)

	other, err := store.Load(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Winter sale\n\nUp to **30%** off [cat food](https://example.com/cats).")
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>30%</strong>")
	assert.Contains(t, out, `target="_blank"`)
}

func TestDispatchCampaignCollectsFailures(t *testing.T) {
	mailer := &fakeMailer{failTo: "bounce@example.com"}
	subs := []models.NewsletterSubscriber{
		{Email: "a@example.com", Token: "tok-a"},
		{Email: "bounce@example.com", Token: "tok-b"},
		{Email: "c@example.com", Token: "tok-c"},
	}

	result := DispatchCampaign(context.Background(), mailer, "https://shop.test", "Hello", "<p>hi</p>", subs)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "bounce@example.com")
	assert.Contains(t, mailer.sent["a@example.com"], "unsubscribe?token=tok-a")
}

func TestRunCampaign(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, db.Create(&[]models.NewsletterSubscriber{
		{Email: "on@example.com", Token: "t1", IsActive: true},
		{Email: "off@example.com", Token: "t2", IsActive: false},
	}).Error)
	campaign := models.NewsletterCampaign{Subject: "News", BodyMarkdown: "**hi**", Status: models.CampaignStatusSending}
	require.NoError(t, db.Create(&campaign).Error)

	mailer := &fakeMailer{}
	require.NoError(t, RunCampaign(context.Background(), db, mailer, "https://shop.test", campaign))

	var saved models.NewsletterCampaign
	require.NoError(t, db.First(&saved, campaign.ID).Error)
	assert.Equal(t, models.CampaignStatusSent, saved.Status)
	assert.Equal(t, 1, saved.SentCount)
	assert.NotNil(t, saved.SentAt)
	assert.True(t, strings.Contains(mailer.sent["on@example.com"], "<strong>hi</strong>"))
	assert.NotContains(t, mailer.sent, "off@example.com")
}

func TestRemember(t *testing.T) {
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"dogs"}, nil
	}
	for i := 0; i < 3; i++ {
		v, err := Remember("test:remember", CategoriesTTL, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"dogs"}, v)
	}
	assert.Equal(t, 1, calls)

	Forget("test:")
	Remember("test:remember", CategoriesTTL, load)
	assert.Equal(t, 2, calls)
}

func TestIdentityFromClaims(t *testing.T) {
	id := identityFromClaims("sub-1", map[string]interface{}{
		"email":          "g@example.com",
		"email_verified": true,
		"name":           "Goldie",
	})
	assert.Equal(t, "sub-1", id.Subject)
	assert.True(t, id.EmailVerified)
	assert.Equal(t, "Goldie", id.Name)

	id = identityFromClaims("sub-2", map[string]interface{}{"email_verified": "false"})
	assert.False(t, id.EmailVerified)
}

func TestNotifyUserPrunesStaleTokens(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "push@example.com", models.RoleCustomer)
	require.NoError(t, db.Create(&[]models.UserDeviceToken{
		{UserID: user.ID, Token: "good"},
		{UserID: user.ID, Token: "stale"},
	}).Error)

	prev := Push
	defer func() { Push = prev }()
	sender := &fakePush{stale: []string{"stale"}}
	Push = sender

	require.NoError(t, NotifyUser(context.Background(), db, user.ID, "t", "b", nil))
	assert.ElementsMatch(t, []string{"good", "stale"}, sender.tokens)

	var remaining int64
	db.Model(&models.UserDeviceToken{}).Where("user_id = ?", user.ID).Count(&remaining)
	assert.EqualValues(t, 1, remaining)
}

type fakePush struct {
	tokens []string
	stale  []string
}

func (p *fakePush) SendMulticast(_ context.Context, tokens []string, _, _ string, _ map[string]string) ([]string, error) {
	p.tokens = tokens
	return p.stale, nil
}

func sendingCampaign(t *testing.T, db *gorm.DB) models.NewsletterCampaign {
	t.Helper()
	campaign := models.NewsletterCampaign{Subject: "News", BodyMarkdown: "hi", Status: models.CampaignStatusSending}
	require.NoError(t, db.Create(&campaign).Error)
	return campaign
}

func TestRunCampaignReleasesDraftWhenSubscribersFail(t *testing.T) {
	db := testutil.NewTestDB(t)
	campaign := sendingCampaign(t, db)
	require.NoError(t, db.Migrator().DropTable(&models.NewsletterSubscriber{}))

	err := RunCampaign(context.Background(), db, &fakeMailer{}, "https://shop.test", campaign)
	require.Error(t, err)

	var saved models.NewsletterCampaign
	require.NoError(t, db.First(&saved, campaign.ID).Error)
	assert.Equal(t, models.CampaignStatusDraft, saved.Status)
	require.NotNil(t, saved.LastError)
	assert.Contains(t, *saved.LastError, "load subscribers")
}

func TestRunCampaignReleasesDraftWhenNothingDelivered(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, db.Create(&models.NewsletterSubscriber{Email: "bounce@example.com", Token: "t1", IsActive: true}).Error)
	campaign := sendingCampaign(t, db)

	err := RunCampaign(context.Background(), db, &fakeMailer{failTo: "bounce@example.com"}, "https://shop.test", campaign)
	require.Error(t, err)

	var saved models.NewsletterCampaign
	require.NoError(t, db.First(&saved, campaign.ID).Error)
	assert.Equal(t, models.CampaignStatusDraft, saved.Status)
	require.NotNil(t, saved.LastError)
	assert.Contains(t, *saved.LastError, "mailbox unavailable")
	assert.Nil(t, saved.SentAt)
}

func TestRunCampaignKeepsPartialFailures(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, db.Create(&[]models.NewsletterSubscriber{
		{Email: "ok@example.com", Token: "t1", IsActive: true},
		{Email: "bounce@example.com", Token: "t2", IsActive: true},
	}).Error)
	campaign := sendingCampaign(t, db)

	require.NoError(t, RunCampaign(context.Background(), db, &fakeMailer{failTo: "bounce@example.com"}, "https://shop.test", campaign))

	var saved models.NewsletterCampaign
	require.NoError(t, db.First(&saved, campaign.ID).Error)
	assert.Equal(t, models.CampaignStatusSent, saved.Status)
	assert.Equal(t, 1, saved.SentCount)
	assert.Equal(t, 1, saved.FailedCount)
	require.NotNil(t, saved.LastError)
}

func TestResetStalledCampaigns(t *testing.T) {
	db := testutil.NewTestDB(t)
	stalled := sendingCampaign(t, db)
	fresh := sendingCampaign(t, db)
	require.NoError(t, db.Model(&stalled).UpdateColumn("updated_at", time.Now().Add(-2*time.Hour)).Error)

	n, err := ResetStalledCampaigns(context.Background(), db, 30*time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var saved models.NewsletterCampaign
	require.NoError(t, db.First(&saved, stalled.ID).Error)
	assert.Equal(t, models.CampaignStatusDraft, saved.Status)
	require.NotNil(t, saved.LastError)

	var running models.NewsletterCampaign
	require.NoError(t, db.First(&running, fresh.ID).Error)
	assert.Equal(t, models.CampaignStatusSending, running.Status)
}

func TestLogSMSSenderHidesBodyOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	prevLogger, prevConfig := log.Logger, config.AppConfig
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() {
		log.Logger = prevLogger
		config.AppConfig = prevConfig
	})
	body := "482913 is your Paws & Whiskers login code. It expires in 5 minutes."

	config.AppConfig = &config.Config{Environment: "production"}
	require.NoError(t, LogSMSSender{}.SendSMS(context.Background(), "+919800000000", body))
	assert.NotContains(t, buf.String(), "482913")
	assert.Contains(t, buf.String(), "+919800000000")

	buf.Reset()
	config.AppConfig = &config.Config{Environment: "development"}
	require.NoError(t, LogSMSSender{}.SendSMS(context.Background(), "+919800000000", body))
	assert.Contains(t, buf.String(), "482913")
}

func TestAddTicketMessageRejectsClosedTicket(t *testing.T) {
	db := testutil.NewTestDB(t)
	customer := testutil.CreateUser(t, db, "owner@example.com", models.RoleCustomer)
	ticket := models.Ticket{
		TicketNumber: "TKT-2026-0001",
		UserID:       customer.ID,
		Subject:      "Broken leash",
		Description:  "Clip snapped",
		Priority:     models.PriorityLow,
		Status:       models.TicketStatusClosed,
	}
	require.NoError(t, db.Create(&ticket).Error)

	_, err := AddTicketMessage(db, &ticket, customer, "Hello?")
	assert.ErrorIs(t, err, ErrTicketClosed)
	var ce *CheckoutError
	assert.False(t, errors.As(err, &ce))
}
