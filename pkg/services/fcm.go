package services

import (
	"context"
	"fmt"
	"time"

	"petshop_backend/pkg/models"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// PushSender delivers a notification to a batch of device tokens and
// returns the tokens the provider reported as no longer registered
type PushSender interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (stale []string, err error)
}

// Push is nil until InitFCM succeeds
var Push PushSender

type fcmSender struct {
	client *messaging.Client
}

// InitFCM initializes Firebase Cloud Messaging
func InitFCM(ctx context.Context, credentialsFile string) error {
	if credentialsFile == "" {
		log.Warn().Msg("GOOGLE_APPLICATION_CREDENTIALS not set, push notifications disabled")
		return nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize FCM client: %w", err)
	}

	Push = &fcmSender{client: client}
	return nil
}

func (s *fcmSender) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	response, err := s.client.SendMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send notifications: %w", err)
	}

	var stale []string
	for i, resp := range response.Responses {
		if !resp.Success && messaging.IsRegistrationTokenNotRegistered(resp.Error) {
			stale = append(stale, tokens[i])
		}
	}
	return stale, nil
}

// NotifyUser pushes to every registered device of the user and prunes stale tokens
func NotifyUser(ctx context.Context, db *gorm.DB, userID int, title, body string, data map[string]string) error {
	if Push == nil {
		return nil
	}

	var tokens []string
	if err := db.WithContext(ctx).Model(&models.UserDeviceToken{}).
		Where("user_id = ?", userID).
		Pluck("token", &tokens).Error; err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	stale, err := Push.SendMulticast(ctx, tokens, title, body, data)
	if err != nil {
		return err
	}
	if len(stale) > 0 {
		db.WithContext(ctx).Where("token IN ?", stale).Delete(&models.UserDeviceToken{})
	}
	return nil
}

// OrderStatusMessage returns the push title and body for a status change
func OrderStatusMessage(orderNumber string, status models.OrderStatus) (string, string) {
	switch status {
	case models.OrderStatusConfirmed:
		return "Order confirmed", fmt.Sprintf("Your order %s is confirmed and being packed.", orderNumber)
	case models.OrderStatusShipped:
		return "Order shipped", fmt.Sprintf("Your order %s is on its way.", orderNumber)
	case models.OrderStatusDelivered:
		return "Order delivered", fmt.Sprintf("Your order %s has been delivered. Enjoy!", orderNumber)
	case models.OrderStatusCancelled:
		return "Order cancelled", fmt.Sprintf("Your order %s has been cancelled.", orderNumber)
	}
	return "Order update", fmt.Sprintf("Your order %s is now %s.", orderNumber, status)
}

// NotifyOrderStatusAsync pushes an order status change without blocking the request
func NotifyOrderStatusAsync(db *gorm.DB, order models.Order) {
	if Push == nil {
		return
	}
	title, body := OrderStatusMessage(order.OrderNumber, order.Status)
	data := map[string]string{
		"type":        "ORDER_STATUS",
		"orderId":     fmt.Sprint(order.ID),
		"orderNumber": order.OrderNumber,
		"status":      string(order.Status),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := NotifyUser(ctx, db, order.UserID, title, body, data); err != nil {
			log.Warn().Err(err).Int("order_id", order.ID).Msg("order status push failed")
		}
	}()
}
