package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"petshop_backend/pkg/utils"

	"github.com/razorpay/razorpay-go"
	"github.com/rs/zerolog/log"
)

var ErrPaymentsUnavailable = errors.New("online payments are not configured")

// GatewayOrder is the subset of a Razorpay order the checkout needs
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentGateway creates payment orders with the card/UPI provider
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]interface{}) (*GatewayOrder, error)
}

// Payments is nil until InitRazorpay finds credentials
var Payments PaymentGateway

type razorpayGateway struct {
	client *razorpay.Client
}

// InitRazorpay initializes the Razorpay client
func InitRazorpay(keyID, keySecret string) {
	if keyID == "" || keySecret == "" {
		log.Warn().Msg("RAZORPAY_KEY_ID or RAZORPAY_KEY_SECRET not set, online payments disabled")
		return
	}
	Payments = &razorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder creates a Razorpay order; amount is in rupees
func (g *razorpayGateway) CreateOrder(_ context.Context, amount float64, currency, receipt string, notes map[string]interface{}) (*GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   utils.ToPaise(amount),
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create razorpay order: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, errors.New("razorpay order response missing id")
	}
	return &GatewayOrder{ID: id, Amount: utils.ToPaise(amount), Currency: currency}, nil
}

// CreatePaymentOrder uses the configured gateway
func CreatePaymentOrder(ctx context.Context, amount float64, receipt string, notes map[string]interface{}) (*GatewayOrder, error) {
	if Payments == nil {
		return nil, ErrPaymentsUnavailable
	}
	return Payments.CreateOrder(ctx, amount, "INR", receipt, notes)
}

// PaymentSignature computes the checkout signature Razorpay sends back
func PaymentSignature(orderID, paymentID, keySecret string) string {
	h := hmac.New(sha256.New, []byte(keySecret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyPaymentSignature verifies the Razorpay payment signature
func VerifyPaymentSignature(orderID, paymentID, signature, keySecret string) bool {
	if keySecret == "" || signature == "" {
		return false
	}
	expected := PaymentSignature(orderID, paymentID, keySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
