package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"petshop_backend/pkg/config"
	"petshop_backend/pkg/models"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends a single HTML email
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// SMSSender sends a text message
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

var (
	Mail Mailer    = LogMailer{}
	SMS  SMSSender = LogSMSSender{}
)

// InitMessaging selects SendGrid and Twilio when credentials are configured
func InitMessaging(cfg *config.Config) {
	if cfg.SendgridAPIKey != "" {
		Mail = NewSendgridMailer(cfg.SendgridAPIKey, cfg.MailFrom, cfg.MailFromName)
		log.Info().Msg("sendgrid mailer enabled")
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, emails will be logged")
	}

	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioPhoneNumber != "" {
		SMS = NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
		log.Info().Msg("twilio sms enabled")
	} else {
		log.Warn().Msg("TWILIO_* not set, sms will be logged")
	}
}

// SendgridMailer delivers through the SendGrid v3 API
type SendgridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendgridMailer(apiKey, from, fromName string) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, from),
	}
}

func (m *SendgridMailer) Send(ctx context.Context, to, subject, html string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), "", html)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, html string) error {
	log.Info().Str("to", to).Str("subject", subject).Int("bytes", len(html)).Msg("[DEV MODE] email not sent")
	return nil
}

// TwilioSender posts to the Twilio Messages API
type TwilioSender struct {
	client *resty.Client
	sid    string
	from   string
}

func NewTwilioSender(sid, token, from string) *TwilioSender {
	client := resty.New().
		SetBaseURL("https://api.twilio.com/2010-04-01").
		SetBasicAuth(sid, token).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &TwilioSender{client: client, sid: sid, from: from}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   to,
			"From": s.from,
			"Body": body,
		}).
		Post(fmt.Sprintf("/Accounts/%s/Messages.json", s.sid))
	if err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("twilio: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// LogSMSSender writes messages to the log instead of sending them
type LogSMSSender struct{}

// SendSMS logs the message body only in development; elsewhere it may carry a login code.
func (LogSMSSender) SendSMS(_ context.Context, to, body string) error {
	if config.IsDevelopment() {
		log.Info().Str("to", to).Str("body", body).Msg("[DEV MODE] sms not sent")
		return nil
	}
	log.Warn().Str("to", to).Int("length", len(body)).Msg("sms provider not configured, message dropped")
	return nil
}

// OTPEmailHTML renders the login code email
func OTPEmailHTML(code string) string {
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background: #fff8f0; color: #3d2c1e;">
	<div style="max-width: 400px; margin: 0 auto; background: #ffffff; border-radius: 16px; padding: 32px; text-align: center;">
		<h2 style="color: #e07a2f; margin-bottom: 8px;">Paws &amp; Whiskers</h2>
		<p style="margin-bottom: 24px;">Your one-time login code</p>
		<div style="background: #fdebd8; border-radius: 12px; padding: 20px; margin-bottom: 24px;">
			<span style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">%s</span>
		</div>
		<p style="font-size: 14px;">This code expires in 5 minutes.</p>
		<p style="font-size: 12px; margin-top: 16px;">If you didn't request this, please ignore this email.</p>
	</div>
</body>
</html>`, code)
}

// DeliverOTP sends code over the requested channel
func DeliverOTP(ctx context.Context, channel models.OTPChannel, destination, code string) error {
	if config.IsDevelopment() {
		log.Debug().Str("channel", string(channel)).Str("to", destination).Str("code", code).Msg("[DEV MODE] otp issued")
	}
	if channel == models.OTPChannelSMS {
		return SMS.SendSMS(ctx, destination, fmt.Sprintf("%s is your Paws & Whiskers login code. It expires in 5 minutes.", code))
	}
	return Mail.Send(ctx, destination, "Your Paws & Whiskers login code", OTPEmailHTML(code))
}
