package services

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

var ErrGoogleEmailUnverified = errors.New("google account email is not verified")

// GoogleIdentity is the part of a Google ID token the login flow uses
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// VerifyGoogleIDToken validates a Google Sign-In ID token. Replaced in tests.
var VerifyGoogleIDToken = func(ctx context.Context, token, audience string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return nil, err
	}
	return identityFromClaims(payload.Subject, payload.Claims), nil
}

func identityFromClaims(subject string, claims map[string]interface{}) *GoogleIdentity {
	id := &GoogleIdentity{Subject: subject}
	id.Email, _ = claims["email"].(string)
	id.Name, _ = claims["name"].(string)
	id.Picture, _ = claims["picture"].(string)
	switch v := claims["email_verified"].(type) {
	case bool:
		id.EmailVerified = v
	case string:
		id.EmailVerified = v == "true"
	}
	return id
}
