package services

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

type GoogleProfile struct {
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// GoogleVerifier checks a Google ID token server side.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleProfile, error)
}

type IDTokenVerifier struct {
	ClientID string
}

func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{ClientID: clientID}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleProfile, error) {
	if v.ClientID == "" {
		return nil, errors.New("google sign-in is not configured")
	}
	payload, err := idtoken.Validate(ctx, idToken, v.ClientID)
	if err != nil {
		return nil, err
	}
	profile := &GoogleProfile{}
	profile.Email, _ = payload.Claims["email"].(string)
	profile.Name, _ = payload.Claims["name"].(string)
	profile.Picture, _ = payload.Claims["picture"].(string)
	profile.EmailVerified, _ = payload.Claims["email_verified"].(bool)
	if profile.Email == "" {
		return nil, errors.New("google token has no email")
	}
	return profile, nil
}
