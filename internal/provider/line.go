package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	lineAuthURL  = "https://access.line.me/oauth2/v2.1/authorize"
	lineTokenURL = "https://api.line.me/oauth2/v2.1/token"
	lineIssuer   = "https://access.line.me"
)

// LineAdapter authenticates users through LINE Login. LINE is OIDC-shaped:
// the token response carries an id_token signed HS256 with the channel
// secret, which supplies the subject and profile claims.
type LineAdapter struct {
	oauth         *oauth2.Config
	channelSecret string
	timeout       time.Duration
}

// NewLine configures the LINE adapter with a channel id and secret.
func NewLine(channelID, channelSecret, redirectURL string, timeout time.Duration) *LineAdapter {
	return &LineAdapter{
		oauth: &oauth2.Config{
			ClientID:     channelID,
			ClientSecret: channelSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  lineAuthURL,
				TokenURL: lineTokenURL,
			},
		},
		channelSecret: channelSecret,
		timeout:       timeout,
	}
}

// Name implements Adapter.
func (l *LineAdapter) Name() Name { return Line }

// AuthURL implements Adapter.
func (l *LineAdapter) AuthURL(state string) string {
	return l.oauth.AuthCodeURL(state)
}

// Exchange swaps the authorization code for tokens and verifies the
// id_token. Email is only present when the channel has email permission;
// its absence maps to an empty field.
func (l *LineAdapter) Exchange(ctx context.Context, code string) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	tok, err := l.oauth.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: line token exchange: %v", ErrExchange, err)
	}

	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return Profile{}, fmt.Errorf("%w: line response has no id_token", ErrExchange)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(l.channelSecret), nil
	}, jwt.WithIssuer(lineIssuer), jwt.WithAudience(l.oauth.ClientID))
	if err != nil {
		return Profile{}, fmt.Errorf("%w: verify line id_token: %v", ErrExchange, err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Profile{}, fmt.Errorf("%w: line id_token has no subject", ErrExchange)
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	picture, _ := claims["picture"].(string)

	return Profile{
		Provider:    Line,
		SubjectID:   sub,
		DisplayName: name,
		Email:       email,
		AvatarURL:   picture,
	}, nil
}
