package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleAPIBase = "https://www.googleapis.com/oauth2/v2"

// GoogleAdapter authenticates users through Google's OAuth2 endpoints and
// the userinfo API.
type GoogleAdapter struct {
	oauth   *oauth2.Config
	apiBase string
	timeout time.Duration
}

// NewGoogle configures the Google adapter. redirectURL must match the
// console-registered callback.
func NewGoogle(clientID, clientSecret, redirectURL string, timeout time.Duration) *GoogleAdapter {
	return &GoogleAdapter{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		apiBase: googleAPIBase,
		timeout: timeout,
	}
}

// Name implements Adapter.
func (g *GoogleAdapter) Name() Name { return Google }

// AuthURL implements Adapter.
func (g *GoogleAdapter) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Exchange swaps the authorization code for an access token and fetches the
// userinfo profile. Missing email or picture are tolerated.
func (g *GoogleAdapter) Exchange(ctx context.Context, code string) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: google token exchange: %v", ErrExchange, err)
	}

	resp, err := g.oauth.Client(ctx, tok).Get(g.apiBase + "/userinfo")
	if err != nil {
		return Profile{}, fmt.Errorf("%w: google userinfo: %v", ErrExchange, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("%w: google userinfo status %d", ErrExchange, resp.StatusCode)
	}

	var info struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Profile{}, fmt.Errorf("%w: decode google userinfo: %v", ErrExchange, err)
	}
	if info.ID == "" {
		return Profile{}, fmt.Errorf("%w: google userinfo has no subject id", ErrExchange)
	}

	return Profile{
		Provider:    Google,
		SubjectID:   info.ID,
		DisplayName: info.Name,
		Email:       info.Email,
		AvatarURL:   info.Picture,
	}, nil
}
