package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Identity is the assertion returned by the identity provider: who the
// authorization code belongs to.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// IdentityProvider exchanges a client-side authorization code for a verified
// identity. The concrete provider is Google; tests substitute a stub.
type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// GoogleProvider implements IdentityProvider against Google's OAuth2 endpoints.
type GoogleProvider struct {
	config *oauth2.Config
}

func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     viper.GetString("google.client_id"),
			ClientSecret: viper.GetString("google.client_secret"),
			Endpoint:     google.Endpoint,
			// The client obtains the code via the popup flow.
			RedirectURL: "postmessage",
		},
	}
}

// Exchange trades the authorization code for tokens and resolves the user's
// profile from the userinfo endpoint.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}

	client := g.config.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("google userinfo decode failed: %w", err)
	}

	return &identity, nil
}
