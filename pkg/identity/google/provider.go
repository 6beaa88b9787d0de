package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tria-chat-be/pkg/identity"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type Provider struct {
	conf        *oauth2.Config
	userInfoURL string
}

var _ identity.Provider = (*Provider)(nil)

func NewProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: googleOAuth.Endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

func (p *Provider) Name() string {
	return "google"
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (p *Provider) Exchange(ctx context.Context, code string) (*identity.ExternalIdentity, error) {
	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed: %v", identity.ErrProviderRejected, err)
	}

	client := p.conf.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading user info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: user info status %d", identity.ErrProviderRejected, resp.StatusCode)
	}

	var u googleUser
	if err := json.Unmarshal(content, &u); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	if u.Email == "" || !u.VerifiedEmail {
		return nil, fmt.Errorf("%w: email missing or unverified", identity.ErrProviderRejected)
	}

	return &identity.ExternalIdentity{
		Provider:    p.Name(),
		Subject:     u.ID,
		Email:       u.Email,
		DisplayName: u.Name,
	}, nil
}
