package provider

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
)

const (
	defaultLinkedinAuthBase = "https://www.linkedin.com"
	defaultLinkedinAPIBase  = "https://api.linkedin.com"
)

type linkedinProvider struct {
	*oauth2.Config
	APIPath string
}

// See: https://learn.microsoft.com/en-us/linkedin/consumer/integrations/self-serve/sign-in-with-linkedin-v2
type linkedinUser struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Email   string `json:"email"`
}

// NewLinkedinProvider creates a LinkedIn account provider.
func NewLinkedinProvider(ext conf.OAuthProviderConfiguration) (OAuthProvider, error) {
	if err := ext.ValidateOAuth(); err != nil {
		return nil, err
	}

	authHost := chooseHost(ext.URL, defaultLinkedinAuthBase)
	apiPath := chooseHost(ext.URL, defaultLinkedinAPIBase)

	oauthScopes := []string{
		"openid",
		"profile",
		"w_member_social",
	}

	return &linkedinProvider{
		Config: &oauth2.Config{
			ClientID:     ext.ClientID,
			ClientSecret: ext.Secret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authHost + "/oauth/v2/authorization",
				TokenURL: authHost + "/oauth/v2/accessToken",
			},
			RedirectURL: ext.RedirectURI,
			Scopes:      oauthScopes,
		},
		APIPath: apiPath,
	}, nil
}

func (l linkedinProvider) GetOAuthToken(ctx context.Context, code string) (*oauth2.Token, error) {
	return exchange(ctx, l.Config, code)
}

func (l linkedinProvider) GetUserData(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	var u linkedinUser
	if err := makeRequest(ctx, tok, l.Config, l.APIPath+"/v2/userinfo", &u); err != nil {
		return nil, err
	}

	return &Profile{
		Username:    u.Email,
		DisplayName: u.Name,
		AvatarURL:   u.Picture,
	}, nil
}
