package provider

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
)

const (
	defaultFacebookAuthBase  = "https://www.facebook.com"
	defaultFacebookGraphBase = "https://graph.facebook.com"
)

type facebookProvider struct {
	*oauth2.Config
	GraphPath string
}

type facebookUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// NewFacebookProvider creates a Facebook page provider.
func NewFacebookProvider(ext conf.OAuthProviderConfiguration) (OAuthProvider, error) {
	if err := ext.ValidateOAuth(); err != nil {
		return nil, err
	}

	authHost := chooseHost(ext.URL, defaultFacebookAuthBase)
	graphHost := chooseHost(ext.URL, defaultFacebookGraphBase)

	oauthScopes := []string{
		"pages_show_list",
		"pages_read_engagement",
		"pages_manage_posts",
	}

	return &facebookProvider{
		Config: &oauth2.Config{
			ClientID:     ext.ClientID,
			ClientSecret: ext.Secret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authHost + "/v19.0/dialog/oauth",
				TokenURL: graphHost + "/v19.0/oauth/access_token",
			},
			RedirectURL: ext.RedirectURI,
			Scopes:      oauthScopes,
		},
		GraphPath: graphHost,
	}, nil
}

func (p facebookProvider) GetOAuthToken(ctx context.Context, code string) (*oauth2.Token, error) {
	return exchange(ctx, p.Config, code)
}

func (p facebookProvider) GetUserData(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	var u facebookUser
	if err := makeRequest(ctx, tok, p.Config, p.GraphPath+"/me?fields=id,name,picture", &u); err != nil {
		return nil, err
	}

	return &Profile{
		Username:    u.ID,
		DisplayName: u.Name,
		AvatarURL:   u.Picture.Data.URL,
	}, nil
}
