package provider

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
)

const (
	defaultPinterestAuthBase = "https://www.pinterest.com"
	defaultPinterestAPIBase  = "https://api.pinterest.com"
)

type pinterestProvider struct {
	*oauth2.Config
	APIPath string
}

type pinterestUser struct {
	Username      string `json:"username"`
	ProfileImage  string `json:"profile_image"`
	FollowerCount int64  `json:"follower_count"`
}

// NewPinterestProvider creates a Pinterest account provider against the v5 API.
func NewPinterestProvider(ext conf.OAuthProviderConfiguration) (OAuthProvider, error) {
	if err := ext.ValidateOAuth(); err != nil {
		return nil, err
	}

	authHost := chooseHost(ext.URL, defaultPinterestAuthBase)
	apiPath := chooseHost(ext.URL, defaultPinterestAPIBase)

	oauthScopes := []string{
		"boards:read",
		"pins:read",
		"pins:write",
		"user_accounts:read",
	}

	return &pinterestProvider{
		Config: &oauth2.Config{
			ClientID:     ext.ClientID,
			ClientSecret: ext.Secret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authHost + "/oauth/",
				TokenURL:  apiPath + "/v5/oauth/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			RedirectURL: ext.RedirectURI,
			Scopes:      oauthScopes,
		},
		APIPath: apiPath,
	}, nil
}

func (p pinterestProvider) GetOAuthToken(ctx context.Context, code string) (*oauth2.Token, error) {
	return exchange(ctx, p.Config, code)
}

func (p pinterestProvider) GetUserData(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	var u pinterestUser
	if err := makeRequest(ctx, tok, p.Config, p.APIPath+"/v5/user_account", &u); err != nil {
		return nil, err
	}

	return &Profile{
		Username:    u.Username,
		DisplayName: u.Username,
		AvatarURL:   u.ProfileImage,
		Followers:   u.FollowerCount,
	}, nil
}
