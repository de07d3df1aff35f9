package provider

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
)

const (
	defaultInstagramAuthBase = "https://api.instagram.com"
	defaultInstagramAPIBase  = "https://graph.instagram.com"
)

type instagramProvider struct {
	*oauth2.Config
	APIPath string
}

type instagramUser struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FollowersCount int64  `json:"followers_count"`
}

// NewInstagramProvider creates an Instagram account provider.
func NewInstagramProvider(ext conf.OAuthProviderConfiguration) (OAuthProvider, error) {
	if err := ext.ValidateOAuth(); err != nil {
		return nil, err
	}

	authHost := chooseHost(ext.URL, defaultInstagramAuthBase)
	apiPath := chooseHost(ext.URL, defaultInstagramAPIBase)

	return &instagramProvider{
		Config: &oauth2.Config{
			ClientID:     ext.ClientID,
			ClientSecret: ext.Secret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authHost + "/oauth/authorize",
				TokenURL: authHost + "/oauth/access_token",
			},
			RedirectURL: ext.RedirectURI,
			Scopes:      []string{"user_profile", "user_media"},
		},
		APIPath: apiPath,
	}, nil
}

func (g instagramProvider) GetOAuthToken(ctx context.Context, code string) (*oauth2.Token, error) {
	return exchange(ctx, g.Config, code)
}

func (g instagramProvider) GetUserData(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	var u instagramUser
	if err := makeRequest(ctx, tok, g.Config, g.APIPath+"/me?fields=id,username,followers_count", &u); err != nil {
		return nil, err
	}

	return &Profile{
		Username:    u.Username,
		DisplayName: u.Username,
		Followers:   u.FollowersCount,
	}, nil
}
