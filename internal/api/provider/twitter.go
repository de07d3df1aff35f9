package provider

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
)

// Twitter API v2 OAuth 2.0 endpoints
// See: https://developer.x.com/en/docs/authentication/oauth-2-0/authorization-code
const (
	defaultTwitterAuthBase = "https://x.com"
	defaultTwitterAPIBase  = "https://api.x.com"
)

type twitterProvider struct {
	*oauth2.Config
	APIHost string
}

type twitterUser struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
	PublicMetrics   struct {
		FollowersCount int64 `json:"followers_count"`
	} `json:"public_metrics"`
}

type twitterUserResponse struct {
	Data twitterUser `json:"data"`
}

// NewTwitterProvider creates a Twitter (X) API v2 account provider.
func NewTwitterProvider(ext conf.OAuthProviderConfiguration) (OAuthProvider, error) {
	if err := ext.ValidateOAuth(); err != nil {
		return nil, err
	}

	authHost := chooseHost(ext.URL, defaultTwitterAuthBase)
	apiHost := chooseHost(ext.URL, defaultTwitterAPIBase)

	// tweet.read and users.read are required for OAuth 2.0 user context even
	// when only posting; offline.access returns a refresh token.
	oauthScopes := []string{
		"tweet.read",
		"tweet.write",
		"users.read",
		"offline.access",
	}

	return &twitterProvider{
		Config: &oauth2.Config{
			ClientID:     ext.ClientID,
			ClientSecret: ext.Secret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authHost + "/i/oauth2/authorize",
				TokenURL: apiHost + "/2/oauth2/token",
			},
			RedirectURL: ext.RedirectURI,
			Scopes:      oauthScopes,
		},
		APIHost: apiHost,
	}, nil
}

func (t twitterProvider) GetOAuthToken(ctx context.Context, code string) (*oauth2.Token, error) {
	return exchange(ctx, t.Config, code)
}

func (t twitterProvider) GetUserData(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	var resp twitterUserResponse
	if err := makeRequest(ctx, tok, t.Config, t.APIHost+"/2/users/me?user.fields=profile_image_url,public_metrics", &resp); err != nil {
		return nil, err
	}

	return &Profile{
		Username:    resp.Data.Username,
		DisplayName: resp.Data.Name,
		AvatarURL:   resp.Data.ProfileImageURL,
		Followers:   resp.Data.PublicMetrics.FollowersCount,
	}, nil
}
