package provider

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
)

const (
	defaultTikTokAuthBase = "https://www.tiktok.com"
	defaultTikTokAPIBase  = "https://open.tiktokapis.com"
)

type tiktokProvider struct {
	*oauth2.Config
	APIPath string
}

type tiktokUser struct {
	Data struct {
		User struct {
			OpenID        string `json:"open_id"`
			DisplayName   string `json:"display_name"`
			AvatarURL     string `json:"avatar_url"`
			FollowerCount int64  `json:"follower_count"`
		} `json:"user"`
	} `json:"data"`
}

// NewTikTokProvider creates a TikTok account provider.
func NewTikTokProvider(ext conf.OAuthProviderConfiguration) (OAuthProvider, error) {
	if err := ext.ValidateOAuth(); err != nil {
		return nil, err
	}

	authHost := chooseHost(ext.URL, defaultTikTokAuthBase)
	apiPath := chooseHost(ext.URL, defaultTikTokAPIBase)

	oauthScopes := []string{
		"user.info.basic",
		"user.info.stats",
		"video.publish",
	}

	return &tiktokProvider{
		Config: &oauth2.Config{
			ClientID:     ext.ClientID,
			ClientSecret: ext.Secret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authHost + "/v2/auth/authorize/",
				TokenURL: apiPath + "/v2/oauth/token/",
			},
			RedirectURL: ext.RedirectURI,
			Scopes:      oauthScopes,
		},
		APIPath: apiPath,
	}, nil
}

func (p tiktokProvider) AuthCodeURL(state string, args ...oauth2.AuthCodeOption) string {
	// TikTok takes the client id as client_key on the authorize URL.
	args = append(args, oauth2.SetAuthURLParam("client_key", p.ClientID))
	return p.Config.AuthCodeURL(state, args...)
}

func (p tiktokProvider) GetOAuthToken(ctx context.Context, code string) (*oauth2.Token, error) {
	return exchange(ctx, p.Config, code)
}

func (p tiktokProvider) GetUserData(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	var u tiktokUser
	if err := makeRequest(ctx, tok, p.Config, p.APIPath+"/v2/user/info/?fields=open_id,display_name,avatar_url,follower_count", &u); err != nil {
		return nil, err
	}

	return &Profile{
		Username:    u.Data.User.OpenID,
		DisplayName: u.Data.User.DisplayName,
		AvatarURL:   u.Data.User.AvatarURL,
		Followers:   u.Data.User.FollowerCount,
	}, nil
}
