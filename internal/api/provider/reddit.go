package provider

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
)

const (
	defaultRedditAuthBase = "https://www.reddit.com"
	defaultRedditAPIBase  = "https://oauth.reddit.com"
)

type redditProvider struct {
	*oauth2.Config
	APIPath string
}

type redditUser struct {
	Name      string `json:"name"`
	IconImg   string `json:"icon_img"`
	Subreddit struct {
		Title       string `json:"title"`
		Subscribers int64  `json:"subscribers"`
	} `json:"subreddit"`
}

// NewRedditProvider creates a Reddit account provider. Reddit requires
// HTTP basic auth on the token endpoint and only issues refresh tokens
// when duration=permanent is requested.
func NewRedditProvider(ext conf.OAuthProviderConfiguration) (OAuthProvider, error) {
	if err := ext.ValidateOAuth(); err != nil {
		return nil, err
	}

	authHost := chooseHost(ext.URL, defaultRedditAuthBase)
	apiPath := chooseHost(ext.URL, defaultRedditAPIBase)

	oauthScopes := []string{
		"identity",
		"submit",
		"read",
	}

	return &redditProvider{
		Config: &oauth2.Config{
			ClientID:     ext.ClientID,
			ClientSecret: ext.Secret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authHost + "/api/v1/authorize",
				TokenURL:  authHost + "/api/v1/access_token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
			RedirectURL: ext.RedirectURI,
			Scopes:      oauthScopes,
		},
		APIPath: apiPath,
	}, nil
}

func (p redditProvider) AuthCodeURL(state string, args ...oauth2.AuthCodeOption) string {
	args = append(args, oauth2.SetAuthURLParam("duration", "permanent"))
	return p.Config.AuthCodeURL(state, args...)
}

func (p redditProvider) GetOAuthToken(ctx context.Context, code string) (*oauth2.Token, error) {
	return exchange(ctx, p.Config, code)
}

func (p redditProvider) GetUserData(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	var u redditUser
	if err := makeRequest(ctx, tok, p.Config, p.APIPath+"/api/v1/me", &u); err != nil {
		return nil, err
	}

	return &Profile{
		Username:    u.Name,
		DisplayName: u.Subreddit.Title,
		AvatarURL:   u.IconImg,
		Followers:   u.Subreddit.Subscribers,
	}, nil
}
