package provider

import (
	"context"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
)

const (
	defaultGoogleAuthBase   = "https://accounts.google.com"
	defaultGoogleTokenBase  = "https://oauth2.googleapis.com"
	defaultYoutubeDataBase  = "https://www.googleapis.com"
	youtubeChannelsEndpoint = "/youtube/v3/channels?part=snippet,statistics&mine=true"
)

type youtubeProvider struct {
	*oauth2.Config
	APIPath string
}

type youtubeChannelList struct {
	Items []struct {
		Snippet struct {
			Title      string `json:"title"`
			CustomURL  string `json:"customUrl"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// NewYoutubeProvider creates a YouTube channel provider using Google's
// OAuth endpoints.
func NewYoutubeProvider(ext conf.OAuthProviderConfiguration) (OAuthProvider, error) {
	if err := ext.ValidateOAuth(); err != nil {
		return nil, err
	}

	authHost := chooseHost(ext.URL, defaultGoogleAuthBase)
	tokenHost := chooseHost(ext.URL, defaultGoogleTokenBase)
	apiPath := chooseHost(ext.URL, defaultYoutubeDataBase)

	oauthScopes := []string{
		"https://www.googleapis.com/auth/youtube.readonly",
		"https://www.googleapis.com/auth/youtube.upload",
	}

	return &youtubeProvider{
		Config: &oauth2.Config{
			ClientID:     ext.ClientID,
			ClientSecret: ext.Secret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authHost + "/o/oauth2/v2/auth",
				TokenURL: tokenHost + "/token",
			},
			RedirectURL: ext.RedirectURI,
			Scopes:      oauthScopes,
		},
		APIPath: apiPath,
	}, nil
}

func (p youtubeProvider) AuthCodeURL(state string, args ...oauth2.AuthCodeOption) string {
	// Google only issues a refresh token when offline access is requested.
	args = append(args,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return p.Config.AuthCodeURL(state, args...)
}

func (p youtubeProvider) GetOAuthToken(ctx context.Context, code string) (*oauth2.Token, error) {
	return exchange(ctx, p.Config, code)
}

func (p youtubeProvider) GetUserData(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	var list youtubeChannelList
	if err := makeRequest(ctx, tok, p.Config, p.APIPath+youtubeChannelsEndpoint, &list); err != nil {
		return nil, err
	}
	if len(list.Items) == 0 {
		return &Profile{}, nil
	}

	ch := list.Items[0]
	subscribers, _ := strconv.ParseInt(ch.Statistics.SubscriberCount, 10, 64)

	return &Profile{
		Username:    ch.Snippet.CustomURL,
		DisplayName: ch.Snippet.Title,
		AvatarURL:   ch.Snippet.Thumbnails.Default.URL,
		Followers:   subscribers,
	}, nil
}
