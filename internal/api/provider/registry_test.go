package provider

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
	"github.com/Zer0phucks/pubhub-connect/internal/models"
)

func configuredExternal() *conf.ProviderConfiguration {
	ext := &conf.ProviderConfiguration{}
	for _, block := range []*conf.OAuthProviderConfiguration{
		&ext.Twitter, &ext.Instagram, &ext.Linkedin, &ext.Facebook,
		&ext.Youtube, &ext.Tiktok, &ext.Pinterest, &ext.Reddit,
	} {
		block.ClientID = "client-id"
		block.Secret = "client-secret"
		block.RedirectURI = "http://localhost:3000/oauth/callback"
	}
	return ext
}

func TestGetCoversEveryOAuthPlatform(t *testing.T) {
	ext := configuredExternal()

	for _, platform := range models.OAuthPlatforms {
		p, err := Get(platform, ext)
		require.NoError(t, err, "platform %s", platform)

		authURL := p.AuthCodeURL("test-state-token")
		u, err := url.Parse(authURL)
		require.NoError(t, err, "platform %s", platform)

		q := u.Query()
		assert.Equal(t, "test-state-token", q.Get("state"), "platform %s", platform)
		assert.Equal(t, "code", q.Get("response_type"), "platform %s", platform)
		assert.Equal(t, "client-id", q.Get("client_id"), "platform %s", platform)
		assert.Equal(t, "http://localhost:3000/oauth/callback", q.Get("redirect_uri"), "platform %s", platform)
	}
}

func TestGetRejectsBlogAndUnknown(t *testing.T) {
	ext := configuredExternal()

	_, err := Get(models.PlatformBlog, ext)
	require.Error(t, err)

	_, err = Get(models.Platform("myspace"), ext)
	require.Error(t, err)
}

func TestGetUnconfiguredPlatform(t *testing.T) {
	ext := &conf.ProviderConfiguration{}
	_, err := Get(models.PlatformTwitter, ext)
	require.Error(t, err)
}

func TestProviderAuthCodeOptions(t *testing.T) {
	ext := configuredExternal()

	tiktok, err := Get(models.PlatformTiktok, ext)
	require.NoError(t, err)
	u, err := url.Parse(tiktok.AuthCodeURL("s"))
	require.NoError(t, err)
	assert.Equal(t, "client-id", u.Query().Get("client_key"))

	reddit, err := Get(models.PlatformReddit, ext)
	require.NoError(t, err)
	u, err = url.Parse(reddit.AuthCodeURL("s"))
	require.NoError(t, err)
	assert.Equal(t, "permanent", u.Query().Get("duration"))

	youtube, err := Get(models.PlatformYoutube, ext)
	require.NoError(t, err)
	u, err = url.Parse(youtube.AuthCodeURL("s"))
	require.NoError(t, err)
	assert.Equal(t, "offline", u.Query().Get("access_type"))
}

func TestIsConfiguredAndListMissing(t *testing.T) {
	ext := &conf.ProviderConfiguration{}
	ext.Twitter.ClientID = "id-only"

	assert.False(t, IsConfigured(models.PlatformTwitter, ext))
	assert.Equal(t, []string{"TWITTER_CLIENT_SECRET"}, ListMissing(models.PlatformTwitter, ext))

	assert.False(t, IsConfigured(models.PlatformPinterest, ext))
	assert.Equal(t, []string{"PINTEREST_CLIENT_ID", "PINTEREST_CLIENT_SECRET"}, ListMissing(models.PlatformPinterest, ext))

	ext.Twitter.Secret = "secret"
	assert.True(t, IsConfigured(models.PlatformTwitter, ext))
	assert.Empty(t, ListMissing(models.PlatformTwitter, ext))
}

func TestRequiredEnvKeys(t *testing.T) {
	for _, platform := range models.OAuthPlatforms {
		keys := RequiredEnvKeys(platform)
		require.Len(t, keys, 2)
		prefix := strings.ToUpper(string(platform))
		assert.Equal(t, prefix+"_CLIENT_ID", keys[0])
		assert.Equal(t, prefix+"_CLIENT_SECRET", keys[1])
	}
}
