package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	for _, platform := range AllPlatforms {
		parsed, err := ParsePlatform(string(platform))
		require.NoError(t, err)
		assert.Equal(t, platform, parsed)
	}

	cases := []string{"", "myspace", "Twitter", "twitter ", "x"}
	for _, name := range cases {
		_, err := ParsePlatform(name)
		require.Error(t, err, "expected %q to be rejected", name)
		assert.IsType(t, InvalidPlatformError{}, err)
	}
}

func TestPlatformIsOAuth(t *testing.T) {
	for _, platform := range OAuthPlatforms {
		assert.True(t, platform.IsOAuth())
	}
	assert.False(t, PlatformBlog.IsOAuth())
}

func TestConnectionValidate(t *testing.T) {
	conn := NewConnection(mustProjectID(t), PlatformTwitter)
	require.NoError(t, conn.Validate())

	conn.Connected = true
	require.Error(t, conn.Validate(), "connected without a token must fail")

	conn.AccessTokenRef = "tokenref"
	require.NoError(t, conn.Validate())

	conn.Connected = false
	require.Error(t, conn.Validate(), "disconnected with a token must fail")
}
