package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWordPressSiteURL(t *testing.T) {
	site, err := ValidateWordPressSiteURL("https://blog.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://blog.example.com", site)

	site, err = ValidateWordPressSiteURL("  http://blog.example.com/path/?utm=1#frag ")
	require.NoError(t, err)
	assert.Equal(t, "http://blog.example.com/path", site)

	for _, bad := range []string{"", "blog.example.com", "ftp://blog.example.com", "https://"} {
		_, err = ValidateWordPressSiteURL(bad)
		require.Error(t, err, "expected %q to be rejected", bad)
	}
}

func wordpressStub(t *testing.T, username, password string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/users/me" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != username || pass != password {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"code":"invalid_username"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"Site Author","slug":"author","avatar_urls":{"96":"http://example.com/avatar.png"}}`)
	}))
}

func TestCheckWordPressCredentials(t *testing.T) {
	server := wordpressStub(t, "author", "app-password")
	defer server.Close()

	profile, err := CheckWordPressCredentials(context.Background(), WordPressCredentials{
		SiteURL:  server.URL,
		Username: "author",
		Password: "app-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "author", profile.Username)
	assert.Equal(t, "Site Author", profile.DisplayName)
	assert.Equal(t, "http://example.com/avatar.png", profile.AvatarURL)
}

func TestCheckWordPressCredentialsRejected(t *testing.T) {
	server := wordpressStub(t, "author", "app-password")
	defer server.Close()

	_, err := CheckWordPressCredentials(context.Background(), WordPressCredentials{
		SiteURL:  server.URL,
		Username: "author",
		Password: "wrong",
	})
	require.Error(t, err)

	herr, ok := err.(*HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, herr.Code)
}
