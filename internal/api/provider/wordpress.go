package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/Zer0phucks/pubhub-connect/internal/utilities"
)

// WordPressCredentials carries the site URL and application password used
// for the non-OAuth blog path. The password is checked once and stored; it
// never travels through the OAuth state machinery.
type WordPressCredentials struct {
	SiteURL  string
	Username string
	Password string
}

type wordpressUser struct {
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	AvatarURLs map[string]string `json:"avatar_urls"`
}

// ValidateWordPressSiteURL normalizes and validates a self-hosted blog URL.
func ValidateWordPressSiteURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.Wrap(err, "parsing site URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("site URL must use http or https")
	}
	if u.Host == "" {
		return "", errors.New("site URL is missing a host")
	}
	u.Fragment = ""
	u.RawQuery = ""
	return strings.TrimSuffix(u.String(), "/"), nil
}

// CheckWordPressCredentials verifies the application password against the
// site's REST API and returns the authenticated user's profile.
func CheckWordPressCredentials(ctx context.Context, creds WordPressCredentials) (*Profile, error) {
	site, err := ValidateWordPressSiteURL(creds.SiteURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, site+"/wp-json/wp/v2/users/me?context=edit", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(creds.Username, creds.Password)

	client := &http.Client{Timeout: defaultTimeout}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer utilities.SafeClose(res.Body)

	bodyBytes, _ := io.ReadAll(res.Body)
	res.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, httpError(res.StatusCode, string(bodyBytes))
	}

	var u wordpressUser
	if err := json.NewDecoder(res.Body).Decode(&u); err != nil {
		return nil, err
	}

	avatar := u.AvatarURLs["96"]
	if avatar == "" {
		for _, v := range u.AvatarURLs {
			avatar = v
			break
		}
	}

	return &Profile{
		Username:    u.Slug,
		DisplayName: u.Name,
		AvatarURL:   avatar,
	}, nil
}
