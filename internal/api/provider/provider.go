package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/Zer0phucks/pubhub-connect/internal/utilities"
)

var defaultTimeout time.Duration = time.Second * 10

// Profile is the minimal identity fetched from the provider's user-info
// endpoint after a successful token exchange. Posting does not depend on it,
// so a failed profile fetch never fails the connection.
type Profile struct {
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Followers   int64  `json:"followers,omitempty"`
}

// OAuthProvider is implemented once per social platform. Each implementation
// wraps an oauth2.Config carrying the platform's endpoints, scopes and
// redirect URI.
type OAuthProvider interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	GetOAuthToken(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserData(ctx context.Context, tok *oauth2.Token) (*Profile, error)
}

func chooseHost(base, defaultHost string) string {
	if base == "" {
		return defaultHost
	}

	baseLen := len(base)
	if base[baseLen-1] == '/' {
		return base[:baseLen-1]
	}

	return base
}

// exchange swaps the authorization code for tokens. Transport failures are
// retried once; a response the provider actually produced, success or not,
// is never retried.
func exchange(ctx context.Context, g *oauth2.Config, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	tok, err := g.Exchange(ctx, code, opts...)
	if err == nil {
		return tok, nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, err
	}

	return g.Exchange(ctx, code, opts...)
}

func makeRequest(ctx context.Context, tok *oauth2.Token, g *oauth2.Config, url string, dst interface{}) error {
	client := g.Client(ctx, tok)
	client.Timeout = defaultTimeout
	res, err := client.Get(url)
	if err != nil {
		return err
	}
	defer utilities.SafeClose(res.Body)

	bodyBytes, _ := io.ReadAll(res.Body)
	res.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return httpError(res.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return err
	}

	return nil
}
