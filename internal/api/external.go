package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Zer0phucks/pubhub-connect/internal/api/provider"
	"github.com/Zer0phucks/pubhub-connect/internal/models"
	"github.com/Zer0phucks/pubhub-connect/internal/observability"
	"github.com/Zer0phucks/pubhub-connect/internal/pending"
	"github.com/Zer0phucks/pubhub-connect/internal/utilities"
)

// AuthorizeResponse is what the dashboard receives when it starts a flow; it
// opens AuthURL in a popup and the rest happens through the callback.
type AuthorizeResponse struct {
	AuthURL   string    `json:"auth_url"`
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExternalProviderRedirect starts an OAuth authorization for a platform. The
// pending record is written only after the platform is known to be
// configured, so a refused begin leaves no state behind.
func (a *API) ExternalProviderRedirect(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	config := a.config

	platform, err := requestPlatform(chi.URLParam(r, "platform"))
	if err != nil {
		return err
	}
	if !platform.IsOAuth() {
		return badRequestError(ErrorCodeInvalidPlatform, "Platform %q does not use the OAuth flow", platform)
	}

	projectID, err := a.requestProjectID(r, r.URL.Query().Get("project_id"))
	if err != nil {
		return err
	}

	if !provider.IsConfigured(platform, &config.External) {
		missing := provider.ListMissing(platform, &config.External)
		a.diag.Record(platform, "authorize refused: missing server credentials %s", strings.Join(missing, ", "))
		return unprocessableEntityError(ErrorCodeProviderNotConfigured, "Platform %s is not configured on the server; set %s", platform, strings.Join(missing, ", "))
	}

	p, err := provider.Get(platform, &config.External)
	if err != nil {
		return internalServerError("Error loading provider for %s", platform).WithInternalError(err)
	}

	auth, err := a.pending.Begin(ctx, projectID, platform)
	if err != nil {
		return internalServerError("Error storing pending authorization").WithInternalError(err)
	}

	a.diag.Record(platform, "authorization started for project %s", projectID)
	observability.LogEntrySetField(r, "platform", platform)
	observability.GetLogEntry(r).WithField("platform", platform).Info("Redirecting to external provider")

	return sendJSON(w, http.StatusOK, AuthorizeResponse{
		AuthURL:   p.AuthCodeURL(auth.State),
		State:     auth.State,
		ExpiresAt: auth.ExpiresAt,
	})
}

// ExternalProviderCallback handles the callback endpoint in the external
// oauth provider flow. The browser lands here, so failures redirect back to
// the dashboard with error details in the query string instead of a JSON
// body.
func (a *API) ExternalProviderCallback(w http.ResponseWriter, r *http.Request) error {
	u, err := url.Parse(strings.TrimSuffix(a.config.FrontendURL, "/") + "/connections")
	if err != nil {
		return err
	}
	a.redirectErrors(a.internalExternalProviderCallback, w, r, u)
	return nil
}

func callbackQuery(r *http.Request) url.Values {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			return r.Form
		}
	}
	return r.URL.Query()
}

func (a *API) internalExternalProviderCallback(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	db := a.db.WithContext(ctx)
	config := a.config

	q := callbackQuery(r)

	state := q.Get("state")
	if state == "" {
		return badRequestError(ErrorCodeInvalidOrExpiredState, "OAuth callback is missing its state")
	}

	// Consuming removes the pending record before anything else happens, so a
	// replayed callback fails here no matter how the first one went.
	auth, err := a.pending.Consume(ctx, state)
	if err != nil {
		if pending.IsNotFoundError(err) {
			return badRequestError(ErrorCodeInvalidOrExpiredState, "OAuth state is invalid or has expired")
		}
		return internalServerError("Error consuming pending authorization").WithInternalError(err)
	}

	platform := auth.Platform
	log := observability.GetLogEntry(r).WithField("platform", platform)

	if hint := q.Get("platform"); hint != "" && hint != string(platform) {
		a.diag.Record(platform, "callback carried platform %q but the pending authorization was for %s", hint, platform)
		return badRequestError(ErrorCodePlatformMismatch, "Callback platform %q does not match the pending authorization", hint)
	}

	if oauthErr := q.Get("error"); oauthErr != "" {
		desc := q.Get("error_description")
		a.diag.Record(platform, "provider returned error %q: %s", oauthErr, desc)
		return badRequestError(ErrorCodeProviderDenied, "Provider returned error: %s", oauthErr).
			WithInternalError(oauthError(oauthErr, desc))
	}

	code := q.Get("code")
	if code == "" {
		return badRequestError(ErrorCodeValidationFailed, "OAuth callback is missing the authorization code")
	}

	p, err := provider.Get(platform, &config.External)
	if err != nil {
		return unprocessableEntityError(ErrorCodeProviderNotConfigured, "Platform %s is no longer configured on the server", platform).WithInternalError(err)
	}

	exchangeCtx, cancelExchange := context.WithTimeout(ctx, config.OAuthExchangeTimeout)
	defer cancelExchange()

	tok, err := p.GetOAuthToken(exchangeCtx, code)
	if err != nil {
		a.diag.Record(platform, "token exchange failed: %v", err)
		return badGatewayError(ErrorCodeTokenExchangeFailed, "OAuth token exchange with %s failed", platform).WithInternalError(err)
	}

	completedAt := a.Now().UTC()

	// identity is cosmetic; posting only needs the token
	profile := &provider.Profile{}
	profileCtx, cancelProfile := context.WithTimeout(ctx, config.OAuthExchangeTimeout)
	defer cancelProfile()
	if fetched, perr := p.GetUserData(profileCtx, tok); perr != nil {
		log.WithError(perr).Warn("Profile fetch failed; connection proceeds without identity details")
		a.diag.Record(platform, "profile fetch failed: %v", perr)
	} else {
		profile = fetched
	}

	update := models.ConnectionUpdate{
		Username:        profile.Username,
		DisplayName:     profile.DisplayName,
		Followers:       profile.Followers,
		AccessTokenRef:  tok.AccessToken,
		RefreshTokenRef: tok.RefreshToken,
		CompletedAt:     completedAt,
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry.UTC()
		update.TokenExpiresAt = &expiry
	}

	conn, err := models.UpsertConnected(db, auth.ProjectID, platform, update)
	if err != nil {
		return internalServerError("Error saving connection").WithInternalError(err)
	}

	a.diag.Record(platform, "connection established for project %s as %q", auth.ProjectID, conn.Username)
	log.Info("External authorization completed")

	rurl := url.Values{}
	rurl.Set("platform", string(platform))
	rurl.Set("status", "connected")

	u, err := url.Parse(strings.TrimSuffix(config.FrontendURL, "/") + "/connections")
	if err != nil {
		return err
	}
	u.RawQuery = rurl.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
	return nil
}

// redirectErrors converts handler errors into a redirect back to the
// dashboard, since the browser, not the dashboard code, is the caller here.
func (a *API) redirectErrors(handler apiHandler, w http.ResponseWriter, r *http.Request, u *url.URL) {
	ctx := r.Context()
	log := observability.GetLogEntry(r)
	errorID := utilities.GetRequestID(ctx)
	err := handler(w, r)
	if err != nil {
		q := getErrorQueryString(err, errorID, log, u.Query())
		u.RawQuery = q.Encode()
		http.Redirect(w, r, u.String(), http.StatusFound)
	}
}

func getErrorQueryString(err error, errorID string, log logrus.FieldLogger, q url.Values) *url.Values {
	switch e := err.(type) {
	case *HTTPError:
		if str, ok := oauthErrorMap[e.HTTPStatus]; ok {
			q.Set("error", str)
		} else {
			q.Set("error", "server_error")
		}
		if e.HTTPStatus >= http.StatusInternalServerError {
			e.ErrorID = errorID
			log.WithError(e.Cause()).Error(e.Error())
		} else {
			log.WithError(e.Cause()).Info(e.Error())
		}
		q.Set("error_description", e.Message)
		q.Set("error_code", strconv.Itoa(e.HTTPStatus))
		if e.ErrorCode != "" {
			q.Set("error_reason", e.ErrorCode)
		}
	case *OAuthError:
		q.Set("error", e.Err)
		q.Set("error_description", e.Description)
		log.WithError(e.Cause()).Info(e.Error())
	case ErrorCause:
		return getErrorQueryString(e.Cause(), errorID, log, q)
	default:
		errorType, errorDescription := "server_error", err.Error()
		q.Set("error", errorType)
		q.Set("error_description", errorDescription)
	}
	return &q
}
