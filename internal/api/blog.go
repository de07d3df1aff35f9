package api

import (
	"context"
	"net/http"

	"github.com/Zer0phucks/pubhub-connect/internal/api/provider"
	"github.com/Zer0phucks/pubhub-connect/internal/models"
)

// BlogConnectParams carries the WordPress credentials. The password is an
// application password, checked once against the site and then stored.
type BlogConnectParams struct {
	ProjectID string `json:"project_id"`
	SiteURL   string `json:"site_url"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// BlogConnect links a self-hosted WordPress site to the project. Unlike the
// OAuth platforms there is no redirect; the credential check happens inline.
func (a *API) BlogConnect(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	db := a.db.WithContext(ctx)
	config := a.config

	params := &BlogConnectParams{}
	if err := retrieveRequestParams(r, params); err != nil {
		return err
	}

	projectID, err := a.requestProjectID(r, params.ProjectID)
	if err != nil {
		return err
	}

	if params.SiteURL == "" || params.Username == "" || params.Password == "" {
		return badRequestError(ErrorCodeValidationFailed, "site_url, username and password are all required")
	}

	site, err := provider.ValidateWordPressSiteURL(params.SiteURL)
	if err != nil {
		return badRequestError(ErrorCodeValidationFailed, "Invalid site URL: %v", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, config.OAuthExchangeTimeout)
	defer cancel()

	profile, err := provider.CheckWordPressCredentials(checkCtx, provider.WordPressCredentials{
		SiteURL:  site,
		Username: params.Username,
		Password: params.Password,
	})
	if err != nil {
		a.diag.Record(models.PlatformBlog, "credential check against %s failed: %v", site, err)
		if herr, ok := err.(*provider.HTTPError); ok && herr.Code == http.StatusUnauthorized {
			return unauthorizedError(ErrorCodeBlogAuthFailed, "WordPress rejected the username or application password").WithInternalError(err)
		}
		return badGatewayError(ErrorCodeBlogUnreachable, "Could not reach the WordPress REST API at %s", site).WithInternalError(err)
	}

	update := models.ConnectionUpdate{
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		// the basic-auth pair doubles as the stored credential
		AccessTokenRef: params.Username + ":" + params.Password,
		CompletedAt:    a.Now().UTC(),
	}

	conn, err := models.UpsertConnected(db, projectID, models.PlatformBlog, update)
	if err != nil {
		return internalServerError("Error saving blog connection").WithInternalError(err)
	}

	a.diag.Record(models.PlatformBlog, "connected %s for project %s as %q", site, projectID, conn.Username)

	return sendJSON(w, http.StatusOK, conn)
}
