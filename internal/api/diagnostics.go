package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Zer0phucks/pubhub-connect/internal/api/provider"
	"github.com/Zer0phucks/pubhub-connect/internal/models"
)

// PlatformDiagnostic is the per-platform status block behind the dashboard's
// "test connections" panel.
type PlatformDiagnostic struct {
	Platform       models.Platform `json:"platform"`
	Configured     bool            `json:"configured"`
	MissingKeys    []string        `json:"missing_keys,omitempty"`
	Connected      bool            `json:"connected"`
	Username       string          `json:"username,omitempty"`
	TokenExpiresAt *time.Time      `json:"token_expires_at,omitempty"`

	// AuthURLOK reports a dry-run build of the authorize URL; no pending
	// authorization is written for it.
	AuthURLOK    bool   `json:"auth_url_ok"`
	AuthURLError string `json:"auth_url_error,omitempty"`
}

type DiagnosticsResponse struct {
	Platforms []PlatformDiagnostic `json:"platforms"`
}

// Diagnostics reports, per platform, whether it is configured, connected and
// able to build an authorize URL.
func (a *API) Diagnostics(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	db := a.db.WithContext(ctx)
	config := a.config

	projectID, err := a.requestProjectID(r, r.URL.Query().Get("project_id"))
	if err != nil {
		return err
	}

	conns, err := models.FindConnectionsByProjectID(db, projectID)
	if err != nil {
		return internalServerError("Error finding connections").WithInternalError(err)
	}
	byPlatform := make(map[models.Platform]*models.Connection, len(conns))
	for _, conn := range conns {
		byPlatform[conn.Platform] = conn
	}

	resp := DiagnosticsResponse{}
	for _, platform := range models.OAuthPlatforms {
		d := PlatformDiagnostic{
			Platform:    platform,
			Configured:  provider.IsConfigured(platform, &config.External),
			MissingKeys: provider.ListMissing(platform, &config.External),
		}

		if conn := byPlatform[platform]; conn != nil {
			d.Connected = conn.Connected
			d.Username = conn.Username
			d.TokenExpiresAt = conn.TokenExpiresAt
		}

		if d.Configured {
			if p, perr := provider.Get(platform, &config.External); perr != nil {
				d.AuthURLError = perr.Error()
			} else if u := p.AuthCodeURL("diagnostic"); u == "" {
				d.AuthURLError = "empty authorize URL"
			} else {
				d.AuthURLOK = true
			}
		}

		resp.Platforms = append(resp.Platforms, d)
	}

	blog := PlatformDiagnostic{Platform: models.PlatformBlog, Configured: true}
	if conn := byPlatform[models.PlatformBlog]; conn != nil {
		blog.Connected = conn.Connected
		blog.Username = conn.Username
	}
	resp.Platforms = append(resp.Platforms, blog)

	return sendJSON(w, http.StatusOK, resp)
}

// DiagnosticsLogs dumps the retained connection activity as plain text, in
// the shape the dashboard's "copy all logs" button expects.
func (a *API) DiagnosticsLogs(w http.ResponseWriter, r *http.Request) error {
	entries := a.diag.CopyAll()

	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "[%s] %s: %s\n", entry.Timestamp.Format(time.RFC3339), entry.Platform, entry.Message)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(b.String()))
	return err
}
