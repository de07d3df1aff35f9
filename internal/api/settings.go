package api

import (
	"net/http"

	"github.com/Zer0phucks/pubhub-connect/internal/api/provider"
	"github.com/Zer0phucks/pubhub-connect/internal/models"
)

type SettingsResponse struct {
	// External maps each platform to whether the server holds credentials
	// for it. The dashboard greys out unconfigured platforms in the picker.
	External map[string]bool `json:"external"`
}

// Settings lists which platforms are ready to be connected. Public; it
// exposes configuration presence only, never the credentials.
func (a *API) Settings(w http.ResponseWriter, r *http.Request) error {
	config := a.config

	external := make(map[string]bool, len(models.AllPlatforms))
	for _, platform := range models.OAuthPlatforms {
		external[string(platform)] = provider.IsConfigured(platform, &config.External)
	}
	// the blog path needs no server-side credentials
	external[string(models.PlatformBlog)] = true

	return sendJSON(w, http.StatusOK, SettingsResponse{External: external})
}
