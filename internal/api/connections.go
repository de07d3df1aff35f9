package api

import (
	"net/http"

	"github.com/Zer0phucks/pubhub-connect/internal/models"
	"github.com/Zer0phucks/pubhub-connect/internal/observability"
)

type ConnectionsResponse struct {
	Connections []*models.Connection `json:"connections"`
}

// ConnectionsList returns every connection row owned by a project. Token
// references never serialize, so the response is safe for the dashboard.
func (a *API) ConnectionsList(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	db := a.db.WithContext(ctx)

	projectID, err := a.requestProjectID(r, r.URL.Query().Get("project_id"))
	if err != nil {
		return err
	}

	conns, err := models.FindConnectionsByProjectID(db, projectID)
	if err != nil {
		return internalServerError("Error finding connections").WithInternalError(err)
	}

	return sendJSON(w, http.StatusOK, ConnectionsResponse{Connections: conns})
}

// ConnectionsUpdateParams is the bulk auto-post toggle the dashboard submits
// when the user saves the posting matrix.
type ConnectionsUpdateParams struct {
	ProjectID string          `json:"project_id"`
	AutoPost  map[string]bool `json:"auto_post"`
}

// ConnectionsUpdate applies auto-post toggles to a project's connections.
func (a *API) ConnectionsUpdate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	db := a.db.WithContext(ctx)

	params := &ConnectionsUpdateParams{}
	if err := retrieveRequestParams(r, params); err != nil {
		return err
	}

	projectID, err := a.requestProjectID(r, params.ProjectID)
	if err != nil {
		return err
	}

	// validate the whole batch before touching any row
	updates := make(map[models.Platform]bool, len(params.AutoPost))
	for name, enabled := range params.AutoPost {
		platform, perr := requestPlatform(name)
		if perr != nil {
			return perr
		}
		updates[platform] = enabled
	}

	for platform, enabled := range updates {
		if _, uerr := models.SetAutoPost(db, projectID, platform, enabled); uerr != nil {
			if models.IsNotFoundError(uerr) {
				return notFoundError(ErrorCodeConnectionNotFound, "Project has no %s connection to update", platform)
			}
			return internalServerError("Error updating auto_post for %s", platform).WithInternalError(uerr)
		}
	}

	conns, err := models.FindConnectionsByProjectID(db, projectID)
	if err != nil {
		return internalServerError("Error finding connections").WithInternalError(err)
	}

	return sendJSON(w, http.StatusOK, ConnectionsResponse{Connections: conns})
}

type DisconnectParams struct {
	ProjectID string `json:"project_id"`
	Platform  string `json:"platform"`
}

// Disconnect clears a platform's stored credential. Repeating a disconnect is
// a no-op, and the history row survives.
func (a *API) Disconnect(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	db := a.db.WithContext(ctx)

	params := &DisconnectParams{}
	if err := retrieveRequestParams(r, params); err != nil {
		return err
	}

	platform, err := requestPlatform(params.Platform)
	if err != nil {
		return err
	}

	projectID, err := a.requestProjectID(r, params.ProjectID)
	if err != nil {
		return err
	}

	conn, err := models.Disconnect(db, projectID, platform)
	if err != nil {
		return internalServerError("Error disconnecting %s", platform).WithInternalError(err)
	}

	a.diag.Record(platform, "disconnected for project %s", projectID)
	observability.LogEntrySetField(r, "platform", platform)

	return sendJSON(w, http.StatusOK, conn)
}
