package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
	"github.com/Zer0phucks/pubhub-connect/internal/models"
	"github.com/Zer0phucks/pubhub-connect/internal/utilities"
)

func addRequestID(globalConfig *conf.GlobalConfiguration) middlewareHandler {
	return func(w http.ResponseWriter, r *http.Request) (context.Context, error) {
		id := ""
		if globalConfig.API.RequestIDHeader != "" {
			id = r.Header.Get(globalConfig.API.RequestIDHeader)
		}
		if id == "" {
			uid := uuid.Must(uuid.NewV4())
			id = uid.String()
		}

		ctx := r.Context()
		ctx = utilities.WithRequestID(ctx, id)
		return ctx, nil
	}
}

func sendJSON(w http.ResponseWriter, status int, obj interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.Marshal(obj)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("Error encoding json response: %v", obj))
	}
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}

// retrieveRequestParams unmarshals a JSON request body into params.
func retrieveRequestParams(r *http.Request, params interface{}) error {
	body, err := utilities.GetBodyBytes(r)
	if err != nil {
		return internalServerError("Could not read body into byte slice").WithInternalError(err)
	}
	if err := json.Unmarshal(body, params); err != nil {
		return badRequestError(ErrorCodeBadJSON, "Could not parse request body as JSON: %v", err)
	}
	return nil
}

// requestPlatform validates the {platform} URL parameter against the closed
// platform set.
func requestPlatform(name string) (models.Platform, error) {
	platform, err := models.ParsePlatform(name)
	if err != nil {
		return "", badRequestError(ErrorCodeInvalidPlatform, "Unsupported platform: %q", name).WithInternalError(err)
	}
	return platform, nil
}

// requestProjectID parses and checks access to the project_id query parameter.
func (a *API) requestProjectID(r *http.Request, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, badRequestError(ErrorCodeValidationFailed, "project_id is required")
	}

	projectID, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, badRequestError(ErrorCodeValidationFailed, "project_id must be a UUID")
	}

	claims := getClaims(r.Context())
	if claims == nil {
		return uuid.Nil, unauthorizedError(ErrorCodeNotAuthenticated, "This endpoint requires authentication")
	}
	if !claims.CanAccessProject(projectID) {
		return uuid.Nil, forbiddenError(ErrorCodeProjectAccessDenied, "Caller may not manage project %s", projectID)
	}

	return projectID, nil
}
