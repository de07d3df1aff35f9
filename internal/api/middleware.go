package api

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"
	jwt "github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims is the shape of the bearer tokens PubHub's sign-in
// service issues to the dashboard. ProjectIDs enumerates the projects the
// caller may manage connections for.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Email      string   `json:"email,omitempty"`
	Role       string   `json:"role,omitempty"`
	ProjectIDs []string `json:"project_ids,omitempty"`
}

// CanAccessProject reports whether the token grants management of a project.
func (c *AccessTokenClaims) CanAccessProject(projectID uuid.UUID) bool {
	for _, id := range c.ProjectIDs {
		if id == projectID.String() {
			return true
		}
	}
	return false
}

// requireAuthentication checks incoming requests for tokens presented using the Authorization header
func (a *API) requireAuthentication(w http.ResponseWriter, r *http.Request) (context.Context, error) {
	token, err := a.extractBearerToken(r)
	if err != nil {
		return nil, err
	}

	return a.parseJWTClaims(token, r)
}

func (a *API) extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	matches := bearerRegexp.FindStringSubmatch(authHeader)
	if len(matches) != 2 {
		return "", unauthorizedError(ErrorCodeNoAuthorization, "This endpoint requires a valid Bearer token")
	}

	return matches[1], nil
}

func (a *API) parseJWTClaims(bearer string, r *http.Request) (context.Context, error) {
	ctx := r.Context()
	config := a.config

	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithAudience(config.JWT.Aud),
	)
	token, err := p.ParseWithClaims(bearer, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.JWT.Secret), nil
	})
	if err != nil {
		return nil, unauthorizedError(ErrorCodeBadJWT, "Invalid token: %v", err).WithInternalError(err)
	}

	return withToken(ctx, token), nil
}
