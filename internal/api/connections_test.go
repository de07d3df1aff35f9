package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
	"github.com/Zer0phucks/pubhub-connect/internal/models"
	"github.com/Zer0phucks/pubhub-connect/internal/pending"
	"github.com/Zer0phucks/pubhub-connect/internal/storage/test"
)

type ConnectionsTestSuite struct {
	suite.Suite
	API    *API
	Config *conf.GlobalConfiguration

	ProjectID uuid.UUID
	Token     string
}

func TestConnections(t *testing.T) {
	config, err := conf.LoadGlobal(apiTestConfig)
	require.NoError(t, err)

	conn, err := test.SetupDBConnection(config)
	require.NoError(t, err)
	defer conn.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := pending.NewStore(client, config.Redis.KeyPrefix, config.PendingAuthorizationTTL)

	api := NewAPIWithVersion(context.Background(), config, conn, store, apiTestVersion)
	suite.Run(t, &ConnectionsTestSuite{API: api, Config: config})
}

func (ts *ConnectionsTestSuite) SetupTest() {
	ts.Require().NoError(models.TruncateAll(ts.API.db))
	ts.ProjectID = uuid.Must(uuid.NewV4())
	ts.Token = accessTokenFor(ts.T(), ts.Config, ts.ProjectID)
}

func (ts *ConnectionsTestSuite) request(method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		ts.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.API.handler.ServeHTTP(w, req)
	return w
}

func (ts *ConnectionsTestSuite) seedConnection(platform models.Platform) *models.Connection {
	conn, err := models.UpsertConnected(ts.API.db, ts.ProjectID, platform, models.ConnectionUpdate{
		Username:        "creator",
		AccessTokenRef:  "super-secret-access",
		RefreshTokenRef: "super-secret-refresh",
		CompletedAt:     time.Now().UTC(),
	})
	ts.Require().NoError(err)
	return conn
}

func (ts *ConnectionsTestSuite) TestListEmpty() {
	w := ts.request(http.MethodGet, "http://localhost/connections?project_id="+ts.ProjectID.String(), nil)
	ts.Require().Equal(http.StatusOK, w.Code)

	var resp ConnectionsResponse
	ts.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	ts.Empty(resp.Connections)
}

func (ts *ConnectionsTestSuite) TestListNeverLeaksTokens() {
	ts.seedConnection(models.PlatformTwitter)

	w := ts.request(http.MethodGet, "http://localhost/connections?project_id="+ts.ProjectID.String(), nil)
	ts.Require().Equal(http.StatusOK, w.Code)

	body := w.Body.String()
	ts.NotContains(body, "super-secret-access")
	ts.NotContains(body, "super-secret-refresh")
	ts.NotContains(body, "access_token_ref")

	var resp ConnectionsResponse
	ts.Require().NoError(json.NewDecoder(bytes.NewReader([]byte(body))).Decode(&resp))
	ts.Require().Len(resp.Connections, 1)
	ts.True(resp.Connections[0].Connected)
	ts.Equal("creator", resp.Connections[0].Username)
}

func (ts *ConnectionsTestSuite) TestListForeignProjectDenied() {
	other := uuid.Must(uuid.NewV4())
	w := ts.request(http.MethodGet, "http://localhost/connections?project_id="+other.String(), nil)
	ts.Equal(http.StatusForbidden, w.Code)
}

func (ts *ConnectionsTestSuite) TestDisconnectIdempotent() {
	ts.seedConnection(models.PlatformReddit)

	params := DisconnectParams{ProjectID: ts.ProjectID.String(), Platform: "reddit"}

	w := ts.request(http.MethodPost, "http://localhost/oauth/disconnect", params)
	ts.Require().Equal(http.StatusOK, w.Code)

	conn, err := models.FindConnection(ts.API.db, ts.ProjectID, models.PlatformReddit)
	ts.Require().NoError(err)
	ts.False(conn.Connected)

	// disconnecting again changes nothing and still succeeds
	w = ts.request(http.MethodPost, "http://localhost/oauth/disconnect", params)
	ts.Require().Equal(http.StatusOK, w.Code)

	all, err := models.FindConnectionsByProjectID(ts.API.db, ts.ProjectID)
	ts.Require().NoError(err)
	ts.Len(all, 1, "the row survives disconnection")
}

func (ts *ConnectionsTestSuite) TestDisconnectNeverConnected() {
	w := ts.request(http.MethodPost, "http://localhost/oauth/disconnect", DisconnectParams{
		ProjectID: ts.ProjectID.String(),
		Platform:  "pinterest",
	})
	ts.Equal(http.StatusOK, w.Code)
}

func (ts *ConnectionsTestSuite) TestDisconnectUnknownPlatform() {
	w := ts.request(http.MethodPost, "http://localhost/oauth/disconnect", DisconnectParams{
		ProjectID: ts.ProjectID.String(),
		Platform:  "myspace",
	})
	ts.Equal(http.StatusBadRequest, w.Code)
	ts.Equal(ErrorCodeInvalidPlatform, w.Header().Get("x-pubhub-error-code"))
}

func (ts *ConnectionsTestSuite) TestAutoPostUpdate() {
	ts.seedConnection(models.PlatformTwitter)
	ts.seedConnection(models.PlatformYoutube)

	w := ts.request(http.MethodPut, "http://localhost/connections", ConnectionsUpdateParams{
		ProjectID: ts.ProjectID.String(),
		AutoPost:  map[string]bool{"twitter": true, "youtube": false},
	})
	ts.Require().Equal(http.StatusOK, w.Code)

	conn, err := models.FindConnection(ts.API.db, ts.ProjectID, models.PlatformTwitter)
	ts.Require().NoError(err)
	ts.True(conn.AutoPost)

	conn, err = models.FindConnection(ts.API.db, ts.ProjectID, models.PlatformYoutube)
	ts.Require().NoError(err)
	ts.False(conn.AutoPost)
}

func (ts *ConnectionsTestSuite) TestAutoPostUpdateMissingConnection() {
	w := ts.request(http.MethodPut, "http://localhost/connections", ConnectionsUpdateParams{
		ProjectID: ts.ProjectID.String(),
		AutoPost:  map[string]bool{"tiktok": true},
	})
	ts.Equal(http.StatusNotFound, w.Code)
	ts.Equal(ErrorCodeConnectionNotFound, w.Header().Get("x-pubhub-error-code"))
}
