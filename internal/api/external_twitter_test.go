package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	"github.com/Zer0phucks/pubhub-connect/internal/models"
	"github.com/Zer0phucks/pubhub-connect/internal/storage"
)

const twitterProfileResponse = `{"data":{"id":"1234","name":"Creator Name","username":"creator","profile_image_url":"http://example.com/avatar.jpg","public_metrics":{"followers_count":4210}}}`

// twitterStubServer stands in for both x.com and api.x.com.
func (ts *ExternalTestSuite) twitterStubServer(tokenStatus int, profileStatus int) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2/oauth2/token":
			if tokenStatus != http.StatusOK {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tokenStatus)
				fmt.Fprint(w, `{"error":"invalid_grant"}`)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"twitter_access_token","token_type":"bearer","expires_in":7200,"refresh_token":"twitter_refresh_token"}`)
		case "/2/users/me":
			if profileStatus != http.StatusOK {
				w.WriteHeader(profileStatus)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, twitterProfileResponse)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			ts.Failf("unexpected request", "unknown twitter call %s", r.URL.Path)
		}
	}))

	ts.Config.External.Twitter.URL = server.URL
	return server
}

func (ts *ExternalTestSuite) TestTwitterCallbackConnects() {
	server := ts.twitterStubServer(http.StatusOK, http.StatusOK)
	defer server.Close()

	resp := ts.beginTwitter()

	q := ts.redirectQuery(ts.callback(url.Values{"state": {resp.State}, "code": {"authcode"}}))
	ts.Equal("twitter", q.Get("platform"))
	ts.Equal("connected", q.Get("status"))

	conn, err := models.FindConnection(ts.API.db, ts.ProjectID, models.PlatformTwitter)
	ts.Require().NoError(err)
	ts.True(conn.Connected)
	ts.Equal("creator", conn.Username)
	ts.Equal("Creator Name", conn.DisplayName)
	ts.Equal(int64(4210), conn.Followers)
	ts.Equal(storage.NullString("twitter_access_token"), conn.AccessTokenRef)
	ts.Equal(storage.NullString("twitter_refresh_token"), conn.RefreshTokenRef)
	ts.Require().NotNil(conn.TokenExpiresAt)
	ts.WithinDuration(time.Now().Add(2*time.Hour), *conn.TokenExpiresAt, time.Minute)
}

func (ts *ExternalTestSuite) TestTwitterCallbackReplayRejected() {
	server := ts.twitterStubServer(http.StatusOK, http.StatusOK)
	defer server.Close()

	resp := ts.beginTwitter()

	q := ts.redirectQuery(ts.callback(url.Values{"state": {resp.State}, "code": {"authcode"}}))
	ts.Equal("connected", q.Get("status"))

	// replaying the exact same callback must fail; the state was consumed
	q = ts.redirectQuery(ts.callback(url.Values{"state": {resp.State}, "code": {"authcode"}}))
	ts.Equal(ErrorCodeInvalidOrExpiredState, q.Get("error_reason"))

	// and the connection from the first callback is still intact
	conn, err := models.FindConnection(ts.API.db, ts.ProjectID, models.PlatformTwitter)
	ts.Require().NoError(err)
	ts.True(conn.Connected)
}

func (ts *ExternalTestSuite) TestTwitterExchangeFailureLeavesConnectionUntouched() {
	okServer := ts.twitterStubServer(http.StatusOK, http.StatusOK)
	resp := ts.beginTwitter()
	ts.redirectQuery(ts.callback(url.Values{"state": {resp.State}, "code": {"authcode"}}))
	okServer.Close()

	failServer := ts.twitterStubServer(http.StatusBadRequest, http.StatusOK)
	defer failServer.Close()

	resp = ts.beginTwitter()
	q := ts.redirectQuery(ts.callback(url.Values{"state": {resp.State}, "code": {"badcode"}}))
	ts.Equal(ErrorCodeTokenExchangeFailed, q.Get("error_reason"))

	// the earlier credential survives the failed reconnect
	conn, err := models.FindConnection(ts.API.db, ts.ProjectID, models.PlatformTwitter)
	ts.Require().NoError(err)
	ts.True(conn.Connected)
	ts.Equal(storage.NullString("twitter_access_token"), conn.AccessTokenRef)
	ts.Equal("creator", conn.Username)
}

func (ts *ExternalTestSuite) TestTwitterExchangeFailureWithoutPriorConnection() {
	server := ts.twitterStubServer(http.StatusBadRequest, http.StatusOK)
	defer server.Close()

	resp := ts.beginTwitter()
	q := ts.redirectQuery(ts.callback(url.Values{"state": {resp.State}, "code": {"badcode"}}))
	ts.Equal(ErrorCodeTokenExchangeFailed, q.Get("error_reason"))

	_, err := models.FindConnection(ts.API.db, ts.ProjectID, models.PlatformTwitter)
	ts.True(models.IsNotFoundError(err))
}

func (ts *ExternalTestSuite) TestTwitterProfileFetchFailureIsNonFatal() {
	server := ts.twitterStubServer(http.StatusOK, http.StatusInternalServerError)
	defer server.Close()

	resp := ts.beginTwitter()
	q := ts.redirectQuery(ts.callback(url.Values{"state": {resp.State}, "code": {"authcode"}}))
	ts.Equal("connected", q.Get("status"))

	conn, err := models.FindConnection(ts.API.db, ts.ProjectID, models.PlatformTwitter)
	ts.Require().NoError(err)
	ts.True(conn.Connected, "the connection stands even without a profile")
	ts.Empty(conn.Username)
	ts.Equal(storage.NullString("twitter_access_token"), conn.AccessTokenRef)
}

func (ts *ExternalTestSuite) TestTwitterCallbackAcceptsPost() {
	server := ts.twitterStubServer(http.StatusOK, http.StatusOK)
	defer server.Close()

	resp := ts.beginTwitter()

	form := url.Values{"state": {resp.State}, "code": {"authcode"}}
	req := httptest.NewRequest(http.MethodPost, "http://localhost/oauth/callback", nil)
	req.URL.RawQuery = form.Encode()
	w := httptest.NewRecorder()
	ts.API.handler.ServeHTTP(w, req)

	q := ts.redirectQuery(w)
	ts.Equal("connected", q.Get("status"))
}
