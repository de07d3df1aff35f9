package api

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/cors"
	"github.com/sebest/xff"
	"github.com/sirupsen/logrus"

	"github.com/Zer0phucks/pubhub-connect/internal/conf"
	"github.com/Zer0phucks/pubhub-connect/internal/diagnostics"
	"github.com/Zer0phucks/pubhub-connect/internal/observability"
	"github.com/Zer0phucks/pubhub-connect/internal/pending"
	"github.com/Zer0phucks/pubhub-connect/internal/storage"
)

const defaultVersion = "unknown version"

var bearerRegexp = regexp.MustCompile(`^(?:B|b)earer (\S+$)`)

// API is the main REST API
type API struct {
	handler http.Handler
	db      *storage.Connection
	config  *conf.GlobalConfiguration
	pending *pending.Store
	diag    *diagnostics.Recorder
	version string

	// overrideTime can be used to override the clock used by handlers. Should only be used in tests!
	overrideTime func() time.Time
}

func (a *API) Now() time.Time {
	if a.overrideTime != nil {
		return a.overrideTime()
	}

	return time.Now()
}

// NewAPI instantiates a new REST API
func NewAPI(globalConfig *conf.GlobalConfiguration, db *storage.Connection, pendingStore *pending.Store) *API {
	return NewAPIWithVersion(context.Background(), globalConfig, db, pendingStore, defaultVersion)
}

// NewAPIWithVersion creates a new REST API using the specified version
func NewAPIWithVersion(ctx context.Context, globalConfig *conf.GlobalConfiguration, db *storage.Connection, pendingStore *pending.Store, version string) *API {
	api := &API{
		config:  globalConfig,
		db:      db,
		pending: pendingStore.WithTTL(globalConfig.PendingAuthorizationTTL),
		diag:    diagnostics.NewRecorder(diagnostics.DefaultCapacity),
		version: version,
	}

	xffmw, _ := xff.Default()
	logger := observability.NewStructuredLogger(logrus.StandardLogger())

	r := newRouter()
	r.Use(addRequestID(globalConfig))
	r.UseBypass(xffmw.Handler)
	r.UseBypass(recoverer)

	r.Get("/health", api.HealthCheck)

	// the provider redirects the browser here; the only credential is the
	// state token itself
	r.Route("/oauth/callback", func(r *router) {
		r.UseBypass(logger)

		r.Get("/", api.ExternalProviderCallback)
		r.Post("/", api.ExternalProviderCallback)
	})

	r.Route("/", func(r *router) {
		r.UseBypass(logger)

		r.Get("/settings", api.Settings)

		r.With(api.requireAuthentication).Route("/oauth", func(r *router) {
			r.Get("/authorize/{platform}", api.ExternalProviderRedirect)
			r.Post("/disconnect", api.Disconnect)
		})

		r.With(api.requireAuthentication).Route("/connections", func(r *router) {
			r.Get("/", api.ConnectionsList)
			r.Put("/", api.ConnectionsUpdate)
		})

		r.With(api.requireAuthentication).Post("/blog/connect", api.BlogConnect)

		r.With(api.requireAuthentication).Route("/diagnostics", func(r *router) {
			r.Get("/", api.Diagnostics)
			r.Get("/logs", api.DiagnosticsLogs)
		})
	})

	corsHandler := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Client-IP", "X-Client-Info"},
		ExposedHeaders:   []string{"X-Total-Count", "Link"},
		AllowCredentials: true,
	})

	api.handler = corsHandler.Handler(r)
	return api
}

type HealthCheckResponse struct {
	Version     string `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HealthCheck endpoint indicates if the connection manager is available
func (a *API) HealthCheck(w http.ResponseWriter, r *http.Request) error {
	return sendJSON(w, http.StatusOK, HealthCheckResponse{
		Version:     a.version,
		Name:        "PubHub Connect",
		Description: "PubHub Connect manages a project's social platform credentials",
	})
}
