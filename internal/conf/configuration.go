package conf

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// OAuthProviderConfiguration holds all config related to one external social
// platform. The client secret never leaves the server.
type OAuthProviderConfiguration struct {
	ClientID    string `json:"client_id" split_words:"true"`
	Secret      string `json:"secret" envconfig:"CLIENT_SECRET"`
	RedirectURI string `json:"redirect_uri" split_words:"true"`
	// URL overrides the provider's default host, used by tests to point the
	// flow at a stub server.
	URL string `json:"url"`
}

// ValidateOAuth checks a provider holds everything an authorization-code flow
// needs before a flow is started against it.
func (o *OAuthProviderConfiguration) ValidateOAuth() error {
	if o.ClientID == "" {
		return errors.New("missing OAuth client ID")
	}
	if o.Secret == "" {
		return errors.New("missing OAuth client secret")
	}
	if o.RedirectURI == "" {
		return errors.New("missing OAuth redirect URI")
	}
	return nil
}

// IsConfigured reports whether the operator has supplied server-side
// credentials for the provider. Boolean by contract; use the registry's
// missing-key listing for remediation detail.
func (o *OAuthProviderConfiguration) IsConfigured() bool {
	return o.ClientID != "" && o.Secret != ""
}

// ProviderConfiguration groups the per-platform OAuth credentials. Field
// names double as the env prefix, so the keys are exactly TWITTER_CLIENT_ID,
// TWITTER_CLIENT_SECRET, TWITTER_REDIRECT_URI and so on.
type ProviderConfiguration struct {
	Twitter   OAuthProviderConfiguration `json:"twitter"`
	Instagram OAuthProviderConfiguration `json:"instagram"`
	Linkedin  OAuthProviderConfiguration `json:"linkedin"`
	Facebook  OAuthProviderConfiguration `json:"facebook"`
	Youtube   OAuthProviderConfiguration `json:"youtube"`
	Tiktok    OAuthProviderConfiguration `json:"tiktok"`
	Pinterest OAuthProviderConfiguration `json:"pinterest"`
	Reddit    OAuthProviderConfiguration `json:"reddit"`
}

// DBConfiguration holds all the database related configuration.
type DBConfiguration struct {
	Driver         string `json:"driver"`
	URL            string `json:"url" envconfig:"DATABASE_URL" required:"true"`
	MaxPoolSize    int    `json:"max_pool_size" split_words:"true"`
	MigrationsPath string `json:"migrations_path" split_words:"true" default:"./migrations"`
}

func (c *DBConfiguration) Validate() error {
	return nil
}

// RedisConfiguration holds the connection details for the pending
// authorization store.
type RedisConfiguration struct {
	URL       string `json:"url" envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	KeyPrefix string `json:"key_prefix" split_words:"true" default:"pubhub"`
}

func (c *RedisConfiguration) Validate() error {
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	return nil
}

// JWTConfiguration holds all the JWT related configuration. PubHub's own
// sign-in service issues these tokens; this service only verifies them.
type JWTConfiguration struct {
	Secret string `json:"secret" required:"true"`
	Aud    string `json:"aud" default:"pubhub"`
}

type APIConfiguration struct {
	Host            string
	Port            int    `envconfig:"PORT" default:"8081"`
	RequestIDHeader string `envconfig:"REQUEST_ID_HEADER"`
	ExternalURL     string `json:"external_url" envconfig:"API_EXTERNAL_URL"`
}

func (a *APIConfiguration) Validate() error {
	if a.ExternalURL != "" {
		if _, err := url.ParseRequestURI(a.ExternalURL); err != nil {
			return err
		}
	}

	return nil
}

type LoggingConfig struct {
	Level            string                 `mapstructure:"log_level" json:"log_level"`
	File             string                 `mapstructure:"log_file" json:"log_file"`
	DisableColors    bool                   `mapstructure:"disable_colors" split_words:"true" json:"disable_colors"`
	QuoteEmptyFields bool                   `mapstructure:"quote_empty_fields" split_words:"true" json:"quote_empty_fields"`
	Fields           map[string]interface{} `mapstructure:"fields" json:"fields"`
	SQL              string                 `mapstructure:"sql" json:"sql"`
}

// GlobalConfiguration holds all the configuration that applies to the whole
// connection manager.
type GlobalConfiguration struct {
	API     APIConfiguration
	DB      DBConfiguration
	Redis   RedisConfiguration
	JWT     JWTConfiguration   `json:"jwt"`
	Logging LoggingConfig      `envconfig:"LOG"`

	// External is loaded without the service prefix so that the per-platform
	// env keys keep their canonical {PLATFORM}_CLIENT_ID shape.
	External ProviderConfiguration `ignored:"true"`

	// FrontendURL is the dashboard origin; the provider redirect URI is
	// derived from it unless a platform sets its own.
	FrontendURL string `json:"frontend_url" envconfig:"FRONTEND_URL" required:"true"`
	SiteURL     string `json:"site_url" split_words:"true"`

	// PendingAuthorizationTTL bounds how long a started flow may wait for its
	// callback before the state token expires.
	PendingAuthorizationTTL time.Duration `json:"pending_authorization_ttl" split_words:"true" default:"10m"`

	// OAuthExchangeTimeout bounds the outbound token-exchange and profile
	// calls to the provider.
	OAuthExchangeTimeout time.Duration `json:"oauth_exchange_timeout" envconfig:"OAUTH_EXCHANGE_TIMEOUT" default:"10s"`
}

func loadEnvironment(filename string) error {
	var err error
	if filename != "" {
		err = godotenv.Overload(filename)
	} else {
		err = godotenv.Load()
		// handle if .env file does not exist, this is OK
		if os.IsNotExist(err) {
			return nil
		}
	}
	return err
}

// LoadGlobal loads configuration from file and environment variables.
func LoadGlobal(filename string) (*GlobalConfiguration, error) {
	if err := loadEnvironment(filename); err != nil {
		return nil, err
	}

	config := new(GlobalConfiguration)
	if err := envconfig.Process("pubhub", config); err != nil {
		return nil, err
	}
	// platform credentials use unprefixed keys (TWITTER_CLIENT_ID, ...)
	if err := envconfig.Process("", &config.External); err != nil {
		return nil, err
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyDefaults sets defaults for a GlobalConfiguration
func (config *GlobalConfiguration) ApplyDefaults() error {
	if config.SiteURL == "" {
		config.SiteURL = config.FrontendURL
	}

	callbackURL := strings.TrimSuffix(config.FrontendURL, "/") + "/oauth/callback"
	for _, ext := range []*OAuthProviderConfiguration{
		&config.External.Twitter,
		&config.External.Instagram,
		&config.External.Linkedin,
		&config.External.Facebook,
		&config.External.Youtube,
		&config.External.Tiktok,
		&config.External.Pinterest,
		&config.External.Reddit,
	} {
		if ext.RedirectURI == "" {
			ext.RedirectURI = callbackURL
		}
	}

	if config.PendingAuthorizationTTL <= 0 {
		config.PendingAuthorizationTTL = 10 * time.Minute
	}

	return nil
}

// Validate validates all of configuration.
func (c *GlobalConfiguration) Validate() error {
	validatables := []interface {
		Validate() error
	}{
		&c.API,
		&c.DB,
		&c.Redis,
	}

	for _, validatable := range validatables {
		if err := validatable.Validate(); err != nil {
			return err
		}
	}

	return nil
}
