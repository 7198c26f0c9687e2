package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultTokenValidity = time.Hour
	DefaultMaxWidth      = 1280
	DefaultMaxHeight     = 1280
	DefaultJPEGQuality   = 80
)

// Config is the top-level reporter configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	// Endpoint is the base URL of the webhook collector. Reports are
	// POSTed here; standalone files go to Endpoint + "/upload".
	Endpoint string `yaml:"endpoint"`

	// APIKeyEnv names the environment variable holding a static API
	// key. The key is used as a bearer token when no interactive or
	// assertion-based authorization is configured.
	APIKeyEnv string `yaml:"api_key_env"`

	// HTTPTimeout bounds each submission request.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// CredentialDir is the directory for the persistent credential
	// cache. Empty means credentials are kept in memory only.
	CredentialDir string `yaml:"credential_dir"`

	// Auth configures OAuth-derived authorization.
	Auth AuthConfig `yaml:"auth"`

	// Attachments configures media transcoding.
	Attachments AttachmentConfig `yaml:"attachments"`
}

// AuthConfig holds the settings for the interactive authentication flow
// and the optional non-interactive client-assertion refresh.
type AuthConfig struct {
	// ClientID is the application id registered with the identity
	// provider. Authorization is disabled while it is empty.
	ClientID string `yaml:"client_id"`

	// Scopes requested during the interactive flow.
	Scopes []string `yaml:"scopes"`

	// AuthorizeURL is the identity provider's authorization endpoint.
	AuthorizeURL string `yaml:"authorize_url"`

	// RedirectURI is where the browser session lands after consent.
	RedirectURI string `yaml:"redirect_uri"`

	// TokenURL is the token endpoint used by the client-assertion
	// exchange. Unused when PrivateKeyFile is empty.
	TokenURL string `yaml:"token_url"`

	// PrivateKeyFile is a PEM-encoded RSA key. When set, expired or
	// missing credentials are refreshed non-interactively by signing a
	// JWT client assertion and exchanging it at TokenURL.
	PrivateKeyFile string `yaml:"private_key_file"`

	// TokenValidity is the lifetime stamped on credentials obtained
	// interactively.
	TokenValidity time.Duration `yaml:"token_validity"`
}

// Enabled reports whether any authorization provider is configured.
func (a AuthConfig) Enabled() bool {
	return a.ClientID != ""
}

// AttachmentConfig bounds processed media. The frame normally derives
// from the display the report was captured on; these are the caps.
type AttachmentConfig struct {
	MaxWidth    int `yaml:"max_width"`
	MaxHeight   int `yaml:"max_height"`
	JPEGQuality int `yaml:"jpeg_quality"`
}

// APIKey returns the static API key resolved from the environment.
// Returns empty string if APIKeyEnv is unset or the variable is empty.
func (c Config) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		HTTPTimeout: DefaultHTTPTimeout,
		Auth: AuthConfig{
			TokenValidity: DefaultTokenValidity,
		},
		Attachments: AttachmentConfig{
			MaxWidth:    DefaultMaxWidth,
			MaxHeight:   DefaultMaxHeight,
			JPEGQuality: DefaultJPEGQuality,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	if cfg.Attachments.MaxWidth <= 0 || cfg.Attachments.MaxHeight <= 0 {
		return fmt.Errorf("attachments.max_width and max_height must be positive")
	}
	if q := cfg.Attachments.JPEGQuality; q < 1 || q > 100 {
		return fmt.Errorf("attachments.jpeg_quality must be in 1..100")
	}
	if cfg.Auth.Enabled() {
		if cfg.Auth.AuthorizeURL == "" {
			return fmt.Errorf("auth.authorize_url is required when auth.client_id is set")
		}
		if cfg.Auth.RedirectURI == "" {
			return fmt.Errorf("auth.redirect_uri is required when auth.client_id is set")
		}
		if cfg.Auth.TokenValidity <= 0 {
			return fmt.Errorf("auth.token_validity must be positive")
		}
		if cfg.Auth.PrivateKeyFile != "" && cfg.Auth.TokenURL == "" {
			return fmt.Errorf("auth.token_url is required when auth.private_key_file is set")
		}
	}
	return nil
}
