package config

import (
	"fmt"
	"time"

	"github.com/kbukum/ribbitkit/credentials"
	"github.com/kbukum/ribbitkit/httpclient"
	"github.com/kbukum/ribbitkit/logger"
	"github.com/kbukum/ribbitkit/observability"
)

// DefaultEndpoint is the production REST endpoint.
const DefaultEndpoint = "https://rest.ribbit.com/rest/1.0/"

const defaultTimeout = 10 * time.Second

// RibbitConfig holds the application identity and optional user session.
type RibbitConfig struct {
	Endpoint      string `yaml:"endpoint" mapstructure:"endpoint" validate:"required,url"`
	ConsumerKey   string `yaml:"consumer_key" mapstructure:"consumer_key" validate:"required"`
	SecretKey     string `yaml:"secret_key" mapstructure:"secret_key" validate:"required"`
	ApplicationID string `yaml:"application_id" mapstructure:"application_id"`
	Domain        string `yaml:"domain" mapstructure:"domain"`
	AccountID     string `yaml:"account_id" mapstructure:"account_id"`
	AccessToken   string `yaml:"access_token" mapstructure:"access_token" validate:"required_with=AccessSecret"`
	AccessSecret  string `yaml:"access_secret" mapstructure:"access_secret" validate:"required_with=AccessToken"`
	// Log turns on debug logging of every signed request.
	Log bool `yaml:"log" mapstructure:"log"`
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	ProxyAddress         string        `yaml:"proxy_address" mapstructure:"proxy_address"`
	ProxyUsername        string        `yaml:"proxy_username" mapstructure:"proxy_username" validate:"required_with=ProxyPassword"`
	ProxyPassword        string        `yaml:"proxy_password" mapstructure:"proxy_password"`
	ProxyFromEnvironment bool          `yaml:"proxy_from_environment" mapstructure:"proxy_from_environment"`
	Timeout              time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	InsecureSkipVerify   bool          `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	CAFile               string        `yaml:"ca_file" mapstructure:"ca_file"`
}

// Config is the complete client configuration, shaped like ribbit.yml:
//
//	ribbit:
//	  endpoint: https://rest.ribbit.com/rest/1.0/
//	  consumer_key: ...
//	  secret_key: ...
//	http:
//	  timeout: 10s
//	logging:
//	  level: info
type Config struct {
	Ribbit        RibbitConfig         `yaml:"ribbit" mapstructure:"ribbit"`
	HTTP          HTTPConfig           `yaml:"http" mapstructure:"http"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Ribbit.Endpoint == "" {
		c.Ribbit.Endpoint = DefaultEndpoint
	}
	c.Ribbit.Endpoint = credentials.WithTrailingSlash(c.Ribbit.Endpoint)
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = defaultTimeout
	}
	if c.Ribbit.Log && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks struct tags first, then the nested sections.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}

// Proxy returns the configured proxy, or nil when none is set.
func (c *Config) Proxy() *credentials.Proxy {
	if c.HTTP.ProxyAddress == "" {
		return nil
	}
	return &credentials.Proxy{
		Address:  c.HTTP.ProxyAddress,
		Username: c.HTTP.ProxyUsername,
		Password: c.HTTP.ProxyPassword,
	}
}

// Store builds a credential store holding the configured identity, session
// and proxy.
func (c *Config) Store() *credentials.Store {
	r := c.Ribbit
	store := credentials.NewStore(r.Endpoint)
	store.SetApplicationCredentials(r.ConsumerKey, r.SecretKey, r.ApplicationID, r.Domain, r.AccountID)
	if r.AccessToken != "" {
		store.SetAccessToken(r.AccessToken, r.AccessSecret)
	}
	store.SetProxy(c.Proxy())
	return store
}

// ClientConfig builds the transport configuration.
func (c *Config) ClientConfig() httpclient.Config {
	cfg := httpclient.Config{
		Timeout:              c.HTTP.Timeout,
		ProxyFromEnvironment: c.HTTP.ProxyFromEnvironment,
	}
	if c.HTTP.InsecureSkipVerify || c.HTTP.CAFile != "" {
		cfg.TLS = &httpclient.TLSConfig{
			InsecureSkipVerify: c.HTTP.InsecureSkipVerify,
			CAFile:             c.HTTP.CAFile,
		}
	}
	return cfg
}
