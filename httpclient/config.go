package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/ribbitkit/version"
)

const (
	defaultTimeout = 10 * time.Second

	// DefaultAccept is sent when the caller names no accept type.
	DefaultAccept = "application/json"
)

// Config configures the transport.
type Config struct {
	// Timeout bounds each round trip, streamed downloads included.
	// Defaults to 10s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UserAgent defaults to ribbit_go_library_<version>.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// TLS configures certificate verification. Verification is on unless
	// TLS.InsecureSkipVerify is set.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// ProxyFromEnvironment falls back to HTTP_PROXY/HTTPS_PROXY/NO_PROXY
	// when the credential source configures no proxy.
	ProxyFromEnvironment bool `yaml:"proxy_from_environment" mapstructure:"proxy_from_environment"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent()
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.TLS != nil {
		if err := c.TLS.Validate(); err != nil {
			return err
		}
	}
	return nil
}
