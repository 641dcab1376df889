package credentials

import "strings"

// Credentials is an immutable snapshot of the key material used to sign one
// request. Empty AccessToken and AccessSecret mean "no user session".
type Credentials struct {
	ConsumerKey  string
	SecretKey    string
	AccessToken  string
	AccessSecret string
}

// HasAccessToken reports whether a user session token is present.
func (c Credentials) HasAccessToken() bool {
	return c.AccessToken != ""
}

// SigningKey returns the HMAC key: secret key and access secret joined by "&".
// The access secret is empty for application-only requests.
func (c Credentials) SigningKey() string {
	return c.SecretKey + "&" + c.AccessSecret
}

// Proxy describes an outbound HTTP proxy.
type Proxy struct {
	// Address is host:port or a full proxy URL.
	Address  string
	Username string
	Password string
}

// HasAuth reports whether proxy credentials should be sent.
func (p *Proxy) HasAuth() bool {
	return p != nil && p.Username != "" && p.Password != ""
}

// Source supplies credentials, the endpoint base and the proxy to the
// signed-request engine. Implementations must be safe for concurrent use.
type Source interface {
	// Credentials returns a consistent snapshot of the signing keys.
	Credentials() Credentials
	// Endpoint returns the REST endpoint base, always ending in "/".
	Endpoint() string
	// Proxy returns the outbound proxy, or nil for a direct connection.
	Proxy() *Proxy
}

// Static is a fixed Source, handy for scripts and tests.
type Static struct {
	Creds       Credentials
	EndpointURL string
	ProxyConfig *Proxy
}

var _ Source = Static{}

// Credentials implements Source.
func (s Static) Credentials() Credentials { return s.Creds }

// Endpoint implements Source.
func (s Static) Endpoint() string { return WithTrailingSlash(s.EndpointURL) }

// Proxy implements Source.
func (s Static) Proxy() *Proxy {
	if s.ProxyConfig == nil {
		return nil
	}
	p := *s.ProxyConfig
	return &p
}

// WithTrailingSlash appends "/" to endpoint unless it already ends in one.
func WithTrailingSlash(endpoint string) string {
	if endpoint == "" || strings.HasSuffix(endpoint, "/") {
		return endpoint
	}
	return endpoint + "/"
}
