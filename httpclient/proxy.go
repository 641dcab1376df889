package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpproxy"

	"github.com/kbukum/ribbitkit/credentials"
)

// ProxyURL converts a configured proxy into the URL form http.Transport
// expects. A bare "host:port" address is treated as an HTTP proxy.
func ProxyURL(p *credentials.Proxy) (*url.URL, error) {
	if p == nil || p.Address == "" {
		return nil, nil
	}
	addr := p.Address
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("httpclient: invalid proxy address %q", p.Address)
	}
	if p.HasAuth() {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u, nil
}

// proxyFunc reads the proxy from src on every request, so proxy changes
// take effect without rebuilding the client. With fromEnv set, requests
// fall back to the standard proxy environment variables.
func proxyFunc(src credentials.Source, fromEnv bool) func(*http.Request) (*url.URL, error) {
	var env func(*url.URL) (*url.URL, error)
	if fromEnv {
		env = httpproxy.FromEnvironment().ProxyFunc()
	}
	return func(req *http.Request) (*url.URL, error) {
		if p := src.Proxy(); p != nil && p.Address != "" {
			return ProxyURL(p)
		}
		if env != nil {
			return env(req.URL)
		}
		return nil, nil
	}
}
