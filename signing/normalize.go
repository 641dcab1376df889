package signing

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a target cannot be normalized. Requests
// carrying such a target are rejected before any network I/O.
var ErrInvalidURL = errors.New("signing: url cannot be normalized")

// DefaultScheme is prepended to targets that lack a scheme or host.
const DefaultScheme = "http://"

type normalizeOptions struct {
	includeQuery    bool
	includeFragment bool
	defaultScheme   string
}

// NormalizeOption configures Normalize.
type NormalizeOption func(*normalizeOptions)

// IncludeQuery keeps the raw query in the normalized URL.
func IncludeQuery() NormalizeOption {
	return func(o *normalizeOptions) { o.includeQuery = true }
}

// IncludeFragment keeps the fragment in the normalized URL.
func IncludeFragment() NormalizeOption {
	return func(o *normalizeOptions) { o.includeFragment = true }
}

// WithDefaultScheme overrides the scheme prefix used for scheme-less input.
func WithDefaultScheme(scheme string) NormalizeOption {
	return func(o *normalizeOptions) { o.defaultScheme = scheme }
}

// Normalize returns the canonical form of rawURL used in the signature base
// string: lower-case scheme and host, default port removed, trailing slashes
// stripped from the path, query and fragment dropped unless requested.
//
// Input without a scheme or host gets the default scheme prepended and is
// parsed again. If that still yields no host (for example a bare "/path"),
// Normalize fails rather than produce a URL the server could never match.
func Normalize(rawURL string, opts ...NormalizeOption) (string, error) {
	o := normalizeOptions{defaultScheme: DefaultScheme}
	for _, opt := range opts {
		opt(&o)
	}

	if strings.HasPrefix(rawURL, "//") {
		return "", fmt.Errorf("%w: %q has no scheme", ErrInvalidURL, rawURL)
	}

	u, err := url.Parse(rawURL)
	switch {
	case err != nil && strings.Contains(rawURL, "://"):
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	case err != nil, u.Scheme == "" || u.Host == "":
		// "1.2.3.4:80/x" fails to parse without a scheme, so it is retried
		// like any other scheme-less input.
		if err == nil && u.Path == "" && u.Opaque == "" && u.RawQuery == "" {
			return "", fmt.Errorf("%w: %q has nothing to normalize", ErrInvalidURL, rawURL)
		}
		u, err = url.Parse(o.defaultScheme + rawURL)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
		}
		if u.Host == "" {
			return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, rawURL)
		}
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, rawURL)
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}

	path := u.EscapedPath()
	if path != "" && path != "/" {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	if port != "" {
		b.WriteByte(':')
		b.WriteString(port)
	}
	b.WriteString(path)
	if o.includeQuery && u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	if o.includeFragment && u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.EscapedFragment())
	}
	return b.String(), nil
}
