package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/ribbitkit/credentials"
	"github.com/kbukum/ribbitkit/signing"
)

// BasePath is the REST prefix the fake platform serves under.
const BasePath = "/rest/1.0"

// RecordedRequest is one request accepted by the platform.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
	// Token is the oauth_token the request was signed with, if any.
	Token string
	// Params are the Authorization header parameters, realm excluded.
	Params map[string]string
}

type account struct {
	password string
	id       string
	token    string
	secret   string
}

// Platform is an in-process fake of the Ribbit REST platform. Every request
// under BasePath must carry a valid signature; handlers registered with
// Handle only see verified requests.
type Platform struct {
	consumerKey string
	secretKey   string

	engine *gin.Engine
	group  *gin.RouterGroup
	server *httptest.Server

	mu       sync.Mutex
	tokens   map[string]string
	accounts map[string]account
	requests []RecordedRequest
}

// PlatformOption configures a Platform.
type PlatformOption func(*platformOptions)

type platformOptions struct {
	tls bool
}

// WithTLS serves the platform over HTTPS with a self-signed certificate.
func WithTLS() PlatformOption {
	return func(o *platformOptions) { o.tls = true }
}

// NewPlatform starts a platform that accepts the given application keys.
// It is shut down when the test ends.
func NewPlatform(t testing.TB, consumerKey, secretKey string, opts ...PlatformOption) *Platform {
	t.Helper()
	var o platformOptions
	for _, opt := range opts {
		opt(&o)
	}

	gin.SetMode(gin.TestMode)
	p := &Platform{
		consumerKey: consumerKey,
		secretKey:   secretKey,
		engine:      gin.New(),
		tokens:      make(map[string]string),
		accounts:    make(map[string]account),
	}
	p.engine.Use(gin.Recovery())
	p.group = p.engine.Group(BasePath, p.verify)
	p.group.POST("/login", p.login)

	if o.tls {
		p.server = httptest.NewTLSServer(p.engine)
	} else {
		p.server = httptest.NewServer(p.engine)
	}
	t.Cleanup(p.server.Close)
	return p
}

// URL is the endpoint base, ending in "/".
func (p *Platform) URL() string {
	return p.server.URL + BasePath + "/"
}

// Server exposes the underlying test server.
func (p *Platform) Server() *httptest.Server {
	return p.server
}

// Credentials returns application-only credentials the platform accepts.
func (p *Platform) Credentials() credentials.Credentials {
	return credentials.Credentials{ConsumerKey: p.consumerKey, SecretKey: p.secretKey}
}

// AddToken makes an access token and its secret valid.
func (p *Platform) AddToken(token, secret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[token] = secret
}

// AddUser registers an account for the login endpoint. A successful login
// issues token and secret.
func (p *Platform) AddUser(username, password, id, token, secret string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[username] = account{password: password, id: id, token: token, secret: secret}
}

// Handle registers a handler under BasePath.
func (p *Platform) Handle(method, path string, h gin.HandlerFunc) {
	p.group.Handle(method, path, h)
}

// Requests returns a copy of the verified requests seen so far.
func (p *Platform) Requests() []RecordedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]RecordedRequest(nil), p.requests...)
}

// LastRequest returns the most recent verified request.
func (p *Platform) LastRequest() (RecordedRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return RecordedRequest{}, false
	}
	return p.requests[len(p.requests)-1], true
}

// Reset forgets recorded requests. Tokens and accounts are kept.
func (p *Platform) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = nil
}

// verify checks the signature the way the platform does and rejects the
// request with 401 when it does not match.
func (p *Platform) verify(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	header := c.GetHeader("Authorization")
	target := p.server.URL + c.Request.URL.RequestURI()
	if header == "" {
		// Signed streaming URLs carry the headers in the h parameter.
		header, target = fromSignedURL(c.Request.URL, p.server.URL)
	}
	if header == "" {
		c.String(http.StatusUnauthorized, "missing Authorization")
		c.Abort()
		return
	}

	_, params, err := signing.ParseHeader(header)
	if err != nil {
		c.String(http.StatusUnauthorized, err.Error())
		c.Abort()
		return
	}

	creds := p.Credentials()
	if tok := params[signing.ParamToken]; tok != "" {
		p.mu.Lock()
		secret, ok := p.tokens[tok]
		p.mu.Unlock()
		if !ok {
			c.String(http.StatusUnauthorized, "unknown token")
			c.Abort()
			return
		}
		creds.AccessToken, creds.AccessSecret = tok, secret
	}

	if err := signing.Verify(header, c.Request.Method, target, body, creds); err != nil {
		c.String(http.StatusUnauthorized, err.Error())
		c.Abort()
		return
	}

	p.mu.Lock()
	p.requests = append(p.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   strings.TrimPrefix(c.Request.URL.Path, BasePath),
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
		Body:   body,
		Token:  creds.AccessToken,
		Params: params,
	})
	p.mu.Unlock()
	c.Set(paramsKey, params)
	c.Next()
}

// login answers the two-legged bootstrap the way the platform does: a form
// encoded token, secret and user id on success.
func (p *Platform) login(c *gin.Context) {
	params := Params(c)
	username := params[signing.ParamXAuthUsername]
	password := params[signing.ParamXAuthPassword]

	p.mu.Lock()
	acct, ok := p.accounts[username]
	if ok && acct.password == password {
		p.tokens[acct.token] = acct.secret
	}
	p.mu.Unlock()

	if !ok || acct.password != password {
		c.String(http.StatusUnauthorized, "")
		return
	}
	c.String(http.StatusOK, fmt.Sprintf("oauth_token=%s&oauth_token_secret=%s&user_id=%s", acct.token, acct.secret, acct.id))
}

// paramsKey holds the verified Authorization parameters in the gin context.
const paramsKey = "ribbit.oauth_params"

// Params returns the verified Authorization parameters of the request
// being handled.
func Params(c *gin.Context) map[string]string {
	params, _ := c.Get(paramsKey)
	m, _ := params.(map[string]string)
	return m
}

// fromSignedURL extracts the Authorization line from the h parameter and
// returns it with the URL that was signed, h removed.
func fromSignedURL(u *url.URL, base string) (string, string) {
	var (
		header string
		kept   []string
	)
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		if !strings.HasPrefix(pair, "h=") {
			kept = append(kept, pair)
			continue
		}
		lines, err := url.PathUnescape(strings.TrimPrefix(pair, "h="))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(lines, "|") {
			if v, ok := strings.CutPrefix(line, "Authorization: "); ok {
				header = v
			}
		}
	}

	target := base + u.EscapedPath()
	if len(kept) > 0 {
		target += "?" + strings.Join(kept, "&")
	}
	return header, target
}
