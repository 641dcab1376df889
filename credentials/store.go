package credentials

import "sync"

// User identifies the logged-in platform user.
type User struct {
	ID   string
	Name string
}

// Store is the mutable credential Source. Login and logout update it while
// requests are in flight; every read takes a full snapshot under the lock.
type Store struct {
	mu sync.RWMutex

	creds    Credentials
	endpoint string
	proxy    *Proxy

	applicationID string
	domain        string
	accountID     string
	user          User
}

var _ Source = (*Store)(nil)

// NewStore creates an empty store for the given endpoint base.
func NewStore(endpoint string) *Store {
	return &Store{endpoint: WithTrailingSlash(endpoint)}
}

// Credentials returns a snapshot of the current key material.
func (s *Store) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Endpoint returns the endpoint base with a trailing slash.
func (s *Store) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// Proxy returns a copy of the configured proxy, or nil.
func (s *Store) Proxy() *Proxy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.proxy == nil {
		return nil
	}
	p := *s.proxy
	return &p
}

// SetEndpoint replaces the endpoint base.
func (s *Store) SetEndpoint(endpoint string) {
	s.mu.Lock()
	s.endpoint = WithTrailingSlash(endpoint)
	s.mu.Unlock()
}

// SetProxy replaces the proxy. A nil or empty-address proxy disables it.
func (s *Store) SetProxy(p *Proxy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil || p.Address == "" {
		s.proxy = nil
		return
	}
	cp := *p
	s.proxy = &cp
}

// SetApplicationCredentials installs the application keys and identifiers.
// Changing the consumer or secret key invalidates any user session.
func (s *Store) SetApplicationCredentials(consumerKey, secretKey, applicationID, domain, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if consumerKey != s.creds.ConsumerKey || secretKey != s.creds.SecretKey {
		s.clearUserLocked()
	}
	s.creds.ConsumerKey = consumerKey
	s.creds.SecretKey = secretKey
	s.applicationID = applicationID
	s.domain = domain
	s.accountID = accountID
}

// SetAccessToken installs a user access token and secret.
func (s *Store) SetAccessToken(token, secret string) {
	s.mu.Lock()
	s.creds.AccessToken = token
	s.creds.AccessSecret = secret
	s.mu.Unlock()
}

// SetUser records the logged-in user together with their token and secret.
func (s *Store) SetUser(user User, token, secret string) {
	s.mu.Lock()
	s.user = user
	s.creds.AccessToken = token
	s.creds.AccessSecret = secret
	s.mu.Unlock()
}

// ClearAccessToken drops the user session.
func (s *Store) ClearAccessToken() {
	s.mu.Lock()
	s.clearUserLocked()
	s.mu.Unlock()
}

func (s *Store) clearUserLocked() {
	s.creds.AccessToken = ""
	s.creds.AccessSecret = ""
	s.user = User{}
}

// User returns the logged-in user, if any.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user.ID != "" || s.user.Name != ""
}

// ApplicationID returns the configured application id.
func (s *Store) ApplicationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applicationID
}

// Domain returns the configured domain.
func (s *Store) Domain() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domain
}

// AccountID returns the configured account id.
func (s *Store) AccountID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountID
}
