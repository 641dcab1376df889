package signing

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strconv"
	"strings"

	"github.com/kbukum/ribbitkit/credentials"
)

// DefaultRealm is the realm advertised in every Authorization header.
const DefaultRealm = "http://oauth.ribbit.com"

// MethodHMACSHA1 is the only signature method the platform accepts.
const MethodHMACSHA1 = "HMAC-SHA1"

// Parameter names that take part in the signature.
const (
	ParamConsumerKey         = "oauth_consumer_key"
	ParamNonce               = "oauth_nonce"
	ParamSignatureMethod     = "oauth_signature_method"
	ParamTimestamp           = "oauth_timestamp"
	ParamToken               = "oauth_token"
	ParamSignature           = "oauth_signature"
	ParamXAuthUsername       = "x_auth_username"
	ParamXAuthPassword       = "x_auth_password"
	ParamBodySignature       = "xoauth_body_signature"
	ParamBodySignatureMethod = "xoauth_body_signature_method"
)

// XAuth carries the username and password for the two-legged login
// bootstrap. They are signed and sent in the Authorization header.
type XAuth struct {
	Username string
	Password string
}

// Signature is the outcome of signing one request.
type Signature struct {
	// Header is the complete Authorization header value.
	Header string
	// Nonce and Timestamp are the per-request values that went into Header.
	Nonce     string
	Timestamp int64
	// NormalizedURL is the canonical URL fed into BaseString.
	NormalizedURL string
	// BaseString is the exact text that was HMAC-signed.
	BaseString string
	// Value is the base64 request signature (not percent-encoded).
	Value string
	// BodySignature is the base64 body signature, empty without a body.
	BodySignature string
}

// Signer produces Authorization headers. It keeps no per-request state and
// is safe for concurrent use.
type Signer struct {
	realm  string
	nonces NonceSource
	clock  Clock
}

// Option configures a Signer.
type Option func(*Signer)

// WithRealm overrides the advertised realm.
func WithRealm(realm string) Option {
	return func(s *Signer) { s.realm = realm }
}

// WithNonceSource replaces the random nonce generator.
func WithNonceSource(n NonceSource) Option {
	return func(s *Signer) { s.nonces = n }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Signer) { s.clock = c }
}

// NewSigner creates a Signer with a random nonce source and the system clock.
func NewSigner(opts ...Option) *Signer {
	s := &Signer{
		realm:  DefaultRealm,
		nonces: RandomNonce{},
		clock:  SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Realm returns the realm the signer advertises.
func (s *Signer) Realm() string { return s.realm }

// Sign computes the Authorization header for method and uri. uri must be
// absolute; query parameters already on it are folded into the signature.
// A non-empty body adds a body signature. xauth may be nil.
//
// A fresh nonce and timestamp are drawn on every call.
func (s *Signer) Sign(method, uri string, body []byte, xauth *XAuth, creds credentials.Credentials) (*Signature, error) {
	normalized, err := Normalize(uri)
	if err != nil {
		return nil, err
	}

	nonce, err := s.nonces.Nonce()
	if err != nil {
		return nil, err
	}
	ts := s.clock.Now().UnixMilli()
	key := creds.SigningKey()

	var bodySig string
	if len(body) > 0 {
		bodySig = HMACSHA1(body, key)
	}

	params := map[string]string{
		ParamConsumerKey:     creds.ConsumerKey,
		ParamNonce:           nonce,
		ParamSignatureMethod: MethodHMACSHA1,
		ParamTimestamp:       strconv.FormatInt(ts, 10),
	}
	if creds.HasAccessToken() {
		params[ParamToken] = creds.AccessToken
	}
	if xauth != nil {
		params[ParamXAuthUsername] = xauth.Username
		params[ParamXAuthPassword] = xauth.Password
	}
	if bodySig != "" {
		params[ParamBodySignature] = bodySig
		params[ParamBodySignatureMethod] = MethodHMACSHA1
	}
	MergeQuery(params, uri)

	method = strings.ToUpper(method)
	base := BaseString(method, normalized, params)
	sig := HMACSHA1([]byte(base), key)

	var h strings.Builder
	h.WriteString(`OAuth realm="` + s.realm + `"`)
	writeHeaderParam(&h, ParamConsumerKey, creds.ConsumerKey)
	writeHeaderParam(&h, ParamNonce, nonce)
	writeHeaderParam(&h, ParamSignatureMethod, MethodHMACSHA1)
	writeHeaderParam(&h, ParamTimestamp, strconv.FormatInt(ts, 10))
	writeHeaderParam(&h, ParamSignature, PercentEncode(sig))
	if creds.HasAccessToken() {
		writeHeaderParam(&h, ParamToken, creds.AccessToken)
	}
	if xauth != nil {
		writeHeaderParam(&h, ParamXAuthPassword, xauth.Password)
		writeHeaderParam(&h, ParamXAuthUsername, xauth.Username)
	}
	if bodySig != "" {
		writeHeaderParam(&h, ParamBodySignatureMethod, MethodHMACSHA1)
		writeHeaderParam(&h, ParamBodySignature, PercentEncode(bodySig))
	}

	return &Signature{
		Header:        h.String(),
		Nonce:         nonce,
		Timestamp:     ts,
		NormalizedURL: normalized,
		BaseString:    base,
		Value:         sig,
		BodySignature: bodySig,
	}, nil
}

func writeHeaderParam(b *strings.Builder, key, value string) {
	b.WriteString(", ")
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(value)
	b.WriteByte('"')
}

// HMACSHA1 returns base64(HMAC-SHA1(text, key)).
func HMACSHA1(text []byte, key string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write(text)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// MergeQuery copies the raw query parameters of uri into params. Pairs are
// split on "&" and then on the first "="; values stay percent-encoded as they
// appear on the wire. Later keys overwrite earlier ones.
func MergeQuery(params map[string]string, uri string) {
	q := RawQuery(uri)
	if q == "" {
		return
	}
	for _, pair := range strings.Split(q, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		params[k] = v
	}
}

// RawQuery returns the query component of uri without the leading "?" and
// without any fragment.
func RawQuery(uri string) string {
	_, q, ok := strings.Cut(uri, "?")
	if !ok {
		return ""
	}
	q, _, _ = strings.Cut(q, "#")
	return q
}

// ParamString joins params as k=v pairs sorted byte-wise by key. Values are
// not re-encoded.
func ParamString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// BaseString builds METHOD&pct(normalizedURL)&pct(param string).
func BaseString(method, normalizedURL string, params map[string]string) string {
	return method + "&" + PercentEncode(normalizedURL) + "&" + PercentEncode(ParamString(params))
}
