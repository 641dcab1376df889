package signing

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"strings"

	"github.com/kbukum/ribbitkit/credentials"
)

// Verification errors.
var (
	ErrMalformedHeader       = errors.New("signing: malformed authorization header")
	ErrUnknownConsumer       = errors.New("signing: consumer key mismatch")
	ErrUnknownToken          = errors.New("signing: access token mismatch")
	ErrSignatureMismatch     = errors.New("signing: signature mismatch")
	ErrBodySignatureMismatch = errors.New("signing: body signature mismatch")
)

// ParseHeader splits an OAuth Authorization header into its realm and the
// remaining parameters. Values are returned exactly as they appear between
// the quotes.
func ParseHeader(header string) (string, map[string]string, error) {
	rest, ok := strings.CutPrefix(header, "OAuth ")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing OAuth scheme", ErrMalformedHeader)
	}

	params := make(map[string]string)
	for {
		rest = strings.TrimLeft(rest, " ,")
		if rest == "" {
			break
		}
		key, after, ok := strings.Cut(rest, "=")
		if !ok || !strings.HasPrefix(after, `"`) {
			return "", nil, fmt.Errorf("%w: near %q", ErrMalformedHeader, rest)
		}
		value, tail, ok := strings.Cut(after[1:], `"`)
		if !ok {
			return "", nil, fmt.Errorf("%w: unterminated value for %s", ErrMalformedHeader, key)
		}
		params[strings.TrimSpace(key)] = value
		rest = tail
	}

	realm := params["realm"]
	delete(params, "realm")
	return realm, params, nil
}

// Verify recomputes the signature of an incoming request the way the
// platform does and reports whether header matches. uri is the absolute
// request URL including its query.
func Verify(header, method, uri string, body []byte, creds credentials.Credentials) error {
	_, params, err := ParseHeader(header)
	if err != nil {
		return err
	}

	if params[ParamConsumerKey] != creds.ConsumerKey {
		return ErrUnknownConsumer
	}
	if params[ParamToken] != creds.AccessToken {
		return ErrUnknownToken
	}

	want, err := PercentDecode(params[ParamSignature])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	delete(params, ParamSignature)

	key := creds.SigningKey()
	if encoded, ok := params[ParamBodySignature]; ok {
		bodySig, err := PercentDecode(encoded)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		if len(body) == 0 || !hmac.Equal([]byte(bodySig), []byte(HMACSHA1(body, key))) {
			return ErrBodySignatureMismatch
		}
		params[ParamBodySignature] = bodySig
	} else if len(body) > 0 {
		return ErrBodySignatureMismatch
	}

	normalized, err := Normalize(uri)
	if err != nil {
		return err
	}
	MergeQuery(params, uri)

	got := HMACSHA1([]byte(BaseString(strings.ToUpper(method), normalized, params)), key)
	if !hmac.Equal([]byte(got), []byte(want)) {
		return ErrSignatureMismatch
	}
	return nil
}
