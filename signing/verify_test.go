package signing

import (
	"errors"
	"testing"

	"github.com/kbukum/ribbitkit/credentials"
)

func TestParseHeader(t *testing.T) {
	realm, params, err := ParseHeader(`OAuth realm="http://oauth.ribbit.com", oauth_consumer_key="ck", x_auth_password="a, b",oauth_token="t"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if realm != "http://oauth.ribbit.com" {
		t.Errorf("realm = %q", realm)
	}
	want := map[string]string{"oauth_consumer_key": "ck", "x_auth_password": "a, b", "oauth_token": "t"}
	if len(params) != len(want) {
		t.Fatalf("params = %v", params)
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("%s = %q, want %q", k, params[k], v)
		}
	}
}

func TestParseHeader_Malformed(t *testing.T) {
	for _, h := range []string{
		"",
		"Bearer abc",
		`OAuth realm`,
		`OAuth realm="x`,
		`OAuth realm=x`,
	} {
		if _, _, err := ParseHeader(h); !errors.Is(err, ErrMalformedHeader) {
			t.Errorf("ParseHeader(%q) err = %v", h, err)
		}
	}
}

func TestVerify_AcceptsSignedRequests(t *testing.T) {
	user := credentials.Credentials{ConsumerKey: "ck", SecretKey: "sk", AccessToken: "tok", AccessSecret: "asec"}
	tests := []struct {
		name   string
		method string
		uri    string
		body   []byte
		xauth  *XAuth
		creds  credentials.Credentials
	}{
		{"get with query", "GET", "http://127.0.0.1:8080/rest/1.0/users?count=5", nil, nil, user},
		{"post with body", "POST", "http://127.0.0.1:8080/rest/1.0/devices", []byte(`{"id":"x"}`), nil, user},
		{"login", "POST", "http://127.0.0.1:8080/rest/1.0/login", nil, &XAuth{Username: "u", Password: "p w"}, credentials.Credentials{ConsumerKey: "ck", SecretKey: "sk"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := NewSigner().Sign(tt.method, tt.uri, tt.body, tt.xauth, tt.creds)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := Verify(sig.Header, tt.method, tt.uri, tt.body, tt.creds); err != nil {
				t.Errorf("Verify: %v", err)
			}
		})
	}
}

func TestVerify_Rejections(t *testing.T) {
	creds := credentials.Credentials{ConsumerKey: "ck", SecretKey: "sk", AccessToken: "tok", AccessSecret: "asec"}
	uri := "http://127.0.0.1/rest/1.0/devices"
	body := []byte(`{"id":"x"}`)
	sig, err := NewSigner().Sign("POST", uri, body, nil, creds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		method string
		uri    string
		body   []byte
		creds  credentials.Credentials
		want   error
	}{
		{"wrong consumer", "POST", uri, body, credentials.Credentials{ConsumerKey: "other", SecretKey: "sk", AccessToken: "tok", AccessSecret: "asec"}, ErrUnknownConsumer},
		{"wrong token", "POST", uri, body, credentials.Credentials{ConsumerKey: "ck", SecretKey: "sk", AccessToken: "other", AccessSecret: "asec"}, ErrUnknownToken},
		{"wrong secret", "POST", uri, body, credentials.Credentials{ConsumerKey: "ck", SecretKey: "sk", AccessToken: "tok", AccessSecret: "nope"}, ErrBodySignatureMismatch},
		{"tampered body", "POST", uri, []byte(`{"id":"y"}`), creds, ErrBodySignatureMismatch},
		{"missing body", "POST", uri, nil, creds, ErrBodySignatureMismatch},
		{"other method", "PUT", uri, body, creds, ErrSignatureMismatch},
		{"other path", "POST", uri + "/2", body, creds, ErrSignatureMismatch},
		{"added query", "POST", uri + "?x=1", body, creds, ErrSignatureMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Verify(sig.Header, tt.method, tt.uri, tt.body, tt.creds); !errors.Is(err, tt.want) {
				t.Errorf("Verify err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerify_UnexpectedBody(t *testing.T) {
	sig, _ := NewSigner().Sign("POST", "http://h/x", nil, nil, appOnly)
	if err := Verify(sig.Header, "POST", "http://h/x", []byte("smuggled"), appOnly); !errors.Is(err, ErrBodySignatureMismatch) {
		t.Errorf("expected ErrBodySignatureMismatch, got %v", err)
	}
}
