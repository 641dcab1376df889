package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// homeFS is the real filesystem with an isolated home directory.
type homeFS struct {
	RealFileSystem
	home string
}

func (h *homeFS) HomeDir() (string, error) { return h.home, nil }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const sampleYAML = `
ribbit:
  endpoint: https://rest.example.com/rest/1.0
  consumer_key: ck
  secret_key: sk
  application_id: app
  domain: example.com
  account_id: "42"
  log: true
http:
  timeout: 5s
  proxy_address: proxy.local:3128
  proxy_username: pu
  proxy_password: pp
`

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ribbit.yml", sampleYAML)

	cfg, err := Load(WithConfigFile(path), WithFileSystem(&homeFS{home: dir}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Ribbit.Endpoint != "https://rest.example.com/rest/1.0/" {
		t.Errorf("endpoint should gain a trailing slash, got %q", cfg.Ribbit.Endpoint)
	}
	if cfg.Ribbit.ConsumerKey != "ck" || cfg.Ribbit.SecretKey != "sk" {
		t.Errorf("unexpected keys %+v", cfg.Ribbit)
	}
	if cfg.Ribbit.AccountID != "42" {
		t.Errorf("account_id = %q", cfg.Ribbit.AccountID)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.HTTP.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("ribbit.log should enable debug logging, got %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ribbit.yml", sampleYAML)
	t.Setenv("RIBBIT_CONSUMER_KEY", "env-ck")
	t.Setenv("RIBBIT_HTTP_TIMEOUT", "3s")
	t.Setenv("RIBBIT_HTTP_INSECURE_SKIP_VERIFY", "true")

	cfg, err := Load(WithConfigFile(path), WithFileSystem(&homeFS{home: dir}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Ribbit.ConsumerKey != "env-ck" {
		t.Errorf("consumer_key = %q", cfg.Ribbit.ConsumerKey)
	}
	if cfg.HTTP.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.HTTP.Timeout)
	}
	if !cfg.HTTP.InsecureSkipVerify {
		t.Error("insecure_skip_verify not overridden")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "RIBBIT_ENDPOINT=https://env.example.com/rest/1.0/\nRIBBIT_CONSUMER_KEY=dotenv-ck\nRIBBIT_SECRET_KEY=dotenv-sk\n")
	t.Cleanup(func() {
		for _, k := range []string{"RIBBIT_ENDPOINT", "RIBBIT_CONSUMER_KEY", "RIBBIT_SECRET_KEY"} {
			_ = os.Unsetenv(k)
		}
	})

	cfg, err := Load(WithEnvFile(envPath), WithFileSystem(&homeFS{home: dir}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Ribbit.ConsumerKey != "dotenv-ck" || cfg.Ribbit.SecretKey != "dotenv-sk" {
		t.Errorf("unexpected keys %+v", cfg.Ribbit)
	}
	if cfg.Ribbit.Endpoint != "https://env.example.com/rest/1.0/" {
		t.Errorf("endpoint = %q", cfg.Ribbit.Endpoint)
	}
}

func TestLoad_MissingExplicitFiles(t *testing.T) {
	fs := &homeFS{home: t.TempDir()}
	if _, err := Load(WithConfigFile("/nonexistent/ribbit.yml"), WithFileSystem(fs)); err == nil {
		t.Error("expected error for a missing config file")
	}
	if _, err := Load(WithEnvFile("/nonexistent/.env"), WithFileSystem(fs)); err == nil {
		t.Error("expected error for a missing env file")
	}
}

func TestLoad_ValidationFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ribbit.yml", "ribbit:\n  consumer_key: ck\n")

	_, err := Load(WithConfigFile(path), WithFileSystem(&homeFS{home: dir}))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Key != "ribbit.secret_key" {
		t.Errorf("unexpected fields %+v", verr.Fields)
	}
}

func validConfig() Config {
	cfg := Config{Ribbit: RibbitConfig{ConsumerKey: "ck", SecretKey: "sk"}}
	cfg.ApplyDefaults()
	return cfg
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := validConfig()
	if cfg.Ribbit.Endpoint != DefaultEndpoint {
		t.Errorf("endpoint = %q", cfg.Ribbit.Endpoint)
	}
	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.HTTP.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
	if cfg.Observability.ServiceName != "ribbit" {
		t.Errorf("service name = %q", cfg.Observability.ServiceName)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing consumer key", mutate: func(c *Config) { c.Ribbit.ConsumerKey = "" }, wantErr: "ribbit.consumer_key is required"},
		{name: "bad endpoint", mutate: func(c *Config) { c.Ribbit.Endpoint = "not a url" }, wantErr: "ribbit.endpoint must be a valid URL"},
		{name: "token without secret", mutate: func(c *Config) { c.Ribbit.AccessToken = "tok" }, wantErr: "ribbit.access_secret is required when access_token is set"},
		{name: "token with secret", mutate: func(c *Config) { c.Ribbit.AccessToken, c.Ribbit.AccessSecret = "tok", "sec" }},
		{name: "proxy password without user", mutate: func(c *Config) { c.HTTP.ProxyPassword = "pp" }, wantErr: "http.proxy_username is required"},
		{name: "negative timeout", mutate: func(c *Config) { c.HTTP.Timeout = -time.Second }, wantErr: "http.timeout must not be negative"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "config.logging"},
		{name: "bad sample rate", mutate: func(c *Config) { c.Observability.SampleRate = 2 }, wantErr: "config.observability"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestConfig_Store(t *testing.T) {
	cfg := validConfig()
	cfg.Ribbit.ApplicationID = "app"
	cfg.Ribbit.Domain = "example.com"
	cfg.Ribbit.AccessToken, cfg.Ribbit.AccessSecret = "tok", "sec"
	cfg.HTTP.ProxyAddress = "proxy.local:3128"

	store := cfg.Store()
	creds := store.Credentials()
	if creds.ConsumerKey != "ck" || creds.SecretKey != "sk" {
		t.Errorf("unexpected credentials %+v", creds)
	}
	if creds.AccessToken != "tok" || creds.AccessSecret != "sec" {
		t.Errorf("session not restored: %+v", creds)
	}
	if store.Endpoint() != DefaultEndpoint {
		t.Errorf("endpoint = %q", store.Endpoint())
	}
	if store.ApplicationID() != "app" || store.Domain() != "example.com" {
		t.Errorf("application identity lost")
	}
	if p := store.Proxy(); p == nil || p.Address != "proxy.local:3128" {
		t.Errorf("proxy = %+v", p)
	}

	cfg.HTTP.ProxyAddress = ""
	if cfg.Proxy() != nil || cfg.Store().Proxy() != nil {
		t.Error("no proxy expected")
	}
}

func TestConfig_ClientConfig(t *testing.T) {
	cfg := validConfig()
	cc := cfg.ClientConfig()
	if cc.Timeout != 10*time.Second {
		t.Errorf("timeout = %v", cc.Timeout)
	}
	if cc.TLS != nil {
		t.Error("TLS should be left to defaults")
	}

	cfg.HTTP.CAFile = "/etc/ribbit/ca.pem"
	cfg.HTTP.ProxyFromEnvironment = true
	cc = cfg.ClientConfig()
	if cc.TLS == nil || cc.TLS.CAFile != "/etc/ribbit/ca.pem" || cc.TLS.InsecureSkipVerify {
		t.Errorf("unexpected TLS %+v", cc.TLS)
	}
	if !cc.ProxyFromEnvironment {
		t.Error("proxy_from_environment lost")
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(string) error { return nil }
func (m *mockFS) HomeDir() (string, error) { return "/home/mock", nil }

func TestResolver(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]bool
		opts       LoaderConfig
		wantConfig string
		wantEnv    string
	}{
		{
			name:       "current directory",
			files:      map[string]bool{"./ribbit.yml": true, ".env": true},
			wantConfig: "./ribbit.yml",
			wantEnv:    ".env",
		},
		{
			name:       "config directory",
			files:      map[string]bool{"./config/ribbit.yml": true, "config/.env": true},
			wantConfig: "./config/ribbit.yml",
			wantEnv:    "config/.env",
		},
		{
			name:       "home directory",
			files:      map[string]bool{filepath.Join("/home/mock", ".ribbit", "ribbit.yml"): true},
			wantConfig: filepath.Join("/home/mock", ".ribbit", "ribbit.yml"),
		},
		{
			name:       "explicit wins",
			files:      map[string]bool{"./ribbit.yml": true},
			opts:       LoaderConfig{ConfigFile: "/etc/ribbit.yml", EnvFile: "/etc/ribbit.env"},
			wantConfig: "/etc/ribbit.yml",
			wantEnv:    "/etc/ribbit.env",
		},
		{name: "nothing found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &Resolver{FileSystem: &mockFS{files: tc.files}}
			got := r.ResolveFiles(tc.opts)
			if got.ConfigFile != tc.wantConfig {
				t.Errorf("ConfigFile = %q, want %q", got.ConfigFile, tc.wantConfig)
			}
			if got.EnvFile != tc.wantEnv {
				t.Errorf("EnvFile = %q, want %q", got.EnvFile, tc.wantEnv)
			}
		})
	}
}

func TestEnvVar(t *testing.T) {
	tests := map[string]string{
		"ribbit.consumer_key": "RIBBIT_CONSUMER_KEY",
		"ribbit.log":          "RIBBIT_LOG",
		"http.timeout":        "RIBBIT_HTTP_TIMEOUT",
		"logging.level":       "RIBBIT_LOGGING_LEVEL",
	}
	for key, want := range tests {
		if got := EnvVar(key); got != want {
			t.Errorf("EnvVar(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("a.yml")(&lc)
	WithEnvFile("b.env")(&lc)
	if lc.FileSystem == nil || lc.ConfigFile != "a.yml" || lc.EnvFile != "b.env" {
		t.Errorf("options not applied: %+v", lc)
	}
}
