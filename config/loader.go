package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigFileName is the file searched for when no path is given.
const ConfigFileName = "ribbit.yml"

// EnvPrefix prefixes environment overrides outside the ribbit section, e.g.
// RIBBIT_HTTP_TIMEOUT. Keys in the ribbit section map directly:
// ribbit.consumer_key is RIBBIT_CONSUMER_KEY.
const EnvPrefix = "RIBBIT"

// FileSystem abstracts file lookups (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	HomeDir() (string, error)
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

func (rfs *RealFileSystem) HomeDir() (string, error) {
	return os.UserHomeDir()
}

// Resolver finds the config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths if provided, otherwise searches the
// standard locations. A path is empty when nothing was found.
func (r *Resolver) ResolveFiles(opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(r.configSearchPaths())
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first([]string{".env", "config/.env"})
	}
	return resolved
}

func (r *Resolver) configSearchPaths() []string {
	paths := []string{
		"./" + ConfigFileName,
		"./config/" + ConfigFileName,
		"../config/" + ConfigFileName,
	}
	if home, err := r.FileSystem.HomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".ribbit", ConfigFileName))
	}
	return paths
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads ribbit.yml and the environment, applies defaults and validates
// the result. Environment variables, including those from a .env file,
// override file values. An explicitly named file that cannot be read is an
// error; searched-for files are optional.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(lc)

	cfg, err := loadFromResolvedFiles(files, lc)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromResolvedFiles(files ResolvedFiles, lc LoaderConfig) (*Config, error) {
	v := viper.New()

	if files.ConfigFile != "" {
		if !lc.FileSystem.Exists(files.ConfigFile) {
			return nil, fmt.Errorf("config: file %s not found", files.ConfigFile)
		}
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", files.EnvFile, err)
		}
	} else if lc.EnvFile != "" {
		return nil, fmt.Errorf("config: env file %s not found", lc.EnvFile)
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// configKeys are the keys that can be overridden from the environment.
var configKeys = []string{
	"ribbit.endpoint",
	"ribbit.consumer_key",
	"ribbit.secret_key",
	"ribbit.application_id",
	"ribbit.domain",
	"ribbit.account_id",
	"ribbit.access_token",
	"ribbit.access_secret",
	"ribbit.log",
	"http.proxy_address",
	"http.proxy_username",
	"http.proxy_password",
	"http.proxy_from_environment",
	"http.timeout",
	"http.insecure_skip_verify",
	"http.ca_file",
	"logging.level",
	"logging.format",
	"logging.output",
	"logging.no_color",
	"observability.enabled",
	"observability.endpoint",
	"observability.insecure",
	"observability.sample_rate",
	"observability.service_name",
	"observability.interval",
}

func bindEnv(v *viper.Viper) error {
	for _, key := range configKeys {
		if err := v.BindEnv(key, EnvVar(key)); err != nil {
			return fmt.Errorf("config: bind %s: %w", key, err)
		}
	}
	return nil
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if strings.HasPrefix(key, "ribbit.") {
		return name
	}
	return EnvPrefix + "_" + name
}
