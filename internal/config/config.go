package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/datasaur/datasaur-mcp/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config represents the application configuration
type Config struct {
	Transport string         `mapstructure:"transport"`
	HTTP      HTTPConfig     `mapstructure:"http"`
	Logging   LoggingConfig  `mapstructure:"logging"`
	Datasaur  DatasaurConfig `mapstructure:"datasaur"`
	Storage   StorageConfig  `mapstructure:"storage"`

	// Resolved from Datasaur + the built-in catalog, not read from file
	Endpoints map[string]models.EndpointConfig `mapstructure:"-"`
}

type HTTPConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	Path           string        `mapstructure:"path"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AuthToken      string        `mapstructure:"auth_token"`
	EnableCORS     bool          `mapstructure:"enable_cors"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level"`
	Output        string `mapstructure:"output"`
	ConsoleOutput bool   `mapstructure:"console_output"`
	MaxSize       int    `mapstructure:"max_size"`
	MaxBackups    int    `mapstructure:"max_backups"`
	MaxAge        int    `mapstructure:"max_age"`
	Compress      bool   `mapstructure:"compress"`
}

// StorageConfig holds on-disk state. Usage recording is off when UsageDir is empty.
type StorageConfig struct {
	UsageDir string `mapstructure:"usage_dir"`
}

type DatasaurConfig struct {
	APIKey    string                      `mapstructure:"api_key"`
	Endpoints map[string]EndpointSettings `mapstructure:"endpoints"`
}

// EndpointSettings overrides one catalog entry. Timeout is in seconds.
type EndpointSettings struct {
	URL     string  `mapstructure:"url"`
	Timeout float64 `mapstructure:"timeout"`
}

// LoadDotEnv loads KEY=VALUE files into the process environment.
// Variables already set are kept; missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// BindEnv wires the environment variable names the server has always used
func BindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("transport", "TRANSPORT")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.output", "LOG_FILE")
	_ = v.BindEnv("http.host", "HTTP_HOST")
	_ = v.BindEnv("http.port", "HTTP_PORT")
	_ = v.BindEnv("http.auth_token", "MCP_AUTH_TOKEN")
	_ = v.BindEnv("datasaur.api_key", "DATASAUR_API_KEY")
	_ = v.BindEnv("storage.usage_dir", "USAGE_DIR")

	for _, spec := range AllSpecs() {
		_ = v.BindEnv(endpointKey(spec.Name, "url"), spec.URLEnv)
		_ = v.BindEnv(endpointKey(spec.Name, "timeout"), spec.TimeoutEnv)
	}
}

// Load loads the configuration from v (file and environment)
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&cfg)
	// a bool cannot tell "unset" from false, so ask viper
	if !v.IsSet("logging.console_output") {
		cfg.Logging.ConsoleOutput = true
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.Endpoints = resolveEndpoints(v, &cfg)
	return &cfg, nil
}

// Endpoint returns the resolved endpoint for name. Unknown names yield an
// unconfigured endpoint so callers report a configuration error, not a panic.
func (c *Config) Endpoint(name string) models.EndpointConfig {
	if ep, ok := c.Endpoints[name]; ok {
		return ep
	}
	return models.EndpointConfig{Name: name, Label: name}
}

func resolveEndpoints(v *viper.Viper, cfg *Config) map[string]models.EndpointConfig {
	endpoints := make(map[string]models.EndpointConfig, len(promptSpecs)+1)
	for _, spec := range AllSpecs() {
		url := strings.TrimSpace(v.GetString(endpointKey(spec.Name, "url")))
		timeout := spec.Timeout
		if secs := v.GetFloat64(endpointKey(spec.Name, "timeout")); secs > 0 {
			timeout = time.Duration(secs * float64(time.Second))
		}

		endpoints[spec.Name] = models.EndpointConfig{
			Name:    spec.Name,
			Label:   spec.Label,
			BaseURL: url,
			APIKey:  cfg.Datasaur.APIKey,
			Timeout: timeout,
		}
	}
	return endpoints
}

func endpointKey(name, field string) string {
	return "datasaur.endpoints." + name + "." + field
}

func setDefaults(cfg *Config) {
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	cfg.Datasaur.APIKey = strings.TrimSpace(cfg.Datasaur.APIKey)
	cfg.Storage.UsageDir = strings.TrimSpace(cfg.Storage.UsageDir)

	// HTTP transport
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "127.0.0.1"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8000
	}
	if cfg.HTTP.Mode == "" {
		cfg.HTTP.Mode = "release"
	}
	if cfg.HTTP.Path == "" {
		cfg.HTTP.Path = "/mcp"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 30 * time.Second
	}
	// must outlive the slowest endpoint timeout
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}
	if cfg.Logging.MaxSize == 0 {
		cfg.Logging.MaxSize = 100
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 10
	}
	if cfg.Logging.MaxAge == 0 {
		cfg.Logging.MaxAge = 30
	}
}

func validate(cfg *Config) error {
	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s", cfg.Transport)
	}
	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.HTTP.Port)
	}
	if !strings.HasPrefix(cfg.HTTP.Path, "/") {
		return fmt.Errorf("invalid http path: %q", cfg.HTTP.Path)
	}
	for name, ep := range cfg.Datasaur.Endpoints {
		if ep.Timeout < 0 {
			return fmt.Errorf("invalid timeout for endpoint %s: %v", name, ep.Timeout)
		}
	}
	return nil
}
