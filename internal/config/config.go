// Package config loads the process-wide gateway configuration: a YAML file
// with environment-variable overrides, read once at startup and passed by
// injection. There is no hot reload.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized as overrides.
const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvPort          = "PORT"
	EnvStoreBackend  = "STORE_BACKEND"
	EnvGitHubOwner   = "GITHUB_OWNER"
	EnvGitHubRepo    = "GITHUB_REPO"
	EnvGitHubPath    = "GITHUB_PATH"
	EnvGitHubBranch  = "GITHUB_BRANCH"
	EnvGitHubToken   = "GITHUB_TOKEN"
	EnvDBConnection  = "DB_CONNECTION"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvSigningSecret = "SIGNING_SECRET"
	EnvTokenExpiry   = "TOKEN_EXPIRY"
	EnvMailHost      = "MAIL_HOST"
	EnvMailPort      = "MAIL_PORT"
	EnvMailTo        = "MAIL_TO"
)

// Store backend identifiers.
const (
	BackendGitHub   = "github"
	BackendDatabase = "database"
	BackendRedis    = "redis"
)

// Defaults applied when neither file nor environment provides a value.
const (
	defaultPort        = 8318
	defaultGitHubPath  = "users.json"
	defaultBranch      = "main"
	defaultDocumentKey = "users"
	defaultTokenExpiry = 6 * time.Hour
	defaultMailHost    = "smtp.gmail.com"
	defaultMailPort    = 587
	defaultMailTo      = "support@support.whatsapp.com"
)

// GitHubConfig locates the remote document and its access credential.
type GitHubConfig struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Path   string `yaml:"path"`
	Branch string `yaml:"branch"`
	Token  string `yaml:"token"`
}

// RedisConfig locates the redis-backed document.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Key     string `yaml:"key"` // document key for database/redis backends
}

// AuthConfig holds the token-signing secret and token lifetime.
type AuthConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// MailConfig holds the SMTP endpoint and the fixed relay recipient. Sender
// credentials live on the user record, not here.
type MailConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	To   string `yaml:"to"`
}

// Config is the resolved application configuration.
type Config struct {
	Port        int          `yaml:"port"`
	Store       StoreConfig  `yaml:"store"`
	GitHub      GitHubConfig `yaml:"github"`
	DatabaseDSN string       `yaml:"database-dsn"`
	Redis       RedisConfig  `yaml:"redis"`
	Auth        AuthConfig   `yaml:"auth"`
	Mail        MailConfig   `yaml:"mail"`
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file when present, applies environment
// overrides, and fills defaults. A missing file is not an error; a
// malformed one is.
func Load(configPath string) (Config, error) {
	var cfg Config

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", configPath, errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("config: read %s: %w", configPath, errRead)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		if port, errParse := strconv.Atoi(v); errParse == nil {
			cfg.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoreBackend)); v != "" {
		cfg.Store.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGitHubOwner)); v != "" {
		cfg.GitHub.Owner = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGitHubRepo)); v != "" {
		cfg.GitHub.Repo = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGitHubPath)); v != "" {
		cfg.GitHub.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGitHubBranch)); v != "" {
		cfg.GitHub.Branch = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGitHubToken)); v != "" {
		cfg.GitHub.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDBConnection)); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisPassword)); v != "" {
		cfg.Redis.Password = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisDB)); v != "" {
		if n, errParse := strconv.Atoi(v); errParse == nil {
			cfg.Redis.DB = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSigningSecret)); v != "" {
		cfg.Auth.Secret = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTokenExpiry)); v != "" {
		if expiry, errParse := time.ParseDuration(v); errParse == nil && expiry > 0 {
			cfg.Auth.Expiry = expiry
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMailHost)); v != "" {
		cfg.Mail.Host = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMailPort)); v != "" {
		if port, errParse := strconv.Atoi(v); errParse == nil {
			cfg.Mail.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMailTo)); v != "" {
		cfg.Mail.To = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Store.Backend) == "" {
		cfg.Store.Backend = BackendGitHub
	}
	if strings.TrimSpace(cfg.Store.Key) == "" {
		cfg.Store.Key = defaultDocumentKey
	}
	if strings.TrimSpace(cfg.GitHub.Path) == "" {
		cfg.GitHub.Path = defaultGitHubPath
	}
	if strings.TrimSpace(cfg.GitHub.Branch) == "" {
		cfg.GitHub.Branch = defaultBranch
	}
	if strings.TrimSpace(cfg.Redis.Key) == "" {
		cfg.Redis.Key = cfg.Store.Key
	}
	if cfg.Auth.Expiry <= 0 {
		cfg.Auth.Expiry = defaultTokenExpiry
	}
	if strings.TrimSpace(cfg.Mail.Host) == "" {
		cfg.Mail.Host = defaultMailHost
	}
	if cfg.Mail.Port <= 0 {
		cfg.Mail.Port = defaultMailPort
	}
	if strings.TrimSpace(cfg.Mail.To) == "" {
		cfg.Mail.To = defaultMailTo
	}
}

// Validate checks the settings required to boot.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return fmt.Errorf("config: missing signing secret (set auth.secret or %s)", EnvSigningSecret)
	}
	switch c.Store.Backend {
	case BackendGitHub:
		if strings.TrimSpace(c.GitHub.Owner) == "" || strings.TrimSpace(c.GitHub.Repo) == "" {
			return fmt.Errorf("config: github backend needs owner and repo")
		}
		if strings.TrimSpace(c.GitHub.Token) == "" {
			return fmt.Errorf("config: github backend needs a token (set github.token or %s)", EnvGitHubToken)
		}
	case BackendDatabase:
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return fmt.Errorf("config: database backend needs a dsn (set database-dsn or %s)", EnvDBConnection)
		}
	case BackendRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return fmt.Errorf("config: redis backend needs an addr (set redis.addr or %s)", EnvRedisAddr)
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	return nil
}
