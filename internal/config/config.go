// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"yiiep-sdk/pkg/yiiep"
)

type RuntimeConfig struct {
	Dev bool
}

type YiiepConfig struct {
	MerchantID string        `yaml:"merchant_id"`
	Secret     string        `yaml:"secret"`
	Mode       string        `yaml:"mode"`     // test | real
	Protocol   string        `yaml:"protocol"` // v1 | v2
	Local      bool          `yaml:"local"`    // talk to the local development host
	BaseURL    string        `yaml:"base_url"` // overrides mode/local when set
	Timeout    time.Duration `yaml:"timeout"`  // 0 = no client-side timeout
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type BridgeConfig struct {
	Port           int           `yaml:"port"`
	APIKey         string        `yaml:"api_key"`
	CORSOrigins    []string      `yaml:"cors_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Workers        int           `yaml:"workers"` // batch status fan-out
}

type Config struct {
	Yiiep  YiiepConfig  `yaml:"yiiep"`
	Log    LogConfig    `yaml:"log"`
	Bridge BridgeConfig `yaml:"bridge"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path. A credential field whose whole value is
// ${VAR} is read from the environment, so the secret does not have to live in the file.
// In dev mode a missing file yields the defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if !(dev && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		b = nil
	}
	return Parse(b, dev)
}

func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, f := range []*string{&cfg.Yiiep.MerchantID, &cfg.Yiiep.Secret, &cfg.Yiiep.BaseURL, &cfg.Bridge.APIKey} {
		*f = envRef(*f)
	}
	cfg.Runtime.Dev = dev
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envRef resolves a value that is exactly ${VAR}. Anything else, including a "$"
// inside a literal secret, is kept verbatim.
func envRef(v string) string {
	t := strings.TrimSpace(v)
	if len(t) > 3 && strings.HasPrefix(t, "${") && strings.HasSuffix(t, "}") {
		return os.Getenv(t[2 : len(t)-1])
	}
	return v
}

func applyDefaults(cfg *Config) {
	if cfg.Yiiep.Mode == "" {
		cfg.Yiiep.Mode = string(yiiep.ModeTest)
	}
	if cfg.Yiiep.Protocol == "" {
		cfg.Yiiep.Protocol = yiiep.ProtocolVersion1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Bridge.Port <= 0 {
		cfg.Bridge.Port = 8080
	}
	if cfg.Bridge.RequestTimeout <= 0 {
		cfg.Bridge.RequestTimeout = 15 * time.Second
	}
	if cfg.Bridge.Workers <= 0 {
		cfg.Bridge.Workers = 4
	}
}

func (c *Config) validate() error {
	if _, err := yiiep.ParseMode(c.Yiiep.Mode); err != nil {
		return fmt.Errorf("yiiep.mode: %w", err)
	}
	if _, err := yiiep.ProtocolByVersion(c.Yiiep.Protocol); err != nil {
		return fmt.Errorf("yiiep.protocol: %w", err)
	}
	if c.Yiiep.Timeout < 0 {
		return errors.New("yiiep.timeout must not be negative")
	}
	// dev mode may run against the in-memory gateway
	if c.Runtime.Dev {
		return nil
	}
	if c.Yiiep.MerchantID == "" {
		return errors.New("yiiep.merchant_id is required")
	}
	if c.Yiiep.Secret == "" {
		return errors.New("yiiep.secret is required")
	}
	return nil
}

// HasCredentials reports whether a real client can be built.
func (c *Config) HasCredentials() bool {
	return c.Yiiep.MerchantID != "" && c.Yiiep.Secret != ""
}
