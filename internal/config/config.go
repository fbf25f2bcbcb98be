// Package config loads service configuration from defaults, an optional
// YAML file and GUARDIAN_* environment variables, in that order.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"coin-guardian/internal/domain"
)

type ctxKey string

const configContextKey ctxKey = "guardian.config"

const (
	EnvPrefix              = "guardian"
	DefaultListenAddr      = ":8080"
	DefaultMetricsAddr     = ":9090"
	DefaultShutdownTimeout = "30s"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// MetadataConfig seeds the coin metadata on first start.
type MetadataConfig struct {
	Name        string `yaml:"name"`
	Symbol      string `yaml:"symbol"`
	Description string `yaml:"description"`
	IconURL     string `yaml:"iconUrl"     envconfig:"ICON_URL"`
}

type Config struct {
	ListenAddr      string         `yaml:"listenAddr"      split_words:"true"`
	MetricsAddr     string         `yaml:"metricsAddr"     split_words:"true"`
	ShutdownTimeout string         `yaml:"shutdownTimeout" split_words:"true"`
	UseMemory       bool           `yaml:"useMemory"       split_words:"true"`
	PostgresDSN     string         `yaml:"postgresDsn"     envconfig:"POSTGRES_DSN"`
	ClickHouseDSN   string         `yaml:"clickhouseDsn"   envconfig:"CLICKHOUSE_DSN"`
	GovernanceID    string         `yaml:"governanceId"    split_words:"true"`
	Participants    []string       `yaml:"participants"`
	Threshold       int            `yaml:"threshold"`
	MaxSupply       uint64         `yaml:"maxSupply"       split_words:"true"`
	Metadata        MetadataConfig `yaml:"metadata"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      DefaultListenAddr,
		MetricsAddr:     DefaultMetricsAddr,
		ShutdownTimeout: DefaultShutdownTimeout,
		Threshold:       1,
		MaxSupply:       domain.DefaultMaxSupply,
		Metadata: MetadataConfig{
			Name:   "Guardian Coin",
			Symbol: "GRD",
		},
	}
}

// LoadConfig builds a Config from defaults, configFile (if non-empty) and
// the environment. Environment variables win. The result is not validated
// so that command-line flags can still override it.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listenAddr is required"))
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("invalid shutdownTimeout %q: %w", c.ShutdownTimeout, err))
	}
	if !c.UseMemory && c.PostgresDSN == "" {
		errs = append(errs, errors.New("postgresDsn is required unless useMemory is set"))
	}
	if _, err := c.GovernanceAddress(); err != nil {
		errs = append(errs, err)
	}
	participants, err := c.ParticipantAddresses()
	if err != nil {
		errs = append(errs, err)
	} else if c.Threshold < 1 || c.Threshold > len(participants) {
		errs = append(errs, fmt.Errorf("threshold %d out of range [1, %d]", c.Threshold, len(participants)))
	}
	if c.MaxSupply == 0 {
		errs = append(errs, errors.New("maxSupply must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// GovernanceAddress parses GovernanceID.
func (c *Config) GovernanceAddress() (domain.Address, error) {
	if c.GovernanceID == "" {
		return domain.Address{}, errors.New("governanceId is required")
	}
	addr, err := domain.ParseAddress(c.GovernanceID)
	if err != nil {
		return domain.Address{}, fmt.Errorf("governanceId: %w", err)
	}
	if addr.IsZero() {
		return domain.Address{}, errors.New("governanceId must not be the zero address")
	}
	return addr, nil
}

// ParticipantAddresses parses Participants.
func (c *Config) ParticipantAddresses() ([]domain.Address, error) {
	if len(c.Participants) == 0 {
		return nil, errors.New("at least one participant is required")
	}
	out := make([]domain.Address, 0, len(c.Participants))
	for _, p := range c.Participants {
		addr, err := domain.ParseAddress(p)
		if err != nil {
			return nil, fmt.Errorf("participant %q: %w", p, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

// ShutdownDuration returns ShutdownTimeout as a duration.
func (c *Config) ShutdownDuration() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
