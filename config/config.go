package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/domino14/copydata/charset"
)

const (
	ConfigIdleTimeout = "idle-timeout"
	ConfigLogLevel    = "log-level"
	ConfigEncoding    = "encoding"
)

const envPrefix = "COPYDATA"

var ErrInvalidConfig = errors.New("invalid config")

var logLevels = []string{"debug", "info", "warn", "error", "disabled"}

// Config only reads from the environment (COPYDATA_IDLE_TIMEOUT etc). The
// command line is never consulted.
type Config struct {
	*viper.Viper
}

func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigIdleTimeout, "10ms")
	c.SetDefault(ConfigLogLevel, "warn")
	c.SetDefault(ConfigEncoding, "")
}

func (c *Config) Load() error {
	c.Viper = viper.New()
	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	c.setDefaults()
	return c.validate()
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.GetString(ConfigIdleTimeout))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, ConfigIdleTimeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, ConfigIdleTimeout, d)
	}
	ll := strings.ToLower(c.GetString(ConfigLogLevel))
	if !lo.Contains(logLevels, ll) {
		return fmt.Errorf("%w: %s must be one of %v, got %q", ErrInvalidConfig, ConfigLogLevel, logLevels, ll)
	}
	if _, err := charset.Lookup(c.GetString(ConfigEncoding)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// IdleTimeout is only meaningful after a successful Load or on DefaultConfig.
func (c *Config) IdleTimeout() time.Duration {
	return c.GetDuration(ConfigIdleTimeout)
}

func (c *Config) LogLevel() string {
	return strings.ToLower(c.GetString(ConfigLogLevel))
}

func (c *Config) Encoding() string {
	return c.GetString(ConfigEncoding)
}
