package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"

	NotifierDiscord = "discord"
	NotifierLine    = "line"
)

// Config holds every setting read from the environment.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	StoreDriver   string `envconfig:"STORE_DRIVER" default:"sqlite"`
	DBURL         string `envconfig:"DB_URL" default:"memento.db"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	Notifier           string `envconfig:"NOTIFIER" default:"discord"`
	DiscordToken       string `envconfig:"DISCORD_TOKEN"`
	ChannelSecret      string `envconfig:"CHANNEL_SECRET"`
	ChannelAccessToken string `envconfig:"CHANNEL_ACCESS_TOKEN"`

	// PollInterval is the sleep between two scans of the pending reminders.
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"2s"`
	// StalenessWindow is how late a reminder may be and still be delivered.
	StalenessWindow time.Duration `envconfig:"STALENESS_WINDOW" default:"60m"`
	DefaultTimeUnit string        `envconfig:"DEFAULT_TIME_UNIT" default:"minutes"`
	MinDuration     time.Duration `envconfig:"MIN_DURATION" default:"1m"`
	MaxDuration     time.Duration `envconfig:"MAX_DURATION" default:"0"`
	MaxTextLength   int           `envconfig:"MAX_TEXT_LENGTH" default:"1000"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that depend on each other.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(c.StoreDriver)
	c.Notifier = strings.ToLower(c.Notifier)

	switch c.StoreDriver {
	case StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.Notifier {
	case NotifierDiscord:
		if c.DiscordToken == "" {
			return fmt.Errorf("DISCORD_TOKEN must be set when NOTIFIER=discord")
		}
	case NotifierLine:
		if c.ChannelSecret == "" || c.ChannelAccessToken == "" {
			return fmt.Errorf("CHANNEL_SECRET and CHANNEL_ACCESS_TOKEN must be set when NOTIFIER=line")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER %q", c.Notifier)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.StalenessWindow <= c.PollInterval {
		return fmt.Errorf("STALENESS_WINDOW (%s) must be longer than POLL_INTERVAL (%s)", c.StalenessWindow, c.PollInterval)
	}
	if c.MaxTextLength <= 0 {
		return fmt.Errorf("MAX_TEXT_LENGTH must be positive")
	}
	return nil
}
