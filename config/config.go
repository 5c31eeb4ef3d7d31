// Package config loads process configuration from an optional config file
// and GOALKEEPER_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	HTTP  HTTPConfig  `mapstructure:"http"`
	Slack SlackConfig `mapstructure:"slack"`
	Store StoreConfig `mapstructure:"store"`
}

// HTTPConfig configures the inbound listener.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// SlackConfig configures the Slack side: the shared secret every callback
// must carry, the optional channel webhook new goals are announced on, and
// the user named in the help message.
type SlackConfig struct {
	Token        string `mapstructure:"token"`
	WebhookURL   string `mapstructure:"webhook_url"`
	FeedbackUser string `mapstructure:"feedback_user"`
}

// StoreConfig selects and configures the workbook backend.
type StoreConfig struct {
	Backend         string `mapstructure:"backend"` // memory, sqlite, datastore or gsheets
	MainSheet       string `mapstructure:"main_sheet"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	Project         string `mapstructure:"project"`          // datastore
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`   // gsheets
	CredentialsFile string `mapstructure:"credentials_file"` // datastore and gsheets
}

// Load reads configuration from path when given, otherwise from an optional
// goalkeeper.yaml in the working directory. Environment variables of the
// form GOALKEEPER_SLACK_TOKEN override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("goalkeeper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GOALKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Slack.Token == "" {
		return nil, fmt.Errorf("slack.token must be set (GOALKEEPER_SLACK_TOKEN)")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("slack.token", "")
	v.SetDefault("slack.webhook_url", "")
	v.SetDefault("slack.feedback_user", "")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.main_sheet", "Sheet1")
	v.SetDefault("store.sqlite_path", "goalkeeper.db")
	v.SetDefault("store.project", "")
	v.SetDefault("store.spreadsheet_id", "")
	v.SetDefault("store.credentials_file", "")
}
