package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Cron   CronConfig   `mapstructure:"cron"`

	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	ListingSync ListingSyncConfig `mapstructure:"listing_sync"`
	Pricing     PricingConfig     `mapstructure:"pricing"`
	Automation  AutomationConfig  `mapstructure:"automation"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	ListingSync        string `mapstructure:"listing_sync"`
	RecommendationGen  string `mapstructure:"recommendation_gen"`
	ExecutionRetention string `mapstructure:"execution_retention"`
}

type MarketplaceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ListingSyncConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	BatchSize int  `mapstructure:"batch_size"`
}

type PricingConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	LowMarginPct   int  `mapstructure:"low_margin_pct"`
	MaxBatchSize   int  `mapstructure:"max_batch_size"`
	HistoryDays    int  `mapstructure:"history_days"`
	GenerateOnBoot bool `mapstructure:"generate_on_boot"`
}

type AutomationConfig struct {
	SchedulerEnabled  bool          `mapstructure:"scheduler_enabled"`
	SchedulerInterval time.Duration `mapstructure:"scheduler_interval"`
	RetentionDays     int           `mapstructure:"retention_days"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.listing_sync", "@every 15m")
	v.SetDefault("cron.recommendation_gen", "@every 1h")
	v.SetDefault("cron.execution_retention", "@daily")
	v.SetDefault("marketplace.base_url", "https://api.ebay.com")
	v.SetDefault("marketplace.timeout", "15s")
	v.SetDefault("listing_sync.enabled", true)
	v.SetDefault("listing_sync.batch_size", 100)
	v.SetDefault("pricing.enabled", true)
	v.SetDefault("pricing.low_margin_pct", 10)
	v.SetDefault("pricing.max_batch_size", 200)
	v.SetDefault("pricing.history_days", 90)
	v.SetDefault("pricing.generate_on_boot", false)
	v.SetDefault("automation.scheduler_enabled", true)
	v.SetDefault("automation.scheduler_interval", "1m")
	v.SetDefault("automation.retention_days", 30)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
