package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port                string `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisCfg struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type KafkaCfg struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
}

type UserAPICfg struct {
	URL               string `mapstructure:"url"`
	Email             string `mapstructure:"email"`
	Password          string `mapstructure:"password"`
	ApplicationID     string `mapstructure:"application_id"`
	PageSize          int    `mapstructure:"page_size"`
	SyncIntervalHours int    `mapstructure:"sync_interval_hours"`
}

type JWTCfg struct {
	Secret string `mapstructure:"secret"`
}

type Config struct {
	Development bool       `mapstructure:"development"`
	Server      ServerCfg  `mapstructure:"server"`
	Mongo       MongoCfg   `mapstructure:"mongo"`
	Redis       RedisCfg   `mapstructure:"redis"`
	Kafka       KafkaCfg   `mapstructure:"kafka"`
	UserAPI     UserAPICfg `mapstructure:"user_api"`
	JWT         JWTCfg     `mapstructure:"jwt"`

	// Derived
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
	SyncInterval time.Duration
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 15
	}
	if cfg.Redis.TTLSeconds == 0 {
		cfg.Redis.TTLSeconds = 60
	}
	if cfg.UserAPI.PageSize == 0 {
		cfg.UserAPI.PageSize = 10
	}
	if cfg.UserAPI.SyncIntervalHours == 0 {
		cfg.UserAPI.SyncIntervalHours = 24
	}
	cfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	cfg.CacheTTL = time.Duration(cfg.Redis.TTLSeconds) * time.Second
	cfg.SyncInterval = time.Duration(cfg.UserAPI.SyncIntervalHours) * time.Hour
	return &cfg, nil
}
