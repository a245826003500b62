package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Admin    AdminConfig    `yaml:"admin"`
	Cart     CartConfig     `yaml:"cart"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type AdminConfig struct {
	APIKey string `yaml:"api_key"`
	// CacheTTL is how long cached admin data stays fresh. Defaults to 5
	// minutes.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type CartConfig struct {
	// TTL is how long an idle persisted cart survives in the key-value
	// store.
	TTL time.Duration `yaml:"ttl"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Admin.CacheTTL == 0 {
		cfg.Admin.CacheTTL = 5 * time.Minute
	}
	if cfg.Cart.TTL == 0 {
		cfg.Cart.TTL = 7 * 24 * time.Hour
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 3000
	}

	return &cfg, nil
}
