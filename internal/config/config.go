package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultListenAddr      = ":3000"
	DefaultSessionDuration = 8 * time.Hour
)

type MySQLConfig struct {
	Dsn             string `mapstructure:"dsn"`
	TablePrefix     string `mapstructure:"tablePrefix"`
	MaxIdleConns    int    `mapstructure:"maxIdleConns"`
	MaxOpenConns    int    `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime int    `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime int    `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type SessionConfig struct {
	Duration time.Duration `mapstructure:"duration"`
}

type Config struct {
	Debug        bool          `mapstructure:"debug"`
	SiteName     string        `mapstructure:"siteName"`
	BaseURL      string        `mapstructure:"baseURL"`
	ListenAddr   string        `mapstructure:"listenAddr"`
	AllowOrigins []string      `mapstructure:"allowOrigins"`
	Session      SessionConfig `mapstructure:"session"`
	MySQL        MySQLConfig   `mapstructure:"mysql"`
	Redis        RedisConfig   `mapstructure:"redis"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Session.Duration == 0 {
		c.Session.Duration = DefaultSessionDuration
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
