package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Registry RegistryConfig `mapstructure:"registry"`
	Rooms    RoomsConfig    `mapstructure:"rooms"`
	Service  ServiceConfig  `mapstructure:"service"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RegistryConfig points at the central server's service API, which owns
// the durable session records and their lifecycle events.
type RegistryConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Token       string        `mapstructure:"token"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
}

type RoomsConfig struct {
	Executable    string `mapstructure:"executable"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	PortRangeMin  int    `mapstructure:"port_range_min"`
	PortRangeMax  int    `mapstructure:"port_range_max"`
}

type ServiceConfig struct {
	ID          string `mapstructure:"id"`
	UUID        string `mapstructure:"uuid"`
	Key         string `mapstructure:"key"`
	Name        string `mapstructure:"name"`
	JoinMessage string `mapstructure:"join_message"`
}

type AuthConfig struct {
	TokenSecret string `mapstructure:"token_secret"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}

	setDefaultValues()

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine, the environment can carry the whole
		// configuration.
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
		}
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Registry.Timeout == 0 {
		globalConfig.Registry.Timeout = 10 * time.Second
	}
	if globalConfig.Registry.MaxFailures == 0 {
		globalConfig.Registry.MaxFailures = 5
	}
	if globalConfig.Rooms.PortRangeMin == 0 {
		globalConfig.Rooms.PortRangeMin = 40000
	}
	if globalConfig.Rooms.PortRangeMax == 0 {
		globalConfig.Rooms.PortRangeMax = 40100
	}
	if globalConfig.Service.JoinMessage == "" {
		globalConfig.Service.JoinMessage = "Join me!"
	}
}

func GetConfig() *Config {
	return &globalConfig
}
