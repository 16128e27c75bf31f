package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Default quota knobs for the jar.
const (
	DefaultMaxCookies   = 3000
	DefaultMaxPerDomain = 50
)

type Config struct {
	Env string    // Env is the current environment: local, dev, prod.
	Jar JarConfig // Jar holds the cookie jar quota configuration.
}

// JarConfig struct holds the bounds enforced by the cookie store.
type JarConfig struct {
	MaxCookies   int // MaxCookies is the hard cap on stored cookies.
	MaxPerDomain int // MaxPerDomain is the per-domain cap applied once the hard cap is exceeded.
}

// MustLoad loads the configuration and returns a Config struct. Values come
// from the YAML file named by CONFIG_PATH when it is set, overridden by
// PANDORA_* environment variables; built-in defaults apply otherwise.
// It panics when the named config file cannot be read.
func MustLoad() *Config {
	viper.SetDefault("env", "local")
	viper.SetDefault("jar.max_cookies", DefaultMaxCookies)
	viper.SetDefault("jar.max_per_domain", DefaultMaxPerDomain)

	viper.SetEnvPrefix("PANDORA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		// check if file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			panic("config file does not exist: " + configPath)
		}

		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			panic("config error: " + err.Error())
		}
	}

	return &Config{
		Env: viper.GetString("env"),
		Jar: JarConfig{
			MaxCookies:   viper.GetInt("jar.max_cookies"),
			MaxPerDomain: viper.GetInt("jar.max_per_domain"),
		},
	}
}
