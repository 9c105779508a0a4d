package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Journal  Journal  `mapstructure:"journal"`
	Summary  Summary  `mapstructure:"summary"`
	Logger   Logger   `mapstructure:"logger"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port           int     `mapstructure:"port"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Database selects and configures the storage backend.
// Driver is one of "sqlite", "mongo" or "jsonfile".
type Database struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`       // sqlite
	MongoURI string `mapstructure:"mongo_uri"` // mongo
	Path     string `mapstructure:"path"`      // jsonfile
}

// Journal holds the accounting defaults.
type Journal struct {
	StartingBalance float64 `mapstructure:"starting_balance"`
}

// Summary configures the optional end-of-day summary job.
type Summary struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.rate_limit", 20)      // requests per second
	viper.SetDefault("server.rate_limit_burst", 5) // burst size
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "journal.db")
	viper.SetDefault("database.mongo_uri", "mongodb://localhost:27017")
	viper.SetDefault("database.path", "trades_data.json")
	viper.SetDefault("journal.starting_balance", 100000)
	viper.SetDefault("summary.enabled", false)
	viper.SetDefault("summary.cron", "0 0 * * *")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
