package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Worker  WorkerConfig
	Display DisplayConfig
	CORS    CORSConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	ShutdownPeriod time.Duration `mapstructure:"shutdownPeriod"`
}

// APIConfig points the console at the remote License API.
type APIConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig selects where the admin bearer token is persisted.
// Driver is one of "file", "redis" or "memory".
type SessionConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WorkerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	DigestSchedule     string `mapstructure:"digestSchedule"`
	ExpiringWithinDays int    `mapstructure:"expiringWithinDays"`
}

type DisplayConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

const DefaultAPIBaseURL = "http://localhost:8081/api"

func LoadConfig(configPath string) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables and config file")
	}

	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.shutdownPeriod", 15*time.Second)

	v.SetDefault("api.baseURL", DefaultAPIBaseURL)
	v.SetDefault("api.timeout", 30*time.Second)

	v.SetDefault("session.driver", "file")
	v.SetDefault("session.path", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("worker.enabled", false)
	v.SetDefault("worker.digestSchedule", "@every 1h")
	v.SetDefault("worker.expiringWithinDays", 7)

	v.SetDefault("display.timezone", "Local")
	v.SetDefault("cors.allowOrigins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			log.Printf("Warning: could not read config file: %s. Error: %v\n", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location resolves the display timezone used for calendar-day bucketing.
func (c DisplayConfig) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Invalid display timezone '%s', using local time\n", c.Timezone)
		return time.Local
	}
	return loc
}
