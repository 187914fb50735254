package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"app_env"`
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	DatabaseURL     string        `mapstructure:"database_url"`
	DBMaxOpenConns  int           `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns  int           `mapstructure:"db_max_idle_conns"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl"`

	CORSOrigin     string        `mapstructure:"cors_origin"`
	AuthRateLimit  int           `mapstructure:"auth_rate_limit"`
	AuthRateWindow time.Duration `mapstructure:"auth_rate_window"`
}

// Load reads a .env file when one is present, then resolves every key from
// the environment with the defaults below.
func Load() (*Config, bool, error) {
	// A missing .env is normal in production where variables are set directly.
	envFileLoaded := godotenv.Load() == nil

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, envFileLoaded, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, envFileLoaded, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("database_url", "sqlite://bookit.db")
	v.SetDefault("db_max_open_conns", 100)
	v.SetDefault("db_max_idle_conns", 10)
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl", 7*24*time.Hour)
	v.SetDefault("cors_origin", "*")
	v.SetDefault("auth_rate_limit", 20)
	v.SetDefault("auth_rate_window", 10*time.Minute)
}

// CORSOrigins splits the comma separated CORS_ORIGIN value.
func (c *Config) CORSOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
