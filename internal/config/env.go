package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "BLOG"
	envConfigPath = "BLOG_CONFIG_PATH"

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Env struct {
	AppAddr       string           `mapstructure:"app_addr" validate:"required"`
	GinMode       string           `mapstructure:"gin_mode" validate:"omitempty,oneof=debug release test"`
	PublicBaseURL string           `mapstructure:"public_base_url" validate:"omitempty,url"`
	Log           LogConfig        `mapstructure:"log"`
	Database      DatabaseConfig   `mapstructure:"database"`
	Pagination    PaginationConfig `mapstructure:"pagination"`
	CORS          CORSConfig       `mapstructure:"cors"`
	Auth          AuthConfig       `mapstructure:"auth"`

	// Source is the config file that was read, empty when only defaults and
	// environment variables were used.
	Source string `mapstructure:"-"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

type DatabaseConfig struct {
	Driver              string `mapstructure:"driver" validate:"required,oneof=mysql sqlite"`
	DSN                 string `mapstructure:"dsn" validate:"required"`
	MaxOpenConns        int    `mapstructure:"max_open_conns" validate:"min=1"`
	MaxIdleConns        int    `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetimeSecs int    `mapstructure:"conn_max_lifetime_secs" validate:"min=0"`
	Migrate             bool   `mapstructure:"migrate"`
	SeedFile            string `mapstructure:"seed_file"`
}

type PaginationConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size" validate:"min=1,ltefield=MaxPageSize"`
	MaxPageSize     int `mapstructure:"max_page_size" validate:"min=1"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig guards the write routes. An empty JWTSecret disables them.
type AuthConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret"`
	TokenTTLMinutes   int    `mapstructure:"token_ttl_minutes" validate:"min=1"`
	AdminUsername     string `mapstructure:"admin_username" validate:"required_with=JWTSecret"`
	AdminPasswordHash string `mapstructure:"admin_password_hash" validate:"required_with=JWTSecret"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_addr", ":8080")
	v.SetDefault("gin_mode", "")
	v.SetDefault("public_base_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "file:blog.db?_pragma=busy_timeout(5000)")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime_secs", 600)
	v.SetDefault("database.migrate", true)
	v.SetDefault("database.seed_file", "")
	v.SetDefault("pagination.default_page_size", 10)
	v.SetDefault("pagination.max_page_size", 100)
	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	})
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_minutes", 60)
	v.SetDefault("auth.admin_username", "")
	v.SetDefault("auth.admin_password_hash", "")
}

// LoadEnv reads config.yaml (or the file named by BLOG_CONFIG_PATH), then
// BLOG_* environment variables, over the defaults, and validates the result.
func LoadEnv() (Env, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := strings.TrimSpace(os.Getenv(envConfigPath)); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Env{}, fmt.Errorf("read config: %w", err)
		}
	}

	var env Env
	if err := v.Unmarshal(&env); err != nil {
		return Env{}, fmt.Errorf("parse config: %w", err)
	}
	env.Source = v.ConfigFileUsed()
	env.AppAddr = strings.TrimSpace(env.AppAddr)
	env.Log.Level = strings.ToLower(strings.TrimSpace(env.Log.Level))
	env.Database.Driver = strings.ToLower(strings.TrimSpace(env.Database.Driver))

	if err := validator.New().Struct(env); err != nil {
		return Env{}, fmt.Errorf("invalid config: %w", err)
	}
	return env, nil
}
