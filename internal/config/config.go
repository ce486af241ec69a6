package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageSQL    = "sql"
	StorageMongo  = "mongo"
)

// Database drivers usable by the sql storage driver.
const (
	DBDriverOracle = "oracle"
	DBDriverSQLite = "sqlite3"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	DB      DBConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Uploads UploadsConfig
	Retry   RetryConfig
	Logger  LoggerConfig
}

type ServerConfig struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	BodyLimit      int
}

type StorageConfig struct {
	Driver string
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	FormTTL  time.Duration
}

// Enabled reports whether a redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

type UploadsConfig struct {
	Dir       string
	URLPrefix string
}

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.request_timeout", "5s")
	v.SetDefault("server.body_limit", 10*1024*1024)

	v.SetDefault("storage.driver", StorageMemory)

	v.SetDefault("db.driver", DBDriverSQLite)
	v.SetDefault("db.port", 1521)
	v.SetDefault("db.sqlite_path", "formcraft.db")

	v.SetDefault("mongo.database", "formcraft")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.form_ttl", "10m")

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.url_prefix", "/uploads")

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", "100ms")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
}

// LoadConfig reads config.yaml when present, then the environment. Keys map
// to variables with dots replaced by underscores (DB_HOST, SERVER_PORT).
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variable names the original deployment used.
	if err := v.BindEnv("server.port", "SERVER_PORT", "PORT"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("mongo.uri", "MONGO_URI", "MongoDBURL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			BodyLimit:      v.GetInt("server.body_limit"),
		},
		Storage: StorageConfig{
			Driver: v.GetString("storage.driver"),
		},
		DB: DBConfig{
			Driver:     v.GetString("db.driver"),
			Host:       v.GetString("db.host"),
			Port:       v.GetInt("db.port"),
			User:       v.GetString("db.user"),
			Password:   v.GetString("db.password"),
			DBName:     v.GetString("db.name"),
			SQLitePath: v.GetString("db.sqlite_path"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongo.uri"),
			Database: v.GetString("mongo.database"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			FormTTL:  v.GetDuration("redis.form_ttl"),
		},
		Uploads: UploadsConfig{
			Dir:       v.GetString("uploads.dir"),
			URLPrefix: v.GetString("uploads.url_prefix"),
		},
		Retry: RetryConfig{
			MaxAttempts: v.GetInt("retry.max_attempts"),
			BaseDelay:   v.GetDuration("retry.base_delay"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the selected drivers depend on.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQL:
		switch c.DB.Driver {
		case DBDriverOracle:
			if c.DB.Host == "" || c.DB.DBName == "" {
				return errors.New("config: db.host and db.name are required for the oracle driver")
			}
		case DBDriverSQLite:
			if c.DB.SQLitePath == "" {
				return errors.New("config: db.sqlite_path is required for the sqlite3 driver")
			}
		default:
			return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
		}
	case StorageMongo:
		if c.Mongo.URI == "" {
			return errors.New("config: mongo.uri is required for the mongo storage driver")
		}
	default:
		return fmt.Errorf("config: unsupported storage.driver %q", c.Storage.Driver)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("config: server.request_timeout must be positive")
	}
	return nil
}

// GetDSN returns the data source name for the configured database driver.
func (c *Config) GetDSN() string {
	if c.DB.Driver == DBDriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.DB.SQLitePath)
	}
	u := url.URL{
		Scheme: "oracle",
		User:   url.UserPassword(c.DB.User, c.DB.Password),
		Host:   fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:   "/" + c.DB.DBName,
	}
	return u.String()
}
