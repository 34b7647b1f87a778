package core

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type (
	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		RollbarToken string

		SeedDefaultTeacher bool
		DefaultTeacher     struct {
			Username string
			Password string
		}

		Storage  StorageConfig
		Redis    RedisConfig
		Database DatabaseConfig
	}

	StorageConfig struct {
		Backend string
		Path    string
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	DatabaseConfig struct {
		Driver string // postgres (lib/pq) | pgx
		URL    string // a file path for sqlite
		Table  string
	}
)

func newViper(env string) *viper.Viper {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", false) // e.g. DEV_DEBUG=true
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "EduTrack")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("seedDefaultTeacher", true)
	v.SetDefault("defaultTeacher.username", "teacher01")
	v.SetDefault("defaultTeacher.password", "teach123")
	v.SetDefault("storage.backend", StorageFile)
	v.SetDefault("storage.path", "edutrack.json")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "edutrack:")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.table", "edutrack_kv")
	if env == "TEST" {
		v.SetDefault("testMode", true)
		v.SetDefault("storage.backend", StorageMemory)
	}

	// e.g. DEV_STORAGE_BACKEND=redis
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewConfig loads the configuration for the environment named by $ENV
// (DEV (default), TEST, QA, PROD), reading config/.env.<env> first if it exists.
func NewConfig() (*Config, error) {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v := newViper(env)
	conf := &Config{
		Env:                env,
		Build:              v.GetString("build"),
		Debug:              v.GetBool("debug"),
		TestMode:           v.GetBool("testMode"),
		AppName:            v.GetString("appName"),
		RollbarToken:       v.GetString("rollbarToken"),
		SeedDefaultTeacher: v.GetBool("seedDefaultTeacher"),
		Storage: StorageConfig{
			Backend: strings.ToLower(v.GetString("storage.backend")),
			Path:    v.GetString("storage.path"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Prefix:   v.GetString("redis.prefix"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("database.driver")),
			URL:    v.GetString("database.url"),
			Table:  v.GetString("database.table"),
		},
	}
	conf.DefaultTeacher.Username = v.GetString("defaultTeacher.username")
	conf.DefaultTeacher.Password = v.GetString("defaultTeacher.password")
	return conf, nil
}
