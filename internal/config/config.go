package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	BackendCSV    = "csv"
	BackendKV     = "kv"
	BackendMemory = "memory"

	KVDriverSQLite = "sqlite"
	KVDriverMemory = "memory"

	DefaultConfigFile = "taskboard.yaml"
	envPrefix         = "TASKBOARD"
)

type Config struct {
	AppEnv  string        `mapstructure:"app_env" yaml:"app_env"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	IDs     IDConfig      `mapstructure:"ids" yaml:"ids"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type StorageConfig struct {
	Backend string   `mapstructure:"backend" yaml:"backend"`
	CSVPath string   `mapstructure:"csv_path" yaml:"csv_path"`
	KV      KVConfig `mapstructure:"kv" yaml:"kv"`
}

type KVConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
	Key    string `mapstructure:"key" yaml:"key"`
}

type IDConfig struct {
	Scheme string `mapstructure:"scheme" yaml:"scheme"`
}

func DefaultConfig() *Config {
	return &Config{
		AppEnv: "dev",
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Backend: BackendCSV,
			CSVPath: "tasks.csv",
			KV: KVConfig{
				Driver: KVDriverSQLite,
				Path:   "tasks.db",
				Key:    "tasks",
			},
		},
		IDs: IDConfig{
			Scheme: "uuid",
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load merges, lowest priority first: defaults, the YAML file at path (or
// taskboard.yaml in the working directory when path is empty), .env files and
// the process environment.
func Load(path string) (*Config, error) {
	loadDotEnv()

	cfg := DefaultConfig()
	v := viper.New()
	setDefaults(v, cfg)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("app_env", envPrefix+"_APP_ENV", "APP_ENV")
	_ = v.BindEnv("log.level", envPrefix+"_LOG_LEVEL", "LOG_LEVEL")

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" && os.Getenv(envPrefix+"_SERVER_ADDR") == "" {
		cfg.Server.Addr = ":" + port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendCSV:
		if c.Storage.CSVPath == "" {
			return fmt.Errorf("config: storage.csv_path is required for the csv backend")
		}
	case BackendKV:
		switch c.Storage.KV.Driver {
		case KVDriverSQLite:
			if c.Storage.KV.Path == "" {
				return fmt.Errorf("config: storage.kv.path is required for the sqlite driver")
			}
		case KVDriverMemory:
		default:
			return fmt.Errorf("config: unknown storage.kv.driver %q", c.Storage.KV.Driver)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown storage.backend %q", c.Storage.Backend)
	}
	return nil
}

// loadDotEnv reads .env and then .env.<APP_ENV>; both are optional.
func loadDotEnv() {
	_ = godotenv.Load(".env")

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}
	_ = godotenv.Overload(fmt.Sprintf(".env.%s", appEnv))
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("app_env", cfg.AppEnv)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.csv_path", cfg.Storage.CSVPath)
	v.SetDefault("storage.kv.driver", cfg.Storage.KV.Driver)
	v.SetDefault("storage.kv.path", cfg.Storage.KV.Path)
	v.SetDefault("storage.kv.key", cfg.Storage.KV.Key)
	v.SetDefault("ids.scheme", cfg.IDs.Scheme)
}

func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteDefault writes the default configuration as YAML. An existing file is
// left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	data, err := Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("config: marshal defaults: %w", err)
	}
	header := []byte("# taskboard configuration\n")
	return os.WriteFile(path, append(header, data...), 0644)
}
