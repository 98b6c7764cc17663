package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/example/internlog/internal/logging"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// EnvConfigPath names the variable holding the configuration file path.
const EnvConfigPath = "INTERNLOG_CONFIG"

// Duration is a time.Duration written as "30s" or "5m" in configuration files.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration in Go notation.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config captures file and environment driven configuration for internlog.
type Config struct {
	HTTP    HTTPConfig    `toml:"http"`
	Storage StorageConfig `toml:"storage"`
	Report  ReportConfig  `toml:"report"`
	Log     LogConfig     `toml:"log"`
}

// HTTPConfig holds API server settings.
type HTTPConfig struct {
	Port         int      `toml:"port"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// StorageConfig selects and configures the storage driver.
type StorageConfig struct {
	Driver        string `toml:"driver"` // "sqlite" or "mongo"
	SQLitePath    string `toml:"sqlite_path"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ReportConfig tunes report composition and the summary cache.
type ReportConfig struct {
	PageSize  int      `toml:"page_size"`
	CacheTTL  Duration `toml:"cache_ttl"`
	CacheSize int      `toml:"cache_size"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or text
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:         8080,
			ReadTimeout:  Duration(30 * time.Second),
			WriteTimeout: Duration(30 * time.Second),
		},
		Storage: StorageConfig{
			Driver:        DriverSQLite,
			SQLitePath:    "internlog.db",
			MongoDatabase: "internlog",
		},
		Report: ReportConfig{
			PageSize:  18,
			CacheTTL:  Duration(5 * time.Minute),
			CacheSize: 24,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the file named by INTERNLOG_CONFIG, if any, and the environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv(EnvConfigPath))
}

// LoadFrom applies defaults, then the TOML file at path when it exists, then
// INTERNLOG_* environment overrides, and validates the result. An empty path
// skips the file.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if err := loadFromFile(path, &cfg); err != nil {
		return Config{}, err
	}

	invalid := applyEnvOverrides(&cfg)
	missing := make([]string, 0, 1)

	switch cfg.Storage.Driver {
	case DriverSQLite:
		if strings.TrimSpace(cfg.Storage.SQLitePath) == "" {
			missing = append(missing, "INTERNLOG_SQLITE_PATH")
		}
	case DriverMongo:
		if strings.TrimSpace(cfg.Storage.MongoURI) == "" {
			missing = append(missing, "INTERNLOG_MONGO_URI")
		}
	default:
		invalid = append(invalid, "storage.driver")
	}

	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		invalid = appendOnce(invalid, "http.port")
	}
	if cfg.Report.PageSize <= 0 {
		invalid = appendOnce(invalid, "report.page_size")
	}
	if cfg.Report.CacheSize < 0 {
		invalid = appendOnce(invalid, "report.cache_size")
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		invalid = appendOnce(invalid, "log.level")
	}
	if format := strings.ToLower(cfg.Log.Format); format != "json" && format != "text" {
		invalid = appendOnce(invalid, "log.format")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required configuration is missing: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("configuration values are invalid: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides copies INTERNLOG_* variables over cfg and returns the
// names of variables whose values could not be parsed.
func applyEnvOverrides(cfg *Config) []string {
	invalid := make([]string, 0, 2)

	intVar := func(name string, target *int) {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				invalid = append(invalid, name)
				return
			}
			*target = parsed
		}
	}
	durationVar := func(name string, target *Duration) {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			parsed, err := time.ParseDuration(value)
			if err != nil || parsed < 0 {
				invalid = append(invalid, name)
				return
			}
			*target = Duration(parsed)
		}
	}
	stringVar := func(name string, target *string) {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			*target = value
		}
	}

	intVar("INTERNLOG_HTTP_PORT", &cfg.HTTP.Port)
	durationVar("INTERNLOG_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout)
	durationVar("INTERNLOG_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout)

	stringVar("INTERNLOG_STORAGE_DRIVER", &cfg.Storage.Driver)
	stringVar("INTERNLOG_SQLITE_PATH", &cfg.Storage.SQLitePath)
	// MONGODB_URI is the name older deployments of the web front end used.
	stringVar("MONGODB_URI", &cfg.Storage.MongoURI)
	stringVar("INTERNLOG_MONGO_URI", &cfg.Storage.MongoURI)
	stringVar("INTERNLOG_MONGO_DATABASE", &cfg.Storage.MongoDatabase)

	intVar("INTERNLOG_REPORT_PAGE_SIZE", &cfg.Report.PageSize)
	durationVar("INTERNLOG_REPORT_CACHE_TTL", &cfg.Report.CacheTTL)
	intVar("INTERNLOG_REPORT_CACHE_SIZE", &cfg.Report.CacheSize)

	stringVar("INTERNLOG_LOG_LEVEL", &cfg.Log.Level)
	stringVar("INTERNLOG_LOG_FORMAT", &cfg.Log.Format)

	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	return invalid
}

func appendOnce(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}
