package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	EnvConfigPath,
	"INTERNLOG_HTTP_PORT",
	"INTERNLOG_HTTP_READ_TIMEOUT",
	"INTERNLOG_HTTP_WRITE_TIMEOUT",
	"INTERNLOG_STORAGE_DRIVER",
	"INTERNLOG_SQLITE_PATH",
	"MONGODB_URI",
	"INTERNLOG_MONGO_URI",
	"INTERNLOG_MONGO_DATABASE",
	"INTERNLOG_REPORT_PAGE_SIZE",
	"INTERNLOG_REPORT_CACHE_TTL",
	"INTERNLOG_REPORT_CACHE_SIZE",
	"INTERNLOG_LOG_LEVEL",
	"INTERNLOG_LOG_FORMAT",
}

// clearEnv blanks every variable the loader reads; empty values are treated
// as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoader_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.SQLitePath != "internlog.db" {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Report.PageSize != 18 {
		t.Fatalf("expected page size 18, got %d", cfg.Report.PageSize)
	}
	if cfg.HTTP.ReadTimeout.Std() != 30*time.Second {
		t.Fatalf("unexpected read timeout %v", cfg.HTTP.ReadTimeout.Std())
	}
}

func TestLoader_FileThenEnvironment(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
[http]
port = 9090
read_timeout = "5s"

[storage]
driver = "mongo"
mongo_uri = "mongodb://file:27017"

[report]
page_size = 12
cache_ttl = "1m"

[log]
level = "debug"
format = "text"
`)
	t.Setenv("INTERNLOG_MONGO_URI", "mongodb://env:27017")
	t.Setenv("INTERNLOG_REPORT_PAGE_SIZE", "20")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.HTTP.Port != 9090 || cfg.HTTP.ReadTimeout.Std() != 5*time.Second {
		t.Fatalf("file values not applied: %+v", cfg.HTTP)
	}
	if cfg.HTTP.WriteTimeout.Std() != 30*time.Second {
		t.Fatalf("expected default write timeout to survive, got %v", cfg.HTTP.WriteTimeout.Std())
	}
	if cfg.Storage.MongoURI != "mongodb://env:27017" {
		t.Fatalf("expected environment to win, got %q", cfg.Storage.MongoURI)
	}
	if cfg.Report.PageSize != 20 || cfg.Report.CacheTTL.Std() != time.Minute {
		t.Fatalf("unexpected report config %+v", cfg.Report)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("expected defaults, got %+v", cfg.HTTP)
	}
}

func TestLoader_Errors(t *testing.T) {
	t.Run("mongo requires a uri", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("INTERNLOG_STORAGE_DRIVER", "Mongo")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error when mongo uri is missing")
		}
		expected := "required configuration is missing: INTERNLOG_MONGO_URI"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("legacy mongo variable is accepted", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("INTERNLOG_STORAGE_DRIVER", "mongo")
		t.Setenv("MONGODB_URI", "mongodb://legacy:27017")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Storage.MongoURI != "mongodb://legacy:27017" {
			t.Fatalf("unexpected uri %q", cfg.Storage.MongoURI)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("INTERNLOG_HTTP_PORT", "eighty")
		t.Setenv("INTERNLOG_REPORT_CACHE_TTL", "soon")
		t.Setenv("INTERNLOG_STORAGE_DRIVER", "postgres")
		t.Setenv("INTERNLOG_LOG_LEVEL", "verbose")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		for _, name := range []string{"INTERNLOG_HTTP_PORT", "INTERNLOG_REPORT_CACHE_TTL", "storage.driver", "log.level"} {
			if !strings.Contains(err.Error(), name) {
				t.Fatalf("expected %s in %q", name, err.Error())
			}
		}
	})

	t.Run("rejects malformed files", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, "[http\nport = ")

		if _, err := LoadFrom(path); err == nil || !strings.Contains(err.Error(), "parsing config file") {
			t.Fatalf("expected parse error, got %v", err)
		}
	})
}
