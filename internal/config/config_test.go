package config

import (
	"os"
	"testing"
	"time"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestNewDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "development")
	for _, k := range []string{"TOKEN_DURATION", "INVENTORY_DEBOUNCE_MS", "STORAGE_DRIVER", "HTTP_PORT", "DB_PORT"} {
		t.Setenv(k, "")
	}

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Token.Duration != 12*time.Hour {
		t.Fatalf("token duration = %s", cfg.Token.Duration)
	}
	if cfg.Inventory.Debounce != 500*time.Millisecond {
		t.Fatalf("debounce = %s", cfg.Inventory.Debounce)
	}
	if cfg.Storage.Driver != StoragePostgres {
		t.Fatalf("driver = %s", cfg.Storage.Driver)
	}
	if cfg.HTTP.Port != "8081" || cfg.DB.Port != "5432" {
		t.Fatalf("ports = %s/%s", cfg.HTTP.Port, cfg.DB.Port)
	}
}

func TestNewOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "development")
	t.Setenv("TOKEN_DURATION", "30m")
	t.Setenv("INVENTORY_DEBOUNCE_MS", "250")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "werkplaats")
	t.Setenv("DB_NAME", "webike")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_PORT", "")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Token.Duration != 30*time.Minute || cfg.Inventory.Debounce != 250*time.Millisecond {
		t.Fatalf("durations = %s/%s", cfg.Token.Duration, cfg.Inventory.Debounce)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Fatalf("driver = %s", cfg.Storage.Driver)
	}
	want := "host=db port=5432 user=werkplaats password=pw dbname=webike sslmode=disable"
	if got := cfg.DB.DSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}

func TestNewRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "development")

	cases := map[string]string{
		"TOKEN_DURATION":        "forever",
		"INVENTORY_DEBOUNCE_MS": "-1",
		"STORAGE_DRIVER":        "sqlite",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := New(); err == nil {
				t.Fatalf("%s=%s accepted", key, value)
			}
		})
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("TOKEN_SECRET", "")
	if _, err := New(); err == nil {
		t.Fatal("missing secret accepted in production")
	}
}
