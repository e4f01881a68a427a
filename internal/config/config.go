package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type (
	Container struct {
		App       *App
		Token     *Token
		DB        *DB
		HTTP      *HTTP
		Redis     *Redis
		Storage   *Storage
		Inventory *Inventory
		Admin     *Admin
	}

	App struct {
		Name string
		Env  string
	}

	Token struct {
		Secret   string
		Duration time.Duration
	}

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	HTTP struct {
		Env            string
		Port           string
		AllowedOrigins string
		URL            string
	}

	// Redis is optional. An empty address keeps cache and change feed in process.
	Redis struct {
		Address  string
		Password string
	}

	Storage struct {
		Driver string
	}

	Inventory struct {
		Debounce time.Duration
	}

	// Admin is the bootstrap account created on first start when no admin exists.
	Admin struct {
		Email    string
		Password string
	}
)

func New() (*Container, error) {
	env := os.Getenv("APP_ENV")
	if env != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	env = os.Getenv("APP_ENV")

	duration, err := time.ParseDuration(getenv("TOKEN_DURATION", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_DURATION: %w", err)
	}

	debounceMS, err := strconv.Atoi(getenv("INVENTORY_DEBOUNCE_MS", "500"))
	if err != nil || debounceMS < 0 {
		return nil, fmt.Errorf("invalid INVENTORY_DEBOUNCE_MS %q", os.Getenv("INVENTORY_DEBOUNCE_MS"))
	}

	storage := &Storage{Driver: getenv("STORAGE_DRIVER", StoragePostgres)}
	if storage.Driver != StorageMemory && storage.Driver != StoragePostgres {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", storage.Driver)
	}

	token := &Token{
		Secret:   os.Getenv("TOKEN_SECRET"),
		Duration: duration,
	}
	if token.Secret == "" && env == "production" {
		return nil, errors.New("TOKEN_SECRET is required in production")
	}

	return &Container{
		App: &App{
			Name: getenv("APP_NAME", "webike-workshop"),
			Env:  env,
		},
		Token: token,
		DB: &DB{
			Host:     os.Getenv("DB_HOST"),
			Port:     getenv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		HTTP: &HTTP{
			Port:           getenv("HTTP_PORT", "8081"),
			AllowedOrigins: getenv("ALLOWED_ORIGINS", "*"),
			URL:            os.Getenv("HTTP_URL"),
			Env:            env,
		},
		Redis: &Redis{
			Address:  os.Getenv("REDIS_ADDRESS"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Storage:   storage,
		Inventory: &Inventory{Debounce: time.Duration(debounceMS) * time.Millisecond},
		Admin: &Admin{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}, nil
}

// DSN is the lib/pq connection string.
func (d *DB) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
