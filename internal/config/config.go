// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	Backend    model.Backend
	DBName     string

	MongoURI            string
	MongoAuthSource     string
	MongoConnectTimeout time.Duration

	DataDir           string
	BootstrapUsername string
	BootstrapPassword string

	// DefaultCredential seeds the credential holder before anyone logs in.
	DefaultCredential model.Credential
}

// HasBootstrapAccount returns true when both bootstrap variables are set.
// Only the sqlite backend creates the account; MongoDB users are managed
// by the server.
func (c *Config) HasBootstrapAccount() bool {
	return c.BootstrapUsername != "" && c.BootstrapPassword != ""
}

// LoadDotEnv loads variables from a .env file at path into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Optional variables with defaults: ITEMPANEL_LISTEN_ADDR (127.0.0.1:8080),
// ITEMPANEL_BACKEND (mongo), ITEMPANEL_DB_NAME (itempanel),
// ITEMPANEL_MONGO_URI (mongodb://localhost:27017), ITEMPANEL_MONGO_AUTH_SOURCE
// (the database name), ITEMPANEL_MONGO_CONNECT_TIMEOUT (5s), ITEMPANEL_DATA_DIR (.),
// ITEMPANEL_DEFAULT_USERNAME (us), ITEMPANEL_DEFAULT_PASSWORD (ps).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("ITEMPANEL_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	backend := model.BackendMongo
	if v, ok := os.LookupEnv("ITEMPANEL_BACKEND"); ok && v != "" {
		switch model.Backend(v) {
		case model.BackendMongo, model.BackendSQLite:
			backend = model.Backend(v)
		default:
			return nil, fmt.Errorf("ITEMPANEL_BACKEND has unsupported value %q: expected mongo or sqlite", v)
		}
	}

	dbName := "itempanel"
	if v, ok := os.LookupEnv("ITEMPANEL_DB_NAME"); ok {
		if v == "" {
			return nil, errors.New("ITEMPANEL_DB_NAME must not be empty")
		}
		dbName = v
	}

	mongoURI := "mongodb://localhost:27017"
	if v, ok := os.LookupEnv("ITEMPANEL_MONGO_URI"); ok && v != "" {
		mongoURI = v
	}

	authSource := dbName
	if v, ok := os.LookupEnv("ITEMPANEL_MONGO_AUTH_SOURCE"); ok && v != "" {
		authSource = v
	}

	connectTimeout := 5 * time.Second
	if v, ok := os.LookupEnv("ITEMPANEL_MONGO_CONNECT_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ITEMPANEL_MONGO_CONNECT_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("ITEMPANEL_MONGO_CONNECT_TIMEOUT must be positive, got %s", parsed)
		}
		connectTimeout = parsed
	}

	dataDir := "."
	if v, ok := os.LookupEnv("ITEMPANEL_DATA_DIR"); ok && v != "" {
		dataDir = v
	}

	defaultCred := model.Credential{Username: "us", Password: "ps"}
	if v, ok := os.LookupEnv("ITEMPANEL_DEFAULT_USERNAME"); ok {
		defaultCred.Username = v
	}
	if v, ok := os.LookupEnv("ITEMPANEL_DEFAULT_PASSWORD"); ok {
		defaultCred.Password = v
	}

	return &Config{
		ListenAddr:          listenAddr,
		Backend:             backend,
		DBName:              dbName,
		MongoURI:            mongoURI,
		MongoAuthSource:     authSource,
		MongoConnectTimeout: connectTimeout,
		DataDir:             dataDir,
		BootstrapUsername:   os.Getenv("ITEMPANEL_BOOTSTRAP_USERNAME"),
		BootstrapPassword:   os.Getenv("ITEMPANEL_BOOTSTRAP_PASSWORD"),
		DefaultCredential:   defaultCred,
	}, nil
}
