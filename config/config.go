package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Model    ModelConfig
}

type ServerConfig struct {
	Port    int
	GinMode string
}

// DatasetConfig selects where the historical tables come from. Source is
// "csv" or "postgres"; the route table is always read from RoutePath.
type DatasetConfig struct {
	Source       string
	RoutePath    string
	LocationPath string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// RedisConfig with an empty Host disables the response cache.
type RedisConfig struct {
	Host       string
	Port       int
	Password   string
	DB         int
	TTLSeconds int
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type CORSConfig struct {
	AllowedOrigins string
}

type ModelConfig struct {
	Trees           int
	Seed            uint64
	TestFraction    float64
	MaxDepth        int
	MinSamplesSplit int
	Workers         int
}

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cacheTTL, err := getIntEnv("CACHE_TTL_SEC", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL_SEC: %w", err)
	}

	model, err := loadModelConfig()
	if err != nil {
		return nil, err
	}

	source := strings.ToLower(getEnv("DATASET_SOURCE", SourceCSV))
	if source != SourceCSV && source != SourcePostgres {
		return nil, fmt.Errorf("invalid DATASET_SOURCE: %q", source)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    serverPort,
			GinMode: getEnv("GIN_MODE", "release"),
		},
		Dataset: DatasetConfig{
			Source:       source,
			RoutePath:    getEnv("ROUTE_DATASET_PATH", "data/traffic-weather.csv"),
			LocationPath: getEnv("LOCATION_DATASET_PATH", "data/Banglore_traffic_Dataset.csv"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "cityflow"),
			Password: getEnv("DB_PASSWORD", "cityflow_dev_password"),
			Name:     getEnv("DB_NAME", "cityflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:       os.Getenv("REDIS_HOST"),
			Port:       redisPort,
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         redisDB,
			TTLSeconds: cacheTTL,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Model: model,
	}

	return cfg, nil
}

func loadModelConfig() (ModelConfig, error) {
	trees, err := getIntEnv("MODEL_TREES", 100)
	if err != nil || trees <= 0 {
		return ModelConfig{}, fmt.Errorf("invalid MODEL_TREES: %q", os.Getenv("MODEL_TREES"))
	}
	seed, err := getIntEnv("MODEL_SEED", 42)
	if err != nil || seed < 0 {
		return ModelConfig{}, fmt.Errorf("invalid MODEL_SEED: %q", os.Getenv("MODEL_SEED"))
	}
	testFraction, err := getFloatEnv("MODEL_TEST_FRACTION", 0.2)
	if err != nil || testFraction <= 0 || testFraction >= 1 {
		return ModelConfig{}, fmt.Errorf("invalid MODEL_TEST_FRACTION: %q", os.Getenv("MODEL_TEST_FRACTION"))
	}
	maxDepth, err := getIntEnv("MODEL_MAX_DEPTH", 0)
	if err != nil || maxDepth < 0 {
		return ModelConfig{}, fmt.Errorf("invalid MODEL_MAX_DEPTH: %q", os.Getenv("MODEL_MAX_DEPTH"))
	}
	minSplit, err := getIntEnv("MODEL_MIN_SAMPLES_SPLIT", 2)
	if err != nil || minSplit < 2 {
		return ModelConfig{}, fmt.Errorf("invalid MODEL_MIN_SAMPLES_SPLIT: %q", os.Getenv("MODEL_MIN_SAMPLES_SPLIT"))
	}
	workers, err := getIntEnv("MODEL_WORKERS", 0)
	if err != nil || workers < 0 {
		return ModelConfig{}, fmt.Errorf("invalid MODEL_WORKERS: %q", os.Getenv("MODEL_WORKERS"))
	}

	return ModelConfig{
		Trees:           trees,
		Seed:            uint64(seed),
		TestFraction:    testFraction,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSplit,
		Workers:         workers,
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(value, 64)
}
