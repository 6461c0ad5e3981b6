package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

type Config struct {
	Database   DatabaseConfig
	Mongo      MongoConfig
	JWT        JWTConfig
	App        AppConfig
	Storage    StorageConfig
	Attendance AttendanceConfig
	CORS       CORSConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

type MongoConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type StorageConfig struct {
	Backend string
	// HealthInterval is how often the backend is pinged. Zero disables it.
	HealthInterval time.Duration
}

// AttendanceConfig decides which calendar day a punch belongs to and how
// late an entry may be before it counts as late.
type AttendanceConfig struct {
	Timezone      string
	Location      *time.Location
	LateTolerance time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// fileConfig is the optional YAML layout. Values may reference environment
// variables as ${NAME}.
type fileConfig struct {
	App struct {
		Port     string `yaml:"port"`
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
		Timezone string `yaml:"timezone"`
	} `yaml:"app"`
	Attendance struct {
		LateToleranceMinutes string `yaml:"late_tolerance_minutes"`
	} `yaml:"attendance"`
	Storage struct {
		Backend        string `yaml:"backend"`
		HealthInterval string `yaml:"health_interval"`
	} `yaml:"storage"`
	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
		MaxConns string `yaml:"max_conns"`
		MinConns string `yaml:"min_conns"`
	} `yaml:"database"`
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	JWT struct {
		Secret           string `yaml:"secret"`
		AccessExpiration string `yaml:"access_expiration"`
	} `yaml:"jwt"`
	CORS struct {
		AllowedOrigins string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// defaults maps each file value onto the environment key it stands in for.
func (f *fileConfig) defaults() map[string]string {
	return map[string]string{
		"APP_PORT":                   f.App.Port,
		"APP_ENV":                    f.App.Env,
		"LOG_LEVEL":                  f.App.LogLevel,
		"APP_TIMEZONE":               f.App.Timezone,
		"LATE_TOLERANCE_MINUTES":     f.Attendance.LateToleranceMinutes,
		"STORAGE_BACKEND":            f.Storage.Backend,
		"STORAGE_HEALTH_INTERVAL":    f.Storage.HealthInterval,
		"DB_HOST":                    f.Database.Host,
		"DB_PORT":                    f.Database.Port,
		"DB_USER":                    f.Database.User,
		"DB_PASSWORD":                f.Database.Password,
		"DB_NAME":                    f.Database.Name,
		"DB_SSL_MODE":                f.Database.SSLMode,
		"DB_MAX_CONNS":               f.Database.MaxConns,
		"DB_MIN_CONNS":               f.Database.MinConns,
		"MONGO_URI":                  f.Mongo.URI,
		"MONGO_DATABASE":             f.Mongo.Database,
		"JWT_SECRET_KEY":             f.JWT.Secret,
		"JWT_ACCESS_EXPIRATION_TIME": f.JWT.AccessExpiration,
		"CORS_ALLOWED_ORIGINS":       f.CORS.AllowedOrigins,
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set). Environment variables win over file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	fileValues := map[string]string{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		fileValues = fc.defaults()
	}

	get := func(key, fallback string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		if value := fileValues[key]; value != "" {
			return value
		}
		return fallback
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(get("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.Atoi(get("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(get("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     get("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     get("DB_USER", "postgres"),
		Password: get("DB_PASSWORD", ""),
		Name:     get("DB_NAME", "ponto_seguro"),
		SSLMode:  get("DB_SSL_MODE", "disable"),
		MaxConns: maxConns,
		MinConns: minConns,
	}

	config.Mongo = MongoConfig{
		URI:      get("MONGO_URI", ""),
		Database: get("MONGO_DATABASE", "ponto_seguro"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(get("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      get("APP_ENV", "development"),
		LogLevel: get("LOG_LEVEL", "info"),
	}

	healthInterval, err := time.ParseDuration(get("STORAGE_HEALTH_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_HEALTH_INTERVAL: %w", err)
	}
	config.Storage = StorageConfig{
		Backend:        strings.ToLower(get("STORAGE_BACKEND", BackendMemory)),
		HealthInterval: healthInterval,
	}

	// Attendance configuration
	timezone := get("APP_TIMEZONE", "America/Sao_Paulo")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	tolerance, err := strconv.Atoi(get("LATE_TOLERANCE_MINUTES", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LATE_TOLERANCE_MINUTES: %w", err)
	}

	config.Attendance = AttendanceConfig{
		Timezone:      timezone,
		Location:      location,
		LateTolerance: time.Duration(tolerance) * time.Minute,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           get("JWT_SECRET_KEY", ""),
		AccessExpiration: get("JWT_ACCESS_EXPIRATION_TIME", "8h"),
	}

	config.CORS = CORSConfig{
		AllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "*")),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Attendance.LateTolerance < 0 {
		return fmt.Errorf("LATE_TOLERANCE_MINUTES must not be negative")
	}

	switch c.Storage.Backend {
	case BackendPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Replace environment variables in the YAML content
	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		content = strings.ReplaceAll(content, "${"+pair[0]+"}", pair[1])
	}

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(content), &fc); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return &fc, nil
}

func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
