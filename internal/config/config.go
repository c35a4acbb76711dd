package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fvaskate/agency-api/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                        string
	ServiceName                   string
	ServiceVersion                string
	HTTPAddr                      string
	ReadTimeout                   time.Duration
	WriteTimeout                  time.Duration
	CORSAllowedOrigins            []string
	SwaggerEnabled                bool
	AdminToken                    string
	SeedEnabled                   bool
	AppwriteEnabled               bool
	AppwriteBaseURL               string
	AppwriteProjectID             string
	AppwriteAPIKey                string
	AppwriteDatabaseID            string
	AppwriteTeamCollectionID      string
	AppwriteEventsCollectionID    string
	AppwriteTimeout               time.Duration
	AppwriteCircuitEnabled        bool
	AppwriteCircuitFailureCount   int
	AppwriteCircuitOpenTimeout    time.Duration
	AppwriteCircuitHalfOpenMaxReq int
	CloudinaryBaseURL             string
	CloudinaryCloudName           string
	CloudinaryUploadPreset        string
	CloudinaryTimeout             time.Duration
	CloudinaryCircuitEnabled      bool
	CloudinaryCircuitFailureCount int
	CloudinaryCircuitOpenTimeout  time.Duration
	CloudinaryCircuitHalfOpenMax  int
	PprofEnabled                  bool
	PprofAddr                     string
	UptraceEnabled                bool
	UptraceDSN                    string
	PyroscopeEnabled              bool
	PyroscopeServerAddress        string
	PyroscopeAppName              string
	PyroscopeAuthToken            string
	PyroscopeBasicAuthUser        string
	PyroscopeBasicAuthPassword    string
	PyroscopeUploadRate           time.Duration
	ReconcileMaxWorkers           int
	LogLevel                      logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	seedEnabled, err := strconv.ParseBool(getEnv("SEED_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SEED_ENABLED: %w", err)
	}

	appwriteEnabled, err := strconv.ParseBool(getEnv("APPWRITE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APPWRITE_ENABLED: %w", err)
	}
	appwriteBaseURL := strings.TrimSpace(getEnv("APPWRITE_BASE_URL", "https://cloud.appwrite.io/v1"))
	appwriteProjectID := strings.TrimSpace(getEnv("APPWRITE_PROJECT_ID", ""))
	appwriteAPIKey := strings.TrimSpace(getEnv("APPWRITE_API_KEY", ""))
	appwriteDatabaseID := strings.TrimSpace(getEnv("APPWRITE_DATABASE_ID", ""))
	if appwriteEnabled {
		if appwriteProjectID == "" {
			return Config{}, fmt.Errorf("APPWRITE_PROJECT_ID is required when APPWRITE_ENABLED=true")
		}
		if appwriteAPIKey == "" {
			return Config{}, fmt.Errorf("APPWRITE_API_KEY is required when APPWRITE_ENABLED=true")
		}
		if appwriteDatabaseID == "" {
			return Config{}, fmt.Errorf("APPWRITE_DATABASE_ID is required when APPWRITE_ENABLED=true")
		}
	}
	appwriteTimeout, err := time.ParseDuration(getEnv("APPWRITE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APPWRITE_TIMEOUT: %w", err)
	}
	if appwriteTimeout <= 0 {
		return Config{}, fmt.Errorf("APPWRITE_TIMEOUT must be > 0")
	}
	appwriteCircuitEnabled, err := strconv.ParseBool(getEnv("APPWRITE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APPWRITE_CIRCUIT_ENABLED: %w", err)
	}
	appwriteCircuitFailureCount, err := getEnvAsInt("APPWRITE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse APPWRITE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if appwriteCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("APPWRITE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	appwriteCircuitOpenTimeout, err := time.ParseDuration(getEnv("APPWRITE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APPWRITE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if appwriteCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("APPWRITE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	appwriteCircuitHalfOpenMaxReq, err := getEnvAsInt("APPWRITE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse APPWRITE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if appwriteCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("APPWRITE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cloudinaryCloudName := strings.TrimSpace(getEnv("CLOUDINARY_CLOUD_NAME", ""))
	cloudinaryUploadPreset := strings.TrimSpace(getEnv("CLOUDINARY_UPLOAD_PRESET", ""))
	cloudinaryTimeout, err := time.ParseDuration(getEnv("CLOUDINARY_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLOUDINARY_TIMEOUT: %w", err)
	}
	if cloudinaryTimeout <= 0 {
		return Config{}, fmt.Errorf("CLOUDINARY_TIMEOUT must be > 0")
	}
	cloudinaryCircuitEnabled, err := strconv.ParseBool(getEnv("CLOUDINARY_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLOUDINARY_CIRCUIT_ENABLED: %w", err)
	}
	cloudinaryCircuitFailureCount, err := getEnvAsInt("CLOUDINARY_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLOUDINARY_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cloudinaryCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("CLOUDINARY_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cloudinaryCircuitOpenTimeout, err := time.ParseDuration(getEnv("CLOUDINARY_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CLOUDINARY_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cloudinaryCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("CLOUDINARY_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	cloudinaryCircuitHalfOpenMax, err := getEnvAsInt("CLOUDINARY_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLOUDINARY_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cloudinaryCircuitHalfOpenMax < 1 {
		return Config{}, fmt.Errorf("CLOUDINARY_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	reconcileMaxWorkers, err := getEnvAsInt("RECONCILE_MAX_WORKERS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_MAX_WORKERS: %w", err)
	}
	if reconcileMaxWorkers < 1 {
		return Config{}, fmt.Errorf("RECONCILE_MAX_WORKERS must be >= 1")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "agency-api"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		CORSAllowedOrigins:            splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:                swaggerEnabled,
		AdminToken:                    strings.TrimSpace(getEnv("ADMIN_TOKEN", "")),
		SeedEnabled:                   seedEnabled,
		AppwriteEnabled:               appwriteEnabled,
		AppwriteBaseURL:               appwriteBaseURL,
		AppwriteProjectID:             appwriteProjectID,
		AppwriteAPIKey:                appwriteAPIKey,
		AppwriteDatabaseID:            appwriteDatabaseID,
		AppwriteTeamCollectionID:      strings.TrimSpace(getEnv("APPWRITE_TEAM_COLLECTION_ID", "team-members")),
		AppwriteEventsCollectionID:    strings.TrimSpace(getEnv("APPWRITE_EVENTS_COLLECTION_ID", "events")),
		AppwriteTimeout:               appwriteTimeout,
		AppwriteCircuitEnabled:        appwriteCircuitEnabled,
		AppwriteCircuitFailureCount:   appwriteCircuitFailureCount,
		AppwriteCircuitOpenTimeout:    appwriteCircuitOpenTimeout,
		AppwriteCircuitHalfOpenMaxReq: appwriteCircuitHalfOpenMaxReq,
		CloudinaryBaseURL:             strings.TrimSpace(getEnv("CLOUDINARY_BASE_URL", "https://api.cloudinary.com/v1_1")),
		CloudinaryCloudName:           cloudinaryCloudName,
		CloudinaryUploadPreset:        cloudinaryUploadPreset,
		CloudinaryTimeout:             cloudinaryTimeout,
		CloudinaryCircuitEnabled:      cloudinaryCircuitEnabled,
		CloudinaryCircuitFailureCount: cloudinaryCircuitFailureCount,
		CloudinaryCircuitOpenTimeout:  cloudinaryCircuitOpenTimeout,
		CloudinaryCircuitHalfOpenMax:  cloudinaryCircuitHalfOpenMax,
		PprofEnabled:                  pprofEnabled,
		PprofAddr:                     pprofAddr,
		UptraceEnabled:                uptraceEnabled,
		UptraceDSN:                    uptraceDSN,
		PyroscopeEnabled:              pyroscopeEnabled,
		PyroscopeServerAddress:        pyroscopeServerAddress,
		PyroscopeAuthToken:            strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:        strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:    strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:           pyroscopeUploadRate,
		ReconcileMaxWorkers:           reconcileMaxWorkers,
		LogLevel:                      parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.AppEnv == EnvProd && cfg.AdminToken == "" {
		return Config{}, fmt.Errorf("ADMIN_TOKEN is required when APP_ENV=prod")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
