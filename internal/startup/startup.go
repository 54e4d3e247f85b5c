package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"securestream/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// ObjectStoreConfig holds the S3-compatible object store connection.
type ObjectStoreConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// IngestConfig holds all ingestd configuration
type IngestConfig struct {
	StateDir string
	WorkDir  string

	Port           string
	MetricsPort    string
	MetricsEnabled bool

	FFmpegPath      string
	FFprobePath     string
	SegmentDuration int
	Encoder         string

	PublicBaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ObjectStore ObjectStoreConfig

	// Derived paths
	QueueDBPath   string
	CatalogDBPath string
}

// GatewayConfig holds all gateway configuration
type GatewayConfig struct {
	Port           string
	MetricsPort    string
	MetricsEnabled bool

	JWTSecret      string
	AllowedOrigins []string

	ObjectStore ObjectStoreConfig
}

// LoadIngestConfig loads and validates ingestd configuration from
// environment variables.
func LoadIngestConfig() (*IngestConfig, error) {
	printBanner("ingestd")
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	stateDir := getEnv("STATE_DIR", "/state")
	workDir := getEnv("WORK_DIR", "/work")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	ffmpegPath := getEnv("FFMPEG_PATH", "ffmpeg")
	ffprobePath := getEnv("FFPROBE_PATH", "ffprobe")
	segmentDuration := getEnvInt("SEGMENT_DURATION", 4)
	encoder := getEnv("ENCODER", "libx264")
	publicBaseURL := getEnv("PUBLIC_BASE_URL", "")
	redisAddr := getEnv("REDIS_ADDR", "")
	redisPassword := getEnv("REDIS_PASSWORD", "")
	redisDB := getEnvInt("REDIS_DB", 0)

	logging.Info("  STATE_DIR:         %s", stateDir)
	logging.Info("  WORK_DIR:          %s", workDir)
	logging.Info("  PORT:              %s", port)
	logging.Info("  METRICS_PORT:      %s", metricsPort)
	logging.Info("  METRICS_ENABLED:   %v", metricsEnabled)
	logging.Info("  FFMPEG_PATH:       %s", ffmpegPath)
	logging.Info("  FFPROBE_PATH:      %s", ffprobePath)
	logging.Info("  SEGMENT_DURATION:  %d", segmentDuration)
	logging.Info("  ENCODER:           %s", encoder)
	logging.Info("  PUBLIC_BASE_URL:   %s", valueOrDash(publicBaseURL))
	logging.Info("  REDIS_ADDR:        %s", valueOrDash(redisAddr))
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	store, err := loadObjectStoreConfig()
	if err != nil {
		return nil, err
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	stateDir, err = filepath.Abs(stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state directory path: %w", err)
	}
	workDir, err = filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory path: %w", err)
	}

	if err := ensureDirectory(stateDir, "state"); err != nil {
		return nil, fmt.Errorf("state directory error: %w", err)
	}
	if err := testWriteAccess(stateDir); err != nil {
		return nil, fmt.Errorf("state directory is not writable: %w", err)
	}
	logging.Info("  [OK] State directory is writable: %s", stateDir)

	if err := ensureDirectory(workDir, "work"); err != nil {
		return nil, fmt.Errorf("work directory error: %w", err)
	}
	if err := testWriteAccess(workDir); err != nil {
		return nil, fmt.Errorf("work directory is not writable: %w", err)
	}
	logging.Info("  [OK] Work directory is writable: %s", workDir)

	return &IngestConfig{
		StateDir:        stateDir,
		WorkDir:         workDir,
		Port:            port,
		MetricsPort:     metricsPort,
		MetricsEnabled:  metricsEnabled,
		FFmpegPath:      ffmpegPath,
		FFprobePath:     ffprobePath,
		SegmentDuration: segmentDuration,
		Encoder:         encoder,
		PublicBaseURL:   publicBaseURL,
		RedisAddr:       redisAddr,
		RedisPassword:   redisPassword,
		RedisDB:         redisDB,
		ObjectStore:     store,
		QueueDBPath:     filepath.Join(stateDir, "queue.db"),
		CatalogDBPath:   filepath.Join(stateDir, "catalog.db"),
	}, nil
}

// LoadGatewayConfig loads and validates gateway configuration from
// environment variables.
func LoadGatewayConfig() (*GatewayConfig, error) {
	printBanner("gateway")
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	jwtSecret := os.Getenv("JWT_SECRET")
	allowedOrigins := getEnvList("ALLOWED_ORIGIN", nil)

	logging.Info("  PORT:              %s", port)
	logging.Info("  METRICS_PORT:      %s", metricsPort)
	logging.Info("  METRICS_ENABLED:   %v", metricsEnabled)
	logging.Info("  JWT_SECRET:        %s", redacted(jwtSecret))
	logging.Info("  ALLOWED_ORIGIN:    %s", valueOrDash(strings.Join(allowedOrigins, ", ")))
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(allowedOrigins) == 0 {
		logging.Warn("  ALLOWED_ORIGIN is empty; browsers will be blocked by CORS")
	}

	store, err := loadObjectStoreConfig()
	if err != nil {
		return nil, err
	}

	return &GatewayConfig{
		Port:           port,
		MetricsPort:    metricsPort,
		MetricsEnabled: metricsEnabled,
		JWTSecret:      jwtSecret,
		AllowedOrigins: allowedOrigins,
		ObjectStore:    store,
	}, nil
}

func loadObjectStoreConfig() (ObjectStoreConfig, error) {
	cfg := ObjectStoreConfig{
		Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
		Bucket:    getEnv("S3_BUCKET", "securestream"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		UseSSL:    getEnvBool("S3_USE_SSL", true),
	}

	logging.Info("  S3_ENDPOINT:       %s", cfg.Endpoint)
	logging.Info("  S3_BUCKET:         %s", cfg.Bucket)
	logging.Info("  S3_ACCESS_KEY:     %s", redacted(cfg.AccessKey))
	logging.Info("  S3_USE_SSL:        %v", cfg.UseSSL)

	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return cfg, fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required")
	}
	return cfg, nil
}

// LogPipelineInit logs pipeline initialization and checks the ffmpeg binary
func LogPipelineInit(ffmpegPath string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PIPELINE INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if err := checkFFmpeg(ffmpegPath); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Transcoding will fail until ffmpeg is available")
	} else {
		logging.Info("  [OK] FFmpeg is available")
	}
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:  %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application: http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:     http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:     DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// Helper functions

func printBanner(component string) {
	banner := `
------------------------------------------------------------
   _____                           _____ __
  / ___/___  _______  __________  / ___// /_________  ____ _____ ___
  \__ \/ _ \/ ___/ / / / ___/ _ \ \__ \/ __/ ___/ _ \/ __ '/ __ '__ \
 ___/ /  __/ /__/ /_/ / /  /  __/___/ / /_/ /  /  __/ /_/ / / / / / /
/____/\___/\___/\__,_/_/   \___//____/\__/_/   \___/\__,_/_/ /_/ /_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Component:  %s", component)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Write access was confirmed regardless.
	}
	return nil
}

func checkFFmpeg(ffmpegPath string) error {
	path, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", ffmpegPath)
	}
	logging.Debug("  FFmpeg path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegPath, "-version")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  FFmpeg version: %s", strings.TrimSpace(lines[0]))
	}

	return nil
}

func redacted(value string) string {
	if value == "" {
		return "(unset)"
	}
	return "(set)"
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvList splits a comma-separated env value, trimming whitespace and
// dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
