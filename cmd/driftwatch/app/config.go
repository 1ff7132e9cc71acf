package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default values used when neither flags nor environment provide one.
const (
	DefaultDatasetDir  = "dataset"
	DefaultAnalysisDir = "analysis"
	DefaultCDXDir      = "cdx"
	DefaultMaxCaptures = 20000
	DefaultRPM         = 20
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = 2 * time.Second
	DefaultFilePause   = 2 * time.Second
)

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Pipeline directories
	DatasetDir  string
	AnalysisDir string
	CDXDir      string

	// LLM configuration
	OpenAIAPIKey string
	GeminiAPIKey string
	Provider     string
	Model        string

	// Analysis pacing
	RPM         int
	MaxRetries  int
	BaseBackoff time.Duration
	FilePause   time.Duration

	// Retrieval limits
	MaxCaptures int

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.driftwatch.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindEnvKeys()

	// Try to read config file if it exists
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".driftwatch")
		}
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		DatasetDir:  viper.GetString("DRIFTWATCH_DATASET_DIR"),
		AnalysisDir: viper.GetString("DRIFTWATCH_ANALYSIS_DIR"),
		CDXDir:      viper.GetString("DRIFTWATCH_CDX_DIR"),

		OpenAIAPIKey: viper.GetString("OPENAI_API_KEY"),
		GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
		Provider:     viper.GetString("DRIFTWATCH_PROVIDER"),
		Model:        viper.GetString("DRIFTWATCH_MODEL"),

		RPM:         viper.GetInt("OPENAI_RPM"),
		MaxRetries:  viper.GetInt("OPENAI_MAX_RETRIES"),
		BaseBackoff: time.Duration(viper.GetFloat64("OPENAI_BASE_BACKOFF") * float64(time.Second)),
		FilePause:   time.Duration(viper.GetFloat64("FILE_PAUSE_SECONDS") * float64(time.Second)),

		MaxCaptures: viper.GetInt("MAX_CAPTURES"),

		LogLevel:  viper.GetString("log-level"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.DatasetDir == "" {
		c.DatasetDir = DefaultDatasetDir
	}
	if c.AnalysisDir == "" {
		c.AnalysisDir = DefaultAnalysisDir
	}
	if c.CDXDir == "" {
		c.CDXDir = DefaultCDXDir
	}
	if c.MaxCaptures <= 0 {
		c.MaxCaptures = DefaultMaxCaptures
	}
	if c.RPM <= 0 {
		c.RPM = DefaultRPM
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = DefaultBaseBackoff
	}
	if c.FilePause <= 0 {
		c.FilePause = DefaultFilePause
	}
}

// UpdateFromFlags updates config values from parsed command flags so flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// bindEnvKeys explicitly binds the environment variables the pipeline reads.
func bindEnvKeys() {
	keys := []string{
		"OPENAI_API_KEY",
		"GEMINI_API_KEY",
		"DRIFTWATCH_DATASET_DIR",
		"DRIFTWATCH_ANALYSIS_DIR",
		"DRIFTWATCH_CDX_DIR",
		"DRIFTWATCH_PROVIDER",
		"DRIFTWATCH_MODEL",
		"OPENAI_RPM",
		"OPENAI_MAX_RETRIES",
		"OPENAI_BASE_BACKOFF",
		"FILE_PAUSE_SECONDS",
		"MAX_CAPTURES",
	}
	for _, key := range keys {
		// Binding cannot fail for plain keys; ignore the error
		_ = viper.BindEnv(key)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
