package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the harvester. Values are read once at
// startup; there is no hot reload.
type Config struct {
	Env string `json:"env"`

	// Content-source API
	APIKey          string        `json:"api_key"`
	APIHost         string        `json:"api_host"`
	APITimeout      time.Duration `json:"api_timeout"`
	RequestInterval time.Duration `json:"request_interval"`
	MaxPagesPerList int           `json:"max_pages_per_list"`
	PageDelay       time.Duration `json:"page_delay"`

	// Retry policy
	RetryMaxAttempts int           `json:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `json:"retry_base_delay"`
	RetryMaxDelay    time.Duration `json:"retry_max_delay"`

	// Scheduler
	SchedulerEnabled  bool          `json:"scheduler_enabled"`
	SchedulerInterval time.Duration `json:"scheduler_interval"`
	AdjustInterval    time.Duration `json:"adjust_interval"`

	// Scoring and indexing
	MinScore     int `json:"min_score"`
	MinWordCount int `json:"min_word_count"`
	MinIndexed   int `json:"min_indexed"`
	MaxIndexed   int `json:"max_indexed"`
	MaxDailyNew  int `json:"max_daily_new"`

	// Batch processing
	BatchSize      int           `json:"batch_size"`
	BatchDelay     time.Duration `json:"batch_delay"`
	MaxConcurrency int           `json:"max_concurrency"`
	SummaryLimit   int           `json:"summary_limit"`
	CleanupAge     time.Duration `json:"cleanup_age"`

	// Summarization service
	AIApiKey     string        `json:"ai_api_key"`
	AIBaseURL    string        `json:"ai_base_url"`
	AIModel      string        `json:"ai_model"`
	AITimeout    time.Duration `json:"ai_timeout"`
	AIDailyLimit int           `json:"ai_daily_limit"`

	// Storage
	DBPath        string        `json:"db_path"`
	RedisURL      string        `json:"redis_url"`
	CacheTTL      time.Duration `json:"cache_ttl"`
	SourceListIDs []string      `json:"source_list_ids"`

	// Logging
	LogLevel string `json:"log_level"`
}

// Load loads configuration from environment variables and validates it.
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),

		APIKey:          getEnv("RAPIDAPI_KEY", ""),
		APIHost:         getEnv("RAPIDAPI_HOST", "twitter241.p.rapidapi.com"),
		APITimeout:      getEnvAsDuration("API_TIMEOUT", 15*time.Second),
		RequestInterval: getEnvAsDuration("REQUEST_INTERVAL", 111*time.Millisecond),
		MaxPagesPerList: getEnvAsInt("MAX_PAGES_PER_LIST", 3),
		PageDelay:       getEnvAsDuration("PAGE_DELAY", time.Second),

		RetryMaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 4),
		RetryBaseDelay:   getEnvAsDuration("RETRY_BASE_DELAY", time.Second),
		RetryMaxDelay:    getEnvAsDuration("RETRY_MAX_DELAY", 30*time.Second),

		SchedulerEnabled:  getEnvAsBool("SCHEDULER_ENABLED", false),
		SchedulerInterval: getEnvAsDuration("SCHEDULER_INTERVAL", 10*time.Minute),
		AdjustInterval:    getEnvAsDuration("ADJUST_INTERVAL", 24*time.Hour),

		MinScore:     getEnvAsInt("MIN_SCORE", 65),
		MinWordCount: getEnvAsInt("MIN_WORD_COUNT", 200),
		MinIndexed:   getEnvAsInt("MIN_INDEXED", 5),
		MaxIndexed:   getEnvAsInt("MAX_INDEXED", 7),
		MaxDailyNew:  getEnvAsInt("MAX_DAILY_NEW", 10),

		BatchSize:      getEnvAsInt("BATCH_SIZE", 10),
		BatchDelay:     getEnvAsDuration("BATCH_DELAY", time.Second),
		MaxConcurrency: getEnvAsInt("MAX_CONCURRENCY", 5),
		SummaryLimit:   getEnvAsInt("SUMMARY_LIMIT", 50),
		CleanupAge:     getEnvAsDuration("CLEANUP_AGE", 720*time.Hour),

		AIApiKey:     getEnv("AI_API_KEY", ""),
		AIBaseURL:    getEnv("AI_BASE_URL", "https://api.deepseek.com/v1"),
		AIModel:      getEnv("AI_MODEL", "deepseek-chat"),
		AITimeout:    getEnvAsDuration("AI_TIMEOUT", 60*time.Second),
		AIDailyLimit: getEnvAsInt("AI_DAILY_LIMIT", 200),

		DBPath:        getEnv("DB_PATH", "./data/articles.db"),
		RedisURL:      getEnv("REDIS_URL", ""),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 720*time.Hour), // 30 days
		SourceListIDs: getEnvAsList("SOURCE_LIST_IDS"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// Validate checks invariants that would otherwise surface as confusing
// runtime behavior. A missing API credential is configuration-fatal.
func (c *Config) Validate() error {
	if c.SchedulerEnabled && c.APIKey == "" {
		return errors.New("RAPIDAPI_KEY is required when the scheduler is enabled")
	}
	if c.MinIndexed > c.MaxIndexed {
		return errors.New("MIN_INDEXED must not exceed MAX_INDEXED")
	}
	if c.RetryMaxAttempts < 1 {
		return errors.New("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.BatchSize < 1 {
		return errors.New("BATCH_SIZE must be at least 1")
	}
	return nil
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsList(name string) []string {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return nil
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
