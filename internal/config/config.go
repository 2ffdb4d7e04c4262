package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"token-scanner/internal/core"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the scanner
type Config struct {
	// Telegram Configuration
	TelegramBotToken string
	TelegramChatID   string

	// Provider Credentials
	BasescanAPIKey string // enables contract verification and holder checks

	// Chain Configuration
	ChainSlug string // DexScreener chain slug (default: "base")
	ChainID   string // numeric chain ID for honeypot/RPC lookups (default: "8453")

	// Scan Cadence
	ScanInterval          int // seconds between cycles
	RetryDelay            int // seconds before retrying after a failed cycle
	NotifyPause           int // seconds between consecutive notifications
	MaxPairsPerScan       int // pairs inspected per market fetch
	MaxCandidatesPerCycle int // surviving market candidates per cycle

	// Security Check Thresholds
	MinLiquidityUSD float64 // liquidity floor shared by the check and the filters
	MaxTaxPercent   float64 // buy/sell tax ceiling for the honeypot check
	MinHolderCount  int     // minimum top-holder count

	// Admission Filter Thresholds
	MinVolume24h       float64 // microcap 24h volume floor
	PumpThreshold      float64 // 24h price change threshold (percent)
	McapMin            float64 // microcap band lower bound
	McapMax            float64 // microcap band upper bound
	NewLaunchWindowHrs int     // pool age window for the new-launch rule

	// Security Gates (minimum verdict score per candidate kind)
	MintMinScore float64
	BuyMinScore  float64

	// Dedup & Rate Limiting
	CooldownMinutes int // re-notification cooldown per identity
	TrackerCapacity int // working-set capacity
	TrackerTarget   int // eviction target size (< capacity)
	HorizonHours    int // purge horizon for stale records

	// Provider Politeness
	ProviderRateLimit float64 // requests per second per provider host
	ProviderBurst     int

	// Scan Policy Source ("env", "file" or "mysql")
	ScanPolicySource string
	ScanPolicyFile   string
	MySQLDSN         string

	// Resend Email Configuration (optional alert channel)
	ResendAPIKey        string
	ResendFromEmail     string
	AlertRecipientEmail string

	// Kafka Configuration (optional alert event publishing)
	KafkaEnabled bool
	KafkaBrokers []string

	// Logging Configuration
	LogDir string // Directory for log files (default: "logs")

	// Elasticsearch Configuration (optional, for log shipping)
	ESEnabled   bool     // Enable shipping logs to Elasticsearch
	ESAddresses []string // ES endpoints, e.g. []string{"http://localhost:9200"}
	ESIndex     string   // Index name for logs (default: "token-scanner-logs")
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		BasescanAPIKey:   getEnv("BASESCAN_API_KEY", ""),

		ChainSlug: getEnv("CHAIN_SLUG", "base"),
		ChainID:   getEnv("CHAIN_ID", "8453"),

		ScanInterval:          getEnvInt("SCAN_INTERVAL", 300), // 5 minutes
		RetryDelay:            getEnvInt("SCAN_RETRY_DELAY", 60),
		NotifyPause:           getEnvInt("NOTIFY_PAUSE", 2),
		MaxPairsPerScan:       getEnvInt("MAX_PAIRS_PER_SCAN", 20),
		MaxCandidatesPerCycle: getEnvInt("MAX_CANDIDATES_PER_CYCLE", 5),

		MinLiquidityUSD: getEnvFloat("MIN_LIQUIDITY_USD", 10000),
		MaxTaxPercent:   getEnvFloat("MAX_TAX_PERCENT", 10),
		MinHolderCount:  getEnvInt("MIN_HOLDER_COUNT", 5),

		MinVolume24h:       getEnvFloat("MIN_VOLUME_24H", 5000),
		PumpThreshold:      getEnvFloat("PUMP_THRESHOLD", 20),
		McapMin:            getEnvFloat("MCAP_MIN", 100),
		McapMax:            getEnvFloat("MCAP_MAX", 1000000),
		NewLaunchWindowHrs: getEnvInt("NEW_LAUNCH_WINDOW_HOURS", 24),

		MintMinScore: getEnvFloat("MINT_MIN_SCORE", 50),
		BuyMinScore:  getEnvFloat("BUY_MIN_SCORE", 75),

		CooldownMinutes: getEnvInt("ALERT_COOLDOWN_MINUTES", 60),
		TrackerCapacity: getEnvInt("TRACKER_CAPACITY", 500),
		TrackerTarget:   getEnvInt("TRACKER_TARGET", 400),
		HorizonHours:    getEnvInt("TRACKER_HORIZON_HOURS", 24),

		ProviderRateLimit: getEnvFloat("PROVIDER_RATE_LIMIT", 5),
		ProviderBurst:     getEnvInt("PROVIDER_BURST", 10),

		ScanPolicySource: getEnv("SCAN_POLICY_SOURCE", "env"),
		ScanPolicyFile:   getEnv("SCAN_POLICY_FILE", ""),
		MySQLDSN:         getEnv("MYSQL_DSN", ""),

		ResendAPIKey:        getEnv("RESEND_API_KEY", ""),
		ResendFromEmail:     getEnv("RESEND_FROM_EMAIL", ""),
		AlertRecipientEmail: getEnv("ALERT_RECIPIENT_EMAIL", ""),

		KafkaEnabled: getEnvBool("KAFKA_ENABLED", false),
		KafkaBrokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),

		LogDir:      getEnv("LOG_DIR", "logs"),
		ESEnabled:   getEnvBool("ES_ENABLED", true),
		ESAddresses: getEnvSlice("ES_ADDRESSES", []string{"http://localhost:9200"}),
		ESIndex:     getEnv("ES_INDEX", "token-scanner-logs"),
	}

	return config, nil
}

// Cooldown returns the configured re-notification cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// Horizon returns the configured purge horizon as a duration.
func (c *Config) Horizon() time.Duration {
	return time.Duration(c.HorizonHours) * time.Hour
}

// NewLaunchWindow returns the new-launch age window as a duration.
func (c *Config) NewLaunchWindow() time.Duration {
	return time.Duration(c.NewLaunchWindowHrs) * time.Hour
}

// GateScore returns the minimum verdict score required for the given kind.
func (c *Config) GateScore(kind core.Kind) float64 {
	if kind == core.KindBuy {
		return c.BuyMinScore
	}
	return c.MintMinScore
}

// ScanPolicyConfig represents a per-kind scan policy override in JSON format
type ScanPolicyConfig struct {
	Kind            string  `json:"kind"`                       // "mint" or "buy"
	MinScore        float64 `json:"min_score"`                  // security gate, 0-100
	CooldownMinutes int     `json:"cooldown_minutes,omitempty"` // 0 keeps the configured default
	Enabled         bool    `json:"enabled"`
}

// ParseScanPolicy converts ScanPolicyConfig to core.ScanPolicy (exported for MySQL/store use).
func ParseScanPolicy(rc ScanPolicyConfig) (*core.ScanPolicy, error) {
	var kind core.Kind
	switch rc.Kind {
	case "mint":
		kind = core.KindMint
	case "buy":
		kind = core.KindBuy
	default:
		return nil, fmt.Errorf("invalid kind '%s' in scan policy, must be one of: mint, buy", rc.Kind)
	}

	if rc.MinScore < 0 || rc.MinScore > 100 {
		return nil, fmt.Errorf("min_score must be within [0,100] for kind %s, got %g", rc.Kind, rc.MinScore)
	}
	if rc.CooldownMinutes < 0 {
		return nil, fmt.Errorf("cooldown_minutes must be non-negative for kind %s", rc.Kind)
	}

	return &core.ScanPolicy{
		Kind:     kind,
		MinScore: rc.MinScore,
		Cooldown: time.Duration(rc.CooldownMinutes) * time.Minute,
		Enabled:  rc.Enabled,
	}, nil
}

// LoadScanPolicies loads per-kind scan policies from a JSON config file.
// The file holds an array of ScanPolicyConfig objects.
func LoadScanPolicies(filePath string) ([]*core.ScanPolicy, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read scan policy file: %w", err)
	}

	var configs []ScanPolicyConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("parse scan policy file %s: %w", filePath, err)
	}

	policies := make([]*core.ScanPolicy, 0, len(configs))
	for i, rc := range configs {
		policy, err := ParseScanPolicy(rc)
		if err != nil {
			return nil, fmt.Errorf("scan policy %d: %w", i, err)
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns true if the env var is set to "1", "true", "yes" (case-insensitive)
func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	switch v {
	case "1", "true", "yes", "TRUE", "YES":
		return true
	case "0", "false", "no", "FALSE", "NO":
		return false
	}
	return defaultValue
}

// getEnvInt returns an integer from an env var; if empty or invalid, returns defaultValue
func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return defaultValue
}

// getEnvFloat returns a float from an env var; if empty or invalid, returns defaultValue
func getEnvFloat(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return defaultValue
}

// getEnvSlice returns a slice from a comma-separated env var; if empty, returns defaultSlice
func getEnvSlice(key string, defaultSlice []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultSlice
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultSlice
	}
	return out
}
