package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Configuration holds everything the pipeline consumes from the environment.
// All components receive their settings through explicit constructor
// parameters; nothing reads the environment after Load returns.
type Configuration struct {
	// CohereAPIKey authenticates calls to the generative text service.
	CohereAPIKey string
	// CohereModel selects the chat model used for analysis generation.
	CohereModel string
	// DBPath is the SQLite database file, or ":memory:".
	DBPath string
	// SearchIndexDir is the on-disk location of the similarity index.
	SearchIndexDir string
	// RebuildIndex discards any existing similarity index on startup.
	RebuildIndex bool
	// DepCallTimeout bounds every outbound call (page fetch, model call).
	DepCallTimeout time.Duration
	// BrowserAgent is the User-Agent header sent when fetching article pages.
	BrowserAgent string
	// Port is the HTTP listen port.
	Port string

	// Optional collaborators; each is disabled when its setting is empty.
	KafkaBrokers []string
	KafkaTopic   string
	RedisAddr    string
	S3Bucket     string
	S3Region     string
	S3Prefix     string
}

const (
	defaultModel        = "command-r"
	defaultDBPath       = "insightbeam.db"
	defaultIndexDir     = "searchindex"
	defaultCallTimeout  = 60 * time.Second
	defaultBrowserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	defaultPort         = "8080"
)

// Load reads configuration from the environment, consulting a .env file if
// present (non-fatal if missing).
func Load() (*Configuration, error) {
	_ = godotenv.Load()

	apiKey := strings.TrimSpace(os.Getenv("COHERE_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("COHERE_API_KEY is required")
	}

	rebuild, err := getEnvBool("REBUILD_INDEX", false)
	if err != nil {
		return nil, err
	}

	cfg := &Configuration{
		CohereAPIKey:   apiKey,
		CohereModel:    getEnvOrDefault("COHERE_MODEL", defaultModel),
		DBPath:         getEnvOrDefault("DB_PATH", defaultDBPath),
		SearchIndexDir: getEnvOrDefault("SEARCH_INDEX_DIR", defaultIndexDir),
		RebuildIndex:   rebuild,
		DepCallTimeout: defaultCallTimeout,
		BrowserAgent:   getEnvOrDefault("BROWSER_AGENT", defaultBrowserAgent),
		Port:           getEnvOrDefault("PORT", defaultPort),
		KafkaTopic:     getEnvOrDefault("KAFKA_TOPIC", "insightbeam.items"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Prefix:       strings.TrimSpace(os.Getenv("S3_PREFIX")),
	}

	if v := os.Getenv("DEP_CALL_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid DEP_CALL_TIMEOUT_SECONDS %q", v)
		}
		cfg.DepCallTimeout = time.Duration(secs) * time.Second
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}
