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

type Config struct {
	Port           string
	AllowedOrigins string
	GatewayToken   string
	DemoMode       bool
	LogMode        string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	RedisAddr   string
	UserLockTTL time.Duration
	LockWait    time.Duration

	StreakPolicy       string
	FlashcardSeedCount int
	QuizQuestionCount  int
	LeaderboardLimit   int
	DailyFactCron      string
	TimeZone           string

	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2Bucket          string
	CDNBaseURL        string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg := &Config{
		Port:           envString("PORT", "5200"),
		AllowedOrigins: normalizeOrigins(envString("ALLOWED_ORIGINS", "http://localhost:3000")),
		GatewayToken:   strings.TrimSpace(os.Getenv("GATEWAY_TOKEN")),
		DemoMode:       envBool("DEMO_MODE", false),
		LogMode:        envString("LOG_MODE", "dev"),

		DBDriver:    strings.ToLower(envString("DB_DRIVER", "postgres")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:  envString("SQLITE_PATH", "file::memory:?cache=shared"),

		RedisAddr:   strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		UserLockTTL: envDuration("USER_LOCK_TTL", 10*time.Second),
		LockWait:    envDuration("USER_LOCK_WAIT", 5*time.Second),

		StreakPolicy:       strings.ToLower(envString("STREAK_POLICY", "legacy")),
		FlashcardSeedCount: envInt("FLASHCARD_SEED_COUNT", 10),
		QuizQuestionCount:  envInt("QUIZ_QUESTION_COUNT", 5),
		LeaderboardLimit:   envInt("LEADERBOARD_LIMIT", 50),
		DailyFactCron:      envString("DAILY_FACT_CRON", "0 0 * * *"),
		TimeZone:           envString("APP_TIMEZONE", "UTC"),

		R2AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
		R2Bucket:          os.Getenv("R2_BUCKET_NAME"),
		CDNBaseURL:        os.Getenv("CDN_BASE_URL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.GatewayToken == "" {
		return errors.New("GATEWAY_TOKEN is required")
	}
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	case "sqlite":
	default:
		return errors.New("DB_DRIVER must be postgres or sqlite")
	}
	switch c.StreakPolicy {
	case "legacy", "daily":
	default:
		return errors.New("STREAK_POLICY must be legacy or daily")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return errors.New("APP_TIMEZONE is not a valid IANA zone")
	}
	if c.FlashcardSeedCount <= 0 {
		c.FlashcardSeedCount = 10
	}
	if c.QuizQuestionCount <= 0 {
		c.QuizQuestionCount = 5
	}
	if c.LeaderboardLimit <= 0 || c.LeaderboardLimit > 500 {
		c.LeaderboardLimit = 50
	}
	return nil
}

// R2Enabled reports whether accessory icon uploads can go to object storage.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2Bucket != ""
}

// Location returns the zone used to decide calendar days for streaks.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func normalizeOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

func envString(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func envDuration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
