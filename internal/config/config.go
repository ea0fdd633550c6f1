package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	BotToken string
	APIID    int
	APIHash  string

	AdminIDs         []int64
	RequiredChannels []string

	Limits   Limits
	Database DatabaseConfig

	SessionDir  string
	DownloadDir string

	PaymentMethods map[string]string
}

// Limits holds per-tier quota, size and cooldown settings
type Limits struct {
	FreeDownloads    int
	PremiumDownloads int
	ProDownloads     int

	FreeFileSize    int64
	PremiumFileSize int64
	ProFileSize     int64

	CooldownSeconds int
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

const mb = 1024 * 1024

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	apiID, _ := strconv.Atoi(os.Getenv("API_ID"))

	cfg := &Config{
		BotToken: os.Getenv("BOT_TOKEN"),
		APIID:    apiID,
		APIHash:  os.Getenv("API_HASH"),

		AdminIDs:         parseAdminIDs(os.Getenv("ADMIN_IDS")),
		RequiredChannels: parseList(os.Getenv("REQUIRED_CHANNELS")),

		Limits: Limits{
			FreeDownloads:    getEnvInt("MAX_DOWNLOADS_FREE", 5),
			PremiumDownloads: getEnvInt("MAX_DOWNLOADS_PREMIUM", 50),
			ProDownloads:     getEnvInt("MAX_DOWNLOADS_PRO", 200),
			FreeFileSize:     int64(getEnvInt("MAX_FILE_SIZE_MB", 500)) * mb,
			PremiumFileSize:  int64(getEnvInt("PREMIUM_FILE_SIZE_MB", 2048)) * mb,
			ProFileSize:      int64(getEnvInt("PRO_FILE_SIZE_MB", 5120)) * mb,
			CooldownSeconds:  getEnvInt("DOWNLOAD_COOLDOWN", 20),
		},

		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "restrictedbot"),
			User:     getEnv("DB_USER", "restrictedbot"),
			Password: os.Getenv("DB_PASSWORD"),
		},

		SessionDir:  getEnv("SESSION_DIR", "sessions"),
		DownloadDir: getEnv("DOWNLOAD_DIR", "downloads"),

		PaymentMethods: paymentMethods(),
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.APIID == 0 {
		return nil, fmt.Errorf("API_ID is required")
	}
	if cfg.APIHash == "" {
		return nil, fmt.Errorf("API_HASH is required")
	}
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	for _, dir := range []string{cfg.SessionDir, cfg.DownloadDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", filepath.Base(dir), err)
		}
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func paymentMethods() map[string]string {
	methods := map[string]string{
		"mtn":      os.Getenv("MTN_NUMBER"),
		"vodafone": os.Getenv("VODA_NUMBER"),
		"bitcoin":  os.Getenv("BTC_ADDRESS"),
		"usdt":     os.Getenv("USDT_ADDRESS"),
	}
	for k, v := range methods {
		if v == "" {
			delete(methods, k)
		}
	}
	return methods
}

func parseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
