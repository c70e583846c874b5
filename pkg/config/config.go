// Package config reads pipeline configuration from the environment, with a
// .env file loaded first when one exists.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Mailbox       MailboxConfig
	Roster        RosterConfig
	Matching      MatchingConfig
	Approval      ApprovalConfig
	Agency        AgencyConfig
	Email         EmailConfig
	Archive       ArchiveConfig
	Observability ObservabilityConfig
	Schedule      ScheduleConfig
}

type MailboxConfig struct {
	InboxPath string
	// Senders limits a metadata-capable mailbox to these report senders.
	Senders []string
}

type RosterConfig struct {
	DatabasePath string
}

type MatchingConfig struct {
	FuzzyThreshold int
}

type ApprovalConfig struct {
	TrackingPath string
	DraftsDir    string
	WorkbookPath string
}

type AgencyConfig struct {
	Name    string
	Email   string
	Phone   string
	Website string
}

type EmailConfig struct {
	ResendAPIKey string
	FromAddress  string
	SendsPerSec  int
}

type ArchiveConfig struct {
	IndexPath string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

type ScheduleConfig struct {
	// Spec is a cron expression; empty means run once and exit.
	Spec string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Missing .env is fine; deployments set real environment variables.
	_ = godotenv.Load()

	cfg := &Config{
		Mailbox: MailboxConfig{
			InboxPath: getEnv("REPORTS_INBOX_PATH", "data/inbox"),
			Senders:   getEnvAsList("REPORT_SENDERS"),
		},
		Roster: RosterConfig{
			DatabasePath: getEnv("CLIENT_DATABASE_PATH", "data/client_database.csv"),
		},
		Matching: MatchingConfig{
			FuzzyThreshold: getEnvAsInt("FUZZY_MATCH_THRESHOLD", 85),
		},
		Approval: ApprovalConfig{
			TrackingPath: getEnv("REVIEW_TRACKING_PATH", "data/review_tracking.csv"),
			DraftsDir:    getEnv("DRAFTS_DIR", "data/drafts"),
			WorkbookPath: getEnv("REVIEW_WORKBOOK_PATH", "data/review_queue.xlsx"),
		},
		Agency: AgencyConfig{
			Name:    getEnv("AGENCY_NAME", ""),
			Email:   getEnv("AGENCY_EMAIL", ""),
			Phone:   getEnv("AGENCY_PHONE", ""),
			Website: getEnv("AGENCY_WEBSITE", ""),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromAddress:  getEnv("EMAIL_FROM_ADDRESS", ""),
			SendsPerSec:  getEnvAsInt("EMAIL_SENDS_PER_SECOND", 2),
		},
		Archive: ArchiveConfig{
			IndexPath: getEnv("ARCHIVE_INDEX_PATH", "data/report_archive.bleve"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Schedule: ScheduleConfig{
			Spec: getEnv("RUN_SCHEDULE", ""),
		},
	}

	if cfg.Matching.FuzzyThreshold < 0 || cfg.Matching.FuzzyThreshold > 100 {
		return nil, errors.New("FUZZY_MATCH_THRESHOLD must be between 0 and 100")
	}

	return cfg, nil
}

// CanSend reports whether outbound email is configured.
func (c *EmailConfig) CanSend() bool {
	return c.ResendAPIKey != "" && c.FromAddress != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
