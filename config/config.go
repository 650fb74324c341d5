package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	AppName string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDSN      string // overrides the DSN composed from the fields above

	JWTKey string

	// GraceWindow bounds how far in the future a program may end while its
	// participants are still certificate-eligible. Zero disables the check.
	GraceWindow time.Duration

	ArtifactServiceURL   string
	ArtifactServiceToken string
	ArtifactTimeout      time.Duration
	ArtifactDir          string

	SendgridAPIKey string
	EmailSender    string

	AutoIssue         bool
	AutoIssueAfter    time.Duration // minimum age of a pending request before auto-issue
	AutoIssueCron     string
	ProgramStatusCron string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:    getEnv("PORT", "3000"),
		AppName: getEnv("APP_NAME", "CertHub"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "certhub"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBDSN:      getEnv("DB_DSN", ""),

		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		GraceWindow: getEnvDuration("CERT_GRACE_WINDOW", 0),

		ArtifactServiceURL:   getEnv("ARTIFACT_SERVICE_URL", ""),
		ArtifactServiceToken: getEnv("ARTIFACT_SERVICE_TOKEN", ""),
		ArtifactTimeout:      getEnvDuration("ARTIFACT_TIMEOUT", 15*time.Second),
		ArtifactDir:          getEnv("ARTIFACT_DIR", "./public/certificates"),

		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@certhub.local"),

		AutoIssue:         getEnvBool("AUTO_ISSUE", false),
		AutoIssueAfter:    getEnvDuration("AUTO_ISSUE_AFTER", 10*time.Minute),
		AutoIssueCron:     getEnv("AUTO_ISSUE_CRON", "*/5 * * * *"),
		ProgramStatusCron: getEnv("PROGRAM_STATUS_CRON", "0 * * * *"),
	}

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendgridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Emails will be written to the log.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return b
}

// getEnvDuration accepts Go duration strings ("90m", "72h") or a plain number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	secs, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}
