package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the run needs from the environment: credentials,
// target URLs, data file locations, and the timeout/retry budget.
// It is loaded once at startup and never re-read mid-run.
type Config struct {
	// Login
	LoginURL string
	Username string
	Password string

	// Optional proxy server passed to the browser (host:port)
	ProxyServer string

	// Data files
	MasterDataFile string
	DailyInputFile string

	// Timeouts
	DefaultTimeout     time.Duration
	ShortTimeout       time.Duration
	LongTimeout        time.Duration
	APIResponseTimeout time.Duration

	// Retry budget
	MaxRetries int
	RetryDelay time.Duration

	// Glob pattern matched against the URL of the ticket-creation call
	EndpointPattern string

	// Browser
	Headless bool

	// Where the final run report artifact is written
	ReportDir string
}

// Load builds a Config from environment variables, applying defaults for
// everything except the login credentials and URL, which are required.
func Load() (*Config, error) {
	cfg := &Config{
		LoginURL:           os.Getenv("LOGIN_URL"),
		Username:           os.Getenv("TICKET_USERNAME"),
		Password:           os.Getenv("TICKET_PASSWORD"),
		ProxyServer:        os.Getenv("PROXY_SERVER"),
		MasterDataFile:     envString("MASTER_DATA_FILE", "master_data_dp.csv"),
		DailyInputFile:     envString("DAILY_INPUT_FILE", "input_dp.txt"),
		DefaultTimeout:     envSeconds("DEFAULT_TIMEOUT", 15),
		ShortTimeout:       envSeconds("SHORT_TIMEOUT", 5),
		LongTimeout:        envSeconds("LONG_TIMEOUT", 30),
		APIResponseTimeout: envSeconds("API_RESPONSE_TIMEOUT", 120),
		MaxRetries:         envInt("MAX_RETRIES", 3),
		RetryDelay:         envSeconds("RETRY_DELAY", 2),
		EndpointPattern:    envString("CREATE_TICKET_ENDPOINT", "*/project-management/configuring/dp/create-ticket*"),
		Headless:           envBool("HEADLESS", false),
		ReportDir:          envString("REPORT_DIR", "reports"),
	}

	var missing []string
	if cfg.LoginURL == "" {
		missing = append(missing, "LOGIN_URL")
	}
	if cfg.Username == "" {
		missing = append(missing, "TICKET_USERNAME")
	}
	if cfg.Password == "" {
		missing = append(missing, "TICKET_PASSWORD")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("MAX_RETRIES must be at least 1, got %d", cfg.MaxRetries)
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envSeconds(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Second
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
