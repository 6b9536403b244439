package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Policy defaults. Each can be overridden from the environment.
const (
	DefaultConfidenceThreshold      = 0.6
	DefaultTranscriptionMaxAttempts = 3
	DefaultTranscriptionBaseDelay   = 500 * time.Millisecond
	DefaultPipelineDeadline         = 25 * time.Second
	DefaultIdempotencyTTL           = 24 * time.Hour
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Auth          AuthConfig
	Twilio        TwilioConfig
	Transcription TranscriptionConfig
	Extraction    ExtractionConfig
	Receptionist  ReceptionistConfig
	RateLimit     RateLimitConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	// Driver is postgres, sqlite or memory. memory is refused in production.
	Driver string

	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode accepts: disable, require, verify-ca, verify-full
	SSLMode string

	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string
}

// RedisConfig is optional. Without a host the service caches idempotency
// results in process and the redis contractor directory is unavailable.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// TwilioConfig covers both inbound webhook verification and outbound SMS.
// Messaging fields are optional; when missing, follow-up texts are skipped.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	APIBaseURL string

	// WebhookSecret signs inbound webhooks. Falls back to AuthToken.
	WebhookSecret string
	// WebhookURL is the public URL the provider signs against. When empty the
	// URL is rebuilt from the request.
	WebhookURL string
	// VerifySignature defaults to true in production.
	VerifySignature bool
}

type TranscriptionConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxAttempts int
	BaseDelay   time.Duration
}

type ExtractionConfig struct {
	// Provider is openai (any OpenAI-compatible endpoint) or anthropic.
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

type ReceptionistConfig struct {
	ConfidenceThreshold float64

	// Directory selects the contractor directory backend: static or redis.
	Directory               string
	ContractorPhoneMap      string
	ContractorDirectoryFile string

	OnboardingURL    string
	PipelineDeadline time.Duration
	IdempotencyTTL   time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Driver = strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := optionalInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))
	c.DB.SQLitePath = strings.TrimSpace(os.Getenv("SQLITE_PATH"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := optionalInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}
	c.Redis.Password = os.Getenv("REDIS_PASSWORD")

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	c.Auth.AccessTokenTTL = mustDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = mustDuration("JWT_REFRESH_TTL")

	c.Twilio.AccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	c.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	c.Twilio.FromNumber = strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER"))
	c.Twilio.APIBaseURL = strings.TrimSpace(os.Getenv("TWILIO_API_BASE_URL"))
	c.Twilio.WebhookSecret = os.Getenv("TWILIO_WEBHOOK_SECRET")
	c.Twilio.WebhookURL = strings.TrimSpace(os.Getenv("TWILIO_WEBHOOK_URL"))
	{
		b, set, err := optionalBool("TWILIO_VERIFY_SIGNATURE")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		if set {
			c.Twilio.VerifySignature = b
		} else {
			c.Twilio.VerifySignature = c.App.Env == "production"
		}
	}

	c.Transcription.APIKey = os.Getenv("TRANSCRIPTION_API_KEY")
	c.Transcription.BaseURL = strings.TrimSpace(os.Getenv("TRANSCRIPTION_BASE_URL"))
	c.Transcription.Model = strings.TrimSpace(os.Getenv("TRANSCRIPTION_MODEL"))
	{
		n, err := optionalInt("TRANSCRIPTION_MAX_ATTEMPTS")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Transcription.MaxAttempts = n
	}
	c.Transcription.BaseDelay = mustDuration("TRANSCRIPTION_BASE_DELAY")

	c.Extraction.Provider = strings.ToLower(strings.TrimSpace(os.Getenv("EXTRACTION_PROVIDER")))
	c.Extraction.APIKey = os.Getenv("EXTRACTION_API_KEY")
	c.Extraction.BaseURL = strings.TrimSpace(os.Getenv("EXTRACTION_BASE_URL"))
	c.Extraction.Model = strings.TrimSpace(os.Getenv("EXTRACTION_MODEL"))

	{
		f, err := optionalFloat("CONFIDENCE_THRESHOLD")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.Receptionist.ConfidenceThreshold = f
	}
	c.Receptionist.Directory = strings.ToLower(strings.TrimSpace(os.Getenv("CONTRACTOR_DIRECTORY")))
	c.Receptionist.ContractorPhoneMap = strings.TrimSpace(os.Getenv("CONTRACTOR_PHONE_MAP"))
	c.Receptionist.ContractorDirectoryFile = strings.TrimSpace(os.Getenv("CONTRACTOR_DIRECTORY_FILE"))
	c.Receptionist.OnboardingURL = strings.TrimSpace(os.Getenv("ONBOARDING_URL"))
	c.Receptionist.PipelineDeadline = mustDuration("PIPELINE_DEADLINE")
	c.Receptionist.IdempotencyTTL = mustDuration("IDEMPOTENCY_TTL")

	{
		f, err := optionalFloat("WEBHOOK_RATE_LIMIT_RPS")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.RateLimit.RequestsPerSecond = f
		n, err := optionalInt("WEBHOOK_RATE_LIMIT_BURST")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.RateLimit.Burst = n
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the configuration and fills in defaults. It must be called
// on a pointer-addressable value so defaults stick.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	errs = append(errs, c.validateDB()...)

	if c.Redis.Host != "" {
		if c.Redis.Port == 0 {
			c.Redis.Port = 6379
		}
		if c.Redis.Port < 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}

	if c.Twilio.VerifySignature && c.Twilio.WebhookSecret == "" && c.Twilio.AuthToken == "" {
		errs = append(errs, errors.New("TWILIO_WEBHOOK_SECRET or TWILIO_AUTH_TOKEN is required when signature verification is on"))
	}
	if c.IsProduction() && !c.Twilio.VerifySignature {
		errs = append(errs, errors.New("TWILIO_VERIFY_SIGNATURE cannot be disabled in production"))
	}
	if c.Twilio.APIBaseURL == "" {
		c.Twilio.APIBaseURL = "https://api.twilio.com"
	}

	if c.Transcription.APIKey == "" {
		errs = append(errs, errors.New("TRANSCRIPTION_API_KEY is required"))
	}
	if c.Transcription.BaseURL == "" {
		c.Transcription.BaseURL = "https://api.openai.com/v1"
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-1"
	}
	if c.Transcription.MaxAttempts == 0 {
		c.Transcription.MaxAttempts = DefaultTranscriptionMaxAttempts
	}
	if c.Transcription.MaxAttempts < 1 || c.Transcription.MaxAttempts > 10 {
		errs = append(errs, fmt.Errorf("TRANSCRIPTION_MAX_ATTEMPTS must be between 1 and 10, got %d", c.Transcription.MaxAttempts))
	}
	if c.Transcription.BaseDelay <= 0 {
		c.Transcription.BaseDelay = DefaultTranscriptionBaseDelay
	}

	if c.Extraction.Provider == "" {
		c.Extraction.Provider = "openai"
	}
	switch c.Extraction.Provider {
	case "openai":
		if c.Extraction.BaseURL == "" {
			c.Extraction.BaseURL = "https://api.openai.com/v1"
		}
		if c.Extraction.Model == "" {
			c.Extraction.Model = "gpt-4o-mini"
		}
	case "anthropic":
		if c.Extraction.Model == "" {
			c.Extraction.Model = "claude-sonnet-4-5-20250929"
		}
	default:
		errs = append(errs, fmt.Errorf("EXTRACTION_PROVIDER must be one of openai, anthropic, got %q", c.Extraction.Provider))
	}
	if c.Extraction.APIKey == "" {
		errs = append(errs, errors.New("EXTRACTION_API_KEY is required"))
	}

	if c.Receptionist.ConfidenceThreshold == 0 {
		c.Receptionist.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if c.Receptionist.ConfidenceThreshold < 0 || c.Receptionist.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("CONFIDENCE_THRESHOLD must be within [0,1], got %v", c.Receptionist.ConfidenceThreshold))
	}
	if c.Receptionist.Directory == "" {
		c.Receptionist.Directory = "static"
	}
	switch c.Receptionist.Directory {
	case "static":
		if c.Receptionist.ContractorPhoneMap == "" && c.Receptionist.ContractorDirectoryFile == "" {
			errs = append(errs, errors.New("CONTRACTOR_PHONE_MAP or CONTRACTOR_DIRECTORY_FILE is required"))
		}
	case "redis":
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required for CONTRACTOR_DIRECTORY=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("CONTRACTOR_DIRECTORY must be one of static, redis, got %q", c.Receptionist.Directory))
	}
	if c.Receptionist.OnboardingURL == "" {
		c.Receptionist.OnboardingURL = "https://app.example.com/onboarding"
	}
	if c.Receptionist.PipelineDeadline <= 0 {
		c.Receptionist.PipelineDeadline = DefaultPipelineDeadline
	}
	if c.Receptionist.IdempotencyTTL <= 0 {
		c.Receptionist.IdempotencyTTL = DefaultIdempotencyTTL
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = 20
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 40
	}

	return joinErrors(errs)
}

func (c *Config) validateDB() []error {
	var errs []error
	if c.DB.Driver == "" {
		c.DB.Driver = "postgres"
	}
	switch c.DB.Driver {
	case "postgres":
		if c.DB.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required"))
		}
		if c.DB.Port == 0 {
			c.DB.Port = 5432
		}
		if c.DB.Port < 0 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
		}
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required"))
		}
		if strings.TrimSpace(c.DB.SSLMode) == "" {
			if c.IsProduction() {
				errs = append(errs, errors.New("DB_SSLMODE is required in production"))
			} else {
				// Local-friendly default; production must be explicit.
				c.DB.SSLMode = "disable"
			}
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	case "sqlite":
		if c.DB.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for DB_DRIVER=sqlite"))
		}
	case "memory":
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_DRIVER=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be one of postgres, sqlite, memory, got %q", c.DB.Driver))
	}
	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// MessagingConfigured reports whether outbound SMS credentials are present.
func (c Config) MessagingConfigured() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.FromNumber != ""
}

// SigningSecret is the shared secret used to verify inbound webhooks.
func (c Config) SigningSecret() string {
	if c.Twilio.WebhookSecret != "" {
		return c.Twilio.WebhookSecret
	}
	return c.Twilio.AuthToken
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalFloat(key string) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
}

func optionalBool(key string) (value, set bool, err error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, true, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
