package config

import (
	"strings"
	"testing"
	"time"
)

func validLocal() Config {
	return Config{
		App:           AppConfig{Env: "local", Port: 8080},
		DB:            DBConfig{Driver: "memory"},
		Auth:          AuthConfig{JWTSecret: "secret"},
		Transcription: TranscriptionConfig{APIKey: "tk"},
		Extraction:    ExtractionConfig{APIKey: "ek"},
		Receptionist:  ReceptionistConfig{ContractorPhoneMap: `{"+15550001111":"c-1"}`},
	}
}

func TestLoad_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"APP_ENV", "TRANSCRIPTION_API_KEY", "EXTRACTION_API_KEY", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in error, got %v", want, err)
		}
	}
}

func TestValidate_LocalAppliesPolicyDefaults(t *testing.T) {
	c := validLocal()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Receptionist.ConfidenceThreshold != DefaultConfidenceThreshold {
		t.Fatalf("expected threshold %v, got %v", DefaultConfidenceThreshold, c.Receptionist.ConfidenceThreshold)
	}
	if c.Transcription.MaxAttempts != DefaultTranscriptionMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", DefaultTranscriptionMaxAttempts, c.Transcription.MaxAttempts)
	}
	if c.Transcription.BaseDelay != DefaultTranscriptionBaseDelay {
		t.Fatalf("expected base delay default, got %s", c.Transcription.BaseDelay)
	}
	if c.Receptionist.PipelineDeadline != DefaultPipelineDeadline || c.Receptionist.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("unexpected receptionist defaults: %+v", c.Receptionist)
	}
	if c.Extraction.Provider != "openai" || c.Extraction.Model == "" {
		t.Fatalf("expected openai extraction defaults, got %+v", c.Extraction)
	}
}

func TestValidate_DirectorySourceRequired(t *testing.T) {
	c := validLocal()
	c.Receptionist.ContractorPhoneMap = ""
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "CONTRACTOR_PHONE_MAP") {
		t.Fatalf("expected directory error, got %v", err)
	}
}

func TestValidate_RedisDirectoryRequiresRedis(t *testing.T) {
	c := validLocal()
	c.Receptionist.Directory = "redis"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for redis directory without REDIS_HOST")
	}
	c = validLocal()
	c.Receptionist.Directory = "redis"
	c.Redis.Host = "localhost"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.RedisAddr() != "localhost:6379" {
		t.Fatalf("expected default redis port, got %q", c.RedisAddr())
	}
}

func TestValidate_ProductionRequiresSSLModeAndSignature(t *testing.T) {
	c := validLocal()
	c.App.Env = "production"
	c.DB = DBConfig{Driver: "postgres", Host: "localhost", Port: 5432, User: "postgres", Name: "receptionist"}
	c.Auth.JWTIssuer = "iss"
	c.Auth.JWTAudience = "aud"
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected errors for production")
	}
	if !strings.Contains(err.Error(), "DB_SSLMODE") || !strings.Contains(err.Error(), "TWILIO_VERIFY_SIGNATURE") {
		t.Fatalf("expected sslmode and signature errors, got %v", err)
	}
}

func TestValidate_ThresholdOutOfRange(t *testing.T) {
	c := validLocal()
	c.Receptionist.ConfidenceThreshold = 1.5
	if err := c.Validate(); err == nil {
		t.Fatalf("expected threshold error")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/receptionist.db")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("TRANSCRIPTION_API_KEY", "t")
	t.Setenv("EXTRACTION_API_KEY", "e")
	t.Setenv("CONTRACTOR_PHONE_MAP", `{"+15550001111":"c-1"}`)
	t.Setenv("CONFIDENCE_THRESHOLD", "0.7")
	t.Setenv("TRANSCRIPTION_MAX_ATTEMPTS", "4")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC1")
	t.Setenv("TWILIO_AUTH_TOKEN", "tok")
	t.Setenv("TWILIO_FROM_NUMBER", "+15550009999")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr() != ":9090" {
		t.Fatalf("unexpected addr %q", c.HTTPAddr())
	}
	if c.Receptionist.ConfidenceThreshold != 0.7 || c.Transcription.MaxAttempts != 4 {
		t.Fatalf("expected env overrides, got %+v %+v", c.Receptionist, c.Transcription)
	}
	if c.Twilio.VerifySignature {
		t.Fatalf("expected signature verification off outside production by default")
	}
	if !c.MessagingConfigured() || c.SigningSecret() != "tok" {
		t.Fatalf("expected messaging configured with auth token as signing secret")
	}
}

func TestLoad_RejectsBadNumbers(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "not-a-port")
	t.Setenv("CONFIDENCE_THRESHOLD", "high")
	_, err := Load()
	if err == nil {
		t.Fatalf("expected parse errors")
	}
	if !strings.Contains(err.Error(), "APP_PORT") || !strings.Contains(err.Error(), "CONFIDENCE_THRESHOLD") {
		t.Fatalf("expected both parse errors, got %v", err)
	}
}
