package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
storage:
  driver: postgres
  op_timeout: 2s
enforcement:
  mode: queue
  sessions_base_url: http://sessions:8081
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
reports:
  rate_limit: 5
export:
  enabled: true
  schedule: "0 3 * * *"
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Storage.Driver != StoragePostgres || cfg.Storage.OpTimeout != 2*time.Second {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Enforcement.Mode != EnforcementQueue || cfg.Enforcement.SessionsBaseURL != "http://sessions:8081" {
		t.Fatalf("unexpected enforcement config: %+v", cfg.Enforcement)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Topic != "moderation.enforcement" {
		t.Fatalf("unexpected kafka config: %+v", cfg.Kafka)
	}
	if cfg.Reports.RateLimit != 5 || cfg.Reports.RateWindow != 10*time.Minute || cfg.Reports.BurstLimit != 5 {
		t.Fatalf("unexpected reports config: %+v", cfg.Reports)
	}
	if !cfg.Export.Enabled || cfg.Export.Schedule != "0 3 * * *" || cfg.Export.Prefix != "dashboards" {
		t.Fatalf("unexpected export config: %+v", cfg.Export)
	}
	if cfg.Enforcement.BreakerFailures != 5 {
		t.Fatalf("breaker_failures default should stay 5")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Storage.Driver != StorageMemory || cfg.Storage.OpTimeout != 3*time.Second {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Enforcement.Mode != EnforcementDirect {
		t.Fatalf("unexpected enforcement mode default: %s", cfg.Enforcement.Mode)
	}
	if cfg.Analyzer.PatternsPath != "configs/patterns.yaml" {
		t.Fatalf("unexpected patterns path default: %s", cfg.Analyzer.PatternsPath)
	}
	if cfg.Export.Schedule != "@daily" {
		t.Fatalf("unexpected export schedule default: %s", cfg.Export.Schedule)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("TELEGRAM_MODERATORS_CHAT_ID", "-100123")
	t.Setenv("STORAGE_OP_TIMEOUT", "750ms")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Storage.Driver != StoragePostgres {
		t.Fatalf("unexpected driver: %s", cfg.Storage.Driver)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Telegram.ModeratorsChatID != -100123 {
		t.Fatalf("unexpected chat id: %d", cfg.Telegram.ModeratorsChatID)
	}
	if cfg.Storage.OpTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected op timeout: %s", cfg.Storage.OpTimeout)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ENFORCEMENT_MODE", "carrier-pigeon")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown enforcement mode")
	}

	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STORAGE_DRIVER", "postgres")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for default jwt secret in production")
	}

	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "s3cret")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for memory storage in production")
	}

	clearConfigEnv(t)
	t.Setenv("RETENTION_ENABLED", "true")
	t.Setenv("RETENTION_RESULTS", "168h")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for retention shorter than the dashboard range")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"METRICS_ADDR",
		"LOG_LEVEL",
		"STORAGE_DRIVER",
		"STORAGE_COUNTERS",
		"STORAGE_OP_TIMEOUT",
		"STORAGE_MIGRATE",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"KAFKA_BROKERS",
		"KAFKA_TOPIC",
		"JWT_SECRET",
		"JWT_ISSUER",
		"TELEGRAM_BOT_TOKEN",
		"TELEGRAM_MODERATORS_CHAT_ID",
		"ENFORCEMENT_MODE",
		"ENFORCEMENT_SESSIONS_URL",
		"ENFORCEMENT_MESSAGES_URL",
		"ENFORCEMENT_AUTH_TOKEN",
		"ANALYZER_PATTERNS_PATH",
		"REPORTS_RATE_LIMIT",
		"REPORTS_BURST_LIMIT",
		"RETENTION_ENABLED",
		"RETENTION_RESULTS",
		"EXPORT_ENABLED",
		"EXPORT_SCHEDULE",
	} {
		t.Setenv(key, "")
	}
}
