package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "EVENT_PAGE_LIMIT")
	unsetEnvWithCleanup(t, "KYC_RATE_LIMIT_PER_MINUTE")
	unsetEnvWithCleanup(t, "ORACLE_RATE_LIMIT_PER_MINUTE")
	unsetEnvWithCleanup(t, "PORT")
	unsetEnvWithCleanup(t, "SERVER_PORT")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default server port 8080, got %q", cfg.ServerPort)
	}
	if cfg.EventPageLimit != 50 {
		t.Fatalf("expected default event page limit 50, got %d", cfg.EventPageLimit)
	}
	if cfg.KYCRateLimitPerMinute != 5 {
		t.Fatalf("expected default kyc rate limit 5, got %d", cfg.KYCRateLimitPerMinute)
	}
	if cfg.OracleRateLimitPerMinute != 10 {
		t.Fatalf("expected default oracle rate limit 10, got %d", cfg.OracleRateLimitPerMinute)
	}
	if cfg.RedisRateLimitPrefix != "facterra:rate_limit" {
		t.Fatalf("expected default rate limit prefix, got %q", cfg.RedisRateLimitPrefix)
	}
}

func TestLoadConfig_PlatformPortTakesPrecedence(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SERVER_PORT", "8085")
	setEnvWithCleanup(t, "PORT", "9090")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "9090" {
		t.Fatalf("expected PORT to override SERVER_PORT, got %q", cfg.ServerPort)
	}
}

func TestLoadConfig_UsesSuiRPCURLAlias(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "LEDGER_RPC_URL")
	setEnvWithCleanup(t, "SUI_RPC_URL", "https://fullnode.mainnet.sui.io:443")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.LedgerRPCURL != "https://fullnode.mainnet.sui.io:443" {
		t.Fatalf("expected LedgerRPCURL from alias env var, got %q", cfg.LedgerRPCURL)
	}
}

func TestLoadConfig_CoercesNonPositiveLimits(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "EVENT_PAGE_LIMIT", "-3")
	setEnvWithCleanup(t, "ORACLE_RATE_LIMIT_PER_MINUTE", "0")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.EventPageLimit != 50 {
		t.Fatalf("expected non-positive event page limit to fall back to 50, got %d", cfg.EventPageLimit)
	}
	if cfg.OracleRateLimitPerMinute != 10 {
		t.Fatalf("expected non-positive oracle rate limit to fall back to 10, got %d", cfg.OracleRateLimitPerMinute)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
		}
	})
}
