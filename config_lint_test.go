package phoneAuth

import (
	"testing"
	"time"
)

func TestLint_DefaultConfigNoHighWarnings(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Lint().AsError(LintHigh); err != nil {
		t.Errorf("default config should not fail AsError(LintHigh): %v", err)
	}
	if !containsCode(cfg.Lint().Codes(), "audit_disabled") {
		t.Error("expected audit_disabled info for default config")
	}
}

func TestLint_HighFailureLimits(t *testing.T) {
	cfg := defaultConfig()
	cfg.OTP.MaxFailures = 50
	cfg.Login.MaxFailures = 50
	ws := cfg.Lint()

	high := ws.BySeverity(LintHigh)
	if len(high) != 2 {
		t.Fatalf("expected two HIGH warnings, got %v", high.Codes())
	}
	for _, w := range high {
		if w.Severity < LintHigh {
			t.Errorf("BySeverity(LintHigh) returned warning with severity %s", w.Severity)
		}
	}
	if err := ws.AsError(LintHigh); err == nil {
		t.Error("expected AsError(LintHigh) to return error")
	}
}

func TestLint_LongCodeTTL(t *testing.T) {
	cfg := defaultConfig()
	cfg.OTP.CodeTTL = time.Hour
	if !containsCode(cfg.Lint().Codes(), "code_ttl_long") {
		t.Error("expected code_ttl_long warning")
	}
}

func TestLint_LargeLeeway(t *testing.T) {
	cfg := defaultConfig()
	cfg.JWT.Leeway = 90 * time.Second
	if !containsCode(cfg.Lint().Codes(), "leeway_large") {
		t.Error("expected leeway_large warning")
	}
}

func TestLint_Argon2MemoryLow(t *testing.T) {
	cfg := defaultConfig()
	cfg.Password.Memory = 16 * 1024
	if !containsCode(cfg.Lint().Codes(), "argon2_memory_low") {
		t.Error("expected argon2_memory_low warning")
	}
}

func TestLint_ProductionSilencesCounterInfo(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.ProductionMode = true
	if containsCode(cfg.Lint().Codes(), "non_atomic_counters_allowed") {
		t.Error("production config should not report non_atomic_counters_allowed")
	}
}

func TestLint_SeverityString(t *testing.T) {
	if LintHigh.String() != "HIGH" || LintWarn.String() != "WARN" || LintInfo.String() != "INFO" {
		t.Fatal("unexpected severity names")
	}
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
