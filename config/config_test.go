package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CohereAPIKey != "test-key" {
		t.Errorf("unexpected api key %q", cfg.CohereAPIKey)
	}
	if cfg.CohereModel != defaultModel {
		t.Errorf("unexpected model %q", cfg.CohereModel)
	}
	if cfg.DepCallTimeout != defaultCallTimeout {
		t.Errorf("unexpected timeout %v", cfg.DepCallTimeout)
	}
	if cfg.RebuildIndex {
		t.Error("RebuildIndex should default to false")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing COHERE_API_KEY")
	}
}

func TestLoadRebuildIndex(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "test-key")
	t.Setenv("REBUILD_INDEX", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.RebuildIndex {
		t.Error("expected RebuildIndex true")
	}
}

func TestLoadRejectsInvalidRebuildIndex(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "test-key")
	t.Setenv("REBUILD_INDEX", "maybe")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparsable REBUILD_INDEX")
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "test-key")
	t.Setenv("DEP_CALL_TIMEOUT_SECONDS", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparsable DEP_CALL_TIMEOUT_SECONDS")
	}
}

func TestLoadCustomTimeout(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "test-key")
	t.Setenv("DEP_CALL_TIMEOUT_SECONDS", "15")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DepCallTimeout != 15*time.Second {
		t.Errorf("unexpected timeout %v", cfg.DepCallTimeout)
	}
}

func TestLoadKafkaBrokers(t *testing.T) {
	t.Setenv("COHERE_API_KEY", "test-key")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "broker1:9092" || cfg.KafkaBrokers[1] != "broker2:9092" {
		t.Errorf("unexpected brokers %v", cfg.KafkaBrokers)
	}
}
