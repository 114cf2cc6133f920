package config

import "testing"

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Synonyms != 10 || cfg.IndexPath != "index.bin" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("QSIM_INDEX_PATH", "/tmp/custom.bin")
	t.Setenv("QSIM_SYNONYMS", "5")
	t.Setenv("QSIM_WORKERS", "4")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.IndexPath != "/tmp/custom.bin" || cfg.Synonyms != 5 || cfg.Workers != 4 {
		t.Errorf("expected overrides to apply, got %+v", cfg)
	}
}

func TestLoadFromEnvRejectsMalformedInt(t *testing.T) {
	t.Setenv("QSIM_SYNONYMS", "not-a-number")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected an error for a non-numeric QSIM_SYNONYMS")
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cfg := Defaults()
	cfg.Synonyms = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected Synonyms < 1 to be rejected")
	}

	cfg = Defaults()
	cfg.MaxWords = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected negative MaxWords to be rejected")
	}
}
