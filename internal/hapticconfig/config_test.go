package hapticconfig

import (
	"os"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.SampleRate = 0 },
		func(c *Config) { c.BlockSize = -1 },
		func(c *Config) { c.MinFrequency = 100; c.MaxFrequency = 50 },
		func(c *Config) { c.Environment = "staging" },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestLoadWithoutPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SampleRate != Default().SampleRate {
		t.Errorf("SampleRate = %d, want default %d", cfg.SampleRate, Default().SampleRate)
	}
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	t.Setenv("HAPTIC_SAMPLE_RATE", "48000")
	t.Setenv("HAPTIC_LOG_LEVEL", "debug")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000 from env override", cfg.SampleRate)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q from env override", cfg.LogLevel, "debug")
	}
}

func TestLoadFromFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "haptic-*.toml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("sample_rate = 96000\nblock_size = 256\nenvironment = \"production\"\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg, err := Load(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SampleRate != 96000 || cfg.BlockSize != 256 || cfg.Environment != Production {
		t.Errorf("loaded config = %+v, did not reflect file contents", cfg)
	}
}
