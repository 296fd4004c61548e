package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MeasurementSeconds != 15 || cfg.MinSamples != 30 {
		t.Fatalf("expected defaults, got duration=%d minSamples=%d", cfg.MeasurementSeconds, cfg.MinSamples)
	}
}

func TestSaveLoad_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"cfg.json", "cfg.yaml"} {
		path := filepath.Join(dir, name)
		cfg := DefaultConfig()
		cfg.MeasurementSeconds = 20
		cfg.Estimator = EstimatorPlaceholder
		cfg.ExitAfterResults = true
		cfg.SelectionX, cfg.SelectionY, cfg.SelectionW, cfg.SelectionH = 10, 20, 300, 200
		if err := cfg.Save(path); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if got.MeasurementSeconds != 20 || got.Estimator != EstimatorPlaceholder || got.SelectionW != 300 || !got.ExitAfterResults {
			t.Fatalf("%s: values not preserved: %+v", name, got)
		}
	}
}

func TestLoad_BadJSONReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if cfg == nil || cfg.MinSamples != 30 {
		t.Fatalf("expected defaults alongside error")
	}
}

func TestValidate_ClampsOutOfRange(t *testing.T) {
	cfg := &Config{
		Source:           "webcam9000",
		ForeheadFraction: 2,
		BandLowHz:        3,
		BandHighHz:       1,
		Estimator:        "magic",
		MaxReadFailures:  -3,
		SyntheticBPM:     500,
	}
	_ = cfg.Validate()
	if cfg.Source != SourceCamera {
		t.Fatalf("source not normalised: %q", cfg.Source)
	}
	if cfg.ForeheadFraction <= 0 || cfg.ForeheadFraction > 1 {
		t.Fatalf("forehead fraction not clamped: %v", cfg.ForeheadFraction)
	}
	if cfg.BandHighHz <= cfg.BandLowHz {
		t.Fatalf("band not ordered: %v..%v", cfg.BandLowHz, cfg.BandHighHz)
	}
	if cfg.Estimator != EstimatorRPPG {
		t.Fatalf("estimator not normalised: %q", cfg.Estimator)
	}
	if cfg.MaxReadFailures != 1 {
		t.Fatalf("max read failures expected 1, got %d", cfg.MaxReadFailures)
	}
	if cfg.SyntheticBPM != 72 {
		t.Fatalf("synthetic bpm expected default, got %v", cfg.SyntheticBPM)
	}
}

func TestApplyEnv_Overrides(t *testing.T) {
	env := map[string]string{
		EnvSource:    "Synthetic",
		EnvCamera:    "2",
		EnvDuration:  "30",
		EnvEstimator: "placeholder",
		EnvDebug:     "true",
		EnvCascade:   "/opt/cascade.xml",
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	if cfg.Source != SourceSynthetic || cfg.CameraIndex != 2 || cfg.MeasurementSeconds != 30 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Estimator != EstimatorPlaceholder || !cfg.Debug || cfg.CascadePath != "/opt/cascade.xml" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestApplyEnv_IgnoresGarbage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvCamera || k == EnvDuration {
			return "abc", true
		}
		return "", false
	})
	if cfg.CameraIndex != 0 || cfg.MeasurementSeconds != 15 {
		t.Fatalf("garbage env should be ignored: %+v", cfg)
	}
}

func TestLoadDotEnv_SetsUnsetVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PULSE_TEST_ONLY_VAR=42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("PULSE_TEST_ONLY_VAR") })
	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if v := os.Getenv("PULSE_TEST_ONLY_VAR"); v != "42" {
		t.Fatalf("expected 42, got %q", v)
	}
}
