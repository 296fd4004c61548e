package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names recognised by ApplyEnv.
const (
	EnvSource    = "PULSE_SOURCE"
	EnvCamera    = "PULSE_CAMERA"
	EnvCascade   = "PULSE_CASCADE"
	EnvDuration  = "PULSE_DURATION"
	EnvEstimator = "PULSE_ESTIMATOR"
	EnvDebug     = "PULSE_DEBUG"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides fields from PULSE_* environment variables. Unparseable
// values are ignored. lookup is normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if c == nil {
		return
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvSource); ok && strings.TrimSpace(v) != "" {
		c.Source = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvCamera); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.CameraIndex = i
		}
	}
	if v, ok := lookup(EnvCascade); ok && strings.TrimSpace(v) != "" {
		c.CascadePath = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvDuration); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.MeasurementSeconds = i
		}
	}
	if v, ok := lookup(EnvEstimator); ok && strings.TrimSpace(v) != "" {
		c.Estimator = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvDebug); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Debug = b
		}
	}
	_ = c.Validate()
}
