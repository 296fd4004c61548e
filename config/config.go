package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frame source kinds.
const (
	SourceCamera    = "camera"
	SourceScreen    = "screen"
	SourceSynthetic = "synthetic"
)

// Estimator names.
const (
	EstimatorRPPG        = "rppg"
	EstimatorPlaceholder = "placeholder"
)

// Config holds runtime configuration for capture, measurement and app behavior.
// Fields may be loaded from a JSON or YAML file, the environment and command-line flags.
type Config struct {
	Debug bool `json:"debug" yaml:"debug"`

	// Frame source
	Source        string `json:"source" yaml:"source"`
	CameraIndex   int    `json:"camera_index" yaml:"camera_index"`
	CaptureWidth  int    `json:"capture_width" yaml:"capture_width"`
	CaptureHeight int    `json:"capture_height" yaml:"capture_height"`
	CascadePath   string `json:"cascade_path" yaml:"cascade_path"`

	// Face and forehead ROI
	ForeheadFraction  float64 `json:"forehead_fraction" yaml:"forehead_fraction"`
	AnalysisScale     float64 `json:"analysis_scale" yaml:"analysis_scale"`
	TrackerThreshold  float64 `json:"tracker_threshold" yaml:"tracker_threshold"`
	TrackerHoldFrames int     `json:"tracker_hold_frames" yaml:"tracker_hold_frames"`

	// Measurement
	MeasurementSeconds    int     `json:"measurement_seconds" yaml:"measurement_seconds"`
	MinSamples            int     `json:"min_samples" yaml:"min_samples"`
	BandLowHz             float64 `json:"band_low_hz" yaml:"band_low_hz"`
	BandHighHz            float64 `json:"band_high_hz" yaml:"band_high_hz"`
	Estimator             string  `json:"estimator" yaml:"estimator"`
	MinSignalQuality      float64 `json:"min_signal_quality" yaml:"min_signal_quality"`
	MaxReadFailures       int     `json:"max_read_failures" yaml:"max_read_failures"`
	ResultsDisplaySeconds int     `json:"results_display_seconds" yaml:"results_display_seconds"`
	// ExitAfterResults closes the window once the results were shown for
	// ResultsDisplaySeconds.
	ExitAfterResults bool `json:"exit_after_results" yaml:"exit_after_results"`

	// Calibration. SpO2 = SpO2A - SpO2B*R; blood pressure is linear in heart rate.
	SpO2A            float64 `json:"spo2_a" yaml:"spo2_a"`
	SpO2B            float64 `json:"spo2_b" yaml:"spo2_b"`
	BPSystolicBase   float64 `json:"bp_systolic_base" yaml:"bp_systolic_base"`
	BPSystolicSlope  float64 `json:"bp_systolic_slope" yaml:"bp_systolic_slope"`
	BPDiastolicBase  float64 `json:"bp_diastolic_base" yaml:"bp_diastolic_base"`
	BPDiastolicSlope float64 `json:"bp_diastolic_slope" yaml:"bp_diastolic_slope"`

	// Synthetic source
	SyntheticBPM float64 `json:"synthetic_bpm" yaml:"synthetic_bpm"`
	SyntheticFPS int     `json:"synthetic_fps" yaml:"synthetic_fps"`

	// Selection rectangle persistence (screen source)
	SelectionX int `json:"selection_x" yaml:"selection_x"`
	SelectionY int `json:"selection_y" yaml:"selection_y"`
	SelectionW int `json:"selection_w" yaml:"selection_w"`
	SelectionH int `json:"selection_h" yaml:"selection_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                 false,
		Source:                SourceCamera,
		CameraIndex:           0,
		CaptureWidth:          640,
		CaptureHeight:         480,
		CascadePath:           "data/haarcascade_frontalface_default.xml",
		ForeheadFraction:      1.0 / 3.0,
		AnalysisScale:         0.5,
		TrackerThreshold:      0.70,
		TrackerHoldFrames:     15,
		MeasurementSeconds:    15,
		MinSamples:            30,
		BandLowHz:             0.7,
		BandHighHz:            4.0,
		Estimator:             EstimatorRPPG,
		MinSignalQuality:      0.5,
		MaxReadFailures:       5,
		ResultsDisplaySeconds: 5,
		SpO2A:                 104,
		SpO2B:                 17,
		BPSystolicBase:        110,
		BPSystolicSlope:       0.5,
		BPDiastolicBase:       70,
		BPDiastolicSlope:      0.3,
		SyntheticBPM:          72,
		SyntheticFPS:          30,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	switch strings.ToLower(strings.TrimSpace(c.Source)) {
	case SourceCamera, SourceScreen, SourceSynthetic:
		c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	default:
		c.Source = d.Source
	}
	if c.CameraIndex < 0 {
		c.CameraIndex = 0
	}
	if c.CaptureWidth < 0 {
		c.CaptureWidth = 0
	}
	if c.CaptureHeight < 0 {
		c.CaptureHeight = 0
	}
	if strings.TrimSpace(c.CascadePath) == "" {
		c.CascadePath = d.CascadePath
	}
	if c.ForeheadFraction <= 0 || c.ForeheadFraction > 1 {
		c.ForeheadFraction = d.ForeheadFraction
	}
	if c.AnalysisScale <= 0 || c.AnalysisScale > 1 {
		c.AnalysisScale = d.AnalysisScale
	}
	if c.TrackerThreshold <= 0 || c.TrackerThreshold > 1 {
		c.TrackerThreshold = d.TrackerThreshold
	}
	if c.TrackerHoldFrames < 0 {
		c.TrackerHoldFrames = 0
	}
	if c.MeasurementSeconds <= 0 {
		c.MeasurementSeconds = d.MeasurementSeconds
	}
	if c.MinSamples < 2 {
		c.MinSamples = d.MinSamples
	}
	if c.BandLowHz <= 0 {
		c.BandLowHz = d.BandLowHz
	}
	if c.BandHighHz <= c.BandLowHz {
		c.BandHighHz = c.BandLowHz + (d.BandHighHz - d.BandLowHz)
	}
	switch strings.ToLower(strings.TrimSpace(c.Estimator)) {
	case EstimatorRPPG, EstimatorPlaceholder:
		c.Estimator = strings.ToLower(strings.TrimSpace(c.Estimator))
	default:
		c.Estimator = d.Estimator
	}
	if c.MinSignalQuality < 0 {
		c.MinSignalQuality = 0
	}
	if c.MaxReadFailures <= 0 {
		c.MaxReadFailures = 1
	}
	if c.ResultsDisplaySeconds < 0 {
		c.ResultsDisplaySeconds = 0
	}
	if c.SpO2A <= 0 {
		c.SpO2A = d.SpO2A
	}
	if c.SpO2B <= 0 {
		c.SpO2B = d.SpO2B
	}
	if c.BPSystolicBase <= 0 {
		c.BPSystolicBase = d.BPSystolicBase
	}
	if c.BPDiastolicBase <= 0 || c.BPDiastolicBase >= c.BPSystolicBase {
		c.BPDiastolicBase = d.BPDiastolicBase
	}
	if c.SyntheticBPM < 30 || c.SyntheticBPM > 220 {
		c.SyntheticBPM = d.SyntheticBPM
	}
	if c.SyntheticFPS <= 0 || c.SyntheticFPS > 240 {
		c.SyntheticFPS = d.SyntheticFPS
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	return nil
}

// isYAML reports whether path names a YAML document.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load attempts to read configuration from the given JSON or YAML file path. If the file does not
// exist it returns DefaultConfig(). On decode error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if isYAML(path) {
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return DefaultConfig(), err
		}
	} else {
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return DefaultConfig(), err
		}
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path, as YAML for .yaml/.yml paths and JSON otherwise.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
