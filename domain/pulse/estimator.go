package pulse

import (
	"errors"
	"log/slog"
	"time"

	"github.com/soocke/pixel-pulse-go/config"
)

var (
	// ErrInsufficientSamples is returned while the buffer holds fewer samples than required.
	ErrInsufficientSamples = errors.New("insufficient samples")
	// ErrLowSignalQuality is returned when no clear pulse is present in the signal.
	ErrLowSignalQuality = errors.New("signal quality too low")
	// ErrNoSignal is returned for a flat or degenerate signal.
	ErrNoSignal = errors.New("no pulse signal")
)

// Estimator turns buffered ROI samples into metrics.
type Estimator interface {
	Name() string
	Estimate(buf *Buffer, now time.Time) (Metrics, error)
}

// NewEstimator returns the estimator selected by cfg.Estimator. If cfg is nil
// the default configuration is used.
func NewEstimator(cfg *config.Config, logger *slog.Logger) Estimator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cfg.Estimator == config.EstimatorPlaceholder {
		return NewPlaceholderEstimator(cfg.MinSamples)
	}
	return NewRPPGEstimator(cfg, logger)
}
