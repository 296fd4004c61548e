package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/pixel-pulse-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the configuration form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges() // parses widget text into underlying config and persists
}

type configPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget // keyed by internal field id
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

// panel fields, in display order
var configFields = []struct{ id, label string }{
	{"measurementSeconds", "Measurement Seconds"},
	{"minSamples", "Min Samples"},
	{"estimator", "Estimator (rppg/placeholder)"},
	{"bandLowHz", "Band Low Hz"},
	{"bandHighHz", "Band High Hz"},
	{"minSignalQuality", "Min Signal Quality"},
	{"foreheadFraction", "Forehead Fraction"},
	{"analysisScale", "Analysis Scale (0.2-1.0)"},
	{"trackerThreshold", "Tracker Threshold"},
	{"trackerHoldFrames", "Tracker Hold Frames"},
	{"resultsDisplaySeconds", "Results Display Seconds"},
}

// fieldValues renders cfg into the text shown per field id.
func fieldValues(c *config.Config) map[string]string {
	return map[string]string{
		"measurementSeconds":    strconv.Itoa(c.MeasurementSeconds),
		"minSamples":            strconv.Itoa(c.MinSamples),
		"estimator":             c.Estimator,
		"bandLowHz":             fmt.Sprintf("%.2f", c.BandLowHz),
		"bandHighHz":            fmt.Sprintf("%.2f", c.BandHighHz),
		"minSignalQuality":      fmt.Sprintf("%.2f", c.MinSignalQuality),
		"foreheadFraction":      fmt.Sprintf("%.3f", c.ForeheadFraction),
		"analysisScale":         fmt.Sprintf("%.2f", c.AnalysisScale),
		"trackerThreshold":      fmt.Sprintf("%.2f", c.TrackerThreshold),
		"trackerHoldFrames":     strconv.Itoa(c.TrackerHoldFrames),
		"resultsDisplaySeconds": strconv.Itoa(c.ResultsDisplaySeconds),
	}
}

func (v *configPanel) Build(startRow int) (row int) {
	row = startRow
	values := fieldValues(v.cfg)
	for _, f := range configFields {
		lbl := Label(Txt(f.label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", values[f.id])
		v.widgets[f.id] = w
		row++
	}
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(id string) string {
	w := v.widgets[id]
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	raw := make(map[string]string, len(v.widgets))
	for id := range v.widgets {
		raw[id] = v.text(id)
	}
	cfg, err := applyFields(*v.cfg, raw)
	if err != nil {
		if v.logger != nil {
			v.logger.Error("config rejected", "error", err)
		}
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
}

// applyFields parses raw field text into a copy of cfg. Unparseable values
// keep the current setting; the result is validated.
func applyFields(cfg config.Config, raw map[string]string) (config.Config, error) {
	ints := map[string]*int{
		"measurementSeconds":    &cfg.MeasurementSeconds,
		"minSamples":            &cfg.MinSamples,
		"trackerHoldFrames":     &cfg.TrackerHoldFrames,
		"resultsDisplaySeconds": &cfg.ResultsDisplaySeconds,
	}
	floats := map[string]*float64{
		"bandLowHz":        &cfg.BandLowHz,
		"bandHighHz":       &cfg.BandHighHz,
		"minSignalQuality": &cfg.MinSignalQuality,
		"foreheadFraction": &cfg.ForeheadFraction,
		"analysisScale":    &cfg.AnalysisScale,
		"trackerThreshold": &cfg.TrackerThreshold,
	}
	for id, dst := range ints {
		if i, ok := parseIntField(raw[id]); ok {
			*dst = i
		}
	}
	for id, dst := range floats {
		if f, ok := parseFloatField(raw[id]); ok {
			*dst = f
		}
	}
	if s := strings.ToLower(raw["estimator"]); s != "" {
		cfg.Estimator = s
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
