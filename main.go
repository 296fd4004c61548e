package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soocke/pixel-pulse-go/app"
	"github.com/soocke/pixel-pulse-go/config"
	"github.com/soocke/pixel-pulse-go/debug"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.json", "config file (.json, .yaml or .yml)")
	source := flag.String("source", "", "frame source: camera, screen or synthetic")
	camera := flag.Int("camera", -1, "camera device index")
	duration := flag.Int("duration", 0, "measurement duration in seconds")
	estimator := flag.String("estimator", "", "estimator: rppg or placeholder")
	headless := flag.Bool("headless", false, "print to the console instead of opening a window")
	debugFlag := flag.Bool("debug", false, "debug logging and runtime stats")
	exitAfter := flag.Bool("exit-after-results", false, "close the window after the results were shown")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "env:", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
	}
	cfg.ApplyEnv(os.LookupEnv)
	if *source != "" {
		cfg.Source = *source
	}
	if *camera >= 0 {
		cfg.CameraIndex = *camera
	}
	if *duration > 0 {
		cfg.MeasurementSeconds = *duration
	}
	if *estimator != "" {
		cfg.Estimator = *estimator
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if *exitAfter {
		cfg.ExitAfterResults = true
	}
	_ = cfg.Validate()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if cfg.Debug {
		debug.StartGoroutineLogger(5*time.Second, logger)
		debug.StartMemLogger(5*time.Second, logger)
	}
	logger.Info("starting", "source", cfg.Source, "estimator", cfg.Estimator, "duration_s", cfg.MeasurementSeconds, "headless", *headless)

	c, err := app.BuildContainer(cfg, *configPath, logger)
	if err != nil {
		logger.Error("setup failed", "error", err)
		return app.ExitCaptureFailure
	}

	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.RunHeadless(ctx, c, os.Stdout)
	}
	if err := runWindow(c); err != nil {
		logger.Error("window", "error", err)
		return app.ExitCaptureFailure
	}
	return app.ExitOK
}
