//go:build !nogui

package main

import (
	"github.com/soocke/pixel-pulse-go/app"
	"github.com/soocke/pixel-pulse-go/app/gui"
)

func runWindow(c *app.AppContainer) error {
	return gui.New("Cardiovascular Measurement", 960, 820, c).Run()
}
