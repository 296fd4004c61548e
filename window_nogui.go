//go:build nogui

package main

import (
	"errors"

	"github.com/soocke/pixel-pulse-go/app"
)

func runWindow(c *app.AppContainer) error {
	_ = c.Close()
	return errors.New("built without GUI support, use -headless")
}
