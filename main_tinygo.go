//go:build tinygo && baremetal

package main

import (
	"h7tft/app"
	"h7tft/hal"
)

func main() {
	app.Run(hal.New())
}
