package main

import (
	"os"
	_ "time/tzdata" // APP_TIMEZONE must resolve in images without zoneinfo.

	"github.com/Additional-Code/planta/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
