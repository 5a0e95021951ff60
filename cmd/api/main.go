// Command api runs the HTTP and gRPC servers without the CLI wrapper.
package main

import (
	_ "time/tzdata" // APP_TIMEZONE must resolve in images without zoneinfo.

	"go.uber.org/fx"

	"github.com/Additional-Code/planta/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
