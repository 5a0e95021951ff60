package http

import (
	"go.uber.org/fx"

	catalogtransport "github.com/Additional-Code/planta/internal/transport/http/catalog"
	inspectiontransport "github.com/Additional-Code/planta/internal/transport/http/inspection"
	ordertransport "github.com/Additional-Code/planta/internal/transport/http/order"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	catalogtransport.Module,
	inspectiontransport.Module,
	ordertransport.Module,
)
