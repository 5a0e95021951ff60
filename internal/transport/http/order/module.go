package order

import "go.uber.org/fx"

// Module provides the order handler and mounts its routes on the shared Echo router.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(Register),
)
