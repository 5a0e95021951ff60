package inspection

import "go.uber.org/fx"

// Module provides the inspection handler and mounts its routes on the shared Echo router.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(Register),
)
