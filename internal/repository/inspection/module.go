package inspection

import "go.uber.org/fx"

// Module provides the inspection repository to Fx.
var Module = fx.Provide(NewRepository)
