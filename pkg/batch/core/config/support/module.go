package support

import (
	"go.uber.org/fx"
)

// Module defines Fx options related to JobFactory. Component packages register their
// builders with fx.Invoke.
var Module = fx.Options(
	fx.Provide(NewJobFactory),
)
