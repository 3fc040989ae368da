package bootstrap

import "go.uber.org/fx"

// Module provides the loaded *jsl.Definitions.
var Module = fx.Options(
	fx.Provide(NewDefinitions),
	fx.Invoke(LogDefinitionsHook),
)
