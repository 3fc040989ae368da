package config

import "go.uber.org/fx"

// NewLoggingConfigProvider extracts and provides *LoggingConfig from *Config.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Surfin.System.Logging
}

// Module provides *Config and its derived settings to Fx. The application supplies
// the EmbeddedConfig and, optionally, a named "envFilePath" string.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewOsEnvironmentExpander,
			fx.As(new(EnvironmentExpander)),
		),
	),
	fx.Provide(NewConfigProvider),
	fx.Provide(NewLoggingConfigProvider),
)
