// Package config provides structures and utilities for managing application configuration.
package config

// EmbeddedConfig holds the content of the configuration file, typically passed from main.go.
type EmbeddedConfig []byte

// LogLevel defines the logging level for the application.
type LogLevel string

const (
	LogLevelDebug  LogLevel = "DEBUG"
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelSilent LogLevel = "SILENT"
)

// RetryConfig holds configuration for reader and writer retries.
type RetryConfig struct {
	MaxAttempts     int     `yaml:"max_attempts"`     // MaxAttempts is the maximum number of attempts, the first one included.
	InitialInterval int     `yaml:"initial_interval"` // InitialInterval is the initial backoff interval in milliseconds.
	MaxInterval     int     `yaml:"max_interval"`     // MaxInterval is the maximum backoff interval in milliseconds.
	Factor          float64 `yaml:"factor"`           // Factor is the factor by which the interval increases.
	// RetryableErrors lists registered error type names that are retried.
	RetryableErrors []string `yaml:"retryable_errors"`
}

// BatchConfig holds the defaults applied to jobs built by the job factory.
type BatchConfig struct {
	// JobName is the default job name.
	JobName string `yaml:"job_name"`
	// BatchSize is the default number of records per batch.
	BatchSize int `yaml:"batch_size"`
	// ErrorThreshold is the default number of tolerated errors; -1 tolerates all.
	ErrorThreshold int64 `yaml:"error_threshold"`
	// MonitoringEnabled turns metric recording on for every job.
	MonitoringEnabled bool `yaml:"monitoring_enabled"`
	// Retry is the retry configuration used by retrying readers and writers.
	Retry RetryConfig `yaml:"retry"`
	// MetricsAsyncBufferSize is the buffer size for asynchronous metric recording.
	MetricsAsyncBufferSize int `yaml:"metrics_async_buffer_size"`
	// Jobs lists the JSL job IDs the application runs on startup.
	Jobs []string `yaml:"jobs"`
	// Flow is "parallel" or "sequential" and decides how Jobs are run together.
	Flow string `yaml:"flow"`
}

// ExecutorConfig holds the job executor settings.
type ExecutorConfig struct {
	// MaxConcurrency is the number of jobs that may run at the same time.
	MaxConcurrency int `yaml:"max_concurrency"`
	// ShutdownTimeoutSeconds bounds how long application shutdown waits for running jobs.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

// DispatchConfig holds the defaults of blocking queues used between jobs.
type DispatchConfig struct {
	// QueueCapacity is the buffer size of each queue.
	QueueCapacity int `yaml:"queue_capacity"`
	// QueueTimeoutMillis is how long a queue reader waits for a record.
	QueueTimeoutMillis int `yaml:"queue_timeout_millis"`
	// TimeoutIsError makes a queue reader fail instead of ending the stream on timeout.
	TimeoutIsError bool `yaml:"timeout_is_error"`
}

// ExporterConfig selects an OTLP exporter.
type ExporterConfig struct {
	// Protocol is "grpc", "http" or "none".
	Protocol string `yaml:"protocol"`
	// Endpoint is the collector address (host:port).
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS.
	Insecure bool `yaml:"insecure"`
}

// MetricsConfig holds metric backend settings.
type MetricsConfig struct {
	// Enabled turns the metric backend on.
	Enabled bool `yaml:"enabled"`
	// Backend is "prometheus", "otel" or "log".
	Backend string `yaml:"backend"`
	// Namespace prefixes Prometheus metric names.
	Namespace string `yaml:"namespace"`
	// Async records metrics on a background worker.
	Async bool `yaml:"async"`
	// ListenAddress serves the Prometheus registry on /metrics when set (e.g. ":9090").
	ListenAddress string `yaml:"listen_address"`
	// Exporter is the OTLP exporter used by the "otel" backend.
	Exporter ExporterConfig `yaml:"exporter"`
}

// TracingConfig holds OpenTelemetry tracing settings.
type TracingConfig struct {
	// Enabled turns tracing on.
	Enabled bool `yaml:"enabled"`
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name"`
	// SampleRatio is the fraction of traces sampled, between 0 and 1.
	SampleRatio float64 `yaml:"sample_ratio"`
	// Exporter is the OTLP span exporter.
	Exporter ExporterConfig `yaml:"exporter"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC", "Asia/Tokyo").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// InfrastructureConfig holds the report repository settings.
type InfrastructureConfig struct {
	// ReportRepositoryType is "inmemory" or "sql".
	ReportRepositoryType string `yaml:"report_repository_type"`
	// ReportRepositoryDBRef is the name of the database connection used by the SQL repository.
	ReportRepositoryDBRef string `yaml:"report_repository_db_ref"`
	// AutoMigrate applies the report schema migrations on startup.
	AutoMigrate bool `yaml:"auto_migrate"`
}

// SurfinConfig holds all configuration under the "surfin" top-level key.
type SurfinConfig struct {
	Batch          BatchConfig          `yaml:"batch"`
	Executor       ExecutorConfig       `yaml:"executor"`
	Dispatch       DispatchConfig       `yaml:"dispatch"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	Tracing        TracingConfig        `yaml:"tracing"`
	System         SystemConfig         `yaml:"system"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	// AdapterConfigs holds named database connection settings, decoded by the database adapters.
	AdapterConfigs map[string]interface{} `yaml:"database"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Surfin SurfinConfig `yaml:"surfin"`
	// EmbeddedConfig holds configuration loaded from an embedded source, not from YAML.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a new instance of Config with default values.
func NewConfig() *Config {
	return &Config{
		Surfin: SurfinConfig{
			Batch: BatchConfig{
				JobName:                "job",
				BatchSize:              20,
				ErrorThreshold:         -1,
				MetricsAsyncBufferSize: 100,
				Flow:                   "parallel",
				Retry: RetryConfig{
					MaxAttempts:     3,
					InitialInterval: 1000,
					MaxInterval:     10000,
					Factor:          2.0,
				},
			},
			Executor: ExecutorConfig{
				MaxConcurrency:         4,
				ShutdownTimeoutSeconds: 30,
			},
			Dispatch: DispatchConfig{
				QueueCapacity:      100,
				QueueTimeoutMillis: 60000,
			},
			Metrics: MetricsConfig{
				Backend:   "prometheus",
				Namespace: "surfin",
				Exporter:  ExporterConfig{Protocol: "none"},
			},
			Tracing: TracingConfig{
				ServiceName: "surfin-record",
				SampleRatio: 1.0,
				Exporter:    ExporterConfig{Protocol: "none"},
			},
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Infrastructure: InfrastructureConfig{
				ReportRepositoryType:  "inmemory",
				ReportRepositoryDBRef: "metadata",
			},
			AdapterConfigs: map[string]interface{}{},
		},
	}
}
