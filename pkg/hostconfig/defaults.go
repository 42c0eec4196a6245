package hostconfig

// Defaults.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 5000
	DefaultRootDir         = "."
	DefaultDescriptorDir   = "projects_types_configs"
	DefaultProjectsDir     = "projects"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultReadTimeout     = 30
	DefaultWriteTimeout    = 30
	DefaultShutdownTimeout = 10
)

// NewDefault creates a HostConfig with default values.
func NewDefault() *HostConfig {
	cfg := &HostConfig{
		Host:            DefaultHost,
		Port:            DefaultPort,
		RootDir:         DefaultRootDir,
		DescriptorDir:   DefaultDescriptorDir,
		ProjectsDir:     DefaultProjectsDir,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		Sources:         make(map[string]string),
	}
	for _, key := range Keys() {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}

// Keys lists every setting in display order.
func Keys() []string {
	return []string{
		"host", "port", "rootDir", "descriptorDir", "projectsDir",
		"logLevel", "logFormat", "readTimeout", "writeTimeout", "shutdownTimeout",
	}
}
