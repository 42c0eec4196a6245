package hostconfig

import (
	"errors"
	"fmt"
	"strconv"
)

// Environment variables, also accepted in a .env file.
const (
	EnvHost          = "MPH_HOST"
	EnvPort          = "MPH_PORT"
	EnvRootDir       = "MPH_ROOT_DIR"
	EnvDescriptorDir = "MPH_DESCRIPTOR_DIR"
	EnvProjectsDir   = "MPH_PROJECTS_DIR"
	EnvLogLevel      = "MPH_LOG_LEVEL"
	EnvLogFormat     = "MPH_LOG_FORMAT"
	EnvReadTimeout   = "MPH_READ_TIMEOUT"
	EnvWriteTimeout  = "MPH_WRITE_TIMEOUT"
)

// LookupFunc reads one variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv builds a partial HostConfig from the MPH_* variables lookup
// returns. Malformed numbers are reported and ignored.
func FromEnv(lookup LookupFunc) (*HostConfig, error) {
	cfg := &HostConfig{}
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a number", key, v))
			return
		}
		*dst = n
	}

	str(EnvHost, &cfg.Host)
	num(EnvPort, &cfg.Port)
	str(EnvRootDir, &cfg.RootDir)
	str(EnvDescriptorDir, &cfg.DescriptorDir)
	str(EnvProjectsDir, &cfg.ProjectsDir)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvLogFormat, &cfg.LogFormat)
	num(EnvReadTimeout, &cfg.ReadTimeout)
	num(EnvWriteTimeout, &cfg.WriteTimeout)

	return cfg, errors.Join(errs...)
}
