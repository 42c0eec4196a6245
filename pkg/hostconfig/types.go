// Package hostconfig provides the host's own settings: listener, directories
// and logging.
package hostconfig

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"
)

// HostConfig is the complete host configuration.
// Values are merged from several sources, highest priority first:
//  1. Command-line flags
//  2. Environment variables (MPH_*)
//  3. A .env file in the working directory
//  4. Local config file (.mphrc.yaml in the working directory)
//  5. Global config file ($XDG_CONFIG_HOME/mph/config.yaml)
//  6. Default values
type HostConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`

	// RootDir anchors relative directories below.
	RootDir       string `yaml:"rootDir" json:"rootDir"`
	DescriptorDir string `yaml:"descriptorDir" json:"descriptorDir"`
	ProjectsDir   string `yaml:"projectsDir" json:"projectsDir"`

	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`

	// Timeouts in seconds.
	ReadTimeout     int `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    int `yaml:"writeTimeout" json:"writeTimeout"`
	ShutdownTimeout int `yaml:"shutdownTimeout" json:"shutdownTimeout"`

	// Sources tracks where each value came from.
	Sources map[string]string `yaml:"-" json:"-"`
}

// Config sources.
const (
	SourceDefault = "default"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceDotenv  = "dotenv"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Addr is host:port for the listener.
func (c *HostConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Root returns RootDir as an absolute path.
func (c *HostConfig) Root() string {
	root := c.RootDir
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}

// DescriptorPath is DescriptorDir resolved against RootDir.
func (c *HostConfig) DescriptorPath() string {
	return c.resolve(c.DescriptorDir)
}

// ProjectsPath is ProjectsDir resolved against RootDir.
func (c *HostConfig) ProjectsPath() string {
	return c.resolve(c.ProjectsDir)
}

func (c *HostConfig) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.Root(), dir)
}

// ReadTimeoutDuration returns ReadTimeout as a time.Duration.
func (c *HostConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *HostConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *HostConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// Validate checks ranges.
func (c *HostConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	for name, v := range map[string]int{
		"readTimeout":     c.ReadTimeout,
		"writeTimeout":    c.WriteTimeout,
		"shutdownTimeout": c.ShutdownTimeout,
	} {
		if v < 0 || v > 3600 {
			return fmt.Errorf("%s %d is out of range", name, v)
		}
	}
	if c.DescriptorDir == "" {
		return fmt.Errorf("descriptorDir must not be empty")
	}
	if c.ProjectsDir == "" {
		return fmt.Errorf("projectsDir must not be empty")
	}
	return nil
}
