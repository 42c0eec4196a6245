package hostconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GlobalConfigDir is the directory below the user config dir.
const GlobalConfigDir = "mph"

// DotenvFile is read from the working directory.
const DotenvFile = ".env"

// LocalConfigFileNames are searched in the working directory, in order.
var LocalConfigFileNames = []string{".mphrc.yaml", ".mphrc.yml"}

// GlobalConfigFileNames are searched in the global config dir, in order.
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// ConfigError reports a malformed config file.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// LoadOptions controls where LoadAll looks.
type LoadOptions struct {
	// WorkDir holds the local config and .env files. Defaults to the cwd.
	WorkDir string

	// GlobalDir overrides the global config directory. Defaults to
	// os.UserConfigDir()/mph.
	GlobalDir string

	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup LookupFunc

	// Flags holds values set on the command line.
	Flags *HostConfig
}

// FindLocalConfig returns the first local config file in dir, or "".
func FindLocalConfig(dir string) string {
	return findFirst(dir, LocalConfigFileNames)
}

// FindGlobalConfig returns the global config file, or "".
func FindGlobalConfig(globalDir string) string {
	if globalDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		globalDir = filepath.Join(configDir, GlobalConfigDir)
	}
	return findFirst(globalDir, GlobalConfigFileNames)
}

func findFirst(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// LoadConfigFile loads a HostConfig from a YAML file.
func LoadConfigFile(path string) (*HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg HostConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}
	cfg.Sources = make(map[string]string)
	return &cfg, nil
}

// LoadAll merges every source. Precedence: flags > env > .env > local
// config > global config > defaults.
func LoadAll(opts LoadOptions) (*HostConfig, error) {
	if opts.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		opts.WorkDir = wd
	}
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}

	cfg := NewDefault()

	for _, f := range []struct {
		path   string
		source string
	}{
		{FindGlobalConfig(opts.GlobalDir), SourceGlobal},
		{FindLocalConfig(opts.WorkDir), SourceLocal},
	} {
		if f.path == "" {
			continue
		}
		fileCfg, err := LoadConfigFile(f.path)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, fileCfg, f.source)
	}

	dotenv, err := readDotenv(filepath.Join(opts.WorkDir, DotenvFile))
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		envCfg, err := FromEnv(func(key string) (string, bool) {
			v, ok := dotenv[key]
			return v, ok
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", DotenvFile, err)
		}
		MergeConfig(cfg, envCfg, SourceDotenv)
	}

	envCfg, err := FromEnv(opts.Lookup)
	if err != nil {
		return nil, err
	}
	MergeConfig(cfg, envCfg, SourceEnv)
	MergeConfig(cfg, opts.Flags, SourceFlag)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readDotenv parses a .env file without touching the process environment.
func readDotenv(path string) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}
	return vals, nil
}
