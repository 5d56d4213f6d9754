package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfig names the environment variable holding the config path.
	EnvConfig = "MAPPER_CONFIG"
	// DefaultFile is looked up in the working directory when no path is
	// given.
	DefaultFile = "mapper.yaml"
)

// Load reads the configuration file at path. When path is empty the
// MAPPER_CONFIG environment variable is consulted, then mapper.yaml in the
// working directory. getenv resolves environment references and defaults
// to os.Getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	resolved, err := resolvePath(path, getenv)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", resolved, err)
	}
	return Parse(data, getenv)
}

// Parse decodes YAML configuration data over Defaults.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(interpolateEnv(data, getenv), cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolvePath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config: file not found: %s", explicit)
		}
		return explicit, nil
	}
	if p := getenv(EnvConfig); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config: file not found: %s (from %s)", p, EnvConfig)
		}
		return p, nil
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return filepath.Abs(DefaultFile)
	}
	return "", errors.New("config: no config file found, set " + EnvConfig + " or create " + DefaultFile)
}

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} references. Empty
// values fall back to the default.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		groups := envPattern.FindSubmatch(match)
		if v := getenv(string(groups[1])); v != "" {
			return []byte(v)
		}
		return groups[2]
	})
}
