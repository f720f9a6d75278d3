// Package config loads engine parameters and the target list from an
// optional .env file, the process environment, and an optional YAML
// targets file, in that order of increasing precedence over built-in
// defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pcekm/mpinger/internal/mpinger"
)

// Target is one YAML-file entry naming a destination and how to probe it.
type Target struct {
	Address string `yaml:"address"`
	Type    string `yaml:"type"`
}

// TargetsFile is the top-level shape of an optional YAML targets file.
type TargetsFile struct {
	Targets []Target `yaml:"targets"`
}

// Engine holds the engine-wide parameters recognized by mpinger.Config,
// sourced from environment variables (MPINGER_PING_INTERVAL,
// MPINGER_TIMEOUT, MPINGER_NEXT_TIMEOUT, MPINGER_PING_RETRIES,
// MPINGER_DEFAULT_PORT), falling back to mpinger's built-in defaults.
type Engine struct {
	PingInterval time.Duration
	Timeout      time.Duration
	NextTimeout  time.Duration
	PingRetries  int
	DefaultPort  uint16
}

// Load reads an optional .env file at envPath (missing is not an error),
// then builds an Engine from the environment.
func Load(envPath string) (*Engine, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: loading %s: %w", envPath, err)
		}
	}

	e := &Engine{
		PingInterval: mpinger.DefaultPingInterval,
		Timeout:      mpinger.DefaultTimeout,
		NextTimeout:  mpinger.DefaultNextTimeout,
		PingRetries:  mpinger.DefaultPingRetries,
		DefaultPort:  mpinger.DefaultPort,
	}

	if err := durationEnv("MPINGER_PING_INTERVAL", &e.PingInterval); err != nil {
		return nil, err
	}
	if err := durationEnv("MPINGER_TIMEOUT", &e.Timeout); err != nil {
		return nil, err
	}
	if err := durationEnv("MPINGER_NEXT_TIMEOUT", &e.NextTimeout); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv("MPINGER_PING_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: MPINGER_PING_RETRIES: %w", err)
		}
		e.PingRetries = n
	}
	if v, ok := os.LookupEnv("MPINGER_DEFAULT_PORT"); ok {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("config: MPINGER_DEFAULT_PORT: %w", err)
		}
		e.DefaultPort = uint16(n)
	}

	return e, nil
}

func durationEnv(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = d
	return nil
}

// LoadTargets parses a YAML targets file. A missing path is not an error;
// it returns a nil, empty slice so callers fall back to CLI-supplied
// targets.
func LoadTargets(path string) ([]Target, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading targets file %s: %w", path, err)
	}
	var tf TargetsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("config: parsing targets file %s: %w", path, err)
	}
	return tf.Targets, nil
}

// ParseType maps a targets-file/CLI type name onto mpinger.Type.
func ParseType(name string) (mpinger.Type, error) {
	switch name {
	case "icmp":
		return mpinger.ICMP, nil
	case "tcp", "tcp_connect":
		return mpinger.TCPConnect, nil
	case "http", "http_keep_alive":
		return mpinger.HTTPKeepAlive, nil
	case "udp":
		return mpinger.UDP, nil
	case "random":
		return mpinger.Random, nil
	default:
		return 0, fmt.Errorf("config: unknown probe type %q", name)
	}
}
