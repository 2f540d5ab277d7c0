package sched

import (
	"os"

	env "github.com/caarlos0/env/v11"
	yaml "github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Config mirrors config.yml.
type Config struct {
	Backend  string       `yaml:"backend"`   // linear (by default) or indexed
	TickMS   int          `yaml:"tick_ms"`   // 5 (by default)
	Capacity Resources    `yaml:"capacity"`  // total capacity handed to the dispatcher
	CSVPath  string       `yaml:"csv_path"`  // empty disables CSV event logging
	LogLevel string       `yaml:"log_level"` // info (by default)
	Tasks    []TaskConfig `yaml:"tasks"`
}

// envConfig holds the fields that FITQ_* environment variables may override.
type envConfig struct {
	Backend  string `env:"BACKEND"`
	TickMS   int    `env:"TICK_MS"`
	CSVPath  string `env:"CSV_PATH"`
	LogLevel string `env:"LOG_LEVEL"`
}

// TaskConfig describes a task seeded from the config file.
type TaskConfig struct {
	ID       uint64 `yaml:"id"`
	Priority int    `yaml:"priority"`
	RAM      int    `yaml:"ram"`
	CPUCores int    `yaml:"cpu_cores"`
	GPUCount int    `yaml:"gpu_count"`
	Content  string `yaml:"content"`
	WorkMS   int64  `yaml:"work_ms"`
}

// Task converts the config entry into a Task.
func (tc TaskConfig) Task() *Task {
	return NewTask(
		TaskID(tc.ID),
		tc.Priority,
		NewResources(tc.RAM, tc.CPUCores, tc.GPUCount),
		tc.Content,
	)
}

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "FITQ_"

func defaultConfig() Config {
	return Config{
		Backend:  string(BackendLinear),
		TickMS:   5,
		Capacity: NewResources(1024, 4, 0),
		LogLevel: "info",
	}
}

// Load reads YAML and FITQ_* environment overrides on top of the defaults.
// An empty path or a missing file yields the defaults plus overrides.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, errors.Wrapf(err, "failed to read config %s", path)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrapf(err, "failed to parse config %s", path)
			}
		}
	}

	// unset variables leave the prefilled values alone
	ov := envConfig{
		Backend:  cfg.Backend,
		TickMS:   cfg.TickMS,
		CSVPath:  cfg.CSVPath,
		LogLevel: cfg.LogLevel,
	}
	if err := env.ParseWithOptions(&ov, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, errors.Wrap(err, "failed to apply environment overrides")
	}
	cfg.Backend, cfg.TickMS, cfg.CSVPath, cfg.LogLevel = ov.Backend, ov.TickMS, ov.CSVPath, ov.LogLevel

	if _, err := ParseBackendKind(cfg.Backend); err != nil {
		return cfg, err
	}

	// sanity clamps
	if cfg.TickMS <= 0 {
		cfg.TickMS = 5
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}
