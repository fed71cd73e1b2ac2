// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Trainer TrainerConfig `toml:"trainer"`
	Stats   StatsConfig   `toml:"stats"`
	Log     LogConfig     `toml:"log"`
}

// TrainerConfig maps quiz settings.
type TrainerConfig struct {
	JudgeMode   *string `toml:"judge-mode"`
	JudgePolicy *string `toml:"judge-policy"`
	Questions   *int    `toml:"questions"`
}

// StatsConfig maps stats settings.
type StatsConfig struct {
	WeakMinSample   *int     `toml:"weak-min-sample"`
	WeakMaxAccuracy *float64 `toml:"weak-max-accuracy"`
	StreakTZ        *string  `toml:"streak-tz"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by "preflop config" when no file exists yet.
const Template = `# preflop configuration

[trainer]
# FREQUENCY accepts any best action, PROBABILISTIC matches a weighted draw.
# judge-mode = "FREQUENCY"
# resample draws a fresh answer when judging, freeze keeps the label shown with the question.
# judge-policy = "resample"
# questions = 20

[stats]
# weak-min-sample = 5
# weak-max-accuracy = 0.6
# streak-tz = "Local"

[log]
# level = "info"
# Defaults to $XDG_DATA_HOME/preflop/preflop.log.
# file = "/tmp/preflop.log"
`
