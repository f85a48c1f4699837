package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/gemclash/apps/go-server/assets"
)

// localPath is checked when no explicit path is given.
const localPath = "configs/game.yaml"

// Load reads the game configuration.
// Search order: customPath -> ./configs/game.yaml -> embedded default.
// An explicit customPath that cannot be read or parsed is an error; the local
// file is skipped silently if missing.
func Load(customPath string) (Config, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		return parse(data, customPath)
	}

	if data, err := os.ReadFile(localPath); err == nil {
		return parse(data, localPath)
	}

	return Default()
}

// Default parses the embedded game.yaml.
func Default() (Config, error) {
	data, err := assets.GameYAML()
	if err != nil {
		return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
	}
	return parse(data, "embedded game.yaml")
}

func parse(data []byte, name string) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}
