// Package config loads runtime settings for the skirmish host and the
// headless runner.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g.
// TACTICS_ENCOUNTER_MAXROUNDS=30.
const EnvPrefix = "TACTICS"

// AISettings configures computer-controlled units.
type AISettings struct {
	ThinkingDelay time.Duration `json:"thinkingDelay" mapstructure:"thinkingDelay"`
	Behaviors     []string      `json:"behaviors" mapstructure:"behaviors"`
}

// EncounterSettings selects the battlefield and the round cap. VerboseLog
// keeps AI deliberation in the combat log.
type EncounterSettings struct {
	Map        string `json:"map" mapstructure:"map"`
	MaxRounds  int    `json:"maxRounds" mapstructure:"maxRounds"`
	VerboseLog bool   `json:"verboseLog" mapstructure:"verboseLog"`
}

// StorageSettings holds roster database settings.
type StorageSettings struct {
	Driver string `json:"driver" mapstructure:"driver"`
	DSN    string `json:"dsn" mapstructure:"dsn"`
}

// WindowSettings holds skirmish window settings.
type WindowSettings struct {
	CellSize int `json:"cellSize" mapstructure:"cellSize"`
}

// CatalogSettings points at the YAML definitions file.
type CatalogSettings struct {
	Path string `json:"path" mapstructure:"path"`
}

// Settings is the typed view of the loaded configuration.
type Settings struct {
	LogLevel  string            `json:"logLevel" mapstructure:"logLevel"`
	AI        AISettings        `json:"ai" mapstructure:"ai"`
	Encounter EncounterSettings `json:"encounter" mapstructure:"encounter"`
	Storage   StorageSettings   `json:"storage" mapstructure:"storage"`
	Window    WindowSettings    `json:"window" mapstructure:"window"`
	Catalog   CatalogSettings   `json:"catalog" mapstructure:"catalog"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")

	v.SetDefault("ai.thinkingDelay", "400ms")
	v.SetDefault("ai.behaviors", []string{"attack-in-place", "advance-and-attack", "approach-nearest", "hold-position"})

	v.SetDefault("encounter.map", "")
	v.SetDefault("encounter.maxRounds", 50)
	v.SetDefault("encounter.verboseLog", false)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "roster.db")

	v.SetDefault("window.cellSize", 48)

	v.SetDefault("catalog.path", "")
}

// Load reads configuration with defaults applied. An empty path loads
// defaults and environment overrides only; otherwise the file type is taken
// from its extension (yaml, json, toml).
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings no component can run with.
func (s Settings) Validate() error {
	switch s.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("storage.driver %q: want sqlite or postgres", s.Storage.Driver)
	}
	if s.Encounter.MaxRounds < 0 {
		return fmt.Errorf("encounter.maxRounds must not be negative, got %d", s.Encounter.MaxRounds)
	}
	if s.Window.CellSize <= 0 {
		return fmt.Errorf("window.cellSize must be positive, got %d", s.Window.CellSize)
	}
	if s.AI.ThinkingDelay < 0 {
		return fmt.Errorf("ai.thinkingDelay must not be negative, got %s", s.AI.ThinkingDelay)
	}
	return nil
}
