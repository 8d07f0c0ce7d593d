// Package settings holds the user's split toggles.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Settings is one immutable snapshot of the toggles. Every toggle defaults to enabled.
type Settings struct {
	StartCleanSave   bool `yaml:"start_clean_save" env:"SONICSPLIT_START_CLEAN_SAVE"`
	StartNewGamePlus bool `yaml:"start_new_game_plus" env:"SONICSPLIT_START_NEW_GAME_PLUS"`
	Reset            bool `yaml:"reset" env:"SONICSPLIT_RESET"`

	GreenHill1  bool `yaml:"green_hill_1" env:"SONICSPLIT_GREEN_HILL_1"`
	GreenHill2  bool `yaml:"green_hill_2" env:"SONICSPLIT_GREEN_HILL_2"`
	GreenHill3  bool `yaml:"green_hill_3" env:"SONICSPLIT_GREEN_HILL_3"`
	Marble1     bool `yaml:"marble_1" env:"SONICSPLIT_MARBLE_1"`
	Marble2     bool `yaml:"marble_2" env:"SONICSPLIT_MARBLE_2"`
	Marble3     bool `yaml:"marble_3" env:"SONICSPLIT_MARBLE_3"`
	SpringYard1 bool `yaml:"spring_yard_1" env:"SONICSPLIT_SPRING_YARD_1"`
	SpringYard2 bool `yaml:"spring_yard_2" env:"SONICSPLIT_SPRING_YARD_2"`
	SpringYard3 bool `yaml:"spring_yard_3" env:"SONICSPLIT_SPRING_YARD_3"`
	Labyrinth1  bool `yaml:"labyrinth_1" env:"SONICSPLIT_LABYRINTH_1"`
	Labyrinth2  bool `yaml:"labyrinth_2" env:"SONICSPLIT_LABYRINTH_2"`
	Labyrinth3  bool `yaml:"labyrinth_3" env:"SONICSPLIT_LABYRINTH_3"`
	StarLight1  bool `yaml:"star_light_1" env:"SONICSPLIT_STAR_LIGHT_1"`
	StarLight2  bool `yaml:"star_light_2" env:"SONICSPLIT_STAR_LIGHT_2"`
	StarLight3  bool `yaml:"star_light_3" env:"SONICSPLIT_STAR_LIGHT_3"`
	ScrapBrain1 bool `yaml:"scrap_brain_1" env:"SONICSPLIT_SCRAP_BRAIN_1"`
	ScrapBrain2 bool `yaml:"scrap_brain_2" env:"SONICSPLIT_SCRAP_BRAIN_2"`
	ScrapBrain3 bool `yaml:"scrap_brain_3" env:"SONICSPLIT_SCRAP_BRAIN_3"`
	FinalZone   bool `yaml:"final_zone" env:"SONICSPLIT_FINAL_ZONE"`
}

// Default returns every toggle enabled.
func Default() Settings {
	var s Settings
	for _, d := range Descriptors {
		s.Set(d.Toggle, true)
	}
	return s
}

// Load builds a snapshot from the defaults, then the YAML file at path (if
// path is set and the file exists), then SONICSPLIT_* environment variables.
func Load(path string) (Settings, error) {
	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Settings{}, fmt.Errorf("read settings: %w", err)
		default:
			if err := s.decodeYAML(data); err != nil {
				return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// decodeYAML overlays the keys present in data. Unknown keys are an error.
func (s *Settings) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// YAML renders the snapshot in the file format Load reads.
func (s Settings) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
