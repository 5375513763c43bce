// Package simulation provides the tunables for a nightwood session: terrain
// shape, world population, interaction tolerances and player movement.
// They are loaded from a YAML file so a world can be retuned without a rebuild.
package simulation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"chosenoffset.com/nightwood/internal/entity"
	"chosenoffset.com/nightwood/internal/interaction"
	"chosenoffset.com/nightwood/internal/terrain"
)

//go:embed config.schema.json
var schemaSource string

// Config holds all tunables for a session
type Config struct {
	// Seed drives world generation and creature wandering.
	Seed int64 `yaml:"seed" json:"seed"`

	Window      WindowConfig         `yaml:"window" json:"window"`
	Terrain     terrain.Field        `yaml:"terrain" json:"terrain"`
	World       entity.Population    `yaml:"world" json:"world"`
	Interaction interaction.Resolver `yaml:"interaction" json:"interaction"`
	Player      PlayerConfig         `yaml:"player" json:"player"`
	Assets      AssetConfig          `yaml:"assets" json:"assets"`
}

// WindowConfig is the initial window.
type WindowConfig struct {
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Title  string `yaml:"title" json:"title"`
}

// PlayerConfig defines first-person movement. Per-tick values assume the
// 60 Hz frame factor.
type PlayerConfig struct {
	Speed            float64 `yaml:"speed" json:"speed"`                         // units per tick
	MouseSensitivity float64 `yaml:"mouse_sensitivity" json:"mouse_sensitivity"` // degrees per pixel
	FOV              float64 `yaml:"fov" json:"fov"`                             // degrees
	EyeHeight        float64 `yaml:"eye_height" json:"eye_height"`
	Gravity          float64 `yaml:"gravity" json:"gravity"`       // units per tick²
	JumpSpeed        float64 `yaml:"jump_speed" json:"jump_speed"` // units per tick
	// FootstepCooldownMs is the minimum gap between footstep sounds.
	FootstepCooldownMs int `yaml:"footstep_cooldown_ms" json:"footstep_cooldown_ms"`
	// HearingRange bounds which creature sounds are played.
	HearingRange float64 `yaml:"hearing_range" json:"hearing_range"`
}

// AssetConfig locates textures and sounds on disk.
type AssetConfig struct {
	IconDir  string `yaml:"icon_dir" json:"icon_dir"`
	SoundDir string `yaml:"sound_dir" json:"sound_dir"`
	SaveDir  string `yaml:"save_dir" json:"save_dir"`
}

// DefaultConfig returns the shipped night forest
func DefaultConfig() *Config {
	return &Config{
		Seed: 1,
		Window: WindowConfig{
			Width:  1200,
			Height: 800,
			Title:  "Nightwood",
		},
		Terrain:     terrain.DefaultField(),
		World:       entity.DefaultPopulation(),
		Interaction: interaction.DefaultResolver(),
		Player: PlayerConfig{
			Speed:              0.15,
			MouseSensitivity:   0.2,
			FOV:                70,
			EyeHeight:          1.6,
			Gravity:            0.015,
			JumpSpeed:          0.25,
			FootstepCooldownMs: 350,
			HearingRange:       30,
		},
		Assets: AssetConfig{
			IconDir:  "assets/textures",
			SoundDir: "assets/sfx",
			SaveDir:  "saves",
		},
	}
}

// LoadConfig loads the config from a YAML file. Values in the file override
// the defaults; a missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig overlays YAML data onto the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig() // Start with defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

var compiledSchema *jsonschema.Schema

func schema() (*jsonschema.Schema, error) {
	if compiledSchema != nil {
		return compiledSchema, nil
	}
	s, err := jsonschema.CompileString("config.schema.json", schemaSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile config schema: %w", err)
	}
	compiledSchema = s
	return s, nil
}

// Validate checks the config against the embedded schema plus the
// cross-field rules a schema cannot express.
func (c *Config) Validate() error {
	s, err := schema()
	if err != nil {
		return err
	}

	// The schema validator works on decoded JSON values.
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize simulation config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode simulation config: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("invalid simulation config: %w", err)
	}

	if c.World.ClearRadius >= c.World.Radius {
		return fmt.Errorf("invalid simulation config: clear_radius %v must be less than radius %v",
			c.World.ClearRadius, c.World.Radius)
	}
	for name, g := range map[string]entity.Gait{"wolf": c.World.Wolf, "spider": c.World.Spider} {
		if g.SoundMin > g.SoundMax {
			return fmt.Errorf("invalid simulation config: %s sound_min %v exceeds sound_max %v",
				name, g.SoundMin, g.SoundMax)
		}
	}
	return c.Interaction.Validate()
}

// FootstepCooldown returns the footstep gap in seconds.
func (c *Config) FootstepCooldown() float64 {
	return float64(c.Player.FootstepCooldownMs) / 1000
}
