package simulation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Player.Speed != 0.15 {
		t.Errorf("Expected default speed 0.15, got %v", cfg.Player.Speed)
	}
	if cfg.FootstepCooldown() != 0.35 {
		t.Errorf("Expected 0.35s footstep cooldown, got %v", cfg.FootstepCooldown())
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nightwood.yaml")
	data := []byte(`
seed: 99
world:
  wolves: 10
  wolf:
    speed: 0.2
    turn_chance: 0.05
    turn_max: 30
    phase_rate: 0.1
    sound_min: 2
    sound_max: 4
interaction:
  reach: 4
  cone_radius: 0.9
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Seed != 99 {
		t.Errorf("Expected seed 99, got %d", cfg.Seed)
	}
	if cfg.World.Wolves != 10 || cfg.World.Wolf.Speed != 0.2 {
		t.Errorf("Expected 10 wolves at speed 0.2, got %d at %v", cfg.World.Wolves, cfg.World.Wolf.Speed)
	}
	if cfg.World.Spiders != 6 {
		t.Errorf("Expected untouched spider count 6, got %d", cfg.World.Spiders)
	}
	if cfg.Interaction.Reach != 4 {
		t.Errorf("Expected reach 4, got %v", cfg.Interaction.Reach)
	}
	if cfg.Terrain.FlattenRadius != 8 {
		t.Errorf("Expected default flatten radius 8, got %v", cfg.Terrain.FlattenRadius)
	}
}

func TestParseConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"negative count":   "world:\n  trees: -1\n",
		"zero reach":       "interaction:\n  reach: 0\n  cone_radius: 0.9\n",
		"fov out of range": "player:\n  fov: 170\n",
		"clearing too big": "world:\n  radius: 5\n  clear_radius: 8\n",
		"sound range":      "world:\n  spider:\n    speed: 0.05\n    turn_chance: 0.02\n    turn_max: 45\n    phase_rate: 0.15\n    sound_min: 9\n    sound_max: 3\n",
		"not yaml":         "world: [",
	}
	for name, doc := range cases {
		if _, err := ParseConfig([]byte(doc)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
