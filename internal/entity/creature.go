package entity

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Gait tunes how a creature wanders. Rates are per frame-factor unit
// (dt == 1 at 60 updates per second).
type Gait struct {
	Speed      float64 `yaml:"speed" json:"speed"`
	TurnChance float64 `yaml:"turn_chance" json:"turn_chance"`
	TurnMax    float64 `yaml:"turn_max" json:"turn_max"` // degrees either way
	PhaseRate  float64 `yaml:"phase_rate" json:"phase_rate"`

	// Ambient sound cooldown range in seconds.
	SoundMin float64 `yaml:"sound_min" json:"sound_min"`
	SoundMax float64 `yaml:"sound_max" json:"sound_max"`
}

// DefaultWolfGait is a brisk walk with frequent small corrections.
func DefaultWolfGait() Gait {
	return Gait{Speed: 0.08, TurnChance: 0.03, TurnMax: 20, PhaseRate: 0.1, SoundMin: 3, SoundMax: 8}
}

// DefaultSpiderGait is a slow creep with rare, sharp turns.
func DefaultSpiderGait() Gait {
	return Gait{Speed: 0.05, TurnChance: 0.02, TurnMax: 45, PhaseRate: 0.15, SoundMin: 4, SoundMax: 10}
}

type creature struct {
	base
	gait      Gait
	nextSound float64
}

func (c *creature) step(dt float64, env *Env) {
	c.phase += c.gait.PhaseRate * dt

	if env.Rand != nil && env.Rand.Float64() < c.gait.TurnChance*dt {
		c.yaw += (env.Rand.Float64()*2 - 1) * c.gait.TurnMax
	}

	rad := mgl64.DegToRad(c.yaw)
	x := c.pos.X() + math.Sin(rad)*c.gait.Speed*dt
	z := c.pos.Z() + math.Cos(rad)*c.gait.Speed*dt
	c.pos = mgl64.Vec3{x, env.Field.Height(x, z), z}
}

// Gait returns the creature's movement tuning.
func (c *creature) Gait() Gait { return c.gait }

func (c *creature) SoundDue(now float64, rng *rand.Rand) bool {
	if now < c.nextSound {
		return false
	}
	c.armSound(now, rng)
	return true
}

func (c *creature) armSound(now float64, rng *rand.Rand) {
	span := c.gait.SoundMax - c.gait.SoundMin
	wait := c.gait.SoundMin
	if rng != nil && span > 0 {
		wait += rng.Float64() * span
	}
	c.nextSound = now + wait
}

// Wolf walks in straight lines, occasionally veering.
type Wolf struct {
	creature
}

// NewWolf creates a wolf with a random heading. Place it with Registry.Spawn.
func NewWolf(gait Gait, rng *rand.Rand) *Wolf {
	w := &Wolf{creature{gait: gait}}
	if rng != nil {
		w.yaw = rng.Float64() * 360
	}
	w.armSound(0, rng)
	return w
}

func (w *Wolf) Kind() Kind    { return KindWolf }
func (w *Wolf) Sound() string { return "wolf" }

func (w *Wolf) Update(dt float64, env *Env) { w.step(dt, env) }

// Spider creeps forward and turns sharply now and then.
type Spider struct {
	creature
}

// NewSpider creates a spider with a random heading.
func NewSpider(gait Gait, rng *rand.Rand) *Spider {
	s := &Spider{creature{gait: gait}}
	if rng != nil {
		s.yaw = rng.Float64() * 360
	}
	s.armSound(0, rng)
	return s
}

func (s *Spider) Kind() Kind    { return KindSpider }
func (s *Spider) Sound() string { return "spider" }

func (s *Spider) Update(dt float64, env *Env) { s.step(dt, env) }
