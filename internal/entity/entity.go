// Package entity provides the placed world objects (creatures, chests, props)
// and the registry that owns and updates them.
package entity

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/nightwood/internal/inventory"
	"chosenoffset.com/nightwood/internal/terrain"
)

// Kind identifies an entity variant.
type Kind string

const (
	KindWolf     Kind = "wolf"
	KindSpider   Kind = "spider"
	KindChest    Kind = "chest"
	KindRock     Kind = "rock"
	KindMushroom Kind = "mushroom"
	KindTree     Kind = "tree"
)

// IsCreature reports whether entities of this kind move on their own.
func (k Kind) IsCreature() bool {
	return k == KindWolf || k == KindSpider
}

// Env is what an entity may consult while updating.
type Env struct {
	Field terrain.Field
	Rand  *rand.Rand
}

// Entity is the uniform contract every variant satisfies. The set of variants
// is closed: only this package can implement it.
type Entity interface {
	ID() uint64
	Kind() Kind
	Position() mgl64.Vec3
	// Yaw is the heading in degrees; 0 faces +Z.
	Yaw() float64
	// Phase is the animation accumulator read by the renderer.
	Phase() float64
	Update(dt float64, env *Env)

	setID(id uint64)
	place(p mgl64.Vec3, yaw float64)
	setPhase(phase float64)
}

// Container is an entity that holds items and can be opened.
type Container interface {
	Entity
	inventory.Container
	// Center is the point interaction rays aim at.
	Center() mgl64.Vec3
}

// Creature is an entity that wanders and makes ambient noise.
type Creature interface {
	Entity
	Sound() string
	// SoundDue reports whether the ambient sound should play at time now
	// (seconds) and re-arms the cooldown when it does.
	SoundDue(now float64, rng *rand.Rand) bool
}

type base struct {
	id    uint64
	pos   mgl64.Vec3
	yaw   float64
	phase float64
}

func (b *base) ID() uint64           { return b.id }
func (b *base) Position() mgl64.Vec3 { return b.pos }
func (b *base) Yaw() float64         { return b.yaw }
func (b *base) Phase() float64       { return b.phase }
func (b *base) setID(id uint64)      { b.id = id }
func (b *base) setPhase(p float64)   { b.phase = p }
func (b *base) place(p mgl64.Vec3, yaw float64) {
	b.pos = p
	b.yaw = yaw
}

// Place moves an entity to (x, z) on the terrain facing yaw degrees.
func Place(e Entity, field terrain.Field, x, z, yaw float64) {
	e.place(mgl64.Vec3{x, field.Height(x, z), z}, yaw)
}

// Restore puts e back where a saved session left it: on the terrain at (x, z)
// with the given heading and animation phase.
func Restore(e Entity, field terrain.Field, x, z, yaw, phase float64) {
	Place(e, field, x, z, yaw)
	e.setPhase(phase)
}
