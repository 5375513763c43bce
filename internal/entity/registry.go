package entity

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/nightwood/internal/terrain"
)

// Registry owns every entity in the session, in insertion order.
// It is not safe for concurrent use; the simulation loop is its only writer.
type Registry struct {
	env      Env
	entities []Entity
	byID     map[uint64]Entity
	nextID   uint64
}

// NewRegistry creates an empty registry over field. rng drives creature
// wandering and sound cooldowns.
func NewRegistry(field terrain.Field, rng *rand.Rand) *Registry {
	return &Registry{
		env:  Env{Field: field, Rand: rng},
		byID: make(map[uint64]Entity),
	}
}

// Field returns the height field entities are clamped to.
func (r *Registry) Field() terrain.Field { return r.env.Field }

// Rand returns the registry's random source.
func (r *Registry) Rand() *rand.Rand { return r.env.Rand }

// Spawn assigns an ID, places e on the terrain at (x, z) and adds it.
func (r *Registry) Spawn(e Entity, x, z float64) Entity {
	Place(e, r.env.Field, x, z, e.Yaw())
	return r.Add(e)
}

// Add registers e as-is, assigning the next ID.
func (r *Registry) Add(e Entity) Entity {
	r.nextID++
	e.setID(r.nextID)
	r.entities = append(r.entities, e)
	r.byID[r.nextID] = e
	return e
}

// All returns the entities in insertion order. The slice must not be modified.
func (r *Registry) All() []Entity { return r.entities }

func (r *Registry) Len() int { return len(r.entities) }

func (r *Registry) ByID(id uint64) (Entity, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// Update advances every entity by dt.
func (r *Registry) Update(dt float64) {
	for _, e := range r.entities {
		e.Update(dt, &r.env)
	}
}

// Containers returns every container in insertion order.
func (r *Registry) Containers() []Container {
	var out []Container
	for _, e := range r.entities {
		if c, ok := e.(Container); ok {
			out = append(out, c)
		}
	}
	return out
}

// QueryNearest returns the entity of the given kind closest to origin within
// maxDistance. Ties keep the earlier-inserted entity.
func (r *Registry) QueryNearest(kind Kind, origin mgl64.Vec3, maxDistance float64) (Entity, bool) {
	var best Entity
	bestDist := math.Inf(1)
	for _, e := range r.entities {
		if e.Kind() != kind {
			continue
		}
		d := e.Position().Sub(origin).Len()
		if d <= maxDistance && d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, best != nil
}

// DueSounds returns creatures within hearing range of listener whose ambient
// sound cooldown has elapsed at time now (seconds). Cooldowns re-arm whether
// or not the creature is in range.
func (r *Registry) DueSounds(now float64, listener mgl64.Vec3, hearing float64) []Creature {
	var out []Creature
	for _, e := range r.entities {
		c, ok := e.(Creature)
		if !ok || !c.SoundDue(now, r.env.Rand) {
			continue
		}
		if c.Position().Sub(listener).Len() <= hearing {
			out = append(out, c)
		}
	}
	return out
}
