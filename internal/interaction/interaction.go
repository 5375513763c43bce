// Package interaction decides which container, if any, the player is looking
// at. It is a pure function of the view ray and the entity list.
package interaction

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/nightwood/internal/entity"
)

const (
	DefaultReach      = 3.0
	DefaultConeRadius = 0.9
)

// Resolver holds the interaction tolerances.
type Resolver struct {
	Reach      float64 `yaml:"reach" json:"reach"`             // max distance to the container center
	ConeRadius float64 `yaml:"cone_radius" json:"cone_radius"` // max perpendicular offset from the ray
}

// DefaultResolver returns the resolver used when nothing is configured.
func DefaultResolver() Resolver {
	return Resolver{Reach: DefaultReach, ConeRadius: DefaultConeRadius}
}

// Validate checks that the tolerances are usable.
func (r Resolver) Validate() error {
	if r.Reach <= 0 {
		return fmt.Errorf("interaction reach must be positive, got %v", r.Reach)
	}
	if r.ConeRadius < 0 {
		return fmt.Errorf("interaction cone radius must not be negative, got %v", r.ConeRadius)
	}
	return nil
}

// Target is a resolved container with its measurements along the ray.
type Target struct {
	Container entity.Container
	Along     float64 // distance along the ray
	Off       float64 // perpendicular distance from the ray
}

// Measure returns how far center lies along the ray and off it. dir must be
// a unit vector.
func Measure(origin, dir, center mgl64.Vec3) (along, dist, off float64) {
	d := center.Sub(origin)
	return d.Dot(dir), d.Len(), d.Cross(dir).Len()
}

// Resolve returns the container best targeted by the ray from origin along
// dir. A container qualifies when it is in front of the ray, its center is
// within Reach, and its perpendicular offset is within ConeRadius (all
// bounds inclusive). Among qualifiers the one nearest along the ray wins;
// ties keep the earlier entity. dir need not be normalized, but a zero dir
// never targets anything.
func (r Resolver) Resolve(origin, dir mgl64.Vec3, entities []entity.Entity) (Target, bool) {
	n := dir.Len()
	if n == 0 || math.IsNaN(n) {
		return Target{}, false
	}
	dir = dir.Mul(1 / n)

	var best Target
	found := false
	for _, e := range entities {
		c, ok := e.(entity.Container)
		if !ok {
			continue
		}
		along, dist, off := Measure(origin, dir, c.Center())
		if along < 0 || dist > r.Reach || off > r.ConeRadius {
			continue
		}
		if !found || along < best.Along {
			best = Target{Container: c, Along: along, Off: off}
			found = true
		}
	}
	return best, found
}

// LookDirection converts a camera heading into a unit view vector. Yaw is in
// degrees with 0 facing +Z and 90 facing +X; positive pitch looks up.
func LookDirection(yaw, pitch float64) mgl64.Vec3 {
	y, p := mgl64.DegToRad(yaw), mgl64.DegToRad(pitch)
	return mgl64.Vec3{
		math.Sin(y) * math.Cos(p),
		math.Sin(p),
		math.Cos(y) * math.Cos(p),
	}
}
