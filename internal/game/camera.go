package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/nightwood/internal/interaction"
)

const nearPlane = 0.1

// camera projects world points onto the screen for the player's view.
type camera struct {
	eye   mgl64.Vec3
	view  mgl64.Mat3 // rows are right, up, forward
	focal float64    // pixels per unit at depth 1
	cx    float64
	cy    float64
}

func newCamera(p Player, fov float64, width, height int) camera {
	forward := interaction.LookDirection(p.Yaw, p.Pitch)
	yaw := mgl64.DegToRad(p.Yaw)
	right := mgl64.Vec3{math.Cos(yaw), 0, -math.Sin(yaw)}
	up := forward.Cross(right)

	return camera{
		eye:   p.Eye(),
		view:  mgl64.Mat3FromRows(right, up, forward),
		focal: float64(height) / 2 / math.Tan(mgl64.DegToRad(fov)/2),
		cx:    float64(width) / 2,
		cy:    float64(height) / 2,
	}
}

// project returns the screen position and depth of p. ok is false for
// points behind the near plane.
func (c camera) project(p mgl64.Vec3) (x, y, depth float64, ok bool) {
	v := c.view.Mul3x1(p.Sub(c.eye))
	if v.Z() < nearPlane {
		return 0, 0, v.Z(), false
	}
	return c.cx + v.X()/v.Z()*c.focal, c.cy - v.Y()/v.Z()*c.focal, v.Z(), true
}

// scale returns how many pixels one world unit spans at depth.
func (c camera) scale(depth float64) float64 {
	return c.focal / depth
}
