package interaction

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/nightwood/internal/entity"
	"chosenoffset.com/nightwood/internal/terrain"
)

// eye sits at chest-center height so offsets below are purely horizontal.
var eye = mgl64.Vec3{0, 0.4, 0}

func chestAt(x, z float64) *entity.Chest {
	c := entity.NewChest(entity.ChestCapacity, nil)
	entity.Place(c, terrain.Field{}, x, z, 0)
	return c
}

func resolve(t *testing.T, dir mgl64.Vec3, es ...entity.Entity) (entity.Container, bool) {
	t.Helper()
	target, ok := DefaultResolver().Resolve(eye, dir, es)
	return target.Container, ok
}

func TestReachBoundary(t *testing.T) {
	forward := mgl64.Vec3{0, 0, 1}

	if c, ok := resolve(t, forward, chestAt(0, DefaultReach)); !ok || c == nil {
		t.Error("Expected a chest exactly at reach to be targeted")
	}
	if _, ok := resolve(t, forward, chestAt(0, DefaultReach+1e-6)); ok {
		t.Error("Expected a chest just past reach to be ignored")
	}
}

func TestConeBoundary(t *testing.T) {
	forward := mgl64.Vec3{0, 0, 1}
	const eps = 1e-6

	if _, ok := resolve(t, forward, chestAt(DefaultConeRadius-eps, 2)); !ok {
		t.Error("Expected a chest inside the cone to be targeted")
	}
	if _, ok := resolve(t, forward, chestAt(DefaultConeRadius+eps, 2)); ok {
		t.Error("Expected a chest outside the cone to be ignored")
	}
	if _, ok := resolve(t, forward, chestAt(-(DefaultConeRadius+eps), 2)); ok {
		t.Error("Expected the cone to be symmetric")
	}
}

func TestBehindCameraIsIgnored(t *testing.T) {
	if _, ok := resolve(t, mgl64.Vec3{0, 0, 1}, chestAt(0, -1)); ok {
		t.Error("Expected a chest behind the camera to be ignored")
	}
}

func TestNearestAlongRayWins(t *testing.T) {
	offAxis := chestAt(0.8, 2.0) // Euclidean ~2.15, along 2.0
	centered := chestAt(0, 2.1)  // Euclidean 2.1, along 2.1

	c, ok := resolve(t, mgl64.Vec3{0, 0, 1}, centered, offAxis)
	if !ok {
		t.Fatal("Expected a target")
	}
	if c != entity.Container(offAxis) {
		t.Error("Expected the chest nearest along the ray to win over the Euclidean-nearest")
	}
}

func TestEqualProjectionKeepsFirst(t *testing.T) {
	a := chestAt(0.3, 2)
	b := chestAt(-0.3, 2)
	c, ok := resolve(t, mgl64.Vec3{0, 0, 1}, a, b)
	if !ok || c != entity.Container(a) {
		t.Error("Expected the earlier chest on a tie")
	}
}

func TestNonContainersAreIgnored(t *testing.T) {
	rock := entity.NewRock(nil)
	entity.Place(rock, terrain.Field{}, 0, 1, 0)
	if _, ok := resolve(t, mgl64.Vec3{0, 0, 1}, rock); ok {
		t.Error("Expected rocks never to be targeted")
	}
}

func TestZeroDirection(t *testing.T) {
	if _, ok := resolve(t, mgl64.Vec3{}, chestAt(0, 0)); ok {
		t.Error("Expected a zero direction to target nothing")
	}
}

func TestUnnormalizedDirection(t *testing.T) {
	target, ok := DefaultResolver().Resolve(eye, mgl64.Vec3{0, 0, 10}, []entity.Entity{chestAt(0, 2)})
	if !ok {
		t.Fatal("Expected a target")
	}
	if math.Abs(target.Along-2) > 1e-9 {
		t.Errorf("Expected along 2, got %v", target.Along)
	}
}

func TestLookDirection(t *testing.T) {
	cases := []struct {
		yaw, pitch float64
		want       mgl64.Vec3
	}{
		{0, 0, mgl64.Vec3{0, 0, 1}},
		{90, 0, mgl64.Vec3{1, 0, 0}},
		{0, 90, mgl64.Vec3{0, 1, 0}},
	}
	for _, c := range cases {
		got := LookDirection(c.yaw, c.pitch)
		if !got.ApproxEqualThreshold(c.want, 1e-9) {
			t.Errorf("Expected %v for yaw=%v pitch=%v, got %v", c.want, c.yaw, c.pitch, got)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultResolver().Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
	if err := (Resolver{Reach: 0, ConeRadius: 1}).Validate(); err == nil {
		t.Error("Expected zero reach to fail")
	}
}
