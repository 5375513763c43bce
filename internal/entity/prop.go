package entity

import "math/rand"

// Rock is a static boulder. ShapeSeed drives the renderer's lump layout.
type Rock struct {
	base
	Scale     float64
	ShapeSeed int
}

func NewRock(rng *rand.Rand) *Rock {
	r := &Rock{Scale: 1, ShapeSeed: 0}
	if rng != nil {
		r.Scale = 0.8 + rng.Float64()*0.7
		r.yaw = rng.Float64() * 360
		r.ShapeSeed = rng.Intn(101)
	}
	return r
}

func (r *Rock) Kind() Kind           { return KindRock }
func (r *Rock) Update(float64, *Env) {}

type Mushroom struct {
	base
	Scale float64
}

func NewMushroom(rng *rand.Rand) *Mushroom {
	m := &Mushroom{Scale: 1}
	if rng != nil {
		m.Scale = 0.6 + rng.Float64()*0.6
	}
	return m
}

func (m *Mushroom) Kind() Kind           { return KindMushroom }
func (m *Mushroom) Update(float64, *Env) {}

type Tree struct {
	base
	Scale float64
}

func NewTree(rng *rand.Rand) *Tree {
	t := &Tree{Scale: 1}
	if rng != nil {
		t.Scale = 0.9 + rng.Float64()*0.5
		t.yaw = rng.Float64() * 360
	}
	return t
}

func (t *Tree) Kind() Kind           { return KindTree }
func (t *Tree) Update(float64, *Env) {}
