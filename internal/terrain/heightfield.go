// Package terrain provides the deterministic height field the world is built on.
// Heights are recomputed on every call; nothing is cached, so the mesh handed to
// the renderer and the positions used by gameplay always agree.
package terrain

import "math"

// Field is a closed-form height function: two base sinusoids (one in x, one in z)
// plus a cross term, flattened linearly toward zero inside FlattenRadius so the
// spawn area is always walkable.
type Field struct {
	AmpX  float64 `yaml:"amp_x" json:"amp_x"`
	FreqX float64 `yaml:"freq_x" json:"freq_x"`
	AmpZ  float64 `yaml:"amp_z" json:"amp_z"`
	FreqZ float64 `yaml:"freq_z" json:"freq_z"`

	CrossAmp   float64 `yaml:"cross_amp" json:"cross_amp"`
	CrossFreqX float64 `yaml:"cross_freq_x" json:"cross_freq_x"`
	CrossFreqZ float64 `yaml:"cross_freq_z" json:"cross_freq_z"`

	FlattenRadius float64 `yaml:"flatten_radius" json:"flatten_radius"`
}

// DefaultField returns the rolling-hills terrain the game ships with.
func DefaultField() Field {
	return Field{
		AmpX:          1.5,
		FreqX:         0.1,
		AmpZ:          1.5,
		FreqZ:         0.1,
		CrossAmp:      0.5,
		CrossFreqX:    0.3,
		CrossFreqZ:    0.2,
		FlattenRadius: 8,
	}
}

// Height returns the elevation at (x, z). It is pure and defined everywhere.
func (f Field) Height(x, z float64) float64 {
	v := math.Sin(x*f.FreqX)*f.AmpX + math.Cos(z*f.FreqZ)*f.AmpZ
	v += math.Sin(x*f.CrossFreqX+z*f.CrossFreqZ) * f.CrossAmp

	if f.FlattenRadius > 0 {
		d := math.Hypot(x, z)
		if d < f.FlattenRadius {
			v *= d / f.FlattenRadius
		}
	}
	return v
}

// Mesh is a square grid of height samples for the ground renderer.
// Heights[i][j] is the height at (Origin+i*Step, Origin+j*Step) in (x, z).
type Mesh struct {
	Origin  float64
	Step    float64
	Heights [][]float64
}

// Sample evaluates the field on a grid covering [-size, size] in both axes.
func (f Field) Sample(size, step float64) Mesh {
	if step <= 0 {
		step = 1
	}
	n := int(math.Floor(2*size/step)) + 1
	m := Mesh{Origin: -size, Step: step, Heights: make([][]float64, n)}
	for i := 0; i < n; i++ {
		x := -size + float64(i)*step
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = f.Height(x, -size+float64(j)*step)
		}
		m.Heights[i] = row
	}
	return m
}

// At returns the sampled height nearest to (x, z), clamped to the grid.
func (m Mesh) At(x, z float64) float64 {
	if len(m.Heights) == 0 {
		return 0
	}
	i := clampIndex(int(math.Round((x-m.Origin)/m.Step)), len(m.Heights))
	j := clampIndex(int(math.Round((z-m.Origin)/m.Step)), len(m.Heights[i]))
	return m.Heights[i][j]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
