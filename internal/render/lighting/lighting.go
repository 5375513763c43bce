// Package lighting shades the night scene: moonlit ambient, distance fog
// toward the sky color, and an optional light carried by the player.
package lighting

import (
	"image/color"
	"math"
)

// LightSource represents a point light in world space
type LightSource struct {
	X, Y, Z   float64
	Radius    float64     // Light radius (in world units)
	Intensity float64     // Light intensity (0.0 to 1.0)
	Color     color.NRGBA // Light color
}

// Manager holds the night settings and light sources.
type Manager struct {
	ambient  color.NRGBA // moonlight tint applied to every surface
	sky      color.NRGBA // fog converges to this
	fogStart float64
	fogEnd   float64

	playerLight   LightSource
	playerLightOn bool
}

// NewManager creates a manager with the night-forest defaults
func NewManager() *Manager {
	return &Manager{
		ambient:  color.NRGBA{51, 51, 64, 255}, // 0.2, 0.2, 0.25
		sky:      color.NRGBA{13, 13, 38, 255}, // 0.05, 0.05, 0.15
		fogStart: 10,
		fogEnd:   45,
		playerLight: LightSource{
			Radius:    8,
			Intensity: 0.6,
			Color:     color.NRGBA{255, 200, 100, 255}, // Warm torch light
		},
	}
}

// Sky returns the clear color.
func (m *Manager) Sky() color.NRGBA { return m.sky }

// SetFog sets where fog begins and where it fully hides geometry.
func (m *Manager) SetFog(start, end float64) {
	if end <= start {
		end = start + 1
	}
	m.fogStart, m.fogEnd = start, end
}

// FogFactor returns 0 for no fog and 1 for fully fogged at distance d.
func (m *Manager) FogFactor(d float64) float64 {
	switch {
	case d <= m.fogStart:
		return 0
	case d >= m.fogEnd:
		return 1
	default:
		return (d - m.fogStart) / (m.fogEnd - m.fogStart)
	}
}

// EnablePlayerLight turns on/off the player's light source
func (m *Manager) EnablePlayerLight(enabled bool) {
	m.playerLightOn = enabled
}

// IsPlayerLightOn returns whether the player's light is currently on
func (m *Manager) IsPlayerLightOn() bool {
	return m.playerLightOn
}

// UpdatePlayerLightPosition updates the player's light position (called each frame)
func (m *Manager) UpdatePlayerLightPosition(x, y, z float64) {
	m.playerLight.X, m.playerLight.Y, m.playerLight.Z = x, y, z
}

// Shade returns base as seen at world point (x, y, z), which is d units from
// the camera. Channels are 0..1 for vertex colors.
func (m *Manager) Shade(base color.NRGBA, x, y, z, d float64) (r, g, b float32) {
	lr := float64(m.ambient.R) / 255 * 2.5
	lg := float64(m.ambient.G) / 255 * 2.5
	lb := float64(m.ambient.B) / 255 * 2.5

	if m.playerLightOn {
		pl := m.playerLight
		dist := math.Sqrt((x-pl.X)*(x-pl.X) + (y-pl.Y)*(y-pl.Y) + (z-pl.Z)*(z-pl.Z))
		if dist < pl.Radius {
			k := pl.Intensity * (1 - dist/pl.Radius)
			lr += k * float64(pl.Color.R) / 255
			lg += k * float64(pl.Color.G) / 255
			lb += k * float64(pl.Color.B) / 255
		}
	}

	f := m.FogFactor(d)
	mix := func(c uint8, light float64, sky uint8) float32 {
		lit := math.Min(1, float64(c)/255*light)
		return float32(lit*(1-f) + float64(sky)/255*f)
	}
	return mix(base.R, lr, m.sky.R), mix(base.G, lg, m.sky.G), mix(base.B, lb, m.sky.B)
}
