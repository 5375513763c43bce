package game

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Player represents the player's physical state in the world. Pos is the
// feet position; the camera sits EyeHeight above the ground under it.
type Player struct {
	Pos      mgl64.Vec3
	Yaw      float64 // degrees, 0 faces +Z, 90 faces +X
	Pitch    float64 // degrees, positive looks up
	VelY     float64 // vertical speed per tick
	Grounded bool
	Flying   bool

	// Active is the selected hotbar slot (0-8).
	Active int

	// CamY is the smoothed camera height.
	CamY float64

	Attacking bool
	AnimT     float64 // swing progress in radians, 0..pi

	lastStep float64 // session clock at the last footstep
}

// Eye returns the camera position.
func (p *Player) Eye() mgl64.Vec3 {
	return mgl64.Vec3{p.Pos.X(), p.CamY, p.Pos.Z()}
}

// FrameInput is one tick of player input, already translated from keys and
// mouse by the Manager. Edge fields are true only on the tick the key went
// down.
type FrameInput struct {
	Forward, Back, Left, Right bool
	Jump                       bool // held; ascends while flying
	Descend                    bool // held; descends while flying

	FlyToggle bool
	Interact  bool
	Inventory bool
	Pause     bool
	Menu      bool
	Start     bool
	Attack    bool

	// Hotbar selects slot Hotbar-1 when in 1..9.
	Hotbar int

	MouseDX, MouseDY float64

	PointerX, PointerY int
	PointerDown        bool
	PointerUp          bool
}

func (in FrameInput) moving() bool {
	return in.Forward || in.Back || in.Left || in.Right
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}

// View is a read-only summary of one tick for the observer feed and the
// debug overlay.
type View struct {
	Tick     uint64         `json:"tick"`
	Mode     string         `json:"mode"`
	Clock    float64        `json:"clock"`
	Seed     int64          `json:"seed"`
	Player   PlayerView     `json:"player"`
	Target   uint64         `json:"target,omitempty"`
	OpenBox  uint64         `json:"open_chest,omitempty"`
	Items    int            `json:"items"`
	Counters map[string]int `json:"counters,omitempty"`
	Entities []EntityView   `json:"entities"`
}

type PlayerView struct {
	Pos    [3]float64 `json:"pos"`
	Yaw    float64    `json:"yaw"`
	Pitch  float64    `json:"pitch"`
	Flying bool       `json:"flying,omitempty"`
	Active int        `json:"active"`
	Held   string     `json:"held,omitempty"`
}

type EntityView struct {
	ID   uint64     `json:"id"`
	Kind string     `json:"kind"`
	Pos  [3]float64 `json:"pos"`
	Yaw  float64    `json:"yaw"`
	Open bool       `json:"open,omitempty"`
}

func vec(v mgl64.Vec3) [3]float64 { return [3]float64{v.X(), v.Y(), v.Z()} }
