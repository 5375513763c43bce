package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/nightwood/internal/inventory"
)

const (
	// ChestCapacity is the slot count of a standard chest.
	ChestCapacity = 15
	// SmallChestCapacity is the smallest container variant.
	SmallChestCapacity = 2

	chestOpenAngle = 110.0
	chestLidRate   = 0.15
	chestCenterY   = 0.4
)

// Chest is a lootable container. IsOpen is the gameplay state; LidAngle is a
// smoothed value for the renderer and must not drive logic.
type Chest struct {
	base
	open     bool
	lid      float64
	capacity int
	items    []inventory.Item
}

// NewChest creates a closed chest. Loot beyond capacity is dropped.
func NewChest(capacity int, loot []inventory.Item) *Chest {
	if capacity < SmallChestCapacity {
		capacity = SmallChestCapacity
	}
	if len(loot) > capacity {
		loot = loot[:capacity]
	}
	items := make([]inventory.Item, 0, capacity)
	for _, it := range loot {
		if !it.Empty() {
			items = append(items, it)
		}
	}
	return &Chest{capacity: capacity, items: items}
}

// DefaultLoot is what a freshly generated chest holds.
func DefaultLoot() []inventory.Item {
	return []inventory.Item{
		{Name: "Iron Sword", Icon: "icon_sword", Type: inventory.TypeWeapon},
		{Name: "Potion", Icon: "mushroom_cap", Type: inventory.TypeMisc},
	}
}

func (c *Chest) Kind() Kind { return KindChest }

func (c *Chest) Update(dt float64, _ *Env) {
	target := 0.0
	if c.open {
		target = chestOpenAngle
	}
	c.lid += (target - c.lid) * math.Min(1, chestLidRate*dt)
}

func (c *Chest) Center() mgl64.Vec3 {
	return c.pos.Add(mgl64.Vec3{0, chestCenterY, 0})
}

func (c *Chest) IsOpen() bool      { return c.open }
func (c *Chest) SetOpen(open bool) { c.open = open }
func (c *Chest) Capacity() int     { return c.capacity }

// LidAngle is the current visual hinge angle in degrees.
func (c *Chest) LidAngle() float64 { return c.lid }

// Items returns a copy of the chest contents in slot order.
func (c *Chest) Items() []inventory.Item {
	out := make([]inventory.Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Chest) SetItems(items []inventory.Item) {
	if len(items) > c.capacity {
		panic("entity: chest overfilled")
	}
	c.items = append(c.items[:0:0], items...)
}
