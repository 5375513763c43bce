package inventory

import "fmt"

// ItemType tags what an item can be used for.
type ItemType string

const (
	TypeWeapon ItemType = "weapon"
	TypeMisc   ItemType = "misc"
)

// Item is a plain value; two items with equal fields are interchangeable.
// The zero Item marks an empty slot.
type Item struct {
	Name string   `json:"name"`
	Icon string   `json:"icon,omitempty"` // texture handle name; may be unresolvable
	Type ItemType `json:"type"`
}

// Empty reports whether this is the empty-slot value.
func (it Item) Empty() bool { return it.Name == "" }

func (it Item) IsWeapon() bool { return it.Type == TypeWeapon }

// Group is one of the disjoint slot containers. The declaration order is the
// priority order used when resolving a drop.
type Group int

const (
	GroupHotbar Group = iota
	GroupBackpack
	GroupArmor
	GroupChest
)

func (g Group) String() string {
	switch g {
	case GroupHotbar:
		return "hotbar"
	case GroupBackpack:
		return "backpack"
	case GroupArmor:
		return "armor"
	case GroupChest:
		return "chest"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// Slot counts for the player's own groups.
const (
	HotbarSlots   = 9
	BackpackSlots = 8
	ArmorSlots    = 4

	// WeaponSlots is how many leading hotbar slots only take weapons.
	WeaponSlots = 2
)

// SlotRef addresses one slot.
type SlotRef struct {
	Group Group
	Index int
}

func Hotbar(i int) SlotRef   { return SlotRef{GroupHotbar, i} }
func Backpack(i int) SlotRef { return SlotRef{GroupBackpack, i} }
func Armor(i int) SlotRef    { return SlotRef{GroupArmor, i} }
func Chest(i int) SlotRef    { return SlotRef{GroupChest, i} }

func (r SlotRef) String() string { return fmt.Sprintf("%s[%d]", r.Group, r.Index) }
