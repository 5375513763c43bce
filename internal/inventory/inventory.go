// Package inventory provides the player's slot-based inventory: typed slot
// groups, the drag-and-drop protocol between them, and the link to an opened
// chest. Items are never created or destroyed by a drag; an item in flight
// lives on the cursor and nowhere else.
package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrChestDrag is returned by Save while an item lifted from the chest is on
// the cursor; that item belongs to the chest and is not part of Contents.
var ErrChestDrag = errors.New("inventory: chest item on the cursor")

// Container is an openable item holder the inventory can link to, such as a
// chest. Its items form a dense list of at most Capacity entries.
type Container interface {
	IsOpen() bool
	SetOpen(open bool)
	Capacity() int
	Items() []Item
	SetItems(items []Item)
}

type drag struct {
	item   Item
	source SlotRef
}

// Inventory holds the player's armor, backpack and hotbar, the opened
// container (if any) and the drag cursor.
type Inventory struct {
	armor    [ArmorSlots]Item
	backpack [BackpackSlots]Item
	hotbar   [HotbarSlots]Item

	container Container
	cursor    *drag

	// OnChange is called after any mutation (for UI updates).
	OnChange func()
}

// New creates an empty inventory.
func New() *Inventory {
	return &Inventory{}
}

func (inv *Inventory) group(g Group) []Item {
	switch g {
	case GroupHotbar:
		return inv.hotbar[:]
	case GroupBackpack:
		return inv.backpack[:]
	case GroupArmor:
		return inv.armor[:]
	default:
		panic(fmt.Sprintf("inventory: group %s has no fixed slots", g))
	}
}

// mustIndex panics on an index outside the group's configured range.
func (inv *Inventory) mustIndex(ref SlotRef) {
	n := 0
	switch ref.Group {
	case GroupHotbar:
		n = HotbarSlots
	case GroupBackpack:
		n = BackpackSlots
	case GroupArmor:
		n = ArmorSlots
	case GroupChest:
		n = -1
		if inv.container != nil {
			n = inv.container.Capacity()
		}
		if n < 0 {
			return
		}
	default:
		panic(fmt.Sprintf("inventory: unknown slot group %d", int(ref.Group)))
	}
	if ref.Index < 0 || ref.Index >= n {
		panic(fmt.Sprintf("inventory: slot %s out of range", ref))
	}
}

// Slot returns the item at ref, or the zero Item when it is empty. Chest slots
// read as empty when no chest is linked.
func (inv *Inventory) Slot(ref SlotRef) Item {
	inv.mustIndex(ref)
	if ref.Group == GroupChest {
		if inv.container == nil {
			return Item{}
		}
		items := inv.container.Items()
		if ref.Index < len(items) {
			return items[ref.Index]
		}
		return Item{}
	}
	return inv.group(ref.Group)[ref.Index]
}

// Accepts reports whether item may be dropped into ref.
//
// Hotbar slots below WeaponSlots take weapons only, armor slots never take
// weapons, a chest slot needs a linked open chest with room (or an occupant to
// swap with). Everything else takes anything.
func (inv *Inventory) Accepts(ref SlotRef, item Item) bool {
	inv.mustIndex(ref)
	if item.Empty() {
		return false
	}
	switch ref.Group {
	case GroupHotbar:
		return ref.Index >= WeaponSlots || item.IsWeapon()
	case GroupArmor:
		return !item.IsWeapon()
	case GroupChest:
		c := inv.container
		if c == nil || !c.IsOpen() {
			return false
		}
		n := len(c.Items())
		return ref.Index < n || n < c.Capacity()
	default:
		return true
	}
}

// holds reports whether ref may end up holding item by any route, including a
// swap that sends item back to ref as the displaced occupant. Weapon hotbar
// slots may be left with a displaced non-weapon; armor never holds a weapon.
func holds(ref SlotRef, item Item) bool {
	return ref.Group != GroupArmor || !item.IsWeapon()
}

// Set places item directly into ref, replacing whatever was there. It is for
// setup and restore, not for player moves. It reports false if the slot's
// acceptance rule rejects the item.
func (inv *Inventory) Set(ref SlotRef, item Item) bool {
	if item.Empty() {
		inv.clear(ref)
		inv.notifyChange()
		return true
	}
	if !inv.Accepts(ref, item) {
		return false
	}
	inv.put(ref, item)
	inv.notifyChange()
	return true
}

// put writes item into ref and returns the previous occupant. For a chest, an
// index past the end of the list appends.
func (inv *Inventory) put(ref SlotRef, item Item) Item {
	if ref.Group != GroupChest {
		slots := inv.group(ref.Group)
		prev := slots[ref.Index]
		slots[ref.Index] = item
		return prev
	}
	items := inv.container.Items()
	if ref.Index < len(items) {
		prev := items[ref.Index]
		items[ref.Index] = item
		inv.container.SetItems(items)
		return prev
	}
	inv.container.SetItems(append(items, item))
	return Item{}
}

// clear empties ref. Removing a chest entry shifts the rest of the list down.
func (inv *Inventory) clear(ref SlotRef) {
	if ref.Group != GroupChest {
		inv.group(ref.Group)[ref.Index] = Item{}
		return
	}
	if inv.container == nil {
		return
	}
	items := inv.container.Items()
	if ref.Index < len(items) {
		inv.container.SetItems(append(items[:ref.Index], items[ref.Index+1:]...))
	}
}

// --- Drag and drop ---

// Dragging returns the item on the cursor and where it came from.
func (inv *Inventory) Dragging() (Item, SlotRef, bool) {
	if inv.cursor == nil {
		return Item{}, SlotRef{}, false
	}
	return inv.cursor.item, inv.cursor.source, true
}

// BeginDrag lifts the item at ref onto the cursor. The slot is emptied at once
// (a chest entry is removed from the list). It is a no-op returning false when
// a drag is already in progress, the slot is empty, or ref is a chest slot
// while no chest is open.
func (inv *Inventory) BeginDrag(ref SlotRef) bool {
	if inv.cursor != nil {
		return false
	}
	if ref.Group == GroupChest && (inv.container == nil || !inv.container.IsOpen()) {
		return false
	}
	item := inv.Slot(ref)
	if item.Empty() {
		return false
	}
	inv.clear(ref)
	inv.cursor = &drag{item: item, source: ref}
	inv.notifyChange()
	return true
}

// EndDrag drops the cursor item. hits are the slots under the pointer; they are
// tried in group priority order (hotbar, backpack, armor, chest) and a slot
// whose rule rejects the item is skipped in favour of the next one, as is a
// slot whose occupant could not go back to the drag source (a weapon into
// armor). The first accepting slot receives the item and any occupant is
// swapped back into the drag source. With no accepting slot the item returns
// to its source.
// It reports whether the item landed somewhere other than by cancellation,
// and is a no-op returning false when nothing is being dragged.
func (inv *Inventory) EndDrag(hits ...SlotRef) bool {
	if inv.cursor == nil {
		return false
	}
	d := *inv.cursor

	ordered := append([]SlotRef(nil), hits...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Group < ordered[j].Group })

	for _, ref := range ordered {
		if !inv.Accepts(ref, d.item) {
			continue
		}
		if prev := inv.Slot(ref); !prev.Empty() && !holds(d.source, prev) {
			continue
		}
		inv.cursor = nil
		if prev := inv.put(ref, d.item); !prev.Empty() {
			inv.returnToSource(prev, d.source)
		}
		inv.notifyChange()
		return true
	}

	inv.CancelDrag()
	return false
}

// CancelDrag returns the cursor item to its source slot.
func (inv *Inventory) CancelDrag() {
	if inv.cursor == nil {
		return
	}
	d := *inv.cursor
	inv.cursor = nil
	inv.returnToSource(d.item, d.source)
	inv.notifyChange()
}

// returnToSource puts item back where the drag began. The source's acceptance
// rule is not consulted, so a displaced non-weapon can land in a weapon slot.
// EndDrag never lets a weapon be displaced into armor.
// A chest source appends to the chest list.
func (inv *Inventory) returnToSource(item Item, src SlotRef) {
	if src.Group != GroupChest {
		inv.group(src.Group)[src.Index] = item
		return
	}
	if inv.container != nil && len(inv.container.Items()) < inv.container.Capacity() {
		inv.container.SetItems(append(inv.container.Items(), item))
		return
	}
	// CloseContainer cancels drags before unlinking, so this is only reachable
	// through misuse of the Container.
	if !inv.AddItem(item) {
		panic(fmt.Sprintf("inventory: nowhere to return %q", item.Name))
	}
}

// --- Chest linkage ---

// OpenContainer opens c and links it as the chest group. Any previously linked
// container is closed first.
func (inv *Inventory) OpenContainer(c Container) {
	if c == nil {
		return
	}
	if inv.container != nil && inv.container != c {
		inv.CloseContainer()
	}
	c.SetOpen(true)
	inv.container = c
	inv.notifyChange()
}

// CloseContainer closes and unlinks the opened container. An in-flight drag is
// cancelled first, so an item lifted from the chest goes back into it.
func (inv *Inventory) CloseContainer() {
	inv.CancelDrag()
	if inv.container == nil {
		return
	}
	inv.container.SetOpen(false)
	inv.container = nil
	inv.notifyChange()
}

// Container returns the linked container.
func (inv *Inventory) Container() (Container, bool) {
	return inv.container, inv.container != nil
}

// --- Queries ---

// AddItem puts item into the first free slot that accepts it: weapon slots
// for weapons, then the rest of the hotbar, then the backpack. It reports
// false when there is no room.
func (inv *Inventory) AddItem(item Item) bool {
	if item.Empty() {
		return false
	}
	refs := make([]SlotRef, 0, HotbarSlots+BackpackSlots)
	if item.IsWeapon() {
		for i := 0; i < WeaponSlots; i++ {
			refs = append(refs, Hotbar(i))
		}
	}
	for i := WeaponSlots; i < HotbarSlots; i++ {
		refs = append(refs, Hotbar(i))
	}
	for i := 0; i < BackpackSlots; i++ {
		refs = append(refs, Backpack(i))
	}
	for _, ref := range refs {
		if inv.Slot(ref).Empty() {
			inv.group(ref.Group)[ref.Index] = item
			inv.notifyChange()
			return true
		}
	}
	return false
}

// Items returns every item the inventory can reach: its own slots, the linked
// chest and the cursor.
func (inv *Inventory) Items() []Item {
	var out []Item
	for _, g := range []Group{GroupHotbar, GroupBackpack, GroupArmor} {
		for _, it := range inv.group(g) {
			if !it.Empty() {
				out = append(out, it)
			}
		}
	}
	if inv.container != nil {
		out = append(out, inv.container.Items()...)
	}
	if inv.cursor != nil {
		out = append(out, inv.cursor.item)
	}
	return out
}

// Count returns len(Items()).
func (inv *Inventory) Count() int { return len(inv.Items()) }

// notifyChange calls the OnChange callback if set
func (inv *Inventory) notifyChange() {
	if inv.OnChange != nil {
		inv.OnChange()
	}
}

// --- Serialization ---

// Contents is the persistent form of the player's own slot groups. Empty
// slots are zero Items.
type Contents struct {
	Armor    []Item `json:"armor"`
	Backpack []Item `json:"backpack"`
	Hotbar   []Item `json:"hotbar"`
}

// Contents captures the player's slots. A drag in flight from one of them is
// reported in its source slot; an item lifted from the chest is not included.
func (inv *Inventory) Contents() Contents {
	c := Contents{
		Armor:    append([]Item(nil), inv.armor[:]...),
		Backpack: append([]Item(nil), inv.backpack[:]...),
		Hotbar:   append([]Item(nil), inv.hotbar[:]...),
	}
	if d := inv.cursor; d != nil {
		switch d.source.Group {
		case GroupHotbar:
			c.Hotbar[d.source.Index] = d.item
		case GroupBackpack:
			c.Backpack[d.source.Index] = d.item
		case GroupArmor:
			c.Armor[d.source.Index] = d.item
		}
	}
	return c
}

// Restore replaces the player's slots with c. It accepts any state the drag
// protocol can produce, so a displaced non-weapon in a weapon slot loads back.
// Unknown item types and weapons in armor are rejected. The cursor and
// container link are cleared.
func (inv *Inventory) Restore(c Contents) error {
	if len(c.Armor) != ArmorSlots || len(c.Backpack) != BackpackSlots || len(c.Hotbar) != HotbarSlots {
		return fmt.Errorf("inventory contents have wrong shape: armor=%d backpack=%d hotbar=%d",
			len(c.Armor), len(c.Backpack), len(c.Hotbar))
	}
	next := New()
	for g, items := range map[Group][]Item{GroupArmor: c.Armor, GroupBackpack: c.Backpack, GroupHotbar: c.Hotbar} {
		for i, it := range items {
			if it.Empty() {
				continue
			}
			if it.Type != TypeWeapon && it.Type != TypeMisc {
				return fmt.Errorf("item %q has unknown type %q", it.Name, it.Type)
			}
			if !holds(SlotRef{g, i}, it) {
				return fmt.Errorf("item %q not allowed in %s", it.Name, SlotRef{g, i})
			}
			next.group(g)[i] = it
		}
	}
	if inv.container != nil {
		inv.container.SetOpen(false)
	}
	inv.armor, inv.backpack, inv.hotbar = next.armor, next.backpack, next.hotbar
	inv.container, inv.cursor = nil, nil
	inv.notifyChange()
	return nil
}

// Save writes the inventory to a file. It fails with ErrChestDrag while a
// chest item is being dragged.
func (inv *Inventory) Save(filepath string) error {
	if inv.cursor != nil && inv.cursor.source.Group == GroupChest {
		return ErrChestDrag
	}
	data, err := json.MarshalIndent(inv.Contents(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize inventory: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write inventory file: %w", err)
	}

	return nil
}

// Load reads an inventory from a file
func Load(filepath string) (*Inventory, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory file: %w", err)
	}

	var c Contents
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse inventory: %w", err)
	}

	inv := New()
	if err := inv.Restore(c); err != nil {
		return nil, fmt.Errorf("failed to restore inventory: %w", err)
	}
	return inv, nil
}
