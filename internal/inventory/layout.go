package inventory

import "image"

// Layout is the on-screen geometry of the inventory panel, used to turn a
// pointer position into slot references. Coordinates are in screen pixels.
type Layout struct {
	Scale float64
	Panel image.Rectangle
	Chest image.Rectangle
	Slots []SlotRect
}

// SlotRect is one slot's screen rectangle.
type SlotRect struct {
	Ref  SlotRef
	Rect image.Rectangle
}

// NewLayout computes the panel for a screen of the given size. The panel is
// designed at 1080p and scaled, within [0.6, 1.5], to the screen height.
func NewLayout(width, height int) Layout {
	scale := float64(height) / 1080.0
	if scale < 0.6 {
		scale = 0.6
	}
	if scale > 1.5 {
		scale = 1.5
	}
	s := func(v int) int { return int(float64(v) * scale) }

	pw, ph := s(800), s(800)
	px, py := width/2-pw/2, height/2-ph/2
	slot := s(75)

	l := Layout{
		Scale: scale,
		Panel: image.Rect(px, py, px+pw, py+ph),
	}
	add := func(ref SlotRef, x, y int) {
		l.Slots = append(l.Slots, SlotRect{Ref: ref, Rect: image.Rect(x, y, x+slot, y+slot)})
	}

	for i := 0; i < ArmorSlots; i++ {
		add(Armor(i), px+s(170), py+s(100)+i*(slot+s(10)))
	}
	for i := 0; i < BackpackSlots; i++ {
		add(Backpack(i), px+s(550)+(i%2)*(slot+s(10)), py+s(100)+(i/2)*(slot+s(10)))
	}
	for i := 0; i < HotbarSlots; i++ {
		add(Hotbar(i), px+s(55)+i*(slot+s(5)), py+ph-s(120))
	}

	cx, cy := px+pw+s(30), py
	l.Chest = image.Rect(cx, cy, cx+pw, cy+ph)
	for i := 0; i < 15; i++ {
		add(Chest(i), cx+s(60)+(i%5)*(slot+s(10)), cy+s(100)+(i/5)*(slot+s(10)))
	}
	return l
}

// HitTest returns the slots strictly containing (x, y). Chest slots are only
// considered when chestShown is set; slots past capacity are never returned.
func (l Layout) HitTest(x, y int, chestShown bool, chestCapacity int) []SlotRef {
	var hits []SlotRef
	for _, sr := range l.Slots {
		if sr.Ref.Group == GroupChest && (!chestShown || sr.Ref.Index >= chestCapacity) {
			continue
		}
		r := sr.Rect
		if x > r.Min.X && x < r.Max.X && y > r.Min.Y && y < r.Max.Y {
			hits = append(hits, sr.Ref)
		}
	}
	return hits
}

// Rect returns the rectangle for ref.
func (l Layout) Rect(ref SlotRef) (image.Rectangle, bool) {
	for _, sr := range l.Slots {
		if sr.Ref == ref {
			return sr.Rect, true
		}
	}
	return image.Rectangle{}, false
}

// HitTestInventory is HitTest using inv's linked chest.
func (l Layout) HitTestInventory(inv *Inventory, x, y int) []SlotRef {
	c, ok := inv.Container()
	if !ok || !c.IsOpen() {
		return l.HitTest(x, y, false, 0)
	}
	return l.HitTest(x, y, true, c.Capacity())
}
