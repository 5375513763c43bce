package inventory

import "testing"

func center(t *testing.T, l Layout, ref SlotRef) (int, int) {
	t.Helper()
	r, ok := l.Rect(ref)
	if !ok {
		t.Fatalf("no rect for %s", ref)
	}
	return (r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2
}

func TestLayoutScaleIsClamped(t *testing.T) {
	cases := []struct {
		h    int
		want float64
	}{
		{1080, 1.0},
		{400, 0.6},
		{2160, 1.5},
	}
	for _, c := range cases {
		if got := NewLayout(1920, c.h).Scale; got != c.want {
			t.Errorf("Expected scale %v for height %d, got %v", c.want, c.h, got)
		}
	}
}

func TestLayoutHasEverySlot(t *testing.T) {
	l := NewLayout(1920, 1080)
	want := HotbarSlots + BackpackSlots + ArmorSlots + 15
	if len(l.Slots) != want {
		t.Errorf("Expected %d slot rects, got %d", want, len(l.Slots))
	}
}

func TestHitTestSlotCenters(t *testing.T) {
	l := NewLayout(1920, 1080)
	for _, ref := range []SlotRef{Hotbar(0), Hotbar(8), Backpack(3), Armor(2)} {
		x, y := center(t, l, ref)
		hits := l.HitTest(x, y, false, 0)
		if len(hits) != 1 || hits[0] != ref {
			t.Errorf("Expected hit %s, got %v", ref, hits)
		}
	}
}

func TestHitTestEdgesAreExclusive(t *testing.T) {
	l := NewLayout(1920, 1080)
	r, _ := l.Rect(Backpack(0))
	if hits := l.HitTest(r.Min.X, r.Min.Y+5, false, 0); len(hits) != 0 {
		t.Errorf("Expected no hit on the left edge, got %v", hits)
	}
	if hits := l.HitTest(r.Min.X+1, r.Min.Y+1, false, 0); len(hits) != 1 {
		t.Errorf("Expected a hit just inside, got %v", hits)
	}
}

func TestHitTestChestSlotsNeedOpenChest(t *testing.T) {
	l := NewLayout(1920, 1080)
	x, y := center(t, l, Chest(4))

	if hits := l.HitTest(x, y, false, 15); len(hits) != 0 {
		t.Errorf("Expected chest slots hidden, got %v", hits)
	}
	if hits := l.HitTest(x, y, true, 2); len(hits) != 0 {
		t.Errorf("Expected slot past capacity ignored, got %v", hits)
	}
	if hits := l.HitTest(x, y, true, 15); len(hits) != 1 || hits[0] != Chest(4) {
		t.Errorf("Expected chest[4], got %v", hits)
	}
}

func TestHitTestInventoryFollowsLinkedChest(t *testing.T) {
	l := NewLayout(1920, 1080)
	inv := New()
	x, y := center(t, l, Chest(0))

	if hits := l.HitTestInventory(inv, x, y); len(hits) != 0 {
		t.Errorf("Expected no chest hit while closed, got %v", hits)
	}
	inv.OpenContainer(&testChest{capacity: 15})
	if hits := l.HitTestInventory(inv, x, y); len(hits) != 1 || hits[0] != Chest(0) {
		t.Errorf("Expected chest[0] once open, got %v", hits)
	}
}
