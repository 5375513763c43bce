package game

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/nightwood/internal/core/gamestate"
	"chosenoffset.com/nightwood/internal/entity"
	"chosenoffset.com/nightwood/internal/inventory"
)

const dt = 1.0 / 60.0

type recorder struct {
	played []string
}

func (r *recorder) Play(name string) { r.played = append(r.played, name) }

func (r *recorder) count(name string) int {
	n := 0
	for _, p := range r.played {
		if p == name {
			n++
		}
	}
	return n
}

func newPlaying(t *testing.T) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := NewSession(nil, rec)
	s.Tick(dt, FrameInput{Start: true})
	if s.State.Mode() != gamestate.Playing {
		t.Fatalf("Expected Playing after start, got %s", s.State.Mode())
	}
	return s, rec
}

func starterChest(t *testing.T, s *Session) *entity.Chest {
	t.Helper()
	e, ok := s.Registry.ByID(1)
	if !ok {
		t.Fatal("Expected a starter chest")
	}
	c, ok := e.(*entity.Chest)
	if !ok {
		t.Fatalf("Expected entity 1 to be a chest, got %s", e.Kind())
	}
	return c
}

// aimAt stands the player at (x, z) looking straight at p.
func aimAt(s *Session, x, z float64, p mgl64.Vec3) {
	ground := s.Field.Height(x, z)
	s.Player.Pos = mgl64.Vec3{x, ground, z}
	s.Player.CamY = ground + s.Config.Player.EyeHeight
	s.Player.Grounded = true
	d := p.Sub(s.Player.Eye())
	s.Player.Yaw = mgl64.RadToDeg(math.Atan2(d.X(), d.Z()))
	s.Player.Pitch = mgl64.RadToDeg(math.Atan2(d.Y(), math.Hypot(d.X(), d.Z())))
}

func openStarterChest(t *testing.T, s *Session) *entity.Chest {
	t.Helper()
	c := starterChest(t, s)
	aimAt(s, 0, 2, c.Center())
	s.Tick(dt, FrameInput{Interact: true})
	if s.State.Mode() != gamestate.InventoryOpen {
		t.Fatalf("Expected InventoryOpen after interacting, got %s", s.State.Mode())
	}
	return c
}

func creaturePositions(s *Session) map[uint64]mgl64.Vec3 {
	out := map[uint64]mgl64.Vec3{}
	for _, e := range s.Registry.All() {
		if e.Kind().IsCreature() {
			out[e.ID()] = e.Position()
		}
	}
	return out
}

func pointerAt(t *testing.T, s *Session, ref inventory.SlotRef) (int, int) {
	t.Helper()
	r, ok := s.Layout().Rect(ref)
	if !ok {
		t.Fatalf("no rect for %s", ref)
	}
	return (r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2
}

func TestSessionStartsInMenu(t *testing.T) {
	s := NewSession(nil, nil)
	if s.State.Mode() != gamestate.Menu {
		t.Errorf("Expected Menu, got %s", s.State.Mode())
	}
	before := creaturePositions(s)
	for i := 0; i < 30; i++ {
		s.Tick(dt, FrameInput{Forward: true})
	}
	if s.Ticks() != 0 {
		t.Errorf("Expected no simulated ticks in the menu, got %d", s.Ticks())
	}
	for id, p := range creaturePositions(s) {
		if p != before[id] {
			t.Errorf("Expected creature %d frozen in the menu", id)
		}
	}
}

func TestCreaturesMoveOnlyWhilePlaying(t *testing.T) {
	s, _ := newPlaying(t)

	before := creaturePositions(s)
	for i := 0; i < 30; i++ {
		s.Tick(dt, FrameInput{})
	}
	moved := false
	for id, p := range creaturePositions(s) {
		if p != before[id] {
			moved = true
		}
	}
	if !moved {
		t.Fatal("Expected creatures to move while playing")
	}

	s.Tick(dt, FrameInput{Pause: true})
	if s.State.Mode() != gamestate.Paused {
		t.Fatalf("Expected Paused, got %s", s.State.Mode())
	}
	frozen := creaturePositions(s)
	player := s.Player.Pos
	for i := 0; i < 30; i++ {
		s.Tick(dt, FrameInput{Forward: true, MouseDX: 50})
	}
	for id, p := range creaturePositions(s) {
		if p != frozen[id] {
			t.Errorf("Expected creature %d frozen while paused", id)
		}
	}
	if s.Player.Pos != player || s.Player.Yaw != 0 {
		t.Error("Expected the player to ignore movement while paused")
	}

	s.Tick(dt, FrameInput{Pause: true})
	s.Tick(dt, FrameInput{Inventory: true})
	if s.State.Mode() != gamestate.InventoryOpen {
		t.Fatalf("Expected InventoryOpen, got %s", s.State.Mode())
	}
	frozen = creaturePositions(s)
	for i := 0; i < 30; i++ {
		s.Tick(dt, FrameInput{})
	}
	for id, p := range creaturePositions(s) {
		if p != frozen[id] {
			t.Errorf("Expected creature %d frozen while the inventory is open", id)
		}
	}
}

func TestInteractOpensTargetedChest(t *testing.T) {
	s, rec := newPlaying(t)
	c := openStarterChest(t, s)

	linked, ok := s.Inventory.Container()
	if !ok || linked != entity.Container(c) {
		t.Fatal("Expected the starter chest to be linked")
	}
	if !c.IsOpen() {
		t.Error("Expected the chest to be open")
	}
	if rec.count(SoundChestOpen) != 1 {
		t.Errorf("Expected one chest_open sound, got %v", rec.played)
	}
	if got := s.State.Counter(gamestate.CounterChestsOpened); got != 1 {
		t.Errorf("Expected chests_opened 1, got %d", got)
	}
}

func TestInteractWithNothingInViewIsNoop(t *testing.T) {
	s, rec := newPlaying(t)
	s.Player.Yaw = 180 // starter chest is behind
	s.Tick(dt, FrameInput{Interact: true})
	if s.State.Mode() != gamestate.Playing {
		t.Errorf("Expected to stay Playing, got %s", s.State.Mode())
	}
	if rec.count(SoundChestOpen) != 0 {
		t.Error("Expected no chest_open sound")
	}
}

func TestCloseInventoryUnlinksChest(t *testing.T) {
	s, _ := newPlaying(t)
	c := openStarterChest(t, s)

	s.Tick(dt, FrameInput{Inventory: true})
	if s.State.Mode() != gamestate.Playing {
		t.Fatalf("Expected Playing, got %s", s.State.Mode())
	}
	if _, ok := s.Inventory.Container(); ok {
		t.Error("Expected no linked container")
	}
	if c.IsOpen() {
		t.Error("Expected the chest closed")
	}
}

func TestPointerDragFromChestToHotbar(t *testing.T) {
	s, _ := newPlaying(t)
	c := openStarterChest(t, s)

	x, y := pointerAt(t, s, inventory.Chest(0))
	s.Tick(dt, FrameInput{PointerDown: true, PointerX: x, PointerY: y})
	if _, src, ok := s.Inventory.Dragging(); !ok || src != inventory.Chest(0) {
		t.Fatalf("Expected a drag from chest[0], got %v %v", src, ok)
	}

	x, y = pointerAt(t, s, inventory.Hotbar(0))
	s.Tick(dt, FrameInput{PointerUp: true, PointerX: x, PointerY: y})

	if got := s.Inventory.Slot(inventory.Hotbar(0)); got.Name != "Iron Sword" {
		t.Errorf("Expected Iron Sword in hotbar[0], got %q", got.Name)
	}
	if items := c.Items(); len(items) != 1 || items[0].Name != "Potion" {
		t.Errorf("Expected only the Potion left in the chest, got %v", items)
	}
}

func TestClosingMidDragReturnsItemToChest(t *testing.T) {
	s, _ := newPlaying(t)
	c := openStarterChest(t, s)

	x, y := pointerAt(t, s, inventory.Chest(0))
	s.Tick(dt, FrameInput{PointerDown: true, PointerX: x, PointerY: y})
	s.Tick(dt, FrameInput{Pause: true})

	if s.State.Mode() != gamestate.Playing {
		t.Fatalf("Expected Playing, got %s", s.State.Mode())
	}
	if len(c.Items()) != 2 {
		t.Errorf("Expected both items back in the chest, got %v", c.Items())
	}
	if s.Inventory.Count() != 0 {
		t.Errorf("Expected an empty inventory, got %d items", s.Inventory.Count())
	}
}

func TestSwingNeedsWeapon(t *testing.T) {
	s, rec := newPlaying(t)

	s.Tick(dt, FrameInput{Attack: true})
	if s.Player.Attacking || rec.count(SoundSwing) != 0 {
		t.Fatal("Expected no swing with an empty hand")
	}

	s.Inventory.Set(inventory.Hotbar(0), inventory.Item{Name: "Iron Sword", Type: inventory.TypeWeapon})
	s.Tick(dt, FrameInput{Attack: true})
	if !s.Player.Attacking || rec.count(SoundSwing) != 1 {
		t.Fatal("Expected a swing with a sword in hand")
	}

	s.Tick(dt, FrameInput{Attack: true})
	if rec.count(SoundSwing) != 1 {
		t.Error("Expected no new swing while one is running")
	}

	for i := 0; i < 30 && s.Player.Attacking; i++ {
		s.Tick(dt, FrameInput{})
	}
	if s.Player.Attacking {
		t.Error("Expected the swing to finish")
	}
	if got := s.State.Counter(gamestate.CounterSwings); got != 1 {
		t.Errorf("Expected swings 1, got %d", got)
	}
}

func TestHotbarSelection(t *testing.T) {
	s, _ := newPlaying(t)
	s.Tick(dt, FrameInput{Hotbar: 5})
	if s.Player.Active != 4 {
		t.Errorf("Expected active slot 4, got %d", s.Player.Active)
	}
	s.Tick(dt, FrameInput{Hotbar: 12})
	if s.Player.Active != 4 {
		t.Errorf("Expected out-of-range selection ignored, got %d", s.Player.Active)
	}
}

func TestFootstepsRespectCooldown(t *testing.T) {
	s, rec := newPlaying(t)
	for i := 0; i < 60; i++ {
		s.Tick(dt, FrameInput{Forward: true})
	}
	steps := rec.count(SoundFootstep)
	// One second of walking with a 350ms cooldown.
	if steps < 2 || steps > 3 {
		t.Errorf("Expected 2-3 footsteps, got %d", steps)
	}
	if got := s.State.Counter(gamestate.CounterFootsteps); got != steps {
		t.Errorf("Expected footsteps counter %d, got %d", steps, got)
	}

	for i := 0; i < 60; i++ {
		s.Tick(dt, FrameInput{})
	}
	if rec.count(SoundFootstep) != steps {
		t.Error("Expected no footsteps while standing still")
	}
}

func TestMovementFollowsTerrain(t *testing.T) {
	s, _ := newPlaying(t)
	for i := 0; i < 200; i++ {
		s.Tick(dt, FrameInput{Forward: true, Right: true})
		p := s.Player.Pos
		if h := s.Field.Height(p.X(), p.Z()); p.Y() < h-1e-9 {
			t.Fatalf("tick %d: player below ground (%v < %v)", i, p.Y(), h)
		}
	}
	if s.Player.Pos.Z() <= 0 || s.Player.Pos.X() <= 0 {
		t.Errorf("Expected to move forward and right, got %v", s.Player.Pos)
	}
}

func TestJumpAndLand(t *testing.T) {
	s, _ := newPlaying(t)
	s.Tick(dt, FrameInput{Jump: true})
	if s.Player.Grounded {
		t.Fatal("Expected to leave the ground")
	}
	peak := s.Player.Pos.Y()
	for i := 0; i < 120 && !s.Player.Grounded; i++ {
		s.Tick(dt, FrameInput{})
		peak = math.Max(peak, s.Player.Pos.Y())
	}
	if !s.Player.Grounded {
		t.Fatal("Expected to land")
	}
	if peak <= s.Field.Height(0, 0) {
		t.Error("Expected the jump to rise")
	}
}

func TestFlyingHovers(t *testing.T) {
	s, rec := newPlaying(t)
	s.Tick(dt, FrameInput{FlyToggle: true})
	for i := 0; i < 20; i++ {
		s.Tick(dt, FrameInput{Jump: true})
	}
	height := s.Player.Pos.Y()
	if height <= s.Field.Height(0, 0) {
		t.Fatal("Expected to rise while flying")
	}
	before := rec.count(SoundFootstep)
	for i := 0; i < 60; i++ {
		s.Tick(dt, FrameInput{Forward: true})
	}
	if math.Abs(s.Player.Pos.Y()-height) > 1e-9 {
		t.Errorf("Expected to hover at %v, got %v", height, s.Player.Pos.Y())
	}
	if rec.count(SoundFootstep) != before {
		t.Error("Expected no footsteps while flying")
	}
}

func TestMouseLookClampsPitch(t *testing.T) {
	s, _ := newPlaying(t)
	s.Tick(dt, FrameInput{MouseDY: -10000, MouseDX: -50})
	if s.Player.Pitch != pitchLimit {
		t.Errorf("Expected pitch %v, got %v", pitchLimit, s.Player.Pitch)
	}
	if want := 360 - 50*s.Config.Player.MouseSensitivity; math.Abs(s.Player.Yaw-want) > 1e-9 {
		t.Errorf("Expected yaw %v, got %v", want, s.Player.Yaw)
	}
}

func TestReturnToMenuResetsSession(t *testing.T) {
	s, _ := newPlaying(t)
	c := openStarterChest(t, s)
	x, y := pointerAt(t, s, inventory.Chest(0))
	s.Tick(dt, FrameInput{PointerDown: true, PointerX: x, PointerY: y})
	x, y = pointerAt(t, s, inventory.Hotbar(0))
	s.Tick(dt, FrameInput{PointerUp: true, PointerX: x, PointerY: y})
	s.Tick(dt, FrameInput{Inventory: true})
	for i := 0; i < 10; i++ {
		s.Tick(dt, FrameInput{Forward: true})
	}

	s.Tick(dt, FrameInput{Pause: true})
	s.Tick(dt, FrameInput{Menu: true})
	if s.State.Mode() != gamestate.Menu {
		t.Fatalf("Expected Menu, got %s", s.State.Mode())
	}
	if s.Inventory.Count() != 0 {
		t.Errorf("Expected an empty inventory, got %d items", s.Inventory.Count())
	}
	if len(s.State.Counters()) != 0 {
		t.Errorf("Expected counters cleared, got %v", s.State.Counters())
	}
	if s.Ticks() != 0 || s.Player.Pos.X() != 0 || s.Player.Pos.Z() != 0 {
		t.Errorf("Expected the player back at spawn, got %v after %d ticks", s.Player.Pos, s.Ticks())
	}
	if fresh := starterChest(t, s); fresh == c || len(fresh.Items()) != 2 {
		t.Error("Expected a regenerated starter chest with its loot")
	}

	s.Tick(dt, FrameInput{Start: true})
	if s.State.Mode() != gamestate.Playing {
		t.Errorf("Expected a new game to start, got %s", s.State.Mode())
	}
}

func TestSnapshotRestore(t *testing.T) {
	s, _ := newPlaying(t)
	openStarterChest(t, s)
	x, y := pointerAt(t, s, inventory.Chest(0))
	s.Tick(dt, FrameInput{PointerDown: true, PointerX: x, PointerY: y})
	x, y = pointerAt(t, s, inventory.Hotbar(0))
	s.Tick(dt, FrameInput{PointerUp: true, PointerX: x, PointerY: y})
	s.Tick(dt, FrameInput{Inventory: true})
	for i := 0; i < 40; i++ {
		s.Tick(dt, FrameInput{Forward: true, MouseDX: 3})
	}

	snap := s.Snapshot()
	other := NewSession(nil, nil)
	if err := other.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if other.State.Mode() != gamestate.Playing {
		t.Errorf("Expected Playing, got %s", other.State.Mode())
	}
	if other.Ticks() != s.Ticks() || other.Clock() != s.Clock() {
		t.Errorf("Expected tick %d clock %v, got %d %v", s.Ticks(), s.Clock(), other.Ticks(), other.Clock())
	}
	if !other.Player.Pos.ApproxEqual(s.Player.Pos) || other.Player.Yaw != s.Player.Yaw {
		t.Errorf("Expected player at %v yaw %v, got %v yaw %v", s.Player.Pos, s.Player.Yaw, other.Player.Pos, other.Player.Yaw)
	}
	if got := other.Inventory.Slot(inventory.Hotbar(0)); got.Name != "Iron Sword" {
		t.Errorf("Expected Iron Sword in hotbar[0], got %q", got.Name)
	}
	if items := starterChest(t, other).Items(); len(items) != 1 || items[0].Name != "Potion" {
		t.Errorf("Expected the chest to hold only the Potion, got %v", items)
	}
	want := creaturePositions(s)
	for id, p := range creaturePositions(other) {
		if !p.ApproxEqual(want[id]) {
			t.Errorf("Expected creature %d at %v, got %v", id, want[id], p)
		}
	}
	if other.State.Counter(gamestate.CounterChestsOpened) != 1 {
		t.Error("Expected counters restored")
	}
}

func TestSwappedBreadInWeaponSlotSurvivesRestore(t *testing.T) {
	s, _ := newPlaying(t)
	sword := inventory.Item{Name: "Iron Sword", Icon: "icon_sword", Type: inventory.TypeWeapon}
	bread := inventory.Item{Name: "Bread", Icon: "icon_bread", Type: inventory.TypeMisc}
	if !s.Inventory.Set(inventory.Hotbar(0), sword) || !s.Inventory.Set(inventory.Backpack(3), bread) {
		t.Fatal("Expected setup to succeed")
	}

	s.Tick(dt, FrameInput{Inventory: true})
	x, y := pointerAt(t, s, inventory.Hotbar(0))
	s.Tick(dt, FrameInput{PointerDown: true, PointerX: x, PointerY: y})
	x, y = pointerAt(t, s, inventory.Backpack(3))
	s.Tick(dt, FrameInput{PointerUp: true, PointerX: x, PointerY: y})
	s.Tick(dt, FrameInput{Inventory: true})
	if got := s.Inventory.Slot(inventory.Hotbar(0)); got != bread {
		t.Fatalf("Expected Bread swapped into hotbar[0], got %q", got.Name)
	}

	other := NewSession(nil, nil)
	if err := other.Restore(s.Snapshot()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := other.Inventory.Slot(inventory.Hotbar(0)); got != bread {
		t.Errorf("Expected Bread in hotbar[0], got %q", got.Name)
	}
	if got := other.Inventory.Slot(inventory.Backpack(3)); got != sword {
		t.Errorf("Expected Iron Sword in backpack[3], got %q", got.Name)
	}

	path := filepath.Join(t.TempDir(), "inventory.json")
	if err := s.Inventory.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := inventory.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := loaded.Slot(inventory.Hotbar(0)); got != bread {
		t.Errorf("Expected loaded Bread in hotbar[0], got %q", got.Name)
	}
}

func TestRestoreRejectsMismatchedWorld(t *testing.T) {
	s, _ := newPlaying(t)
	snap := s.Snapshot()
	snap.Entities[0].Kind = string(entity.KindTree)

	other := NewSession(nil, nil)
	if err := other.Restore(snap); err == nil {
		t.Fatal("Expected an error for a mismatched world")
	}
	if other.State.Mode() != gamestate.Menu {
		t.Errorf("Expected the session untouched, got %s", other.State.Mode())
	}

	snap = s.Snapshot()
	snap.Mode = "menu"
	if err := other.Restore(snap); err == nil {
		t.Error("Expected an error for a menu snapshot")
	}
}

func TestViewReportsTargetAndOpenChest(t *testing.T) {
	s, _ := newPlaying(t)
	c := starterChest(t, s)
	aimAt(s, 0, 2, c.Center())
	s.Tick(dt, FrameInput{})

	v := s.View()
	if v.Target != c.ID() {
		t.Errorf("Expected target %d, got %d", c.ID(), v.Target)
	}
	if v.Mode != "playing" {
		t.Errorf("Expected mode playing, got %q", v.Mode)
	}

	s.Tick(dt, FrameInput{Interact: true})
	if v := s.View(); v.OpenBox != c.ID() {
		t.Errorf("Expected open chest %d, got %d", c.ID(), v.OpenBox)
	}
	for _, e := range s.View().Entities {
		if e.Kind != string(entity.KindChest) && e.Kind != string(entity.KindWolf) && e.Kind != string(entity.KindSpider) {
			t.Errorf("Expected only creatures and chests in the view, got %s", e.Kind)
		}
	}
}
