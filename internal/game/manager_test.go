package game

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/nightwood/internal/core/gamestate"
	"chosenoffset.com/nightwood/internal/observer"
	"chosenoffset.com/nightwood/internal/persistence"
	"chosenoffset.com/nightwood/internal/render"
)

type fakeInput struct {
	held     map[render.Key]bool
	pressed  map[render.Key]bool
	x, y     int
	down, up bool
}

func newFakeInput() *fakeInput {
	return &fakeInput{held: map[render.Key]bool{}, pressed: map[render.Key]bool{}}
}

func (f *fakeInput) IsKeyPressed(k render.Key) bool     { return f.held[k] }
func (f *fakeInput) IsKeyJustPressed(k render.Key) bool { return f.pressed[k] }
func (f *fakeInput) GetCursorPosition() (int, int)      { return f.x, f.y }
func (f *fakeInput) IsMouseButtonPressed(render.MouseButton) bool {
	return f.down
}
func (f *fakeInput) IsMouseButtonJustPressed(render.MouseButton) bool  { return f.down }
func (f *fakeInput) IsMouseButtonJustReleased(render.MouseButton) bool { return f.up }

type fakeEngine struct {
	captured []bool
}

func (e *fakeEngine) SetWindowSize(int, int)    {}
func (e *fakeEngine) SetWindowTitle(string)     {}
func (e *fakeEngine) SetWindowResizable(bool)   {}
func (e *fakeEngine) SetCursorCaptured(c bool)  { e.captured = append(e.captured, c) }
func (e *fakeEngine) RunGame(render.Game) error { return nil }

// press runs one Update with k just pressed.
func press(t *testing.T, m *Manager, in *fakeInput, k render.Key) {
	t.Helper()
	in.pressed = map[render.Key]bool{k: true}
	if err := m.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	in.pressed = map[render.Key]bool{}
}

func TestManagerEscapeInMenuQuits(t *testing.T) {
	in := newFakeInput()
	m := NewManager(NewSession(nil, nil), nil, in, nil, nil)
	in.pressed[render.KeyEscape] = true
	if err := m.Update(); !errors.Is(err, render.ErrQuit) {
		t.Errorf("Expected ErrQuit, got %v", err)
	}
}

func TestManagerCapturesCursorAndTurnsWithMouse(t *testing.T) {
	in := newFakeInput()
	engine := &fakeEngine{}
	m := NewManager(NewSession(nil, nil), nil, in, engine, nil)

	press(t, m, in, render.KeyEnter)
	if m.Session.State.Mode() != gamestate.Playing {
		t.Fatalf("Expected Playing, got %s", m.Session.State.Mode())
	}
	if len(engine.captured) != 1 || !engine.captured[0] {
		t.Fatalf("Expected the cursor captured, got %v", engine.captured)
	}

	in.x, in.y = 100, 100
	m.Update() // first captured frame only records the cursor
	if m.Session.Player.Yaw != 0 {
		t.Fatalf("Expected no turn on the first captured frame, got %v", m.Session.Player.Yaw)
	}
	in.x = 110
	m.Update()
	want := 10 * m.Session.Config.Player.MouseSensitivity
	if math.Abs(m.Session.Player.Yaw-want) > 1e-9 {
		t.Errorf("Expected yaw %v, got %v", want, m.Session.Player.Yaw)
	}

	press(t, m, in, render.KeyEscape)
	if m.Session.State.Mode() != gamestate.Paused {
		t.Fatalf("Expected Paused, got %s", m.Session.State.Mode())
	}
	if got := engine.captured[len(engine.captured)-1]; got {
		t.Error("Expected the cursor released while paused")
	}
}

func TestManagerQuicksaveAndQuickload(t *testing.T) {
	store, err := persistence.OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer store.Close()

	in := newFakeInput()
	m := NewManager(NewSession(nil, nil), nil, in, nil, nil)
	m.Store = store
	press(t, m, in, render.KeyEnter)

	in.held[render.KeyW] = true
	for i := 0; i < 20; i++ {
		m.Update()
	}
	in.held[render.KeyW] = false
	saved := m.Session.Player.Pos

	press(t, m, in, render.KeyF5)
	entries, err := store.List(context.Background())
	if err != nil || len(entries) != 1 || entries[0].Slot != QuickSlot {
		t.Fatalf("Expected one quick save, got %v (%v)", entries, err)
	}

	in.held[render.KeyW] = true
	for i := 0; i < 20; i++ {
		m.Update()
	}
	in.held[render.KeyW] = false
	if m.Session.Player.Pos.ApproxEqual(saved) {
		t.Fatal("Expected the player to have moved on")
	}

	press(t, m, in, render.KeyF9)
	if !m.Session.Player.Pos.ApproxEqual(saved) {
		t.Errorf("Expected the player back at %v, got %v", saved, m.Session.Player.Pos)
	}
}

func TestManagerQuickloadWithoutSaveKeepsSession(t *testing.T) {
	store, err := persistence.OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer store.Close()

	in := newFakeInput()
	m := NewManager(NewSession(nil, nil), nil, in, nil, nil)
	m.Store = store
	press(t, m, in, render.KeyEnter)
	m.Session.Player.Pos = mgl64.Vec3{3, m.Session.Field.Height(3, 3), 3}

	press(t, m, in, render.KeyF9)
	if m.Session.Player.Pos.X() != 3 {
		t.Error("Expected a failed load to leave the session alone")
	}
	if len(m.Session.Messages) == 0 {
		t.Error("Expected a failure message")
	}
}

func TestManagerPublishesFrames(t *testing.T) {
	hub := observer.NewHub()
	defer hub.Close()

	in := newFakeInput()
	m := NewManager(NewSession(nil, nil), nil, in, nil, nil)
	m.Hub = hub
	press(t, m, in, render.KeyEnter)
	for i := 0; i < publishEvery; i++ {
		m.Update()
	}

	last := hub.Last()
	if last == nil {
		t.Fatal("Expected a published frame")
	}
	if !bytes.Contains(last, []byte(`"mode":"playing"`)) {
		t.Errorf("Expected a playing frame, got %s", last)
	}
}

func TestManagerLayoutResizesSession(t *testing.T) {
	m := NewManager(NewSession(nil, nil), nil, newFakeInput(), nil, nil)
	if w, h := m.Layout(1920, 1080); w != 1920 || h != 1080 {
		t.Errorf("Expected 1920x1080, got %dx%d", w, h)
	}
	if got := m.Session.Layout().Scale; got != 1.0 {
		t.Errorf("Expected layout scale 1.0, got %v", got)
	}
}
