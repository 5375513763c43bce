package game

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"chosenoffset.com/nightwood/internal/core/gamestate"
	"chosenoffset.com/nightwood/internal/logger"
	"chosenoffset.com/nightwood/internal/observer"
	"chosenoffset.com/nightwood/internal/persistence"
	"chosenoffset.com/nightwood/internal/placeholders"
	"chosenoffset.com/nightwood/internal/render"
	"chosenoffset.com/nightwood/internal/render/lighting"
)

const (
	// QuickSlot is the save slot used by F5 and F9.
	QuickSlot = "quick"

	tickSeconds  = 1.0 / frameRate
	publishEvery = 6 // ticks between observer frames
	saveTimeout  = 5 * time.Second
)

// Manager adapts a Session to the engine: it translates input, captures the
// cursor while playing, handles quicksave and feeds the observer.
type Manager struct {
	ScreenWidth  int
	ScreenHeight int
	Session      *Session
	Renderer     render.Renderer
	InputMgr     render.InputManager
	Engine       render.Engine
	Loader       render.ResourceLoader
	Lighting     *lighting.Manager

	// Optional collaborators.
	Store *persistence.Store
	Hub   *observer.Hub

	icons    map[string]render.Image
	white    render.Image
	scene    sceneCache
	captured bool

	lastX, lastY int
	haveCursor   bool

	// Debug
	FrameCount int
}

// NewManager creates a new game manager.
func NewManager(s *Session, r render.Renderer, input render.InputManager, engine render.Engine, loader render.ResourceLoader) *Manager {
	light := lighting.NewManager()
	light.EnablePlayerLight(true)
	return &Manager{
		ScreenWidth:  s.width,
		ScreenHeight: s.height,
		Session:      s,
		Renderer:     r,
		InputMgr:     input,
		Engine:       engine,
		Loader:       loader,
		Lighting:     light,
		icons:        make(map[string]render.Image),
	}
}

// Update reads input, steps the session one tick and publishes the result.
func (m *Manager) Update() error {
	m.FrameCount++
	mode := m.Session.State.Mode()

	if mode == gamestate.Menu && m.InputMgr.IsKeyJustPressed(render.KeyEscape) {
		return render.ErrQuit
	}

	m.Session.Tick(tickSeconds, m.readInput(mode))

	if mode == gamestate.Playing || mode == gamestate.Paused {
		if m.InputMgr.IsKeyJustPressed(render.KeyF5) {
			m.Quicksave()
		}
		if m.InputMgr.IsKeyJustPressed(render.KeyF9) {
			m.Quickload()
		}
	}

	m.syncCursor()
	if m.FrameCount%publishEvery == 0 {
		m.publish()
	}
	return nil
}

// readInput turns the raw input state into a FrameInput. Mouse movement only
// counts while the cursor is captured.
func (m *Manager) readInput(mode gamestate.Mode) FrameInput {
	in := m.InputMgr
	x, y := in.GetCursorPosition()

	f := FrameInput{
		Forward:     in.IsKeyPressed(render.KeyW),
		Back:        in.IsKeyPressed(render.KeyS),
		Left:        in.IsKeyPressed(render.KeyA),
		Right:       in.IsKeyPressed(render.KeyD),
		Jump:        in.IsKeyPressed(render.KeySpace),
		Descend:     in.IsKeyPressed(render.KeyShift),
		FlyToggle:   in.IsKeyJustPressed(render.KeyF),
		Interact:    in.IsKeyJustPressed(render.KeyE),
		Inventory:   in.IsKeyJustPressed(render.KeyI),
		Pause:       in.IsKeyJustPressed(render.KeyEscape),
		Menu:        in.IsKeyJustPressed(render.KeyM),
		Start:       in.IsKeyJustPressed(render.KeyEnter),
		PointerX:    x,
		PointerY:    y,
		PointerDown: in.IsMouseButtonJustPressed(render.MouseButtonLeft),
		PointerUp:   in.IsMouseButtonJustReleased(render.MouseButtonLeft),
	}
	f.Attack = mode == gamestate.Playing && f.PointerDown

	for n := 1; n <= 9; n++ {
		if in.IsKeyJustPressed(render.DigitKey(n)) {
			f.Hotbar = n
		}
	}

	if m.captured && m.haveCursor {
		f.MouseDX = float64(x - m.lastX)
		f.MouseDY = float64(y - m.lastY)
	}
	m.lastX, m.lastY, m.haveCursor = x, y, true
	return f
}

// syncCursor captures the cursor while playing and frees it otherwise.
func (m *Manager) syncCursor() {
	want := m.Session.State.Mode() == gamestate.Playing
	if want == m.captured {
		return
	}
	m.captured = want
	m.haveCursor = false
	if m.Engine != nil {
		m.Engine.SetCursorCaptured(want)
	}
}

func (m *Manager) publish() {
	if m.Hub == nil {
		return
	}
	if err := m.Hub.Publish(m.Session.View()); err != nil {
		logger.Log.WithError(err).Warn("Failed to publish frame")
	}
}

// Quicksave writes the session to the quick slot.
func (m *Manager) Quicksave() {
	if m.Store == nil {
		m.Session.ShowMessage("Saving is disabled")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	entry, err := m.Store.Save(ctx, QuickSlot, m.Session.Snapshot())
	if err != nil {
		logger.Log.WithError(err).Error("Quicksave failed")
		m.Session.ShowMessage("Save failed")
		return
	}
	logger.Log.WithFields(logrus.Fields{
		"slot":  entry.Slot,
		"path":  entry.Path,
		"items": entry.Items,
	}).Info("Game saved")
	m.Session.ShowMessage("Game saved")
}

// Quickload restores the quick slot, leaving the session untouched on error.
func (m *Manager) Quickload() {
	if m.Store == nil {
		m.Session.ShowMessage("Saving is disabled")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	snap, err := m.Store.Load(ctx, QuickSlot)
	if err == nil {
		err = m.Session.Restore(snap)
	}
	if err != nil {
		logger.Log.WithError(err).Error("Quickload failed")
		m.Session.ShowMessage("Load failed")
		return
	}
	logger.Log.WithFields(logrus.Fields{
		"slot": QuickSlot,
		"tick": snap.Header.Tick,
	}).Info("Game loaded")
	m.Session.ShowMessage("Game loaded")
}

// Layout handles window resize.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != m.ScreenWidth || outsideHeight != m.ScreenHeight {
		m.ScreenWidth = outsideWidth
		m.ScreenHeight = outsideHeight
		m.Session.SetScreenSize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// icon returns the image for an item icon, loading it on first use. Missing
// textures fall back to a generated placeholder.
func (m *Manager) icon(name string) render.Image {
	if img, ok := m.icons[name]; ok {
		return img
	}
	var img render.Image
	if m.Loader != nil && name != "" {
		path := filepath.Join(m.Session.Config.Assets.IconDir, name+".png")
		loaded, err := m.Loader.LoadImage(path)
		if err != nil {
			logger.Log.WithError(err).WithField("icon", name).Warn("Using placeholder icon")
		} else {
			img = loaded
		}
	}
	if img == nil {
		img = m.Renderer.NewImageFromImage(placeholders.Icon(name))
	}
	m.icons[name] = img
	return img
}

// Status is a one-line summary for the debug overlay.
func (m *Manager) Status() string {
	s := m.Session
	p := s.Player.Pos
	return fmt.Sprintf("%s  tick %d  pos %.1f %.1f %.1f  %s",
		s.State.Mode(), s.Ticks(), p.X(), p.Y(), p.Z(), s.State.Debug())
}
