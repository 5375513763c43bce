package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"chosenoffset.com/nightwood/internal/core/gamestate"
	"chosenoffset.com/nightwood/internal/entity"
	"chosenoffset.com/nightwood/internal/interaction"
	"chosenoffset.com/nightwood/internal/inventory"
	"chosenoffset.com/nightwood/internal/logger"
	"chosenoffset.com/nightwood/internal/persistence"
	"chosenoffset.com/nightwood/internal/render"
	"chosenoffset.com/nightwood/internal/simulation"
	"chosenoffset.com/nightwood/internal/terrain"
)

const (
	frameRate    = 60.0
	pitchLimit   = 89.0
	swingRate    = 0.2  // radians per tick
	camSmoothing = 0.3  // fraction of the remaining camera height closed per tick
	groundSnap   = 0.35 // max drop followed while walking downhill
	messageTime  = 3.0
)

// Sound names the session plays.
const (
	SoundFootstep  = "footstep"
	SoundSwing     = "swing"
	SoundChestOpen = "chest_open"
)

// Session holds all game state and logic. It is stepped by Tick and never
// touches the window, so it can run headless.
type Session struct {
	Config    *simulation.Config
	Field     terrain.Field
	Registry  *entity.Registry
	Inventory *inventory.Inventory
	State     *gamestate.Machine
	Player    Player
	Resolver  interaction.Resolver
	Sounds    render.SoundPlayer

	// UI state
	Messages []Message

	seed   int64
	tick   uint64
	clock  float64 // simulated seconds; frozen outside Playing
	target entity.Container

	width, height int
}

type silent struct{}

func (silent) Play(string) {}

// NewSession creates a session in Menu mode with a world generated from
// cfg.Seed. A nil cfg uses the defaults and a nil sounds plays nothing.
func NewSession(cfg *simulation.Config, sounds render.SoundPlayer) *Session {
	if cfg == nil {
		cfg = simulation.DefaultConfig()
	}
	if sounds == nil {
		sounds = silent{}
	}
	s := &Session{
		Config:   cfg,
		State:    gamestate.New(),
		Resolver: cfg.Interaction,
		Sounds:   sounds,
		width:    cfg.Window.Width,
		height:   cfg.Window.Height,
	}
	s.State.OnTransition = func(from, to gamestate.Mode) {
		logger.Log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("Mode change")
	}
	s.newWorld(cfg.Seed)
	return s
}

// newWorld discards the world, inventory and player and generates them anew.
func (s *Session) newWorld(seed int64) {
	s.seed = seed
	s.Field = s.Config.Terrain
	s.Registry = entity.Generate(s.Config.World, s.Field, seed)
	s.Inventory = inventory.New()
	s.Player = s.spawnPlayer()
	s.Messages = nil
	s.tick, s.clock = 0, 0
	s.target = nil

	logger.Log.WithFields(logrus.Fields{
		"seed":     seed,
		"entities": s.Registry.Len(),
	}).Info("World generated")
}

func (s *Session) spawnPlayer() Player {
	ground := s.Field.Height(0, 0)
	return Player{
		Pos:      mgl64.Vec3{0, ground, 0},
		CamY:     ground + s.Config.Player.EyeHeight,
		Grounded: true,
		lastStep: -s.Config.FootstepCooldown(),
	}
}

// Seed returns the seed the current world was generated from.
func (s *Session) Seed() int64 { return s.seed }

// Ticks returns the number of simulated ticks in this world.
func (s *Session) Ticks() uint64 { return s.tick }

// Clock returns the simulated time in seconds.
func (s *Session) Clock() float64 { return s.clock }

// Target returns the container the player is looking at, if any.
func (s *Session) Target() (entity.Container, bool) {
	return s.target, s.target != nil
}

// SetScreenSize tells the session how large the inventory panel can be.
func (s *Session) SetScreenSize(width, height int) {
	s.width, s.height = width, height
}

// Layout returns the inventory panel geometry for the current screen.
func (s *Session) Layout() inventory.Layout {
	return inventory.NewLayout(s.width, s.height)
}

// Held returns the item in the active hotbar slot.
func (s *Session) Held() inventory.Item {
	return s.Inventory.Slot(inventory.Hotbar(s.Player.Active))
}

// Tick advances the session by dt seconds. What happens depends on the mode:
// only Playing moves the player and the creatures.
func (s *Session) Tick(dt float64, in FrameInput) {
	s.updateMessages(dt)

	switch s.State.Mode() {
	case gamestate.Menu:
		if in.Start {
			s.NewGame()
		}
	case gamestate.Playing:
		s.tickPlaying(dt, in)
	case gamestate.InventoryOpen:
		s.tickInventory(dt, in)
	case gamestate.Paused:
		if in.Pause {
			s.State.TogglePause()
		} else if in.Menu {
			s.ReturnToMenu()
		}
	}
}

// NewGame regenerates the world and starts playing. It only acts in Menu.
func (s *Session) NewGame() bool {
	if !s.State.AcceptsMenu() {
		return false
	}
	s.newWorld(s.Config.Seed)
	return s.State.StartGame()
}

// ReturnToMenu leaves a paused game for the menu. The world, inventory and
// counters are reset so the next game starts clean.
func (s *Session) ReturnToMenu() bool {
	if !s.State.ReturnToMenu() {
		return false
	}
	s.newWorld(s.Config.Seed)
	return true
}

// CloseInventory cancels any drag, closes and unlinks the chest and resumes
// play.
func (s *Session) CloseInventory() bool {
	if s.State.Mode() != gamestate.InventoryOpen {
		return false
	}
	s.Inventory.CancelDrag()
	s.Inventory.CloseContainer()
	return s.State.CloseInventory()
}

func (s *Session) tickPlaying(dt float64, in FrameInput) {
	if in.Pause {
		s.State.TogglePause()
		return
	}
	if in.Inventory {
		s.State.OpenInventory()
		return
	}

	f := dt * frameRate
	s.look(in.MouseDX, in.MouseDY)
	if in.Hotbar >= 1 && in.Hotbar <= inventory.HotbarSlots {
		s.Player.Active = in.Hotbar - 1
	}

	s.advanceSwing(f)
	if in.Attack {
		s.startSwing()
	}

	s.move(f, in)
	s.clock += dt
	s.tick++
	s.State.IncrementCounter(gamestate.CounterTicks, 1)
	s.footstep(in)

	s.Registry.Update(f)
	for _, c := range s.Registry.DueSounds(s.clock, s.Player.Pos, s.Config.Player.HearingRange) {
		s.Sounds.Play(c.Sound())
	}

	s.target = s.lookTarget()
	if in.Interact && s.target != nil {
		s.openChest(s.target)
	}
}

func (s *Session) tickInventory(dt float64, in FrameInput) {
	// Lids keep easing while the panel is up; creatures stay frozen.
	f := dt * frameRate
	for _, c := range s.Registry.Containers() {
		c.Update(f, nil)
	}

	if in.Inventory || in.Pause {
		s.CloseInventory()
		return
	}

	layout := s.Layout()
	if in.PointerDown {
		for _, ref := range layout.HitTestInventory(s.Inventory, in.PointerX, in.PointerY) {
			if s.Inventory.BeginDrag(ref) {
				break
			}
		}
	}
	if in.PointerUp {
		if _, _, dragging := s.Inventory.Dragging(); dragging {
			s.Inventory.EndDrag(layout.HitTestInventory(s.Inventory, in.PointerX, in.PointerY)...)
		}
	}
}

func (s *Session) look(dx, dy float64) {
	sens := s.Config.Player.MouseSensitivity
	p := &s.Player
	p.Yaw = math.Mod(p.Yaw+dx*sens, 360)
	if p.Yaw < 0 {
		p.Yaw += 360
	}
	p.Pitch = mgl64.Clamp(p.Pitch-dy*sens, -pitchLimit, pitchLimit)
}

// move applies walking, jumping or flying for one tick of f frame units and
// keeps the player on or above the terrain.
func (s *Session) move(f float64, in FrameInput) {
	cfg := s.Config.Player
	p := &s.Player

	if in.FlyToggle {
		p.Flying = !p.Flying
		p.VelY = 0
		if p.Flying {
			s.ShowMessage("Flying")
		} else {
			s.ShowMessage("Walking")
		}
	}

	yaw := mgl64.DegToRad(p.Yaw)
	forward := mgl64.Vec3{math.Sin(yaw), 0, math.Cos(yaw)}
	right := mgl64.Vec3{math.Cos(yaw), 0, -math.Sin(yaw)}

	var wish mgl64.Vec3
	if in.Forward {
		wish = wish.Add(forward)
	}
	if in.Back {
		wish = wish.Sub(forward)
	}
	if in.Right {
		wish = wish.Add(right)
	}
	if in.Left {
		wish = wish.Sub(right)
	}
	if l := wish.Len(); l > 0 {
		wish = wish.Mul(cfg.Speed * f / l)
	}
	pos := p.Pos.Add(wish)
	ground := s.Field.Height(pos.X(), pos.Z())

	wasGrounded, jumped := p.Grounded, false
	if p.Flying {
		if in.Jump {
			pos[1] += cfg.Speed * f
		}
		if in.Descend {
			pos[1] -= cfg.Speed * f
		}
	} else {
		if in.Jump && wasGrounded {
			p.VelY = cfg.JumpSpeed
			jumped = true
		}
		p.VelY -= cfg.Gravity * f
		pos[1] += p.VelY * f
		if wasGrounded && !jumped && pos.Y()-ground < groundSnap {
			pos[1] = ground
		}
	}

	if pos.Y() <= ground {
		pos[1] = ground
		p.VelY = 0
		p.Grounded = !p.Flying
	} else {
		p.Grounded = false
	}
	p.Pos = pos

	target := pos.Y() + cfg.EyeHeight
	p.CamY += (target - p.CamY) * math.Min(1, camSmoothing*f)
}

func (s *Session) footstep(in FrameInput) {
	p := &s.Player
	if !p.Grounded || !in.moving() {
		return
	}
	if s.clock-p.lastStep < s.Config.FootstepCooldown() {
		return
	}
	p.lastStep = s.clock
	s.Sounds.Play(SoundFootstep)
	s.State.IncrementCounter(gamestate.CounterFootsteps, 1)
}

// startSwing begins an attack when the active hotbar slot holds a weapon and
// no swing is already running.
func (s *Session) startSwing() {
	p := &s.Player
	if p.Attacking || !s.Held().IsWeapon() {
		return
	}
	p.Attacking = true
	p.AnimT = 0
	s.Sounds.Play(SoundSwing)
	s.State.IncrementCounter(gamestate.CounterSwings, 1)
}

func (s *Session) advanceSwing(f float64) {
	p := &s.Player
	if !p.Attacking {
		return
	}
	p.AnimT += swingRate * f
	if p.AnimT > math.Pi {
		p.Attacking = false
		p.AnimT = 0
	}
}

func (s *Session) lookTarget() entity.Container {
	dir := interaction.LookDirection(s.Player.Yaw, s.Player.Pitch)
	t, ok := s.Resolver.Resolve(s.Player.Eye(), dir, s.Registry.All())
	if !ok {
		return nil
	}
	return t.Container
}

func (s *Session) openChest(c entity.Container) {
	s.Inventory.OpenContainer(c)
	if !s.State.OpenInventory() {
		s.Inventory.CloseContainer()
		return
	}
	s.Sounds.Play(SoundChestOpen)
	s.State.IncrementCounter(gamestate.CounterChestsOpened, 1)
	logger.Log.WithFields(logrus.Fields{
		"chest": c.ID(),
		"items": len(c.Items()),
	}).Debug("Chest opened")
}

func (s *Session) updateMessages(dt float64) {
	var active []Message
	for _, msg := range s.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	s.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (s *Session) ShowMessage(text string) {
	s.Messages = append(s.Messages, Message{
		Text:     text,
		TimeLeft: messageTime,
		MaxTime:  messageTime,
	})
	logger.Log.WithField("message", text).Debug("Message")
}

// Snapshot captures everything needed to resume this session. Static props
// are included by ID only so a restore can check the world matches.
func (s *Session) Snapshot() persistence.SnapshotV1 {
	p := s.Player
	snap := persistence.SnapshotV1{
		Header:   persistence.Header{Seed: s.seed, Tick: s.tick},
		Mode:     s.State.Mode().String(),
		Counters: s.State.Counters(),
		Clock:    s.clock,
		Player: persistence.PlayerV1{
			Pos:    vec(p.Pos),
			Yaw:    p.Yaw,
			Pitch:  p.Pitch,
			VelY:   p.VelY,
			Flying: p.Flying,
			Active: p.Active,
		},
		Inventory: s.Inventory.Contents(),
	}
	for _, e := range s.Registry.All() {
		ev := persistence.EntityV1{ID: e.ID(), Kind: string(e.Kind())}
		if e.Kind().IsCreature() {
			ev.Pos, ev.Yaw, ev.Phase = vec(e.Position()), e.Yaw(), e.Phase()
		}
		if c, ok := e.(entity.Container); ok {
			ev.Pos, ev.Yaw = vec(e.Position()), e.Yaw()
			ev.Open = c.IsOpen()
			ev.Items = c.Items()
		}
		snap.Entities = append(snap.Entities, ev)
	}
	return snap
}

// Restore replaces the session with snap. The world is regenerated from the
// snapshot's seed and the saved state laid over it; nothing is changed when
// an error is returned. An inventory-mode snapshot resumes as Playing since
// the chest link is not saved.
func (s *Session) Restore(snap persistence.SnapshotV1) error {
	mode, err := gamestate.ParseMode(snap.Mode)
	if err != nil {
		return err
	}
	switch mode {
	case gamestate.Menu:
		return fmt.Errorf("cannot restore a snapshot taken in the menu")
	case gamestate.InventoryOpen:
		mode = gamestate.Playing
	}
	if a := snap.Player.Active; a < 0 || a >= inventory.HotbarSlots {
		return fmt.Errorf("active hotbar slot %d out of range", a)
	}

	field := s.Config.Terrain
	reg := entity.Generate(s.Config.World, field, snap.Header.Seed)
	for _, ev := range snap.Entities {
		e, ok := reg.ByID(ev.ID)
		if !ok || string(e.Kind()) != ev.Kind {
			return fmt.Errorf("saved entity %d (%s) does not match the generated world", ev.ID, ev.Kind)
		}
		if e.Kind().IsCreature() {
			entity.Restore(e, field, ev.Pos[0], ev.Pos[2], ev.Yaw, ev.Phase)
		}
		if c, ok := e.(entity.Container); ok {
			if len(ev.Items) > c.Capacity() {
				return fmt.Errorf("chest %d holds %d items, capacity is %d", ev.ID, len(ev.Items), c.Capacity())
			}
			c.SetItems(ev.Items)
			c.SetOpen(false)
		}
	}

	inv := inventory.New()
	if err := inv.Restore(snap.Inventory); err != nil {
		return fmt.Errorf("restore inventory: %w", err)
	}

	if err := s.State.Restore(mode, snap.Counters); err != nil {
		return err
	}

	s.seed = snap.Header.Seed
	s.Field = field
	s.Registry = reg
	s.Inventory = inv
	s.tick, s.clock = snap.Header.Tick, snap.Clock
	s.target = nil
	s.Messages = nil

	sp := snap.Player
	pos := mgl64.Vec3{sp.Pos[0], sp.Pos[1], sp.Pos[2]}
	ground := field.Height(pos.X(), pos.Z())
	if pos.Y() < ground {
		pos[1] = ground
	}
	s.Player = Player{
		Pos:      pos,
		Yaw:      sp.Yaw,
		Pitch:    mgl64.Clamp(sp.Pitch, -pitchLimit, pitchLimit),
		VelY:     sp.VelY,
		Flying:   sp.Flying,
		Grounded: !sp.Flying && pos.Y() == ground,
		Active:   sp.Active,
		CamY:     pos.Y() + s.Config.Player.EyeHeight,
		lastStep: s.clock - s.Config.FootstepCooldown(),
	}
	return nil
}

// View summarizes the session for the observer feed. It copies everything
// it reports.
func (s *Session) View() View {
	p := s.Player
	v := View{
		Tick:     s.tick,
		Mode:     s.State.Mode().String(),
		Clock:    s.clock,
		Seed:     s.seed,
		Items:    s.Inventory.Count(),
		Counters: s.State.Counters(),
		Player: PlayerView{
			Pos:    vec(p.Pos),
			Yaw:    p.Yaw,
			Pitch:  p.Pitch,
			Flying: p.Flying,
			Active: p.Active,
			Held:   s.Held().Name,
		},
	}
	if s.target != nil {
		v.Target = s.target.ID()
	}
	if c, ok := s.Inventory.Container(); ok {
		if e, ok := c.(entity.Entity); ok {
			v.OpenBox = e.ID()
		}
	}
	for _, e := range s.Registry.All() {
		if !e.Kind().IsCreature() && e.Kind() != entity.KindChest {
			continue
		}
		ev := EntityView{ID: e.ID(), Kind: string(e.Kind()), Pos: vec(e.Position()), Yaw: e.Yaw()}
		if c, ok := e.(entity.Container); ok {
			ev.Open = c.IsOpen()
		}
		v.Entities = append(v.Entities, ev)
	}
	return v
}
