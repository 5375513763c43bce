package game

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"chosenoffset.com/nightwood/internal/core/gamestate"
	"chosenoffset.com/nightwood/internal/entity"
	"chosenoffset.com/nightwood/internal/inventory"
	"chosenoffset.com/nightwood/internal/render"
	"chosenoffset.com/nightwood/internal/terrain"
)

const (
	groundExtent = 60.0
	groundStep   = 2.0
	hotbarSlot   = 50
)

var (
	grassColor = color.NRGBA{46, 92, 40, 255}
	white      = color.RGBA{255, 255, 255, 255}
	highlight  = color.RGBA{255, 220, 90, 255}
	slotBorder = color.RGBA{150, 150, 160, 255}
	panelFill  = color.RGBA{25, 25, 35, 235}
	dimOverlay = color.RGBA{0, 0, 0, 150}
)

// billboard sizes in world units: width, height.
var shapes = map[entity.Kind]struct {
	w, h  float64
	color color.NRGBA
}{
	entity.KindWolf:     {1.1, 0.8, color.NRGBA{120, 120, 130, 255}},
	entity.KindSpider:   {0.9, 0.4, color.NRGBA{40, 30, 40, 255}},
	entity.KindChest:    {1.0, 0.7, color.NRGBA{130, 85, 40, 255}},
	entity.KindRock:     {0.8, 0.5, color.NRGBA{110, 110, 110, 255}},
	entity.KindMushroom: {0.3, 0.35, color.NRGBA{200, 50, 50, 255}},
	entity.KindTree:     {0.4, 3.0, color.NRGBA{80, 55, 35, 255}},
}

var canopyColor = color.NRGBA{30, 80, 40, 255}

// sceneCache keeps the sampled ground mesh until the terrain changes.
type sceneCache struct {
	field terrain.Field
	mesh  terrain.Mesh
	ready bool
}

func (c *sceneCache) ground(f terrain.Field) terrain.Mesh {
	if !c.ready || c.field != f {
		c.field, c.mesh, c.ready = f, f.Sample(groundExtent, groundStep), true
	}
	return c.mesh
}

// Draw renders the game to the screen.
func (m *Manager) Draw(screen render.Image) {
	s := m.Session
	mode := s.State.Mode()
	if mode == gamestate.Menu {
		m.drawMenu(screen)
		return
	}

	w, h := screen.Size()
	cam := newCamera(s.Player, s.Config.Player.FOV, w, h)
	eye := s.Player.Eye()
	m.Lighting.UpdatePlayerLightPosition(eye.X(), eye.Y(), eye.Z())

	screen.Fill(m.Lighting.Sky())
	m.drawGround(screen, cam)
	m.drawEntities(screen, cam)
	m.drawHeld(screen)
	m.drawHUD(screen)

	switch mode {
	case gamestate.InventoryOpen:
		m.drawInventory(screen)
	case gamestate.Paused:
		m.drawPause(screen)
	}
	m.drawUI(screen)
}

func (m *Manager) shade(base color.NRGBA, p mgl64.Vec3, depth float64) color.RGBA {
	r, g, b := m.Lighting.Shade(base, p.X(), p.Y(), p.Z(), depth)
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}

// drawGround draws the terrain mesh far to near so nearer hills cover
// farther ones.
func (m *Manager) drawGround(screen render.Image, cam camera) {
	if m.white == nil {
		m.white = m.Renderer.NewImage(3, 3)
		m.white.Fill(white)
	}
	mesh := m.scene.ground(m.Session.Field)
	n := len(mesh.Heights)
	if n < 2 {
		return
	}

	vertices := make([]render.Vertex, n*n)
	visible := make([]bool, n*n)
	depths := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p := mgl64.Vec3{mesh.Origin + float64(i)*mesh.Step, mesh.Heights[i][j], mesh.Origin + float64(j)*mesh.Step}
			x, y, d, ok := cam.project(p)
			k := i*n + j
			visible[k], depths[k] = ok, d
			if !ok {
				continue
			}
			// Slight height tint so slopes read in the dark.
			base := grassColor
			base.G = uint8(mgl64.Clamp(float64(base.G)+p.Y()*8, 0, 255))
			r, g, b := m.Lighting.Shade(base, p.X(), p.Y(), p.Z(), p.Sub(cam.eye).Len())
			vertices[k] = render.Vertex{
				DstX: float32(x), DstY: float32(y),
				SrcX: 1, SrcY: 1,
				ColorR: r, ColorG: g, ColorB: b, ColorA: 1,
			}
		}
	}

	type cell struct {
		k     int
		depth float64
	}
	var cells []cell
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-1; j++ {
			k := i*n + j
			if !visible[k] || !visible[k+1] || !visible[k+n] || !visible[k+n+1] {
				continue
			}
			d := (depths[k] + depths[k+n+1]) / 2
			if m.Lighting.FogFactor(d) >= 1 {
				continue
			}
			cells = append(cells, cell{k, d})
		}
	}
	sort.Slice(cells, func(a, b int) bool { return cells[a].depth > cells[b].depth })

	indices := make([]uint16, 0, len(cells)*6)
	for _, c := range cells {
		k := uint16(c.k)
		nn := uint16(n)
		indices = append(indices, k, k+nn, k+1, k+1, k+nn, k+nn+1)
	}
	if len(indices) > 0 {
		screen.DrawTriangles(vertices, indices, m.white, &render.DrawTrianglesOptions{AntiAlias: true})
	}
}

type sprite struct {
	e     entity.Entity
	depth float64
}

// drawEntities draws every entity as a flat billboard, farthest first.
func (m *Manager) drawEntities(screen render.Image, cam camera) {
	s := m.Session
	var sprites []sprite
	for _, e := range s.Registry.All() {
		_, _, d, ok := cam.project(e.Position())
		if !ok || m.Lighting.FogFactor(d) >= 1 {
			continue
		}
		sprites = append(sprites, sprite{e, d})
	}
	sort.SliceStable(sprites, func(a, b int) bool { return sprites[a].depth > sprites[b].depth })

	target, _ := s.Target()
	for _, sp := range sprites {
		m.drawEntity(screen, cam, sp, target)
	}
}

func (m *Manager) drawEntity(screen render.Image, cam camera, sp sprite, target entity.Container) {
	e := sp.e
	shape, ok := shapes[e.Kind()]
	if !ok {
		return
	}
	pos := e.Position()
	if e.Kind().IsCreature() {
		pos[1] += math.Abs(math.Sin(e.Phase())) * 0.08
	}
	x, y, _, _ := cam.project(pos)
	px := cam.scale(sp.depth)
	w, h := shape.w*px, shape.h*px
	left, top := float32(x-w/2), float32(y-h)
	fill := m.shade(shape.color, pos, sp.depth)
	m.Renderer.FillRect(screen, left, top, float32(w), float32(h), fill)

	switch v := e.(type) {
	case *entity.Tree:
		canopy := pos.Add(mgl64.Vec3{0, shape.h + 0.8, 0})
		if cx, cy, _, ok := cam.project(canopy); ok {
			m.Renderer.FillCircle(screen, float32(cx), float32(cy), float32(1.6*px), m.shade(canopyColor, canopy, sp.depth))
		}
	case *entity.Chest:
		// Lid strip rises with the lid angle.
		lid := float32(h * 0.25 * math.Sin(mgl64.DegToRad(v.LidAngle())))
		band := m.shade(color.NRGBA{170, 120, 50, 255}, pos, sp.depth)
		m.Renderer.FillRect(screen, left, top-lid, float32(w), float32(h*0.2), band)
		if entity.Container(v) == target {
			m.Renderer.StrokeRect(screen, left-2, top-lid-2, float32(w)+4, float32(h)+lid+4, 2, highlight)
		}
	case *entity.Mushroom:
		m.Renderer.FillRect(screen, left+float32(w)/3, top+float32(h)/2, float32(w)/3, float32(h)/2,
			m.shade(color.NRGBA{230, 220, 200, 255}, pos, sp.depth))
	}
}

// drawHeld draws the active weapon in the lower right, swinging while an
// attack runs.
func (m *Manager) drawHeld(screen render.Image) {
	s := m.Session
	if !s.Held().IsWeapon() {
		return
	}
	w, h := screen.Size()
	angle := mgl64.DegToRad(-25 - math.Sin(s.Player.AnimT)*70)
	length := float64(h) * 0.35
	bx, by := float64(w)*0.78, float64(h)
	tx, ty := bx+math.Sin(angle)*length, by-math.Cos(angle)*length
	m.Renderer.StrokeLine(screen, float32(bx), float32(by), float32(tx), float32(ty), 10, color.RGBA{190, 200, 210, 255})
	m.Renderer.StrokeLine(screen, float32(bx), float32(by), float32(bx+math.Sin(angle)*length*0.2), float32(by-math.Cos(angle)*length*0.2), 14, color.RGBA{110, 70, 40, 255})
}

func (m *Manager) drawHUD(screen render.Image) {
	s := m.Session
	w, h := screen.Size()

	cx, cy := float32(w)/2, float32(h)/2
	m.Renderer.StrokeLine(screen, cx-8, cy, cx+8, cy, 2, white)
	m.Renderer.StrokeLine(screen, cx, cy-8, cx, cy+8, 2, white)

	if _, ok := s.Target(); ok && s.State.Mode() == gamestate.Playing {
		m.drawCentered(screen, "E: open chest", int(cy)+30, highlight, 1.5)
	}

	x0 := w/2 - (inventory.HotbarSlots*(hotbarSlot+4))/2
	y0 := h - hotbarSlot - 12
	for i := 0; i < inventory.HotbarSlots; i++ {
		r := image.Rect(x0+i*(hotbarSlot+4), y0, x0+i*(hotbarSlot+4)+hotbarSlot, y0+hotbarSlot)
		m.drawSlot(screen, r, s.Inventory.Slot(inventory.Hotbar(i)), i == s.Player.Active)
	}

	m.Renderer.DrawText(screen, m.Status(), 10, 10, color.RGBA{180, 180, 200, 255}, 1.0)
}

func (m *Manager) drawSlot(screen render.Image, r image.Rectangle, item inventory.Item, active bool) {
	m.Renderer.FillRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), color.RGBA{20, 20, 28, 200})
	border, width := slotBorder, float32(1)
	if active {
		border, width = highlight, 3
	}
	m.Renderer.StrokeRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), width, border)
	if !item.Empty() {
		m.drawIcon(screen, item.Icon, r.Inset(r.Dx()/10))
	}
}

func (m *Manager) drawIcon(screen render.Image, name string, r image.Rectangle) {
	img := m.icon(name)
	iw, ih := img.Size()
	if iw == 0 || ih == 0 {
		return
	}
	opts := &render.DrawImageOptions{GeoM: render.NewGeoM()}
	opts.GeoM.Scale(float64(r.Dx())/float64(iw), float64(r.Dy())/float64(ih))
	opts.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	screen.DrawImage(img, opts)
}

// drawInventory draws the panel from the same Layout the session hit-tests
// against, so what is drawn is what can be clicked.
func (m *Manager) drawInventory(screen render.Image) {
	s := m.Session
	w, h := screen.Size()
	m.Renderer.FillRect(screen, 0, 0, float32(w), float32(h), dimOverlay)

	layout := s.Layout()
	rect := func(r image.Rectangle) {
		m.Renderer.FillRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), panelFill)
	}
	rect(layout.Panel)

	chest, open := s.Inventory.Container()
	capacity := 0
	if open && chest.IsOpen() {
		rect(layout.Chest)
		capacity = chest.Capacity()
		m.Renderer.DrawText(screen, "Chest", layout.Chest.Min.X+20, layout.Chest.Min.Y+20, white, 2.0)
	}
	m.Renderer.DrawText(screen, "Inventory", layout.Panel.Min.X+20, layout.Panel.Min.Y+20, white, 2.0)

	for _, sr := range layout.Slots {
		if sr.Ref.Group == inventory.GroupChest && sr.Ref.Index >= capacity {
			continue
		}
		m.drawSlot(screen, sr.Rect, s.Inventory.Slot(sr.Ref), sr.Ref == inventory.Hotbar(s.Player.Active))
	}

	if item, _, ok := s.Inventory.Dragging(); ok {
		x, y := m.InputMgr.GetCursorPosition()
		size := int(float64(60) * layout.Scale)
		m.drawIcon(screen, item.Icon, image.Rect(x-size/2, y-size/2, x+size/2, y+size/2))
	}
}

func (m *Manager) drawPause(screen render.Image) {
	w, h := screen.Size()
	m.Renderer.FillRect(screen, 0, 0, float32(w), float32(h), dimOverlay)
	m.drawCentered(screen, "Paused", h/2-60, white, 3.0)
	m.drawCentered(screen, "Esc: resume    M: main menu", h/2, white, 1.5)
	m.drawCentered(screen, "F5: quicksave    F9: quickload", h/2+30, white, 1.5)
}

func (m *Manager) drawMenu(screen render.Image) {
	w, h := screen.Size()
	screen.Fill(m.Lighting.Sky())
	m.Renderer.FillRect(screen, 0, float32(h)*0.7, float32(w), float32(h)*0.3, color.RGBA{15, 30, 15, 255})

	m.drawCentered(screen, "NIGHTWOOD", h/3, color.RGBA{200, 200, 255, 255}, 5.0)
	m.drawCentered(screen, "Enter: new game    Esc: quit", h/2, white, 2.0)
	m.drawCentered(screen, "WASD move, mouse look, Space jump, F fly, E open, I inventory, 1-9 hotbar", h/2+50, slotBorder, 1.2)
}

func (m *Manager) drawCentered(screen render.Image, text string, y int, clr color.Color, scale float64) {
	w, _ := screen.Size()
	tw, _ := m.Renderer.MeasureText(text, scale)
	m.Renderer.DrawText(screen, text, w/2-tw/2, y, clr, scale)
}

func (m *Manager) drawUI(screen render.Image) {
	// Draw on-screen messages
	y := 40
	for _, msg := range m.Session.Messages {
		alpha := uint8(255 * (msg.TimeLeft / msg.MaxTime))
		m.Renderer.DrawText(screen, msg.Text, 20, y, color.RGBA{alpha, alpha, alpha, alpha}, 1.0)
		y += 20
	}
}
