package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/prefabs"
	"github.com/milk9111/sentry/system"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

type Game struct {
	frames int

	world   *system.World
	watcher *prefabs.Watcher
	debug   bool
	paused  bool
	pauseUI *ebitenui.UI

	clipboardOK bool
	palette     *palette
}

func NewGame(world *system.World, debug bool) *Game {
	g := &Game{world: world, debug: debug, palette: newPalette()}
	g.pauseUI = NewPauseUI(g)

	if err := clipboard.Init(); err != nil {
		log.Printf("sentry: clipboard unavailable: %v", err)
	} else {
		g.clipboardOK = true
	}

	w, err := prefabs.NewWatcher()
	if err != nil {
		log.Printf("sentry: prefab hot reload disabled: %v", err)
	} else {
		g.watcher = w
	}
	return g
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.hotReload()

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyStatus()
	}

	g.world.Player.SetInput(movementInput())
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		g.world.Player.FireAt(cp.Vector{X: float64(mx), Y: float64(my)})
	}

	g.world.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

func movementInput() cp.Vector {
	var dir cp.Vector
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dir.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dir.X++
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dir.Y--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dir.Y++
	}
	return dir
}

// hotReload rebuilds the world when a prefab or script changes on disk.
func (g *Game) hotReload() {
	if g.watcher == nil {
		return
	}
	changes := g.watcher.Poll()
	if len(changes) == 0 {
		return
	}
	for _, c := range changes {
		log.Printf("sentry: %s changed on disk", c.Name)
	}
	g.palette = newPalette()
	g.restart()
}

func (g *Game) restart() {
	if err := g.world.Reset(); err != nil {
		log.Printf("sentry: reload failed: %v", err)
	}
}

func (g *Game) copyStatus() {
	status := g.world.Status()
	if !g.clipboardOK {
		log.Print(status)
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(status))
	log.Printf("sentry: status copied to clipboard")
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x1e, G: 0x1e, B: 0x24, A: 0xff})
	drawWorld(screen, g.world, g.palette, g.debug)

	p := g.world.Player
	hud := fmt.Sprintf("HP %.0f/%.0f  reload %.0f%%  turrets %d  %s",
		p.CurrentHP(), p.MaxHP(), p.ReloadProgress()*100, g.world.Enemies.Remaining(), g.world.Outcome)
	if g.debug {
		hud += fmt.Sprintf("\nFrames: %d    FPS: %.2f    TPS: %.2f", g.frames, ebiten.ActualFPS(), ebiten.ActualTPS())
	}
	ebitenutil.DebugPrint(screen, hud)

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return g.world.Level.Width, g.world.Level.Height
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// palette caches prefab colors so Draw does not hit the disk.
type palette struct {
	player color.Color
	ammo   map[string]color.Color
}

func newPalette() *palette {
	p := &palette{player: colornames.Seagreen, ammo: make(map[string]color.Color)}
	if spec, err := prefabs.LoadPlayerSpec(); err == nil {
		p.player = spec.Color.Or(colornames.Seagreen)
	}
	return p
}

func (p *palette) round(ammo string) color.Color {
	if c, ok := p.ammo[ammo]; ok {
		return c
	}
	var c color.Color = colornames.White
	if spec, err := prefabs.LoadProjectileSpec(ammo); err == nil {
		c = spec.Color.Or(colornames.White)
	}
	p.ammo[ammo] = c
	return c
}
