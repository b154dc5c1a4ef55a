package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/sentry/enemy"
	"github.com/milk9111/sentry/projectile"
	"github.com/milk9111/sentry/system"
	"golang.org/x/image/colornames"
)

func drawWorld(screen *ebiten.Image, w *system.World, pal *palette, debug bool) {
	for _, o := range w.Level.Obstacles {
		vector.FillRect(screen, float32(o.X), float32(o.Y), float32(o.W), float32(o.H), colornames.Slategray, false)
	}

	for _, t := range w.Turrets {
		drawTurret(screen, t, w.Player, debug)
	}

	w.EachProjectile(func(ammo string, p *projectile.Projectile) {
		vector.FillCircle(screen, float32(p.Position.X), float32(p.Position.Y), float32(max(p.Radius, 2)), pal.round(ammo), true)
	})

	p := w.Player
	pc := pal.player
	if !p.Active {
		pc = colornames.Dimgray
	}
	pos := p.Position()
	vector.FillCircle(screen, float32(pos.X), float32(pos.Y), float32(p.Radius), pc, true)
}

func drawTurret(screen *ebiten.Image, t *enemy.Turret, player *system.Player, debug bool) {
	x, y := float32(t.Position.X), float32(t.Position.Y)
	r := float32(t.Config.Radius)

	if t.IsExploding() {
		grow := float32(1 + t.ExplosionProgress())
		vector.FillCircle(screen, x, y, r*grow, color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xb0}, true)
		return
	}

	body := colornames.Darkorange
	if t.State() == enemy.StateAttack {
		body = colornames.Crimson
	}
	vector.FillCircle(screen, x, y, r, body, true)
	m := t.Muzzle()
	vector.StrokeLine(screen, x, y, float32(m.X), float32(m.Y), 4, colornames.Lightgrey, true)

	// health and reload bars above the turret
	barW := 2 * r
	vector.FillRect(screen, x-r, y-r-8, barW, 3, colornames.Darkred, false)
	vector.FillRect(screen, x-r, y-r-8, barW*float32(t.Health.Fraction()), 3, colornames.Limegreen, false)
	vector.FillRect(screen, x-r, y-r-4, barW*float32(t.ReloadProgress()), 2, colornames.Gold, false)

	if !debug {
		return
	}
	vector.StrokeCircle(screen, x, y, float32(t.Config.DetectionDistance), 1, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x40}, true)
	if t.PlayerDetected() {
		line := colornames.Lime
		if t.ObstacleBetween() {
			line = colornames.Red
		}
		pp := player.Position()
		vector.StrokeLine(screen, x, y, float32(pp.X), float32(pp.Y), 1, line, true)
	}
}
