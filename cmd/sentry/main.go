package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/prefabs"
	"github.com/milk9111/sentry/system"
)

func main() {
	levelName := flag.String("level", "arena", "level name in levels/ (basename, .json optional) or a path on disk")
	prefabDir := flag.String("prefabs", prefabs.Dir, "directory checked for prefab overrides before the embedded copies")
	headless := flag.Bool("headless", false, "run the simulation without a window and print the final status")
	ticks := flag.Int("ticks", 1800, "frames to simulate in headless mode")
	debug := flag.Bool("debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	prefabs.Dir = *prefabDir

	world, err := system.NewWorld(*levelName)
	if err != nil {
		log.Fatal(err)
	}

	if *headless {
		runHeadless(world, *ticks)
		return
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(int(world.Level.Width), int(world.Level.Height))
	ebiten.SetWindowTitle("sentry")

	if err := ebiten.RunGame(NewGame(world, *debug)); err != nil {
		log.Fatal(err)
	}
}

// runHeadless plays the level at 60 frames per second with the player
// standing still and shooting at the nearest turret.
func runHeadless(world *system.World, ticks int) {
	const dt = 1.0 / 60.0
	for i := 0; i < ticks && world.Outcome == system.OutcomePlaying; i++ {
		if target, ok := nearestTurret(world); ok {
			world.Player.FireAt(target)
		}
		world.Update(dt)
	}
	fmt.Print(world.Status())
}

func nearestTurret(world *system.World) (cp.Vector, bool) {
	best := math.Inf(1)
	var target cp.Vector
	found := false
	from := world.Player.Position()
	for _, t := range world.Turrets {
		if t.IsExploding() {
			continue
		}
		if d := t.Position.Distance(from); d < best {
			best, target, found = d, t.Position, true
		}
	}
	return target, found
}
