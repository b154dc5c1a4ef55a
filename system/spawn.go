package system

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/enemy"
	"github.com/milk9111/sentry/levels"
	"github.com/milk9111/sentry/physics"
	"github.com/milk9111/sentry/prefabs"
)

const defaultTurretPrefab = "turret"

// turretProps are the per-placement overrides a level can set on a turret.
type turretProps struct {
	Prefab string   `yaml:"prefab"`
	Tower  *float64 `yaml:"tower"`
	Ammo   string   `yaml:"ammo"`
}

func (w *World) spawnTurretsFromEntities(entities []levels.Entity) ([]*enemy.Turret, []levels.Entity, error) {
	if w == nil || len(entities) == 0 {
		return nil, entities, nil
	}

	turrets := make([]*enemy.Turret, 0)
	remaining := make([]levels.Entity, 0, len(entities))
	for _, pe := range entities {
		if !isTurretEntity(pe) {
			remaining = append(remaining, pe)
			continue
		}
		t, err := w.spawnTurret(pe)
		if err != nil {
			return nil, nil, err
		}
		turrets = append(turrets, t)
	}

	return turrets, remaining, nil
}

func (w *World) spawnTurret(pe levels.Entity) (*enemy.Turret, error) {
	props, err := prefabs.DecodeProps[turretProps](pe.Props)
	if err != nil {
		return nil, fmt.Errorf("turret at (%g,%g): %w", pe.X, pe.Y, err)
	}
	name := props.Prefab
	if name == "" {
		name = defaultTurretPrefab
	}
	spec, err := prefabs.LoadTurretSpec(name)
	if err != nil {
		return nil, fmt.Errorf("turret prefab %s: %w", name, err)
	}
	cfg, err := spec.TurretConfig()
	if err != nil {
		return nil, err
	}
	if props.Tower != nil {
		cfg.InitialTower = *props.Tower
	}
	ammo := spec.Ammo
	if props.Ammo != "" {
		ammo = props.Ammo
	}

	id := w.Registry.Create()
	pos := cp.Vector{X: pe.X, Y: pe.Y}
	deps := enemy.Deps{Spatial: w.Space, Target: w.Player, Events: w.Events}
	if ammo != "" {
		weapon, err := w.armory.launcher(ammo, id, w.Events)
		if err != nil {
			return nil, fmt.Errorf("turret prefab %s: %w", name, err)
		}
		deps.Weapon = weapon
	}

	t, err := enemy.NewTurret(id, pos, cfg, deps)
	if err != nil {
		w.Registry.Destroy(id)
		return nil, fmt.Errorf("turret prefab %s: %w", name, err)
	}
	w.Space.AddCircle(id, pos, cfg.Radius, physics.LayerEnemy)
	w.targets[id] = t
	w.Enemies.Track(id)
	return t, nil
}

func isTurretEntity(pe levels.Entity) bool {
	return strings.EqualFold(pe.Type, "turret")
}
