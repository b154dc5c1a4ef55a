package system

import (
	"fmt"
	"sort"

	"github.com/milk9111/sentry/component"
	"github.com/milk9111/sentry/ecs"
	"github.com/milk9111/sentry/enemy"
	"github.com/milk9111/sentry/pool"
	"github.com/milk9111/sentry/prefabs"
	"github.com/milk9111/sentry/projectile"
)

// damageable resolves projectile hits to the player or a live turret.
func (w *World) damageable(e ecs.Entity) (component.Damageable, bool) {
	d, ok := w.targets[e]
	return d, ok
}

// armory lazily builds one magazine per ammo prefab and hands out launchers
// that draw from it.
type armory struct {
	system   *projectile.System
	standard map[string]*projectile.Magazine[*projectile.Standard]
	piercing map[string]*projectile.Magazine[*projectile.ArmorPiercing]
}

func newArmory(sys *projectile.System) *armory {
	return &armory{
		system:   sys,
		standard: make(map[string]*projectile.Magazine[*projectile.Standard]),
		piercing: make(map[string]*projectile.Magazine[*projectile.ArmorPiercing]),
	}
}

func (a *armory) launcher(ammo string, shooter ecs.Entity, events ecs.Emitter) (enemy.Weapon, error) {
	if m, ok := a.standard[ammo]; ok {
		return projectile.NewLauncher(m, shooter, events), nil
	}
	if m, ok := a.piercing[ammo]; ok {
		return projectile.NewLauncher(m, shooter, events), nil
	}

	spec, err := prefabs.LoadProjectileSpec(ammo)
	if err != nil {
		return nil, fmt.Errorf("load ammo %s: %w", ammo, err)
	}
	switch spec.Kind {
	case prefabs.KindArmorPiercing:
		m, err := projectile.NewMagazine[*projectile.ArmorPiercing](ammo, spec.Stats(), spec.PoolConfig(), pool.FactoryFunc[*projectile.ArmorPiercing](projectile.NewArmorPiercing))
		if err != nil {
			return nil, err
		}
		a.piercing[ammo] = m
		a.system.Add(m)
		return projectile.NewLauncher(m, shooter, events), nil
	default:
		m, err := projectile.NewMagazine[*projectile.Standard](ammo, spec.Stats(), spec.PoolConfig(), pool.FactoryFunc[*projectile.Standard](projectile.NewStandard))
		if err != nil {
			return nil, err
		}
		a.standard[ammo] = m
		a.system.Add(m)
		return projectile.NewLauncher(m, shooter, events), nil
	}
}

func (a *armory) names() []string {
	out := make([]string, 0, len(a.standard)+len(a.piercing))
	for n := range a.standard {
		out = append(out, n)
	}
	for n := range a.piercing {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (a *armory) active(name string) int {
	if m, ok := a.standard[name]; ok {
		return m.Active()
	}
	if m, ok := a.piercing[name]; ok {
		return m.Active()
	}
	return 0
}

func (a *armory) capacity(name string) int {
	if m, ok := a.standard[name]; ok {
		return m.Len()
	}
	if m, ok := a.piercing[name]; ok {
		return m.Len()
	}
	return 0
}

