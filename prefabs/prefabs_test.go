package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/sentry/ai"
	"github.com/milk9111/sentry/physics"
	"github.com/milk9111/sentry/pool"
)

func useEmbedded(t *testing.T) {
	t.Helper()
	prev := Dir
	Dir = t.TempDir()
	t.Cleanup(func() { Dir = prev })
}

func TestLoadTurretSpec(t *testing.T) {
	useEmbedded(t)
	spec, err := LoadTurretSpec("turret")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg, err := spec.TurretConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	if cfg.MaxHealth != 100 || cfg.ReloadTime != 1 || cfg.DetectionDistance != 240 {
		t.Fatalf("unexpected core values: %+v", cfg.Config)
	}
	if cfg.PlayerLayer != physics.LayerPlayer || cfg.ObstacleLayer != physics.LayerObstacle {
		t.Fatalf("unexpected layers: %v %v", cfg.PlayerLayer, cfg.ObstacleLayer)
	}
	if cfg.RotationInterpolationFactor != 0.05 || cfg.RotationThreshold != 10 || cfg.ForwardOffset != -90 {
		t.Fatalf("unexpected tower values: %+v", cfg.Config)
	}
	if cfg.BulletSpawn != (cp.Vector{X: 0, Y: 20}) {
		t.Fatalf("unexpected bullet spawn %v", cfg.BulletSpawn)
	}
	if cfg.InitialState != ai.StateID("idle") || len(cfg.Scripts) != 0 {
		t.Fatalf("plain turret should use builtin states")
	}
	if spec.Ammo != "standard_round" {
		t.Fatalf("unexpected ammo %q", spec.Ammo)
	}
}

func TestSweeperLoadsScript(t *testing.T) {
	useEmbedded(t)
	spec, err := LoadTurretSpec("turret_sweeper.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg, err := spec.TurretConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	src, ok := cfg.Scripts["idle"]
	if !ok || len(src) == 0 {
		t.Fatalf("expected idle script to be loaded")
	}
}

func TestMissingScriptIsAnError(t *testing.T) {
	useEmbedded(t)
	spec := &TurretSpec{Name: "broken", AI: AISpec{Scripts: map[string]string{"idle": "nope.tengo"}}}
	if _, err := spec.TurretConfig(); err == nil {
		t.Fatalf("expected error for missing script")
	}
}

func TestLoadProjectileSpecs(t *testing.T) {
	useEmbedded(t)
	tests := []struct {
		file       string
		kind       string
		pierce     int
		wantPool   pool.Config
		wantDamage float32
	}{
		{file: "standard_round", kind: KindStandard, wantPool: pool.Config{Size: 20}, wantDamage: 10},
		{file: "armor_piercing_round", kind: KindArmorPiercing, pierce: 2, wantPool: pool.Config{Size: 20}, wantDamage: 6},
	}
	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			spec, err := LoadProjectileSpec(tc.file)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if spec.Kind != tc.kind {
				t.Fatalf("expected kind %q, got %q", tc.kind, spec.Kind)
			}
			stats := spec.Stats()
			if stats.Pierce != tc.pierce || stats.Damage != tc.wantDamage {
				t.Fatalf("unexpected stats %+v", stats)
			}
			if stats.Mask != physics.LayerPlayer|physics.LayerObstacle {
				t.Fatalf("unexpected hit mask %v", stats.Mask)
			}
			if got := spec.PoolConfig(); got != tc.wantPool {
				t.Fatalf("expected pool %+v, got %+v", tc.wantPool, got)
			}
		})
	}
}

func TestDiskOverridesEmbedded(t *testing.T) {
	useEmbedded(t)
	override := "name: player\nhealth: 7\nlayer: player\n"
	if err := os.WriteFile(filepath.Join(Dir, "player.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	spec, err := LoadPlayerSpec()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if spec.Health != 7 {
		t.Fatalf("disk copy should win, got health %v", spec.Health)
	}
	if _, ok := ModTime("player"); !ok {
		t.Fatalf("expected a mod time for the disk copy")
	}
}

func TestDecodeProps(t *testing.T) {
	type props struct {
		Prefab string  `yaml:"prefab"`
		Tower  float64 `yaml:"tower"`
	}
	got, err := DecodeProps[props](map[string]any{"prefab": "turret_sweeper", "tower": 45.0})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Prefab != "turret_sweeper" || got.Tower != 45 {
		t.Fatalf("unexpected props %+v", got)
	}
	if got, err := DecodeProps[props](nil); err != nil || got.Prefab != "" {
		t.Fatalf("nil props should decode to zero value")
	}
}

func TestNamesListsEmbeddedPrefabs(t *testing.T) {
	names := Names()
	want := map[string]bool{
		"turret.yaml":               false,
		"turret_sweeper.yaml":       false,
		"player.yaml":               false,
		"standard_round.yaml":       false,
		"armor_piercing_round.yaml": false,
		"player_round.yaml":         false,
	}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, found := range want {
		if !found {
			t.Fatalf("missing embedded prefab %s", n)
		}
	}
}

func TestWatcherReportsEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "turret.yaml"), []byte("name: turret\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case c := <-w.Events:
		if c.Name != "turret.yaml" || c.Script {
			t.Fatalf("unexpected change %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for prefab change")
	}
}
