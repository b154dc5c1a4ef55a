package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/sentry/physics"
	"github.com/milk9111/sentry/pool"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type TurretSpec struct {
	Name              string        `yaml:"name"`
	Health            float32       `yaml:"health"`
	DetectionDistance float64       `yaml:"detection_distance"`
	ReloadTime        float64       `yaml:"reload_time"`
	ExplosionTime     float64       `yaml:"explosion_time"`
	Radius            float64       `yaml:"radius"`
	PlayerLayer       physics.Layer `yaml:"player_layer"`
	ObstacleLayer     physics.Layer `yaml:"obstacle_layer"`
	Ammo              string        `yaml:"ammo"`
	Tower             TowerSpec     `yaml:"tower"`
	AI                AISpec        `yaml:"ai"`
	Color             *YAMLColor    `yaml:"color"`
}

type TowerSpec struct {
	RotationSpeed       float64  `yaml:"rotation_speed"`
	InterpolationFactor float64  `yaml:"interpolation_factor"`
	RotationThreshold   float64  `yaml:"rotation_threshold"`
	ForwardOffset       *float64 `yaml:"forward_offset"`
	Initial             float64  `yaml:"initial"`
	BulletSpawn         *VecSpec `yaml:"bullet_spawn"`
}

// AISpec picks the initial state and swaps states for tengo scripts, keyed
// by state id.
type AISpec struct {
	Initial string            `yaml:"initial"`
	Scripts map[string]string `yaml:"scripts"`
}

func LoadTurretSpec(name string) (*TurretSpec, error) {
	spec, err := LoadSpec[TurretSpec](name)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

const (
	KindStandard      = "standard"
	KindArmorPiercing = "armor_piercing"
)

type ProjectileSpec struct {
	Name     string        `yaml:"name"`
	Kind     string        `yaml:"kind"`
	Damage   float32       `yaml:"damage"`
	Speed    float64       `yaml:"speed"`
	Lifetime float64       `yaml:"lifetime"`
	Radius   float64       `yaml:"radius"`
	HitMask  physics.Layer `yaml:"hit_mask"`
	Pierce   int           `yaml:"pierce"`
	Pool     *pool.Config  `yaml:"pool"`
	Color    *YAMLColor    `yaml:"color"`
}

func LoadProjectileSpec(name string) (*ProjectileSpec, error) {
	spec, err := LoadSpec[ProjectileSpec](name)
	if err != nil {
		return nil, err
	}
	switch spec.Kind {
	case "", KindStandard, KindArmorPiercing:
	default:
		return nil, fmt.Errorf("prefabs: %s: unknown projectile kind %q", name, spec.Kind)
	}
	return &spec, nil
}

type PlayerSpec struct {
	Name       string        `yaml:"name"`
	Health     float32       `yaml:"health"`
	MoveSpeed  float64       `yaml:"move_speed"`
	Radius     float64       `yaml:"radius"`
	Layer      physics.Layer `yaml:"layer"`
	Ammo       string        `yaml:"ammo"`
	ReloadTime float64       `yaml:"reload_time"`
	Color      *YAMLColor    `yaml:"color"`
}

func LoadPlayerSpec() (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec]("player.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type VecSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type YAMLColor struct {
	color.Color
}

// Or returns the color, or fallback when unset.
func (c *YAMLColor) Or(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
