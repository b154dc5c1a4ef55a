package physics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"
)

// Layer is a bitmask of collision categories. A shape belongs to the layers
// set on it; queries match shapes whose layers intersect the query mask.
type Layer uint

const (
	LayerDefault Layer = 1 << iota
	LayerPlayer
	LayerEnemy
	LayerObstacle
	LayerProjectile

	LayerNone Layer = 0
	LayerAll  Layer = ^Layer(0)
)

var layerNames = map[string]Layer{
	"default":    LayerDefault,
	"player":     LayerPlayer,
	"enemy":      LayerEnemy,
	"obstacle":   LayerObstacle,
	"projectile": LayerProjectile,
	"all":        LayerAll,
	"none":       LayerNone,
}

// ParseLayer accepts a single layer name or several joined with '|'.
func ParseLayer(s string) (Layer, error) {
	var out Layer
	for _, part := range strings.Split(s, "|") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		l, ok := layerNames[name]
		if !ok {
			return 0, fmt.Errorf("physics: unknown layer %q", part)
		}
		out |= l
	}
	return out, nil
}

func (l Layer) Has(other Layer) bool {
	return l&other != 0
}

func (l Layer) String() string {
	switch l {
	case LayerNone:
		return "none"
	case LayerAll:
		return "all"
	}
	var names []string
	for name, bit := range layerNames {
		if bit == LayerAll || bit == LayerNone {
			continue
		}
		if l&bit != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

// UnmarshalYAML accepts either a scalar ("player|obstacle") or a sequence of
// layer names.
func (l *Layer) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		v, err := ParseLayer(value.Value)
		if err != nil {
			return err
		}
		*l = v
		return nil
	case yaml.SequenceNode:
		var out Layer
		for _, item := range value.Content {
			v, err := ParseLayer(item.Value)
			if err != nil {
				return err
			}
			out |= v
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("physics: layer must be a name or list (line %d)", value.Line)
	}
}

func (l *Layer) UnmarshalText(text []byte) error {
	v, err := ParseLayer(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func (l Layer) MarshalYAML() (any, error) {
	return l.String(), nil
}

// shapeFilter puts a shape on layer and lets it be seen by every query.
func shapeFilter(layer Layer) cp.ShapeFilter {
	return cp.NewShapeFilter(cp.NO_GROUP, uint(layer), uint(LayerAll))
}
