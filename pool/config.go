package pool

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExhaustPolicy decides what Get does when every instance is claimed and the
// pool may not grow.
type ExhaustPolicy int

const (
	// ExhaustRecycle reclaims the least recently activated instance.
	ExhaustRecycle ExhaustPolicy = iota
	// ExhaustFail returns ErrPoolExhausted.
	ExhaustFail
)

func (p ExhaustPolicy) String() string {
	switch p {
	case ExhaustRecycle:
		return "recycle"
	case ExhaustFail:
		return "fail"
	default:
		return fmt.Sprintf("ExhaustPolicy(%d)", int(p))
	}
}

// ParseExhaustPolicy maps a policy name to its value. Empty means recycle.
func ParseExhaustPolicy(s string) (ExhaustPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recycle":
		return ExhaustRecycle, nil
	case "fail":
		return ExhaustFail, nil
	default:
		return ExhaustRecycle, fmt.Errorf("pool: unknown exhaust policy %q", s)
	}
}

func (p *ExhaustPolicy) UnmarshalText(text []byte) error {
	v, err := ParseExhaustPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p *ExhaustPolicy) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("pool: exhaust policy must be a scalar (line %d)", value.Line)
	}
	return p.UnmarshalText([]byte(value.Value))
}

func (p ExhaustPolicy) MarshalYAML() (any, error) {
	return p.String(), nil
}

// Config sizes a pool.
type Config struct {
	Size       int           `yaml:"size"`
	AutoExpand bool          `yaml:"auto_expand"`
	Policy     ExhaustPolicy `yaml:"policy"`
}

// DefaultSize is the capacity used when a prefab does not set one.
const DefaultSize = 20

func DefaultConfig() Config {
	return Config{Size: DefaultSize}
}
