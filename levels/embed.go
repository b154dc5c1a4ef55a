package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

var ErrInvalidLevel = errors.New("levels: invalid level")

// Level is a top-down arena: bounds, static obstacles, the player spawn and
// the entities to spawn.
type Level struct {
	Name      string     `json:"name"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Player    Point      `json:"player"`
	Obstacles []Obstacle `json:"obstacles,omitempty"`
	Entities  []Entity   `json:"entities,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Obstacle is an axis-aligned box with its top-left corner at X,Y.
type Obstacle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type Entity struct {
	Type  string                 `json:"type"`
	X     float64                `json:"x"`
	Y     float64                `json:"y"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// LoadLevelFromFS reads an embedded level by file name.
func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, cleanLevelPath(name))
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

// Load reads a level from disk when path names an existing file, falling
// back to the embedded levels.
func Load(path string) (*Level, error) {
	if data, err := os.ReadFile(path); err == nil {
		return Parse(data)
	}
	return LoadLevelFromFS(filepath.Base(path))
}

func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: size %gx%g", ErrInvalidLevel, l.Width, l.Height)
	}
	if !l.contains(l.Player.X, l.Player.Y) {
		return fmt.Errorf("%w: player spawn (%g,%g) outside arena", ErrInvalidLevel, l.Player.X, l.Player.Y)
	}
	for i, e := range l.Entities {
		if e.Type == "" {
			return fmt.Errorf("%w: entity %d has no type", ErrInvalidLevel, i)
		}
		if !l.contains(e.X, e.Y) {
			return fmt.Errorf("%w: entity %d (%s) outside arena", ErrInvalidLevel, i, e.Type)
		}
	}
	for i, o := range l.Obstacles {
		if o.W <= 0 || o.H <= 0 {
			return fmt.Errorf("%w: obstacle %d has no area", ErrInvalidLevel, i)
		}
	}
	return nil
}

func (l *Level) contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= l.Width && y <= l.Height
}

// Names lists the embedded levels.
func Names() []string {
	matches, _ := fs.Glob(LevelsFS, "*.json")
	return matches
}

func cleanLevelPath(name string) string {
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, "levels/"); ok {
		s = after
	}
	if filepath.Ext(s) == "" {
		s += ".json"
	}
	return s
}
