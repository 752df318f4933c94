package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ObjectTemplate holds static placement data for one object type in a
// level, loaded from YAML. Pool and Subtype key the reuse stacks in the
// object pool manager; Parts is the expected sub-mesh count used to
// validate structural completeness of a recycled handle.
type ObjectTemplate struct {
	Name           string  `yaml:"name"`
	Pool           string  `yaml:"pool"` // "obstacles", "collectibles", "hazards", or an enemy type's pool
	Subtype        string  `yaml:"subtype"`
	Density        float64 `yaml:"density"`      // expected instances per chunk
	MinDistance    float64 `yaml:"min_distance"` // same-type separation radius
	MinScale       float64 `yaml:"min_scale"`
	MaxScale       float64 `yaml:"max_scale"`
	RandomRotation bool    `yaml:"random_rotation"`
	Collidable     bool    `yaml:"collidable"`
	ScoreValue     int     `yaml:"score_value"`
	Parts          int     `yaml:"parts"`
}

// TerrainDef holds the noise parameters for a level's terrain.
type TerrainDef struct {
	Octaves     int     `yaml:"octaves"`
	Frequency   float64 `yaml:"frequency"`
	Amplitude   float64 `yaml:"amplitude"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Resolution  int     `yaml:"resolution"`
}

// LevelDef is one playable level: terrain shape, the object types it
// places, and which of those types spawn as enemies.
type LevelDef struct {
	Name       string           `yaml:"name"`
	Terrain    TerrainDef       `yaml:"terrain"`
	Objects    []ObjectTemplate `yaml:"objects"`
	EnemyTypes []string         `yaml:"enemy_types"`
}

// Template returns the object template with the given name, or nil.
func (l *LevelDef) Template(name string) *ObjectTemplate {
	for i := range l.Objects {
		if l.Objects[i].Name == name {
			return &l.Objects[i]
		}
	}
	return nil
}

// IsEnemyType reports whether the named type is on the level's enemy allowlist.
func (l *LevelDef) IsEnemyType(name string) bool {
	for _, t := range l.EnemyTypes {
		if t == name {
			return true
		}
	}
	return false
}

type levelListFile struct {
	Levels []LevelDef `yaml:"levels"`
}

// LevelTable holds all level definitions indexed by name.
type LevelTable struct {
	levels map[string]*LevelDef
	order  []string
}

// LoadLevelTable loads level definitions from a YAML file.
func LoadLevelTable(path string) (*LevelTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level list: %w", err)
	}
	var f levelListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse level list: %w", err)
	}
	t := &LevelTable{levels: make(map[string]*LevelDef, len(f.Levels))}
	for i := range f.Levels {
		lvl := &f.Levels[i]
		if lvl.Name == "" {
			return nil, fmt.Errorf("level %d in %s has no name", i, path)
		}
		if _, dup := t.levels[lvl.Name]; dup {
			return nil, fmt.Errorf("duplicate level %q in %s", lvl.Name, path)
		}
		t.levels[lvl.Name] = lvl
		t.order = append(t.order, lvl.Name)
	}
	return t, nil
}

// Get returns a level by name, or nil if not found.
func (t *LevelTable) Get(name string) *LevelDef {
	return t.levels[name]
}

// First returns the first level in file order, or nil for an empty table.
func (t *LevelTable) First() *LevelDef {
	if len(t.order) == 0 {
		return nil
	}
	return t.levels[t.order[0]]
}

// Count returns the number of loaded levels.
func (t *LevelTable) Count() int {
	return len(t.levels)
}
