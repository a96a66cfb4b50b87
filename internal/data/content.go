package data

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TerrainDensity is the per-tile spawn probability for one terrain tag.
type TerrainDensity struct {
	Vegetation float64 `yaml:"vegetation"`
	Props      float64 `yaml:"props"`
}

// PropKind is a static obstacle prefab with a square collider.
type PropKind struct {
	Kind    string  `yaml:"kind"`
	Weight  float64 `yaml:"weight"`
	MinSize float64 `yaml:"min_size"`
	MaxSize float64 `yaml:"max_size"`
}

type contentFile struct {
	Terrain    map[string]TerrainDensity `yaml:"terrain"`
	Vegetation map[string][]string       `yaml:"vegetation"`
	Props      []PropKind                `yaml:"props"`
	Enemies    []string                  `yaml:"enemies"`
	MaxEnemies int                       `yaml:"max_enemies_per_region"`
}

// ContentTable drives region population.
type ContentTable struct {
	f contentFile
}

func LoadContentTable(path string) (*ContentTable, error) {
	raw, err := readTable(path, "content.yaml")
	if err != nil {
		return nil, err
	}
	return ParseContentTable(raw)
}

func ParseContentTable(raw []byte) (*ContentTable, error) {
	var f contentFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if len(f.Enemies) == 0 {
		return nil, fmt.Errorf("parse content: at least one enemy kind required")
	}
	for _, p := range f.Props {
		if p.MinSize <= 0 || p.MaxSize < p.MinSize {
			return nil, fmt.Errorf("prop %q: invalid size range", p.Kind)
		}
	}
	return &ContentTable{f: f}, nil
}

// Density returns the base densities for a terrain tag; unknown tags are empty.
func (t *ContentTable) Density(terrain string) TerrainDensity {
	return t.f.Terrain[terrain]
}

// VegetationKinds returns the vegetation variants for a terrain tag.
func (t *ContentTable) VegetationKinds(terrain string) []string {
	return t.f.Vegetation[terrain]
}

func (t *ContentTable) Props() []PropKind {
	return t.f.Props
}

// EnemyKind returns the enemy kind for a 1-based tier, clamped to the table.
func (t *ContentTable) EnemyKind(tier int) string {
	if tier < 1 {
		tier = 1
	}
	if tier > len(t.f.Enemies) {
		tier = len(t.f.Enemies)
	}
	return t.f.Enemies[tier-1]
}

func (t *ContentTable) MaxTier() int {
	return len(t.f.Enemies)
}

func (t *ContentTable) MaxEnemies() int {
	return t.f.MaxEnemies
}
