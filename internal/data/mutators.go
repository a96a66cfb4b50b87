package data

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Mutator is a weekly tweak to world generation parameters.
type Mutator struct {
	ID              string  `yaml:"id"`
	Weight          float64 `yaml:"weight"`
	WaterLevel      float64 `yaml:"water_level"`       // additive
	RiverCount      int     `yaml:"river_count"`       // additive
	POICount        int     `yaml:"poi_count"`         // additive
	DangerScale     float64 `yaml:"danger_scale"`      // multiplicative, 0 = unchanged
	PathSafetyScale float64 `yaml:"path_safety_scale"` // multiplicative, 0 = unchanged
}

type mutatorListFile struct {
	Mutators []Mutator `yaml:"mutators"`
}

// MutatorTable holds mutators in file order.
type MutatorTable struct {
	mutators []Mutator
}

func LoadMutatorTable(path string) (*MutatorTable, error) {
	raw, err := readTable(path, "mutators.yaml")
	if err != nil {
		return nil, err
	}
	return ParseMutatorTable(raw)
}

func ParseMutatorTable(raw []byte) (*MutatorTable, error) {
	var f mutatorListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse mutators: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Mutators))
	for _, m := range f.Mutators {
		if m.ID == "" {
			return nil, fmt.Errorf("parse mutators: mutator without id")
		}
		if _, dup := seen[m.ID]; dup {
			return nil, fmt.Errorf("mutator %q: duplicate", m.ID)
		}
		if m.Weight < 0 || m.DangerScale < 0 || m.PathSafetyScale < 0 {
			return nil, fmt.Errorf("mutator %q: negative weight or scale", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return &MutatorTable{mutators: f.Mutators}, nil
}

func (t *MutatorTable) All() []Mutator {
	return t.mutators
}

func (t *MutatorTable) Count() int {
	return len(t.mutators)
}
