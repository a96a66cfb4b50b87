package data

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Height shape profiles a POI stamps into the height field.
const (
	ShapeCrater  = "crater"
	ShapeHill    = "hill"
	ShapePlateau = "plateau"
	ShapeFlat    = "flat"
)

// RoleEntry describes one POI role.
type RoleEntry struct {
	Role             string  `yaml:"role"`
	Required         bool    `yaml:"required"`
	Weight           float64 `yaml:"weight"`
	DangerMultiplier float64 `yaml:"danger_multiplier"`
	InfluenceRadius  float64 `yaml:"influence_radius"`
	Shape            string  `yaml:"shape"`
	Amplitude        float64 `yaml:"amplitude"`
	StructureSize    float64 `yaml:"structure_size"`
}

type roleListFile struct {
	Roles []RoleEntry `yaml:"roles"`
}

// RoleTable holds POI roles in file order. Order matters: required roles are
// force-assigned in this order.
type RoleTable struct {
	roles  []RoleEntry
	byName map[string]int
}

// LoadRoleTable parses the role table at path, or the embedded default when
// path is empty.
func LoadRoleTable(path string) (*RoleTable, error) {
	raw, err := readTable(path, "roles.yaml")
	if err != nil {
		return nil, err
	}
	return ParseRoleTable(raw)
}

func ParseRoleTable(raw []byte) (*RoleTable, error) {
	var f roleListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse roles: %w", err)
	}
	if len(f.Roles) == 0 {
		return nil, fmt.Errorf("parse roles: no roles defined")
	}
	t := &RoleTable{
		roles:  f.Roles,
		byName: make(map[string]int, len(f.Roles)),
	}
	for i, r := range f.Roles {
		if r.Role == "" {
			return nil, fmt.Errorf("role %d: missing name", i)
		}
		if _, dup := t.byName[r.Role]; dup {
			return nil, fmt.Errorf("role %q: duplicate", r.Role)
		}
		if r.Weight < 0 || r.InfluenceRadius <= 0 {
			return nil, fmt.Errorf("role %q: weight must be >= 0 and influence_radius > 0", r.Role)
		}
		if r.DangerMultiplier < 0 || r.DangerMultiplier > 1 {
			return nil, fmt.Errorf("role %q: danger_multiplier must be within [0,1]", r.Role)
		}
		switch r.Shape {
		case ShapeCrater, ShapeHill, ShapePlateau, ShapeFlat, "":
		default:
			return nil, fmt.Errorf("role %q: unknown shape %q", r.Role, r.Shape)
		}
		t.byName[r.Role] = i
	}
	return t, nil
}

// Get returns the entry for a role name.
func (t *RoleTable) Get(role string) (*RoleEntry, bool) {
	i, ok := t.byName[role]
	if !ok {
		return nil, false
	}
	return &t.roles[i], true
}

// All returns the roles in file order. Callers must not mutate the slice.
func (t *RoleTable) All() []RoleEntry {
	return t.roles
}

// Required returns the required roles in file order.
func (t *RoleTable) Required() []RoleEntry {
	var out []RoleEntry
	for _, r := range t.roles {
		if r.Required {
			out = append(out, r)
		}
	}
	return out
}

// MaxInfluence is the largest influence radius of any role.
func (t *RoleTable) MaxInfluence() float64 {
	m := 0.0
	for _, r := range t.roles {
		if r.InfluenceRadius > m {
			m = r.InfluenceRadius
		}
	}
	return m
}

func (t *RoleTable) Count() int {
	return len(t.roles)
}
