// Package catalog loads class, equipment, ability and monster definitions
// from YAML into a unit.Catalog, together with optional unit line-ups that
// encounters are seeded from.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/grid-tactics/internal/unit"
)

// ClassDef is the YAML form of unit.Class.
type ClassDef struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Tags      []string       `yaml:"tags"`
	Stats     map[string]int `yaml:"stats"`
	DualWield bool           `yaml:"dualWield"`
	Abilities []string       `yaml:"abilities"`
}

// EquipmentDef is the YAML form of unit.Equipment. Range is [min, max] and
// only meaningful for weapons.
type EquipmentDef struct {
	ID             string             `yaml:"id"`
	Name           string             `yaml:"name"`
	Type           string             `yaml:"type"`
	Modifiers      map[string]float64 `yaml:"modifiers"`
	Multipliers    map[string]float64 `yaml:"multipliers"`
	Range          []int              `yaml:"range"`
	AllowedClasses []string           `yaml:"allowedClasses"`
}

// AbilityDef is the YAML form of unit.Ability.
type AbilityDef struct {
	ID        string             `yaml:"id"`
	Name      string             `yaml:"name"`
	Type      string             `yaml:"type"`
	Cost      int                `yaml:"cost"`
	Grants    map[string]float64 `yaml:"grants"`
	DualWield bool               `yaml:"dualWield"`
}

// MonsterDef is the YAML form of unit.MonsterType.
type MonsterDef struct {
	ID    string         `yaml:"id"`
	Name  string         `yaml:"name"`
	Stats map[string]int `yaml:"stats"`
	Range []int          `yaml:"range"`
	Power int            `yaml:"power"`
}

// UnitDef describes one combatant in a line-up. Exactly one of Class and
// Monster is set. Spawn is the map glyph the unit is placed on.
type UnitDef struct {
	Name       string            `yaml:"name"`
	Class      string            `yaml:"class"`
	Monster    string            `yaml:"monster"`
	Player     bool              `yaml:"player"`
	Spawn      string            `yaml:"spawn"`
	Experience int               `yaml:"experience"`
	Equipment  map[string]string `yaml:"equipment"` // slot -> equipment id
	Learn      []string          `yaml:"learn"`
	Assign     []string          `yaml:"assign"`
	Behaviors  []string          `yaml:"behaviors"`
}

// File is the top-level YAML document.
type File struct {
	Classes   []ClassDef     `yaml:"classes"`
	Equipment []EquipmentDef `yaml:"equipment"`
	Abilities []AbilityDef   `yaml:"abilities"`
	Monsters  []MonsterDef   `yaml:"monsters"`
	Units     []UnitDef      `yaml:"units"`
}

// Load reads and parses a catalog file.
func Load(path string) (*unit.Catalog, *File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML document and builds the catalog it defines. The File
// is returned so callers can build the line-up with BuildUnit.
func Parse(data []byte) (*unit.Catalog, *File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("parsing catalog: %w", err)
	}
	cat, err := f.Catalog()
	if err != nil {
		return nil, nil, err
	}
	return cat, &f, nil
}

// Catalog converts the definitions. Duplicate ids and unknown stat, type or
// slot names are errors.
func (f *File) Catalog() (*unit.Catalog, error) {
	cat := unit.NewCatalog()
	seen := make(map[string]bool)
	dup := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s without id", kind)
		}
		key := kind + "/" + id
		if seen[key] {
			return fmt.Errorf("duplicate %s %q", kind, id)
		}
		seen[key] = true
		return nil
	}

	for _, d := range f.Classes {
		if err := dup("class", d.ID); err != nil {
			return nil, err
		}
		base, err := unit.StatsFromMap(d.Stats)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", d.ID, err)
		}
		cat.AddClass(&unit.Class{
			ID:        d.ID,
			Name:      nameOr(d.Name, d.ID),
			Tags:      d.Tags,
			Base:      base,
			DualWield: d.DualWield,
			Abilities: d.Abilities,
		})
	}

	for _, d := range f.Equipment {
		if err := dup("equipment", d.ID); err != nil {
			return nil, err
		}
		e, err := d.build()
		if err != nil {
			return nil, fmt.Errorf("equipment %s: %w", d.ID, err)
		}
		cat.AddEquipment(e)
	}

	for _, d := range f.Abilities {
		if err := dup("ability", d.ID); err != nil {
			return nil, err
		}
		t, err := unit.ParseAbilityType(d.Type)
		if err != nil {
			return nil, fmt.Errorf("ability %s: %w", d.ID, err)
		}
		grants, err := grantsFromMap(d.Grants)
		if err != nil {
			return nil, fmt.Errorf("ability %s: %w", d.ID, err)
		}
		cat.AddAbility(&unit.Ability{
			ID:              d.ID,
			Name:            nameOr(d.Name, d.ID),
			Type:            t,
			ExperienceCost:  d.Cost,
			Grants:          grants,
			GrantsDualWield: d.DualWield,
		})
	}

	for _, d := range f.Monsters {
		if err := dup("monster", d.ID); err != nil {
			return nil, err
		}
		base, err := unit.StatsFromMap(d.Stats)
		if err != nil {
			return nil, fmt.Errorf("monster %s: %w", d.ID, err)
		}
		lo, hi, err := parseRange(d.Range, 1, 1)
		if err != nil {
			return nil, fmt.Errorf("monster %s: %w", d.ID, err)
		}
		cat.AddMonster(&unit.MonsterType{
			ID:       d.ID,
			Name:     nameOr(d.Name, d.ID),
			Base:     base,
			MinRange: lo,
			MaxRange: hi,
			Power:    d.Power,
		})
	}
	return cat, nil
}

func (d EquipmentDef) build() (*unit.Equipment, error) {
	t, err := unit.ParseEquipmentType(d.Type)
	if err != nil {
		return nil, err
	}
	mods, err := statFloats(d.Modifiers)
	if err != nil {
		return nil, err
	}
	muls, err := statFloats(d.Multipliers)
	if err != nil {
		return nil, err
	}
	e := &unit.Equipment{
		ID:             d.ID,
		Name:           nameOr(d.Name, d.ID),
		Type:           t,
		Modifiers:      mods,
		Multipliers:    muls,
		AllowedClasses: d.AllowedClasses,
	}
	if t.IsWeapon() {
		e.MinRange, e.MaxRange, err = parseRange(d.Range, 1, 1)
		if err != nil {
			return nil, err
		}
	} else if len(d.Range) > 0 {
		return nil, fmt.Errorf("range given for non-weapon type %s", t)
	}
	return e, nil
}

// BuildUnit creates the unit a line-up entry describes. Equipment, learning
// and assignment failures are errors, since a line-up is authored data.
func BuildUnit(d UnitDef, cat *unit.Catalog) (*unit.Unit, error) {
	switch {
	case d.Class != "" && d.Monster != "":
		return nil, fmt.Errorf("unit %s: both class and monster given", d.Name)
	case d.Monster != "":
		tmpl, ok := cat.Monster(d.Monster)
		if !ok {
			return nil, fmt.Errorf("unit %s: unknown monster %q", d.Name, d.Monster)
		}
		if len(d.Equipment) > 0 || len(d.Learn) > 0 || len(d.Assign) > 0 {
			return nil, fmt.Errorf("unit %s: monsters carry no equipment or abilities", d.Name)
		}
		return unit.NewMonster(nameOr(d.Name, tmpl.Name), tmpl, d.Player), nil
	case d.Class == "":
		return nil, fmt.Errorf("unit %s: class or monster required", d.Name)
	}

	class, ok := cat.Class(d.Class)
	if !ok {
		return nil, fmt.Errorf("unit %s: unknown class %q", d.Name, d.Class)
	}
	u := unit.NewHumanoid(nameOr(d.Name, class.Name), class, d.Player)
	if err := u.AddExperience(d.Experience); err != nil {
		return nil, err
	}
	for _, id := range d.Learn {
		a, ok := cat.Ability(id)
		if !ok {
			return nil, fmt.Errorf("unit %s: unknown ability %q", u.Name, id)
		}
		if res := u.LearnAbility(a); !res.Success {
			return nil, fmt.Errorf("unit %s: learn %s: %s", u.Name, id, res.Reason)
		}
	}
	for _, id := range d.Assign {
		a, ok := cat.Ability(id)
		if !ok {
			return nil, fmt.Errorf("unit %s: unknown ability %q", u.Name, id)
		}
		if res := u.AssignAbility(a); !res.Success {
			return nil, fmt.Errorf("unit %s: assign %s: %s", u.Name, id, res.Reason)
		}
	}
	// Equip in slot order so two-handed and dual-wield checks see the same
	// state every load.
	for _, slot := range unit.AllSlots() {
		id, ok := d.Equipment[slot.String()]
		if !ok {
			continue
		}
		it, found := cat.Equipment(id)
		if !found {
			return nil, fmt.Errorf("unit %s: unknown equipment %q", u.Name, id)
		}
		if res := u.Equip(slot, it); !res.Success {
			return nil, fmt.Errorf("unit %s: equip %s in %s: %s", u.Name, id, slot, res.Reason)
		}
	}
	for name := range d.Equipment {
		if _, err := unit.ParseSlot(name); err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Name, err)
		}
	}
	return u, nil
}

func statFloats(m map[string]float64) (map[unit.Stat]float64, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[unit.Stat]float64, len(m))
	for name, v := range m {
		s, err := unit.ParseStat(name)
		if err != nil {
			return nil, err
		}
		out[s] = v
	}
	return out, nil
}

// grantsFromMap returns grants ordered by stat so modifier ids are stable.
func grantsFromMap(m map[string]float64) ([]unit.ModifierGrant, error) {
	stats, err := statFloats(m)
	if err != nil {
		return nil, err
	}
	out := make([]unit.ModifierGrant, 0, len(stats))
	for s, v := range stats {
		out = append(out, unit.ModifierGrant{Stat: s, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stat < out[j].Stat })
	return out, nil
}

func parseRange(r []int, defMin, defMax int) (int, int, error) {
	switch len(r) {
	case 0:
		return defMin, defMax, nil
	case 1:
		if r[0] < 0 {
			return 0, 0, fmt.Errorf("negative range %d", r[0])
		}
		return r[0], r[0], nil
	case 2:
		if r[0] < 0 || r[1] < r[0] {
			return 0, 0, fmt.Errorf("invalid range [%d, %d]", r[0], r[1])
		}
		return r[0], r[1], nil
	default:
		return 0, 0, fmt.Errorf("range wants [min, max], got %d values", len(r))
	}
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
