package unit

import "sort"

// Class is a humanoid job definition.
type Class struct {
	ID        string
	Name      string
	Tags      []string // extra keys matched by equipment allow-lists
	Base      Stats    // starting stats for new units of this class
	DualWield bool
	Abilities []string // learnable ability ids; empty = unrestricted
}

// MonsterType is a monster template.
type MonsterType struct {
	ID       string
	Name     string
	Base     Stats
	MinRange int // natural weapon range, used as is
	MaxRange int
	Power    int // natural weapon damage
}

// Catalog holds the definitions units are built and restored against. It is
// passed explicitly so tests and encounters can use isolated sets.
type Catalog struct {
	classes   map[string]*Class
	equipment map[string]*Equipment
	abilities map[string]*Ability
	monsters  map[string]*MonsterType
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		classes:   make(map[string]*Class),
		equipment: make(map[string]*Equipment),
		abilities: make(map[string]*Ability),
		monsters:  make(map[string]*MonsterType),
	}
}

// AddClass registers c, replacing any class with the same id.
func (c *Catalog) AddClass(cl *Class) { c.classes[cl.ID] = cl }

// AddEquipment registers e, replacing any item with the same id.
func (c *Catalog) AddEquipment(e *Equipment) { c.equipment[e.ID] = e }

// AddAbility registers a, replacing any ability with the same id.
func (c *Catalog) AddAbility(a *Ability) { c.abilities[a.ID] = a }

// AddMonster registers m, replacing any template with the same id.
func (c *Catalog) AddMonster(m *MonsterType) { c.monsters[m.ID] = m }

// Class looks up a class by id.
func (c *Catalog) Class(id string) (*Class, bool) {
	cl, ok := c.classes[id]
	return cl, ok
}

// Equipment looks up an item by id.
func (c *Catalog) Equipment(id string) (*Equipment, bool) {
	e, ok := c.equipment[id]
	return e, ok
}

// Ability looks up an ability by id.
func (c *Catalog) Ability(id string) (*Ability, bool) {
	a, ok := c.abilities[id]
	return a, ok
}

// Monster looks up a monster template by id.
func (c *Catalog) Monster(id string) (*MonsterType, bool) {
	m, ok := c.monsters[id]
	return m, ok
}

// ClassIDs returns registered class ids, sorted.
func (c *Catalog) ClassIDs() []string { return sortedKeys(c.classes) }

// EquipmentIDs returns registered equipment ids, sorted.
func (c *Catalog) EquipmentIDs() []string { return sortedKeys(c.equipment) }

// AbilityIDs returns registered ability ids, sorted.
func (c *Catalog) AbilityIDs() []string { return sortedKeys(c.abilities) }

// MonsterIDs returns registered monster ids, sorted.
func (c *Catalog) MonsterIDs() []string { return sortedKeys(c.monsters) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
