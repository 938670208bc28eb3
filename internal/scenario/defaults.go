package scenario

import (
	"github.com/Garsondee/grid-tactics/internal/catalog"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

// DefaultCatalog is used when no catalog file is configured. Its line-up
// fits DefaultLayout.
const DefaultCatalog = `
classes:
  - id: knight
    name: Knight
    tags: [martial]
    stats: {maxHealth: 32, maxMana: 5, physicalPower: 6, speed: 5, movement: 4, physicalEvade: 5, courage: 60}
    abilities: [stalwart, riposte]
  - id: ranger
    name: Ranger
    tags: [martial]
    stats: {maxHealth: 24, maxMana: 10, physicalPower: 5, speed: 8, movement: 5, physicalEvade: 10}
    dualWield: true
  - id: adept
    name: Adept
    stats: {maxHealth: 20, maxMana: 30, physicalPower: 2, magicPower: 8, speed: 6, movement: 4, attunement: 40}
    abilities: [focus]
equipment:
  - id: longsword
    name: Longsword
    type: oneHandedWeapon
    range: [1, 1]
    modifiers: {physicalPower: 4}
    allowedClasses: [martial]
  - id: shortbow
    name: Shortbow
    type: twoHandedWeapon
    range: [2, 4]
    modifiers: {physicalPower: 3}
  - id: staff
    name: Staff
    type: twoHandedWeapon
    range: [1, 2]
    modifiers: {physicalPower: 2, magicPower: 3}
  - id: kite
    name: Kite Shield
    type: shield
    modifiers: {physicalEvade: 10}
    multipliers: {movement: 0.75}
  - id: helm
    name: Iron Helm
    type: head
    modifiers: {maxHealth: 4}
abilities:
  - id: stalwart
    name: Stalwart
    type: passive
    cost: 5
    grants: {maxHealth: 6, courage: 10}
  - id: riposte
    name: Riposte
    type: reaction
    cost: 8
  - id: focus
    name: Focus
    type: passive
    cost: 4
    grants: {magicPower: 2}
monsters:
  - id: goblin
    name: Goblin
    stats: {maxHealth: 14, physicalPower: 3, speed: 7, movement: 4}
    power: 2
  - id: spitter
    name: Spitter
    stats: {maxHealth: 10, physicalPower: 2, speed: 4, movement: 3}
    range: [2, 3]
    power: 3
  - id: ogre
    name: Ogre
    stats: {maxHealth: 40, physicalPower: 8, speed: 2, movement: 3}
    power: 4
units:
  - name: Aldo
    class: knight
    player: true
    spawn: A
    experience: 5
    learn: [stalwart]
    assign: [stalwart]
    equipment: {rightHand: longsword, leftHand: kite, head: helm}
  - name: Wren
    class: ranger
    player: true
    spawn: A
    equipment: {rightHand: shortbow}
  - name: Isa
    class: adept
    player: true
    spawn: A
    experience: 4
    learn: [focus]
    assign: [focus]
    equipment: {rightHand: staff}
  - {name: Grik, monster: goblin, spawn: e}
  - {name: Snag, monster: goblin, spawn: e}
  - {name: Phlegm, monster: spitter, spawn: e, behaviors: [strike-and-withdraw, attack-in-place, approach-nearest]}
  - {name: Brut, monster: ogre, spawn: e}
`

// LoadCatalog reads a catalog file; an empty path parses DefaultCatalog.
func LoadCatalog(path string) (*unit.Catalog, []catalog.UnitDef, error) {
	if path == "" {
		cat, f, err := catalog.Parse([]byte(DefaultCatalog))
		if err != nil {
			return nil, nil, err
		}
		return cat, f.Units, nil
	}
	cat, f, err := catalog.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cat, f.Units, nil
}
