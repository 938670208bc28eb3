package unit

import "testing"

func testStats(hp, pp, mv int) Stats {
	var st Stats
	st[StatMaxHealth] = hp
	st[StatMaxMana] = 20
	st[StatPhysicalPower] = pp
	st[StatMagicPower] = 5
	st[StatSpeed] = 10
	st[StatMovement] = mv
	st[StatPhysicalEvade] = 5
	st[StatMagicEvade] = 5
	st[StatCourage] = 50
	st[StatAttunement] = 50
	return st
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat := NewCatalog()
	cat.AddClass(&Class{ID: "fighter", Name: "Fighter", Tags: []string{"martial"}, Base: testStats(40, 10, 4)})
	cat.AddClass(&Class{ID: "rogue", Name: "Rogue", Tags: []string{"martial"}, Base: testStats(30, 8, 5), DualWield: true})
	cat.AddClass(&Class{ID: "mage", Name: "Mage", Base: testStats(25, 3, 4), Abilities: []string{"focus", "blink"}})

	cat.AddEquipment(&Equipment{ID: "sword", Name: "Sword", Type: EquipOneHandedWeapon,
		Modifiers: map[Stat]float64{StatPhysicalPower: 6, StatSpeed: 1}, MinRange: 1, MaxRange: 1})
	cat.AddEquipment(&Equipment{ID: "dagger", Name: "Dagger", Type: EquipOneHandedWeapon,
		Modifiers: map[Stat]float64{StatPhysicalPower: 3, StatSpeed: 2}, MinRange: 1, MaxRange: 1})
	cat.AddEquipment(&Equipment{ID: "sling", Name: "Sling", Type: EquipOneHandedWeapon,
		Modifiers: map[Stat]float64{StatPhysicalPower: 2}, MinRange: 2, MaxRange: 4})
	cat.AddEquipment(&Equipment{ID: "greatsword", Name: "Greatsword", Type: EquipTwoHandedWeapon,
		Modifiers: map[Stat]float64{StatPhysicalPower: 12}, Multipliers: map[Stat]float64{StatPhysicalPower: 2, StatMovement: 0.5},
		MinRange: 1, MaxRange: 1, AllowedClasses: []string{"martial"}})
	cat.AddEquipment(&Equipment{ID: "buckler", Name: "Buckler", Type: EquipShield,
		Modifiers: map[Stat]float64{StatPhysicalEvade: 10}})
	cat.AddEquipment(&Equipment{ID: "torch", Name: "Torch", Type: EquipHeldItem})
	cat.AddEquipment(&Equipment{ID: "helm", Name: "Helm", Type: EquipHead,
		Modifiers: map[Stat]float64{StatMaxHealth: 5}})
	cat.AddEquipment(&Equipment{ID: "robe", Name: "Robe", Type: EquipBody,
		Modifiers: map[Stat]float64{StatMagicPower: 4}, Multipliers: map[Stat]float64{StatMaxMana: 1.5}})
	cat.AddEquipment(&Equipment{ID: "ring", Name: "Ring", Type: EquipAccessory,
		Modifiers: map[Stat]float64{StatCourage: 5}})

	cat.AddAbility(&Ability{ID: "focus", Name: "Focus", Type: AbilityPassive, ExperienceCost: 10,
		Grants: []ModifierGrant{{Stat: StatMagicPower, Value: 3}, {Stat: StatAttunement, Value: 5}}})
	cat.AddAbility(&Ability{ID: "blink", Name: "Blink", Type: AbilityMovement, ExperienceCost: 20})
	cat.AddAbility(&Ability{ID: "twin-fang", Name: "Twin Fang", Type: AbilityPassive, GrantsDualWield: true})
	cat.AddAbility(&Ability{ID: "counter", Name: "Counter", Type: AbilityReaction, ExperienceCost: 5})

	cat.AddMonster(&MonsterType{ID: "wolf", Name: "Wolf", Base: testStats(20, 7, 6), MinRange: 1, MaxRange: 1, Power: 4})
	return cat
}

func mustEquipment(t *testing.T, cat *Catalog, id string) *Equipment {
	t.Helper()
	e, ok := cat.Equipment(id)
	if !ok {
		t.Fatalf("fixture missing equipment %q", id)
	}
	return e
}

func mustAbility(t *testing.T, cat *Catalog, id string) *Ability {
	t.Helper()
	a, ok := cat.Ability(id)
	if !ok {
		t.Fatalf("fixture missing ability %q", id)
	}
	return a
}

func newFighter(t *testing.T, cat *Catalog) *Unit {
	t.Helper()
	cl, _ := cat.Class("fighter")
	return NewHumanoid("Aldo", cl, true)
}
