package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Garsondee/grid-tactics/internal/unit"
)

const sample = `
classes:
  - id: knight
    name: Knight
    tags: [martial]
    stats: {maxHealth: 30, physicalPower: 6, speed: 5, movement: 4}
    abilities: [stalwart]
  - id: ranger
    stats: {maxHealth: 22, physicalPower: 4, speed: 8, movement: 5}
    dualWield: true
equipment:
  - id: longsword
    name: Longsword
    type: oneHandedWeapon
    range: [1, 1]
    modifiers: {physicalPower: 4}
    allowedClasses: [martial]
  - id: longbow
    type: twoHandedWeapon
    range: [2, 5]
    modifiers: {physicalPower: 3}
  - id: kite
    type: shield
    modifiers: {physicalEvade: 10}
    multipliers: {movement: 0.75}
abilities:
  - id: stalwart
    type: passive
    cost: 5
    grants: {maxHealth: 5, courage: 10}
monsters:
  - id: goblin
    name: Goblin
    stats: {maxHealth: 12, physicalPower: 3, speed: 7, movement: 4}
    power: 2
  - id: spitter
    stats: {maxHealth: 8}
    range: [2, 3]
units:
  - name: Aldo
    class: knight
    player: true
    spawn: A
    experience: 5
    learn: [stalwart]
    assign: [stalwart]
    equipment: {rightHand: longsword, leftHand: kite}
  - name: Grik
    monster: goblin
    spawn: e
`

func TestParse_BuildsCatalog(t *testing.T) {
	cat, f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(cat.ClassIDs(), ","); got != "knight,ranger" {
		t.Fatalf("classes: %s", got)
	}
	ranger, _ := cat.Class("ranger")
	if ranger.Name != "ranger" || !ranger.DualWield {
		t.Fatalf("ranger should default its name and dual wield: %+v", ranger)
	}
	bow, ok := cat.Equipment("longbow")
	if !ok || bow.Type != unit.EquipTwoHandedWeapon || bow.MinRange != 2 || bow.MaxRange != 5 {
		t.Fatalf("longbow not decoded: %+v", bow)
	}
	kite, _ := cat.Equipment("kite")
	if kite.Multipliers[unit.StatMovement] != 0.75 {
		t.Fatal("shield multiplier lost")
	}
	st, _ := cat.Ability("stalwart")
	if len(st.Grants) != 2 || st.Grants[0].Stat != unit.StatMaxHealth || st.Grants[1].Stat != unit.StatCourage {
		t.Fatalf("grants should be ordered by stat: %+v", st.Grants)
	}
	sp, _ := cat.Monster("spitter")
	if sp.MinRange != 2 || sp.MaxRange != 3 {
		t.Fatalf("spitter range: %d-%d", sp.MinRange, sp.MaxRange)
	}
	gob, _ := cat.Monster("goblin")
	if gob.MinRange != 1 || gob.MaxRange != 1 {
		t.Fatal("monster range defaults to 1-1")
	}
	if len(f.Units) != 2 {
		t.Fatalf("expected 2 line-up entries, got %d", len(f.Units))
	}
}

func TestBuildUnit_Humanoid(t *testing.T) {
	cat, f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	u, err := BuildUnit(f.Units[0], cat)
	if err != nil {
		t.Fatal(err)
	}
	if !u.PlayerControlled || u.Kind() != unit.KindHumanoid {
		t.Fatal("Aldo is a player humanoid")
	}
	if u.MaxHealth() != 35 {
		t.Fatalf("stalwart should raise max health to 35, got %d", u.MaxHealth())
	}
	if u.Experience() != 0 {
		t.Fatal("learning spends the experience")
	}
	if u.WeaponPower() != 4 {
		t.Fatalf("longsword power 4, got %d", u.WeaponPower())
	}
	if u.Movement() != 3 {
		t.Fatalf("kite shield slows movement to 3, got %d", u.Movement())
	}
}

func TestBuildUnit_Monster(t *testing.T) {
	cat, f, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	u, err := BuildUnit(f.Units[1], cat)
	if err != nil {
		t.Fatal(err)
	}
	if u.Kind() != unit.KindMonster || u.PlayerControlled || u.WeaponPower() != 2 {
		t.Fatalf("unexpected goblin: kind=%s power=%d", u.Kind(), u.WeaponPower())
	}
}

func TestBuildUnit_Errors(t *testing.T) {
	cat, _, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name string
		def  UnitDef
	}{
		{"no kind", UnitDef{Name: "X"}},
		{"both kinds", UnitDef{Name: "X", Class: "knight", Monster: "goblin"}},
		{"unknown class", UnitDef{Name: "X", Class: "bard"}},
		{"monster gear", UnitDef{Name: "X", Monster: "goblin", Equipment: map[string]string{"head": "kite"}}},
		{"class restriction", UnitDef{Name: "X", Class: "ranger", Equipment: map[string]string{"rightHand": "longsword"}}},
		{"broke", UnitDef{Name: "X", Class: "knight", Learn: []string{"stalwart"}}},
		{"bad slot", UnitDef{Name: "X", Class: "knight", Equipment: map[string]string{"tail": "kite"}}},
	}
	for _, c := range cases {
		if _, err := BuildUnit(c.def, cat); err == nil {
			t.Fatalf("%s: expected an error", c.name)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"duplicate id":  "classes:\n  - id: a\n  - id: a\n",
		"missing id":    "monsters:\n  - name: nameless\n",
		"unknown stat":  "classes:\n  - id: a\n    stats: {luck: 3}\n",
		"unknown type":  "equipment:\n  - id: a\n    type: cape\n",
		"ranged armour": "equipment:\n  - id: a\n    type: head\n    range: [1, 2]\n",
		"bad range":     "monsters:\n  - id: a\n    range: [3, 1]\n",
		"bad ability":   "abilities:\n  - id: a\n    type: ultimate\n",
		"not yaml":      "classes: [",
	}
	for name, doc := range cases {
		if _, _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cat.Monster("goblin"); !ok {
		t.Fatal("goblin should be loaded")
	}
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestParse_MonsterSelfRangeKept(t *testing.T) {
	cat, _, err := Parse([]byte(`
monsters:
  - id: puffball
    stats: {maxHealth: 6}
    range: [0, 0]
`))
	if err != nil {
		t.Fatal(err)
	}
	u, err := BuildUnit(UnitDef{Name: "Puff", Monster: "puffball"}, cat)
	if err != nil {
		t.Fatal(err)
	}
	if mn, mx := u.AttackRange(); mn != 0 || mx != 0 {
		t.Fatalf("range [0, 0] resolved to %d-%d", mn, mx)
	}
}
