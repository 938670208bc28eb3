package roster

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Garsondee/grid-tactics/internal/logging"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

func testCatalog() *unit.Catalog {
	cat := unit.NewCatalog()
	var st unit.Stats
	st[unit.StatMaxHealth] = 30
	st[unit.StatPhysicalPower] = 6
	st[unit.StatMovement] = 4
	cat.AddClass(&unit.Class{ID: "knight", Name: "Knight", Base: st})
	cat.AddEquipment(&unit.Equipment{ID: "sword", Name: "Sword", Type: unit.EquipOneHandedWeapon,
		Modifiers: map[unit.Stat]float64{unit.StatPhysicalPower: 4}, MinRange: 1, MaxRange: 1})
	cat.AddMonster(&unit.MonsterType{ID: "wolf", Name: "Wolf", Base: st, MinRange: 1, MaxRange: 1, Power: 3})
	return cat
}

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", "", logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func party(t *testing.T, cat *unit.Catalog) []*unit.Unit {
	t.Helper()
	knight, _ := cat.Class("knight")
	sword, _ := cat.Equipment("sword")
	wolf, _ := cat.Monster("wolf")

	aldo := unit.NewHumanoid("Aldo", knight, true)
	if res := aldo.Equip(unit.SlotRightHand, sword); !res.Success {
		t.Fatal(res.Message)
	}
	aldo.TakeDamage(7)
	return []*unit.Unit{aldo, unit.NewMonster("Fang", wolf, true)}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	cat := testCatalog()

	id, err := s.Save(ctx, "vanguard", party(t, cat))
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("save should return a roster id")
	}

	units, issues, err := s.Load(ctx, "vanguard", cat)
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if len(units) != 2 || units[0].Name != "Aldo" || units[1].Name != "Fang" {
		t.Fatalf("members should come back in order, got %d units", len(units))
	}
	if units[0].Wounds() != 7 || units[0].WeaponPower() != 4 {
		t.Fatalf("Aldo state lost: wounds=%d power=%d", units[0].Wounds(), units[0].WeaponPower())
	}
	if units[1].Kind() != unit.KindMonster {
		t.Fatal("Fang should be restored as a monster")
	}
}

func TestStore_SaveReplacesByName(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	cat := testCatalog()
	units := party(t, cat)

	first, err := s.Save(ctx, "vanguard", units)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Save(ctx, "vanguard", units[:1])
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("a replaced roster gets a fresh id")
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Members != 1 || list[0].ID != second {
		t.Fatalf("expected one roster with one member, got %+v", list)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	cat := testCatalog()
	for _, name := range []string{"rear", "vanguard"} {
		if _, err := s.Save(ctx, name, party(t, cat)); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "rear" || list[1].Name != "vanguard" {
		t.Fatalf("list should be sorted by name: %+v", list)
	}

	if err := s.Delete(ctx, "rear"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Load(ctx, "rear", cat); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted roster should be gone, got %v", err)
	}
	if err := s.Delete(ctx, "rear"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleting twice should report not found, got %v", err)
	}
}

func TestStore_LoadReportsMissingReferences(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	if _, err := s.Save(ctx, "vanguard", party(t, testCatalog())); err != nil {
		t.Fatal(err)
	}

	units, issues, err := s.Load(ctx, "vanguard", unit.NewCatalog())
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 {
		t.Fatal("members are restored even with missing references")
	}
	// class and sword for Aldo, template for Fang
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %v", issues)
	}
	if issues[0].Member != "Aldo" || issues[2].Member != "Fang" {
		t.Fatalf("issues should name their member: %v", issues)
	}
}

func TestStore_Errors(t *testing.T) {
	if _, err := Open("mongo", "", logging.Nop()); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected unknown driver, got %v", err)
	}
	s := openTest(t)
	if _, err := s.Save(context.Background(), "  ", nil); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected empty name error, got %v", err)
	}
}

func TestStore_LoadSkipsUnreadableMembers(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	cat := testCatalog()
	if _, err := s.Save(ctx, "vanguard", party(t, cat)); err != nil {
		t.Fatal(err)
	}
	corrupt := func(name, snapshot string) {
		t.Helper()
		err := s.db.Model(&Member{}).Where("name = ?", name).Update("snapshot", datatypes.JSON(snapshot)).Error
		if err != nil {
			t.Fatal(err)
		}
	}
	corrupt("Aldo", `{"kind":"humanoid","name":"Aldo","base":{"maxHealth":30,"luck":2}}`)
	corrupt("Fang", `{"kind":"golem","name":"Fang"}`)

	units, issues, err := s.Load(ctx, "vanguard", cat)
	if err != nil {
		t.Fatalf("one bad member must not fail the roster: %v", err)
	}
	if len(units) != 1 || units[0].Name != "Aldo" || units[0].MaxHealth() != 30 {
		t.Fatalf("Aldo should load with the known stats, got %d units", len(units))
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
	if issues[0].Member != "Aldo" || issues[0].Field != "base" || issues[0].ID != "luck" {
		t.Fatalf("unknown stat should be an Aldo base issue: %v", issues[0])
	}
	if issues[1].Member != "Fang" || issues[1].Field != "member" {
		t.Fatalf("unusable kind should drop Fang with a member issue: %v", issues[1])
	}
}

func TestOpen_MigrateFailureIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.db")
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Exec("CREATE VIEW rosters AS SELECT 1 AS id").Error; err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.Close()

	if _, err := Open("sqlite", path, logging.Nop()); err == nil {
		t.Fatal("a schema that cannot migrate must fail Open")
	}
}
