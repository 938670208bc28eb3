package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if s.LogLevel != "info" || s.Storage.Driver != "sqlite" || s.Window.CellSize != 48 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.AI.ThinkingDelay != 400*time.Millisecond {
		t.Fatalf("thinking delay default should be 400ms, got %s", s.AI.ThinkingDelay)
	}
	if len(s.AI.Behaviors) != 4 || s.AI.Behaviors[0] != "attack-in-place" {
		t.Fatalf("unexpected behavior defaults: %v", s.AI.Behaviors)
	}
	if s.Encounter.MaxRounds != 50 || s.Encounter.VerboseLog {
		t.Fatalf("unexpected encounter defaults: %+v", s.Encounter)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfig(t, "tactics.yaml", `
logLevel: debug
ai:
  thinkingDelay: 1s
  behaviors: [hold-position]
encounter:
  map: maps/bridge.txt
  maxRounds: 12
  verboseLog: true
storage:
  driver: postgres
  dsn: host=db user=tactics
`)
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.LogLevel != "debug" || s.AI.ThinkingDelay != time.Second {
		t.Fatalf("file values not applied: %+v", s)
	}
	if len(s.AI.Behaviors) != 1 || s.AI.Behaviors[0] != "hold-position" {
		t.Fatalf("behaviors not replaced: %v", s.AI.Behaviors)
	}
	if s.Encounter.Map != "maps/bridge.txt" || s.Encounter.MaxRounds != 12 || !s.Encounter.VerboseLog {
		t.Fatalf("encounter not applied: %+v", s.Encounter)
	}
	if s.Storage.Driver != "postgres" || s.Storage.DSN != "host=db user=tactics" {
		t.Fatalf("storage not applied: %+v", s.Storage)
	}
	if s.Window.CellSize != 48 {
		t.Fatal("unset keys keep their defaults")
	}
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeConfig(t, "tactics.json", `{"window": {"cellSize": 32}}`)
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Window.CellSize != 32 {
		t.Fatalf("cell size should be 32, got %d", s.Window.CellSize)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TACTICS_ENCOUNTER_MAXROUNDS", "7")
	t.Setenv("TACTICS_LOGLEVEL", "warn")
	t.Setenv("TACTICS_ENCOUNTER_VERBOSELOG", "true")
	s, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if s.Encounter.MaxRounds != 7 || s.LogLevel != "warn" || !s.Encounter.VerboseLog {
		t.Fatalf("env overrides not applied: %+v", s)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/tactics.yaml")
	if err == nil || !strings.Contains(err.Error(), "error reading config file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, "tactics.yaml", "storage:\n  driver: mongo\n")
	if _, err := Load(path); err == nil {
		t.Fatal("unknown storage driver should fail validation")
	}
}

func TestValidate(t *testing.T) {
	base := Settings{Storage: StorageSettings{Driver: "sqlite"}, Window: WindowSettings{CellSize: 16}}
	if err := base.Validate(); err != nil {
		t.Fatal(err)
	}
	bad := base
	bad.Encounter.MaxRounds = -1
	if bad.Validate() == nil {
		t.Fatal("negative round cap should fail")
	}
	bad = base
	bad.Window.CellSize = 0
	if bad.Validate() == nil {
		t.Fatal("zero cell size should fail")
	}
}
