package turn

import (
	"strings"
	"testing"
)

func TestCombatLog_FilterAndQueries(t *testing.T) {
	cl := NewCombatLog(false)
	cl.Add(1, 1, "Aldo", "player", CatMove, "move", "(1,1) -> (3,1)", 2)
	cl.Add(1, 1, "Aldo", "player", CatAttack, "hit", "Grey for 9", 9)
	cl.Add(1, 2, "Grey", "enemy", CatKnockOut, "knocked_out", "by Aldo", 0)
	cl.AddVerbose(1, 2, "Grey", "enemy", CatAI, "decision", "hold-position", 0)
	cl.Add(2, 3, "Aldo", "player", CatAttack, "hit", "Pip for 4", 4)

	if cl.Len() != 4 || cl.Count(CatAI, "") != 0 {
		t.Fatalf("verbose entry should be dropped, len=%d", cl.Len())
	}
	if n := cl.Count(CatAttack, "hit"); n != 2 {
		t.Fatalf("expected 2 hits, got %d", n)
	}
	if last, ok := cl.Last(CatAttack, "hit"); !ok || last.NumVal != 4 {
		t.Fatalf("last hit should be worth 4, got %+v", last)
	}
	if first, ok := cl.First(CatAttack, ""); !ok || first.Value != "Grey for 9" {
		t.Fatalf("first attack should be on Grey, got %+v", first)
	}
	if !cl.HasEntry(CatKnockOut, "", "Aldo") {
		t.Fatal("knock-out by Aldo should be found")
	}
	if cl.HasEntry(CatAttack, "hit", "Nobody") {
		t.Fatal("no hit on Nobody")
	}
	if len(cl.Filter("", "hit")) != 2 {
		t.Fatal("empty category should match every hit")
	}
	if _, ok := cl.Last(CatModifier, ""); ok {
		t.Fatal("no modifier entries recorded")
	}
}

func TestCombatLog_NilDiscards(t *testing.T) {
	var cl *CombatLog
	cl.Add(1, 1, "Aldo", "player", CatTurn, "turn_start", "", 0)
	cl.AddVerbose(1, 1, "Aldo", "player", CatAI, "decision", "", 0)
	if cl.Verbose() {
		t.Fatal("nil log is never verbose")
	}
}

func TestCombatLog_FormatAndTail(t *testing.T) {
	cl := NewCombatLog(true)
	cl.Add(1, 1, "Aldo", "player", CatTurn, "turn_start", "(1,1)", 0)
	cl.AddVerbose(1, 1, "Aldo", "player", CatAI, "decision", "attack-in-place", 0)
	cl.Add(1, 1, "Aldo", "player", CatTurn, "turn_end", "", 0)

	out := cl.Format()
	if strings.Count(out, "\n") != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	if !strings.HasPrefix(out, "[R01 T001] Aldo") {
		t.Fatalf("unexpected line format: %q", out)
	}
	tail := cl.Tail(2)
	if len(tail) != 2 || !strings.Contains(tail[1], "turn_end") {
		t.Fatalf("tail should end with turn_end: %v", tail)
	}
	if len(cl.Tail(10)) != 3 {
		t.Fatal("tail longer than the log returns everything")
	}
}
