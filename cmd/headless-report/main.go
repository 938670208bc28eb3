package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Garsondee/grid-tactics/internal/config"
	"github.com/Garsondee/grid-tactics/internal/logging"
	"github.com/Garsondee/grid-tactics/internal/roster"
	"github.com/Garsondee/grid-tactics/internal/scenario"
	"github.com/Garsondee/grid-tactics/internal/turn"
)

// frame is the fixed step the encounters are driven with.
const frame = 16 * time.Millisecond

type unitStats struct {
	name     string
	side     string
	dealt    int
	taken    int
	hits     int
	kos      int
	survived bool
}

type runStats struct {
	runIndex int
	profile  string

	outcome turn.Outcome
	rounds  int
	turns   int
	steps   int

	firstHitRound int
	firstKORound  int

	moves    int
	resets   int
	delays   int
	rejected int
	expired  int

	units     []unitStats
	decisions map[string]int // behavior -> turns it decided; verbose runs only
	log       string         // formatted combat log, for the determinism check
}

func main() {
	var (
		cfgPath  string
		runs     int
		maxSteps int
		profiles string
		saveAs   string
		verbose  bool
	)
	flag.StringVar(&cfgPath, "config", "", "config file (yaml, json or toml)")
	flag.IntVar(&runs, "runs", 3, "number of headless encounters")
	flag.IntVar(&maxSteps, "max-steps", 50000, "frame limit per encounter")
	flag.StringVar(&profiles, "profiles", "", "semicolon-separated behavior lists cycled across runs, e.g. \"attack-in-place,hold-position;approach-nearest\"")
	flag.StringVar(&saveAs, "save-roster", "", "save the player side of the last run under this name")
	flag.BoolVar(&verbose, "verbose", false, "record AI decisions and report behavior usage (overrides encounter.verboseLog)")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if maxSteps <= 0 {
		fmt.Println("error: -max-steps must be > 0")
		return
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	log := logging.New(os.Stderr, cfg.LogLevel, true)

	cat, lineup, err := scenario.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	layout, err := scenario.LoadLayout(cfg.Encounter.Map)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	profileList := parseProfiles(profiles, cfg.AI.Behaviors)

	fmt.Printf("=== Headless Encounter Report ===\n")
	fmt.Printf("runs=%d max_steps=%d max_rounds=%d profiles=%d\n\n", runs, maxSteps, cfg.Encounter.MaxRounds, len(profileList))

	all := make([]runStats, 0, runs)
	var last *scenario.Battle
	for i := 0; i < runs; i++ {
		profile := profileList[i%len(profileList)]
		behaviors, err := turn.BehaviorsByName(profile)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		b, err := scenario.Build(scenario.Setup{
			Layout:    layout,
			Catalog:   cat,
			Lineup:    lineup,
			Behaviors: behaviors,
			MaxRounds: cfg.Encounter.MaxRounds,
			Verbose:   verbose || cfg.Encounter.VerboseLog,
			Log:       log,
		})
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		rs := runEncounter(i+1, strings.Join(profile, ","), b, maxSteps)
		all = append(all, rs)
		printRun(rs)
		last = b
	}

	printAggregate(all)

	if saveAs != "" && last != nil {
		store, err := roster.Open(cfg.Storage.Driver, cfg.Storage.DSN, logging.Component(log, "roster"))
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		defer store.Close()
		id, err := store.Save(context.Background(), saveAs, last.PlayerUnits())
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("\nsaved roster %q id=%s\n", saveAs, id)
	}
}

// parseProfiles splits the -profiles flag; an empty flag yields the
// configured behavior list as the only profile.
func parseProfiles(flagValue string, fallback []string) [][]string {
	var out [][]string
	for _, p := range strings.Split(flagValue, ";") {
		var names []string
		for _, n := range strings.Split(p, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		if len(names) > 0 {
			out = append(out, names)
		}
	}
	if len(out) == 0 {
		out = append(out, fallback)
	}
	return out
}

func runEncounter(runIndex int, profile string, b *scenario.Battle, maxSteps int) runStats {
	steps := 0
	for ; steps < maxSteps && b.Encounter.Outcome() == turn.OutcomeOngoing; steps++ {
		b.Encounter.Update(frame)
	}
	clog := b.CombatLog
	entries := clog.Entries()

	byName := map[string]*unitStats{}
	var order []string
	for _, h := range b.Arena.Handles() {
		u := b.Arena.Unit(h)
		side := "enemy"
		if u.PlayerControlled {
			side = "player"
		}
		byName[u.Name] = &unitStats{name: u.Name, side: side, survived: !u.IsKnockedOut()}
		order = append(order, u.Name)
	}
	for _, e := range entries {
		switch {
		case e.Category == turn.CatAttack && e.Key == "hit":
			if us, ok := byName[e.Unit]; ok {
				us.hits++
				us.dealt += int(e.NumVal)
			}
			if victim, ok := byName[hitVictim(e.Value)]; ok {
				victim.taken += int(e.NumVal)
			}
		case e.Category == turn.CatKnockOut:
			if killer, ok := byName[strings.TrimPrefix(e.Value, "by ")]; ok {
				killer.kos++
			}
		}
	}
	units := make([]unitStats, 0, len(order))
	for _, n := range order {
		units = append(units, *byName[n])
	}

	return runStats{
		runIndex:      runIndex,
		profile:       profile,
		outcome:       b.Encounter.Outcome(),
		rounds:        b.Encounter.Round(),
		turns:         b.Encounter.Turns(),
		steps:         steps,
		firstHitRound: firstRound(clog, turn.CatAttack, "hit"),
		firstKORound:  firstRound(clog, turn.CatKnockOut, ""),
		moves:         clog.Count(turn.CatMove, "move"),
		resets:        clog.Count(turn.CatMove, "reset"),
		delays:        clog.Count(turn.CatTurn, "delay"),
		rejected:      clog.Count(turn.CatRejected, ""),
		expired:       clog.Count(turn.CatModifier, "expired"),
		units:         units,
		decisions:     behaviorUsage(clog),
		log:           clog.Format(),
	}
}

// hitVictim extracts the victim from a hit entry value ("Name for N").
func hitVictim(value string) string {
	if i := strings.LastIndex(value, " for "); i >= 0 {
		return value[:i]
	}
	return value
}

// behaviorUsage counts AI decision entries by the behavior that produced
// them. The behavior is the first word of the entry value.
func behaviorUsage(clog *turn.CombatLog) map[string]int {
	out := map[string]int{}
	for _, e := range clog.Filter(turn.CatAI, "decision") {
		if f := strings.Fields(e.Value); len(f) > 0 {
			out[f[0]]++
		}
	}
	return out
}

func formatUsage(usage map[string]int) string {
	names := make([]string, 0, len(usage))
	for n := range usage {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", n, usage[n]))
	}
	return strings.Join(parts, " ")
}

func firstRound(clog *turn.CombatLog, category, key string) int {
	if e, ok := clog.First(category, key); ok {
		return e.Round
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (profile=%s) ---\n", rs.runIndex, rs.profile)
	fmt.Printf("outcome=%s rounds=%d turns=%d steps=%d\n", rs.outcome, rs.rounds, rs.turns, rs.steps)
	fmt.Printf("phase_markers: first_hit_round=%d first_ko_round=%d\n", rs.firstHitRound, rs.firstKORound)
	fmt.Printf("event_totals: move=%d reset=%d delay=%d rejected=%d expired=%d\n",
		rs.moves, rs.resets, rs.delays, rs.rejected, rs.expired)
	if len(rs.decisions) > 0 {
		fmt.Printf("decisions: %s\n", formatUsage(rs.decisions))
	}
	for _, u := range rs.units {
		status := "standing"
		if !u.survived {
			status = "down"
		}
		fmt.Printf("  %-10s %-6s hits=%d dealt=%d taken=%d kos=%d %s\n", u.name, u.side, u.hits, u.dealt, u.taken, u.kos, status)
	}
	fmt.Println()
}

type sideTotals struct {
	total    int
	survived int
	dealt    int
}

func sideCounts(units []unitStats) map[string]*sideTotals {
	out := map[string]*sideTotals{"player": {}, "enemy": {}}
	for _, u := range units {
		st, ok := out[u.side]
		if !ok {
			st = &sideTotals{}
			out[u.side] = st
		}
		st.total++
		st.dealt += u.dealt
		if u.survived {
			st.survived++
		}
	}
	return out
}

// deterministic reports whether every run that shares a profile produced
// the same combat log.
func deterministic(all []runStats) bool {
	seen := map[string]string{}
	for _, rs := range all {
		if prev, ok := seen[rs.profile]; ok && prev != rs.log {
			return false
		}
		seen[rs.profile] = rs.log
	}
	return true
}

func printAggregate(all []runStats) {
	outcomes := map[turn.Outcome]int{}
	totalRounds, totalTurns, totalRejected := 0, 0, 0
	hitRounds := make([]int, 0, len(all))
	koRounds := make([]int, 0, len(all))

	type unitAgg struct {
		side     string
		dealt    int
		kos      int
		survived int
		count    int
	}
	aggs := map[string]*unitAgg{}
	sides := map[string]*sideTotals{}

	for _, rs := range all {
		outcomes[rs.outcome]++
		totalRounds += rs.rounds
		totalTurns += rs.turns
		totalRejected += rs.rejected
		if rs.firstHitRound >= 0 {
			hitRounds = append(hitRounds, rs.firstHitRound)
		}
		if rs.firstKORound >= 0 {
			koRounds = append(koRounds, rs.firstKORound)
		}
		for _, u := range rs.units {
			ag, ok := aggs[u.name]
			if !ok {
				ag = &unitAgg{side: u.side}
				aggs[u.name] = ag
			}
			ag.dealt += u.dealt
			ag.kos += u.kos
			ag.count++
			if u.survived {
				ag.survived++
			}
		}
		for side, st := range sideCounts(rs.units) {
			acc, ok := sides[side]
			if !ok {
				acc = &sideTotals{}
				sides[side] = acc
			}
			acc.total += st.total
			acc.survived += st.survived
			acc.dealt += st.dealt
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d player_victory=%d enemy_victory=%d draw=%d unfinished=%d\n", n,
		outcomes[turn.OutcomePlayerVictory], outcomes[turn.OutcomeEnemyVictory], outcomes[turn.OutcomeDraw], outcomes[turn.OutcomeOngoing])
	fmt.Printf("avg_per_run: rounds=%.1f turns=%.1f rejected=%.1f\n", avg(totalRounds, n), avg(totalTurns, n), avg(totalRejected, n))
	fmt.Printf("phase_marker_avg_rounds: first_hit=%s first_ko=%s\n", avgString(hitRounds), avgString(koRounds))
	fmt.Printf("deterministic=%t\n", deterministic(all))

	sideNames := make([]string, 0, len(sides))
	for s := range sides {
		sideNames = append(sideNames, s)
	}
	sort.Strings(sideNames)
	for _, s := range sideNames {
		st := sides[s]
		rate := 0.0
		if st.total > 0 {
			rate = float64(st.survived) / float64(st.total) * 100
		}
		fmt.Printf("side %-6s survival=%.0f%% avg_damage=%.1f\n", s, rate, avg(st.dealt, n))
	}

	fmt.Println("\n=== Aggregate Unit Performance ===")
	names := make([]string, 0, len(aggs))
	for name := range aggs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ag := aggs[name]
		fmt.Printf("  %-10s %-6s avg_damage=%.1f kos=%d survival=%.0f%%\n",
			name, ag.side, avg(ag.dealt, ag.count), ag.kos, float64(ag.survived)/float64(ag.count)*100)
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
