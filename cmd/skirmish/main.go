package main

import (
	"context"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/Garsondee/grid-tactics/internal/config"
	"github.com/Garsondee/grid-tactics/internal/logging"
	"github.com/Garsondee/grid-tactics/internal/roster"
	"github.com/Garsondee/grid-tactics/internal/scenario"
	"github.com/Garsondee/grid-tactics/internal/skirmish"
	"github.com/Garsondee/grid-tactics/internal/turn"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

func main() {
	var (
		cfgPath, rosterName, saveAs string
		verbose                     bool
	)
	flag.StringVar(&cfgPath, "config", "", "config file (yaml, json or toml)")
	flag.StringVar(&rosterName, "roster", "", "saved roster to field instead of the catalog's player line-up")
	flag.StringVar(&saveAs, "save-roster", "", "save the player side under this name when the battle ends")
	flag.BoolVar(&verbose, "verbose", false, "keep AI deliberation in the combat log (overrides encounter.verboseLog)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := logging.New(os.Stderr, "info", true)
		boot.Fatal().Err(err).Msg("Failed to load config")
	}
	log := logging.New(os.Stderr, cfg.LogLevel, true)

	cat, lineup, err := scenario.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load catalog")
	}
	layout, err := scenario.LoadLayout(cfg.Encounter.Map)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load map")
	}
	behaviors, err := turn.BehaviorsByName(cfg.AI.Behaviors)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid ai.behaviors")
	}

	var store *roster.Store
	if rosterName != "" || saveAs != "" {
		store, err = roster.Open(cfg.Storage.Driver, cfg.Storage.DSN, logging.Component(log, "roster"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open roster store")
		}
		defer store.Close()
	}

	var party []*unit.Unit
	if rosterName != "" {
		var issues []roster.Issue
		party, issues, err = store.Load(context.Background(), rosterName, cat)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load roster")
		}
		for _, is := range issues {
			log.Warn().Str("issue", is.String()).Msg("Roster member restored with an issue")
		}
	}

	b, err := scenario.Build(scenario.Setup{
		Layout:        layout,
		Catalog:       cat,
		Lineup:        lineup,
		Roster:        party,
		HumanPlayers:  true,
		Behaviors:     behaviors,
		ThinkingDelay: cfg.AI.ThinkingDelay,
		MaxRounds:     cfg.Encounter.MaxRounds,
		Verbose:       verbose || cfg.Encounter.VerboseLog,
		Log:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build encounter")
	}

	g := skirmish.New(b, cfg.Window.CellSize, log)
	if saveAs != "" {
		g.OnFinish = func(turn.Outcome) {
			if _, err := store.Save(context.Background(), saveAs, b.PlayerUnits()); err != nil {
				log.Error().Err(err).Msg("Failed to save roster")
			}
		}
	}

	w, h := g.WindowSize()
	ebiten.SetWindowTitle("Grid Tactics")
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(g); err != nil {
		log.WithLevel(zerolog.FatalLevel).Err(err).Msg("Game exited with error")
		os.Exit(1)
	}
}
