// Command walkthrough replays authored walkthroughs against a world and
// reports whether each one produces its expected trail and outcome.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/bootstrap"
	"github.com/cory-johannsen/adventure/internal/game/transcript"
	"github.com/cory-johannsen/adventure/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults and ADVENTURE_* env when empty)")
	worldFile := flag.String("world", "", "path to the world YAML file, overriding game.world_file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] [-world file] walkthrough.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := bootstrap.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *worldFile != "" {
		cfg.Game.WorldFile = *worldFile
	}
	logger, err := observability.NewLogger(cfg.Logging, "walkthrough")
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	w, err := bootstrap.LoadWorld(cfg.Game, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	failed := 0
	for _, path := range flag.Args() {
		wt, err := transcript.LoadWalkthrough(path)
		if err != nil {
			logger.Error("skipping walkthrough", zap.Error(err))
			failed++
			continue
		}
		res, err := transcript.Run(w, wt.Options(), wt.Commands, logger)
		if err != nil {
			logger.Error("replay failed", zap.String("walkthrough", wt.Name), zap.Error(err))
			failed++
			continue
		}
		fmt.Printf("%s: %v (%s, score %d, %d moves)\n", wt.Name, res.Trail, res.Status, res.Score, res.Moves)
		if err := wt.Verify(res); err != nil {
			fmt.Println("  FAIL:", err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
