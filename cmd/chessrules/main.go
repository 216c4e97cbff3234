package main

import (
	"flag"
	"os"
	"runtime/pprof"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/protocol"
	"github.com/hailam/chessrules/internal/storage"
)

var (
	variantFlag = flag.String("variant", "", "variant for new games (standard, four-player, shrinking, armada)")
	dataFlag    = flag.String("data", "", "data directory for saved games")
	workersFlag = flag.Int("workers", 0, "parallel workers for the checkmate search")
	shrinkFlag  = flag.Int("shrink", 0, "rounds between two shrinks of a shrinking board")
	memoryFlag  = flag.Bool("memory", false, "keep saved games in memory only")
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	_ = godotenv.Load()
	flag.Parse()

	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	store, err := openStorage()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	cfg, err := loadConfig(store)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if first, err := store.IsFirstLaunch(); err == nil && first {
		log.Info().Msg("first launch, type help for the command list")
		if err := store.MarkFirstLaunchComplete(); err != nil {
			log.Warn().Err(err).Msg("could not mark first launch")
		}
	}

	log.Info().
		Str("variant", cfg.Variant.String()).
		Int("workers", cfg.Workers).
		Msg("ready")

	p := protocol.New(os.Stdin, os.Stdout, cfg, store, log.Logger)
	if err := p.Run(); err != nil {
		log.Error().Err(err).Msg("input error")
	}
}

func openStorage() (*storage.Storage, error) {
	if *memoryFlag {
		return storage.NewMemoryStorage(log.Logger)
	}
	// An empty -data falls back to storage.DataDirEnv, then the platform
	// data directory.
	return storage.NewStorage(*dataFlag, log.Logger)
}

// loadConfig resolves each setting from its flag, then its environment
// variable, then the stored preferences.
func loadConfig(store *storage.Storage) (protocol.Config, error) {
	prefs, err := store.LoadPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("could not load preferences")
		prefs = storage.DefaultPreferences()
	}

	name := *variantFlag
	if name == "" {
		name = getEnv("CHESSRULES_VARIANT", prefs.Variant)
	}
	v, err := game.ParseVariant(name)
	if err != nil {
		return protocol.Config{}, err
	}

	workers := *workersFlag
	if workers <= 0 {
		workers = getEnvInt("CHESSRULES_WORKERS", prefs.Workers)
	}
	shrink := *shrinkFlag
	if shrink <= 0 {
		shrink = getEnvInt("CHESSRULES_SHRINK_EVERY", prefs.ShrinkEvery)
	}

	return protocol.Config{
		Variant:     v,
		Workers:     max(workers, 1),
		ShrinkEvery: shrink,
	}, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
