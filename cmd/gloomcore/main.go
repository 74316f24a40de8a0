// Gloomcore is a deterministic, turn-based dungeon crawl engine.
// Usage: gloomcore [--version] [--plain] [--script <file>] [--trace] [--seed <n>] [--slot <name>] <dungeon_directory>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/gloomcore/cli"
	"github.com/nathoo/gloomcore/engine"
	"github.com/nathoo/gloomcore/engine/save"
	"github.com/nathoo/gloomcore/loader"
	"github.com/nathoo/gloomcore/logger"
	"github.com/nathoo/gloomcore/store"
	"github.com/nathoo/gloomcore/store/gormstore"
	"github.com/nathoo/gloomcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: gloomcore [--version] [--plain] [--script <file>] [--trace] [--seed <n>] [--slot <name>] <dungeon_directory>"

func main() {
	plain := false
	trace := false
	seed := time.Now().UnixNano()
	slotName := ""
	var dungeonDir string
	var scriptFile string

	args := os.Args[1:]
	next := func(i int, flag string) string {
		if i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
			os.Exit(1)
		}
		return args[i+1]
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("gloomcore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			scriptFile = next(i, "--script")
			i++
		case "--seed":
			n, err := strconv.ParseInt(next(i, "--seed"), 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				os.Exit(1)
			}
			seed = n
			i++
		case "--slot":
			slotName = next(i, "--slot")
			i++
		default:
			if dungeonDir == "" {
				dungeonDir = args[i]
			}
		}
	}

	if dungeonDir == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	slot, err := save.ParseSlot(slotName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.FromEnv(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Load and compile Lua dungeon content.
	d, err := loader.Load(dungeonDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dungeon: %v\n", err)
		os.Exit(1)
	}
	for _, w := range d.Warnings {
		log.WithField("dungeon", dungeonDir).Warn(w)
	}

	st, err := openStore(ctx, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening save store: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"dungeon": d.Title,
		"seed":    seed,
		"slot":    slot,
	}).Info("run started")
	eng := engine.New(d.Snapshot, d.Config, seed, log)

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng, d, st)
		c.Slot = slot
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run(ctx)
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng, d, st)
		c.Slot = slot
		c.Trace = trace
		c.Run(ctx)
		return
	}

	if err := tui.Run(ctx, eng, d, st, slot); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore picks Postgres when GLOOMCORE_DB_DSN is set, otherwise JSON
// files under GLOOMCORE_SAVE_DIR (default ~/.gloomcore/saves).
func openStore(ctx context.Context, log logrus.FieldLogger) (store.Store, error) {
	if dsn := os.Getenv("GLOOMCORE_DB_DSN"); dsn != "" {
		db, err := gormstore.OpenPostgres(dsn)
		if err != nil {
			return nil, err
		}
		log.WithField("backend", "postgres").Info("save store ready")
		return gormstore.New(ctx, db)
	}

	dir := os.Getenv("GLOOMCORE_SAVE_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		dir = filepath.Join(home, ".gloomcore", "saves")
	}
	log.WithFields(logrus.Fields{"backend": "file", "dir": dir}).Info("save store ready")
	return store.NewFileStore(dir)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
