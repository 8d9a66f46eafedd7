// Command kvs-server runs the kvs TCP server: it opens the configured
// storage engine, enforces the on-disk engine sentinel, starts a worker
// pool, and serves Get/Set/Remove requests until the process is killed.
//
// Grounded on the teacher's cmd/main.go for the slog setup / config load /
// fatal-on-error startup sequence, generalized from the teacher's
// CLI-over-stdin flow to the TCP accept loop of spec.md §4.7/§6.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/jassi-singh/kvs/internal/config"
	"github.com/jassi-singh/kvs/internal/engine"
	"github.com/jassi-singh/kvs/internal/pool"
	"github.com/jassi-singh/kvs/internal/server"
)

const version = "0.1.0"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	addr := flag.String("addr", "", "listen address (overrides config/env)")
	engineName := flag.String("engine", "", "storage engine: kvs|sled (overrides config/env)")
	configPath := flag.String("config", "", "optional path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("kvs-server: failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *engineName != "" {
		cfg.Engine = *engineName
	}

	engineKind := engine.Name(cfg.Engine)

	slog.Info("kvs-server "+version, "engine", engineKind, "addr", cfg.ListenAddr)

	if err := engine.CheckSentinel(cfg.DataDir, engineKind); err != nil {
		slog.Error("kvs-server: engine mismatch", "error", err)
		os.Exit(1)
	}

	eng, err := engine.Open(engineKind, cfg.DataDir)
	if err != nil {
		slog.Error("kvs-server: failed to open engine", "error", err)
		os.Exit(1)
	}
	defer eng.Close()

	if err := engine.WriteSentinel(cfg.DataDir, engineKind); err != nil {
		slog.Error("kvs-server: failed to write engine sentinel", "error", err)
		os.Exit(1)
	}

	p, err := newPool(cfg.PoolKind, cfg.PoolSize)
	if err != nil {
		slog.Error("kvs-server: failed to start worker pool", "error", err)
		os.Exit(1)
	}
	defer p.Shutdown()

	srv := server.New(eng, p)
	if err := srv.Run(cfg.ListenAddr); err != nil {
		slog.Error("kvs-server: server exited with error", "error", err)
		os.Exit(1)
	}
}

func newPool(kind string, size int) (pool.Pool, error) {
	switch kind {
	case "naive":
		return pool.NewNaivePool(size)
	case "delegating":
		return pool.NewDelegatingPool(size)
	default:
		return pool.NewSharedQueuePool(size)
	}
}
