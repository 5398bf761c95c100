package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"

	"github.com/permledger/permledger/app/services/node/handlers"
	v1 "github.com/permledger/permledger/app/services/node/handlers/v1"
	"github.com/permledger/permledger/business/ledger/query"
	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/business/ledger/wsv/memory"
	"github.com/permledger/permledger/business/ledger/wsv/postgres"
	"github.com/permledger/permledger/foundation/events"
	"github.com/permledger/permledger/foundation/ledger/blockstore"
	"github.com/permledger/permledger/foundation/ledger/blockstore/storage"
	"github.com/permledger/permledger/foundation/ledger/genesis"
	"github.com/permledger/permledger/foundation/ledger/pending"
	"github.com/permledger/permledger/foundation/logger"
)

// build is the git version of this program. It can be set at build time
// with -ldflags.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Ledger struct {
			GenesisPath         string `conf:"default:zblock/genesis.json"`
			BlocksPath          string `conf:"default:zblock/blocks"`
			ValidateSignatories bool   `conf:"default:false"`
		}
		Storage struct {
			Backend string `conf:"default:memory,help:memory or postgres"`
		}
		DB struct {
			User         string `conf:"default:postgres"`
			Password     string `conf:"default:postgres,mask"`
			Host         string `conf:"default:localhost"`
			Name         string `conf:"default:ledger"`
			MaxIdleConns int    `conf:"default:2"`
			MaxOpenConns int    `conf:"default:0"`
			DisableTLS   bool   `conf:"default:true"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// World-State Support

	gen, err := genesis.Load(cfg.Ledger.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis file: %w", err)
	}

	var wsvStore wsv.Store

	switch cfg.Storage.Backend {
	case "memory":
		memStore, err := memory.New(gen)
		if err != nil {
			return fmt.Errorf("unable to build world state: %w", err)
		}
		wsvStore = memStore

	case "postgres":
		log.Infow("startup", "status", "initializing database", "host", cfg.DB.Host)

		db, err := postgres.Open(postgres.Config{
			User:         cfg.DB.User,
			Password:     cfg.DB.Password,
			Host:         cfg.DB.Host,
			Name:         cfg.DB.Name,
			MaxIdleConns: cfg.DB.MaxIdleConns,
			MaxOpenConns: cfg.DB.MaxOpenConns,
			DisableTLS:   cfg.DB.DisableTLS,
		})
		if err != nil {
			return fmt.Errorf("unable to connect to database: %w", err)
		}
		defer func() {
			log.Infow("shutdown", "status", "stopping database", "host", cfg.DB.Host)
			db.Close()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("unable to migrate database: %w", err)
		}

		wsvStore = postgres.NewStore(db)

	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	// =========================================================================
	// Ledger Support

	// The events value is used by the engine to signal activity to any
	// websocket subscriber and keeps the logs as the system of record.
	evts := events.New()
	defer evts.Shutdown()

	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send("%s", s)
	}

	serializer, err := storage.NewDisk(cfg.Ledger.BlocksPath)
	if err != nil {
		return fmt.Errorf("unable to open block storage: %w", err)
	}

	blocks, err := blockstore.New(serializer, ev)
	if err != nil {
		return fmt.Errorf("unable to load block store: %w", err)
	}
	defer blocks.Close()

	pool := pending.New()

	engine, err := query.New(query.Config{
		WSV:                 wsvStore,
		Blocks:              blocks,
		Pending:             pool,
		EvHandler:           ev,
		ValidateSignatories: cfg.Ledger.ValidateSignatories,
	})
	if err != nil {
		return fmt.Errorf("unable to construct query engine: %w", err)
	}

	log.Infow("startup", "status", "ledger loaded", "height", blocks.Height(), "chain_id", gen.ChainID)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, handlers.DebugMux()); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing public API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	publicMux := handlers.PublicMux(v1.Config{
		Shutdown: shutdown,
		Log:      log,
		Engine:   engine,
		Blocks:   blocks,
		Evts:     evts,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
