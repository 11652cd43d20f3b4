package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardanlabs/blocktrading/app/services/node/handlers"
	"github.com/ardanlabs/blocktrading/business/sys/metrics"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database/storage/disk"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database/storage/memory"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database/storage/pebble"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/genesis"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/state"
	"github.com/ardanlabs/blocktrading/foundation/events"
	"github.com/ardanlabs/blocktrading/foundation/logger"
	"github.com/ardanlabs/blocktrading/foundation/nameservice"
	"github.com/ardanlabs/conf/v3"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
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

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CORSOrigin      string        `conf:"default:*"`
		}
		State struct {
			NodeName    string `conf:"default:admin"`
			GenesisPath string `conf:"default:zblock/genesis.json"`
			Storage     string `conf:"default:pebble,help:memory|disk|pebble"`
			DBPath      string `conf:"default:zblock/journal"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "block trading registry node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
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

	fmt.Println(` ____  _     ___   ____ _  __  _____ ____      _    ____ ___ _   _  ____ `)
	fmt.Println(`| __ )| |   / _ \ / ___| |/ / |_   _|  _ \    / \  |  _ \_ _| \ | |/ ___|`)
	fmt.Println(`|  _ \| |  | | | | |   | ' /    | | | |_) |  / _ \ | | | | ||  \| | |  _ `)
	fmt.Println(`| |_) | |__| |_| | |___| . \    | | |  _ <  / ___ \| |_| | || |\  | |_| |`)
	fmt.Println(`|____/|_____\___/ \____|_|\_\   |_| |_| \_\/_/   \_\____/___|_| \_|\____|`)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The nameservice package provides name resolution for account addresses.
	// The names come from the file names in the zblock/accounts folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// Logging the accounts for documentation in the logs.
	for account, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "account", account)
	}

	// =========================================================================
	// Registry Support

	// The node account becomes the admin owner when the genesis file does
	// not name one.
	path := filepath.Join(cfg.NameService.Folder, cfg.State.NodeName+".ecdsa")
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return fmt.Errorf("unable to load private key for node: %w", err)
	}
	nodeID := accounts.PublicKeyToAccountID(privateKey.PublicKey)

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	storage, err := openStorage(log, cfg.State.Storage, cfg.State.DBPath)
	if err != nil {
		return fmt.Errorf("unable to open journal storage: %w", err)
	}

	// The registry packages accept a function of this signature to allow the
	// application to log. The viewer prefixed messages are sent to any
	// websocket client that is connected into the system through the events
	// package.
	evts := events.New()
	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...), "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Publish(v, args...)
	}

	// The state value represents the registry node and manages the journal
	// and provides an API for application support.
	state, err := state.New(state.Config{
		AccountID: nodeID,
		Genesis:   gen,
		Storage:   storage,
		EvHandler: ev,
		Recorder:  metrics.NewCalls(),
	})
	if err != nil {
		storage.Close()
		return err
	}
	defer state.Shutdown()

	log.Infow("startup", "status", "registry ready", "node", nodeID, "admin", state.QueryAdminOwner(), "latest", state.RetrieveLatestEntry().Number)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, state)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    state,
		NS:       ns,
		Evts:     evts,
		Origin:   cfg.Web.CORSOrigin,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// openStorage constructs the journal backend named by kind.
func openStorage(log *zap.SugaredLogger, kind string, dbPath string) (database.Storage, error) {
	switch kind {
	case "memory":
		return memory.New()

	case "disk":
		return disk.New(dbPath)

	case "pebble":
		return pebble.New(dbPath, log.With("component", "pebble"))
	}

	return nil, fmt.Errorf("unknown storage %q", kind)
}
