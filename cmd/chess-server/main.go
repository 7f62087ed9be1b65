// Package main implements the chess server: a RESTful API over the rules engine
// with optional persistence and an external move engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aichess/cmd/chess-server/cli"
	"aichess/internal/server/engine"
	"aichess/internal/server/http"
	"aichess/internal/server/processor"
	"aichess/internal/server/service"
	"aichess/internal/server/storage"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	var (
		apiHost       = flag.String("api-host", "localhost", "API server host")
		apiPort       = flag.Int("api-port", 8080, "API server port")
		dev           = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		storagePath   = flag.String("storage-path", "", "Path to SQLite database file")
		badgerDir     = flag.String("badger-dir", "", "Directory for a Badger store, used instead of SQLite")
		enginePath    = flag.String("engine-path", "", "Path to a UCI engine binary (random mover if empty)")
		engineWorkers = flag.Int("engine-workers", 2, "Number of engine workers")
		pidPath       = flag.String("pid", "", "Optional path to write PID file")
		pidLock       = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	if *pidLock && *pidPath == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}
	if *storagePath != "" && *badgerDir != "" {
		log.Fatal("Error: -storage-path and -badger-dir are mutually exclusive")
	}

	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer cleanup()
		log.Printf("PID file created at: %s (lock: %v)", *pidPath, *pidLock)
	}

	// 1. Storage (optional); the service closes it on shutdown
	store, err := openStore(*storagePath, *badgerDir, *dev)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// 2. Service with optional storage
	svc := service.New(store)

	// 3. Processor with the engine pool
	factory := engine.NewFactory(engine.Config{Path: *enginePath})
	proc := processor.New(svc, factory, *engineWorkers)

	// 4. Fiber app
	app := http.NewFiberApp(proc, svc, *dev)
	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		log.Printf("Chess API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		if *enginePath != "" {
			log.Printf("Engine: %s (%d workers)", *enginePath, *engineWorkers)
		} else {
			log.Printf("Engine: random legal mover (%d workers)", *engineWorkers)
		}
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err = app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err = proc.Close(); err != nil {
		log.Printf("Processor close error: %v", err)
	}

	if err = svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	log.Println("Server exited")
}

// openStore returns nil when persistence is disabled
func openStore(sqlitePath, badgerDir string, dev bool) (storage.Store, error) {
	switch {
	case sqlitePath != "":
		log.Printf("Initializing SQLite storage at: %s", sqlitePath)
		store, err := storage.NewSQLite(sqlitePath, dev)
		if err != nil {
			return nil, err
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
		return store, nil

	case badgerDir != "":
		log.Printf("Initializing Badger storage at: %s", badgerDir)
		return storage.NewBadger(badgerDir)

	default:
		log.Printf("Persistent storage disabled (use -storage-path or -badger-dir to enable)")
		return nil, nil
	}
}
