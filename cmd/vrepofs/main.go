package main

import (
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/msojda/repository/internal/fuseadapter"
	"github.com/msojda/repository/internal/logging"
	"github.com/msojda/repository/internal/repository"
	"github.com/msojda/repository/internal/store"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var logger = logging.GetLogger()

func main() {
	mountPoint := flag.String("mount", "", "Mount point for the virtual resource repository")
	baseDir := flag.String("base", "", "Base directory relative filesystem targets resolve against")
	storeFile := flag.String("store", "", "Path to the JSON mapping store (required)")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	if *verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	logger.Info("Starting vrepofs...")
	logger.Debug("Mount point: %s", *mountPoint)
	logger.Debug("Base directory: %s", *baseDir)
	logger.Debug("Store file: %s", *storeFile)

	if *mountPoint == "" || *baseDir == "" || *storeFile == "" {
		logger.Error("mount, base, and store are required")
		os.Exit(1)
	}

	cleanMount := filepath.Clean(*mountPoint)
	cleanBase := filepath.Clean(*baseDir)

	logger.Info("Opening mapping store...")
	kv, err := store.Open(*storeFile)
	if err != nil {
		logger.Error("Failed to open store: %v", err)
		os.Exit(1)
	}

	repo := repository.New(kv, cleanBase)
	fs := fuseadapter.New(repo)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Mounting repository...")
	conn, err := fuse.Mount(cleanMount,
		fuse.FSName("vrepofs"),
		fuse.Subtype("vrepofs"),
		fuse.AllowOther(),
		fuse.DefaultPermissions(),
	)
	if err != nil {
		logger.Error("Mount failed: %v", err)
		os.Exit(1)
	}
	defer conn.Close()

	var wg sync.WaitGroup
	wg.Add(1)

	logger.Debug("Starting FUSE server...")
	go func() {
		defer wg.Done()
		logger.Info("Serving repository...")
		if err := fusefs.Serve(conn, fs); err != nil {
			logger.Error("FUSE server error: %v", err)
		}
		logger.Debug("FUSE server stopped")
	}()

	logger.Info("Repository mounted and ready")

	go func() {
		sig := <-sigChan
		logger.Info("Received signal %v", sig)
		if err := fuse.Unmount(cleanMount); err != nil {
			logger.Error("Unmount error: %v", err)
		}
	}()

	wg.Wait()
	logger.Info("Clean shutdown complete")
}
