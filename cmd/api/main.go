package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pefman/cr-calc/internal/cards"
	"github.com/pefman/cr-calc/internal/config"
	"github.com/pefman/cr-calc/internal/server"
	"github.com/pefman/cr-calc/internal/stats"
	"github.com/pefman/cr-calc/internal/storage"
	"github.com/pefman/cr-calc/internal/storage/sqlite"
)

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

func loadCards(cfg config.Config) (*cards.Store, error) {
	var (
		store *cards.Store
		err   error
	)
	if cfg.DataFile != "" {
		store, err = cards.LoadFile(cfg.DataFile)
	} else {
		store, err = cards.LoadEmbedded()
	}
	if err != nil {
		return nil, err
	}
	store.SetDefaultDefence(cfg.DefaultDefence)
	if _, ok := store.DefaultDefence(); !ok {
		log.Printf("api: default defence %q not found, sessions start empty", cfg.DefaultDefence)
	}
	return store, nil
}

func openRepo(cfg config.Config) (storage.Repo, func(), error) {
	if cfg.DBPath == "" {
		return storage.NewMemoryRepo(), func() {}, nil
	}
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			log.Printf("api: close db err=%v", err)
		}
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	store, err := loadCards(cfg)
	if err != nil {
		log.Fatalf("load cards: %v", err)
	}
	repo, closeRepo, err := openRepo(cfg)
	if err != nil {
		log.Fatalf("open scenarios: %v", err)
	}
	defer closeRepo()

	tracker := stats.NewTracker()
	srv := server.New(store, repo, tracker)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go maintain(ctx, srv.Sessions(), tracker, cfg.SessionIdle)

	hs := &http.Server{Addr: cfg.ListenAddr(), Handler: srv.Handler()}
	go func() {
		<-ctx.Done()
		if err := hs.Shutdown(context.Background()); err != nil {
			log.Printf("api: shutdown err=%v", err)
		}
	}()

	fmt.Printf("CR calc API %s (%s) listening on %s, %d cards\n", buildVersion, buildTime, hs.Addr, store.Len())
	if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
