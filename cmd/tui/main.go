package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pefman/cr-calc/internal/api"
	"github.com/pefman/cr-calc/internal/cards"
	"github.com/pefman/cr-calc/internal/config"
	"github.com/pefman/cr-calc/internal/locale"
	"github.com/pefman/cr-calc/internal/tui"
)

// loadStore uses the API when CRCALC_API_BASE is set, the local dataset otherwise.
func loadStore(cfg config.Config) (*cards.Store, error) {
	if cfg.APIBase == "" {
		if cfg.DataFile != "" {
			return cards.LoadFile(cfg.DataFile)
		}
		return cards.LoadEmbedded()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	list, err := api.NewClient(cfg.APIBase).Cards(ctx)
	if err != nil {
		return nil, err
	}
	return cards.FromCards(list)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	store, err := loadStore(cfg)
	if err != nil {
		log.Fatalf("load cards: %v", err)
	}
	store.SetDefaultDefence(cfg.DefaultDefence)

	// keep log output off the terminal screen
	if f, err := os.OpenFile("crcalc-tui.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("screen init: %v", err)
	}
	defer screen.Fini()

	tui.New(screen, store, locale.Parse(posixLang(os.Getenv("LANG")))).Run()
}

// posixLang turns "en_US.UTF-8" into "en-US".
func posixLang(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	return strings.ReplaceAll(v, "_", "-")
}
