package main

import (
	"context"
	"flag"
	"time"

	"chosenoffset.com/nightwood/internal/game"
	"chosenoffset.com/nightwood/internal/logger"
	"chosenoffset.com/nightwood/internal/observer"
	"chosenoffset.com/nightwood/internal/persistence"
	ebitenrender "chosenoffset.com/nightwood/internal/render/ebiten"
	"chosenoffset.com/nightwood/internal/simulation"
)

func main() {
	configPath := flag.String("config", "nightwood.yaml", "path to the YAML config")
	seed := flag.Int64("seed", 0, "world seed (0 keeps the configured seed)")
	observe := flag.String("observe", "", "address for the read-only observer feed, e.g. :8089")
	saveDir := flag.String("saves", "", "save directory (overrides the config)")
	flag.Parse()

	logger.Init()
	log := logger.Log

	cfg, err := simulation.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *saveDir != "" {
		cfg.Assets.SaveDir = *saveDir
	}

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	loader := ebitenrender.NewResourceLoader()
	engine := ebitenrender.NewEngine()

	sounds := ebitenrender.NewSoundBank(cfg.Assets.SoundDir,
		game.SoundFootstep, game.SoundSwing, game.SoundChestOpen, "wolf", "spider")

	session := game.NewSession(cfg, sounds)
	manager := game.NewManager(session, renderer, inputMgr, engine, loader)

	store, err := persistence.OpenStore(cfg.Assets.SaveDir)
	if err != nil {
		log.WithError(err).Warn("Saving disabled")
	} else {
		defer store.Close()
		manager.Store = store
	}

	if *observe != "" {
		hub := observer.NewHub()
		srv := observer.NewServer(*observe, hub)
		if err := srv.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start observer")
		}
		manager.Hub = hub
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.WithError(err).Warn("Observer shutdown")
			}
		}()
	}

	// Set up the window
	engine.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	engine.SetWindowTitle(cfg.Window.Title)
	engine.SetWindowResizable(true)

	log.WithField("seed", cfg.Seed).Info("Starting game")
	if err := engine.RunGame(manager); err != nil {
		log.WithError(err).Error("Game exited with an error")
	}
}
