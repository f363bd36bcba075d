package main

import (
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/shelfaware/shelfaware/internal/advisor"
	"github.com/shelfaware/shelfaware/internal/api"
	"github.com/shelfaware/shelfaware/internal/config"
	"github.com/shelfaware/shelfaware/internal/places"
	"github.com/shelfaware/shelfaware/internal/redistribute"
	"github.com/shelfaware/shelfaware/internal/store"
)

func init() {
	// Initialize logger
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Info("Loaded environment from .env")
	}

	cfg := config.Load()

	slot, err := store.NewFileSlot(cfg.Store.DataDir)
	if err != nil {
		log.Fatal("Failed to open durable slot: ", err)
	}

	inventory := store.NewInventoryStore(slot)
	if _, err := inventory.Load(); err != nil {
		log.Fatal("Failed to load inventory: ", err)
	}

	history := store.NewHistoryStore(slot)
	if _, err := history.Load(); err != nil {
		log.Fatal("Failed to load redistribution history: ", err)
	}

	// The slot-backed store is the source of truth; a remote record API can
	// stand in behind the same interface when configured.
	var repo store.Repository = inventory
	if cfg.Store.RemoteURL != "" {
		repo = store.NewRemoteRepository(cfg.Store.RemoteURL)
		log.WithField("remote_url", cfg.Store.RemoteURL).Info("Record API backed by remote store")
	}

	placesClient := places.NewClient(cfg.Places.GeocodeURL, cfg.Places.PlacesURL, cfg.Places.APIKey)
	advisorClient := advisor.NewClient(cfg.Generation.BaseURL, cfg.Generation.APIKey, cfg.Generation.Model)
	workflow := redistribute.New(inventory, history, placesClient, cfg.Workflow.SettleDelay, cfg.Workflow.DisplayDelay)

	server := api.NewServer(repo, inventory, workflow, advisorClient)
	router := server.Router()

	log.WithFields(log.Fields{
		"port":     cfg.Server.Port,
		"app_env":  cfg.Server.AppEnv,
		"data_dir": cfg.Store.DataDir,
	}).Info("ShelfAware starting")

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
