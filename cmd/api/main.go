package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"runway-forecast/internal/api"
	"runway-forecast/internal/generator"
	"runway-forecast/internal/scenario"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openScenarioStore(context.Background())
	if err != nil {
		log.Fatalf("Failed to open scenario store: %v", err)
	}
	var scenarios *scenario.Service
	if store != nil {
		defer func() { _ = store.Close() }()
		scenarios = scenario.NewService(store)
	}

	provider := generator.NewGeminiProviderFromEnv()
	if provider.APIKey == "" {
		log.Printf("GEMINI_API_KEY not set, /api/v1/assumptions/generate will report PROVIDER_UNAVAILABLE")
	} else {
		log.Printf("Assumption generation using %s", provider.Name())
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web/dist"
	}

	router := api.NewRouter(api.Options{
		PresetDir: os.Getenv("PRESET_DIR"),
		StaticDir: staticDir,
		Scenarios: scenarios,
		Generator: generator.New(provider, generator.CacheFromEnv()),
	})

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openScenarioStore picks the backend from SCENARIO_STORE: memory (default),
// sqlite or postgres. "none" disables the scenario routes.
func openScenarioStore(ctx context.Context) (scenario.Store, error) {
	switch kind := os.Getenv("SCENARIO_STORE"); kind {
	case "", "memory":
		log.Printf("Scenario store: memory (scenarios are lost on restart)")
		return scenario.NewMemoryStore(), nil
	case "sqlite":
		path := os.Getenv("SCENARIO_DB_PATH")
		if path == "" {
			path = filepath.Join("data", "scenarios.db")
		}
		log.Printf("Scenario store: sqlite at %s", path)
		s, err := scenario.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		log.Printf("Scenario store: postgres")
		s, err := scenario.OpenPostgres(ctx, os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown SCENARIO_STORE %q", kind)
	}
}
