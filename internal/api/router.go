// Package api wires the HTTP handlers into a gin router.
package api

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"runway-forecast/internal/api/handlers"
	"runway-forecast/internal/api/middleware"
	"runway-forecast/internal/generator"
	"runway-forecast/internal/scenario"

	"github.com/gin-gonic/gin"
)

// Options are the collaborators behind the routes.
type Options struct {
	PresetDir string
	// StaticDir holds a built SPA; skipped when missing.
	StaticDir string
	Scenarios *scenario.Service
	Generator *generator.Generator
}

// NewRouter builds the gin engine with middleware and all /api/v1 routes.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	presetHandler := handlers.NewPresetHandler(opts.PresetDir)
	planHandler := handlers.NewPlanHandler(presetHandler)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/assumptions/default", planHandler.DefaultAssumptions)
		api.GET("/presets", presetHandler.ListPresets)

		api.POST("/plan", planHandler.RunPlan)
		api.POST("/plan/compare", planHandler.ComparePlans)

		api.POST("/revenue/channels", handlers.ForecastChannels)

		gen := opts.Generator
		if gen == nil {
			gen = generator.New(nil, nil)
		}
		api.POST("/assumptions/generate", handlers.NewGenerateHandler(gen).GenerateAssumptions)

		if opts.Scenarios != nil {
			scenarioHandler := handlers.NewScenarioHandler(opts.Scenarios)
			api.GET("/scenarios", scenarioHandler.ListScenarios)
			api.POST("/scenarios", scenarioHandler.CreateScenario)
			api.GET("/scenarios/:id", scenarioHandler.GetScenario)
			api.PUT("/scenarios/:id", scenarioHandler.UpdateScenario)
			api.DELETE("/scenarios/:id", scenarioHandler.DeleteScenario)
			api.GET("/scenarios/:id/plan", scenarioHandler.ScenarioPlan)
		} else {
			log.Printf("Scenario store not configured, /api/v1/scenarios disabled")
		}
	}

	mountStatic(router, opts.StaticDir)
	return router
}

// mountStatic serves a built SPA and falls back to index.html for client
// routes. Unknown /api paths always get a JSON 404.
func mountStatic(router *gin.Engine, staticDir string) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": handlers.CodeNotFound, "message": "Not found"}})
	}

	if staticDir == "" {
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(staticDir); err != nil {
		log.Printf("Static directory %s not found, skipping static file serving", staticDir)
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(staticDir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(staticDir, "favicon.ico"))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
	log.Printf("Serving static files from %s", staticDir)
}
