package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"runway-forecast/internal/api/models"
	"runway-forecast/internal/config"
	"runway-forecast/internal/model"

	"github.com/gin-gonic/gin"
)

var errPresetNotFound = errors.New("preset not found")

var presetExtensions = []string{".yaml", ".yml", ".toml"}

// PresetHandler serves the scenario files in the preset directory.
type PresetHandler struct {
	presetDir string
}

// NewPresetHandler uses dir, or PRESET_DIR, or ./examples/presets.
func NewPresetHandler(dir string) *PresetHandler {
	if dir == "" {
		dir = os.Getenv("PRESET_DIR")
	}
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = filepath.Join(wd, "examples", "presets")
		} else {
			dir = "./examples/presets"
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	log.Printf("PresetHandler: Using preset directory: %s", dir)
	return &PresetHandler{presetDir: dir}
}

func (h *PresetHandler) Dir() string {
	return h.presetDir
}

// ListPresets handles GET /api/v1/presets
func (h *PresetHandler) ListPresets(c *gin.Context) {
	presets := []models.PresetInfo{}

	entries, err := os.ReadDir(h.presetDir)
	if err != nil {
		log.Printf("PresetHandler: Failed to read preset directory %s: %v", h.presetDir, err)
		c.JSON(http.StatusOK, gin.H{"presets": presets})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || presetExt(entry.Name()) == "" {
			continue
		}
		path := filepath.Join(h.presetDir, entry.Name())
		info, err := loadPresetInfo(path, entry.Name())
		if err != nil {
			log.Printf("PresetHandler: Skipping preset %s: %v", path, err)
			continue
		}
		presets = append(presets, *info)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].ID < presets[j].ID })

	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

// Load resolves a preset id (file name without extension) to validated
// assumptions.
func (h *PresetHandler) Load(id string) (model.Assumptions, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return model.Assumptions{}, fmt.Errorf("%w: %q", errPresetNotFound, id)
	}
	for _, ext := range presetExtensions {
		path := filepath.Join(h.presetDir, id+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_, a, err := config.Load(path)
		if err != nil {
			return model.Assumptions{}, err
		}
		return a, nil
	}
	return model.Assumptions{}, fmt.Errorf("%w: %q", errPresetNotFound, id)
}

func presetExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range presetExtensions {
		if ext == e {
			return ext
		}
	}
	return ""
}

func loadPresetInfo(path, filename string) (*models.PresetInfo, error) {
	cfg, a, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	id := strings.TrimSuffix(filename, filepath.Ext(filename))
	name := cfg.Name
	if name == "" {
		name = id
	}
	return &models.PresetInfo{
		ID:            id,
		Name:          name,
		Description:   cfg.Description,
		File:          filename,
		CostModel:     string(a.Costs.Kind),
		HorizonMonths: a.HorizonMonths,
		StartArrUsd:   a.StartArrUsd,
		StartCashUsd:  a.StartCashUsd,
	}, nil
}
