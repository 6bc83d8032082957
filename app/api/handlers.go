package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-planet/app/database"
)

func NewHandler(entryRepo database.EntryRepository, settingsRepo database.SettingsRepository, outputDir string) *Handler {
	return &Handler{
		entryRepo:    entryRepo,
		settingsRepo: settingsRepo,
		outputDir:    outputDir,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if entryCount, err := h.entryRepo.GetEntryCount(); err == nil {
		health["entries"] = entryCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	entryCount, err := h.entryRepo.GetEntryCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_entry_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats := map[string]interface{}{
		"entries": entryCount,
	}

	if lastRunAt, err := h.settingsRepo.GetSetting("last_run_at"); err == nil && lastRunAt != "" {
		stats["last_run_at"] = lastRunAt
	}

	c.JSON(http.StatusOK, stats)
}
