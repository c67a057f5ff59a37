package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"newsbrief/app/database"
)

func NewHandler(itemRepo database.ItemRepository,
	runCycle func(ctx context.Context) error,
	runDigest func(ctx context.Context, days int) error,
	version string) *Handler {
	return &Handler{
		itemRepo:  itemRepo,
		runCycle:  runCycle,
		runDigest: runDigest,
		version:   version,
	}
}

func (h *Handler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "NewsBrief",
		"version": h.version,
		"endpoints": gin.H{
			"health": "/health",
			"stats":  "/stats",
			"items":  "/api/items (requires X-API-Key header)",
			"cycle":  "/api/cycle (POST, requires X-API-Key header)",
			"digest": "/api/digest (POST, requires X-API-Key header)",
		},
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	stats, err := h.itemRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["status"] = "ok"
	health["items"] = stats.Total
	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.itemRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":      stats.Total,
		"pending":    stats.Pending,
		"notified":   stats.Notified,
		"summarized": stats.Summarized,
	})
}

func (h *Handler) APIListItems(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}
	pendingOnly := c.Query("pending_summary") == "true"

	items, err := h.itemRepo.GetRecent(limit, pendingOnly)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	payload := make([]gin.H, 0, len(items))
	for _, item := range items {
		payload = append(payload, itemJSON(item))
	}

	c.JSON(http.StatusOK, gin.H{
		"items": payload,
		"total": len(payload),
	})
}

func (h *Handler) APITriggerCycle(c *gin.Context) {
	go func() {
		if err := h.runCycle(context.Background()); err != nil {
			slog.Error("Triggered cycle failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "cycle started"})
}

func (h *Handler) APITriggerDigest(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days parameter"})
		return
	}

	go func() {
		if err := h.runDigest(context.Background(), days); err != nil {
			slog.Error("Triggered digest failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "digest started", "days": days})
}

func itemJSON(item database.Item) gin.H {
	return gin.H{
		"id":           item.ID,
		"title":        item.Title,
		"url":          item.URL,
		"summary":      item.Summary,
		"tags":         item.Tags,
		"published_at": item.PublishedAt.UTC().Format(time.RFC3339),
		"is_notified":  item.IsNotified,
	}
}
