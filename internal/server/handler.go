package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/magicaleks/sysmon/internal/config"
	"github.com/magicaleks/sysmon/internal/domain"
	"github.com/magicaleks/sysmon/internal/view"
)

type response struct {
	Ok    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Handler serves the dashboard page and the JSON data endpoint. Each call
// collects exactly once.
type Handler struct {
	collector domain.Collector
	mode      config.Mode
	basePath  string
	logger    *slog.Logger
}

func NewHandler(collector domain.Collector, mode config.Mode, basePath string, logger *slog.Logger) *Handler {
	return &Handler{
		collector: collector,
		mode:      mode,
		basePath:  basePath,
		logger:    logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, response{Ok: true})
}

func (h *Handler) Index(c *gin.Context) {
	snap, ok := h.collect(c)
	if !ok {
		return
	}

	if h.mode == config.ModeBasic {
		c.HTML(http.StatusOK, view.BasicTemplate, view.NewPage(snap))
		return
	}
	c.HTML(http.StatusOK, view.LiveTemplate, view.NewLivePage(snap, h.dataURL(c)))
}

func (h *Handler) Data(c *gin.Context) {
	snap, ok := h.collect(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view.NewData(snap))
}

func (h *Handler) collect(c *gin.Context) (domain.Snapshot, bool) {
	snap, err := h.collector.Collect(c.Request.Context())
	if err != nil {
		h.logger.Error("collect snapshot failed",
			"err", err,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey),
		)
		c.JSON(http.StatusInternalServerError, response{Ok: false, Error: "failed to collect system metrics"})
		return domain.Snapshot{}, false
	}
	return snap, true
}

// dataURL is absolute from the site root so it resolves the same whether
// the page was requested with or without a trailing slash.
func (h *Handler) dataURL(c *gin.Context) string {
	return c.GetString(prefixKey) + h.basePath + "/data"
}
