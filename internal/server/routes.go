package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/magicaleks/sysmon/internal/config"
)

// registerRoutes builds the route table for the configured mode. In proxy
// mode everything the dashboard does not claim falls through to forwarder.
func registerRoutes(router *gin.Engine, cfg *config.Config, h *Handler, metrics *Metrics, forwarder http.Handler) {
	base := cfg.BasePath()

	if base == "" {
		router.GET("/", h.Index)
	} else {
		router.GET(base, h.Index)
		router.GET(base+"/", h.Index)
	}

	if cfg.Mode != config.ModeBasic {
		router.GET(base+"/data", h.Data)
	}

	router.GET(base+"/healthz", h.Health)

	if metrics != nil {
		router.GET(base+"/metrics", gin.WrapH(metrics.Handler()))
	}

	if cfg.Mode == config.ModeProxy && forwarder != nil {
		router.NoRoute(gin.WrapH(forwarder))
	}
}
