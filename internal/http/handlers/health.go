package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	pingDB    func() error
	pingDraft func() error
}

// NewHealthHandler takes ping funcs so the router decides what "ready"
// means; either may be nil when the backing service is not configured.
func NewHealthHandler(pingDB, pingDraft func() error) *HealthHandler {
	return &HealthHandler{
		pingDB:    pingDB,
		pingDraft: pingDraft,
	}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	checks := gin.H{}
	ready := true

	if h.pingDB != nil {
		if err := h.pingDB(); err != nil {
			checks["db"] = "down"
			ready = false
		} else {
			checks["db"] = "up"
		}
	}

	if h.pingDraft != nil {
		if err := h.pingDraft(); err != nil {
			checks["drafts"] = "down"
			ready = false
		} else {
			checks["drafts"] = "up"
		}
	}

	if !ready {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
