package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	mailDeliveryEnabled bool
}

func NewHealthHandler(mailDeliveryEnabled bool) *HealthHandler {
	return &HealthHandler{
		mailDeliveryEnabled: mailDeliveryEnabled,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"mail_delivery": h.mailDeliveryEnabled,
	})
}
