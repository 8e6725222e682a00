package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/formgate/formgate-api/internal/models"
	"github.com/formgate/formgate-api/internal/services"
)

// SubmissionHandler exposes the contact form submission endpoint. Field-level
// validation lives in the service; the handler only rejects bodies that are
// not JSON at all.
type SubmissionHandler struct {
	service services.SubmissionServiceInterface
}

func NewSubmissionHandler(service services.SubmissionServiceInterface) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// SubmitContactForm handles POST /api/v1/contact
func (h *SubmissionHandler) SubmitContactForm(c *gin.Context) {
	var input models.SubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result := h.service.Submit(c.Request.Context(), &input, c.ClientIP())

	switch result.Status {
	case models.StatusSent:
		c.JSON(http.StatusOK, models.SubmissionResponse{
			Success:      true,
			SubmissionID: result.SubmissionID,
		})
	case models.StatusValidationFailed:
		c.JSON(http.StatusBadRequest, models.SubmissionResponse{
			Success: false,
			Error:   strings.Join(result.Errors, "; "),
			Errors:  result.Errors,
		})
	case models.StatusRateLimited:
		if result.RetryAfterSeconds > 0 {
			c.Header("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
		}
		c.JSON(http.StatusTooManyRequests, models.SubmissionResponse{
			Success: false,
			Error:   result.Message,
		})
	default:
		c.JSON(http.StatusBadGateway, models.SubmissionResponse{
			Success: false,
			Error:   result.Message,
		})
	}
}
