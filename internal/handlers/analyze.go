package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/models"
)

type analyzeRequest struct {
	Key string `json:"key"`
}

type analyzeResponse struct {
	Message  string            `json:"message"`
	ImageID  string            `json:"imageId"`
	Analysis models.AIAnalysis `json:"analysis"`
}

// AnalyzeImage re-runs the vision suite on demand, outside the normal
// post-processing flow. The body may name a specific rendition key;
// by default the large rendition is analyzed.
func (h HandlerSet) AnalyzeImage(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	imageID := strings.TrimSpace(c.Param("imageId"))
	if imageID == "" {
		apiError(c, http.StatusBadRequest, "bad_request", "imageId is required")
		return
	}

	var req analyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apiError(c, http.StatusBadRequest, "bad_request", "request body must be valid JSON")
			return
		}
	}

	analysis, err := h.analysis.Analyze(c.Request.Context(), uid, imageID, req.Key)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{
		Message:  "analysis complete",
		ImageID:  imageID,
		Analysis: analysis,
	})
}
