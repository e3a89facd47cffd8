package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type deleteResponse struct {
	Message      string          `json:"message"`
	ImageID      string          `json:"imageId"`
	DeletedFiles map[string]bool `json:"deletedFiles"`
}

func (h HandlerSet) DeleteImage(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	imageID := strings.TrimSpace(c.Param("imageId"))
	if imageID == "" {
		apiError(c, http.StatusBadRequest, "bad_request", "imageId is required")
		return
	}

	result, err := h.deletion.Delete(c.Request.Context(), uid, imageID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, deleteResponse{
		Message:      "image deleted",
		ImageID:      result.ImageID,
		DeletedFiles: result.DeletedFiles,
	})
}
