package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/service"
)

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ImageID   string `json:"imageId"`
	Key       string `json:"key"`
	Bucket    string `json:"bucket"`
	ExpiresIn int    `json:"expiresInSeconds"`
	Message   string `json:"message"`
}

func (h HandlerSet) IssueUploadURL(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req service.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "request body must be valid JSON")
		return
	}

	issue, err := h.upload.IssueUploadURL(c.Request.Context(), uid, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadURLResponse{
		UploadURL: issue.UploadURL,
		ImageID:   issue.ImageID,
		Key:       issue.Key,
		Bucket:    issue.Bucket,
		ExpiresIn: issue.ExpiresIn,
		Message:   "upload the file with a PUT request to the url",
	})
}
