package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/middleware"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/repository"
	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/service"
)

// apiError is the envelope every failure uses, regardless of which
// layer produced it.
func apiError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error":   code,
		"message": message,
	})
}

// fail maps a service error onto the response taxonomy. Unrecognized
// errors become opaque 500s; their detail stays in the logs.
func (h HandlerSet) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFilenameRequired),
		errors.Is(err, service.ErrExtensionNotAllowed),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrImageIDRequired),
		errors.Is(err, service.ErrKeyNotOwned),
		errors.Is(err, service.ErrInvalidToken):
		apiError(c, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, repository.ErrImageNotFound):
		apiError(c, http.StatusNotFound, "not_found", "image not found")
	case errors.Is(err, service.ErrUpstream):
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("upstream failure")
		apiError(c, http.StatusBadGateway, "upstream_failure", "a dependent service failed")
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		apiError(c, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}

// userID pulls the authenticated owner out of the request context.
func userID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.ContextUserID)
	if id == "" {
		apiError(c, http.StatusUnauthorized, "unauthorized", "no authenticated user")
		return "", false
	}
	return id, true
}
