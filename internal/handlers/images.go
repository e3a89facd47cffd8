package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AdithyaSM31/PhotoInsights-AWS/internal/service"
)

type imagePageResponse struct {
	Images    []service.ImageView `json:"images"`
	Count     int                 `json:"count"`
	UserID    string              `json:"userId"`
	HasMore   bool                `json:"hasMore"`
	NextToken string              `json:"nextToken,omitempty"`
}

func (h HandlerSet) ListImages(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	page, err := h.gallery.List(c.Request.Context(), uid, listParams(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, imagePageResponse{
		Images:    page.Images,
		Count:     len(page.Images),
		UserID:    uid,
		HasMore:   page.HasMore,
		NextToken: page.NextToken,
	})
}

func (h HandlerSet) SearchImages(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	params := service.SearchParams{
		ListParams: listParams(c),
		Filename:   c.Query("filename"),
		HasFaces:   boolParam(c, "hasFaces"),
		HasText:    boolParam(c, "hasText"),
	}

	if tags := c.Query("tags"); tags != "" {
		params.Tags = strings.Split(tags, ",")
	}

	var err error
	if params.DateFrom, err = dateParam(c.Query("dateFrom"), false); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "dateFrom must be a unix timestamp or YYYY-MM-DD")
		return
	}
	if params.DateTo, err = dateParam(c.Query("dateTo"), true); err != nil {
		apiError(c, http.StatusBadRequest, "bad_request", "dateTo must be a unix timestamp or YYYY-MM-DD")
		return
	}

	page, err := h.gallery.Search(c.Request.Context(), uid, params)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, imagePageResponse{
		Images:    page.Images,
		Count:     len(page.Images),
		UserID:    uid,
		HasMore:   page.HasMore,
		NextToken: page.NextToken,
	})
}

func listParams(c *gin.Context) service.ListParams {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return service.ListParams{
		Limit:     limit,
		SortOrder: c.Query("sortOrder"),
		Token:     c.Query("continuationToken"),
	}
}

func boolParam(c *gin.Context, name string) *bool {
	raw, present := c.GetQuery(name)
	if !present {
		return nil
	}
	val := strings.EqualFold(raw, "true")
	return &val
}

// dateParam accepts either a unix timestamp in seconds or a calendar
// date. A bare date used as an upper bound covers the whole day.
func dateParam(raw string, endOfDay bool) (*int64, error) {
	if raw == "" {
		return nil, nil
	}

	if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &ts, nil
	}

	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	ts := day.UTC().Unix()
	if endOfDay {
		ts += int64(24*time.Hour/time.Second) - 1
	}
	return &ts, nil
}
