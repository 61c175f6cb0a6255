package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"staycation/services"
)

func respond(c *gin.Context, status int, mess string, data interface{}) {
	body := gin.H{"code": 1, "mess": mess}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func respondPage(c *gin.Context, mess string, data interface{}, pagination services.Pagination) {
	c.JSON(http.StatusOK, gin.H{"code": 1, "mess": mess, "data": data, "pagination": pagination})
}

// idParam parses a positive path id. On failure the error is queued and false returned.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.Error(services.BadRequest("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

func pageQuery(c *gin.Context) services.PageQuery {
	return services.ParsePageQuery(c.Query("page"), c.Query("limit"))
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.Error(err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		c.Error(err)
		return false
	}
	return true
}

// reasonRequest is the optional body of cancel and reject calls.
type reasonRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// bindReason accepts an empty body.
func bindReason(c *gin.Context) (string, bool) {
	var req reasonRequest
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if !bindJSON(c, &req) {
		return "", false
	}
	return req.Reason, true
}
