package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	middlewares "staycation/middleware"
	"staycation/services"
)

type ReviewController struct {
	Reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{Reviews: reviews}
}

type ReplyRequest struct {
	Reply string `json:"reply" binding:"required,max=2000"`
}

// Create godoc
// @Summary Review a completed stay
// @Tags reviews
// @Security BearerAuth
// @Accept json
// @Param body body services.CreateReviewInput true "Review"
// @Success 201 {object} map[string]interface{}
// @Router /reviews [post]
func (r *ReviewController) Create(c *gin.Context) {
	var in services.CreateReviewInput
	if !bindJSON(c, &in) {
		return
	}
	review, err := r.Reviews.Create(c.Request.Context(), middlewares.CurrentUserID(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "review posted", review)
}

// ListForProperty godoc
// @Summary Reviews of a property
// @Tags reviews
// @Produce json
// @Param propertyId path int true "Property"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} map[string]interface{}
// @Router /reviews/property/{propertyId} [get]
func (r *ReviewController) ListForProperty(c *gin.Context) {
	propertyID, ok := idParam(c, "propertyId")
	if !ok {
		return
	}
	reviews, page, err := r.Reviews.ListForProperty(c.Request.Context(), propertyID, pageQuery(c))
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, "ok", reviews, page)
}

// Reply godoc
// @Summary Tenant reply to a review
// @Tags reviews
// @Security BearerAuth
// @Accept json
// @Param id path int true "Review"
// @Param body body ReplyRequest true "Reply"
// @Success 200 {object} map[string]interface{}
// @Router /reviews/{id}/reply [post]
func (r *ReviewController) Reply(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ReplyRequest
	if !bindJSON(c, &req) {
		return
	}
	review, err := r.Reviews.Reply(c.Request.Context(), middlewares.CurrentUserID(c), id, req.Reply)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "reply posted", review)
}
