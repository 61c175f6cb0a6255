package controllers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	middlewares "staycation/middleware"
	"staycation/services"
)

type PropertyController struct {
	Properties *services.PropertyService
	Reviews    *services.ReviewService
}

func NewPropertyController(properties *services.PropertyService, reviews *services.ReviewService) *PropertyController {
	return &PropertyController{Properties: properties, Reviews: reviews}
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type AmenityRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Icon string `json:"icon" binding:"max=50"`
}

func multipartFiles(c *gin.Context, field string) []*multipart.FileHeader {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File[field]
}

// Search godoc
// @Summary Search properties
// @Tags properties
// @Produce json
// @Param city query string false "City"
// @Param guests query int false "Guests"
// @Param checkIn query string false "YYYY-MM-DD"
// @Param checkOut query string false "YYYY-MM-DD"
// @Param minPrice query number false "Minimum room price"
// @Param maxPrice query number false "Maximum room price"
// @Param amenities query string false "Comma separated amenity ids"
// @Param categoryId query int false "Category"
// @Param q query string false "Name"
// @Param sortBy query string false "price, name or createdAt"
// @Param order query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} map[string]interface{}
// @Router /properties [get]
func (p *PropertyController) Search(c *gin.Context) {
	var in services.PropertySearch
	if !bindQuery(c, &in) {
		return
	}
	result, err := p.Properties.Search(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, "ok", result.Items, result.Pagination)
}

// GetDetail godoc
// @Summary Property detail with rooms and rating
// @Tags properties
// @Produce json
// @Param id path int true "Property"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /properties/{id} [get]
func (p *PropertyController) GetDetail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := p.Properties.GetDetail(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", detail)
}

// Calendar godoc
// @Summary Lowest price and availability per day of a month
// @Tags properties
// @Produce json
// @Param id path int true "Property"
// @Param month query string true "YYYY-MM"
// @Success 200 {object} map[string]interface{}
// @Router /properties/{id}/calendar [get]
func (p *PropertyController) Calendar(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	days, err := p.Properties.Calendar(c.Request.Context(), id, c.Query("month"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", days)
}

// Reviews godoc
// @Summary Reviews of a property
// @Tags properties
// @Produce json
// @Param id path int true "Property"
// @Success 200 {object} map[string]interface{}
// @Router /properties/{id}/reviews [get]
func (p *PropertyController) ListReviews(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	reviews, page, err := p.Reviews.ListForProperty(c.Request.Context(), id, pageQuery(c))
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, "ok", reviews, page)
}

// Create godoc
// @Summary Create a property
// @Tags properties
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param city formData string true "City"
// @Param images formData file false "Images"
// @Success 201 {object} map[string]interface{}
// @Router /properties [post]
func (p *PropertyController) Create(c *gin.Context) {
	var in services.PropertyInput
	if err := c.ShouldBind(&in); err != nil {
		c.Error(err)
		return
	}
	prop, err := p.Properties.Create(c.Request.Context(), middlewares.CurrentUserID(c), in, multipartFiles(c, "images"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "property created", prop)
}

// Update godoc
// @Summary Update a property
// @Tags properties
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Property"
// @Param body body services.PropertyUpdateInput true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Router /properties/{id} [put]
func (p *PropertyController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.PropertyUpdateInput
	if !bindJSON(c, &in) {
		return
	}
	prop, err := p.Properties.Update(c.Request.Context(), middlewares.CurrentUserID(c), id, in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "property updated", prop)
}

// Delete godoc
// @Summary Soft delete a property
// @Tags properties
// @Security BearerAuth
// @Param id path int true "Property"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /properties/{id} [delete]
func (p *PropertyController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := p.Properties.Delete(c.Request.Context(), middlewares.CurrentUserID(c), id); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "property deleted", nil)
}

// AddImages godoc
// @Summary Upload property images
// @Tags properties
// @Security BearerAuth
// @Accept multipart/form-data
// @Param id path int true "Property"
// @Param images formData file true "Images"
// @Success 200 {object} map[string]interface{}
// @Router /properties/{id}/images [post]
func (p *PropertyController) AddImages(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	prop, err := p.Properties.AddImages(c.Request.Context(), middlewares.CurrentUserID(c), id, multipartFiles(c, "images"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "images uploaded", prop)
}

// ListCategories godoc
// @Summary Property categories
// @Tags properties
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /properties/categories [get]
func (p *PropertyController) ListCategories(c *gin.Context) {
	list, err := p.Properties.ListCategories(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", list)
}

// CreateCategory godoc
// @Summary Add a category
// @Tags properties
// @Security BearerAuth
// @Accept json
// @Param body body CategoryRequest true "Category"
// @Success 201 {object} map[string]interface{}
// @Router /properties/categories [post]
func (p *PropertyController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := p.Properties.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "category created", cat)
}

// ListAmenities godoc
// @Summary Amenities
// @Tags properties
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /properties/amenities [get]
func (p *PropertyController) ListAmenities(c *gin.Context) {
	list, err := p.Properties.ListAmenities(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", list)
}

// CreateAmenity godoc
// @Summary Add an amenity
// @Tags properties
// @Security BearerAuth
// @Accept json
// @Param body body AmenityRequest true "Amenity"
// @Success 201 {object} map[string]interface{}
// @Router /properties/amenities [post]
func (p *PropertyController) CreateAmenity(c *gin.Context) {
	var req AmenityRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := p.Properties.CreateAmenity(c.Request.Context(), req.Name, req.Icon)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "amenity created", a)
}
