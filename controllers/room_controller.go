package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	middlewares "staycation/middleware"
	"staycation/services"
)

type RoomController struct {
	Rooms *services.RoomService
}

func NewRoomController(rooms *services.RoomService) *RoomController {
	return &RoomController{Rooms: rooms}
}

// Get godoc
// @Summary Room detail
// @Tags rooms
// @Produce json
// @Param id path int true "Room"
// @Success 200 {object} map[string]interface{}
// @Router /rooms/{id} [get]
func (r *RoomController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	room, err := r.Rooms.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", room)
}

// Availability godoc
// @Summary Free units of a room for a stay
// @Tags rooms
// @Produce json
// @Param id path int true "Room"
// @Param checkIn query string true "YYYY-MM-DD"
// @Param checkOut query string true "YYYY-MM-DD"
// @Param units query int false "Units wanted"
// @Success 200 {object} map[string]interface{}
// @Router /rooms/{id}/availability [get]
func (r *RoomController) Availability(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	units := 1
	if raw := c.Query("units"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.Error(services.BadRequest("units must be a positive number"))
			return
		}
		units = n
	}
	res, err := r.Rooms.Availability(c.Request.Context(), id, c.Query("checkIn"), c.Query("checkOut"), units)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", res)
}

// Prices godoc
// @Summary Nightly price breakdown
// @Tags rooms
// @Produce json
// @Param id path int true "Room"
// @Param checkIn query string true "YYYY-MM-DD"
// @Param checkOut query string true "YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Router /rooms/{id}/prices [get]
func (r *RoomController) Prices(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := r.Rooms.Prices(c.Request.Context(), id, c.Query("checkIn"), c.Query("checkOut"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", res)
}

// Create godoc
// @Summary Add a room to an own property
// @Tags rooms
// @Security BearerAuth
// @Accept json
// @Param body body services.RoomInput true "Room"
// @Success 201 {object} map[string]interface{}
// @Router /rooms [post]
func (r *RoomController) Create(c *gin.Context) {
	var in services.RoomInput
	if !bindJSON(c, &in) {
		return
	}
	room, err := r.Rooms.Create(c.Request.Context(), middlewares.CurrentUserID(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "room created", room)
}

// Update godoc
// @Summary Update a room
// @Tags rooms
// @Security BearerAuth
// @Accept json
// @Param id path int true "Room"
// @Param body body services.RoomUpdateInput true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Router /rooms/{id} [put]
func (r *RoomController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.RoomUpdateInput
	if !bindJSON(c, &in) {
		return
	}
	room, err := r.Rooms.Update(c.Request.Context(), middlewares.CurrentUserID(c), id, in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "room updated", room)
}

// Delete godoc
// @Summary Soft delete a room
// @Tags rooms
// @Security BearerAuth
// @Param id path int true "Room"
// @Success 200 {object} map[string]interface{}
// @Router /rooms/{id} [delete]
func (r *RoomController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := r.Rooms.Delete(c.Request.Context(), middlewares.CurrentUserID(c), id); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "room deleted", nil)
}

// AddImages godoc
// @Summary Upload room images
// @Tags rooms
// @Security BearerAuth
// @Accept multipart/form-data
// @Param id path int true "Room"
// @Param images formData file true "Images"
// @Success 200 {object} map[string]interface{}
// @Router /rooms/{id}/images [post]
func (r *RoomController) AddImages(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	room, err := r.Rooms.AddImages(c.Request.Context(), middlewares.CurrentUserID(c), id, multipartFiles(c, "images"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "images uploaded", room)
}

// ListBlocks godoc
// @Summary Maintenance blocks of a room
// @Tags rooms
// @Produce json
// @Param id path int true "Room"
// @Success 200 {object} map[string]interface{}
// @Router /rooms/{id}/blocks [get]
func (r *RoomController) ListBlocks(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	blocks, err := r.Rooms.ListBlocks(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", blocks)
}

// AddBlock godoc
// @Summary Block a room for maintenance
// @Tags rooms
// @Security BearerAuth
// @Accept json
// @Param id path int true "Room"
// @Param body body services.RoomBlockInput true "Block"
// @Success 201 {object} map[string]interface{}
// @Router /rooms/{id}/blocks [post]
func (r *RoomController) AddBlock(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.RoomBlockInput
	if !bindJSON(c, &in) {
		return
	}
	block, err := r.Rooms.AddBlock(c.Request.Context(), middlewares.CurrentUserID(c), id, in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "room blocked", block)
}

// DeleteBlock godoc
// @Summary Remove a maintenance block
// @Tags rooms
// @Security BearerAuth
// @Param id path int true "Room"
// @Param blockId path int true "Block"
// @Success 200 {object} map[string]interface{}
// @Router /rooms/{id}/blocks/{blockId} [delete]
func (r *RoomController) DeleteBlock(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	blockID, ok := idParam(c, "blockId")
	if !ok {
		return
	}
	if err := r.Rooms.DeleteBlock(c.Request.Context(), middlewares.CurrentUserID(c), id, blockID); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "block removed", nil)
}
