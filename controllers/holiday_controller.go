package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"staycation/services"
)

type HolidayController struct {
	Holidays *services.HolidayService
}

func NewHolidayController(holidays *services.HolidayService) *HolidayController {
	return &HolidayController{Holidays: holidays}
}

// List godoc
// @Summary Public holidays
// @Tags holidays
// @Produce json
// @Param year query int false "Year"
// @Success 200 {object} map[string]interface{}
// @Router /holidays [get]
func (h *HolidayController) List(c *gin.Context) {
	year := 0
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1970 || y > 9999 {
			c.Error(services.BadRequest("invalid year"))
			return
		}
		year = y
	}
	holidays, err := h.Holidays.List(c.Request.Context(), year)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", holidays)
}

// Create godoc
// @Summary Add a holiday
// @Tags holidays
// @Security BearerAuth
// @Accept json
// @Param body body services.HolidayInput true "Holiday"
// @Success 201 {object} map[string]interface{}
// @Router /holidays [post]
func (h *HolidayController) Create(c *gin.Context) {
	var in services.HolidayInput
	if !bindJSON(c, &in) {
		return
	}
	holiday, err := h.Holidays.Create(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "holiday created", holiday)
}

// Delete godoc
// @Summary Remove a holiday
// @Tags holidays
// @Security BearerAuth
// @Param id path int true "Holiday"
// @Success 200 {object} map[string]interface{}
// @Router /holidays/{id} [delete]
func (h *HolidayController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Holidays.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "holiday deleted", nil)
}
