package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	middlewares "staycation/middleware"
	"staycation/services"
)

type BookingController struct {
	Bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{Bookings: bookings}
}

// QuoteQuery is the query form of a booking request. Rooms is "roomId:units,..."; a single
// roomId with units is accepted too.
type QuoteQuery struct {
	PropertyID uint   `form:"propertyId" binding:"required"`
	CheckIn    string `form:"checkIn" binding:"required"`
	CheckOut   string `form:"checkOut" binding:"required"`
	Guests     int    `form:"guests" binding:"required,min=1"`
	Rooms      string `form:"rooms"`
	RoomID     uint   `form:"roomId"`
	Units      int    `form:"units" binding:"omitempty,min=1"`
}

func (q QuoteQuery) input() (services.CreateBookingInput, error) {
	in := services.CreateBookingInput{
		PropertyID: q.PropertyID,
		CheckIn:    q.CheckIn,
		CheckOut:   q.CheckOut,
		Guests:     q.Guests,
	}
	if q.RoomID != 0 {
		in.Items = append(in.Items, services.BookingItemInput{RoomID: q.RoomID, Units: q.Units})
	}
	for _, part := range strings.Split(q.Rooms, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idStr, unitsStr, hasUnits := strings.Cut(part, ":")
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil || id == 0 {
			return in, services.BadRequest("rooms must look like roomId:units,roomId:units")
		}
		units := 1
		if hasUnits {
			if units, err = strconv.Atoi(unitsStr); err != nil || units < 1 {
				return in, services.BadRequest("rooms must look like roomId:units,roomId:units")
			}
		}
		in.Items = append(in.Items, services.BookingItemInput{RoomID: uint(id), Units: units})
	}
	return in, nil
}

// Quote godoc
// @Summary Price a stay without booking
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Param propertyId query int true "Property"
// @Param checkIn query string true "YYYY-MM-DD"
// @Param checkOut query string true "YYYY-MM-DD"
// @Param guests query int true "Guests"
// @Param rooms query string false "roomId:units,..."
// @Param roomId query int false "Single room"
// @Param units query int false "Units of roomId"
// @Success 200 {object} map[string]interface{}
// @Router /bookings/quote [get]
func (b *BookingController) Quote(c *gin.Context) {
	var q QuoteQuery
	if !bindQuery(c, &q) {
		return
	}
	in, err := q.input()
	if err != nil {
		c.Error(err)
		return
	}
	quote, err := b.Bookings.Quote(c.Request.Context(), in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", quote)
}

// Create godoc
// @Summary Book rooms
// @Tags bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body services.CreateBookingInput true "Booking"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /bookings [post]
func (b *BookingController) Create(c *gin.Context) {
	var in services.CreateBookingInput
	if !bindJSON(c, &in) {
		return
	}
	booking, err := b.Bookings.Create(c.Request.Context(), middlewares.CurrentUserID(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "booking created, please upload the payment proof", booking)
}

// List godoc
// @Summary Own bookings
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Param status query string false "Status"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} map[string]interface{}
// @Router /bookings [get]
func (b *BookingController) List(c *gin.Context) {
	bookings, page, err := b.Bookings.ListForUser(c.Request.Context(), middlewares.CurrentUserID(c), c.Query("status"), pageQuery(c))
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, "ok", bookings, page)
}

// Get godoc
// @Summary Booking detail for its guest, the property tenant or an admin
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Param id path int true "Booking"
// @Success 200 {object} map[string]interface{}
// @Router /bookings/{id} [get]
func (b *BookingController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	booking, err := b.Bookings.Get(c.Request.Context(), middlewares.CurrentUserID(c), middlewares.CurrentUserRole(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", booking)
}

// UploadPaymentProof godoc
// @Summary Attach a transfer receipt
// @Tags bookings
// @Security BearerAuth
// @Accept multipart/form-data
// @Param id path int true "Booking"
// @Param file formData file true "jpg or png"
// @Success 200 {object} map[string]interface{}
// @Router /bookings/{id}/payment-proof [post]
func (b *BookingController) UploadPaymentProof(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.Error(services.BadRequest("file is required"))
		return
	}
	booking, err := b.Bookings.UploadPaymentProof(c.Request.Context(), middlewares.CurrentUserID(c), id, file)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "payment proof uploaded, waiting for confirmation", booking)
}

// Cancel godoc
// @Summary Cancel an own booking
// @Tags bookings
// @Security BearerAuth
// @Param id path int true "Booking"
// @Param body body reasonRequest false "Reason"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /bookings/{id}/cancel [post]
func (b *BookingController) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	booking, err := b.Bookings.Cancel(c.Request.Context(), middlewares.CurrentUserID(c), id, reason)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "booking cancelled", booking)
}
