package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	middlewares "staycation/middleware"
	"staycation/services"
)

type TenantController struct {
	Tenants    *services.TenantService
	Bookings   *services.BookingService
	Properties *services.PropertyService
}

func NewTenantController(tenants *services.TenantService, bookings *services.BookingService, properties *services.PropertyService) *TenantController {
	return &TenantController{Tenants: tenants, Bookings: bookings, Properties: properties}
}

// GetProfile godoc
// @Summary Tenant profile with bank accounts
// @Tags tenant
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /tenant/profile [get]
func (t *TenantController) GetProfile(c *gin.Context) {
	tenant, err := t.Tenants.Profile(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", tenant)
}

// UpdateProfile godoc
// @Summary Update tenant profile and bank accounts
// @Tags tenant
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body services.TenantProfileInput true "Profile"
// @Success 200 {object} map[string]interface{}
// @Router /tenant/profile [put]
func (t *TenantController) UpdateProfile(c *gin.Context) {
	var in services.TenantProfileInput
	if !bindJSON(c, &in) {
		return
	}
	tenant, err := t.Tenants.UpdateProfile(c.Request.Context(), middlewares.CurrentUserID(c), in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "profile updated", tenant)
}

// ListProperties godoc
// @Summary Own properties
// @Tags tenant
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /tenant/properties [get]
func (t *TenantController) ListProperties(c *gin.Context) {
	props, page, err := t.Properties.ListForTenant(c.Request.Context(), middlewares.CurrentUserID(c), pageQuery(c))
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, "ok", props, page)
}

// ListBookings godoc
// @Summary Bookings on own properties
// @Tags tenant
// @Security BearerAuth
// @Produce json
// @Param status query string false "Booking status"
// @Param propertyId query int false "Property"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} map[string]interface{}
// @Router /tenant/bookings [get]
func (t *TenantController) ListBookings(c *gin.Context) {
	var q services.TenantBookingQuery
	if !bindQuery(c, &q) {
		return
	}
	bookings, page, err := t.Tenants.Bookings(c.Request.Context(), middlewares.CurrentUserID(c), q)
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, "ok", bookings, page)
}

// ConfirmBooking godoc
// @Summary Accept a payment proof
// @Tags tenant
// @Security BearerAuth
// @Param id path int true "Booking"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /tenant/bookings/{id}/confirm [post]
func (t *TenantController) ConfirmBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	booking, err := t.Bookings.Confirm(c.Request.Context(), middlewares.CurrentUserID(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "booking confirmed", booking)
}

// RejectBooking godoc
// @Summary Reject a payment proof
// @Tags tenant
// @Security BearerAuth
// @Param id path int true "Booking"
// @Param body body reasonRequest false "Reason"
// @Success 200 {object} map[string]interface{}
// @Router /tenant/bookings/{id}/reject [post]
func (t *TenantController) RejectBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	booking, err := t.Bookings.Reject(c.Request.Context(), middlewares.CurrentUserID(c), id, reason)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "payment rejected", booking)
}

// CancelBooking godoc
// @Summary Cancel an unpaid booking
// @Tags tenant
// @Security BearerAuth
// @Param id path int true "Booking"
// @Param body body reasonRequest false "Reason"
// @Success 200 {object} map[string]interface{}
// @Router /tenant/bookings/{id}/cancel [post]
func (t *TenantController) CancelBooking(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	reason, ok := bindReason(c)
	if !ok {
		return
	}
	booking, err := t.Bookings.TenantCancel(c.Request.Context(), middlewares.CurrentUserID(c), id, reason)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "booking cancelled", booking)
}

// Calendar godoc
// @Summary Per room, per day occupancy and price
// @Tags tenant
// @Security BearerAuth
// @Param propertyId query int true "Property"
// @Param month query string true "YYYY-MM"
// @Success 200 {object} map[string]interface{}
// @Router /tenant/calendar [get]
func (t *TenantController) Calendar(c *gin.Context) {
	propertyID, err := strconv.ParseUint(c.Query("propertyId"), 10, 64)
	if err != nil || propertyID == 0 {
		c.Error(services.BadRequest("propertyId is required"))
		return
	}
	rooms, err := t.Tenants.Calendar(c.Request.Context(), middlewares.CurrentUserID(c), uint(propertyID), c.Query("month"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", rooms)
}

// SalesReport godoc
// @Summary Revenue from confirmed and completed bookings
// @Tags tenant
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param propertyId query int false "Property"
// @Param groupBy query string false "property or day"
// @Success 200 {object} map[string]interface{}
// @Router /tenant/reports/sales [get]
func (t *TenantController) SalesReport(c *gin.Context) {
	var q services.ReportQuery
	if !bindQuery(c, &q) {
		return
	}
	report, err := t.Tenants.SalesReport(c.Request.Context(), middlewares.CurrentUserID(c), q)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", report)
}

// OccupancyReport godoc
// @Summary Booked room nights over available room nights
// @Tags tenant
// @Security BearerAuth
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param propertyId query int false "Property"
// @Success 200 {object} map[string]interface{}
// @Router /tenant/reports/occupancy [get]
func (t *TenantController) OccupancyReport(c *gin.Context) {
	var q services.ReportQuery
	if !bindQuery(c, &q) {
		return
	}
	report, err := t.Tenants.OccupancyReport(c.Request.Context(), middlewares.CurrentUserID(c), q)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", report)
}
