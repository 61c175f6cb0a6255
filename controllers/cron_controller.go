package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"staycation/services"
)

type CronController struct {
	Cron *services.CronService
}

func NewCronController(cron *services.CronService) *CronController {
	return &CronController{Cron: cron}
}

func (cc *CronController) run(c *gin.Context, sweep func(context.Context) (*services.SweepResult, error)) {
	res, err := sweep(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, res.Job+" finished", res)
}

// CancelExpired godoc
// @Summary Cancel bookings whose payment deadline passed
// @Tags cron
// @Security CronSecret
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /cron/cancel-expired [post]
func (cc *CronController) CancelExpired(c *gin.Context) {
	cc.run(c, cc.Cron.CancelExpired)
}

// SendReminders godoc
// @Summary Mail guests checking in tomorrow
// @Tags cron
// @Security CronSecret
// @Success 200 {object} map[string]interface{}
// @Router /cron/reminders [post]
func (cc *CronController) SendReminders(c *gin.Context) {
	cc.run(c, cc.Cron.SendReminders)
}

// CompleteStays godoc
// @Summary Mark finished stays completed
// @Tags cron
// @Security CronSecret
// @Success 200 {object} map[string]interface{}
// @Router /cron/complete [post]
func (cc *CronController) CompleteStays(c *gin.Context) {
	cc.run(c, cc.Cron.CompleteStays)
}
