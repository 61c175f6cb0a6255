package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	middlewares "staycation/middleware"
	"staycation/services"
)

type PriceRuleController struct {
	Rules *services.PriceRuleService
}

func NewPriceRuleController(rules *services.PriceRuleService) *PriceRuleController {
	return &PriceRuleController{Rules: rules}
}

// List godoc
// @Summary Price rules of an own property
// @Tags price-rules
// @Security BearerAuth
// @Param id path int true "Property"
// @Success 200 {object} map[string]interface{}
// @Router /properties/{id}/price-rules [get]
func (p *PriceRuleController) List(c *gin.Context) {
	propertyID, ok := idParam(c, "id")
	if !ok {
		return
	}
	rules, err := p.Rules.List(c.Request.Context(), middlewares.CurrentUserID(c), propertyID)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "ok", rules)
}

// Create godoc
// @Summary Add a price rule
// @Tags price-rules
// @Security BearerAuth
// @Accept json
// @Param id path int true "Property"
// @Param body body services.PriceRuleInput true "Rule"
// @Success 201 {object} map[string]interface{}
// @Router /properties/{id}/price-rules [post]
func (p *PriceRuleController) Create(c *gin.Context) {
	propertyID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.PriceRuleInput
	if !bindJSON(c, &in) {
		return
	}
	rule, err := p.Rules.Create(c.Request.Context(), middlewares.CurrentUserID(c), propertyID, in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "price rule created", rule)
}

// Update godoc
// @Summary Replace a price rule
// @Tags price-rules
// @Security BearerAuth
// @Accept json
// @Param id path int true "Property"
// @Param ruleId path int true "Rule"
// @Param body body services.PriceRuleInput true "Rule"
// @Success 200 {object} map[string]interface{}
// @Router /properties/{id}/price-rules/{ruleId} [put]
func (p *PriceRuleController) Update(c *gin.Context) {
	propertyID, ok := idParam(c, "id")
	if !ok {
		return
	}
	ruleID, ok := idParam(c, "ruleId")
	if !ok {
		return
	}
	var in services.PriceRuleInput
	if !bindJSON(c, &in) {
		return
	}
	rule, err := p.Rules.Update(c.Request.Context(), middlewares.CurrentUserID(c), propertyID, ruleID, in)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "price rule updated", rule)
}

// Delete godoc
// @Summary Remove a price rule
// @Tags price-rules
// @Security BearerAuth
// @Param id path int true "Property"
// @Param ruleId path int true "Rule"
// @Success 200 {object} map[string]interface{}
// @Router /properties/{id}/price-rules/{ruleId} [delete]
func (p *PriceRuleController) Delete(c *gin.Context) {
	propertyID, ok := idParam(c, "id")
	if !ok {
		return
	}
	ruleID, ok := idParam(c, "ruleId")
	if !ok {
		return
	}
	if err := p.Rules.Delete(c.Request.Context(), middlewares.CurrentUserID(c), propertyID, ruleID); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, "price rule deleted", nil)
}
