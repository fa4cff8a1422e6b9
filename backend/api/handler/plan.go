package handler

import (
	"net/http"
	"strconv"

	"insightlink/backend/common"
	"insightlink/backend/model"
	"insightlink/backend/service"

	"github.com/gin-gonic/gin"
)

// GetPlans returns the active pricing plans plus the currently resolved
// limits per tier. Read-only; used by the pricing page.
func GetPlans(c *gin.Context) {
	plans, err := model.GetEnabledPlans()
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	limits := map[string]service.TierLimits{
		model.TierFree: service.DefaultLimits.GetTierLimits(model.TierFree),
		model.TierPro:  service.DefaultLimits.GetTierLimits(model.TierPro),
		model.TierMax:  service.DefaultLimits.GetTierLimits(model.TierMax),
	}
	common.RespSuccess(c, gin.H{
		"plans":  plans,
		"limits": limits,
	})
}

// GetMyPayments lists the caller's billing history, newest first.
func GetMyPayments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	payments, err := model.GetPaymentsByUser(userID, p*common.ItemsPerPage, common.ItemsPerPage)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, payments)
}
