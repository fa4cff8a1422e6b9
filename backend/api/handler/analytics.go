package handler

import (
	"net/http"
	"strconv"
	"time"

	"insightlink/backend/common"
	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/common/i18n"
	"insightlink/backend/model"
	"insightlink/backend/service"

	"github.com/gin-gonic/gin"
)

// requireAnalytics resolves the caller's effective tier and checks the
// analytics feature flag. Blocked and lapsed users fall back to FREE limits,
// which do not include analytics.
func requireAnalytics(c *gin.Context) (*model.User, bool) {
	lang := c.GetString("lang")
	userID, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return nil, false
	}
	user, err := model.GetUserById(userID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return nil, false
	}
	tier := service.EffectiveTierOf(user, time.Now())
	limits := service.DefaultLimits.GetTierLimits(tier)
	if !limits.Analytics {
		common.RespErrorStr(c, http.StatusForbidden, i18n.Translate(apperrors.ErrAnalyticsTier, lang))
		return nil, false
	}
	return user, true
}

// GetLinkVisits lists visit rows for an owned link, most recent first.
func GetLinkVisits(c *gin.Context) {
	lang := c.GetString("lang")
	user, ok := requireAnalytics(c)
	if !ok {
		return
	}
	linkID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, err.Error())
		return
	}
	link, err := model.GetLinkById(linkID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	if link.UserID != user.ID {
		common.RespErrorStr(c, http.StatusForbidden, i18n.Translate(apperrors.ErrLinkNotFound, lang))
		return
	}
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	visits, err := model.GetVisitsByLink(linkID, p*common.ItemsPerPage, common.ItemsPerPage)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := model.CountVisitsByLink(linkID)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, gin.H{
		"visits": visits,
		"total":  total,
	})
}

// GetLinkStats aggregates visit rows of an owned link into breakdowns the
// dashboard can chart directly.
func GetLinkStats(c *gin.Context) {
	lang := c.GetString("lang")
	user, ok := requireAnalytics(c)
	if !ok {
		return
	}
	linkID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, err.Error())
		return
	}
	link, err := model.GetLinkById(linkID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	if link.UserID != user.ID {
		common.RespErrorStr(c, http.StatusForbidden, i18n.Translate(apperrors.ErrLinkNotFound, lang))
		return
	}
	stats, err := service.BuildLinkStats(linkID)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, stats)
}

// GetMyStats aggregates across every link the caller owns.
func GetMyStats(c *gin.Context) {
	user, ok := requireAnalytics(c)
	if !ok {
		return
	}
	stats, err := service.BuildOwnerStats(user.ID)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, stats)
}

// GetAuditLogs lists audit entries for admins, optionally filtered by action.
func GetAuditLogs(c *gin.Context) {
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	if p == 0 {
		p = 1
	}
	logs, total, err := model.GetAuditLogs(c.Query("action"), p, common.ItemsPerPage)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, gin.H{
		"logs":  logs,
		"total": total,
	})
}
