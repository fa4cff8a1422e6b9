package handler

import (
	"net/http"
	"time"

	"insightlink/backend/common"
	"insightlink/backend/model"
	"insightlink/backend/service"

	"github.com/gin-gonic/gin"
)

const visitorCookie = "il_visitor"

// visitorIdentity reads the anonymous visitor cookie, minting one when the
// browser shows up without it. Same visitor + same IP inside the session
// window collapses into one visit row.
func visitorIdentity(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookie); err == nil && id != "" {
		return id
	}
	id := common.GetUUID()
	c.SetCookie(visitorCookie, id, int((365 * 24 * time.Hour).Seconds()), "/", "", false, true)
	return id
}

type ViewLinkRequest struct {
	Password string `json:"password"`
}

// ViewLink is the public entry point for a share link. The evaluator owns
// the deny/allow decision; this handler only records the visit and mints the
// download URL once the decision is servable.
func ViewLink(c *gin.Context) {
	lang := c.GetString("lang")
	slug := c.Param("slug")

	var req ViewLinkRequest
	_ = c.ShouldBindJSON(&req)
	if req.Password == "" {
		req.Password = c.Query("password")
	}

	now := time.Now()
	decision, err := service.EvaluateLinkAccess(slug, req.Password, now, lang)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to evaluate link", err)
		return
	}
	if !decision.Servable() {
		common.RespErrorWithData(c, decision.HTTPStatus, decision.Reason, gin.H{
			"status":        decision.Status,
			"need_password": decision.NeedPassword,
		})
		return
	}

	// Storage must be up before the visit counts: a 503 with no content
	// served must not burn a cap-counted visit.
	if Store == nil {
		common.RespErrorStr(c, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	visit := recordVisit(c, decision.Link, now)
	url, err := Store.PresignedGetURL(c.Request.Context(), decision.File.StorageKey, common.AccessURLValidity)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to issue access URL", err)
		return
	}

	resp := gin.H{
		"file": gin.H{
			"name":         decision.File.Name,
			"size":         decision.File.Size,
			"content_type": decision.File.ContentType,
		},
		"access_url":        url,
		"valid_for_seconds": int64(common.AccessURLValidity.Seconds()),
	}
	if visit != nil {
		resp["visit_id"] = visit.ID
	}
	common.RespSuccess(c, resp)
}

// recordVisit is best effort: a broken analytics write never blocks the
// download itself.
func recordVisit(c *gin.Context, link *model.Link, now time.Time) *model.Visit {
	ua := c.Request.UserAgent()
	info := service.ParseUserAgent(ua)
	loc := service.LookupLocation(c.Request.Context(), c.ClientIP())

	visit := &model.Visit{
		LinkID:     link.ID,
		VisitorID:  visitorIdentity(c),
		IP:         c.ClientIP(),
		UserAgent:  ua,
		Device:     info.Device,
		Browser:    info.Browser,
		Country:    loc.Country,
		City:       loc.City,
		Referer:    c.Request.Referer(),
		LastSeenAt: now,
	}
	saved, created, err := model.TouchOrCreateVisit(visit, now)
	if err != nil {
		common.SysError("failed to record visit for link " + link.Slug + ": " + err.Error())
		return nil
	}
	if created {
		service.NotifyFirstVisit(link, saved)
	}
	return saved
}
