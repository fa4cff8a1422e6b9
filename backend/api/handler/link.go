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

const slugLength = 8

func newSlug() string {
	for i := 0; i < 5; i++ {
		slug := common.GetRandomString(slugLength)
		if !model.IsSlugTaken(slug) {
			return slug
		}
	}
	// Collisions five times in a row means something else is wrong; a longer
	// slug makes another one practically impossible.
	return common.GetRandomString(slugLength * 2)
}

type CreateLinkRequest struct {
	FileID    int64      `json:"file_id" binding:"required"`
	Password  string     `json:"password" binding:"omitempty,min=4,max=64"`
	ExpiresAt *time.Time `json:"expires_at" binding:"omitempty,future"`
	MaxVisits *int64     `json:"max_visits" binding:"omitempty"`
}

// CreateLink creates a share link on an owned file, gated by the per-file
// link quota.
func CreateLink(c *gin.Context) {
	lang := c.GetString("lang")
	userID, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	if req.MaxVisits != nil && *req.MaxVisits < 1 {
		common.RespErrorStr(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang))
		return
	}
	file, err := model.GetFileById(req.FileID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	if file.UserID != userID {
		common.RespErrorStr(c, http.StatusForbidden, i18n.Translate(apperrors.ErrFileNotFound, lang))
		return
	}
	user, err := model.GetUserById(userID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}

	if result, err := service.DefaultGuard.CheckLinkCount(user, file.ID, time.Now(), lang); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	} else if !result.Allowed {
		respQuotaDenied(c, result)
		return
	}

	link := &model.Link{
		FileID:    file.ID,
		UserID:    userID,
		Slug:      newSlug(),
		ExpiresAt: req.ExpiresAt,
		MaxVisits: req.MaxVisits,
		Active:    true,
	}
	if req.Password != "" {
		hash, err := common.Password2Hash(req.Password)
		if err != nil {
			common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
			return
		}
		link.PasswordHash = hash
	}
	if err := model.LinkDB.Save(link); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	common.RespSuccess(c, gin.H{
		"link": link,
		"url":  common.ServerAddress + "/s/" + link.Slug,
	})
}

type UpdateLinkRequest struct {
	Password      *string    `json:"password" binding:"omitempty"`
	ClearPassword bool       `json:"clear_password"`
	ExpiresAt     *time.Time `json:"expires_at"`
	ClearExpiry   bool       `json:"clear_expiry"`
	MaxVisits     *int64     `json:"max_visits"`
	ClearVisits   bool       `json:"clear_visits"`
	Active        *bool      `json:"active"`
}

func UpdateLink(c *gin.Context) {
	lang := c.GetString("lang")
	userID, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	linkID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, err.Error())
		return
	}
	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	link, err := model.GetLinkById(linkID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	if link.UserID != userID {
		common.RespErrorStr(c, http.StatusForbidden, i18n.Translate(apperrors.ErrLinkNotFound, lang))
		return
	}

	if req.ClearPassword {
		link.PasswordHash = ""
	} else if req.Password != nil && *req.Password != "" {
		hash, err := common.Password2Hash(*req.Password)
		if err != nil {
			common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
			return
		}
		link.PasswordHash = hash
	}
	if req.ClearExpiry {
		link.ExpiresAt = nil
	} else if req.ExpiresAt != nil {
		link.ExpiresAt = req.ExpiresAt
	}
	if req.ClearVisits {
		link.MaxVisits = nil
	} else if req.MaxVisits != nil {
		if *req.MaxVisits < 1 {
			common.RespErrorStr(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang))
			return
		}
		link.MaxVisits = req.MaxVisits
	}
	if req.Active != nil {
		link.Active = *req.Active
	}

	if err := model.LinkDB.Save(link); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	common.RespSuccess(c, link)
}

func DeleteLink(c *gin.Context) {
	lang := c.GetString("lang")
	userID, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
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
	if link.UserID != userID && c.GetInt("role") < common.RoleAdminUser {
		common.RespErrorStr(c, http.StatusForbidden, i18n.Translate(apperrors.ErrLinkNotFound, lang))
		return
	}
	if err := model.LinkDB.Delete(link); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	common.RespSuccessStr(c, "link deleted")
}

func GetFileLinks(c *gin.Context) {
	lang := c.GetString("lang")
	userID, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, err.Error())
		return
	}
	file, err := model.GetFileById(fileID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	if file.UserID != userID {
		common.RespErrorStr(c, http.StatusForbidden, i18n.Translate(apperrors.ErrFileNotFound, lang))
		return
	}
	links, err := model.GetLinksByFile(fileID)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, links)
}

func GetMyLinks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	links, err := model.GetLinksByUser(userID, p*common.ItemsPerPage, common.ItemsPerPage)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, links)
}

// Admin endpoints

func GetAllLinks(c *gin.Context) {
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	links, err := model.GetAllLinks(p*common.ItemsPerPage, common.ItemsPerPage)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, links)
}

func BanLink(c *gin.Context) {
	lang := c.GetString("lang")
	linkID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, err.Error())
		return
	}
	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	link, err := model.GetLinkById(linkID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	link.Banned = req.Banned
	link.BanReason = req.Reason
	if err := model.LinkDB.Save(link); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	actorID, _ := currentUserID(c)
	model.RecordAudit(actorID, model.AuditActionBan, "link/"+link.Slug, model.AuditLevelInfo, req.Reason)
	common.RespSuccess(c, link)
}

// AdminPreviewFile issues a deliberately short-lived access URL so an admin
// can review content, including banned content, without minting a normal
// multi-hour download link.
func AdminPreviewFile(c *gin.Context) {
	lang := c.GetString("lang")
	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, err.Error())
		return
	}
	file, err := model.GetFileById(fileID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	if Store == nil {
		common.RespErrorStr(c, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	validity := common.AccessURLValidity
	if file.Banned {
		validity = common.BannedAccessURLValidity
	}
	url, err := Store.PresignedGetURL(c.Request.Context(), file.StorageKey, validity)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, "failed to issue access URL", err)
		return
	}
	common.RespSuccess(c, gin.H{"access_url": url, "valid_for_seconds": int64(validity.Seconds())})
}
