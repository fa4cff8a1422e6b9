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

// Store is the object storage wired at startup. Tests that never touch
// presigned URLs leave it nil.
var Store *service.Storage

func SetStorage(s *service.Storage) {
	Store = s
}

func respQuotaDenied(c *gin.Context, result service.CheckResult) {
	common.RespErrorWithData(c, http.StatusForbidden, result.Reason, result)
}

type CreateFileRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Size        int64  `json:"size" binding:"required,min=1"`
	ContentType string `json:"content_type" binding:"omitempty,max=255"`
}

// CreateFile registers an upload: quota gates run first, then the file row
// is created and a presigned PUT URL is issued for the actual bytes.
func CreateFile(c *gin.Context) {
	lang := c.GetString("lang")
	userID, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	var req CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	user, err := model.GetUserById(userID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}

	now := time.Now()
	guard := service.DefaultGuard
	if result, err := guard.CheckFileCount(user, now, lang); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	} else if !result.Allowed {
		respQuotaDenied(c, result)
		return
	}
	if result, err := guard.CheckFileSize(user, req.Size, now, lang); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	} else if !result.Allowed {
		respQuotaDenied(c, result)
		return
	}
	if result, err := guard.CheckStorage(user, req.Size, 0, now, lang); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	} else if !result.Allowed {
		respQuotaDenied(c, result)
		return
	}

	file := &model.File{
		UserID:      userID,
		Name:        req.Name,
		Size:        req.Size,
		ContentType: req.ContentType,
		StorageKey:  service.NewStorageKey(userID),
	}
	if err := model.FileDB.Save(file); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	if err := model.AddUserStorage(userID, req.Size); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}

	uploadURL := ""
	if Store != nil {
		uploadURL, err = Store.PresignedPutURL(c.Request.Context(), file.StorageKey)
		if err != nil {
			common.RespError(c, http.StatusInternalServerError, "failed to issue upload URL", err)
			return
		}
	}
	common.RespSuccess(c, gin.H{
		"file":       file,
		"upload_url": uploadURL,
	})
}

type ReplaceFileRequest struct {
	Size        int64  `json:"size" binding:"required,min=1"`
	ContentType string `json:"content_type" binding:"omitempty,max=255"`
}

// ReplaceFile swaps a file's content. The file-count gate is skipped; the
// storage gate runs against the baseline minus the replaced size.
func ReplaceFile(c *gin.Context) {
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
	var req ReplaceFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
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
	user, err := model.GetUserById(userID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}

	now := time.Now()
	guard := service.DefaultGuard
	if result, err := guard.CheckFileSize(user, req.Size, now, lang); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	} else if !result.Allowed {
		respQuotaDenied(c, result)
		return
	}
	if result, err := guard.CheckStorage(user, req.Size, file.Size, now, lang); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	} else if !result.Allowed {
		respQuotaDenied(c, result)
		return
	}

	delta := req.Size - file.Size
	file.Size = req.Size
	if req.ContentType != "" {
		file.ContentType = req.ContentType
	}
	file.StorageKey = service.NewStorageKey(userID)
	if err := model.FileDB.Save(file); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	if err := model.AddUserStorage(userID, delta); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}

	uploadURL := ""
	if Store != nil {
		uploadURL, err = Store.PresignedPutURL(c.Request.Context(), file.StorageKey)
		if err != nil {
			common.RespError(c, http.StatusInternalServerError, "failed to issue upload URL", err)
			return
		}
	}
	common.RespSuccess(c, gin.H{
		"file":       file,
		"upload_url": uploadURL,
	})
}

func GetMyFiles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	files, err := model.GetFilesByUser(userID, p*common.ItemsPerPage, common.ItemsPerPage)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, files)
}

func DeleteFile(c *gin.Context) {
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
	if file.UserID != userID && c.GetInt("role") < common.RoleAdminUser {
		common.RespErrorStr(c, http.StatusForbidden, i18n.Translate(apperrors.ErrFileNotFound, lang))
		return
	}
	if err := model.DeleteFile(file); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	common.RespSuccessStr(c, "file deleted")
}

// Admin endpoints

func GetAllFiles(c *gin.Context) {
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	files, err := model.GetAllFiles(p*common.ItemsPerPage, common.ItemsPerPage)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, files)
}

type BanRequest struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason" binding:"omitempty,max=255"`
}

func BanFile(c *gin.Context) {
	lang := c.GetString("lang")
	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, err.Error())
		return
	}
	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	file, err := model.GetFileById(fileID, lang)
	if err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	file.Banned = req.Banned
	file.BanReason = req.Reason
	if err := model.FileDB.Save(file); err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	actorID, _ := currentUserID(c)
	model.RecordAudit(actorID, model.AuditActionBan, "file/"+strconv.FormatInt(file.ID, 10),
		model.AuditLevelInfo, req.Reason)
	common.RespSuccess(c, file)
}
