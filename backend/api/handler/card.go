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

type RedeemRequest struct {
	Code string `json:"code" binding:"required,min=8,max=64"`
}

// RedeemCard consumes a card key for the logged-in user.
func RedeemCard(c *gin.Context) {
	lang := c.GetString("lang")
	userID, ok := currentUserID(c)
	if !ok {
		common.RespErrorStr(c, http.StatusUnauthorized, "user_id not found in context")
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}

	result, err := service.RedeemCard(req.Code, userID, time.Now(), lang)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case i18n.IsErrorCode(err, apperrors.ErrCardNotFound):
			status = http.StatusNotFound
		case i18n.IsErrorCode(err, apperrors.ErrCardAlreadyUsed):
			status = http.StatusConflict
		}
		common.RespErrorStr(c, status, err.Error())
		return
	}
	common.RespSuccess(c, result)
}

type GenerateCardsRequest struct {
	Count        int    `json:"count" binding:"required,min=1,max=1000"`
	Tier         string `json:"tier" binding:"required,oneof=PRO MAX"`
	DurationDays int    `json:"duration_days" binding:"required,min=1,max=3650"`
}

// GenerateCardKeys creates a batch of codes (admin only).
func GenerateCardKeys(c *gin.Context) {
	lang := c.GetString("lang")
	var req GenerateCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	batchID := common.GetUUID()
	keys, err := model.GenerateCardKeys(req.Count, req.Tier, req.DurationDays, batchID)
	if err != nil {
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(apperrors.ErrInternalServer, lang), err)
		return
	}
	common.RespSuccess(c, gin.H{
		"batch_id": batchID,
		"keys":     keys,
	})
}

func GetCardKeys(c *gin.Context) {
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	batchID := c.Query("batch_id")
	keys, err := model.GetCardKeys(batchID, p*common.ItemsPerPage, common.ItemsPerPage)
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, keys)
}

func DeleteCardKey(c *gin.Context) {
	lang := c.GetString("lang")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.RespErrorStr(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := model.DeleteCardKeyById(id, lang); err != nil {
		common.RespErrorStr(c, http.StatusNotFound, err.Error())
		return
	}
	common.RespSuccessStr(c, "card key deleted")
}
