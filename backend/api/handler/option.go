package handler

import (
	"net/http"

	"insightlink/backend/common"
	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/common/i18n"
	"insightlink/backend/model"
	"insightlink/backend/service"

	"github.com/gin-gonic/gin"
)

func GetOptions(c *gin.Context) {
	options, err := model.AllOptions()
	if err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccess(c, options)
}

type UpdateOptionRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

func UpdateOption(c *gin.Context) {
	lang := c.GetString("lang")
	var req UpdateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(apperrors.ErrInvalidParam, lang), err)
		return
	}
	switch req.Key {
	case "VisitNotifyEnabled":
		if req.Value == "true" {
			if server, _ := model.GetOption("SMTPServer"); server == "" {
				common.RespErrorStr(c, http.StatusBadRequest, "cannot enable visit notifications before SMTP is configured")
				return
			}
		}
	case "AdminSummaryEmail":
		// Accept any value; the summary loop skips sending while empty.
	}
	if err := service.UpdateOption(req.Key, req.Value); err != nil {
		common.RespErrorStr(c, http.StatusInternalServerError, err.Error())
		return
	}
	common.RespSuccessStr(c, "")
}
