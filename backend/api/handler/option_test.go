package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"insightlink/backend/model"
	"insightlink/backend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func optionRouter() *gin.Engine {
	r := gin.New()
	r.GET("/api/option/", GetOptions)
	r.PUT("/api/option/", UpdateOption)
	return r
}

func TestOptionAPI_SaveAndList(t *testing.T) {
	setupHandlerTest(t)
	router := optionRouter()

	w := jsonRequest(t, router, "PUT", "/api/option/", gin.H{"key": "TestKey", "value": "TestValue"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = jsonRequest(t, router, "GET", "/api/option/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                     `json:"success"`
		Data    []map[string]interface{} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	found := false
	for _, opt := range resp.Data {
		if opt["key"] == "TestKey" && opt["value"] == "TestValue" {
			found = true
		}
	}
	assert.True(t, found, "saved option should appear in the listing")
}

func TestOptionAPI_TierOverrideInvalidatesLimits(t *testing.T) {
	setupHandlerTest(t)
	router := optionRouter()

	before := service.DefaultLimits.GetTierLimits(model.TierFree)
	assert.Equal(t, int64(2), before.MaxFiles)

	w := jsonRequest(t, router, "PUT", "/api/option/", gin.H{"key": "TIER_FREE_MAX_FILES", "value": "6"})
	assert.Equal(t, http.StatusOK, w.Code)

	after := service.DefaultLimits.GetTierLimits(model.TierFree)
	assert.Equal(t, int64(6), after.MaxFiles)
}

func TestOptionAPI_VisitNotifyRequiresSMTP(t *testing.T) {
	setupHandlerTest(t)
	router := optionRouter()

	w := jsonRequest(t, router, "PUT", "/api/option/", gin.H{"key": "VisitNotifyEnabled", "value": "true"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = jsonRequest(t, router, "PUT", "/api/option/", gin.H{"key": "SMTPServer", "value": "smtp.example.com"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = jsonRequest(t, router, "PUT", "/api/option/", gin.H{"key": "VisitNotifyEnabled", "value": "true"})
	assert.Equal(t, http.StatusOK, w.Code)
}
