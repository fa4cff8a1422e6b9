package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"insightlink/backend/common"
	"insightlink/backend/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func viewRouter() *gin.Engine {
	router := gin.New()
	router.GET("/api/view/:slug", ViewLink)
	router.POST("/api/view/:slug", ViewLink)
	return router
}

func saveTestFileAndLink(t *testing.T, user *model.User, mutate func(*model.Link)) (*model.File, *model.Link) {
	t.Helper()
	file := &model.File{
		UserID:      user.ID,
		Name:        "report.pdf",
		Size:        1024,
		ContentType: "application/pdf",
		StorageKey:  "k-" + common.GetRandomString(8),
	}
	assert.NoError(t, model.FileDB.Save(file))
	link := &model.Link{
		FileID: file.ID,
		UserID: user.ID,
		Slug:   common.GetRandomString(8),
		Active: true,
	}
	if mutate != nil {
		mutate(link)
	}
	assert.NoError(t, model.LinkDB.Save(link))
	return file, link
}

func TestViewLink_UnknownSlug(t *testing.T) {
	setupHandlerTest(t)
	router := viewRouter()

	w := jsonRequest(t, router, "GET", "/api/view/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestViewLink_PasswordChallenge(t *testing.T) {
	setupHandlerTest(t)
	user := saveHandlerTestUser(t, model.TierFree)
	hash, err := common.Password2Hash("hunter22")
	assert.NoError(t, err)
	_, link := saveTestFileAndLink(t, user, func(l *model.Link) { l.PasswordHash = hash })
	router := viewRouter()

	// Missing password challenges instead of hard-denying.
	w := jsonRequest(t, router, "GET", "/api/view/"+link.Slug, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp struct {
		Data struct {
			NeedPassword bool `json:"need_password"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.NeedPassword)

	// Wrong password is a firm deny.
	w = jsonRequest(t, router, "POST", "/api/view/"+link.Slug, gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Failed attempts never count as visits.
	count, err := model.CountVisitsByLink(link.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestViewLink_BannedLink(t *testing.T) {
	setupHandlerTest(t)
	user := saveHandlerTestUser(t, model.TierFree)
	_, link := saveTestFileAndLink(t, user, func(l *model.Link) {
		l.Banned = true
		l.BanReason = "flagged"
	})
	router := viewRouter()

	w := jsonRequest(t, router, "GET", "/api/view/"+link.Slug, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "flagged")
}

func TestViewLink_ExpiredLink(t *testing.T) {
	setupHandlerTest(t)
	user := saveHandlerTestUser(t, model.TierFree)
	_, link := saveTestFileAndLink(t, user, func(l *model.Link) {
		past := time.Now().Add(-time.Hour)
		l.ExpiresAt = &past
	})
	router := viewRouter()

	w := jsonRequest(t, router, "GET", "/api/view/"+link.Slug, nil)
	assert.Equal(t, http.StatusGone, w.Code)
}

// A storage outage answers 503 before any visit is recorded, so a visitor
// who got no content never burns a cap-counted visit.
func TestViewLink_StorageDownRecordsNoVisit(t *testing.T) {
	setupHandlerTest(t)
	SetStorage(nil)
	user := saveHandlerTestUser(t, model.TierFree)
	_, link := saveTestFileAndLink(t, user, nil)
	router := viewRouter()

	w := jsonRequest(t, router, "GET", "/api/view/"+link.Slug, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	count, err := model.CountVisitsByLink(link.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
