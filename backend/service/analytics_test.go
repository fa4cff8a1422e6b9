package service

import (
	"testing"
	"time"

	"insightlink/backend/common"
	"insightlink/backend/model"

	"github.com/stretchr/testify/assert"
)

func TestBuildLinkStats(t *testing.T) {
	setupTestDB(t)
	user := newTestUser(t, model.TierPro, nil)
	file := createFileFor(t, user, 100)
	link := createLinkFor(t, file, nil)

	now := time.Now()
	visits := []*model.Visit{
		{LinkID: link.ID, VisitorID: common.GetUUID(), IP: "1.1.1.1", Country: "Germany", Device: "desktop", Browser: "firefox", PageViews: 3, LastSeenAt: now},
		{LinkID: link.ID, VisitorID: common.GetUUID(), IP: "2.2.2.2", Country: "Germany", Device: "mobile", Browser: "chrome", PageViews: 1, LastSeenAt: now},
		{LinkID: link.ID, VisitorID: common.GetUUID(), IP: "3.3.3.3", Country: "Japan", Device: "desktop", Browser: "chrome", PageViews: 2, LastSeenAt: now},
		{LinkID: link.ID, VisitorID: common.GetUUID(), IP: "4.4.4.4", Country: "", Device: "bot", Browser: "other", PageViews: 1, LastSeenAt: now},
	}
	for _, v := range visits {
		assert.NoError(t, model.VisitDB.Save(v))
	}

	stats, err := BuildLinkStats(link.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalVisits)
	assert.Equal(t, int64(7), stats.TotalPageViews)
	assert.Equal(t, int64(2), stats.ByCountry["Germany"])
	assert.Equal(t, int64(1), stats.ByCountry["Japan"])
	assert.Equal(t, int64(1), stats.ByCountry["unknown"])
	assert.Equal(t, int64(2), stats.ByDevice["desktop"])
	assert.Equal(t, int64(2), stats.ByBrowser["chrome"])
	assert.Equal(t, int64(4), stats.ByDay[now.Format("2006-01-02")])
}

func TestBuildOwnerStats(t *testing.T) {
	setupTestDB(t)
	user := newTestUser(t, model.TierPro, nil)
	other := newTestUser(t, model.TierPro, nil)

	fileA := createFileFor(t, user, 100)
	fileB := createFileFor(t, user, 100)
	linkA := createLinkFor(t, fileA, nil)
	linkB := createLinkFor(t, fileB, nil)

	// A foreign user's traffic must not leak into the roll-up.
	foreignFile := createFileFor(t, other, 100)
	foreignLink := createLinkFor(t, foreignFile, nil)
	recordVisits(t, foreignLink, 5)

	recordVisits(t, linkA, 2)
	recordVisits(t, linkB, 3)

	stats, err := BuildOwnerStats(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalLinks)
	assert.Equal(t, int64(5), stats.TotalVisits)
	assert.Len(t, stats.PerLink, 2)
}
