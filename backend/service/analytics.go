package service

import (
	"insightlink/backend/model"
)

const visitScanBatch = 500

// LinkStats is a pre-aggregated view of one link's visit rows, shaped for
// direct charting.
type LinkStats struct {
	LinkID         int64            `json:"link_id"`
	TotalVisits    int64            `json:"total_visits"`
	TotalPageViews int64            `json:"total_page_views"`
	ByCountry      map[string]int64 `json:"by_country"`
	ByDevice       map[string]int64 `json:"by_device"`
	ByBrowser      map[string]int64 `json:"by_browser"`
	ByReferer      map[string]int64 `json:"by_referer"`
	ByDay          map[string]int64 `json:"by_day"`
}

// OwnerStats rolls LinkStats up across every link a user owns.
type OwnerStats struct {
	TotalLinks     int64            `json:"total_links"`
	TotalVisits    int64            `json:"total_visits"`
	TotalPageViews int64            `json:"total_page_views"`
	ByCountry      map[string]int64 `json:"by_country"`
	ByDevice       map[string]int64 `json:"by_device"`
	PerLink        []*LinkStats     `json:"per_link"`
}

func newLinkStats(linkID int64) *LinkStats {
	return &LinkStats{
		LinkID:    linkID,
		ByCountry: map[string]int64{},
		ByDevice:  map[string]int64{},
		ByBrowser: map[string]int64{},
		ByReferer: map[string]int64{},
		ByDay:     map[string]int64{},
	}
}

func bump(m map[string]int64, key string) {
	if key == "" {
		key = "unknown"
	}
	m[key]++
}

// BuildLinkStats scans a link's visit rows in batches and aggregates them in
// memory. Visit volumes per link stay small enough that a SQL group-by is
// not worth the extra query surface.
func BuildLinkStats(linkID int64) (*LinkStats, error) {
	stats := newLinkStats(linkID)
	for offset := 0; ; offset += visitScanBatch {
		visits, err := model.GetVisitsByLink(linkID, offset, visitScanBatch)
		if err != nil {
			return nil, err
		}
		for _, v := range visits {
			stats.TotalVisits++
			stats.TotalPageViews += int64(v.PageViews)
			bump(stats.ByCountry, v.Country)
			bump(stats.ByDevice, v.Device)
			bump(stats.ByBrowser, v.Browser)
			bump(stats.ByReferer, v.Referer)
			bump(stats.ByDay, v.LastSeenAt.Format("2006-01-02"))
		}
		if len(visits) < visitScanBatch {
			break
		}
	}
	return stats, nil
}

// BuildOwnerStats aggregates across all of a user's links.
func BuildOwnerStats(userID int64) (*OwnerStats, error) {
	owner := &OwnerStats{
		ByCountry: map[string]int64{},
		ByDevice:  map[string]int64{},
	}
	for offset := 0; ; offset += visitScanBatch {
		links, err := model.GetLinksByUser(userID, offset, visitScanBatch)
		if err != nil {
			return nil, err
		}
		for _, link := range links {
			owner.TotalLinks++
			stats, err := BuildLinkStats(link.ID)
			if err != nil {
				return nil, err
			}
			owner.TotalVisits += stats.TotalVisits
			owner.TotalPageViews += stats.TotalPageViews
			for k, n := range stats.ByCountry {
				owner.ByCountry[k] += n
			}
			for k, n := range stats.ByDevice {
				owner.ByDevice[k] += n
			}
			owner.PerLink = append(owner.PerLink, stats)
		}
		if len(links) < visitScanBatch {
			break
		}
	}
	return owner, nil
}
