package model

import (
	"time"

	"insightlink/backend/common"

	"github.com/burugo/thing"
)

// Visit is one visitor session on a link. Repeated hits from the same
// visitor/IP inside common.VisitSessionWindow update the existing row
// instead of creating a new one.
type Visit struct {
	thing.BaseModel
	LinkID     int64     `db:"link_id,index" json:"link_id"`
	VisitorID  string    `db:"visitor_id,index" json:"visitor_id"`
	IP         string    `db:"ip" json:"ip"`
	UserAgent  string    `db:"user_agent" json:"-"`
	Device     string    `db:"device" json:"device"`
	Browser    string    `db:"browser" json:"browser"`
	Country    string    `db:"country" json:"country"`
	City       string    `db:"city" json:"city"`
	Referer    string    `db:"referer" json:"referer"`
	PageViews  int       `db:"page_views" json:"page_views"`
	LastSeenAt time.Time `db:"last_seen_at" json:"last_seen_at"`
}

func (v *Visit) TableName() string {
	return "visits"
}

var VisitDB *thing.Thing[*Visit]

func VisitInit() error {
	var err error
	VisitDB, err = thing.Use[*Visit]()
	return err
}

// CountVisitsByLink returns the number of recorded visit sessions for a link.
// This is the figure the visit cap compares against.
func CountVisitsByLink(linkID int64) (int64, error) {
	return VisitDB.Query(thing.QueryParams{}).Where("link_id = ?", linkID).Count()
}

// FindRecentVisit looks up an open session for the visitor within the
// de-duplication window. Returns nil, nil when there is none.
func FindRecentVisit(linkID int64, visitorID string, ip string, now time.Time) (*Visit, error) {
	cutoff := now.Add(-common.VisitSessionWindow)
	visits, err := VisitDB.Where(
		"link_id = ? AND visitor_id = ? AND ip = ? AND last_seen_at > ?",
		linkID, visitorID, ip, cutoff,
	).Order("last_seen_at DESC").Fetch(0, 1)
	if err != nil {
		return nil, err
	}
	if len(visits) == 0 {
		return nil, nil
	}
	return visits[0], nil
}

// TouchOrCreateVisit coalesces a hit into an open session or records a new
// one. The second return value reports whether a new row was created.
func TouchOrCreateVisit(visit *Visit, now time.Time) (*Visit, bool, error) {
	existing, err := FindRecentVisit(visit.LinkID, visit.VisitorID, visit.IP, now)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		existing.PageViews++
		existing.LastSeenAt = now
		if err := VisitDB.Save(existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	visit.PageViews = 1
	visit.LastSeenAt = now
	if err := VisitDB.Save(visit); err != nil {
		return nil, false, err
	}
	return visit, true, nil
}

func GetVisitsByLink(linkID int64, startIdx int, num int) ([]*Visit, error) {
	return VisitDB.Where("link_id = ?", linkID).Order("last_seen_at DESC").Fetch(startIdx, num)
}
