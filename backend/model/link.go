package model

import (
	"time"

	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/common/i18n"

	"github.com/burugo/thing"
)

// Link is a trackable share link over a file. Nil ExpiresAt means the link
// never expires; nil MaxVisits means no visit cap.
type Link struct {
	thing.BaseModel
	FileID       int64      `db:"file_id,index" json:"file_id"`
	UserID       int64      `db:"user_id,index" json:"user_id"`
	Slug         string     `db:"slug,index" json:"slug"`
	PasswordHash string     `db:"password_hash" json:"-"`
	ExpiresAt    *time.Time `db:"expires_at" json:"expires_at"`
	MaxVisits    *int64     `db:"max_visits" json:"max_visits"`
	Active       bool       `db:"active" json:"active"`
	Banned       bool       `db:"banned" json:"banned"`
	BanReason    string     `db:"ban_reason" json:"ban_reason,omitempty"`
}

func (l *Link) TableName() string {
	return "links"
}

var LinkDB *thing.Thing[*Link]

func LinkInit() error {
	var err error
	LinkDB, err = thing.Use[*Link]()
	return err
}

func GetLinkById(id int64, lang string) (*Link, error) {
	if id == 0 {
		return nil, i18n.New(apperrors.ErrEmptyID, lang)
	}
	link, err := LinkDB.ByID(id)
	if err != nil {
		return nil, i18n.Wrap(err, apperrors.ErrLinkNotFound, lang)
	}
	return link, nil
}

// GetLinkBySlug returns nil, nil when no link carries the slug, so callers
// can distinguish not-found from a store failure.
func GetLinkBySlug(slug string) (*Link, error) {
	links, err := LinkDB.Where("slug = ?", slug).Fetch(0, 1)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, nil
	}
	return links[0], nil
}

func IsSlugTaken(slug string) bool {
	link, err := GetLinkBySlug(slug)
	return err == nil && link != nil
}

// CountLinksByFile returns how many links exist on a file.
func CountLinksByFile(fileID int64) (int64, error) {
	return LinkDB.Query(thing.QueryParams{}).Where("file_id = ?", fileID).Count()
}

func GetLinksByFile(fileID int64) ([]*Link, error) {
	return LinkDB.Where("file_id = ?", fileID).Order("id DESC").Fetch(0, 1000)
}

func GetLinksByUser(userID int64, startIdx int, num int) ([]*Link, error) {
	return LinkDB.Where("user_id = ?", userID).Order("id DESC").Fetch(startIdx, num)
}

func GetAllLinks(startIdx int, num int) ([]*Link, error) {
	return LinkDB.Order("id DESC").Fetch(startIdx, num)
}
