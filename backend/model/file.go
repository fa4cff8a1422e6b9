package model

import (
	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/common/i18n"

	"github.com/burugo/thing"
)

// File is an uploaded object. Size feeds the owner's storage counter;
// StorageKey locates the blob in the S3 bucket.
type File struct {
	thing.BaseModel
	UserID      int64  `db:"user_id,index" json:"user_id"`
	Name        string `db:"name" json:"name"`
	Size        int64  `db:"size" json:"size"`
	ContentType string `db:"content_type" json:"content_type"`
	StorageKey  string `db:"storage_key" json:"-"`
	Banned      bool   `db:"banned" json:"banned"`
	BanReason   string `db:"ban_reason" json:"ban_reason,omitempty"`
}

func (f *File) TableName() string {
	return "files"
}

var FileDB *thing.Thing[*File]

func FileInit() error {
	var err error
	FileDB, err = thing.Use[*File]()
	return err
}

func GetFileById(id int64, lang string) (*File, error) {
	if id == 0 {
		return nil, i18n.New(apperrors.ErrEmptyID, lang)
	}
	file, err := FileDB.ByID(id)
	if err != nil {
		return nil, i18n.Wrap(err, apperrors.ErrFileNotFound, lang)
	}
	return file, nil
}

// CountFilesByUser returns the number of live files a user owns.
func CountFilesByUser(userID int64) (int64, error) {
	return FileDB.Query(thing.QueryParams{}).Where("user_id = ?", userID).Count()
}

func GetFilesByUser(userID int64, startIdx int, num int) ([]*File, error) {
	return FileDB.Where("user_id = ?", userID).Order("id DESC").Fetch(startIdx, num)
}

func GetAllFiles(startIdx int, num int) ([]*File, error) {
	return FileDB.Order("id DESC").Fetch(startIdx, num)
}

// DeleteFile removes the row, its links, and releases the owner's storage.
func DeleteFile(file *File) error {
	links, err := LinkDB.Where("file_id = ?", file.ID).Fetch(0, 1000)
	if err != nil {
		return err
	}
	for _, link := range links {
		if err := LinkDB.Delete(link); err != nil {
			return err
		}
	}
	if err := FileDB.Delete(file); err != nil {
		return err
	}
	return AddUserStorage(file.UserID, -file.Size)
}
