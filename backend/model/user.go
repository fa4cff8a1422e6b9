package model

import (
	"time"

	"insightlink/backend/common"
	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/common/i18n"

	"github.com/burugo/thing"
)

// Tier names. The stored tier is never eagerly reset on expiry; readers go
// through service.EffectiveTier to get the tier actually in force.
const (
	TierFree = "FREE"
	TierPro  = "PRO"
	TierMax  = "MAX"
)

// User represents an account. StorageUsed tracks the byte sum of live files
// owned by the user and is adjusted on every file create/replace/delete.
type User struct {
	thing.BaseModel
	Username      string     `db:"username,index" json:"username"`
	Password      string     `db:"password" json:"-"`
	DisplayName   string     `db:"display_name" json:"display_name"`
	Role          int        `db:"role" json:"role"`
	Status        int        `db:"status" json:"status"`
	Email         string     `db:"email,index" json:"email"`
	Tier          string     `db:"tier" json:"tier"`
	TierExpiresAt *time.Time `db:"tier_expires_at" json:"tier_expires_at"`
	StorageUsed   int64      `db:"storage_used" json:"storage_used"`
}

func (u *User) TableName() string {
	return "users"
}

var UserDB *thing.Thing[*User]

func UserInit() error {
	var err error
	UserDB, err = thing.Use[*User]()
	return err
}

// Blocked reports whether the account is administratively disabled.
func (u *User) Blocked() bool {
	return u.Status == common.UserStatusBlocked
}

func GetAllUsers(startIdx int, num int) ([]*User, error) {
	return UserDB.Order("id DESC").Fetch(startIdx, num)
}

func SearchUsers(keyword string) ([]*User, error) {
	return UserDB.Where(
		"id = ? OR username LIKE ? OR email LIKE ? OR display_name LIKE ?",
		keyword, keyword+"%", keyword+"%", keyword+"%",
	).Order("id DESC").Fetch(0, 100)
}

func GetUserById(id int64, lang string) (*User, error) {
	if id == 0 {
		return nil, i18n.New(apperrors.ErrEmptyID, lang)
	}
	user, err := UserDB.ByID(id)
	if err != nil {
		return nil, i18n.Wrap(err, apperrors.ErrUserNotFound, lang)
	}
	return user, nil
}

func DeleteUserById(id int64, lang string) error {
	if id == 0 {
		return i18n.New(apperrors.ErrEmptyID, lang)
	}
	user, err := UserDB.ByID(id)
	if err != nil {
		return i18n.Wrap(err, apperrors.ErrUserNotFound, lang)
	}
	return UserDB.Delete(user)
}

func (u *User) Insert() error {
	if u.Password != "" {
		var err error
		u.Password, err = common.Password2Hash(u.Password)
		if err != nil {
			return err
		}
	}
	if u.Tier == "" {
		u.Tier = TierFree
	}
	return UserDB.Save(u)
}

func (u *User) Update(updatePassword bool) error {
	if updatePassword {
		var err error
		u.Password, err = common.Password2Hash(u.Password)
		if err != nil {
			return err
		}
	}
	return UserDB.Save(u)
}

// ValidateAndFill checks credentials and loads the stored account into u.
func (u *User) ValidateAndFill(lang string) error {
	if u.Username == "" || u.Password == "" {
		return i18n.New(apperrors.ErrEmptyCredentials, lang)
	}
	users, err := UserDB.Where("username = ?", u.Username).Fetch(0, 1)
	if err != nil || len(users) == 0 {
		return i18n.New(apperrors.ErrInvalidCredentials, lang)
	}
	found := users[0]
	okay := common.ValidatePasswordAndHash(u.Password, found.Password)
	if !okay || found.Status != common.UserStatusEnabled {
		return i18n.New(apperrors.ErrInvalidCredentials, lang)
	}
	*u = *found
	return nil
}

func IsEmailAlreadyTaken(email string) bool {
	users, err := UserDB.Where("email = ?", email).Fetch(0, 1)
	return err == nil && len(users) > 0
}

func IsUsernameAlreadyTaken(username string) bool {
	users, err := UserDB.Where("username = ?", username).Fetch(0, 1)
	return err == nil && len(users) > 0
}

// AddUserStorage adjusts the live storage counter. delta may be negative;
// the result is clamped at zero so a replay can never drive it below.
func AddUserStorage(userID int64, delta int64) error {
	user, err := UserDB.ByID(userID)
	if err != nil {
		return err
	}
	user.StorageUsed += delta
	if user.StorageUsed < 0 {
		user.StorageUsed = 0
	}
	return UserDB.Save(user)
}
