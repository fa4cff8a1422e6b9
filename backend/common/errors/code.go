package errors

// Generic errors
const (
	ErrInternalServer = "ERR_INTERNAL_SERVER"
	ErrInvalidParam   = "ERR_INVALID_PARAM"
)

// User errors
const (
	ErrEmptyID            = "ERR_EMPTY_ID"
	ErrUserNotFound       = "ERR_USER_NOT_FOUND"
	ErrEmptyCredentials   = "ERR_EMPTY_CREDENTIALS"
	ErrInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrUserBlocked        = "ERR_USER_BLOCKED"
	ErrEmailTaken         = "ERR_EMAIL_TAKEN"
	ErrUsernameTaken      = "ERR_USERNAME_TAKEN"
)

// Card key errors
const (
	ErrCardNotFound    = "ERR_CARD_NOT_FOUND"
	ErrCardAlreadyUsed = "ERR_CARD_ALREADY_USED"
)

// Quota errors
const (
	ErrQuotaFiles    = "ERR_QUOTA_FILES"
	ErrQuotaStorage  = "ERR_QUOTA_STORAGE"
	ErrQuotaFileSize = "ERR_QUOTA_FILE_SIZE"
	ErrQuotaLinks    = "ERR_QUOTA_LINKS"
)

// File and link errors
const (
	ErrFileNotFound  = "ERR_FILE_NOT_FOUND"
	ErrFileBanned    = "ERR_FILE_BANNED"
	ErrLinkNotFound  = "ERR_LINK_NOT_FOUND"
	ErrLinkInactive  = "ERR_LINK_INACTIVE"
	ErrLinkBanned    = "ERR_LINK_BANNED"
	ErrLinkExpired   = "ERR_LINK_EXPIRED"
	ErrLinkVisitCap  = "ERR_LINK_VISIT_CAP"
	ErrNeedPassword  = "ERR_NEED_PASSWORD"
	ErrWrongPassword = "ERR_WRONG_PASSWORD"
)

// Feature errors
const (
	ErrAnalyticsTier = "ERR_ANALYTICS_TIER"
)
