package i18n

import (
	"fmt"

	apperrors "insightlink/backend/common/errors"
)

const defaultLang = "en"

// locales maps error codes to per-language message templates. Kept in code so
// that Translate never depends on external files at runtime.
var locales = map[string]map[string]string{
	"en": {
		apperrors.ErrInternalServer: "Internal server error",
		apperrors.ErrInvalidParam:   "Invalid parameter",

		apperrors.ErrEmptyID:            "ID is empty",
		apperrors.ErrUserNotFound:       "User not found",
		apperrors.ErrEmptyCredentials:   "Username or password is empty",
		apperrors.ErrInvalidCredentials: "Invalid username or password, or the account is blocked",
		apperrors.ErrUserBlocked:        "Account is blocked",
		apperrors.ErrEmailTaken:         "Email address is already taken",
		apperrors.ErrUsernameTaken:      "Username is already taken",

		apperrors.ErrCardNotFound:    "Card key not found",
		apperrors.ErrCardAlreadyUsed: "Card key has already been redeemed",

		apperrors.ErrQuotaFiles:    "File count limit reached (%d/%d)",
		apperrors.ErrQuotaStorage:  "Storage limit exceeded (%d/%d bytes)",
		apperrors.ErrQuotaFileSize: "File exceeds the maximum size for your plan (%d/%d bytes)",
		apperrors.ErrQuotaLinks:    "Link count limit reached for this file (%d/%d)",

		apperrors.ErrFileNotFound:  "File not found",
		apperrors.ErrFileBanned:    "This file has been banned",
		apperrors.ErrLinkNotFound:  "Link not found",
		apperrors.ErrLinkInactive:  "This link has been disabled",
		apperrors.ErrLinkBanned:    "This link has been banned",
		apperrors.ErrLinkExpired:   "This link has expired",
		apperrors.ErrLinkVisitCap:  "This link has reached its visit limit",
		apperrors.ErrNeedPassword:  "This link is password protected",
		apperrors.ErrWrongPassword: "Wrong password",

		apperrors.ErrAnalyticsTier: "Analytics requires a paid plan",
	},
	"zh": {
		apperrors.ErrInternalServer: "服务器内部错误",
		apperrors.ErrInvalidParam:   "无效的参数",

		apperrors.ErrEmptyID:            "ID 为空",
		apperrors.ErrUserNotFound:       "未找到用户",
		apperrors.ErrEmptyCredentials:   "用户名或密码为空",
		apperrors.ErrInvalidCredentials: "用户名或密码错误，或用户已被封禁",
		apperrors.ErrUserBlocked:        "账户已被封禁",
		apperrors.ErrEmailTaken:         "邮箱地址已被占用",
		apperrors.ErrUsernameTaken:      "用户名已被占用",

		apperrors.ErrCardNotFound:    "卡密不存在",
		apperrors.ErrCardAlreadyUsed: "卡密已被使用",

		apperrors.ErrQuotaFiles:    "文件数量已达上限 (%d/%d)",
		apperrors.ErrQuotaStorage:  "存储空间已超限 (%d/%d 字节)",
		apperrors.ErrQuotaFileSize: "文件大小超出套餐限制 (%d/%d 字节)",
		apperrors.ErrQuotaLinks:    "该文件的链接数量已达上限 (%d/%d)",

		apperrors.ErrFileNotFound:  "未找到文件",
		apperrors.ErrFileBanned:    "该文件已被封禁",
		apperrors.ErrLinkNotFound:  "未找到链接",
		apperrors.ErrLinkInactive:  "该链接已被停用",
		apperrors.ErrLinkBanned:    "该链接已被封禁",
		apperrors.ErrLinkExpired:   "该链接已过期",
		apperrors.ErrLinkVisitCap:  "该链接已达访问次数上限",
		apperrors.ErrNeedPassword:  "该链接需要访问密码",
		apperrors.ErrWrongPassword: "密码错误",

		apperrors.ErrAnalyticsTier: "数据分析需要付费套餐",
	},
}

// Translate resolves an error code into a message for the given language.
// Unknown languages fall back to English; unknown codes come back verbatim.
func Translate(code string, lang string, args ...interface{}) string {
	lang = normalizeLang(lang)
	table, ok := locales[lang]
	if !ok {
		table = locales[defaultLang]
	}
	msg, ok := table[code]
	if !ok {
		msg, ok = locales[defaultLang][code]
		if !ok {
			return code
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func normalizeLang(lang string) string {
	switch {
	case len(lang) >= 2 && lang[:2] == "zh":
		return "zh"
	default:
		return "en"
	}
}
