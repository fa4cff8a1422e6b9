package service

import (
	"fmt"
	"net/http"
	"time"

	"insightlink/backend/common"
	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/common/i18n"
	"insightlink/backend/model"
)

// AccessStatus is the outcome of evaluating a link at view time.
type AccessStatus string

const (
	AccessNotFound      AccessStatus = "not_found"
	AccessInactive      AccessStatus = "inactive"
	AccessLinkBanned    AccessStatus = "link_banned"
	AccessFileBanned    AccessStatus = "file_banned"
	AccessExpired       AccessStatus = "expired"
	AccessVisitCap      AccessStatus = "visit_cap"
	AccessNeedPassword  AccessStatus = "need_password"
	AccessWrongPassword AccessStatus = "wrong_password"
	AccessServable      AccessStatus = "servable"
)

// AccessDecision carries the evaluation outcome plus the loaded entities
// when the checks got far enough to load them.
type AccessDecision struct {
	Status       AccessStatus
	HTTPStatus   int
	Code         string
	Reason       string
	NeedPassword bool
	Link         *model.Link
	File         *model.File
}

func (d *AccessDecision) Servable() bool {
	return d.Status == AccessServable
}

func denied(status AccessStatus, httpStatus int, code string, lang string, link *model.Link, file *model.File) *AccessDecision {
	return &AccessDecision{
		Status:       status,
		HTTPStatus:   httpStatus,
		Code:         code,
		Reason:       i18n.Translate(code, lang),
		NeedPassword: status == AccessNeedPassword || status == AccessWrongPassword,
		Link:         link,
		File:         file,
	}
}

// EvaluateLinkAccess runs the view-time state machine. The check order is
// fixed: not-found, inactive, link ban, file ban, expiry, visit cap,
// password. Ban and expiry checks come before password checks so a banned or
// expired link never leaks a password prompt, and administrative bans win
// over the owner's own access settings. No visit state mutates here; the
// caller records the visit only for a servable decision.
func EvaluateLinkAccess(slug string, password string, now time.Time, lang string) (*AccessDecision, error) {
	link, err := model.GetLinkBySlug(slug)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return denied(AccessNotFound, http.StatusNotFound, apperrors.ErrLinkNotFound, lang, nil, nil), nil
	}

	if !link.Active {
		logLinkDenial(link, "inactive")
		return denied(AccessInactive, http.StatusGone, apperrors.ErrLinkInactive, lang, link, nil), nil
	}

	if link.Banned {
		logLinkDenial(link, "banned: "+link.BanReason)
		d := denied(AccessLinkBanned, http.StatusForbidden, apperrors.ErrLinkBanned, lang, link, nil)
		if link.BanReason != "" {
			d.Reason = d.Reason + ": " + link.BanReason
		}
		return d, nil
	}

	file, err := model.FileDB.ByID(link.FileID)
	if err != nil {
		return nil, err
	}
	if file.Banned {
		logLinkDenial(link, "file banned: "+file.BanReason)
		d := denied(AccessFileBanned, http.StatusForbidden, apperrors.ErrFileBanned, lang, link, file)
		if file.BanReason != "" {
			d.Reason = d.Reason + ": " + file.BanReason
		}
		return d, nil
	}

	if link.ExpiresAt != nil && now.After(*link.ExpiresAt) {
		logLinkDenial(link, "expired")
		return denied(AccessExpired, http.StatusGone, apperrors.ErrLinkExpired, lang, link, file), nil
	}

	if link.MaxVisits != nil {
		visits, err := model.CountVisitsByLink(link.ID)
		if err != nil {
			return nil, err
		}
		if visits >= *link.MaxVisits {
			logLinkDenial(link, fmt.Sprintf("visit cap reached (%d/%d)", visits, *link.MaxVisits))
			return denied(AccessVisitCap, http.StatusGone, apperrors.ErrLinkVisitCap, lang, link, file), nil
		}
	}

	if link.PasswordHash != "" {
		if password == "" {
			return denied(AccessNeedPassword, http.StatusUnauthorized, apperrors.ErrNeedPassword, lang, link, file), nil
		}
		if !common.ValidatePasswordAndHash(password, link.PasswordHash) {
			logLinkDenial(link, "wrong password")
			return denied(AccessWrongPassword, http.StatusForbidden, apperrors.ErrWrongPassword, lang, link, file), nil
		}
	}

	return &AccessDecision{
		Status:     AccessServable,
		HTTPStatus: http.StatusOK,
		Link:       link,
		File:       file,
	}, nil
}

func logLinkDenial(link *model.Link, detail string) {
	model.RecordAudit(link.UserID, model.AuditActionLinkDeny, "link/"+link.Slug, model.AuditLevelWarn, detail)
}
