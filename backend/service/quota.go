package service

import (
	"fmt"
	"time"

	apperrors "insightlink/backend/common/errors"
	"insightlink/backend/common/i18n"
	"insightlink/backend/model"
)

// CheckResult is the outcome of one quota gate. When denied, Current and
// Limit carry the values that tripped the gate and Reason is surfaced
// verbatim as the operation's failure message.
type CheckResult struct {
	Allowed bool   `json:"allowed"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Current int64  `json:"current,omitempty"`
	Limit   int64  `json:"limit,omitempty"`
}

func allow() CheckResult {
	return CheckResult{Allowed: true}
}

func deny(code string, lang string, current, limit int64) CheckResult {
	return CheckResult{
		Allowed: false,
		Code:    code,
		Reason:  i18n.Translate(code, lang, current, limit),
		Current: current,
		Limit:   limit,
	}
}

// QuotaGuard enforces upload and link-creation quotas against the limits of
// the user's effective tier. Enforcement is soft: the read-check-write cycle
// is not held under a cross-request lock, so two simultaneous requests near
// a boundary may both pass. See the storage counter notes in DESIGN.md.
type QuotaGuard struct {
	Limits *LimitsProvider
}

func NewQuotaGuard(limits *LimitsProvider) *QuotaGuard {
	return &QuotaGuard{Limits: limits}
}

func (g *QuotaGuard) limitsFor(user *model.User, now time.Time) TierLimits {
	return g.Limits.GetTierLimits(EffectiveTierOf(user, now))
}

// CheckFileCount gates creating a new file. Blocked users are denied
// outright before any counting happens.
func (g *QuotaGuard) CheckFileCount(user *model.User, now time.Time, lang string) (CheckResult, error) {
	if user.Blocked() {
		result := CheckResult{
			Allowed: false,
			Code:    apperrors.ErrUserBlocked,
			Reason:  i18n.Translate(apperrors.ErrUserBlocked, lang),
		}
		g.audit(user.ID, "user", result)
		return result, nil
	}
	limits := g.limitsFor(user, now)
	if limits.MaxFiles == Unlimited {
		return allow(), nil
	}
	current, err := model.CountFilesByUser(user.ID)
	if err != nil {
		return CheckResult{}, err
	}
	if current >= limits.MaxFiles {
		result := deny(apperrors.ErrQuotaFiles, lang, current, limits.MaxFiles)
		g.audit(user.ID, "files", result)
		return result, nil
	}
	return allow(), nil
}

// CheckStorage gates adding additionalBytes of content. reclaimedBytes is
// the size being released in the same operation (the prior size on a file
// replacement); pass zero for a plain upload.
func (g *QuotaGuard) CheckStorage(user *model.User, additionalBytes int64, reclaimedBytes int64, now time.Time, lang string) (CheckResult, error) {
	limits := g.limitsFor(user, now)
	if limits.MaxStorageBytes == Unlimited {
		return allow(), nil
	}
	baseline := user.StorageUsed - reclaimedBytes
	if baseline < 0 {
		baseline = 0
	}
	hypothetical := baseline + additionalBytes
	if hypothetical > limits.MaxStorageBytes {
		result := deny(apperrors.ErrQuotaStorage, lang, hypothetical, limits.MaxStorageBytes)
		g.audit(user.ID, "storage", result)
		return result, nil
	}
	return allow(), nil
}

// CheckFileSize gates a single file's size against the per-file ceiling.
func (g *QuotaGuard) CheckFileSize(user *model.User, sizeBytes int64, now time.Time, lang string) (CheckResult, error) {
	limits := g.limitsFor(user, now)
	if limits.MaxFileSizeBytes == Unlimited {
		return allow(), nil
	}
	if sizeBytes > limits.MaxFileSizeBytes {
		result := deny(apperrors.ErrQuotaFileSize, lang, sizeBytes, limits.MaxFileSizeBytes)
		g.audit(user.ID, "file_size", result)
		return result, nil
	}
	return allow(), nil
}

// CheckLinkCount gates creating another link on the given file.
func (g *QuotaGuard) CheckLinkCount(user *model.User, fileID int64, now time.Time, lang string) (CheckResult, error) {
	limits := g.limitsFor(user, now)
	if limits.MaxLinksPerFile == Unlimited {
		return allow(), nil
	}
	current, err := model.CountLinksByFile(fileID)
	if err != nil {
		return CheckResult{}, err
	}
	if current >= limits.MaxLinksPerFile {
		result := deny(apperrors.ErrQuotaLinks, lang, current, limits.MaxLinksPerFile)
		g.audit(user.ID, fmt.Sprintf("file/%d", fileID), result)
		return result, nil
	}
	return allow(), nil
}

func (g *QuotaGuard) audit(actorID int64, resource string, result CheckResult) {
	model.RecordAudit(actorID, model.AuditActionQuotaDeny, resource, model.AuditLevelWarn,
		fmt.Sprintf("%s (%d/%d)", result.Code, result.Current, result.Limit))
}
