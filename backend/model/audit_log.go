package model

import (
	"fmt"

	"insightlink/backend/common"

	"github.com/burugo/thing"
)

// AuditLogLevel represents the log level
type AuditLogLevel string

const (
	AuditLevelInfo AuditLogLevel = "info"
	AuditLevelWarn AuditLogLevel = "warn"
)

// Audit actions
const (
	AuditActionRedeem     = "card_redeem"
	AuditActionQuotaDeny  = "quota_deny"
	AuditActionLinkDeny   = "link_deny"
	AuditActionUserManage = "user_manage"
	AuditActionBan        = "ban"
)

// AuditLog records tier changes and denials with enough context for later
// review: who acted, on what, and why it was rejected or applied.
type AuditLog struct {
	thing.BaseModel
	ActorID  int64         `db:"actor_id,index" json:"actor_id"`
	Action   string        `db:"action,index" json:"action"`
	Resource string        `db:"resource" json:"resource"`
	Level    AuditLogLevel `db:"level" json:"level"`
	Detail   string        `db:"detail" json:"detail"`
}

func (l *AuditLog) TableName() string {
	return "audit_logs"
}

var AuditLogDB *thing.Thing[*AuditLog]

func AuditLogInit() error {
	var err error
	AuditLogDB, err = thing.Use[*AuditLog]()
	return err
}

// GetAuditLogs retrieves audit entries with optional action filter.
func GetAuditLogs(action string, page, pageSize int) ([]*AuditLog, int64, error) {
	query := AuditLogDB.Query(thing.QueryParams{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	total, err := query.Count()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	logs, err := query.Order("created_at DESC").Fetch((page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}

// RecordAudit writes an audit entry. Failures are logged and swallowed so a
// broken audit trail can never fail the primary operation.
func RecordAudit(actorID int64, action string, resource string, level AuditLogLevel, detail string) {
	const maxDetailLength = 2048
	if len(detail) > maxDetailLength {
		detail = detail[:maxDetailLength] + "... [truncated]"
	}
	entry := &AuditLog{
		ActorID:  actorID,
		Action:   action,
		Resource: resource,
		Level:    level,
		Detail:   detail,
	}
	if AuditLogDB == nil {
		common.SysError("audit log store not initialized, dropping entry: " + detail)
		return
	}
	if err := AuditLogDB.Save(entry); err != nil {
		common.SysError(fmt.Sprintf("failed to save audit log: %v", err))
	}
}
