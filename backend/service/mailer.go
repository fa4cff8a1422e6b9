package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"insightlink/backend/common"
	"insightlink/backend/model"

	"github.com/sethvargo/go-retry"
)

// mailTask is one outbound email handed to the background worker.
type mailTask struct {
	to      string
	subject string
	body    string
}

// mailQueue decouples email delivery from the request path. Senders never
// wait; a full queue drops the mail with a log line instead of blocking.
var mailQueue chan mailTask

// StartMailWorker launches the delivery goroutine. Each task gets bounded
// retries with exponential backoff; a task that still fails is logged and
// dropped, never bounced back to the request that queued it.
func StartMailWorker(ctx context.Context) {
	mailQueue = make(chan mailTask, 128)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case task := <-mailQueue:
				backoff := retry.WithMaxRetries(3, retry.NewExponential(2*time.Second))
				err := retry.Do(ctx, backoff, func(ctx context.Context) error {
					if err := sendSMTP(task); err != nil {
						return retry.RetryableError(err)
					}
					return nil
				})
				if err != nil {
					common.SysError(fmt.Sprintf("failed to deliver mail to %s: %v", task.to, err))
				}
			}
		}
	}()
}

// QueueEmail enqueues an email without waiting for delivery.
func QueueEmail(to string, subject string, body string) {
	if mailQueue == nil {
		common.SysError("mail worker not started, dropping mail to " + to)
		return
	}
	select {
	case mailQueue <- mailTask{to: to, subject: subject, body: body}:
	default:
		common.SysError("mail queue full, dropping mail to " + to)
	}
}

func sendSMTP(task mailTask) error {
	server, _ := getOption("SMTPServer")
	port, _ := getOption("SMTPPort")
	account, _ := getOption("SMTPAccount")
	token, _ := getOption("SMTPToken")
	from, _ := getOption("SMTPFrom")
	if server == "" || account == "" {
		return fmt.Errorf("SMTP is not configured")
	}
	if port == "" {
		port = "587"
	}
	if from == "" {
		from = account
	}

	msg := strings.Join([]string{
		"From: " + common.SystemName + " <" + from + ">",
		"To: " + task.to,
		"Subject: " + task.subject,
		"Content-Type: text/plain; charset=UTF-8",
		"",
		task.body,
	}, "\r\n")

	auth := smtp.PlainAuth("", account, token, server)
	return smtp.SendMail(server+":"+port, auth, from, []string{task.to}, []byte(msg))
}

// NotifyFirstVisit mails the link owner when a brand-new visit session is
// recorded. Fired only for newly created visit rows.
func NotifyFirstVisit(link *model.Link, visit *model.Visit) {
	owner, err := model.UserDB.ByID(link.UserID)
	if err != nil || owner.Email == "" {
		return
	}
	if enabled, _ := getOption("VisitNotifyEnabled"); enabled != "true" {
		return
	}
	where := visit.Country
	if where == "" {
		where = "an unknown location"
	}
	QueueEmail(owner.Email, "New visit on your link /"+link.Slug,
		fmt.Sprintf("Your shared link /%s was just visited from %s.", link.Slug, where))
}

const lastSummaryOptionKey = "LastAdminSummarySentAt"

// StartAdminSummaryLoop schedules the admin summary mail: one delayed check
// shortly after startup, then an hourly recheck. The loop is idempotent;
// sendAdminSummaryIfDue re-verifies "time since last send" before acting, so
// being invoked more often than the interval is harmless.
func StartAdminSummaryLoop(ctx context.Context) {
	go func() {
		startupDelay := time.NewTimer(2 * time.Minute)
		defer startupDelay.Stop()
		select {
		case <-ctx.Done():
			return
		case <-startupDelay.C:
			sendAdminSummaryIfDue(time.Now())
		}

		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sendAdminSummaryIfDue(time.Now())
			}
		}
	}()
}

func sendAdminSummaryIfDue(now time.Time) {
	adminEmail, _ := getOption("AdminSummaryEmail")
	if adminEmail == "" {
		return
	}
	if raw, ok := getOption(lastSummaryOptionKey); ok && raw != "" {
		last, err := time.Parse(time.RFC3339, raw)
		if err == nil && now.Sub(last) < common.AdminSummaryInterval {
			return
		}
	}
	// Claim the slot before sending so overlapping invocations stay single-send.
	if err := UpdateOption(lastSummaryOptionKey, now.Format(time.RFC3339)); err != nil {
		common.SysError("failed to record summary timestamp: " + err.Error())
		return
	}
	QueueEmail(adminEmail, common.SystemName+" daily summary", buildAdminSummary())
}

func buildAdminSummary() string {
	var b strings.Builder
	b.WriteString("Summary for " + common.SystemName + "\n\n")
	if users, err := model.GetAllUsers(0, 1); err == nil && len(users) > 0 {
		b.WriteString(fmt.Sprintf("Newest user: %s\n", users[0].Username))
	}
	if logs, total, err := model.GetAuditLogs(model.AuditActionRedeem, 1, 5); err == nil {
		b.WriteString(fmt.Sprintf("Card redemptions logged: %d\n", total))
		for _, entry := range logs {
			b.WriteString("  - " + entry.Detail + "\n")
		}
	}
	return b.String()
}
