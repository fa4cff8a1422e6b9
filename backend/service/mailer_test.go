package service

import (
	"testing"
	"time"

	"insightlink/backend/common"
	"insightlink/backend/model"

	"github.com/stretchr/testify/assert"
)

func setupMailerTest(t *testing.T) {
	t.Helper()
	setupTestDB(t)
	assert.NoError(t, model.InitOptionMapFromDB())
	mailQueue = make(chan mailTask, 8)
}

func TestAdminSummary_OncePerInterval(t *testing.T) {
	setupMailerTest(t)
	assert.NoError(t, UpdateOption("AdminSummaryEmail", "ops@example.com"))

	now := time.Now()
	sendAdminSummaryIfDue(now)
	assert.Equal(t, 1, len(mailQueue))

	// Firing more often than the interval must not queue another summary.
	sendAdminSummaryIfDue(now.Add(time.Hour))
	sendAdminSummaryIfDue(now.Add(common.AdminSummaryInterval - time.Minute))
	assert.Equal(t, 1, len(mailQueue))

	// Once the interval has elapsed the next invocation sends again.
	sendAdminSummaryIfDue(now.Add(common.AdminSummaryInterval + time.Minute))
	assert.Equal(t, 2, len(mailQueue))
}

func TestAdminSummary_NoRecipientConfigured(t *testing.T) {
	setupMailerTest(t)

	sendAdminSummaryIfDue(time.Now())
	assert.Equal(t, 0, len(mailQueue))
}

func TestQueueEmail_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	mailQueue = make(chan mailTask, 1)
	QueueEmail("a@example.com", "first", "body")
	QueueEmail("a@example.com", "second", "body")
	assert.Equal(t, 1, len(mailQueue))

	queued := <-mailQueue
	assert.Equal(t, "first", queued.subject)
}
