package i18n

import (
	"errors"
	"testing"

	apperrors "insightlink/backend/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Card key not found", Translate(apperrors.ErrCardNotFound, "en"))
	assert.Equal(t, "卡密不存在", Translate(apperrors.ErrCardNotFound, "zh"))
	assert.Equal(t, "卡密不存在", Translate(apperrors.ErrCardNotFound, "zh-CN"))
	// Unknown languages fall back to English.
	assert.Equal(t, "Card key not found", Translate(apperrors.ErrCardNotFound, "fr"))
	// Unknown codes come back verbatim.
	assert.Equal(t, "SOME_UNKNOWN_CODE", Translate("SOME_UNKNOWN_CODE", "en"))
}

func TestTranslate_FormatArgs(t *testing.T) {
	msg := Translate(apperrors.ErrQuotaFiles, "en", 2, 2)
	assert.Equal(t, "File count limit reached (2/2)", msg)
}

func TestI18nError(t *testing.T) {
	err := New(apperrors.ErrLinkExpired, "en")
	assert.True(t, IsErrorCode(err, apperrors.ErrLinkExpired))
	assert.False(t, IsErrorCode(err, apperrors.ErrLinkBanned))
	assert.Equal(t, "This link has expired", err.Error())
}

func TestI18nError_WrapPreservesCause(t *testing.T) {
	cause := errors.New("row not found")
	err := Wrap(cause, apperrors.ErrUserNotFound, "en")
	assert.True(t, IsErrorCode(err, apperrors.ErrUserNotFound))
	assert.ErrorIs(t, err, cause)
}

func TestIsErrorCode_PlainError(t *testing.T) {
	assert.False(t, IsErrorCode(errors.New("boom"), apperrors.ErrUserNotFound))
	assert.False(t, IsErrorCode(nil, apperrors.ErrUserNotFound))
}
