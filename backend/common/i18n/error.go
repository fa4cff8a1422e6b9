package i18n

import (
	"errors"

	apperrors "insightlink/backend/common/errors"
)

// I18nError carries a stable error code alongside the localized message.
type I18nError struct {
	Code string
	Msg  string
	Err  error
}

func (e *I18nError) Error() string {
	return e.Msg
}

func (e *I18nError) ErrorCode() string {
	return e.Code
}

func (e *I18nError) Unwrap() error {
	return e.Err
}

// New creates a localized error from a code.
func New(code string, lang string, args ...interface{}) *I18nError {
	msg := Translate(code, lang, args...)
	return &I18nError{
		Code: code,
		Msg:  msg,
		Err:  errors.New(msg),
	}
}

// Wrap attaches a code and localized message to an existing error.
func Wrap(err error, code string, lang string, args ...interface{}) *I18nError {
	msg := Translate(code, lang, args...)
	return &I18nError{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

func InternalServerError(lang string) *I18nError {
	return New(apperrors.ErrInternalServer, lang)
}

func InvalidParamError(lang string) *I18nError {
	return New(apperrors.ErrInvalidParam, lang)
}

// IsErrorCode reports whether err carries the given code.
func IsErrorCode(err error, code string) bool {
	var ie *I18nError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}
