package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// AppError carries a machine readable code and a message that is safe to show
// to callers. Err is one of the sentinels above (or a wrapped cause).
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func notFound(code, msg string) error {
	return &AppError{Code: code, Message: msg, Err: ErrNotFound}
}

func invalid(code, msg string) error {
	return &AppError{Code: code, Message: msg, Err: ErrInvalidInput}
}

func conflict(code, msg string) error {
	return &AppError{Code: code, Message: msg, Err: ErrConflict}
}

// wrapNotFound turns gorm's missing-row error into ErrNotFound with a code.
func wrapNotFound(err error, code, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(code, msg)
	}
	return err
}
