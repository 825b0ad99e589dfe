package service

import "errors"

// Ошибки бизнес-логики. Оборачиваются через fmt.Errorf("%w: ...") и
// сопоставляются с HTTP-кодами на транспортном уровне через errors.Is.
var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
