package service

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/notify"
)

// placeholder значение, которое присылают сгенерированные по OpenAPI клиенты вместо пустого поля
const placeholder = "string"

// isBlank true для пустой строки и заглушки "string"
func isBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, placeholder)
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

func forbidden(action string) error {
	return fmt.Errorf("%w: not allowed to %s", ErrForbidden, action)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// nonEmpty пустой список -> ErrNotFound, как в исходном API
func nonEmpty[T any](items []T, what string) ([]T, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no %s found", ErrNotFound, what)
	}
	return items, nil
}

// displayName имя для писем: display_name или username
func displayName(u *model.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func recipientOf(u *model.User) notify.Recipient {
	return notify.Recipient{
		UserID:     u.ID,
		Email:      u.Email,
		Name:       displayName(u),
		TelegramID: u.TelegramID,
	}
}
