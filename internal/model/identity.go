package model

import "github.com/google/uuid"

// Principal идентичность вызывающего: всё, что нужно для проверок доступа.
// Один и тот же тип возвращается оракулом аутентификации и используется всеми сервисами.
type Principal struct {
	ID     uuid.UUID  `json:"id"`
	Role   Role       `json:"role"`
	Status UserStatus `json:"status"`
}

// IsAdmin checks if principal has admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Is checks if principal is the given user
func (p Principal) Is(userID uuid.UUID) bool {
	return p.ID == userID
}

// IsOrAdmin true для владельца сущности или администратора
func (p Principal) IsOrAdmin(ownerID uuid.UUID) bool {
	return p.Is(ownerID) || p.IsAdmin()
}
