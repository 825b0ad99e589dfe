package auth

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/google/uuid"
)

type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Authenticator оракул идентичности: токен -> Principal.
// Роль и статус берутся из хранилища, а не из токена, чтобы изменения применялись сразу.
type Authenticator struct {
	tokens *Tokens
	users  UserGetter
}

func NewAuthenticator(tokens *Tokens, users UserGetter) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (model.Principal, error) {
	id, _, err := a.tokens.Parse(token)
	if err != nil {
		return model.Principal{}, err
	}

	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		return model.Principal{}, fmt.Errorf("load principal: %w", err)
	}
	if user == nil {
		return model.Principal{}, fmt.Errorf("%w: user %s no longer exists", ErrInvalidToken, id)
	}

	return user.Principal(), nil
}
