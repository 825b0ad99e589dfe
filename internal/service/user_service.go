package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/auth"
	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Profile собственный профиль: всё, кроме хеша пароля, плюс агрегат оценок
type Profile struct {
	*model.User
	model.RatingStats
}

// PublicProfile профиль другого пользователя: без баланса и telegram
type PublicProfile struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone,omitempty"`
	DisplayName string           `json:"display_name,omitempty"`
	Subjects    []string         `json:"subjects,omitempty"`
	Levels      []string         `json:"levels,omitempty"`
	Gender      string           `json:"gender,omitempty"`
	Address     string           `json:"address,omitempty"`
	Bio         string           `json:"bio,omitempty"`
	Role        model.Role       `json:"role"`
	Status      model.UserStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	model.RatingStats
}

func publicProfile(u *model.User, stats model.RatingStats) *PublicProfile {
	return &PublicProfile{
		ID:          u.ID,
		Email:       u.Email,
		Phone:       u.Phone,
		DisplayName: u.DisplayName,
		Subjects:    u.Subjects,
		Levels:      u.Levels,
		Gender:      u.Gender,
		Address:     u.Address,
		Bio:         u.Bio,
		Role:        u.Role,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
		RatingStats: stats,
	}
}

type UserService struct {
	userRepo UserRepository
	ratings  *RatingService
	tokens   *auth.Tokens
	logger   *zap.Logger
}

func NewUserService(userRepo UserRepository, ratings *RatingService, tokens *auth.Tokens, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		ratings:  ratings,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login проверяет пароль и выдаёт access-токен
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", fmt.Errorf("get user by username: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return "", fmt.Errorf("%w: incorrect username or password", ErrUnauthenticated)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return token, nil
}

func (s *UserService) getUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, notFound("user")
	}
	return user, nil
}

// Profile профиль вызывающего с балансом и рейтингом
func (s *UserService) Profile(ctx context.Context, actor model.Principal) (*Profile, error) {
	user, err := s.getUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	stats, err := s.ratings.Stats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, RatingStats: stats}, nil
}

// PublicProfile профиль любого пользователя по id
func (s *UserService) PublicProfile(ctx context.Context, userID uuid.UUID) (*PublicProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.ratings.Stats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return publicProfile(user, stats), nil
}

// UpdateProfile применяет непустые поля
func (s *UserService) UpdateProfile(ctx context.Context, actor model.Principal, upd model.ProfileUpdate) (*Profile, error) {
	upd = dropBlank(upd)
	if upd.IsEmpty() {
		return nil, invalid("no valid fields to update")
	}

	user, err := s.getUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	upd.Apply(user)

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("Profile updated", zap.String("user_id", user.ID.String()))

	return s.Profile(ctx, actor)
}

// dropBlank пустые строки и списки считаются незаданными
func dropBlank(upd model.ProfileUpdate) model.ProfileUpdate {
	blank := func(p *string) *string {
		if p == nil || strings.TrimSpace(*p) == "" {
			return nil
		}
		return p
	}
	upd.Email = blank(upd.Email)
	upd.Phone = blank(upd.Phone)
	upd.DisplayName = blank(upd.DisplayName)
	upd.Gender = blank(upd.Gender)
	upd.Address = blank(upd.Address)
	upd.Bio = blank(upd.Bio)
	if len(upd.Subjects) == 0 {
		upd.Subjects = nil
	}
	if len(upd.Levels) == 0 {
		upd.Levels = nil
	}
	return upd
}

// RequestVerification переводит свой профиль в pending
func (s *UserService) RequestVerification(ctx context.Context, actor model.Principal) error {
	if actor.Status == model.UserStatusAccepted {
		return conflict("profile is already verified")
	}

	if err := s.setStatus(ctx, actor.ID, model.UserStatusPending); err != nil {
		return err
	}

	s.logger.Info("Profile verification requested", zap.String("user_id", actor.ID.String()))
	return nil
}

// SetStatus статус профиля меняет только админ
func (s *UserService) SetStatus(ctx context.Context, actor model.Principal, userID uuid.UUID, status model.UserStatus) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin privileges required", ErrForbidden)
	}
	if !status.Valid() {
		return invalid("unknown profile status %q", status)
	}

	if err := s.setStatus(ctx, userID, status); err != nil {
		return err
	}

	s.logger.Info("Profile status updated",
		zap.String("user_id", userID.String()),
		zap.String("status", string(status)),
		zap.String("admin_id", actor.ID.String()),
	)
	return nil
}

func (s *UserService) setStatus(ctx context.Context, userID uuid.UUID, status model.UserStatus) error {
	err := s.userRepo.UpdateStatus(ctx, userID, status)
	if errors.Is(err, base.ErrConditionFailed) {
		return notFound("user")
	}
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	return nil
}

// ListByStatus профили с заданным статусом, только для админа
func (s *UserService) ListByStatus(ctx context.Context, actor model.Principal, status model.UserStatus, page model.Page) ([]*PublicProfile, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin privileges required", ErrForbidden)
	}
	if !status.Valid() {
		return nil, invalid("unknown profile status %q", status)
	}

	users, err := s.userRepo.ListByStatus(ctx, status, page)
	if err != nil {
		return nil, fmt.Errorf("list users by status: %w", err)
	}

	profiles := make([]*PublicProfile, 0, len(users))
	for _, u := range users {
		stats, err := s.ratings.Stats(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, publicProfile(u, stats))
	}
	return profiles, nil
}

// DemoUser учётка для локального запуска
type DemoUser struct {
	Username    string
	DisplayName string
	Email       string
	Phone       string
	Subjects    []string
	Levels      []string
	Gender      string
	Address     string
	Bio         string
	Balance     decimal.Decimal
	Role        model.Role
	Status      model.UserStatus
}

// DemoPassword пароль всех демо-учёток
const DemoPassword = "123456"

var DemoUsers = []DemoUser{
	{
		Username: "herta", DisplayName: "The Herta", Email: "herta@example.com", Phone: "0901000001",
		Subjects: []string{"AI research", "Data science"}, Levels: []string{"All"},
		Gender: "female", Address: "Can Tho", Bio: "A tutor with excellent teaching skills.",
		Balance: decimal.NewFromInt(1_000_000), Role: model.RoleCustomer, Status: model.UserStatusUnverified,
	},
	{
		Username: "bronya", DisplayName: "Bronya", Email: "bronya@example.com", Phone: "0902000002",
		Gender: "female", Address: "Ho Chi Minh City", Bio: "A smart girl.",
		Balance: decimal.NewFromInt(500_000), Role: model.RoleCustomer, Status: model.UserStatusUnverified,
	},
	{
		Username: "jingyuan", DisplayName: "Jing Yuan", Email: "jingyuan@example.com", Phone: "0903000003",
		Subjects: []string{"Math", "Physics"}, Levels: []string{"6", "7", "8", "9", "10", "11", "12"},
		Gender: "male", Address: "Da Nang", Bio: "Experienced in teaching natural sciences.",
		Balance: decimal.NewFromInt(750_000), Role: model.RoleCustomer, Status: model.UserStatusUnverified,
	},
	{
		Username: "qui", DisplayName: "qui", Email: "qui@example.com", Phone: "0901000001",
		Subjects: []string{"AI research", "Data science"}, Levels: []string{"All"},
		Gender: "female", Address: "Can Tho",
		Balance: decimal.NewFromInt(1_000_000), Role: model.RoleAdmin, Status: model.UserStatusAccepted,
	},
}

// SeedDemo создаёт демо-пользователей, если хранилище пустое. Возвращает число созданных
func (s *UserService) SeedDemo(ctx context.Context, users []DemoUser) (int, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		s.logger.Info("Users already exist, skipping demo seed", zap.Int64("count", count))
		return 0, nil
	}

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return 0, err
	}

	for _, d := range users {
		user := &model.User{
			Username:     d.Username,
			Email:        d.Email,
			Phone:        d.Phone,
			PasswordHash: hash,
			DisplayName:  d.DisplayName,
			Subjects:     d.Subjects,
			Levels:       d.Levels,
			Gender:       d.Gender,
			Address:      d.Address,
			Bio:          d.Bio,
			Role:         d.Role,
			Status:       d.Status,
			Balance:      d.Balance,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return 0, fmt.Errorf("seed user %s: %w", d.Username, err)
		}
	}

	s.logger.Info("Demo users seeded", zap.Int("count", len(users)))
	return len(users), nil
}
