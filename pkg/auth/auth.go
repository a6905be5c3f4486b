package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/candleshop/pkg/models"
	"github.com/example/candleshop/pkg/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("missing required fields")
)

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string, addresses []models.Address) (*models.User, error)
}

type SessionStore interface {
	SaveSession(ctx context.Context, token string, session *repository.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*repository.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type Service struct {
	users    UserStore
	sessions SessionStore
	ttl      time.Duration
	logger   *zap.Logger
}

func NewService(users UserStore, sessions SessionStore, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}
}

// Register creates a customer account. New accounts never get the
// admin role through this path.
func (s *Service) Register(ctx context.Context, email, password, name, phone string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || name == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Phone:        phone,
		Role:         models.RoleCustomer,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// Login checks credentials and opens a redis-backed session. The
// returned token goes into the session cookie.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	session := &repository.Session{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Name:   user.Name,
		Role:   string(user.Role),
	}
	if err := s.sessions.SaveSession(ctx, token, session, s.ttl); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.Hex()))
	return token, user, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

func (s *Service) Session(ctx context.Context, token string) (*repository.Session, error) {
	return s.sessions.GetSession(ctx, token)
}

func (s *Service) User(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string, addresses []models.Address) (*models.User, error) {
	if name == "" {
		return nil, ErrMissingFields
	}
	return s.users.UpdateProfile(ctx, id, name, phone, addresses)
}
