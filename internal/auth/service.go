package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/db"
	"github.com/sujalbistaa/bookit/internal/models"
)

type Service struct {
	db     *gorm.DB
	tokens *TokenManager
	log    *zap.Logger
}

func NewService(gdb *gorm.DB, tokens *TokenManager, log *zap.Logger) *Service {
	return &Service{db: gdb, tokens: tokens, log: log.Named("auth")}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user account and returns it with a fresh token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := NormalizeEmail(in.Email)

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&existing).Error; err != nil {
		return nil, "", apperr.Internal("Failed to create account", err)
	}
	if existing > 0 {
		return nil, "", apperr.Conflict("User already exists")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", apperr.Internal("Failed to create account", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, "", apperr.Conflict("User already exists")
		}
		s.log.Error("Error creating user", zap.Error(err))
		return nil, "", apperr.Internal("Failed to create account", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", apperr.Internal("Failed to issue token", err)
	}
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperr.New(apperr.ErrUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return nil, "", apperr.Internal("Failed to log in", err)
	}

	if user.IsBanned {
		return nil, "", apperr.Forbidden("Account is banned")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", apperr.New(apperr.ErrUnauthorized, "Invalid credentials")
	}

	token, err := s.tokens.Issue(&user)
	if err != nil {
		return nil, "", apperr.Internal("Failed to issue token", err)
	}
	return &user, token, nil
}

// Authenticate resolves a bearer token to a principal. The user row is
// reloaded on every call so bans and role changes apply immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, *models.User, error) {
	if token == "" {
		return Principal{}, nil, apperr.New(apperr.ErrUnauthorized, "Unauthorized")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Principal{}, nil, apperr.Wrap(apperr.ErrUnauthorized, "Invalid token", err)
	}

	var user models.User
	err = s.db.WithContext(ctx).First(&user, "id = ?", claims.Subject).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Principal{}, nil, apperr.New(apperr.ErrUnauthorized, "Unauthorized")
	}
	if err != nil {
		return Principal{}, nil, apperr.Internal("Failed to authenticate", err)
	}
	if user.IsBanned {
		return Principal{}, nil, apperr.Forbidden("Account is banned")
	}
	return PrincipalOf(&user), &user, nil
}

// Promote grants the admin role to the user with the given email.
func (s *Service) Promote(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load user", err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
		return nil, apperr.Internal("Failed to promote user", err)
	}
	return &user, nil
}
