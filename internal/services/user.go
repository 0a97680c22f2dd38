package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/diewo77/go-inventory/auth"
	"github.com/diewo77/go-inventory/internal/models"
	"github.com/diewo77/go-inventory/validation"
	"gorm.io/gorm"
)

// MinPasswordLength is enforced at signup.
const MinPasswordLength = 8

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Signup creates a user with the default role.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Required("password", in.Password, v)
	if !v.Empty() {
		return nil, invalid("Email and password are required", v)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		v.Add("email", "invalid_email")
	}
	if len(in.Password) < MinPasswordLength {
		v.Add("password", "too_short")
	}
	if !v.Empty() {
		return nil, invalid("Invalid signup", v)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := models.User{Email: email, Name: strings.TrimSpace(in.Name), Password: hash, Role: models.RoleUser}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: "Email already registered"}
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown email or a
// wrong password alike.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User")
		}
		return nil, err
	}
	return &u, nil
}

// Exists satisfies the session verifier.
func (s *UserService) Exists(ctx context.Context, id uint) bool {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false
	}
	return n > 0
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole changes the role of target. An admin cannot demote itself.
func (s *UserService) UpdateRole(ctx context.Context, actorID, targetID uint, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, invalid("Invalid role", validation.Violations{"role": "invalid_choice"})
	}
	if actorID == targetID && role != models.RoleAdmin {
		return nil, invalid("Cannot change your own admin role", nil)
	}
	u, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(u).Update("role", role).Error; err != nil {
		return nil, err
	}
	u.Role = role
	return u, nil
}
