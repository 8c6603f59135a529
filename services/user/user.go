// Package user handles accounts: registration, authentication, profiles.
package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"machly/config"
	userRepo "machly/database/repository/user"
	"machly/models"
	"machly/services/storage"
	"machly/utils"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound is returned when the user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned on registration with a used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login. It deliberately
	// does not say whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalid is returned for malformed registration or profile data.
	ErrInvalid = errors.New("invalid user data")
	// ErrWrongPassword is returned when the current password check fails.
	ErrWrongPassword = errors.New("current password is incorrect")
)

const defaultTokenExpiry = 72 * time.Hour

// RegisterRequest carries a new account's fields.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Lastname string `json:"lastname"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required"`
}

// ProfileRequest carries the self-editable profile fields.
type ProfileRequest struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Phone    string `json:"phone"`
}

// AuthResponse is the login result: a bearer token plus the account.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// UserService manages accounts and sessions.
type UserService interface {
	Register(req RegisterRequest) (*models.User, error)
	Authenticate(email, password string) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error
	GetByID(id string) (*models.User, error)
	UpdateProfile(actor models.Actor, req ProfileRequest) (*models.User, error)
	ChangePassword(actor models.Actor, currentPassword, newPassword string) error
	UploadAvatar(ctx context.Context, actor models.Actor, photo io.Reader) (string, error)
}

// DefaultUserService implements UserService.
type DefaultUserService struct {
	Repo    userRepo.UserRepository
	Storage storage.StorageService
}

// NewDefaultUserService wires a user service over the given repository.
func NewDefaultUserService(repo userRepo.UserRepository, st storage.StorageService) *DefaultUserService {
	return &DefaultUserService{Repo: repo, Storage: st}
}

// Register creates a renter or provider account. Admin accounts are only
// created through the admin surface.
func (s *DefaultUserService) Register(req RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalid)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalid)
	}
	if req.Role != models.RoleRenter && req.Role != models.RoleProvider {
		return nil, fmt.Errorf("%w: role must be %s or %s", ErrInvalid, models.RoleRenter, models.RoleProvider)
	}

	existing, err := s.Repo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Lastname:     strings.TrimSpace(req.Lastname),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func tokenExpiry() time.Duration {
	if h := config.AppConfig.JWTExpiryHours; h > 0 {
		return time.Duration(h) * time.Hour
	}
	return defaultTokenExpiry
}

// Authenticate verifies the credentials and issues a bearer token.
func (s *DefaultUserService) Authenticate(email, password string) (*AuthResponse, error) {
	user, err := s.Repo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, tokenExpiry())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &AuthResponse{Token: token, User: *user}, nil
}

// Logout puts the token's hash on the denylist for its remaining lifetime.
func (s *DefaultUserService) Logout(ctx context.Context, tokenString string) error {
	token, err := utils.ValidateToken(tokenString)
	if err != nil {
		// An invalid or expired token has nothing left to revoke.
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil
	}
	ttl := time.Until(time.Unix(int64(exp), 0))
	if ttl <= 0 {
		return nil
	}
	if err := utils.RevokeToken(ctx, utils.HashToken(tokenString), ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// GetByID returns the account.
func (s *DefaultUserService) GetByID(id string) (*models.User, error) {
	user, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

// UpdateProfile edits the actor's own profile fields.
func (s *DefaultUserService) UpdateProfile(actor models.Actor, req ProfileRequest) (*models.User, error) {
	user, err := s.GetByID(actor.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if lastname := strings.TrimSpace(req.Lastname); lastname != "" {
		user.Lastname = lastname
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if err := s.Repo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *DefaultUserService) ChangePassword(actor models.Actor, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalid)
	}

	user, err := s.GetByID(actor.ID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.Repo.Update(user); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// UploadAvatar stores the photo and records its URL on the profile.
func (s *DefaultUserService) UploadAvatar(ctx context.Context, actor models.Actor, photo io.Reader) (string, error) {
	user, err := s.GetByID(actor.ID)
	if err != nil {
		return "", err
	}

	url, err := s.Storage.UploadImage(ctx, photo, "avatars")
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	user.PhotoURL = url
	if err := s.Repo.Update(user); err != nil {
		return "", fmt.Errorf("failed to save avatar: %w", err)
	}
	return url, nil
}
