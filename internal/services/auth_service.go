package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"agrimarket/internal/models"
	"agrimarket/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Errors surfaced by the auth service that handlers map to specific
// HTTP responses.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrSecurityMismatch   = errors.New("invalid security question or answer")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// resetTokenTTL is how long a password-reset token stays valid.
const resetTokenTTL = 15 * time.Minute

// AuthService handles business logic for registration, authentication,
// the security-question password reset flow, and profiles.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 5 * 24 * time.Hour, // Token valid for 5 days
	}
}

// RegisterUser registers a new user, hashes their password, saves them,
// and returns a signed token for the new session.
func (s *AuthService) RegisterUser(user *models.User) (string, error) {
	// Check if username or email already exists
	if existingUser, err := s.userRepo.GetByUsername(user.Username); err == nil && existingUser != nil {
		return "", fmt.Errorf("user already exists with this email or username")
	}
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return "", fmt.Errorf("user already exists with this email or username")
	}

	if !PasswordMeetsPolicy(user.Password) {
		return "", fmt.Errorf("password must be 6+ chars with uppercase, lowercase, number, and special char")
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword) // Store the hashed password

	if err := s.userRepo.Create(user); err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	return s.generateToken(user)
}

// LoginUser authenticates a user by username or email and returns the
// user plus a signed token if successful.
func (s *AuthService) LoginUser(identifier, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(identifier)
	if err != nil {
		// Do not reveal whether the account exists
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// generateToken signs a JWT carrying the username and role.
func (s *AuthService) generateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// ForgotPassword verifies the stored security question and answer for
// the account and, on a match, issues a short-lived reset token. The
// question must match exactly; the answer is compared
// case-insensitively.
func (s *AuthService) ForgotPassword(identifier, securityQuestion, securityAnswer string) (*models.User, string, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(identifier)
	if err != nil {
		return nil, "", ErrUserNotFound
	}

	if user.SecurityQuestion != securityQuestion ||
		!strings.EqualFold(user.SecurityAnswer, securityAnswer) {
		return nil, "", ErrSecurityMismatch
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	resetToken := hex.EncodeToString(buf)

	user.ResetToken = resetToken
	user.ResetTokenExpiry = time.Now().Add(resetTokenTTL)
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return user, resetToken, nil
}

// VerifyResetToken checks that the reset token belongs to the account
// and has not expired.
func (s *AuthService) VerifyResetToken(identifier, token string) (*models.User, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(identifier)
	if err != nil {
		return nil, ErrInvalidResetToken
	}
	if user.ResetToken == "" || user.ResetToken != token || time.Now().After(user.ResetTokenExpiry) {
		return nil, ErrInvalidResetToken
	}
	return user, nil
}

// ResetPassword sets a new password for the account identified by a
// valid reset token, then invalidates the token.
func (s *AuthService) ResetPassword(identifier, token, newPassword string) (*models.User, error) {
	user, err := s.VerifyResetToken(identifier, token)
	if err != nil {
		return nil, err
	}

	if !PasswordMeetsPolicy(newPassword) {
		return nil, fmt.Errorf("password must be 6+ chars with uppercase, lowercase, number, and special char")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hashedPassword)
	user.ResetToken = ""
	user.ResetTokenExpiry = time.Time{}
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	return user, nil
}

// GetProfile returns a user's record by username.
func (s *AuthService) GetProfile(username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ProfileUpdate carries the patchable profile fields; nil/empty fields
// are left unchanged.
type ProfileUpdate struct {
	Email       string
	PhoneNumber string
	Address     *models.Address
}

// UpdateProfile patches a user's email, phone number, or address.
func (s *AuthService) UpdateProfile(username string, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if update.Email != "" {
		user.Email = update.Email
	}
	if update.PhoneNumber != "" {
		user.PhoneNumber = update.PhoneNumber
	}
	if update.Address != nil {
		user.Address = *update.Address
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// PasswordMeetsPolicy reports whether the password has at least six
// characters including an uppercase letter, a lowercase letter, a
// digit, and a special character.
func PasswordMeetsPolicy(password string) bool {
	if len(password) < 6 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}
