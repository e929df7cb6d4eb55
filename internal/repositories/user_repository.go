package repositories

import "agrimarket/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	// GetByUsernameOrEmail resolves a login identifier that may be
	// either a username or an email address.
	GetByUsernameOrEmail(identifier string) (*models.User, error)
	Update(user *models.User) error
}
