package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"agrimarket/internal/models"
	"agrimarket/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration, login, the
// security-question password reset flow, and user profiles.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/forgot-password", h.HandleForgotPassword)
	authRoutes.Get("/verify-reset-user/:username/:token", h.HandleVerifyResetUser)
	authRoutes.Put("/reset-password/:username/:token", h.HandleResetPassword)
	authRoutes.Get("/user/:username", h.HandleGetUser)
	authRoutes.Put("/update/:username", h.HandleUpdateProfile)
}

// RegisterFarmerCompatRoutes registers the farmer profile aliases the
// frontend uses. These must be registered after the product routes so
// that /farmers/products is not captured by the :username parameter.
func (h *AuthHandler) RegisterFarmerCompatRoutes(router fiber.Router) {
	farmerRoutes := router.Group("/farmers")
	farmerRoutes.Get("/:username", h.HandleGetUser)
	farmerRoutes.Put("/:username", h.HandleUpdateProfile)
}

// validationErrors flattens validator errors into the errors:[{msg}]
// shape the clients expect.
func validationErrors(err error) []fiber.Map {
	var out []fiber.Map
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, e := range ve {
			out = append(out, fiber.Map{
				"msg": fmt.Sprintf("Field '%s' failed on the '%s' rule", e.Field(), e.Tag()),
			})
		}
		return out
	}
	return []fiber.Map{{"msg": err.Error()}}
}

// RegisterRequest represents the flat registration form body.
type RegisterRequest struct {
	Name             string `json:"name" validate:"required,min=3,max=50"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	Age              int    `json:"age" validate:"required,gte=18"`
	Username         string `json:"username" validate:"required,min=3,max=20"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	PhoneNumber      string `json:"phoneNumber" validate:"required,len=10,numeric"`
	SecurityQuestion string `json:"securityQuestion" validate:"required"`
	SecurityAnswer   string `json:"securityAnswer" validate:"required"`
	Role             string `json:"role" validate:"required,oneof=farmer buyer"`
	HouseNo          string `json:"houseNo" validate:"required"`
	Street           string `json:"street" validate:"required"`
	MandalDistrict   string `json:"mandalDistrict" validate:"required"`
	State            string `json:"state" validate:"required"`
	Zipcode          string `json:"zipcode" validate:"required,len=6,numeric"`
}

// HandleRegister handles new user registration and issues a token.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": "Invalid request body"}},
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": validationErrors(err),
		})
	}
	if !services.PasswordMeetsPolicy(req.Password) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": "Password must be 6+ chars with uppercase, lowercase, number, and special char"}},
		})
	}

	user := models.User{
		Name:             req.Name,
		Gender:           req.Gender,
		Age:              req.Age,
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		PhoneNumber:      req.PhoneNumber,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
		Role:             req.Role,
		Address: models.Address{
			HouseNo:        req.HouseNo,
			Street:         req.Street,
			MandalDistrict: req.MandalDistrict,
			State:          req.State,
			Zipcode:        req.Zipcode,
		},
	}

	token, err := h.authService.RegisterUser(&user)
	if err != nil {
		log.Printf("Error registering user %s: %v", req.Username, err)
		if strings.Contains(err.Error(), "already exists") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"errors": []fiber.Map{{"msg": "User already exists with this email or username"}},
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.JSON(fiber.Map{
		"token":    token,
		"username": user.Username,
		"role":     user.Role,
	})
}

// LoginRequest represents the request body for login. The username
// field also accepts an email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates a user and issues a token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": "Invalid request body"}},
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": validationErrors(err),
		})
	}

	user, token, err := h.authService.LoginUser(req.Username, req.Password)
	if err != nil {
		log.Printf("Login failed for %s: %v", req.Username, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []fiber.Map{{"msg": "Invalid credentials"}},
		})
	}

	return c.JSON(fiber.Map{
		"token":    token,
		"username": user.Username,
		"role":     user.Role,
	})
}

// ForgotPasswordRequest carries the security question verification.
type ForgotPasswordRequest struct {
	Username         string `json:"username" validate:"required"`
	SecurityQuestion string `json:"securityQuestion" validate:"required"`
	SecurityAnswer   string `json:"securityAnswer" validate:"required"`
}

// HandleForgotPassword verifies the security question and answer and
// issues a short-lived reset token.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation errors",
			"errors":  validationErrors(err),
		})
	}

	user, resetToken, err := h.authService.ForgotPassword(req.Username, req.SecurityQuestion, req.SecurityAnswer)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "User not found with this username/email",
			})
		case errors.Is(err, services.ErrSecurityMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid security question or answer",
			})
		default:
			log.Printf("Forgot password error for %s: %v", req.Username, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Server error during password reset verification",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Verification successful. Reset token generated.",
		"username":   user.Username,
		"role":       user.Role,
		"resetToken": resetToken,
	})
}

// HandleVerifyResetUser validates a reset token for the reset form.
func (h *AuthHandler) HandleVerifyResetUser(c *fiber.Ctx) error {
	username, err := url.PathUnescape(c.Params("username"))
	if err != nil {
		username = c.Params("username")
	}

	user, err := h.authService.VerifyResetToken(username, c.Params("token"))
	if err != nil {
		return c.JSON(fiber.Map{"valid": false})
	}

	return c.JSON(fiber.Map{
		"valid": true,
		"user": fiber.Map{
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// ResetPasswordRequest carries the new password pair.
type ResetPasswordRequest struct {
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// HandleResetPassword sets a new password for a valid reset token.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation errors",
			"errors":  validationErrors(err),
		})
	}
	if !services.PasswordMeetsPolicy(req.NewPassword) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Password must be 6+ chars with uppercase, lowercase, number, and special char",
		})
	}

	username, err := url.PathUnescape(c.Params("username"))
	if err != nil {
		username = c.Params("username")
	}

	user, err := h.authService.ResetPassword(username, c.Params("token"), req.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid or expired reset token",
			})
		}
		log.Printf("Reset password error for %s: %v", username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Server error during password reset",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated successfully",
		"role":    user.Role,
	})
}

// HandleGetUser returns a user profile without secret fields.
func (h *AuthHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(c.Params("username"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		log.Printf("Error fetching profile %s: %v", c.Params("username"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.JSON(user.PublicProfile())
}

// ProfileUpdateRequest patches email, phone, or address.
type ProfileUpdateRequest struct {
	Email       string          `json:"email" validate:"omitempty,email"`
	PhoneNumber string          `json:"phoneNumber" validate:"omitempty,len=10,numeric"`
	Address     *models.Address `json:"address"`
}

// HandleUpdateProfile patches a user's contact fields.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": validationErrors(err),
		})
	}

	user, err := h.authService.UpdateProfile(c.Params("username"), services.ProfileUpdate{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		log.Printf("Error updating profile %s: %v", c.Params("username"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user": fiber.Map{
			"username":    user.Username,
			"email":       user.Email,
			"phoneNumber": user.PhoneNumber,
			"address":     user.Address,
		},
	})
}
