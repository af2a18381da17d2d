package controller

import (
	"context"
	"errors"
	"net/http"

	"taskman/internal/config"
	"taskman/internal/models"
	"taskman/internal/token"
	"taskman/internal/validation"
	"taskman/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the persistence surface the auth handlers need.
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthController serves registration and login, issuing bearer tokens.
type AuthController struct {
	users UserRepository
}

func NewAuthController(users UserRepository) *AuthController {
	return &AuthController{users: users}
}

// Register creates an account and returns a token plus the public user.
func (ac *AuthController) Register(c *gin.Context) {
	ctx := c.Request.Context()
	var body models.RegisterInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}
	name, email, err := validation.Registration(body.Name, body.Email, body.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), config.Get().BcryptCost)
	if err != nil {
		logger.Error(ctx, "Password hashing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	user, err := ac.users.Create(ctx, name, email, string(hash))
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		logger.Error(ctx, "Register failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	ac.respondWithToken(c, http.StatusCreated, "User created successfully", user)
}

// Login authenticates by email and password. Unknown email and wrong
// password both come back as the same 401.
func (ac *AuthController) Login(c *gin.Context) {
	ctx := c.Request.Context()
	var body models.LoginInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	email, err := validation.Login(body.Email, body.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := ac.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		logger.Error(ctx, "Login lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	ac.respondWithToken(c, http.StatusOK, "Login successful", user)
}

func (ac *AuthController) respondWithToken(c *gin.Context, code int, message string, user *models.User) {
	cfg := config.Get()
	if cfg.JWTSecret == "" {
		logger.Error(c.Request.Context(), "JWT_SECRET is not set")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server misconfiguration"})
		return
	}
	tok, err := token.Issue(user.ID, user.Email, []byte(cfg.JWTSecret), cfg.JWTExpiry)
	if err != nil {
		logger.Error(c.Request.Context(), "Token signing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(code, gin.H{
		"message": message,
		"token":   tok,
		"user":    user.Public(),
	})
}
