package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/KevinT25/GameTracker-Backend/backend/achievements"
	"github.com/KevinT25/GameTracker-Backend/backend/apperrors"
	"github.com/KevinT25/GameTracker-Backend/backend/config"
	"github.com/KevinT25/GameTracker-Backend/backend/models"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *achievements.Engine
	Log    *logrus.Logger
}

func NewAuthController(db *gorm.DB, cfg *config.Config, engine *achievements.Engine, log *logrus.Logger) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Engine: engine, Log: log}
}

// Register creates a user account and logs them in.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "username, email and password are required")
	}

	var count int64
	if err := ac.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Count(&count).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not query database", err))
	}
	if count > 0 {
		return utils.Fail(c, apperrors.Conflict("user already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not hash password", err))
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         "user",
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Fail(c, apperrors.Conflict("user already exists"))
		}
		return utils.Fail(c, apperrors.Internal("could not create user", err))
	}

	token, err := utils.GenerateJWTToken(&user, ac.Cfg)
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not generate token", err))
	}

	ac.recordLogin(user.ID)

	return utils.Created(c, fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Login authenticates by username and password and returns a JWT.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.Fail(c, apperrors.Internal("could not query database", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(&user, ac.Cfg)
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not generate token", err))
	}

	ac.recordLogin(user.ID)

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (ac *AuthController) recordLogin(userID uint) {
	entry := models.LoginHistory{UserID: userID, LoginTime: time.Now()}
	if err := ac.DB.Create(&entry).Error; err != nil {
		ac.Log.WithError(err).Warn("could not record login history")
	}
	dispatchTrigger(ac.Log, ac.Engine, userID, achievements.TriggerLogin, nil)
}
