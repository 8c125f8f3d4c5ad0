package controllers

import (
	"errors"
	"strings"

	"github.com/KevinT25/GameTracker-Backend/backend/apperrors"
	"github.com/KevinT25/GameTracker-Backend/backend/middleware"
	"github.com/KevinT25/GameTracker-Backend/backend/models"
	"github.com/KevinT25/GameTracker-Backend/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	var user models.User
	if err := uc.DB.First(&user, actor.ID).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not load profile", err))
	}
	return c.JSON(user)
}

// UpdateProfile changes the provided subset of fields; a new password is
// re-hashed before storing.
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	var input struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, actor.ID).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not load profile", err))
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return utils.BadRequest(c, "username cannot be empty")
		}
		user.Username = username
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return utils.BadRequest(c, "email cannot be empty")
		}
		user.Email = email
	}
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return utils.Fail(c, apperrors.Internal("could not hash password", err))
		}
		user.PasswordHash = string(hashed)
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Fail(c, apperrors.Conflict("username or email already taken"))
		}
		return utils.Fail(c, apperrors.Internal("could not update profile", err))
	}
	return c.JSON(user)
}

// List returns every registered account. Password hashes never serialize.
func (uc *UserController) List(c *fiber.Ctx) error {
	var users []models.User
	if err := uc.DB.Order("id").Find(&users).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not fetch users", err))
	}
	return c.JSON(users)
}

// GetByID returns a single account by its id.
func (uc *UserController) GetByID(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Fail(c, apperrors.NotFound("user not found"))
		}
		return utils.Fail(c, apperrors.Internal("could not fetch user", err))
	}
	return c.JSON(user)
}

// GetGenre returns the caller's favorite genre, null while unset.
func (uc *UserController) GetGenre(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	var user models.User
	if err := uc.DB.First(&user, actor.ID).Error; err != nil {
		return utils.Fail(c, apperrors.Internal("could not load profile", err))
	}
	if user.FavoriteGenre == "" {
		return c.JSON(fiber.Map{"genre": nil})
	}
	return c.JSON(fiber.Map{"genre": user.FavoriteGenre})
}

// SetGenre stores the caller's favorite genre.
func (uc *UserController) SetGenre(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	var input struct {
		Genre string `json:"genre"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	genre := strings.TrimSpace(input.Genre)
	if genre == "" {
		return utils.BadRequest(c, "genre is required")
	}

	err := uc.DB.Model(&models.User{}).Where("id = ?", actor.ID).
		Update("favorite_genre", genre).Error
	if err != nil {
		return utils.Fail(c, apperrors.Internal("could not update genre", err))
	}
	return c.JSON(fiber.Map{"message": "genre updated", "genre": genre})
}

// Delete removes an account. Allowed for the user themselves or an
// administrator. Authored content is left in place; usernames on it are
// snapshots, so nothing dangles visually.
func (uc *UserController) Delete(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	if id != actor.ID && !actor.Admin {
		return utils.Fail(c, apperrors.Forbidden("you can only delete your own account"))
	}

	res := uc.DB.Unscoped().Delete(&models.User{}, id)
	if res.Error != nil {
		return utils.Fail(c, apperrors.Internal("could not delete user", res.Error))
	}
	if res.RowsAffected == 0 {
		return utils.Fail(c, apperrors.NotFound("user not found"))
	}
	return c.JSON(fiber.Map{"message": "user deleted"})
}
