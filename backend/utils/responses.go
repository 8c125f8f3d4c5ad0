package utils

import (
	"net/http"

	"github.com/KevinT25/GameTracker-Backend/backend/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON shape for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Fail maps an error to its HTTP status via the apperrors taxonomy.
func Fail(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	})
}

// BadRequest reports a malformed request body or parameter.
func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, apperrors.Validation(message))
}

// Unauthorized reports a missing or invalid token.
func Unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Success: false,
		Error:   http.StatusText(fiber.StatusUnauthorized),
		Message: message,
	})
}

// Created sends a 201 with the payload.
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}
