package utils

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// InitLogger инициализирует и возвращает логгер приложения.
func InitLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return logger
}

// LoggingMiddleware возвращает middleware для логирования запросов.
func LoggingMiddleware(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		entry := logger.WithFields(logrus.Fields{
			"ip":      c.IP(),
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start).String(),
		})

		switch {
		case c.Response().StatusCode() >= 500:
			entry.Error("request failed")
		case c.Response().StatusCode() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}

		return err
	}
}
