package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"gametracker"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"secret"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"72h"`

	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// Minimum gap between two create/report actions by the same user.
	ThrottleWindow time.Duration `envconfig:"THROTTLE_WINDOW" default:"2s"`
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
