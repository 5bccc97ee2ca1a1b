package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBSource       string
	Port           string
	Env            string
	AdjutorBaseURL string
	AdjutorAPIKey  string
	ClearingEmail  string
}

func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()

	dbSource := os.Getenv("DB_SOURCE")
	if dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &Config{
		DBSource:       dbSource,
		Port:           port,
		Env:            env,
		AdjutorBaseURL: os.Getenv("ADJUTOR_BASE_URL"),
		AdjutorAPIKey:  os.Getenv("ADJUTOR_API_KEY"),
		ClearingEmail:  os.Getenv("CLEARING_EMAIL"),
	}, nil
}
