package config

import (
	"context"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type (
	CORS struct {
		AllowOrigins []string `envconfig:"ALLOW_ORIGINS" required:"true"`
	}

	JWT struct {
		Issuer   string   `envconfig:"ISSUER" default:"word-of-the-day-api"`
		Audience []string `envconfig:"AUDIENCE" required:"true"`
		Secret   string   `envconfig:"SECRET"`
	}

	Cookie struct {
		Path            string        `envconfig:"CPATH" default:"/"` // not using PATH here because it may conflict with os.Path
		Domain          string        `envconfig:"DOMAIN" required:"true"`
		AccessExpiresIn time.Duration `envconfig:"ACCESS_EXPIRES_IN" default:"24h"`
	}

	HTTP struct {
		ProcessTimeout time.Duration `envconfig:"PROCESS_TIMEOUT" default:"10s"`
		RateLimit      float64       `envconfig:"RATE_LIMIT" default:"25"`
		CORS           CORS
		Cookie         Cookie
		JWT            JWT
	}

	Server struct {
		ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"10s"`
		Addr              string        `envconfig:"ADDR" default:":8080"`
	}

	API struct {
		Dev    bool   `envconfig:"DEV" default:"false"`
		DBPath string `envconfig:"DB_PATH" default:"wotd.db"`
		HTTP   HTTP
		Server Server
	}
)

func NewAPI(ctx context.Context) (API, error) {
	var res API
	if err := envconfig.Process("API", &res); err != nil {
		return API{}, fmt.Errorf("parse api environment: %w", err)
	}

	if !res.Dev {
		if err := setAPIProdConfig(ctx, &res); err != nil {
			return API{}, fmt.Errorf("set api prod config: %w", err)
		}
	}

	if res.HTTP.JWT.Secret == "" {
		return API{}, fmt.Errorf("jwt secret is required")
	}

	return res, nil
}

func setAPIProdConfig(ctx context.Context, target *API) error {
	parameters, err := FetchAWSParams(ctx,
		"/word-of-the-day-bot/prod/jwt-secret",
		"/word-of-the-day-bot/prod/db-path",
	)
	if err != nil {
		return fmt.Errorf("get parameters: %w", err)
	}

	for name, value := range parameters {
		switch name {
		case "/word-of-the-day-bot/prod/jwt-secret":
			target.HTTP.JWT.Secret = value
		case "/word-of-the-day-bot/prod/db-path":
			target.DBPath = value
		}
	}

	return nil
}
