package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type (
	Dispatch struct {
		Concurrency int64         `default:"45"`
		SendTimeout time.Duration `envconfig:"SEND_TIMEOUT" default:"30s"`
	}

	ConfigLink struct {
		BaseURL string        `envconfig:"BASE_URL" default:""`
		TTL     time.Duration `default:"15m"`
	}

	Bot struct {
		Dev           bool    `default:"false"`
		TelegramToken string  `envconfig:"TELEGRAM_TOKEN" required:"true"`
		AdminIDs      []int64 `envconfig:"ADMIN_IDS"`
		DBPath        string  `envconfig:"DB_PATH" default:"wotd.db"`
		GroupCap      int     `envconfig:"GROUP_CAP" default:"10"`
		Dispatch      Dispatch
		ConfigLink    ConfigLink
	}
)

func GetBot(ctx context.Context) (*Bot, error) {
	res := &Bot{}
	if err := envconfig.Process("BOT", res); err != nil {
		return nil, fmt.Errorf("parse bot environment: %w", err)
	}

	if !res.Dev {
		if err := setBotProdConfig(ctx, res); err != nil {
			return nil, fmt.Errorf("set bot prod config: %w", err)
		}
	}

	return validateBot(res)
}

func validateBot(conf *Bot) (*Bot, error) {
	errs := make([]string, 0, 4)
	if conf.TelegramToken == "" {
		errs = append(errs, "telegram token is required")
	}
	if conf.DBPath == "" {
		errs = append(errs, "db path is required")
	}
	if conf.GroupCap < 0 {
		errs = append(errs, fmt.Sprintf("group cap %d must not be negative", conf.GroupCap))
	}
	if conf.Dispatch.Concurrency <= 0 {
		errs = append(errs, fmt.Sprintf("dispatch concurrency %d must be positive", conf.Dispatch.Concurrency))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(errs, ", "))
	}

	return conf, nil
}

func setBotProdConfig(ctx context.Context, target *Bot) error {
	parameters, err := FetchAWSParams(ctx,
		"/word-of-the-day-bot/prod/telegram-token",
		"/word-of-the-day-bot/prod/admin-ids",
		"/word-of-the-day-bot/prod/db-path",
	)
	if err != nil {
		return fmt.Errorf("get parameters: %w", err)
	}

	for name, value := range parameters {
		switch name {
		case "/word-of-the-day-bot/prod/telegram-token":
			target.TelegramToken = value
		case "/word-of-the-day-bot/prod/admin-ids":
			target.AdminIDs, err = parseIDs(value)
			if err != nil {
				return err
			}
		case "/word-of-the-day-bot/prod/db-path":
			target.DBPath = value
		}
	}

	return nil
}
