// Package api is the web configuration surface: a subscriber claims a
// single-use link issued by the bot and manages the subscription over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/lexibot/word-of-the-day-bot/internal/config"
	"github.com/lexibot/word-of-the-day-bot/internal/dal"
	"github.com/lexibot/word-of-the-day-bot/internal/subscription"
	"github.com/lexibot/word-of-the-day-bot/internal/words"
)

type (
	Dependencies struct {
		Links  dal.ConfigLinkRepository
		Store  *subscription.Store
		Words  *words.Source
		Logger *slog.Logger
	}
)

func NewRouter(ctx context.Context, conf *config.API, deps Dependencies) http.Handler {
	e := echo.New()
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(loggingMiddleware(ctx, deps.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(conf.HTTP.RateLimit))))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.HTTP.CORS.AllowOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: conf.HTTP.ProcessTimeout,
	}))
	e.Use(middleware.Secure())

	e.HTTPErrorHandler = HTTPErrorHandler(deps.Logger)

	jwtProcessor := NewJWTProcessor(conf.HTTP.JWT, conf.HTTP.Cookie.AccessExpiresIn)
	cookiesProcessor := NewCookiesProcessor(conf.HTTP.Cookie)

	auth := NewAuthHandler(AuthDependencies{
		Links:            deps.Links,
		JWTProcessor:     jwtProcessor,
		CookiesProcessor: cookiesProcessor,
		Logger:           deps.Logger,
	})

	e.POST("/config/claim", auth.Claim)
	e.POST("/auth/logout", auth.LogOut)

	securedGroup := e.Group("", AuthMiddleware(cookiesProcessor, jwtProcessor, deps.Logger))
	securedGroup.GET("/auth/info", auth.Info)

	subs := NewSubscriptionHandler(deps.Store, deps.Logger)
	securedGroup.GET("/subscription", subs.Get)
	securedGroup.PATCH("/subscription", subs.Patch)
	securedGroup.DELETE("/subscription", subs.Delete)

	wordsHandler := NewWordsHandler(deps.Words, deps.Store, deps.Logger)
	securedGroup.GET("/words/today", wordsHandler.Today)
	securedGroup.GET("/words", wordsHandler.ByDate)
	securedGroup.GET("/words/search", wordsHandler.Search)

	return e
}

func loggingMiddleware(ctx context.Context, log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true, // forwards error to the global error handler, so it can decide appropriate status code
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.LogAttrs(ctx, slog.LevelInfo, "REQUEST",
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
				)
			} else {
				log.LogAttrs(ctx, slog.LevelError, "REQUEST_ERROR",
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.String("err", v.Error.Error()),
				)
			}
			return nil
		},
	})
}
