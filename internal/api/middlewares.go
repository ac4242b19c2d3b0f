package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	appctx "github.com/lexibot/word-of-the-day-bot/internal/context"
)

var unauthorizedResponse = ErrorResponse{"Unauthorized"} //nolint:gochecknoglobals // this is a constant response for unauthorized access

func AuthMiddleware(cookieProc *CookiesProcessor, jwtProc *JWTProcessor, log *slog.Logger) func(next echo.HandlerFunc) echo.HandlerFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := cookieProc.GetAccessToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, unauthorizedResponse)
			}

			id, err := jwtProc.ParseAccessToken(token)
			if err != nil {
				log.WarnContext(c.Request().Context(), "parse access token", "error", err)
				return c.JSON(http.StatusUnauthorized, unauthorizedResponse)
			}

			c.SetRequest(c.Request().WithContext(appctx.WithIdentity(c.Request().Context(), id)))

			return next(c)
		}
	}
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
