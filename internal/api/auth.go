package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	appctx "github.com/lexibot/word-of-the-day-bot/internal/context"
	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

type (
	AuthDependencies struct {
		Links            dal.ConfigLinkRepository
		JWTProcessor     *JWTProcessor
		CookiesProcessor *CookiesProcessor
		Logger           *slog.Logger
	}

	AuthHandler struct {
		links            dal.ConfigLinkRepository
		jwtProcessor     *JWTProcessor
		cookiesProcessor *CookiesProcessor

		log *slog.Logger
	}

	claimRequest struct {
		Token string `json:"token" validate:"required,uuid4"`
	}
)

func NewAuthHandler(deps AuthDependencies) *AuthHandler {
	return &AuthHandler{
		links:            deps.Links,
		jwtProcessor:     deps.JWTProcessor,
		cookiesProcessor: deps.CookiesProcessor,

		log: deps.Logger,
	}
}

// Claim exchanges a single-use link token issued by the bot for an access
// cookie. The link is consumed even when issuing the cookie fails, so a token
// never works twice.
func (h *AuthHandler) Claim(c echo.Context) error {
	var req claimRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	link, err := h.links.FindConfigLink(c.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return c.JSON(http.StatusForbidden, ErrorResponse{Message: "link is invalid or expired"})
		}

		h.log.ErrorContext(c.Request().Context(), "failed to find config link", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	if err := h.links.DeleteConfigLink(c.Request().Context(), req.Token); err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to delete config link", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	if time.Now().After(link.ExpiresAt) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Message: "link is invalid or expired"})
	}

	token, err := h.jwtProcessor.ToAccessToken(link.Identity)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to create access token", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}
	c.SetCookie(h.cookiesProcessor.NewAccessTokenCookie(token))

	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *AuthHandler) Info(c echo.Context) error {
	id := appctx.MustIdentityFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{
		"identity": id.Key(),
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	c.SetCookie(h.cookiesProcessor.ExpireAccessTokenCookie())
	return c.JSON(http.StatusOK, nil)
}
